package dto

import "time"

// AbsenceRequest is the leave collaborator's ingress payload on approval.
type AbsenceRequest struct {
	TeacherID string `json:"teacherId" binding:"required" validate:"required"`
	LeaveType string `json:"leaveType" validate:"omitempty,oneof=SICK CASUAL OFFICIAL OTHER"`
	StartDate string `json:"startDate" binding:"required" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" binding:"required" validate:"required,datetime=2006-01-02"`
}

// DeclineOfferRequest carries the optional decline reason.
type DeclineOfferRequest struct {
	Reason string `json:"reason"`
}

// OfferView is the wire shape for a replacement offer.
type OfferView struct {
	ID                 string     `json:"id"`
	SlotID             string     `json:"slotId"`
	Date               string     `json:"date"`
	CandidateTeacherID string     `json:"candidateTeacherId"`
	Status             string     `json:"status"`
	Reason             string     `json:"reason,omitempty"`
	OfferedAt          time.Time  `json:"offeredAt"`
	ResolvedAt         *time.Time `json:"resolvedAt,omitempty"`
}

// WorkflowView surfaces the coverage state for one absence × slot × date.
type WorkflowView struct {
	ID        string      `json:"id"`
	AbsenceID string      `json:"absenceId"`
	SlotID    string      `json:"slotId"`
	Date      string      `json:"date"`
	Status    string      `json:"status"`
	Offers    []OfferView `json:"offers,omitempty"`
}
