package models

import "time"

// OfferStatus captures the lifecycle of a single substitute offer.
type OfferStatus string

const (
	OfferStatusOffered   OfferStatus = "OFFERED"
	OfferStatusAccepted  OfferStatus = "ACCEPTED"
	OfferStatusDeclined  OfferStatus = "DECLINED"
	OfferStatusExpired   OfferStatus = "EXPIRED"
	OfferStatusCancelled OfferStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transition.
func (s OfferStatus) Terminal() bool {
	return s != OfferStatusOffered
}

// ReplacementOffer is one sequential proposal to a candidate substitute for a
// slot on a concrete date. At most one offer per (slot, date) is outstanding,
// and at most one may ever reach ACCEPTED.
type ReplacementOffer struct {
	ID                 string      `db:"id" json:"id"`
	WorkflowID         string      `db:"workflow_id" json:"workflow_id"`
	SlotID             string      `db:"slot_id" json:"slot_id"`
	Date               time.Time   `db:"date" json:"date"`
	CandidateTeacherID string      `db:"candidate_teacher_id" json:"candidate_teacher_id"`
	Status             OfferStatus `db:"status" json:"status"`
	Reason             *string     `db:"reason" json:"reason,omitempty"`
	OfferedAt          time.Time   `db:"offered_at" json:"offered_at"`
	ResolvedAt         *time.Time  `db:"resolved_at" json:"resolved_at,omitempty"`
}

// WorkflowStatus tracks the coverage state for one absence × slot × date.
type WorkflowStatus string

const (
	WorkflowStatusDetected  WorkflowStatus = "DETECTED"
	WorkflowStatusOffering  WorkflowStatus = "OFFERING"
	WorkflowStatusCovered   WorkflowStatus = "COVERED"
	WorkflowStatusUnfilled  WorkflowStatus = "UNFILLED"
	WorkflowStatusCancelled WorkflowStatus = "CANCELLED"
)

// ReplacementWorkflow drives substitute selection for one affected slot/date.
type ReplacementWorkflow struct {
	ID              string         `db:"id" json:"id"`
	AbsenceID       string         `db:"absence_id" json:"absence_id"`
	SlotID          string         `db:"slot_id" json:"slot_id"`
	Date            time.Time      `db:"date" json:"date"`
	Status          WorkflowStatus `db:"status" json:"status"`
	CandidateCursor int            `db:"candidate_cursor" json:"candidate_cursor"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// ReplacementWorkflowFilter constrains workflow listings.
type ReplacementWorkflowFilter struct {
	AbsenceID string
	SlotID    string
	Status    WorkflowStatus
	Page      int
	PageSize  int
}
