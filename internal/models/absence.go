package models

import "time"

// LeaveType categorises the approved leave behind an absence.
type LeaveType string

const (
	LeaveTypeSick     LeaveType = "SICK"
	LeaveTypeCasual   LeaveType = "CASUAL"
	LeaveTypeOfficial LeaveType = "OFFICIAL"
	LeaveTypeOther    LeaveType = "OTHER"
)

// AbsenceStatus tracks whether an absence still demands coverage.
type AbsenceStatus string

const (
	AbsenceStatusActive  AbsenceStatus = "ACTIVE"
	AbsenceStatusRevoked AbsenceStatus = "REVOKED"
)

// TeacherAbsence is emitted by the leave collaborator when a leave is approved.
type TeacherAbsence struct {
	ID        string        `db:"id" json:"id"`
	TeacherID string        `db:"teacher_id" json:"teacher_id"`
	LeaveType LeaveType     `db:"leave_type" json:"leave_type"`
	StartDate time.Time     `db:"start_date" json:"start_date"`
	EndDate   time.Time     `db:"end_date" json:"end_date"`
	Status    AbsenceStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// Covers reports whether the absence spans the given calendar date.
func (a *TeacherAbsence) Covers(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(a.StartDate.Truncate(24*time.Hour)) && !d.After(a.EndDate.Truncate(24*time.Hour))
}
