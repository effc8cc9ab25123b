package models

import "time"

// SlotKind distinguishes academic periods from fixed non-teaching slots.
type SlotKind string

const (
	SlotKindPeriod   SlotKind = "PERIOD"
	SlotKindAssembly SlotKind = "ASSEMBLY"
	SlotKindBreak    SlotKind = "BREAK"
	SlotKindAnthem   SlotKind = "ANTHEM"
)

// TimetableSlot is one cell of the weekly grid. Base slots carry a NULL
// override_date and describe the standing pattern; override slots substitute a
// teacher for a single calendar date and win over the base pattern when
// querying that date.
type TimetableSlot struct {
	ID           string     `db:"id" json:"id"`
	ClassID      string     `db:"class_id" json:"class_id"`
	TermID       string     `db:"term_id" json:"term_id"`
	Day          int        `db:"day_of_week" json:"day_of_week"`
	Period       int        `db:"period" json:"period"`
	Kind         SlotKind   `db:"kind" json:"kind"`
	SubjectID    *string    `db:"subject_id" json:"subject_id,omitempty"`
	TeacherID    *string    `db:"teacher_id" json:"teacher_id,omitempty"`
	DoublePeriod bool       `db:"double_period" json:"double_period"`
	OverrideDate *time.Time `db:"override_date" json:"override_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// IsBase reports whether the slot belongs to the standing weekly pattern.
func (s *TimetableSlot) IsBase() bool {
	return s.OverrideDate == nil
}

// SlotFilter constrains slot listings.
type SlotFilter struct {
	TermID  string
	ClassID string
	Day     int
}
