package models

import "time"

// Subject is a taught discipline referenced by requirements and slots.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SubjectRequirement binds a subject and its teacher to a class with a weekly quota.
type SubjectRequirement struct {
	ID                   string    `db:"id" json:"id"`
	ClassID              string    `db:"class_id" json:"class_id" validate:"required"`
	SubjectID            string    `db:"subject_id" json:"subject_id" validate:"required"`
	TeacherID            string    `db:"teacher_id" json:"teacher_id" validate:"required"`
	PeriodsPerWeek       int       `db:"periods_per_week" json:"periods_per_week" validate:"required,min=1"`
	RequiresDoublePeriod bool      `db:"requires_double_period" json:"requires_double_period"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}
