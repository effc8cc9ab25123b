package models

import (
	"time"

	"github.com/lib/pq"
)

// TeacherProfile stores roster identity plus capacity and substitution eligibility.
type TeacherProfile struct {
	ID                string         `db:"id" json:"id"`
	Name              string         `db:"name" json:"name"`
	SubjectIDs        pq.StringArray `db:"subject_ids" json:"subject_ids"`
	GeneralSubstitute bool           `db:"general_substitute" json:"general_substitute"`
	MaxLoadPerDay     int            `db:"max_load_per_day" json:"max_load_per_day"`
	MaxLoadPerWeek    int            `db:"max_load_per_week" json:"max_load_per_week"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// TeachesSubject reports whether the teacher is rostered for the subject.
func (t *TeacherProfile) TeachesSubject(subjectID string) bool {
	for _, id := range t.SubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}
