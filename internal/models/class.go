package models

import "time"

// ClassSection identifies one grade/section pairing owning a weekly timetable.
type ClassSection struct {
	ID        string    `db:"id" json:"id"`
	Grade     int       `db:"grade" json:"grade"`
	Section   string    `db:"section" json:"section"`
	TermID    string    `db:"term_id" json:"term_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
