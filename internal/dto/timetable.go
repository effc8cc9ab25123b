package dto

// UpsertSlotRequest is the manual admin slot edit bypassing the generator.
// It must still satisfy the timetable invariants.
type UpsertSlotRequest struct {
	ClassID      string `json:"classId" binding:"required" validate:"required"`
	TermID       string `json:"termId" binding:"required" validate:"required"`
	Day          int    `json:"dayOfWeek" binding:"required" validate:"required,min=1,max=5"`
	Period       int    `json:"period" binding:"required" validate:"required,min=1,max=8"`
	Kind         string `json:"kind" validate:"omitempty,oneof=PERIOD ASSEMBLY BREAK ANTHEM"`
	SubjectID    string `json:"subjectId"`
	TeacherID    string `json:"teacherId"`
	DoublePeriod bool   `json:"doublePeriod"`
}

// OverrideRequest applies a dated substitution to an existing slot.
type OverrideRequest struct {
	SlotID    string `json:"slotId" binding:"required" validate:"required"`
	Date      string `json:"date" binding:"required" validate:"required,datetime=2006-01-02"`
	TeacherID string `json:"teacherId" binding:"required" validate:"required"`
}
