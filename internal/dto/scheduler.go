package dto

// GenerateRequest triggers timetable generation for a term, optionally scoped
// to a single class.
type GenerateRequest struct {
	TermID  string `json:"termId" binding:"required" validate:"required"`
	ClassID string `json:"classId" validate:"omitempty"`
}

// SlotView is the wire shape for a generated or stored slot.
type SlotView struct {
	SlotID       string `json:"slotId,omitempty"`
	Day          int    `json:"dayOfWeek"`
	Period       int    `json:"period"`
	Kind         string `json:"kind"`
	SubjectID    string `json:"subjectId,omitempty"`
	TeacherID    string `json:"teacherId,omitempty"`
	DoublePeriod bool   `json:"doublePeriod,omitempty"`
	OverrideDate string `json:"overrideDate,omitempty"`
}

// GenerateClassResult reports the outcome for one class.
type GenerateClassResult struct {
	ClassID string     `json:"classId"`
	Slots   []SlotView `json:"slots,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// GenerateBatchResponse aggregates per-class results for a whole-term run.
type GenerateBatchResponse struct {
	TermID  string               `json:"termId"`
	Success []string             `json:"success"`
	Failed  []GenerateFailure    `json:"failed"`
	Classes []GenerateClassResult `json:"classes,omitempty"`
}

// GenerateFailure names the class that could not be scheduled and why.
type GenerateFailure struct {
	ClassID string `json:"classId"`
	Reason  string `json:"reason"`
}
