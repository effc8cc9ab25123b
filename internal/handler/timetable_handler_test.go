package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
)

type timetableMock struct {
	baseCalls      int
	effectiveCalls int
	effectiveDate  time.Time
	overrideErr    error
}

func (m *timetableMock) GetBaseSlots(_ context.Context, classID, termID string) ([]models.TimetableSlot, error) {
	m.baseCalls++
	subject := "math"
	teacher := "teacher-1"
	return []models.TimetableSlot{
		{ID: "slot-1", ClassID: classID, TermID: termID, Day: 1, Period: 2, Kind: models.SlotKindPeriod, SubjectID: &subject, TeacherID: &teacher},
		{ID: "slot-2", ClassID: classID, TermID: termID, Day: 2, Period: 2, Kind: models.SlotKindPeriod, SubjectID: &subject, TeacherID: &teacher},
	}, nil
}

func (m *timetableMock) GetEffectiveSlots(_ context.Context, classID, termID string, date time.Time) ([]models.TimetableSlot, error) {
	m.effectiveCalls++
	m.effectiveDate = date
	sub := "sub-1"
	subject := "math"
	return []models.TimetableSlot{
		{ID: "override-1", ClassID: classID, TermID: termID, Day: 1, Period: 2, Kind: models.SlotKindPeriod, SubjectID: &subject, TeacherID: &sub},
	}, nil
}

func (m *timetableMock) ApplyOverride(_ context.Context, slotID string, date time.Time, teacherID string) (*models.TimetableSlot, error) {
	if m.overrideErr != nil {
		return nil, m.overrideErr
	}
	return &models.TimetableSlot{ID: "override-1", Day: 1, Period: 2, Kind: models.SlotKindPeriod, TeacherID: &teacherID, OverrideDate: &date}, nil
}

func (m *timetableMock) RemoveOverride(_ context.Context, _ string, _ time.Time) error { return nil }

func (m *timetableMock) UpsertSlot(_ context.Context, _ dto.UpsertSlotRequest) (*models.TimetableSlot, error) {
	return &models.TimetableSlot{ID: "slot-1", Day: 1, Period: 2, Kind: models.SlotKindPeriod}, nil
}

func (m *timetableMock) ExportWeek(_ context.Context, _, _, _ string) ([]byte, string, error) {
	return []byte("DAY,P1\n"), "text/csv", nil
}

func getRequest(t *testing.T, h gin.HandlerFunc, target, classID string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "classId", Value: classID}}
	h(c)
	return w
}

func TestTimetableHandlerSlotsBaseView(t *testing.T) {
	mockSvc := &timetableMock{}
	h := &TimetableHandler{timetable: mockSvc}

	w := getRequest(t, h.Slots, "/classes/class-8a/timetable?termId=term-1", "class-8a")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, mockSvc.baseCalls)
	assert.Zero(t, mockSvc.effectiveCalls)
	assert.Contains(t, w.Body.String(), "slot-1")
	assert.Contains(t, w.Body.String(), "slot-2")
}

func TestTimetableHandlerSlotsEffectiveView(t *testing.T) {
	mockSvc := &timetableMock{}
	h := &TimetableHandler{timetable: mockSvc}

	w := getRequest(t, h.Slots, "/classes/class-8a/timetable?termId=term-1&date=2026-06-01", "class-8a")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, mockSvc.effectiveCalls)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), mockSvc.effectiveDate)
	assert.Contains(t, w.Body.String(), "sub-1")
}

func TestTimetableHandlerSlotsDayFilter(t *testing.T) {
	h := &TimetableHandler{timetable: &timetableMock{}}

	w := getRequest(t, h.Slots, "/classes/class-8a/timetable?termId=term-1&day=2", "class-8a")

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "slot-1")
	assert.Contains(t, w.Body.String(), "slot-2")
}

func TestTimetableHandlerSlotsInvalidDay(t *testing.T) {
	h := &TimetableHandler{timetable: &timetableMock{}}

	w := getRequest(t, h.Slots, "/classes/class-8a/timetable?termId=term-1&day=6", "class-8a")

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerSlotsMissingTerm(t *testing.T) {
	h := &TimetableHandler{timetable: &timetableMock{}}

	w := getRequest(t, h.Slots, "/classes/class-8a/timetable", "class-8a")

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerApplyOverrideConflict(t *testing.T) {
	mockSvc := &timetableMock{overrideErr: appErrors.Clone(appErrors.ErrOverrideConflict, "slot already covered by another teacher")}
	h := &TimetableHandler{timetable: mockSvc}

	w := postJSON(t, h.ApplyOverride, "/timetable/overrides",
		[]byte(`{"slotId":"slot-1","date":"2026-06-01","teacherId":"sub-2"}`))

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "OVERRIDE_CONFLICT")
}

func TestTimetableHandlerExport(t *testing.T) {
	h := &TimetableHandler{timetable: &timetableMock{}}

	w := getRequest(t, h.Export, "/classes/class-8a/timetable/export?termId=term-1&format=csv", "class-8a")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "class-8a")
}
