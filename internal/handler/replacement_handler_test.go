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

type resolverMock struct {
	accepted  string
	declined  string
	reason    string
	cancelled string
	err       error
}

func (m *resolverMock) HandleAbsence(_ context.Context, req dto.AbsenceRequest) (*models.TeacherAbsence, []models.ReplacementWorkflow, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return &models.TeacherAbsence{ID: "absence-1", TeacherID: req.TeacherID},
		[]models.ReplacementWorkflow{{ID: "wf-1"}}, nil
}

func (m *resolverMock) CancelAbsence(_ context.Context, absenceID string) error {
	m.cancelled = absenceID
	return m.err
}

func (m *resolverMock) AcceptOffer(_ context.Context, offerID string) (*models.ReplacementOffer, error) {
	m.accepted = offerID
	if m.err != nil {
		return nil, m.err
	}
	return &models.ReplacementOffer{ID: offerID, Status: models.OfferStatusAccepted, OfferedAt: time.Now()}, nil
}

func (m *resolverMock) DeclineOffer(_ context.Context, offerID, reason string) (*models.ReplacementOffer, error) {
	m.declined = offerID
	m.reason = reason
	if m.err != nil {
		return nil, m.err
	}
	return &models.ReplacementOffer{ID: offerID, Status: models.OfferStatusDeclined, OfferedAt: time.Now()}, nil
}

func (m *resolverMock) ListWorkflows(_ context.Context, _ models.ReplacementWorkflowFilter) ([]dto.WorkflowView, *models.Pagination, error) {
	return []dto.WorkflowView{{ID: "wf-1", Status: "OFFERING"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func offerRequest(t *testing.T, h gin.HandlerFunc, offerID string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/offers/"+offerID, nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: offerID}}
	h(c)
	return w
}

func TestReplacementHandlerReportAbsence(t *testing.T) {
	mockSvc := &resolverMock{}
	h := &ReplacementHandler{resolver: mockSvc}

	w := postJSON(t, h.ReportAbsence, "/absences",
		[]byte(`{"teacherId":"teacher-1","startDate":"2026-06-01","endDate":"2026-06-02"}`))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "absence-1")
}

func TestReplacementHandlerReportAbsenceValidation(t *testing.T) {
	h := &ReplacementHandler{resolver: &resolverMock{}}

	w := postJSON(t, h.ReportAbsence, "/absences", []byte(`{"teacherId":"teacher-1"}`))

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReplacementHandlerAcceptOffer(t *testing.T) {
	mockSvc := &resolverMock{}
	h := &ReplacementHandler{resolver: mockSvc}

	w := offerRequest(t, h.AcceptOffer, "offer-1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "offer-1", mockSvc.accepted)
}

func TestReplacementHandlerAcceptResolvedOffer(t *testing.T) {
	mockSvc := &resolverMock{err: appErrors.Clone(appErrors.ErrOfferResolved, "")}
	h := &ReplacementHandler{resolver: mockSvc}

	w := offerRequest(t, h.AcceptOffer, "offer-1")

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "OFFER_ALREADY_RESOLVED")
}

func TestReplacementHandlerDeclineOfferWithoutBody(t *testing.T) {
	mockSvc := &resolverMock{}
	h := &ReplacementHandler{resolver: mockSvc}

	w := offerRequest(t, h.DeclineOffer, "offer-2")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "offer-2", mockSvc.declined)
}

func TestReplacementHandlerRevokeAbsence(t *testing.T) {
	mockSvc := &resolverMock{}
	h := &ReplacementHandler{resolver: mockSvc}

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/absences/absence-1/revoke", nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "absence-1"}}
	h.RevokeAbsence(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "absence-1", mockSvc.cancelled)
}

func TestReplacementHandlerListWorkflows(t *testing.T) {
	h := &ReplacementHandler{resolver: &resolverMock{}}

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/replacements?status=OFFERING", nil)
	require.NoError(t, err)
	c.Request = req
	h.ListWorkflows(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wf-1")
}
