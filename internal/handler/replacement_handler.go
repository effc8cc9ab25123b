package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	"github.com/arka-edu/timetable-api/internal/service"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
	"github.com/arka-edu/timetable-api/pkg/response"
)

type replacementResolver interface {
	HandleAbsence(ctx context.Context, req dto.AbsenceRequest) (*models.TeacherAbsence, []models.ReplacementWorkflow, error)
	CancelAbsence(ctx context.Context, absenceID string) error
	AcceptOffer(ctx context.Context, offerID string) (*models.ReplacementOffer, error)
	DeclineOffer(ctx context.Context, offerID, reason string) (*models.ReplacementOffer, error)
	ListWorkflows(ctx context.Context, filter models.ReplacementWorkflowFilter) ([]dto.WorkflowView, *models.Pagination, error)
}

// ReplacementHandler exposes the substitute assignment workflow.
type ReplacementHandler struct {
	resolver replacementResolver
}

// NewReplacementHandler constructs the handler.
func NewReplacementHandler(svc *service.ReplacementService) *ReplacementHandler {
	return &ReplacementHandler{resolver: svc}
}

// ReportAbsence godoc
// @Summary Report an approved teacher absence
// @Description Spawns one coverage workflow per affected slot and date, each immediately offering to its best-ranked substitute.
// @Tags Replacement
// @Accept json
// @Produce json
// @Param payload body dto.AbsenceRequest true "Absence payload"
// @Success 201 {object} response.Envelope
// @Router /absences [post]
func (h *ReplacementHandler) ReportAbsence(c *gin.Context) {
	var req dto.AbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid absence payload"))
		return
	}
	absence, workflows, err := h.resolver.HandleAbsence(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{
		"absenceId": absence.ID,
		"workflows": len(workflows),
	})
}

// RevokeAbsence godoc
// @Summary Revoke an absence and unwind its coverage
// @Description Cancels open offers and removes overrides already written for this absence.
// @Tags Replacement
// @Produce json
// @Param id path string true "Absence ID"
// @Success 204
// @Router /absences/{id}/revoke [post]
func (h *ReplacementHandler) RevokeAbsence(c *gin.Context) {
	if err := h.resolver.CancelAbsence(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListWorkflows godoc
// @Summary List coverage workflows
// @Tags Replacement
// @Produce json
// @Param absenceId query string false "Absence ID"
// @Param status query string false "Workflow status"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} response.Envelope
// @Router /replacements [get]
func (h *ReplacementHandler) ListWorkflows(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	filter := models.ReplacementWorkflowFilter{
		AbsenceID: c.Query("absenceId"),
		SlotID:    c.Query("slotId"),
		Status:    models.WorkflowStatus(c.Query("status")),
		Page:      page,
		PageSize:  pageSize,
	}
	views, pagination, err := h.resolver.ListWorkflows(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, pagination)
}

// AcceptOffer godoc
// @Summary Accept a replacement offer
// @Description First-accept-wins; a resolved offer reports a conflict.
// @Tags Replacement
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /offers/{id}/accept [post]
func (h *ReplacementHandler) AcceptOffer(c *gin.Context) {
	offer, err := h.resolver.AcceptOffer(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerView(offer), nil)
}

// DeclineOffer godoc
// @Summary Decline a replacement offer
// @Description Declining advances the workflow to the next ranked candidate.
// @Tags Replacement
// @Accept json
// @Produce json
// @Param id path string true "Offer ID"
// @Param payload body dto.DeclineOfferRequest false "Decline payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /offers/{id}/decline [post]
func (h *ReplacementHandler) DeclineOffer(c *gin.Context) {
	var req dto.DeclineOfferRequest
	_ = c.ShouldBindJSON(&req)
	offer, err := h.resolver.DeclineOffer(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerView(offer), nil)
}

func offerView(offer *models.ReplacementOffer) dto.OfferView {
	view := dto.OfferView{
		ID:                 offer.ID,
		SlotID:             offer.SlotID,
		Date:               offer.Date.Format("2006-01-02"),
		CandidateTeacherID: offer.CandidateTeacherID,
		Status:             string(offer.Status),
		OfferedAt:          offer.OfferedAt,
		ResolvedAt:         offer.ResolvedAt,
	}
	if offer.Reason != nil {
		view.Reason = *offer.Reason
	}
	return view
}
