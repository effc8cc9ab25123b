package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	"github.com/arka-edu/timetable-api/internal/service"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
	"github.com/arka-edu/timetable-api/pkg/response"
)

type timetableGenerator interface {
	GenerateForClass(ctx context.Context, termID, classID string) ([]models.TimetableSlot, error)
	GenerateForAllClasses(ctx context.Context, termID string) (*dto.GenerateBatchResponse, error)
}

// SchedulerHandler exposes timetable generation endpoints.
type SchedulerHandler struct {
	generator timetableGenerator
}

// NewSchedulerHandler constructs the handler.
func NewSchedulerHandler(svc *service.GeneratorService) *SchedulerHandler {
	return &SchedulerHandler{generator: svc}
}

// Generate godoc
// @Summary Generate base timetables for a term
// @Description Runs constraint-based generation. With classId the run is scoped to one class; otherwise every class of the term is scheduled and per-class failures are reported without aborting the batch.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRequest true "Generate payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *SchedulerHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}

	if req.ClassID != "" {
		slots, err := h.generator.GenerateForClass(c.Request.Context(), req.TermID, req.ClassID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, dto.GenerateClassResult{ClassID: req.ClassID, Slots: toSlotViews(slots)}, nil)
		return
	}

	batch, err := h.generator.GenerateForAllClasses(c.Request.Context(), req.TermID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

func toSlotViews(slots []models.TimetableSlot) []dto.SlotView {
	views := make([]dto.SlotView, 0, len(slots))
	for _, slot := range slots {
		view := dto.SlotView{
			SlotID:       slot.ID,
			Day:          slot.Day,
			Period:       slot.Period,
			Kind:         string(slot.Kind),
			DoublePeriod: slot.DoublePeriod,
		}
		if slot.SubjectID != nil {
			view.SubjectID = *slot.SubjectID
		}
		if slot.TeacherID != nil {
			view.TeacherID = *slot.TeacherID
		}
		if slot.OverrideDate != nil {
			view.OverrideDate = slot.OverrideDate.Format("2006-01-02")
		}
		views = append(views, view)
	}
	return views
}
