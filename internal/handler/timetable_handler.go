package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	"github.com/arka-edu/timetable-api/internal/service"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
	"github.com/arka-edu/timetable-api/pkg/response"
)

type timetableReader interface {
	GetBaseSlots(ctx context.Context, classID, termID string) ([]models.TimetableSlot, error)
	GetEffectiveSlots(ctx context.Context, classID, termID string, date time.Time) ([]models.TimetableSlot, error)
	ApplyOverride(ctx context.Context, slotID string, date time.Time, teacherID string) (*models.TimetableSlot, error)
	RemoveOverride(ctx context.Context, slotID string, date time.Time) error
	UpsertSlot(ctx context.Context, req dto.UpsertSlotRequest) (*models.TimetableSlot, error)
	ExportWeek(ctx context.Context, classID, termID, format string) ([]byte, string, error)
}

// TimetableHandler exposes the timetable store: base and effective views,
// manual slot edits, and dated overrides.
type TimetableHandler struct {
	timetable timetableReader
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetable: svc}
}

// Slots godoc
// @Summary Get a class timetable
// @Description Without a date, returns the standing weekly pattern. With a date, returns the effective view for that day including substitutions.
// @Tags Timetable
// @Produce json
// @Param classId path string true "Class ID"
// @Param termId query string true "Term ID"
// @Param date query string false "Effective date (YYYY-MM-DD)"
// @Param day query int false "Filter to one day of week (1=Monday..5=Friday)"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/timetable [get]
func (h *TimetableHandler) Slots(c *gin.Context) {
	classID := c.Param("classId")
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId is required"))
		return
	}

	day := 0
	if raw := c.Query("day"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 5 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day must be between 1 and 5"))
			return
		}
		day = parsed
	}

	var slots []models.TimetableSlot
	var err error
	if raw := c.Query("date"); raw != "" {
		date, parseErr := time.Parse("2006-01-02", raw)
		if parseErr != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
			return
		}
		slots, err = h.timetable.GetEffectiveSlots(c.Request.Context(), classID, termID, date)
	} else {
		slots, err = h.timetable.GetBaseSlots(c.Request.Context(), classID, termID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	if day > 0 {
		filtered := slots[:0]
		for _, slot := range slots {
			if slot.Day == day {
				filtered = append(filtered, slot)
			}
		}
		slots = filtered
	}
	response.JSON(c, http.StatusOK, toSlotViews(slots), nil)
}

// UpsertSlot godoc
// @Summary Manually create or replace one base slot
// @Description Admin edit bypassing the generator. The slot must still satisfy timetable invariants, including no teacher double-booking across classes.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.UpsertSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/slots [post]
func (h *TimetableHandler) UpsertSlot(c *gin.Context) {
	var req dto.UpsertSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	slot, err := h.timetable.UpsertSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toSlotViews([]models.TimetableSlot{*slot})[0], nil)
}

// ApplyOverride godoc
// @Summary Apply a dated substitution to a slot
// @Description Idempotent for the same teacher; a different teacher on the same slot and date conflicts.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.OverrideRequest true "Override payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/overrides [post]
func (h *TimetableHandler) ApplyOverride(c *gin.Context) {
	var req dto.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid override payload"))
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}
	slot, err := h.timetable.ApplyOverride(c.Request.Context(), req.SlotID, date, req.TeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toSlotViews([]models.TimetableSlot{*slot})[0], nil)
}

// RemoveOverride godoc
// @Summary Remove a dated substitution
// @Tags Timetable
// @Produce json
// @Param slotId path string true "Base slot ID"
// @Param date query string true "Override date (YYYY-MM-DD)"
// @Success 204
// @Router /timetable/overrides/{slotId} [delete]
func (h *TimetableHandler) RemoveOverride(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}
	if err := h.timetable.RemoveOverride(c.Request.Context(), c.Param("slotId"), date); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a class timetable as CSV or PDF
// @Tags Timetable
// @Produce octet-stream
// @Param classId path string true "Class ID"
// @Param termId query string true "Term ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200
// @Router /classes/{classId}/timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	classID := c.Param("classId")
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId is required"))
		return
	}
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.timetable.ExportWeek(c.Request.Context(), classID, termID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=timetable-"+classID+"."+format)
	c.Data(http.StatusOK, contentType, payload)
}
