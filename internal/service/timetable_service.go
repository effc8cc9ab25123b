package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
	"github.com/arka-edu/timetable-api/pkg/export"
)

type timetableSlotStore interface {
	FindByID(ctx context.Context, id string) (*models.TimetableSlot, error)
	ListBase(ctx context.Context, classID, termID string) ([]models.TimetableSlot, error)
	ListOverridesForDate(ctx context.Context, classID string, date time.Time) ([]models.TimetableSlot, error)
	FindOverride(ctx context.Context, baseSlot *models.TimetableSlot, date time.Time) (*models.TimetableSlot, error)
	InsertOverride(ctx context.Context, slot *models.TimetableSlot) error
	DeleteOverride(ctx context.Context, id string) error
	UpsertBase(ctx context.Context, slot *models.TimetableSlot) error
	FindBaseConflict(ctx context.Context, termID, teacherID string, day, period int, excludeClassID string) (*models.TimetableSlot, error)
}

// TimetableService is the single source of truth over the slot store: base
// pattern reads, date-effective reads with override overlay, override writes
// for the replacement workflow, and manual admin edits.
type TimetableService struct {
	slots   timetableSlotStore
	cache   *CacheService
	catalog *SlotCatalog
	logger  *zap.Logger
}

// NewTimetableService constructs the store facade.
func NewTimetableService(slots timetableSlotStore, cache *CacheService, catalog *SlotCatalog, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = NewSlotCatalog()
	}
	return &TimetableService{slots: slots, cache: cache, catalog: catalog, logger: logger}
}

// GetBaseSlots returns the standing weekly pattern for a class.
func (s *TimetableService) GetBaseSlots(ctx context.Context, classID, termID string) ([]models.TimetableSlot, error) {
	if classID == "" || termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classId and termId are required")
	}
	slots, err := s.slots.ListBase(ctx, classID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list base slots")
	}
	return slots, nil
}

// GetEffectiveSlots returns the day's slots for a concrete calendar date with
// dated overrides layered over the base pattern. The base pattern itself is
// never mutated by overrides.
func (s *TimetableService) GetEffectiveSlots(ctx context.Context, classID, termID string, date time.Time) ([]models.TimetableSlot, error) {
	if classID == "" || termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classId and termId are required")
	}
	day := DayOfDate(date)
	if day == 0 {
		return []models.TimetableSlot{}, nil
	}

	cacheKey := fmt.Sprintf("timetable:effective:%s:%s", classID, date.Format("2006-01-02"))
	var cached []models.TimetableSlot
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	base, err := s.slots.ListBase(ctx, classID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list base slots")
	}
	overrides, err := s.slots.ListOverridesForDate(ctx, classID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list overrides")
	}

	overrideByCell := make(map[int]models.TimetableSlot, len(overrides))
	for _, o := range overrides {
		overrideByCell[o.Period] = o
	}

	effective := make([]models.TimetableSlot, 0, periodsPerDay)
	for _, slot := range base {
		if slot.Day != day {
			continue
		}
		if o, ok := overrideByCell[slot.Period]; ok {
			effective = append(effective, o)
			continue
		}
		effective = append(effective, slot)
	}
	sort.Slice(effective, func(i, j int) bool { return effective[i].Period < effective[j].Period })

	_ = s.cache.Set(ctx, cacheKey, effective, 0)
	return effective, nil
}

// ApplyOverride writes a dated substitution for a base slot. Reapplying the
// identical override is a no-op; a different teacher for the same slot/date is
// rejected and left for the admin to resolve.
func (s *TimetableService) ApplyOverride(ctx context.Context, slotID string, date time.Time, teacherID string) (*models.TimetableSlot, error) {
	if slotID == "" || teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slotId and teacherId are required")
	}
	base, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	if !base.IsBase() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "overrides must target a base slot")
	}
	if base.Kind != models.SlotKindPeriod {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fixed slots cannot be overridden")
	}

	existing, err := s.slots.FindOverride(ctx, base, date)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing override")
	}
	if existing != nil {
		if existing.TeacherID != nil && *existing.TeacherID == teacherID {
			return existing, nil
		}
		return nil, appErrors.Clone(appErrors.ErrOverrideConflict,
			fmt.Sprintf("slot %s already overridden for %s", slotID, date.Format("2006-01-02")))
	}

	d := date
	override := &models.TimetableSlot{
		ClassID:      base.ClassID,
		TermID:       base.TermID,
		Day:          base.Day,
		Period:       base.Period,
		Kind:         base.Kind,
		SubjectID:    base.SubjectID,
		TeacherID:    &teacherID,
		DoublePeriod: base.DoublePeriod,
		OverrideDate: &d,
	}
	if err := s.slots.InsertOverride(ctx, override); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write override")
	}
	s.invalidate(ctx, base.ClassID)
	s.logger.Info("override applied",
		zap.String("slot_id", slotID),
		zap.String("date", date.Format("2006-01-02")),
		zap.String("teacher_id", teacherID))
	return override, nil
}

// RemoveOverride deletes a dated override, compensating a revoked absence.
func (s *TimetableService) RemoveOverride(ctx context.Context, slotID string, date time.Time) error {
	base, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	override, err := s.slots.FindOverride(ctx, base, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load override")
	}
	if err := s.slots.DeleteOverride(ctx, override.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete override")
	}
	s.invalidate(ctx, base.ClassID)
	return nil
}

// UpsertSlot performs a manual admin edit on the base pattern, bypassing the
// generator but not the timetable invariants.
func (s *TimetableService) UpsertSlot(ctx context.Context, req dto.UpsertSlotRequest) (*models.TimetableSlot, error) {
	kind := models.SlotKind(req.Kind)
	if kind == "" {
		kind = models.SlotKindPeriod
	}

	slot := &models.TimetableSlot{
		ClassID:      req.ClassID,
		TermID:       req.TermID,
		Day:          req.Day,
		Period:       req.Period,
		Kind:         kind,
		DoublePeriod: req.DoublePeriod,
	}

	if kind == models.SlotKindPeriod {
		// A period slot carries subject and teacher together or not at all.
		if (req.SubjectID == "") != (req.TeacherID == "") {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subjectId and teacherId must both be set or both be empty")
		}
		if req.SubjectID != "" {
			slot.SubjectID = &req.SubjectID
			slot.TeacherID = &req.TeacherID
		}
	} else if req.SubjectID != "" || req.TeacherID != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fixed slots cannot carry subject or teacher")
	}

	if req.DoublePeriod {
		if !s.catalog.IsAcademic(req.Day, req.Period+1) && !s.catalog.IsAcademic(req.Day, req.Period-1) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "double period has no adjacent academic slot")
		}
	}

	if slot.TeacherID != nil {
		conflict, err := s.slots.FindBaseConflict(ctx, req.TermID, *slot.TeacherID, req.Day, req.Period, req.ClassID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher conflict")
		}
		if conflict != nil {
			return nil, appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("teacher %s already teaches class %s at day %d period %d", *slot.TeacherID, conflict.ClassID, req.Day, req.Period))
		}
	}

	if err := s.slots.UpsertBase(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert slot")
	}
	s.invalidate(ctx, req.ClassID)
	return slot, nil
}

// ExportWeek renders the base pattern as a CSV or PDF grid.
func (s *TimetableService) ExportWeek(ctx context.Context, classID, termID, format string) ([]byte, string, error) {
	slots, err := s.GetBaseSlots(ctx, classID, termID)
	if err != nil {
		return nil, "", err
	}

	dayNames := map[int]string{1: "MONDAY", 2: "TUESDAY", 3: "WEDNESDAY", 4: "THURSDAY", 5: "FRIDAY"}
	headers := []string{"Day"}
	for period := 1; period <= periodsPerDay; period++ {
		headers = append(headers, fmt.Sprintf("P%d", period))
	}

	rows := make([]map[string]string, 0, daysPerWeek)
	for day := 1; day <= daysPerWeek; day++ {
		row := map[string]string{"Day": dayNames[day]}
		for _, slot := range slots {
			if slot.Day != day {
				continue
			}
			cell := string(slot.Kind)
			if slot.Kind == models.SlotKindPeriod {
				if slot.SubjectID != nil && slot.TeacherID != nil {
					cell = fmt.Sprintf("%s (%s)", *slot.SubjectID, *slot.TeacherID)
				} else {
					cell = ""
				}
			}
			row[fmt.Sprintf("P%d", slot.Period)] = cell
		}
		rows = append(rows, row)
	}
	dataset := export.Dataset{Headers: headers, Rows: rows}

	switch format {
	case "pdf":
		payload, err := export.NewPDFExporter().Render(dataset, fmt.Sprintf("Weekly timetable %s", classID))
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	case "", "csv":
		payload, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// InvalidateEffective drops every cached effective view for a class. The
// generator calls this after committing a regenerated base pattern, since
// cached views built on the old pattern are stale immediately.
func (s *TimetableService) InvalidateEffective(ctx context.Context, classID string) {
	s.invalidate(ctx, classID)
}

func (s *TimetableService) invalidate(ctx context.Context, classID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("timetable:effective:%s:*", classID)); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("class_id", classID), zap.Error(err))
	}
}
