package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
)

type generatorTermReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type generatorClassReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassSection, error)
	ListByTerm(ctx context.Context, termID string) ([]models.ClassSection, error)
}

type requirementFetcher interface {
	ListByClass(ctx context.Context, classID string) ([]models.SubjectRequirement, error)
}

type generatorTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.TeacherProfile, error)
}

type generatorSlotWriter interface {
	ListBaseByTeacher(ctx context.Context, teacherID, termID string) ([]models.TimetableSlot, error)
	ReplaceBaseSlots(ctx context.Context, classID, termID string, slots []models.TimetableSlot) error
}

type absenceLedgerReader interface {
	ListActiveByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]models.TeacherAbsence, error)
}

type effectiveViewInvalidator interface {
	InvalidateEffective(ctx context.Context, classID string)
}

// GeneratorConfig tunes the backtracking search. Defaults are applied by
// NewGeneratorService and documented in the package tests.
type GeneratorConfig struct {
	BacktrackLimit int
	Parallelism    int
}

// GeneratorService builds conflict-free weekly timetables per class using
// constraint propagation with bounded backtracking.
type GeneratorService struct {
	terms        generatorTermReader
	classes      generatorClassReader
	requirements requirementFetcher
	teachers     generatorTeacherReader
	slots        generatorSlotWriter
	absences     absenceLedgerReader
	views        effectiveViewInvalidator
	catalog      *SlotCatalog
	cfg          GeneratorConfig
	validator    *validator.Validate
	logger       *zap.Logger
	metrics      *MetricsService
}

// NewGeneratorService wires generator dependencies.
func NewGeneratorService(
	terms generatorTermReader,
	classes generatorClassReader,
	requirements requirementFetcher,
	teachers generatorTeacherReader,
	slots generatorSlotWriter,
	absences absenceLedgerReader,
	views effectiveViewInvalidator,
	catalog *SlotCatalog,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cfg GeneratorConfig,
) *GeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = NewSlotCatalog()
	}
	if cfg.BacktrackLimit <= 0 {
		cfg.BacktrackLimit = 200
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	return &GeneratorService{
		terms:        terms,
		classes:      classes,
		requirements: requirements,
		teachers:     teachers,
		slots:        slots,
		absences:     absences,
		views:        views,
		catalog:      catalog,
		cfg:          cfg,
		validator:    validate,
		logger:       logger,
		metrics:      metrics,
	}
}

// GenerateForClass produces and atomically commits the full base pattern for
// one class, or returns an infeasible-schedule error naming the unplaceable
// subject. Nothing is written on failure.
func (s *GeneratorService) GenerateForClass(ctx context.Context, termID, classID string) ([]models.TimetableSlot, error) {
	term, err := s.loadTerm(ctx, termID)
	if err != nil {
		return nil, err
	}
	class, err := s.loadClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.TermID != term.ID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class does not belong to the requested term")
	}

	slots, err := s.solveClass(ctx, term, class)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordGeneration(false)
		}
		return nil, err
	}
	if err := s.slots.ReplaceBaseSlots(ctx, class.ID, term.ID, slots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit base slots")
	}
	if s.views != nil {
		s.views.InvalidateEffective(ctx, class.ID)
	}
	if s.metrics != nil {
		s.metrics.RecordGeneration(true)
	}
	s.logger.Info("timetable generated",
		zap.String("class_id", class.ID),
		zap.String("term_id", term.ID),
		zap.Int("slots", len(slots)))
	return slots, nil
}

// GenerateForAllClasses runs generation for every class of a term in ascending
// grade/section order. Classes that share no teachers are solved concurrently
// on private grids; commits happen in class order so the batch stays
// deterministic. A single class's infeasibility never aborts the batch.
func (s *GeneratorService) GenerateForAllClasses(ctx context.Context, termID string) (*dto.GenerateBatchResponse, error) {
	term, err := s.loadTerm(ctx, termID)
	if err != nil {
		return nil, err
	}
	classes, err := s.classes.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	if len(classes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "term has no class sections")
	}

	resp := &dto.GenerateBatchResponse{TermID: termID, Success: []string{}, Failed: []dto.GenerateFailure{}}

	waves, prepErr := s.planWaves(ctx, classes)
	if prepErr != nil {
		return nil, prepErr
	}

	for _, wave := range waves {
		type waveResult struct {
			class models.ClassSection
			slots []models.TimetableSlot
			err   error
		}
		results := make([]waveResult, len(wave))

		var wg sync.WaitGroup
		sem := make(chan struct{}, s.cfg.Parallelism)
		for i, class := range wave {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, class models.ClassSection) {
				defer wg.Done()
				defer func() { <-sem }()
				slots, err := s.solveClass(ctx, term, &class)
				results[i] = waveResult{class: class, slots: slots, err: err}
			}(i, class)
		}
		wg.Wait()

		// Commit sequentially in class order; each commit is one transaction.
		for _, res := range results {
			if res.err != nil {
				if s.metrics != nil {
					s.metrics.RecordGeneration(false)
				}
				resp.Failed = append(resp.Failed, dto.GenerateFailure{ClassID: res.class.ID, Reason: appErrors.FromError(res.err).Message})
				resp.Classes = append(resp.Classes, dto.GenerateClassResult{ClassID: res.class.ID, Error: appErrors.FromError(res.err).Message})
				continue
			}
			if err := s.slots.ReplaceBaseSlots(ctx, res.class.ID, term.ID, res.slots); err != nil {
				resp.Failed = append(resp.Failed, dto.GenerateFailure{ClassID: res.class.ID, Reason: "failed to commit base slots"})
				s.logger.Error("base slot commit failed", zap.String("class_id", res.class.ID), zap.Error(err))
				continue
			}
			if s.views != nil {
				s.views.InvalidateEffective(ctx, res.class.ID)
			}
			if s.metrics != nil {
				s.metrics.RecordGeneration(true)
			}
			resp.Success = append(resp.Success, res.class.ID)
			resp.Classes = append(resp.Classes, dto.GenerateClassResult{ClassID: res.class.ID, Slots: slotViews(res.slots)})
		}
	}
	return resp, nil
}

// planWaves partitions classes so no two classes within a wave share a
// teacher. Wave membership is decided greedily in class order, keeping the
// overall batch deterministic while still allowing safe parallel search.
func (s *GeneratorService) planWaves(ctx context.Context, classes []models.ClassSection) ([][]models.ClassSection, error) {
	teacherSets := make([]map[string]bool, len(classes))
	for i, class := range classes {
		reqs, err := s.requirements.ListByClass(ctx, class.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject requirements")
		}
		set := make(map[string]bool, len(reqs))
		for _, req := range reqs {
			set[req.TeacherID] = true
		}
		teacherSets[i] = set
	}

	var waves [][]models.ClassSection
	waveTeachers := []map[string]bool{}
	for i, class := range classes {
		placed := false
		for w := range waves {
			if !overlaps(waveTeachers[w], teacherSets[i]) {
				waves[w] = append(waves[w], class)
				for t := range teacherSets[i] {
					waveTeachers[w][t] = true
				}
				placed = true
				break
			}
		}
		if !placed {
			waves = append(waves, []models.ClassSection{class})
			merged := make(map[string]bool, len(teacherSets[i]))
			for t := range teacherSets[i] {
				merged[t] = true
			}
			waveTeachers = append(waveTeachers, merged)
		}
	}
	return waves, nil
}

func overlaps(a, b map[string]bool) bool {
	for t := range b {
		if a[t] {
			return true
		}
	}
	return false
}

// solveClass runs the backtracking search for one class on a private grid and
// returns the full base pattern (fixed slots included) without committing it.
func (s *GeneratorService) solveClass(ctx context.Context, term *models.Term, class *models.ClassSection) ([]models.TimetableSlot, error) {
	reqs, err := s.requirements.ListByClass(ctx, class.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject requirements")
	}
	if len(reqs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no subject requirements defined for this class")
	}

	totalDemand := 0
	for _, req := range reqs {
		if err := s.validator.Struct(req); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("malformed requirement for subject %s", req.SubjectID))
		}
		if req.RequiresDoublePeriod && req.PeriodsPerWeek < 2 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %s requires a double period but has quota < 2", req.SubjectID))
		}
		totalDemand += req.PeriodsPerWeek
	}
	if totalDemand > s.catalog.AcademicSlotCount() {
		return nil, appErrors.Clone(appErrors.ErrInfeasibleSchedule,
			fmt.Sprintf("weekly quota %d exceeds %d available academic periods", totalDemand, s.catalog.AcademicSlotCount()))
	}

	ledgers, err := s.buildLedgers(ctx, term, class, reqs)
	if err != nil {
		return nil, err
	}

	search := newClassSearch(s.catalog, reqs, ledgers, s.cfg.BacktrackLimit)
	placements, failedSubject, ok := search.run()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInfeasibleSchedule,
			fmt.Sprintf("unable to place subject %s within backtracking budget", failedSubject))
	}

	slots := make([]models.TimetableSlot, 0, len(s.catalog.Slots()))
	for _, cell := range s.catalog.Slots() {
		if cell.Kind != models.SlotKindPeriod {
			slots = append(slots, models.TimetableSlot{
				ClassID: class.ID,
				TermID:  term.ID,
				Day:     cell.Day,
				Period:  cell.Period,
				Kind:    cell.Kind,
			})
			continue
		}
		if p, ok := placements[[2]int{cell.Day, cell.Period}]; ok {
			subjectID := p.SubjectID
			teacherID := p.TeacherID
			slots = append(slots, models.TimetableSlot{
				ClassID:      class.ID,
				TermID:       term.ID,
				Day:          cell.Day,
				Period:       cell.Period,
				Kind:         models.SlotKindPeriod,
				SubjectID:    &subjectID,
				TeacherID:    &teacherID,
				DoublePeriod: p.Double,
			})
		}
	}
	return slots, nil
}

// buildLedgers derives each teacher's availability: base slots held in other
// classes block their cells, and a leave spanning the whole term blocks the
// teacher entirely. Short absences are covered by the replacement workflow,
// not the weekly pattern.
func (s *GeneratorService) buildLedgers(ctx context.Context, term *models.Term, class *models.ClassSection, reqs []models.SubjectRequirement) (map[string]*teacherLedger, error) {
	teacherIDs := make([]string, 0, len(reqs))
	seen := map[string]bool{}
	for _, req := range reqs {
		if !seen[req.TeacherID] {
			seen[req.TeacherID] = true
			teacherIDs = append(teacherIDs, req.TeacherID)
		}
	}
	sort.Strings(teacherIDs)

	ledgers := make(map[string]*teacherLedger, len(teacherIDs))
	for _, teacherID := range teacherIDs {
		ledger := newTeacherLedger()

		profile, err := s.teachers.FindByID(ctx, teacherID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("teacher %s not found", teacherID))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
		}
		ledger.MaxLoadPerDay = profile.MaxLoadPerDay
		ledger.MaxLoadPerWeek = profile.MaxLoadPerWeek

		existing, err := s.slots.ListBaseByTeacher(ctx, teacherID, term.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher base slots")
		}
		for _, slot := range existing {
			if slot.ClassID == class.ID {
				continue
			}
			ledger.Block(slot.Day, slot.Period)
		}

		if s.absences != nil {
			leaves, err := s.absences.ListActiveByTeacher(ctx, teacherID, term.StartDate, term.EndDate)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher absences")
			}
			for _, leave := range leaves {
				if !leave.StartDate.After(term.StartDate) && !leave.EndDate.Before(term.EndDate) {
					for day := 1; day <= daysPerWeek; day++ {
						for period := 1; period <= periodsPerDay; period++ {
							ledger.Block(day, period)
						}
					}
				}
			}
		}
		ledgers[teacherID] = ledger
	}
	return ledgers, nil
}

func (s *GeneratorService) loadTerm(ctx context.Context, termID string) (*models.Term, error) {
	if termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "termId is required")
	}
	term, err := s.terms.FindByID(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}

func (s *GeneratorService) loadClass(ctx context.Context, classID string) (*models.ClassSection, error) {
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classId is required")
	}
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

func slotViews(slots []models.TimetableSlot) []dto.SlotView {
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
