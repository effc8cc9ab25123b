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
)

type replacementStore interface {
	CreateWorkflow(ctx context.Context, wf *models.ReplacementWorkflow) error
	FindWorkflowByID(ctx context.Context, id string) (*models.ReplacementWorkflow, error)
	UpdateWorkflow(ctx context.Context, id string, status models.WorkflowStatus, cursor int) error
	ListWorkflows(ctx context.Context, filter models.ReplacementWorkflowFilter) ([]models.ReplacementWorkflow, int, error)
	ListWorkflowsByAbsence(ctx context.Context, absenceID string) ([]models.ReplacementWorkflow, error)
	CreateOffer(ctx context.Context, offer *models.ReplacementOffer) error
	FindOfferByID(ctx context.Context, id string) (*models.ReplacementOffer, error)
	ResolveOffer(ctx context.Context, id string, status models.OfferStatus, reason *string) (bool, error)
	ReopenOffer(ctx context.Context, id string) error
	ListOffersByWorkflow(ctx context.Context, workflowID string) ([]models.ReplacementOffer, error)
	ListOpenOffersByTeacherDate(ctx context.Context, teacherID string, date time.Time) ([]models.ReplacementOffer, error)
	ListExpiredOffers(ctx context.Context, cutoff time.Time) ([]models.ReplacementOffer, error)
}

type absenceStore interface {
	Create(ctx context.Context, absence *models.TeacherAbsence) error
	FindByID(ctx context.Context, id string) (*models.TeacherAbsence, error)
	Revoke(ctx context.Context, id string) error
	ListActiveByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]models.TeacherAbsence, error)
}

type replacementSlotReader interface {
	FindByID(ctx context.Context, id string) (*models.TimetableSlot, error)
	FindBase(ctx context.Context, classID, termID string, day, period int) (*models.TimetableSlot, error)
	ListBaseByTeacher(ctx context.Context, teacherID, termID string) ([]models.TimetableSlot, error)
	ListOverridesByTeacherDate(ctx context.Context, teacherID string, date time.Time) ([]models.TimetableSlot, error)
}

type candidateSource interface {
	ListSubstituteCandidates(ctx context.Context, subjectID string) ([]models.TeacherProfile, error)
}

type overrideApplier interface {
	ApplyOverride(ctx context.Context, slotID string, date time.Time, teacherID string) (*models.TimetableSlot, error)
	RemoveOverride(ctx context.Context, slotID string, date time.Time) error
}

type activeTermReader interface {
	FindActive(ctx context.Context) (*models.Term, error)
}

// OfferSummary is the payload handed to the notification collaborator when a
// substitute offer goes out.
type OfferSummary struct {
	OfferID   string
	SlotID    string
	ClassID   string
	SubjectID string
	Date      time.Time
	Day       int
	Period    int
}

// Notifier is the external notification collaborator. Delivery transport is
// entirely outside the core.
type Notifier interface {
	Notify(ctx context.Context, teacherID string, summary OfferSummary) error
	Alert(ctx context.Context, slotID string, date time.Time, reason string) error
}

// LogNotifier writes notifications to the structured log. It stands in for
// the real delivery collaborator in development and tests.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, teacherID string, summary OfferSummary) error {
	n.Logger.Info("substitute offer issued",
		zap.String("teacher_id", teacherID),
		zap.String("offer_id", summary.OfferID),
		zap.String("slot_id", summary.SlotID),
		zap.String("date", summary.Date.Format("2006-01-02")))
	return nil
}

// Alert implements Notifier.
func (n *LogNotifier) Alert(_ context.Context, slotID string, date time.Time, reason string) error {
	n.Logger.Warn("slot unfilled",
		zap.String("slot_id", slotID),
		zap.String("date", date.Format("2006-01-02")),
		zap.String("reason", reason))
	return nil
}

// ReplacementService drives the substitute assignment workflow: one state
// machine per absence × slot × date with strictly sequential offers.
type ReplacementService struct {
	store     replacementStore
	absences  absenceStore
	slots     replacementSlotReader
	teachers  candidateSource
	timetable overrideApplier
	terms     activeTermReader
	notifier  Notifier
	logger    *zap.Logger
	metrics   *MetricsService
	offerTTL  time.Duration
}

// NewReplacementService wires resolver dependencies.
func NewReplacementService(
	store replacementStore,
	absences absenceStore,
	slots replacementSlotReader,
	teachers candidateSource,
	timetable overrideApplier,
	terms activeTermReader,
	notifier Notifier,
	logger *zap.Logger,
	metrics *MetricsService,
	offerTTL time.Duration,
) *ReplacementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = &LogNotifier{Logger: logger}
	}
	if offerTTL <= 0 {
		offerTTL = 4 * time.Hour
	}
	return &ReplacementService{
		store:     store,
		absences:  absences,
		slots:     slots,
		teachers:  teachers,
		timetable: timetable,
		terms:     terms,
		notifier:  notifier,
		logger:    logger,
		metrics:   metrics,
		offerTTL:  offerTTL,
	}
}

// HandleAbsence records an approved leave and spawns one workflow per
// affected slot/date, immediately advancing each to its first offer.
// Workflow instances are independent: one slot going unfilled never aborts
// coverage of the others.
func (s *ReplacementService) HandleAbsence(ctx context.Context, req dto.AbsenceRequest) (*models.TeacherAbsence, []models.ReplacementWorkflow, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not precede startDate")
	}
	leaveType := models.LeaveType(req.LeaveType)
	if leaveType == "" {
		leaveType = models.LeaveTypeOther
	}

	term, err := s.terms.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active term")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active term")
	}

	absence := &models.TeacherAbsence{
		TeacherID: req.TeacherID,
		LeaveType: leaveType,
		StartDate: start,
		EndDate:   end,
		Status:    models.AbsenceStatusActive,
	}
	if err := s.absences.Create(ctx, absence); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record absence")
	}

	baseSlots, err := s.slots.ListBaseByTeacher(ctx, req.TeacherID, term.ID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list affected slots")
	}

	var workflows []models.ReplacementWorkflow
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if date.Before(term.StartDate) || date.After(term.EndDate) {
			continue
		}
		day := DayOfDate(date)
		if day == 0 {
			continue
		}
		for _, slot := range baseSlots {
			if slot.Day != day || slot.Kind != models.SlotKindPeriod {
				continue
			}
			wf, err := s.spawnWorkflow(ctx, absence, slot.ID, date)
			if err != nil {
				return nil, nil, err
			}
			workflows = append(workflows, *wf)
		}

		// The teacher may also be covering other slots as a substitute on this
		// date. Those overrides can no longer be honored: hand each slot back
		// to the resolver under its base pattern.
		held, err := s.slots.ListOverridesByTeacherDate(ctx, req.TeacherID, date)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list held overrides")
		}
		for _, override := range held {
			if override.Kind != models.SlotKindPeriod {
				continue
			}
			base, err := s.slots.FindBase(ctx, override.ClassID, override.TermID, override.Day, override.Period)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					continue
				}
				return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load base slot")
			}
			if err := s.timetable.RemoveOverride(ctx, base.ID, date); err != nil {
				s.logger.Error("held override could not be released",
					zap.String("slot_id", base.ID),
					zap.Error(err))
				continue
			}
			wf, err := s.spawnWorkflow(ctx, absence, base.ID, date)
			if err != nil {
				return nil, nil, err
			}
			workflows = append(workflows, *wf)
		}
	}
	return absence, workflows, nil
}

// spawnWorkflow creates one workflow for a slot/date and advances it to its
// first offer. Advancement failures are logged, never fatal.
func (s *ReplacementService) spawnWorkflow(ctx context.Context, absence *models.TeacherAbsence, slotID string, date time.Time) (*models.ReplacementWorkflow, error) {
	wf := &models.ReplacementWorkflow{
		AbsenceID: absence.ID,
		SlotID:    slotID,
		Date:      date,
		Status:    models.WorkflowStatusDetected,
	}
	if err := s.store.CreateWorkflow(ctx, wf); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create workflow")
	}
	if err := s.advance(ctx, wf, absence.TeacherID); err != nil {
		s.logger.Warn("workflow could not advance",
			zap.String("workflow_id", wf.ID),
			zap.Error(err))
	}
	return wf, nil
}

// AcceptOffer resolves an offer via compare-and-set and writes the dated
// override. A second accept on the same offer, or on a stale offer of the
// same slot/date, loses the race and reports it.
func (s *ReplacementService) AcceptOffer(ctx context.Context, offerID string) (*models.ReplacementOffer, error) {
	offer, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	won, err := s.store.ResolveOffer(ctx, offer.ID, models.OfferStatusAccepted, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve offer")
	}
	if !won {
		return nil, appErrors.Clone(appErrors.ErrOfferResolved, "offer was already resolved")
	}

	if _, err := s.timetable.ApplyOverride(ctx, offer.SlotID, offer.Date, offer.CandidateTeacherID); err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrOverrideConflict.Code {
			// A manual edit claimed the slot first. The workflow ends without
			// a double assignment and the acceptor learns about the conflict.
			_ = s.store.UpdateWorkflow(ctx, offer.WorkflowID, models.WorkflowStatusCancelled, 0)
			return nil, err
		}
		// Transient failure: the CAS already consumed the offer, so put it
		// back to OFFERED or the workflow would wedge with no open offer.
		if reopenErr := s.store.ReopenOffer(ctx, offer.ID); reopenErr != nil {
			s.logger.Error("offer could not be reopened after override failure",
				zap.String("offer_id", offer.ID),
				zap.Error(reopenErr))
		}
		return nil, err
	}

	if err := s.store.UpdateWorkflow(ctx, offer.WorkflowID, models.WorkflowStatusCovered, 0); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update workflow")
	}
	if s.metrics != nil {
		s.metrics.RecordOffer("accepted")
	}
	offer.Status = models.OfferStatusAccepted
	s.logger.Info("offer accepted",
		zap.String("offer_id", offer.ID),
		zap.String("slot_id", offer.SlotID),
		zap.String("teacher_id", offer.CandidateTeacherID))
	return offer, nil
}

// DeclineOffer resolves an offer as declined and immediately advances the
// workflow to the next ranked candidate.
func (s *ReplacementService) DeclineOffer(ctx context.Context, offerID, reason string) (*models.ReplacementOffer, error) {
	offer, err := s.loadOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	won, err := s.store.ResolveOffer(ctx, offer.ID, models.OfferStatusDeclined, reasonPtr)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve offer")
	}
	if !won {
		return nil, appErrors.Clone(appErrors.ErrOfferResolved, "offer was already resolved")
	}
	if s.metrics != nil {
		s.metrics.RecordOffer("declined")
	}

	if err := s.advanceWorkflowByID(ctx, offer.WorkflowID); err != nil && !isNoCandidate(err) {
		return nil, err
	}
	offer.Status = models.OfferStatusDeclined
	offer.Reason = reasonPtr
	return offer, nil
}

// ExpireStaleOffers sweeps offers past the response window and advances their
// workflows exactly as a decline would. Invoked periodically by the job queue.
func (s *ReplacementService) ExpireStaleOffers(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.offerTTL)
	stale, err := s.store.ListExpiredOffers(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stale offers")
	}
	expired := 0
	for _, offer := range stale {
		won, err := s.store.ResolveOffer(ctx, offer.ID, models.OfferStatusExpired, nil)
		if err != nil {
			s.logger.Warn("offer expiry failed", zap.String("offer_id", offer.ID), zap.Error(err))
			continue
		}
		if !won {
			continue
		}
		expired++
		if s.metrics != nil {
			s.metrics.RecordOffer("expired")
		}
		if err := s.advanceWorkflowByID(ctx, offer.WorkflowID); err != nil && !isNoCandidate(err) {
			s.logger.Warn("workflow could not advance after expiry",
				zap.String("workflow_id", offer.WorkflowID),
				zap.Error(err))
		}
	}
	return expired, nil
}

// CancelAbsence revokes the absence and terminates its workflows: open offers
// are cancelled, and an already-covered slot gets its override explicitly
// removed as the compensating write.
func (s *ReplacementService) CancelAbsence(ctx context.Context, absenceID string) error {
	if err := s.absences.Revoke(ctx, absenceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "active absence not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke absence")
	}
	workflows, err := s.store.ListWorkflowsByAbsence(ctx, absenceID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list workflows")
	}
	for _, wf := range workflows {
		switch wf.Status {
		case models.WorkflowStatusCancelled:
			continue
		case models.WorkflowStatusCovered:
			if err := s.timetable.RemoveOverride(ctx, wf.SlotID, wf.Date); err != nil {
				s.logger.Error("override compensation failed",
					zap.String("workflow_id", wf.ID),
					zap.Error(err))
				continue
			}
		default:
			offers, err := s.store.ListOffersByWorkflow(ctx, wf.ID)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offers")
			}
			for _, offer := range offers {
				if offer.Status == models.OfferStatusOffered {
					_, _ = s.store.ResolveOffer(ctx, offer.ID, models.OfferStatusCancelled, nil)
				}
			}
		}
		if err := s.store.UpdateWorkflow(ctx, wf.ID, models.WorkflowStatusCancelled, wf.CandidateCursor); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel workflow")
		}
	}
	return nil
}

// ListWorkflows returns workflow state with offers for the admin surface.
func (s *ReplacementService) ListWorkflows(ctx context.Context, filter models.ReplacementWorkflowFilter) ([]dto.WorkflowView, *models.Pagination, error) {
	workflows, total, err := s.store.ListWorkflows(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list workflows")
	}
	views := make([]dto.WorkflowView, 0, len(workflows))
	for _, wf := range workflows {
		offers, err := s.store.ListOffersByWorkflow(ctx, wf.ID)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offers")
		}
		views = append(views, workflowView(wf, offers))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return views, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// advanceWorkflowByID reloads the workflow and issues the next offer.
func (s *ReplacementService) advanceWorkflowByID(ctx context.Context, workflowID string) error {
	wf, err := s.store.FindWorkflowByID(ctx, workflowID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workflow")
	}
	absence, err := s.absences.FindByID(ctx, wf.AbsenceID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absence")
	}
	return s.advance(ctx, wf, absence.TeacherID)
}

// advance computes the ranked candidate list, skips candidates already tried,
// and issues the next sequential offer. Exhaustion marks the workflow
// Unfilled and emits exactly one admin alert.
func (s *ReplacementService) advance(ctx context.Context, wf *models.ReplacementWorkflow, absentTeacherID string) error {
	if wf.Status == models.WorkflowStatusCovered || wf.Status == models.WorkflowStatusCancelled || wf.Status == models.WorkflowStatusUnfilled {
		return nil
	}

	slot, err := s.slots.FindByID(ctx, wf.SlotID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	if slot.SubjectID == nil {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "slot has no subject to cover")
	}

	tried := map[string]bool{}
	offers, err := s.store.ListOffersByWorkflow(ctx, wf.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offers")
	}
	for _, offer := range offers {
		tried[offer.CandidateTeacherID] = true
	}

	candidates, err := s.rankCandidates(ctx, slot, wf.Date, absentTeacherID)
	if err != nil {
		return err
	}

	for _, candidate := range candidates {
		if tried[candidate.ID] {
			continue
		}
		offer := &models.ReplacementOffer{
			WorkflowID:         wf.ID,
			SlotID:             wf.SlotID,
			Date:               wf.Date,
			CandidateTeacherID: candidate.ID,
			Status:             models.OfferStatusOffered,
		}
		if err := s.store.CreateOffer(ctx, offer); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create offer")
		}
		cursor := wf.CandidateCursor + 1
		if err := s.store.UpdateWorkflow(ctx, wf.ID, models.WorkflowStatusOffering, cursor); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update workflow")
		}
		wf.Status = models.WorkflowStatusOffering
		wf.CandidateCursor = cursor
		if s.metrics != nil {
			s.metrics.RecordOffer("issued")
		}
		summary := OfferSummary{
			OfferID:   offer.ID,
			SlotID:    slot.ID,
			ClassID:   slot.ClassID,
			SubjectID: *slot.SubjectID,
			Date:      wf.Date,
			Day:       slot.Day,
			Period:    slot.Period,
		}
		if err := s.notifier.Notify(ctx, candidate.ID, summary); err != nil {
			s.logger.Warn("offer notification failed", zap.String("offer_id", offer.ID), zap.Error(err))
		}
		return nil
	}

	if err := s.store.UpdateWorkflow(ctx, wf.ID, models.WorkflowStatusUnfilled, wf.CandidateCursor); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark workflow unfilled")
	}
	wf.Status = models.WorkflowStatusUnfilled
	if s.metrics != nil {
		s.metrics.RecordUnfilled()
	}
	if err := s.notifier.Alert(ctx, wf.SlotID, wf.Date, "no substitute candidate available"); err != nil {
		s.logger.Warn("unfilled alert failed", zap.String("workflow_id", wf.ID), zap.Error(err))
	}
	return appErrors.Clone(appErrors.ErrNoCandidate, fmt.Sprintf("no candidate for slot %s on %s", wf.SlotID, wf.Date.Format("2006-01-02")))
}

// rankCandidates selects eligible substitutes: same subject or general
// substitute, not on leave themselves, free at that date/period in base and
// override patterns, and not already committed to another slot at the same
// period. Ranked by weekly base load ascending, ties by teacher id.
func (s *ReplacementService) rankCandidates(ctx context.Context, slot *models.TimetableSlot, date time.Time, absentTeacherID string) ([]models.TeacherProfile, error) {
	pool, err := s.teachers.ListSubstituteCandidates(ctx, *slot.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list candidates")
	}

	type ranked struct {
		profile models.TeacherProfile
		load    int
	}
	eligible := make([]ranked, 0, len(pool))
	for _, candidate := range pool {
		if candidate.ID == absentTeacherID {
			continue
		}

		// A candidate on approved leave for this date is unavailable no matter
		// what their timetable says.
		leaves, err := s.absences.ListActiveByTeacher(ctx, candidate.ID, date, date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate absences")
		}
		if len(leaves) > 0 {
			continue
		}

		base, err := s.slots.ListBaseByTeacher(ctx, candidate.ID, slot.TermID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate slots")
		}
		busy := false
		for _, held := range base {
			if held.Day == slot.Day && held.Period == slot.Period {
				busy = true
				break
			}
		}
		if busy {
			continue
		}

		overrides, err := s.slots.ListOverridesByTeacherDate(ctx, candidate.ID, date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate overrides")
		}
		for _, held := range overrides {
			if held.Period == slot.Period {
				busy = true
				break
			}
		}
		if busy {
			continue
		}

		open, err := s.store.ListOpenOffersByTeacherDate(ctx, candidate.ID, date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate offers")
		}
		for _, pending := range open {
			pendingSlot, err := s.slots.FindByID(ctx, pending.SlotID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					continue
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending slot")
			}
			if pendingSlot.Period == slot.Period {
				busy = true
				break
			}
		}
		if busy {
			continue
		}

		eligible = append(eligible, ranked{profile: candidate, load: len(base)})
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].load != eligible[j].load {
			return eligible[i].load < eligible[j].load
		}
		return eligible[i].profile.ID < eligible[j].profile.ID
	})

	out := make([]models.TeacherProfile, 0, len(eligible))
	for _, r := range eligible {
		out = append(out, r.profile)
	}
	return out, nil
}

func (s *ReplacementService) loadOffer(ctx context.Context, offerID string) (*models.ReplacementOffer, error) {
	if offerID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "offer id is required")
	}
	offer, err := s.store.FindOfferByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offer")
	}
	return offer, nil
}

func isNoCandidate(err error) bool {
	return appErrors.FromError(err).Code == appErrors.ErrNoCandidate.Code
}

func workflowView(wf models.ReplacementWorkflow, offers []models.ReplacementOffer) dto.WorkflowView {
	view := dto.WorkflowView{
		ID:        wf.ID,
		AbsenceID: wf.AbsenceID,
		SlotID:    wf.SlotID,
		Date:      wf.Date.Format("2006-01-02"),
		Status:    string(wf.Status),
	}
	for _, offer := range offers {
		ov := dto.OfferView{
			ID:                 offer.ID,
			SlotID:             offer.SlotID,
			Date:               offer.Date.Format("2006-01-02"),
			CandidateTeacherID: offer.CandidateTeacherID,
			Status:             string(offer.Status),
			OfferedAt:          offer.OfferedAt,
			ResolvedAt:         offer.ResolvedAt,
		}
		if offer.Reason != nil {
			ov.Reason = *offer.Reason
		}
		view.Offers = append(view.Offers, ov)
	}
	return view
}
