package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
)

type replacementStoreFake struct {
	workflows map[string]*models.ReplacementWorkflow
	offers    map[string]*models.ReplacementOffer
	nextID    int
}

func newReplacementStoreFake() *replacementStoreFake {
	return &replacementStoreFake{
		workflows: map[string]*models.ReplacementWorkflow{},
		offers:    map[string]*models.ReplacementOffer{},
	}
}

func (f *replacementStoreFake) CreateWorkflow(_ context.Context, wf *models.ReplacementWorkflow) error {
	f.nextID++
	wf.ID = fmt.Sprintf("wf-%d", f.nextID)
	f.workflows[wf.ID] = wf
	return nil
}

func (f *replacementStoreFake) FindWorkflowByID(_ context.Context, id string) (*models.ReplacementWorkflow, error) {
	if wf, ok := f.workflows[id]; ok {
		copied := *wf
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *replacementStoreFake) UpdateWorkflow(_ context.Context, id string, status models.WorkflowStatus, cursor int) error {
	wf, ok := f.workflows[id]
	if !ok {
		return sql.ErrNoRows
	}
	wf.Status = status
	wf.CandidateCursor = cursor
	return nil
}

func (f *replacementStoreFake) ListWorkflows(_ context.Context, filter models.ReplacementWorkflowFilter) ([]models.ReplacementWorkflow, int, error) {
	var out []models.ReplacementWorkflow
	for _, wf := range f.workflows {
		if filter.AbsenceID != "" && wf.AbsenceID != filter.AbsenceID {
			continue
		}
		if filter.Status != "" && wf.Status != filter.Status {
			continue
		}
		out = append(out, *wf)
	}
	return out, len(out), nil
}

func (f *replacementStoreFake) ListWorkflowsByAbsence(_ context.Context, absenceID string) ([]models.ReplacementWorkflow, error) {
	var out []models.ReplacementWorkflow
	for _, wf := range f.workflows {
		if wf.AbsenceID == absenceID {
			out = append(out, *wf)
		}
	}
	return out, nil
}

func (f *replacementStoreFake) CreateOffer(_ context.Context, offer *models.ReplacementOffer) error {
	f.nextID++
	offer.ID = fmt.Sprintf("offer-%d", f.nextID)
	if offer.OfferedAt.IsZero() {
		offer.OfferedAt = time.Now().UTC()
	}
	f.offers[offer.ID] = offer
	return nil
}

func (f *replacementStoreFake) FindOfferByID(_ context.Context, id string) (*models.ReplacementOffer, error) {
	if offer, ok := f.offers[id]; ok {
		copied := *offer
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *replacementStoreFake) ResolveOffer(_ context.Context, id string, status models.OfferStatus, reason *string) (bool, error) {
	offer, ok := f.offers[id]
	if !ok {
		return false, nil
	}
	if offer.Status != models.OfferStatusOffered {
		return false, nil
	}
	offer.Status = status
	if reason != nil {
		offer.Reason = reason
	}
	now := time.Now().UTC()
	offer.ResolvedAt = &now
	return true, nil
}

func (f *replacementStoreFake) ReopenOffer(_ context.Context, id string) error {
	offer, ok := f.offers[id]
	if !ok {
		return sql.ErrNoRows
	}
	if offer.Status == models.OfferStatusAccepted {
		offer.Status = models.OfferStatusOffered
		offer.ResolvedAt = nil
	}
	return nil
}

func (f *replacementStoreFake) ListOffersByWorkflow(_ context.Context, workflowID string) ([]models.ReplacementOffer, error) {
	var out []models.ReplacementOffer
	for i := 1; i <= f.nextID; i++ {
		if offer, ok := f.offers[fmt.Sprintf("offer-%d", i)]; ok && offer.WorkflowID == workflowID {
			out = append(out, *offer)
		}
	}
	return out, nil
}

func (f *replacementStoreFake) ListOpenOffersByTeacherDate(_ context.Context, teacherID string, date time.Time) ([]models.ReplacementOffer, error) {
	var out []models.ReplacementOffer
	for _, offer := range f.offers {
		if offer.CandidateTeacherID != teacherID || !offer.Date.Equal(date) {
			continue
		}
		if offer.Status == models.OfferStatusOffered || offer.Status == models.OfferStatusAccepted {
			out = append(out, *offer)
		}
	}
	return out, nil
}

func (f *replacementStoreFake) ListExpiredOffers(_ context.Context, cutoff time.Time) ([]models.ReplacementOffer, error) {
	var out []models.ReplacementOffer
	for _, offer := range f.offers {
		if offer.Status == models.OfferStatusOffered && offer.OfferedAt.Before(cutoff) {
			out = append(out, *offer)
		}
	}
	return out, nil
}

func (f *replacementStoreFake) latestOfferFor(workflowID string) *models.ReplacementOffer {
	for i := f.nextID; i >= 1; i-- {
		if offer, ok := f.offers[fmt.Sprintf("offer-%d", i)]; ok && offer.WorkflowID == workflowID {
			return offer
		}
	}
	return nil
}

type absenceStoreFake struct {
	absences map[string]*models.TeacherAbsence
	nextID   int
}

func newAbsenceStoreFake() *absenceStoreFake {
	return &absenceStoreFake{absences: map[string]*models.TeacherAbsence{}}
}

func (f *absenceStoreFake) Create(_ context.Context, absence *models.TeacherAbsence) error {
	f.nextID++
	absence.ID = fmt.Sprintf("absence-%d", f.nextID)
	f.absences[absence.ID] = absence
	return nil
}

func (f *absenceStoreFake) FindByID(_ context.Context, id string) (*models.TeacherAbsence, error) {
	if absence, ok := f.absences[id]; ok {
		return absence, nil
	}
	return nil, sql.ErrNoRows
}

func (f *absenceStoreFake) Revoke(_ context.Context, id string) error {
	absence, ok := f.absences[id]
	if !ok || absence.Status != models.AbsenceStatusActive {
		return sql.ErrNoRows
	}
	absence.Status = models.AbsenceStatusRevoked
	return nil
}

func (f *absenceStoreFake) ListActiveByTeacher(_ context.Context, teacherID string, from, to time.Time) ([]models.TeacherAbsence, error) {
	var out []models.TeacherAbsence
	for _, absence := range f.absences {
		if absence.TeacherID != teacherID || absence.Status != models.AbsenceStatusActive {
			continue
		}
		if absence.StartDate.After(to) || absence.EndDate.Before(from) {
			continue
		}
		out = append(out, *absence)
	}
	return out, nil
}

type resolverSlotsFake struct {
	slots []*models.TimetableSlot
}

func (f *resolverSlotsFake) FindByID(_ context.Context, id string) (*models.TimetableSlot, error) {
	for _, slot := range f.slots {
		if slot.ID == id {
			return slot, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *resolverSlotsFake) FindBase(_ context.Context, classID, termID string, day, period int) (*models.TimetableSlot, error) {
	for _, slot := range f.slots {
		if slot.ClassID == classID && slot.TermID == termID && slot.Day == day && slot.Period == period && slot.OverrideDate == nil {
			return slot, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *resolverSlotsFake) ListBaseByTeacher(_ context.Context, teacherID, termID string) ([]models.TimetableSlot, error) {
	var out []models.TimetableSlot
	for _, slot := range f.slots {
		if slot.TermID == termID && slot.TeacherID != nil && *slot.TeacherID == teacherID && slot.OverrideDate == nil {
			out = append(out, *slot)
		}
	}
	return out, nil
}

func (f *resolverSlotsFake) ListOverridesByTeacherDate(_ context.Context, teacherID string, date time.Time) ([]models.TimetableSlot, error) {
	var out []models.TimetableSlot
	for _, slot := range f.slots {
		if slot.TeacherID != nil && *slot.TeacherID == teacherID && slot.OverrideDate != nil && slot.OverrideDate.Equal(date) {
			out = append(out, *slot)
		}
	}
	return out, nil
}

type candidateSourceFake struct {
	teachers []models.TeacherProfile
}

func (f *candidateSourceFake) ListSubstituteCandidates(_ context.Context, subjectID string) ([]models.TeacherProfile, error) {
	var out []models.TeacherProfile
	for _, teacher := range f.teachers {
		if teacher.GeneralSubstitute || teacher.TeachesSubject(subjectID) {
			out = append(out, teacher)
		}
	}
	return out, nil
}

type overrideApplierFake struct {
	applied   []string
	removed   []string
	conflict  bool
	failWith  error
	overrides map[string]string
}

func newOverrideApplierFake() *overrideApplierFake {
	return &overrideApplierFake{overrides: map[string]string{}}
}

func (f *overrideApplierFake) ApplyOverride(_ context.Context, slotID string, date time.Time, teacherID string) (*models.TimetableSlot, error) {
	if f.conflict {
		return nil, appErrors.Clone(appErrors.ErrOverrideConflict, "slot already overridden")
	}
	if f.failWith != nil {
		return nil, f.failWith
	}
	key := slotID + ":" + date.Format("2006-01-02")
	f.applied = append(f.applied, key)
	f.overrides[key] = teacherID
	d := date
	return &models.TimetableSlot{ID: "override-" + slotID, TeacherID: &teacherID, OverrideDate: &d}, nil
}

func (f *overrideApplierFake) RemoveOverride(_ context.Context, slotID string, date time.Time) error {
	key := slotID + ":" + date.Format("2006-01-02")
	f.removed = append(f.removed, key)
	delete(f.overrides, key)
	return nil
}

type activeTermFake struct{ term *models.Term }

func (f *activeTermFake) FindActive(_ context.Context) (*models.Term, error) {
	if f.term == nil {
		return nil, sql.ErrNoRows
	}
	return f.term, nil
}

type notifierFake struct {
	notified []string
	alerts   []string
}

func (f *notifierFake) Notify(_ context.Context, teacherID string, _ OfferSummary) error {
	f.notified = append(f.notified, teacherID)
	return nil
}

func (f *notifierFake) Alert(_ context.Context, slotID string, _ time.Time, _ string) error {
	f.alerts = append(f.alerts, slotID)
	return nil
}

type resolverFixture struct {
	store     *replacementStoreFake
	absences  *absenceStoreFake
	slots     *resolverSlotsFake
	teachers  *candidateSourceFake
	timetable *overrideApplierFake
	notifier  *notifierFake
	svc       *ReplacementService
}

func newResolverFixture(substitutes ...models.TeacherProfile) *resolverFixture {
	term := &models.Term{
		ID:        "term-1",
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
	f := &resolverFixture{
		store:    newReplacementStoreFake(),
		absences: newAbsenceStoreFake(),
		slots: &resolverSlotsFake{slots: []*models.TimetableSlot{{
			ID: "slot-1", ClassID: "class-8a", TermID: "term-1",
			Day: 1, Period: 2, Kind: models.SlotKindPeriod,
			SubjectID: strPtr("math"), TeacherID: strPtr("teacher-absent"),
		}}},
		teachers:  &candidateSourceFake{teachers: substitutes},
		timetable: newOverrideApplierFake(),
		notifier:  &notifierFake{},
	}
	f.svc = NewReplacementService(
		f.store, f.absences, f.slots, f.teachers, f.timetable,
		&activeTermFake{term: term}, f.notifier, zap.NewNop(), nil, 4*time.Hour,
	)
	return f
}

func mathSub(id string) models.TeacherProfile {
	return models.TeacherProfile{ID: id, Name: id, SubjectIDs: []string{"math"}}
}

// 2026-06-01 is a Monday inside the fixture term.
var coverageDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func reportMondayAbsence(t *testing.T, f *resolverFixture) (*models.TeacherAbsence, []models.ReplacementWorkflow) {
	t.Helper()
	absence, workflows, err := f.svc.HandleAbsence(context.Background(), dto.AbsenceRequest{
		TeacherID: "teacher-absent",
		LeaveType: "SICK",
		StartDate: "2026-06-01",
		EndDate:   "2026-06-01",
	})
	require.NoError(t, err)
	return absence, workflows
}

func TestHandleAbsenceSpawnsWorkflowAndFirstOffer(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"), mathSub("sub-2"))

	_, workflows := reportMondayAbsence(t, f)
	require.Len(t, workflows, 1)
	assert.Equal(t, models.WorkflowStatusOffering, workflows[0].Status)

	offer := f.store.latestOfferFor(workflows[0].ID)
	require.NotNil(t, offer)
	assert.Equal(t, "sub-1", offer.CandidateTeacherID, "ties rank by teacher id")
	assert.Equal(t, models.OfferStatusOffered, offer.Status)
	assert.Equal(t, []string{"sub-1"}, f.notifier.notified)
}

func TestHandleAbsenceSkipsWeekendAndForeignDays(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))

	// Friday through Monday covers one Monday slot only: the slot sits on day 1
	// and the weekend days map to no school day.
	_, workflows, err := f.svc.HandleAbsence(context.Background(), dto.AbsenceRequest{
		TeacherID: "teacher-absent",
		StartDate: "2026-05-29",
		EndDate:   "2026-06-01",
	})
	require.NoError(t, err)
	assert.Len(t, workflows, 1)
}

func TestHandleAbsenceRanksByWeeklyLoad(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"), mathSub("sub-2"))
	// sub-1 carries an existing base load; sub-2 is idle and must rank first.
	f.slots.slots = append(f.slots.slots, &models.TimetableSlot{
		ID: "slot-9", ClassID: "class-7a", TermID: "term-1",
		Day: 2, Period: 4, Kind: models.SlotKindPeriod,
		SubjectID: strPtr("math"), TeacherID: strPtr("sub-1"),
	})

	_, workflows := reportMondayAbsence(t, f)
	offer := f.store.latestOfferFor(workflows[0].ID)
	require.NotNil(t, offer)
	assert.Equal(t, "sub-2", offer.CandidateTeacherID)
}

func TestHandleAbsenceSkipsBusyCandidate(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"), mathSub("sub-2"))
	// sub-1 already teaches another class at the same day and period.
	f.slots.slots = append(f.slots.slots, &models.TimetableSlot{
		ID: "slot-9", ClassID: "class-7a", TermID: "term-1",
		Day: 1, Period: 2, Kind: models.SlotKindPeriod,
		SubjectID: strPtr("math"), TeacherID: strPtr("sub-1"),
	})

	_, workflows := reportMondayAbsence(t, f)
	offer := f.store.latestOfferFor(workflows[0].ID)
	require.NotNil(t, offer)
	assert.Equal(t, "sub-2", offer.CandidateTeacherID)
}

func TestHandleAbsenceSkipsCandidateOnLeave(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"), mathSub("sub-2"))

	// sub-1 is themselves on approved leave across the coverage date.
	_, _, err := f.svc.HandleAbsence(context.Background(), dto.AbsenceRequest{
		TeacherID: "sub-1",
		LeaveType: "SICK",
		StartDate: "2026-06-01",
		EndDate:   "2026-06-05",
	})
	require.NoError(t, err)

	_, workflows := reportMondayAbsence(t, f)
	require.Len(t, workflows, 1)
	offer := f.store.latestOfferFor(workflows[0].ID)
	require.NotNil(t, offer)
	assert.Equal(t, "sub-2", offer.CandidateTeacherID, "a substitute on leave must never be offered the slot")
}

func TestHandleAbsenceReassignsSlotsHeldAsSubstitute(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))
	// The absent teacher was covering class-7b's Monday period 3 for
	// teacher-other via a dated override.
	f.slots.slots = append(f.slots.slots,
		&models.TimetableSlot{
			ID: "slot-2", ClassID: "class-7b", TermID: "term-1",
			Day: 1, Period: 3, Kind: models.SlotKindPeriod,
			SubjectID: strPtr("math"), TeacherID: strPtr("teacher-other"),
		},
		&models.TimetableSlot{
			ID: "ovr-1", ClassID: "class-7b", TermID: "term-1",
			Day: 1, Period: 3, Kind: models.SlotKindPeriod,
			SubjectID: strPtr("math"), TeacherID: strPtr("teacher-absent"),
			OverrideDate: &coverageDate,
		})

	_, workflows := reportMondayAbsence(t, f)
	require.Len(t, workflows, 2, "held substitution spawns its own workflow")
	assert.Equal(t, "slot-2", workflows[1].SlotID, "workflow targets the base slot under the override")
	assert.Contains(t, f.timetable.removed, "slot-2:"+coverageDate.Format("2006-01-02"),
		"the unfulfillable override is released")

	offer := f.store.latestOfferFor(workflows[1].ID)
	require.NotNil(t, offer)
	assert.Equal(t, "sub-1", offer.CandidateTeacherID)
}

func TestAcceptOfferWritesOverride(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))
	_, workflows := reportMondayAbsence(t, f)
	offer := f.store.latestOfferFor(workflows[0].ID)

	accepted, err := f.svc.AcceptOffer(context.Background(), offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, accepted.Status)
	assert.Equal(t, []string{"slot-1:" + coverageDate.Format("2006-01-02")}, f.timetable.applied)
	assert.Equal(t, models.WorkflowStatusCovered, f.store.workflows[workflows[0].ID].Status)
}

func TestAcceptOfferLosesRaceOnResolvedOffer(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))
	_, workflows := reportMondayAbsence(t, f)
	offer := f.store.latestOfferFor(workflows[0].ID)

	_, err := f.svc.AcceptOffer(context.Background(), offer.ID)
	require.NoError(t, err)

	_, err = f.svc.AcceptOffer(context.Background(), offer.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrOfferResolved.Code, appErrors.FromError(err).Code)
	assert.Len(t, f.timetable.applied, 1, "override written exactly once")
}

func TestAcceptOfferYieldsToManualOverride(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))
	_, workflows := reportMondayAbsence(t, f)
	offer := f.store.latestOfferFor(workflows[0].ID)

	f.timetable.conflict = true
	_, err := f.svc.AcceptOffer(context.Background(), offer.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrOverrideConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.WorkflowStatusCancelled, f.store.workflows[workflows[0].ID].Status)
}

func TestAcceptOfferReopensOfferWhenOverrideWriteFails(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))
	_, workflows := reportMondayAbsence(t, f)
	offer := f.store.latestOfferFor(workflows[0].ID)

	f.timetable.failWith = appErrors.Clone(appErrors.ErrInternal, "slot store unavailable")
	_, err := f.svc.AcceptOffer(context.Background(), offer.ID)
	require.Error(t, err)
	assert.Equal(t, models.OfferStatusOffered, f.store.offers[offer.ID].Status,
		"a failed override write must hand the offer back")
	assert.Equal(t, models.WorkflowStatusOffering, f.store.workflows[workflows[0].ID].Status)

	f.timetable.failWith = nil
	accepted, err := f.svc.AcceptOffer(context.Background(), offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, accepted.Status)
	assert.Equal(t, models.WorkflowStatusCovered, f.store.workflows[workflows[0].ID].Status)
}

func TestDeclineOfferAdvancesToNextCandidate(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"), mathSub("sub-2"))
	_, workflows := reportMondayAbsence(t, f)
	first := f.store.latestOfferFor(workflows[0].ID)

	declined, err := f.svc.DeclineOffer(context.Background(), first.ID, "unavailable")
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusDeclined, declined.Status)

	next := f.store.latestOfferFor(workflows[0].ID)
	require.NotNil(t, next)
	assert.Equal(t, "sub-2", next.CandidateTeacherID)
	assert.Equal(t, models.WorkflowStatusOffering, f.store.workflows[workflows[0].ID].Status)
}

func TestExhaustedCandidatesMarkUnfilledWithSingleAlert(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))
	_, workflows := reportMondayAbsence(t, f)
	offer := f.store.latestOfferFor(workflows[0].ID)

	_, err := f.svc.DeclineOffer(context.Background(), offer.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusUnfilled, f.store.workflows[workflows[0].ID].Status)
	assert.Equal(t, []string{"slot-1"}, f.notifier.alerts, "exactly one alert on exhaustion")
}

func TestHandleAbsenceWithNoCandidatesGoesStraightToUnfilled(t *testing.T) {
	f := newResolverFixture()

	_, workflows := reportMondayAbsence(t, f)
	require.Len(t, workflows, 1)
	assert.Equal(t, models.WorkflowStatusUnfilled, workflows[0].Status)
	assert.Len(t, f.notifier.alerts, 1)
}

func TestExpireStaleOffersAdvancesWorkflow(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"), mathSub("sub-2"))
	_, workflows := reportMondayAbsence(t, f)
	offer := f.store.latestOfferFor(workflows[0].ID)
	f.store.offers[offer.ID].OfferedAt = time.Now().UTC().Add(-5 * time.Hour)

	expired, err := f.svc.ExpireStaleOffers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, models.OfferStatusExpired, f.store.offers[offer.ID].Status)

	next := f.store.latestOfferFor(workflows[0].ID)
	require.NotNil(t, next)
	assert.Equal(t, "sub-2", next.CandidateTeacherID)
}

func TestExpireStaleOffersIgnoresFreshOnes(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))
	reportMondayAbsence(t, f)

	expired, err := f.svc.ExpireStaleOffers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestCancelAbsenceCancelsOpenOffers(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))
	absence, workflows := reportMondayAbsence(t, f)
	offer := f.store.latestOfferFor(workflows[0].ID)

	require.NoError(t, f.svc.CancelAbsence(context.Background(), absence.ID))
	assert.Equal(t, models.OfferStatusCancelled, f.store.offers[offer.ID].Status)
	assert.Equal(t, models.WorkflowStatusCancelled, f.store.workflows[workflows[0].ID].Status)
	assert.Equal(t, models.AbsenceStatusRevoked, f.absences.absences[absence.ID].Status)
}

func TestCancelAbsenceRemovesAcceptedOverride(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))
	absence, workflows := reportMondayAbsence(t, f)
	offer := f.store.latestOfferFor(workflows[0].ID)
	_, err := f.svc.AcceptOffer(context.Background(), offer.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelAbsence(context.Background(), absence.ID))
	assert.Equal(t, []string{"slot-1:" + coverageDate.Format("2006-01-02")}, f.timetable.removed)
	assert.Equal(t, models.WorkflowStatusCancelled, f.store.workflows[workflows[0].ID].Status)
}

func TestCancelAbsenceUnknownID(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))

	err := f.svc.CancelAbsence(context.Background(), "absence-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestHandleAbsenceValidatesDates(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))

	_, _, err := f.svc.HandleAbsence(context.Background(), dto.AbsenceRequest{
		TeacherID: "teacher-absent",
		StartDate: "2026-06-02",
		EndDate:   "2026-06-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListWorkflowsIncludesOffers(t *testing.T) {
	f := newResolverFixture(mathSub("sub-1"))
	absence, _ := reportMondayAbsence(t, f)

	views, pagination, err := f.svc.ListWorkflows(context.Background(), models.ReplacementWorkflowFilter{AbsenceID: absence.ID})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].Offers, 1)
	assert.Equal(t, "sub-1", views[0].Offers[0].CandidateTeacherID)
	assert.Equal(t, 1, pagination.TotalCount)
}
