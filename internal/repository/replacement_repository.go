package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arka-edu/timetable-api/internal/models"
)

// ReplacementRepository persists replacement workflows and their offers.
type ReplacementRepository struct {
	db *sqlx.DB
}

// NewReplacementRepository creates a new replacement repository.
func NewReplacementRepository(db *sqlx.DB) *ReplacementRepository {
	return &ReplacementRepository{db: db}
}

// CreateWorkflow stores one workflow per absence × slot × date.
func (r *ReplacementRepository) CreateWorkflow(ctx context.Context, wf *models.ReplacementWorkflow) error {
	if wf.ID == "" {
		wf.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	wf.CreatedAt = now
	wf.UpdatedAt = now
	if wf.Status == "" {
		wf.Status = models.WorkflowStatusDetected
	}
	const query = `INSERT INTO replacement_workflows (id, absence_id, slot_id, date, status, candidate_cursor, created_at, updated_at)
VALUES (:id, :absence_id, :slot_id, :date, :status, :candidate_cursor, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, wf); err != nil {
		return fmt.Errorf("create replacement workflow: %w", err)
	}
	return nil
}

// FindWorkflowByID loads one workflow.
func (r *ReplacementRepository) FindWorkflowByID(ctx context.Context, id string) (*models.ReplacementWorkflow, error) {
	const query = `SELECT id, absence_id, slot_id, date, status, candidate_cursor, created_at, updated_at FROM replacement_workflows WHERE id = $1`
	var wf models.ReplacementWorkflow
	if err := r.db.GetContext(ctx, &wf, query, id); err != nil {
		return nil, err
	}
	return &wf, nil
}

// UpdateWorkflow persists status and candidate cursor transitions.
func (r *ReplacementRepository) UpdateWorkflow(ctx context.Context, id string, status models.WorkflowStatus, cursor int) error {
	const query = `UPDATE replacement_workflows SET status = $1, candidate_cursor = $2, updated_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, status, cursor, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update replacement workflow: %w", err)
	}
	return nil
}

// ListWorkflows returns workflows matching the filter.
func (r *ReplacementRepository) ListWorkflows(ctx context.Context, filter models.ReplacementWorkflowFilter) ([]models.ReplacementWorkflow, int, error) {
	base := "FROM replacement_workflows WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AbsenceID != "" {
		conditions = append(conditions, fmt.Sprintf("absence_id = $%d", len(args)+1))
		args = append(args, filter.AbsenceID)
	}
	if filter.SlotID != "" {
		conditions = append(conditions, fmt.Sprintf("slot_id = $%d", len(args)+1))
		args = append(args, filter.SlotID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, absence_id, slot_id, date, status, candidate_cursor, created_at, updated_at %s ORDER BY date ASC, slot_id ASC LIMIT %d OFFSET %d", base, size, offset)
	var workflows []models.ReplacementWorkflow
	if err := r.db.SelectContext(ctx, &workflows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list replacement workflows: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count replacement workflows: %w", err)
	}
	return workflows, total, nil
}

// ListWorkflowsByAbsence returns every workflow spawned by one absence.
func (r *ReplacementRepository) ListWorkflowsByAbsence(ctx context.Context, absenceID string) ([]models.ReplacementWorkflow, error) {
	const query = `SELECT id, absence_id, slot_id, date, status, candidate_cursor, created_at, updated_at
FROM replacement_workflows WHERE absence_id = $1 ORDER BY date ASC, slot_id ASC`
	var workflows []models.ReplacementWorkflow
	if err := r.db.SelectContext(ctx, &workflows, query, absenceID); err != nil {
		return nil, fmt.Errorf("list workflows by absence: %w", err)
	}
	return workflows, nil
}

// CreateOffer stores a new sequential offer.
func (r *ReplacementRepository) CreateOffer(ctx context.Context, offer *models.ReplacementOffer) error {
	if offer.ID == "" {
		offer.ID = uuid.NewString()
	}
	if offer.OfferedAt.IsZero() {
		offer.OfferedAt = time.Now().UTC()
	}
	if offer.Status == "" {
		offer.Status = models.OfferStatusOffered
	}
	const query = `INSERT INTO replacement_offers (id, workflow_id, slot_id, date, candidate_teacher_id, status, reason, offered_at, resolved_at)
VALUES (:id, :workflow_id, :slot_id, :date, :candidate_teacher_id, :status, :reason, :offered_at, :resolved_at)`
	if _, err := r.db.NamedExecContext(ctx, query, offer); err != nil {
		return fmt.Errorf("create replacement offer: %w", err)
	}
	return nil
}

// FindOfferByID loads one offer.
func (r *ReplacementRepository) FindOfferByID(ctx context.Context, id string) (*models.ReplacementOffer, error) {
	const query = `SELECT id, workflow_id, slot_id, date, candidate_teacher_id, status, reason, offered_at, resolved_at FROM replacement_offers WHERE id = $1`
	var offer models.ReplacementOffer
	if err := r.db.GetContext(ctx, &offer, query, id); err != nil {
		return nil, err
	}
	return &offer, nil
}

// ResolveOffer transitions an offer out of OFFERED with a compare-and-set.
// It reports false when the offer was already resolved, which callers map to
// the offer-already-resolved error.
func (r *ReplacementRepository) ResolveOffer(ctx context.Context, id string, status models.OfferStatus, reason *string) (bool, error) {
	const query = `UPDATE replacement_offers SET status = $1, reason = COALESCE($2, reason), resolved_at = $3
WHERE id = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, status, reason, time.Now().UTC(), id, models.OfferStatusOffered)
	if err != nil {
		return false, fmt.Errorf("resolve replacement offer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve replacement offer rows: %w", err)
	}
	return n > 0, nil
}

// ReopenOffer returns an accepted offer to OFFERED. Used when the override
// write failed after the compare-and-set so the accept can be retried.
func (r *ReplacementRepository) ReopenOffer(ctx context.Context, id string) error {
	const query = `UPDATE replacement_offers SET status = $1, resolved_at = NULL WHERE id = $2 AND status = $3`
	if _, err := r.db.ExecContext(ctx, query, models.OfferStatusOffered, id, models.OfferStatusAccepted); err != nil {
		return fmt.Errorf("reopen replacement offer: %w", err)
	}
	return nil
}

// ListOffersByWorkflow returns a workflow's offers in issue order.
func (r *ReplacementRepository) ListOffersByWorkflow(ctx context.Context, workflowID string) ([]models.ReplacementOffer, error) {
	const query = `SELECT id, workflow_id, slot_id, date, candidate_teacher_id, status, reason, offered_at, resolved_at
FROM replacement_offers WHERE workflow_id = $1 ORDER BY offered_at ASC, id ASC`
	var offers []models.ReplacementOffer
	if err := r.db.SelectContext(ctx, &offers, query, workflowID); err != nil {
		return nil, fmt.Errorf("list offers by workflow: %w", err)
	}
	return offers, nil
}

// ListOpenOffersByTeacherDate returns pending or accepted offers a teacher
// holds on a date. Candidates with such an offer at the same period are
// ineligible for another slot.
func (r *ReplacementRepository) ListOpenOffersByTeacherDate(ctx context.Context, teacherID string, date time.Time) ([]models.ReplacementOffer, error) {
	const query = `SELECT id, workflow_id, slot_id, date, candidate_teacher_id, status, reason, offered_at, resolved_at
FROM replacement_offers
WHERE candidate_teacher_id = $1 AND date = $2 AND status IN ($3, $4)
ORDER BY offered_at ASC`
	var offers []models.ReplacementOffer
	if err := r.db.SelectContext(ctx, &offers, query, teacherID, date, models.OfferStatusOffered, models.OfferStatusAccepted); err != nil {
		return nil, fmt.Errorf("list open offers by teacher: %w", err)
	}
	return offers, nil
}

// ListExpiredOffers returns OFFERED rows older than the cutoff for the expiry
// sweeper.
func (r *ReplacementRepository) ListExpiredOffers(ctx context.Context, cutoff time.Time) ([]models.ReplacementOffer, error) {
	const query = `SELECT id, workflow_id, slot_id, date, candidate_teacher_id, status, reason, offered_at, resolved_at
FROM replacement_offers WHERE status = $1 AND offered_at < $2 ORDER BY offered_at ASC`
	var offers []models.ReplacementOffer
	if err := r.db.SelectContext(ctx, &offers, query, models.OfferStatusOffered, cutoff); err != nil {
		return nil, fmt.Errorf("list expired offers: %w", err)
	}
	return offers, nil
}
