package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arka-edu/timetable-api/internal/models"
)

// TimetableSlotRepository is the durable Timetable Store. Base slots (NULL
// override_date) hold the standing weekly pattern; override rows hold dated
// substitutions. The generator owns base writes, the replacement resolver owns
// override writes.
type TimetableSlotRepository struct {
	db *sqlx.DB
}

// NewTimetableSlotRepository creates a new timetable slot repository.
func NewTimetableSlotRepository(db *sqlx.DB) *TimetableSlotRepository {
	return &TimetableSlotRepository{db: db}
}

const slotColumns = `id, class_id, term_id, day_of_week, period, kind, subject_id, teacher_id, double_period, override_date, created_at, updated_at`

// FindByID loads one slot by id.
func (r *TimetableSlotRepository) FindByID(ctx context.Context, id string) (*models.TimetableSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_slots WHERE id = $1`, slotColumns)
	var slot models.TimetableSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindBase returns the base slot occupying one class cell, or sql.ErrNoRows.
func (r *TimetableSlotRepository) FindBase(ctx context.Context, classID, termID string, day, period int) (*models.TimetableSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_slots
WHERE class_id = $1 AND term_id = $2 AND day_of_week = $3 AND period = $4 AND override_date IS NULL`, slotColumns)
	var slot models.TimetableSlot
	if err := r.db.GetContext(ctx, &slot, query, classID, termID, day, period); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListBase returns the standing weekly pattern for a class ordered day/period.
func (r *TimetableSlotRepository) ListBase(ctx context.Context, classID, termID string) ([]models.TimetableSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_slots
WHERE class_id = $1 AND term_id = $2 AND override_date IS NULL
ORDER BY day_of_week ASC, period ASC`, slotColumns)
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, classID, termID); err != nil {
		return nil, fmt.Errorf("list base slots: %w", err)
	}
	return slots, nil
}

// ListBaseByTeacher returns every base slot a teacher holds across all classes
// of a term. Used for cross-class conflict checks and availability.
func (r *TimetableSlotRepository) ListBaseByTeacher(ctx context.Context, teacherID, termID string) ([]models.TimetableSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_slots
WHERE teacher_id = $1 AND term_id = $2 AND override_date IS NULL
ORDER BY class_id ASC, day_of_week ASC, period ASC`, slotColumns)
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, teacherID, termID); err != nil {
		return nil, fmt.Errorf("list base slots by teacher: %w", err)
	}
	return slots, nil
}

// ListOverridesForDate returns dated overrides for a class on one calendar day.
func (r *TimetableSlotRepository) ListOverridesForDate(ctx context.Context, classID string, date time.Time) ([]models.TimetableSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_slots
WHERE class_id = $1 AND override_date = $2
ORDER BY day_of_week ASC, period ASC`, slotColumns)
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, classID, date); err != nil {
		return nil, fmt.Errorf("list overrides for date: %w", err)
	}
	return slots, nil
}

// ListOverridesByTeacherDate returns overrides assigned to a teacher on a date
// across all classes, for candidate conflict checks.
func (r *TimetableSlotRepository) ListOverridesByTeacherDate(ctx context.Context, teacherID string, date time.Time) ([]models.TimetableSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_slots
WHERE teacher_id = $1 AND override_date = $2
ORDER BY day_of_week ASC, period ASC`, slotColumns)
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, teacherID, date); err != nil {
		return nil, fmt.Errorf("list overrides by teacher: %w", err)
	}
	return slots, nil
}

// FindOverride returns the override row shadowing a base slot on a date, or
// sql.ErrNoRows.
func (r *TimetableSlotRepository) FindOverride(ctx context.Context, baseSlot *models.TimetableSlot, date time.Time) (*models.TimetableSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_slots
WHERE class_id = $1 AND term_id = $2 AND day_of_week = $3 AND period = $4 AND override_date = $5`, slotColumns)
	var slot models.TimetableSlot
	err := r.db.GetContext(ctx, &slot, query, baseSlot.ClassID, baseSlot.TermID, baseSlot.Day, baseSlot.Period, date)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// InsertOverride writes one dated override row.
func (r *TimetableSlotRepository) InsertOverride(ctx context.Context, slot *models.TimetableSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	const query = `INSERT INTO timetable_slots (id, class_id, term_id, day_of_week, period, kind, subject_id, teacher_id, double_period, override_date, created_at, updated_at)
VALUES (:id, :class_id, :term_id, :day_of_week, :period, :kind, :subject_id, :teacher_id, :double_period, :override_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("insert override slot: %w", err)
	}
	return nil
}

// DeleteOverride removes a dated override, compensating a revoked absence.
func (r *TimetableSlotRepository) DeleteOverride(ctx context.Context, id string) error {
	const query = `DELETE FROM timetable_slots WHERE id = $1 AND override_date IS NOT NULL`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete override slot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceBaseSlots atomically swaps the full base pattern for a class. Either
// every slot is replaced or none are; a half-written timetable must never be
// visible.
func (r *TimetableSlotRepository) ReplaceBaseSlots(ctx context.Context, classID, termID string, slots []models.TimetableSlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace base slots: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM timetable_slots WHERE class_id = $1 AND term_id = $2 AND override_date IS NULL`, classID, termID); err != nil {
		return fmt.Errorf("clear base slots: %w", err)
	}

	const insert = `INSERT INTO timetable_slots (id, class_id, term_id, day_of_week, period, kind, subject_id, teacher_id, double_period, override_date, created_at, updated_at)
VALUES (:id, :class_id, :term_id, :day_of_week, :period, :kind, :subject_id, :teacher_id, :double_period, :override_date, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		slot.ClassID = classID
		slot.TermID = termID
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		slot.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, insert, slot); err != nil {
			return fmt.Errorf("insert base slot: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit base slots: %w", err)
	}
	return nil
}

// UpsertBase writes one base slot for manual admin edits.
func (r *TimetableSlotRepository) UpsertBase(ctx context.Context, slot *models.TimetableSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now
	const query = `INSERT INTO timetable_slots (id, class_id, term_id, day_of_week, period, kind, subject_id, teacher_id, double_period, override_date, created_at, updated_at)
VALUES (:id, :class_id, :term_id, :day_of_week, :period, :kind, :subject_id, :teacher_id, :double_period, NULL, :created_at, :updated_at)
ON CONFLICT (class_id, term_id, day_of_week, period) WHERE override_date IS NULL DO UPDATE
SET kind = EXCLUDED.kind,
    subject_id = EXCLUDED.subject_id,
    teacher_id = EXCLUDED.teacher_id,
    double_period = EXCLUDED.double_period,
    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("upsert base slot: %w", err)
	}
	return nil
}

// FindBaseConflict returns another class's base slot holding the same teacher
// at the same term/day/period, or sql.ErrNoRows.
func (r *TimetableSlotRepository) FindBaseConflict(ctx context.Context, termID, teacherID string, day, period int, excludeClassID string) (*models.TimetableSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_slots
WHERE term_id = $1 AND teacher_id = $2 AND day_of_week = $3 AND period = $4 AND class_id <> $5 AND override_date IS NULL
LIMIT 1`, slotColumns)
	var slot models.TimetableSlot
	if err := r.db.GetContext(ctx, &slot, query, termID, teacherID, day, period, excludeClassID); err != nil {
		return nil, err
	}
	return &slot, nil
}
