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

// AbsenceRepository stores absence events emitted by the leave collaborator.
type AbsenceRepository struct {
	db *sqlx.DB
}

// NewAbsenceRepository creates a new absence repository.
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

// Create stores a new absence event.
func (r *AbsenceRepository) Create(ctx context.Context, absence *models.TeacherAbsence) error {
	if absence.ID == "" {
		absence.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	absence.CreatedAt = now
	absence.UpdatedAt = now
	if absence.Status == "" {
		absence.Status = models.AbsenceStatusActive
	}
	const query = `INSERT INTO teacher_absences (id, teacher_id, leave_type, start_date, end_date, status, created_at, updated_at)
VALUES (:id, :teacher_id, :leave_type, :start_date, :end_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, absence); err != nil {
		return fmt.Errorf("create absence: %w", err)
	}
	return nil
}

// FindByID loads an absence event by id.
func (r *AbsenceRepository) FindByID(ctx context.Context, id string) (*models.TeacherAbsence, error) {
	const query = `SELECT id, teacher_id, leave_type, start_date, end_date, status, created_at, updated_at FROM teacher_absences WHERE id = $1`
	var absence models.TeacherAbsence
	if err := r.db.GetContext(ctx, &absence, query, id); err != nil {
		return nil, err
	}
	return &absence, nil
}

// Revoke marks an active absence as revoked. Returns sql.ErrNoRows when the
// absence was not active.
func (r *AbsenceRepository) Revoke(ctx context.Context, id string) error {
	const query = `UPDATE teacher_absences SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, models.AbsenceStatusRevoked, time.Now().UTC(), id, models.AbsenceStatusActive)
	if err != nil {
		return fmt.Errorf("revoke absence: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListActiveByTeacher returns active absences for a teacher overlapping the
// given window. Used to derive availability for generation.
func (r *AbsenceRepository) ListActiveByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]models.TeacherAbsence, error) {
	const query = `SELECT id, teacher_id, leave_type, start_date, end_date, status, created_at, updated_at
FROM teacher_absences
WHERE teacher_id = $1 AND status = $2 AND start_date <= $3 AND end_date >= $4
ORDER BY start_date ASC`
	var absences []models.TeacherAbsence
	if err := r.db.SelectContext(ctx, &absences, query, teacherID, models.AbsenceStatusActive, to, from); err != nil {
		return nil, fmt.Errorf("list active absences: %w", err)
	}
	return absences, nil
}

// ListActiveOnDate returns active absences covering a calendar date.
func (r *AbsenceRepository) ListActiveOnDate(ctx context.Context, date time.Time) ([]models.TeacherAbsence, error) {
	const query = `SELECT id, teacher_id, leave_type, start_date, end_date, status, created_at, updated_at
FROM teacher_absences
WHERE status = $1 AND start_date <= $2 AND end_date >= $2
ORDER BY teacher_id ASC`
	var absences []models.TeacherAbsence
	if err := r.db.SelectContext(ctx, &absences, query, models.AbsenceStatusActive, date); err != nil {
		return nil, fmt.Errorf("list absences on date: %w", err)
	}
	return absences, nil
}
