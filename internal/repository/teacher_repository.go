package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arka-edu/timetable-api/internal/models"
)

// TeacherRepository provides persistence for teacher profiles.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID loads a teacher profile by id.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.TeacherProfile, error) {
	const query = `SELECT id, name, subject_ids, general_substitute, max_load_per_day, max_load_per_week, created_at, updated_at
FROM teacher_profiles WHERE id = $1`
	var teacher models.TeacherProfile
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListSubstituteCandidates returns teachers rostered for the subject plus
// general substitutes, ordered by id for deterministic ranking input.
func (r *TeacherRepository) ListSubstituteCandidates(ctx context.Context, subjectID string) ([]models.TeacherProfile, error) {
	const query = `SELECT id, name, subject_ids, general_substitute, max_load_per_day, max_load_per_week, created_at, updated_at
FROM teacher_profiles WHERE $1 = ANY(subject_ids) OR general_substitute = TRUE ORDER BY id ASC`
	var teachers []models.TeacherProfile
	if err := r.db.SelectContext(ctx, &teachers, query, subjectID); err != nil {
		return nil, fmt.Errorf("list substitute candidates: %w", err)
	}
	return teachers, nil
}
