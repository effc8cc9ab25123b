package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arka-edu/timetable-api/internal/models"
)

// SubjectRequirementRepository stores weekly subject quotas per class.
type SubjectRequirementRepository struct {
	db *sqlx.DB
}

// NewSubjectRequirementRepository creates a new requirement repository.
func NewSubjectRequirementRepository(db *sqlx.DB) *SubjectRequirementRepository {
	return &SubjectRequirementRepository{db: db}
}

// ListByClass returns requirements for a class ordered by subject id for
// deterministic generation input.
func (r *SubjectRequirementRepository) ListByClass(ctx context.Context, classID string) ([]models.SubjectRequirement, error) {
	const query = `SELECT id, class_id, subject_id, teacher_id, periods_per_week, requires_double_period, created_at
FROM subject_requirements WHERE class_id = $1 ORDER BY subject_id ASC`
	var reqs []models.SubjectRequirement
	if err := r.db.SelectContext(ctx, &reqs, query, classID); err != nil {
		return nil, fmt.Errorf("list subject requirements: %w", err)
	}
	return reqs, nil
}
