package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arka-edu/timetable-api/internal/models"
)

// ClassRepository provides persistence for class sections.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID loads a class section by id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.ClassSection, error) {
	const query = `SELECT id, grade, section, term_id, created_at FROM class_sections WHERE id = $1`
	var class models.ClassSection
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListByTerm returns class sections in ascending grade/section order. Stable
// ordering keeps batch generation deterministic.
func (r *ClassRepository) ListByTerm(ctx context.Context, termID string) ([]models.ClassSection, error) {
	const query = `SELECT id, grade, section, term_id, created_at FROM class_sections WHERE term_id = $1 ORDER BY grade ASC, section ASC`
	var classes []models.ClassSection
	if err := r.db.SelectContext(ctx, &classes, query, termID); err != nil {
		return nil, fmt.Errorf("list classes by term: %w", err)
	}
	return classes, nil
}
