package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arka-edu/timetable-api/internal/models"
)

func TestTimetableSlotRepositoryReplaceBaseSlotsCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_slots WHERE class_id = $1 AND term_id = $2 AND override_date IS NULL")).
		WithArgs("class-8a", "term-1").
		WillReturnResult(sqlmock.NewResult(0, 23))
	mock.ExpectExec("INSERT INTO timetable_slots").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	subject := "math"
	teacher := "teacher-1"
	slots := []models.TimetableSlot{{
		Day: 1, Period: 2, Kind: models.SlotKindPeriod,
		SubjectID: &subject, TeacherID: &teacher,
	}}
	require.NoError(t, repo.ReplaceBaseSlots(context.Background(), "class-8a", "term-1", slots))
	assert.NotEmpty(t, slots[0].ID, "ids are assigned on write")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSlotRepositoryReplaceBaseSlotsRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM timetable_slots").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.ReplaceBaseSlots(context.Background(), "class-8a", "term-1", nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSlotRepositoryDeleteOverrideMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_slots WHERE id = $1 AND override_date IS NOT NULL")).
		WithArgs("slot-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteOverride(context.Background(), "slot-404")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSlotRepositoryFindOverride(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "class_id", "term_id", "day_of_week", "period", "kind", "subject_id", "teacher_id", "double_period", "override_date", "created_at", "updated_at"}).
		AddRow("override-1", "class-8a", "term-1", 1, 2, "PERIOD", "math", "sub-1", false, date, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE class_id = $1 AND term_id = $2 AND day_of_week = $3 AND period = $4 AND override_date = $5")).
		WithArgs("class-8a", "term-1", 1, 2, date).
		WillReturnRows(rows)

	base := &models.TimetableSlot{ClassID: "class-8a", TermID: "term-1", Day: 1, Period: 2}
	override, err := repo.FindOverride(context.Background(), base, date)
	require.NoError(t, err)
	assert.Equal(t, "override-1", override.ID)
	require.NotNil(t, override.OverrideDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSlotRepositoryFindBase(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "term_id", "day_of_week", "period", "kind", "subject_id", "teacher_id", "double_period", "override_date", "created_at", "updated_at"}).
		AddRow("slot-3", "class-7b", "term-1", 1, 3, "PERIOD", "math", "teacher-2", false, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE class_id = $1 AND term_id = $2 AND day_of_week = $3 AND period = $4 AND override_date IS NULL")).
		WithArgs("class-7b", "term-1", 1, 3).
		WillReturnRows(rows)

	slot, err := repo.FindBase(context.Background(), "class-7b", "term-1", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "slot-3", slot.ID)
	assert.Nil(t, slot.OverrideDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableSlotRepositoryListBaseOrdersByDayPeriod(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableSlotRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "term_id", "day_of_week", "period", "kind", "subject_id", "teacher_id", "double_period", "override_date", "created_at", "updated_at"}).
		AddRow("slot-1", "class-8a", "term-1", 1, 1, "ASSEMBLY", nil, nil, false, nil, time.Now(), time.Now()).
		AddRow("slot-2", "class-8a", "term-1", 1, 2, "PERIOD", "math", "teacher-1", false, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE class_id = $1 AND term_id = $2 AND override_date IS NULL")).
		WithArgs("class-8a", "term-1").
		WillReturnRows(rows)

	slots, err := repo.ListBase(context.Background(), "class-8a", "term-1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, models.SlotKindAssembly, slots[0].Kind)
	assert.Nil(t, slots[0].SubjectID)
	assert.Equal(t, "math", *slots[1].SubjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
