package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arka-edu/timetable-api/internal/models"
)

func TestSlotCatalogShape(t *testing.T) {
	catalog := NewSlotCatalog()

	slots := catalog.Slots()
	require.Len(t, slots, 40)

	fixed := 0
	for _, slot := range slots {
		switch {
		case slot.Period == 1:
			assert.Equal(t, models.SlotKindAssembly, slot.Kind)
			fixed++
		case slot.Period == 6:
			assert.Equal(t, models.SlotKindBreak, slot.Kind)
			fixed++
		default:
			assert.Equal(t, models.SlotKindPeriod, slot.Kind)
		}
	}
	assert.Equal(t, 10, fixed)
	assert.Equal(t, 30, catalog.AcademicSlotCount())
}

func TestSlotCatalogWithAnthem(t *testing.T) {
	catalog := NewSlotCatalog(WithAnthem(1, 2))

	assert.Equal(t, 29, catalog.AcademicSlotCount())
	assert.False(t, catalog.IsAcademic(1, 2))
	assert.True(t, catalog.IsAcademic(2, 2))
}

func TestSlotCatalogAcademicOrder(t *testing.T) {
	catalog := NewSlotCatalog()

	cells := catalog.AcademicSlots()
	require.NotEmpty(t, cells)
	for i := 1; i < len(cells); i++ {
		prev, cur := cells[i-1], cells[i]
		if cur.Day == prev.Day {
			assert.Greater(t, cur.Period, prev.Period)
		} else {
			assert.Greater(t, cur.Day, prev.Day)
		}
	}
}

func TestDayOfDate(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DayOfDate(monday))
	assert.Equal(t, 5, DayOfDate(monday.AddDate(0, 0, 4)))
	assert.Equal(t, 0, DayOfDate(monday.AddDate(0, 0, 5)), "saturday is not a school day")
	assert.Equal(t, 0, DayOfDate(monday.AddDate(0, 0, 6)), "sunday is not a school day")
}
