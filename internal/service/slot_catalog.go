package service

import (
	"time"

	"github.com/arka-edu/timetable-api/internal/models"
)

const (
	daysPerWeek    = 5
	periodsPerDay  = 8
	assemblyPeriod = 1
	breakPeriod    = 6
)

// CatalogSlot is one cell of the per-term day×period structure.
type CatalogSlot struct {
	Day    int
	Period int
	Kind   models.SlotKind
}

// SlotCatalog is the static day×period layout for a term: fixed non-teaching
// slots plus the academic periods the generator may assign. Pure data.
type SlotCatalog struct {
	slots []CatalogSlot
}

// CatalogOption customises the catalog layout.
type CatalogOption func(map[[2]int]models.SlotKind)

// WithAnthem pins an anthem slot at the given day and period.
func WithAnthem(day, period int) CatalogOption {
	return func(fixed map[[2]int]models.SlotKind) {
		fixed[[2]int{day, period}] = models.SlotKindAnthem
	}
}

// NewSlotCatalog builds the default weekly layout: assembly at period 1 and
// break at period 6 every day, remaining periods academic. Iteration order is
// day-major then period-minor, which generation determinism relies on.
func NewSlotCatalog(opts ...CatalogOption) *SlotCatalog {
	fixed := map[[2]int]models.SlotKind{}
	for day := 1; day <= daysPerWeek; day++ {
		fixed[[2]int{day, assemblyPeriod}] = models.SlotKindAssembly
		fixed[[2]int{day, breakPeriod}] = models.SlotKindBreak
	}
	for _, opt := range opts {
		opt(fixed)
	}

	catalog := &SlotCatalog{}
	for day := 1; day <= daysPerWeek; day++ {
		for period := 1; period <= periodsPerDay; period++ {
			kind, ok := fixed[[2]int{day, period}]
			if !ok {
				kind = models.SlotKindPeriod
			}
			catalog.slots = append(catalog.slots, CatalogSlot{Day: day, Period: period, Kind: kind})
		}
	}
	return catalog
}

// Slots returns every slot in deterministic order.
func (c *SlotCatalog) Slots() []CatalogSlot {
	return c.slots
}

// AcademicSlots returns only the assignable period slots, in order.
func (c *SlotCatalog) AcademicSlots() []CatalogSlot {
	out := make([]CatalogSlot, 0, len(c.slots))
	for _, slot := range c.slots {
		if slot.Kind == models.SlotKindPeriod {
			out = append(out, slot)
		}
	}
	return out
}

// AcademicSlotCount returns the number of assignable periods per week.
func (c *SlotCatalog) AcademicSlotCount() int {
	return len(c.AcademicSlots())
}

// IsAcademic reports whether a (day, period) cell is assignable.
func (c *SlotCatalog) IsAcademic(day, period int) bool {
	for _, slot := range c.slots {
		if slot.Day == day && slot.Period == period {
			return slot.Kind == models.SlotKindPeriod
		}
	}
	return false
}

// DayOfDate maps a calendar date onto the catalog's school day index
// (Monday=1..Friday=5). Weekend dates return 0.
func DayOfDate(date time.Time) int {
	switch date.Weekday() {
	case time.Monday:
		return 1
	case time.Tuesday:
		return 2
	case time.Wednesday:
		return 3
	case time.Thursday:
		return 4
	case time.Friday:
		return 5
	default:
		return 0
	}
}
