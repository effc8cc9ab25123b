package service

import (
	"sort"

	"github.com/arka-edu/timetable-api/internal/models"
)

// placement is one solved academic cell.
type placement struct {
	SubjectID string
	TeacherID string
	Double    bool
}

// searchUnit tracks remaining demand for one subject during search. A subject
// flagged for a double period consumes two adjacent cells as one atomic unit;
// any quota beyond the pair is placed as singles.
type searchUnit struct {
	SubjectID       string
	TeacherID       string
	Remaining       int
	DoubleRemaining int
}

func (u *searchUnit) singlesAvailable() int {
	return u.Remaining - 2*u.DoubleRemaining
}

// classSearch performs the deterministic constraint-propagation/backtracking
// walk over one class's academic cells in day-major, period-minor order.
type classSearch struct {
	cells      []CatalogSlot
	units      []*searchUnit
	ledgers    map[string]*teacherLedger
	placements map[[2]int]placement

	backtracks int
	limit      int
	aborted    bool
	failed     string
}

func newClassSearch(catalog *SlotCatalog, reqs []models.SubjectRequirement, ledgers map[string]*teacherLedger, limit int) *classSearch {
	units := make([]*searchUnit, 0, len(reqs))
	for _, req := range reqs {
		unit := &searchUnit{
			SubjectID: req.SubjectID,
			TeacherID: req.TeacherID,
			Remaining: req.PeriodsPerWeek,
		}
		if req.RequiresDoublePeriod {
			unit.DoubleRemaining = 1
		}
		units = append(units, unit)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].SubjectID < units[j].SubjectID })

	return &classSearch{
		cells:      catalog.AcademicSlots(),
		units:      units,
		ledgers:    ledgers,
		placements: make(map[[2]int]placement),
		limit:      limit,
	}
}

// run attempts a complete placement. On failure it names the subject that
// could not be placed when the backtracking budget ran out.
func (s *classSearch) run() (map[[2]int]placement, string, bool) {
	demand := 0
	for _, unit := range s.units {
		demand += unit.Remaining
	}
	if s.solve(0, demand) {
		return s.placements, "", true
	}
	if s.failed == "" && len(s.units) > 0 {
		s.failed = s.units[0].SubjectID
	}
	return nil, s.failed, false
}

func (s *classSearch) solve(idx, demand int) bool {
	if s.aborted {
		return false
	}
	if demand == 0 {
		return true
	}
	if idx >= len(s.cells) {
		return false
	}
	cell := s.cells[idx]
	remainingCells := len(s.cells) - idx

	// Highest remaining demand first; ties break on subject id so identical
	// inputs always replay the identical search.
	candidates := make([]*searchUnit, 0, len(s.units))
	for _, unit := range s.units {
		if unit.Remaining > 0 {
			candidates = append(candidates, unit)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Remaining != candidates[j].Remaining {
			return candidates[i].Remaining > candidates[j].Remaining
		}
		return candidates[i].SubjectID < candidates[j].SubjectID
	})

	for _, unit := range candidates {
		ledger := s.ledgers[unit.TeacherID]
		if ledger == nil {
			continue
		}

		if unit.DoubleRemaining > 0 && s.adjacentFree(idx) && ledger.CanTeach(cell.Day, cell.Period) {
			next := s.cells[idx+1]
			ledger.Reserve(cell.Day, cell.Period)
			if ledger.CanTeach(next.Day, next.Period) {
				ledger.Reserve(next.Day, next.Period)
				s.place(cell, unit, true)
				s.place(next, unit, true)
				unit.Remaining -= 2
				unit.DoubleRemaining--
				if s.solve(idx+2, demand-2) {
					return true
				}
				unit.DoubleRemaining++
				unit.Remaining += 2
				s.unplace(next)
				s.unplace(cell)
				ledger.Release(next.Day, next.Period)
				ledger.Release(cell.Day, cell.Period)
				if s.noteBacktrack(unit.SubjectID) {
					return false
				}
			} else {
				ledger.Release(cell.Day, cell.Period)
			}
		}

		if unit.singlesAvailable() > 0 && ledger.CanTeach(cell.Day, cell.Period) {
			ledger.Reserve(cell.Day, cell.Period)
			s.place(cell, unit, false)
			unit.Remaining--
			if s.solve(idx+1, demand-1) {
				return true
			}
			unit.Remaining++
			s.unplace(cell)
			ledger.Release(cell.Day, cell.Period)
			if s.noteBacktrack(unit.SubjectID) {
				return false
			}
		}
	}

	// A cell may stay empty only while every remaining period still fits in
	// the cells after it.
	if demand <= remainingCells-1 {
		if s.solve(idx+1, demand) {
			return true
		}
	}

	if len(candidates) > 0 && s.failed == "" {
		s.failed = candidates[0].SubjectID
	}
	return false
}

func (s *classSearch) adjacentFree(idx int) bool {
	if idx+1 >= len(s.cells) {
		return false
	}
	cell, next := s.cells[idx], s.cells[idx+1]
	return next.Day == cell.Day && next.Period == cell.Period+1
}

func (s *classSearch) place(cell CatalogSlot, unit *searchUnit, double bool) {
	s.placements[[2]int{cell.Day, cell.Period}] = placement{
		SubjectID: unit.SubjectID,
		TeacherID: unit.TeacherID,
		Double:    double,
	}
}

func (s *classSearch) unplace(cell CatalogSlot) {
	delete(s.placements, [2]int{cell.Day, cell.Period})
}

// noteBacktrack counts an undone placement and aborts the whole search once
// the budget is exhausted.
func (s *classSearch) noteBacktrack(subjectID string) bool {
	s.backtracks++
	if s.backtracks > s.limit {
		s.aborted = true
		if s.failed == "" {
			s.failed = subjectID
		}
		return true
	}
	return false
}
