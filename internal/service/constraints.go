package service

// teacherLedger tracks one teacher's blocked and reserved cells plus load
// counters during a generation run. Each run owns private ledgers, so the
// search never shares mutable state across classes.
type teacherLedger struct {
	MaxLoadPerDay  int
	MaxLoadPerWeek int
	perDay         map[int]int
	weekly         int
	blocked        map[int]map[int]bool
	assigned       map[int]map[int]bool
}

func newTeacherLedger() *teacherLedger {
	return &teacherLedger{
		perDay:   make(map[int]int),
		blocked:  make(map[int]map[int]bool),
		assigned: make(map[int]map[int]bool),
	}
}

// Block marks a cell unavailable from external constraints: approved leave or
// a base assignment in another class.
func (t *teacherLedger) Block(day, period int) {
	if t.blocked[day] == nil {
		t.blocked[day] = make(map[int]bool)
	}
	t.blocked[day][period] = true
}

// CanTeach reports whether the teacher is free for the cell and under load caps.
func (t *teacherLedger) CanTeach(day, period int) bool {
	if t.blocked[day] != nil && t.blocked[day][period] {
		return false
	}
	if t.assigned[day] != nil && t.assigned[day][period] {
		return false
	}
	if t.MaxLoadPerDay > 0 && t.perDay[day] >= t.MaxLoadPerDay {
		return false
	}
	if t.MaxLoadPerWeek > 0 && t.weekly >= t.MaxLoadPerWeek {
		return false
	}
	return true
}

// Reserve claims a cell during search.
func (t *teacherLedger) Reserve(day, period int) {
	if t.assigned[day] == nil {
		t.assigned[day] = make(map[int]bool)
	}
	t.assigned[day][period] = true
	t.perDay[day]++
	t.weekly++
}

// Release undoes a reservation on backtrack.
func (t *teacherLedger) Release(day, period int) {
	if t.assigned[day] != nil {
		delete(t.assigned[day], period)
	}
	if t.perDay[day] > 0 {
		t.perDay[day]--
	}
	if t.weekly > 0 {
		t.weekly--
	}
}

// WeeklyLoad returns the current weekly reservation count.
func (t *teacherLedger) WeeklyLoad() int {
	return t.weekly
}
