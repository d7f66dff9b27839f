// Package ledger rolls resource assignments up into hours and cost.
//
// Hours of an assignment are workingDays(task) * 8 * allocation/100, where
// working days honour the project's holiday calendar. Cost is hours times the
// resource's hourly rate.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/phaseline/internal/calendar"
	"github.com/alexanderramin/phaseline/internal/domain"
)

// HoursPerDay is the length of a working day.
const HoursPerDay = 8.0

type Ledger struct {
	cal   *calendar.Calendar
	rates RateTable
}

func New(cal *calendar.Calendar, rates RateTable) *Ledger {
	if cal == nil {
		cal = calendar.New(nil)
	}
	return &Ledger{cal: cal, rates: rates}
}

func (l *Ledger) Rates() RateTable             { return l.rates }
func (l *Ledger) Calendar() *calendar.Calendar { return l.cal }

// WorkingDaysOf counts the working days a task spans.
func (l *Ledger) WorkingDaysOf(p *domain.Project, t domain.Task) (int, error) {
	return l.cal.ProjectWorkingDays(p, t.StartDate, t.EndDate)
}

// AssignmentHours returns the hours one assignment commits over workingDays.
func AssignmentHours(workingDays int, a domain.ResourceAssignment) float64 {
	return float64(workingDays) * HoursPerDay * a.AllocationPercent / 100
}

// HoursOf sums the allocated hours of every assignment on t.
func (l *Ledger) HoursOf(p *domain.Project, t domain.Task) (float64, error) {
	wd, err := l.WorkingDaysOf(p, t)
	if err != nil {
		return 0, fmt.Errorf("hours of task %s: %w", t.ID, err)
	}
	var hours float64
	for _, a := range t.Assignments {
		hours += AssignmentHours(wd, a)
	}
	return hours, nil
}

// CostOf prices every assignment on t at its resource's hourly rate.
func (l *Ledger) CostOf(p *domain.Project, t domain.Task) (float64, error) {
	wd, err := l.WorkingDaysOf(p, t)
	if err != nil {
		return 0, fmt.Errorf("cost of task %s: %w", t.ID, err)
	}
	var cost float64
	for _, a := range t.Assignments {
		r, ok := p.FindResource(a.ResourceID)
		if !ok {
			return 0, fmt.Errorf("cost of task %s: %w", t.ID, domain.NotFound("resource", a.ResourceID))
		}
		cost += AssignmentHours(wd, a) * r.HourlyRate
	}
	return cost, nil
}

// UsageCountOf returns how many tasks in the project reference resourceID.
func (l *Ledger) UsageCountOf(p *domain.Project, resourceID string) int {
	n := 0
	for _, pt := range p.AllTasks() {
		if _, ok := pt.Task.Assignment(resourceID); ok {
			n++
		}
	}
	return n
}

// ResourceTotal is the rollup of one resource over a set of tasks.
type ResourceTotal struct {
	Resource domain.Resource
	Tasks    int
	Hours    float64
	Cost     float64
}

// Rollup aggregates hours and cost per distinct resource over tasks. The
// result is ordered by cost (highest first), then resource name, then id.
func (l *Ledger) Rollup(p *domain.Project, tasks []domain.Task) ([]ResourceTotal, error) {
	holidays := l.cal.HolidaysFor(p)
	byID := make(map[string]*ResourceTotal)
	var order []string

	for _, t := range tasks {
		if len(t.Assignments) == 0 {
			continue
		}
		wd, err := calendar.WorkingDays(t.StartDate, t.EndDate, holidays)
		if err != nil {
			return nil, fmt.Errorf("rollup task %s: %w", t.ID, err)
		}
		for _, a := range t.Assignments {
			rt, ok := byID[a.ResourceID]
			if !ok {
				r, found := p.FindResource(a.ResourceID)
				if !found {
					return nil, fmt.Errorf("rollup task %s: %w", t.ID, domain.NotFound("resource", a.ResourceID))
				}
				rt = &ResourceTotal{Resource: r}
				byID[a.ResourceID] = rt
				order = append(order, a.ResourceID)
			}
			hours := AssignmentHours(wd, a)
			rt.Tasks++
			rt.Hours += hours
			rt.Cost += hours * rt.Resource.HourlyRate
		}
	}

	out := make([]ResourceTotal, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	SortByCost(out)
	return out, nil
}

// SortByCost orders totals by cost descending, then name, then id.
func SortByCost(totals []ResourceTotal) {
	sort.SliceStable(totals, func(i, j int) bool {
		a, b := totals[i], totals[j]
		if a.Cost != b.Cost {
			return a.Cost > b.Cost
		}
		if a.Resource.Name != b.Resource.Name {
			return a.Resource.Name < b.Resource.Name
		}
		return a.Resource.ID < b.Resource.ID
	})
}

// Sum returns the total hours and cost of totals.
func Sum(totals []ResourceTotal) (hours, cost float64) {
	for _, t := range totals {
		hours += t.Hours
		cost += t.Cost
	}
	return hours, cost
}

// PhaseCost is the resource cost of every task in a phase.
func (l *Ledger) PhaseCost(p *domain.Project, phaseID string) (float64, error) {
	for _, ph := range p.Phases {
		if ph.ID != phaseID {
			continue
		}
		totals, err := l.Rollup(p, ph.Tasks)
		if err != nil {
			return 0, err
		}
		_, cost := Sum(totals)
		return cost, nil
	}
	return 0, domain.NotFound("phase", phaseID)
}

// ProjectCost is the resource cost across all phases.
func (l *Ledger) ProjectCost(p *domain.Project) (float64, error) {
	var tasks []domain.Task
	for _, ph := range p.Phases {
		tasks = append(tasks, ph.Tasks...)
	}
	totals, err := l.Rollup(p, tasks)
	if err != nil {
		return 0, err
	}
	_, cost := Sum(totals)
	return cost, nil
}

// Peak is the highest combined allocation of a resource and the first date
// it occurs.
type Peak struct {
	Percent float64
	Date    time.Time
}

// Overbooked reports whether the resource is allocated beyond 100% on some
// day.
func (pk Peak) Overbooked() bool { return pk.Percent > 100 }

// Utilization sweeps the task windows a resource is assigned to and returns
// its peak combined allocation. Weekends and holidays are not skipped: two
// tasks that only overlap on a Saturday still count as overlapping.
func (l *Ledger) Utilization(p *domain.Project, resourceID string) Peak {
	type event struct {
		at    time.Time
		delta float64
	}
	var events []event
	for _, pt := range p.AllTasks() {
		a, ok := pt.Task.Assignment(resourceID)
		if !ok || a.AllocationPercent == 0 {
			continue
		}
		events = append(events,
			event{at: domain.Day(pt.Task.StartDate), delta: a.AllocationPercent},
			event{at: domain.Day(pt.Task.EndDate).AddDate(0, 0, 1), delta: -a.AllocationPercent},
		)
	}
	// Releases sort before bookings on the same day.
	sort.Slice(events, func(i, j int) bool {
		if !events[i].at.Equal(events[j].at) {
			return events[i].at.Before(events[j].at)
		}
		return events[i].delta < events[j].delta
	})

	var peak Peak
	var cur float64
	for _, e := range events {
		cur += e.delta
		if cur > peak.Percent {
			peak = Peak{Percent: cur, Date: e.at}
		}
	}
	return peak
}
