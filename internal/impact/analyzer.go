// Package impact computes what a structural change to a schedule would
// remove, break or cost before it is committed.
//
// Analysis is read-only: the analyzer queries the graph, the resource ledger
// and the calendar, and returns a Report. It is safe to call repeatedly and
// returns identical reports for identical graphs.
package impact

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/phaseline/internal/calendar"
	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/ledger"
	"github.com/alexanderramin/phaseline/internal/schedule"
	"github.com/dustin/go-humanize"
)

const (
	// MaxListedTasks caps the task names listed in a Tasks category.
	MaxListedTasks = 5
	// TopResources caps the per-resource lines in a Resource category.
	TopResources = 3
	// BudgetAdvisoryPct is the share of project cost above which a budget
	// advisory is attached.
	BudgetAdvisoryPct = 15.0
)

const budgetAdvisory = "executive approval recommended"

type Analyzer struct {
	cal    *calendar.Calendar
	ledger *ledger.Ledger
}

func New(cal *calendar.Calendar, l *ledger.Ledger) *Analyzer {
	if cal == nil {
		cal = calendar.New(nil)
	}
	if l == nil {
		l = ledger.New(cal, ledger.DefaultRateTable())
	}
	return &Analyzer{cal: cal, ledger: l}
}

// AnalyzeDeletion reports the impact of deleting a phase or a task.
func (a *Analyzer) AnalyzeDeletion(g *schedule.Graph, id string) (*Report, error) {
	kind, err := g.Kind(id)
	if err != nil {
		return nil, err
	}
	if kind == "phase" {
		return a.AnalyzePhaseDeletion(g, id)
	}
	return a.AnalyzeTaskDeletion(g, id)
}

// AnalyzePhaseDeletion reports everything lost with a phase: its tasks,
// their resource allocations, phases and tasks elsewhere that depend on it,
// its share of the budget, its working days and anchored milestones.
func (a *Analyzer) AnalyzePhaseDeletion(g *schedule.Graph, phaseID string) (*Report, error) {
	ph, err := g.Phase(phaseID)
	if err != nil {
		return nil, err
	}
	p := g.View()
	r := &Report{
		Action: ActionDelete,
		Target: Target{Kind: "phase", ID: ph.ID, Name: ph.Name},
	}

	if len(ph.Tasks) > 0 {
		names := make([]string, len(ph.Tasks))
		for i, t := range ph.Tasks {
			names[i] = t.Name
		}
		r.add(Category{
			Label:    LabelTasks,
			Severity: Critical,
			Items:    listNames(names, MaxListedTasks),
			Facts:    Facts{TaskCount: len(ph.Tasks)},
		})
	}

	totals, err := a.ledger.Rollup(p, ph.Tasks)
	if err != nil {
		return nil, fmt.Errorf("analyze phase %s: %w", ph.ID, err)
	}
	r.Resources = totals
	_, cost := ledger.Sum(totals)
	if c, ok := resourceCategory(totals); ok {
		r.add(c)
	}

	depPhases := g.DependentPhases(ph.ID)
	depTasks := g.DependentTasks(ph.TaskIDs())
	if c, ok := dependencyCategory(ph, depPhases, depTasks, ph.TaskIDs()); ok {
		r.add(c)
	}

	if c, ok, err := a.budgetCategory(p, cost); err != nil {
		return nil, fmt.Errorf("analyze phase %s: %w", ph.ID, err)
	} else if ok {
		r.add(c)
	}

	tl, err := a.timelineCategory(p, ph.StartDate, ph.EndDate(), "removed from the plan")
	if err != nil {
		return nil, fmt.Errorf("analyze phase %s: %w", ph.ID, err)
	}
	r.add(tl)

	var milestones []string
	for _, m := range p.Milestones {
		if m.PhaseID == ph.ID {
			milestones = append(milestones, fmt.Sprintf("%s (%s)", m.Name, m.Date.Format(domain.DateLayout)))
		}
	}
	if len(milestones) > 0 {
		r.add(Category{
			Label:    LabelMilestones,
			Severity: Medium,
			Items:    milestones,
			Facts:    Facts{MilestoneCount: len(milestones)},
		})
	}

	r.Factors = factors(factorInput{
		taskCount:       len(ph.Tasks),
		resourceCount:   len(totals),
		dependentPhases: len(depPhases),
		dependentTasks:  len(depTasks),
		cost:            cost,
		supportTasks:    ph.IsSupport() && len(ph.Tasks) > 0,
	})
	r.Severity = AggregateSeverity(len(r.Factors))
	return r, nil
}

// AnalyzeTaskDeletion reports the impact of deleting a single task. Phase
// dependencies are never affected by a task deletion.
func (a *Analyzer) AnalyzeTaskDeletion(g *schedule.Graph, taskID string) (*Report, error) {
	t, err := g.Task(taskID)
	if err != nil {
		return nil, err
	}
	ph, err := g.PhaseOf(taskID)
	if err != nil {
		return nil, err
	}
	p := g.View()
	r := &Report{
		Action: ActionDelete,
		Target: Target{Kind: "task", ID: t.ID, Name: t.Name},
	}

	r.add(Category{
		Label:    LabelTasks,
		Severity: Critical,
		Items:    []string{t.Name},
		Facts:    Facts{TaskCount: 1},
	})

	totals, err := a.ledger.Rollup(p, []domain.Task{t})
	if err != nil {
		return nil, fmt.Errorf("analyze task %s: %w", t.ID, err)
	}
	r.Resources = totals
	_, cost := ledger.Sum(totals)
	if c, ok := resourceCategory(totals); ok {
		r.add(c)
	}

	self := map[string]bool{t.ID: true}
	depTasks := g.DependentTasks(self)
	if c, ok := dependencyCategory(ph, nil, depTasks, self); ok {
		r.add(c)
	}

	if children := g.Children(t.ID); len(children) > 0 {
		items := make([]string, len(children))
		for i, c := range children {
			items[i] = fmt.Sprintf("%s becomes a top-level task of %q", c.Name, ph.Name)
		}
		r.add(Category{
			Label:    LabelSubtasks,
			Severity: Low,
			Items:    items,
			Facts:    Facts{TaskCount: len(children)},
		})
	}

	if c, ok, err := a.budgetCategory(p, cost); err != nil {
		return nil, fmt.Errorf("analyze task %s: %w", t.ID, err)
	} else if ok {
		r.add(c)
	}

	tl, err := a.timelineCategory(p, t.StartDate, t.EndDate, "of scheduled work removed")
	if err != nil {
		return nil, fmt.Errorf("analyze task %s: %w", t.ID, err)
	}
	r.add(tl)

	r.Factors = factors(factorInput{
		taskCount:      1,
		resourceCount:  len(totals),
		dependentTasks: len(depTasks),
		cost:           cost,
		supportTasks:   ph.IsSupport(),
	})
	r.Severity = AggregateSeverity(len(r.Factors))
	return r, nil
}

func listNames(names []string, limit int) []string {
	if len(names) <= limit {
		return append([]string(nil), names...)
	}
	out := append([]string(nil), names[:limit]...)
	return append(out, fmt.Sprintf("... and %d more", len(names)-limit))
}

func resourceCategory(totals []ledger.ResourceTotal) (Category, bool) {
	if len(totals) == 0 {
		return Category{}, false
	}
	var items []string
	for i, rt := range totals {
		if i == TopResources {
			items = append(items, fmt.Sprintf("... and %d more", len(totals)-TopResources))
			break
		}
		items = append(items, fmt.Sprintf("%s: %s, %s across %d task(s)",
			rt.Resource.Name, formatHours(rt.Hours), FormatMoney(rt.Cost), rt.Tasks))
	}
	hours, cost := ledger.Sum(totals)
	items = append(items, fmt.Sprintf("Total: %s, %s", formatHours(hours), FormatMoney(cost)))
	return Category{
		Label:    LabelResources,
		Severity: High,
		Items:    items,
		Facts:    Facts{ResourceCount: len(totals), Hours: hours, Cost: cost},
	}, true
}

// dependencyCategory lists phases that depend on ph and tasks outside owned
// that depend on a task in owned, as separate findings.
func dependencyCategory(ph domain.Phase, depPhases []domain.Phase, depTasks []domain.PhaseTask, owned map[string]bool) (Category, bool) {
	if len(depPhases) == 0 && len(depTasks) == 0 {
		return Category{}, false
	}
	var items []string
	for _, dp := range depPhases {
		items = append(items, fmt.Sprintf("Phase %q loses prerequisite %q", dp.Name, ph.Name))
	}
	for _, dt := range depTasks {
		var lost []string
		for _, dep := range dt.Task.Dependencies {
			if owned[dep] {
				lost = append(lost, dep)
			}
		}
		items = append(items, fmt.Sprintf("Task %q in %q loses dependency on %s",
			dt.Task.Name, dt.Phase.Name, strings.Join(lost, ", ")))
	}
	return Category{
		Label:    LabelDependencies,
		Severity: Critical,
		Items:    items,
		Facts:    Facts{DependentPhases: len(depPhases), DependentTasks: len(depTasks)},
	}, true
}

func (a *Analyzer) budgetCategory(p *domain.Project, cost float64) (Category, bool, error) {
	if cost <= 0 {
		return Category{}, false, nil
	}
	total, err := a.ledger.ProjectCost(p)
	if err != nil {
		return Category{}, false, err
	}
	var pct float64
	if total > 0 {
		pct = cost / total * 100
	}
	c := Category{
		Label:    LabelBudget,
		Severity: Medium,
		Items: []string{fmt.Sprintf("%s of %s total project cost (%.1f%%)",
			FormatMoney(cost), FormatMoney(total), pct)},
		Facts: Facts{Cost: cost, BudgetPercent: pct},
	}
	if pct > BudgetAdvisoryPct {
		c.Advisory = budgetAdvisory
	}
	return c, true, nil
}

func (a *Analyzer) timelineCategory(p *domain.Project, start, end time.Time, what string) (Category, error) {
	wd, err := a.cal.ProjectWorkingDays(p, start, end)
	if err != nil {
		return Category{}, err
	}
	cd, err := calendar.CalendarDays(start, end)
	if err != nil {
		return Category{}, err
	}
	return Category{
		Label:    LabelTimeline,
		Severity: Low,
		Items: []string{fmt.Sprintf("%d working days %s (%d calendar days, %s)",
			wd, what, cd, calendar.FormatAsMonths(cd))},
		Facts: Facts{WorkingDays: wd, CalendarDays: cd},
	}, nil
}

// FormatMoney renders an amount with thousands separators and two decimals.
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", v)
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}
