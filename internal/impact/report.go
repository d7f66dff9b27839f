package impact

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/phaseline/internal/ledger"
)

type Severity int

const (
	Low Severity = iota
	Medium
	High
	Critical
)

var severityNames = [...]string{"low", "medium", "high", "critical"}

func (s Severity) String() string {
	if s < Low || s > Critical {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// ParseSeverity parses a severity name (case-insensitive).
func ParseSeverity(s string) (Severity, bool) {
	for i, name := range severityNames {
		if strings.EqualFold(name, s) {
			return Severity(i), true
		}
	}
	return Low, false
}

func maxSeverity(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}

// Category labels.
const (
	LabelTasks        = "Tasks"
	LabelResources    = "Resource Allocations"
	LabelDependencies = "Dependencies"
	LabelBudget       = "Budget Impact"
	LabelTimeline     = "Timeline"
	LabelMilestones   = "Milestones"
	LabelSubtasks     = "Subtasks"
	LabelRescheduled  = "Rescheduled Tasks"
)

// Facts are the raw numbers behind a category. Fields that do not apply to
// a category stay zero.
type Facts struct {
	TaskCount       int
	ResourceCount   int
	DependentPhases int
	DependentTasks  int
	MilestoneCount  int
	WorkingDays     int
	CalendarDays    int
	Hours           float64
	Cost            float64
	BudgetPercent   float64
}

type Category struct {
	Label    string
	Severity Severity
	Items    []string
	Advisory string
	Facts    Facts
}

// Target names the item a report is about.
type Target struct {
	Kind string // "phase" or "task"
	ID   string
	Name string
}

type Action string

const (
	ActionDelete Action = "delete"
	ActionResize Action = "resize"
	ActionMove   Action = "move"
)

// Report is the severity-classified description of everything a proposed
// mutation would change or break. It is derived data and never persisted.
type Report struct {
	Action Action
	Target Target
	// Severity is the headline shown to the caller. For deletions it is the
	// aggregate factor rating; for other actions it is MaxCategorySeverity.
	Severity            Severity
	MaxCategorySeverity Severity
	Factors             []string
	Categories          []Category
	Resources           []ledger.ResourceTotal
}

// Category returns the category with the given label.
func (r *Report) Category(label string) (Category, bool) {
	for _, c := range r.Categories {
		if c.Label == label {
			return c, true
		}
	}
	return Category{}, false
}

func (r *Report) add(c Category) {
	r.Categories = append(r.Categories, c)
	r.MaxCategorySeverity = maxSeverity(r.MaxCategorySeverity, c.Severity)
}

// Confirmation is the kind of acknowledgement a caller must collect before
// committing the reported mutation.
type Confirmation int

const (
	ConfirmPlain Confirmation = iota
	ConfirmDeleteAnyway
)

// DeleteAnywayPhrase is what a user types to acknowledge a critical report.
const DeleteAnywayPhrase = "delete anyway"

func (c Confirmation) String() string {
	if c == ConfirmDeleteAnyway {
		return "delete-anyway"
	}
	return "plain"
}

// Confirmation returns ConfirmDeleteAnyway for critical reports.
func (r *Report) Confirmation() Confirmation {
	if r.Severity == Critical {
		return ConfirmDeleteAnyway
	}
	return ConfirmPlain
}

// Summary is a one-line description of the report.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s %s %q: %s impact (%d categories)", r.Action, r.Target.Kind, r.Target.Name, r.Severity, len(r.Categories))
}
