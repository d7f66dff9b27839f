package domain

import (
	"slices"
	"time"
)

type Task struct {
	ID           string
	Name         string
	StartDate    time.Time
	EndDate      time.Time
	Dependencies []string // task ids anywhere in the project
	Assignments  []ResourceAssignment
	ParentTaskID *string
	RACI         []RACIEntry
}

// ResourceAssignment commits AllocationPercent of a resource's time to the
// owning task for the task's whole duration.
type ResourceAssignment struct {
	ResourceID        string
	AllocationPercent float64
}

// DependsOn reports whether t lists taskID as a prerequisite.
func (t Task) DependsOn(taskID string) bool {
	return slices.Contains(t.Dependencies, taskID)
}

// DependsOnAny reports whether t depends on any id in ids.
func (t Task) DependsOnAny(ids map[string]bool) bool {
	for _, d := range t.Dependencies {
		if ids[d] {
			return true
		}
	}
	return false
}

// Assignment returns the assignment of resourceID on t, if any.
func (t Task) Assignment(resourceID string) (ResourceAssignment, bool) {
	for _, a := range t.Assignments {
		if a.ResourceID == resourceID {
			return a, true
		}
	}
	return ResourceAssignment{}, false
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	out := t
	out.Dependencies = slices.Clone(t.Dependencies)
	out.Assignments = slices.Clone(t.Assignments)
	out.RACI = slices.Clone(t.RACI)
	if t.ParentTaskID != nil {
		pid := *t.ParentTaskID
		out.ParentTaskID = &pid
	}
	return out
}
