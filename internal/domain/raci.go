package domain

import "fmt"

type RACIEntry struct {
	ResourceID string
	Role       RACIRole
}

// RACIWarnings returns soft warnings for a RACI list. More than one
// Accountable is reported but never rejected.
func RACIWarnings(item string, entries []RACIEntry) []string {
	var warnings []string
	accountable := 0
	for _, e := range entries {
		if e.Role == RoleAccountable {
			accountable++
		}
		if !ValidRACIRoles[string(e.Role)] {
			warnings = append(warnings, fmt.Sprintf("%s: unknown RACI role %q for %s", item, e.Role, e.ResourceID))
		}
	}
	if accountable > 1 {
		warnings = append(warnings, fmt.Sprintf("%s has %d accountable resources (expected at most 1)", item, accountable))
	}
	return warnings
}

// ProjectRACIWarnings collects RACI warnings over every phase and task.
func ProjectRACIWarnings(p *Project) []string {
	var warnings []string
	for i := range p.Phases {
		ph := &p.Phases[i]
		warnings = append(warnings, RACIWarnings(fmt.Sprintf("phase %q", ph.Name), ph.RACI)...)
		for j := range ph.Tasks {
			t := &ph.Tasks[j]
			warnings = append(warnings, RACIWarnings(fmt.Sprintf("task %q", t.Name), t.RACI)...)
		}
	}
	return warnings
}
