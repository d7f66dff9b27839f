package importer

import (
	"fmt"

	"github.com/alexanderramin/phaseline/internal/domain"
)

var validCategories = map[string]bool{
	string(domain.CategoryInternal):   true,
	string(domain.CategoryContractor): true,
	string(domain.CategoryClient):     true,
	string(domain.CategoryThirdParty): true,
}

// ValidateProjectFile checks the document shape before conversion: required
// fields, date formats, phase kinds and enum values. Graph invariants
// (references, containment, cycles) are checked after conversion.
// Returns a slice of all validation errors found.
func ValidateProjectFile(f *ProjectFile) []error {
	var errs []error

	if f.Project.Name == "" {
		errs = append(errs, domain.Invalid("project.name", domain.RuleRequired, "project name is required"))
	}

	for i, h := range f.Holidays {
		prefix := fmt.Sprintf("holidays[%d]", i)
		errs = append(errs, validateDate(prefix+".date", h.Date)...)
	}

	for i, r := range f.Resources {
		prefix := fmt.Sprintf("resources[%d]", i)
		if r.Name == "" {
			errs = append(errs, domain.Invalid(prefix+".name", domain.RuleRequired, "resource name is required"))
		}
		if r.Category != "" && !validCategories[r.Category] {
			errs = append(errs, domain.Invalid(prefix+".category", domain.RuleUnknownRef, "invalid category %q", r.Category))
		}
	}

	if len(f.Phases) == 0 {
		errs = append(errs, domain.Invalid("phases", domain.RuleRequired, "at least one phase is required"))
	}
	for i, ph := range f.Phases {
		errs = append(errs, validatePhase(fmt.Sprintf("phases[%d]", i), ph)...)
	}

	for i, m := range f.Milestones {
		prefix := fmt.Sprintf("milestones[%d]", i)
		if m.Name == "" {
			errs = append(errs, domain.Invalid(prefix+".name", domain.RuleRequired, "milestone name is required"))
		}
		errs = append(errs, validateDate(prefix+".date", m.Date)...)
	}

	return errs
}

func validatePhase(prefix string, ph PhaseImport) []error {
	var errs []error

	if ph.Name == "" {
		errs = append(errs, domain.Invalid(prefix+".name", domain.RuleRequired, "phase name is required"))
	}
	errs = append(errs, validateDate(prefix+".start_date", ph.StartDate)...)

	kind := domain.CoalesceStr(ph.Kind, string(domain.PhaseStandard))
	switch {
	case !domain.ValidPhaseKinds[kind]:
		errs = append(errs, domain.Invalid(prefix+".kind", domain.RulePhaseKind, "invalid value %q", ph.Kind))
	case kind == string(domain.PhaseStandard):
		if ph.SupportYears != nil {
			errs = append(errs, domain.Invalid(prefix+".support_years", domain.RulePhaseKind, "a standard phase cannot carry support years"))
		}
		if ph.EndDate == nil {
			errs = append(errs, domain.Invalid(prefix+".end_date", domain.RuleRequired, "a standard phase needs an end date"))
		} else {
			errs = append(errs, validateDate(prefix+".end_date", *ph.EndDate)...)
		}
	default:
		if ph.EndDate != nil && *ph.EndDate != "" {
			errs = append(errs, domain.Invalid(prefix+".end_date", domain.RuleDerivedEnd, "an ongoing support phase end is derived from support_years"))
		}
		if ph.SupportYears == nil {
			errs = append(errs, domain.Invalid(prefix+".support_years", domain.RuleRequired, "an ongoing support phase needs support_years"))
		} else if err := domain.CheckSupportYears(prefix+".support_years", *ph.SupportYears); err != nil {
			errs = append(errs, err)
		}
	}

	errs = append(errs, validateRACI(prefix+".raci", ph.RACI)...)

	for j, t := range ph.Tasks {
		tprefix := fmt.Sprintf("%s.tasks[%d]", prefix, j)
		if t.Name == "" {
			errs = append(errs, domain.Invalid(tprefix+".name", domain.RuleRequired, "task name is required"))
		}
		errs = append(errs, validateDate(tprefix+".start_date", t.StartDate)...)
		errs = append(errs, validateDate(tprefix+".end_date", t.EndDate)...)
		errs = append(errs, validateRACI(tprefix+".raci", t.RACI)...)
	}

	return errs
}

func validateRACI(field string, entries []RACIImport) []error {
	var errs []error
	for i, e := range entries {
		if !domain.ValidRACIRoles[e.Role] {
			errs = append(errs, domain.Invalid(fmt.Sprintf("%s[%d].role", field, i), domain.RuleUnknownRef, "invalid RACI role %q", e.Role))
		}
	}
	return errs
}

func validateDate(field, s string) []error {
	if s == "" {
		return []error{domain.Invalid(field, domain.RuleRequired, "date is required")}
	}
	if _, err := domain.ParseDate(s); err != nil {
		return []error{domain.Invalid(field, domain.RuleDateRange, "invalid date format %q (expected YYYY-MM-DD)", s)}
	}
	return nil
}
