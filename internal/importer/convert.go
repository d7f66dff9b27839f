package importer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/ledger"
	"github.com/alexanderramin/phaseline/internal/schedule"
	"github.com/google/uuid"
)

// Import parses, validates and converts a project document. All problems
// are returned at once; the project is nil whenever errs is non-empty.
func Import(data []byte, rates ledger.RateTable) (*domain.Project, []error) {
	f, err := ParseProjectFile(data)
	if err != nil {
		return nil, []error{err}
	}
	return ImportFile(f, rates)
}

// ImportFile validates and converts an already parsed document.
func ImportFile(f *ProjectFile, rates ledger.RateTable) (*domain.Project, []error) {
	if errs := ValidateProjectFile(f); len(errs) > 0 {
		return nil, errs
	}
	p, err := Convert(f, rates)
	if err != nil {
		return nil, []error{err}
	}
	if errs := schedule.Check(p); len(errs) > 0 {
		return nil, errs
	}
	return p, nil
}

// Convert transforms a validated ProjectFile into a domain project. Missing
// ids are filled with UUIDs. Call ValidateProjectFile first; Convert
// assumes the shape is valid.
func Convert(f *ProjectFile, rates ledger.RateTable) (*domain.Project, error) {
	p := &domain.Project{
		ID:     domain.CoalesceStr(f.Project.ID, uuid.New().String()),
		Name:   f.Project.Name,
		Region: strings.ToUpper(f.Project.Region),
	}

	for _, h := range f.Holidays {
		d, err := domain.ParseDate(h.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing holiday date: %w", err)
		}
		p.Holidays = append(p.Holidays, domain.Holiday{Date: d, Name: h.Name, RegionTag: strings.ToUpper(h.Region)})
	}

	for _, r := range f.Resources {
		p.Resources = append(p.Resources, convertResource(r, rates))
	}

	for _, ph := range f.Phases {
		phase, err := convertPhase(ph)
		if err != nil {
			return nil, err
		}
		p.Phases = append(p.Phases, phase)
	}

	for _, m := range f.Milestones {
		d, err := domain.ParseDate(m.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing milestone date: %w", err)
		}
		p.Milestones = append(p.Milestones, domain.Milestone{
			ID:      domain.CoalesceStr(m.ID, uuid.New().String()),
			Name:    m.Name,
			Date:    d,
			PhaseID: m.PhaseID,
		})
	}

	return p, nil
}

func convertResource(r ResourceImport, rates ledger.RateTable) domain.Resource {
	res := domain.Resource{
		ID:          domain.CoalesceStr(r.ID, uuid.New().String()),
		Name:        r.Name,
		Designation: r.Designation,
		Category:    domain.ResourceCategory(r.Category),
		Billable:    domain.BoolFromPtrWithDefault(true, r.Billable),
	}
	switch {
	case r.HourlyRate != nil:
		res.HourlyRate = *r.HourlyRate
	case res.Billable && r.Designation != "":
		// Unknown designations stay unpriced rather than failing the import.
		res.HourlyRate, _ = rates.RateFor(r.Designation)
	}
	return res
}

func convertPhase(ph PhaseImport) (domain.Phase, error) {
	start, err := domain.ParseDate(ph.StartDate)
	if err != nil {
		return domain.Phase{}, fmt.Errorf("parsing start_date of phase %q: %w", ph.Name, err)
	}

	phase := domain.Phase{
		ID:           domain.CoalesceStr(ph.ID, uuid.New().String()),
		Name:         ph.Name,
		StartDate:    start,
		ColorTag:     ph.Color,
		Dependencies: ph.Dependencies,
		Collapsed:    ph.Collapsed,
		RACI:         convertRACI(ph.RACI),
	}
	if domain.CoalesceStr(ph.Kind, string(domain.PhaseStandard)) == string(domain.PhaseOngoingSupport) {
		phase.Span = domain.SupportSpan{Years: *ph.SupportYears}
	} else {
		end, err := domain.ParseDate(*ph.EndDate)
		if err != nil {
			return domain.Phase{}, fmt.Errorf("parsing end_date of phase %q: %w", ph.Name, err)
		}
		phase.Span = domain.StandardSpan{End: end}
	}

	for _, t := range ph.Tasks {
		task, err := convertTask(t)
		if err != nil {
			return domain.Phase{}, err
		}
		phase.Tasks = append(phase.Tasks, task)
	}
	return phase, nil
}

func convertTask(t TaskImport) (domain.Task, error) {
	start, err := domain.ParseDate(t.StartDate)
	if err != nil {
		return domain.Task{}, fmt.Errorf("parsing start_date of task %q: %w", t.Name, err)
	}
	end, err := domain.ParseDate(t.EndDate)
	if err != nil {
		return domain.Task{}, fmt.Errorf("parsing end_date of task %q: %w", t.Name, err)
	}

	task := domain.Task{
		ID:           domain.CoalesceStr(t.ID, uuid.New().String()),
		Name:         t.Name,
		StartDate:    start,
		EndDate:      end,
		Dependencies: t.Dependencies,
		RACI:         convertRACI(t.RACI),
	}
	if t.ParentTaskID != nil && *t.ParentTaskID != "" {
		parent := *t.ParentTaskID
		task.ParentTaskID = &parent
	}
	for _, a := range t.Assignments {
		task.Assignments = append(task.Assignments, domain.ResourceAssignment{
			ResourceID:        a.ResourceID,
			AllocationPercent: a.AllocationPercent,
		})
	}
	return task, nil
}

func convertRACI(entries []RACIImport) []domain.RACIEntry {
	var out []domain.RACIEntry
	for _, e := range entries {
		out = append(out, domain.RACIEntry{ResourceID: e.ResourceID, Role: domain.RACIRole(e.Role)})
	}
	return out
}

// Export converts a project back into its document form. Export then
// Import yields an equal project.
func Export(p *domain.Project) *ProjectFile {
	f := &ProjectFile{
		Project: ProjectImport{ID: p.ID, Name: p.Name, Region: p.Region},
		Phases:  make([]PhaseImport, 0, len(p.Phases)),
	}

	for _, h := range p.Holidays {
		f.Holidays = append(f.Holidays, HolidayImport{Date: formatDate(h.Date), Name: h.Name, Region: h.RegionTag})
	}

	for _, r := range p.Resources {
		rate, billable := r.HourlyRate, r.Billable
		f.Resources = append(f.Resources, ResourceImport{
			ID:          r.ID,
			Name:        r.Name,
			Designation: r.Designation,
			Category:    string(r.Category),
			HourlyRate:  &rate,
			Billable:    &billable,
		})
	}

	for _, ph := range p.Phases {
		out := PhaseImport{
			ID:           ph.ID,
			Name:         ph.Name,
			Kind:         string(ph.Kind()),
			StartDate:    formatDate(ph.StartDate),
			Color:        ph.ColorTag,
			Dependencies: ph.Dependencies,
			Collapsed:    ph.Collapsed,
			RACI:         exportRACI(ph.RACI),
		}
		if years, ok := ph.SupportYears(); ok {
			out.SupportYears = &years
		} else {
			end := formatDate(ph.EndDate())
			out.EndDate = &end
		}
		for _, t := range ph.Tasks {
			out.Tasks = append(out.Tasks, exportTask(t))
		}
		f.Phases = append(f.Phases, out)
	}

	for _, m := range p.Milestones {
		f.Milestones = append(f.Milestones, MilestoneImport{ID: m.ID, Name: m.Name, Date: formatDate(m.Date), PhaseID: m.PhaseID})
	}
	return f
}

func exportTask(t domain.Task) TaskImport {
	out := TaskImport{
		ID:           t.ID,
		Name:         t.Name,
		StartDate:    formatDate(t.StartDate),
		EndDate:      formatDate(t.EndDate),
		Dependencies: t.Dependencies,
		RACI:         exportRACI(t.RACI),
	}
	if t.ParentTaskID != nil {
		parent := *t.ParentTaskID
		out.ParentTaskID = &parent
	}
	for _, a := range t.Assignments {
		out.Assignments = append(out.Assignments, AssignmentImport{ResourceID: a.ResourceID, AllocationPercent: a.AllocationPercent})
	}
	return out
}

func exportRACI(entries []domain.RACIEntry) []RACIImport {
	var out []RACIImport
	for _, e := range entries {
		out = append(out, RACIImport{ResourceID: e.ResourceID, Role: string(e.Role)})
	}
	return out
}

// Marshal encodes a project as an indented JSON document.
func Marshal(p *domain.Project) ([]byte, error) {
	data, err := json.MarshalIndent(Export(p), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding project %s: %w", p.ID, err)
	}
	return data, nil
}

func formatDate(t time.Time) string { return t.Format(domain.DateLayout) }
