package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/phaseline/internal/calendar"
	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/impact"
	"github.com/alexanderramin/phaseline/internal/repository"
)

// FormatProjectList renders stored projects as a table.
func FormatProjectList(projects []repository.ProjectSummary) string {
	if len(projects) == 0 {
		return Dim("No projects. Import one with 'phaseline project import <file>'.") + "\n"
	}
	headers := []string{"ID", "NAME", "REGION", "REV", "UPDATED"}
	var rows [][]string
	for _, p := range projects {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			domain.CoalesceStr(p.Region, "--"),
			fmt.Sprintf("%d", p.Revision),
			HumanTimestamp(p.UpdatedAt),
		})
	}
	return RenderTable(headers, rows)
}

// ProjectDetail is everything the show command computes about a project.
type ProjectDetail struct {
	Project      *domain.Project
	Revision     int
	Start, End   time.Time
	WorkingDays  int
	CalendarDays int
	Cost         float64
	PhaseCosts   map[string]float64
	Warnings     []string
}

// FormatProjectDetail renders a project summary followed by its phases.
func FormatProjectDetail(d ProjectDetail) string {
	p := d.Project
	var b strings.Builder
	b.WriteString(Header(p.Name))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %d\n",
		Dim("ID:"), p.ID,
		Dim("Region:"), domain.CoalesceStr(p.Region, "--"),
		Dim("Revision:"), d.Revision))
	if d.CalendarDays > 0 {
		b.WriteString(fmt.Sprintf("%s %s   %s %d working / %d calendar (%s)\n",
			Dim("Window:"), DateRange(d.Start, d.End),
			Dim("Days:"), d.WorkingDays, d.CalendarDays, calendar.FormatAsMonths(d.CalendarDays)))
	}
	b.WriteString(fmt.Sprintf("%s %s\n\n", Dim("Cost:"), impact.FormatMoney(d.Cost)))

	headers := []string{"PHASE", "NAME", "KIND", "DATES", "TASKS", "COST", "DEPENDS ON"}
	var rows [][]string
	for _, ph := range p.Phases {
		dates := DateRange(ph.StartDate, ph.EndDate())
		if years, ok := ph.SupportYears(); ok {
			dates = fmt.Sprintf("%s (+%dy)", FormatDate(ph.StartDate), years)
		}
		rows = append(rows, []string{
			ph.ID,
			ph.Name,
			string(ph.Kind()),
			dates,
			fmt.Sprintf("%d", len(ph.Tasks)),
			impact.FormatMoney(d.PhaseCosts[ph.ID]),
			domain.CoalesceStr(strings.Join(ph.Dependencies, ", "), "--"),
		})
	}
	b.WriteString(RenderTable(headers, rows))

	if len(p.Milestones) > 0 {
		b.WriteString("\n" + Bold("Milestones") + "\n")
		for _, m := range p.Milestones {
			b.WriteString(fmt.Sprintf("  ◇ %s  %s\n", FormatDate(m.Date), m.Name))
		}
	}
	for _, w := range d.Warnings {
		b.WriteString(StyleYellow.Render("! "+w) + "\n")
	}
	return b.String()
}

// FormatHistory renders a project's revision history, newest first.
func FormatHistory(revs []repository.Revision) string {
	headers := []string{"REV", "ACTION", "IMPACT", "WHEN"}
	var rows [][]string
	for _, r := range revs {
		sev := Dim("--")
		if s, ok := impact.ParseSeverity(r.Severity); ok && r.Severity != "" {
			sev = SeverityPill(s)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Number),
			r.Action,
			sev,
			HumanTimestamp(r.CreatedAt),
		})
	}
	return RenderTable(headers, rows)
}

// DaysResult is the output of a working-day query.
type DaysResult struct {
	Start, End   time.Time
	Region       string
	WorkingDays  int
	CalendarDays int
	Holidays     []domain.Holiday
	// Added is set when the query also asked for N working days after Start.
	Added     *time.Time
	AddedDays int
}

// FormatDays renders a working-day query.
func FormatDays(r DaysResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s\n", Bold(DateRange(r.Start, r.End)), Dim("region "+domain.CoalesceStr(r.Region, "none"))))
	b.WriteString(fmt.Sprintf("  Working days:  %d\n", r.WorkingDays))
	b.WriteString(fmt.Sprintf("  Calendar days: %d (%s)\n", r.CalendarDays, calendar.FormatAsMonths(r.CalendarDays)))
	if len(r.Holidays) > 0 {
		b.WriteString("  Holidays:\n")
		for _, h := range r.Holidays {
			b.WriteString(fmt.Sprintf("    %s  %s\n", FormatDate(h.Date), h.Name))
		}
	}
	if r.Added != nil {
		b.WriteString(fmt.Sprintf("  %d working days after %s: %s\n", r.AddedDays, FormatDate(r.Start), Bold(FormatDate(*r.Added))))
	}
	return b.String()
}
