package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/impact"
	"github.com/alexanderramin/phaseline/internal/ledger"
)

// ResourceRow pairs a resource's rollup with its peak allocation.
type ResourceRow struct {
	Total ledger.ResourceTotal
	Peak  ledger.Peak
}

// FormatResources renders the resource ledger of a project. Resources with
// no assignments are listed with zero totals.
func FormatResources(projectName string, rows []ResourceRow) string {
	if len(rows) == 0 {
		return Dim(fmt.Sprintf("Project %q has no resources.", projectName)) + "\n"
	}

	headers := []string{"RESOURCE", "DESIGNATION", "CATEGORY", "RATE", "TASKS", "HOURS", "COST", "PEAK"}
	var tableRows [][]string
	var totals []ledger.ResourceTotal
	var overbooked []string
	for _, row := range rows {
		r := row.Total.Resource
		rate := Dim("--")
		if r.HourlyRate > 0 {
			rate = impact.FormatMoney(r.HourlyRate) + "/h"
		}
		if !r.Billable {
			rate = Dim("non-billable")
		}
		peak := RenderUtilization(row.Peak.Percent, 10)
		if row.Peak.Overbooked() {
			overbooked = append(overbooked, fmt.Sprintf("%s peaks at %s on %s",
				r.Name, FormatPercent(row.Peak.Percent), FormatDate(row.Peak.Date)))
		}
		tableRows = append(tableRows, []string{
			r.Name,
			domain.CoalesceStr(r.Designation, "--"),
			domain.CoalesceStr(string(r.Category), "--"),
			rate,
			fmt.Sprintf("%d", row.Total.Tasks),
			FormatHours(row.Total.Hours),
			impact.FormatMoney(row.Total.Cost),
			peak,
		})
		totals = append(totals, row.Total)
	}

	var b strings.Builder
	b.WriteString(Header("Resources: " + projectName))
	b.WriteString("\n")
	b.WriteString(RenderTable(headers, tableRows))

	hours, cost := ledger.Sum(totals)
	b.WriteString(fmt.Sprintf("\n%s %s, %s\n", Bold("Total:"), FormatHours(hours), impact.FormatMoney(cost)))
	for _, line := range overbooked {
		b.WriteString(StyleRed.Render("! "+line) + "\n")
	}
	return b.String()
}
