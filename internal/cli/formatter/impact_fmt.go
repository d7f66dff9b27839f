package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/phaseline/internal/impact"
)

// FormatImpactReport renders a report as a headline, the factors that drove
// the headline severity, and one block per category.
func FormatImpactReport(r *impact.Report) string {
	var b strings.Builder

	title := fmt.Sprintf("%s %s %q", r.Action, r.Target.Kind, r.Target.Name)
	b.WriteString(Header(title))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Impact: %s", SeverityPill(r.Severity)))
	if r.MaxCategorySeverity > r.Severity {
		b.WriteString(Dim(fmt.Sprintf("  (worst finding: %s)", r.MaxCategorySeverity)))
	}
	b.WriteString("\n")
	if len(r.Factors) > 0 {
		b.WriteString(Dim("Factors: " + strings.Join(r.Factors, ", ")))
		b.WriteString("\n")
	}

	for _, c := range r.Categories {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s  %s\n", SeverityPill(c.Severity), Bold(c.Label)))
		for _, item := range c.Items {
			b.WriteString("    • " + item + "\n")
		}
		if c.Advisory != "" {
			b.WriteString("    " + StyleYellow.Render("! "+c.Advisory) + "\n")
		}
	}

	if r.Confirmation() == impact.ConfirmDeleteAnyway {
		b.WriteString("\n")
		b.WriteString(StyleRed.Render(fmt.Sprintf("Critical impact: type %q to proceed.", impact.DeleteAnywayPhrase)))
		b.WriteString("\n")
	}
	return b.String()
}
