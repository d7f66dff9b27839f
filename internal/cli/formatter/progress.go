package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderUtilization renders a peak allocation bar like [████░░░░] 50%.
// Anything over 100% fills the bar and turns red; 80-100% is yellow.
func RenderUtilization(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if width < 2 {
		width = 2
	}

	frac := pct / 100
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct > 100:
		style = StyleRed
	case pct >= 80:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %4.0f%%", style.Render(bar), pct)
}
