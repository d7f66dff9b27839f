package formatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/alexanderramin/phaseline/internal/domain"
	"github.com/alexanderramin/phaseline/internal/timeline"
	"github.com/charmbracelet/lipgloss"
)

// CellPx is the nominal pixel width of one terminal cell. Adaptive zoom
// works in pixels; the terminal renderer converts its column count with it.
const CellPx = 8.0

// NameWidth is the width of the label column left of the track.
const NameWidth = 22

// MinTrackWidth is the narrowest track FormatTimeline draws.
const MinTrackWidth = 10

// TrackWidth returns the number of track columns available in a terminal
// that is cols wide.
func TrackWidth(cols int) int {
	return max(cols-NameWidth-colGap, MinTrackWidth)
}

// BarColumns converts a percentage span into the half-open column range
// [start, end) of a track that is width columns wide. Every bar covers at
// least one column.
func BarColumns(s timeline.Span, width int) (start, end int) {
	start = int(math.Floor(s.Left / 100 * float64(width)))
	end = int(math.Ceil((s.Left + s.Width) / 100 * float64(width)))
	start = min(max(start, 0), width-1)
	end = min(end, width)
	if end <= start {
		end = start + 1
	}
	return start, end
}

// FormatTimeline renders a layout as an axis followed by one row per bar.
func FormatTimeline(l *timeline.Layout, width int) string {
	var b strings.Builder
	b.WriteString(TimelineHeader(l))
	b.WriteString("\n\n")
	b.WriteString(TimelineAxis(l, width))
	for _, bar := range l.Bars {
		b.WriteString(TimelineRow(bar, width))
		b.WriteString("\n")
	}
	return b.String()
}

// TimelineHeader is the one-line summary of granularity and window.
func TimelineHeader(l *timeline.Layout) string {
	m := l.Mapper
	return fmt.Sprintf("%s  %s  %s",
		Bold(l.Granularity.String()),
		Dim(DateRange(m.Start(), m.End())),
		Dim(fmt.Sprintf("%d days", m.TotalDays())),
	)
}

// TimelineAxis renders the marker labels and ticks, indented past the name
// column. The result ends with a newline.
func TimelineAxis(l *timeline.Layout, width int) string {
	width = max(width, MinTrackWidth)
	pad := strings.Repeat(" ", NameWidth+colGap)
	labels, ticks := renderAxis(l.Markers, width)
	return pad + labels + "\n" + pad + StyleDim.Render(ticks) + "\n"
}

// TimelineRow renders one bar: its name, its track and its dates.
func TimelineRow(bar timeline.Bar, width int) string {
	width = max(width, MinTrackWidth)
	name := Truncate(strings.Repeat("  ", bar.Depth)+bar.Name, NameWidth)
	return name + strings.Repeat(" ", NameWidth-lipgloss.Width(name)+colGap) +
		renderTrack(bar, width) + "  " + Dim(barDates(bar))
}

func renderAxis(markers []timeline.Marker, width int) (labels, ticks string) {
	lab := []rune(strings.Repeat(" ", width))
	tick := []rune(strings.Repeat("─", width))
	free := 0
	for _, mk := range markers {
		col := int(math.Floor(mk.Percent / 100 * float64(width)))
		if col >= width {
			continue
		}
		tick[col] = '┬'
		text := []rune(mk.Label)
		if col < free || col+len(text) > width {
			continue
		}
		copy(lab[col:], text)
		free = col + len(text) + 1
	}
	return strings.TrimRight(string(lab), " "), string(tick)
}

func renderTrack(bar timeline.Bar, width int) string {
	start, end := BarColumns(bar.Span, width)
	var glyph string
	var style lipgloss.Style
	switch bar.Kind {
	case timeline.BarSupport:
		glyph, style = "◆", StylePurple
	case timeline.BarTask:
		glyph, style = "▒", StyleFg
	default:
		glyph, style = "█", StyleBlue
	}
	return strings.Repeat(" ", start) +
		style.Render(strings.Repeat(glyph, end-start)) +
		strings.Repeat(" ", width-end)
}

func barDates(bar timeline.Bar) string {
	if bar.Kind == timeline.BarSupport {
		return "support from " + FormatDate(bar.Start)
	}
	days := domain.DaysBetween(bar.Start, bar.End) + 1
	return fmt.Sprintf("%s (%dd)", DateRange(bar.Start, bar.End), days)
}
