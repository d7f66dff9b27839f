package timeline

// Config holds the marker legibility thresholds and the placement of
// ongoing-support markers.
type Config struct {
	MinMarkerPx       float64 // below this, coarsen
	MaxMarkerPx       float64 // above this, refine
	SupportOffsetDays int
	SupportWidthPct   float64
}

// DefaultConfig returns a 40px floor, a 150px ceiling and support markers
// 2% wide, 3 days after the last standard phase.
func DefaultConfig() Config {
	return Config{
		MinMarkerPx:       40,
		MaxMarkerPx:       150,
		SupportOffsetDays: 3,
		SupportWidthPct:   2,
	}
}

// PixelsPerMarker estimates the width each marker gets when windowDays are
// drawn across pixelWidth at granularity g.
func PixelsPerMarker(g Granularity, windowDays int, pixelWidth float64) float64 {
	markers := float64(windowDays) / float64(g.PeriodDays())
	if markers < 1 {
		markers = 1
	}
	return pixelWidth / markers
}

// Adapt moves g at most one step: coarser when markers are cramped below
// the floor, finer when they are sparse above the ceiling and the window
// still spans at least two periods of the finer granularity.
func Adapt(g Granularity, windowDays int, pixelWidth float64, cfg Config) Granularity {
	ppm := PixelsPerMarker(g, windowDays, pixelWidth)
	switch {
	case ppm < cfg.MinMarkerPx && g < Year:
		return g.Coarser()
	case ppm > cfg.MaxMarkerPx && g > Day && windowDays >= 2*g.Finer().PeriodDays():
		return g.Finer()
	}
	return g
}

// AdaptFully applies Adapt until the granularity is stable, re-evaluating
// after every step. Once a run has moved in one direction it never reverses,
// so a width that sits between two granularities cannot oscillate.
func AdaptFully(g Granularity, windowDays int, pixelWidth float64, cfg Config) Granularity {
	dir := 0
	for i := 0; i <= int(Year); i++ {
		next := Adapt(g, windowDays, pixelWidth, cfg)
		step := int(next) - int(g)
		if step == 0 || (dir != 0 && step != dir) {
			return g
		}
		dir = step
		g = next
	}
	return g
}
