package starmap

import (
	"fmt"
	"os"
	"time"
)

// frameStats holds per-frame timing and workload metrics. Only reported
// when Engine debug mode is on.
type frameStats struct {
	filterTime time.Duration
	layoutTime time.Duration
	drawTime   time.Duration
	filtered   int
	placed     int
}

// SetDebugMode enables per-frame stats logging to stderr.
func (e *Engine) SetDebugMode(on bool) {
	e.debug = on
}

// logStats prints the timing breakdown for the last completed frame.
func (e *Engine) logStats() {
	total := e.stats.filterTime + e.stats.layoutTime + e.stats.drawTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[starmap] filter: %v | layout: %v | draw: %v | total: %v\n",
		e.stats.filterTime, e.stats.layoutTime, e.stats.drawTime, total)
	_, _ = fmt.Fprintf(os.Stderr,
		"[starmap] points: %d/%d | labels: %d | sprites: %d | mode: %v\n",
		e.stats.filtered, len(e.points), e.stats.placed, e.cache.Len(), e.mode)
}

// debugCheckViewport warns on stderr when the transform leaves its legal
// range, which would indicate a broken interaction handler.
func debugCheckViewport(v *Viewport) {
	if v.Scale < MinScale || v.Scale > MaxScale {
		_, _ = fmt.Fprintf(os.Stderr,
			"[starmap] warning: scale %.3f outside [%.1f, %.1f]\n",
			v.Scale, MinScale, MaxScale)
	}
}

// String makes interaction modes readable in stats lines and test failures.
func (m InteractionMode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePanning:
		return "panning"
	case ModeDrawingLasso:
		return "drawingLasso"
	case ModeTouring:
		return "touring"
	}
	return fmt.Sprintf("InteractionMode(%d)", uint8(m))
}
