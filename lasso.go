package starmap

// LassoMode tracks the lifecycle of the freehand selection polygon.
type LassoMode uint8

const (
	LassoOff     LassoMode = iota // no polygon captured
	LassoDrawing                  // pointer is down, polyline growing
	LassoActive                   // closed polygon in effect
)

// lassoMinSampleDist is the minimum screen distance between consecutive
// captured polyline points. Dense pointer sampling below this threshold is
// dropped to prevent degenerate polygons.
const lassoMinSampleDist = 4.0

// Lasso captures a freehand polyline in screen coordinates and closes it
// into a selection polygon on release. Containment uses ray casting, so
// concave and self-touching outlines behave sensibly.
type Lasso struct {
	Mode   LassoMode
	Points []Vec2
	// Invert selects points outside the polygon instead of inside. Toggling
	// it does not alter the captured polygon.
	Invert bool
}

// Begin starts a new capture at the given screen position, discarding any
// previous polygon.
func (l *Lasso) Begin(x, y float64) {
	l.Mode = LassoDrawing
	l.Points = append(l.Points[:0], Vec2{x, y})
}

// Extend appends the current pointer position to the polyline if it is at
// least lassoMinSampleDist away from the last captured point. No-op unless
// drawing.
func (l *Lasso) Extend(x, y float64) {
	if l.Mode != LassoDrawing {
		return
	}
	last := l.Points[len(l.Points)-1]
	dx := x - last.X
	dy := y - last.Y
	if dx*dx+dy*dy < lassoMinSampleDist*lassoMinSampleDist {
		return
	}
	l.Points = append(l.Points, Vec2{x, y})
}

// End closes the capture. A polyline of at least 3 points becomes the active
// polygon; anything shorter is discarded.
func (l *Lasso) End() {
	if l.Mode != LassoDrawing {
		return
	}
	if len(l.Points) >= 3 {
		l.Mode = LassoActive
	} else {
		l.Clear()
	}
}

// Clear discards the polygon and returns to LassoOff. Invert is preserved.
func (l *Lasso) Clear() {
	l.Mode = LassoOff
	l.Points = l.Points[:0]
}

// Contains reports whether the screen point is selected by the lasso,
// honoring Invert. Always false when no polygon is active.
func (l *Lasso) Contains(x, y float64) bool {
	if l.Mode != LassoActive || len(l.Points) < 3 {
		return false
	}
	return pointInPolygon(l.Points, x, y) != l.Invert
}

// pointInPolygon is the standard ray-casting test: a point is inside if a
// horizontal ray from it crosses an odd number of polygon edges. Polygons
// with fewer than 3 vertices contain nothing.
func pointInPolygon(poly []Vec2, x, y float64) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y
		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}
