package starmap

import "math"

// basePointRadius is the rendered point radius in pixels at scale 1.
const basePointRadius = 4.0

// hitSlop widens the hit radius beyond the rendered point so small points
// stay clickable.
const hitSlop = 5.0

// HitTest returns the index into points of the first point whose screen
// position lies within the scale-adjusted hit radius of (sx, sy), or -1 when
// nothing is hit. The radius follows the rendered point size plus hitSlop,
// so the clickable area tracks the visual extent; pointSize <= 0 uses
// basePointRadius. Callers pass the filtered subset, never the full set, so
// hidden points cannot be picked.
//
// The scan is linear by design: at the target data scale (tens of thousands
// of points) one pass per click is well under a frame, and first-match order
// keeps results deterministic when hit radii overlap.
func HitTest(points []Point, vp *Viewport, sx, sy, pointSize float64) int {
	base := pointSize
	if base <= 0 {
		base = basePointRadius
	}
	radius := (base + hitSlop) * vp.Scale
	r2 := radius * radius
	for i := range points {
		px, py := vp.DataToScreen(points[i].X, points[i].Y)
		dx := px - sx
		dy := py - sy
		if dx*dx+dy*dy <= r2 {
			return i
		}
	}
	return -1
}

// NearestNeighbors returns the k points nearest to (x, y) by Euclidean
// distance in data space, excluding any point closer than eps (the query
// point itself) and nearer matches first. Used by the tour animator to
// reveal a stop's connections.
func NearestNeighbors(points []Point, x, y float64, k int, eps float64) []Point {
	type candidate struct {
		idx  int
		dist float64
	}
	best := make([]candidate, 0, k)
	for i := range points {
		dx := points[i].X - x
		dy := points[i].Y - y
		d := math.Sqrt(dx*dx + dy*dy)
		if d < eps {
			continue
		}
		if len(best) < k {
			best = append(best, candidate{i, d})
		} else if d < best[len(best)-1].dist {
			best[len(best)-1] = candidate{i, d}
		} else {
			continue
		}
		// Bubble the new candidate into place; k is small (6).
		for j := len(best) - 1; j > 0 && best[j].dist < best[j-1].dist; j-- {
			best[j], best[j-1] = best[j-1], best[j]
		}
	}
	out := make([]Point, len(best))
	for i, c := range best {
		out[i] = points[c.idx]
	}
	return out
}
