package starmap

// FilterState holds the active point predicates. The engine owns one
// FilterState and mutates it in place from interaction handlers; filtering
// itself is a pure function of (points, state, viewport).
type FilterState struct {
	// LayerEnabled keeps points whose dominant layer is enabled.
	LayerEnabled [NumLayers]bool
	// TraitCountMin and TraitCountMax bound the total active-bit count,
	// inclusive on both ends, within [0, NumTraits].
	TraitCountMin int
	TraitCountMax int
	// LassoPolygon is the active lasso polygon in screen coordinates;
	// fewer than 3 vertices deactivates the polygon predicate.
	LassoPolygon []Vec2
	// LassoInvert keeps points outside the polygon instead of inside.
	LassoInvert bool
}

// NewFilterState returns the permissive default state: all layers enabled,
// the full trait-count range, and no lasso.
func NewFilterState() FilterState {
	return FilterState{
		LayerEnabled:  [NumLayers]bool{true, true, true, true},
		TraitCountMin: 0,
		TraitCountMax: NumTraits,
	}
}

// lassoActive reports whether the polygon predicate participates in
// filtering. Degenerate polygons (under 3 vertices) are treated as inactive.
func (f *FilterState) lassoActive() bool {
	return len(f.LassoPolygon) >= 3
}

// FilterPoints returns the subset of points passing every active predicate,
// preserving input order. Predicates run cheapest first and short-circuit:
// dominant-layer membership, then trait-count range, then lasso polygon
// containment on the point's current screen projection. The result is always
// a subset of the input; relaxing any single predicate can only grow it.
func FilterPoints(points []Point, state FilterState, vp *Viewport) []Point {
	out := make([]Point, 0, len(points))
	lasso := state.lassoActive()
	for i := range points {
		p := &points[i]
		mask := p.Mask()
		if !state.LayerEnabled[DominantLayer(mask)] {
			continue
		}
		if c := TraitCount(mask); c < state.TraitCountMin || c > state.TraitCountMax {
			continue
		}
		if lasso {
			sx, sy := vp.DataToScreen(p.X, p.Y)
			if pointInPolygon(state.LassoPolygon, sx, sy) == state.LassoInvert {
				continue
			}
		}
		out = append(out, *p)
	}
	return out
}
