package starmap

import "math"

const (
	// plotPadding is the fixed padding in pixels on each side of the
	// drawing surface; the plot area is the surface minus this padding.
	plotPadding = 40.0

	// MinScale and MaxScale bound the viewport zoom factor.
	MinScale = 0.5
	MaxScale = 10.0

	// fitMargin is the fraction of the bounding-box range added on each
	// side when fitting the viewport to a point subset.
	fitMargin = 0.1
)

// Viewport converts between normalized data coordinates in [-1, 1] and
// screen pixels. It holds the single pan/zoom transform for the engine;
// exactly one interaction owner mutates it at a time.
type Viewport struct {
	// Scale is the zoom factor, clamped to [MinScale, MaxScale].
	Scale float64
	// OffsetX and OffsetY are the pan offsets in screen pixels.
	OffsetX, OffsetY float64
	// Width and Height are the drawing-surface size in pixels.
	Width, Height float64

	// pad overrides plotPadding and uiScale scales text metrics; both are
	// zero for interactive viewports and set by the export pipeline when
	// re-rendering at a supersampled resolution.
	pad     float64
	uiScale float64
}

// NewViewport creates a viewport for a drawing surface of the given pixel size.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{Scale: 1, Width: width, Height: height}
}

// Resize updates the drawing-surface size. The transform is kept as-is;
// callers that want the content re-centered should call FitTo afterwards.
func (v *Viewport) Resize(width, height float64) {
	v.Width = width
	v.Height = height
}

// plotSize returns the plot area dimensions (surface minus padding),
// clamped to at least 1px so degenerate surfaces stay finite.
func (v *Viewport) plotSize() (pw, ph float64) {
	pad := v.pad
	if pad == 0 {
		pad = plotPadding
	}
	pw = math.Max(v.Width-2*pad, 1)
	ph = math.Max(v.Height-2*pad, 1)
	return
}

// textScale is the factor text sizes are multiplied by; 1 for interactive
// viewports, the supersample factor for export viewports.
func (v *Viewport) textScale() float64 {
	if v.uiScale == 0 {
		return 1
	}
	return v.uiScale
}

// center returns the surface midpoint.
func (v *Viewport) center() (cx, cy float64) {
	return v.Width / 2, v.Height / 2
}

// DataToScreen projects a data point to screen pixels. Data Y increases
// upward; screen Y increases downward.
func (v *Viewport) DataToScreen(x, y float64) (sx, sy float64) {
	pw, ph := v.plotSize()
	cx, cy := v.center()
	sx = cx + (x*pw/2)*v.Scale + v.OffsetX
	sy = cy - (y*ph/2)*v.Scale + v.OffsetY
	return
}

// ScreenToData is the inverse of DataToScreen.
func (v *Viewport) ScreenToData(sx, sy float64) (x, y float64) {
	pw, ph := v.plotSize()
	cx, cy := v.center()
	x = (sx - cx - v.OffsetX) / (pw / 2 * v.Scale)
	y = -(sy - cy - v.OffsetY) / (ph / 2 * v.Scale)
	return
}

// Pan shifts the view by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// ZoomAt applies a wheel-zoom step anchored at the cursor: the data point
// under (cursorX, cursorY) before the zoom remains under it after. A
// positive delta zooms out by 10%, a negative delta zooms in by 10%.
func (v *Viewport) ZoomAt(delta, cursorX, cursorY float64) {
	factor := 1.1
	if delta > 0 {
		factor = 0.9
	}
	newScale := clampScale(v.Scale * factor)
	if newScale == v.Scale {
		return
	}
	cx, cy := v.center()
	relX := cursorX - cx
	relY := cursorY - cy
	ratio := newScale / v.Scale
	v.OffsetX = relX - (relX-v.OffsetX)*ratio
	v.OffsetY = relY - (relY-v.OffsetY)*ratio
	v.Scale = newScale
}

// CenterOn pans so the given data point sits at the surface center,
// preserving the current scale.
func (v *Viewport) CenterOn(x, y float64) {
	pw, ph := v.plotSize()
	v.OffsetX = -(x * pw / 2) * v.Scale
	v.OffsetY = (y * ph / 2) * v.Scale
}

// centerOffsets returns the pan offsets that would place the given data
// point at the surface center at the given scale, without mutating the
// viewport. Tour transitions tween toward these targets.
func (v *Viewport) centerOffsets(x, y, scale float64) (ox, oy float64) {
	pw, ph := v.plotSize()
	return -(x * pw / 2) * scale, (y * ph / 2) * scale
}

// FitTo frames the viewport around a point subset: the axis-aligned
// bounding box, grown by fitMargin on each side, fills the plot area and is
// centered. An empty subset resets to the identity view.
func (v *Viewport) FitTo(points []Point) {
	if len(points) == 0 {
		v.Scale = 1
		v.OffsetX = 0
		v.OffsetY = 0
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range points {
		minX = math.Min(minX, points[i].X)
		maxX = math.Max(maxX, points[i].X)
		minY = math.Min(minY, points[i].Y)
		maxY = math.Max(maxY, points[i].Y)
	}
	rangeX := (maxX - minX) * (1 + 2*fitMargin)
	rangeY := (maxY - minY) * (1 + 2*fitMargin)
	// A single point (or a colinear set) has a zero range on an axis;
	// the scale clamp keeps the result finite.
	rangeX = math.Max(rangeX, 1e-9)
	rangeY = math.Max(rangeY, 1e-9)

	v.Scale = clampScale(math.Min(math.Min(2/rangeX, 2/rangeY), MaxScale))
	v.CenterOn((minX+maxX)/2, (minY+maxY)/2)
}

// clampScale restricts a zoom factor to [MinScale, MaxScale].
func clampScale(s float64) float64 {
	return math.Max(MinScale, math.Min(s, MaxScale))
}
