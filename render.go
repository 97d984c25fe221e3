package starmap

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ColorMode selects how points are colored when no heatmap or trait walk is
// active.
type ColorMode uint8

const (
	ColorModeLayer      ColorMode = iota // dominant-layer palette
	ColorModeTraitCount                  // gradient keyed on active-bit count
	ColorModeNone                        // uniform neutral
)

// HeatmapState colors every point by Hamming distance to a reference mask.
type HeatmapState struct {
	Active  bool
	RefMask uint32
}

// TraitWalkState highlights points having a single 1-based trait bit set and
// dims the rest.
type TraitWalkState struct {
	Active bool
	Bit    int
}

// Layer palette and shared tones.
var (
	layerColors = [NumLayers]Color{
		{0.26, 0.52, 0.96, 1}, // Physical
		{0.20, 0.66, 0.33, 1}, // Functional
		{0.61, 0.15, 0.69, 1}, // Abstract
		{0.98, 0.55, 0.00, 1}, // Social
	}
	colorNeutral    = Color{0.62, 0.64, 0.68, 1}
	colorDimmed     = Color{0.35, 0.36, 0.40, 0.35}
	colorBackground = Color{0.06, 0.07, 0.09, 1}
	colorLassoDim   = Color{0, 0, 0, 0.55}
	colorTourAccent = Color{1.0, 0.84, 0.25, 1}
)

// Color returns the layer's palette color.
func (l Layer) Color() Color {
	if int(l) >= NumLayers {
		return colorNeutral
	}
	return layerColors[l]
}

// scaleGradient maps a value on the 0..32 trait scale to a fixed HSL sweep
// from blue (0) to red (32). Both the Hamming heatmap and the trait-count
// mode key on it, and the export pipeline reuses it for visual consistency.
func scaleGradient(v int) Color {
	if v < 0 {
		v = 0
	}
	if v > NumTraits {
		v = NumTraits
	}
	hue := 240 * (1 - float64(v)/NumTraits)
	return hslColor(hue, 0.7, 0.5)
}

// hslColor converts hue (degrees), saturation, and lightness to RGB.
func hslColor(h, s, l float64) Color {
	c := (1 - math.Abs(2*l-1)) * s
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := l - c/2
	return Color{r + m, g + m, b + m, 1}
}

// Frame is everything one draw call needs. Points is the filtered subset;
// the renderer never consults the full set.
type Frame struct {
	Points    []Point
	Clusters  []Cluster
	Viewport  *Viewport
	PointSize float64 // base point radius in px; 0 uses basePointRadius
	ColorMode ColorMode
	Heatmap   HeatmapState
	TraitWalk TraitWalkState
	Lasso     *Lasso
	Tour      *TourAnimator
	Hovered   *Point
	Found     *Point
}

// FrameRenderer draws one complete frame: background, points, cluster
// labels, point decorations, tour overlays, and the lasso overlay, in that
// order. The draw is deterministic for a given Frame.
type FrameRenderer struct {
	// Background fills the surface before anything else is drawn.
	Background Color

	cache   *SpriteCache
	overlay *ebiten.Image // cached full-surface layer for the lasso dim mask

	lastLayoutTime time.Duration
	lastPlaced     int
}

// NewFrameRenderer creates a renderer drawing sprites from the given cache.
func NewFrameRenderer(cache *SpriteCache) *FrameRenderer {
	return &FrameRenderer{Background: colorBackground, cache: cache}
}

// pointColor resolves the draw color for one point. Resolution order:
// heatmap reference set, then trait walk, then the plain color mode.
func pointColor(p *Point, f *Frame) Color {
	mask := p.Mask()
	if f.Heatmap.Active {
		return scaleGradient(HammingDistance(mask, f.Heatmap.RefMask))
	}
	if f.TraitWalk.Active {
		if HasTrait(mask, f.TraitWalk.Bit) {
			return DominantLayer(mask).Color()
		}
		return colorDimmed
	}
	switch f.ColorMode {
	case ColorModeLayer:
		return DominantLayer(mask).Color()
	case ColorModeTraitCount:
		return scaleGradient(TraitCount(mask))
	default:
		return colorNeutral
	}
}

// Draw renders the frame into dst.
func (r *FrameRenderer) Draw(dst *ebiten.Image, f Frame) {
	dst.Fill(r.Background.toRGBA())

	r.drawPoints(dst, &f)
	r.drawLabels(dst, &f)
	r.drawDecorations(dst, &f)
	r.drawTour(dst, &f)
	r.drawLasso(dst, &f)
}

func (f *Frame) pointRadius() float64 {
	base := f.PointSize
	if base <= 0 {
		base = basePointRadius
	}
	return base * f.Viewport.Scale
}

func (r *FrameRenderer) drawPoints(dst *ebiten.Image, f *Frame) {
	radius := f.pointRadius()
	w, h := f.Viewport.Width, f.Viewport.Height
	for i := range f.Points {
		p := &f.Points[i]
		sx, sy := f.Viewport.DataToScreen(p.X, p.Y)
		if sx < -radius || sx > w+radius || sy < -radius || sy > h+radius {
			continue
		}
		sprite := r.cache.Get(SpriteNormal, pointColor(p, f))
		var op ebiten.DrawImageOptions
		s := radius / spriteRadius
		op.GeoM.Scale(s, s)
		op.GeoM.Translate(sx-radius, sy-radius)
		dst.DrawImage(sprite, &op)
	}
}

func (r *FrameRenderer) drawLabels(dst *ebiten.Image, f *Frame) {
	start := time.Now()
	placed := LayoutLabels(f.Clusters, f.Viewport)
	r.lastLayoutTime = time.Since(start)
	r.lastPlaced = len(placed)
	for _, pl := range placed {
		face := labelFace(pl.FontSize)
		w, hgt := text.Measure(pl.Cluster.Label, face, 0)
		op := &text.DrawOptions{}
		op.GeoM.Translate(pl.X-w/2, pl.Y-hgt/2)
		op.ColorScale.ScaleWithColor(ColorWhite.withAlpha(pl.Opacity).toRGBA())
		text.Draw(dst, pl.Cluster.Label, face, op)
	}
}

func (r *FrameRenderer) drawDecorations(dst *ebiten.Image, f *Frame) {
	radius := f.pointRadius()
	if f.Hovered != nil {
		sx, sy := f.Viewport.DataToScreen(f.Hovered.X, f.Hovered.Y)
		vector.StrokeCircle(dst, float32(sx), float32(sy), float32(radius+3), 1.5,
			ColorWhite.withAlpha(0.8).toRGBA(), true)
	}
	if f.Found != nil {
		sx, sy := f.Viewport.DataToScreen(f.Found.X, f.Found.Y)
		sprite := r.cache.Get(SpriteRinged, pointColor(f.Found, f))
		var op ebiten.DrawImageOptions
		s := (radius + 2) / spriteRadius
		op.GeoM.Scale(s, s)
		op.GeoM.Translate(sx-radius-2, sy-radius-2)
		dst.DrawImage(sprite, &op)
	}
}

func (r *FrameRenderer) drawTour(dst *ebiten.Image, f *Frame) {
	t := f.Tour
	if t == nil || !t.Running() {
		return
	}
	vp := f.Viewport

	// Flight path.
	if len(t.FlightPath) > 1 {
		drawPolyline(dst, vp, t.FlightPath, 1.5, colorTourAccent.withAlpha(0.5))
	}

	// Stop markers for the whole tour.
	if t.tour != nil {
		for i := range t.tour.Stops {
			s := &t.tour.Stops[i]
			sx, sy := vp.DataToScreen(s.X, s.Y)
			vector.DrawFilledCircle(dst, float32(sx), float32(sy), 3,
				colorTourAccent.withAlpha(0.6).toRGBA(), true)
		}
	}

	stop, ok := t.FocusStop()
	if !ok {
		return
	}
	sx, sy := vp.DataToScreen(stop.X, stop.Y)

	// Neighbor links reveal with phase progress and stay on afterward.
	if len(t.Neighbors) > 0 {
		reveal := 1.0
		if t.Phase == PhaseNeighbors {
			reveal = t.Progress
		}
		shown := int(math.Ceil(reveal * float64(len(t.Neighbors))))
		for i := 0; i < shown; i++ {
			n := &t.Neighbors[i]
			nx, ny := vp.DataToScreen(n.X, n.Y)
			vector.StrokeLine(dst, float32(sx), float32(sy), float32(nx), float32(ny),
				1, colorTourAccent.withAlpha(0.45).toRGBA(), true)
			vector.StrokeCircle(dst, float32(nx), float32(ny), float32(f.pointRadius()+2),
				1, colorTourAccent.withAlpha(0.7).toRGBA(), true)
		}
	}

	// Current-stop ring; pulses during highlight, steady otherwise.
	ringR := f.pointRadius() + 6
	if t.Phase == PhaseHighlight {
		ringR += 3 * math.Sin(t.Progress*4*math.Pi)
	}
	vector.StrokeCircle(dst, float32(sx), float32(sy), float32(ringR), 2,
		colorTourAccent.toRGBA(), true)

	// Caption under the ring.
	if stop.Name != "" {
		face := labelFace(14 * vp.textScale())
		w, _ := text.Measure(stop.Name, face, 0)
		op := &text.DrawOptions{}
		op.GeoM.Translate(sx-w/2, sy+ringR+6)
		op.ColorScale.ScaleWithColor(colorTourAccent.toRGBA())
		text.Draw(dst, stop.Name, face, op)
	}
}

func (r *FrameRenderer) drawLasso(dst *ebiten.Image, f *Frame) {
	l := f.Lasso
	if l == nil || l.Mode == LassoOff || len(l.Points) < 2 {
		return
	}

	if l.Mode == LassoActive && len(l.Points) >= 3 {
		if l.Invert {
			// Dim the selected-away interior directly.
			fillPolygon(dst, l.Points, colorLassoDim, ebiten.BlendSourceOver)
		} else {
			// Dim everything outside: fill a full-surface layer, punch the
			// polygon interior out of it, composite.
			ov := r.overlayFor(dst)
			ov.Clear()
			ov.Fill(colorLassoDim.toRGBA())
			fillPolygon(ov, l.Points, Color{0, 0, 0, 1}, ebiten.BlendClear)
			dst.DrawImage(ov, nil)
		}
	}

	drawPolyline(dst, nil, l.Points, 1.5, ColorWhite.withAlpha(0.9))
	if l.Mode == LassoActive {
		// Close the outline.
		a := l.Points[len(l.Points)-1]
		b := l.Points[0]
		vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y),
			1.5, ColorWhite.withAlpha(0.9).toRGBA(), true)
	}
}

// overlayFor returns a full-surface scratch image matching dst's size,
// reallocating only when the surface size changes.
func (r *FrameRenderer) overlayFor(dst *ebiten.Image) *ebiten.Image {
	b := dst.Bounds()
	if r.overlay != nil {
		ob := r.overlay.Bounds()
		if ob.Dx() == b.Dx() && ob.Dy() == b.Dy() {
			return r.overlay
		}
		r.overlay.Deallocate()
	}
	r.overlay = ebiten.NewImage(b.Dx(), b.Dy())
	return r.overlay
}

// drawPolyline strokes consecutive segments of pts. When vp is non-nil the
// points are data coordinates and get projected; otherwise they are already
// screen coordinates.
func drawPolyline(dst *ebiten.Image, vp *Viewport, pts []Vec2, width float64, clr Color) {
	rgba := clr.toRGBA()
	px, py := pts[0].X, pts[0].Y
	if vp != nil {
		px, py = vp.DataToScreen(px, py)
	}
	for i := 1; i < len(pts); i++ {
		x, y := pts[i].X, pts[i].Y
		if vp != nil {
			x, y = vp.DataToScreen(x, y)
		}
		vector.StrokeLine(dst, float32(px), float32(py), float32(x), float32(y),
			float32(width), rgba, true)
		px, py = x, y
	}
}

// fillPolygon fills an arbitrary simple polygon using a triangle fan with
// the even-odd fill rule, which handles concave freehand outlines.
func fillPolygon(dst *ebiten.Image, pts []Vec2, clr Color, blend ebiten.Blend) {
	n := len(pts)
	if n < 3 {
		return
	}
	cr := float32(clr.R * clr.A)
	cg := float32(clr.G * clr.A)
	cb := float32(clr.B * clr.A)
	ca := float32(clr.A)
	verts := make([]ebiten.Vertex, n)
	for i, p := range pts {
		verts[i] = ebiten.Vertex{
			DstX: float32(p.X), DstY: float32(p.Y),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
		}
	}
	inds := make([]uint16, 0, (n-2)*3)
	for i := 1; i < n-1; i++ {
		inds = append(inds, 0, uint16(i), uint16(i+1))
	}
	op := &ebiten.DrawTrianglesOptions{
		Blend:    blend,
		FillRule: ebiten.FillRuleEvenOdd,
	}
	dst.DrawTriangles(verts, inds, whitePixel, op)
}
