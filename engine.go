package starmap

import (
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// KeyModifiers is a bitmask of keyboard modifier keys, supplied by the host
// with each pointer event. Values combine with bitwise OR.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// InteractionMode is the single owner of the viewport transform at any
// moment. Transitions are gated so pointer panning, lasso drawing, and tour
// animation are mutually exclusive writers.
type InteractionMode uint8

const (
	ModeIdle         InteractionMode = iota // no interaction in progress
	ModePanning                             // pointer held, dragging the view
	ModeDrawingLasso                        // pointer held with the lasso modifier
	ModeTouring                             // tour animator owns the transform
)

// dragDeadZone is the movement in pixels below which a press-release pair
// counts as a click rather than a pan.
const dragDeadZone = 4.0

// findCenterDuration is the length of the FindByName centering transition.
const findCenterDuration = 0.5

// Engine is the top-level object owning the datasets, viewport, filter
// state, interaction mode, and render pipeline. The host feeds it pointer
// and wheel events, calls Update once per tick and Draw once per frame, and
// receives selection and filter outcomes through the callback fields.
//
// Everything runs on the host's single update/draw loop; the engine has no
// internal concurrency.
type Engine struct {
	// OnSelect fires with the clicked entity's id when a click hits a
	// point and heatmap-reference mode is off.
	OnSelect func(id string)
	// OnHeatmapRef fires with the clicked entity's id when a click sets
	// the heatmap reference point.
	OnHeatmapRef func(id string)
	// OnFilterChange fires with the filtered subset's ids whenever the
	// filtered set changes through an interaction.
	OnFilterChange func(ids []string)

	viewport *Viewport
	filter   FilterState
	lasso    Lasso
	tour     *TourAnimator
	cache    *SpriteCache
	renderer *FrameRenderer
	exporter *Exporter

	points   []Point
	clusters []Cluster
	traits   []Trait
	tourData *Tour

	mode        InteractionMode
	colorMode   ColorMode
	heatmapPick bool // clicks set the heatmap reference while true
	heatmap     HeatmapState
	traitWalk   TraitWalkState
	pointSize   float64

	filtered    []Point
	filterDirty bool

	hovered    Point
	hasHovered bool
	found      Point
	hasFound   bool

	pressX, pressY float64
	lastX, lastY   float64
	dragging       bool

	// FindByName centering transition; cancelled by any other transform owner.
	findTweenX *gween.Tween
	findTweenY *gween.Tween

	injectQueue []syntheticEvent
	script      *ScriptRunner

	debug bool
	stats frameStats
	hud   *debugHUD
}

// NewEngine creates an engine for a drawing surface of the given pixel size.
func NewEngine(width, height float64) *Engine {
	vp := NewViewport(width, height)
	cache := NewSpriteCache()
	e := &Engine{
		viewport:    vp,
		filter:      NewFilterState(),
		tour:        NewTourAnimator(vp),
		cache:       cache,
		renderer:    NewFrameRenderer(cache),
		pointSize:   basePointRadius,
		filterDirty: true,
	}
	e.exporter = NewExporter(e.renderer, nil)
	return e
}

// Viewport returns the engine's viewport. Hosts may read it freely; writes
// outside the engine's handlers bypass the interaction gating.
func (e *Engine) Viewport() *Viewport { return e.viewport }

// Tour returns the tour animator for phase/progress inspection.
func (e *Engine) Tour() *TourAnimator { return e.tour }

// Mode returns the current interaction mode.
func (e *Engine) Mode() InteractionMode { return e.mode }

// Filter returns a copy of the current filter state.
func (e *Engine) Filter() FilterState { return e.filter }

// --- Dataset lifecycle ---

// SetDataset replaces the point and cluster snapshots wholesale, as happens
// when the host switches projection type. The sprite cache is evicted, the
// lasso and hover/found markers reset, and the viewport refits to the new
// set.
func (e *Engine) SetDataset(points []Point, clusters []Cluster) {
	e.StopTour()
	e.cancelFindTransition()
	e.points = points
	e.clusters = clusters
	e.cache.Clear()
	e.lasso.Clear()
	e.filter.LassoPolygon = nil
	e.hasHovered = false
	e.hasFound = false
	e.heatmap = HeatmapState{}
	e.viewport.FitTo(points)
	e.invalidate()
}

// SetTraits loads the trait catalogue used for captions and legends.
func (e *Engine) SetTraits(traits []Trait) {
	e.traits = traits
	e.exporter = NewExporter(e.renderer, traits)
}

// SetTour loads the tour to be played by StartTour.
func (e *Engine) SetTour(tour *Tour) {
	e.tourData = tour
}

// --- Display state ---

// SetColorMode switches the point color mode. Sprites are cached per
// resolved color, so no eviction is needed.
func (e *Engine) SetColorMode(m ColorMode) {
	e.colorMode = m
}

// SetHeatmapMode toggles heatmap-reference picking. Turning it off clears
// the active heatmap.
func (e *Engine) SetHeatmapMode(on bool) {
	e.heatmapPick = on
	if !on {
		e.heatmap = HeatmapState{}
	}
}

// SetTraitWalk activates or clears single-trait highlighting (1-based bit).
func (e *Engine) SetTraitWalk(active bool, bit int) {
	e.traitWalk = TraitWalkState{Active: active, Bit: bit}
}

// SetPointSize sets the base point radius in pixels.
func (e *Engine) SetPointSize(radius float64) {
	if radius > 0 {
		e.pointSize = radius
	}
}

// --- Filter state ---

// SetLayerEnabled toggles one dominant-layer predicate.
func (e *Engine) SetLayerEnabled(l Layer, on bool) {
	if int(l) >= NumLayers || e.filter.LayerEnabled[l] == on {
		return
	}
	e.filter.LayerEnabled[l] = on
	e.invalidate()
	e.emitFilterChange()
}

// SetTraitCountRange bounds the trait-count predicate, clamped to
// [0, NumTraits] with lo <= hi.
func (e *Engine) SetTraitCountRange(lo, hi int) {
	lo = max(0, min(lo, NumTraits))
	hi = max(lo, min(hi, NumTraits))
	if e.filter.TraitCountMin == lo && e.filter.TraitCountMax == hi {
		return
	}
	e.filter.TraitCountMin = lo
	e.filter.TraitCountMax = hi
	e.invalidate()
	e.emitFilterChange()
}

// SetLassoInvert flips the lasso keep-set between inside and outside
// without altering the captured polygon.
func (e *Engine) SetLassoInvert(invert bool) {
	if e.filter.LassoInvert == invert {
		return
	}
	e.filter.LassoInvert = invert
	e.lasso.Invert = invert
	if e.filter.lassoActive() {
		e.invalidate()
		e.emitFilterChange()
	}
}

// ClearLasso discards the active lasso polygon.
func (e *Engine) ClearLasso() {
	if !e.filter.lassoActive() && e.lasso.Mode == LassoOff {
		return
	}
	e.lasso.Clear()
	e.filter.LassoPolygon = nil
	e.invalidate()
	e.emitFilterChange()
}

// invalidate marks the filtered subset stale.
func (e *Engine) invalidate() {
	e.filterDirty = true
}

// invalidateIfLasso re-runs filtering after a transform change, which moves
// the screen-space polygon test under the points.
func (e *Engine) invalidateIfLasso() {
	if e.filter.lassoActive() {
		e.filterDirty = true
	}
}

// FilteredPoints returns the current filtered subset, recomputing it only
// when the points, filter state, or (with an active lasso) the transform
// changed since the last call. The result must not be mutated.
func (e *Engine) FilteredPoints() []Point {
	if e.filterDirty {
		start := time.Now()
		e.filtered = FilterPoints(e.points, e.filter, e.viewport)
		e.stats.filterTime = time.Since(start)
		e.stats.filtered = len(e.filtered)
		e.filterDirty = false
	}
	return e.filtered
}

// FilteredIDs returns the ids of the filtered subset, for host features
// that operate on the current selection.
func (e *Engine) FilteredIDs() []string {
	pts := e.FilteredPoints()
	ids := make([]string, len(pts))
	for i := range pts {
		ids[i] = pts[i].ID
	}
	return ids
}

func (e *Engine) emitFilterChange() {
	if e.OnFilterChange != nil {
		e.OnFilterChange(e.FilteredIDs())
	}
}

// --- Pointer and wheel handling ---

// HandlePointerDown begins a pan, or a lasso capture when the Shift
// modifier is held. Ignored while a tour owns the transform.
func (e *Engine) HandlePointerDown(x, y float64, mods KeyModifiers) {
	if e.mode != ModeIdle {
		return
	}
	e.cancelFindTransition()
	e.pressX, e.pressY = x, y
	e.lastX, e.lastY = x, y
	e.dragging = false
	if mods&ModShift != 0 {
		e.mode = ModeDrawingLasso
		e.lasso.Invert = e.filter.LassoInvert
		e.lasso.Begin(x, y)
	} else {
		e.mode = ModePanning
	}
}

// HandlePointerMove pans, extends the lasso, or updates the hovered point
// depending on the current mode.
func (e *Engine) HandlePointerMove(x, y float64) {
	switch e.mode {
	case ModePanning:
		if !e.dragging {
			dx := x - e.pressX
			dy := y - e.pressY
			if dx*dx+dy*dy > dragDeadZone*dragDeadZone {
				e.dragging = true
			}
		}
		if e.dragging {
			e.viewport.Pan(x-e.lastX, y-e.lastY)
			e.invalidateIfLasso()
		}
	case ModeDrawingLasso:
		e.lasso.Extend(x, y)
	case ModeIdle:
		e.updateHover(x, y)
	}
	e.lastX, e.lastY = x, y
}

// HandlePointerUp completes the gesture: a short press becomes a click, a
// pan ends, a lasso closes into the active polygon.
func (e *Engine) HandlePointerUp(x, y float64) {
	switch e.mode {
	case ModePanning:
		if !e.dragging {
			e.handleClick(x, y)
		}
		e.mode = ModeIdle
	case ModeDrawingLasso:
		e.lasso.End()
		if e.lasso.Mode == LassoActive {
			e.filter.LassoPolygon = append([]Vec2(nil), e.lasso.Points...)
		} else {
			e.filter.LassoPolygon = nil
		}
		e.invalidate()
		e.emitFilterChange()
		e.mode = ModeIdle
	}
	e.dragging = false
}

// HandlePointerLeave aborts any in-progress gesture and clears the hover.
func (e *Engine) HandlePointerLeave() {
	if e.mode == ModePanning || e.mode == ModeDrawingLasso {
		e.HandlePointerUp(e.lastX, e.lastY)
	}
	e.hasHovered = false
}

// HandleWheel applies a zoom step anchored at the cursor. Ignored while a
// tour or lasso capture owns the transform.
func (e *Engine) HandleWheel(delta, x, y float64) {
	if e.mode == ModeTouring || e.mode == ModeDrawingLasso {
		return
	}
	e.cancelFindTransition()
	e.viewport.ZoomAt(delta, x, y)
	e.invalidateIfLasso()
}

// handleClick hit-tests the filtered set and emits the selection or heatmap
// reference.
func (e *Engine) handleClick(x, y float64) {
	idx := HitTest(e.FilteredPoints(), e.viewport, x, y, e.pointSize)
	if idx < 0 {
		return
	}
	p := e.FilteredPoints()[idx]
	if e.heatmapPick {
		e.heatmap = HeatmapState{Active: true, RefMask: p.Mask()}
		if e.OnHeatmapRef != nil {
			e.OnHeatmapRef(p.ID)
		}
		return
	}
	if e.OnSelect != nil {
		e.OnSelect(p.ID)
	}
}

// updateHover hit-tests for the hover decoration on plain pointer moves.
func (e *Engine) updateHover(x, y float64) {
	idx := HitTest(e.FilteredPoints(), e.viewport, x, y, e.pointSize)
	if idx < 0 {
		e.hasHovered = false
		return
	}
	e.hovered = e.FilteredPoints()[idx]
	e.hasHovered = true
}

// --- Tour control ---

// StartTour begins the loaded tour. Refused unless the engine is idle —
// a drag or lasso in progress keeps exclusive ownership of the transform.
func (e *Engine) StartTour() bool {
	if e.mode != ModeIdle || e.tourData == nil || len(e.tourData.Stops) == 0 {
		return false
	}
	e.cancelFindTransition()
	e.mode = ModeTouring
	e.tour.Start(e.tourData, e.FilteredPoints())
	return true
}

// StopTour cancels the running tour and returns the engine to idle.
func (e *Engine) StopTour() {
	if e.mode != ModeTouring {
		return
	}
	e.tour.Stop()
	e.mode = ModeIdle
}

// NextStop advances the running tour to the next stop.
func (e *Engine) NextStop() { e.tour.Next() }

// PreviousStop returns the running tour to the previous stop.
func (e *Engine) PreviousStop() { e.tour.Previous() }

// JumpToStop jumps the running tour to an arbitrary stop index.
func (e *Engine) JumpToStop(index int) { e.tour.JumpTo(index) }

// --- Found-point search ---

// FindByName looks for a point by exact name match, then by case-insensitive
// prefix, in the filtered subset. On a hit the viewport centers on the point
// with a short eased transition and the point is decorated until the next
// dataset change or search. Returns whether a point was found.
func (e *Engine) FindByName(name string) bool {
	if e.mode != ModeIdle || name == "" {
		return false
	}
	pts := e.FilteredPoints()
	idx := -1
	for i := range pts {
		if pts[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		lower := strings.ToLower(name)
		for i := range pts {
			if strings.HasPrefix(strings.ToLower(pts[i].Name), lower) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		e.hasFound = false
		return false
	}
	e.found = pts[idx]
	e.hasFound = true

	ox, oy := e.viewport.centerOffsets(e.found.X, e.found.Y, e.viewport.Scale)
	e.findTweenX = gween.New(float32(e.viewport.OffsetX), float32(ox), findCenterDuration, ease.InOutCubic)
	e.findTweenY = gween.New(float32(e.viewport.OffsetY), float32(oy), findCenterDuration, ease.InOutCubic)
	return true
}

// cancelFindTransition stops the centering tween when another interaction
// takes ownership of the transform.
func (e *Engine) cancelFindTransition() {
	e.findTweenX = nil
	e.findTweenY = nil
}

// --- Update / Draw ---

// Update advances the engine by dt seconds: one injected event, one script
// step, the find transition, and the tour animator. Call once per host tick.
func (e *Engine) Update(dt float64) {
	e.processInjected()
	if e.script != nil {
		e.script.step(e)
	}

	if e.findTweenX != nil {
		val, done := e.findTweenX.Update(float32(dt))
		e.viewport.OffsetX = float64(val)
		vy, _ := e.findTweenY.Update(float32(dt))
		e.viewport.OffsetY = float64(vy)
		if done {
			e.cancelFindTransition()
		}
		e.invalidateIfLasso()
	}

	if e.mode == ModeTouring {
		e.tour.Advance(dt)
		e.invalidateIfLasso()
		if !e.tour.Running() {
			e.mode = ModeIdle
		}
	}

	if e.debug {
		if e.hud == nil {
			e.hud = newDebugHUD()
		}
		e.hud.update(dt, e.stats, len(e.points), e.cache.Len())
	}
}

// frame assembles the current Frame for drawing or export.
func (e *Engine) frame() Frame {
	f := Frame{
		Points:    e.FilteredPoints(),
		Clusters:  e.clusters,
		Viewport:  e.viewport,
		PointSize: e.pointSize,
		ColorMode: e.colorMode,
		Heatmap:   e.heatmap,
		TraitWalk: e.traitWalk,
		Lasso:     &e.lasso,
		Tour:      e.tour,
	}
	if e.hasHovered {
		f.Hovered = &e.hovered
	}
	if e.hasFound {
		f.Found = &e.found
	}
	return f
}

// Draw renders the current frame into dst.
func (e *Engine) Draw(dst *ebiten.Image) {
	start := time.Now()
	e.renderer.Draw(dst, e.frame())
	e.stats.drawTime = time.Since(start)
	e.stats.layoutTime = e.renderer.lastLayoutTime
	e.stats.placed = e.renderer.lastPlaced
	if e.debug {
		if e.hud != nil {
			e.hud.draw(dst)
		}
		e.logStats()
		debugCheckViewport(e.viewport)
	}
}

// --- Export ---

// ExportStill renders the current scene at export resolution and returns
// the PNG bytes. See Exporter.RenderStill for preconditions.
func (e *Engine) ExportStill() ([]byte, error) {
	f := e.frame()
	// Interaction chrome stays out of exports. The lasso's effect on the
	// point set is already baked into the filtered subset.
	f.Tour = nil
	f.Lasso = nil
	return e.exporter.RenderStill(f)
}

// ExportTraitWalk renders the animated trait-walk export and returns the
// GIF bytes. See Exporter.RenderTraitWalk for preconditions.
func (e *Engine) ExportTraitWalk() ([]byte, error) {
	f := e.frame()
	// Tour and lasso chrome stay out of exports.
	f.Tour = nil
	f.Lasso = nil
	return e.exporter.RenderTraitWalk(f)
}
