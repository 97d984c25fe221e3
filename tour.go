package starmap

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TourPhase identifies one state of the tour animation state machine.
type TourPhase uint8

const (
	PhaseIdle      TourPhase = iota // no tour running
	PhaseCentering                  // initial pan to a stop entered without a fly
	PhaseHighlight                  // pulsing ring on the current stop
	PhaseZoomIn                     // zoom toward the current stop
	PhaseNeighbors                  // reveal links to the nearest points
	PhaseLinger                     // static highlight for narration reading
	PhaseZoomOut                    // zoom back out from the previous stop
	PhaseFly                        // Bézier flight toward the next stop
)

// String returns the phase name.
func (p TourPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCentering:
		return "centering"
	case PhaseHighlight:
		return "highlight"
	case PhaseZoomIn:
		return "zoom_in"
	case PhaseNeighbors:
		return "neighbors"
	case PhaseLinger:
		return "linger"
	case PhaseZoomOut:
		return "zoom_out"
	case PhaseFly:
		return "fly"
	default:
		return "unknown"
	}
}

// Per-phase durations in seconds.
const (
	tourCenterDuration    = 0.4
	tourHighlightDuration = 0.6
	tourZoomInDuration    = 0.5
	tourNeighborsDuration = 0.8
	tourLingerDuration    = 3.0
	tourZoomOutDuration   = 0.3
	tourFlyDuration       = 0.8
)

const (
	// tourNeighborCount is how many nearest points a stop reveals links to.
	tourNeighborCount = 6
	// tourNeighborEps excludes the stop's own point from its neighbor set.
	tourNeighborEps = 1e-9
	// tourZoomScale is the zoom level a stop is inspected at.
	tourZoomScale = 2.5
	// flyControlOffset is the perpendicular offset of the Bézier control
	// point, as a fraction of the segment length between stops.
	flyControlOffset = 0.2
	// flightPathSamples is the number of points sampled along the Bézier
	// for the overlay polyline.
	flightPathSamples = 33
)

// TourAnimator walks a viewport through a tour's stops with timed, eased
// phase transitions. It owns the viewport transform while a tour runs; the
// engine enforces that panning and zooming are gated off for the duration.
//
// Sequencing is frame-stepped: the host calls Advance(dt) once per update
// tick, and each phase completes before the next is entered. Cancellation
// uses a generation counter bumped by Stop, Next, Previous, and JumpTo —
// any state captured under an older generation is discarded before it can
// mutate the transform, which also supersedes stale runs without relying on
// timing.
type TourAnimator struct {
	vp     *Viewport
	tour   *Tour
	points []Point

	// Phase and Progress describe the in-flight phase; Progress is the
	// eased-input fraction of the phase duration in [0, 1].
	Phase    TourPhase
	Progress float64
	// StopIndex is the stop being presented or flown toward.
	StopIndex int
	// Neighbors holds the current stop's revealed nearest points. Valid
	// from the neighbors phase until the next transition.
	Neighbors []Point
	// FlightPath is the sampled Bézier polyline of the current fly, in
	// data coordinates. Empty outside zoom_out/fly.
	FlightPath []Vec2

	generation uint64
	phaseGen   uint64
	queue      []TourPhase
	elapsed    float64
	duration   float64
	fromIndex  int // stop being departed during zoom_out/fly

	tweenScale *gween.Tween
	tweenX     *gween.Tween
	tweenY     *gween.Tween
	flyTween   *gween.Tween
	flyFrom    Vec2
	flyCtrl    Vec2
	flyTo      Vec2

	// baseScale is the viewport scale before zoom_in, restored by zoom_out.
	baseScale float64
}

// NewTourAnimator creates an animator driving the given viewport.
func NewTourAnimator(vp *Viewport) *TourAnimator {
	return &TourAnimator{vp: vp, baseScale: 1}
}

// Running reports whether a tour is in progress (any phase but idle).
func (t *TourAnimator) Running() bool {
	return t.Phase != PhaseIdle
}

// CurrentStop returns the stop being presented, if a tour is running.
func (t *TourAnimator) CurrentStop() (TourStop, bool) {
	if t.tour == nil || t.Phase == PhaseIdle ||
		t.StopIndex < 0 || t.StopIndex >= len(t.tour.Stops) {
		return TourStop{}, false
	}
	return t.tour.Stops[t.StopIndex], true
}

// DepartingStop returns the stop being departed during zoom_out/fly.
func (t *TourAnimator) DepartingStop() (TourStop, bool) {
	if t.tour == nil || (t.Phase != PhaseZoomOut && t.Phase != PhaseFly) ||
		t.fromIndex < 0 || t.fromIndex >= len(t.tour.Stops) {
		return TourStop{}, false
	}
	return t.tour.Stops[t.fromIndex], true
}

// FocusStop returns the stop the ring and caption anchor to: the departing
// stop while zooming out or flying, the presented stop otherwise. The ring
// stays on the old stop until the flight arrives instead of hard-cutting to
// the destination.
func (t *TourAnimator) FocusStop() (TourStop, bool) {
	if s, ok := t.DepartingStop(); ok {
		return s, true
	}
	return t.CurrentStop()
}

// Start begins a tour at stop 0. The first stop skips zoom_out/fly and
// enters through a short centering transition before highlight. points is
// the set neighbor queries run against (normally the filtered subset).
// A nil tour or a tour with no stops is a no-op.
func (t *TourAnimator) Start(tour *Tour, points []Point) {
	if tour == nil || len(tour.Stops) == 0 {
		return
	}
	t.generation++
	t.tour = tour
	t.points = points
	t.baseScale = t.vp.Scale
	t.enterStop(0, false)
}

// Stop cancels the tour. The generation bump invalidates any in-flight
// phase, so no further transform mutation occurs from the cancelled run.
func (t *TourAnimator) Stop() {
	t.generation++
	t.tour = nil
	t.points = nil
	t.Phase = PhaseIdle
	t.Progress = 0
	t.StopIndex = 0
	t.Neighbors = nil
	t.FlightPath = nil
	t.queue = t.queue[:0]
	t.tweenScale, t.tweenX, t.tweenY, t.flyTween = nil, nil, nil, nil
}

// Next advances to the following stop through zoom_out and fly. At the last
// stop the tour ends.
func (t *TourAnimator) Next() {
	if !t.Running() || t.tour == nil {
		return
	}
	if t.StopIndex+1 >= len(t.tour.Stops) {
		t.Stop()
		return
	}
	t.generation++
	t.enterStop(t.StopIndex+1, true)
}

// Previous returns to the preceding stop through zoom_out and fly.
func (t *TourAnimator) Previous() {
	if !t.Running() || t.tour == nil || t.StopIndex == 0 {
		return
	}
	t.generation++
	t.enterStop(t.StopIndex-1, true)
}

// JumpTo cancels any in-flight phase and re-enters the sequence at stop
// index. An index adjacent to the current stop replays the zoom_out/fly
// transition; any other index hard-cuts to the centering transition.
func (t *TourAnimator) JumpTo(index int) {
	if !t.Running() || t.tour == nil ||
		index < 0 || index >= len(t.tour.Stops) {
		return
	}
	t.generation++
	diff := index - t.StopIndex
	adjacent := diff == 1 || diff == -1
	t.enterStop(index, adjacent)
}

// enterStop queues the phase sequence for a stop. withFly prefixes the
// zoom_out/fly transition departing from the current stop.
func (t *TourAnimator) enterStop(index int, withFly bool) {
	t.fromIndex = t.StopIndex
	t.StopIndex = index
	t.Neighbors = nil
	t.FlightPath = nil
	t.queue = t.queue[:0]
	if withFly {
		t.queue = append(t.queue, PhaseZoomOut, PhaseFly)
	} else {
		t.queue = append(t.queue, PhaseCentering)
	}
	t.queue = append(t.queue, PhaseHighlight, PhaseZoomIn, PhaseNeighbors, PhaseLinger)
	t.nextPhase()
}

// Advance steps the in-flight phase by dt seconds. Transform updates within
// a phase are strictly monotonic in elapsed time. When a phase completes the
// next queued phase starts; a completed linger holds until Next, Previous,
// JumpTo, or Stop.
func (t *TourAnimator) Advance(dt float64) {
	if t.Phase == PhaseIdle || dt <= 0 {
		return
	}
	// A generation mismatch means this phase was cancelled after its
	// state was captured; drop it without touching the transform.
	if t.phaseGen != t.generation {
		return
	}

	t.elapsed += dt
	if t.duration > 0 {
		t.Progress = math.Min(t.elapsed/t.duration, 1)
	} else {
		t.Progress = 1
	}

	d32 := float32(dt)
	if t.tweenScale != nil {
		val, _ := t.tweenScale.Update(d32)
		t.vp.Scale = float64(val)
	}
	if t.tweenX != nil {
		val, _ := t.tweenX.Update(d32)
		t.vp.OffsetX = float64(val)
	}
	if t.tweenY != nil {
		val, _ := t.tweenY.Update(d32)
		t.vp.OffsetY = float64(val)
	}
	if t.flyTween != nil {
		val, _ := t.flyTween.Update(d32)
		pos := quadBezier(t.flyFrom, t.flyCtrl, t.flyTo, float64(val))
		t.vp.CenterOn(pos.X, pos.Y)
	}

	if t.elapsed >= t.duration {
		if len(t.queue) > 0 {
			t.nextPhase()
		}
		// Linger (and any other tail phase) holds at Progress 1.
	}
}

// nextPhase pops the queue head and initializes its tweens and duration.
func (t *TourAnimator) nextPhase() {
	phase := t.queue[0]
	t.queue = t.queue[1:]
	t.Phase = phase
	t.Progress = 0
	t.elapsed = 0
	t.phaseGen = t.generation
	t.tweenScale, t.tweenX, t.tweenY, t.flyTween = nil, nil, nil, nil

	stop := t.tour.Stops[t.StopIndex]
	switch phase {
	case PhaseCentering:
		t.duration = tourCenterDuration
		ox, oy := t.vp.centerOffsets(stop.X, stop.Y, t.vp.Scale)
		t.tweenX = gween.New(float32(t.vp.OffsetX), float32(ox), float32(t.duration), ease.InOutCubic)
		t.tweenY = gween.New(float32(t.vp.OffsetY), float32(oy), float32(t.duration), ease.InOutCubic)

	case PhaseHighlight:
		t.duration = tourHighlightDuration

	case PhaseZoomIn:
		t.duration = tourZoomInDuration
		t.baseScale = t.vp.Scale
		target := clampScale(math.Max(t.vp.Scale, tourZoomScale))
		ox, oy := t.vp.centerOffsets(stop.X, stop.Y, target)
		t.tweenScale = gween.New(float32(t.vp.Scale), float32(target), float32(t.duration), ease.InOutCubic)
		t.tweenX = gween.New(float32(t.vp.OffsetX), float32(ox), float32(t.duration), ease.InOutCubic)
		t.tweenY = gween.New(float32(t.vp.OffsetY), float32(oy), float32(t.duration), ease.InOutCubic)

	case PhaseNeighbors:
		t.duration = tourNeighborsDuration
		t.Neighbors = NearestNeighbors(t.points, stop.X, stop.Y, tourNeighborCount, tourNeighborEps)

	case PhaseLinger:
		t.duration = tourLingerDuration

	case PhaseZoomOut:
		t.duration = tourZoomOutDuration
		from := t.tour.Stops[t.fromIndex]
		ox, oy := t.vp.centerOffsets(from.X, from.Y, t.baseScale)
		t.tweenScale = gween.New(float32(t.vp.Scale), float32(t.baseScale), float32(t.duration), ease.InOutCubic)
		t.tweenX = gween.New(float32(t.vp.OffsetX), float32(ox), float32(t.duration), ease.InOutCubic)
		t.tweenY = gween.New(float32(t.vp.OffsetY), float32(oy), float32(t.duration), ease.InOutCubic)

	case PhaseFly:
		t.duration = tourFlyDuration
		from := t.tour.Stops[t.fromIndex]
		t.flyFrom = Vec2{from.X, from.Y}
		t.flyTo = Vec2{stop.X, stop.Y}
		t.flyCtrl = flyControlPoint(t.flyFrom, t.flyTo)
		t.flyTween = gween.New(0, 1, float32(t.duration), ease.InOutCubic)
		t.FlightPath = sampleBezier(t.flyFrom, t.flyCtrl, t.flyTo, flightPathSamples)
	}
}

// flyControlPoint returns the quadratic-Bézier control point for a flight
// between two stops: the segment midpoint offset perpendicular to the
// segment by flyControlOffset of its length. A zero-length segment yields
// the midpoint itself, i.e. an identity path.
func flyControlPoint(from, to Vec2) Vec2 {
	mx := (from.X + to.X) / 2
	my := (from.Y + to.Y) / 2
	dx := to.X - from.X
	dy := to.Y - from.Y
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return Vec2{mx, my}
	}
	// Unit perpendicular, counterclockwise of the flight direction.
	px := -dy / length
	py := dx / length
	return Vec2{mx + px*length*flyControlOffset, my + py*length*flyControlOffset}
}

// quadBezier evaluates the quadratic Bézier (p0, c, p1) at parameter u.
func quadBezier(p0, c, p1 Vec2, u float64) Vec2 {
	w := 1 - u
	return Vec2{
		X: w*w*p0.X + 2*w*u*c.X + u*u*p1.X,
		Y: w*w*p0.Y + 2*w*u*c.Y + u*u*p1.Y,
	}
}

// sampleBezier returns n evenly parameterized points along the curve.
func sampleBezier(p0, c, p1 Vec2, n int) []Vec2 {
	out := make([]Vec2, n)
	for i := 0; i < n; i++ {
		out[i] = quadBezier(p0, c, p1, float64(i)/float64(n-1))
	}
	return out
}
