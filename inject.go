package starmap

// syntheticEvent represents a single injected pointer or wheel event.
// Coordinates are in screen pixels, matching what real pointer input would
// deliver, and are fed through the same handlers.
type syntheticEvent struct {
	kind  syntheticKind
	x, y  float64
	delta float64
	mods  KeyModifiers
}

type syntheticKind uint8

const (
	syntheticPress syntheticKind = iota
	syntheticMove
	syntheticRelease
	syntheticWheel
)

// InjectPress queues a pointer press at the given screen coordinates. The
// event is consumed on the next Update call.
func (e *Engine) InjectPress(x, y float64, mods KeyModifiers) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{
		kind: syntheticPress, x: x, y: y, mods: mods,
	})
}

// InjectMove queues a pointer move at the given screen coordinates. Use
// between InjectPress and InjectRelease to simulate a drag, or on its own
// to simulate hovering.
func (e *Engine) InjectMove(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{
		kind: syntheticMove, x: x, y: y,
	})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (e *Engine) InjectRelease(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{
		kind: syntheticRelease, x: x, y: y,
	})
}

// InjectWheel queues a wheel step anchored at the given screen coordinates.
// Negative delta zooms in, positive zooms out.
func (e *Engine) InjectWheel(delta, x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{
		kind: syntheticWheel, x: x, y: y, delta: delta,
	})
}

// InjectClick is a convenience that queues a press followed by a release at
// the same screen coordinates. Consumes two Update calls.
func (e *Engine) InjectClick(x, y float64, mods KeyModifiers) {
	e.InjectPress(x, y, mods)
	e.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate ticks, and release at
// (toX, toY). The total sequence consumes frames Update calls; minimum is
// 2 (press + release).
func (e *Engine) InjectDrag(fromX, fromY, toX, toY float64, frames int, mods KeyModifiers) {
	if frames < 2 {
		frames = 2
	}
	e.InjectPress(fromX, fromY, mods)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		e.InjectMove(x, y)
	}
	e.InjectRelease(toX, toY)
}

// processInjected pops one event from the inject queue and feeds it through
// the matching pointer handler. Returns true if an event was consumed.
func (e *Engine) processInjected() bool {
	if len(e.injectQueue) == 0 {
		return false
	}
	evt := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	switch evt.kind {
	case syntheticPress:
		e.HandlePointerDown(evt.x, evt.y, evt.mods)
	case syntheticMove:
		e.HandlePointerMove(evt.x, evt.y)
	case syntheticRelease:
		e.HandlePointerUp(evt.x, evt.y)
	case syntheticWheel:
		e.HandleWheel(evt.delta, evt.x, evt.y)
	}
	return true
}
