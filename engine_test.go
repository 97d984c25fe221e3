package starmap

import "testing"

func newTestEngine() *Engine {
	e := NewEngine(1280, 800)
	e.SetDataset(testPoints(), testClusters())
	return e
}

// screenOf projects a dataset point through the engine's viewport.
func screenOf(e *Engine, x, y float64) (float64, float64) {
	return e.Viewport().DataToScreen(x, y)
}

func TestEngineStartsIdle(t *testing.T) {
	e := NewEngine(1280, 800)
	if e.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle", e.Mode())
	}
	if len(e.FilteredPoints()) != 0 {
		t.Error("no dataset: filtered set should be empty")
	}
}

func TestEngineSetDatasetFitsAndFilters(t *testing.T) {
	e := newTestEngine()
	if got := len(e.FilteredPoints()); got != 7 {
		t.Errorf("filtered %d points, want 7", got)
	}
	// FitTo centered the symmetric test set on the origin.
	sx, sy := screenOf(e, 0, 0)
	assertNearEps(t, "fit center x", sx, 640, 1e-6)
	assertNearEps(t, "fit center y", sy, 400, 1e-6)
}

func TestEngineClickSelects(t *testing.T) {
	e := newTestEngine()
	var selected string
	e.OnSelect = func(id string) { selected = id }

	sx, sy := screenOf(e, 0, 0) // p5
	e.HandlePointerDown(sx, sy, 0)
	e.HandlePointerUp(sx, sy)
	if selected != "p5" {
		t.Errorf("selected = %q, want p5", selected)
	}
	if e.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle after click", e.Mode())
	}
}

func TestEngineClickRadiusTracksPointSize(t *testing.T) {
	e := newTestEngine()
	var selected string
	e.OnSelect = func(id string) { selected = id }
	sx, sy := screenOf(e, 0, 0) // p5

	// 12px out is past the default (4+5)*scale hit radius (about 8.3px at
	// the fitted scale).
	e.HandlePointerDown(sx+12, sy, 0)
	e.HandlePointerUp(sx+12, sy)
	if selected != "" {
		t.Fatalf("selected %q at 12px with the default point size, want none", selected)
	}

	// Larger points widen the clickable area to (10+5)*scale, about 13.9px.
	e.SetPointSize(10)
	e.HandlePointerDown(sx+12, sy, 0)
	e.HandlePointerUp(sx+12, sy)
	if selected != "p5" {
		t.Errorf("selected %q at 12px with point size 10, want p5", selected)
	}
}

func TestEngineClickOnEmptySpace(t *testing.T) {
	e := newTestEngine()
	called := false
	e.OnSelect = func(string) { called = true }
	e.HandlePointerDown(10, 10, 0)
	e.HandlePointerUp(10, 10)
	if called {
		t.Error("click on empty space should not select")
	}
}

func TestEngineDragPansWithoutSelecting(t *testing.T) {
	e := newTestEngine()
	var selected string
	e.OnSelect = func(id string) { selected = id }

	sx, sy := screenOf(e, 0, 0)
	ox := e.Viewport().OffsetX
	e.HandlePointerDown(sx, sy, 0)
	e.HandlePointerMove(sx+60, sy)
	e.HandlePointerUp(sx+60, sy)

	if selected != "" {
		t.Errorf("drag should not select, got %q", selected)
	}
	assertNear(t, "pan distance", e.Viewport().OffsetX-ox, 60)
}

func TestEngineDragDeadZone(t *testing.T) {
	e := newTestEngine()
	ox := e.Viewport().OffsetX
	e.HandlePointerDown(600, 400, 0)
	e.HandlePointerMove(602, 401) // within the dead zone
	e.HandlePointerUp(602, 401)
	assertNear(t, "offset unchanged", e.Viewport().OffsetX, ox)
}

func TestEngineShiftDragCapturesLasso(t *testing.T) {
	e := newTestEngine()
	var ids []string
	e.OnFilterChange = func(got []string) { ids = got }

	// Box around the center catches only p5.
	e.HandlePointerDown(600, 360, ModShift)
	if e.Mode() != ModeDrawingLasso {
		t.Fatalf("Mode = %v, want drawingLasso", e.Mode())
	}
	e.HandlePointerMove(680, 360)
	e.HandlePointerMove(680, 440)
	e.HandlePointerMove(600, 440)
	e.HandlePointerUp(600, 440)

	if e.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle after release", e.Mode())
	}
	if !e.Filter().lassoActive() {
		t.Fatal("lasso polygon should be active")
	}
	assertIDs(t, ids, []string{"p5"})
	assertIDs(t, e.FilteredIDs(), []string{"p5"})
}

func TestEngineShortLassoDiscarded(t *testing.T) {
	e := newTestEngine()
	e.HandlePointerDown(600, 360, ModShift)
	e.HandlePointerUp(600, 360) // no polyline captured
	if e.Filter().lassoActive() {
		t.Error("degenerate lasso should not activate")
	}
	if got := len(e.FilteredPoints()); got != 7 {
		t.Errorf("filtered %d points, want all 7", got)
	}
}

func TestEngineLassoInvert(t *testing.T) {
	e := newTestEngine()
	e.HandlePointerDown(600, 360, ModShift)
	e.HandlePointerMove(680, 360)
	e.HandlePointerMove(680, 440)
	e.HandlePointerMove(600, 440)
	e.HandlePointerUp(600, 440)
	assertIDs(t, e.FilteredIDs(), []string{"p5"})

	e.SetLassoInvert(true)
	assertIDs(t, e.FilteredIDs(), []string{"p1", "p2", "p3", "p4", "p6", "p7"})
}

func TestEngineLassoFollowsPan(t *testing.T) {
	e := newTestEngine()
	e.HandlePointerDown(600, 360, ModShift)
	e.HandlePointerMove(680, 360)
	e.HandlePointerMove(680, 440)
	e.HandlePointerMove(600, 440)
	e.HandlePointerUp(600, 440)
	assertIDs(t, e.FilteredIDs(), []string{"p5"})

	// The polygon is a screen region; panning moves other points into it.
	e.HandlePointerDown(100, 100, 0)
	e.HandlePointerMove(100+300*0.926, 100) // roughly one data unit at fit scale
	e.HandlePointerUp(100+300*0.926, 100)
	ids := e.FilteredIDs()
	for _, id := range ids {
		if id == "p5" {
			t.Error("p5 moved out of the lasso region but is still selected")
		}
	}
}

func TestEngineWheelZoomGating(t *testing.T) {
	e := newTestEngine()
	s0 := e.Viewport().Scale

	e.HandleWheel(-1, 640, 400)
	if e.Viewport().Scale <= s0 {
		t.Error("idle wheel should zoom in")
	}

	// Lasso capture blocks zooming.
	s1 := e.Viewport().Scale
	e.HandlePointerDown(600, 360, ModShift)
	e.HandleWheel(-1, 640, 400)
	assertNear(t, "scale during lasso", e.Viewport().Scale, s1)
	e.HandlePointerUp(600, 360)
}

func TestEngineHeatmapReference(t *testing.T) {
	e := newTestEngine()
	var refID string
	var selID string
	e.OnHeatmapRef = func(id string) { refID = id }
	e.OnSelect = func(id string) { selID = id }

	e.SetHeatmapMode(true)
	sx, sy := screenOf(e, 0, 0)
	e.HandlePointerDown(sx, sy, 0)
	e.HandlePointerUp(sx, sy)

	if refID != "p5" {
		t.Errorf("heatmap ref = %q, want p5", refID)
	}
	if selID != "" {
		t.Errorf("heatmap click should not select, got %q", selID)
	}

	// Leaving heatmap mode clears the reference.
	e.SetHeatmapMode(false)
	f := e.frame()
	if f.Heatmap.Active {
		t.Error("heatmap should clear when the mode is turned off")
	}
}

func TestEngineLayerFilterCallback(t *testing.T) {
	e := newTestEngine()
	var ids []string
	e.OnFilterChange = func(got []string) { ids = got }
	e.SetLayerEnabled(LayerPhysical, false)
	assertIDs(t, ids, []string{"p2", "p3", "p4"})

	// Re-applying the same value does not refire.
	ids = nil
	e.SetLayerEnabled(LayerPhysical, false)
	if ids != nil {
		t.Error("no-op layer toggle should not fire the callback")
	}
}

func TestEngineTraitCountRangeClamped(t *testing.T) {
	e := newTestEngine()
	e.SetTraitCountRange(-5, 99)
	f := e.Filter()
	if f.TraitCountMin != 0 || f.TraitCountMax != NumTraits {
		t.Errorf("range = [%d, %d], want [0, %d]", f.TraitCountMin, f.TraitCountMax, NumTraits)
	}
	e.SetTraitCountRange(10, 4)
	f = e.Filter()
	if f.TraitCountMin != 10 || f.TraitCountMax != 10 {
		t.Errorf("inverted range = [%d, %d], want [10, 10]", f.TraitCountMin, f.TraitCountMax)
	}
}

func TestEngineTourGating(t *testing.T) {
	e := newTestEngine()
	e.SetTour(testTour())

	// A drag in progress blocks the tour.
	e.HandlePointerDown(100, 100, 0)
	if e.StartTour() {
		t.Error("StartTour should be refused mid-drag")
	}
	e.HandlePointerUp(100, 100)

	if !e.StartTour() {
		t.Fatal("StartTour refused while idle")
	}
	if e.Mode() != ModeTouring {
		t.Fatalf("Mode = %v, want touring", e.Mode())
	}

	// Pointer and wheel input is ignored while touring.
	s0 := e.Viewport().Scale
	e.HandlePointerDown(640, 400, 0)
	if e.Mode() != ModeTouring {
		t.Error("pointer down should not interrupt the tour")
	}
	e.HandleWheel(-1, 640, 400)
	assertNear(t, "scale during tour", e.Viewport().Scale, s0)

	e.StopTour()
	if e.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle after StopTour", e.Mode())
	}
}

func TestEngineTourEndsBackToIdle(t *testing.T) {
	e := newTestEngine()
	e.SetTour(&Tour{Stops: []TourStop{{X: 0, Y: 0, Name: "Only"}}})
	if !e.StartTour() {
		t.Fatal("StartTour refused")
	}
	e.NextStop() // single stop: next ends the tour
	e.Update(1.0 / 60)
	if e.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle after the tour ends", e.Mode())
	}
}

func TestEngineTourAdvancesThroughUpdate(t *testing.T) {
	e := newTestEngine()
	e.SetTour(testTour())
	e.StartTour()
	for i := 0; i < 30; i++ {
		e.Update(1.0 / 60)
	}
	// Half a second in: centering (0.4s) finished, highlight in progress.
	if e.Tour().Phase != PhaseHighlight {
		t.Errorf("Phase = %v after 0.5s, want highlight", e.Tour().Phase)
	}
}

func TestEngineFindByName(t *testing.T) {
	e := newTestEngine()
	if !e.FindByName("Zeta") {
		t.Fatal("FindByName(Zeta) = false, want true")
	}
	// The centering transition runs through Update.
	for i := 0; i < 60; i++ {
		e.Update(1.0 / 60)
	}
	sx, sy := screenOf(e, 0.9, 0.9) // Zeta's position
	assertNearEps(t, "found centered x", sx, 640, 1)
	assertNearEps(t, "found centered y", sy, 400, 1)

	f := e.frame()
	if f.Found == nil || f.Found.ID != "p6" {
		t.Error("found decoration should mark p6")
	}
}

func TestEngineFindByNamePrefix(t *testing.T) {
	e := newTestEngine()
	if !e.FindByName("alp") {
		t.Fatal("case-insensitive prefix should match Alpha")
	}
	f := e.frame()
	if f.Found == nil || f.Found.ID != "p1" {
		t.Error("prefix search should mark p1")
	}
}

func TestEngineFindByNameMiss(t *testing.T) {
	e := newTestEngine()
	if e.FindByName("Nonexistent") {
		t.Error("FindByName should report false for unknown names")
	}
	if f := e.frame(); f.Found != nil {
		t.Error("a miss should clear the found decoration")
	}
}

func TestEngineFindTransitionCancelledByPan(t *testing.T) {
	e := newTestEngine()
	e.FindByName("Zeta")
	e.Update(0.1) // mid-transition
	e.HandlePointerDown(100, 100, 0)
	e.HandlePointerMove(200, 100)
	ox := e.Viewport().OffsetX
	e.Update(0.1)
	// The cancelled tween no longer fights the pan.
	assertNear(t, "offset after cancel", e.Viewport().OffsetX, ox)
	e.HandlePointerUp(200, 100)
}

func TestEngineSetDatasetResetsSelectionState(t *testing.T) {
	e := newTestEngine()
	e.HandlePointerDown(600, 360, ModShift)
	e.HandlePointerMove(680, 360)
	e.HandlePointerMove(680, 440)
	e.HandlePointerMove(600, 440)
	e.HandlePointerUp(600, 440)
	e.FindByName("Zeta")

	e.SetDataset(testPoints()[:3], nil)
	if e.Filter().lassoActive() {
		t.Error("SetDataset should clear the lasso")
	}
	f := e.frame()
	if f.Found != nil {
		t.Error("SetDataset should clear the found decoration")
	}
	if got := len(e.FilteredPoints()); got != 3 {
		t.Errorf("filtered %d points, want 3", got)
	}
}

func TestEngineInjectedClickSelects(t *testing.T) {
	e := newTestEngine()
	var selected string
	e.OnSelect = func(id string) { selected = id }

	sx, sy := screenOf(e, 0, 0)
	e.InjectClick(sx, sy, 0)
	e.Update(1.0 / 60) // press
	e.Update(1.0 / 60) // release
	if selected != "p5" {
		t.Errorf("selected = %q, want p5", selected)
	}
}

func TestEngineInjectedDragPans(t *testing.T) {
	e := newTestEngine()
	ox := e.Viewport().OffsetX
	e.InjectDrag(400, 400, 500, 400, 6, 0)
	for i := 0; i < 6; i++ {
		e.Update(1.0 / 60)
	}
	assertNear(t, "injected pan", e.Viewport().OffsetX-ox, 100)
}

func TestEngineInjectedEventsOnePerUpdate(t *testing.T) {
	e := newTestEngine()
	e.InjectClick(640, 400, 0)
	e.Update(1.0 / 60)
	if e.Mode() != ModePanning {
		t.Errorf("after one update the press should be in flight, mode = %v", e.Mode())
	}
	e.Update(1.0 / 60)
	if e.Mode() != ModeIdle {
		t.Errorf("after two updates the click should have completed, mode = %v", e.Mode())
	}
}

func TestEnginePointerLeaveAbortsGesture(t *testing.T) {
	e := newTestEngine()
	e.HandlePointerDown(600, 360, ModShift)
	e.HandlePointerLeave()
	if e.Mode() != ModeIdle {
		t.Errorf("Mode = %v, want idle after pointer leave", e.Mode())
	}
}

func TestEngineHoverTracking(t *testing.T) {
	e := newTestEngine()
	sx, sy := screenOf(e, 0, 0)
	e.HandlePointerMove(sx, sy)
	f := e.frame()
	if f.Hovered == nil || f.Hovered.ID != "p5" {
		t.Error("hover should track p5 under the cursor")
	}
	e.HandlePointerMove(10, 10)
	if f = e.frame(); f.Hovered != nil {
		t.Error("hover should clear over empty space")
	}
}

func TestEngineClearLasso(t *testing.T) {
	e := newTestEngine()
	e.HandlePointerDown(600, 360, ModShift)
	e.HandlePointerMove(680, 360)
	e.HandlePointerMove(680, 440)
	e.HandlePointerMove(600, 440)
	e.HandlePointerUp(600, 440)
	assertIDs(t, e.FilteredIDs(), []string{"p5"})

	e.ClearLasso()
	if got := len(e.FilteredPoints()); got != 7 {
		t.Errorf("filtered %d points after ClearLasso, want 7", got)
	}
}
