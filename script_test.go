package starmap

import (
	"strconv"
	"testing"
)

func runScript(t *testing.T, e *Engine, r *ScriptRunner) {
	t.Helper()
	e.SetScriptRunner(r)
	for i := 0; i < 1000 && !r.Done(); i++ {
		e.Update(1.0 / 60)
	}
	if !r.Done() {
		t.Fatal("script did not finish within the frame budget")
	}
}

func TestLoadScriptErrors(t *testing.T) {
	if _, err := LoadScript([]byte("{not json")); err == nil {
		t.Error("malformed JSON should fail to load")
	}
	if _, err := LoadScript([]byte(`{"steps": []}`)); err == nil {
		t.Error("a script with no steps should fail to load")
	}
}

func TestScriptClickSelects(t *testing.T) {
	e := newTestEngine()
	var selected string
	e.OnSelect = func(id string) { selected = id }

	sx, sy := screenOf(e, 0, 0)
	r, err := LoadScript([]byte(`{"steps": [
		{"action": "click", "x": ` + floatJSON(sx) + `, "y": ` + floatJSON(sy) + `}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	runScript(t, e, r)
	if selected != "p5" {
		t.Errorf("selected = %q, want p5", selected)
	}
}

func TestScriptDragPans(t *testing.T) {
	e := newTestEngine()
	ox := e.Viewport().OffsetX
	r, err := LoadScript([]byte(`{"steps": [
		{"action": "drag", "fromX": 400, "fromY": 400, "toX": 520, "toY": 400, "frames": 8}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	runScript(t, e, r)
	assertNear(t, "scripted pan", e.Viewport().OffsetX-ox, 120)
}

func TestScriptShiftDragLassos(t *testing.T) {
	e := newTestEngine()
	r, err := LoadScript([]byte(`{"steps": [
		{"action": "drag", "fromX": 600, "fromY": 360, "toX": 680, "toY": 440, "frames": 8, "shift": true}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	runScript(t, e, r)
	if !e.Filter().lassoActive() {
		t.Error("scripted shift-drag should capture a lasso")
	}
}

func TestScriptWheelZooms(t *testing.T) {
	e := newTestEngine()
	s0 := e.Viewport().Scale
	r, err := LoadScript([]byte(`{"steps": [
		{"action": "wheel", "delta": -1, "x": 640, "y": 400},
		{"action": "wheel", "delta": -1, "x": 640, "y": 400}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	runScript(t, e, r)
	assertNearEps(t, "scripted zoom", e.Viewport().Scale, s0*1.1*1.1, 1e-9)
}

func TestScriptWaitDelaysNextStep(t *testing.T) {
	e := newTestEngine()
	r, err := LoadScript([]byte(`{"steps": [
		{"action": "wait", "frames": 10},
		{"action": "wheel", "delta": -1, "x": 640, "y": 400}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	e.SetScriptRunner(r)
	s0 := e.Viewport().Scale
	for i := 0; i < 5; i++ {
		e.Update(1.0 / 60)
	}
	assertNear(t, "scale while waiting", e.Viewport().Scale, s0)
	for i := 0; i < 20 && !r.Done(); i++ {
		e.Update(1.0 / 60)
	}
	if !r.Done() {
		t.Fatal("script did not finish")
	}
	if e.Viewport().Scale <= s0 {
		t.Error("the wheel step after the wait never ran")
	}
}

func TestScriptStillWithoutDataRecordsError(t *testing.T) {
	e := NewEngine(1280, 800) // no dataset
	r, err := LoadScript([]byte(`{"steps": [{"action": "still", "label": "empty"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	r.ExportDir = t.TempDir()
	runScript(t, e, r)
	if r.Err() == nil {
		t.Error("still step on an empty dataset should record an error")
	}
}

func TestScriptUnknownActionSkipped(t *testing.T) {
	e := newTestEngine()
	r, err := LoadScript([]byte(`{"steps": [
		{"action": "teleport", "x": 1, "y": 2},
		{"action": "wheel", "delta": -1, "x": 640, "y": 400}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	s0 := e.Viewport().Scale
	runScript(t, e, r)
	if e.Viewport().Scale <= s0 {
		t.Error("steps after an unknown action should still run")
	}
}

func floatJSON(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
