package starmap

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in an interaction script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Shift  bool    `json:"shift,omitempty"`
}

// interactionScript is the top-level JSON structure for a script.
type interactionScript struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences injected input events across Update ticks for
// automated interaction testing. Attach to an Engine via SetScriptRunner.
//
// Supported actions: "click", "drag", "wheel", "wait", and "still". Drags
// honor the "shift" flag so a script can capture a lasso; "still" renders a
// still export into ExportDir named after the step's label.
type ScriptRunner struct {
	// ExportDir receives "still" step output. Empty means the current
	// working directory.
	ExportDir string

	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	err       error
}

// LoadScript parses a JSON interaction script.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var script interactionScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	return &ScriptRunner{steps: script.Steps}, nil
}

// SetScriptRunner attaches a ScriptRunner to the engine. The runner's step
// method is called from Engine.Update each tick. Pass nil to detach.
func (e *Engine) SetScriptRunner(runner *ScriptRunner) {
	e.script = runner
}

// Done reports whether all steps in the script have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Err returns the first error a "still" step produced, if any.
func (r *ScriptRunner) Err() error {
	return r.err
}

// step advances the runner by one tick. Called from Engine.Update.
func (r *ScriptRunner) step(e *Engine) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(e.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	var mods KeyModifiers
	if st.Shift {
		mods |= ModShift
	}

	switch st.Action {
	case "click":
		e.InjectClick(st.X, st.Y, mods)
	case "drag":
		frames := st.Frames
		if frames < 2 {
			frames = 2
		}
		e.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, frames, mods)
	case "wheel":
		e.InjectWheel(st.Delta, st.X, st.Y)
	case "still":
		data, err := e.ExportStill()
		if err == nil {
			dir := r.ExportDir
			if dir == "" {
				dir = "."
			}
			_, err = WriteExport(dir, st.Label, "png", data)
		}
		if err != nil && r.err == nil {
			r.err = err
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this tick counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(e.injectQueue) == 0 {
		r.done = true
	}
}
