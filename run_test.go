package rubeview

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestScriptedRunFinished(t *testing.T) {
	v, _ := newTestViewer(t, nil)
	g := scriptedRun{v}

	if g.finished() {
		t.Error("finished without a script")
	}

	runner := mustRunner(t, v, `{"steps": [{"action": "screenshot", "label": "last"}]}`)
	if g.finished() {
		t.Error("finished before the script ran")
	}

	runner.step(v)
	if !runner.Done() {
		t.Fatal("runner not done")
	}
	if g.finished() {
		t.Error("finished with a screenshot still queued")
	}

	v.screenshotQueue = v.screenshotQueue[:0]
	if !g.finished() {
		t.Error("not finished after the screenshot was flushed")
	}
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("Update() = %v, want ebiten.Termination", err)
	}
}
