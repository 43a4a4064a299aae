package rubeview

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/jakecoffman/cp/v2"
)

// captureStderr runs fn with os.Stderr redirected and returns what it wrote.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestDebugLog_Interval(t *testing.T) {
	v, _ := newTestViewer(t, nil)
	v.SetDebugMode(true)

	output := captureStderr(t, func() {
		tick(v, debugInterval-1)
	})
	if output != "" {
		t.Errorf("logged before the interval elapsed: %q", output)
	}

	output = captureStderr(t, func() {
		tick(v, 1)
	})
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 debug lines, got %q", output)
	}
	if !strings.HasPrefix(lines[0], "[rubeview] scene: a |") {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "bodies: 2") || !strings.Contains(lines[1], "PTM: 24.00") {
		t.Errorf("line 2 = %q", lines[1])
	}
	if v.stats.ticks != 0 || v.stats.stepTime != 0 {
		t.Error("stats not reset after logging")
	}
}

func TestDebugLog_Disabled(t *testing.T) {
	v, _ := newTestViewer(t, nil)

	output := captureStderr(t, func() {
		tick(v, debugInterval*2)
	})
	if output != "" {
		t.Errorf("debug output with debug mode off: %q", output)
	}
	if v.stats.ticks != 0 {
		t.Errorf("ticks = %d, want 0", v.stats.ticks)
	}
}

func TestDebugStats_CountSpace(t *testing.T) {
	w := loadTestWorld(t)
	d := NewDragger()
	d.Grab(w.Space, cp.Vector{X: 0, Y: 5})

	var s debugStats
	s.countSpace(w.Space)
	if s.bodies != 2 {
		t.Errorf("bodies = %d, want 2", s.bodies)
	}
	if s.shapes != 2 {
		t.Errorf("shapes = %d, want 2", s.shapes)
	}
	if s.constraints != 1 {
		t.Errorf("constraints = %d, want 1", s.constraints)
	}
	if s.sleeping != 0 {
		t.Errorf("sleeping = %d, want 0", s.sleeping)
	}

	s.countSpace(nil)
	if s.bodies != 0 || s.shapes != 0 || s.constraints != 0 {
		t.Errorf("countSpace(nil) = %+v, want zero counts", s)
	}
}

func TestDebugStats_Reset(t *testing.T) {
	s := debugStats{ticks: 10, stepTime: 100, drawTime: 200, bodies: 3}
	s.reset()
	if s.ticks != 0 || s.stepTime != 0 || s.drawTime != 0 {
		t.Errorf("after reset: %+v", s)
	}
	if s.bodies != 3 {
		t.Error("reset should keep the world counts")
	}
}
