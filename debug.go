package rubeview

import (
	"fmt"
	"os"
	"time"

	"github.com/jakecoffman/cp/v2"
)

// debugInterval is how many ticks pass between debug log lines.
const debugInterval = TPS

// debugStats holds per-tick timing and world-size metrics.
// Only populated when the viewer runs in debug mode.
type debugStats struct {
	ticks       int
	stepTime    time.Duration
	drawTime    time.Duration
	bodies      int
	sleeping    int
	shapes      int
	constraints int
}

// reset clears the accumulated timings after a log line.
func (s *debugStats) reset() {
	s.ticks = 0
	s.stepTime = 0
	s.drawTime = 0
}

// countSpace fills the world-size metrics from the engine space.
func (s *debugStats) countSpace(space *cp.Space) {
	s.bodies, s.sleeping, s.shapes, s.constraints = 0, 0, 0, 0
	if space == nil {
		return
	}
	space.EachBody(func(b *cp.Body) {
		s.bodies++
		if b.IsSleeping() {
			s.sleeping++
		}
	})
	space.EachShape(func(*cp.Shape) { s.shapes++ })
	space.EachConstraint(func(*cp.Constraint) { s.constraints++ })
}

// debugLog prints timing and world stats to stderr once every debugInterval
// ticks.
func (v *Viewer) debugLog() {
	if !v.debug {
		return
	}
	st := &v.stats
	st.ticks++
	if st.ticks < debugInterval {
		return
	}
	if v.world != nil {
		st.countSpace(v.world.Space)
	} else {
		st.countSpace(nil)
	}
	n := time.Duration(st.ticks)
	_, _ = fmt.Fprintf(os.Stderr,
		"[rubeview] scene: %s | step: %v | draw: %v (avg over %d ticks)\n",
		v.scene, st.stepTime/n, st.drawTime/n, st.ticks)
	_, _ = fmt.Fprintf(os.Stderr,
		"[rubeview] bodies: %d (%d sleeping) | shapes: %d | constraints: %d | PTM: %.2f\n",
		st.bodies, st.sleeping, st.shapes, st.constraints, v.View.PTM)
	st.reset()
}
