package rubeview

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window created by Run.
type RunConfig struct {
	// Title is the window title. Defaults to "rubeview".
	Title string
	// Width and Height are the window size in logical pixels. Default
	// 1280x720.
	Width, Height int
	// ShowFPS turns on the FPS overlay.
	ShowFPS bool
	// ExitWhenDone ends the run once the attached test script has finished
	// and its screenshots are written.
	ExitWhenDone bool
}

// Run opens a resizable window and runs the viewer until the window is
// closed. The viewer is closed on return.
func Run(v *Viewer, cfg RunConfig) error {
	if cfg.Title == "" {
		cfg.Title = "rubeview"
	}
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}
	if cfg.ShowFPS {
		v.ShowFPS = true
	}
	defer v.Close()

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(TPS)

	var game ebiten.Game = v
	if cfg.ExitWhenDone {
		game = scriptedRun{v}
	}
	return ebiten.RunGame(game)
}

// scriptedRun stops the game loop after the test script finishes.
type scriptedRun struct {
	*Viewer
}

func (g scriptedRun) Update() error {
	if g.finished() {
		return ebiten.Termination
	}
	return g.Viewer.Update()
}

// finished reports whether the script is done and every queued screenshot
// has been flushed by a Draw.
func (g scriptedRun) finished() bool {
	r := g.testRunner
	return r != nil && r.Done() && len(g.screenshotQueue) == 0
}
