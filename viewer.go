package rubeview

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp/v2"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/rubeview/rube"
)

// TPS is the fixed simulation rate. Every tick advances the world by 1/TPS
// seconds regardless of the display refresh rate.
const TPS = 60

const (
	defaultWidth  = 1280
	defaultHeight = 720
	loadTimeout   = 30 * time.Second
	resetDuration = 0.4
)

// EventSink is the interface for optional event forwarding, e.g. to an ECS.
// When set on a Viewer, scene, drag and view events are sent to it.
type EventSink interface {
	EmitEvent(event Event)
}

// Event carries viewer activity for an EventSink.
type Event struct {
	Type    EventType
	Scene   string
	Body    string // name of the grabbed body (drag events)
	Message string // failure reason (EventSceneFailed)

	ScreenX   float64
	ScreenY   float64
	WorldX    float64
	WorldY    float64
	Button    MouseButton
	Modifiers KeyModifiers

	// View state after the event.
	PTM     float64
	OffsetX float64
	OffsetY float64
}

// Config configures a Viewer. Zero fields take defaults.
type Config struct {
	// Source supplies scene documents. Defaults to an HTTPSource at
	// DefaultBaseURL().
	Source SceneSource
	// Scenes is the selectable scene list. Defaults to DefaultScenes.
	Scenes []string
	// Scene is the scene loaded first. Defaults to DefaultScene when it is
	// in the list, else the first entry.
	Scene string
	// Width and Height are the initial canvas size in device pixels.
	Width, Height int
	// Logger receives load diagnostics. Defaults to log.Default().
	Logger *log.Logger
	// Loader builds worlds. Defaults to rube.NewLoader() logging to Logger.
	Loader *rube.Loader
	// DrawFlags selects what the debug draw shows. Defaults to shapes and
	// constraints.
	DrawFlags uint
	Debug     bool
	ShowFPS   bool
}

// loadResult is a finished fetch handed back to the update goroutine.
type loadResult struct {
	seq      uint64
	name     string
	data     []byte
	err      error
	keepView bool
}

// Viewer is the frame driver: an ebiten.Game that fetches and loads scenes,
// steps the world at a fixed rate, turns input into drag, pan and zoom, and
// draws the world with the engine's debug draw.
type Viewer struct {
	// View is the world-to-canvas mapping.
	View *View
	// Panel is the scene selector.
	Panel *Panel
	// ScreenshotDir is the directory where screenshots are saved.
	// Defaults to "screenshots".
	ScreenshotDir string
	// ShowFPS draws the FPS/TPS overlay.
	ShowFPS bool

	source    SceneSource
	loader    *rube.Loader
	logger    *log.Logger
	sink      EventSink
	debug     bool
	drawFlags uint

	world   *rube.World
	scene   string
	loadErr error
	drag    *Dragger

	// Loads: seq is bumped per request; applied is the seq of the last
	// result taken, successful or not.
	seq       uint64
	applied   uint64
	loads     chan loadResult
	cancel    context.CancelFunc
	changes   chan string
	done      chan struct{}
	closeOnce sync.Once

	pointer   pointerState
	spaceHeld bool
	keyBuf    []ebiten.Key

	injectQueue     []syntheticPointerEvent
	testRunner      *TestRunner
	screenshotQueue []string

	fps   fpsOverlay
	stats debugStats
}

// NewViewer creates a viewer and starts loading the initial scene.
func NewViewer(cfg Config) *Viewer {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Source == nil {
		cfg.Source = NewHTTPSource(DefaultBaseURL())
	}
	if len(cfg.Scenes) == 0 {
		cfg.Scenes = DefaultScenes
	}
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}
	if cfg.Loader == nil {
		cfg.Loader = rube.NewLoader()
		cfg.Loader.Logger = cfg.Logger
	}
	if cfg.DrawFlags == 0 {
		cfg.DrawFlags = cp.DRAW_SHAPES | cp.DRAW_CONSTRAINTS
	}

	v := &Viewer{
		View:          NewView(float64(cfg.Width), float64(cfg.Height), 1),
		ScreenshotDir: "screenshots",
		ShowFPS:       cfg.ShowFPS,
		source:        cfg.Source,
		loader:        cfg.Loader,
		logger:        cfg.Logger,
		debug:         cfg.Debug,
		drawFlags:     cfg.DrawFlags,
		drag:          NewDragger(),
		loads:         make(chan loadResult, 4),
		changes:       make(chan string, 8),
		done:          make(chan struct{}),
	}
	v.Panel = NewPanel(cfg.Scenes, cfg.Scene, func(name string) { v.load(name, false) })
	v.load(v.Panel.Current(), false)
	return v
}

func (v *Viewer) logf(format string, args ...any) {
	v.logger.Printf("rubeview: "+format, args...)
}

// SetEventSink sets the sink that receives viewer events. Pass nil to
// disable forwarding.
func (v *Viewer) SetEventSink(sink EventSink) {
	v.sink = sink
}

// SetDebugMode enables or disables the periodic stderr stats.
func (v *Viewer) SetDebugMode(enabled bool) {
	v.debug = enabled
}

// World returns the loaded world, or nil before the first load completes.
func (v *Viewer) World() *rube.World {
	return v.world
}

// Scene returns the name of the loaded scene.
func (v *Viewer) Scene() string {
	return v.scene
}

// Err returns the error of the last load, or nil if it succeeded.
func (v *Viewer) Err() error {
	return v.loadErr
}

// Loading reports whether the most recent load request is still in flight.
func (v *Viewer) Loading() bool {
	return v.applied != v.seq
}

// Reload fetches the current scene again, keeping the view.
func (v *Viewer) Reload() {
	v.load(v.Panel.Current(), true)
}

// Close cancels any in-flight fetch and stops background watchers.
func (v *Viewer) Close() {
	v.closeOnce.Do(func() {
		if v.cancel != nil {
			v.cancel()
		}
		close(v.done)
	})
}

// load starts exactly one fetch for name. Earlier fetches still running are
// canceled and their results discarded when they arrive.
func (v *Viewer) load(name string, keepView bool) {
	v.seq++
	seq := v.seq
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	v.cancel = cancel

	go func() {
		defer cancel()
		data, err := v.source.Fetch(ctx, name)
		r := loadResult{seq: seq, name: name, data: data, err: err, keepView: keepView}
		select {
		case v.loads <- r:
		case <-v.done:
		}
	}()
}

// applyLoads takes every finished fetch without blocking.
func (v *Viewer) applyLoads() {
	for {
		select {
		case r := <-v.loads:
			v.applyLoad(r)
		default:
			return
		}
	}
}

func (v *Viewer) applyLoad(r loadResult) {
	if r.seq != v.seq {
		v.logf("discarding stale load of %q", r.name)
		return
	}
	v.applied = r.seq

	if r.err != nil {
		v.failLoad(r.name, r.err)
		return
	}
	world, ok, err := v.loader.Load(r.data)
	if err != nil {
		v.failLoad(r.name, err)
		return
	}
	if !ok {
		v.logf("scene %q: some bodies could not be created", r.name)
	}

	v.drag.Release()
	v.world = world
	v.scene = r.name
	v.loadErr = nil
	if !r.keepView {
		v.View.Reset()
	}
	v.emit(Event{Type: EventSceneLoaded, Scene: r.name})
}

func (v *Viewer) failLoad(name string, err error) {
	v.logf("load %q: %v", name, err)
	v.loadErr = err
	v.emit(Event{Type: EventSceneFailed, Scene: name, Message: err.Error()})
}

// Watch subscribes to scene change notifications at url (a SceneServer's
// /watch endpoint) and reloads the current scene when it changes. It
// returns immediately; the subscription ends with ctx or Close.
func (v *Viewer) Watch(ctx context.Context, url string) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		<-v.done
		cancel()
	}()
	go func() {
		err := WatchScenes(ctx, url, func(name string) {
			select {
			case v.changes <- name:
			default:
			}
		})
		if err != nil && ctx.Err() == nil {
			v.logf("watch %s: %v", url, err)
		}
	}()
}

// applyChanges reloads the current scene if a watch notification named it.
func (v *Viewer) applyChanges() {
	reload := false
	for {
		select {
		case name := <-v.changes:
			if name == v.Panel.Current() {
				reload = true
			}
		default:
			if reload {
				v.logf("scene %q changed, reloading", v.Panel.Current())
				v.Reload()
			}
			return
		}
	}
}

// emit forwards an event to the sink with the current view state.
func (v *Viewer) emit(e Event) {
	if v.sink == nil {
		return
	}
	if e.Scene == "" {
		e.Scene = v.scene
	}
	e.PTM = v.View.PTM
	e.OffsetX = v.View.OffsetX
	e.OffsetY = v.View.OffsetY
	v.sink.EmitEvent(e)
}

// bodyName returns the scene name of an engine body, if it has one.
func bodyName(b *cp.Body) string {
	if b == nil {
		return ""
	}
	if rb, ok := b.UserData.(*rube.Body); ok {
		return rb.Name
	}
	return ""
}

// Update implements ebiten.Game. It applies finished loads, runs the test
// script, handles keys and pointer input, then steps the world once.
func (v *Viewer) Update() error {
	v.update(v.pollInput())
	return nil
}

func (v *Viewer) update(in inputFrame) {
	const dt = 1.0 / TPS
	start := time.Now()

	v.applyLoads()
	v.applyChanges()
	if v.testRunner != nil {
		v.testRunner.step(v)
	}
	v.handleKeys(in.keys)
	v.processInput(in)
	v.View.update(dt)
	v.fps.update(dt)

	if v.world != nil {
		v.drag.update(dt)
		v.world.Step(dt)
	}

	v.stats.stepTime += time.Since(start)
	v.debugLog()
}

// handleKeys applies the viewer shortcuts; anything else goes to the panel.
func (v *Viewer) handleKeys(keys []ebiten.Key) {
	for _, k := range keys {
		switch k {
		case ebiten.KeyR:
			v.View.AnimateReset(resetDuration, ease.OutCubic)
			v.emit(Event{Type: EventViewChanged})
		case ebiten.KeyF:
			v.ShowFPS = !v.ShowFPS
		case ebiten.KeyH:
			v.Panel.Visible = !v.Panel.Visible
		default:
			v.Panel.handleKey(k)
		}
	}
}

// Draw implements ebiten.Game.
func (v *Viewer) Draw(screen *ebiten.Image) {
	start := time.Now()

	screen.Fill(ColorBackground.toRGBA())
	d := newDebugDrawer(screen, v.View, v.drawFlags)
	d.axes()
	if v.world != nil {
		cp.DrawSpace(v.world.Space, d)
	}
	if a, b, ok := v.drag.Line(); ok {
		d.line(a, b, ColorDragLine)
	}
	if v.Panel.Visible {
		v.Panel.draw(screen, v.status())
	}
	if v.ShowFPS {
		v.fps.draw(screen)
	}
	v.flushScreenshots(screen)

	v.stats.drawTime += time.Since(start)
}

// status is the panel's second line: load progress or the last error.
func (v *Viewer) status() string {
	switch {
	case v.Loading():
		return "loading " + v.Panel.Current() + "..."
	case v.loadErr != nil:
		return "error: " + v.loadErr.Error()
	}
	return ""
}

// Layout implements ebiten.Game. The canvas is sized in device pixels so
// lines stay crisp on high-density displays.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	w := int(float64(outsideWidth) * scale)
	h := int(float64(outsideHeight) * scale)
	v.View.SetSize(float64(w), float64(h), scale)
	return w, h
}
