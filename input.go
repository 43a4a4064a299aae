package rubeview

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp/v2"
)

// Wheel notches are converted to browser-style delta pixels before they
// reach the view. One notch zooms by 10% or pans by 40 CSS pixels.
const (
	wheelZoomPixels = 10.0
	wheelPanPixels  = 40.0
)

// --- Per-frame input snapshot ---

// inputFrame is everything the viewer reads from ebiten in one tick.
// Separating the read from the handling keeps the handlers testable.
type inputFrame struct {
	x, y     float64
	pressed  bool
	button   MouseButton
	mods     KeyModifiers
	wheelX   float64
	wheelY   float64
	spaceKey bool
	focused  bool
	keys     []ebiten.Key // keys that went down this tick
}

// --- Pointer state ---

type pointerState struct {
	down    bool
	button  MouseButton // button captured at press time
	panning bool        // press started with the space key held
	lastX   float64
	lastY   float64
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// pollInput reads mouse, wheel and keyboard state for this tick.
func (v *Viewer) pollInput() inputFrame {
	mx, my := ebiten.CursorPosition()
	in := inputFrame{
		x:        float64(mx),
		y:        float64(my),
		mods:     readModifiers(),
		spaceKey: ebiten.IsKeyPressed(ebiten.KeySpace),
		focused:  ebiten.IsFocused(),
	}
	in.wheelX, in.wheelY = ebiten.Wheel()
	in.keys = inpututil.AppendJustPressedKeys(v.keyBuf[:0])
	v.keyBuf = in.keys

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		in.pressed = true
		if left {
			in.button = MouseButtonLeft
		} else if right {
			in.button = MouseButtonRight
		} else {
			in.button = MouseButtonMiddle
		}
	}
	return in
}

// processInput handles pointer and wheel input for one tick. Injected
// events take the place of the real pointer until the queue drains.
func (v *Viewer) processInput(in inputFrame) {
	v.spaceHeld = in.spaceKey
	if v.processInjectedInput(in.mods) {
		return
	}
	v.processPointer(in.x, in.y, in.pressed, in.button, in.mods)
	if in.wheelX != 0 || in.wheelY != 0 {
		v.processWheel(in.wheelX, in.wheelY, in.mods, in.focused)
	}
}

// inCanvas reports whether a canvas position lies on the canvas.
func (v *Viewer) inCanvas(sx, sy float64) bool {
	return sx >= 0 && sy >= 0 && sx < v.View.Width && sy < v.View.Height
}

// processPointer runs the pointer state machine. Leaving the canvas while
// pressed counts as a release.
func (v *Viewer) processPointer(sx, sy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &v.pointer
	if pressed && !v.inCanvas(sx, sy) {
		if ps.down {
			v.pointerUp(sx, sy, mods)
		}
		ps.lastX, ps.lastY = sx, sy
		return
	}

	wx, wy := v.View.ScreenToWorld(sx, sy)
	v.drag.Mouse = cp.Vector{X: wx, Y: wy}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.panning = v.spaceHeld
		ps.lastX, ps.lastY = sx, sy
		if !ps.panning && button == MouseButtonLeft {
			v.grab(sx, sy, wx, wy, mods)
		}
	case !pressed && ps.down:
		v.pointerUp(sx, sy, mods)
	case pressed && ps.down:
		if ps.panning && (sx != ps.lastX || sy != ps.lastY) {
			v.View.Pan(sx-ps.lastX, sy-ps.lastY)
			v.emit(Event{Type: EventViewChanged, ScreenX: sx, ScreenY: sy, Modifiers: mods})
		}
		ps.lastX, ps.lastY = sx, sy
	default:
		ps.lastX, ps.lastY = sx, sy
	}
}

// grab tries to pick a dynamic body at the world point.
func (v *Viewer) grab(sx, sy, wx, wy float64, mods KeyModifiers) {
	if v.world == nil {
		return
	}
	body := v.drag.Grab(v.world.Space, cp.Vector{X: wx, Y: wy})
	if body == nil {
		return
	}
	v.emit(Event{
		Type:      EventDragStart,
		Scene:     v.scene,
		ScreenX:   sx,
		ScreenY:   sy,
		WorldX:    wx,
		WorldY:    wy,
		Button:    v.pointer.button,
		Modifiers: mods,
		Body:      bodyName(body),
	})
}

// pointerUp ends the press: the drag joint, if any, is destroyed.
func (v *Viewer) pointerUp(sx, sy float64, mods KeyModifiers) {
	ps := &v.pointer
	if v.drag.Active() {
		name := bodyName(v.drag.Target())
		v.drag.Release()
		wx, wy := v.View.ScreenToWorld(sx, sy)
		v.emit(Event{
			Type:      EventDragEnd,
			Scene:     v.scene,
			ScreenX:   sx,
			ScreenY:   sy,
			WorldX:    wx,
			WorldY:    wy,
			Button:    ps.button,
			Modifiers: mods,
			Body:      name,
		})
	}
	ps.down = false
	ps.panning = false
	ps.lastX, ps.lastY = sx, sy
}

// processWheel zooms about the cursor when ctrl is held and otherwise pans,
// but only while the window has focus. Ebiten reports notches with positive
// y scrolling up; browser deltas are the opposite.
func (v *Viewer) processWheel(dx, dy float64, mods KeyModifiers, focused bool) {
	if mods&ModCtrl != 0 {
		if !v.View.ZoomAt(v.pointer.lastX, v.pointer.lastY, -dy*wheelZoomPixels) {
			return
		}
	} else if focused {
		v.View.Scroll(-dx*wheelPanPixels, -dy*wheelPanPixels)
	} else {
		return
	}
	v.emit(Event{
		Type:      EventViewChanged,
		ScreenX:   v.pointer.lastX,
		ScreenY:   v.pointer.lastY,
		Modifiers: mods,
	})
}
