package rubeview

// syntheticPointerEvent represents a single injected pointer event.
// Canvas coordinates are used (matching what a script author sees in
// screenshots) and converted to world coordinates through the view,
// identical to real mouse input.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
	button           MouseButton

	// Wheel events keep the current press state and scroll by
	// (wheelX, wheelY) notches with mods held.
	wheel          bool
	wheelX, wheelY float64
	mods           KeyModifiers
}

// InjectPress queues a pointer press event at the given canvas coordinates
// (left button). The event is consumed on the next tick's processInput call.
func (v *Viewer) InjectPress(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectMove queues a pointer move event at the given canvas coordinates
// with the button held down. Use this between InjectPress and InjectRelease
// to simulate a drag.
func (v *Viewer) InjectMove(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectRelease queues a pointer release event at the given canvas coordinates.
func (v *Viewer) InjectRelease(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same canvas coordinates. Consumes two ticks.
func (v *Viewer) InjectClick(x, y float64) {
	v.InjectPress(x, y)
	v.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate ticks, and
// release at (toX, toY). The total sequence consumes `frames` ticks.
// Minimum frames is 2 (press + release).
func (v *Viewer) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	v.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		v.InjectMove(x, y)
	}
	v.InjectRelease(toX, toY)
}

// InjectWheel queues a wheel scroll of (dx, dy) notches with the cursor at
// (x, y). Hold ModCtrl in mods to zoom instead of pan. Injected wheel
// events always behave as if the window had focus.
func (v *Viewer) InjectWheel(x, y, dx, dy float64, mods KeyModifiers) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{
		screenX: x,
		screenY: y,
		wheel:   true,
		wheelX:  dx,
		wheelY:  dy,
		mods:    mods,
	})
}

// processInjectedInput pops one event from the inject queue and feeds it
// through processPointer. Returns true if an event was consumed (real mouse
// input should be skipped).
func (v *Viewer) processInjectedInput(mods KeyModifiers) bool {
	if len(v.injectQueue) == 0 {
		return false
	}
	evt := v.injectQueue[0]
	copy(v.injectQueue, v.injectQueue[1:])
	v.injectQueue = v.injectQueue[:len(v.injectQueue)-1]

	if evt.wheel {
		mods |= evt.mods
		v.processPointer(evt.screenX, evt.screenY, v.pointer.down, v.pointer.button, mods)
		v.processWheel(evt.wheelX, evt.wheelY, mods, true)
		return true
	}
	v.processPointer(evt.screenX, evt.screenY, evt.pressed, evt.button, mods)
	return true
}
