package rubeview

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// View scale limits, in pixels per meter before the device scale is applied.
const (
	DefaultPTM = 24.0
	MinPTM     = 0.1
	MaxPTM     = 300.0
)

// Home offset relative to the canvas: 500 px left of center, 300 px above
// the bottom edge.
const (
	homeOffsetX = 500.0
	homeOffsetY = 300.0
)

// resetAnim holds the active tweens of an animated view reset.
type resetAnim struct {
	tweenX   *gween.Tween
	tweenY   *gween.Tween
	tweenPTM *gween.Tween
	doneX    bool
	doneY    bool
	donePTM  bool
}

// View maps world meters to canvas pixels. The world origin sits at
// (OffsetX, OffsetY) on the canvas; world y points up and canvas y points
// down. Canvas pixels are device pixels, so Scale multiplies PTM.
type View struct {
	// OffsetX and OffsetY are the canvas position of the world origin.
	OffsetX, OffsetY float64
	// PTM is the zoom in pixels per meter, kept within [MinPTM, MaxPTM].
	PTM float64
	// Scale is the device pixel ratio.
	Scale float64
	// Width and Height are the canvas size in device pixels.
	Width, Height float64

	anim *resetAnim
}

// NewView creates a view for a canvas of the given size, already reset.
func NewView(width, height, scale float64) *View {
	if scale <= 0 {
		scale = 1
	}
	v := &View{Width: width, Height: height, Scale: scale}
	v.Reset()
	return v
}

func (v *View) home() (x, y, ptm float64) {
	return v.Width/2 - homeOffsetX, v.Height - homeOffsetY, DefaultPTM
}

// Reset restores the default zoom and origin position immediately.
func (v *View) Reset() {
	v.anim = nil
	v.OffsetX, v.OffsetY, v.PTM = v.home()
}

// AnimateReset moves back to the default zoom and origin over duration
// seconds. Any pan or zoom while it runs cancels the animation.
func (v *View) AnimateReset(duration float32, easeFn ease.TweenFunc) {
	if duration <= 0 {
		v.Reset()
		return
	}
	x, y, ptm := v.home()
	v.anim = &resetAnim{
		tweenX:   gween.New(float32(v.OffsetX), float32(x), duration, easeFn),
		tweenY:   gween.New(float32(v.OffsetY), float32(y), duration, easeFn),
		tweenPTM: gween.New(float32(v.PTM), float32(ptm), duration, easeFn),
	}
}

// Animating reports whether an animated reset is in progress.
func (v *View) Animating() bool {
	return v.anim != nil
}

// update advances the reset animation. Called once per tick by the viewer.
func (v *View) update(dt float32) {
	a := v.anim
	if a == nil {
		return
	}
	if !a.doneX {
		val, done := a.tweenX.Update(dt)
		v.OffsetX = float64(val)
		a.doneX = done
	}
	if !a.doneY {
		val, done := a.tweenY.Update(dt)
		v.OffsetY = float64(val)
		a.doneY = done
	}
	if !a.donePTM {
		val, done := a.tweenPTM.Update(dt)
		v.PTM = clampPTM(float64(val))
		a.donePTM = done
	}
	if a.doneX && a.doneY && a.donePTM {
		// Land exactly on the home values; the tweens work in float32.
		v.Reset()
	}
}

// SetSize updates the canvas size and device scale. The current pan and zoom
// are kept.
func (v *View) SetSize(width, height, scale float64) {
	v.Width, v.Height = width, height
	if scale > 0 {
		v.Scale = scale
	}
}

// PixelsPerMeter returns the effective scale in device pixels per meter.
func (v *View) PixelsPerMeter() float64 {
	return v.PTM * v.Scale
}

// Matrix returns the world-to-screen transform: translate to the offset,
// then scale by PTM with y flipped.
func (v *View) Matrix() mgl64.Mat3 {
	k := v.PixelsPerMeter()
	return mgl64.Translate2D(v.OffsetX, v.OffsetY).Mul3(mgl64.Scale2D(k, -k))
}

// WorldToScreen converts world meters to canvas pixels.
func (v *View) WorldToScreen(wx, wy float64) (float64, float64) {
	p := v.Matrix().Mul3x1(mgl64.Vec3{wx, wy, 1})
	return p[0], p[1]
}

// ScreenToWorld converts canvas pixels to world meters.
func (v *View) ScreenToWorld(sx, sy float64) (float64, float64) {
	p := v.Matrix().Inv().Mul3x1(mgl64.Vec3{sx, sy, 1})
	return p[0], p[1]
}

// Pan moves the world origin by (dx, dy) canvas pixels.
func (v *View) Pan(dx, dy float64) {
	v.anim = nil
	v.OffsetX += dx
	v.OffsetY += dy
}

// Scroll pans by a wheel delta in CSS pixels. Positive deltas move the view
// right and down, so the world moves left and up.
func (v *View) Scroll(deltaX, deltaY float64) {
	v.Pan(-deltaX*v.Scale, -deltaY*v.Scale)
}

// ZoomAt zooms by a wheel delta in CSS pixels (negative zooms in; -100
// doubles the zoom) keeping the world point under the canvas position (sx, sy)
// fixed. Returns false when the zoom was already at its limit.
func (v *View) ZoomAt(sx, sy, deltaY float64) bool {
	prev := v.PTM
	v.PTM = clampPTM(v.PTM - deltaY*v.PTM/100)
	if v.PTM == prev {
		return false
	}
	v.anim = nil
	ratio := v.PTM / prev
	v.OffsetX = sx + (v.OffsetX-sx)*ratio
	v.OffsetY = sy + (v.OffsetY-sy)*ratio
	return true
}

func clampPTM(ptm float64) float64 {
	return min(MaxPTM, max(MinPTM, ptm))
}
