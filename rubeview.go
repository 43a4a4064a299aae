package rubeview

import (
	"image/color"

	"github.com/jakecoffman/cp/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at draw submission time.
type Color struct {
	R, G, B, A float64
}

// RGB255 builds an opaque color from 8-bit channels.
func RGB255(r, g, b uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, 1}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(c.R*c.A*255 + 0.5),
		G: uint8(c.G*c.A*255 + 0.5),
		B: uint8(c.B*c.A*255 + 0.5),
		A: uint8(c.A*255 + 0.5),
	}
}

func colorFromF(c cp.FColor) Color {
	return Color{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
}

func (c Color) fcolor() cp.FColor {
	return cp.FColor{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: float32(c.A)}
}

// Debug draw palette. Shapes are filled with their color at FillAlpha and
// stroked opaque.
var (
	ColorBackground   = RGB255(0x21, 0x21, 0x21)
	ColorAxisX        = RGB255(192, 0, 0)
	ColorAxisY        = RGB255(0, 192, 0)
	ColorDragLine     = RGB255(204, 204, 204)
	ColorStatic       = Color{0.5, 0.9, 0.5, 1}
	ColorKinematic    = Color{0.5, 0.5, 0.9, 1}
	ColorSleeping     = Color{0.6, 0.6, 0.6, 1}
	ColorDynamic      = Color{0.9, 0.7, 0.7, 1}
	ColorJoint        = Color{0.5, 0.8, 0.8, 1}
	ColorCollisionDot = Color{0.9, 0.9, 0.3, 1}
	FillAlpha         = 0.5
)

// EventType identifies a kind of viewer event.
type EventType uint8

const (
	EventSceneLoaded  EventType = iota // a scene finished loading and replaced the world
	EventSceneFailed                   // a scene fetch or parse failed
	EventDragStart                     // a body was grabbed
	EventDragEnd                       // the grabbed body was released
	EventViewChanged                   // pan, zoom or reset changed the view
)

func (t EventType) String() string {
	switch t {
	case EventSceneLoaded:
		return "scene-loaded"
	case EventSceneFailed:
		return "scene-failed"
	case EventDragStart:
		return "drag-start"
	case EventDragEnd:
		return "drag-end"
	case EventViewChanged:
		return "view-changed"
	}
	return "unknown"
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
