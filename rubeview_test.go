package rubeview

import (
	"image/color"
	"math"
	"testing"
)

func approxColor(a, b Color) bool {
	const tol = 1e-6
	return math.Abs(a.R-b.R) < tol && math.Abs(a.G-b.G) < tol &&
		math.Abs(a.B-b.B) < tol && math.Abs(a.A-b.A) < tol
}

func TestRGB255(t *testing.T) {
	c := RGB255(255, 0, 51)
	if c != (Color{1, 0, 0.2, 1}) {
		t.Errorf("RGB255(255, 0, 51) = %v", c)
	}
	if got := c.WithAlpha(0.25); got.A != 0.25 || got.R != 1 {
		t.Errorf("WithAlpha(0.25) = %v", got)
	}
	if c.A != 1 {
		t.Error("WithAlpha modified the receiver")
	}
}

func TestColorToRGBA(t *testing.T) {
	tests := []struct {
		name string
		c    Color
		want color.RGBA
	}{
		{"opaque", Color{1, 0.5, 0, 1}, color.RGBA{255, 128, 0, 255}},
		{"half alpha is premultiplied", Color{1, 0.5, 0, 0.5}, color.RGBA{128, 64, 0, 128}},
		{"transparent", Color{1, 1, 1, 0}, color.RGBA{0, 0, 0, 0}},
		{"background", ColorBackground, color.RGBA{0x21, 0x21, 0x21, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.toRGBA(); got != tt.want {
				t.Errorf("toRGBA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorFColorRoundTrip(t *testing.T) {
	for _, c := range []Color{ColorStatic, ColorKinematic, ColorDynamic, ColorJoint.WithAlpha(0.3)} {
		if got := colorFromF(c.fcolor()); !approxColor(got, c) {
			t.Errorf("colorFromF(fcolor(%v)) = %v", c, got)
		}
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		typ  EventType
		want string
	}{
		{EventSceneLoaded, "scene-loaded"},
		{EventSceneFailed, "scene-failed"},
		{EventDragStart, "drag-start"},
		{EventDragEnd, "drag-end"},
		{EventViewChanged, "view-changed"},
		{EventType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", int(tt.typ), got, tt.want)
		}
	}
}
