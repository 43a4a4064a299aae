package rube

import (
	"encoding/json"
	"image/color"
	"testing"
)

func parseProperties(t *testing.T, src string) Properties {
	t.Helper()
	var ps Properties
	if err := json.Unmarshal([]byte(src), &ps); err != nil {
		t.Fatal(err)
	}
	return ps
}

const sampleProperties = `[
	{"name": "category", "string": "wheel"},
	{"name": "teeth", "int": 12},
	{"name": "ratio", "float": 0.5},
	{"name": "driven", "bool": true},
	{"name": "offset", "vec2": {"x": 1, "y": 2}},
	{"name": "tint", "color": [255, 128, 0, 200]},
	{"int": 99},
	"junk"
]`

func TestPropertiesGet(t *testing.T) {
	ps := parseProperties(t, sampleProperties)
	tests := []struct {
		kind, name string
		want       any
	}{
		{PropertyString, "category", "wheel"},
		{PropertyInt, "teeth", 12},
		{PropertyFloat, "ratio", 0.5},
		{PropertyBool, "driven", true},
		{PropertyVec2, "offset", Vec{X: 1, Y: 2, Set: true}},
		{PropertyColor, "tint", color.NRGBA{R: 255, G: 128, A: 200}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got, ok := ps.Get(tt.kind, tt.name)
			if !ok {
				t.Fatalf("Get(%s, %s) missing", tt.kind, tt.name)
			}
			if got != tt.want {
				t.Errorf("Get(%s, %s) = %#v, want %#v", tt.kind, tt.name, got, tt.want)
			}
		})
	}
}

func TestPropertiesHasChecksName(t *testing.T) {
	ps := parseProperties(t, sampleProperties)
	if !ps.Has(PropertyInt, "teeth") {
		t.Error("Has(int, teeth) = false")
	}
	if ps.Has(PropertyInt, "category") {
		t.Error("Has(int, category) = true; kind and name must both match")
	}
	if ps.Has(PropertyInt, "") {
		t.Error("unnamed property should not be found")
	}
}

func TestPropertiesMatches(t *testing.T) {
	ps := parseProperties(t, sampleProperties)
	if !ps.Matches(PropertyInt, "teeth", 12) {
		t.Error("Matches(int, teeth, 12) = false")
	}
	if !ps.Matches(PropertyInt, "teeth", 12.0) {
		t.Error("Matches(int, teeth, 12.0) = false")
	}
	if ps.Matches(PropertyInt, "teeth", 13) {
		t.Error("Matches(int, teeth, 13) = true")
	}
	if !ps.Matches(PropertyVec2, "offset", Vec{X: 1, Y: 2}) {
		t.Error("vec2 match ignores the Set flag")
	}
	if ps.Matches(PropertyString, "category", 12) {
		t.Error("string vs int should not match")
	}
}

func TestPropertiesTypedDefaults(t *testing.T) {
	ps := parseProperties(t, sampleProperties)
	if got := ps.Int("teeth", 0); got != 12 {
		t.Errorf("Int = %d", got)
	}
	if got := ps.Int("missing", 4); got != 4 {
		t.Errorf("Int default = %d", got)
	}
	if got := ps.Float("ratio", 0); got != 0.5 {
		t.Errorf("Float = %v", got)
	}
	if got := ps.String("category", ""); got != "wheel" {
		t.Errorf("String = %q", got)
	}
	if got := ps.Bool("missing", true); !got {
		t.Error("Bool default lost")
	}
	if got := ps.Vec2("offset", Vec{}); got.X != 1 {
		t.Errorf("Vec2 = %+v", got)
	}
	if got := ps.Color("missing", color.NRGBA{A: 1}); got.A != 1 {
		t.Errorf("Color default = %+v", got)
	}
}

func TestPropertiesNotAnArray(t *testing.T) {
	ps := parseProperties(t, `{"name": "x"}`)
	if len(ps) != 0 {
		t.Errorf("len = %d, want 0", len(ps))
	}
}
