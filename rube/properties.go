package rube

import (
	"encoding/json"
	"image/color"
	"reflect"
)

// Custom property kinds written by RUBE. A property holds one value keyed by
// its kind, e.g. {"name": "category", "string": "wheel"}.
const (
	PropertyInt    = "int"
	PropertyFloat  = "float"
	PropertyString = "string"
	PropertyBool   = "bool"
	PropertyVec2   = "vec2"
	PropertyColor  = "color"
)

// Property is one entry of a customProperties array.
type Property struct {
	Name    string
	HasName bool
	values  map[string]json.RawMessage
}

// UnmarshalJSON never fails. Entries that are not objects are empty.
func (p *Property) UnmarshalJSON(data []byte) error {
	*p = Property{}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	if raw, ok := m["name"]; ok {
		if err := json.Unmarshal(raw, &p.Name); err == nil {
			p.HasName = true
		}
		delete(m, "name")
	}
	p.values = m
	return nil
}

// Value decodes the value stored under kind.
func (p *Property) Value(kind string) (any, bool) {
	raw, ok := p.values[kind]
	if !ok {
		return nil, false
	}
	return decodeProperty(kind, raw)
}

func decodeProperty(kind string, raw json.RawMessage) (any, bool) {
	switch kind {
	case PropertyInt:
		var n Number
		_ = n.UnmarshalJSON(raw)
		if !n.Valid {
			return nil, false
		}
		return int(n.Value), true
	case PropertyFloat:
		var n Number
		_ = n.UnmarshalJSON(raw)
		if !n.Valid {
			return nil, false
		}
		return n.Value, true
	case PropertyString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		return s, true
	case PropertyBool:
		var b Bool
		_ = b.UnmarshalJSON(raw)
		return bool(b), true
	case PropertyVec2:
		var v Vec
		_ = v.UnmarshalJSON(raw)
		return v, true
	case PropertyColor:
		var c []Number
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, false
		}
		rgba := color.NRGBA{A: 255}
		parts := []*uint8{&rgba.R, &rgba.G, &rgba.B, &rgba.A}
		for i := 0; i < len(c) && i < len(parts); i++ {
			*parts[i] = uint8(max(0, min(255, c[i].Or(0))))
		}
		return rgba, true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

// Properties is a customProperties bag.
type Properties []Property

// UnmarshalJSON never fails. A bag that is not an array is empty.
func (ps *Properties) UnmarshalJSON(data []byte) error {
	*ps = nil
	var list []Property
	if err := json.Unmarshal(data, &list); err != nil {
		return nil
	}
	*ps = list
	return nil
}

// Has reports whether a property with the given kind and name exists.
func (ps Properties) Has(kind, name string) bool {
	_, ok := ps.Get(kind, name)
	return ok
}

// Get returns the first property value with the given kind and name.
func (ps Properties) Get(kind, name string) (any, bool) {
	for i := range ps {
		p := &ps[i]
		if !p.HasName || p.Name != name {
			continue
		}
		if v, ok := p.Value(kind); ok {
			return v, true
		}
	}
	return nil, false
}

// Matches reports whether any property with the given kind and name holds
// value. Numeric values compare by magnitude, so Matches("int", "n", 3.0)
// and Matches("int", "n", 3) agree.
func (ps Properties) Matches(kind, name string, value any) bool {
	want := normalizeValue(value)
	for i := range ps {
		p := &ps[i]
		if !p.HasName || p.Name != name {
			continue
		}
		v, ok := p.Value(kind)
		if ok && reflect.DeepEqual(normalizeValue(v), want) {
			return true
		}
	}
	return false
}

// Int returns an int property, or def.
func (ps Properties) Int(name string, def int) int {
	if v, ok := ps.Get(PropertyInt, name); ok {
		return v.(int)
	}
	return def
}

// Float returns a float property, or def.
func (ps Properties) Float(name string, def float64) float64 {
	if v, ok := ps.Get(PropertyFloat, name); ok {
		return v.(float64)
	}
	return def
}

// String returns a string property, or def.
func (ps Properties) String(name, def string) string {
	if v, ok := ps.Get(PropertyString, name); ok {
		return v.(string)
	}
	return def
}

// Bool returns a bool property, or def.
func (ps Properties) Bool(name string, def bool) bool {
	if v, ok := ps.Get(PropertyBool, name); ok {
		return v.(bool)
	}
	return def
}

// Vec2 returns a vec2 property, or def.
func (ps Properties) Vec2(name string, def Vec) Vec {
	if v, ok := ps.Get(PropertyVec2, name); ok {
		return v.(Vec)
	}
	return def
}

// Color returns a color property, or def.
func (ps Properties) Color(name string, def color.NRGBA) color.NRGBA {
	if v, ok := ps.Get(PropertyColor, name); ok {
		return v.(color.NRGBA)
	}
	return def
}

func normalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case Vec:
		n.Set = false
		return n
	}
	return v
}
