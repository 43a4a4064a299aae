package rube

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jakecoffman/cp/v2"
)

// Number is a JSON number that may be absent. Numeric strings are accepted;
// anything else (including non-finite values) decodes as absent.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a present Number.
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

// UnmarshalJSON never fails.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		n.set(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			n.set(f)
		}
	}
	return nil
}

func (n *Number) set(f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return
	}
	n.Value = f
	n.Valid = true
}

// Or returns the value, or def when absent.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Int reports the value as an integer index. Fractional values are not
// indices.
func (n Number) Int() (int, bool) {
	if !n.Valid || n.Value != math.Trunc(n.Value) {
		return 0, false
	}
	return int(n.Value), true
}

// Bool is a JSON flag: true, or any non-zero number. Everything else is false.
type Bool bool

// UnmarshalJSON never fails.
func (b *Bool) UnmarshalJSON(data []byte) error {
	*b = false
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = Bool(v)
		return nil
	}
	var n Number
	_ = n.UnmarshalJSON(data)
	if n.Valid && n.Value != 0 {
		*b = true
	}
	return nil
}

// Vec is a RUBE vector. RUBE writes the zero vector as the bare number 0, so
// anything that is not an object decodes to (0,0) with Set false.
type Vec struct {
	X, Y float64
	Set  bool
}

// UnmarshalJSON never fails.
func (v *Vec) UnmarshalJSON(data []byte) error {
	*v = Vec{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	var obj struct {
		X Number `json:"x"`
		Y Number `json:"y"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	v.X, v.Y, v.Set = obj.X.Or(0), obj.Y.Or(0), true
	return nil
}

// Vector converts to an engine vector.
func (v Vec) Vector() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

// VertexList is RUBE's parallel-array vertex encoding: {"x":[...],"y":[...]}.
type VertexList struct {
	X []Number
	Y []Number
}

// UnmarshalJSON never fails. A malformed coordinate array is treated as
// empty.
func (l *VertexList) UnmarshalJSON(data []byte) error {
	*l = VertexList{}
	var obj struct {
		X json.RawMessage `json:"x"`
		Y json.RawMessage `json:"y"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	_ = json.Unmarshal(obj.X, &l.X)
	_ = json.Unmarshal(obj.Y, &l.Y)
	return nil
}

// Len is the number of complete (x, y) pairs.
func (l VertexList) Len() int {
	return min(len(l.X), len(l.Y))
}

// Points returns the vertices in order. Missing coordinates read as 0.
func (l VertexList) Points() []cp.Vector {
	n := l.Len()
	if n == 0 {
		return nil
	}
	pts := make([]cp.Vector, n)
	for i := range pts {
		pts[i] = cp.Vector{X: l.X[i].Or(0), Y: l.Y[i].Or(0)}
	}
	return pts
}

// Ref is a joint's body reference. RUBE writes a positional index, but
// documents assembled by other tools may reference a body's id instead.
type Ref struct {
	raw json.RawMessage
}

// UnmarshalJSON keeps the compacted JSON text of the reference.
func (r *Ref) UnmarshalJSON(data []byte) error {
	r.raw = compactJSON(data)
	return nil
}

// Valid reports whether the reference was present at all.
func (r Ref) Valid() bool {
	return len(r.raw) > 0 && string(r.raw) != "null"
}

// Index returns the reference read as a positional index.
func (r Ref) Index() (int, bool) {
	if !r.Valid() {
		return 0, false
	}
	var n Number
	_ = n.UnmarshalJSON(r.raw)
	return n.Int()
}

// Matches reports whether the reference equals a body id.
func (r Ref) Matches(id json.RawMessage) bool {
	return r.Valid() && len(id) > 0 && bytes.Equal(r.raw, compactJSON(id))
}

func (r Ref) String() string {
	if !r.Valid() {
		return "<none>"
	}
	return string(r.raw)
}

// RefIndex builds a reference to a positional index.
func RefIndex(i int) Ref {
	return Ref{raw: json.RawMessage(strconv.Itoa(i))}
}

// RefID builds a reference to a body id given as JSON text, e.g. `"wheel"`.
func RefID(id string) Ref {
	return Ref{raw: compactJSON([]byte(id))}
}

func compactJSON(data []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return json.RawMessage(bytes.TrimSpace(data))
	}
	return json.RawMessage(buf.Bytes())
}

// Document is a parsed scene.
type Document struct {
	Gravity Vec
	Bodies  []BodyDef
	Joints  []JointDef
}

// BodyDef describes one body and its fixtures.
type BodyDef struct {
	// Type is kept raw: an absent type voids the body, while any present
	// value that is not a dynamic or kinematic token means static.
	Type json.RawMessage `json:"type"`

	Name string          `json:"name"`
	ID   json.RawMessage `json:"id"`

	Position        Vec    `json:"position"`
	Angle           Number `json:"angle"`
	LinearVelocity  Vec    `json:"linearVelocity"`
	AngularVelocity Number `json:"angularVelocity"`
	LinearDamping   Number `json:"linearDamping"`
	AngularDamping  Number `json:"angularDamping"`
	GravityScale    Number `json:"gravityScale"`
	Awake           Bool   `json:"awake"`
	Bullet          Bool   `json:"bullet"`
	FixedRotation   Bool   `json:"fixedRotation"`

	MassDataMass   Number `json:"massData-mass"`
	MassDataCenter Vec    `json:"massData-center"`
	MassDataI      Number `json:"massData-I"`

	Fixtures         []FixtureDef `json:"fixture"`
	CustomProperties Properties   `json:"customProperties"`
}

// HasType reports whether the descriptor declares a type.
func (d *BodyDef) HasType() bool {
	return len(d.Type) > 0
}

// Kind maps the declared type: "dynamic" or 2 is dynamic, "kinetic" or 1 is
// kinematic, anything else is static. "kinetic" is RUBE's token and is
// matched as written.
func (d *BodyDef) Kind() BodyKind {
	var s string
	if err := json.Unmarshal(d.Type, &s); err == nil {
		switch s {
		case "dynamic", "2":
			return BodyDynamic
		case "kinetic", "1":
			return BodyKinematic
		}
		return BodyStatic
	}
	var n Number
	_ = n.UnmarshalJSON(d.Type)
	if n.Valid {
		switch n.Value {
		case 2:
			return BodyDynamic
		case 1:
			return BodyKinematic
		}
	}
	return BodyStatic
}

// FixtureDef describes a fixture: material, filter and one shape variant.
type FixtureDef struct {
	Name string `json:"name"`

	Density     Number `json:"density"`
	Friction    Number `json:"friction"`
	Restitution Number `json:"restitution"`
	Sensor      Bool   `json:"sensor"`

	CategoryBits Number `json:"filter-categoryBits"`
	MaskBits     Number `json:"filter-maskBits"`
	GroupIndex   Number `json:"filter-groupIndex"`

	Circle  *CircleDef  `json:"circle"`
	Polygon *PolygonDef `json:"polygon"`
	Chain   *ChainDef   `json:"chain"`

	// Shapes and Vertices are the explicit multi-shape encoding. Polygon and
	// line entries take their points from Vertices.
	Shapes   []ShapeDef `json:"shapes"`
	Vertices VertexList `json:"vertices"`

	CustomProperties Properties `json:"customProperties"`
}

// CircleDef is a circle in body-local coordinates.
type CircleDef struct {
	Radius Number `json:"radius"`
	Center Vec    `json:"center"`
}

// PolygonDef is a convex polygon in body-local coordinates.
type PolygonDef struct {
	Vertices VertexList `json:"vertices"`
}

// ChainDef is a chain of edges. The ghost vertices RUBE exports for the
// chain ends are not read.
type ChainDef struct {
	Vertices VertexList `json:"vertices"`
	Closed   Bool       `json:"closed"`
}

// ShapeDef is one entry of a fixture's explicit shapes array.
type ShapeDef struct {
	Type   string `json:"type"`
	Radius Number `json:"radius"`
	Center Vec    `json:"center"`
}

// JointDef is the flat joint descriptor. The type-specific parameters are
// resolved into a JointParams variant by Params.
type JointDef struct {
	Type string `json:"type"`
	Name string `json:"name"`

	BodyA            Ref  `json:"bodyA"`
	BodyB            Ref  `json:"bodyB"`
	CollideConnected Bool `json:"collideConnected"`

	AnchorA    Vec    `json:"anchorA"`
	AnchorB    Vec    `json:"anchorB"`
	LocalAxisA Vec    `json:"localAxisA"`
	RefAngle   Number `json:"refAngle"`

	EnableLimit Bool   `json:"enableLimit"`
	LowerLimit  Number `json:"lowerLimit"`
	UpperLimit  Number `json:"upperLimit"`

	EnableMotor    Bool   `json:"enableMotor"`
	MotorSpeed     Number `json:"motorSpeed"`
	MaxMotorTorque Number `json:"maxMotorTorque"`
	MaxMotorForce  Number `json:"maxMotorForce"`

	Length       Number `json:"length"`
	MaxLength    Number `json:"maxLength"`
	Frequency    Number `json:"frequency"`
	DampingRatio Number `json:"dampingRatio"`

	SpringFrequency    Number `json:"springFrequency"`
	SpringDampingRatio Number `json:"springDampingRatio"`

	MaxForce         Number `json:"maxForce"`
	MaxTorque        Number `json:"maxTorque"`
	CorrectionFactor Number `json:"correctionFactor"`

	CustomProperties Properties `json:"customProperties"`

	raw json.RawMessage
}

// Raw returns the descriptor as it appeared in the document.
func (d *JointDef) Raw() json.RawMessage {
	return d.raw
}

// ParseDocument decodes a RUBE scene. Only a document that is not a JSON
// object is an error; every element inside is decoded leniently.
//
// Gravity and the body/joint arrays are read from the "metaworld" object
// when present, otherwise from the top level. The plain RUBE keys "body",
// "joint" and "gravity" are accepted when the meta keys are missing.
func ParseDocument(data []byte) (*Document, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse rube document: %w", err)
	}
	if root == nil {
		return nil, errors.New("parse rube document: not an object")
	}
	scope := root
	if raw, ok := root["metaworld"]; ok {
		var mw map[string]json.RawMessage
		if json.Unmarshal(raw, &mw) == nil && mw != nil {
			scope = mw
		}
	}
	lookup := func(keys ...string) json.RawMessage {
		for _, m := range []map[string]json.RawMessage{scope, root} {
			for _, k := range keys {
				if raw, ok := m[k]; ok {
					return raw
				}
			}
		}
		return nil
	}

	doc := &Document{}
	if raw := lookup("gravity"); raw != nil {
		_ = doc.Gravity.UnmarshalJSON(raw)
	}
	for _, raw := range elements(lookup("metabody", "body")) {
		var b BodyDef
		decodeLenient(raw, &b)
		doc.Bodies = append(doc.Bodies, b)
	}
	for _, raw := range elements(lookup("metajoint", "joint")) {
		var j JointDef
		decodeLenient(raw, &j)
		j.raw = raw
		doc.Joints = append(doc.Joints, j)
	}
	return doc, nil
}

// elements splits a JSON array into its raw elements. Anything else has
// none.
func elements(raw json.RawMessage) []json.RawMessage {
	if raw == nil {
		return nil
	}
	var out []json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// decodeLenient unmarshals as much of raw into v as matches. encoding/json
// skips fields of the wrong type and keeps going, so type errors are
// dropped and the partial result is kept.
func decodeLenient(raw json.RawMessage, v any) {
	_ = json.Unmarshal(raw, v)
}
