package rube

import (
	"encoding/json"

	"github.com/jakecoffman/cp/v2"
)

// BodyKind is a body's simulation type.
type BodyKind uint8

const (
	BodyStatic    BodyKind = iota // never moves
	BodyKinematic                 // moves by velocity, ignores forces
	BodyDynamic                   // fully simulated
)

func (k BodyKind) String() string {
	switch k {
	case BodyKinematic:
		return "kinematic"
	case BodyDynamic:
		return "dynamic"
	default:
		return "static"
	}
}

// DefaultIterations is the solver iteration count for loaded worlds.
const DefaultIterations = 10

// DefaultSleepTime is how long a body must idle before it is put to sleep.
const DefaultSleepTime = 0.5

// World owns the engine space and everything loaded into it. A World is
// rebuilt for every scene; nothing is shared between worlds.
type World struct {
	Space *cp.Space

	gravity cp.Vector
	bodies  []*Body
	joints  []*Joint
}

// NewWorld creates an empty world. Gravity is fixed for the world's
// lifetime.
func NewWorld(gravity cp.Vector) *World {
	space := cp.NewSpace()
	space.SetGravity(gravity)
	space.Iterations = DefaultIterations
	space.SleepTimeThreshold = DefaultSleepTime
	return &World{Space: space, gravity: gravity}
}

// Gravity returns the gravity the world was created with.
func (w *World) Gravity() cp.Vector {
	return w.gravity
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	w.Space.Step(dt)
}

// Bodies returns every body in load order. The slice MUST NOT be mutated.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Joints returns every joint in load order. The slice MUST NOT be mutated.
func (w *World) Joints() []*Joint {
	return w.joints
}

// Fixtures returns every fixture, body by body.
func (w *World) Fixtures() []*Fixture {
	var out []*Fixture
	for _, b := range w.bodies {
		out = append(out, b.Fixtures...)
	}
	return out
}

// Counts returns the number of bodies, fixtures and joints.
func (w *World) Counts() (bodies, fixtures, joints int) {
	for _, b := range w.bodies {
		fixtures += len(b.Fixtures)
	}
	return len(w.bodies), fixtures, len(w.joints)
}

// BodiesByName returns the bodies named name.
func (w *World) BodiesByName(name string) []*Body {
	var out []*Body
	for _, b := range w.bodies {
		if b.Name == name {
			out = append(out, b)
		}
	}
	return out
}

// FixturesByName returns the fixtures named name.
func (w *World) FixturesByName(name string) []*Fixture {
	var out []*Fixture
	for _, b := range w.bodies {
		for _, f := range b.Fixtures {
			if f.Name == name {
				out = append(out, f)
			}
		}
	}
	return out
}

// JointsByName returns the joints named name.
func (w *World) JointsByName(name string) []*Joint {
	var out []*Joint
	for _, j := range w.joints {
		if j.Name == name {
			out = append(out, j)
		}
	}
	return out
}

// BodiesByCustomProperty returns the bodies carrying a custom property of
// the given kind and name whose value equals value.
func (w *World) BodiesByCustomProperty(kind, name string, value any) []*Body {
	var out []*Body
	for _, b := range w.bodies {
		if b.Properties.Matches(kind, name, value) {
			out = append(out, b)
		}
	}
	return out
}

// FixturesByCustomProperty is BodiesByCustomProperty for fixtures.
func (w *World) FixturesByCustomProperty(kind, name string, value any) []*Fixture {
	var out []*Fixture
	for _, b := range w.bodies {
		for _, f := range b.Fixtures {
			if f.Properties.Matches(kind, name, value) {
				out = append(out, f)
			}
		}
	}
	return out
}

// JointsByCustomProperty is BodiesByCustomProperty for joints.
func (w *World) JointsByCustomProperty(kind, name string, value any) []*Joint {
	var out []*Joint
	for _, j := range w.joints {
		if j.Properties.Matches(kind, name, value) {
			out = append(out, j)
		}
	}
	return out
}

// Body is a loaded body. Phys is the engine body; its UserData points back
// here.
type Body struct {
	Name       string
	ID         json.RawMessage
	Kind       BodyKind
	Properties Properties

	GravityScale   float64
	LinearDamping  float64
	AngularDamping float64
	Bullet         bool
	Awake          bool
	FixedRotation  bool

	Fixtures []*Fixture
	Phys     *cp.Body
}

// Filter is a fixture's collision filter in RUBE terms.
type Filter struct {
	CategoryBits uint16
	MaskBits     uint16
	GroupIndex   int16
}

// DefaultFilter collides with everything.
var DefaultFilter = Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF}

// ShapeFilter converts to the engine's filter. A negative group keeps
// members of the same group from colliding; the engine has no equivalent of
// a positive (always collide) group, so those are dropped.
func (f Filter) ShapeFilter() cp.ShapeFilter {
	var group uint
	if f.GroupIndex < 0 {
		group = uint(-int(f.GroupIndex))
	}
	return cp.ShapeFilter{
		Group:      group,
		Categories: uint(f.CategoryBits),
		Mask:       uint(f.MaskBits),
	}
}

// ShapeKind names a fixture's shape variant.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapePolygon
	ShapeChain
	ShapeLine
)

func (k ShapeKind) String() string {
	switch k {
	case ShapePolygon:
		return "polygon"
	case ShapeChain:
		return "chain"
	case ShapeLine:
		return "line"
	default:
		return "circle"
	}
}

// Fixture is a loaded fixture. A chain becomes one engine segment per edge,
// so Shapes may hold more than one shape.
type Fixture struct {
	Name       string
	Properties Properties
	Kind       ShapeKind

	Density     float64
	Friction    float64
	Restitution float64
	Sensor      bool
	Filter      Filter

	Body   *Body
	Shapes []*cp.Shape
}

// Joint is a loaded joint and the engine constraints that express it.
type Joint struct {
	Name             string
	Type             string
	Properties       Properties
	BodyA, BodyB     *Body
	CollideConnected bool
	Params           JointParams

	Constraints []*cp.Constraint
}
