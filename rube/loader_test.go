package rube

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/jakecoffman/cp/v2"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// loadScene parses src and loads it with a loader that logs into the
// returned buffer.
func loadScene(t *testing.T, src string, caps Capabilities) (*World, bool, *bytes.Buffer) {
	t.Helper()
	doc, err := ParseDocument([]byte(src))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	var buf bytes.Buffer
	l := &Loader{Logger: log.New(&buf, "", 0), Capabilities: caps}
	w, ok := l.CreateWorld(doc)
	return w, ok, &buf
}

func allCaps() Capabilities { return Capabilities{MotorJoint: true} }

func TestCreateWorld_Gravity(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want cp.Vector
	}{
		{"object", `{"metaworld":{"gravity":{"x":0,"y":-10}}}`, cp.Vector{Y: -10}},
		{"zero", `{"metaworld":{"gravity":0}}`, cp.Vector{}},
		{"missing", `{}`, cp.Vector{}},
		{"string coords", `{"gravity":{"x":"1.5","y":"oops"}}`, cp.Vector{X: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok, _ := loadScene(t, tt.src, allCaps())
			if !ok {
				t.Error("ok = false, want true")
			}
			if g := w.Gravity(); g != tt.want {
				t.Errorf("Gravity() = %v, want %v", g, tt.want)
			}
			if g := w.Space.Gravity(); g != tt.want {
				t.Errorf("space gravity = %v, want %v", g, tt.want)
			}
		})
	}
}

func TestLoadWorld_BodyTypes(t *testing.T) {
	w, ok, _ := loadScene(t, `{"metaworld":{"metabody":[
		{"type":"dynamic"},
		{"type":"kinetic"},
		{"type":"static"},
		{"type":2},
		{"type":1},
		{"type":"kinematic"}
	]}}`, allCaps())
	if !ok {
		t.Fatal("ok = false")
	}
	want := []int{cp.BODY_DYNAMIC, cp.BODY_KINEMATIC, cp.BODY_STATIC, cp.BODY_DYNAMIC, cp.BODY_KINEMATIC, cp.BODY_STATIC}
	bodies := w.Bodies()
	if len(bodies) != len(want) {
		t.Fatalf("bodies = %d, want %d", len(bodies), len(want))
	}
	for i, b := range bodies {
		if got := b.Phys.GetType(); got != want[i] {
			t.Errorf("body %d type = %v, want %v", i, got, want[i])
		}
		if b.Phys.UserData != b {
			t.Errorf("body %d: engine body does not point back", i)
		}
	}
}

func TestLoadWorld_MissingTypeSkipsBody(t *testing.T) {
	w, ok, logs := loadScene(t, `{"metaworld":{
		"metabody":[
			{"type":"static","name":"ground"},
			{"name":"ghost"},
			{"type":"dynamic","name":"ball","fixture":[{"density":1,"circle":{"radius":0.5}}]}
		],
		"metajoint":[{"type":"rope","bodyA":0,"bodyB":1,"maxLength":3}]
	}}`, allCaps())
	if ok {
		t.Error("ok = true, want false")
	}
	if !strings.Contains(logs.String(), "no type") {
		t.Errorf("log = %q, want a no-type diagnostic", logs.String())
	}
	bodies := w.Bodies()
	if len(bodies) != 2 {
		t.Fatalf("bodies = %d, want 2", len(bodies))
	}
	// Joint indices address the loaded bodies, so index 1 is "ball".
	joints := w.Joints()
	if len(joints) != 1 {
		t.Fatalf("joints = %d, want 1", len(joints))
	}
	if joints[0].BodyB.Name != "ball" {
		t.Errorf("joint bodyB = %q, want ball", joints[0].BodyB.Name)
	}
}

func TestLoadBody_State(t *testing.T) {
	w, _, _ := loadScene(t, `{"metabody":[{
		"type":"dynamic",
		"position":{"x":2,"y":3},
		"angle":0.5,
		"linearVelocity":{"x":1,"y":-1},
		"angularVelocity":2,
		"fixture":[{"density":1,"circle":{"radius":1}}]
	},{
		"type":"static",
		"linearVelocity":{"x":5,"y":5},
		"angularVelocity":3
	}]}`, allCaps())
	b := w.Bodies()[0].Phys
	if p := b.Position(); !approxEqual(p.X, 2, epsilon) || !approxEqual(p.Y, 3, epsilon) {
		t.Errorf("position = %v, want (2,3)", p)
	}
	if a := b.Angle(); !approxEqual(a, 0.5, epsilon) {
		t.Errorf("angle = %v, want 0.5", a)
	}
	if v := b.Velocity(); v.X != 1 || v.Y != -1 {
		t.Errorf("velocity = %v, want (1,-1)", v)
	}
	if av := b.AngularVelocity(); av != 2 {
		t.Errorf("angular velocity = %v, want 2", av)
	}

	s := w.Bodies()[1].Phys
	if v := s.Velocity(); v != (cp.Vector{}) || s.AngularVelocity() != 0 {
		t.Errorf("static body moving: v=%v w=%v", v, s.AngularVelocity())
	}
}

func TestLoadBody_Defaults(t *testing.T) {
	w, _, _ := loadScene(t, `{"metabody":[
		{"type":"dynamic"},
		{"type":"dynamic","gravityScale":"abc","linearDamping":null},
		{"type":"dynamic","gravityScale":0.5,"angularDamping":2}
	]}`, allCaps())
	bodies := w.Bodies()
	if bodies[0].GravityScale != 1 || bodies[1].GravityScale != 1 {
		t.Errorf("gravity scale defaults = %v, %v, want 1", bodies[0].GravityScale, bodies[1].GravityScale)
	}
	if bodies[1].LinearDamping != 0 {
		t.Errorf("linear damping = %v, want 0", bodies[1].LinearDamping)
	}
	if bodies[2].GravityScale != 0.5 || bodies[2].AngularDamping != 2 {
		t.Errorf("body 2 = %+v", bodies[2])
	}
}

func TestLoadBody_MassFromDensity(t *testing.T) {
	w, _, _ := loadScene(t, `{"metabody":[{
		"type":"dynamic",
		"fixture":[{"density":1,"circle":{"radius":1}}]
	}]}`, allCaps())
	m := w.Bodies()[0].Phys.Mass()
	if !approxEqual(m, math.Pi, 1e-6) {
		t.Errorf("mass = %v, want %v", m, math.Pi)
	}
}

func TestLoadBody_MassDataOverride(t *testing.T) {
	w, _, _ := loadScene(t, `{"metabody":[{
		"type":"dynamic",
		"position":{"x":2,"y":3},
		"massData-mass":5,
		"massData-center":{"x":1,"y":0},
		"massData-I":10,
		"fixture":[{"density":1,"circle":{"radius":1,"center":{"x":0.5,"y":0}}}]
	}]}`, allCaps())
	b := w.Bodies()[0].Phys
	if m := b.Mass(); !approxEqual(m, 5, epsilon) {
		t.Errorf("mass = %v, want 5", m)
	}
	// I about the origin minus m*|c|^2.
	if i := b.Moment(); !approxEqual(i, 5, epsilon) {
		t.Errorf("moment = %v, want 5", i)
	}
	if p := b.Position(); !approxEqual(p.X, 2, 1e-6) || !approxEqual(p.Y, 3, 1e-6) {
		t.Errorf("position = %v, want (2,3)", p)
	}
	// The center of gravity stays at the fixture centroid, not massData-center.
	if c := b.CenterOfGravity(); !approxEqual(c.X, 0.5, 1e-6) || !approxEqual(c.Y, 0, 1e-6) {
		t.Errorf("center of gravity = %v, want (0.5,0)", c)
	}
}

func TestLoadBody_MasslessDynamic(t *testing.T) {
	w, _, _ := loadScene(t, `{"metabody":[
		{"type":"dynamic"},
		{"type":"dynamic","massData-mass":0,"fixture":[{"polygon":{"vertices":{"x":[0,1,0],"y":[0,0,1]}}}]}
	]}`, allCaps())
	for i, b := range w.Bodies() {
		if m := b.Phys.Mass(); m != 1 {
			t.Errorf("body %d mass = %v, want 1", i, m)
		}
		if b.Phys.Moment() < 1e300 {
			t.Errorf("body %d moment = %v, want infinite", i, b.Phys.Moment())
		}
	}
}

func TestLoadBody_FixedRotation(t *testing.T) {
	w, _, _ := loadScene(t, `{"metabody":[{
		"type":"dynamic",
		"fixedRotation":true,
		"fixture":[{"density":2,"circle":{"radius":1}}]
	}]}`, allCaps())
	b := w.Bodies()[0]
	if !b.FixedRotation {
		t.Error("FixedRotation = false")
	}
	if b.Phys.Moment() < 1e300 {
		t.Errorf("moment = %v, want infinite", b.Phys.Moment())
	}
	if !approxEqual(b.Phys.Mass(), 2*math.Pi, 1e-6) {
		t.Errorf("mass = %v, want 2π", b.Phys.Mass())
	}
}

func TestLoadBody_GravityScale(t *testing.T) {
	w, _, _ := loadScene(t, `{"metaworld":{"gravity":{"x":0,"y":-10},"metabody":[
		{"type":"dynamic","fixture":[{"density":1,"circle":{"radius":0.5}}]},
		{"type":"dynamic","gravityScale":0,"position":{"x":5,"y":0},"fixture":[{"density":1,"circle":{"radius":0.5}}]}
	]}}`, allCaps())
	for i := 0; i < 30; i++ {
		w.Step(1.0 / 60)
	}
	normal, floating := w.Bodies()[0].Phys, w.Bodies()[1].Phys
	if normal.Velocity().Y >= -1 {
		t.Errorf("normal body vy = %v, want falling", normal.Velocity().Y)
	}
	if !approxEqual(floating.Velocity().Y, 0, 1e-9) {
		t.Errorf("zero gravity scale body vy = %v, want 0", floating.Velocity().Y)
	}
}

func TestLoadBody_LinearDamping(t *testing.T) {
	w, _, _ := loadScene(t, `{"metabody":[
		{"type":"dynamic","linearVelocity":{"x":10,"y":0},"linearDamping":1,"fixture":[{"density":1,"circle":{"radius":0.5}}]}
	]}`, allCaps())
	dt := 1.0 / 60
	w.Step(dt)
	want := 10 / (1 + dt)
	if vx := w.Bodies()[0].Phys.Velocity().X; !approxEqual(vx, want, 1e-9) {
		t.Errorf("vx = %v, want %v", vx, want)
	}
}

func TestLoadFixture_PolygonVertexLimits(t *testing.T) {
	tests := []struct {
		name  string
		xs    string
		ys    string
		count int
	}{
		{"two", `[0,1]`, `[0,0]`, 0},
		{"three", `[0,1,0]`, `[0,0,1]`, 1},
		{"eight", `[1,0.7,0,-0.7,-1,-0.7,0,0.7]`, `[0,0.7,1,0.7,0,-0.7,-1,-0.7]`, 1},
		{"nine", `[1,0.7,0,-0.7,-1,-0.7,0,0.7,0.9]`, `[0,0.7,1,0.7,0,-0.7,-1,-0.7,-0.3]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `{"metabody":[{"type":"static","fixture":[{"polygon":{"vertices":{"x":` + tt.xs + `,"y":` + tt.ys + `}}}]}]}`
			w, ok, logs := loadScene(t, src, allCaps())
			if !ok {
				t.Error("ok = false, want true")
			}
			if got := len(w.Bodies()[0].Fixtures); got != tt.count {
				t.Errorf("fixtures = %d, want %d", got, tt.count)
			}
			if logs.Len() != 0 {
				t.Errorf("unexpected log output %q", logs.String())
			}
		})
	}
}

func TestLoadFixture_ShapePrecedence(t *testing.T) {
	w, _, _ := loadScene(t, `{"metabody":[{"type":"static","fixture":[{
		"circle":{"radius":2,"center":{"x":1,"y":1}},
		"chain":{"vertices":{"x":[0,1,2],"y":[0,0,0]}},
		"polygon":{"vertices":{"x":[0,1,0],"y":[0,0,1]}}
	},{
		"chain":{"vertices":{"x":[0,1,2],"y":[0,0,0]}},
		"polygon":{"vertices":{"x":[0,1,0],"y":[0,0,1]}}
	}]}]}`, allCaps())
	fixtures := w.Bodies()[0].Fixtures
	if len(fixtures) != 2 {
		t.Fatalf("fixtures = %d, want 2", len(fixtures))
	}
	if fixtures[0].Kind != ShapeCircle {
		t.Errorf("fixture 0 kind = %v, want circle", fixtures[0].Kind)
	}
	circle := fixtures[0].Shapes[0].Class.(*cp.Circle)
	if !approxEqual(circle.Radius(), 2, epsilon) {
		t.Errorf("radius = %v, want 2", circle.Radius())
	}
	if fixtures[1].Kind != ShapeChain {
		t.Errorf("fixture 1 kind = %v, want chain", fixtures[1].Kind)
	}
}

func TestLoadFixture_Chain(t *testing.T) {
	tests := []struct {
		name     string
		closed   string
		segments int
	}{
		{"open", `false`, 3},
		{"closed", `true`, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `{"metabody":[{"type":"static","fixture":[{"chain":{
				"vertices":{"x":[0,4,4,0],"y":[0,0,4,4]},
				"closed":` + tt.closed + `
			}}]}]}`
			w, _, _ := loadScene(t, src, allCaps())
			f := w.Bodies()[0].Fixtures[0]
			if len(f.Shapes) != tt.segments {
				t.Errorf("segments = %d, want %d", len(f.Shapes), tt.segments)
			}
			for _, s := range f.Shapes {
				if s.UserData != f {
					t.Error("segment does not point back at its fixture")
				}
			}
			// Edge midpoints lie on a segment; the closing edge only for a loop.
			edges := []struct {
				p    cp.Vector
				want bool
			}{
				{cp.Vector{X: 2, Y: 0}, true},
				{cp.Vector{X: 4, Y: 2}, true},
				{cp.Vector{X: 2, Y: 4}, true},
				{cp.Vector{X: 0, Y: 2}, tt.segments == 4},
			}
			for _, e := range edges {
				on := false
				for _, s := range f.Shapes {
					if math.Abs(s.PointQuery(e.p).Distance) < 1e-6 {
						on = true
					}
				}
				if on != e.want {
					t.Errorf("point %v on chain = %v, want %v", e.p, on, e.want)
				}
			}
		})
	}
}

func TestLoadFixture_ShortChainLogged(t *testing.T) {
	w, ok, logs := loadScene(t, `{"metabody":[{"type":"static","fixture":[
		{"name":"stub","chain":{"vertices":{"x":[0],"y":[0]}}}
	]}]}`, allCaps())
	if !ok {
		t.Error("ok = false")
	}
	if len(w.Bodies()[0].Fixtures) != 0 {
		t.Error("one-vertex chain produced a fixture")
	}
	if !strings.Contains(logs.String(), "stub") {
		t.Errorf("log = %q, want the fixture name", logs.String())
	}
}

func TestLoadFixture_ExplicitShapes(t *testing.T) {
	w, _, logs := loadScene(t, `{"metabody":[{"type":"static","fixture":[{
		"name":"multi",
		"shapes":[
			{"type":"circle","radius":0.5},
			{"type":"line"},
			{"type":"polygon"},
			{"type":"blob"}
		],
		"vertices":{"x":[0,1,0],"y":[0,0,1]}
	}]}]}`, allCaps())
	fixtures := w.Bodies()[0].Fixtures
	if len(fixtures) != 3 {
		t.Fatalf("fixtures = %d, want 3", len(fixtures))
	}
	kinds := []ShapeKind{ShapeCircle, ShapeLine, ShapePolygon}
	for i, f := range fixtures {
		if f.Kind != kinds[i] {
			t.Errorf("fixture %d kind = %v, want %v", i, f.Kind, kinds[i])
		}
	}
	if !strings.Contains(logs.String(), "blob") {
		t.Errorf("log = %q, want unknown shape type", logs.String())
	}
	if got := len(w.FixturesByName("multi")); got != 3 {
		t.Errorf("FixturesByName = %d, want 3", got)
	}
}

func TestLoadFixture_Material(t *testing.T) {
	w, _, _ := loadScene(t, `{"metabody":[{"type":"dynamic","fixture":[{
		"density":1,
		"friction":0.4,
		"restitution":0.25,
		"sensor":true,
		"filter-categoryBits":2,
		"filter-maskBits":0,
		"filter-groupIndex":-3,
		"circle":{"radius":1}
	},{
		"circle":{"radius":1}
	}]}]}`, allCaps())
	fixtures := w.Bodies()[0].Fixtures
	f := fixtures[0]
	s := f.Shapes[0]
	if !approxEqual(s.Friction(), 0.4, epsilon) || !approxEqual(s.Elasticity(), 0.25, epsilon) {
		t.Errorf("friction/elasticity = %v/%v", s.Friction(), s.Elasticity())
	}
	if !s.Sensor() {
		t.Error("sensor = false")
	}
	if f.Filter != (Filter{CategoryBits: 2, MaskBits: 0, GroupIndex: -3}) {
		t.Errorf("filter = %+v", f.Filter)
	}
	sf := s.Filter
	if sf.Categories != 2 || sf.Mask != 0 || sf.Group != 3 {
		t.Errorf("shape filter = %+v", sf)
	}

	if fixtures[1].Filter != DefaultFilter {
		t.Errorf("default filter = %+v", fixtures[1].Filter)
	}
}

func TestFilterShapeFilter(t *testing.T) {
	tests := []struct {
		in    Filter
		group uint
	}{
		{Filter{GroupIndex: 0}, 0},
		{Filter{GroupIndex: -1}, 1},
		{Filter{GroupIndex: 4}, 0},
	}
	for _, tt := range tests {
		if got := tt.in.ShapeFilter().Group; got != tt.group {
			t.Errorf("%+v group = %d, want %d", tt.in, got, tt.group)
		}
	}
}

func TestLoad_Idempotent(t *testing.T) {
	src := []byte(`{"metaworld":{
		"gravity":{"x":0,"y":-10},
		"metabody":[
			{"type":"static","fixture":[{"polygon":{"vertices":{"x":[-5,5,5,-5],"y":[-1,-1,0,0]}}}]},
			{"type":"dynamic","position":{"x":0,"y":3},"fixture":[{"density":2,"circle":{"radius":0.5}}]},
			{"type":"dynamic","position":{"x":1,"y":3},"fixture":[{"density":1,"polygon":{"vertices":{"x":[0,1,0],"y":[0,0,1]}}}]}
		],
		"metajoint":[
			{"type":"revolute","bodyA":1,"bodyB":2,"enableLimit":true,"lowerLimit":-1,"upperLimit":1},
			{"type":"rope","bodyA":0,"bodyB":1,"maxLength":5}
		]
	}}`)
	w1, ok1, err1 := Load(src)
	w2, ok2, err2 := Load(src)
	if err1 != nil || err2 != nil {
		t.Fatal(err1, err2)
	}
	if ok1 != ok2 {
		t.Fatalf("ok differs: %v vs %v", ok1, ok2)
	}
	b1, f1, j1 := w1.Counts()
	b2, f2, j2 := w2.Counts()
	if b1 != b2 || f1 != f2 || j1 != j2 {
		t.Fatalf("counts differ: (%d,%d,%d) vs (%d,%d,%d)", b1, f1, j1, b2, f2, j2)
	}
	for i := range w1.Bodies() {
		p1, p2 := w1.Bodies()[i].Phys, w2.Bodies()[i].Phys
		if p1.Position() != p2.Position() || p1.Mass() != p2.Mass() || p1.GetType() != p2.GetType() {
			t.Errorf("body %d differs", i)
		}
	}
	for i := range w1.Joints() {
		if len(w1.Joints()[i].Constraints) != len(w2.Joints()[i].Constraints) {
			t.Errorf("joint %d constraints differ", i)
		}
	}
	if w1.Space == w2.Space {
		t.Error("worlds share a space")
	}
}

func TestLoad_FallingBall(t *testing.T) {
	w, ok, err := Load([]byte(`{"metaworld":{
		"gravity":{"x":0,"y":-10},
		"metabody":[
			{"type":"dynamic","position":{"x":0,"y":5},"fixture":[{"density":1,"friction":0.5,"circle":{"radius":1}}]},
			{"type":"static","fixture":[{"friction":0.5,"polygon":{"vertices":{"x":[-10,10,10,-10],"y":[-0.5,-0.5,0.5,0.5]}}}]}
		]
	}}`))
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	ball := w.Bodies()[0].Phys
	start := ball.Position().Y
	prev := start
	for frame := 0; frame < 300; frame++ {
		w.Step(1.0 / 60)
		y := ball.Position().Y
		if prev > 1.6 && y > prev {
			t.Fatalf("frame %d: y rose from %v to %v while falling", frame, prev, y)
		}
		if frame == 30 && start-y < 1 {
			t.Errorf("y = %v after half a second, want it well below %v", y, start)
		}
		prev = y
	}
	y := ball.Position().Y
	if y < 1.3 || y > 1.6 {
		t.Errorf("rest height = %v, want about 1.5", y)
	}
	if vy := ball.Velocity().Y; math.Abs(vy) > 0.05 {
		t.Errorf("rest vy = %v, want about 0", vy)
	}
}

func TestLoad_NotAnObject(t *testing.T) {
	if _, _, err := Load([]byte(`[1,2]`)); err == nil {
		t.Error("Load of an array should fail")
	}
}
