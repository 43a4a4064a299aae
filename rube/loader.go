package rube

import (
	"fmt"
	"log"

	"github.com/jakecoffman/cp/v2"
)

// Capabilities lists optional engine features the loader may rely on.
type Capabilities struct {
	// MotorJoint enables building "motor" joints. When false they are
	// logged and skipped.
	MotorJoint bool
}

// Loader turns documents into worlds. The zero value logs to log.Default
// and has no optional capabilities; NewLoader enables everything the engine
// supports.
type Loader struct {
	Logger       *log.Logger
	Capabilities Capabilities
}

// NewLoader returns a loader with every capability enabled.
func NewLoader() *Loader {
	return &Loader{
		Logger:       log.Default(),
		Capabilities: Capabilities{MotorJoint: true},
	}
}

var defaultLoader = NewLoader()

// CreateWorld builds a world from doc with the default loader.
func CreateWorld(doc *Document) (*World, bool) {
	return defaultLoader.CreateWorld(doc)
}

// Load parses data and builds a world with the default loader.
func Load(data []byte) (*World, bool, error) {
	return defaultLoader.Load(data)
}

// Load parses data and builds a world from it.
func (l *Loader) Load(data []byte) (*World, bool, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, false, err
	}
	w, ok := l.CreateWorld(doc)
	return w, ok, nil
}

func (l *Loader) logf(format string, args ...any) {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("rube: "+format, args...)
}

// CreateWorld builds a new world with the document's gravity and loads the
// document into it. The world is returned even when the flag is false.
func (l *Loader) CreateWorld(doc *Document) (*World, bool) {
	w := NewWorld(doc.Gravity.Vector())
	ok := l.LoadWorld(doc, w)
	return w, ok
}

// LoadWorld adds every body, then every joint, of doc to w. It reports false
// if some body descriptor had no type. Joint failures are logged but do not
// affect the result.
func (l *Loader) LoadWorld(doc *Document, w *World) bool {
	ok := true
	loaded := make([]*Body, 0, len(doc.Bodies))
	for i := range doc.Bodies {
		b := l.LoadBody(w, &doc.Bodies[i])
		if b == nil {
			l.logf("body %d: no type, skipped", i)
			ok = false
			continue
		}
		loaded = append(loaded, b)
	}
	for i := range doc.Joints {
		l.LoadJoint(w, &doc.Joints[i], loaded)
	}
	return ok
}

// LoadBody creates the body described by def, with its fixtures, and adds it
// to w. It returns nil when def has no type.
func (l *Loader) LoadBody(w *World, def *BodyDef) *Body {
	if !def.HasType() {
		return nil
	}
	b := &Body{
		Name:           def.Name,
		ID:             def.ID,
		Kind:           def.Kind(),
		Properties:     def.CustomProperties,
		GravityScale:   def.GravityScale.Or(1),
		LinearDamping:  def.LinearDamping.Or(0),
		AngularDamping: def.AngularDamping.Or(0),
		Bullet:         bool(def.Bullet),
		Awake:          bool(def.Awake),
		FixedRotation:  bool(def.FixedRotation),
	}

	var body *cp.Body
	switch b.Kind {
	case BodyDynamic:
		body = cp.NewBody(0, 0)
	case BodyKinematic:
		body = cp.NewKinematicBody()
	default:
		body = cp.NewStaticBody()
	}
	body.UserData = b
	body.SetPosition(def.Position.Vector())
	body.SetAngle(def.Angle.Or(0))
	if b.Kind != BodyStatic {
		body.SetVelocityVector(def.LinearVelocity.Vector())
		body.SetAngularVelocity(def.AngularVelocity.Or(0))
	}
	b.Phys = w.Space.AddBody(body)

	for i := range def.Fixtures {
		b.Fixtures = append(b.Fixtures, l.LoadFixture(w, b, &def.Fixtures[i])...)
	}

	if b.Kind == BodyDynamic {
		applyMass(b, def)
		if b.GravityScale != 1 || b.LinearDamping != 0 || b.AngularDamping != 0 {
			body.SetVelocityUpdateFunc(b.updateVelocity)
		}
	}

	w.bodies = append(w.bodies, b)
	return b
}

// applyMass finishes a dynamic body's mass once its fixtures are attached.
// A positive massData-mass replaces what the fixture densities produced;
// massData-I is about the body origin, so the moment about massData-center
// is I - m*|c|^2. The engine does not let the center of gravity be set, so
// the body keeps the centroid of its fixtures. A body that ends up without
// mass gets mass 1 and no rotation.
func applyMass(b *Body, def *BodyDef) {
	body := b.Phys
	if m := def.MassDataMass.Or(0); m > 0 {
		center := def.MassDataCenter.Vector()
		body.SetMass(m)
		if i := def.MassDataI.Or(0) - m*center.LengthSq(); i > 0 {
			body.SetMoment(i)
		}
	}
	if !(body.Mass() > 0) {
		body.SetMass(1)
		body.SetMoment(cp.INFINITY)
	}
	if b.FixedRotation || !(body.Moment() > 0) {
		body.SetMoment(cp.INFINITY)
	}
}

// updateVelocity integrates with the body's gravity scale and applies its
// damping the way RUBE scenes expect: v *= 1 / (1 + dt*damping).
func (b *Body) updateVelocity(body *cp.Body, gravity cp.Vector, damping, dt float64) {
	cp.BodyUpdateVelocity(body, gravity.Mult(b.GravityScale), damping, dt)
	if b.LinearDamping != 0 {
		body.SetVelocityVector(body.Velocity().Mult(1 / (1 + dt*b.LinearDamping)))
	}
	if b.AngularDamping != 0 {
		body.SetAngularVelocity(body.AngularVelocity() / (1 + dt*b.AngularDamping))
	}
}

// resolveBody finds the body a joint reference points at: a body whose id
// equals the reference wins, otherwise the reference is a position in
// loaded.
func resolveBody(ref Ref, loaded []*Body) (*Body, error) {
	if !ref.Valid() {
		return nil, fmt.Errorf("missing body reference")
	}
	for _, b := range loaded {
		if ref.Matches(b.ID) {
			return b, nil
		}
	}
	i, ok := ref.Index()
	if !ok || i < 0 || i >= len(loaded) {
		return nil, fmt.Errorf("body reference %s does not resolve (%d bodies loaded)", ref, len(loaded))
	}
	return loaded[i], nil
}
