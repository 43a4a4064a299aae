package rube

import (
	"math"

	"github.com/jakecoffman/cp/v2"
)

// Joint type names as written in RUBE documents.
const (
	JointRevolute  = "revolute"
	JointDistance  = "distance"
	JointRope      = "rope"
	JointMotor     = "motor"
	JointPrismatic = "prismatic"
	JointWheel     = "wheel"
	JointFriction  = "friction"
	JointWeld      = "weld"
)

// grooveReach is the half length of the groove used for prismatic and
// wheel joints without translation limits.
const grooveReach = 1000.0

// springOffset is how far behind the wheel anchor the suspension spring is
// attached, measured along the wheel axis.
const springOffset = 10.0

// JointParams is the type-specific part of a joint. The concrete type is
// one of the *Params structs in this file.
type JointParams interface {
	JointType() string
}

// RevoluteParams pins two bodies together at a point.
type RevoluteParams struct {
	AnchorA, AnchorB cp.Vector
	RefAngle         float64
	EnableLimit      bool
	LowerLimit       float64
	UpperLimit       float64
	EnableMotor      bool
	MotorSpeed       float64
	MaxMotorTorque   float64
}

// DistanceParams keeps two anchors at a fixed distance, or springs them
// toward it when Frequency is positive.
type DistanceParams struct {
	AnchorA, AnchorB cp.Vector
	Length           float64
	Frequency        float64
	DampingRatio     float64
}

// RopeParams limits the distance between two anchors.
type RopeParams struct {
	AnchorA, AnchorB cp.Vector
	MaxLength        float64
}

// MotorParams drives body B toward an offset from body A. RUBE stores the
// linear offset in anchorA and the angular offset in refAngle.
type MotorParams struct {
	LinearOffset     cp.Vector
	AngularOffset    float64
	MaxForce         float64
	MaxTorque        float64
	CorrectionFactor float64
}

// PrismaticParams lets body B slide along an axis fixed in body A.
type PrismaticParams struct {
	AnchorA, AnchorB cp.Vector
	LocalAxisA       cp.Vector
	RefAngle         float64
	EnableLimit      bool
	LowerLimit       float64
	UpperLimit       float64
	EnableMotor      bool
	MotorSpeed       float64
	MaxMotorForce    float64
}

// WheelParams is a suspension: body B slides along an axis in body A on a
// spring and rotates freely, optionally driven by a motor.
type WheelParams struct {
	AnchorA, AnchorB   cp.Vector
	LocalAxisA         cp.Vector
	EnableMotor        bool
	MotorSpeed         float64
	MaxMotorTorque     float64
	SpringFrequency    float64
	SpringDampingRatio float64
}

// FrictionParams resists relative motion up to a force and torque.
type FrictionParams struct {
	AnchorA, AnchorB cp.Vector
	MaxForce         float64
	MaxTorque        float64
}

// WeldParams glues two bodies, rigidly or with an angular spring when
// Frequency is positive.
type WeldParams struct {
	AnchorA, AnchorB cp.Vector
	RefAngle         float64
	Frequency        float64
	DampingRatio     float64
}

func (RevoluteParams) JointType() string  { return JointRevolute }
func (DistanceParams) JointType() string  { return JointDistance }
func (RopeParams) JointType() string      { return JointRope }
func (MotorParams) JointType() string     { return JointMotor }
func (PrismaticParams) JointType() string { return JointPrismatic }
func (WheelParams) JointType() string     { return JointWheel }
func (FrictionParams) JointType() string  { return JointFriction }
func (WeldParams) JointType() string      { return JointWeld }

// Params returns the parameters for the descriptor's type, or nil when the
// type is not one of the supported joints. Omitted numbers are 0 and
// omitted flags false.
func (d *JointDef) Params() JointParams {
	anchorA, anchorB := d.AnchorA.Vector(), d.AnchorB.Vector()
	switch d.Type {
	case JointRevolute:
		return RevoluteParams{
			AnchorA: anchorA, AnchorB: anchorB,
			RefAngle:       d.RefAngle.Or(0),
			EnableLimit:    bool(d.EnableLimit),
			LowerLimit:     d.LowerLimit.Or(0),
			UpperLimit:     d.UpperLimit.Or(0),
			EnableMotor:    bool(d.EnableMotor),
			MotorSpeed:     d.MotorSpeed.Or(0),
			MaxMotorTorque: d.MaxMotorTorque.Or(0),
		}
	case JointDistance:
		return DistanceParams{
			AnchorA: anchorA, AnchorB: anchorB,
			Length:       d.Length.Or(0),
			Frequency:    d.Frequency.Or(0),
			DampingRatio: d.DampingRatio.Or(0),
		}
	case JointRope:
		return RopeParams{AnchorA: anchorA, AnchorB: anchorB, MaxLength: d.MaxLength.Or(0)}
	case JointMotor:
		return MotorParams{
			LinearOffset:     anchorA,
			AngularOffset:    d.RefAngle.Or(0),
			MaxForce:         d.MaxForce.Or(0),
			MaxTorque:        d.MaxTorque.Or(0),
			CorrectionFactor: d.CorrectionFactor.Or(0),
		}
	case JointPrismatic:
		return PrismaticParams{
			AnchorA: anchorA, AnchorB: anchorB,
			LocalAxisA:    d.LocalAxisA.Vector(),
			RefAngle:      d.RefAngle.Or(0),
			EnableLimit:   bool(d.EnableLimit),
			LowerLimit:    d.LowerLimit.Or(0),
			UpperLimit:    d.UpperLimit.Or(0),
			EnableMotor:   bool(d.EnableMotor),
			MotorSpeed:    d.MotorSpeed.Or(0),
			MaxMotorForce: d.MaxMotorForce.Or(0),
		}
	case JointWheel:
		return WheelParams{
			AnchorA: anchorA, AnchorB: anchorB,
			LocalAxisA:         d.LocalAxisA.Vector(),
			EnableMotor:        bool(d.EnableMotor),
			MotorSpeed:         d.MotorSpeed.Or(0),
			MaxMotorTorque:     d.MaxMotorTorque.Or(0),
			SpringFrequency:    d.SpringFrequency.Or(0),
			SpringDampingRatio: d.SpringDampingRatio.Or(0),
		}
	case JointFriction:
		return FrictionParams{
			AnchorA: anchorA, AnchorB: anchorB,
			MaxForce:  d.MaxForce.Or(0),
			MaxTorque: d.MaxTorque.Or(0),
		}
	case JointWeld:
		return WeldParams{
			AnchorA: anchorA, AnchorB: anchorB,
			RefAngle:     d.RefAngle.Or(0),
			Frequency:    d.Frequency.Or(0),
			DampingRatio: d.DampingRatio.Or(0),
		}
	}
	return nil
}

// LoadJoint creates the joint described by def between two of the loaded
// bodies. It returns nil, after logging why, when the descriptor has no
// type, a body reference does not resolve, the type is unsupported, the
// engine lacks the capability or neither body is dynamic.
func (l *Loader) LoadJoint(w *World, def *JointDef, loaded []*Body) *Joint {
	if def.Type == "" {
		l.logf("joint %q: no type, skipped", def.Name)
		return nil
	}
	a, err := resolveBody(def.BodyA, loaded)
	if err != nil {
		l.logf("%s joint %q: bodyA: %v", def.Type, def.Name, err)
		return nil
	}
	b, err := resolveBody(def.BodyB, loaded)
	if err != nil {
		l.logf("%s joint %q: bodyB: %v", def.Type, def.Name, err)
		return nil
	}
	params := def.Params()
	if params == nil {
		l.logf("unsupported joint type %q: %s", def.Type, def.Raw())
		return nil
	}
	if _, ok := params.(MotorParams); ok && !l.Capabilities.MotorJoint {
		l.logf("motor joint %q: not supported by this engine build, skipped", def.Name)
		return nil
	}
	if a == b {
		l.logf("%s joint %q: both ends on body %q, skipped", def.Type, def.Name, a.Name)
		return nil
	}
	if a.Kind != BodyDynamic && b.Kind != BodyDynamic {
		l.logf("%s joint %q: neither %q nor %q is dynamic, skipped", def.Type, def.Name, a.Name, b.Name)
		return nil
	}

	j := &Joint{
		Name:             def.Name,
		Type:             def.Type,
		Properties:       def.CustomProperties,
		BodyA:            a,
		BodyB:            b,
		CollideConnected: bool(def.CollideConnected),
		Params:           params,
	}
	l.buildConstraints(w.Space, j)
	w.joints = append(w.joints, j)
	return j
}

// add registers c with the space as part of j.
func (j *Joint) add(space *cp.Space, c *cp.Constraint) *cp.Constraint {
	c.SetCollideBodies(j.CollideConnected)
	c.UserData = j
	space.AddConstraint(c)
	j.Constraints = append(j.Constraints, c)
	return c
}

func (l *Loader) buildConstraints(space *cp.Space, j *Joint) {
	a, b := j.BodyA.Phys, j.BodyB.Phys
	switch p := j.Params.(type) {
	case RevoluteParams:
		j.add(space, cp.NewPivotJoint2(a, b, p.AnchorA, p.AnchorB))
		if p.EnableLimit {
			lo, hi := ordered(p.LowerLimit+p.RefAngle, p.UpperLimit+p.RefAngle)
			j.add(space, cp.NewRotaryLimitJoint(a, b, lo, hi))
		}
		if p.EnableMotor {
			motor := j.add(space, cp.NewSimpleMotor(a, b, -p.MotorSpeed))
			motor.SetMaxForce(math.Max(0, p.MaxMotorTorque))
		}

	case DistanceParams:
		if p.Frequency > 0 {
			k, c := springConstants(effectiveMass(a, b), p.Frequency, p.DampingRatio)
			j.add(space, cp.NewDampedSpring(a, b, p.AnchorA, p.AnchorB, p.Length, k, c))
		} else {
			j.add(space, cp.NewSlideJoint(a, b, p.AnchorA, p.AnchorB, p.Length, p.Length))
		}

	case RopeParams:
		j.add(space, cp.NewSlideJoint(a, b, p.AnchorA, p.AnchorB, 0, p.MaxLength))

	case MotorParams:
		bias := math.Pow(1-math.Max(0, math.Min(1, p.CorrectionFactor)), 60)
		pivot := j.add(space, cp.NewPivotJoint2(a, b, p.LinearOffset, cp.Vector{}))
		pivot.SetMaxForce(math.Max(0, p.MaxForce))
		pivot.SetErrorBias(bias)
		gear := j.add(space, cp.NewGearJoint(a, b, p.AngularOffset, 1))
		gear.SetMaxForce(math.Max(0, p.MaxTorque))
		gear.SetErrorBias(bias)

	case PrismaticParams:
		axis := unitAxis(p.LocalAxisA)
		lo, hi := -grooveReach, grooveReach
		if p.EnableLimit {
			lo, hi = ordered(p.LowerLimit, p.UpperLimit)
		}
		if hi-lo < 1e-9 {
			j.add(space, cp.NewPivotJoint2(a, b, p.AnchorA.Add(axis.Mult(lo)), p.AnchorB))
		} else {
			j.add(space, cp.NewGrooveJoint(a, b, p.AnchorA.Add(axis.Mult(lo)), p.AnchorA.Add(axis.Mult(hi)), p.AnchorB))
		}
		j.add(space, cp.NewGearJoint(a, b, p.RefAngle, 1))
		if p.EnableMotor {
			l.logf("prismatic joint %q: linear motor not supported, joint built without it", j.Name)
		}

	case WheelParams:
		axis := unitAxis(p.LocalAxisA)
		j.add(space, cp.NewGrooveJoint(a, b,
			p.AnchorA.Sub(axis.Mult(grooveReach)), p.AnchorA.Add(axis.Mult(grooveReach)), p.AnchorB))
		if p.SpringFrequency > 0 {
			k, c := springConstants(effectiveMass(a, b), p.SpringFrequency, p.SpringDampingRatio)
			j.add(space, cp.NewDampedSpring(a, b, p.AnchorA.Sub(axis.Mult(springOffset)), p.AnchorB, springOffset, k, c))
		}
		if p.EnableMotor {
			motor := j.add(space, cp.NewSimpleMotor(a, b, -p.MotorSpeed))
			motor.SetMaxForce(math.Max(0, p.MaxMotorTorque))
		}

	case FrictionParams:
		pivot := j.add(space, cp.NewPivotJoint2(a, b, p.AnchorA, p.AnchorB))
		pivot.SetMaxBias(0)
		pivot.SetMaxForce(math.Max(0, p.MaxForce))
		gear := j.add(space, cp.NewGearJoint(a, b, 0, 1))
		gear.SetMaxBias(0)
		gear.SetMaxForce(math.Max(0, p.MaxTorque))

	case WeldParams:
		j.add(space, cp.NewPivotJoint2(a, b, p.AnchorA, p.AnchorB))
		if p.Frequency > 0 {
			k, c := springConstants(effectiveMoment(a, b), p.Frequency, p.DampingRatio)
			j.add(space, cp.NewDampedRotarySpring(a, b, p.RefAngle, k, c))
		} else {
			j.add(space, cp.NewGearJoint(a, b, p.RefAngle, 1))
		}
	}
}

// springConstants converts a frequency (Hz) and damping ratio into
// stiffness and damping for a spring acting on the given mass.
func springConstants(mass, frequency, ratio float64) (stiffness, damping float64) {
	omega := 2 * math.Pi * frequency
	return mass * omega * omega, 2 * mass * ratio * omega
}

// effectiveMass is the reduced mass of the dynamic bodies in the pair.
func effectiveMass(a, b *cp.Body) float64 {
	return reduced(dynamicValue(a, a.Mass()), dynamicValue(b, b.Mass()))
}

// effectiveMoment is the reduced moment of inertia of the pair. Bodies that
// cannot rotate do not contribute.
func effectiveMoment(a, b *cp.Body) float64 {
	return reduced(dynamicValue(a, a.Moment()), dynamicValue(b, b.Moment()))
}

func dynamicValue(body *cp.Body, v float64) float64 {
	if body.GetType() != cp.BODY_DYNAMIC || !finite(v) || v <= 0 {
		return 0
	}
	return v
}

func reduced(a, b float64) float64 {
	switch {
	case a > 0 && b > 0:
		return a * b / (a + b)
	case a > 0:
		return a
	default:
		return b
	}
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v) && v < math.MaxFloat64
}

func ordered(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}

// unitAxis normalizes an axis, falling back to +x for a zero axis.
func unitAxis(v cp.Vector) cp.Vector {
	if v.LengthSq() == 0 {
		return cp.Vector{X: 1}
	}
	return v.Normalize()
}
