package rubeview

import (
	"math"

	"github.com/jakecoffman/cp/v2"
)

const (
	// pickExtent is the half size, in meters, of the box queried around the
	// cursor when grabbing.
	pickExtent = 0.001
	// dragForcePerKg scales the drag joint's max force by the grabbed
	// body's mass.
	dragForcePerKg = 1000.0
	// dragFollow is how far the mouse body moves toward the cursor each tick.
	dragFollow = 0.25
)

// dragErrorBias corrects 15% of the joint error per 1/60 s tick.
var dragErrorBias = math.Pow(1-0.15, 60)

// Dragger pulls dynamic bodies toward the cursor with a pivot joint to a
// kinematic mouse body. The mouse body is never added to a space.
type Dragger struct {
	// Mouse is the cursor position in world meters.
	Mouse cp.Vector

	mouseBody *cp.Body
	space     *cp.Space
	joint     *cp.Constraint
	target    *cp.Body
	anchor    cp.Vector // grab point, local to target
}

// NewDragger creates an idle dragger.
func NewDragger() *Dragger {
	return &Dragger{mouseBody: cp.NewKinematicBody()}
}

// Grab attaches the first dynamic body whose shape contains p. It returns
// the grabbed body, or nil when nothing grabbable is under p. Any previous
// grab is released first.
func (d *Dragger) Grab(space *cp.Space, p cp.Vector) *cp.Body {
	d.Release()
	d.Mouse = p
	d.mouseBody.SetPosition(p)
	d.mouseBody.SetVelocityVector(cp.Vector{})

	body := pickDynamic(space, p)
	if body == nil {
		return nil
	}

	d.anchor = body.WorldToLocal(p)
	joint := cp.NewPivotJoint2(d.mouseBody, body, cp.Vector{}, d.anchor)
	joint.SetMaxForce(dragForcePerKg * body.Mass())
	joint.SetErrorBias(dragErrorBias)
	joint.SetCollideBodies(true)
	space.AddConstraint(joint)
	body.Activate()

	d.space = space
	d.joint = joint
	d.target = body
	return body
}

// pickDynamic returns the body of the first shape near p that contains p
// and belongs to a dynamic body.
func pickDynamic(space *cp.Space, p cp.Vector) *cp.Body {
	var hit *cp.Body
	bb := cp.NewBBForExtents(p, pickExtent, pickExtent)
	space.BBQuery(bb, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, data interface{}) {
		if hit != nil {
			return
		}
		body := shape.Body()
		if body == nil || body.GetType() != cp.BODY_DYNAMIC {
			return
		}
		if shape.PointQuery(p).Distance > 0 {
			return
		}
		hit = body
	}, nil)
	return hit
}

// Release removes the drag joint, if any.
func (d *Dragger) Release() {
	if d.joint == nil {
		return
	}
	if d.space != nil && d.space.ContainsConstraint(d.joint) {
		d.space.RemoveConstraint(d.joint)
	}
	d.joint = nil
	d.target = nil
	d.space = nil
}

// Active reports whether a body is currently held.
func (d *Dragger) Active() bool {
	return d.joint != nil
}

// Target returns the held body, or nil.
func (d *Dragger) Target() *cp.Body {
	return d.target
}

// Line returns the mouse body position and the grab point on the held body,
// both in world meters. ok is false when nothing is held.
func (d *Dragger) Line() (mouse, grab cp.Vector, ok bool) {
	if d.joint == nil {
		return cp.Vector{}, cp.Vector{}, false
	}
	return d.mouseBody.Position(), d.target.LocalToWorld(d.anchor), true
}

// update moves the mouse body a step toward Mouse and gives it the matching
// velocity so the joint sees a smooth target.
func (d *Dragger) update(dt float64) {
	pos := d.mouseBody.Position()
	next := pos.Lerp(d.Mouse, dragFollow)
	if dt > 0 {
		d.mouseBody.SetVelocityVector(next.Sub(pos).Mult(1 / dt))
	}
	d.mouseBody.SetPosition(next)
}
