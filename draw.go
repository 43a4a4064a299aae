package rubeview

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp/v2"
)

// lineWidth is the stroke width of every outline, in device pixels.
const lineWidth = 1

// debugDrawer renders a space onto an ebiten image through the engine's
// debug-draw callbacks. Shapes arrive in world meters and are mapped with
// the view matrix captured when the drawer was created.
type debugDrawer struct {
	dst   *ebiten.Image
	m     mgl64.Mat3
	k     float64 // device pixels per meter
	flags uint
}

func newDebugDrawer(dst *ebiten.Image, v *View, flags uint) *debugDrawer {
	return &debugDrawer{dst: dst, m: v.Matrix(), k: v.PixelsPerMeter(), flags: flags}
}

func (d *debugDrawer) project(p cp.Vector) (float32, float32) {
	s := d.m.Mul3x1(mgl64.Vec3{p.X, p.Y, 1})
	return float32(s[0]), float32(s[1])
}

// fillStroke fills p with c at FillAlpha and strokes it with c opaque.
func (d *debugDrawer) fillStroke(p *vector.Path, c Color) {
	fill := c.WithAlpha(c.A * FillAlpha)
	dpo := &vector.DrawPathOptions{AntiAlias: true}
	dpo.ColorScale.ScaleWithColor(fill.toRGBA())
	vector.FillPath(d.dst, p, &vector.FillOptions{}, dpo)
	d.stroke(p, c, lineWidth)
}

func (d *debugDrawer) stroke(p *vector.Path, c Color, width float32) {
	dpo := &vector.DrawPathOptions{AntiAlias: true}
	dpo.ColorScale.ScaleWithColor(c.toRGBA())
	vector.StrokePath(d.dst, p, &vector.StrokeOptions{Width: width}, dpo)
}

// line strokes a single segment between two world points.
func (d *debugDrawer) line(a, b cp.Vector, c Color) {
	var p vector.Path
	ax, ay := d.project(a)
	bx, by := d.project(b)
	p.MoveTo(ax, ay)
	p.LineTo(bx, by)
	d.stroke(&p, c, lineWidth)
}

// axes draws one meter of the world x axis in red and the y axis in green.
func (d *debugDrawer) axes() {
	d.line(cp.Vector{}, cp.Vector{X: 1}, ColorAxisX)
	d.line(cp.Vector{}, cp.Vector{Y: 1}, ColorAxisY)
}

// DrawCircle draws a filled circle with a radius line showing its angle.
func (d *debugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	cx, cy := d.project(pos)
	r := float32(radius * d.k)

	var p vector.Path
	p.Arc(cx, cy, r, 0, 2*math.Pi, vector.Clockwise)
	p.Close()
	c := colorFromF(fill)
	d.fillStroke(&p, c)

	rim := pos.Add(cp.ForAngle(angle).Mult(radius))
	d.line(pos, rim, c)
}

// DrawSegment draws a thin line. The engine uses it for constraints.
func (d *debugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, colorFromF(fill))
}

// DrawFatSegment draws a segment shape. Rounded caps are approximated by the
// stroke width.
func (d *debugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	var p vector.Path
	ax, ay := d.project(a)
	bx, by := d.project(b)
	p.MoveTo(ax, ay)
	p.LineTo(bx, by)
	d.stroke(&p, colorFromF(fill), max(lineWidth, float32(2*radius*d.k)))
}

// DrawPolygon draws a closed filled polygon.
func (d *debugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count < 2 {
		return
	}
	var p vector.Path
	for i := 0; i < count; i++ {
		x, y := d.project(verts[i])
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
	p.Close()
	d.fillStroke(&p, colorFromF(fill))
}

// DrawDot draws a point of size device pixels.
func (d *debugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	x, y := d.project(pos)
	var p vector.Path
	p.Arc(x, y, float32(max(size/2, 1)), 0, 2*math.Pi, vector.Clockwise)
	p.Close()
	dpo := &vector.DrawPathOptions{AntiAlias: true}
	dpo.ColorScale.ScaleWithColor(colorFromF(fill).toRGBA())
	vector.FillPath(d.dst, &p, &vector.FillOptions{}, dpo)
}

func (d *debugDrawer) Flags() uint {
	return d.flags
}

func (d *debugDrawer) OutlineColor() cp.FColor {
	return ColorJoint.fcolor()
}

// ShapeColor picks the body color: static, kinematic, then sleeping before
// awake dynamic.
func (d *debugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return bodyColor(shape.Body()).fcolor()
}

func bodyColor(body *cp.Body) Color {
	switch {
	case body == nil || body.GetType() == cp.BODY_STATIC:
		return ColorStatic
	case body.GetType() == cp.BODY_KINEMATIC:
		return ColorKinematic
	case body.IsSleeping():
		return ColorSleeping
	default:
		return ColorDynamic
	}
}

func (d *debugDrawer) ConstraintColor() cp.FColor {
	return ColorJoint.fcolor()
}

func (d *debugDrawer) CollisionPointColor() cp.FColor {
	return ColorCollisionDot.fcolor()
}

func (d *debugDrawer) Data() interface{} {
	return nil
}
