package rube

import (
	"github.com/jakecoffman/cp/v2"
)

// Polygon vertex limits. Polygons outside the range are dropped; they are
// not decomposed.
const (
	MinPolygonVertices = 3
	MaxPolygonVertices = 8
)

// shapeSpec is one resolved shape variant of a fixture.
type shapeSpec struct {
	kind   ShapeKind
	radius float64
	center cp.Vector
	points []cp.Vector
	closed bool
}

// resolveShapes picks the fixture's shape variants. Without an explicit
// shapes array the singular circle wins, then chain, then polygon. The
// second result lists shape types that were not recognized.
func resolveShapes(def *FixtureDef) (specs []shapeSpec, unknown []string) {
	if def.Shapes == nil {
		switch {
		case def.Circle != nil:
			return []shapeSpec{circleSpec(def.Circle.Radius, def.Circle.Center)}, nil
		case def.Chain != nil:
			return []shapeSpec{chainSpec(def.Chain)}, nil
		case def.Polygon != nil:
			return []shapeSpec{{kind: ShapePolygon, points: def.Polygon.Vertices.Points()}}, nil
		}
		return nil, []string{"<none>"}
	}

	for _, sd := range def.Shapes {
		switch sd.Type {
		case "circle":
			specs = append(specs, circleSpec(sd.Radius, sd.Center))
		case "polygon":
			verts := def.Vertices
			if verts.Len() == 0 && def.Polygon != nil {
				verts = def.Polygon.Vertices
			}
			specs = append(specs, shapeSpec{kind: ShapePolygon, points: verts.Points()})
		case "chain":
			chain := def.Chain
			if chain == nil {
				chain = &ChainDef{Vertices: def.Vertices}
			}
			specs = append(specs, chainSpec(chain))
		case "line":
			specs = append(specs, shapeSpec{kind: ShapeLine, points: def.Vertices.Points()})
		default:
			unknown = append(unknown, sd.Type)
		}
	}
	return specs, unknown
}

func circleSpec(radius Number, center Vec) shapeSpec {
	return shapeSpec{kind: ShapeCircle, radius: radius.Or(0), center: center.Vector()}
}

func chainSpec(c *ChainDef) shapeSpec {
	return shapeSpec{kind: ShapeChain, points: c.Vertices.Points(), closed: bool(c.Closed)}
}

// LoadFixture attaches the fixture described by def to b. An explicit
// shapes array may yield several fixtures; a polygon with an unsupported
// vertex count yields none and is not reported.
func (l *Loader) LoadFixture(w *World, b *Body, def *FixtureDef) []*Fixture {
	specs, unknown := resolveShapes(def)
	for _, t := range unknown {
		l.logf("fixture %q on body %q: could not find shape type %s", def.Name, b.Name, t)
	}

	filter := DefaultFilter
	if def.CategoryBits.Valid {
		filter.CategoryBits = uint16(int64(def.CategoryBits.Value))
	}
	if def.MaskBits.Valid {
		filter.MaskBits = uint16(int64(def.MaskBits.Value))
	}
	if def.GroupIndex.Valid {
		filter.GroupIndex = int16(int64(def.GroupIndex.Value))
	}

	var out []*Fixture
	for _, spec := range specs {
		shapes := l.buildShapes(b, def, spec)
		if len(shapes) == 0 {
			continue
		}
		f := &Fixture{
			Name:        def.Name,
			Properties:  def.CustomProperties,
			Kind:        spec.kind,
			Density:     def.Density.Or(0),
			Friction:    def.Friction.Or(0),
			Restitution: def.Restitution.Or(0),
			Sensor:      bool(def.Sensor),
			Filter:      filter,
			Body:        b,
		}
		for _, shape := range shapes {
			shape.UserData = f
			w.Space.AddShape(shape)
			shape.SetFriction(f.Friction)
			shape.SetElasticity(f.Restitution)
			shape.SetSensor(f.Sensor)
			shape.SetFilter(f.Filter.ShapeFilter())
			if b.Kind == BodyDynamic && f.Density > 0 {
				shape.SetDensity(f.Density)
			}
		}
		f.Shapes = shapes
		out = append(out, f)
	}
	return out
}

func (l *Loader) buildShapes(b *Body, def *FixtureDef, spec shapeSpec) []*cp.Shape {
	body := b.Phys
	switch spec.kind {
	case ShapeCircle:
		return []*cp.Shape{cp.NewCircle(body, spec.radius, spec.center)}

	case ShapePolygon:
		n := len(spec.points)
		if n < MinPolygonVertices || n > MaxPolygonVertices {
			return nil
		}
		return []*cp.Shape{cp.NewPolyShape(body, n, spec.points, cp.NewTransformIdentity(), 0)}

	case ShapeLine:
		if len(spec.points) < 2 {
			l.logf("fixture %q on body %q: line needs 2 vertices, has %d", def.Name, b.Name, len(spec.points))
			return nil
		}
		return []*cp.Shape{cp.NewSegment(body, spec.points[0], spec.points[1], 0)}

	case ShapeChain:
		if len(spec.points) < 2 {
			l.logf("fixture %q on body %q: chain needs 2 vertices, has %d", def.Name, b.Name, len(spec.points))
			return nil
		}
		return chainSegments(body, spec)
	}
	return nil
}

// chainSegments builds one segment per chain edge, plus the closing edge of
// a loop. Ghost vertices are not applied; the engine keeps segment
// neighbors private.
func chainSegments(body *cp.Body, spec shapeSpec) []*cp.Shape {
	pts := spec.points
	n := len(pts)
	count := n - 1
	if spec.closed && n >= 3 {
		count = n
	}

	shapes := make([]*cp.Shape, 0, count)
	for i := 0; i < count; i++ {
		shapes = append(shapes, cp.NewSegment(body, pts[i], pts[(i+1)%n], 0))
	}
	return shapes
}
