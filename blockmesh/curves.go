package blockmesh

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Curve is the geometry of a block edge, parametrised from its start vertex (0) to its end vertex (1)
type Curve interface {
	Position(lambda float64) r3.Vec
}

// directedCurve remembers which vertex a declared curve starts from
type directedCurve struct {
	Curve
	startVertex int
}

type reversedCurve struct {
	Curve
}

func (c reversedCurve) Position(lambda float64) r3.Vec { return c.Curve.Position(1 - lambda) }

type lineCurve struct {
	start, end r3.Vec
}

func (c lineCurve) Position(lambda float64) r3.Vec {
	return r3.Add(c.start, r3.Scale(lambda, r3.Sub(c.end, c.start)))
}

// arcCurve is the circular arc through start, one interior point and end
type arcCurve struct {
	centre, r0, r90 r3.Vec // r90 is r0 rotated a quarter turn about the arc axis
	angle           float64
}

func newArcCurve(p0, pm, p1 r3.Vec) (c arcCurve, err error) {
	var (
		ab = r3.Sub(pm, p0)
		ac = r3.Sub(p1, p0)
		n  = r3.Cross(ab, ac)
		n2 = r3.Dot(n, n)
	)
	if n2 <= 1e-24*r3.Dot(ab, ab)*r3.Dot(ac, ac) {
		err = fmt.Errorf("arc points are colinear")
		return
	}
	offset := r3.Add(
		r3.Scale(r3.Dot(ac, ac), r3.Cross(n, ab)),
		r3.Scale(r3.Dot(ab, ab), r3.Cross(ac, n)))
	c.centre = r3.Add(p0, r3.Scale(1/(2*n2), offset))
	axis := r3.Unit(n)
	c.r0 = r3.Sub(p0, c.centre)
	c.r90 = r3.Cross(axis, c.r0)
	rEnd := r3.Sub(p1, c.centre)
	c.angle = math.Atan2(r3.Dot(axis, r3.Cross(c.r0, rEnd)), r3.Dot(c.r0, rEnd))
	if c.angle <= 0 {
		c.angle += 2 * math.Pi
	}
	return
}

func (c arcCurve) Position(lambda float64) r3.Vec {
	s, co := math.Sincos(lambda * c.angle)
	return r3.Add(c.centre, r3.Add(r3.Scale(co, c.r0), r3.Scale(s, c.r90)))
}

// polyLineCurve runs through its knots, parametrised by arc length
type polyLineCurve struct {
	knots  []r3.Vec
	lambda []float64
}

func newPolyLineCurve(knots []r3.Vec) polyLineCurve {
	lengths := make([]float64, len(knots)-1)
	for i := range lengths {
		lengths[i] = r3.Norm(r3.Sub(knots[i+1], knots[i]))
	}
	return polyLineCurve{knots: knots, lambda: chordLambdas(lengths)}
}

func (c polyLineCurve) Position(lambda float64) r3.Vec {
	var (
		last = len(c.knots) - 1
	)
	if lambda <= 0 {
		return c.knots[0]
	}
	if lambda >= 1 {
		return c.knots[last]
	}
	seg := 0
	for seg < last-1 && c.lambda[seg+1] < lambda {
		seg++
	}
	span := c.lambda[seg+1] - c.lambda[seg]
	if span <= 0 {
		return c.knots[seg]
	}
	t := (lambda - c.lambda[seg]) / span
	return r3.Add(c.knots[seg], r3.Scale(t, r3.Sub(c.knots[seg+1], c.knots[seg])))
}

// newCurve builds a declared curved edge running from vertex start to vertex end
func newCurve(kind string, start int, p0, p1 r3.Vec, interior []r3.Vec) (Curve, error) {
	var (
		c   Curve
		err error
	)
	switch strings.ToLower(kind) {
	case "arc":
		if len(interior) != 1 {
			return nil, fmt.Errorf("arc needs exactly one interior point, have %d", len(interior))
		}
		c, err = newArcCurve(p0, interior[0], p1)
		if err != nil {
			return nil, err
		}
	case "polyline":
		knots := make([]r3.Vec, 0, len(interior)+2)
		knots = append(knots, p0)
		knots = append(knots, interior...)
		knots = append(knots, p1)
		c = newPolyLineCurve(knots)
	case "line", "":
		if len(interior) != 0 {
			return nil, fmt.Errorf("line takes no interior points")
		}
		c = lineCurve{start: p0, end: p1}
	default:
		return nil, fmt.Errorf("unknown edge type %q", kind)
	}
	return directedCurve{Curve: c, startVertex: start}, nil
}

// oriented returns c traversed from vertex from
func oriented(c Curve, from int) Curve {
	if dc, ok := c.(directedCurve); ok && dc.startVertex != from {
		return reversedCurve{Curve: dc.Curve}
	}
	return c
}
