package blockmesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/blockmesh/polymesh"
)

// CouplingStrategy relates the faces of a non-conforming patch pair without changing topology.
// Face fields of the returned pairs index the master and slave slices.
type CouplingStrategy interface {
	Name() string
	Couple(master, slave [][]r3.Vec) []polymesh.CouplingPair
}

// AreaOverlapStrategy couples each slave face with every master face its projection overlaps,
// weighted by the overlap fraction of the slave face area
type AreaOverlapStrategy struct {
	MinWeight float64 // pairs below this weight are dropped, 1e-9 when zero
}

func (AreaOverlapStrategy) Name() string { return "areaOverlap" }

func (s AreaOverlapStrategy) Couple(master, slave [][]r3.Vec) (pairs []polymesh.CouplingPair) {
	minWeight := s.MinWeight
	if minWeight <= 0 {
		minWeight = 1e-9
	}
	mc, mr := make([]r3.Vec, len(master)), make([]float64, len(master))
	for i, f := range master {
		mc[i], mr[i] = boundingSphere(f)
	}
	for si, sf := range slave {
		area, _ := polymesh.FaceAreaCentre(sf, faceLoop(len(sf)))
		if r3.Norm(area) == 0 {
			continue
		}
		normal := r3.Unit(area)
		e1, e2 := planeBasis(normal)
		sc, sr := boundingSphere(sf)
		subject := ccw(project(sf, e1, e2))
		sArea := polygonArea(subject)
		for mi, f := range master {
			if r3.Norm(r3.Sub(mc[mi], sc)) > mr[mi]+sr {
				continue
			}
			overlap := polygonArea(clipConvex(subject, ccw(project(f, e1, e2))))
			if w := overlap / sArea; w > minWeight {
				pairs = append(pairs, polymesh.CouplingPair{MasterFace: mi, SlaveFace: si, Weight: w})
			}
		}
	}
	return
}

// NearestCentroidStrategy couples each slave face with the master face whose centre is closest
type NearestCentroidStrategy struct{}

func (NearestCentroidStrategy) Name() string { return "nearestCentroid" }

func (NearestCentroidStrategy) Couple(master, slave [][]r3.Vec) (pairs []polymesh.CouplingPair) {
	if len(master) == 0 {
		return
	}
	centres := make([]r3.Vec, len(master))
	for i, f := range master {
		_, centres[i] = polymesh.FaceAreaCentre(f, faceLoop(len(f)))
	}
	for si, sf := range slave {
		_, c := polymesh.FaceAreaCentre(sf, faceLoop(len(sf)))
		best, bestD := 0, math.Inf(1)
		for mi, mcen := range centres {
			if d := r3.Norm2(r3.Sub(mcen, c)); d < bestD {
				best, bestD = mi, d
			}
		}
		pairs = append(pairs, polymesh.CouplingPair{MasterFace: best, SlaveFace: si, Weight: 1})
	}
	return
}

// NewCouplingStrategy looks a strategy up by its configuration name
func NewCouplingStrategy(name string) (CouplingStrategy, bool) {
	switch name {
	case "", "areaOverlap":
		return AreaOverlapStrategy{}, true
	case "nearestCentroid":
		return NearestCentroidStrategy{}, true
	}
	return nil, false
}

func faceLoop(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func boundingSphere(pts []r3.Vec) (centre r3.Vec, radius float64) {
	for _, p := range pts {
		centre = r3.Add(centre, p)
	}
	centre = r3.Scale(1/float64(len(pts)), centre)
	for _, p := range pts {
		radius = math.Max(radius, r3.Norm(r3.Sub(p, centre)))
	}
	return
}

func planeBasis(n r3.Vec) (e1, e2 r3.Vec) {
	ref := r3.Vec{X: 1}
	if math.Abs(n.X) > 0.9 {
		ref = r3.Vec{Y: 1}
	}
	e1 = r3.Unit(r3.Cross(n, ref))
	e2 = r3.Cross(n, e1)
	return
}

type pt2 struct{ x, y float64 }

func project(pts []r3.Vec, e1, e2 r3.Vec) []pt2 {
	out := make([]pt2, len(pts))
	for i, p := range pts {
		out[i] = pt2{r3.Dot(p, e1), r3.Dot(p, e2)}
	}
	return out
}

func signedArea(poly []pt2) (a float64) {
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		a += p.x*q.y - q.x*p.y
	}
	return a / 2
}

func polygonArea(poly []pt2) float64 {
	if len(poly) < 3 {
		return 0
	}
	return math.Abs(signedArea(poly))
}

func ccw(poly []pt2) []pt2 {
	if signedArea(poly) < 0 {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}
	return poly
}

// clipConvex is Sutherland-Hodgman clipping of subject by the convex counter-clockwise polygon clip
func clipConvex(subject, clip []pt2) []pt2 {
	out := subject
	for i := range clip {
		if len(out) == 0 {
			break
		}
		a, b := clip[i], clip[(i+1)%len(clip)]
		side := func(p pt2) float64 { return (b.x-a.x)*(p.y-a.y) - (b.y-a.y)*(p.x-a.x) }
		in := out
		out = nil
		for j := range in {
			cur, prev := in[j], in[(j+len(in)-1)%len(in)]
			sc, sp := side(cur), side(prev)
			if sc >= 0 {
				if sp < 0 {
					out = append(out, intersect(prev, cur, sp, sc))
				}
				out = append(out, cur)
			} else if sp >= 0 {
				out = append(out, intersect(prev, cur, sp, sc))
			}
		}
	}
	return out
}

func intersect(p, q pt2, sp, sq float64) pt2 {
	t := sp / (sp - sq)
	return pt2{p.x + t*(q.x-p.x), p.y + t*(q.y-p.y)}
}
