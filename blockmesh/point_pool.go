package blockmesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/blockmesh/types"
)

// pooledEdge holds the points of a block edge, listed from its canonical start vertex
type pooledEdge struct {
	from   int
	points []int
}

// pooledFace holds the points of a block face on its canonical (a, b) grid, a fastest
type pooledFace struct {
	origin, aVertex int
	na, nb          int
	points          []int
}

// pointPool is the global point identity store. A vertex, edge or face is evaluated once, by the first
// block that reaches it, and every later block reuses the same point indices.
type pointPool struct {
	topo   *Topology
	points []r3.Vec
	vertex map[int]int
	edges  map[types.EdgeKey]*pooledEdge
	faces  map[types.FaceKey]*pooledFace
}

func newPointPool(topo *Topology, capacity int) *pointPool {
	return &pointPool{
		topo:   topo,
		points: make([]r3.Vec, 0, capacity),
		vertex: make(map[int]int),
		edges:  make(map[types.EdgeKey]*pooledEdge),
		faces:  make(map[types.FaceKey]*pooledFace),
	}
}

func (pp *pointPool) add(p r3.Vec) int {
	pp.points = append(pp.points, p)
	return len(pp.points) - 1
}

func (pp *pointPool) vertexPoint(v int) int {
	if pi, ok := pp.vertex[v]; ok {
		return pi
	}
	pi := pp.add(pp.topo.vertices[v])
	pp.vertex[v] = pi
	return pi
}

// less orders vertices by coordinate, then by index. Canonical directions depend on geometry only,
// so coincident but distinct vertices of separate blocks produce the same evaluations.
func (pp *pointPool) less(v0, v1 int) bool {
	a, b := pp.topo.vertices[v0], pp.topo.vertices[v1]
	switch {
	case a.X != b.X:
		return a.X < b.X
	case a.Y != b.Y:
		return a.Y < b.Y
	case a.Z != b.Z:
		return a.Z < b.Z
	}
	return v0 < v1
}

// edge makes sure the block edge from v0 to v1 exists with n divisions
func (pp *pointPool) edge(b *Block, v0, v1, n int, ratio float64) error {
	key := types.NewEdgeKey([2]int{v0, v1})
	if pe, ok := pp.edges[key]; ok {
		if len(pe.points)-1 != n {
			return &MalformedTopologyError{Entity: b.Name(),
				Reason: fmt.Sprintf("edge (%d %d) has %d divisions but a previous block gave it %d",
					v0, v1, n, len(pe.points)-1)}
		}
		return nil
	}
	from, to := v0, v1
	if !pp.less(v0, v1) {
		from, to, ratio = v1, v0, 1/ratio
	}
	var (
		lambda = gradingLambdas(n, ratio)
		curve  = pp.topo.curve(from, to)
		pe     = &pooledEdge{from: from, points: make([]int, n+1)}
	)
	pe.points[0] = pp.vertexPoint(from)
	for i := 1; i < n; i++ {
		pe.points[i] = pp.add(curve.Position(lambda[i]))
	}
	pe.points[n] = pp.vertexPoint(to)
	pp.edges[key] = pe
	return nil
}

// edgePoints returns the pooled points of an existing edge, ordered from v0 to v1
func (pp *pointPool) edgePoints(v0, v1 int) []int {
	pe := pp.edges[types.NewEdgeKey([2]int{v0, v1})]
	if pe.from == v0 {
		return pe.points
	}
	n := len(pe.points)
	rev := make([]int, n)
	for i, p := range pe.points {
		rev[n-1-i] = p
	}
	return rev
}

func (pp *pointPool) coords(idx []int) []r3.Vec {
	x := make([]r3.Vec, len(idx))
	for i, p := range idx {
		x[i] = pp.points[p]
	}
	return x
}

// face returns the pooled face with corner vertices o (origin), a, c (opposite) and b, evaluating it on
// first use. The four boundary edges must already be pooled.
func (pp *pointPool) face(key types.FaceKey, o, a, c, bv, na, nb int) (pf *pooledFace, created bool) {
	if pf, ok := pp.faces[key]; ok {
		return pf, false
	}
	var (
		bottom = pp.edgePoints(o, a)
		top    = pp.edgePoints(bv, c)
		left   = pp.edgePoints(o, bv)
		right  = pp.edgePoints(a, c)
		stride = na + 1
	)
	pf = &pooledFace{origin: o, aVertex: a, na: na, nb: nb, points: make([]int, (na+1)*(nb+1))}
	for i := 0; i <= na; i++ {
		pf.points[i] = bottom[i]
		pf.points[i+nb*stride] = top[i]
	}
	for j := 0; j <= nb; j++ {
		pf.points[j*stride] = left[j]
		pf.points[na+j*stride] = right[j]
	}
	var (
		xB, xT = pp.coords(bottom), pp.coords(top)
		xL, xR = pp.coords(left), pp.coords(right)
		lB, lT = chordLambdas(segmentLengths(xB)), chordLambdas(segmentLengths(xT))
		lL, lR = chordLambdas(segmentLengths(xL)), chordLambdas(segmentLengths(xR))
		pO, pA = xB[0], xB[na]
		pB, pC = xT[0], xT[na]
	)
	for j := 1; j < nb; j++ {
		beta := 0.5 * (lL[j] + lR[j])
		for i := 1; i < na; i++ {
			alpha := 0.5 * (lB[i] + lT[i])
			s := (1-beta)*lB[i] + beta*lT[i]
			t := (1-alpha)*lL[j] + alpha*lR[j]
			p := r3.Add(
				r3.Add(r3.Scale(1-t, xB[i]), r3.Scale(t, xT[i])),
				r3.Add(r3.Scale(1-s, xL[j]), r3.Scale(s, xR[j])))
			corners := r3.Add(
				r3.Add(r3.Scale((1-s)*(1-t), pO), r3.Scale(s*(1-t), pA)),
				r3.Add(r3.Scale((1-s)*t, pB), r3.Scale(s*t, pC)))
			pf.points[i+j*stride] = pp.add(r3.Sub(p, corners))
		}
	}
	pp.faces[key] = pf
	return pf, true
}

func segmentLengths(x []r3.Vec) []float64 {
	l := make([]float64, len(x)-1)
	for i := range l {
		l[i] = r3.Norm(r3.Sub(x[i+1], x[i]))
	}
	return l
}
