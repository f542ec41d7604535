package blockmesh

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/blockmesh/polymesh"
	"github.com/notargets/blockmesh/types"
)

// MergePatchPairs stitches each declared master/slave pair in declaration order.
// Coincident faces are replaced by internal faces and the slave points are folded onto the master points.
// A tolerant pair that does not match face for face is recorded as a coupling and left topologically alone.
func MergePatchPairs(ctx *Context, topo *Topology, pa *PatchAssembly) error {
	for _, mp := range topo.mergePairs {
		master, slave := topo.PairName(mp)
		mFaces, sFaces := pa.PatchFaces(mp.Master), pa.PatchFaces(mp.Slave)
		pointMatch := pa.matchPoints(mFaces, sFaces, ctx.MergeTolerance)
		matches, ok, slaveFace, reason := pa.matchFaces(mFaces, sFaces, pointMatch)
		if ok {
			for si, mi := range matches {
				pa.mergeFaces(mFaces[mi], sFaces[si])
			}
			for s, m := range pointMatch {
				pa.pointMap[pa.resolve(s)] = pa.resolve(m)
			}
			ctx.logf("Merged patch pair (%s %s), %d faces", master, slave, len(matches))
			continue
		}
		if !mp.Tolerant {
			return &MergeError{Master: master, Slave: slave, SlaveFace: slaveFace, Reason: reason}
		}
		strategy := ctx.Strategy
		if strategy == nil {
			strategy = AreaOverlapStrategy{}
		}
		pairs := strategy.Couple(pa.faceCoords(mFaces), pa.faceCoords(sFaces))
		for i := range pairs {
			pairs[i].MasterFace = mFaces[pairs[i].MasterFace]
			pairs[i].SlaveFace = sFaces[pairs[i].SlaveFace]
		}
		pa.couplings = append(pa.couplings, couplingRecord{master: master, slave: slave, pairs: pairs})
		ctx.logf("Patch pair (%s %s) does not conform, coupled %d face pairs with %s",
			master, slave, len(pairs), strategy.Name())
	}
	return nil
}

// matchPoints maps slave patch points onto master patch points, exactly by coordinates first
// and then to the nearest master point within tol times the smallest patch edge length
func (pa *PatchAssembly) matchPoints(mFaces, sFaces []int, tol float64) (match map[int]int) {
	var (
		exact    = make(map[types.PointKey]int)
		mPoints  []int
		seen     = make(map[int]bool)
		minEdge  = math.Inf(1)
		toMaster = func(p int) int { return pa.resolve(p) }
	)
	for _, fi := range append(append([]int(nil), mFaces...), sFaces...) {
		pts := pa.faces[fi].points
		for i := range pts {
			d := r3.Norm(r3.Sub(pa.Points[toMaster(pts[i])], pa.Points[toMaster(pts[(i+1)%len(pts)])]))
			minEdge = math.Min(minEdge, d)
		}
	}
	for _, fi := range mFaces {
		for _, p := range pa.faces[fi].points {
			p = toMaster(p)
			if seen[p] {
				continue
			}
			seen[p] = true
			mPoints = append(mPoints, p)
			x := pa.Points[p]
			exact[types.NewPointKey(x.X, x.Y, x.Z)] = p
		}
	}
	match = make(map[int]int)
	radius := tol * minEdge
	for _, fi := range sFaces {
		for _, p := range pa.faces[fi].points {
			p = toMaster(p)
			if _, done := match[p]; done {
				continue
			}
			x := pa.Points[p]
			if m, ok := exact[types.NewPointKey(x.X, x.Y, x.Z)]; ok {
				match[p] = m
				continue
			}
			best, bestD := -1, radius
			for _, m := range mPoints {
				if d := r3.Norm(r3.Sub(pa.Points[m], x)); d <= bestD {
					best, bestD = m, d
				}
			}
			if best >= 0 {
				match[p] = best
			}
		}
	}
	return
}

// matchFaces pairs slave faces with master faces sharing all of their points. The incidence product
// S*M^T counts shared points for every slave/master face pair. slaveFace is -1 when the failure
// is not tied to a single slave face.
func (pa *PatchAssembly) matchFaces(mFaces, sFaces []int, pointMatch map[int]int) (matches []int, ok bool, slaveFace int, reason string) {
	if len(sFaces) == 0 || len(mFaces) == 0 {
		if len(mFaces) != len(sFaces) {
			return nil, false, -1, fmt.Sprintf("master has %d faces and slave has %d", len(mFaces), len(sFaces))
		}
		return nil, true, -1, ""
	}
	nPoints := len(pa.Points)
	spM := sparse.NewDOK(len(mFaces), nPoints)
	for mi, fi := range mFaces {
		for _, p := range pa.faces[fi].points {
			spM.Set(mi, pa.resolve(p), 1)
		}
	}
	spS := sparse.NewDOK(len(sFaces), nPoints)
	for si, fi := range sFaces {
		for _, p := range pa.faces[fi].points {
			if m, ok := pointMatch[pa.resolve(p)]; ok {
				spS.Set(si, m, 1)
			}
		}
	}
	shared := sparse.NewCSR(len(sFaces), len(mFaces), nil, nil, nil)
	shared.Mul(spS.ToCSR(), spM.ToCSR().T())

	matches = make([]int, len(sFaces))
	used := make([]bool, len(mFaces))
	for si, fi := range sFaces {
		matches[si] = -1
		np := float64(polymesh.DistinctPoints(pa.faces[fi].points))
		for mi := range mFaces {
			if !used[mi] && shared.At(si, mi) == np {
				matches[si], used[mi] = mi, true
				break
			}
		}
		if matches[si] < 0 {
			return matches, false, si, "slave face has no coincident master face"
		}
	}
	if len(mFaces) != len(sFaces) {
		return matches, false, -1, fmt.Sprintf("master has %d faces and slave has %d", len(mFaces), len(sFaces))
	}
	return matches, true, -1, ""
}

// mergeFaces retires a coincident boundary pair and appends the internal face joining their cells.
// The master face orientation is kept, so it points from the master cell into the slave cell.
func (pa *PatchAssembly) mergeFaces(mf, sf int) {
	m, s := &pa.faces[mf], &pa.faces[sf]
	m.retired, s.retired = true, true
	pa.faces = append(pa.faces, meshFace{
		points:    append([]int(nil), m.points...),
		owner:     m.owner,
		neighbour: s.owner,
		patch:     -1,
	})
}

func (pa *PatchAssembly) faceCoords(faces []int) [][]r3.Vec {
	out := make([][]r3.Vec, len(faces))
	for i, fi := range faces {
		pts := pa.faces[fi].points
		out[i] = make([]r3.Vec, len(pts))
		for j, p := range pts {
			out[i][j] = pa.Points[pa.resolve(p)]
		}
	}
	return out
}
