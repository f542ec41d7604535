package polymesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// HexFaces lists the six faces of a hexahedron as local corner loops with outward normals.
// Corners 0-3 are the bottom (z-min) loop and 4-7 the top loop, 0->1 runs along x and 0->3 along y.
var HexFaces = [6][4]int{
	{0, 4, 7, 3}, // Face 0 (x-min)
	{1, 2, 6, 5}, // Face 1 (x-max)
	{0, 1, 5, 4}, // Face 2 (y-min)
	{3, 7, 6, 2}, // Face 3 (y-max)
	{0, 3, 2, 1}, // Face 4 (z-min)
	{4, 5, 6, 7}, // Face 5 (z-max)
}

// FaceAreaCentre returns the area vector and the area weighted centroid of a polygon.
// The polygon is split into a triangle fan about its vertex average, so warped quads are handled.
func FaceAreaCentre(points []r3.Vec, face []int) (area, centre r3.Vec) {
	var (
		n   = len(face)
		avg r3.Vec
	)
	if n == 0 {
		return
	}
	for _, p := range face {
		avg = r3.Add(avg, points[p])
	}
	avg = r3.Scale(1/float64(n), avg)
	if n == 3 {
		a, b, c := points[face[0]], points[face[1]], points[face[2]]
		area = r3.Scale(0.5, r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
		centre = avg
		return
	}
	var sumMag float64
	for i := 0; i < n; i++ {
		p0, p1 := points[face[i]], points[face[(i+1)%n]]
		a := r3.Scale(0.5, r3.Cross(r3.Sub(p0, avg), r3.Sub(p1, avg)))
		mag := r3.Norm(a)
		area = r3.Add(area, a)
		centre = r3.Add(centre, r3.Scale(mag/3, r3.Add(avg, r3.Add(p0, p1))))
		sumMag += mag
	}
	if sumMag > 0 {
		centre = r3.Scale(1/sumMag, centre)
	} else {
		centre = avg
	}
	return
}

// DistinctPoints counts the distinct point indices in a face loop
func DistinctPoints(face []int) int {
	seen := make(map[int]struct{}, len(face))
	for _, p := range face {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// CellVolumes integrates x.n over each closed cell surface. Owner cells see the face normal as outward,
// neighbour cells as inward. Positions are taken relative to the mean face centre of each cell.
func CellVolumes(points []r3.Vec, faces []Face, nCells int) (volumes []float64, areas []r3.Vec) {
	var (
		centres = make([]r3.Vec, len(faces))
		refs    = make([]r3.Vec, nCells)
		counts  = make([]int, nCells)
	)
	areas = make([]r3.Vec, len(faces))
	volumes = make([]float64, nCells)
	for i, f := range faces {
		areas[i], centres[i] = FaceAreaCentre(points, f.Points)
		refs[f.Owner] = r3.Add(refs[f.Owner], centres[i])
		counts[f.Owner]++
		if f.IsInternal() {
			refs[f.Neighbour] = r3.Add(refs[f.Neighbour], centres[i])
			counts[f.Neighbour]++
		}
	}
	for c := range refs {
		if counts[c] > 0 {
			refs[c] = r3.Scale(1/float64(counts[c]), refs[c])
		}
	}
	for i, f := range faces {
		volumes[f.Owner] += r3.Dot(r3.Sub(centres[i], refs[f.Owner]), areas[i]) / 3
		if f.IsInternal() {
			volumes[f.Neighbour] -= r3.Dot(r3.Sub(centres[i], refs[f.Neighbour]), areas[i]) / 3
		}
	}
	return
}

// HexVolume returns the volume of a hexahedron given its eight corners in HexFaces order
func HexVolume(corners [8]r3.Vec) (vol float64) {
	var (
		pts   = corners[:]
		ref   r3.Vec
		faces [6][]int
	)
	for i := range HexFaces {
		faces[i] = HexFaces[i][:]
	}
	for _, p := range pts {
		ref = r3.Add(ref, p)
	}
	ref = r3.Scale(1./8, ref)
	for _, f := range faces {
		area, centre := FaceAreaCentre(pts, f)
		vol += r3.Dot(r3.Sub(centre, ref), area) / 3
	}
	return
}
