package polymesh

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Face is an ordered loop of point indices; the right-hand normal points from Owner into Neighbour
type Face struct {
	Points    []int
	Owner     int
	Neighbour int // -1 for boundary faces
}

// IsInternal reports whether the face has a neighbour cell
func (f Face) IsInternal() bool { return f.Neighbour >= 0 }

// Patch is a named, typed contiguous slice [Start, Start+Size) of the face list
type Patch struct {
	Name  string
	Type  PatchType
	Start int
	Size  int
}

// Zone is a named group of cells, indexed in first-encounter order
type Zone struct {
	Name  string
	Index int
	Cells []int
}

// CellSet is a named cell subset exported alongside the zones for post-processing
type CellSet struct {
	Name  string
	Cells []int
}

// CouplingPair links one slave face to one master face of a sliding interface
type CouplingPair struct {
	MasterFace int
	SlaveFace  int
	Weight     float64 // fraction of the slave face area covered by the master face
}

// Coupling records a non-conformal interface between two patches. It never alters owner/neighbour lists.
type Coupling struct {
	Master, Slave string
	Pairs         []CouplingPair
}

// PolyMesh is a finished finite-volume mesh. Faces are ordered internal first, then per patch.
type PolyMesh struct {
	Region string

	// Geometry
	Points []r3.Vec

	// Topology
	Faces          []Face
	Cells          [][]int // cell to face indices
	NInternalFaces int

	// Grouping
	Patches   []Patch
	Zones     []Zone
	CellSets  []CellSet
	Couplings []Coupling

	// Derived geometry, filled during assembly checks
	FaceAreas   []r3.Vec
	CellVolumes []float64
}

// NumPoints returns the number of points
func (m *PolyMesh) NumPoints() int { return len(m.Points) }

// NumFaces returns the number of faces
func (m *PolyMesh) NumFaces() int { return len(m.Faces) }

// NumCells returns the number of cells
func (m *PolyMesh) NumCells() int { return len(m.Cells) }

// Owner returns the owner list in face order
func (m *PolyMesh) Owner() []int {
	owner := make([]int, len(m.Faces))
	for i, f := range m.Faces {
		owner[i] = f.Owner
	}
	return owner
}

// Neighbour returns the neighbour list, which only spans the internal faces
func (m *PolyMesh) Neighbour() []int {
	neighbour := make([]int, m.NInternalFaces)
	for i := 0; i < m.NInternalFaces; i++ {
		neighbour[i] = m.Faces[i].Neighbour
	}
	return neighbour
}

// FindPatch returns the index of the named patch, or -1
func (m *PolyMesh) FindPatch(name string) int {
	for i, p := range m.Patches {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// BoundingBox returns the axis aligned bounds of the points
func (m *PolyMesh) BoundingBox() (box r3.Box) {
	if len(m.Points) == 0 {
		return
	}
	inf := math.Inf(1)
	box.Min = r3.Vec{X: inf, Y: inf, Z: inf}
	box.Max = r3.Vec{X: -inf, Y: -inf, Z: -inf}
	for _, p := range m.Points {
		box.Min.X, box.Max.X = math.Min(box.Min.X, p.X), math.Max(box.Max.X, p.X)
		box.Min.Y, box.Max.Y = math.Min(box.Min.Y, p.Y), math.Max(box.Max.Y, p.Y)
		box.Min.Z, box.Max.Z = math.Min(box.Min.Z, p.Z), math.Max(box.Max.Z, p.Z)
	}
	return
}

// PrintStatistics prints mesh statistics
func (m *PolyMesh) PrintStatistics(w io.Writer) {
	box := m.BoundingBox()
	fmt.Fprintf(w, "----------------\n")
	fmt.Fprintf(w, "Mesh Information\n")
	fmt.Fprintf(w, "----------------\n")
	fmt.Fprintf(w, "  boundingBox: (%g %g %g) (%g %g %g)\n",
		box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z)
	fmt.Fprintf(w, "  nPoints: %d\n", m.NumPoints())
	fmt.Fprintf(w, "  nCells: %d\n", m.NumCells())
	fmt.Fprintf(w, "  nFaces: %d\n", m.NumFaces())
	fmt.Fprintf(w, "  nInternalFaces: %d\n", m.NInternalFaces)

	fmt.Fprintf(w, "----------------\n")
	fmt.Fprintf(w, "Patches\n")
	fmt.Fprintf(w, "----------------\n")
	for i, p := range m.Patches {
		fmt.Fprintf(w, "  patch %d (start: %d size: %d) name: %s\n", i, p.Start, p.Size, p.Name)
	}
	for _, c := range m.Couplings {
		fmt.Fprintf(w, "  sliding interface %s/%s: %d face pairs\n", c.Master, c.Slave, len(c.Pairs))
	}
}
