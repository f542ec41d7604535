package blockmesh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLatticeSingleBlock(t *testing.T) {
	topo := mustTopology(t, singleCube())
	lattices, points, err := NewLatticeGenerator(topo).Generate()
	require.NoError(t, err)
	require.Len(t, lattices, 1)
	bl := lattices[0]
	assert.Len(t, points, 27)
	assert.Len(t, bl.Cells, 8)
	assert.Len(t, bl.Internal, 12)
	for f := range bl.Boundary {
		assert.Len(t, bl.Boundary[f], 4)
	}
	assert.Equal(t, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, points[bl.Point(1, 1, 1)])
	assert.Equal(t, r3.Vec{X: 1, Y: 0.5, Z: 0}, points[bl.Point(2, 1, 0)])

	// Cells are numbered i fastest and internal faces point from owner to neighbour
	assert.Equal(t, [8]int{bl.Point(1, 0, 0), bl.Point(2, 0, 0), bl.Point(2, 1, 0), bl.Point(1, 1, 0),
		bl.Point(1, 0, 1), bl.Point(2, 0, 1), bl.Point(2, 1, 1), bl.Point(1, 1, 1)}, bl.Cells[1])
	for _, f := range bl.Internal {
		assert.Less(t, f.Owner, f.Neighbour)
	}
}

func TestLatticeGeneratorConsumed(t *testing.T) {
	g := NewLatticeGenerator(mustTopology(t, singleCube()))
	_, _, err := g.Generate()
	require.NoError(t, err)
	_, _, err = g.Generate()
	assert.Error(t, err)
}

func TestLatticeSharedVertices(t *testing.T) {
	topo := mustTopology(t, sharedCubes([3]int{2, 2, 2}))
	lattices, points, err := NewLatticeGenerator(topo).Generate()
	require.NoError(t, err)
	assert.Len(t, points, 45)
	assert.Equal(t, 8, lattices[1].CellOffset)
	for k := 0; k <= 2; k++ {
		for j := 0; j <= 2; j++ {
			assert.Equal(t, lattices[0].Point(2, j, k), lattices[1].Point(0, j, k))
		}
	}
}

func TestLatticeDivisionMismatch(t *testing.T) {
	topo := mustTopology(t, sharedCubes([3]int{2, 3, 2}))
	_, _, err := NewLatticeGenerator(topo).Generate()
	var mte *MalformedTopologyError
	require.True(t, errors.As(err, &mte))
	assert.Equal(t, "block 1", mte.Entity)
}

func TestLatticeCoincidentFacesBitIdentical(t *testing.T) {
	d := twoCubes([3]int{2, 4, 3}, false, false)
	d.Blocks[0].Cells = [3]int{2, 4, 3}
	d.Blocks[0].Grading = []float64{1, 2, 0.3}
	d.Blocks[1].Grading = []float64{4, 2, 0.3}
	topo := mustTopology(t, d)
	lattices, points, err := NewLatticeGenerator(topo).Generate()
	require.NoError(t, err)
	a, b := lattices[0], lattices[1]
	for k := 0; k <= 3; k++ {
		for j := 0; j <= 4; j++ {
			pa, pb := a.Point(2, j, k), b.Point(0, j, k)
			assert.NotEqual(t, pa, pb)
			assert.Equal(t, points[pa], points[pb], "(%d %d)", j, k)
		}
	}
	// y grading of 2 puts the last segment at twice the first
	first := points[a.Point(0, 1, 0)].Y - points[a.Point(0, 0, 0)].Y
	last := points[a.Point(0, 4, 0)].Y - points[a.Point(0, 3, 0)].Y
	assert.InDelta(t, 2, last/first, 1e-12)
}

func TestLatticeInsideOut(t *testing.T) {
	d := singleCube()
	d.Blocks[0].Vertices = [8]int{0, 3, 2, 1, 4, 7, 6, 5}
	_, _, err := NewLatticeGenerator(mustTopology(t, d)).Generate()
	var dge *DegenerateGeometryError
	require.True(t, errors.As(err, &dge))
	assert.Equal(t, "block 0", dge.Block)
}

func TestLatticeArcEdge(t *testing.T) {
	d := singleCube()
	d.Edges = []EdgeDescription{{Type: "arc", Start: 1, End: 0, Points: [][3]float64{{0.5, -0.2, 0}}}}
	topo := mustTopology(t, d)
	lattices, points, err := NewLatticeGenerator(topo).Generate()
	require.NoError(t, err)
	mid := points[lattices[0].Point(1, 0, 0)]
	assert.InDelta(t, 0.5, mid.X, 1e-12)
	assert.InDelta(t, -0.2, mid.Y, 1e-12)
	assert.InDelta(t, 0, mid.Z, 1e-12)

	// The bulge decays linearly into the block interior
	inner := points[lattices[0].Point(1, 1, 0)]
	assert.InDelta(t, 0.5, inner.X, 1e-12)
	assert.InDelta(t, 0.4, inner.Y, 1e-12)
}
