package blockmesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// unitCube returns the eight corners of an axis aligned cube of size h at x0, in hex corner order
func unitCube(x0 float64, h float64) [][3]float64 {
	return [][3]float64{
		{x0, 0, 0}, {x0 + h, 0, 0}, {x0 + h, h, 0}, {x0, h, 0},
		{x0, 0, h}, {x0 + h, 0, h}, {x0 + h, h, h}, {x0, h, h},
	}
}

func hexBlock(first int, cells [3]int, grading ...float64) BlockDescription {
	return BlockDescription{
		Vertices: [8]int{first, first + 1, first + 2, first + 3, first + 4, first + 5, first + 6, first + 7},
		Cells:    cells,
		Grading:  grading,
	}
}

// singleCube is one 2x2x2 block with every face in the default patch
func singleCube() Description {
	return Description{
		Vertices: unitCube(0, 1),
		Blocks:   []BlockDescription{hexBlock(0, [3]int{2, 2, 2})},
	}
}

// twoCubes places two unit blocks side by side along x with separate, coincident vertices on x = 1.
// Block 0's x-max face is patch "right", block 1's x-min face is patch "left".
func twoCubes(slaveCells [3]int, merge bool, tolerant bool) Description {
	d := Description{
		Vertices: append(unitCube(0, 1), unitCube(1, 1)...),
		Blocks: []BlockDescription{
			hexBlock(0, [3]int{2, 2, 2}),
			hexBlock(8, slaveCells),
		},
		Patches: []PatchDescription{
			{Name: "right", Type: "patch", Faces: [][]int{{1, 2, 6, 5}}},
			{Name: "left", Type: "patch", Faces: [][]int{{8, 12, 15, 11}}},
		},
	}
	if merge {
		d.MergePatchPairs = []MergePairDescription{{Master: "right", Slave: "left", Tolerant: tolerant}}
	}
	return d
}

// sharedCubes is two blocks that share the four vertices of their common face
func sharedCubes(cells1 [3]int) Description {
	d := Description{Vertices: unitCube(0, 1)}
	d.Vertices = append(d.Vertices, [3]float64{2, 0, 0}, [3]float64{2, 1, 0}, [3]float64{2, 0, 1}, [3]float64{2, 1, 1})
	d.Blocks = []BlockDescription{
		hexBlock(0, [3]int{2, 2, 2}),
		{Vertices: [8]int{1, 8, 9, 2, 5, 10, 11, 6}, Cells: cells1},
	}
	return d
}

func mustTopology(t *testing.T, d Description) *Topology {
	t.Helper()
	topo, err := NewTopology(d)
	require.NoError(t, err)
	return topo
}

func mustPatches(t *testing.T, ctx *Context, topo *Topology) (*PatchAssembly, []*BlockLattice) {
	t.Helper()
	lattices, points, err := NewLatticeGenerator(topo).Generate()
	require.NoError(t, err)
	pa, err := AssemblePatches(ctx, topo, lattices, points)
	require.NoError(t, err)
	return pa, lattices
}
