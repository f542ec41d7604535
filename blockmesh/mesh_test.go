package blockmesh

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/blockmesh/polymesh"
)

func TestSingleBlockMesh(t *testing.T) {
	ctx := NewContext("")
	m, err := GenerateMesh(ctx, mustTopology(t, singleCube()))
	require.NoError(t, err)
	assert.Equal(t, 27, m.NumPoints())
	assert.Equal(t, 8, m.NumCells())
	assert.Equal(t, 12, m.NInternalFaces)
	assert.Equal(t, 36, m.NumFaces())
	require.Len(t, m.Patches, 1)
	assert.Equal(t, polymesh.Patch{Name: DefaultPatchName, Type: polymesh.PatchEmpty, Start: 12, Size: 24}, m.Patches[0])
	checkMeshInvariants(t, m)
	for _, v := range m.CellVolumes {
		assert.InDelta(t, 0.125, v, 1e-14)
	}
}

func TestDeclaredPatches(t *testing.T) {
	d := singleCube()
	d.Patches = []PatchDescription{
		{Name: "top", Type: "wall", Faces: [][]int{{4, 5, 6, 7}}},
		{Name: "sides", Type: "symmetryPlane", Faces: [][]int{{0, 4, 7, 3}, {1, 2, 6, 5}}},
	}
	d.DefaultPatch = &PatchDescription{Name: "walls", Type: "wall"}
	m, err := GenerateMesh(NewContext(""), mustTopology(t, d))
	require.NoError(t, err)
	require.Len(t, m.Patches, 3)
	assert.Equal(t, polymesh.Patch{Name: "top", Type: polymesh.PatchWall, Start: 12, Size: 4}, m.Patches[0])
	assert.Equal(t, polymesh.Patch{Name: "sides", Type: polymesh.PatchSymmetryPlane, Start: 16, Size: 8}, m.Patches[1])
	assert.Equal(t, polymesh.Patch{Name: "walls", Type: polymesh.PatchWall, Start: 24, Size: 12}, m.Patches[2])
	for fi := m.Patches[0].Start; fi < m.Patches[0].Start+m.Patches[0].Size; fi++ {
		area, centre := polymesh.FaceAreaCentre(m.Points, m.Faces[fi].Points)
		assert.InDelta(t, 1, centre.Z, 1e-14)
		assert.Greater(t, area.Z, 0.)
	}
	checkMeshInvariants(t, m)
}

func TestDefaultPatchOmittedWhenEmpty(t *testing.T) {
	d := singleCube()
	d.Patches = []PatchDescription{{Name: "all", Type: "wall", Faces: [][]int{
		{0, 4, 7, 3}, {1, 2, 6, 5}, {0, 1, 5, 4}, {3, 7, 6, 2}, {0, 3, 2, 1}, {4, 5, 6, 7}}}}
	m, err := GenerateMesh(NewContext(""), mustTopology(t, d))
	require.NoError(t, err)
	require.Len(t, m.Patches, 1)
	assert.Equal(t, 24, m.Patches[0].Size)
}

func TestPatchErrors(t *testing.T) {
	ctx := NewContext("")

	d := singleCube()
	d.Patches = []PatchDescription{{Name: "diagonal", Faces: [][]int{{0, 1, 6, 7}}}}
	_, err := GenerateMesh(ctx, mustTopology(t, d))
	var ufe *UnmatchedFaceError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "diagonal", ufe.Patch)
	assert.Equal(t, []int{0, 1, 6, 7}, ufe.Face)

	d = sharedCubes([3]int{2, 2, 2})
	d.Patches = []PatchDescription{{Name: "middle", Faces: [][]int{{1, 2, 6, 5}}}}
	_, err = GenerateMesh(ctx, mustTopology(t, d))
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "middle", ufe.Patch)

	d = singleCube()
	d.Patches = []PatchDescription{
		{Name: "a", Faces: [][]int{{0, 3, 2, 1}}},
		{Name: "b", Faces: [][]int{{1, 0, 3, 2}}},
	}
	_, err = GenerateMesh(ctx, mustTopology(t, d))
	var mte *MalformedTopologyError
	require.True(t, errors.As(err, &mte))
}

func TestSharedFaceBlocks(t *testing.T) {
	m, err := GenerateMesh(NewContext(""), mustTopology(t, sharedCubes([3]int{2, 2, 2})))
	require.NoError(t, err)
	assert.Equal(t, 45, m.NumPoints())
	assert.Equal(t, 16, m.NumCells())
	assert.Equal(t, 28, m.NInternalFaces)
	assert.Equal(t, 68, m.NumFaces())
	checkMeshInvariants(t, m)
}

func TestMergeCoincident(t *testing.T) {
	ctx := NewContext("")
	topo := mustTopology(t, twoCubes([3]int{2, 2, 2}, true, false))
	pa, _ := mustPatches(t, ctx, topo)
	assert.Equal(t, 24, pa.NumInternalFaces())
	assert.Equal(t, 72, pa.NumFaces())
	assert.Equal(t, 4, pa.PatchSize(0))
	assert.Equal(t, 4, pa.PatchSize(1))
	assert.Equal(t, 40, pa.PatchSize(pa.DefaultPatch()))

	require.NoError(t, MergePatchPairs(ctx, topo, pa))
	assert.Equal(t, 28, pa.NumInternalFaces())
	assert.Equal(t, 68, pa.NumFaces())
	assert.Equal(t, 0, pa.PatchSize(0))
	assert.Equal(t, 0, pa.PatchSize(1))

	zones, sets := PartitionZones(ctx, topo)
	m, err := AssembleMesh(ctx, pa, zones, sets)
	require.NoError(t, err)
	assert.Equal(t, 45, m.NumPoints())
	assert.Equal(t, 28, m.NInternalFaces)
	assert.Equal(t, 68, m.NumFaces())
	require.Len(t, m.Patches, 3)
	assert.Equal(t, polymesh.Patch{Name: "right", Type: polymesh.PatchGeneric, Start: 28, Size: 0}, m.Patches[0])
	assert.Equal(t, polymesh.Patch{Name: "left", Type: polymesh.PatchGeneric, Start: 28, Size: 0}, m.Patches[1])
	assert.Equal(t, 40, m.Patches[2].Size)
	checkMeshInvariants(t, m)

	// The stitched faces run from block 0 cells into block 1 cells along +x
	stitched := 0
	for fi := 0; fi < m.NInternalFaces; fi++ {
		f := m.Faces[fi]
		if f.Owner < 8 && f.Neighbour >= 8 {
			stitched++
			area, centre := polymesh.FaceAreaCentre(m.Points, f.Points)
			assert.InDelta(t, 1, centre.X, 1e-14)
			assert.InDelta(t, 0.25, area.X, 1e-14)
		}
	}
	assert.Equal(t, 4, stitched)
}

func TestMergeWithinTolerance(t *testing.T) {
	d := twoCubes([3]int{2, 2, 2}, true, false)
	for i := 8; i < 16; i++ {
		if d.Vertices[i][0] == 1 {
			d.Vertices[i][0] += 1e-7
		}
	}
	m, err := GenerateMesh(NewContext(""), mustTopology(t, d))
	require.NoError(t, err)
	assert.Equal(t, 45, m.NumPoints())
	assert.Equal(t, 28, m.NInternalFaces)
	checkMeshInvariants(t, m)

	ctx := NewContext("")
	ctx.MergeTolerance = 1e-9
	_, err = GenerateMesh(ctx, mustTopology(t, d))
	var me *MergeError
	assert.True(t, errors.As(err, &me))
}

func TestMergeMismatch(t *testing.T) {
	topo := mustTopology(t, twoCubes([3]int{2, 3, 3}, true, false))
	_, err := GenerateMesh(NewContext(""), topo)
	var me *MergeError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "right", me.Master)
	assert.Equal(t, "left", me.Slave)
	assert.Equal(t, 0, me.SlaveFace)
}

func TestMergeTolerantCoupling(t *testing.T) {
	topo := mustTopology(t, twoCubes([3]int{2, 3, 3}, true, true))
	for _, strategy := range []CouplingStrategy{AreaOverlapStrategy{}, NearestCentroidStrategy{}} {
		t.Run(strategy.Name(), func(t *testing.T) {
			ctx := NewContext("")
			ctx.Strategy = strategy
			m, err := GenerateMesh(ctx, topo)
			require.NoError(t, err)
			assert.Equal(t, 8+18, m.NumCells())
			assert.Equal(t, 12+33, m.NInternalFaces)
			right, left := m.Patches[m.FindPatch("right")], m.Patches[m.FindPatch("left")]
			assert.Equal(t, 4, right.Size)
			assert.Equal(t, 9, left.Size)
			checkMeshInvariants(t, m)

			require.Len(t, m.Couplings, 1)
			c := m.Couplings[0]
			assert.Equal(t, "right", c.Master)
			assert.Equal(t, "left", c.Slave)
			coverage := make(map[int]float64)
			for _, p := range c.Pairs {
				assert.True(t, p.MasterFace >= right.Start && p.MasterFace < right.Start+right.Size)
				assert.True(t, p.SlaveFace >= left.Start && p.SlaveFace < left.Start+left.Size)
				coverage[p.SlaveFace] += p.Weight
			}
			assert.Len(t, coverage, 9)
			for _, w := range coverage {
				assert.InDelta(t, 1, w, 1e-12)
			}
		})
	}
}

func TestAreaOverlapWeights(t *testing.T) {
	square := func(x0, y0, h float64) []r3.Vec {
		return []r3.Vec{{X: x0, Y: y0}, {X: x0 + h, Y: y0}, {X: x0 + h, Y: y0 + h}, {X: x0, Y: y0 + h}}
	}
	master := [][]r3.Vec{square(0, 0, 1), square(1, 0, 1), square(5, 5, 1)}
	slave := [][]r3.Vec{square(0.5, 0, 1)}
	pairs := AreaOverlapStrategy{}.Couple(master, slave)
	require.Len(t, pairs, 2)
	assert.Equal(t, 0, pairs[0].MasterFace)
	assert.InDelta(t, 0.5, pairs[0].Weight, 1e-14)
	assert.Equal(t, 1, pairs[1].MasterFace)
	assert.InDelta(t, 0.5, pairs[1].Weight, 1e-14)

	pairs = NearestCentroidStrategy{}.Couple(master, [][]r3.Vec{square(4.9, 5, 1)})
	assert.Equal(t, []polymesh.CouplingPair{{MasterFace: 2, SlaveFace: 0, Weight: 1}}, pairs)

	_, ok := NewCouplingStrategy("nearestCentroid")
	assert.True(t, ok)
	_, ok = NewCouplingStrategy("magic")
	assert.False(t, ok)
}

func TestZones(t *testing.T) {
	d := Description{Vertices: unitCube(0, 1)}
	for i := 1; i < 4; i++ {
		d.Vertices = append(d.Vertices, unitCube(float64(i), 1)...)
	}
	zones := []string{"fluid", "", "solid", "fluid"}
	for i, z := range zones {
		b := hexBlock(8*i, [3]int{1, 1, 2})
		b.Zone = z
		d.Blocks = append(d.Blocks, b)
	}
	ctx := NewContext("")
	m, err := GenerateMesh(ctx, mustTopology(t, d))
	require.NoError(t, err)
	require.Len(t, m.Zones, 2)
	assert.Equal(t, polymesh.Zone{Name: "fluid", Index: 0, Cells: []int{0, 1, 6, 7}}, m.Zones[0])
	assert.Equal(t, polymesh.Zone{Name: "solid", Index: 1, Cells: []int{4, 5}}, m.Zones[1])
	require.Len(t, m.CellSets, 2)
	assert.Equal(t, polymesh.CellSet{Name: "solid", Cells: []int{4, 5}}, m.CellSets[1])
}

func TestDumpTopology(t *testing.T) {
	d := DumpTopology(mustTopology(t, singleCube()))
	require.Len(t, d.Edges, 12)
	assert.Equal(t, [2]int{2, 3}, d.Edges[1])
	for _, e := range d.Edges {
		assert.Less(t, e[0], e[1])
	}
	require.Len(t, d.Centroids, 1)
	assert.Equal(t, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, d.Centroids[0])

	d = DumpTopology(mustTopology(t, sharedCubes([3]int{1, 1, 1})))
	assert.Len(t, d.Edges, 20)
	assert.Len(t, d.Centroids, 2)
	assert.Len(t, d.Points, 12)
}

type recorder struct {
	meshes  []*polymesh.PolyMesh
	sets    []string
	written []string
	fail    error
}

func (r *recorder) WriteMesh(m *polymesh.PolyMesh) error {
	r.meshes = append(r.meshes, m)
	return r.fail
}

func (r *recorder) WriteCellSet(set polymesh.CellSet) error {
	r.sets = append(r.sets, set.Name)
	return nil
}

func (r *recorder) WriteEdges(name string, points []r3.Vec, edges [][2]int) error {
	r.written = append(r.written, fmt.Sprintf("%s:%d", name, len(edges)))
	return nil
}

func (r *recorder) WritePoints(name string, points []r3.Vec) error {
	r.written = append(r.written, fmt.Sprintf("%s:%d", name, len(points)))
	return nil
}

func TestRun(t *testing.T) {
	d := singleCube()
	d.Blocks[0].Zone = "box"
	topo := mustTopology(t, d)

	var (
		rec    = &recorder{}
		report bytes.Buffer
	)
	out := Outputs{Mesh: rec, CellSets: rec, Geometry: rec, Report: &report}
	require.NoError(t, Run(NewContext(""), topo, out, true))
	assert.Empty(t, rec.meshes)
	assert.Equal(t, []string{"blockTopology:12", "blockCentres:1"}, rec.written)

	require.NoError(t, Run(NewContext(""), topo, out, false))
	require.Len(t, rec.meshes, 1)
	assert.Equal(t, []string{"box"}, rec.sets)
	assert.Contains(t, report.String(), "nCells: 8")
	assert.Contains(t, report.String(), "name: defaultFaces")

	rec.fail = errors.New("disk full")
	assert.EqualError(t, Run(NewContext(""), topo, out, false), "disk full")
}

// checkMeshInvariants verifies face ordering, owner/neighbour rules, patch layout and closed cells
func checkMeshInvariants(t *testing.T, m *polymesh.PolyMesh) {
	t.Helper()
	for fi := 0; fi < m.NInternalFaces; fi++ {
		f := m.Faces[fi]
		require.True(t, f.Owner < f.Neighbour, "face %d", fi)
		if fi > 0 {
			p := m.Faces[fi-1]
			require.True(t, p.Owner < f.Owner || (p.Owner == f.Owner && p.Neighbour <= f.Neighbour), "face %d", fi)
		}
	}
	start := m.NInternalFaces
	for _, p := range m.Patches {
		require.Equal(t, start, p.Start, p.Name)
		start += p.Size
	}
	require.Equal(t, m.NumFaces(), start)
	for fi := m.NInternalFaces; fi < m.NumFaces(); fi++ {
		require.False(t, m.Faces[fi].IsInternal())
	}

	used := make([]bool, m.NumPoints())
	for _, f := range m.Faces {
		for _, p := range f.Points {
			used[p] = true
		}
	}
	for p, u := range used {
		require.True(t, u, "point %d unused", p)
	}

	// Closed cells: the outward area vectors of each cell sum to zero
	sums := make([]r3.Vec, m.NumCells())
	for fi, f := range m.Faces {
		a := m.FaceAreas[fi]
		sums[f.Owner] = r3.Add(sums[f.Owner], a)
		if f.IsInternal() {
			sums[f.Neighbour] = r3.Sub(sums[f.Neighbour], a)
		}
	}
	for ci, s := range sums {
		require.InDelta(t, 0, r3.Norm(s), 1e-12, "cell %d", ci)
		require.Greater(t, m.CellVolumes[ci], 0.)
	}
}
