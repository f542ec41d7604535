package blockmesh

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/blockmesh/polymesh"
)

// GenerateMesh runs the pipeline: lattice, patches, merges, zones and final assembly
func GenerateMesh(ctx *Context, topo *Topology) (*polymesh.PolyMesh, error) {
	ctx.logf("Generating mesh for %d blocks, %d cells", len(topo.blocks), topo.NumCells())
	lattices, points, err := NewLatticeGenerator(topo).Generate()
	if err != nil {
		return nil, err
	}
	ctx.logf("Generated %d block points", len(points))
	pa, err := AssemblePatches(ctx, topo, lattices, points)
	if err != nil {
		return nil, err
	}
	if len(topo.mergePairs) > 0 {
		ctx.logf("Merging %d patch pairs", len(topo.mergePairs))
		if err = MergePatchPairs(ctx, topo, pa); err != nil {
			return nil, err
		}
	}
	zones, sets := PartitionZones(ctx, topo)
	return AssembleMesh(ctx, pa, zones, sets)
}

// AssembleMesh produces the final mesh. Merged points are folded and unused points dropped,
// internal faces are sorted by (owner, neighbour) and boundary faces grouped per patch.
// An empty default patch is omitted, declared patches are kept even when a merge emptied them.
func AssembleMesh(ctx *Context, pa *PatchAssembly, zones []polymesh.Zone, sets []polymesh.CellSet) (*polymesh.PolyMesh, error) {
	var (
		internal []int
		boundary = make([][]int, len(pa.Patches))
	)
	for i := range pa.faces {
		f := &pa.faces[i]
		if f.retired {
			continue
		}
		if f.patch < 0 {
			if f.neighbour < f.owner {
				f.owner, f.neighbour = f.neighbour, f.owner
				reverse(f.points)
			}
			internal = append(internal, i)
		} else {
			boundary[f.patch] = append(boundary[f.patch], i)
		}
	}
	sort.SliceStable(internal, func(a, b int) bool {
		fa, fb := &pa.faces[internal[a]], &pa.faces[internal[b]]
		if fa.owner != fb.owner {
			return fa.owner < fb.owner
		}
		return fa.neighbour < fb.neighbour
	})

	m := &polymesh.PolyMesh{Region: ctx.Region, NInternalFaces: len(internal)}
	newIndex := make([]int, len(pa.faces))
	for i := range newIndex {
		newIndex[i] = -1
	}
	order := internal
	for pi, faces := range boundary {
		if pi == pa.DefaultPatch() && len(faces) == 0 {
			continue
		}
		m.Patches = append(m.Patches, polymesh.Patch{
			Name: pa.Patches[pi].Name, Type: pa.Patches[pi].Type, Start: len(order), Size: len(faces)})
		order = append(order, faces...)
	}

	// Unused and merged-away points are dropped, the rest keep their generation order
	pointIndex := make([]int, len(pa.Points))
	for _, rec := range order {
		for _, p := range pa.faces[rec].points {
			pointIndex[pa.resolve(p)] = 1
		}
	}
	for p, used := range pointIndex {
		if used == 0 {
			pointIndex[p] = -1
			continue
		}
		pointIndex[p] = len(m.Points)
		m.Points = append(m.Points, pa.Points[p])
	}
	m.Faces = make([]polymesh.Face, len(order))
	for fi, rec := range order {
		newIndex[rec] = fi
		f := &pa.faces[rec]
		pts := make([]int, len(f.points))
		for j, p := range f.points {
			pts[j] = pointIndex[pa.resolve(p)]
		}
		m.Faces[fi] = polymesh.Face{Points: pts, Owner: f.owner, Neighbour: f.neighbour}
	}

	m.Cells = make([][]int, pa.NCells)
	for fi, f := range m.Faces {
		m.Cells[f.Owner] = append(m.Cells[f.Owner], fi)
		if f.IsInternal() {
			m.Cells[f.Neighbour] = append(m.Cells[f.Neighbour], fi)
		}
	}
	for _, c := range pa.couplings {
		cp := polymesh.Coupling{Master: c.master, Slave: c.slave, Pairs: make([]polymesh.CouplingPair, len(c.pairs))}
		for i, p := range c.pairs {
			cp.Pairs[i] = polymesh.CouplingPair{
				MasterFace: newIndex[p.MasterFace], SlaveFace: newIndex[p.SlaveFace], Weight: p.Weight}
		}
		m.Couplings = append(m.Couplings, cp)
	}
	m.Zones, m.CellSets = zones, sets

	if err := checkMesh(m); err != nil {
		return nil, err
	}
	ctx.logf("Assembled %d points, %d faces (%d internal), %d cells",
		m.NumPoints(), m.NumFaces(), m.NInternalFaces, m.NumCells())
	return m, nil
}

func checkMesh(m *polymesh.PolyMesh) error {
	for fi, f := range m.Faces {
		if polymesh.DistinctPoints(f.Points) < 3 {
			return &InvalidMeshError{Cell: -1, Face: fi, Reason: "face has fewer than three distinct points"}
		}
		if f.IsInternal() && f.Owner >= f.Neighbour {
			return &InvalidMeshError{Cell: -1, Face: fi, Reason: "owner is not lower than neighbour"}
		}
	}
	for ci, faces := range m.Cells {
		if len(faces) != 6 {
			return &InvalidMeshError{Cell: ci, Face: -1, Reason: "cell is not bounded by six faces"}
		}
	}
	m.CellVolumes, m.FaceAreas = polymesh.CellVolumes(m.Points, m.Faces, m.NumCells())
	for fi, a := range m.FaceAreas {
		if r3.Norm(a) == 0 {
			return &InvalidMeshError{Cell: -1, Face: fi, Reason: "face has zero area"}
		}
	}
	for ci, v := range m.CellVolumes {
		if !(v > 0) {
			return &InvalidMeshError{Cell: ci, Face: -1, Reason: "cell volume is not positive"}
		}
	}
	return nil
}

func reverse(p []int) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}
