package blockmesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/blockmesh/polymesh"
	"github.com/notargets/blockmesh/types"
)

// meshFace is a face during assembly. patch is -1 for internal faces.
type meshFace struct {
	points           []int
	owner, neighbour int
	patch            int
	retired          bool
}

// PatchInfo names a boundary patch; the default patch is always the last entry
type PatchInfo struct {
	Name string
	Type polymesh.PatchType
}

type couplingRecord struct {
	master, slave string
	pairs         []polymesh.CouplingPair // face fields index PatchAssembly.faces
}

// PatchAssembly is the classified face set that the merge and assembly stages work on
type PatchAssembly struct {
	Points  []r3.Vec
	NCells  int
	Patches []PatchInfo

	faces     []meshFace
	pointMap  []int // merged point identities, pointMap[i] == i for unmerged points
	couplings []couplingRecord
}

// DefaultPatch is the index of the default patch in Patches
func (pa *PatchAssembly) DefaultPatch() int { return len(pa.Patches) - 1 }

// NumFaces counts live faces
func (pa *PatchAssembly) NumFaces() (n int) {
	for i := range pa.faces {
		if !pa.faces[i].retired {
			n++
		}
	}
	return
}

// NumInternalFaces counts live internal faces
func (pa *PatchAssembly) NumInternalFaces() (n int) {
	for i := range pa.faces {
		if !pa.faces[i].retired && pa.faces[i].patch < 0 {
			n++
		}
	}
	return
}

// PatchFaces returns the live faces of patch pi in generation order
func (pa *PatchAssembly) PatchFaces(pi int) (faces []int) {
	for i := range pa.faces {
		if !pa.faces[i].retired && pa.faces[i].patch == pi {
			faces = append(faces, i)
		}
	}
	return
}

// PatchSize returns the live face count of patch pi
func (pa *PatchAssembly) PatchSize(pi int) int { return len(pa.PatchFaces(pi)) }

func (pa *PatchAssembly) resolve(p int) int {
	for pa.pointMap[p] != p {
		p = pa.pointMap[p]
	}
	return p
}

type blockFaceRef struct {
	lattice *BlockLattice
	face    int
}

func blockFaceKey(b *Block, f int) (key types.FaceKey, verts [4]int) {
	for m, c := range polymesh.HexFaces[f] {
		verts[m] = b.Vertices[c]
	}
	return types.NewFaceKey(verts), verts
}

// AssemblePatches classifies every block boundary face. Faces shared by two blocks become internal,
// declared patch faces are claimed in declaration order and the rest fall to the default patch.
// The lattices' face sets are consumed.
func AssemblePatches(ctx *Context, topo *Topology, lattices []*BlockLattice, points []r3.Vec) (*PatchAssembly, error) {
	pa := &PatchAssembly{
		Points:   points,
		NCells:   topo.NumCells(),
		pointMap: make([]int, len(points)),
	}
	for i := range pa.pointMap {
		pa.pointMap[i] = i
	}
	for _, p := range topo.patches {
		pa.Patches = append(pa.Patches, PatchInfo{Name: p.Name, Type: p.Type})
	}
	def := PatchInfo{Name: ctx.DefaultPatch, Type: ctx.DefaultType}
	if topo.defaultName != "" {
		def.Name = topo.defaultName
	}
	if def.Name == "" {
		def.Name = DefaultPatchName
	}
	if topo.defaultType != nil {
		def.Type = *topo.defaultType
	}
	for _, p := range topo.patches {
		if p.Name == def.Name {
			return nil, &MalformedTopologyError{Entity: "patch " + p.Name,
				Reason: "name collides with the default patch"}
		}
	}
	pa.Patches = append(pa.Patches, def)
	defaultPatch := len(pa.Patches) - 1

	blockFaces := make(map[types.FaceKey][]blockFaceRef)
	var order []types.FaceKey
	for _, bl := range lattices {
		pa.faces = append(pa.faces, toMeshFaces(bl.Internal, -1)...)
		bl.Internal = nil
		for f := range bl.Boundary {
			key, verts := blockFaceKey(bl.Block, f)
			refs := blockFaces[key]
			if len(refs) == 2 {
				return nil, &MalformedTopologyError{Entity: bl.Block.Name(),
					Reason: fmt.Sprintf("face %v is shared by more than two blocks", verts)}
			}
			if len(refs) == 0 {
				order = append(order, key)
			}
			blockFaces[key] = append(refs, blockFaceRef{lattice: bl, face: f})
		}
	}

	// Shared block faces, paired sub-face by sub-face
	for _, key := range order {
		refs := blockFaces[key]
		if len(refs) != 2 {
			continue
		}
		first := make(map[types.FaceKey]BoundaryFace, len(refs[0].faces()))
		for _, bf := range refs[0].faces() {
			first[types.NewFaceKey(bf.Points)] = bf
		}
		for _, bf := range refs[1].faces() {
			other, ok := first[types.NewFaceKey(bf.Points)]
			if !ok {
				return nil, &MalformedTopologyError{Entity: refs[1].lattice.Block.Name(),
					Reason: fmt.Sprintf("face %v does not conform to %s", key, refs[0].lattice.Block.Name())}
			}
			owner, neighbour := other, bf
			if neighbour.Cell < owner.Cell {
				owner, neighbour = neighbour, owner
			}
			pa.faces = append(pa.faces, meshFace{
				points: append([]int(nil), owner.Points[:]...), owner: owner.Cell,
				neighbour: neighbour.Cell, patch: -1})
		}
	}
	ctx.logf("Shared block faces paired, %d internal faces", len(pa.faces))

	// Declared patches, in declaration order
	claimed := make(map[types.FaceKey]int)
	for pi, p := range topo.patches {
		for _, fv := range p.Faces {
			key := types.NewFaceKey(fv)
			refs, ok := blockFaces[key]
			switch {
			case !ok:
				return nil, &UnmatchedFaceError{Patch: p.Name, Face: fv[:], Reason: "does not match any block face"}
			case len(refs) == 2:
				return nil, &UnmatchedFaceError{Patch: p.Name, Face: fv[:], Reason: "is internal to two blocks"}
			}
			if prev, dup := claimed[key]; dup {
				return nil, &MalformedTopologyError{Entity: "patch " + p.Name,
					Reason: fmt.Sprintf("face %v already belongs to patch %s", fv, topo.patches[prev].Name)}
			}
			claimed[key] = pi
			pa.appendBoundary(refs[0].faces(), pi)
		}
	}

	// Everything unclaimed and unshared goes to the default patch
	for _, key := range order {
		refs := blockFaces[key]
		if _, ok := claimed[key]; ok || len(refs) != 1 {
			continue
		}
		pa.appendBoundary(refs[0].faces(), defaultPatch)
	}
	for _, bl := range lattices {
		for f := range bl.Boundary {
			bl.Boundary[f] = nil
		}
	}
	if n := pa.PatchSize(defaultPatch); n > 0 {
		ctx.logf("%d faces in the default patch %s", n, def.Name)
	}
	return pa, nil
}

func (r blockFaceRef) faces() []BoundaryFace { return r.lattice.Boundary[r.face] }

func (pa *PatchAssembly) appendBoundary(faces []BoundaryFace, patch int) {
	for _, bf := range faces {
		pa.faces = append(pa.faces, meshFace{
			points: append([]int(nil), bf.Points[:]...), owner: bf.Cell, neighbour: -1, patch: patch})
	}
}

func toMeshFaces(faces []polymesh.Face, patch int) []meshFace {
	mf := make([]meshFace, len(faces))
	for i, f := range faces {
		mf[i] = meshFace{points: f.Points, owner: f.Owner, neighbour: f.Neighbour, patch: patch}
	}
	return mf
}
