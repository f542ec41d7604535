package blockmesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/blockmesh/polymesh"
	"github.com/notargets/blockmesh/types"
)

// Block is a validated hex block
type Block struct {
	Index    int
	Vertices [8]int
	Cells    [3]int
	Grading  [12]float64 // expansion ratio per hex edge, see hexEdges
	Zone     string
}

// Name is the label used in diagnostics
func (b *Block) Name() string { return fmt.Sprintf("block %d", b.Index) }

// NumPoints returns (nx+1)(ny+1)(nz+1)
func (b *Block) NumPoints() int { return (b.Cells[0] + 1) * (b.Cells[1] + 1) * (b.Cells[2] + 1) }

// NumCells returns nx*ny*nz
func (b *Block) NumCells() int { return b.Cells[0] * b.Cells[1] * b.Cells[2] }

// Patch is a validated patch declaration
type Patch struct {
	Name  string
	Type  polymesh.PatchType
	Faces [][4]int
}

// MergePair is a validated merge pair; Master and Slave index into the declared patches
type MergePair struct {
	Master, Slave int
	Tolerant      bool
}

// Topology is the immutable block structure every later stage reads from
type Topology struct {
	vertices    []r3.Vec
	blocks      []Block
	curves      map[types.EdgeKey]Curve
	patches     []Patch
	mergePairs  []MergePair
	defaultName string // empty unless the description overrides the context setting
	defaultType *polymesh.PatchType
}

// Vertices returns the shared vertex pool. Callers must not modify it.
func (t *Topology) Vertices() []r3.Vec { return t.vertices }

// Blocks returns the blocks in declaration order. Callers must not modify it.
func (t *Topology) Blocks() []Block { return t.blocks }

// Patches returns the declared patches in declaration order. Callers must not modify it.
func (t *Topology) Patches() []Patch { return t.patches }

// MergePairs returns the merge pairs in declaration order
func (t *Topology) MergePairs() []MergePair { return t.mergePairs }

// PairName formats a merge pair for diagnostics
func (t *Topology) PairName(mp MergePair) (master, slave string) {
	return t.patches[mp.Master].Name, t.patches[mp.Slave].Name
}

// NumCells returns the total cell count over all blocks
func (t *Topology) NumCells() (n int) {
	for i := range t.blocks {
		n += t.blocks[i].NumCells()
	}
	return
}

// curve returns the edge geometry between two vertices, straight unless declared curved
func (t *Topology) curve(v0, v1 int) Curve {
	if c, ok := t.curves[types.NewEdgeKey([2]int{v0, v1})]; ok {
		return oriented(c, v0)
	}
	return lineCurve{start: t.vertices[v0], end: t.vertices[v1]}
}

// NewTopology validates a parsed description and freezes it
func NewTopology(desc Description) (*Topology, error) {
	var (
		scale = desc.ConvertToMeters
		nv    = len(desc.Vertices)
	)
	if scale == 0 {
		scale = 1
	}
	if nv == 0 {
		return nil, &MalformedTopologyError{Entity: "vertices", Reason: "no vertices declared"}
	}
	if len(desc.Blocks) == 0 {
		return nil, &MalformedTopologyError{Entity: "blocks", Reason: "no blocks declared"}
	}
	t := &Topology{
		vertices: make([]r3.Vec, nv),
		blocks:   make([]Block, len(desc.Blocks)),
		curves:   make(map[types.EdgeKey]Curve),
	}
	for i, v := range desc.Vertices {
		t.vertices[i] = r3.Vec{X: v[0] * scale, Y: v[1] * scale, Z: v[2] * scale}
	}

	for bi, bd := range desc.Blocks {
		b := &t.blocks[bi]
		b.Index, b.Vertices, b.Cells, b.Zone = bi, bd.Vertices, bd.Cells, bd.Zone
		for _, v := range bd.Vertices {
			if v < 0 || v >= nv {
				return nil, &MalformedTopologyError{Entity: b.Name(),
					Reason: fmt.Sprintf("vertex index %d out of range [0,%d)", v, nv)}
			}
		}
		for dir, n := range bd.Cells {
			if n <= 0 {
				return nil, &MalformedTopologyError{Entity: b.Name(),
					Reason: fmt.Sprintf("cell count %d along axis %d is not positive", n, dir)}
			}
		}
		grading, err := expandGrading(bd.Grading)
		if err != nil {
			return nil, &DegenerateGeometryError{Block: b.Name(), Reason: err.Error()}
		}
		b.Grading = grading
	}

	for ei, ed := range desc.Edges {
		name := fmt.Sprintf("edge %d", ei)
		if ed.Start < 0 || ed.Start >= nv || ed.End < 0 || ed.End >= nv || ed.Start == ed.End {
			return nil, &MalformedTopologyError{Entity: name,
				Reason: fmt.Sprintf("invalid vertex pair (%d %d)", ed.Start, ed.End)}
		}
		key := types.NewEdgeKey([2]int{ed.Start, ed.End})
		if _, dup := t.curves[key]; dup {
			return nil, &MalformedTopologyError{Entity: name, Reason: "edge declared twice"}
		}
		pts := make([]r3.Vec, len(ed.Points))
		for i, p := range ed.Points {
			pts[i] = r3.Vec{X: p[0] * scale, Y: p[1] * scale, Z: p[2] * scale}
		}
		c, err := newCurve(ed.Type, ed.Start, t.vertices[ed.Start], t.vertices[ed.End], pts)
		if err != nil {
			return nil, &MalformedTopologyError{Entity: name, Reason: err.Error()}
		}
		t.curves[key] = c
	}

	if desc.DefaultPatch != nil {
		if desc.DefaultPatch.Name != "" {
			t.defaultName = desc.DefaultPatch.Name
		}
		if desc.DefaultPatch.Type != "" {
			pt, err := polymesh.ParsePatchType(desc.DefaultPatch.Type)
			if err != nil {
				return nil, &MalformedTopologyError{Entity: "defaultPatch", Reason: err.Error()}
			}
			t.defaultType = &pt
		}
	}

	patchIndex := make(map[string]int, len(desc.Patches))
	for _, pd := range desc.Patches {
		if pd.Name == "" {
			return nil, &MalformedTopologyError{Entity: "patches", Reason: "patch without a name"}
		}
		if _, dup := patchIndex[pd.Name]; dup || (t.defaultName != "" && pd.Name == t.defaultName) {
			return nil, &MalformedTopologyError{Entity: "patch " + pd.Name, Reason: "duplicate patch name"}
		}
		pt, err := polymesh.ParsePatchType(pd.Type)
		if err != nil {
			return nil, &MalformedTopologyError{Entity: "patch " + pd.Name, Reason: err.Error()}
		}
		p := Patch{Name: pd.Name, Type: pt, Faces: make([][4]int, len(pd.Faces))}
		for fi, fv := range pd.Faces {
			if len(fv) != 4 {
				return nil, &MalformedTopologyError{Entity: "patch " + pd.Name,
					Reason: fmt.Sprintf("face %v does not have 4 vertices", fv)}
			}
			copy(p.Faces[fi][:], fv)
			if !t.boundedByBlock(p.Faces[fi]) {
				return nil, &MalformedTopologyError{Entity: "patch " + pd.Name,
					Reason: fmt.Sprintf("face %v is not bounded by any declared block", fv)}
			}
		}
		patchIndex[pd.Name] = len(t.patches)
		t.patches = append(t.patches, p)
	}

	used := make(map[int]bool)
	for _, md := range desc.MergePatchPairs {
		name := fmt.Sprintf("merge pair (%s %s)", md.Master, md.Slave)
		mi, okM := patchIndex[md.Master]
		si, okS := patchIndex[md.Slave]
		switch {
		case !okM:
			return nil, &MalformedTopologyError{Entity: name, Reason: "unknown patch " + md.Master}
		case !okS:
			return nil, &MalformedTopologyError{Entity: name, Reason: "unknown patch " + md.Slave}
		case mi == si:
			return nil, &MalformedTopologyError{Entity: name, Reason: "patch merged with itself"}
		case used[mi] || used[si]:
			return nil, &MalformedTopologyError{Entity: name, Reason: "patch already used by another merge pair"}
		}
		used[mi], used[si] = true, true
		t.mergePairs = append(t.mergePairs, MergePair{Master: mi, Slave: si, Tolerant: md.Tolerant})
	}
	return t, nil
}

// boundedByBlock reports whether all four face vertices, in range, belong to a single block
func (t *Topology) boundedByBlock(face [4]int) bool {
	for _, v := range face {
		if v < 0 || v >= len(t.vertices) {
			return false
		}
	}
	for bi := range t.blocks {
		found := 0
		for _, v := range face {
			for _, bv := range t.blocks[bi].Vertices {
				if v == bv {
					found++
					break
				}
			}
		}
		if found == 4 {
			return true
		}
	}
	return false
}

// expandGrading turns 0, 3 or 12 expansion ratios into the per-edge form
func expandGrading(g []float64) (grading [12]float64, err error) {
	switch len(g) {
	case 0:
		for i := range grading {
			grading[i] = 1
		}
	case 3:
		for i := range grading {
			grading[i] = g[i/4]
		}
	case 12:
		copy(grading[:], g)
	default:
		err = fmt.Errorf("grading needs 0, 3 or 12 expansion ratios, have %d", len(g))
		return
	}
	for i, r := range grading {
		if !(r > 0) || math.IsInf(r, 0) {
			err = fmt.Errorf("expansion ratio %g on edge %d must be positive and finite", r, i)
			return
		}
	}
	return
}
