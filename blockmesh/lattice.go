package blockmesh

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/blockmesh/polymesh"
	"github.com/notargets/blockmesh/types"
)

// cornerUnit is the lattice position of each hex corner in units of the cell counts
var cornerUnit = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// cornerAt inverts cornerUnit, indexed [i][j][k]
var cornerAt = [2][2][2]int{{{0, 4}, {3, 7}}, {{1, 5}, {2, 6}}}

// hexEdges lists the twelve block edges as corner pairs pointing along +axis; edge e runs along axis e/4
var hexEdges = [12][2]int{
	{0, 1}, {3, 2}, {7, 6}, {4, 5}, // x
	{0, 3}, {1, 2}, {5, 6}, {4, 7}, // y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // z
}

// BoundaryFace is one cell face lying on a block face, with its points in outward order
type BoundaryFace struct {
	Points [4]int
	Cell   int
}

// BlockLattice is the structured output of one block
type BlockLattice struct {
	Block      *Block
	Points     []int    // global point index per lattice node, i fastest then j then k
	Cells      [][8]int // global point indices of each cell in hex corner order
	CellOffset int      // global index of the first cell
	Internal   []polymesh.Face
	Boundary   [6][]BoundaryFace // one set per block face, in polymesh.HexFaces order
}

// Point returns the global point index at lattice position (i, j, k)
func (bl *BlockLattice) Point(i, j, k int) int {
	n := bl.Block.Cells
	return bl.Points[i+(n[0]+1)*(j+(n[1]+1)*k)]
}

// LatticeGenerator builds block lattices in declaration order over a shared point pool
type LatticeGenerator struct {
	topo     *Topology
	pool     *pointPool
	nextCell int
}

// NewLatticeGenerator sizes the point pool from the block cell counts
func NewLatticeGenerator(topo *Topology) *LatticeGenerator {
	capacity := 0
	for i := range topo.blocks {
		capacity += topo.blocks[i].NumPoints()
	}
	return &LatticeGenerator{topo: topo, pool: newPointPool(topo, capacity)}
}

// Generate builds every block. The lattices and the point list are handed to the caller,
// the generator keeps no reference to them and cannot be reused.
func (g *LatticeGenerator) Generate() (lattices []*BlockLattice, points []r3.Vec, err error) {
	if g.pool == nil {
		return nil, nil, fmt.Errorf("lattice generator already consumed")
	}
	lattices = make([]*BlockLattice, len(g.topo.blocks))
	for bi := range g.topo.blocks {
		if lattices[bi], err = g.generateBlock(&g.topo.blocks[bi]); err != nil {
			return nil, nil, err
		}
	}
	points = g.pool.points
	g.pool = nil
	return
}

func (g *LatticeGenerator) generateBlock(b *Block) (bl *BlockLattice, err error) {
	var (
		pool = g.pool
		n    = b.Cells
		np   = b.NumPoints()
	)
	if err = checkBlockJacobian(b, g.topo.vertices); err != nil {
		return
	}
	for e, c := range hexEdges {
		if err = pool.edge(b, b.Vertices[c[0]], b.Vertices[c[1]], n[e/4], b.Grading[e]); err != nil {
			return
		}
	}
	bl = &BlockLattice{Block: b, Points: make([]int, np), CellOffset: g.nextCell}
	for i := range bl.Points {
		bl.Points[i] = -1
	}
	lidx := func(ijk [3]int) int { return ijk[0] + (n[0]+1)*(ijk[1]+(n[1]+1)*ijk[2]) }

	// Boundary lattice nodes come from the pooled faces, which include their edges and corners
	for f, loop := range polymesh.HexFaces {
		var verts [4]int
		for m, c := range loop {
			verts[m] = b.Vertices[c]
		}
		o := 0
		for m := 1; m < 4; m++ {
			if pool.less(verts[m], verts[o]) {
				o = m
			}
		}
		am, bm, cm := (o+1)%4, (o+3)%4, (o+2)%4
		if pool.less(verts[bm], verts[am]) {
			am, bm = bm, am
		}
		var (
			uO, uA, uB = cornerUnit[loop[o]], cornerUnit[loop[am]], cornerUnit[loop[bm]]
			axisA      = differingAxis(uO, uA)
			axisB      = differingAxis(uO, uB)
		)
		pf, created := pool.face(types.NewFaceKey(verts), verts[o], verts[am], verts[cm], verts[bm],
			n[axisA], n[axisB])
		if !created && (pf.origin != verts[o] || pf.aVertex != verts[am]) {
			err = &MalformedTopologyError{Entity: b.Name(),
				Reason: fmt.Sprintf("face %v is ordered inconsistently with a previous block", verts)}
			return
		}
		var ijk [3]int
		ijk[f/2] = (f % 2) * n[f/2]
		for q := 0; q <= n[axisB]; q++ {
			ijk[axisB] = q
			if uO[axisB] == 1 {
				ijk[axisB] = n[axisB] - q
			}
			for p := 0; p <= n[axisA]; p++ {
				ijk[axisA] = p
				if uO[axisA] == 1 {
					ijk[axisA] = n[axisA] - p
				}
				bl.Points[lidx(ijk)] = pf.points[p+q*(n[axisA]+1)]
			}
		}
	}

	x := make([]r3.Vec, np)
	for i, p := range bl.Points {
		if p >= 0 {
			x[i] = pool.points[p]
		}
	}
	g.fillInterior(b, bl, x, lidx)

	if err = g.buildCells(b, bl, x, lidx); err != nil {
		return
	}
	g.nextCell += b.NumCells()
	return
}

// fillInterior places interior nodes by transfinite interpolation of the block's boundary lattice
func (g *LatticeGenerator) fillInterior(b *Block, bl *BlockLattice, x []r3.Vec, lidx func([3]int) int) {
	var (
		n      = b.Cells
		lambda [12][]float64
		bar    [3][]float64
	)
	for e, c := range hexEdges {
		ax := e / 4
		line := make([]r3.Vec, n[ax]+1)
		var ijk [3]int
		for d := 0; d < 3; d++ {
			ijk[d] = cornerUnit[c[0]][d] * n[d]
		}
		for i := range line {
			ijk[ax] = i
			line[i] = x[lidx(ijk)]
		}
		lambda[e] = chordLambdas(segmentLengths(line))
	}
	for ax := 0; ax < 3; ax++ {
		bar[ax] = make([]float64, n[ax]+1)
		for i := range bar[ax] {
			for m := 0; m < 4; m++ {
				bar[ax][i] += 0.25 * lambda[ax*4+m][i]
			}
		}
	}
	blend := func(s int, u float64) float64 {
		if s == 1 {
			return u
		}
		return 1 - u
	}
	for k := 1; k < n[2]; k++ {
		for j := 1; j < n[1]; j++ {
			for i := 1; i < n[0]; i++ {
				var (
					ijk = [3]int{i, j, k}
					u   [3]float64
					p   r3.Vec
				)
				for ax := 0; ax < 3; ax++ {
					for m := 0; m < 4; m++ {
						e := ax*4 + m
						w := 1.
						for d := 0; d < 3; d++ {
							if d != ax {
								w *= blend(cornerUnit[hexEdges[e][0]][d], bar[d][ijk[d]])
							}
						}
						u[ax] += w * lambda[e][ijk[ax]]
					}
				}
				for ax := 0; ax < 3; ax++ {
					lo, hi := ijk, ijk
					lo[ax], hi[ax] = 0, n[ax]
					p = r3.Add(p, r3.Add(r3.Scale(1-u[ax], x[lidx(lo)]), r3.Scale(u[ax], x[lidx(hi)])))
				}
				for ax := 0; ax < 3; ax++ {
					for bx := ax + 1; bx < 3; bx++ {
						for sa := 0; sa < 2; sa++ {
							for sb := 0; sb < 2; sb++ {
								q := ijk
								q[ax], q[bx] = sa*n[ax], sb*n[bx]
								p = r3.Sub(p, r3.Scale(blend(sa, u[ax])*blend(sb, u[bx]), x[lidx(q)]))
							}
						}
					}
				}
				for _, cu := range cornerUnit {
					q := [3]int{cu[0] * n[0], cu[1] * n[1], cu[2] * n[2]}
					w := blend(cu[0], u[0]) * blend(cu[1], u[1]) * blend(cu[2], u[2])
					p = r3.Add(p, r3.Scale(w, x[lidx(q)]))
				}
				li := lidx(ijk)
				x[li] = p
				bl.Points[li] = g.pool.add(p)
			}
		}
	}
}

// buildCells creates the hex cells, the block internal faces and the six boundary face sets
func (g *LatticeGenerator) buildCells(b *Block, bl *BlockLattice, x []r3.Vec, lidx func([3]int) int) error {
	var (
		n      = b.Cells
		nCells = b.NumCells()
		stride = [3]int{1, n[0], n[0] * n[1]}
	)
	bl.Cells = make([][8]int, nCells)
	bl.Internal = make([]polymesh.Face, 0,
		(n[0]-1)*n[1]*n[2]+n[0]*(n[1]-1)*n[2]+n[0]*n[1]*(n[2]-1))
	for f := range bl.Boundary {
		ax := f / 2
		bl.Boundary[f] = make([]BoundaryFace, 0, nCells/n[ax])
	}
	for k := 0; k < n[2]; k++ {
		for j := 0; j < n[1]; j++ {
			for i := 0; i < n[0]; i++ {
				var (
					ijk     = [3]int{i, j, k}
					local   = i + stride[1]*j + stride[2]*k
					cell    = bl.CellOffset + local
					corners [8]r3.Vec
				)
				for c, cu := range cornerUnit {
					li := lidx([3]int{i + cu[0], j + cu[1], k + cu[2]})
					bl.Cells[local][c] = bl.Points[li]
					corners[c] = x[li]
				}
				if vol := polymesh.HexVolume(corners); !(vol > 0) {
					return &DegenerateGeometryError{Block: b.Name(),
						Reason: fmt.Sprintf("cell (%d %d %d) has non-positive volume %g", i, j, k, vol)}
				}
				for f, loop := range polymesh.HexFaces {
					var (
						ax     = f / 2
						upper  = f%2 == 1
						points [4]int
					)
					for m, c := range loop {
						points[m] = bl.Cells[local][c]
					}
					switch {
					case !upper && ijk[ax] == 0, upper && ijk[ax] == n[ax]-1:
						bl.Boundary[f] = append(bl.Boundary[f], BoundaryFace{Points: points, Cell: cell})
					case upper:
						bl.Internal = append(bl.Internal, polymesh.Face{
							Points: points[:], Owner: cell, Neighbour: cell + stride[ax]})
					}
				}
			}
		}
	}
	return nil
}

func differingAxis(a, b [3]int) int {
	for d := 0; d < 3; d++ {
		if a[d] != b[d] {
			return d
		}
	}
	return -1
}

// checkBlockJacobian rejects inside-out or folded blocks from the corner tangent frames
func checkBlockJacobian(b *Block, vertices []r3.Vec) error {
	corner := func(u [3]int) r3.Vec { return vertices[b.Vertices[cornerAt[u[0]][u[1]][u[2]]]] }
	for c, cu := range cornerUnit {
		var d [9]float64
		for ax := 0; ax < 3; ax++ {
			lo, hi := cu, cu
			lo[ax], hi[ax] = 0, 1
			t := r3.Sub(corner(hi), corner(lo))
			d[ax], d[3+ax], d[6+ax] = t.X, t.Y, t.Z
		}
		if det := mat.Det(mat.NewDense(3, 3, d[:])); !(det > 0) {
			return &DegenerateGeometryError{Block: b.Name(),
				Reason: fmt.Sprintf("inside-out or collapsed at corner %d (vertex %d), jacobian %g",
					c, b.Vertices[c], det)}
		}
	}
	return nil
}
