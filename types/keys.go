package types

import (
	"fmt"
	"math"
	"sort"
)

/*
EdgeKey is an always positive number that stores an edge's vertices as indices in a way that can be compared
An edge between vertices [4] and [0] will always be stored as [0,4], in the ascending order of the index values
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	// Two 32 bit halves, lower index in the low word
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeKey(i1 + i2<<32)
	return
}

// GetVertices returns the ascending vertex pair, or the descending one when rev is set
func (ek EdgeKey) GetVertices(rev bool) (verts [2]int) {
	var (
		enTmp EdgeKey
	)
	enTmp = ek >> 32
	verts[1] = int(enTmp)
	verts[0] = int(ek - enTmp*(1<<32))
	if rev {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}

// FaceKey identifies a face by its corner set, independent of orientation and starting corner
type FaceKey [4]int

func NewFaceKey(corners [4]int) (fk FaceKey) {
	fk = FaceKey(corners)
	sort.Ints(fk[:])
	return
}

func (fk FaceKey) String() string {
	return fmt.Sprintf("(%d %d %d %d)", fk[0], fk[1], fk[2], fk[3])
}

/*
PointKey is the exact bit pattern of a coordinate triple. Two points share a key only when they are
numerically identical, which is the identity rule used when reconciling points from different blocks.
Negative zero is folded onto positive zero.
*/
type PointKey [3]uint64

func NewPointKey(x, y, z float64) (pk PointKey) {
	for i, v := range [3]float64{x, y, z} {
		if v == 0 {
			v = 0
		}
		pk[i] = math.Float64bits(v)
	}
	return
}
