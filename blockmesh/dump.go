package blockmesh

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/blockmesh/types"
)

// TopologyDump is the block skeleton written for inspection in place of a mesh
type TopologyDump struct {
	Points    []r3.Vec // the vertex pool
	Edges     [][2]int // unique block edges in first-seen order, lower vertex first
	Centroids []r3.Vec // one per block, the mean of its eight vertices
}

// DumpTopology collects the unique block edges and block centroids
func DumpTopology(topo *Topology) *TopologyDump {
	d := &TopologyDump{Points: append([]r3.Vec(nil), topo.vertices...)}
	seen := make(map[types.EdgeKey]bool)
	for i := range topo.blocks {
		b := &topo.blocks[i]
		var c r3.Vec
		for _, v := range b.Vertices {
			c = r3.Add(c, topo.vertices[v])
		}
		d.Centroids = append(d.Centroids, r3.Scale(1./8., c))
		for _, e := range hexEdges {
			v0, v1 := b.Vertices[e[0]], b.Vertices[e[1]]
			if v0 == v1 {
				continue
			}
			key := types.NewEdgeKey([2]int{v0, v1})
			if seen[key] {
				continue
			}
			seen[key] = true
			d.Edges = append(d.Edges, key.GetVertices(false))
		}
	}
	return d
}
