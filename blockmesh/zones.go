package blockmesh

import (
	"github.com/notargets/blockmesh/polymesh"
)

// PartitionZones groups cells into zones named by their blocks. Zones are indexed in the order their
// names are first met, blocks without a zone name contribute nothing. Every zone also yields a cell set.
func PartitionZones(ctx *Context, topo *Topology) (zones []polymesh.Zone, sets []polymesh.CellSet) {
	var (
		index  = make(map[string]int)
		offset int
	)
	for i := range topo.blocks {
		b := &topo.blocks[i]
		n := b.NumCells()
		if b.Zone != "" {
			zi, ok := index[b.Zone]
			if !ok {
				zi = len(zones)
				index[b.Zone] = zi
				zones = append(zones, polymesh.Zone{Name: b.Zone, Index: zi})
			}
			for c := offset; c < offset+n; c++ {
				zones[zi].Cells = append(zones[zi].Cells, c)
			}
		}
		offset += n
	}
	for _, z := range zones {
		sets = append(sets, polymesh.CellSet{Name: z.Name, Cells: append([]int(nil), z.Cells...)})
		ctx.logf("Zone %d %s has %d cells", z.Index, z.Name, len(z.Cells))
	}
	return
}
