package blockmesh

import (
	"io"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/blockmesh/polymesh"
)

// MeshWriter persists a finished mesh
type MeshWriter interface {
	WriteMesh(m *polymesh.PolyMesh) error
}

// CellSetWriter persists one named cell set
type CellSetWriter interface {
	WriteCellSet(set polymesh.CellSet) error
}

// GeometryWriter persists inspection geometry under a base name
type GeometryWriter interface {
	WriteEdges(name string, points []r3.Vec, edges [][2]int) error
	WritePoints(name string, points []r3.Vec) error
}

// Outputs are the sinks Run writes to. Nil members are skipped.
type Outputs struct {
	Mesh     MeshWriter
	CellSets CellSetWriter
	Geometry GeometryWriter
	Report   io.Writer
}

// Run either dumps the block topology or generates the mesh and writes it with its cell sets and report
func Run(ctx *Context, topo *Topology, out Outputs, dump bool) error {
	if dump {
		d := DumpTopology(topo)
		ctx.logf("Dumping %d block edges and %d block centres", len(d.Edges), len(d.Centroids))
		if out.Geometry == nil {
			return nil
		}
		if err := out.Geometry.WriteEdges("blockTopology", d.Points, d.Edges); err != nil {
			return err
		}
		return out.Geometry.WritePoints("blockCentres", d.Centroids)
	}
	m, err := GenerateMesh(ctx, topo)
	if err != nil {
		return err
	}
	if out.Mesh != nil {
		if err = out.Mesh.WriteMesh(m); err != nil {
			return err
		}
	}
	if out.CellSets != nil {
		for _, set := range m.CellSets {
			if err = out.CellSets.WriteCellSet(set); err != nil {
				return err
			}
		}
	}
	if out.Report != nil {
		m.PrintStatistics(out.Report)
	}
	return nil
}
