package writers

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/notargets/blockmesh/polymesh"
)

// PolyMeshWriter writes a mesh as ASCII polyMesh files and its cell sets under sets/
type PolyMeshWriter struct {
	Dir      string // the polyMesh directory
	location string
}

// NewPolyMeshWriter targets <caseDir>/constant/[<region>/]polyMesh
func NewPolyMeshWriter(caseDir, region string) *PolyMeshWriter {
	location := filepath.Join("constant", region, "polyMesh")
	return &PolyMeshWriter{Dir: filepath.Join(caseDir, location), location: filepath.ToSlash(location)}
}

type meshFile struct {
	name string
	fill func(w *bufio.Writer)
}

func (pw *PolyMeshWriter) path(name string) string { return filepath.Join(pw.Dir, name) }

// ownedFiles are the polyMesh entries a previous run may have left behind
var ownedFiles = []string{"points", "faces", "owner", "neighbour", "boundary", "cellZones", "couplings", "sets"}

// removeFiles deletes the files an earlier run wrote
func (pw *PolyMeshWriter) removeFiles() error {
	if info, err := os.Stat(pw.Dir); err != nil || !info.IsDir() {
		return nil
	}
	for _, name := range ownedFiles {
		if err := os.RemoveAll(pw.path(name)); err != nil {
			return &WriteError{Path: pw.path(name), Err: err}
		}
	}
	return nil
}

// WriteMesh replaces any previous mesh files with points, faces, owner, neighbour, boundary
// and, when present, cellZones and couplings
func (pw *PolyMeshWriter) WriteMesh(m *polymesh.PolyMesh) error {
	if err := pw.removeFiles(); err != nil {
		return err
	}
	note := fmt.Sprintf("nPoints:%d  nCells:%d  nFaces:%d  nInternalFaces:%d",
		m.NumPoints(), m.NumCells(), m.NumFaces(), m.NInternalFaces)
	steps := []meshFile{
		{"points", func(w *bufio.Writer) {
			foamHeader(w, "vectorField", pw.location, "points", "")
			fmt.Fprintf(w, "%d\n(\n", m.NumPoints())
			for _, p := range m.Points {
				fmt.Fprintf(w, "(%.12g %.12g %.12g)\n", p.X, p.Y, p.Z)
			}
			fmt.Fprintf(w, ")\n")
		}},
		{"faces", func(w *bufio.Writer) {
			foamHeader(w, "faceList", pw.location, "faces", "")
			fmt.Fprintf(w, "%d\n(\n", m.NumFaces())
			for _, f := range m.Faces {
				fmt.Fprintf(w, "%d(", len(f.Points))
				for i, p := range f.Points {
					if i > 0 {
						fmt.Fprintf(w, " ")
					}
					fmt.Fprintf(w, "%d", p)
				}
				fmt.Fprintf(w, ")\n")
			}
			fmt.Fprintf(w, ")\n")
		}},
		{"owner", func(w *bufio.Writer) {
			foamHeader(w, "labelList", pw.location, "owner", note)
			labelList(w, m.Owner())
		}},
		{"neighbour", func(w *bufio.Writer) {
			foamHeader(w, "labelList", pw.location, "neighbour", note)
			labelList(w, m.Neighbour())
		}},
		{"boundary", func(w *bufio.Writer) {
			foamHeader(w, "polyBoundaryMesh", pw.location, "boundary", "")
			fmt.Fprintf(w, "%d\n(\n", len(m.Patches))
			for _, p := range m.Patches {
				fmt.Fprintf(w, "    %s\n    {\n", p.Name)
				fmt.Fprintf(w, "        type            %s;\n", p.Type)
				if g := p.Type.InGroup(); g != "" {
					fmt.Fprintf(w, "        inGroups        List<word> 1(%s);\n", g)
				}
				fmt.Fprintf(w, "        nFaces          %d;\n", p.Size)
				fmt.Fprintf(w, "        startFace       %d;\n", p.Start)
				fmt.Fprintf(w, "    }\n")
			}
			fmt.Fprintf(w, ")\n")
		}},
	}
	if len(m.Zones) > 0 {
		steps = append(steps, meshFile{"cellZones", func(w *bufio.Writer) {
			foamHeader(w, "regIOobject", pw.location, "cellZones", "")
			fmt.Fprintf(w, "%d\n(\n", len(m.Zones))
			for _, z := range m.Zones {
				fmt.Fprintf(w, "%s\n{\n    type cellZone;\ncellLabels      List<label> ", z.Name)
				labelList(w, z.Cells)
				fmt.Fprintf(w, ";\n}\n")
			}
			fmt.Fprintf(w, ")\n")
		}})
	}
	if len(m.Couplings) > 0 {
		steps = append(steps, meshFile{"couplings", func(w *bufio.Writer) {
			foamHeader(w, "dictionary", pw.location, "couplings", "")
			for _, c := range m.Couplings {
				fmt.Fprintf(w, "%s_%s\n{\n", c.Master, c.Slave)
				fmt.Fprintf(w, "    master  %s;\n    slave   %s;\n", c.Master, c.Slave)
				fmt.Fprintf(w, "    pairs   %d\n    (\n", len(c.Pairs))
				for _, p := range c.Pairs {
					fmt.Fprintf(w, "        (%d %d %.12g)\n", p.MasterFace, p.SlaveFace, p.Weight)
				}
				fmt.Fprintf(w, "    );\n}\n")
			}
		}})
	}
	for _, s := range steps {
		if err := writeFile(pw.path(s.name), s.fill); err != nil {
			return err
		}
	}
	return nil
}

// WriteCellSet writes one cellSet file to sets/<name>
func (pw *PolyMeshWriter) WriteCellSet(set polymesh.CellSet) error {
	return writeFile(pw.path(filepath.Join("sets", set.Name)), func(w *bufio.Writer) {
		foamHeader(w, "cellSet", pw.location+"/sets", set.Name, "")
		labelList(w, set.Cells)
	})
}
