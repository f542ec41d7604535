package writers

import (
	"bufio"
	"fmt"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"
)

// OBJWriter writes Wavefront OBJ files for visual inspection of a block topology
type OBJWriter struct {
	Dir string
}

// WriteEdges writes the points as vertices and each edge as a line element to <Dir>/<name>.obj
func (ow *OBJWriter) WriteEdges(name string, points []r3.Vec, edges [][2]int) error {
	return writeFile(filepath.Join(ow.Dir, name+".obj"), func(w *bufio.Writer) {
		fmt.Fprintf(w, "# %s: %d points, %d edges\n", name, len(points), len(edges))
		writeVertices(w, points)
		for _, e := range edges {
			fmt.Fprintf(w, "l %d %d\n", e[0]+1, e[1]+1)
		}
	})
}

// WritePoints writes a point cloud to <Dir>/<name>.obj
func (ow *OBJWriter) WritePoints(name string, points []r3.Vec) error {
	return writeFile(filepath.Join(ow.Dir, name+".obj"), func(w *bufio.Writer) {
		fmt.Fprintf(w, "# %s: %d points\n", name, len(points))
		writeVertices(w, points)
	})
}

func writeVertices(w *bufio.Writer, points []r3.Vec) {
	for _, p := range points {
		fmt.Fprintf(w, "v %.12g %.12g %.12g\n", p.X, p.Y, p.Z)
	}
}
