package writers

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// WriteError reports an output file that could not be written
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("writing %s: %v", e.Path, e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }

// writeFile creates path, hands a buffered writer to fill and wraps any failure in a WriteError
func writeFile(path string, fill func(w *bufio.Writer)) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	file, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = &WriteError{Path: path, Err: cerr}
		}
	}()
	w := bufio.NewWriter(file)
	fill(w)
	if err = w.Flush(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// foamHeader writes the FoamFile dictionary that opens every mesh file
func foamHeader(w *bufio.Writer, class, location, object, note string) {
	fmt.Fprintf(w, "FoamFile\n{\n")
	fmt.Fprintf(w, "    version     2.0;\n")
	fmt.Fprintf(w, "    format      ascii;\n")
	fmt.Fprintf(w, "    class       %s;\n", class)
	if note != "" {
		fmt.Fprintf(w, "    note        \"%s\";\n", note)
	}
	fmt.Fprintf(w, "    location    \"%s\";\n", location)
	fmt.Fprintf(w, "    object      %s;\n", object)
	fmt.Fprintf(w, "}\n\n")
}

func labelList(w *bufio.Writer, labels []int) {
	fmt.Fprintf(w, "%d\n(\n", len(labels))
	for _, l := range labels {
		fmt.Fprintf(w, "%d\n", l)
	}
	fmt.Fprintf(w, ")\n")
}
