package blockmesh

import "fmt"

// MalformedTopologyError reports bad or out of range structural input
type MalformedTopologyError struct {
	Entity string // offending block, patch or merge pair
	Reason string
}

func (e *MalformedTopologyError) Error() string {
	return fmt.Sprintf("malformed topology: %s: %s", e.Entity, e.Reason)
}

// DegenerateGeometryError reports a non-positive cell volume or an invalid grading
type DegenerateGeometryError struct {
	Block  string
	Reason string
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate geometry in %s: %s", e.Block, e.Reason)
}

// UnmatchedFaceError reports a declared patch face that is not a block boundary face
type UnmatchedFaceError struct {
	Patch  string
	Face   []int
	Reason string
}

func (e *UnmatchedFaceError) Error() string {
	return fmt.Sprintf("patch %s: face %v %s", e.Patch, e.Face, e.Reason)
}

// MergeError reports a merge pair whose faces do not coincide and that is not tolerant
type MergeError struct {
	Master, Slave string
	SlaveFace     int // slave patch local index of the first unmatched face, -1 when none
	Reason        string
}

func (e *MergeError) Error() string {
	if e.SlaveFace < 0 {
		return fmt.Sprintf("merge pair (%s %s): %s", e.Master, e.Slave, e.Reason)
	}
	return fmt.Sprintf("merge pair (%s %s): slave face %d: %s", e.Master, e.Slave, e.SlaveFace, e.Reason)
}

// InvalidMeshError reports a failed post assembly sanity check
type InvalidMeshError struct {
	Cell, Face int // -1 when not applicable
	Reason     string
}

func (e *InvalidMeshError) Error() string {
	switch {
	case e.Cell >= 0:
		return fmt.Sprintf("invalid mesh: cell %d: %s", e.Cell, e.Reason)
	case e.Face >= 0:
		return fmt.Sprintf("invalid mesh: face %d: %s", e.Face, e.Reason)
	}
	return "invalid mesh: " + e.Reason
}
