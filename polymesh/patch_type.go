package polymesh

import (
	"fmt"
	"strings"
)

// PatchType is the closed set of boundary patch behaviours a generated mesh can carry
type PatchType uint8

const (
	// PatchGeneric is a plain boundary with no geometric constraint
	PatchGeneric PatchType = iota
	PatchWall
	PatchEmpty
	PatchSymmetryPlane
	PatchSymmetry
	PatchWedge
	PatchCyclic
)

var patchTypeNames = map[PatchType]string{
	PatchGeneric:       "patch",
	PatchWall:          "wall",
	PatchEmpty:         "empty",
	PatchSymmetryPlane: "symmetryPlane",
	PatchSymmetry:      "symmetry",
	PatchWedge:         "wedge",
	PatchCyclic:        "cyclic",
}

// String returns the dictionary spelling of a PatchType
func (pt PatchType) String() string {
	if name, ok := patchTypeNames[pt]; ok {
		return name
	}
	return "Unknown"
}

// PatchTypeNameMap maps lower-cased type names to their PatchType.
// Keys are lowercase for case-insensitive matching.
var PatchTypeNameMap = map[string]PatchType{
	"patch":         PatchGeneric,
	"wall":          PatchWall,
	"empty":         PatchEmpty,
	"symmetryplane": PatchSymmetryPlane,
	"symmetry":      PatchSymmetry,
	"wedge":         PatchWedge,
	"cyclic":        PatchCyclic,
}

// ParsePatchType converts a type name to a PatchType. An empty name is a generic patch.
func ParsePatchType(name string) (PatchType, error) {
	lowerName := strings.ToLower(strings.TrimSpace(name))
	if lowerName == "" {
		return PatchGeneric, nil
	}
	if pt, ok := PatchTypeNameMap[lowerName]; ok {
		return pt, nil
	}
	return PatchGeneric, fmt.Errorf("unknown patch type %q", name)
}

// IsConstraint reports whether solvers treat the patch as a geometric constraint rather than a physical boundary
func (pt PatchType) IsConstraint() bool {
	switch pt {
	case PatchEmpty, PatchSymmetryPlane, PatchSymmetry, PatchWedge, PatchCyclic:
		return true
	}
	return false
}

// InGroup is the patch group a boundary entry is listed under, empty for a generic patch
func (pt PatchType) InGroup() string {
	switch {
	case pt == PatchWall:
		return "wall"
	case pt.IsConstraint():
		return pt.String()
	}
	return ""
}
