package blockmesh

// Description is the already parsed block mesh dictionary
type Description struct {
	ConvertToMeters float64 // 0 is treated as 1
	Vertices        [][3]float64
	Edges           []EdgeDescription
	Blocks          []BlockDescription
	Patches         []PatchDescription
	MergePatchPairs []MergePairDescription
	DefaultPatch    *PatchDescription // optional name/type override for unclaimed faces
}

// BlockDescription is one hex block
type BlockDescription struct {
	Vertices [8]int
	Cells    [3]int
	// Grading holds 0 (uniform), 3 (one expansion ratio per axis) or 12 (one per edge) values
	Grading []float64
	Zone    string
}

// EdgeDescription is a curved edge between two vertices
type EdgeDescription struct {
	Type       string // "arc", "polyLine" or "line"
	Start, End int
	Points     [][3]float64
}

// PatchDescription names a group of block faces given by their vertex loops
type PatchDescription struct {
	Name  string
	Type  string
	Faces [][]int
}

// MergePairDescription declares a master/slave patch pair to be reconciled
type MergePairDescription struct {
	Master, Slave string
	Tolerant      bool // fall back to a sliding interface when the faces do not coincide
}
