package InputParameters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/notargets/blockmesh/blockmesh"
)

// DictionaryName is the base name of the mesh description file
const DictionaryName = "blockMeshDict"

// DictionaryExtensions are tried in order when looking a dictionary up in a directory
var DictionaryExtensions = []string{".yaml", ".yml", ".hcl"}

// BlockMeshDict is the block mesh dictionary as read from YAML or HCL
type BlockMeshDict struct {
	ConvertToMeters float64          `json:"convertToMeters" hcl:"convert_to_meters,optional"`
	Vertices        [][]float64      `json:"vertices" hcl:"vertices"`
	Blocks          []BlockEntry     `json:"blocks" hcl:"block,block"`
	Edges           []EdgeEntry      `json:"edges" hcl:"edge,block"`
	Patches         []PatchEntry     `json:"patches" hcl:"patch,block"`
	DefaultPatch    *DefaultPatch    `json:"defaultPatch" hcl:"default_patch,block"`
	MergePatchPairs []MergePairEntry `json:"mergePatchPairs" hcl:"merge_patch_pair,block"`
}

type BlockEntry struct {
	Vertices []int     `json:"vertices" hcl:"vertices"`
	Cells    []int     `json:"cells" hcl:"cells"`
	Grading  []float64 `json:"grading" hcl:"grading,optional"` // 3 ratios for simpleGrading, 12 for edgeGrading
	Zone     string    `json:"zone" hcl:"zone,optional"`
}

type EdgeEntry struct {
	Type   string      `json:"type" hcl:"type,label"` // arc, polyLine or line
	Start  int         `json:"start" hcl:"start"`
	End    int         `json:"end" hcl:"end"`
	Points [][]float64 `json:"points" hcl:"points,optional"`
}

type PatchEntry struct {
	Name  string  `json:"name" hcl:"name,label"`
	Type  string  `json:"type" hcl:"type,optional"`
	Faces [][]int `json:"faces" hcl:"faces"`
}

type DefaultPatch struct {
	Name string `json:"name" hcl:"name,optional"`
	Type string `json:"type" hcl:"type,optional"`
}

type MergePairEntry struct {
	Master   string `json:"master" hcl:"master"`
	Slave    string `json:"slave" hcl:"slave"`
	Tolerant bool   `json:"tolerant" hcl:"tolerant,optional"`
}

// Parse reads a YAML dictionary
func (bd *BlockMeshDict) Parse(data []byte) error {
	return yaml.Unmarshal(data, bd)
}

// ParseHCL reads an HCL dictionary, filename is used in diagnostics
func (bd *BlockMeshDict) ParseHCL(data []byte, filename string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %s", filename, diags.Error())
	}
	if diags = gohcl.DecodeBody(file.Body, nil, bd); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %s", filename, diags.Error())
	}
	return nil
}

func (bd *BlockMeshDict) Print() {
	fmt.Printf("%8.5g\t\t= convertToMeters\n", bd.ConvertToMeters)
	fmt.Printf("[%d]\t\t\t= Vertices\n", len(bd.Vertices))
	fmt.Printf("[%d]\t\t\t= Blocks\n", len(bd.Blocks))
	fmt.Printf("[%d]\t\t\t= Curved Edges\n", len(bd.Edges))
	for _, p := range bd.Patches {
		fmt.Printf("Patch[%s] = %s, %d faces\n", p.Name, p.Type, len(p.Faces))
	}
	for _, mp := range bd.MergePatchPairs {
		fmt.Printf("Merge[%s %s] tolerant = %v\n", mp.Master, mp.Slave, mp.Tolerant)
	}
}

// Description checks the entry shapes and converts the dictionary for the mesher
func (bd *BlockMeshDict) Description() (desc blockmesh.Description, err error) {
	desc.ConvertToMeters = bd.ConvertToMeters
	if desc.Vertices, err = triples("vertex", bd.Vertices); err != nil {
		return
	}
	for i, b := range bd.Blocks {
		if len(b.Vertices) != 8 {
			err = fmt.Errorf("block %d: need 8 vertices, have %d", i, len(b.Vertices))
			return
		}
		if len(b.Cells) != 3 {
			err = fmt.Errorf("block %d: need 3 cell counts, have %d", i, len(b.Cells))
			return
		}
		bl := blockmesh.BlockDescription{Grading: b.Grading, Zone: b.Zone}
		copy(bl.Vertices[:], b.Vertices)
		copy(bl.Cells[:], b.Cells)
		desc.Blocks = append(desc.Blocks, bl)
	}
	for i, e := range bd.Edges {
		ed := blockmesh.EdgeDescription{Type: e.Type, Start: e.Start, End: e.End}
		if ed.Points, err = triples(fmt.Sprintf("edge %d point", i), e.Points); err != nil {
			return
		}
		desc.Edges = append(desc.Edges, ed)
	}
	for _, p := range bd.Patches {
		desc.Patches = append(desc.Patches, blockmesh.PatchDescription{Name: p.Name, Type: p.Type, Faces: p.Faces})
	}
	if bd.DefaultPatch != nil {
		desc.DefaultPatch = &blockmesh.PatchDescription{Name: bd.DefaultPatch.Name, Type: bd.DefaultPatch.Type}
	}
	for _, mp := range bd.MergePatchPairs {
		desc.MergePatchPairs = append(desc.MergePatchPairs,
			blockmesh.MergePairDescription{Master: mp.Master, Slave: mp.Slave, Tolerant: mp.Tolerant})
	}
	return
}

func triples(what string, in [][]float64) (out [][3]float64, err error) {
	out = make([][3]float64, len(in))
	for i, v := range in {
		if len(v) != 3 {
			return nil, fmt.Errorf("%s %d: need 3 coordinates, have %d", what, i, len(v))
		}
		copy(out[i][:], v)
	}
	return
}

// FindDictionary resolves the dictionary path. dict may name a file or a directory, when empty the
// dictionary is looked up in <caseDir>/constant/[<region>/]polyMesh.
func FindDictionary(caseDir, region, dict string) (string, error) {
	dir := filepath.Join(caseDir, "constant", region, "polyMesh")
	if dict != "" {
		info, err := os.Stat(dict)
		if err != nil {
			return "", fmt.Errorf("cannot open mesh description file %s: %w", dict, err)
		}
		if !info.IsDir() {
			return dict, nil
		}
		dir = dict
	}
	for _, ext := range DictionaryExtensions {
		path := filepath.Join(dir, DictionaryName+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("cannot open mesh description file %s",
		filepath.Join(dir, DictionaryName+"{"+strings.Join(DictionaryExtensions, ",")+"}"))
}

// ReadDictionary reads a dictionary file, choosing the syntax from its extension
func ReadDictionary(path string) (bd *BlockMeshDict, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("cannot open mesh description file %s: %w", path, err)
	}
	bd = &BlockMeshDict{}
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		err = bd.ParseHCL(data, path)
	} else if err = bd.Parse(data); err != nil {
		err = fmt.Errorf("failed to parse YAML file %s: %w", path, err)
	}
	if err != nil {
		return nil, err
	}
	return
}
