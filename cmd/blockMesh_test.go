package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/blockmesh/blockmesh"
)

var channelDict = []byte(`
vertices:
  - [0, 0, 0]
  - [2, 0, 0]
  - [2, 1, 0]
  - [0, 1, 0]
  - [0, 0, 0.1]
  - [2, 0, 0.1]
  - [2, 1, 0.1]
  - [0, 1, 0.1]
blocks:
  - vertices: [0, 1, 2, 3, 4, 5, 6, 7]
    cells: [4, 2, 1]
    zone: channel
patches:
  - name: inlet
    type: patch
    faces: [[0, 4, 7, 3]]
  - name: outlet
    type: patch
    faces: [[1, 2, 6, 5]]
  - name: walls
    type: wall
    faces: [[0, 1, 5, 4], [3, 7, 6, 2]]
`)

func writeCase(t *testing.T, region string) string {
	caseDir := t.TempDir()
	dir := filepath.Join(caseDir, "constant", region, "polyMesh")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blockMeshDict.yaml"), channelDict, 0o644))
	return caseDir
}

func TestRunBlockMesh(t *testing.T) {
	caseDir := writeCase(t, "fluid")
	var out bytes.Buffer
	require.NoError(t, RunBlockMesh(&BlockMeshOptions{Case: caseDir, Region: "fluid", Verbose: true}, &out))

	meshDir := filepath.Join(caseDir, "constant", "fluid", "polyMesh")
	for _, f := range []string{"points", "faces", "owner", "neighbour", "boundary", "cellZones", "sets/channel"} {
		_, err := os.Stat(filepath.Join(meshDir, f))
		assert.NoError(t, err, f)
	}
	report := out.String()
	assert.Equal(t, 1, strings.Count(report, "Creating block mesh from"))
	assert.Contains(t, report, "Generating mesh for 1 blocks, 8 cells")
	assert.Contains(t, report, "nCells: 8")
	assert.Contains(t, report, "name: defaultFaces")
}

func TestRunBlockMeshTopology(t *testing.T) {
	caseDir := writeCase(t, "")
	var out bytes.Buffer
	require.NoError(t, RunBlockMesh(&BlockMeshOptions{Case: caseDir, Dump: true}, &out))
	for _, f := range []string{"blockTopology.obj", "blockCentres.obj"} {
		_, err := os.Stat(filepath.Join(caseDir, f))
		assert.NoError(t, err, f)
	}
	_, err := os.Stat(filepath.Join(caseDir, "constant", "polyMesh", "points"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunBlockMeshErrors(t *testing.T) {
	var out bytes.Buffer
	err := RunBlockMesh(&BlockMeshOptions{Case: t.TempDir()}, &out)
	assert.ErrorContains(t, err, "cannot open mesh description file")

	caseDir := writeCase(t, "")
	bad := filepath.Join(caseDir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, bytes.Replace(channelDict, []byte("[4, 2, 1]"), []byte("[4, 0, 1]"), 1), 0o644))
	err = RunBlockMesh(&BlockMeshOptions{Case: caseDir, Dict: bad}, &out)
	var mte *blockmesh.MalformedTopologyError
	assert.True(t, errors.As(err, &mte))

	viper.Set("couplingStrategy", "magic")
	defer viper.Set("couplingStrategy", "areaOverlap")
	err = RunBlockMesh(&BlockMeshOptions{Case: caseDir}, &out)
	assert.ErrorContains(t, err, "unknown coupling strategy")
}

func TestBlockMeshFlags(t *testing.T) {
	require.NoError(t, rootCmd.ParseFlags([]string{"-c", "case", "-r", "solid", "--blockTopology", "--dict", "d.hcl"}))
	opts, err := blockMeshOptions(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, &BlockMeshOptions{Case: "case", Region: "solid", Dict: "d.hcl", Dump: true}, opts)
}
