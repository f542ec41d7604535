/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/blockmesh/InputParameters"
	"github.com/notargets/blockmesh/blockmesh"
	"github.com/notargets/blockmesh/polymesh"
	"github.com/notargets/blockmesh/writers"
)

type BlockMeshOptions struct {
	Case, Region, Dict string
	Dump               bool // write the block topology instead of the mesh
	Verbose, Profile   bool
}

func init() {
	rootCmd.Flags().StringP("case", "c", ".", "case directory")
	rootCmd.Flags().StringP("region", "r", "", "mesh region, read from constant/<region>/polyMesh")
	rootCmd.Flags().String("dict", "", "alternative dictionary file, or a directory holding blockMeshDict.{yaml,yml,hcl}")
	rootCmd.Flags().Bool("blockTopology", false, "write the block edges and centres as OBJ files instead of a mesh")
	rootCmd.Flags().BoolP("verbose", "v", false, "print progress")
	rootCmd.Flags().Bool("profile", false, "write a CPU profile to the case directory")
}

func blockMeshOptions(cmd *cobra.Command) (opts *BlockMeshOptions, err error) {
	opts = &BlockMeshOptions{}
	if opts.Case, err = cmd.Flags().GetString("case"); err != nil {
		return
	}
	if opts.Region, err = cmd.Flags().GetString("region"); err != nil {
		return
	}
	if opts.Dict, err = cmd.Flags().GetString("dict"); err != nil {
		return
	}
	opts.Dump, _ = cmd.Flags().GetBool("blockTopology")
	opts.Verbose, _ = cmd.Flags().GetBool("verbose")
	opts.Profile, _ = cmd.Flags().GetBool("profile")
	return
}

// newContext builds the run context from the options and the viper settings
func newContext(opts *BlockMeshOptions, out io.Writer) (ctx *blockmesh.Context, err error) {
	ctx = blockmesh.NewContext(opts.Region)
	ctx.Verbose = opts.Verbose
	ctx.Logger = log.New(out, "", 0)
	ctx.MergeTolerance = viper.GetFloat64("mergeTolerance")
	ctx.DefaultPatch = viper.GetString("defaultPatchName")
	name := viper.GetString("couplingStrategy")
	var ok bool
	if ctx.Strategy, ok = blockmesh.NewCouplingStrategy(name); !ok {
		return nil, fmt.Errorf("unknown coupling strategy %q, use areaOverlap or nearestCentroid", name)
	}
	if ctx.DefaultType, err = polymesh.ParsePatchType(viper.GetString("defaultPatchType")); err != nil {
		return nil, err
	}
	return
}

// RunBlockMesh reads the case dictionary and writes the mesh, or the block topology when dumping
func RunBlockMesh(opts *BlockMeshOptions, out io.Writer) (err error) {
	if opts.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.Case), profile.Quiet).Stop()
	}
	var ctx *blockmesh.Context
	if ctx, err = newContext(opts, out); err != nil {
		return
	}
	path, err := InputParameters.FindDictionary(opts.Case, opts.Region, opts.Dict)
	if err != nil {
		return
	}
	if opts.Verbose {
		ctx.Logger.Printf("Creating block mesh from %q", path)
	}
	bd, err := InputParameters.ReadDictionary(path)
	if err != nil {
		return
	}
	if opts.Verbose {
		bd.Print()
	}
	desc, err := bd.Description()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	topo, err := blockmesh.NewTopology(desc)
	if err != nil {
		return
	}
	pw := writers.NewPolyMeshWriter(opts.Case, opts.Region)
	outputs := blockmesh.Outputs{
		Mesh:     pw,
		CellSets: pw,
		Geometry: &writers.OBJWriter{Dir: opts.Case},
		Report:   out,
	}
	if opts.Verbose {
		if opts.Dump {
			ctx.Logger.Printf("Writing block topology to %s", opts.Case)
		} else {
			ctx.Logger.Printf("Writing polyMesh to %s", pw.Dir)
		}
	}
	return blockmesh.Run(ctx, topo, outputs, opts.Dump)
}
