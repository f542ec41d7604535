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
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/blockmesh/blockmesh"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blockMesh",
	Short: "Multi-block structured mesh generator",
	Long: `
Builds a finite volume polyMesh from a block mesh dictionary. Each hexahedral block is divided
into a graded lattice of cells, shared and merged block faces are stitched together and the
remaining faces are sorted into boundary patches.

blockMesh -c <case> [-r <region>] [--dict <file or directory>] [--blockTopology]`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := blockMeshOptions(cmd)
		if err != nil {
			return err
		}
		return RunBlockMesh(opts, os.Stdout)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.blockMesh.yaml)")

	viper.SetDefault("mergeTolerance", blockmesh.DefaultMergeTolerance)
	viper.SetDefault("couplingStrategy", "areaOverlap")
	viper.SetDefault("defaultPatchName", blockmesh.DefaultPatchName)
	viper.SetDefault("defaultPatchType", "empty")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".blockMesh" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".blockMesh")
	}

	viper.SetEnvPrefix("BLOCKMESH")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
