// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the phdc command-line driver: argument parsing,
// .phd file discovery, diagnostic rendering, and writing the emitted
// SystemVerilog units.
package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "phdc [flags] path",
	Short: "A transpiler from Python-syntax HDL to SystemVerilog.",
	Long: `Compile one .phd file, or every .phd file directly inside a directory, into
	 synthesizable SystemVerilog (one .sv file per emitted module).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		output := GetString(cmd, "out")
		emitHir := GetFlag(cmd, "emit-hir")
		//
		os.Exit(compilePath(args[0], output, emitHir))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(2)
	}
}

func init() {
	rootCmd.Flags().StringP("out", "o", "../hdl", "specify output directory.")
	rootCmd.Flags().BoolP("verbose", "v", false, "enable verbose diagnostics.")
	rootCmd.Flags().Bool("emit-hir", false, "dump each module's classified assignment list to stderr.")
}
