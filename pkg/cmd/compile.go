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
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tky-kevin/phdc/internal/diagnostics"
	"github.com/tky-kevin/phdc/internal/hdl"
	"github.com/tky-kevin/phdc/pkg/util/source"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// compilePath compiles the file or directory at input into outDir and
// returns the process exit code: 0 on success, 1 if any module failed to
// compile, 2 on a usage or I/O problem.
func compilePath(input, outDir string, emitHir bool) int {
	files, err := discoverInputs(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	color := term.IsTerminal(int(os.Stderr.Fd()))
	failed := false

	for _, path := range files {
		bytes, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}

		log.WithFields(log.Fields{"file": path}).Debug("compiling")

		units, sinks := hdl.CompileFile(source.NewSourceFile(path, bytes))

		for _, sink := range sinks {
			for _, d := range sink.All() {
				diagnostics.Render(os.Stderr, d, color)
			}

			if sink.HasErrors() {
				failed = true
			}
		}

		for _, u := range units {
			if emitHir {
				hdl.DumpHIR(os.Stderr, u.Module)
			}

			dest := filepath.Join(outDir, u.Name+".sv")
			if err := os.WriteFile(dest, []byte(u.Contents), 0644); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 2
			}

			log.WithFields(log.Fields{"module": u.Name, "file": dest}).Debug("wrote")
		}
	}

	if failed {
		return 1
	}

	return 0
}

// discoverInputs resolves the positional argument to the list of .phd files
// to compile: the file itself, or every .phd directly inside a directory
// (single level, sorted by name for reproducible diagnostic order).
func discoverInputs(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, err
	}

	var files []string

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".phd") {
			continue
		}

		files = append(files, filepath.Join(input, e.Name()))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no .phd files found in %s", input)
	}

	sort.Strings(files)

	return files, nil
}
