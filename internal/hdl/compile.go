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
package hdl

import (
	"path/filepath"

	"github.com/tky-kevin/phdc/internal/diagnostics"
	"github.com/tky-kevin/phdc/internal/parser"
	"github.com/tky-kevin/phdc/pkg/util/source"
)

// Unit is one emitted SystemVerilog compilation unit: a concrete module or
// one monomorphization of a template, destined for {Name}.sv.
type Unit struct {
	Name     string
	Contents string
	Module   *Module
}

// CompileFile runs the whole pipeline over one source file: parse, collect
// module classes, elaborate every concrete module (templates elaborate on
// demand at their instantiation sites), and emit SystemVerilog for each
// successfully elaborated descriptor. A module whose sink holds an error
// produces no unit; its siblings still do. The returned sinks carry every
// diagnostic raised, one sink per module plus one for file-level problems.
func CompileFile(file *source.File) ([]Unit, []*diagnostics.Sink) {
	fileSink := diagnostics.NewSink(filepath.Base(file.Filename()), file)

	prog, err := parser.Parse(file)
	if err != nil {
		if se, ok := err.(*source.SyntaxError); ok {
			fileSink.ReportAt("", diagnostics.ParseError, se.Span(), se.Message())
		} else {
			fileSink.Report("", diagnostics.ParseError, err.Error())
		}

		return nil, []*diagnostics.Sink{fileSink}
	}

	classes := CollectModules(prog, fileSink)
	reg := NewRegistry(classes)

	for _, cd := range classes {
		if reg.IsTemplate(cd.Name) {
			// nothing to emit until an instantiation binds the free
			// parameters; Resolve does that from within a parent build.
			continue
		}

		reg.BuildConcrete(cd, file)
	}

	var (
		units []Unit
		sinks []*diagnostics.Sink
	)

	if len(fileSink.All()) > 0 {
		sinks = append(sinks, fileSink)
	}

	for _, br := range reg.Built() {
		sinks = append(sinks, br.Sink)

		if br.Module != nil {
			units = append(units, Unit{
				Name:     br.Module.EmittedName,
				Contents: EmitModule(br.Module),
				Module:   br.Module,
			})
		}
	}

	return units, sinks
}
