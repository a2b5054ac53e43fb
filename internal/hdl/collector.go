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
	"github.com/tky-kevin/phdc/internal/ast"
	"github.com/tky-kevin/phdc/internal/diagnostics"
)

// CollectModules walks a parsed program's top-level statements and returns
// the class definitions whose base list mentions Module, in source order.
// A duplicate module name reports DuplicateDefinition against sink and
// keeps only the first definition.
func CollectModules(prog *ast.Program, sink *diagnostics.Sink) []*ast.ClassDef {
	var modules []*ast.ClassDef

	seen := map[string]bool{}

	for _, stmt := range prog.Body {
		cd, ok := stmt.(*ast.ClassDef)
		if !ok || !cd.HasBase("Module") {
			continue
		}

		if seen[cd.Name] {
			sink.ReportAt(cd.Name, diagnostics.DuplicateDefinition, cd.Span(), "duplicate module definition")
			continue
		}

		seen[cd.Name] = true

		modules = append(modules, cd)
	}

	return modules
}
