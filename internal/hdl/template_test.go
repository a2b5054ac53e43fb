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
	"testing"

	"github.com/tky-kevin/phdc/internal/ast"
	"github.com/tky-kevin/phdc/internal/diagnostics"
	"github.com/tky-kevin/phdc/internal/parser"
	"github.com/tky-kevin/phdc/pkg/util/source"
)

const paramAdderSrc = `from phd import bit, In, Out, Module

class ParamAdder(Module):
    a = In(bit[width])
    b = In(bit[width])
    sum = Out(bit[width + 1])
    sum = a + b
`

func parseFile(t *testing.T, text string) (*source.File, []*ast.ClassDef) {
	t.Helper()

	file := source.NewSourceFile("test.phd", []byte(text))

	prog, err := parser.Parse(file)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	sink := diagnostics.NewSink("test.phd", file)
	classes := CollectModules(prog, sink)

	if sink.HasErrors() {
		t.Fatalf("unexpected collection diagnostics: %v", sink.All())
	}

	return file, classes
}

func TestFreeNames_00(t *testing.T) {
	_, classes := parseFile(t, paramAdderSrc)

	free, _ := freeNames(classes[0])

	if len(free) != 1 || free[0] != "width" {
		t.Errorf("expected free names [width], got %v", free)
	}
}

func TestFreeNames_01(t *testing.T) {
	// a width name bound by the module's own parameter assignment is not free.
	_, classes := parseFile(t, `class Fixed(Module):
    width = 8
    d = In(bit[width])
    q = Out(bit[width])
    q = d
`)

	free, _ := freeNames(classes[0])

	if len(free) != 0 {
		t.Errorf("expected no free names, got %v", free)
	}
}

func TestFreeNames_02(t *testing.T) {
	// loop indices used in subscripts are bound by the loop, not free;
	// free names surface in declaration order of first reference.
	_, classes := parseFile(t, `class Shifty(Module):
    d = In(bit[width])
    q = Out(bit[depth])
    for i in range(4):
        q = d[i]
`)

	free, _ := freeNames(classes[0])

	if len(free) != 2 || free[0] != "width" || free[1] != "depth" {
		t.Errorf("expected free names [width depth], got %v", free)
	}
}

func TestRegistry_00(t *testing.T) {
	_, classes := parseFile(t, paramAdderSrc)
	reg := NewRegistry(classes)

	if !reg.Has("ParamAdder") || reg.Has("Other") {
		t.Error("registry membership is wrong")
	}

	if !reg.IsTemplate("ParamAdder") {
		t.Error("expected ParamAdder to be a template")
	}
}

func TestMonomorphize_00(t *testing.T) {
	file, classes := parseFile(t, paramAdderSrc)
	reg := NewRegistry(classes)

	br, err := reg.Monomorphize("ParamAdder", map[string]int64{"width": 8}, file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if br.Module == nil {
		t.Fatalf("monomorphization failed: %v", br.Sink.All())
	}

	if br.Module.EmittedName != "ParamAdder_width8" {
		t.Errorf("expected emitted name ParamAdder_width8, got %q", br.Module.EmittedName)
	}

	checkPortWidth(t, br.Module, "a", 8)
	checkPortWidth(t, br.Module, "b", 8)
	checkPortWidth(t, br.Module, "sum", 9)
}

// Monomorphization is memoized: reinstantiation with the same parameter
// tuple reuses the cached descriptor, so K uses emit one definition.
func TestMonomorphize_01(t *testing.T) {
	file, classes := parseFile(t, paramAdderSrc)
	reg := NewRegistry(classes)

	first, err := reg.Monomorphize("ParamAdder", map[string]int64{"width": 8}, file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := reg.Monomorphize("ParamAdder", map[string]int64{"width": 8}, file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("expected the cached build result to be reused")
	}

	other, err := reg.Monomorphize("ParamAdder", map[string]int64{"width": 16}, file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if other == first {
		t.Error("distinct parameter tuples must not share a descriptor")
	}

	if len(reg.Built()) != 2 {
		t.Errorf("expected 2 built descriptors, got %d", len(reg.Built()))
	}
}

func TestMonomorphize_02(t *testing.T) {
	file, classes := parseFile(t, paramAdderSrc)
	reg := NewRegistry(classes)

	if _, err := reg.Monomorphize("ParamAdder", map[string]int64{}, file); err == nil {
		t.Error("expected missing-parameter error")
	}

	if _, err := reg.Monomorphize("NoSuch", map[string]int64{"width": 8}, file); err == nil {
		t.Error("expected unknown-module error")
	}
}

func checkPortWidth(t *testing.T, m *Module, name string, width int) {
	t.Helper()

	p := m.LookupPort(name)
	if p == nil {
		t.Errorf("missing port %q", name)
		return
	}

	if p.Shape.Width != width {
		t.Errorf("port %q: expected width %d, got %d", name, width, p.Shape.Width)
	}
}
