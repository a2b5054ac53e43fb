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

// parseBody parses the body of a throwaway module class.
func parseBody(t *testing.T, body string) []ast.Stmt {
	t.Helper()

	prog, err := parser.Parse(source.NewSourceFile("test.phd", []byte("class T(Module):\n"+body)))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	return prog.Body[0].(*ast.ClassDef).Body
}

func unroll(t *testing.T, body string, params map[string]int64) ([]ast.Stmt, *diagnostics.Sink) {
	t.Helper()

	sink := diagnostics.NewSink("T", nil)

	return UnrollBody(parseBody(t, body), params, sink), sink
}

func TestUnroll_00(t *testing.T) {
	out, sink := unroll(t, "    for i in range(8):\n        x = i\n", nil)

	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	if len(out) != 8 {
		t.Fatalf("expected 8 copies, got %d", len(out))
	}

	for k, stmt := range out {
		lit, ok := stmt.(*ast.Assign).Value.(*ast.IntLit)
		if !ok || lit.Value != int64(k) {
			t.Errorf("copy %d: expected substituted literal %d, got %v", k, k, stmt.(*ast.Assign).Value)
		}
	}
}

// The number of unrolled copies of range(a, b, s) is ceil((b-a)/s).
func TestUnroll_01(t *testing.T) {
	tests := []struct {
		rng  string
		want int
	}{
		{"range(0, 8)", 8},
		{"range(2, 8)", 6},
		{"range(1, 8, 3)", 3},
		{"range(0, 7, 2)", 4},
		{"range(0, 8, 2)", 4},
		{"range(7, -1, -1)", 8},
		{"range(5, 5)", 0},
		{"range(8, 0)", 0},
	}

	for _, test := range tests {
		out, sink := unroll(t, "    for i in "+test.rng+":\n        x = i\n", nil)

		if sink.HasErrors() {
			t.Errorf("%s: unexpected diagnostics %v", test.rng, sink.All())
			continue
		}

		if len(out) != test.want {
			t.Errorf("%s: expected %d copies, got %d", test.rng, test.want, len(out))
		}
	}
}

func TestUnroll_02(t *testing.T) {
	// nested loops unroll outside-in: 2 * 3 copies in row-major order.
	out, sink := unroll(t, "    for i in range(2):\n        for j in range(3):\n            x = i * 10 + j\n", nil)

	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	if len(out) != 6 {
		t.Fatalf("expected 6 copies, got %d", len(out))
	}

	for k, want := range []int64{0, 1, 2, 10, 11, 12} {
		got, err := Eval(out[k].(*ast.Assign).Value, nil)
		if err != nil || got != want {
			t.Errorf("copy %d: expected value %d, got %d (%v)", k, want, got, err)
		}
	}
}

func TestUnroll_03(t *testing.T) {
	// the index substitutes inside slice bounds and subscripts.
	out, sink := unroll(t, "    for i in range(1, 2):\n        y = data[i * 4 + 3:i * 4]\n", nil)

	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	slice := out[0].(*ast.Assign).Value.(*ast.Slice)

	hi, err := Eval(slice.Hi, nil)
	if err != nil || hi != 7 {
		t.Errorf("expected hi bound 7, got %v (%v)", hi, err)
	}

	lo, err := Eval(slice.Lo, nil)
	if err != nil || lo != 4 {
		t.Errorf("expected lo bound 4, got %v (%v)", lo, err)
	}
}

func TestUnroll_04(t *testing.T) {
	// loop bounds may reference module parameters.
	out, sink := unroll(t, "    for i in range(n):\n        x = i\n", map[string]int64{"n": 3})

	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	if len(out) != 3 {
		t.Errorf("expected 3 copies, got %d", len(out))
	}
}

func TestUnroll_05(t *testing.T) {
	// loops nested under an if unroll in place, preserving the guard.
	out, sink := unroll(t, "    if en:\n        for i in range(2):\n            x = i\n", nil)

	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	guarded, ok := out[0].(*ast.If)
	if !ok || len(guarded.Body) != 2 {
		t.Fatalf("expected if with 2 unrolled statements, got %v", out[0])
	}
}

func TestUnroll_06(t *testing.T) {
	for _, body := range []string{
		"    for i in items:\n        x = i\n",
		"    for i in range(m):\n        x = i\n",
		"    for i in range(0, 8, 0):\n        x = i\n",
	} {
		_, sink := unroll(t, body, nil)

		if !sink.HasErrors() {
			t.Errorf("expected NonStaticLoop diagnostic for %q", body)
			continue
		}

		if kind := sink.All()[0].Kind; kind != diagnostics.NonStaticLoop {
			t.Errorf("expected NonStaticLoop, got %v", kind)
		}
	}
}
