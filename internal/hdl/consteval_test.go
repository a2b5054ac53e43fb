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
	"errors"
	"testing"

	"github.com/tky-kevin/phdc/internal/ast"
	"github.com/tky-kevin/phdc/internal/parser"
	"github.com/tky-kevin/phdc/pkg/util/source"
)

// parseExprText parses `x = <text>` inside a throwaway class and returns the
// right-hand side expression.
func parseExprText(t *testing.T, text string) ast.Expr {
	t.Helper()

	src := "class T(Module):\n    x = " + text + "\n"

	prog, err := parser.Parse(source.NewSourceFile("test.phd", []byte(src)))
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %v", text, err)
	}

	cd := prog.Body[0].(*ast.ClassDef)

	return cd.Body[0].(*ast.Assign).Value
}

func TestEval_00(t *testing.T) {
	env := map[string]int64{"width": 8, "depth": 3}

	tests := []struct {
		expr string
		want int64
	}{
		{"42", 42},
		{"width", 8},
		{"-width", -8},
		{"~0", -1},
		{"width + 1", 9},
		{"width - depth", 5},
		{"width * depth", 24},
		{"width / depth", 2},
		{"width % depth", 2},
		{"1 << depth", 8},
		{"width >> 2", 2},
		{"width & depth", 0},
		{"width | depth", 11},
		{"width ^ depth", 11},
		{"width == 8", 1},
		{"width != 8", 0},
		{"width < depth", 0},
		{"width >= depth", 1},
		{"(width + depth) * 2", 22},
	}

	for _, test := range tests {
		got, err := Eval(parseExprText(t, test.expr), env)
		if err != nil {
			t.Errorf("Eval(%q): unexpected error %v", test.expr, err)
			continue
		}

		if got != test.want {
			t.Errorf("Eval(%q) = %d, expected %d", test.expr, got, test.want)
		}
	}
}

func TestEval_01(t *testing.T) {
	var undeclared *UndeclaredNameErr

	_, err := Eval(parseExprText(t, "missing + 1"), nil)
	if !errors.As(err, &undeclared) {
		t.Fatalf("expected UndeclaredNameErr, got %v", err)
	}

	if undeclared.Name != "missing" {
		t.Errorf("expected offending name missing, got %q", undeclared.Name)
	}
}

func TestEval_02(t *testing.T) {
	var nonStatic *NonStaticErr

	for _, text := range []string{"f(1)", "a.b", "x[1]", "(1, 2)", "1 / 0", "1 % 0"} {
		env := map[string]int64{"a": 1, "x": 1}

		if _, err := Eval(parseExprText(t, text), env); !errors.As(err, &nonStatic) {
			t.Errorf("Eval(%q): expected NonStaticErr, got %v", text, err)
		}
	}
}

func TestEvalRange_00(t *testing.T) {
	env := map[string]int64{"n": 8}

	tests := []struct {
		expr              string
		start, stop, step int64
	}{
		{"range(8)", 0, 8, 1},
		{"range(n)", 0, 8, 1},
		{"range(2, n)", 2, 8, 1},
		{"range(1, n, 3)", 1, 8, 3},
		{"range(7, -1, -1)", 7, -1, -1},
	}

	for _, test := range tests {
		start, stop, step, err := EvalRange(parseExprText(t, test.expr), env)
		if err != nil {
			t.Errorf("EvalRange(%q): unexpected error %v", test.expr, err)
			continue
		}

		if start != test.start || stop != test.stop || step != test.step {
			t.Errorf("EvalRange(%q) = (%d, %d, %d), expected (%d, %d, %d)",
				test.expr, start, stop, step, test.start, test.stop, test.step)
		}
	}
}

func TestEvalRange_01(t *testing.T) {
	for _, text := range []string{"items", "reversed(range(8))", "range()", "range(1, 2, 3, 4)", "range(n)"} {
		if _, _, _, err := EvalRange(parseExprText(t, text), nil); err == nil {
			t.Errorf("EvalRange(%q): expected error", text)
		}
	}
}

func TestWidthFromExpr_00(t *testing.T) {
	env := map[string]int64{"width": 16, "depth": 4}

	tests := []struct {
		expr string
		want Shape
	}{
		{"bit", Shape{Width: 1}},
		{"bit[8]", Shape{Width: 8}},
		{"bit[width]", Shape{Width: 16}},
		{"bit[width + 1]", Shape{Width: 17}},
		{"bit[8][depth]", Shape{Width: 8, Depth: 4}},
	}

	for _, test := range tests {
		got, err := widthFromExpr(parseExprText(t, test.expr), env)
		if err != nil {
			t.Errorf("widthFromExpr(%q): unexpected error %v", test.expr, err)
			continue
		}

		if got != test.want {
			t.Errorf("widthFromExpr(%q) = %+v, expected %+v", test.expr, got, test.want)
		}
	}
}

func TestWidthFromExpr_01(t *testing.T) {
	env := map[string]int64{"zero": 0}

	for _, text := range []string{"8", "word[8]", "bit[unbound]", "bit[zero]", "bit[0][4]", "bit[8][0]"} {
		if _, err := widthFromExpr(parseExprText(t, text), env); err == nil {
			t.Errorf("widthFromExpr(%q): expected error", text)
		}
	}
}

func TestBitWidthOf_00(t *testing.T) {
	tests := []struct {
		value int64
		want  int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {7, 3}, {8, 4}, {255, 8}, {256, 9},
	}

	for _, test := range tests {
		if got := bitWidthOf(test.value); got != test.want {
			t.Errorf("bitWidthOf(%d) = %d, expected %d", test.value, got, test.want)
		}
	}
}
