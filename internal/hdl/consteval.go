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
	"fmt"

	"github.com/tky-kevin/phdc/internal/ast"
)

// UndeclaredNameErr is returned by Eval when an expression references a name
// with no binding in the supplied environment.
type UndeclaredNameErr struct{ Name string }

func (e *UndeclaredNameErr) Error() string { return fmt.Sprintf("undeclared name %q", e.Name) }

// NonStaticErr is returned by Eval when an expression uses a construct the
// constant evaluator does not accept (any call, a slice, an attribute
// access, etc).
type NonStaticErr struct{ Reason string }

func (e *NonStaticErr) Error() string { return e.Reason }

// Eval evaluates expr to an integer under the bindings in env. It accepts
// integer literals, names, unary `- + ~`, binary `+ - * / % << >> & | ^`,
// and comparisons (yielding 0 or 1). Anything else - any call (range(...)
// is handled by EvalRange), a slice, an attribute, a tuple - is rejected
// with NonStaticErr; an unbound name is rejected with UndeclaredNameErr.
func Eval(expr ast.Expr, env map[string]int64) (int64, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return e.Value, nil
	case *ast.Name:
		v, ok := env[e.Id]
		if !ok {
			return 0, &UndeclaredNameErr{Name: e.Id}
		}

		return v, nil
	case *ast.UnaryOp:
		v, err := Eval(e.Operand, env)
		if err != nil {
			return 0, err
		}

		switch e.Op {
		case "-":
			return -v, nil
		case "+":
			return v, nil
		case "~":
			return ^v, nil
		default:
			return 0, &NonStaticErr{Reason: fmt.Sprintf("operator %q is not constant-evaluable", e.Op)}
		}
	case *ast.BinOp:
		l, err := Eval(e.Left, env)
		if err != nil {
			return 0, err
		}

		r, err := Eval(e.Right, env)
		if err != nil {
			return 0, err
		}

		switch e.Op {
		case "+":
			return l + r, nil
		case "-":
			return l - r, nil
		case "*":
			return l * r, nil
		case "/":
			if r == 0 {
				return 0, &NonStaticErr{Reason: "division by zero"}
			}

			return l / r, nil
		case "%":
			if r == 0 {
				return 0, &NonStaticErr{Reason: "modulo by zero"}
			}

			return l % r, nil
		case "<<":
			return l << uint64(r), nil
		case ">>":
			return l >> uint64(r), nil
		case "&":
			return l & r, nil
		case "|":
			return l | r, nil
		case "^":
			return l ^ r, nil
		default:
			return 0, &NonStaticErr{Reason: fmt.Sprintf("operator %q is not constant-evaluable", e.Op)}
		}
	case *ast.Compare:
		l, err := Eval(e.Left, env)
		if err != nil {
			return 0, err
		}

		r, err := Eval(e.Right, env)
		if err != nil {
			return 0, err
		}

		var ok bool

		switch e.Op {
		case "==":
			ok = l == r
		case "!=":
			ok = l != r
		case "<":
			ok = l < r
		case "<=":
			ok = l <= r
		case ">":
			ok = l > r
		case ">=":
			ok = l >= r
		default:
			return 0, &NonStaticErr{Reason: fmt.Sprintf("comparison %q is not constant-evaluable", e.Op)}
		}

		if ok {
			return 1, nil
		}

		return 0, nil
	default:
		return 0, &NonStaticErr{Reason: "expression is not constant-evaluable"}
	}
}

// EvalRange evaluates a `range(...)` call into its (start, stop, step)
// triple, defaulting start=0 and step=1 as Python does.
func EvalRange(expr ast.Expr, env map[string]int64) (start, stop, step int64, err error) {
	call, ok := expr.(*ast.Call)
	if !ok {
		return 0, 0, 0, &NonStaticErr{Reason: "loop does not iterate a range(...) call"}
	}

	name, ok := call.Func.(*ast.Name)
	if !ok || name.Id != "range" || len(call.Keywords) > 0 {
		return 0, 0, 0, &NonStaticErr{Reason: "loop does not iterate a range(...) call"}
	}

	switch len(call.Args) {
	case 1:
		stop, err = Eval(call.Args[0], env)
		if err != nil {
			return 0, 0, 0, err
		}

		return 0, stop, 1, nil
	case 2:
		start, err = Eval(call.Args[0], env)
		if err != nil {
			return 0, 0, 0, err
		}

		stop, err = Eval(call.Args[1], env)
		if err != nil {
			return 0, 0, 0, err
		}

		return start, stop, 1, nil
	case 3:
		start, err = Eval(call.Args[0], env)
		if err != nil {
			return 0, 0, 0, err
		}

		stop, err = Eval(call.Args[1], env)
		if err != nil {
			return 0, 0, 0, err
		}

		step, err = Eval(call.Args[2], env)
		if err != nil {
			return 0, 0, 0, err
		}

		return start, stop, step, nil
	default:
		return 0, 0, 0, &NonStaticErr{Reason: "range(...) takes 1 to 3 arguments"}
	}
}

// widthFromExpr evaluates a width or shape expression: a bare `bit` (a
// single-bit wire), `bit[W]`, or a 2-D `bit[W][D]` memory shape (a nested
// Index). Ports and signal-defining forms both funnel through this.
func widthFromExpr(expr ast.Expr, env map[string]int64) (Shape, error) {
	if name, ok := expr.(*ast.Name); ok && name.Id == "bit" {
		return Shape{Width: 1}, nil
	}

	idx, ok := expr.(*ast.Index)
	if !ok {
		return Shape{}, &NonStaticErr{Reason: "width must be of the form bit, bit[W] or bit[W][D]"}
	}

	// bit[W][D]: idx.Value is itself an Index into `bit`.
	if inner, ok := idx.Value.(*ast.Index); ok {
		if name, ok := inner.Value.(*ast.Name); !ok || name.Id != "bit" {
			return Shape{}, &NonStaticErr{Reason: "width must be of the form bit[W] or bit[W][D]"}
		}

		w, err := Eval(inner.At, env)
		if err != nil {
			return Shape{}, err
		}

		d, err := Eval(idx.At, env)
		if err != nil {
			return Shape{}, err
		}

		if w < 1 || d < 1 {
			return Shape{}, &NonStaticErr{Reason: "width and depth must be positive"}
		}

		return Shape{Width: int(w), Depth: int(d)}, nil
	}

	name, ok := idx.Value.(*ast.Name)
	if !ok || name.Id != "bit" {
		return Shape{}, &NonStaticErr{Reason: "width must be of the form bit[W] or bit[W][D]"}
	}

	w, err := Eval(idx.At, env)
	if err != nil {
		return Shape{}, err
	}

	if w < 1 {
		return Shape{}, &NonStaticErr{Reason: "width must be positive"}
	}

	return Shape{Width: int(w)}, nil
}

// bitWidthOf returns the minimum width needed to hold the non-negative
// value v, with a minimum of 1 (used for both enum widths and the
// fallback integer-literal rendering rule).
func bitWidthOf(v int64) int {
	if v <= 0 {
		return 1
	}

	w := 0
	for v > 0 {
		w++
		v >>= 1
	}

	return w
}
