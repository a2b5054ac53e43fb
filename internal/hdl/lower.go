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

// LoweredStmt is one statement of a lowered block body: the tree the emitter
// walks to print an always_comb/always_ff block. Edge guards have already
// been stripped (they select the enclosing block, they are not statements),
// loops are gone (unrolled), and every slice bound has been folded to a
// literal.
type LoweredStmt interface {
	loweredStmt()
}

// LAssign is a single assignment. Width is the lvalue's width, which drives
// the rendering of a bare integer-literal right-hand side.
type LAssign struct {
	Target ast.Expr
	Value  ast.Expr
	Width  int
}

func (*LAssign) loweredStmt() {}

// LIf is an if/else chain. An elif arm appears as an Else holding exactly
// one nested LIf, which the emitter flattens to `else if`.
type LIf struct {
	Cond ast.Expr
	Then []LoweredStmt
	Else []LoweredStmt
}

func (*LIf) loweredStmt() {}

// LCaseArm is one arm of an LCase; a nil Pattern is the source-level
// wildcard `case _:`, emitted as the default arm.
type LCaseArm struct {
	Pattern ast.Expr
	Body    []LoweredStmt
}

// LCase is a match statement lowered towards `unique case`.
type LCase struct {
	Subject ast.Expr
	Arms    []LCaseArm
}

func (*LCase) loweredStmt() {}

// normalizeExpr rewrites e for emission: every slice bound is folded to an
// integer literal against the module's parameter environment (reporting
// NonStaticExpression where a bound names something with no binding there;
// module parameters and template arguments are bound, so inside a
// monomorphized template data[width-1:0] folds).
// Everything else is preserved; parameter names survive because they are
// emitted as localparams.
func (b *builder) normalizeExpr(e ast.Expr) ast.Expr {
	switch v := e.(type) {
	case *ast.UnaryOp:
		return ast.NewUnaryOp(v.Op, b.normalizeExpr(v.Operand), v.Span())
	case *ast.BinOp:
		return ast.NewBinOp(v.Op, b.normalizeExpr(v.Left), b.normalizeExpr(v.Right), v.Span())
	case *ast.BoolOp:
		values := make([]ast.Expr, len(v.Values))
		for i, x := range v.Values {
			values[i] = b.normalizeExpr(x)
		}

		return ast.NewBoolOp(v.Op, values, v.Span())
	case *ast.Compare:
		return ast.NewCompare(b.normalizeExpr(v.Left), v.Op, b.normalizeExpr(v.Right), v.Span())
	case *ast.Index:
		return ast.NewIndex(b.normalizeExpr(v.Value), b.normalizeExpr(v.At), v.Span())
	case *ast.Slice:
		hi, err := Eval(v.Hi, b.paramEnv)
		if err != nil {
			b.sink.ReportAt("", diagnostics.NonStaticExpression, v.Span(), "slice bounds must statically evaluate: "+err.Error())
			return e
		}

		lo, err := Eval(v.Lo, b.paramEnv)
		if err != nil {
			b.sink.ReportAt("", diagnostics.NonStaticExpression, v.Span(), "slice bounds must statically evaluate: "+err.Error())
			return e
		}

		return ast.NewSlice(b.normalizeExpr(v.Value), ast.NewIntLit(hi, v.Hi.Span()), ast.NewIntLit(lo, v.Lo.Span()), v.Span())
	case *ast.Tuple:
		elts := make([]ast.Expr, len(v.Elts))
		for i, el := range v.Elts {
			elts[i] = b.normalizeExpr(el)
		}

		return ast.NewTuple(elts, v.Span())
	default:
		return e
	}
}
