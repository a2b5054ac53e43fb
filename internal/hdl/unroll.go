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

// UnrollBody expands every `for i in range(...)` in body into N copies of
// its body with i substituted by each successive value, N per the source
// order outside-in for nested loops. params carries the module's own
// top-level parameter bindings, the only names a loop bound may reference.
// Diagnostics are reported against sink; a NonStaticLoop error drops the
// offending loop from the output and the walk continues, reporting further
// problems in the same module.
func UnrollBody(body []ast.Stmt, params map[string]int64, sink *diagnostics.Sink) []ast.Stmt {
	return unrollStmts(body, params, sink)
}

func unrollStmts(body []ast.Stmt, env map[string]int64, sink *diagnostics.Sink) []ast.Stmt {
	var out []ast.Stmt

	for _, stmt := range body {
		out = append(out, unrollStmt(stmt, env, sink)...)
	}

	return out
}

func unrollStmt(stmt ast.Stmt, env map[string]int64, sink *diagnostics.Sink) []ast.Stmt {
	switch s := stmt.(type) {
	case *ast.For:
		start, stop, step, err := EvalRange(s.Iter, env)
		if err != nil {
			sink.ReportAt(s.Target, diagnostics.NonStaticLoop, s.Span(), err.Error())
			return nil
		}

		if step == 0 {
			sink.ReportAt(s.Target, diagnostics.NonStaticLoop, s.Span(), "range(...) step must not be zero")
			return nil
		}

		var out []ast.Stmt

		for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
			iterEnv := cloneEnv(env)
			iterEnv[s.Target] = i

			substituted := make([]ast.Stmt, len(s.Body))
			for k, inner := range s.Body {
				substituted[k] = substStmt(inner, s.Target, i)
			}

			out = append(out, unrollStmts(substituted, iterEnv, sink)...)
		}

		return out
	case *ast.If:
		body := unrollStmts(s.Body, env, sink)
		orelse := unrollStmts(s.Orelse, env, sink)

		return []ast.Stmt{ast.NewIf(s.Test, body, orelse, s.Span())}
	case *ast.Match:
		cases := make([]ast.CaseClause, len(s.Cases))
		for i, c := range s.Cases {
			cases[i] = ast.CaseClause{Pattern: c.Pattern, Body: unrollStmts(c.Body, env, sink)}
		}

		return []ast.Stmt{ast.NewMatch(s.Subject, cases, s.Span())}
	default:
		return []ast.Stmt{stmt}
	}
}

func cloneEnv(env map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(env)+1)
	for k, v := range env {
		out[k] = v
	}

	return out
}

// substStmt rewrites every occurrence of Name(name) within stmt's
// expressions to IntLit(value), recursing into nested control structures.
func substStmt(stmt ast.Stmt, name string, value int64) ast.Stmt {
	switch s := stmt.(type) {
	case *ast.Assign:
		return ast.NewAssign(substExpr(s.Target, name, value), substExpr(s.Value, name, value), s.Span())
	case *ast.If:
		body := substStmts(s.Body, name, value)
		orelse := substStmts(s.Orelse, name, value)

		return ast.NewIf(substExpr(s.Test, name, value), body, orelse, s.Span())
	case *ast.For:
		// A nested loop that reuses an outer loop's index name does not
		// shadow it here: bounds and body are substituted regardless, since
		// a `.phd` author is not expected to reuse an enclosing loop index.
		return ast.NewFor(s.Target, substExpr(s.Iter, name, value), substStmts(s.Body, name, value), s.Span())
	case *ast.Match:
		cases := make([]ast.CaseClause, len(s.Cases))
		for i, c := range s.Cases {
			var pattern ast.Expr
			if c.Pattern != nil {
				pattern = substExpr(c.Pattern, name, value)
			}

			cases[i] = ast.CaseClause{Pattern: pattern, Body: substStmts(c.Body, name, value)}
		}

		return ast.NewMatch(substExpr(s.Subject, name, value), cases, s.Span())
	default:
		return stmt
	}
}

func substStmts(body []ast.Stmt, name string, value int64) []ast.Stmt {
	out := make([]ast.Stmt, len(body))
	for i, s := range body {
		out[i] = substStmt(s, name, value)
	}

	return out
}

func substExpr(expr ast.Expr, name string, value int64) ast.Expr {
	switch e := expr.(type) {
	case *ast.Name:
		if e.Id == name {
			return ast.NewIntLit(value, e.Span())
		}

		return e
	case *ast.IntLit:
		return e
	case *ast.UnaryOp:
		return ast.NewUnaryOp(e.Op, substExpr(e.Operand, name, value), e.Span())
	case *ast.BinOp:
		return ast.NewBinOp(e.Op, substExpr(e.Left, name, value), substExpr(e.Right, name, value), e.Span())
	case *ast.BoolOp:
		values := make([]ast.Expr, len(e.Values))
		for i, v := range e.Values {
			values[i] = substExpr(v, name, value)
		}

		return ast.NewBoolOp(e.Op, values, e.Span())
	case *ast.Compare:
		return ast.NewCompare(substExpr(e.Left, name, value), e.Op, substExpr(e.Right, name, value), e.Span())
	case *ast.Attribute:
		return ast.NewAttribute(substExpr(e.Value, name, value), e.Attr, e.Span())
	case *ast.Index:
		return ast.NewIndex(substExpr(e.Value, name, value), substExpr(e.At, name, value), e.Span())
	case *ast.Slice:
		return ast.NewSlice(substExpr(e.Value, name, value), substExpr(e.Hi, name, value), substExpr(e.Lo, name, value), e.Span())
	case *ast.Tuple:
		elts := make([]ast.Expr, len(e.Elts))
		for i, el := range e.Elts {
			elts[i] = substExpr(el, name, value)
		}

		return ast.NewTuple(elts, e.Span())
	case *ast.Call:
		args := make([]ast.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = substExpr(a, name, value)
		}

		keywords := make([]ast.Keyword, len(e.Keywords))
		for i, kw := range e.Keywords {
			keywords[i] = ast.Keyword{Arg: kw.Arg, Value: substExpr(kw.Value, name, value)}
		}

		return ast.NewCall(substExpr(e.Func, name, value), args, keywords, e.Span())
	default:
		return expr
	}
}
