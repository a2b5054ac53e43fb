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
	"github.com/tky-kevin/phdc/internal/diagnostics"
	"github.com/tky-kevin/phdc/pkg/util/source"
)

// Registry distinguishes concrete modules from parameterized templates and
// memoizes monomorphization by canonical parameter tuple, per module class
// name discovered by CollectModules.
type Registry struct {
	classes map[string]*ast.ClassDef
	built   map[string]*BuildResult
	order   []string
}

// BuildResult is the outcome of elaborating one module class (concrete, or
// one monomorphization of a template): either a usable descriptor, or a
// nil Module and a sink holding at least one error diagnostic.
type BuildResult struct {
	Module *Module
	Sink   *diagnostics.Sink
}

// NewRegistry indexes the collected module classes by name.
func NewRegistry(classes []*ast.ClassDef) *Registry {
	m := make(map[string]*ast.ClassDef, len(classes))
	for _, cd := range classes {
		m[cd.Name] = cd
	}

	return &Registry{classes: m, built: map[string]*BuildResult{}}
}

// Built returns every elaborated module in first-build order.
func (r *Registry) Built() []*BuildResult {
	out := make([]*BuildResult, len(r.order))
	for i, key := range r.order {
		out[i] = r.built[key]
	}

	return out
}

// Has reports whether name is a known module class.
func (r *Registry) Has(name string) bool {
	_, ok := r.classes[name]
	return ok
}

// IsTemplate reports whether the named module class has at least one free
// parameter.
func (r *Registry) IsTemplate(name string) bool {
	cd, ok := r.classes[name]
	if !ok {
		return false
	}

	free, _ := freeNames(cd)

	return len(free) > 0
}

func (r *Registry) getOrBuild(cacheKey string, cd *ast.ClassDef, params []Parameter, file *source.File) *BuildResult {
	if br, ok := r.built[cacheKey]; ok {
		return br
	}

	br := BuildModule(cd, params, r, file)
	if br.Module != nil {
		br.Module.Name = cd.Name
		br.Module.EmittedName = cacheKey
	}

	r.built[cacheKey] = br
	r.order = append(r.order, cacheKey)

	return br
}

// BuildConcrete elaborates a module with no free parameters, caching by its
// own class name.
func (r *Registry) BuildConcrete(cd *ast.ClassDef, file *source.File) *BuildResult {
	return r.getOrBuild(cd.Name, cd, nil, file)
}

// Monomorphize elaborates (once, cached) the concrete descriptor produced by
// binding templateName's free parameters to bindings. Re-instantiation with
// an identical parameter tuple reuses the cached result.
func (r *Registry) Monomorphize(templateName string, bindings map[string]int64, file *source.File) (*BuildResult, error) {
	cd, ok := r.classes[templateName]
	if !ok {
		return nil, fmt.Errorf("unknown module %q", templateName)
	}

	free, _ := freeNames(cd)

	key := templateName

	var params []Parameter

	for _, name := range free {
		v, ok := bindings[name]
		if !ok {
			return nil, fmt.Errorf("missing parameter %q for instantiation of %s", name, templateName)
		}

		key += fmt.Sprintf("_%s%d", name, v)
		params = append(params, Parameter{Name: name, Value: v})
	}

	return r.getOrBuild(key, cd, params, file), nil
}

// Resolve elaborates the named module class, monomorphizing it against
// bindings if it is a template, building it directly (bindings ignored) if
// it is concrete.
func (r *Registry) Resolve(name string, bindings map[string]int64, file *source.File) (*BuildResult, error) {
	cd, ok := r.classes[name]
	if !ok {
		return nil, fmt.Errorf("unknown module %q", name)
	}

	free, _ := freeNames(cd)
	if len(free) == 0 {
		return r.BuildConcrete(cd, file), nil
	}

	return r.Monomorphize(name, bindings, file)
}

// freeNames returns, in first-reference order, the names a module class
// body reads in a port-width or slice/index-bound position without binding
// them itself via a top-level parameter assignment or a for-loop target.
// A non-empty result marks the class as a template; the order is
// also the canonical declaration order used to render a monomorphized
// name and to match instantiation keyword arguments.
func freeNames(cd *ast.ClassDef) ([]string, map[string]bool) {
	bound := map[string]bool{}
	for name := range topLevelParamNames(cd.Body) {
		bound[name] = true
	}

	for name := range loopTargetNames(cd.Body) {
		bound[name] = true
	}

	seen := map[string]bool{}

	var order []string

	add := func(n string) {
		if n == "bit" || n == "range" || bound[n] || seen[n] {
			return
		}

		seen[n] = true

		order = append(order, n)
	}

	for _, stmt := range cd.Body {
		assign, ok := stmt.(*ast.Assign)
		if !ok {
			continue
		}

		call, ok := assign.Value.(*ast.Call)
		if !ok {
			continue
		}

		fn, ok := call.Func.(*ast.Name)
		if !ok || (fn.Id != "In" && fn.Id != "Out") || len(call.Args) != 1 {
			continue
		}

		var names []string
		namesInPureExpr(call.Args[0], &names)

		for _, n := range names {
			add(n)
		}
	}

	walkBoundNames(cd.Body, func(names []string) {
		for _, n := range names {
			add(n)
		}
	})

	return order, seen
}

// topLevelParamNames returns the names bound by a plain `name = <expr>`
// assignment directly in body (not nested inside any control-context
// frame), regardless of whether <expr> turns out to be constant.
func topLevelParamNames(body []ast.Stmt) map[string]bool {
	out := map[string]bool{}

	for _, stmt := range body {
		assign, ok := stmt.(*ast.Assign)
		if !ok {
			continue
		}

		if name, ok := assign.Target.(*ast.Name); ok {
			out[name.Id] = true
		}
	}

	return out
}

// loopTargetNames collects every `for name in ...` target anywhere in body,
// including nested inside if/match/for.
func loopTargetNames(body []ast.Stmt) map[string]bool {
	out := map[string]bool{}

	var walk func([]ast.Stmt)

	walk = func(b []ast.Stmt) {
		for _, stmt := range b {
			switch s := stmt.(type) {
			case *ast.For:
				out[s.Target] = true
				walk(s.Body)
			case *ast.If:
				walk(s.Body)
				walk(s.Orelse)
			case *ast.Match:
				for _, c := range s.Cases {
					walk(c.Body)
				}
			}
		}
	}

	walk(body)

	return out
}

// walkBoundNames visits every Index/Slice subscript bound expression
// (never the value being subscripted) anywhere within body's statements
// and expressions, reporting the Names referenced in each, left to right,
// via fn.
func walkBoundNames(body []ast.Stmt, fn func([]string)) {
	visit := func(e ast.Expr) {
		if idx, ok := e.(*ast.Index); ok {
			var names []string
			namesInPureExpr(idx.At, &names)
			fn(names)
		}

		if sl, ok := e.(*ast.Slice); ok {
			var names []string
			namesInPureExpr(sl.Hi, &names)
			namesInPureExpr(sl.Lo, &names)
			fn(names)
		}
	}

	walkExprsInStmts(body, visit)
}

// walkExprsInStmts calls visit once for every expression subtree appearing
// anywhere within body (targets, values, tests, iterables, patterns), and
// recurses into nested statement bodies.
func walkExprsInStmts(body []ast.Stmt, visit func(ast.Expr)) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.Assign:
			walkExpr(s.Target, visit)
			walkExpr(s.Value, visit)
		case *ast.If:
			walkExpr(s.Test, visit)
			walkExprsInStmts(s.Body, visit)
			walkExprsInStmts(s.Orelse, visit)
		case *ast.For:
			walkExpr(s.Iter, visit)
			walkExprsInStmts(s.Body, visit)
		case *ast.Match:
			walkExpr(s.Subject, visit)

			for _, c := range s.Cases {
				if c.Pattern != nil {
					walkExpr(c.Pattern, visit)
				}

				walkExprsInStmts(c.Body, visit)
			}
		}
	}
}

// walkExpr calls visit(e) and then recurses into every child expression.
func walkExpr(e ast.Expr, visit func(ast.Expr)) {
	if e == nil {
		return
	}

	visit(e)

	switch v := e.(type) {
	case *ast.UnaryOp:
		walkExpr(v.Operand, visit)
	case *ast.BinOp:
		walkExpr(v.Left, visit)
		walkExpr(v.Right, visit)
	case *ast.BoolOp:
		for _, x := range v.Values {
			walkExpr(x, visit)
		}
	case *ast.Compare:
		walkExpr(v.Left, visit)
		walkExpr(v.Right, visit)
	case *ast.Attribute:
		walkExpr(v.Value, visit)
	case *ast.Index:
		walkExpr(v.Value, visit)
		walkExpr(v.At, visit)
	case *ast.Slice:
		walkExpr(v.Value, visit)
		walkExpr(v.Hi, visit)
		walkExpr(v.Lo, visit)
	case *ast.Tuple:
		for _, el := range v.Elts {
			walkExpr(el, visit)
		}
	case *ast.Call:
		walkExpr(v.Func, visit)

		for _, a := range v.Args {
			walkExpr(a, visit)
		}

		for _, kw := range v.Keywords {
			walkExpr(kw.Value, visit)
		}
	}
}

// namesInPureExpr appends, in left-to-right order, every Name leaf in an
// arithmetic expression tree (the shape a width or index/slice bound
// expression takes: literals, names, unary/binary/compare/boolop, tuples,
// call args, and bit[...] nested Index chains for 2-D shapes).
func namesInPureExpr(e ast.Expr, out *[]string) {
	switch v := e.(type) {
	case *ast.Name:
		*out = append(*out, v.Id)
	case *ast.UnaryOp:
		namesInPureExpr(v.Operand, out)
	case *ast.BinOp:
		namesInPureExpr(v.Left, out)
		namesInPureExpr(v.Right, out)
	case *ast.BoolOp:
		for _, x := range v.Values {
			namesInPureExpr(x, out)
		}
	case *ast.Compare:
		namesInPureExpr(v.Left, out)
		namesInPureExpr(v.Right, out)
	case *ast.Tuple:
		for _, el := range v.Elts {
			namesInPureExpr(el, out)
		}
	case *ast.Call:
		for _, a := range v.Args {
			namesInPureExpr(a, out)
		}

		for _, kw := range v.Keywords {
			namesInPureExpr(kw.Value, out)
		}
	case *ast.Index:
		namesInPureExpr(v.Value, out)
		namesInPureExpr(v.At, out)
	}
}
