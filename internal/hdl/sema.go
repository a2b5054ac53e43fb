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

	"github.com/tky-kevin/phdc/internal/ast"
	"github.com/tky-kevin/phdc/internal/diagnostics"
	"github.com/tky-kevin/phdc/pkg/util/source"
)

// evalKind maps a constant-evaluation failure onto the taxonomy: an unbound
// name is UndeclaredName, everything else is NonStaticExpression.
func evalKind(err error) diagnostics.Kind {
	var unbound *UndeclaredNameErr
	if errors.As(err, &unbound) {
		return diagnostics.UndeclaredName
	}

	return diagnostics.NonStaticExpression
}

// builder holds the transient state threaded through one module's
// elaboration: the module descriptor under construction, its parameter
// environment (grows left-to-right as top-level declarations are scanned),
// a classification tracker per assignable name, and the sink every
// diagnostic is reported against.
type builder struct {
	mod      *Module
	sink     *diagnostics.Sink
	reg      *Registry
	file     *source.File
	paramEnv map[string]int64
	enums    map[string]*EnumType

	class    map[string]StorageClass
	classKey map[string]string

	combDefaulted map[string]bool
	latchWarned   map[string]bool
}

// BuildModule runs the module collector's per-class output through the
// template/constant/semantic/unroll/lowering pipeline, producing
// either a fully classified Module or a sink holding the diagnostics that
// aborted it. params carries a template's already-resolved free-parameter
// bindings, in declaration order; it is empty for a concrete module.
func BuildModule(cd *ast.ClassDef, params []Parameter, reg *Registry, file *source.File) *BuildResult {
	sink := diagnostics.NewSink(cd.Name, file)

	b := &builder{
		mod:      NewModule(cd.Name, cd.Name),
		sink:     sink,
		reg:      reg,
		file:     file,
		paramEnv: map[string]int64{},
		enums:    map[string]*EnumType{},
		class:    map[string]StorageClass{},
		classKey: map[string]string{},

		combDefaulted: map[string]bool{},
		latchWarned:   map[string]bool{},
	}

	for _, p := range params {
		b.paramEnv[p.Name] = p.Value
		b.mod.Parameters = append(b.mod.Parameters, &Parameter{Name: p.Name, Value: p.Value})
	}

	behavior := b.scanTopLevel(cd.Body)

	for _, stmt := range behavior {
		b.mod.CombBody = append(b.mod.CombBody, b.walkStmt(stmt, Comb, nil, 0)...)
	}

	if sink.HasErrors() {
		return &BuildResult{Module: nil, Sink: sink}
	}

	return &BuildResult{Module: b.mod, Sink: sink}
}

// scanTopLevel processes cd.Body top-to-bottom, registering declarations
// (enum types, ports, submodule instances, parameters) into b and the
// parameter environment as they are found, and unrolling + collecting
// every other statement into the returned behavioral stream, in order.
// This single top-to-bottom pass is what makes a later declaration
// invisible to an earlier statement: the parameter environment used to
// unroll a `for`/evaluate an `if` is exactly the one built so far.
func (b *builder) scanTopLevel(body []ast.Stmt) []ast.Stmt {
	var behavior []ast.Stmt

	reassigned := multiplyAssignedNames(body)

	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ast.ClassDef:
			if s.HasBase("Enum") {
				b.declareEnum(s)
				continue
			}

			b.sink.ReportAt(s.Name, diagnostics.DuplicateDefinition, s.Span(), "nested class must extend Enum")

			continue
		case *ast.Assign:
			if b.tryDeclarePort(s) {
				continue
			}

			if b.tryDeclareInstance(s) {
				continue
			}

			if b.tryDeclareSignal(s) {
				continue
			}

			if b.tryDeclareParameter(s, reassigned) {
				continue
			}
		}

		behavior = append(behavior, UnrollBody([]ast.Stmt{stmt}, b.paramEnv, b.sink)...)
	}

	return behavior
}

// multiplyAssignedNames returns the names assigned more than once in body,
// or assigned at least once under a control-context frame. Such a name can
// never be a parameter: its top-level `name = const` line, if any, is the
// defaulting assignment of an ordinary signal.
func multiplyAssignedNames(body []ast.Stmt) map[string]bool {
	counts := map[string]int{}
	out := map[string]bool{}

	var walk func(stmts []ast.Stmt, nested bool)

	walk = func(stmts []ast.Stmt, nested bool) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.Assign:
				name, ok := s.Target.(*ast.Name)
				if !ok {
					continue
				}

				counts[name.Id]++
				if nested || counts[name.Id] > 1 {
					out[name.Id] = true
				}
			case *ast.If:
				walk(s.Body, true)
				walk(s.Orelse, true)
			case *ast.For:
				walk(s.Body, true)
			case *ast.Match:
				for _, c := range s.Cases {
					walk(c.Body, true)
				}
			}
		}
	}

	walk(body, false)

	return out
}

func (b *builder) declareEnum(cd *ast.ClassDef) {
	if _, exists := b.enums[cd.Name]; exists {
		b.sink.ReportAt(cd.Name, diagnostics.DuplicateDefinition, cd.Span(), "duplicate enum definition")
		return
	}

	var members []EnumMember

	maxVal := int64(0)

	for _, stmt := range cd.Body {
		assign, ok := stmt.(*ast.Assign)
		if !ok {
			continue
		}

		name, ok := assign.Target.(*ast.Name)
		if !ok {
			continue
		}

		v, err := Eval(assign.Value, b.paramEnv)
		if err != nil {
			b.sink.ReportAt(name.Id, evalKind(err), assign.Span(), err.Error())
			continue
		}

		members = append(members, EnumMember{Name: name.Id, Value: v})

		if v > maxVal {
			maxVal = v
		}
	}

	et := &EnumType{Name: cd.Name, Members: members, Width: bitWidthOf(maxVal)}
	b.enums[cd.Name] = et
	b.mod.Enums = append(b.mod.Enums, et)
}

// tryDeclarePort recognizes `name = In(bit[...])` / `name = Out(bit[...])`.
func (b *builder) tryDeclarePort(assign *ast.Assign) bool {
	name, ok := assign.Target.(*ast.Name)
	if !ok {
		return false
	}

	call, ok := assign.Value.(*ast.Call)
	if !ok {
		return false
	}

	fn, ok := call.Func.(*ast.Name)
	if !ok || len(call.Args) != 1 {
		return false
	}

	var dir Direction

	switch fn.Id {
	case "In":
		dir = In
	case "Out":
		dir = Out
	default:
		return false
	}

	if b.mod.LookupPort(name.Id) != nil {
		b.sink.ReportAt(name.Id, diagnostics.DuplicateDefinition, assign.Span(), "duplicate port declaration")
		return true
	}

	shape, err := widthFromExpr(call.Args[0], b.paramEnv)
	if err != nil {
		b.sink.ReportAt(name.Id, evalKind(err), assign.Span(), err.Error())
		return true
	}

	b.mod.Ports = append(b.mod.Ports, &Port{Name: name.Id, Dir: dir, Shape: shape})

	return true
}

// tryDeclareInstance recognizes `name = TemplateName(k=v, ...)` where
// TemplateName is a known module class.
func (b *builder) tryDeclareInstance(assign *ast.Assign) bool {
	name, ok := assign.Target.(*ast.Name)
	if !ok {
		return false
	}

	call, ok := assign.Value.(*ast.Call)
	if !ok {
		return false
	}

	fn, ok := call.Func.(*ast.Name)
	if !ok {
		return false
	}

	if b.reg == nil || !b.reg.Has(fn.Id) {
		return false
	}

	if b.mod.LookupInstance(name.Id) != nil {
		b.sink.ReportAt(name.Id, diagnostics.DuplicateDefinition, assign.Span(), "duplicate submodule instance")
		return true
	}

	bindings := map[string]int64{}

	for _, kw := range call.Keywords {
		v, err := Eval(kw.Value, b.paramEnv)
		if err != nil {
			b.sink.ReportAt(name.Id, evalKind(err), assign.Span(), err.Error())
			return true
		}

		bindings[kw.Arg] = v
	}

	res, err := b.reg.Resolve(fn.Id, bindings, b.file)
	if err != nil {
		b.sink.ReportAt(name.Id, diagnostics.UndeclaredName, assign.Span(), err.Error())
		return true
	}

	if res.Module == nil {
		b.sink.ReportAt(name.Id, diagnostics.UndeclaredName, assign.Span(),
			"submodule "+fn.Id+" failed to compile: "+firstErr(res.Sink))
		return true
	}

	var boundParams []Parameter

	for _, p := range res.Module.Parameters {
		boundParams = append(boundParams, *p)
	}

	inst := &SubmoduleInstance{
		Name:        name.Id,
		Template:    fn.Id,
		EmittedName: res.Module.EmittedName,
		Bindings:    boundParams,
		resolved:    res.Module,
		Inputs:      map[string]ast.Expr{},
	}

	b.mod.Instances = append(b.mod.Instances, inst)

	return true
}

func firstErr(s *diagnostics.Sink) string {
	for _, d := range s.All() {
		if d.Kind.Severity() == diagnostics.Error {
			return d.Message
		}
	}

	return "unknown error"
}

// tryDeclareSignal recognizes an explicit internal-signal declaration
// `name = bit[W]` / `name = bit[W][D]` / `name = bit`.
func (b *builder) tryDeclareSignal(assign *ast.Assign) bool {
	name, ok := assign.Target.(*ast.Name)
	if !ok || !isBitShapeExpr(assign.Value) {
		return false
	}

	if b.mod.LookupPort(name.Id) != nil || b.mod.LookupSignal(name.Id) != nil {
		b.sink.ReportAt(name.Id, diagnostics.DuplicateDefinition, assign.Span(), "duplicate signal declaration")
		return true
	}

	shape, err := widthFromExpr(assign.Value, b.paramEnv)
	if err != nil {
		b.sink.ReportAt(name.Id, evalKind(err), assign.Span(), err.Error())
		return true
	}

	b.mod.DeclareSignal(name.Id, shape)

	return true
}

// isBitShapeExpr matches the syntactic forms a width declaration can take:
// `bit`, `bit[...]`, `bit[...][...]`.
func isBitShapeExpr(e ast.Expr) bool {
	for {
		switch v := e.(type) {
		case *ast.Name:
			return v.Id == "bit"
		case *ast.Index:
			e = v.Value
		default:
			return false
		}
	}
}

// tryDeclareParameter recognizes a plain `name = <const-expr>` at the
// unconditional top level of the class body whose RHS is evaluable using
// only previously declared parameters, provided name is assigned nowhere
// else in the module. Anything else - a reassigned name, a RHS that cannot
// yet be evaluated - is left for the behavioral walk, which will declare
// name as an internal signal on its first assignment instead.
func (b *builder) tryDeclareParameter(assign *ast.Assign, reassigned map[string]bool) bool {
	name, ok := assign.Target.(*ast.Name)
	if !ok || reassigned[name.Id] {
		return false
	}

	if _, exists := b.paramEnv[name.Id]; exists {
		return false
	}

	if b.mod.LookupPort(name.Id) != nil || b.mod.LookupSignal(name.Id) != nil {
		return false
	}

	v, err := Eval(assign.Value, b.paramEnv)
	if err != nil {
		return false
	}

	b.paramEnv[name.Id] = v
	b.mod.Parameters = append(b.mod.Parameters, &Parameter{Name: name.Id, Value: v})

	return true
}
