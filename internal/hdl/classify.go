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

// walkStmt classifies every assignment in stmt (already unrolled, so no
// *ast.For remains) under the storage class/edge set established by the
// enclosing control-context frames, and returns the lowered statement tree
// destined for the enclosing block. An edge-guarded if contributes nothing
// to the enclosing tree: its body is rerouted whole into the module's
// always_ff group for that edge set. depth counts nested if/match bodies,
// used by the latch-inference heuristic below.
func (b *builder) walkStmt(stmt ast.Stmt, class StorageClass, edges []Edge, depth int) []LoweredStmt {
	switch s := stmt.(type) {
	case *ast.If:
		if es, ok := detectEdges(s.Test); ok {
			var body []LoweredStmt

			for _, inner := range s.Body {
				body = append(body, b.walkStmt(inner, Seq, es, depth)...)
			}

			for _, inner := range s.Orelse {
				body = append(body, b.walkStmt(inner, Seq, es, depth)...)
			}

			b.mod.AddSeqStmts(es, body)

			return nil
		}

		var then, orelse []LoweredStmt

		for _, inner := range s.Body {
			then = append(then, b.walkStmt(inner, class, edges, depth+1)...)
		}

		for _, inner := range s.Orelse {
			orelse = append(orelse, b.walkStmt(inner, class, edges, depth+1)...)
		}

		if len(then) == 0 && len(orelse) == 0 {
			return nil
		}

		return []LoweredStmt{&LIf{Cond: b.normalizeExpr(s.Test), Then: then, Else: orelse}}
	case *ast.Match:
		arms := make([]LCaseArm, 0, len(s.Cases))
		empty := true

		for _, c := range s.Cases {
			var body []LoweredStmt
			for _, inner := range c.Body {
				body = append(body, b.walkStmt(inner, class, edges, depth+1)...)
			}

			if len(body) > 0 {
				empty = false
			}

			var pattern ast.Expr
			if c.Pattern != nil {
				pattern = b.normalizeExpr(c.Pattern)
			}

			arms = append(arms, LCaseArm{Pattern: pattern, Body: body})
		}

		if empty {
			return nil
		}

		return []LoweredStmt{&LCase{Subject: b.normalizeExpr(s.Subject), Arms: arms}}
	case *ast.Assign:
		return b.walkAssign(s, class, edges, depth)
	default:
		return nil
	}
}

// detectEdges recognizes an `if` test as an edge guard: a single
// `name.posedge`/`name.negedge` attribute, or an `or`-disjunction of them.
func detectEdges(test ast.Expr) ([]Edge, bool) {
	if e, ok := singleEdge(test); ok {
		return []Edge{e}, true
	}

	bo, ok := test.(*ast.BoolOp)
	if !ok || bo.Op != "or" {
		return nil, false
	}

	var edges []Edge

	for _, v := range bo.Values {
		e, ok := singleEdge(v)
		if !ok {
			return nil, false
		}

		edges = append(edges, e)
	}

	return edges, true
}

func singleEdge(e ast.Expr) (Edge, bool) {
	attr, ok := e.(*ast.Attribute)
	if !ok {
		return Edge{}, false
	}

	name, ok := attr.Value.(*ast.Name)
	if !ok {
		return Edge{}, false
	}

	switch attr.Attr {
	case "posedge":
		return Edge{Signal: name.Id, Kind: Posedge}, true
	case "negedge":
		return Edge{Signal: name.Id, Kind: Negedge}, true
	default:
		return Edge{}, false
	}
}

// walkAssign handles the three assignment shapes: submodule input wiring
// (`inst.port = expr`), submodule output consumption (`target =
// inst.port`, rewritten to read the interned intermediate wire), and
// ordinary signal/port assignment.
func (b *builder) walkAssign(s *ast.Assign, class StorageClass, edges []Edge, depth int) []LoweredStmt {
	if attr, ok := s.Target.(*ast.Attribute); ok {
		if nameExpr, ok := attr.Value.(*ast.Name); ok {
			if inst := b.mod.LookupInstance(nameExpr.Id); inst != nil {
				b.wireInput(inst, attr, s)
				return nil
			}
		}
	}

	value := s.Value

	if attr, ok := s.Value.(*ast.Attribute); ok {
		if nameExpr, ok := attr.Value.(*ast.Name); ok {
			if inst := b.mod.LookupInstance(nameExpr.Id); inst != nil {
				port := inst.Resolved().LookupPort(attr.Attr)
				if port == nil || port.Dir != Out {
					b.sink.ReportAt(inst.Name+"."+attr.Attr, diagnostics.UnknownPort, s.Span(), "no such output port")
					return nil
				}

				wire := b.mod.InternedWire(inst.Name, attr.Attr, port.Shape)
				value = ast.NewName(wire.Name, attr.Span())
			}
		}
	}

	b.checkIndicesInExpr(s.Target)
	b.checkIndicesInExpr(value)

	return b.assignTarget(s.Target, value, class, edges, depth)
}

func (b *builder) wireInput(inst *SubmoduleInstance, attr *ast.Attribute, s *ast.Assign) {
	port := inst.Resolved().LookupPort(attr.Attr)
	if port == nil || port.Dir != In {
		b.sink.ReportAt(inst.Name+"."+attr.Attr, diagnostics.UnknownPort, s.Span(), "no such input port")
		return
	}

	if _, exists := inst.Inputs[attr.Attr]; !exists {
		inst.InputOrder = append(inst.InputOrder, attr.Attr)
	}

	inst.Inputs[attr.Attr] = s.Value

	if w := b.exprWidth(s.Value, port.Shape.Width, true); w > port.Shape.Width {
		b.sink.ReportAt(inst.Name+"."+attr.Attr, diagnostics.WidthMismatch, s.Span(),
			"connected expression is wider than the port; truncated")
	}
}

// assignTarget resolves target to a declared (or newly declared) signal or
// port, performs width inference, classifies the assignment, applies the
// latch-inference heuristic for unguarded combinational defaults, and
// files the assignment into the module descriptor.
func (b *builder) assignTarget(target, value ast.Expr, class StorageClass, edges []Edge, depth int) []LoweredStmt {
	lname, lvalueWidth, isNew, ok := b.resolveLvalue(target)
	if !ok {
		return nil
	}

	if isNew {
		enumName, shape, matched := enumAssignShape(value, b.enums)
		if !matched {
			shape = Shape{Width: b.exprWidth(value, 0, false)}
		}

		sig := b.mod.DeclareSignal(lname, shape)
		if matched {
			sig.EnumType = enumName
		}

		lvalueWidth = shape.Width
	} else if w := b.exprWidth(value, lvalueWidth, true); w > lvalueWidth {
		b.sink.Report(lname, diagnostics.WidthMismatch, "right-hand side is wider than the assignment target; truncated")
	}

	if !b.classify(lname, class, edges) {
		return nil
	}

	if sig := b.mod.LookupSignal(lname); sig != nil {
		sig.Class = class
		sig.Edges = edges
	}

	if class == Comb {
		if depth == 0 {
			b.combDefaulted[lname] = true
		} else if !b.combDefaulted[lname] && !b.latchWarned[lname] {
			b.sink.Report(lname, diagnostics.LatchWarning,
				"combinational signal assigned conditionally with no preceding unconditional default")
			b.latchWarned[lname] = true
		}
	}

	ltarget := b.normalizeExpr(target)
	lvalue := b.normalizeExpr(value)

	b.mod.AddAssignment(&Assignment{Target: ltarget, Value: lvalue, Class: class, Edges: edges})

	return []LoweredStmt{&LAssign{Target: ltarget, Value: lvalue, Width: lvalueWidth}}
}

// resolveLvalue returns the base signal/port name an assignment target
// drives, the width that name's value occupies (element width for an
// indexed memory access, 1 for a bit-select, hi-lo+1 for a slice), and
// whether this is the first-ever assignment defining a new internal
// signal (a bare, previously-undeclared Name).
func (b *builder) resolveLvalue(target ast.Expr) (name string, width int, isNew bool, ok bool) {
	switch t := target.(type) {
	case *ast.Name:
		if p := b.mod.LookupPort(t.Id); p != nil {
			return t.Id, p.Shape.Width, false, true
		}

		if s := b.mod.LookupSignal(t.Id); s != nil {
			return t.Id, s.Shape.Width, false, true
		}

		return t.Id, 0, true, true
	case *ast.Index:
		base, ok := t.Value.(*ast.Name)
		if !ok {
			b.sink.ReportAt("", diagnostics.UndeclaredName, t.Span(), "indexed assignment target must be a plain signal or port")
			return "", 0, false, false
		}

		shape, exists := b.baseShape(base.Id)
		if !exists {
			b.sink.ReportAt(base.Id, diagnostics.UndeclaredName, t.Span(), "assignment to undeclared signal")
			return "", 0, false, false
		}

		if shape.IsMemory() {
			return base.Id, shape.Width, false, true
		}

		return base.Id, 1, false, true
	case *ast.Slice:
		base, ok := t.Value.(*ast.Name)
		if !ok {
			b.sink.ReportAt("", diagnostics.UndeclaredName, t.Span(), "sliced assignment target must be a plain signal or port")
			return "", 0, false, false
		}

		if _, exists := b.baseShape(base.Id); !exists {
			b.sink.ReportAt(base.Id, diagnostics.UndeclaredName, t.Span(), "assignment to undeclared signal")
			return "", 0, false, false
		}

		hi, err := Eval(t.Hi, b.paramEnv)
		if err != nil {
			b.sink.ReportAt(base.Id, diagnostics.NonStaticExpression, t.Span(), "slice bounds must statically evaluate: "+err.Error())
			return "", 0, false, false
		}

		lo, err := Eval(t.Lo, b.paramEnv)
		if err != nil {
			b.sink.ReportAt(base.Id, diagnostics.NonStaticExpression, t.Span(), "slice bounds must statically evaluate: "+err.Error())
			return "", 0, false, false
		}

		return base.Id, int(hi-lo) + 1, false, true
	default:
		b.sink.ReportAt("", diagnostics.UndeclaredName, target.Span(), "invalid assignment target")
		return "", 0, false, false
	}
}

func (b *builder) baseShape(name string) (Shape, bool) {
	if p := b.mod.LookupPort(name); p != nil {
		return p.Shape, true
	}

	if s := b.mod.LookupSignal(name); s != nil {
		return s.Shape, true
	}

	return Shape{}, false
}

// checkIndicesInExpr reports IndexOutOfBounds for every constant index
// into a known signal or port found anywhere within e.
func (b *builder) checkIndicesInExpr(e ast.Expr) {
	walkExpr(e, func(sub ast.Expr) {
		idx, ok := sub.(*ast.Index)
		if !ok {
			return
		}

		base, ok := idx.Value.(*ast.Name)
		if !ok {
			return
		}

		shape, exists := b.baseShape(base.Id)
		if !exists {
			return
		}

		k, err := Eval(idx.At, b.paramEnv)
		if err != nil {
			return // non-constant index: bounds checking does not apply
		}

		bound := int64(shape.Width)
		if shape.IsMemory() {
			bound = int64(shape.Depth)
		}

		if k < 0 || k >= bound {
			b.sink.ReportAt(base.Id, diagnostics.IndexOutOfBounds, idx.Span(), "constant index out of declared range")
		}
	})
}

// enumAssignShape recognizes `EnumType.MEMBER` on an assignment's
// right-hand side, used to infer a brand-new signal's enum type and width.
func enumAssignShape(value ast.Expr, enums map[string]*EnumType) (name string, shape Shape, ok bool) {
	attr, ok := value.(*ast.Attribute)
	if !ok {
		return "", Shape{}, false
	}

	nameExpr, ok := attr.Value.(*ast.Name)
	if !ok {
		return "", Shape{}, false
	}

	et, exists := enums[nameExpr.Id]
	if !exists {
		return "", Shape{}, false
	}

	for _, m := range et.Members {
		if m.Name == attr.Attr {
			return et.Name, Shape{Width: et.Width}, true
		}
	}

	return "", Shape{}, false
}

// classify runs the per-signal state machine: Unknown -> Comb | Seq(edges);
// any further visit inconsistent with the established bucket is a
// MixedStorageClass error.
func (b *builder) classify(name string, class StorageClass, edges []Edge) bool {
	key := EdgeSetKey(edges)

	cur, seen := b.class[name]
	if !seen {
		b.class[name] = class
		b.classKey[name] = key

		return true
	}

	if cur != class {
		b.sink.Report(name, diagnostics.MixedStorageClass, "signal is assigned both combinationally and sequentially")
		return false
	}

	if class == Seq && b.classKey[name] != key {
		b.sink.Report(name, diagnostics.MixedStorageClass, "signal is driven by disagreeing edge sets")
		return false
	}

	return true
}

// exprWidth computes an expression's bit width per the inference rules: a
// literal needs its minimal width; a name takes its declared width; `a op
// b` takes max(width(a), width(b)), widened by 1 for +/- when the lvalue
// width allows it; a slice is hi-lo+1; an index is 1 bit (or the element
// width for a memory word); a comparison or boolean result is 1 bit; a
// tuple is the sum of its parts.
func (b *builder) exprWidth(e ast.Expr, lvalueWidth int, hasLvalue bool) int {
	switch v := e.(type) {
	case *ast.IntLit:
		return bitWidthOf(v.Value)
	case *ast.Name:
		if shape, ok := b.baseShape(v.Id); ok {
			return shape.Width
		}

		if p := b.mod.LookupParameter(v.Id); p != nil {
			return bitWidthOf(p.Value)
		}

		return 1
	case *ast.UnaryOp:
		if v.Op == "not" {
			return 1
		}

		return b.exprWidth(v.Operand, lvalueWidth, hasLvalue)
	case *ast.BinOp:
		lw := b.exprWidth(v.Left, lvalueWidth, hasLvalue)
		rw := b.exprWidth(v.Right, lvalueWidth, hasLvalue)

		base := lw
		if rw > base {
			base = rw
		}

		if (v.Op == "+" || v.Op == "-") && hasLvalue && lvalueWidth > base {
			return base + 1
		}

		return base
	case *ast.BoolOp, *ast.Compare:
		return 1
	case *ast.Attribute:
		return 1
	case *ast.Index:
		base, ok := v.Value.(*ast.Name)
		if !ok {
			return 1
		}

		if shape, exists := b.baseShape(base.Id); exists && shape.IsMemory() {
			return shape.Width
		}

		return 1
	case *ast.Slice:
		hi, err1 := Eval(v.Hi, b.paramEnv)
		lo, err2 := Eval(v.Lo, b.paramEnv)

		if err1 != nil || err2 != nil {
			return 1
		}

		return int(hi-lo) + 1
	case *ast.Tuple:
		sum := 0
		for _, el := range v.Elts {
			sum += b.exprWidth(el, 0, false)
		}

		return sum
	default:
		return 1
	}
}
