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
	"io"
	"strings"

	"github.com/tky-kevin/phdc/internal/ast"
)

// EmitModule renders a fully elaborated module descriptor as SystemVerilog
// text. Emission order within the module: port list, localparams, enum
// typedefs, signal declarations, intermediate wires, submodule
// instantiations, the combinational block, then one always_ff block per
// distinct edge set in first-appearance order.
func EmitModule(m *Module) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "module %s (\n", m.EmittedName)

	decls := make([]string, len(m.Ports))
	for i, p := range m.Ports {
		dir := "input"
		if p.Dir == Out {
			dir = "output"
		}

		decls[i] = "    " + dir + " " + shapeDecl(p.Shape, p.Name)
	}

	sb.WriteString(strings.Join(decls, ",\n"))
	sb.WriteString("\n);\n")

	for _, p := range m.Parameters {
		fmt.Fprintf(&sb, "    localparam %s = %d;\n", p.Name, p.Value)
	}

	for _, e := range m.Enums {
		members := make([]string, len(e.Members))
		for i, mem := range e.Members {
			members[i] = fmt.Sprintf("%s=%d", mem.Name, mem.Value)
		}

		fmt.Fprintf(&sb, "    typedef enum logic [%d:0] { %s } %s_t;\n", e.Width-1, strings.Join(members, ", "), e.Name)
	}

	for _, s := range m.Signals {
		if s.EnumType != "" {
			fmt.Fprintf(&sb, "    %s_t %s;\n", s.EnumType, s.Name)
			continue
		}

		fmt.Fprintf(&sb, "    %s;\n", shapeDecl(s.Shape, s.Name))
	}

	for _, w := range m.IntermediateWires {
		fmt.Fprintf(&sb, "    %s;\n", shapeDecl(w.Shape, w.Name))
	}

	for _, inst := range m.Instances {
		var conns []string

		for _, p := range inst.Resolved().Ports {
			switch p.Dir {
			case In:
				if expr, ok := inst.Inputs[p.Name]; ok {
					conns = append(conns, fmt.Sprintf(".%s(%s)", p.Name, renderExpr(m, expr)))
				}
			case Out:
				if w := m.WireFor(inst.Name, p.Name); w != nil {
					conns = append(conns, fmt.Sprintf(".%s(%s)", p.Name, w.Name))
				}
			}
		}

		fmt.Fprintf(&sb, "    %s %s (%s);\n", inst.EmittedName, inst.Name, strings.Join(conns, ", "))
	}

	if len(m.CombBody) > 0 {
		sb.WriteString("    always_comb begin\n")
		emitStmts(&sb, m, m.CombBody, 2, "=")
		sb.WriteString("    end\n")
	}

	for _, key := range m.SeqGroupOrder {
		body := m.SeqBodies[key]
		if len(body) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "    always_ff @(%s) begin\n", edgeHeader(m.SeqEdges[key]))
		emitStmts(&sb, m, body, 2, "<=")
		sb.WriteString("    end\n")
	}

	sb.WriteString("endmodule\n")

	return sb.String()
}

// shapeDecl renders a declaration's type-and-name part: `logic name` for a
// single bit, `logic [W-1:0] name` for a vector, and the unpacked-array
// form `logic [W-1:0] name [0:D-1]` for a memory.
func shapeDecl(s Shape, name string) string {
	if s.IsMemory() {
		return fmt.Sprintf("logic [%d:0] %s [0:%d]", s.Width-1, name, s.Depth-1)
	}

	if s.Width > 1 {
		return fmt.Sprintf("logic [%d:0] %s", s.Width-1, name)
	}

	return "logic " + name
}

// edgeHeader renders a sensitivity list in the order the edges appeared in
// the source guard, e.g. "posedge clk or negedge rst_n".
func edgeHeader(edges []Edge) string {
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = e.Kind.String() + " " + e.Signal
	}

	return strings.Join(parts, " or ")
}

func indent(level int) string {
	return strings.Repeat("    ", level)
}

func emitStmts(sb *strings.Builder, m *Module, stmts []LoweredStmt, level int, op string) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *LAssign:
			fmt.Fprintf(sb, "%s%s\n", indent(level), assignText(m, s, op))
		case *LIf:
			emitIf(sb, m, s, level, op, "if")
		case *LCase:
			emitCase(sb, m, s, level, op)
		}
	}
}

func assignText(m *Module, s *LAssign, op string) string {
	return fmt.Sprintf("%s %s %s;", renderExpr(m, s.Target), op, renderRHS(m, s.Value, s.Width))
}

// emitIf prints an if/else chain. A single-assignment arm stays on one line
// (`if (cond) x = 1'd0;`); anything larger gets a begin/end block. An Else
// holding exactly one nested LIf flattens to `else if`.
func emitIf(sb *strings.Builder, m *Module, s *LIf, level int, op, keyword string) {
	ind := indent(level)
	cond := renderExpr(m, s.Cond)

	if a, ok := singleAssign(s.Then); ok {
		fmt.Fprintf(sb, "%s%s (%s) %s\n", ind, keyword, cond, assignText(m, a, op))
	} else {
		fmt.Fprintf(sb, "%s%s (%s) begin\n", ind, keyword, cond)
		emitStmts(sb, m, s.Then, level+1, op)
		fmt.Fprintf(sb, "%send\n", ind)
	}

	if len(s.Else) == 0 {
		return
	}

	if nested, ok := singleIf(s.Else); ok {
		emitIf(sb, m, nested, level, op, "else if")
		return
	}

	if a, ok := singleAssign(s.Else); ok {
		fmt.Fprintf(sb, "%selse %s\n", ind, assignText(m, a, op))
		return
	}

	fmt.Fprintf(sb, "%selse begin\n", ind)
	emitStmts(sb, m, s.Else, level+1, op)
	fmt.Fprintf(sb, "%send\n", ind)
}

// emitCase prints a `unique case`. A source wildcard arm (`case _:`)
// becomes the default arm; otherwise an empty `default: ;` is appended so
// every case statement has one.
func emitCase(sb *strings.Builder, m *Module, s *LCase, level int, op string) {
	ind := indent(level)
	arm := indent(level + 1)

	fmt.Fprintf(sb, "%sunique case (%s)\n", ind, renderExpr(m, s.Subject))

	hasDefault := false

	for _, c := range s.Arms {
		label := "default"
		if c.Pattern != nil {
			label = renderExpr(m, c.Pattern)
		} else {
			hasDefault = true
		}

		if a, ok := singleAssign(c.Body); ok {
			fmt.Fprintf(sb, "%s%s: %s\n", arm, label, assignText(m, a, op))
			continue
		}

		fmt.Fprintf(sb, "%s%s: begin\n", arm, label)
		emitStmts(sb, m, c.Body, level+2, op)
		fmt.Fprintf(sb, "%send\n", arm)
	}

	if !hasDefault {
		fmt.Fprintf(sb, "%sdefault: ;\n", arm)
	}

	fmt.Fprintf(sb, "%sendcase\n", ind)
}

func singleAssign(stmts []LoweredStmt) (*LAssign, bool) {
	if len(stmts) != 1 {
		return nil, false
	}

	a, ok := stmts[0].(*LAssign)

	return a, ok
}

func singleIf(stmts []LoweredStmt) (*LIf, bool) {
	if len(stmts) != 1 {
		return nil, false
	}

	s, ok := stmts[0].(*LIf)

	return s, ok
}

// renderRHS renders an assignment's right-hand side. A bare integer literal
// takes the lvalue's width (`8'd0`); with no usable lvalue width it falls
// back to its own minimal width. Tuple concatenations render each literal
// element in its smallest-width form.
func renderRHS(m *Module, e ast.Expr, lvalueWidth int) string {
	if lit, ok := e.(*ast.IntLit); ok {
		w := lvalueWidth
		if w <= 0 {
			w = bitWidthOf(lit.Value)
		}

		return fmt.Sprintf("%d'd%d", w, lit.Value)
	}

	return renderExpr(m, e)
}

var unaryOps = map[string]string{
	"not": "!",
	"~":   "~",
	"-":   "-",
	"+":   "+",
}

var boolOps = map[string]string{
	"and": "&&",
	"or":  "||",
}

// renderExpr renders an expression for use inside a larger one: binary and
// unary forms are parenthesized, nested integer literals stay bare decimal,
// and an enum member reference collapses to the member name alone.
func renderExpr(m *Module, e ast.Expr) string {
	switch v := e.(type) {
	case *ast.Name:
		return v.Id
	case *ast.IntLit:
		return fmt.Sprintf("%d", v.Value)
	case *ast.UnaryOp:
		return fmt.Sprintf("(%s%s)", unaryOps[v.Op], renderExpr(m, v.Operand))
	case *ast.BinOp:
		return fmt.Sprintf("(%s %s %s)", renderExpr(m, v.Left), v.Op, renderExpr(m, v.Right))
	case *ast.BoolOp:
		parts := make([]string, len(v.Values))
		for i, x := range v.Values {
			parts[i] = renderExpr(m, x)
		}

		return "(" + strings.Join(parts, " "+boolOps[v.Op]+" ") + ")"
	case *ast.Compare:
		return fmt.Sprintf("(%s %s %s)", renderExpr(m, v.Left), v.Op, renderExpr(m, v.Right))
	case *ast.Attribute:
		if name, ok := v.Value.(*ast.Name); ok && m.LookupEnum(name.Id) != nil {
			return v.Attr
		}

		return renderExpr(m, v.Value) + "." + v.Attr
	case *ast.Index:
		return fmt.Sprintf("%s[%s]", renderExpr(m, v.Value), renderExpr(m, v.At))
	case *ast.Slice:
		return fmt.Sprintf("%s[%s:%s]", renderExpr(m, v.Value), renderExpr(m, v.Hi), renderExpr(m, v.Lo))
	case *ast.Tuple:
		parts := make([]string, len(v.Elts))
		for i, el := range v.Elts {
			if lit, ok := el.(*ast.IntLit); ok {
				parts[i] = fmt.Sprintf("%d'd%d", bitWidthOf(lit.Value), lit.Value)
				continue
			}

			parts[i] = renderExpr(m, el)
		}

		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}

// DumpHIR writes the module's classified-and-unrolled assignment list, one
// line per assignment tagged comb or seq(<edges>). This is the debug view
// behind the --emit-hir flag.
func DumpHIR(w io.Writer, m *Module) {
	fmt.Fprintf(w, "module %s\n", m.EmittedName)

	for _, a := range m.CombAssigns {
		fmt.Fprintf(w, "  comb %s = %s\n", renderExpr(m, a.Target), renderExpr(m, a.Value))
	}

	for _, key := range m.SeqGroupOrder {
		edges := edgeHeader(m.SeqEdges[key])
		for _, a := range m.SeqGroups[key] {
			fmt.Fprintf(w, "  seq(%s) %s <= %s\n", edges, renderExpr(m, a.Target), renderExpr(m, a.Value))
		}
	}
}
