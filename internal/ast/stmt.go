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
package ast

import "github.com/tky-kevin/phdc/pkg/util/source"

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

type stmtBase struct {
	span source.Span
}

func (s stmtBase) Span() source.Span { return s.span }
func (stmtBase) stmtNode()           {}

// Pass is a no-op statement (Python's `pass`), and also absorbs bare
// docstring expression-statements which carry no hardware meaning.
type Pass struct{ stmtBase }

// NewPass constructs a Pass node.
func NewPass(span source.Span) *Pass { return &Pass{stmtBase{span}} }

// Import records an `import ...` / `from ... import ...` line. Its names are
// never resolved or executed; it exists only so directory sweeps can report
// a friendlier diagnostic if a .phd file fails to parse near one.
type Import struct {
	stmtBase
	Text string
}

// NewImport constructs an Import node.
func NewImport(text string, span source.Span) *Import { return &Import{stmtBase{span}, text} }

// Assign represents `target = value`.
type Assign struct {
	stmtBase
	Target Expr
	Value  Expr
}

// NewAssign constructs an Assign node.
func NewAssign(target, value Expr, span source.Span) *Assign {
	return &Assign{stmtBase{span}, target, value}
}

// If represents `if test: body else: orelse`. An `elif` chain is
// represented by a single-statement Orelse containing a nested If.
type If struct {
	stmtBase
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

// NewIf constructs an If node.
func NewIf(test Expr, body, orelse []Stmt, span source.Span) *If {
	return &If{stmtBase{span}, test, body, orelse}
}

// For represents `for Target in range(...): Body`. Target is the loop
// index's bare name; Iter must be a Call to `range`.
type For struct {
	stmtBase
	Target string
	Iter   Expr
	Body   []Stmt
}

// NewFor constructs a For node.
func NewFor(target string, iter Expr, body []Stmt, span source.Span) *For {
	return &For{stmtBase{span}, target, iter, body}
}

// CaseClause is a single `case Pattern:` arm of a Match statement. Pattern
// is nil for the wildcard arm (`case _:`).
type CaseClause struct {
	Pattern Expr
	Body    []Stmt
}

// Match represents `match Subject: case ...`.
type Match struct {
	stmtBase
	Subject Expr
	Cases   []CaseClause
}

// NewMatch constructs a Match node.
func NewMatch(subject Expr, cases []CaseClause, span source.Span) *Match {
	return &Match{stmtBase{span}, subject, cases}
}

// ClassDef represents `class Name(Base1, Base2): Body`. It is used both for
// module definitions (a base of `Module`) and nested enum definitions (a
// base of `Enum`).
type ClassDef struct {
	stmtBase
	Name  string
	Bases []string
	Body  []Stmt
}

// NewClassDef constructs a ClassDef node.
func NewClassDef(name string, bases []string, body []Stmt, span source.Span) *ClassDef {
	return &ClassDef{stmtBase{span}, name, bases, body}
}

// HasBase reports whether name appears in this class's base list.
func (c *ClassDef) HasBase(name string) bool {
	for _, b := range c.Bases {
		if b == name {
			return true
		}
	}

	return false
}
