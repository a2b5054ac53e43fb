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

import (
	"fmt"

	"github.com/tky-kevin/phdc/pkg/util/source"
)

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

type exprBase struct {
	span source.Span
}

func (e exprBase) Span() source.Span { return e.span }
func (exprBase) exprNode()           {}

// Name is a bare identifier reference, e.g. `clk`, `width`, `_`.
type Name struct {
	exprBase
	Id string
}

// NewName constructs a Name node.
func NewName(id string, span source.Span) *Name {
	return &Name{exprBase{span}, id}
}

func (n *Name) String() string { return n.Id }

// IntLit is an integer literal, e.g. `8`, `0x1F`.
type IntLit struct {
	exprBase
	Value int64
}

// NewIntLit constructs an IntLit node.
func NewIntLit(value int64, span source.Span) *IntLit {
	return &IntLit{exprBase{span}, value}
}

func (n *IntLit) String() string { return fmt.Sprintf("%d", n.Value) }

// UnaryOp represents a prefix unary operator: `-`, `+`, `~`, `not`.
type UnaryOp struct {
	exprBase
	Op      string
	Operand Expr
}

// NewUnaryOp constructs a UnaryOp node.
func NewUnaryOp(op string, operand Expr, span source.Span) *UnaryOp {
	return &UnaryOp{exprBase{span}, op, operand}
}

// BinOp represents an infix binary operator: `+ - * / % & | ^ << >>`.
type BinOp struct {
	exprBase
	Op          string
	Left, Right Expr
}

// NewBinOp constructs a BinOp node.
func NewBinOp(op string, left, right Expr, span source.Span) *BinOp {
	return &BinOp{exprBase{span}, op, left, right}
}

// BoolOp represents Python's short-circuiting `and`/`or`, applied to two or
// more operands. Used in edge guards: `clk.posedge or rst_n.negedge`.
type BoolOp struct {
	exprBase
	Op     string // "and" | "or"
	Values []Expr
}

// NewBoolOp constructs a BoolOp node.
func NewBoolOp(op string, values []Expr, span source.Span) *BoolOp {
	return &BoolOp{exprBase{span}, op, values}
}

// Compare represents a single binary comparison: `== != < <= > >=`. Python
// allows chained comparisons (`a < b < c`); this dialect does not need them,
// so only one operator/right-hand side is modelled.
type Compare struct {
	exprBase
	Left  Expr
	Op    string
	Right Expr
}

// NewCompare constructs a Compare node.
func NewCompare(left Expr, op string, right Expr, span source.Span) *Compare {
	return &Compare{exprBase{span}, left, op, right}
}

// Attribute represents `value.attr`, used for edge predicates
// (`clk.posedge`), submodule port references (`u_add.sum`), and enum member
// references (`State.RED`).
type Attribute struct {
	exprBase
	Value Expr
	Attr  string
}

// NewAttribute constructs an Attribute node.
func NewAttribute(value Expr, attr string, span source.Span) *Attribute {
	return &Attribute{exprBase{span}, value, attr}
}

// Index represents a single-element subscript: `data[3]`.
type Index struct {
	exprBase
	Value Expr
	At    Expr
}

// NewIndex constructs an Index node.
func NewIndex(value, at Expr, span source.Span) *Index {
	return &Index{exprBase{span}, value, at}
}

// Slice represents a bit-range subscript: `data[hi:lo]`.
type Slice struct {
	exprBase
	Value  Expr
	Hi, Lo Expr
}

// NewSlice constructs a Slice node.
func NewSlice(value, hi, lo Expr, span source.Span) *Slice {
	return &Slice{exprBase{span}, value, hi, lo}
}

// Tuple represents a parenthesised comma list `(a, b, c)`, used on the
// right-hand side of an assignment to mean concatenation.
type Tuple struct {
	exprBase
	Elts []Expr
}

// NewTuple constructs a Tuple node.
func NewTuple(elts []Expr, span source.Span) *Tuple {
	return &Tuple{exprBase{span}, elts}
}

// Keyword is a single `name=value` keyword argument in a Call.
type Keyword struct {
	Arg   string
	Value Expr
}

// Call represents a function/constructor call: `In(bit[8])`,
// `range(0, 8)`, `ParamAdder(width=8)`.
type Call struct {
	exprBase
	Func     Expr
	Args     []Expr
	Keywords []Keyword
}

// NewCall constructs a Call node.
func NewCall(fn Expr, args []Expr, keywords []Keyword, span source.Span) *Call {
	return &Call{exprBase{span}, fn, args, keywords}
}
