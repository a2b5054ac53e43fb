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

// Package ast provides a tagged-variant representation of the subset of
// Python syntax accepted as a .phd source file. Nodes are consumed purely as
// syntax: nothing in this package, nor any of its callers, executes source
// code as Python.
package ast

import "github.com/tky-kevin/phdc/pkg/util/source"

// Node is implemented by every element of the abstract syntax tree.
type Node interface {
	// Span returns the range of the original source text this node covers.
	Span() source.Span
}

// Program is the root of a parsed .phd file: a flat sequence of top-level
// statements (imports are recorded but otherwise ignored, class definitions
// carry the module and enum bodies).
type Program struct {
	Path  string
	Body  []Stmt
	Spans source.Span
}

// Span implements Node.
func (p *Program) Span() source.Span { return p.Spans }
