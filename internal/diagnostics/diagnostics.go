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

// Package diagnostics implements the compiler's structured error taxonomy
// (ParseError, DuplicateDefinition, UndeclaredName, ...), a per-module
// failure sink, and terminal rendering.
package diagnostics

import (
	"fmt"

	"github.com/tky-kevin/phdc/pkg/util/source"
)

// Kind identifies one of the diagnostic categories.
type Kind uint

// The diagnostic taxonomy.
const (
	ParseError Kind = iota
	DuplicateDefinition
	UndeclaredName
	NonStaticExpression
	NonStaticLoop
	MixedStorageClass
	IndexOutOfBounds
	WidthMismatch
	UnknownPort
	LatchWarning
)

var kindNames = [...]string{
	"ParseError",
	"DuplicateDefinition",
	"UndeclaredName",
	"NonStaticExpression",
	"NonStaticLoop",
	"MixedStorageClass",
	"IndexOutOfBounds",
	"WidthMismatch",
	"UnknownPort",
	"LatchWarning",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Unknown"
}

// Severity distinguishes diagnostics that abort emission of a module from
// those which are merely reported.
type Severity uint

// Severities.
const (
	Error Severity = iota
	Warning
)

// Only WidthMismatch and LatchWarning are warnings; every other kind aborts
// the module being compiled.
func (k Kind) Severity() Severity {
	if k == WidthMismatch || k == LatchWarning {
		return Warning
	}

	return Error
}

// Diagnostic is a single structured record: the module and entity it
// concerns, its kind, a human-readable message, and (when available) the
// source span it was raised against.
type Diagnostic struct {
	Module  string
	Entity  string
	Kind    Kind
	Message string
	Span    *source.Span
	File    *source.File
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Span != nil && d.File != nil {
		se := d.File.SyntaxError(*d.Span, d.Message)
		return fmt.Sprintf("%s: %s: %s", d.Kind, d.Entity, se.Error())
	}

	if d.Entity != "" {
		return fmt.Sprintf("%s: %s.%s: %s", d.Kind, d.Module, d.Entity, d.Message)
	}

	return fmt.Sprintf("%s: %s: %s", d.Kind, d.Module, d.Message)
}
