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
package diagnostics

import "github.com/tky-kevin/phdc/pkg/util/source"

// Sink accumulates diagnostics raised while compiling a single module. A
// module with at least one error-severity diagnostic aborts its own
// emission but does not prevent sibling modules from compiling.
type Sink struct {
	Module string
	File   *source.File
	items  []*Diagnostic
}

// NewSink constructs an empty sink for the named module.
func NewSink(module string, file *source.File) *Sink {
	return &Sink{Module: module, File: file}
}

// Report records a new diagnostic against this module, without an
// associated source span (used for cross-statement checks such as
// MixedStorageClass, which have no single span of blame).
func (s *Sink) Report(entity string, kind Kind, message string) {
	s.items = append(s.items, &Diagnostic{
		Module:  s.Module,
		Entity:  entity,
		Kind:    kind,
		Message: message,
	})
}

// ReportAt records a new diagnostic anchored to a source span.
func (s *Sink) ReportAt(entity string, kind Kind, span source.Span, message string) {
	s.items = append(s.items, &Diagnostic{
		Module:  s.Module,
		Entity:  entity,
		Kind:    kind,
		Message: message,
		Span:    &span,
		File:    s.File,
	})
}

// All returns every diagnostic recorded so far, in the order reported.
func (s *Sink) All() []*Diagnostic {
	return s.items
}

// HasErrors reports whether any recorded diagnostic is error-severity.
func (s *Sink) HasErrors() bool {
	for _, d := range s.items {
		if d.Kind.Severity() == Error {
			return true
		}
	}

	return false
}
