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

import (
	"fmt"
	"io"

	"github.com/tky-kevin/phdc/pkg/util/termio"
)

// Render writes a diagnostic to w. When color is true the diagnostic kind is
// highlighted red (errors) or yellow (warnings) using the same ANSI escape
// builder the rest of the CLI uses for its terminal UI.
func Render(w io.Writer, d *Diagnostic, color bool) {
	tag := d.Kind.String()

	if color {
		col := termio.TERM_RED
		if d.Kind.Severity() == Warning {
			col = termio.TERM_YELLOW
		}

		esc := termio.BoldAnsiEscape().FgColour(col).Build()
		reset := termio.ResetAnsiEscape().Build()
		tag = fmt.Sprintf("%s%s%s", esc, tag, reset)
	}

	fmt.Fprintf(w, "[%s] %s\n", tag, d.Error())
}
