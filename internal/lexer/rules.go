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
package lexer

import "github.com/tky-kevin/phdc/pkg/util/source/lex"

// internalWhitespace matches one or more spaces/tabs which are not
// significant once we are past line-leading indentation.
const internalWhitespace = Kind(1000)

// internalComment matches a trailing `# ...` comment to end of line.
const internalComment = Kind(1001)

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func identScanner(items []rune) uint {
	if len(items) == 0 || !isIdentStart(items[0]) {
		return 0
	}

	n := uint(1)
	for n < uint(len(items)) && isIdentCont(items[n]) {
		n++
	}

	return n
}

func intScanner(items []rune) uint {
	if len(items) == 0 || !isDigit(items[0]) {
		return 0
	}
	// hex / binary literals
	if items[0] == '0' && len(items) > 1 && (items[1] == 'x' || items[1] == 'X') {
		n := uint(2)
		for n < uint(len(items)) && isHexDigit(items[n]) {
			n++
		}

		if n > 2 {
			return n
		}
	}

	if items[0] == '0' && len(items) > 1 && (items[1] == 'b' || items[1] == 'B') {
		n := uint(2)
		for n < uint(len(items)) && (items[n] == '0' || items[n] == '1') {
			n++
		}

		if n > 2 {
			return n
		}
	}

	n := uint(1)
	for n < uint(len(items)) && isDigit(items[n]) {
		n++
	}

	return n
}

func stringScanner(items []rune) uint {
	if len(items) == 0 || (items[0] != '\'' && items[0] != '"') {
		return 0
	}

	quote := items[0]
	n := uint(1)

	for n < uint(len(items)) {
		if items[n] == '\\' && n+1 < uint(len(items)) {
			n += 2
			continue
		}

		if items[n] == quote {
			return n + 1
		}

		n++
	}
	// unterminated: consume to end-of-line, caller will report an error.
	return n
}

// whitespaceScanner also absorbs the embedded '\n' markers that a
// bracket-joined logical line (see lexer.go's bracketDelta-driven line
// joining) leaves where a physical line break used to be.
func whitespaceScanner(items []rune) uint {
	n := uint(0)
	for n < uint(len(items)) && (items[n] == ' ' || items[n] == '\t' || items[n] == '\n') {
		n++
	}

	return n
}

func commentScanner(items []rune) uint {
	if len(items) == 0 || items[0] != '#' {
		return 0
	}

	return uint(len(items))
}

// rules is consulted top-to-bottom; the first matching rule wins, so
// multi-character operators must precede their single-character prefixes.
var rules = []lex.LexRule[rune]{
	lex.Rule[rune](whitespaceScanner, uint(internalWhitespace)),
	lex.Rule[rune](commentScanner, uint(internalComment)),
	lex.Rule[rune](identScanner, uint(NAME)),
	lex.Rule[rune](intScanner, uint(INT)),
	lex.Rule[rune](stringScanner, uint(STRING)),
	lex.Rule[rune](lex.Unit('<', '<'), uint(SHL)),
	lex.Rule[rune](lex.Unit('>', '>'), uint(SHR)),
	lex.Rule[rune](lex.Unit('=', '='), uint(EQ)),
	lex.Rule[rune](lex.Unit('!', '='), uint(NE)),
	lex.Rule[rune](lex.Unit('<', '='), uint(LE)),
	lex.Rule[rune](lex.Unit('>', '='), uint(GE)),
	lex.Rule[rune](lex.Unit('('), uint(LPAREN)),
	lex.Rule[rune](lex.Unit(')'), uint(RPAREN)),
	lex.Rule[rune](lex.Unit('['), uint(LBRACKET)),
	lex.Rule[rune](lex.Unit(']'), uint(RBRACKET)),
	lex.Rule[rune](lex.Unit(','), uint(COMMA)),
	lex.Rule[rune](lex.Unit(':'), uint(COLON)),
	lex.Rule[rune](lex.Unit('.'), uint(DOT)),
	lex.Rule[rune](lex.Unit('='), uint(ASSIGN)),
	lex.Rule[rune](lex.Unit('+'), uint(PLUS)),
	lex.Rule[rune](lex.Unit('-'), uint(MINUS)),
	lex.Rule[rune](lex.Unit('*'), uint(STAR)),
	lex.Rule[rune](lex.Unit('/'), uint(SLASH)),
	lex.Rule[rune](lex.Unit('%'), uint(PERCENT)),
	lex.Rule[rune](lex.Unit('&'), uint(AMP)),
	lex.Rule[rune](lex.Unit('|'), uint(PIPE)),
	lex.Rule[rune](lex.Unit('^'), uint(CARET)),
	lex.Rule[rune](lex.Unit('~'), uint(TILDE)),
	lex.Rule[rune](lex.Unit('<'), uint(LT)),
	lex.Rule[rune](lex.Unit('>'), uint(GT)),
}
