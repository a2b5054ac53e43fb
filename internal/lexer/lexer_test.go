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

import (
	"testing"

	"github.com/tky-kevin/phdc/pkg/util/source"
)

func TestLex_00(t *testing.T) {
	checkLex(t, "", END_OF)
}

func TestLex_01(t *testing.T) {
	checkLex(t, "x = 1\n", NAME, ASSIGN, INT, NEWLINE, END_OF)
}

func TestLex_02(t *testing.T) {
	checkLex(t, "class Foo(Module):\n    x = 1\n",
		KW_CLASS, NAME, LPAREN, NAME, RPAREN, COLON, NEWLINE,
		INDENT, NAME, ASSIGN, INT, NEWLINE,
		DEDENT, END_OF)
}

func TestLex_03(t *testing.T) {
	// multi-character operators must win over their single-char prefixes.
	checkLex(t, "a << 2 >= 3 != 4 <= 5 == 6\n",
		NAME, SHL, INT, GE, INT, NE, INT, LE, INT, EQ, INT, NEWLINE, END_OF)
}

func TestLex_04(t *testing.T) {
	// comments and blank lines contribute no tokens.
	checkLex(t, "# leading comment\n\nx = 1  # trailing\n",
		NAME, ASSIGN, INT, NEWLINE, END_OF)
}

func TestLex_05(t *testing.T) {
	// keywords are distinguished from plain identifiers, `_` is special.
	checkLex(t, "for i in range(8):\n    pass\n",
		KW_FOR, NAME, KW_IN, NAME, LPAREN, INT, RPAREN, COLON, NEWLINE,
		INDENT, KW_PASS, NEWLINE, DEDENT, END_OF)
}

func TestLex_06(t *testing.T) {
	checkLex(t, "case _:\n", KW_CASE, UNDERSCORE, COLON, NEWLINE, END_OF)
}

func TestLex_07(t *testing.T) {
	// implicit line joining inside brackets: no NEWLINE/INDENT within.
	checkLex(t, "x = (1 +\n     2)\n",
		NAME, ASSIGN, LPAREN, INT, PLUS, INT, RPAREN, NEWLINE, END_OF)
}

func TestLex_08(t *testing.T) {
	// nested blocks produce balanced INDENT/DEDENT pairs.
	checkLex(t, "if a:\n    if b:\n        x = 1\ny = 2\n",
		KW_IF, NAME, COLON, NEWLINE,
		INDENT, KW_IF, NAME, COLON, NEWLINE,
		INDENT, NAME, ASSIGN, INT, NEWLINE,
		DEDENT, DEDENT,
		NAME, ASSIGN, INT, NEWLINE, END_OF)
}

func TestLex_09(t *testing.T) {
	checkLexFails(t, "if a:\n        x = 1\n      y = 2\n")
}

func TestLex_10(t *testing.T) {
	checkLexFails(t, "x = 1 ` 2\n")
}

func TestLex_11(t *testing.T) {
	// hex and binary literals come through as single INT tokens.
	toks := lexOk(t, "x = 0x1F\ny = 0b101\n")

	if toks[2].Text != "0x1F" || toks[6].Text != "0b101" {
		t.Errorf("unexpected literal texts %q / %q", toks[2].Text, toks[6].Text)
	}
}

func lexOk(t *testing.T, text string) []Token {
	t.Helper()

	toks, err := Lex(source.NewSourceFile("test.phd", []byte(text)))
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}

	return toks
}

func checkLex(t *testing.T, text string, kinds ...Kind) {
	t.Helper()

	toks := lexOk(t, text)

	if len(toks) != len(kinds) {
		t.Fatalf("expected %d tokens, got %d (%v)", len(kinds), len(toks), toks)
	}

	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Errorf("token %d: expected kind %v, got %v (%q)", i, k, toks[i].Kind, toks[i].Text)
		}
	}
}

func checkLexFails(t *testing.T, text string) {
	t.Helper()

	if _, err := Lex(source.NewSourceFile("test.phd", []byte(text))); err == nil {
		t.Errorf("expected lex error for %q", text)
	}
}
