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

// Package lexer tokenises .phd source text: a line-oriented indentation pass
// (Kind INDENT/DEDENT/NEWLINE) feeding a flat, rule-based scanner (built on
// pkg/util/source/lex) for the tokens within each logical line.
package lexer

import "github.com/tky-kevin/phdc/pkg/util/source"

// Kind identifies the lexical category of a Token.
type Kind uint

// Token kinds. INDENT/DEDENT/NEWLINE/END_OF are synthesised by the
// indentation pass; everything else comes from the per-line rule scanner.
const (
	ILLEGAL Kind = iota
	END_OF
	NEWLINE
	INDENT
	DEDENT
	NAME
	INT
	// keywords
	KW_CLASS
	KW_IF
	KW_ELIF
	KW_ELSE
	KW_FOR
	KW_IN
	KW_MATCH
	KW_CASE
	KW_AND
	KW_OR
	KW_NOT
	KW_PASS
	KW_IMPORT
	KW_FROM
	// punctuation / operators
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	COMMA
	COLON
	DOT
	ASSIGN
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	AMP
	PIPE
	CARET
	TILDE
	SHL
	SHR
	EQ
	NE
	LT
	LE
	GT
	GE
	UNDERSCORE
	STRING
)

var keywords = map[string]Kind{
	"class":  KW_CLASS,
	"if":     KW_IF,
	"elif":   KW_ELIF,
	"else":   KW_ELSE,
	"for":    KW_FOR,
	"in":     KW_IN,
	"match":  KW_MATCH,
	"case":   KW_CASE,
	"and":    KW_AND,
	"or":     KW_OR,
	"not":    KW_NOT,
	"pass":   KW_PASS,
	"import": KW_IMPORT,
	"from":   KW_FROM,
}

// Token is a single lexical unit together with its source position.
type Token struct {
	Kind Kind
	Text string
	Span source.Span
}

// String gives a short human-readable rendering, used in diagnostics.
func (t Token) String() string {
	if t.Text != "" {
		return t.Text
	}

	return kindNames[t.Kind]
}

var kindNames = map[Kind]string{
	ILLEGAL:  "<illegal>",
	END_OF:   "<eof>",
	NEWLINE:  "<newline>",
	INDENT:   "<indent>",
	DEDENT:   "<dedent>",
	NAME:     "<name>",
	INT:      "<int>",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	COMMA:    ",",
	COLON:    ":",
	DOT:      ".",
	ASSIGN:   "=",
	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	PERCENT:  "%",
	AMP:      "&",
	PIPE:     "|",
	CARET:    "^",
	TILDE:    "~",
	SHL:      "<<",
	SHR:      ">>",
	EQ:       "==",
	NE:       "!=",
	LT:       "<",
	LE:       "<=",
	GT:       ">",
	GE:       ">=",
	STRING:   "<string>",
}
