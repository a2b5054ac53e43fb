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
	"github.com/tky-kevin/phdc/pkg/util/source"
	"github.com/tky-kevin/phdc/pkg/util/source/lex"
)

// Lex tokenises an entire source file into a flat token stream terminated by
// a single END_OF token. Blank lines and comment-only lines contribute no
// tokens. A logical line may span several physical lines so long as an
// opening `(`/`[` has not yet been matched by a closing `)`/`]` (Python's
// "implicit line joining"); a trailing backslash continuation is not
// supported.
func Lex(file *source.File) ([]Token, error) {
	contents := file.Contents()

	var (
		tokens    []Token
		indents   = []int{0}
		lineStart = 0
	)

	emitIndentChanges := func(col, pos int) error {
		top := indents[len(indents)-1]

		switch {
		case col > top:
			indents = append(indents, col)
			tokens = append(tokens, Token{INDENT, "", source.NewSpan(pos, pos)})
		case col < top:
			for len(indents) > 1 && indents[len(indents)-1] > col {
				indents = indents[:len(indents)-1]
				tokens = append(tokens, Token{DEDENT, "", source.NewSpan(pos, pos)})
			}

			if indents[len(indents)-1] != col {
				return file.SyntaxError(source.NewSpan(pos, pos), "inconsistent indentation")
			}
		}

		return nil
	}

outer:
	for lineStart <= len(contents) {
		firstLineStart := lineStart
		var logical []rune
		blank := false
		depth := 0
		leadCol := -1

		for {
			lineEnd := lineStart
			for lineEnd < len(contents) && contents[lineEnd] != '\n' {
				lineEnd++
			}

			line := contents[lineStart:lineEnd]
			trimmed, col := stripIndent(line)

			if leadCol < 0 {
				leadCol = col
				if len(trimmed) == 0 || trimmed[0] == '#' {
					// blank/comment-only line: nothing to join onto.
					blank = true
					lineStart = lineEnd + 1

					break
				}

				logical = append(logical, trimmed...)
			} else {
				logical = append(logical, '\n')
				logical = append(logical, trimmed...)
			}

			depth += bracketDelta(trimmed)
			lineStart = lineEnd + 1

			if depth <= 0 || lineStart > len(contents) {
				break
			}
		}

		if blank {
			continue outer
		}

		if err := emitIndentChanges(leadCol, firstLineStart+leadCol); err != nil {
			return nil, err
		}

		lineToks, err := lexLine(file, logical, firstLineStart+leadCol)
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, lineToks...)
		tokens = append(tokens, Token{NEWLINE, "", source.NewSpan(lineStart-1, lineStart-1)})
	}

	for len(indents) > 1 {
		indents = indents[:len(indents)-1]
		tokens = append(tokens, Token{DEDENT, "", source.NewSpan(len(contents), len(contents))})
	}

	tokens = append(tokens, Token{END_OF, "", source.NewSpan(len(contents), len(contents))})

	return tokens, nil
}

// bracketDelta counts net `(`/`[` vs `)`/`]` on a line of raw text, ignoring
// the contents of string and comment tokens.
func bracketDelta(line []rune) int {
	delta := 0

	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '#':
			return delta
		case '\'', '"':
			n := stringScanner(line[i:])
			if n == 0 {
				return delta
			}

			i += int(n) - 1
		case '(', '[':
			delta++
		case ')', ']':
			delta--
		}
	}

	return delta
}

// stripIndent removes leading spaces/tabs from line, returning the
// remainder and the indentation column (tabs count as a single column, so
// a .phd file that mixes tabs and spaces is not measured as Python would).
func stripIndent(line []rune) ([]rune, int) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}

	return line[i:], i
}

func lexLine(file *source.File, line []rune, base int) ([]Token, error) {
	lx := lex.NewLexer(line, rules...)

	var out []Token

	for lx.HasNext() {
		tok := lx.Next()
		kind := Kind(tok.Kind)

		if kind == internalWhitespace || kind == internalComment {
			continue
		}

		start := base + tok.Span.Start()
		end := base + tok.Span.End()
		text := string(line[tok.Span.Start():tok.Span.End()])

		if kind == NAME {
			if kw, ok := keywords[text]; ok {
				kind = kw
			} else if text == "_" {
				kind = UNDERSCORE
			}
		}

		out = append(out, Token{kind, text, source.NewSpan(start, end)})
	}

	if lx.Remaining() > 0 {
		pos := base + len(line) - int(lx.Remaining())
		return nil, file.SyntaxError(source.NewSpan(pos, pos+1), "unrecognised character")
	}

	return out, nil
}
