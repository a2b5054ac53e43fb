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

// Package parser implements a recursive-descent parser from the lexer's flat
// token stream into internal/ast. It accepts only the small subset of
// Python statement and expression grammar a .phd file needs: module/enum
// class bodies, assignment, if/elif/else, for-range loops, match/case, and
// the usual arithmetic/bitwise/comparison expression grammar.
package parser

import (
	"fmt"

	"github.com/tky-kevin/phdc/internal/ast"
	"github.com/tky-kevin/phdc/internal/lexer"
	"github.com/tky-kevin/phdc/pkg/util/source"
)

// Parser holds a token stream and the current read position.
type Parser struct {
	file   *source.File
	tokens []lexer.Token
	pos    int
}

// Parse tokenises and parses a whole source file into a Program.
func Parse(file *source.File) (*ast.Program, error) {
	toks, err := lexer.Lex(file)
	if err != nil {
		return nil, err
	}

	p := &Parser{file: file, tokens: toks}

	body, err := p.parseTopLevel()
	if err != nil {
		return nil, err
	}

	start := 0
	end := 0

	if len(toks) > 0 {
		end = toks[len(toks)-1].Span.End()
	}

	return &ast.Program{Path: file.Filename(), Body: body, Spans: source.NewSpan(start, end)}, nil
}

func (p *Parser) cur() lexer.Token  { return p.tokens[p.pos] }
func (p *Parser) kind() lexer.Kind  { return p.tokens[p.pos].Kind }
func (p *Parser) advance() lexer.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}

	return t
}

func (p *Parser) at(k lexer.Kind) bool { return p.kind() == k }

func (p *Parser) errorf(format string, args ...any) error {
	return p.file.SyntaxError(p.cur().Span, fmt.Sprintf(format, args...))
}

func (p *Parser) expect(k lexer.Kind) (lexer.Token, error) {
	if !p.at(k) {
		return lexer.Token{}, p.errorf("expected %s, found %s", lexer.Token{Kind: k}.String(), p.cur().String())
	}

	return p.advance(), nil
}

// skipNewlines consumes any run of blank NEWLINE tokens, which can appear
// between top-level statements and at the very start/end of a file.
func (p *Parser) skipNewlines() {
	for p.at(lexer.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) parseTopLevel() ([]ast.Stmt, error) {
	var body []ast.Stmt

	p.skipNewlines()

	for !p.at(lexer.END_OF) {
		switch p.kind() {
		case lexer.KW_IMPORT, lexer.KW_FROM:
			stmt, err := p.parseImport()
			if err != nil {
				return nil, err
			}

			body = append(body, stmt)
		case lexer.KW_CLASS:
			stmt, err := p.parseClassDef()
			if err != nil {
				return nil, err
			}

			body = append(body, stmt)
		default:
			return nil, p.errorf("expected import or class definition at top level, found %s", p.cur().String())
		}

		p.skipNewlines()
	}

	return body, nil
}

// parseImport consumes an entire logical import line verbatim as text; its
// content is never resolved, so the parser does not need to distinguish
// `import x` from `from x import (a, b)`.
func (p *Parser) parseImport() (ast.Stmt, error) {
	start := p.cur().Span

	var text string

	depth := 0
	for {
		t := p.cur()
		if t.Kind == lexer.LPAREN || t.Kind == lexer.LBRACKET {
			depth++
		}
		if t.Kind == lexer.RPAREN || t.Kind == lexer.RBRACKET {
			depth--
		}

		if t.Kind == lexer.NEWLINE && depth <= 0 {
			break
		}
		if t.Kind == lexer.END_OF {
			break
		}

		if text != "" {
			text += " "
		}
		text += t.String()

		p.advance()
	}

	end := p.cur().Span
	span := start.Merge(end)

	if p.at(lexer.NEWLINE) {
		p.advance()
	}

	return ast.NewImport(text, span), nil
}

// parseClassDef parses `class Name(Base, ...): <suite>`.
func (p *Parser) parseClassDef() (*ast.ClassDef, error) {
	start := p.cur().Span

	if _, err := p.expect(lexer.KW_CLASS); err != nil {
		return nil, err
	}

	nameTok, err := p.expect(lexer.NAME)
	if err != nil {
		return nil, err
	}

	var bases []string

	if p.at(lexer.LPAREN) {
		p.advance()

		for !p.at(lexer.RPAREN) {
			baseTok, err := p.expect(lexer.NAME)
			if err != nil {
				return nil, err
			}

			bases = append(bases, baseTok.Text)

			if p.at(lexer.COMMA) {
				p.advance()
				continue
			}

			break
		}

		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
	}

	body, end, err := p.parseSuite(p.parseClassBodyStmt)
	if err != nil {
		return nil, err
	}

	return ast.NewClassDef(nameTok.Text, bases, body, start.Merge(end)), nil
}

// parseClassBodyStmt parses one statement inside a module/enum class body:
// a plain assignment, a nested class definition (used for an inline enum
// member list written as a class), or any ordinary statement.
func (p *Parser) parseClassBodyStmt() (ast.Stmt, error) {
	if p.at(lexer.KW_CLASS) {
		return p.parseClassDef()
	}

	return p.parseStmt()
}

// parseSuite parses a compound statement's body, in either of Python's two
// forms: an indented block (`:` NEWLINE INDENT stmt+ DEDENT), or a one-line
// suite (`:` stmt+ NEWLINE, statements following one another on the line;
// the lexer has no `;` token, so no separator is accepted). parseOne
// parses a single statement for both forms.
func (p *Parser) parseSuite(parseOne func() (ast.Stmt, error)) ([]ast.Stmt, source.Span, error) {
	colon, err := p.expect(lexer.COLON)
	if err != nil {
		return nil, source.Span{}, err
	}

	if p.at(lexer.NEWLINE) {
		p.advance()

		if _, err := p.expect(lexer.INDENT); err != nil {
			return nil, source.Span{}, err
		}

		var body []ast.Stmt

		for !p.at(lexer.DEDENT) {
			stmt, err := parseOne()
			if err != nil {
				return nil, source.Span{}, err
			}

			body = append(body, stmt)
			p.skipNewlines()
		}

		end := p.cur().Span
		p.advance() // DEDENT

		return body, colon.Span.Merge(end), nil
	}

	// one-line suite
	var body []ast.Stmt

	for {
		stmt, err := parseOne()
		if err != nil {
			return nil, source.Span{}, err
		}

		body = append(body, stmt)

		if p.at(lexer.COMMA) {
			// not valid Python, but comma cannot start parseOne either; treat
			// as a hard stop so malformed input is reported clearly.
			break
		}

		if !p.at(lexer.NEWLINE) && !p.at(lexer.END_OF) {
			continue
		}

		break
	}

	end := p.cur().Span
	if p.at(lexer.NEWLINE) {
		p.advance()
	}

	return body, colon.Span.Merge(end), nil
}

// parseStmt parses a single statement that can appear inside a class,
// if/elif/else, for, or match/case body.
func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.kind() {
	case lexer.KW_PASS:
		t := p.advance()
		return ast.NewPass(t.Span), nil
	case lexer.KW_IF:
		return p.parseIf()
	case lexer.KW_FOR:
		return p.parseFor()
	case lexer.KW_MATCH:
		return p.parseMatch()
	case lexer.KW_IMPORT, lexer.KW_FROM:
		return p.parseImport()
	default:
		return p.parseAssignOrExpr()
	}
}

// parseAssignOrExpr parses `target = value` or a bare expression statement
// (the latter absorbed as Pass: it carries no hardware meaning, e.g. a
// docstring literal).
func (p *Parser) parseAssignOrExpr() (ast.Stmt, error) {
	start := p.cur().Span

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.at(lexer.ASSIGN) {
		p.advance()

		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		return ast.NewAssign(expr, value, start.Merge(value.Span())), nil
	}

	return ast.NewPass(start.Merge(expr.Span())), nil
}

// parseIf parses `if test: body (elif test: body)* (else: body)?`. An elif
// chain is encoded as a single-statement Orelse holding a nested If.
func (p *Parser) parseIf() (ast.Stmt, error) {
	start := p.cur().Span

	if _, err := p.expect(lexer.KW_IF); err != nil {
		return nil, err
	}

	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	body, end, err := p.parseSuite(p.parseStmt)
	if err != nil {
		return nil, err
	}

	var orelse []ast.Stmt

	if p.at(lexer.KW_ELIF) {
		elifTok := p.cur()

		nested, err := p.parseElif()
		if err != nil {
			return nil, err
		}

		orelse = []ast.Stmt{nested}
		end = elifTok.Span.Merge(nested.Span())
	} else if p.at(lexer.KW_ELSE) {
		p.advance()

		elseBody, elseEnd, err := p.parseSuite(p.parseStmt)
		if err != nil {
			return nil, err
		}

		orelse = elseBody
		end = elseEnd
	}

	return ast.NewIf(test, body, orelse, start.Merge(end)), nil
}

// parseElif is identical to parseIf but starting from the `elif` keyword,
// so it can recurse into further elif/else arms.
func (p *Parser) parseElif() (ast.Stmt, error) {
	start := p.cur().Span

	if _, err := p.expect(lexer.KW_ELIF); err != nil {
		return nil, err
	}

	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	body, end, err := p.parseSuite(p.parseStmt)
	if err != nil {
		return nil, err
	}

	var orelse []ast.Stmt

	if p.at(lexer.KW_ELIF) {
		nested, err := p.parseElif()
		if err != nil {
			return nil, err
		}

		orelse = []ast.Stmt{nested}
		end = nested.Span()
	} else if p.at(lexer.KW_ELSE) {
		p.advance()

		elseBody, elseEnd, err := p.parseSuite(p.parseStmt)
		if err != nil {
			return nil, err
		}

		orelse = elseBody
		end = elseEnd
	}

	return ast.NewIf(test, body, orelse, start.Merge(end)), nil
}

// parseFor parses `for target in range(...): body`.
func (p *Parser) parseFor() (ast.Stmt, error) {
	start := p.cur().Span

	if _, err := p.expect(lexer.KW_FOR); err != nil {
		return nil, err
	}

	targetTok, err := p.expect(lexer.NAME)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.KW_IN); err != nil {
		return nil, err
	}

	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	body, end, err := p.parseSuite(p.parseStmt)
	if err != nil {
		return nil, err
	}

	return ast.NewFor(targetTok.Text, iter, body, start.Merge(end)), nil
}

// parseMatch parses `match subject: (case pattern: body)+`. `case _:` marks
// the wildcard arm, recorded with a nil Pattern.
func (p *Parser) parseMatch() (ast.Stmt, error) {
	start := p.cur().Span

	if _, err := p.expect(lexer.KW_MATCH); err != nil {
		return nil, err
	}

	subject, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.INDENT); err != nil {
		return nil, err
	}

	var cases []ast.CaseClause

	end := subject.Span()

	for !p.at(lexer.DEDENT) {
		if _, err := p.expect(lexer.KW_CASE); err != nil {
			return nil, err
		}

		var pattern ast.Expr

		if p.at(lexer.UNDERSCORE) {
			p.advance()
		} else {
			pattern, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}

		body, suiteEnd, err := p.parseSuite(p.parseStmt)
		if err != nil {
			return nil, err
		}

		cases = append(cases, ast.CaseClause{Pattern: pattern, Body: body})
		end = suiteEnd

		p.skipNewlines()
	}

	p.advance() // DEDENT

	return ast.NewMatch(subject, cases, start.Merge(end)), nil
}
