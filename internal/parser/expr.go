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
package parser

import (
	"strconv"

	"github.com/tky-kevin/phdc/internal/ast"
	"github.com/tky-kevin/phdc/internal/lexer"
)

// parseExpr is the entry point for the full precedence-climbing expression
// grammar, from lowest to highest precedence:
//
//	or > and > not > comparison > | > ^ > & > shift > +- > */% > unary > postfix > atom
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	if !p.at(lexer.KW_OR) {
		return left, nil
	}

	values := []ast.Expr{left}

	for p.at(lexer.KW_OR) {
		p.advance()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		values = append(values, right)
	}

	span := values[0].Span().Merge(values[len(values)-1].Span())

	return ast.NewBoolOp("or", values, span), nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	if !p.at(lexer.KW_AND) {
		return left, nil
	}

	values := []ast.Expr{left}

	for p.at(lexer.KW_AND) {
		p.advance()

		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		values = append(values, right)
	}

	span := values[0].Span().Merge(values[len(values)-1].Span())

	return ast.NewBoolOp("and", values, span), nil
}

func (p *Parser) parseNot() (ast.Expr, error) {
	if p.at(lexer.KW_NOT) {
		t := p.advance()

		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		return ast.NewUnaryOp("not", operand, t.Span.Merge(operand.Span())), nil
	}

	return p.parseComparison()
}

var compareOps = map[lexer.Kind]string{
	lexer.EQ: "==",
	lexer.NE: "!=",
	lexer.LT: "<",
	lexer.LE: "<=",
	lexer.GT: ">",
	lexer.GE: ">=",
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}

	op, ok := compareOps[p.kind()]
	if !ok {
		return left, nil
	}

	p.advance()

	right, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}

	return ast.NewCompare(left, op, right, left.Span().Merge(right.Span())), nil
}

func (p *Parser) parseBitOr() (ast.Expr, error) {
	left, err := p.parseBitXor()
	if err != nil {
		return nil, err
	}

	for p.at(lexer.PIPE) {
		p.advance()

		right, err := p.parseBitXor()
		if err != nil {
			return nil, err
		}

		left = ast.NewBinOp("|", left, right, left.Span().Merge(right.Span()))
	}

	return left, nil
}

func (p *Parser) parseBitXor() (ast.Expr, error) {
	left, err := p.parseBitAnd()
	if err != nil {
		return nil, err
	}

	for p.at(lexer.CARET) {
		p.advance()

		right, err := p.parseBitAnd()
		if err != nil {
			return nil, err
		}

		left = ast.NewBinOp("^", left, right, left.Span().Merge(right.Span()))
	}

	return left, nil
}

func (p *Parser) parseBitAnd() (ast.Expr, error) {
	left, err := p.parseShift()
	if err != nil {
		return nil, err
	}

	for p.at(lexer.AMP) {
		p.advance()

		right, err := p.parseShift()
		if err != nil {
			return nil, err
		}

		left = ast.NewBinOp("&", left, right, left.Span().Merge(right.Span()))
	}

	return left, nil
}

func (p *Parser) parseShift() (ast.Expr, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}

	for p.at(lexer.SHL) || p.at(lexer.SHR) {
		op := "<<"
		if p.at(lexer.SHR) {
			op = ">>"
		}

		p.advance()

		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}

		left = ast.NewBinOp(op, left, right, left.Span().Merge(right.Span()))
	}

	return left, nil
}

func (p *Parser) parseAdd() (ast.Expr, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}

	for p.at(lexer.PLUS) || p.at(lexer.MINUS) {
		op := "+"
		if p.at(lexer.MINUS) {
			op = "-"
		}

		p.advance()

		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}

		left = ast.NewBinOp(op, left, right, left.Span().Merge(right.Span()))
	}

	return left, nil
}

func (p *Parser) parseMul() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.at(lexer.STAR) || p.at(lexer.SLASH) || p.at(lexer.PERCENT) {
		op := "*"
		switch p.kind() {
		case lexer.SLASH:
			op = "/"
		case lexer.PERCENT:
			op = "%"
		}

		p.advance()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = ast.NewBinOp(op, left, right, left.Span().Merge(right.Span()))
	}

	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.kind() {
	case lexer.MINUS, lexer.PLUS, lexer.TILDE:
		op := p.advance()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return ast.NewUnaryOp(op.String(), operand, op.Span.Merge(operand.Span())), nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles the left-recursive suffix forms: call, subscript
// (index or slice), and attribute access, chained in any order (e.g.
// `u_add.sum[7:0]`).
func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for {
		switch p.kind() {
		case lexer.DOT:
			p.advance()

			nameTok, err := p.expect(lexer.NAME)
			if err != nil {
				return nil, err
			}

			expr = ast.NewAttribute(expr, nameTok.Text, expr.Span().Merge(nameTok.Span))
		case lexer.LPAREN:
			p.advance()

			var args []ast.Expr

			var keywords []ast.Keyword

			for !p.at(lexer.RPAREN) {
				if p.at(lexer.NAME) && p.peekIsAssign() {
					nameTok := p.advance()
					p.advance() // '='

					value, err := p.parseExpr()
					if err != nil {
						return nil, err
					}

					keywords = append(keywords, ast.Keyword{Arg: nameTok.Text, Value: value})
				} else {
					arg, err := p.parseExpr()
					if err != nil {
						return nil, err
					}

					args = append(args, arg)
				}

				if p.at(lexer.COMMA) {
					p.advance()
					continue
				}

				break
			}

			closeTok, err := p.expect(lexer.RPAREN)
			if err != nil {
				return nil, err
			}

			expr = ast.NewCall(expr, args, keywords, expr.Span().Merge(closeTok.Span))
		case lexer.LBRACKET:
			p.advance()

			first, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			if p.at(lexer.COLON) {
				p.advance()

				lo, err := p.parseExpr()
				if err != nil {
					return nil, err
				}

				closeTok, err := p.expect(lexer.RBRACKET)
				if err != nil {
					return nil, err
				}

				expr = ast.NewSlice(expr, first, lo, expr.Span().Merge(closeTok.Span))
			} else {
				closeTok, err := p.expect(lexer.RBRACKET)
				if err != nil {
					return nil, err
				}

				expr = ast.NewIndex(expr, first, expr.Span().Merge(closeTok.Span))
			}
		default:
			return expr, nil
		}
	}
}

// peekIsAssign reports whether the token after the current NAME is '=',
// distinguishing a keyword argument (`width=8`) from a positional one that
// happens to start with a name.
func (p *Parser) peekIsAssign() bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}

	return p.tokens[p.pos+1].Kind == lexer.ASSIGN
}

func (p *Parser) parseAtom() (ast.Expr, error) {
	switch p.kind() {
	case lexer.NAME:
		t := p.advance()
		return ast.NewName(t.Text, t.Span), nil
	case lexer.INT:
		t := p.advance()

		v, err := parseIntLiteral(t.Text)
		if err != nil {
			return nil, p.file.SyntaxError(t.Span, err.Error())
		}

		return ast.NewIntLit(v, t.Span), nil
	case lexer.LPAREN:
		open := p.advance()

		if p.at(lexer.RPAREN) {
			close := p.advance()
			return ast.NewTuple(nil, open.Span.Merge(close.Span)), nil
		}

		first, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if p.at(lexer.COMMA) {
			elts := []ast.Expr{first}

			for p.at(lexer.COMMA) {
				p.advance()

				if p.at(lexer.RPAREN) {
					break
				}

				elt, err := p.parseExpr()
				if err != nil {
					return nil, err
				}

				elts = append(elts, elt)
			}

			close, err := p.expect(lexer.RPAREN)
			if err != nil {
				return nil, err
			}

			return ast.NewTuple(elts, open.Span.Merge(close.Span)), nil
		}

		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}

		return first, nil
	default:
		return nil, p.errorf("expected expression, found %s", p.cur().String())
	}
}

// parseIntLiteral decodes a decimal, `0x`, or `0b` integer token produced by
// the lexer's intScanner.
func parseIntLiteral(text string) (int64, error) {
	switch {
	case len(text) > 2 && (text[1] == 'x' || text[1] == 'X'):
		return strconv.ParseInt(text[2:], 16, 64)
	case len(text) > 2 && (text[1] == 'b' || text[1] == 'B'):
		return strconv.ParseInt(text[2:], 2, 64)
	default:
		return strconv.ParseInt(text, 10, 64)
	}
}
