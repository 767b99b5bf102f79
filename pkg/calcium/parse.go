package calcium

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"

	"github.com/calcium-lang/calcium/pkg/num"
)

// Parse reads the kernel's textual form: infix arithmetic over
// `+ - * / ^`, parentheses, decimal and integer literals, and
// `head(op, ...)` applications. It is the inverse of Serialize and the
// boundary used by textual rules and the CLI; the LaTeX front-end is an
// external collaborator.
//
// Identifiers written in snake_case are normalized to the CamelCase
// heads used internally (expand_all(x) means ExpandAll(x)); a few
// lowercase aliases (pi, i, true, false) map onto the built-in
// constants.
func (ctx *Context) Parse(text string) (Expr, error) {
	p := &parser{ctx: ctx, src: text}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, errors.Errorf("calcium: unexpected %q at offset %d", p.src[p.pos:], p.pos)
	}
	return e, nil
}

var identAliases = map[string]string{
	"pi":    "Pi",
	"i":     "ImaginaryUnit",
	"true":  "True",
	"false": "False",
}

type parser struct {
	ctx *Context
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) eat(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

// expr := term (('+'|'-') term)*
func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	var terms []Expr
	terms = append(terms, left)
	for {
		switch {
		case p.eat('+'):
			t, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		case p.eat('-'):
			t, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			terms = append(terms, p.ctx.Fn(HeadNegate, t))
		default:
			if len(terms) == 1 {
				return terms[0], nil
			}
			return p.ctx.Fn(HeadAdd, terms...), nil
		}
	}
}

// term := unary (('*'|'/') unary)*
func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.eat('*'):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = p.ctx.Fn(HeadMultiply, left, right)
		case p.eat('/'):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = p.ctx.Fn(HeadDivide, left, right)
		default:
			return left, nil
		}
	}
}

// unary := '-' unary | power
func (p *parser) parseUnary() (Expr, error) {
	if p.eat('-') {
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return p.ctx.Fn(HeadNegate, e), nil
	}
	return p.parsePower()
}

// power := atom ('^' unary)?   right-associative
func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.eat('^') {
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return p.ctx.Fn(HeadPower, base, exp), nil
	}
	return base, nil
}

func (p *parser) parseAtom() (Expr, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.eat(')') {
			return nil, errors.Errorf("calcium: missing ) at offset %d", p.pos)
		}
		return e, nil
	case c >= '0' && c <= '9':
		return p.parseNumber()
	case c == '_' || unicode.IsLetter(rune(c)):
		return p.parseIdent()
	case c == 0:
		return nil, errors.New("calcium: unexpected end of input")
	default:
		return nil, errors.Errorf("calcium: unexpected %q at offset %d", c, p.pos)
	}
}

func (p *parser) parseNumber() (Expr, error) {
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	text := p.src[start:p.pos]
	if !strings.Contains(text, ".") {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "calcium: bad integer %q", text)
		}
		return p.ctx.Int(n), nil
	}
	if p.ctx.Policy().Bignum() {
		f, err := num.RealFromString(text, p.ctx.Policy())
		if err != nil {
			return nil, errors.Wrapf(err, "calcium: bad number %q", text)
		}
		return p.ctx.Lit(f), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "calcium: bad number %q", text)
	}
	return p.ctx.Lit(num.Machine(f)), nil
}

func (p *parser) parseIdent() (Expr, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) {
			p.pos++
		} else {
			break
		}
	}
	name := p.src[start:p.pos]
	if alias, ok := identAliases[name]; ok {
		name = alias
	} else if strings.Contains(name, "_") {
		name = strcase.ToCamel(name)
	}

	if !p.eat('(') {
		return p.ctx.Sym(name), nil
	}
	var ops []Expr
	if p.peek() != ')' {
		for {
			op, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
			if !p.eat(',') {
				break
			}
		}
	}
	if !p.eat(')') {
		return nil, errors.Errorf("calcium: missing ) after %s at offset %d", name, p.pos)
	}
	return p.ctx.Fn(name, ops...), nil
}
