package expr

import (
	"strings"

	"csspc/node"
)

// Binding power of binary operators, higher binds tighter.
const (
	precNone = iota
	precOr
	precAnd
	precCompare
	precAdditive
	precMultiplicative
)

// parser walks a slice of value tokens. Binary operators join their operands
// whatever the surrounding whitespace.
type parser struct {
	e      *Engine
	tokens []*node.Node
	pos    int
	slash  bool
}

func (p *parser) peek() *node.Node {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return nil
}

func (p *parser) skipWS() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Is(node.KindWhitespace) {
		p.pos++
	}
}

// operator returns the next binary operator and its index without consuming
// anything.
func (p *parser) operator() (*node.Node, int, int) {
	i := p.pos
	for i < len(p.tokens) && p.tokens[i].Is(node.KindWhitespace) {
		i++
	}
	if i >= len(p.tokens) {
		return nil, i, precNone
	}
	t := p.tokens[i]
	return t, i, p.precedence(t)
}

func (p *parser) precedence(t *node.Node) int {
	switch t.Kind() {
	case node.KindIdentifier:
		switch t.Text() {
		case "or":
			return precOr
		case "and":
			return precAnd
		}
	case node.KindEqual, node.KindNotEqual, node.KindLessThan, node.KindLessEqual,
		node.KindGreaterThan, node.KindGreaterEqual:
		return precCompare
	case node.KindAdd, node.KindSubtract:
		return precAdditive
	case node.KindMultiply, node.KindModulo:
		return precMultiplicative
	case node.KindDivide:
		if !p.slash {
			return precMultiplicative
		}
	}
	return precNone
}

// expression implements precedence climbing, operators are left
// associative.
func (p *parser) expression(min int) (*node.Node, bool) {
	left, ok := p.unary()
	if !ok {
		return nil, false
	}
	for {
		op, at, prec := p.operator()
		if prec == precNone || prec <= min {
			return left, true
		}
		p.pos = at + 1
		right, ok := p.expression(prec)
		if !ok {
			return nil, false
		}
		if left, ok = p.e.binary(op, left, right); !ok {
			return nil, false
		}
	}
}

func (p *parser) unary() (*node.Node, bool) {
	p.skipWS()
	t := p.peek()
	if t == nil {
		pos := node.Position{}
		if len(p.tokens) > 0 {
			pos = p.tokens[len(p.tokens)-1].Pos()
		}
		p.e.rpt.Error(pos, "expected a value, found the end of the expression.")
		return nil, false
	}

	switch {
	case t.Is(node.KindAdd), t.Is(node.KindSubtract):
		p.pos++
		operand, ok := p.unary()
		if !ok {
			return nil, false
		}
		return p.e.negate(t, operand)
	case t.Is(node.KindIdentifier) && t.Text() == "not":
		p.pos++
		operand, ok := p.unary()
		if !ok {
			return nil, false
		}
		return p.e.not(t, operand)
	}
	p.pos++
	return p.e.primary(t)
}

// primary evaluates a single operand token.
func (e *Engine) primary(t *node.Node) (*node.Node, bool) {
	switch t.Kind() {
	case node.KindInteger, node.KindDecimal:
		if node.ClassifyUnit(t.Unit()) == node.UnitUnknown {
			e.rpt.Warning(t.Pos(), "unsupported unit \"%s\".", t.Unit())
		}
		return t, true
	case node.KindString, node.KindIdentifier, node.KindURL, node.KindColor,
		node.KindBoolean, node.KindAnPlusB:
		return t, true
	case node.KindHash:
		if c, ok := node.ParseHex(t.Text()); ok {
			return node.NewColor(t.Pos(), c), true
		}
		return t, true
	case node.KindVariable:
		return e.variable(t)
	case node.KindVariableFunction:
		return e.call(t)
	case node.KindFunction:
		return e.function(t)
	case node.KindOpenParen:
		values, ok := e.list(t.Children(), false)
		if !ok {
			return nil, false
		}
		if len(values) != 1 {
			e.rpt.Error(t.Pos(), "a parenthesized expression must evaluate to exactly one value.")
			return nil, false
		}
		return values[0], true
	case node.KindList:
		return t, true
	}
	e.rpt.Error(t.Pos(), "unexpected %s in expression.", t.Describe())
	return nil, false
}

// function evaluates internal functions and the arguments of any other.
func (e *Engine) function(fn *node.Node) (*node.Node, bool) {
	name := strings.ToLower(fn.Text())
	if rawFunctions[name] {
		children, ok := e.substitute(fn.Children())
		if !ok {
			return nil, false
		}
		fn.SetChildren(children)
		return fn, true
	}

	args, ok := e.arguments(fn)
	if !ok {
		return nil, false
	}
	if b, found := builtins[name]; found {
		if b.min > len(args) || (b.max >= 0 && len(args) > b.max) {
			e.arity(fn, b, len(args))
			return nil, false
		}
		if res, handled, ok := b.call(e, fn, args); handled || !ok {
			return res, ok
		}
	}

	// plain CSS function, keep it with evaluated arguments
	var children []*node.Node
	for i, a := range args {
		if i > 0 {
			children = append(children, node.New(node.KindComma, a.Pos()))
		}
		if a.Is(node.KindList) {
			children = append(children, a.Children()...)
		} else {
			children = append(children, a)
		}
	}
	fn.SetChildren(children)
	return fn, true
}

func (e *Engine) arity(fn *node.Node, b builtin, n int) {
	switch {
	case b.min == b.max:
		e.rpt.Error(fn.Pos(), "%s() expects exactly %d parameter(s), %d given.", fn.Text(), b.min, n)
	case b.max < 0:
		e.rpt.Error(fn.Pos(), "%s() expects at least %d parameter(s), %d given.", fn.Text(), b.min, n)
	default:
		e.rpt.Error(fn.Pos(), "%s() expects %d to %d parameters, %d given.", fn.Text(), b.min, b.max, n)
	}
}

