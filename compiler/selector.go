package compiler

import (
	"strings"

	"csspc/expr"
	"csspc/node"
)

// selector is a cursor over tokens of one selector alternative.
type selector struct {
	c      *Compiler
	tokens []*node.Node
	pos    int
	nested bool
}

func (s *selector) peek() *node.Node {
	if s.pos < len(s.tokens) {
		return s.tokens[s.pos]
	}
	return nil
}

func (s *selector) next() *node.Node {
	t := s.peek()
	if t != nil {
		s.pos++
	}
	return t
}

func (s *selector) skipWS() {
	for s.pos < len(s.tokens) && s.tokens[s.pos].Is(node.KindWhitespace) {
		s.pos++
	}
}

func isCombinator(n *node.Node) bool {
	return n.Is(node.KindGreaterThan, node.KindAdd, node.KindTilde)
}

// clean drops comments and surrounding whitespace.
func clean(tokens []*node.Node) []*node.Node {
	out := make([]*node.Node, 0, len(tokens))
	for _, t := range tokens {
		if !t.Is(node.KindComment) {
			out = append(out, t)
		}
	}
	for len(out) > 0 && out[0].Is(node.KindWhitespace) {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1].Is(node.KindWhitespace) {
		out = out[:len(out)-1]
	}
	return out
}

// alternatives splits a comma separated list. Leading, trailing and doubled
// commas each get their own diagnostic.
func (c *Compiler) alternatives(pos node.Position, tokens []*node.Node) ([][]*node.Node, bool) {
	tokens = clean(tokens)
	if len(tokens) == 0 {
		c.rpt.Error(pos, "a rule must start with a selector.")
		return nil, false
	}
	if tokens[0].Is(node.KindComma) {
		c.rpt.Error(tokens[0].Pos(), "a selector list cannot start with a comma.")
		return nil, false
	}

	var (
		out [][]*node.Node
		cur []*node.Node
	)
	for _, t := range tokens {
		if !t.Is(node.KindComma) {
			cur = append(cur, t)
			continue
		}
		if len(clean(cur)) == 0 {
			c.rpt.Error(t.Pos(), "a selector list cannot include two commas in a row.")
			return nil, false
		}
		out = append(out, clean(cur))
		cur = nil
	}
	if len(clean(cur)) == 0 {
		c.rpt.Error(tokens[len(tokens)-1].Pos(), "a selector list cannot end with a comma.")
		return nil, false
	}
	return append(out, clean(cur)), true
}

// selectorList compiles every alternative of a rule selector into an ARG
// holding its canonical terms.
func (c *Compiler) selectorList(pos node.Position, tokens []*node.Node, nested bool) ([]*node.Node, bool) {
	parts, ok := c.alternatives(pos, tokens)
	if !ok {
		return nil, false
	}
	out := make([]*node.Node, 0, len(parts))
	for _, p := range parts {
		alt, aok := c.alternative(p, nested)
		if !aok {
			ok = false
			continue
		}
		out = append(out, alt)
	}
	if !ok {
		return nil, false
	}
	return out, true
}

func (c *Compiler) alternative(tokens []*node.Node, nested bool) (*node.Node, bool) {
	first := tokens[0]
	switch {
	case isCombinator(first):
		c.rpt.Error(first.Pos(), "a selector cannot start with '%s'.", first.Kind().Symbol())
		return nil, false
	case first.Kind().IsNumber():
		c.rpt.Error(first.Pos(), "a selector cannot start with a number, found %s.", expr.Text(first))
		return nil, false
	}

	alt := node.New(node.KindArg, first.Pos())
	s := &selector{c: c, tokens: tokens, nested: nested}
	for s.peek() != nil {
		t := s.peek()
		switch {
		case t.Is(node.KindWhitespace):
			s.skipWS()
			if next := s.peek(); next != nil && !isCombinator(next) {
				alt.Append(node.New(node.KindWhitespace, t.Pos()))
			}
		case isCombinator(t):
			s.pos++
			s.skipWS()
			next := s.peek()
			switch {
			case next == nil:
				c.rpt.Error(t.Pos(), "a selector cannot end with '%s'.", t.Kind().Symbol())
				return nil, false
			case isCombinator(next):
				c.rpt.Error(next.Pos(), "'%s' cannot be followed by '%s' in a selector.", t.Kind().Symbol(), next.Kind().Symbol())
				return nil, false
			}
			alt.Append(node.New(t.Kind(), t.Pos()))
		default:
			terms, ok := s.term(false)
			if !ok {
				return nil, false
			}
			alt.Append(terms...)
		}
	}
	return alt, true
}

// term consumes one simple or complex selector term.
func (s *selector) term(inNot bool) ([]*node.Node, bool) {
	c := s.c
	t := s.next()
	switch t.Kind() {
	case node.KindHash:
		if name := t.Text(); name == "" || (name[0] >= '0' && name[0] <= '9') {
			c.rpt.Error(t.Pos(), "an identifier selector cannot start with a digit, found #%s.", name)
			return nil, false
		}
		return []*node.Node{t}, true

	case node.KindIdentifier, node.KindMultiply:
		if next := s.peek(); next != nil && next.Is(node.KindScope) {
			s.pos++
			return s.scoped(t, next)
		}
		return []*node.Node{t}, true

	case node.KindScope:
		return s.scoped(nil, t)

	case node.KindPeriod:
		name := s.peek()
		if name == nil || !name.Is(node.KindIdentifier) {
			c.rpt.Error(t.Pos(), "a class selector '.' must be followed by an identifier.")
			return nil, false
		}
		s.pos++
		return []*node.Node{t, name}, true

	case node.KindOpenSquare:
		return c.attribute(t)

	case node.KindColon:
		return s.pseudo(t, inNot)

	case node.KindPlaceholder:
		if inNot {
			c.rpt.Error(t.Pos(), ":not() cannot include the placeholder %%%s.", t.Text())
			return nil, false
		}
		return []*node.Node{t}, true

	case node.KindReference:
		switch {
		case !s.nested:
			c.rpt.Error(t.Pos(), "the parent reference '&' can only be used in a nested rule.")
			return nil, false
		case inNot:
			c.rpt.Error(t.Pos(), ":not() cannot include the parent reference '&'.")
			return nil, false
		}
		return []*node.Node{t}, true

	case node.KindFunction:
		c.rpt.Error(t.Pos(), "the function \"%s()\" cannot be used in a selector, pseudo-functions must be preceded by ':'.", t.Text())
		return nil, false

	case node.KindInteger, node.KindDecimal:
		c.rpt.Error(t.Pos(), "unexpected number %s in a selector.", expr.Text(t))
		return nil, false
	}
	c.rpt.Error(t.Pos(), "unexpected %s in a selector.", t.Describe())
	return nil, false
}

// scoped handles namespace prefixes: "ns|name", "*|name", "|name", "*|*".
func (s *selector) scoped(ns, scope *node.Node) ([]*node.Node, bool) {
	name := s.peek()
	if name == nil || !name.Is(node.KindIdentifier, node.KindMultiply) {
		s.c.rpt.Error(scope.Pos(), "the scope operator '|' must be followed by an identifier or '*'.")
		return nil, false
	}
	s.pos++
	if ns == nil {
		return []*node.Node{scope, name}, true
	}
	return []*node.Node{ns, scope, name}, true
}

// keyframeSelectors accepts "from", "to" and percentages.
func (c *Compiler) keyframeSelectors(pos node.Position, tokens []*node.Node) ([]*node.Node, bool) {
	parts, ok := c.alternatives(pos, tokens)
	if !ok {
		return nil, false
	}
	out := make([]*node.Node, 0, len(parts))
	for _, p := range parts {
		t := p[0]
		valid := len(p) == 1 &&
			((t.Is(node.KindIdentifier) && (strings.EqualFold(t.Text(), "from") || strings.EqualFold(t.Text(), "to"))) ||
				(t.Kind().IsNumber() && t.Unit() == "%"))
		if !valid {
			c.rpt.Error(t.Pos(), "invalid keyframe selector, expected from, to or a percentage.")
			ok = false
			continue
		}
		alt := node.New(node.KindArg, t.Pos())
		alt.Append(t)
		out = append(out, alt)
	}
	if !ok {
		return nil, false
	}
	return out, true
}

// combine joins nested alternatives with their parents: '&' is replaced by
// the parent, a descendant combinator is used otherwise.
func combine(parents, children []*node.Node) []*node.Node {
	out := make([]*node.Node, 0, len(parents)*len(children))
	for _, p := range parents {
		for _, ch := range children {
			alt := node.New(node.KindArg, ch.Pos())
			if hasReference(ch) {
				alt.SetChildren(substitute(ch.Children(), p, true))
			} else {
				alt.Append(p.Clone().Children()...)
				alt.Append(node.New(node.KindWhitespace, ch.Pos()))
				alt.Append(ch.Clone().Children()...)
			}
			out = append(out, alt)
		}
	}
	return out
}

// substitute copies items replacing every '&' with the parent alternative.
// Inside pseudo-function arguments the parent is kept as a whole ARG.
func substitute(items []*node.Node, parent *node.Node, top bool) []*node.Node {
	out := make([]*node.Node, 0, len(items))
	for _, t := range items {
		switch {
		case t.Is(node.KindReference) && top:
			out = append(out, parent.Clone().Children()...)
		case t.Is(node.KindReference):
			out = append(out, parent.Clone())
		case t.Is(node.KindFunction, node.KindOpenParen) && hasReference(t):
			n := t.Clone()
			n.SetChildren(substitute(t.Children(), parent, false))
			out = append(out, n)
		default:
			out = append(out, t.Clone())
		}
	}
	return out
}

// hasReference reports '&' anywhere in n, pseudo-function arguments
// included.
func hasReference(n *node.Node) bool {
	found := false
	n.Walk(func(c *node.Node) bool {
		if c.Is(node.KindReference) {
			found = true
		}
		return !found
	})
	return found
}

func hasPlaceholder(alt *node.Node) bool {
	found := false
	alt.Walk(func(n *node.Node) bool {
		if n.Is(node.KindPlaceholder) {
			found = true
		}
		return !found
	})
	return found
}
