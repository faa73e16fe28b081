package compiler

import (
	"strings"

	"golang.org/x/text/language"

	"csspc/node"
	"csspc/validation"
)

// pseudo handles everything following ':' in a selector.
func (s *selector) pseudo(colon *node.Node, inNot bool) ([]*node.Node, bool) {
	c := s.c
	t := s.next()
	if t == nil {
		c.rpt.Error(colon.Pos(), "a selector cannot end with ':'.")
		return nil, false
	}

	switch t.Kind() {
	case node.KindColon:
		return s.pseudoElement(colon, t, inNot)

	case node.KindIdentifier:
		if !c.valid(validation.PseudoClasses, t.Text()) {
			c.rpt.Error(t.Pos(), "unknown pseudo-class \"%s\".", t.Text())
			return nil, false
		}
		return []*node.Node{colon, t}, true

	case node.KindFunction:
		var ok bool
		switch name := strings.ToLower(t.Text()); {
		case name == "not":
			if inNot {
				c.rpt.Error(t.Pos(), ":not() cannot itself include a :not().")
				return nil, false
			}
			ok = s.not(t)
		case name == "lang":
			ok = c.lang(t)
		case strings.HasPrefix(name, "nth-"):
			if !c.valid(validation.PseudoNthFunctions, name) {
				c.rpt.Error(t.Pos(), "unknown pseudo-function \"%s()\".", t.Text())
				return nil, false
			}
			ok = c.nth(t)
		default:
			if !c.valid(validation.PseudoFunctions, name) {
				c.rpt.Error(t.Pos(), "unknown pseudo-function \"%s()\".", t.Text())
				return nil, false
			}
			ok = s.arguments(t)
		}
		if !ok {
			return nil, false
		}
		return []*node.Node{colon, t}, true
	}
	c.rpt.Error(t.Pos(), "':' must be followed by an identifier or a function, found %s.", t.Describe())
	return nil, false
}

func (s *selector) pseudoElement(colon, second *node.Node, inNot bool) ([]*node.Node, bool) {
	c := s.c
	t := s.next()
	if t == nil || !t.Is(node.KindIdentifier, node.KindFunction) {
		c.rpt.Error(second.Pos(), "'::' must be followed by the name of a pseudo-element.")
		return nil, false
	}
	if inNot {
		c.rpt.Error(t.Pos(), ":not() cannot include the pseudo-element \"%s\".", t.Text())
		return nil, false
	}
	if !c.valid(validation.PseudoElements, t.Text()) {
		c.rpt.Error(t.Pos(), "unknown pseudo-element \"%s\".", t.Text())
		return nil, false
	}
	if t.Is(node.KindFunction) && !s.arguments(t) {
		return nil, false
	}
	return []*node.Node{colon, second, t}, true
}

// arguments resolves variables in arguments of pseudo-functions which are
// otherwise kept as written. Parent references stay until the rule is
// combined with its parents.
func (s *selector) arguments(fn *node.Node) bool {
	out, ok := s.resolve(fn, clean(fn.Children()))
	fn.SetChildren(out)
	return ok
}

func (s *selector) resolve(fn *node.Node, tokens []*node.Node) ([]*node.Node, bool) {
	c := s.c
	out := make([]*node.Node, 0, len(tokens))
	ok := true
	for _, t := range tokens {
		switch k := t.Kind(); {
		case k == node.KindComment:
		case k == node.KindVariable, k == node.KindVariableFunction:
			values, vok := c.eval.Evaluate([]*node.Node{t})
			if !vok {
				ok = false
				continue
			}
			out = append(out, values...)
		case k == node.KindReference:
			if !s.nested {
				c.rpt.Error(t.Pos(), "the parent reference '&' can only be used in a nested rule.")
				ok = false
				continue
			}
			out = append(out, t)
		case k == node.KindPlaceholder:
			c.rpt.Error(t.Pos(), "the placeholder %%%s cannot be used inside %s().", t.Text(), fn.Text())
			ok = false
		case k == node.KindFunction, k == node.KindOpenParen, k == node.KindOpenSquare:
			inner, iok := s.resolve(fn, t.Children())
			if !iok {
				ok = false
			}
			t.SetChildren(inner)
			out = append(out, t)
		case k.IsLeaf(), k.Symbol() != "":
			out = append(out, t)
		default:
			c.rpt.Error(t.Pos(), "unexpected %s in arguments of %s().", t.Describe(), fn.Text())
			ok = false
		}
	}
	return out, ok
}

// not compiles the argument of :not(), a compound of simple terms.
func (s *selector) not(fn *node.Node) bool {
	c := s.c
	args := clean(fn.Children())
	if len(args) == 0 {
		c.rpt.Error(fn.Pos(), ":not() expects a selector.")
		return false
	}

	inner := &selector{c: c, tokens: args, nested: s.nested}
	var out []*node.Node
	for inner.peek() != nil {
		t := inner.peek()
		if t.Is(node.KindWhitespace, node.KindComma) || isCombinator(t) {
			c.rpt.Error(t.Pos(), ":not() only accepts simple selectors, found %s.", t.Describe())
			return false
		}
		terms, ok := inner.term(true)
		if !ok {
			return false
		}
		out = append(out, terms...)
	}
	fn.SetChildren(out)
	return true
}

// lang validates :lang(xx) and :lang(xx-YY) and re-cases the tag.
func (c *Compiler) lang(fn *node.Node) bool {
	args := clean(fn.Children())
	if len(args) != 1 || !args[0].Is(node.KindIdentifier, node.KindString) {
		c.rpt.Error(fn.Pos(), ":lang() expects a language tag such as en or en-US.")
		return false
	}
	tag := args[0].Text()
	parts := strings.Split(tag, "-")
	if len(parts) > 2 || parts[0] == "" || (len(parts) == 2 && parts[1] == "") {
		c.rpt.Error(fn.Pos(), ":lang() expects a language optionally followed by a country, found \"%s\".", tag)
		return false
	}

	ok := true
	if !c.valid(validation.Languages, parts[0]) {
		c.rpt.Error(fn.Pos(), "unknown language \"%s\" in :lang().", parts[0])
		ok = false
	}
	country := ""
	if len(parts) == 2 {
		country = parts[1]
		if !c.valid(validation.Countries, country) {
			c.rpt.Error(fn.Pos(), "unknown country \"%s\" in :lang().", country)
			ok = false
		}
	}
	if !ok {
		return false
	}
	fn.SetChildren([]*node.Node{node.NewIdentifier(args[0].Pos(), canonicalTag(parts[0], country))})
	return true
}

func canonicalTag(lang, country string) string {
	l := strings.ToLower(lang)
	if b, err := language.ParseBase(lang); err == nil {
		l = b.String()
	}
	if country == "" {
		return l
	}
	r := strings.ToUpper(country)
	if reg, err := language.ParseRegion(country); err == nil {
		r = reg.String()
	}
	return l + "-" + r
}
