package compiler

import "csspc/node"

// attribute validates "[name]" and "[name OP value]", the result has no
// whitespace left inside the brackets.
func (c *Compiler) attribute(sq *node.Node) ([]*node.Node, bool) {
	var items []*node.Node
	for _, t := range sq.Children() {
		if !t.Is(node.KindWhitespace, node.KindComment) {
			items = append(items, t)
		}
	}
	if len(items) == 0 {
		c.rpt.Error(sq.Pos(), "an attribute selector cannot be empty.")
		return nil, false
	}

	name := items[0]
	if !name.Is(node.KindIdentifier) {
		c.rpt.Error(name.Pos(), "an attribute selector must start with an identifier, found %s.", name.Kind())
		return nil, false
	}
	canonical := []*node.Node{name}
	i := 1
	if i+1 < len(items) && items[i].Is(node.KindScope) && items[i+1].Is(node.KindIdentifier) {
		canonical = append(canonical, items[i], items[i+1])
		i += 2
	}
	if i == len(items) {
		sq.SetChildren(canonical)
		return []*node.Node{sq}, true
	}

	op := items[i]
	if !op.Kind().IsAttributeOperator() {
		c.rpt.Error(op.Pos(), "unsupported attribute selector operator of kind %s, expected one of =, ~=, ^=, $=, *= or |=.", op.Kind())
		return nil, false
	}
	i++
	if i == len(items) {
		c.rpt.Error(op.Pos(), "the attribute selector operator '%s' must be followed by a value.", op.Kind().Symbol())
		return nil, false
	}

	value := items[i]
	if !value.Is(node.KindIdentifier, node.KindString, node.KindInteger, node.KindDecimal) {
		c.rpt.Error(value.Pos(), "an attribute selector value must be an identifier, a string, an integer or a decimal number, found %s.", value.Kind())
		return nil, false
	}
	i++
	if i < len(items) {
		c.rpt.Error(items[i].Pos(), "attribute selector cannot be followed by more than one value, found %s after the value, missing quotes?", items[i].Kind())
		return nil, false
	}

	sq.SetChildren(append(canonical, op, value))
	return []*node.Node{sq}, true
}
