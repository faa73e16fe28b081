package expr

import (
	"strconv"
	"strings"

	"csspc/node"
)

// Text renders an evaluated value as plain text, strings lose their quotes.
// Used by string(), identifier() and message at-rules.
func Text(n *node.Node) string {
	var b strings.Builder
	writeText(&b, n)
	return b.String()
}

func writeText(b *strings.Builder, n *node.Node) {
	switch n.Kind() {
	case node.KindString, node.KindIdentifier, node.KindURL, node.KindPlaceholder:
		b.WriteString(n.Text())
	case node.KindHash:
		b.WriteString("#" + n.Text())
	case node.KindVariable:
		b.WriteString("$" + n.Text())
	case node.KindInteger:
		b.WriteString(strconv.FormatInt(n.Integer(), 10) + n.Unit())
	case node.KindDecimal:
		b.WriteString(strconv.FormatFloat(n.Decimal(), 'f', -1, 64) + n.Unit())
	case node.KindColor:
		b.WriteString(n.Color().String())
	case node.KindBoolean:
		b.WriteString(strconv.FormatBool(n.Boolean()))
	case node.KindAnPlusB:
		b.WriteString(node.FormatAnPlusB(n.AnPlusB()))
	case node.KindFunction:
		b.WriteString(n.Text() + "(")
		writeChildren(b, n)
		b.WriteByte(')')
	case node.KindOpenParen:
		b.WriteByte('(')
		writeChildren(b, n)
		b.WriteByte(')')
	case node.KindList, node.KindArg:
		writeChildren(b, n)
	case node.KindComma:
		b.WriteString(", ")
	default:
		b.WriteString(n.Kind().Symbol())
	}
}

func writeChildren(b *strings.Builder, n *node.Node) {
	for _, c := range n.Children() {
		writeText(b, c)
	}
}
