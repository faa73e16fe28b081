package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"csspc/node"
)

// nth replaces arguments of an :nth-*() function with an AN_PLUS_B node.
func (c *Compiler) nth(fn *node.Node) bool {
	text, err := anbText(clean(fn.Children()))
	if err == nil {
		var a, b int64
		if a, b, err = parseAnPlusB(text); err == nil {
			fn.SetChildren([]*node.Node{node.NewAnPlusB(fn.Pos(), a, b)})
			return true
		}
	}
	c.rpt.Error(fn.Pos(), "%s.", err)
	return false
}

// anbText renders tokens back to source text. The lexer splits "2n+1" into
// "2n" and "+1", an explicit sign is restored for numbers glued to the
// previous token.
func anbText(tokens []*node.Node) (string, error) {
	if len(tokens) == 0 {
		return "", errors.New("an An+B expression is expected")
	}
	var b strings.Builder
	glued := false
	for _, t := range tokens {
		switch t.Kind() {
		case node.KindWhitespace:
			b.WriteByte(' ')
			glued = false
			continue
		case node.KindInteger:
			v := t.Integer()
			if v >= 0 && glued {
				b.WriteByte('+')
			}
			b.WriteString(strconv.FormatInt(v, 10) + t.Unit())
		case node.KindIdentifier:
			b.WriteString(t.Text())
		case node.KindAdd, node.KindSubtract:
			b.WriteString(t.Kind().Symbol())
			glued = false
			continue
		default:
			return "", fmt.Errorf("unexpected %s in an An+B expression", t.Describe())
		}
		glued = true
	}
	return b.String(), nil
}

// parseAnPlusB accepts "odd", "even", "[sign][int]n[sign int]" and a bare
// integer. Spaces are only allowed around the sign of b.
func parseAnPlusB(text string) (int64, int64, error) {
	s := compact(strings.ToLower(strings.TrimSpace(text)))

	switch s {
	case "odd":
		return 2, 1, nil
	case "even":
		return 2, 0, nil
	}
	invalid := fmt.Errorf("invalid An+B expression \"%s\"", text)

	i := 0
	sign := int64(1)
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			sign = -1
		}
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	digits := s[start:i]

	if i < len(s) && s[i] == 'n' {
		a := sign
		if digits != "" {
			v, err := strconv.ParseInt(digits, 10, 64)
			if err != nil {
				return 0, 0, invalid
			}
			a = sign * v
		}
		i++
		if i == len(s) {
			return a, 0, nil
		}
		if s[i] != '+' && s[i] != '-' {
			return 0, 0, invalid
		}
		bs := int64(1)
		if s[i] == '-' {
			bs = -1
		}
		rest := s[i+1:]
		v, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || rest == "" || rest[0] == '+' || rest[0] == '-' {
			return 0, 0, invalid
		}
		return a, bs * v, nil
	}

	if digits == "" {
		return 0, 0, invalid
	}
	if i < len(s) {
		return 0, 0, fmt.Errorf("in an An+B expression the integer must be followed by 'n', found \"%s\"", text)
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, 0, invalid
	}
	return 0, sign * v, nil
}

// compact removes spaces next to a sign.
func compact(s string) string {
	isSign := func(c byte) bool { return c == '+' || c == '-' }
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' && ((i > 0 && isSign(s[i-1])) || (i+1 < len(s) && isSign(s[i+1]))) {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
