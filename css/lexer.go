package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"csspc/node"
)

type token struct {
	tt   css.TokenType
	data string
	line int
}

func (t token) delim(c byte) bool {
	return t.tt == css.DelimToken && len(t.data) == 1 && t.data[0] == c
}

// tokenize runs tdewolff lexer over the whole input, lines are counted from 1.
func tokenize(data []byte) ([]token, error) {
	l := css.NewLexer(parse.NewInput(bytes.NewReader(data)))
	tokens := make([]token, 0, len(data)/4)
	line := 1
	for {
		tt, b := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("unable to tokenize input at line %d: %w", line, err)
			}
			return tokens, nil
		}
		tokens = append(tokens, token{tt: tt, data: string(b), line: line})
		line += bytes.Count(b, []byte{'\n'})
	}
}

// splitNumber separates numeric prefix of a number, percentage or dimension
// token from its unit.
func splitNumber(s string) (num, unit string, isDecimal bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		isDecimal = true
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			isDecimal = true
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return s[:i], s[i:], isDecimal
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// newNumber creates integer or decimal node from token text.
func newNumber(pos node.Position, text string) (*node.Node, error) {
	num, unit, isDecimal := splitNumber(text)
	unit = unescape(unit)
	if unit != "%" {
		unit = strings.ToLower(unit)
	}
	if !isDecimal {
		if v, err := strconv.ParseInt(num, 10, 64); err == nil {
			return node.NewInteger(pos, v, unit), nil
		}
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("invalid number %q", text)}
	}
	return node.NewDecimal(pos, v, unit), nil
}

// ParseNumber re-tokenizes s and returns a number node when s holds exactly
// one number, percentage or dimension.
func ParseNumber(pos node.Position, s string) (*node.Node, bool) {
	tokens, err := tokenize([]byte(strings.TrimSpace(s)))
	if err != nil || len(tokens) != 1 {
		return nil, false
	}
	switch tokens[0].tt {
	case css.NumberToken, css.PercentageToken, css.DimensionToken:
		n, err := newNumber(pos, tokens[0].data)
		if err != nil {
			return nil, false
		}
		return n, true
	}
	return nil, false
}

// unquote removes quotes and resolves escapes of a string token.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') {
		q := s[0]
		s = s[1:]
		if s[len(s)-1] == q {
			s = s[:len(s)-1]
		}
	}
	return unescape(s)
}

// unescape resolves CSS escapes: "\" followed by up to six hex digits and an
// optional white space, escaped newline (removed) or any other character.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch {
		case s[i] == '\n':
		case isHex(s[i]):
			j := i
			for j < len(s) && j-i < 6 && isHex(s[j]) {
				j++
			}
			v, _ := strconv.ParseUint(s[i:j], 16, 32)
			r := rune(v)
			if r == 0 || !utf8.ValidRune(r) {
				r = utf8.RuneError
			}
			b.WriteRune(r)
			if j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n') {
				j++
			}
			i = j - 1
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
