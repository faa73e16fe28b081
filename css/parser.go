// Package css turns style sheet source into the node tree consumed by the
// compiler.
package css

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"csspc/node"
)

// SyntaxError is returned for input the parser cannot structure at all.
type SyntaxError struct {
	Pos node.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Parser parses style sheets into node trees.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses UTF-8 style sheet text. Source names the input in node
// positions and diagnostics.
func (p *Parser) Parse(data []byte, source string) (*node.Node, error) {
	tokens, err := tokenize(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	p.log.Debug("Parsing style sheet", zap.String("source", source), zap.Int("bytes", len(data)), zap.Int("tokens", len(tokens)))

	s := &scanner{tokens: tokens, file: source}
	comps, err := s.components(css.ErrorToken)
	if err != nil {
		return nil, err
	}
	root := node.New(node.KindList, node.Position{File: source, Line: 1})
	stmts, err := s.statements(comps)
	if err != nil {
		return nil, err
	}
	root.SetChildren(stmts)
	return root, nil
}

type scanner struct {
	tokens []token
	pos    int
	file   string
}

func (s *scanner) peek(offset int) (token, bool) {
	i := s.pos + offset
	if i < 0 || i >= len(s.tokens) {
		return token{}, false
	}
	return s.tokens[i], true
}

func (s *scanner) at(t token) node.Position {
	return node.Position{File: s.file, Line: t.line}
}

func closerName(tt css.TokenType) string {
	switch tt {
	case css.RightParenthesisToken:
		return "')'"
	case css.RightBracketToken:
		return "']'"
	case css.RightBraceToken:
		return "'}'"
	}
	return "end of input"
}

// components converts tokens into component nodes until closer. Brackets,
// braces and functions become nodes holding their content.
func (s *scanner) components(closer css.TokenType) ([]*node.Node, error) {
	var out []*node.Node
	start := s.pos
	for s.pos < len(s.tokens) {
		t := s.tokens[s.pos]
		pos := s.at(t)
		s.pos++

		switch t.tt {
		case css.RightParenthesisToken, css.RightBracketToken, css.RightBraceToken:
			if t.tt == closer {
				return out, nil
			}
			return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected %q, expected %s", t.data, closerName(closer))}

		case css.WhitespaceToken:
			if len(out) > 0 {
				out[len(out)-1].SetFlag(node.FlagTrailingSpace)
				if out[len(out)-1].Is(node.KindWhitespace) {
					continue
				}
			}
			out = append(out, node.New(node.KindWhitespace, pos))

		case css.CommentToken:
			if closer == css.RightParenthesisToken || closer == css.RightBracketToken {
				continue
			}
			text := strings.TrimSuffix(strings.TrimPrefix(t.data, "/*"), "*/")
			out = append(out, node.NewComment(pos, text))

		case css.CDOToken, css.CDCToken:

		case css.IdentToken, css.CustomPropertyNameToken:
			out = append(out, node.NewIdentifier(pos, unescape(t.data)))

		case css.StringToken:
			out = append(out, node.NewString(pos, unquote(t.data)))

		case css.BadStringToken:
			return nil, &SyntaxError{Pos: pos, Msg: "unterminated string"}

		case css.URLToken:
			inner := strings.TrimSpace(t.data[strings.IndexByte(t.data, '(')+1 : len(t.data)-1])
			out = append(out, node.NewURL(pos, unquote(inner)))

		case css.BadURLToken:
			return nil, &SyntaxError{Pos: pos, Msg: "invalid url()"}

		case css.HashToken:
			out = append(out, node.NewHash(pos, unescape(t.data[1:])))

		case css.NumberToken, css.PercentageToken, css.DimensionToken:
			n, err := newNumber(pos, t.data)
			if err != nil {
				return nil, err
			}
			out = append(out, n)

		case css.FunctionToken:
			name := unescape(strings.TrimSuffix(t.data, "("))
			args, err := s.components(css.RightParenthesisToken)
			if err != nil {
				return nil, err
			}
			out = append(out, s.function(pos, name, args))

		case css.LeftParenthesisToken, css.LeftBracketToken, css.LeftBraceToken:
			kind, close := node.KindOpenParen, css.RightParenthesisToken
			switch t.tt {
			case css.LeftBracketToken:
				kind, close = node.KindOpenSquare, css.RightBracketToken
			case css.LeftBraceToken:
				kind, close = node.KindOpenCurly, css.RightBraceToken
			}
			inner, err := s.components(close)
			if err != nil {
				return nil, err
			}
			n := node.New(kind, pos)
			n.SetChildren(inner)
			out = append(out, n)

		case css.AtKeywordToken:
			out = append(out, node.NewAtKeyword(pos, unescape(t.data[1:])))

		case css.ColonToken:
			out = append(out, node.New(node.KindColon, pos))
		case css.SemicolonToken:
			out = append(out, node.New(node.KindSemicolon, pos))
		case css.CommaToken:
			out = append(out, node.New(node.KindComma, pos))

		case css.IncludeMatchToken:
			out = append(out, node.New(node.KindIncludeMatch, pos))
		case css.DashMatchToken:
			out = append(out, node.New(node.KindDashMatch, pos))
		case css.PrefixMatchToken:
			out = append(out, node.New(node.KindPrefixMatch, pos))
		case css.SuffixMatchToken:
			out = append(out, node.New(node.KindSuffixMatch, pos))
		case css.SubstringMatchToken:
			out = append(out, node.New(node.KindSubstringMatch, pos))

		case css.DelimToken:
			n, err := s.delim(t, pos)
			if err != nil {
				return nil, err
			}
			if n != nil {
				out = append(out, n)
			}

		default:
			return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unsupported token %q", t.data)}
		}
	}
	if closer != css.ErrorToken {
		line := 1
		if start > 0 {
			line = s.tokens[start-1].line
		}
		return nil, &SyntaxError{Pos: node.Position{File: s.file, Line: line}, Msg: fmt.Sprintf("missing %s", closerName(closer))}
	}
	return out, nil
}

// function builds a function node, url("...") collapses into an URL node.
func (s *scanner) function(pos node.Position, name string, args []*node.Node) *node.Node {
	if strings.EqualFold(name, "url") {
		trimmed := trim(args)
		if len(trimmed) == 1 && trimmed[0].Is(node.KindString) {
			return node.NewURL(pos, trimmed[0].Text())
		}
	}
	fn := node.NewFunction(pos, name)
	fn.SetChildren(args)
	return fn
}

// delim handles single character tokens, some of which combine with the
// token immediately following them.
func (s *scanner) delim(t token, pos node.Position) (*node.Node, error) {
	next, haveNext := s.peek(0)
	switch t.data {
	case "$":
		if haveNext && next.tt == css.IdentToken {
			s.pos++
			return node.NewVariable(pos, unescape(next.data)), nil
		}
		if haveNext && next.tt == css.FunctionToken {
			s.pos++
			args, err := s.components(css.RightParenthesisToken)
			if err != nil {
				return nil, err
			}
			n := node.New(node.KindVariableFunction, pos)
			n.SetText(unescape(strings.TrimSuffix(next.data, "(")))
			n.SetChildren(args)
			return n, nil
		}
		return nil, &SyntaxError{Pos: pos, Msg: "'$' must be immediately followed by a variable name"}
	case "%":
		if haveNext && next.tt == css.IdentToken {
			s.pos++
			return node.NewPlaceholder(pos, unescape(next.data)), nil
		}
		return node.New(node.KindModulo, pos), nil
	case "/":
		if haveNext && next.delim('/') {
			return s.lineComment(pos), nil
		}
		return node.New(node.KindDivide, pos), nil
	case "!":
		if haveNext && next.delim('=') {
			s.pos++
			return node.New(node.KindNotEqual, pos), nil
		}
		return node.New(node.KindExclamation, pos), nil
	case "<":
		if haveNext && next.delim('=') {
			s.pos++
			return node.New(node.KindLessEqual, pos), nil
		}
		return node.New(node.KindLessThan, pos), nil
	case ">":
		if haveNext && next.delim('=') {
			s.pos++
			return node.New(node.KindGreaterEqual, pos), nil
		}
		return node.New(node.KindGreaterThan, pos), nil
	case "=":
		return node.New(node.KindEqual, pos), nil
	case "&":
		return node.New(node.KindReference, pos), nil
	case ".":
		return node.New(node.KindPeriod, pos), nil
	case "*":
		return node.New(node.KindMultiply, pos), nil
	case "+":
		return node.New(node.KindAdd, pos), nil
	case "-":
		return node.New(node.KindSubtract, pos), nil
	case "~":
		return node.New(node.KindTilde, pos), nil
	case "|":
		return node.New(node.KindScope, pos), nil
	}
	return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", t.data)}
}

// lineComment consumes a "//" comment up to the end of the line.
func (s *scanner) lineComment(pos node.Position) *node.Node {
	s.pos++ // second '/'
	var b strings.Builder
	for s.pos < len(s.tokens) {
		t := s.tokens[s.pos]
		if t.tt == css.WhitespaceToken && strings.ContainsRune(t.data, '\n') {
			break
		}
		b.WriteString(t.data)
		s.pos++
	}
	c := node.NewComment(pos, " "+strings.TrimSpace(b.String())+" ")
	c.SetFlag(node.FlagLineComment)
	return c
}

// statements splits block content into rules, declarations, definitions and
// at-rules.
func (s *scanner) statements(comps []*node.Node) ([]*node.Node, error) {
	var (
		out []*node.Node
		cur []*node.Node
	)
	emit := func(block *node.Node) error {
		stmt, err := s.statement(trim(cur), block)
		cur = nil
		if err != nil {
			return err
		}
		if stmt != nil {
			out = append(out, stmt)
		}
		return nil
	}
	for _, c := range comps {
		switch c.Kind() {
		case node.KindSemicolon:
			if err := emit(nil); err != nil {
				return nil, err
			}
		case node.KindOpenCurly:
			if err := emit(c); err != nil {
				return nil, err
			}
		case node.KindComment:
			// only comments standing between statements are kept
			if len(trim(cur)) == 0 {
				out = append(out, c)
			}
		default:
			cur = append(cur, c)
		}
	}
	if err := emit(nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *scanner) statement(cur []*node.Node, block *node.Node) (*node.Node, error) {
	if len(cur) == 0 {
		if block != nil {
			return nil, &SyntaxError{Pos: block.Pos(), Msg: "a block must be preceded by a selector or an at-rule"}
		}
		return nil, nil
	}

	first := cur[0]
	switch {
	case first.Is(node.KindAtKeyword):
		first.Append(trim(cur[1:])...)
		if block != nil {
			if err := s.block(block); err != nil {
				return nil, err
			}
			first.Append(block)
		}
		return first, nil

	case block != nil:
		if err := s.block(block); err != nil {
			return nil, err
		}
		rule := node.New(node.KindComponentValue, first.Pos())
		rule.Append(cur...)
		rule.Append(block)
		return rule, nil
	}

	colon := colonIndex(cur)
	if colon < 0 {
		return nil, &SyntaxError{Pos: first.Pos(), Msg: fmt.Sprintf("unexpected %s, expected a declaration", first.Describe())}
	}
	value := trim(cur[colon+1:])

	switch {
	case first.Is(node.KindVariable) && colon == countWS(cur[1:colon])+1:
		def := node.New(node.KindVariableDefinition, first.Pos())
		def.SetText(first.Text())
		def.SetChildren(value)
		return def, nil

	case first.Is(node.KindVariableFunction) && colon == countWS(cur[1:colon])+1:
		return s.functionDefinition(first, value)

	case first.Is(node.KindIdentifier) && colon == countWS(cur[1:colon])+1:
		decl := node.NewDeclaration(first.Pos(), first.Text())
		value, important := stripImportant(value)
		if len(value) == 0 {
			return nil, &SyntaxError{Pos: first.Pos(), Msg: fmt.Sprintf("declaration %q has no value", first.Text())}
		}
		if important {
			decl.SetFlag(node.FlagImportant)
		}
		decl.SetChildren(value)
		return decl, nil
	}
	return nil, &SyntaxError{Pos: first.Pos(), Msg: fmt.Sprintf("unexpected %s, expected a declaration", first.Describe())}
}

func (s *scanner) block(block *node.Node) error {
	stmts, err := s.statements(block.TakeChildren())
	if err != nil {
		return err
	}
	block.SetChildren(stmts)
	return nil
}

// functionDefinition turns "$name($a, $b: default): body" into a
// FUNCTION_DEFINITION node holding a LIST of parameter ARGs and the body ARG.
func (s *scanner) functionDefinition(call *node.Node, body []*node.Node) (*node.Node, error) {
	def := node.New(node.KindFunctionDefinition, call.Pos())
	def.SetText(call.Text())

	params := node.New(node.KindList, call.Pos())
	for _, p := range splitCommas(call.Children()) {
		p = trim(p)
		if len(p) == 0 || !p[0].Is(node.KindVariable) {
			return nil, &SyntaxError{Pos: call.Pos(), Msg: fmt.Sprintf("parameters of function $%s must be variables", call.Text())}
		}
		arg := node.New(node.KindArg, p[0].Pos())
		arg.Append(p[0])
		if rest := trim(p[1:]); len(rest) > 0 {
			if !rest[0].Is(node.KindColon) || len(trim(rest[1:])) == 0 {
				return nil, &SyntaxError{Pos: p[0].Pos(), Msg: fmt.Sprintf("invalid default value for parameter $%s", p[0].Text())}
			}
			arg.Append(trim(rest[1:])...)
		}
		params.Append(arg)
	}
	if len(body) == 0 {
		return nil, &SyntaxError{Pos: call.Pos(), Msg: fmt.Sprintf("function $%s has no body", call.Text())}
	}
	b := node.New(node.KindArg, body[0].Pos())
	b.SetChildren(body)
	def.Append(params, b)
	return def, nil
}

func colonIndex(nodes []*node.Node) int {
	for i, n := range nodes {
		if n.Is(node.KindColon) {
			return i
		}
	}
	return -1
}

func countWS(nodes []*node.Node) int {
	c := 0
	for _, n := range nodes {
		if n.Is(node.KindWhitespace) {
			c++
		}
	}
	return c
}

func stripImportant(value []*node.Node) ([]*node.Node, bool) {
	n := len(value)
	if n >= 2 && value[n-1].Is(node.KindIdentifier) && strings.EqualFold(value[n-1].Text(), "important") {
		i := n - 2
		if value[i].Is(node.KindWhitespace) {
			i--
		}
		if i >= 0 && value[i].Is(node.KindExclamation) {
			return trim(value[:i]), true
		}
	}
	return value, false
}

func splitCommas(nodes []*node.Node) [][]*node.Node {
	if len(trim(nodes)) == 0 {
		return nil
	}
	var (
		out [][]*node.Node
		cur []*node.Node
	)
	for _, n := range nodes {
		if n.Is(node.KindComma) {
			out = append(out, cur)
			cur = nil
			continue
		}
		cur = append(cur, n)
	}
	return append(out, cur)
}

// trim removes leading and trailing whitespace and comments.
func trim(nodes []*node.Node) []*node.Node {
	for len(nodes) > 0 && nodes[0].Is(node.KindWhitespace, node.KindComment) {
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && nodes[len(nodes)-1].Is(node.KindWhitespace, node.KindComment) {
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}

