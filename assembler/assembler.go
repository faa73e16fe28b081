// Package assembler serializes a compiled tree to text.
package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"csspc/misc"
	"csspc/node"
)

const defaultPrecision = 3

// Assembler is stateless between calls, the tree is never modified.
type Assembler struct {
	log       *zap.Logger
	precision int
}

type Option func(*Assembler)

// WithPrecision sets number of digits kept after decimal point.
func WithPrecision(digits int) Option {
	return func(a *Assembler) {
		if digits >= 0 {
			a.precision = digits
		}
	}
}

func New(log *zap.Logger, opts ...Option) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Assembler{log: log.Named("assembler"), precision: defaultPrecision}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Trailer is the comment appended to output which has none of its own.
func Trailer() string {
	return fmt.Sprintf("/* @preserve Generated by %s v%s */", misc.GetAppName(), misc.GetVersion())
}

// Output renders root (a LIST of statements) in the requested mode. Unknown
// mode is a programming error and panics with node.ContractError.
func (a *Assembler) Output(root *node.Node, mode Mode) string {
	if !mode.IsValid() {
		panic(&node.ContractError{Op: "assembler: output mode " + strconv.Itoa(int(mode)), Kind: root.Kind()})
	}
	if !root.Is(node.KindList) {
		node.Unexpected("assembler: root", root)
	}

	w := &writer{mode: mode, precision: a.precision}
	w.statements(root.Children(), 0)

	switch mode {
	case ModeExpanded:
		if !w.preserved {
			w.WriteString("\n" + Trailer() + "\n")
		}
	case ModeCompressed:
		w.WriteByte('\n')
		if !w.preserved {
			w.WriteString(Trailer() + "\n")
		}
	default:
		if !w.preserved {
			w.WriteString(Trailer() + "\n")
		}
	}

	a.log.Debug("Style sheet assembled", zap.Stringer("mode", mode), zap.Int("bytes", w.Len()))
	return w.String()
}

type writer struct {
	strings.Builder
	mode      Mode
	precision int
	preserved bool
}

func (w *writer) indent(depth int) string {
	if w.mode != ModeExpanded {
		return ""
	}
	return strings.Repeat("  ", depth)
}

// newline ends a statement line, compressed output has none.
func (w *writer) newline() {
	if w.mode != ModeCompressed {
		w.WriteByte('\n')
	}
}

// statements writes a list holding rules, at-rules and comments.
func (w *writer) statements(items []*node.Node, depth int) {
	for i, n := range items {
		switch n.Kind() {
		case node.KindComment:
			if w.mode == ModeExpanded && i > 0 {
				w.WriteByte('\n')
			}
			w.WriteString(w.indent(depth))
			w.comment(n)
			w.newline()
		case node.KindComponentValue:
			w.rule(n, depth)
		case node.KindAtKeyword:
			w.atRule(n, depth)
		default:
			node.Unexpected("assembler: statement", n)
		}
	}
}

func (w *writer) comment(n *node.Node) {
	if strings.Contains(n.Text(), "@preserve") {
		w.preserved = true
	}
	w.WriteString("/*" + n.Text() + "*/")
}

func (w *writer) rule(r *node.Node, depth int) {
	children := r.Children()
	body := r.Last()
	if !body.Is(node.KindOpenCurly) {
		node.Unexpected("assembler: rule body", r)
	}
	w.WriteString(w.indent(depth))
	for i, alt := range children[:len(children)-1] {
		if i > 0 {
			w.WriteString(w.pick(", ", ","))
		}
		w.selector(alt)
	}
	w.block(body.Children(), depth)
}

// block writes "{ declarations }" after a selector or an at-rule prelude.
func (w *writer) block(items []*node.Node, depth int) {
	lines := make([]string, 0, len(items))
	decls := make([]bool, 0, len(items))
	for _, n := range items {
		switch n.Kind() {
		case node.KindDeclaration:
			lines = append(lines, w.declaration(n))
			decls = append(decls, true)
		case node.KindComment:
			var b writer
			b.comment(n)
			w.preserved = w.preserved || b.preserved
			lines = append(lines, b.String())
			decls = append(decls, false)
		default:
			node.Unexpected("assembler: declaration", n)
		}
	}
	// terminated reports whether item i is followed by another declaration
	terminated := func(i int) bool {
		for _, d := range decls[i+1:] {
			if d {
				return true
			}
		}
		return false
	}

	switch w.mode {
	case ModeExpanded:
		w.WriteString(" {\n")
		for i, l := range lines {
			w.WriteString(w.indent(depth+1) + l)
			if decls[i] {
				w.WriteByte(';')
			}
			w.WriteByte('\n')
		}
		w.WriteString(w.indent(depth) + "}\n")
	case ModeCompact:
		w.WriteString(" {\n")
		for i, l := range lines {
			w.WriteString(l)
			if decls[i] && terminated(i) {
				w.WriteByte(';')
			}
			w.WriteByte('\n')
		}
		w.WriteString("}\n")
	case ModeTidy:
		w.WriteString("{ ")
		for i, l := range lines {
			if i > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(l)
			if decls[i] && terminated(i) {
				w.WriteByte(';')
			}
		}
		w.WriteString(" }\n")
	case ModeCompressed:
		w.WriteByte('{')
		for i, l := range lines {
			w.WriteString(l)
			if decls[i] && terminated(i) {
				w.WriteByte(';')
			}
		}
		w.WriteByte('}')
	}
}

func (w *writer) declaration(d *node.Node) string {
	var b writer
	b.mode, b.precision = w.mode, w.precision
	b.WriteString(d.Text() + w.pick(": ", ":"))
	for _, v := range d.Children() {
		b.value(v)
	}
	if d.Flag(node.FlagImportant) {
		b.WriteString(w.pick(" !important", "!important"))
	}
	return b.String()
}

// atRule writes "@name prelude;" or "@name prelude { ... }".
func (w *writer) atRule(at *node.Node, depth int) {
	prelude := at.Children()
	body := at.Last()
	if body.Is(node.KindOpenCurly) {
		prelude = prelude[:len(prelude)-1]
	} else {
		body = nil
	}

	w.WriteString(w.indent(depth) + "@" + identifier(at.Text()))
	if p := w.prelude(prelude); p != "" {
		w.WriteString(" " + p)
	}
	if body == nil {
		w.WriteByte(';')
		w.newline()
		return
	}

	if holdsDeclarations(body) {
		w.block(body.Children(), depth)
		return
	}
	switch w.mode {
	case ModeExpanded, ModeCompact:
		w.WriteString(" {\n")
	case ModeTidy:
		w.WriteString("{\n")
	case ModeCompressed:
		w.WriteByte('{')
	}
	w.statements(body.Children(), depth+1)
	w.WriteString(w.indent(depth) + "}")
	w.newline()
}

// holdsDeclarations tells @font-face like blocks from @media like blocks.
func holdsDeclarations(body *node.Node) bool {
	for _, c := range body.Children() {
		switch c.Kind() {
		case node.KindDeclaration:
			return true
		case node.KindComponentValue, node.KindAtKeyword:
			return false
		}
	}
	return false
}

// prelude renders at-rule prelude tokens with collapsed whitespace.
func (w *writer) prelude(tokens []*node.Node) string {
	var b writer
	b.mode, b.precision = w.mode, w.precision
	b.tokens(tokens, true)
	return b.String()
}

// tokens writes verbatim token runs: whitespace collapses to one space and
// is dropped at both ends and around ','. In at-rule preludes (media) it is
// also dropped around ':' which then follows the mode.
func (w *writer) tokens(tokens []*node.Node, media bool) {
	var kept []*node.Node
	for _, t := range tokens {
		if !t.Is(node.KindComment) {
			kept = append(kept, t)
		}
	}
	for i, t := range kept {
		if t.Is(node.KindWhitespace) {
			prev, next := node.KindUnknown, node.KindUnknown
			if i > 0 {
				prev = kept[i-1].Kind()
			}
			if i < len(kept)-1 {
				next = kept[i+1].Kind()
			}
			switch {
			case prev == node.KindUnknown, next == node.KindUnknown,
				prev == node.KindWhitespace, prev == node.KindComma, next == node.KindComma,
				media && (prev == node.KindColon || next == node.KindColon):
				continue
			}
			w.WriteByte(' ')
			continue
		}
		switch t.Kind() {
		case node.KindColon:
			if media {
				w.WriteString(w.pick(": ", ":"))
			} else {
				w.WriteByte(':')
			}
		case node.KindOpenParen:
			w.WriteByte('(')
			w.tokens(t.Children(), media)
			w.WriteByte(')')
		case node.KindFunction:
			w.WriteString(identifier(t.Text()) + "(")
			w.tokens(t.Children(), media)
			w.WriteByte(')')
		case node.KindArg:
			// parent selector substituted into pseudo-function arguments
			w.selector(t)
		default:
			w.value(t)
		}
	}
}

// value writes one evaluated value item.
func (w *writer) value(v *node.Node) {
	switch v.Kind() {
	case node.KindIdentifier:
		w.WriteString(identifier(v.Text()))
	case node.KindString:
		w.WriteString(quote(v.Text()))
	case node.KindInteger:
		w.WriteString(strconv.FormatInt(v.Integer(), 10) + v.Unit())
	case node.KindDecimal:
		w.WriteString(w.decimal(v.Decimal()) + v.Unit())
	case node.KindColor:
		w.color(v.Color())
	case node.KindHash:
		w.WriteString("#" + v.Text())
	case node.KindURL:
		w.url(v.Text())
	case node.KindBoolean:
		w.WriteString(strconv.FormatBool(v.Boolean()))
	case node.KindAnPlusB:
		w.WriteString(node.FormatAnPlusB(v.AnPlusB()))
	case node.KindFunction:
		w.WriteString(identifier(v.Text()) + "(")
		for _, c := range v.Children() {
			w.value(c)
		}
		w.WriteByte(')')
	case node.KindOpenParen:
		w.WriteByte('(')
		for _, c := range v.Children() {
			w.value(c)
		}
		w.WriteByte(')')
	case node.KindOpenSquare:
		w.WriteByte('[')
		for _, c := range v.Children() {
			w.value(c)
		}
		w.WriteByte(']')
	case node.KindList, node.KindArg:
		for _, c := range v.Children() {
			w.value(c)
		}
	case node.KindComma:
		w.WriteString(w.pick(", ", ","))
	case node.KindWhitespace:
		w.WriteByte(' ')
	case node.KindComment:
		w.comment(v)
	case node.KindReference:
		// must have been replaced by the compiler
		node.Unexpected("assembler: value", v)
	default:
		// operators print their symbol, variables and placeholders have none
		if sym := v.Kind().Symbol(); sym != "" {
			w.WriteString(sym)
			return
		}
		node.Unexpected("assembler: value", v)
	}
}

// selector writes one compiled selector alternative.
func (w *writer) selector(alt *node.Node) {
	for _, t := range alt.Children() {
		switch t.Kind() {
		case node.KindIdentifier:
			w.WriteString(identifier(t.Text()))
		case node.KindHash:
			w.WriteString("#" + identifier(t.Text()))
		case node.KindPeriod, node.KindColon, node.KindScope, node.KindMultiply:
			w.WriteString(t.Kind().Symbol())
		case node.KindWhitespace:
			w.WriteByte(' ')
		case node.KindGreaterThan, node.KindAdd, node.KindTilde:
			w.WriteString(w.pick(" "+t.Kind().Symbol()+" ", t.Kind().Symbol()))
		case node.KindOpenSquare:
			w.attribute(t)
		case node.KindFunction:
			w.WriteString(identifier(t.Text()) + "(")
			if strings.EqualFold(t.Text(), "not") {
				w.selector(t)
			} else {
				w.tokens(t.Children(), false)
			}
			w.WriteByte(')')
		case node.KindAnPlusB:
			w.WriteString(node.FormatAnPlusB(t.AnPlusB()))
		case node.KindInteger, node.KindDecimal:
			// keyframe selectors
			w.value(t)
		default:
			node.Unexpected("assembler: selector", t)
		}
	}
}

func (w *writer) attribute(sq *node.Node) {
	w.WriteByte('[')
	for _, t := range sq.Children() {
		switch {
		case t.Is(node.KindScope):
			w.WriteByte('|')
		case t.Kind().IsAttributeOperator():
			w.WriteString(t.Kind().Symbol())
		case t.Is(node.KindIdentifier, node.KindString, node.KindInteger, node.KindDecimal):
			w.value(t)
		default:
			node.Unexpected("assembler: attribute", t)
		}
	}
	w.WriteByte(']')
}

// pick returns readable variant in expanded and tidy modes.
func (w *writer) pick(readable, compact string) string {
	if w.mode.readable() {
		return readable
	}
	return compact
}

func (w *writer) decimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', w.precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		s = "0"
	}
	if !w.mode.readable() {
		switch {
		case strings.HasPrefix(s, "0."):
			s = s[1:]
		case strings.HasPrefix(s, "-0."):
			s = "-" + s[2:]
		}
	}
	return s
}

func (w *writer) color(c node.Color) {
	if c.Opaque() {
		w.WriteString(c.Hex())
		return
	}
	r, g, b, _ := c.RGBA()
	sep := w.pick(", ", ",")
	fmt.Fprintf(w, "rgba(%d%s%d%s%d%s%s)", r, sep, g, sep, b, sep, w.decimal(c.Alpha()))
}

func (w *writer) url(s string) {
	if !needsQuotes(s) {
		w.WriteString(w.pick("url( "+s+" )", "url("+s+")"))
		return
	}
	w.WriteString(w.pick("url( "+quote(s)+" )", "url("+quote(s)+")"))
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		switch {
		case r == '"', r == '\'', r == '(', r == ')', r == '\\':
			return true
		case r <= ' ', r == 0x7f:
			return true
		}
	}
	return false
}

// quote picks quote character which needs fewer escapes, '"' wins a tie.
func quote(s string) string {
	q := byte('"')
	if strings.Count(s, `"`) > strings.Count(s, "'") {
		q = '\''
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == rune(q), r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < ' ', r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

func isNameChar(r rune) bool {
	return r == '-' || r == '_' || r >= 0x80 ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// identifier escapes characters which cannot appear in a bare identifier,
// a leading digit is written as a code point escape.
func identifier(s string) string {
	clean := true
	for i, r := range s {
		if !isNameChar(r) || (r >= '0' && r <= '9' && (i == 0 || (i == 1 && s[0] == '-'))) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9' && (i == 0 || (i == 1 && s[0] == '-')):
			fmt.Fprintf(&b, "\\%x ", r)
		case isNameChar(r):
			b.WriteRune(r)
		case r < ' ', r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
