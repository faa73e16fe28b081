package compiler

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"csspc/css"
	"csspc/diag"
	"csspc/expr"
	"csspc/node"
	"csspc/validation"
)

var tables = validation.Static{
	validation.PseudoClasses:      {"hover", "first-child", "focus"},
	validation.PseudoElements:     {"before", "after"},
	validation.PseudoFunctions:    {"not", "lang", "is", "where"},
	validation.PseudoNthFunctions: {"nth-child", "nth-of-type"},
	validation.Languages:          {"en", "fr"},
	validation.Countries:          {"us", "gb"},
}

// countingValidator records how many times every name was asked for.
type countingValidator struct {
	validation.Validator
	calls map[string]int
}

func (v *countingValidator) Validate(category validation.Category, name string) (bool, error) {
	v.calls[string(category)+":"+name]++
	return v.Validator.Validate(category, name)
}

func compile(t *testing.T, src string, v validation.Validator) (*node.Node, *diag.Reporter, error) {
	t.Helper()
	log := zaptest.NewLogger(t)
	root, err := css.NewParser(log).Parse([]byte(src), "test.css")
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	rpt := diag.NewReporter(log, diag.WithDebug(true))
	err = New(log, rpt, v, nil).Compile(root)
	return root, rpt, err
}

func render(b *strings.Builder, n *node.Node) {
	switch n.Kind() {
	case node.KindIdentifier:
		b.WriteString(n.Text())
	case node.KindHash:
		b.WriteString("#" + n.Text())
	case node.KindString:
		b.WriteString(`"` + n.Text() + `"`)
	case node.KindPlaceholder:
		b.WriteString("%" + n.Text())
	case node.KindInteger, node.KindDecimal:
		b.WriteString(expr.Text(n))
	case node.KindAnPlusB:
		b.WriteString(node.FormatAnPlusB(n.AnPlusB()))
	case node.KindFunction:
		b.WriteString(n.Text() + "(")
		for _, c := range n.Children() {
			render(b, c)
		}
		b.WriteString(")")
	case node.KindArg:
		for _, c := range n.Children() {
			render(b, c)
		}
	case node.KindOpenSquare:
		b.WriteString("[")
		for _, c := range n.Children() {
			render(b, c)
		}
		b.WriteString("]")
	default:
		b.WriteString(n.Kind().Symbol())
	}
}

// selectors returns selector of every rule in root.
func selectors(root *node.Node) []string {
	var out []string
	for _, r := range root.Children() {
		if !r.Is(node.KindComponentValue) {
			continue
		}
		var alts []string
		for _, a := range r.Children()[:r.Len()-1] {
			var b strings.Builder
			for _, c := range a.Children() {
				render(&b, c)
			}
			alts = append(alts, b.String())
		}
		out = append(out, strings.Join(alts, ", "))
	}
	return out
}

func TestCompiler_Selectors(t *testing.T) {
	tests := []struct {
		selector string
		want     string
	}{
		{"a  >  b", "a>b"},
		{"a \n  b", "a b"},
		{"a + b ~ c", "a+b~c"},
		{"ns|a, *|*, |b, *", "ns|a, *|*, |b, *"},
		{`[ href ^= "http" ]`, `[href^="http"]`},
		{"[data-x]", "[data-x]"},
		{"[xlink|href = x]", "[xlink|href=x]"},
		{"a.b#c:hover::before", "a.b#c:hover::before"},
		{"li:nth-child( 2n + 1 )", "li:nth-child(2n+1)"},
		{"li:nth-child(2n-1)", "li:nth-child(2n-1)"},
		{"li:nth-child(odd)", "li:nth-child(2n+1)"},
		{"li:nth-child(even)", "li:nth-child(2n)"},
		{"li:nth-child(-n+3)", "li:nth-child(-n+3)"},
		{"li:nth-of-type(3)", "li:nth-of-type(3)"},
		{"p:lang(en-us)", "p:lang(en-US)"},
		{"p:lang(FR)", "p:lang(fr)"},
		{"a:not(.b)", "a:not(.b)"},
		{"a:not([x=y]:hover)", "a:not([x=y]:hover)"},
		{"a:is(.b,.c)", "a:is(.b,.c)"},
		{"%ph, a", "a"},
		{"a:hover, b::after", "a:hover, b::after"},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			root, rpt, err := compile(t, tt.selector+" { x: y }", tables)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if rpt.ErrorCount() != 0 {
				t.Fatalf("unexpected errors: %v", rpt.Messages())
			}
			got := selectors(root)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("selectors = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompiler_SelectorErrors(t *testing.T) {
	tests := []struct {
		selector string
		want     string
	}{
		{", a", "a selector list cannot start with a comma."},
		{"a, , b", "a selector list cannot include two commas in a row."},
		{"a,", "a selector list cannot end with a comma."},
		{"> a", "a selector cannot start with '>'."},
		{"+ a", "a selector cannot start with '+'."},
		{"~ a", "a selector cannot start with '~'."},
		{"3 a", "a selector cannot start with a number, found 3."},
		{"foo(x)", `the function "foo()" cannot be used in a selector, pseudo-functions must be preceded by ':'.`},
		{"a > > b", "'>' cannot be followed by '>' in a selector."},
		{"a >", "a selector cannot end with '>'."},
		{"#1a", "an identifier selector cannot start with a digit, found #1a."},
		{". a", "a class selector '.' must be followed by an identifier."},
		{"a:unknown", `unknown pseudo-class "unknown".`},
		{"a::unknown", `unknown pseudo-element "unknown".`},
		{"a:foo(b)", `unknown pseudo-function "foo()".`},
		{"a:nth-foo(1)", `unknown pseudo-function "nth-foo()".`},
		{"a:not(:not(b))", ":not() cannot itself include a :not()."},
		{"a:not(b c)", ":not() only accepts simple selectors, found WHITESPACE."},
		{"a:not(b::before)", `:not() cannot include the pseudo-element "before".`},
		{"a:nth-child(2+3)", `in an An+B expression the integer must be followed by 'n', found "2+3".`},
		{"a:nth-child(foo)", `invalid An+B expression "foo".`},
		{"a:lang(xx)", `unknown language "xx" in :lang().`},
		{"a:lang(en-zz)", `unknown country "zz" in :lang().`},
		{"& a", "the parent reference '&' can only be used in a nested rule."},
		{"[]", "an attribute selector cannot be empty."},
		{"[3]", "an attribute selector must start with an identifier, found INTEGER."},
		{"[a!=b]", "unsupported attribute selector operator of kind NOT_EQUAL, expected one of =, ~=, ^=, $=, *= or |=."},
		{"[a=]", "the attribute selector operator '=' must be followed by a value."},
		{"[a=(b)]", "an attribute selector value must be an identifier, a string, an integer or a decimal number, found OPEN_PARENTHESIS."},
		{"[a=b c]", "attribute selector cannot be followed by more than one value, found IDENTIFIER after the value, missing quotes?"},
		{`[a="b"c]`, "attribute selector cannot be followed by more than one value, found IDENTIFIER after the value, missing quotes?"},
		{"a:is(&)", "the parent reference '&' can only be used in a nested rule."},
		{"a:is(.b %p)", "the placeholder %p cannot be used inside is()."},
		{"a:is($nope)", `variable named "nope" is not set.`},
		{"a::before($nope)", `variable named "nope" is not set.`},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			root, rpt, err := compile(t, tt.selector+" { x: y }", tables)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if rpt.ErrorCount() != 1 {
				t.Fatalf("errors = %v, want exactly one", rpt.Messages())
			}
			msg := rpt.Messages()[0]
			if msg.Text != tt.want {
				t.Errorf("message = %q, want %q", msg.Text, tt.want)
			}
			if msg.Pos.File != "test.css" || msg.Pos.Line != 1 {
				t.Errorf("position = %s", msg.Pos)
			}
			if got := selectors(root); len(got) != 0 {
				t.Errorf("rule must be dropped, got %q", got)
			}
		})
	}
}

func TestCompiler_Nesting(t *testing.T) {
	root, rpt, err := compile(t, `
a, b {
	color: red;
	.c { x: y }
	&:hover { z: w }
	%quiet { v: w }
}`, tables)
	if err != nil {
		t.Fatal(err)
	}
	if rpt.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", rpt.Messages())
	}
	want := []string{"a, b", "a .c, b .c", "a:hover, b:hover"}
	got := selectors(root)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("selectors = %q, want %q", got, want)
	}
	if decls := root.Child(0).Last().Len(); decls != 1 {
		t.Errorf("parent keeps %d statements, want 1", decls)
	}
}

func TestCompiler_PseudoArguments(t *testing.T) {
	root, rpt, err := compile(t, `$x: b;
a:is($x, .c) { x: y }
c { :is(&) { x: y } }
d, e { f:where(& > g) { x: y } }
h { i:not(.j):is(:where(&)) { x: y } }`, tables)
	if err != nil {
		t.Fatal(err)
	}
	if rpt.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", rpt.Messages())
	}
	want := []string{
		"a:is(b, .c)",
		":is(c)",
		"f:where(d > g), f:where(e > g)",
		"i:not(.j):is(:where(h))",
	}
	got := selectors(root)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("selectors = %q, want %q", got, want)
	}
}

func TestCompiler_NestedLeadingCombinator(t *testing.T) {
	_, rpt, err := compile(t, "a { > b { x: y } }", tables)
	if err != nil {
		t.Fatal(err)
	}
	if rpt.ErrorCount() != 1 || rpt.Messages()[0].Text != "a selector cannot start with '>'." {
		t.Errorf("messages = %v", rpt.Messages())
	}
}

func TestCompiler_Statements(t *testing.T) {
	root, rpt, err := compile(t, `$c: red;
@warning "careful " + $c;
@charset "utf-8";
a { color: $c }
// note
// @preserve line
/* @preserve keep */
/* drop */
`, tables)
	if err != nil {
		t.Fatal(err)
	}

	kinds := make([]node.Kind, 0, root.Len())
	for _, n := range root.Children() {
		kinds = append(kinds, n.Kind())
	}
	want := []node.Kind{node.KindComponentValue, node.KindComment, node.KindComment}
	if len(kinds) != len(want) {
		t.Fatalf("statements = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("statements = %v, want %v", kinds, want)
		}
	}
	if root.Child(1).Flag(node.FlagLineComment) {
		t.Error("preserved line comment must become a block comment")
	}

	color := root.Child(0).Last().Child(0).Child(0)
	if !color.Is(node.KindIdentifier) || color.Text() != "red" {
		t.Errorf("color = %#v", color)
	}

	msgs := rpt.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", msgs)
	}
	if msgs[0].Severity != diag.SeverityWarning || msgs[0].Text != "careful red" || msgs[0].Pos.Line != 2 {
		t.Errorf("first message = %v", msgs[0])
	}
	if msgs[1].Severity != diag.SeverityWarning || msgs[1].Pos.Line != 6 {
		t.Errorf("second message = %v", msgs[1])
	}
}

func TestCompiler_MessageSeverities(t *testing.T) {
	_, rpt, err := compile(t, `@error "e"; @info "i"; @message "m"; @debug "d"; @warning "w";`, tables)
	if err != nil {
		t.Fatal(err)
	}
	if rpt.Count(diag.SeverityError) != 1 || rpt.Count(diag.SeverityInfo) != 2 ||
		rpt.Count(diag.SeverityDebug) != 1 || rpt.Count(diag.SeverityWarning) != 1 {
		t.Errorf("messages = %v", rpt.Messages())
	}
}

func TestCompiler_AtRules(t *testing.T) {
	root, rpt, err := compile(t, `
@import url("x.css");
@media screen { a { x: y } }
@font-face { font-family: foo }
@keyframes spin { from { x: 1 } 50% { x: 2 } to { x: 3 } }
@media print { }
`, tables)
	if err != nil {
		t.Fatal(err)
	}
	if rpt.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", rpt.Messages())
	}
	if root.Len() != 4 {
		t.Fatalf("statements = %d, want 4", root.Len())
	}
	if got := selectors(root.Child(1).Last()); len(got) != 1 || got[0] != "a" {
		t.Errorf("@media rules = %q", got)
	}
	if got := selectors(root.Child(3).Last()); strings.Join(got, "|") != "from|50%|to" {
		t.Errorf("@keyframes rules = %q", got)
	}
}

func TestCompiler_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"declaration outside block", "color: red;", `declaration "color" must appear inside a block.`},
		{"at-rule in rule", "a { @media print { b { x: y } } }", "@media is not supported inside a rule."},
		{"keyframe selector", "@keyframes k { a { x: y } }", "invalid keyframe selector, expected from, to or a percentage."},
		{"bad value", "a { x: 1px + 1em }", `incompatible dimensions: "px" and "em" cannot be used with operator '+'.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rpt, err := compile(t, tt.src, tables)
			if err != nil {
				t.Fatal(err)
			}
			if rpt.ErrorCount() == 0 || rpt.Messages()[0].Text != tt.want {
				t.Errorf("messages = %v, want %q", rpt.Messages(), tt.want)
			}
		})
	}
}

func TestCompiler_MissingTableIsFatal(t *testing.T) {
	_, _, err := compile(t, "a:hover { x: y }", validation.Static{})
	var le *validation.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Compile() error = %v, want LoadError", err)
	}
	if le.Category != validation.PseudoClasses {
		t.Errorf("category = %s", le.Category)
	}
}

func TestCompiler_ValidationCache(t *testing.T) {
	v := &countingValidator{Validator: tables, calls: make(map[string]int)}
	log := zaptest.NewLogger(t)
	rpt := diag.NewReporter(log)
	c := New(log, rpt, v, nil)

	run := func() {
		root, err := css.NewParser(log).Parse([]byte("a:hover { x: y } b:HOVER { x: y } c:unknown { x: y }"), "test.css")
		if err != nil {
			t.Fatal(err)
		}
		if err := c.Compile(root); err != nil {
			t.Fatal(err)
		}
	}

	run()
	run()
	if got := v.calls["pseudo-classes:hover"]; got != 1 {
		t.Errorf("hover validated %d times, want 1", got)
	}
	if got := v.calls["pseudo-classes:unknown"]; got != 1 {
		t.Errorf("negative result must be cached too, validated %d times", got)
	}

	c.ResetCache()
	run()
	if got := v.calls["pseudo-classes:hover"]; got != 2 {
		t.Errorf("after ResetCache hover validated %d times, want 2", got)
	}
}

func TestParseAnPlusB(t *testing.T) {
	tests := []struct {
		in   string
		a, b int64
		ok   bool
	}{
		{"odd", 2, 1, true},
		{"EVEN", 2, 0, true},
		{"n", 1, 0, true},
		{"-n+3", -1, 3, true},
		{"+5", 0, 5, true},
		{"-2n - 4", -2, -4, true},
		{"3n + 0", 3, 0, true},
		{"2n+", 0, 0, false},
		{"2 n", 0, 0, false},
		{"n+-1", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		a, b, err := parseAnPlusB(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("parseAnPlusB(%q) error = %v", tt.in, err)
			continue
		}
		if tt.ok && (a != tt.a || b != tt.b) {
			t.Errorf("parseAnPlusB(%q) = %d, %d, want %d, %d", tt.in, a, b, tt.a, tt.b)
		}
	}
}
