package expr

import (
	"math"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"csspc/css"
	"csspc/diag"
	"csspc/node"
	"csspc/variables"
)

// evaluate parses src, binds its definitions and evaluates the first
// declaration of the first rule.
func evaluate(t *testing.T, src string) (*node.Node, bool, *diag.Reporter) {
	t.Helper()

	log := zaptest.NewLogger(t)
	root, err := css.NewParser(log).Parse([]byte(src), "test.css")
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	rpt := diag.NewReporter(log)
	e := New(log, rpt, variables.New())

	for _, stmt := range root.Children() {
		switch stmt.Kind() {
		case node.KindVariableDefinition, node.KindFunctionDefinition:
			e.Define(stmt)
		case node.KindComponentValue:
			decl := stmt.Last().Child(0)
			ok := e.Declaration(decl)
			return decl, ok, rpt
		}
	}
	t.Fatalf("no rule in %q", src)
	return nil, false, nil
}

func valueText(decl *node.Node) string {
	var b strings.Builder
	for _, c := range decl.Children() {
		b.WriteString(Text(c))
	}
	return b.String()
}

func TestEngine_Values(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unitless promotes", "a{x: 3px + 2}", "5px"},
		{"precedence", "a{x: 3px + 2px*2}", "7px"},
		{"parentheses", "a{x: (3px + 2px) * 2}", "10px"},
		{"integer division truncates", "a{x: 7 / 2}", "3"},
		{"decimal division", "a{x: 7.0 / 2}", "3.5"},
		{"units cancel", "a{x: 10px / 2px}", "5"},
		{"unit over number", "a{x: 10px / 4}", "2px"},
		{"modulo", "a{x: 7px % 4}", "3px"},
		{"decimal multiply", "a{x: 1.5em * 2}", "3em"},
		{"negation", "a{x: -(2px + 1px)}", "-3px"},
		{"string concatenation", `a{x: "a" + "b"}`, "ab"},
		{"slash property", "a{font: 12px/1.5 serif}", "12px/1.5 serif"},
		{"comma list", "a{x: 1px, 2px 3px}", "1px, 2px 3px"},
		{"hash to color", "a{x: #F7D0CF}", "#f7d0cf"},
		{"rgb", "a{x: rgb(255, 0, 0)}", "#f00"},
		{"rgb percentages", "a{x: rgb(100%, 0%, 0%)}", "#f00"},
		{"rgb kept with var", "a{x: rgb(var(--r), 0, 0)}", "rgb(var(--r), 0, 0)"},
		{"red", "a{x: red(#f7d0cf)}", "247"},
		{"blue of name", "a{x: blue(navy)}", "128"},
		{"alpha", "a{x: alpha(black)}", "1"},
		{"calc keeps expression", "$w: 10px; a{x: calc(100% - $w)}", "calc(100% - 10px)"},
		{"generic function", "$w: 10px; a{x: translate($w * 2, 0)}", "translate(20px, 0)"},
		{"variable chain", "$a: 3px; $b: $a * 2; a{x: $b}", "6px"},
		{"variable list", "$b: 1px solid red; a{x: $b}", "1px solid red"},
		{"function default", "$area($w, $h: 2): $w * $h; a{x: $area(3px)}", "6px"},
		{"function args", "$area($w, $h: 2): $w * $h; a{x: $area(3px, 4)}", "12px"},
		{"string()", "a{x: string(3px)}", "3px"},
		{"decimal_number()", `a{x: decimal_number("2.5em")}`, "2.5em"},
		{"integer()", "a{x: integer(2.7)}", "2"},
		{"unit()", "a{x: unit(3px)}", "px"},
		{"percentage()", "a{x: percentage(0.5)}", "50%"},
		{"if()", "a{x: if(1 < 2, yes, no)}", "yes"},
		{"min()", "a{x: min(3px, 1px, 2px)}", "1px"},
		{"css min()", "a{x: min(10px, 5vw)}", "min(10px, 5vw)"},
		{"abs keeps unit", "a{x: abs(-2.5em)}", "2.5em"},
		{"boolean logic", "a{x: 1 < 2 and 3 > 4}", "false"},
		{"custom property untouched", "a{--x: 1 + 2}", "1 + 2"},
		{"background slash", "a{background: url(a.png) no-repeat center / cover}", "a.png no-repeat center/cover"},
		{"grid-template slash", "a{grid-template: auto / 1fr 1fr}", "auto/1fr 1fr"},
		{"grid slash", "a{grid: auto-flow / 1fr 2fr}", "auto-flow/1fr 2fr"},
		{"mask slash", "a{mask: url(m.svg) center / contain}", "m.svg center/contain"},
		{"slash between identifiers", "a{x: auto / span 2}", "auto/span 2"},
		{"integer overflow add", "a{x: 9223372036854775807 + 1}", "9223372036854775808"},
		{"integer overflow multiply", "a{x: 4294967296 * 4294967296}", "18446744073709551616"},
		{"integer overflow subtract", "a{x: -9223372036854775807 - 2}", "-9223372036854775808"},
		{"integer overflow negation", "a{x: -(-9223372036854775807 - 1)}", "9223372036854775808"},
		{"integer overflow abs", "a{x: abs(-9223372036854775807 - 1)}", "9223372036854775808"},
		{"integer limit kept", "a{x: 9223372036854775806 + 1}", "9223372036854775807"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl, ok, rpt := evaluate(t, tt.src)
			if !ok {
				t.Fatalf("declaration dropped: %v", rpt.Messages())
			}
			if got := valueText(decl); got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
			if rpt.ErrorCount() != 0 {
				t.Errorf("unexpected errors: %v", rpt.Messages())
			}
		})
	}
}

func TestEngine_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"incompatible add", "a{x: 3px + 2em}", `incompatible dimensions: "px" and "em" cannot be used with operator '+'.`},
		{"compound unit", "a{x: 3px * 2px}", `incompatible dimensions: "px" and "px" cannot be used with operator '*'.`},
		{"number over unit", "a{x: 3 / 2px}", `incompatible dimensions: "" and "px" cannot be used with operator '/'.`},
		{"division by zero", "a{x: 1 / 0}", "division by zero."},
		{"modulo by zero", "a{x: 1.5 % 0}", "modulo by zero."},
		{"trig needs angle", `a{x: cos("a")}`, "cos() expects an angle as parameter."},
		{"trig unit", "a{x: sin(3px)}", "sin() expects an angle as parameter."},
		{"channel needs color", "a{x: red(3px)}", "red() expects a color as parameter."},
		{"acos unit", "a{x: acos(1deg)}", "acos() expects a unitless number as parameter."},
		{"missing variable", "a{x: $missing}", `variable named "missing" is not set.`},
		{"recursive variable", "$r: $r + 1; a{x: $r}", `variable "r" is recursive or nested too deeply.`},
		{"arity", "a{x: floor(1, 2)}", "floor() expects exactly 1 parameter(s), 2 given."},
		{"arity range", "a{x: frgb(1, 0)}", "frgb() expects 3 to 4 parameters, 2 given."},
		{"function arity", "$f($a): $a; a{x: $f()}", `function "f" expects at least 1 parameter(s), 0 given.`},
		{"undefined function", "a{x: $f(1)}", `function named "f" is not defined.`},
		{"string minus", `a{x: "a" - 1}`, "unsupported types STRING and INTEGER for operator '-'."},
		{"unexpected token", "a{x: 1 ! 2}", "unexpected '!' in expression."},
		{"integer() overflow", "a{x: integer(99999999999999999999.5)}", "integer() result 100000000000000000000 does not fit into an integer."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, rpt := evaluate(t, tt.src)
			if ok {
				t.Fatal("declaration must be dropped")
			}
			if rpt.ErrorCount() == 0 {
				t.Fatal("no error reported")
			}
			if got := rpt.Messages()[0].Text; got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_TrigEquivalence(t *testing.T) {
	var values []float64
	for _, arg := range []string{"60", "60deg", "1.0471975511965976rad", "66.66666666666667grad", "0.16666666666666666turn"} {
		decl, ok, rpt := evaluate(t, "a{x: cos("+arg+")}")
		if !ok {
			t.Fatalf("cos(%s) dropped: %v", arg, rpt.Messages())
		}
		v := decl.Child(0)
		if !v.Is(node.KindDecimal) || v.Unit() != "" {
			t.Fatalf("cos(%s) = %#v, want unitless decimal", arg, v)
		}
		values = append(values, v.Decimal())
	}
	for i, v := range values {
		if math.Abs(v-0.5) > 1e-9 {
			t.Errorf("value %d = %v, want 0.5", i, v)
		}
	}

	decl, ok, _ := evaluate(t, "a{x: acos(1)}")
	if !ok {
		t.Fatal("acos dropped")
	}
	if v := decl.Child(0); v.Decimal() != 0 || v.Unit() != "rad" {
		t.Errorf("acos(1) = %#v, want 0rad", v)
	}
}

func TestEngine_ColorScales(t *testing.T) {
	a, ok, _ := evaluate(t, "a{x: frgba(1, 0.5, 0, 1)}")
	if !ok {
		t.Fatal("frgba dropped")
	}
	b, ok, _ := evaluate(t, "a{x: rgba(255, 127.5, 0, 1)}")
	if !ok {
		t.Fatal("rgba dropped")
	}
	if a.Child(0).Color() != b.Child(0).Color() {
		t.Errorf("frgba = %s, rgba = %s", a.Child(0).Color(), b.Child(0).Color())
	}
}

func TestEngine_TranslucentChannels(t *testing.T) {
	for _, color := range []string{
		"rgba(10, 20, 30, 0.4)",
		"frgba(0.0392156862745098, 0.0784313725490196, 0.11764705882352941, 0.4)",
	} {
		t.Run(color, func(t *testing.T) {
			decl, ok, rpt := evaluate(t, "$c: "+color+"; a{x: red($c) green($c) blue($c) alpha($c)}")
			if !ok {
				t.Fatalf("declaration dropped: %v", rpt.Messages())
			}
			var values []*node.Node
			for _, c := range decl.Children() {
				if !c.Is(node.KindWhitespace) {
					values = append(values, c)
				}
			}
			if len(values) != 4 {
				t.Fatalf("values = %q", valueText(decl))
			}
			for i, want := range []int64{10, 20, 30} {
				if v := values[i]; !v.Is(node.KindInteger) || v.Integer() != want {
					t.Errorf("channel %d = %#v, want %d", i, v, want)
				}
			}
			if a := values[3]; !a.Kind().IsNumber() || math.Abs(a.Number()-0.4) > 0.005 {
				t.Errorf("alpha = %#v, want 0.4", a)
			}
		})
	}
}

func TestEngine_UnknownUnitWarns(t *testing.T) {
	decl, ok, rpt := evaluate(t, "a{x: 3foo}")
	if !ok {
		t.Fatal("declaration dropped")
	}
	if got := valueText(decl); got != "3foo" {
		t.Errorf("value = %q", got)
	}
	if rpt.WarningCount() != 1 {
		t.Errorf("warnings = %d, want 1", rpt.WarningCount())
	}
}

func TestEngine_FunctionScopeDoesNotLeak(t *testing.T) {
	log := zaptest.NewLogger(t)
	root, err := css.NewParser(log).Parse([]byte("$w: 1px; $f($w): $w * 2; a{x: $f(5px) $w}"), "test.css")
	if err != nil {
		t.Fatal(err)
	}
	e := New(log, diag.NewReporter(log), variables.New())
	e.Define(root.Child(0))
	e.Define(root.Child(1))
	decl := root.Child(2).Last().Child(0)
	if !e.Declaration(decl) {
		t.Fatal("declaration dropped")
	}
	if got := valueText(decl); got != "10px 1px" {
		t.Errorf("value = %q, want %q", got, "10px 1px")
	}
}
