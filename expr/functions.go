package expr

import (
	"math"
	"strings"

	"csspc/css"
	"csspc/node"
)

// builtin is an internal function. When call returns handled == false the
// function is kept as a plain CSS function.
type builtin struct {
	min, max int // max < 0 means no upper bound
	call     func(e *Engine, fn *node.Node, args []*node.Node) (res *node.Node, handled, ok bool)
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"cos":  {1, 1, trig(math.Cos)},
		"sin":  {1, 1, trig(math.Sin)},
		"tan":  {1, 1, trig(math.Tan)},
		"acos": {1, 1, inverseTrig(math.Acos)},
		"asin": {1, 1, inverseTrig(math.Asin)},
		"atan": {1, 1, inverseTrig(math.Atan)},

		"abs":   {1, 1, absolute},
		"ceil":  {1, 1, rounding(math.Ceil)},
		"floor": {1, 1, rounding(math.Floor)},
		"round": {1, 1, rounding(math.Round)},

		"red":   {1, 1, channel(0)},
		"green": {1, 1, channel(1)},
		"blue":  {1, 1, channel(2)},
		"alpha": {1, 1, channel(3)},

		"rgb":   {1, 4, rgb},
		"rgba":  {1, 4, rgb},
		"frgb":  {3, 4, frgb},
		"frgba": {3, 4, frgb},

		"decimal_number": {1, 1, toDecimal},
		"integer":        {1, 1, toInteger},
		"string":         {1, 1, toString},
		"identifier":     {1, 1, toIdentifier},

		"min":        {1, -1, extreme(-1)},
		"max":        {1, -1, extreme(1)},
		"percentage": {1, 1, percentage},
		"unit":       {1, 1, unitOf},
		"type_of":    {1, 1, typeOf},
		"if":         {3, 3, ifElse},
	}
}

// expects reports a bad argument of an internal function.
func (e *Engine) expects(fn *node.Node, what string) (*node.Node, bool, bool) {
	e.rpt.Error(fn.Pos(), "%s() expects %s as parameter.", fn.Text(), what)
	return nil, true, false
}

func trig(f func(float64) float64) func(*Engine, *node.Node, []*node.Node) (*node.Node, bool, bool) {
	return func(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
		a := args[0]
		if !a.Kind().IsNumber() {
			return e.expects(fn, "an angle")
		}
		rad, ok := node.ToRadians(a.Number(), a.Unit())
		if !ok {
			return e.expects(fn, "an angle")
		}
		return node.NewDecimal(fn.Pos(), f(rad), ""), true, true
	}
}

func inverseTrig(f func(float64) float64) func(*Engine, *node.Node, []*node.Node) (*node.Node, bool, bool) {
	return func(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
		a := args[0]
		if !a.Kind().IsNumber() || a.Unit() != "" {
			return e.expects(fn, "a unitless number")
		}
		return node.NewDecimal(fn.Pos(), f(a.Number()), "rad"), true, true
	}
}

func rounding(f func(float64) float64) func(*Engine, *node.Node, []*node.Node) (*node.Node, bool, bool) {
	return func(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
		a := args[0]
		switch a.Kind() {
		case node.KindInteger:
			return node.NewInteger(fn.Pos(), a.Integer(), a.Unit()), true, true
		case node.KindDecimal:
			return node.NewDecimal(fn.Pos(), f(a.Decimal()), a.Unit()), true, true
		}
		return e.expects(fn, "a number")
	}
}

func absolute(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
	a := args[0]
	switch a.Kind() {
	case node.KindInteger:
		if v := a.Integer(); v < 0 {
			return negative(fn.Pos(), v, a.Unit()), true, true
		}
		return node.NewInteger(fn.Pos(), a.Integer(), a.Unit()), true, true
	case node.KindDecimal:
		return node.NewDecimal(fn.Pos(), math.Abs(a.Decimal()), a.Unit()), true, true
	}
	return e.expects(fn, "a number")
}

// colorOf accepts colors, hex hashes and color names.
func colorOf(n *node.Node) (node.Color, bool) {
	switch n.Kind() {
	case node.KindColor:
		return n.Color(), true
	case node.KindHash:
		return node.ParseHex(n.Text())
	case node.KindIdentifier:
		return node.NamedColor(n.Text())
	}
	return 0, false
}

func channel(i int) func(*Engine, *node.Node, []*node.Node) (*node.Node, bool, bool) {
	return func(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
		c, ok := colorOf(args[0])
		if !ok {
			return e.expects(fn, "a color")
		}
		r, g, b, _ := c.RGBA()
		switch i {
		case 0:
			return node.NewInteger(fn.Pos(), int64(r), ""), true, true
		case 1:
			return node.NewInteger(fn.Pos(), int64(g), ""), true, true
		case 2:
			return node.NewInteger(fn.Pos(), int64(b), ""), true, true
		}
		return node.NewDecimal(fn.Pos(), c.Alpha(), ""), true, true
	}
}

// alphaValue accepts 0-1 numbers and percentages.
func alphaValue(n *node.Node) (float64, bool) {
	switch {
	case !n.Kind().IsNumber():
		return 0, false
	case n.Unit() == "%":
		return n.Number() / 100, true
	case n.Unit() == "":
		return n.Number(), true
	}
	return 0, false
}

// rgb builds a color from 0-255 or percentage channels. Anything it cannot
// reduce (var(), calc(), space separated syntax) stays a CSS function.
func rgb(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
	switch len(args) {
	case 1:
		return nil, false, true
	case 2:
		c, ok := colorOf(args[0])
		a, aok := alphaValue(args[1])
		if !ok || !aok {
			return nil, false, true
		}
		r, g, b, _ := c.RGBA()
		return node.NewColor(fn.Pos(), node.FromComponents(float64(r), float64(g), float64(b), a)), true, true
	}

	var ch [3]float64
	for i := range ch {
		a := args[i]
		if !a.Kind().IsNumber() {
			return nil, false, true
		}
		switch a.Unit() {
		case "":
			ch[i] = a.Number()
		case "%":
			ch[i] = a.Number() * 255 / 100
		default:
			return e.expects(fn, "a number or a percentage")
		}
	}
	alpha := 1.0
	if len(args) == 4 {
		v, ok := alphaValue(args[3])
		if !ok {
			return nil, false, true
		}
		alpha = v
	}
	return node.NewColor(fn.Pos(), node.FromComponents(ch[0], ch[1], ch[2], alpha)), true, true
}

// frgb builds a color from 0-1 channels.
func frgb(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
	ch := [4]float64{0, 0, 0, 1}
	for i, a := range args {
		if !a.Kind().IsNumber() || a.Unit() != "" {
			return e.expects(fn, "a unitless number")
		}
		ch[i] = a.Number()
	}
	return node.NewColor(fn.Pos(), node.FromFloats(ch[0], ch[1], ch[2], ch[3])), true, true
}

// number returns numeric value of a number or of a string or identifier
// holding one.
func number(n *node.Node) (*node.Node, bool) {
	switch n.Kind() {
	case node.KindInteger, node.KindDecimal:
		return n, true
	case node.KindString, node.KindIdentifier:
		return css.ParseNumber(n.Pos(), n.Text())
	}
	return nil, false
}

func toDecimal(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
	n, ok := number(args[0])
	if !ok {
		return e.expects(fn, "a number, a string or an identifier representing a number")
	}
	return node.NewDecimal(fn.Pos(), n.Number(), n.Unit()), true, true
}

func toInteger(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
	n, ok := number(args[0])
	if !ok {
		return e.expects(fn, "a number, a string or an identifier representing a number")
	}
	if n.Is(node.KindInteger) {
		return node.NewInteger(fn.Pos(), n.Integer(), n.Unit()), true, true
	}
	v := math.Trunc(n.Decimal())
	if math.IsNaN(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		e.rpt.Error(fn.Pos(), "%s() result %s does not fit into an integer.", fn.Text(), Text(n))
		return nil, true, false
	}
	return node.NewInteger(fn.Pos(), int64(v), n.Unit()), true, true
}

func toString(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
	return node.NewString(fn.Pos(), Text(args[0])), true, true
}

func toIdentifier(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
	a := args[0]
	if !a.Is(node.KindString, node.KindIdentifier, node.KindInteger, node.KindDecimal) {
		return e.expects(fn, "a string, an identifier or a number")
	}
	text := Text(a)
	if text == "" {
		return e.expects(fn, "a non-empty string")
	}
	return node.NewIdentifier(fn.Pos(), text), true, true
}

// extreme reduces min() and max() when all parameters are numbers of the same
// dimension, CSS min()/max() are kept otherwise.
func extreme(sign float64) func(*Engine, *node.Node, []*node.Node) (*node.Node, bool, bool) {
	return func(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
		var best *node.Node
		unit := ""
		for _, a := range args {
			if !a.Kind().IsNumber() {
				return nil, false, true
			}
			u, ok := additiveUnit(unit, a.Unit())
			if !ok {
				return nil, false, true
			}
			unit = u
			if best == nil || (a.Number()-best.Number())*sign > 0 {
				best = a
			}
		}
		if best.Is(node.KindInteger) {
			return node.NewInteger(fn.Pos(), best.Integer(), unit), true, true
		}
		return node.NewDecimal(fn.Pos(), best.Decimal(), unit), true, true
	}
}

func percentage(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
	a := args[0]
	if !a.Kind().IsNumber() || a.Unit() != "" {
		return e.expects(fn, "a unitless number")
	}
	return node.NewDecimal(fn.Pos(), a.Number()*100, "%"), true, true
}

func unitOf(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
	a := args[0]
	if !a.Kind().IsNumber() {
		return e.expects(fn, "a number")
	}
	return node.NewString(fn.Pos(), a.Unit()), true, true
}

func typeOf(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
	name := strings.ToLower(args[0].Kind().String())
	switch args[0].Kind() {
	case node.KindDecimal:
		name = "number"
	case node.KindList:
		name = "list"
	}
	return node.NewString(fn.Pos(), name), true, true
}

func ifElse(e *Engine, fn *node.Node, args []*node.Node) (*node.Node, bool, bool) {
	cond, ok := e.truth(fn, args[0])
	if !ok {
		return nil, true, false
	}
	if cond {
		return args[1], true, true
	}
	return args[2], true, true
}
