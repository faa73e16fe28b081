// Package expr reduces declaration values: arithmetic with units, variables,
// user functions and internal functions.
package expr

import (
	"strings"

	"go.uber.org/zap"

	"csspc/diag"
	"csspc/node"
	"csspc/variables"
)

// maxDepth bounds variable and function substitution.
const maxDepth = 64

// slashProperties use '/' as a separator and never divide.
var slashProperties = map[string]bool{
	"font":          true,
	"background":    true,
	"border-radius": true,
	"border-image":  true,
	"grid":          true,
	"grid-area":     true,
	"grid-row":      true,
	"grid-column":   true,
	"grid-template": true,
	"mask":          true,
	"mask-border":   true,
	"aspect-ratio":  true,
}

// rawFunctions are CSS functions evaluated by the browser, only variables
// are substituted in their arguments.
var rawFunctions = map[string]bool{
	"calc":         true,
	"-webkit-calc": true,
	"-moz-calc":    true,
	"clamp":        true,
	"var":          true,
	"env":          true,
	"attr":         true,
}

// Engine evaluates expressions. Errors go to the reporter, evaluation of the
// failing value stops and the caller drops it.
type Engine struct {
	log   *zap.Logger
	rpt   *diag.Reporter
	vars  *variables.Table
	depth int
}

func New(log *zap.Logger, rpt *diag.Reporter, vars *variables.Table) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log.Named("expr"), rpt: rpt, vars: vars}
}

// Variables returns the table used for lookups.
func (e *Engine) Variables() *variables.Table {
	return e.vars
}

// Define binds a VARIABLE_DEFINITION or a FUNCTION_DEFINITION statement,
// values are stored unevaluated.
func (e *Engine) Define(def *node.Node) {
	switch def.Kind() {
	case node.KindVariableDefinition:
		value := node.New(node.KindArg, def.Pos())
		value.SetChildren(def.TakeChildren())
		e.vars.Set(def.Text(), value)
	case node.KindFunctionDefinition:
		params, body := def.Child(0), def.Child(1)
		fn := &variables.Function{Body: body}
		for _, p := range params.Children() {
			param := variables.Param{Name: p.Child(0).Text()}
			if p.Len() > 1 {
				d := node.New(node.KindArg, p.Child(1).Pos())
				d.SetChildren(p.Children()[1:])
				param.Default = d
			}
			fn.Params = append(fn.Params, param)
		}
		e.vars.SetFunction(def.Text(), fn)
	default:
		node.Unexpected("expr: define", def)
	}
}

// Declaration evaluates declaration value in place. It returns false when
// the declaration has to be dropped.
func (e *Engine) Declaration(decl *node.Node) bool {
	property := strings.ToLower(decl.Text())
	if strings.HasPrefix(property, "--") {
		// custom properties hold arbitrary tokens
		return true
	}
	values, ok := e.list(decl.Children(), slashProperties[property])
	if !ok {
		e.log.Debug("Dropping declaration", zap.String("property", property), zap.Stringer("at", decl.Pos()))
		return false
	}
	if len(values) == 0 {
		e.rpt.Error(decl.Pos(), "declaration %q has no value after evaluation.", decl.Text())
		return false
	}
	decl.SetChildren(values)
	return true
}

// Evaluate reduces a value list: items separated by whitespace or commas.
func (e *Engine) Evaluate(nodes []*node.Node) ([]*node.Node, bool) {
	return e.list(nodes, false)
}

// Scalar reduces nodes which must form exactly one expression.
func (e *Engine) Scalar(nodes []*node.Node) (*node.Node, bool) {
	values, ok := e.list(nodes, false)
	if !ok {
		return nil, false
	}
	if len(values) != 1 {
		pos := node.Position{}
		if len(nodes) > 0 {
			pos = nodes[0].Pos()
		}
		e.rpt.Error(pos, "expected a single value, found a list of %d items.", countItems(values))
		return nil, false
	}
	return values[0], true
}

func countItems(values []*node.Node) int {
	c := 0
	for _, v := range values {
		if !v.Is(node.KindWhitespace, node.KindComma, node.KindDivide) {
			c++
		}
	}
	return c
}

// list evaluates a sequence of expressions. Output keeps single WHITESPACE
// or COMMA separators (and DIVIDE separators in slash mode).
func (e *Engine) list(nodes []*node.Node, slash bool) ([]*node.Node, bool) {
	p := &parser{e: e, tokens: nodes, slash: slash}
	var out []*node.Node
	for {
		p.skipWS()
		t := p.peek()
		if t == nil {
			break
		}
		if t.Is(node.KindComma) || (slash && t.Is(node.KindDivide)) {
			p.pos++
			if len(out) == 0 || isSeparator(out[len(out)-1]) {
				e.rpt.Error(t.Pos(), "unexpected '%s' in value.", t.Kind().Symbol())
				return nil, false
			}
			out = append(out, node.New(t.Kind(), t.Pos()))
			continue
		}

		item, ok := p.expression(0)
		if !ok {
			return nil, false
		}
		if len(out) > 0 && !isSeparator(out[len(out)-1]) {
			out = append(out, node.New(node.KindWhitespace, item.Pos()))
		}
		if item.Is(node.KindList) {
			out = append(out, item.Children()...)
		} else {
			out = append(out, item)
		}
	}
	if len(out) > 0 && isSeparator(out[len(out)-1]) {
		last := out[len(out)-1]
		e.rpt.Error(last.Pos(), "a value cannot end with '%s'.", last.Kind().Symbol())
		return nil, false
	}
	return out, true
}

func isSeparator(n *node.Node) bool {
	return n.Is(node.KindWhitespace, node.KindComma, node.KindDivide)
}

// wrap turns evaluated list into a single node, lists of more than one item
// are carried in a LIST node and flattened by the caller.
func wrap(pos node.Position, values []*node.Node) *node.Node {
	if len(values) == 1 {
		return values[0]
	}
	l := node.New(node.KindList, pos)
	l.SetChildren(values)
	return l
}

// variable substitutes a deep copy of the bound value and evaluates it.
func (e *Engine) variable(v *node.Node) (*node.Node, bool) {
	entry, ok := e.vars.Lookup(v.Text())
	if !ok {
		e.rpt.Error(v.Pos(), "variable named \"%s\" is not set.", v.Text())
		return nil, false
	}
	if entry.IsFunction() {
		e.rpt.Error(v.Pos(), "variable \"%s\" is a function and must be called with parameters.", v.Text())
		return nil, false
	}
	if e.depth >= maxDepth {
		e.rpt.Error(v.Pos(), "variable \"%s\" is recursive or nested too deeply.", v.Text())
		return nil, false
	}
	e.depth++
	defer func() { e.depth-- }()

	value := entry.Value.Clone()
	if !value.Is(node.KindArg) {
		value = wrap(value.Pos(), []*node.Node{value})
		if !value.Is(node.KindList) {
			return e.single(value)
		}
	}
	values, ok := e.list(value.Children(), false)
	if !ok {
		return nil, false
	}
	if len(values) == 0 {
		e.rpt.Error(v.Pos(), "variable \"%s\" has no value.", v.Text())
		return nil, false
	}
	return wrap(v.Pos(), values), true
}

// single evaluates a lone node.
func (e *Engine) single(n *node.Node) (*node.Node, bool) {
	p := &parser{e: e, tokens: []*node.Node{n}}
	return p.expression(0)
}

// call invokes a user function: arguments are bound to parameters in a
// copy of the variable table, then the body is evaluated.
func (e *Engine) call(c *node.Node) (*node.Node, bool) {
	entry, ok := e.vars.Lookup(c.Text())
	if !ok || !entry.IsFunction() {
		e.rpt.Error(c.Pos(), "function named \"%s\" is not defined.", c.Text())
		return nil, false
	}
	if e.depth >= maxDepth {
		e.rpt.Error(c.Pos(), "function \"%s\" is recursive or nested too deeply.", c.Text())
		return nil, false
	}
	fn := entry.Function

	args, ok := e.arguments(c)
	if !ok {
		return nil, false
	}
	if len(args) < fn.Required() {
		e.rpt.Error(c.Pos(), "function \"%s\" expects at least %d parameter(s), %d given.", c.Text(), fn.Required(), len(args))
		return nil, false
	}
	if len(args) > len(fn.Params) {
		e.rpt.Error(c.Pos(), "function \"%s\" expects at most %d parameter(s), %d given.", c.Text(), len(fn.Params), len(args))
		return nil, false
	}

	scope := e.vars.Clone()
	for i, p := range fn.Params {
		var value *node.Node
		if i < len(args) {
			value = node.New(node.KindArg, args[i].Pos())
			if args[i].Is(node.KindList) {
				value.SetChildren(args[i].Children())
			} else {
				value.Append(args[i])
			}
		} else {
			value = p.Default.Clone()
		}
		scope.Set(p.Name, value)
	}

	saved := e.vars
	e.vars = scope
	e.depth++
	defer func() {
		e.vars = saved
		e.depth--
	}()

	values, ok := e.list(fn.Body.Clone().Children(), false)
	if !ok {
		return nil, false
	}
	return wrap(c.Pos(), values), true
}

// arguments evaluates comma separated arguments of a function node, each
// argument may be a list.
func (e *Engine) arguments(fn *node.Node) ([]*node.Node, bool) {
	var args []*node.Node
	for _, a := range splitCommas(fn.Children()) {
		values, ok := e.list(a, false)
		if !ok {
			return nil, false
		}
		if len(values) == 0 {
			e.rpt.Error(fn.Pos(), "%s() has an empty parameter.", fn.Text())
			return nil, false
		}
		args = append(args, wrap(values[0].Pos(), values))
	}
	return args, true
}

func splitCommas(nodes []*node.Node) [][]*node.Node {
	var (
		out   [][]*node.Node
		cur   []*node.Node
		empty = true
	)
	for _, n := range nodes {
		if n.Is(node.KindComma) {
			out = append(out, cur)
			cur = nil
			continue
		}
		if !n.Is(node.KindWhitespace) {
			empty = false
		}
		cur = append(cur, n)
	}
	if empty && len(out) == 0 {
		return nil
	}
	return append(out, cur)
}

// substitute replaces variables in arguments of raw CSS functions without
// evaluating anything else.
func (e *Engine) substitute(nodes []*node.Node) ([]*node.Node, bool) {
	out := make([]*node.Node, 0, len(nodes))
	for _, n := range nodes {
		switch n.Kind() {
		case node.KindVariable:
			v, ok := e.variable(n)
			if !ok {
				return nil, false
			}
			if v.Is(node.KindList) {
				out = append(out, v.Children()...)
			} else {
				out = append(out, v)
			}
			continue
		case node.KindFunction, node.KindOpenParen:
			children, ok := e.substitute(n.Children())
			if !ok {
				return nil, false
			}
			n.SetChildren(children)
		}
		if n.Is(node.KindWhitespace) && (len(out) == 0 || out[len(out)-1].Is(node.KindWhitespace)) {
			continue
		}
		out = append(out, n)
	}
	for len(out) > 0 && out[len(out)-1].Is(node.KindWhitespace) {
		out = out[:len(out)-1]
	}
	return out, true
}
