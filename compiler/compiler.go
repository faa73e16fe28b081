// Package compiler turns the parsed tree into its final form: selectors are
// validated and normalized, nested rules flattened, values evaluated and
// preprocessor statements consumed.
package compiler

import (
	"strings"

	"go.uber.org/zap"

	"csspc/diag"
	"csspc/expr"
	"csspc/node"
	"csspc/validation"
	"csspc/variables"
)

// fatal carries an unrecoverable error up to Compile.
type fatal struct {
	err error
}

type cacheKey struct {
	category validation.Category
	name     string
}

// Compiler mutates a parsed tree in place. It is not safe for concurrent use,
// the only state kept between calls is the validation cache and the variable
// table.
type Compiler struct {
	log       *zap.Logger
	rpt       *diag.Reporter
	validator validation.Validator
	eval      *expr.Engine
	cache     map[cacheKey]bool
}

// New creates compiler. When vars is nil an empty table is used.
func New(log *zap.Logger, rpt *diag.Reporter, validator validation.Validator, vars *variables.Table) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	if vars == nil {
		vars = variables.New()
	}
	log = log.Named("compiler")
	return &Compiler{
		log:       log,
		rpt:       rpt,
		validator: validator,
		eval:      expr.New(log, rpt, vars),
		cache:     make(map[cacheKey]bool),
	}
}

// Variables returns table holding style sheet variables and functions.
func (c *Compiler) Variables() *variables.Table {
	return c.eval.Variables()
}

// ResetCache forgets memoized validation results.
func (c *Compiler) ResetCache() {
	clear(c.cache)
}

// Compile processes root (a LIST of statements). Problems with the input are
// sent to the reporter and the offending parts are removed, returned error
// means validation data could not be loaded and the tree is unusable.
func (c *Compiler) Compile(root *node.Node) (err error) {
	if !root.Is(node.KindList) {
		node.Unexpected("compiler: root", root)
	}

	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(fatal)
			if !ok {
				panic(r)
			}
			err = f.err
		}
	}()

	kept, _ := c.items(root.TakeChildren(), nil, block{})
	root.SetChildren(kept)

	c.log.Debug("Style sheet compiled",
		zap.Int("statements", root.Len()),
		zap.Int("errors", c.rpt.ErrorCount()),
		zap.Int("cached names", len(c.cache)))
	return nil
}

// valid checks name against a validation table, results are memoized.
func (c *Compiler) valid(category validation.Category, name string) bool {
	key := cacheKey{category: category, name: strings.ToLower(name)}
	if ok, found := c.cache[key]; found {
		return ok
	}
	ok, err := c.validator.Validate(category, name)
	if err != nil {
		panic(fatal{err: err})
	}
	c.cache[key] = ok
	return ok
}

// block describes what a statement list may hold.
type block struct {
	declarations bool
	keyframes    bool // rule selectors are keyframe selectors
}

// items compiles a list of statements. Rules nested under parents are
// returned separately to be placed after the enclosing rule.
func (c *Compiler) items(stmts []*node.Node, parents []*node.Node, b block) (kept, hoisted []*node.Node) {
	for _, s := range stmts {
		switch s.Kind() {
		case node.KindComment:
			if c.comment(s) {
				kept = append(kept, s)
			}
		case node.KindVariableDefinition, node.KindFunctionDefinition:
			c.eval.Define(s)
		case node.KindDeclaration:
			if !b.declarations {
				c.rpt.Error(s.Pos(), "declaration \"%s\" must appear inside a block.", s.Text())
				continue
			}
			if c.eval.Declaration(s) {
				kept = append(kept, s)
			}
		case node.KindComponentValue:
			rules := c.rule(s, parents, b.keyframes)
			if parents == nil {
				kept = append(kept, rules...)
			} else {
				hoisted = append(hoisted, rules...)
			}
		case node.KindAtKeyword:
			if at, ok := c.atRule(s, parents != nil); ok {
				kept = append(kept, at)
			}
		default:
			node.Unexpected("compiler: statement", s)
		}
	}
	return kept, hoisted
}

// comment keeps only comments marked with @preserve.
func (c *Compiler) comment(n *node.Node) bool {
	if !strings.Contains(n.Text(), "@preserve") {
		return false
	}
	if n.Flag(node.FlagLineComment) {
		c.rpt.Warning(n.Pos(), "C++ comments are not supported by CSS, preserved comment converted to /* ... */.")
		n.ClearFlag(node.FlagLineComment)
	}
	return true
}

// rule compiles a qualified rule and returns it followed by its flattened
// nested rules. Nothing is returned for rules with errors in the selector.
func (c *Compiler) rule(r *node.Node, parents []*node.Node, keyframes bool) []*node.Node {
	children := r.Children()
	sel, body := children[:len(children)-1], r.Last()

	var (
		alts []*node.Node
		ok   bool
	)
	if keyframes {
		alts, ok = c.keyframeSelectors(r.Pos(), sel)
	} else {
		alts, ok = c.selectorList(r.Pos(), sel, parents != nil)
	}
	if !ok {
		return nil
	}
	if parents != nil {
		alts = combine(parents, alts)
	}

	kept, hoisted := c.items(body.TakeChildren(), alts, block{declarations: true})
	body.SetChildren(kept)

	visible := make([]*node.Node, 0, len(alts))
	for _, a := range alts {
		if !hasPlaceholder(a) {
			visible = append(visible, a)
		}
	}

	var out []*node.Node
	switch {
	case len(visible) == 0:
		c.log.Debug("Placeholder rule removed", zap.Stringer("at", r.Pos()))
	case len(kept) == 0:
		c.log.Debug("Empty rule removed", zap.Stringer("at", r.Pos()))
	default:
		r.SetChildren(append(visible, body))
		out = append(out, r)
	}
	return append(out, hoisted...)
}

var messages = map[string]diag.Severity{
	"error":   diag.SeverityError,
	"warning": diag.SeverityWarning,
	"info":    diag.SeverityInfo,
	"message": diag.SeverityInfo,
	"debug":   diag.SeverityDebug,
}

// atRule compiles an at-rule, false is returned when it has to be removed.
func (c *Compiler) atRule(at *node.Node, inRule bool) (*node.Node, bool) {
	name := strings.ToLower(at.Text())

	prelude := at.Children()
	body := at.Last()
	if body.Is(node.KindOpenCurly) {
		prelude = prelude[:len(prelude)-1]
	} else {
		body = nil
	}

	if sev, ok := messages[name]; ok {
		c.message(at, sev, prelude)
		return nil, false
	}
	switch {
	case name == "charset":
		return nil, false
	case inRule:
		c.rpt.Error(at.Pos(), "@%s is not supported inside a rule.", at.Text())
		return nil, false
	case body == nil:
		return at, true
	}

	var b block
	switch name {
	case "keyframes", "-webkit-keyframes", "-moz-keyframes", "-o-keyframes":
		b.keyframes = true
	case "media", "supports", "document", "-moz-document", "layer", "container":
	default:
		// @font-face, @page and friends hold declarations
		b.declarations = true
	}
	kept, _ := c.items(body.TakeChildren(), nil, b)
	if len(kept) == 0 {
		c.log.Debug("Empty at-rule removed", zap.String("name", name), zap.Stringer("at", at.Pos()))
		return nil, false
	}
	body.SetChildren(kept)
	return at, true
}

// message turns @error, @warning, @info, @message and @debug into
// diagnostics.
func (c *Compiler) message(at *node.Node, sev diag.Severity, prelude []*node.Node) {
	values, ok := c.eval.Evaluate(prelude)
	if !ok {
		return
	}
	var b strings.Builder
	for _, v := range values {
		b.WriteString(expr.Text(v))
	}
	c.rpt.Report(sev, at.Pos(), "%s", b.String())
}
