package expr

import (
	"math"

	"csspc/node"
)

func opName(op *node.Node) string {
	if op.Is(node.KindIdentifier) {
		return op.Text()
	}
	return op.Kind().Symbol()
}

// binary applies op to already evaluated operands.
func (e *Engine) binary(op, l, r *node.Node) (*node.Node, bool) {
	if l.Is(node.KindList) || r.Is(node.KindList) {
		e.rpt.Error(op.Pos(), "operator '%s' cannot be applied to a list of values.", opName(op))
		return nil, false
	}

	switch op.Kind() {
	case node.KindIdentifier:
		lb, ok := e.truth(op, l)
		if !ok {
			return nil, false
		}
		rb, ok := e.truth(op, r)
		if !ok {
			return nil, false
		}
		if op.Text() == "and" {
			return node.NewBoolean(op.Pos(), lb && rb), true
		}
		return node.NewBoolean(op.Pos(), lb || rb), true
	case node.KindEqual:
		return node.NewBoolean(op.Pos(), equal(l, r)), true
	case node.KindNotEqual:
		return node.NewBoolean(op.Pos(), !equal(l, r)), true
	case node.KindLessThan, node.KindLessEqual, node.KindGreaterThan, node.KindGreaterEqual:
		return e.compare(op, l, r)
	case node.KindAdd:
		if l.Is(node.KindString) && (r.Is(node.KindString, node.KindIdentifier) || r.Kind().IsNumber()) {
			return node.NewString(l.Pos(), l.Text()+Text(r)), true
		}
		return e.arithmetic(op, l, r)
	case node.KindDivide:
		if !l.Kind().IsNumber() || !r.Kind().IsNumber() {
			// separator as in "center / cover"
			return wrap(l.Pos(), []*node.Node{l, node.New(node.KindDivide, op.Pos()), r}), true
		}
		return e.arithmetic(op, l, r)
	case node.KindSubtract, node.KindMultiply, node.KindModulo:
		return e.arithmetic(op, l, r)
	default:
		node.Unexpected("expr: binary operator", op)
	}
	return nil, false
}

// additiveUnit returns unit of a sum: units must match or one side must be
// unitless.
func additiveUnit(lu, ru string) (string, bool) {
	switch {
	case lu == ru:
		return lu, true
	case lu == "":
		return ru, true
	case ru == "":
		return lu, true
	}
	return "", false
}

func (e *Engine) arithmetic(op, l, r *node.Node) (*node.Node, bool) {
	if !l.Kind().IsNumber() || !r.Kind().IsNumber() {
		e.rpt.Error(op.Pos(), "unsupported types %s and %s for operator '%s'.", l.Kind(), r.Kind(), opName(op))
		return nil, false
	}
	lu, ru := l.Unit(), r.Unit()

	var (
		unit string
		ok   = true
	)
	switch op.Kind() {
	case node.KindAdd, node.KindSubtract, node.KindModulo:
		unit, ok = additiveUnit(lu, ru)
	case node.KindMultiply:
		ok = lu == "" || ru == ""
		unit = lu + ru
	case node.KindDivide:
		switch {
		case lu == ru:
			unit = ""
		case ru == "":
			unit = lu
		default:
			ok = false
		}
	}
	if !ok {
		e.rpt.Error(op.Pos(), "incompatible dimensions: \"%s\" and \"%s\" cannot be used with operator '%s'.", lu, ru, opName(op))
		return nil, false
	}

	if r.Number() == 0 {
		switch op.Kind() {
		case node.KindDivide:
			e.rpt.Error(op.Pos(), "division by zero.")
			return nil, false
		case node.KindModulo:
			e.rpt.Error(op.Pos(), "modulo by zero.")
			return nil, false
		}
	}

	if l.Is(node.KindInteger) && r.Is(node.KindInteger) {
		if v, exact := integerOp(op.Kind(), l.Integer(), r.Integer()); exact {
			return node.NewInteger(l.Pos(), v, unit), true
		}
		// overflow, result is promoted to decimal
	}

	a, b := l.Number(), r.Number()
	var v float64
	switch op.Kind() {
	case node.KindAdd:
		v = a + b
	case node.KindSubtract:
		v = a - b
	case node.KindMultiply:
		v = a * b
	case node.KindDivide:
		v = a / b
	case node.KindModulo:
		v = math.Mod(a, b)
	}
	return node.NewDecimal(l.Pos(), v, unit), true
}

// integerOp applies op to integers, exact is false when the result does not
// fit into int64.
func integerOp(op node.Kind, a, b int64) (v int64, exact bool) {
	switch op {
	case node.KindAdd:
		v = a + b
		return v, (v > a) == (b > 0)
	case node.KindSubtract:
		v = a - b
		return v, (v < a) == (b > 0)
	case node.KindMultiply:
		if a == 0 || b == 0 {
			return 0, true
		}
		v = a * b
		return v, v/b == a && !(a == math.MinInt64 && b == -1) && !(b == math.MinInt64 && a == -1)
	case node.KindDivide:
		if a == math.MinInt64 && b == -1 {
			return 0, false
		}
		return a / b, true
	case node.KindModulo:
		return a % b, true
	}
	return 0, false
}

// negative returns -v, MinInt64 has no integer counterpart.
func negative(pos node.Position, v int64, unit string) *node.Node {
	if v == math.MinInt64 {
		return node.NewDecimal(pos, -float64(v), unit)
	}
	return node.NewInteger(pos, -v, unit)
}

func (e *Engine) compare(op, l, r *node.Node) (*node.Node, bool) {
	var cmp int
	switch {
	case l.Kind().IsNumber() && r.Kind().IsNumber():
		if _, ok := additiveUnit(l.Unit(), r.Unit()); !ok {
			e.rpt.Error(op.Pos(), "incompatible dimensions: \"%s\" and \"%s\" cannot be used with operator '%s'.", l.Unit(), r.Unit(), opName(op))
			return nil, false
		}
		a, b := l.Number(), r.Number()
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	case l.Is(node.KindString) && r.Is(node.KindString):
		switch {
		case l.Text() < r.Text():
			cmp = -1
		case l.Text() > r.Text():
			cmp = 1
		}
	default:
		e.rpt.Error(op.Pos(), "unsupported types %s and %s for operator '%s'.", l.Kind(), r.Kind(), opName(op))
		return nil, false
	}

	var res bool
	switch op.Kind() {
	case node.KindLessThan:
		res = cmp < 0
	case node.KindLessEqual:
		res = cmp <= 0
	case node.KindGreaterThan:
		res = cmp > 0
	case node.KindGreaterEqual:
		res = cmp >= 0
	}
	return node.NewBoolean(op.Pos(), res), true
}

func equal(l, r *node.Node) bool {
	switch {
	case l.Kind().IsNumber() && r.Kind().IsNumber():
		return l.Unit() == r.Unit() && l.Number() == r.Number()
	case l.Kind() != r.Kind():
		return false
	}
	switch l.Kind() {
	case node.KindString, node.KindIdentifier, node.KindURL, node.KindHash:
		return l.Text() == r.Text()
	case node.KindColor:
		return l.Color() == r.Color()
	case node.KindBoolean:
		return l.Boolean() == r.Boolean()
	}
	return Text(l) == Text(r)
}

func (e *Engine) negate(op, n *node.Node) (*node.Node, bool) {
	switch n.Kind() {
	case node.KindInteger:
		if op.Is(node.KindSubtract) {
			return negative(n.Pos(), n.Integer(), n.Unit()), true
		}
		return n, true
	case node.KindDecimal:
		if op.Is(node.KindSubtract) {
			return node.NewDecimal(n.Pos(), -n.Decimal(), n.Unit()), true
		}
		return n, true
	}
	e.rpt.Error(op.Pos(), "unary '%s' expects a number, not %s.", opName(op), n.Kind())
	return nil, false
}

func (e *Engine) not(op, n *node.Node) (*node.Node, bool) {
	b, ok := e.truth(op, n)
	if !ok {
		return nil, false
	}
	return node.NewBoolean(op.Pos(), !b), true
}

// truth converts n to a boolean.
func (e *Engine) truth(at, n *node.Node) (bool, bool) {
	switch n.Kind() {
	case node.KindBoolean:
		return n.Boolean(), true
	case node.KindInteger, node.KindDecimal:
		return n.Number() != 0, true
	case node.KindString:
		return n.Text() != "", true
	case node.KindIdentifier:
		switch n.Text() {
		case "true":
			return true, true
		case "false", "null":
			return false, true
		}
	}
	e.rpt.Error(at.Pos(), "%s cannot be used as a boolean.", n.Kind())
	return false, false
}
