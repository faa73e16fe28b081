// Package node defines the typed tree shared by the parser, the compiler and
// the assembler.
package node

import (
	"fmt"
	"slices"
	"strconv"
)

// Position locates a node in its source.
type Position struct {
	File string
	Line int
}

func (p Position) String() string {
	file := p.File
	if file == "" {
		file = "-"
	}
	return fmt.Sprintf("%s(%d)", file, p.Line)
}

// Flag is an auxiliary marker attached to a node.
type Flag uint8

const (
	// FlagImportant marks declarations ending with !important.
	FlagImportant Flag = 1 << iota
	// FlagTrailingSpace is set when the token was followed by whitespace
	// in the source.
	FlagTrailingSpace
	// FlagLineComment marks comments written with // in the source.
	FlagLineComment
)

// Node is one element of the style sheet tree. A node exclusively owns its
// children.
type Node struct {
	kind     Kind
	pos      Position
	flags    Flag
	children []*Node

	text    string
	integer int64
	offset  int64 // b of an+b
	decimal float64
	unit    string
	color   Color
}

// New creates an empty node of the given kind.
func New(kind Kind, pos Position) *Node {
	if !kind.IsValid() {
		panic(&ContractError{Op: "new", Kind: kind})
	}
	return &Node{kind: kind, pos: pos}
}

func newText(kind Kind, pos Position, text string) *Node {
	n := New(kind, pos)
	n.text = text
	return n
}

func NewIdentifier(pos Position, name string) *Node {
	return newText(KindIdentifier, pos, name)
}

func NewString(pos Position, s string) *Node {
	return newText(KindString, pos, s)
}

// NewHash creates a raw hash token, text does not include the leading '#'.
func NewHash(pos Position, text string) *Node {
	return newText(KindHash, pos, text)
}

func NewURL(pos Position, url string) *Node {
	return newText(KindURL, pos, url)
}

func NewComment(pos Position, text string) *Node {
	return newText(KindComment, pos, text)
}

// NewFunction creates a function node, name does not include the '('.
func NewFunction(pos Position, name string) *Node {
	return newText(KindFunction, pos, name)
}

// NewAtKeyword creates an at-rule node, name does not include the '@'.
func NewAtKeyword(pos Position, name string) *Node {
	return newText(KindAtKeyword, pos, name)
}

func NewDeclaration(pos Position, property string) *Node {
	return newText(KindDeclaration, pos, property)
}

// NewVariable creates a variable reference, name does not include the '$'.
func NewVariable(pos Position, name string) *Node {
	return newText(KindVariable, pos, name)
}

func NewPlaceholder(pos Position, name string) *Node {
	return newText(KindPlaceholder, pos, name)
}

func NewInteger(pos Position, v int64, unit string) *Node {
	n := New(KindInteger, pos)
	n.integer = v
	n.unit = unit
	return n
}

func NewDecimal(pos Position, v float64, unit string) *Node {
	n := New(KindDecimal, pos)
	n.decimal = v
	n.unit = unit
	return n
}

func NewColor(pos Position, c Color) *Node {
	n := New(KindColor, pos)
	n.color = c
	return n
}

func NewBoolean(pos Position, v bool) *Node {
	n := New(KindBoolean, pos)
	if v {
		n.integer = 1
	}
	return n
}

func NewAnPlusB(pos Position, a, b int64) *Node {
	n := New(KindAnPlusB, pos)
	n.integer = a
	n.offset = b
	return n
}

func (n *Node) Kind() Kind {
	return n.kind
}

// Is reports whether node kind is one of kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}
	return slices.Contains(kinds, n.kind)
}

func (n *Node) Pos() Position {
	return n.pos
}

func (n *Node) Flag(f Flag) bool {
	return n.flags&f != 0
}

func (n *Node) SetFlag(f Flag) {
	n.flags |= f
}

func (n *Node) ClearFlag(f Flag) {
	n.flags &^= f
}

func (n *Node) Len() int {
	return len(n.children)
}

func (n *Node) Empty() bool {
	return len(n.children) == 0
}

// Children returns the children slice, callers must not modify it.
func (n *Node) Children() []*Node {
	return n.children
}

// Child returns child at index i or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Last returns the last child or nil.
func (n *Node) Last() *Node {
	return n.Child(len(n.children) - 1)
}

func (n *Node) Append(children ...*Node) {
	n.children = append(n.children, children...)
}

func (n *Node) Insert(i int, children ...*Node) {
	n.children = slices.Insert(n.children, i, children...)
}

func (n *Node) Remove(i int) *Node {
	c := n.children[i]
	n.children = slices.Delete(n.children, i, i+1)
	return c
}

func (n *Node) Replace(i int, c *Node) {
	n.children[i] = c
}

// SetChildren takes ownership of children.
func (n *Node) SetChildren(children []*Node) {
	n.children = children
}

// TakeChildren detaches and returns all children.
func (n *Node) TakeChildren() []*Node {
	c := n.children
	n.children = nil
	return c
}

// Clone returns a deep copy of the subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.children != nil {
		c.children = make([]*Node, len(n.children))
		for i, ch := range n.children {
			c.children[i] = ch.Clone()
		}
	}
	return &c
}

func (n *Node) hasText() bool {
	switch n.kind {
	case KindIdentifier, KindString, KindHash, KindURL, KindComment,
		KindFunction, KindAtKeyword, KindDeclaration, KindVariable,
		KindVariableFunction, KindVariableDefinition, KindFunctionDefinition,
		KindPlaceholder:
		return true
	}
	return false
}

// Text returns the name or literal text of textual nodes.
func (n *Node) Text() string {
	if !n.hasText() {
		panic(&ContractError{Op: "text", Kind: n.kind})
	}
	return n.text
}

func (n *Node) SetText(s string) {
	if !n.hasText() {
		panic(&ContractError{Op: "set text", Kind: n.kind})
	}
	n.text = s
}

func (n *Node) Integer() int64 {
	if n.kind != KindInteger {
		panic(&ContractError{Op: "integer", Kind: n.kind})
	}
	return n.integer
}

func (n *Node) Decimal() float64 {
	if n.kind != KindDecimal {
		panic(&ContractError{Op: "decimal", Kind: n.kind})
	}
	return n.decimal
}

// Number returns value of integer or decimal node as float.
func (n *Node) Number() float64 {
	switch n.kind {
	case KindInteger:
		return float64(n.integer)
	case KindDecimal:
		return n.decimal
	}
	panic(&ContractError{Op: "number", Kind: n.kind})
}

func (n *Node) Unit() string {
	if !n.kind.IsNumber() {
		panic(&ContractError{Op: "unit", Kind: n.kind})
	}
	return n.unit
}

func (n *Node) SetUnit(unit string) {
	if !n.kind.IsNumber() {
		panic(&ContractError{Op: "set unit", Kind: n.kind})
	}
	n.unit = unit
}

func (n *Node) Color() Color {
	if n.kind != KindColor {
		panic(&ContractError{Op: "color", Kind: n.kind})
	}
	return n.color
}

func (n *Node) Boolean() bool {
	if n.kind != KindBoolean {
		panic(&ContractError{Op: "boolean", Kind: n.kind})
	}
	return n.integer != 0
}

// AnPlusB returns a and b of a canonical an+b node.
func (n *Node) AnPlusB() (int64, int64) {
	if n.kind != KindAnPlusB {
		panic(&ContractError{Op: "an+b", Kind: n.kind})
	}
	return n.integer, n.offset
}

// FormatAnPlusB returns the shortest canonical spelling: "3", "n", "-n+3",
// "2n+1", "2n-1".
func FormatAnPlusB(a, b int64) string {
	var s string
	switch a {
	case 0:
		return strconv.FormatInt(b, 10)
	case 1:
		s = "n"
	case -1:
		s = "-n"
	default:
		s = strconv.FormatInt(a, 10) + "n"
	}
	switch {
	case b > 0:
		s += "+" + strconv.FormatInt(b, 10)
	case b < 0:
		s += strconv.FormatInt(b, 10)
	}
	return s
}

// Walk calls fn for n and every descendant in depth first order, children
// are not visited when fn returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Describe names n in diagnostics: quoted symbol for punctuation, kind name
// for everything else.
func (n *Node) Describe() string {
	if sym := n.kind.Symbol(); sym != "" && n.kind != KindWhitespace {
		return "'" + sym + "'"
	}
	return n.kind.String()
}

// GoString makes debugging output readable.
func (n *Node) GoString() string {
	switch {
	case n.hasText():
		return fmt.Sprintf("%s(%q)", n.kind, n.text)
	case n.kind.IsNumber():
		return fmt.Sprintf("%s(%v%s)", n.kind, n.Number(), n.unit)
	case n.kind == KindColor:
		return fmt.Sprintf("%s(%s)", n.kind, n.color)
	}
	return n.kind.String()
}
