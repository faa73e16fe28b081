package node

import (
	"errors"
	"math"
	"testing"
)

func TestNode_Accessors(t *testing.T) {
	pos := Position{File: "a.scss", Line: 3}

	i := NewInteger(pos, 12, "px")
	if i.Integer() != 12 || i.Unit() != "px" || i.Number() != 12 {
		t.Errorf("integer accessors = %d %q %v", i.Integer(), i.Unit(), i.Number())
	}
	d := NewDecimal(pos, 1.5, "")
	if d.Decimal() != 1.5 || d.Unit() != "" {
		t.Errorf("decimal accessors = %v %q", d.Decimal(), d.Unit())
	}
	if got := NewIdentifier(pos, "div").Text(); got != "div" {
		t.Errorf("Text() = %q, want div", got)
	}
	if !NewBoolean(pos, true).Boolean() {
		t.Error("Boolean() = false, want true")
	}
	a, b := NewAnPlusB(pos, 2, -1).AnPlusB()
	if a != 2 || b != -1 {
		t.Errorf("AnPlusB() = %d, %d", a, b)
	}
	if pos.String() != "a.scss(3)" {
		t.Errorf("Position.String() = %q", pos.String())
	}
}

func TestNode_WrongVariantPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"integer on string", func() { NewString(Position{}, "x").Integer() }},
		{"decimal on integer", func() { NewInteger(Position{}, 1, "").Decimal() }},
		{"unit on identifier", func() { NewIdentifier(Position{}, "x").Unit() }},
		{"color on hash", func() { NewHash(Position{}, "fff").Color() }},
		{"text on comma", func() { New(KindComma, Position{}).Text() }},
		{"new unknown", func() { New(KindUnknown, Position{}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				var ce *ContractError
				if !ok || !errors.As(err, &ce) {
					t.Fatalf("expected ContractError panic, got %v", r)
				}
			}()
			tt.fn()
		})
	}
}

func TestNode_CloneIsDeep(t *testing.T) {
	list := New(KindList, Position{})
	fn := NewFunction(Position{}, "rgb")
	fn.Append(NewInteger(Position{}, 1, ""))
	list.Append(fn)

	c := list.Clone()
	c.Child(0).Child(0).SetUnit("px")
	c.Child(0).Append(NewInteger(Position{}, 2, ""))

	if fn.Len() != 1 {
		t.Errorf("original children modified: %d", fn.Len())
	}
	if fn.Child(0).Unit() != "" {
		t.Errorf("original unit modified: %q", fn.Child(0).Unit())
	}
}

func TestNode_ChildrenEditing(t *testing.T) {
	n := New(KindArg, Position{})
	n.Append(NewIdentifier(Position{}, "a"), NewIdentifier(Position{}, "c"))
	n.Insert(1, NewIdentifier(Position{}, "b"))
	if n.Len() != 3 || n.Child(1).Text() != "b" {
		t.Fatalf("insert failed: %#v", n.Children())
	}
	removed := n.Remove(0)
	if removed.Text() != "a" || n.Child(0).Text() != "b" {
		t.Errorf("remove failed")
	}
	if n.Child(5) != nil {
		t.Error("out of range child must be nil")
	}
	n.SetFlag(FlagImportant)
	if !n.Flag(FlagImportant) || n.Flag(FlagTrailingSpace) {
		t.Error("flags not handled")
	}
	n.ClearFlag(FlagImportant)
	if n.Flag(FlagImportant) {
		t.Error("flag not cleared")
	}
}

func TestColor(t *testing.T) {
	c, ok := ParseHex("#f7d0cf")
	if !ok {
		t.Fatal("ParseHex failed")
	}
	r, g, b, a := c.RGBA()
	if r != 0xf7 || g != 0xd0 || b != 0xcf || a != 255 {
		t.Errorf("RGBA() = %d %d %d %d", r, g, b, a)
	}
	if c.Hex() != "#f7d0cf" {
		t.Errorf("Hex() = %s", c.Hex())
	}
	short, _ := ParseHex("fff")
	if short.Hex() != "#fff" {
		t.Errorf("Hex() = %s, want #fff", short.Hex())
	}
	if _, ok := ParseHex("#ggg"); ok {
		t.Error("ParseHex accepted invalid digits")
	}
	black, ok := NamedColor("Black")
	if !ok || black.Hex() != "#000" {
		t.Errorf("NamedColor(Black) = %v %v", black, ok)
	}

	rgba := FromComponents(10, 20, 30, 0.4)
	if math.Abs(rgba.Alpha()-0.4) > 1e-9 {
		t.Errorf("Alpha() = %v", rgba.Alpha())
	}
	if FromFloats(10.0/255, 20.0/255, 30.0/255, 0.4) != rgba {
		t.Error("0-1 scale color differs from 0-255 scale color")
	}
}

func TestToRadians(t *testing.T) {
	for _, tt := range []struct {
		v    float64
		unit string
	}{
		{180, ""}, {180, "deg"}, {math.Pi, "rad"}, {200, "grad"}, {0.5, "turn"},
	} {
		got, ok := ToRadians(tt.v, tt.unit)
		if !ok || math.Abs(got-math.Pi) > 1e-12 {
			t.Errorf("ToRadians(%v, %q) = %v, %v", tt.v, tt.unit, got, ok)
		}
	}
	if _, ok := ToRadians(1, "px"); ok {
		t.Error("ToRadians accepted px")
	}
	if ClassifyUnit("PX") != UnitLength || ClassifyUnit("zz") != UnitUnknown || ClassifyUnit("") != UnitNone {
		t.Error("ClassifyUnit misclassified")
	}
}

func TestNode_Describe(t *testing.T) {
	pos := Position{File: "t.css", Line: 1}
	tests := []struct {
		n    *Node
		want string
	}{
		{New(KindGreaterThan, pos), "'>'"},
		{New(KindComma, pos), "','"},
		{New(KindWhitespace, pos), "WHITESPACE"},
		{NewIdentifier(pos, "a"), "IDENTIFIER"},
		{NewInteger(pos, 3, ""), "INTEGER"},
	}
	for _, tt := range tests {
		if got := tt.n.Describe(); got != tt.want {
			t.Errorf("%#v.Describe() = %q, want %q", tt.n, got, tt.want)
		}
	}
}
