package variables

import (
	"slices"
	"testing"

	"csspc/node"
)

func TestTable_LastWriteWins(t *testing.T) {
	tbl := New()
	tbl.Set("size", node.NewInteger(node.Position{Line: 1}, 3, "px"))
	tbl.Set("size", node.NewInteger(node.Position{Line: 2}, 5, "em"))

	e, ok := tbl.Lookup("size")
	if !ok {
		t.Fatal("size not found")
	}
	if e.IsFunction() {
		t.Fatal("size must be a value")
	}
	if e.Value.Integer() != 5 || e.Value.Unit() != "em" || e.Pos.Line != 2 {
		t.Errorf("Lookup(size) = %#v at %v", e.Value, e.Pos)
	}

	tbl.SetFunction("size", &Function{Body: node.NewIdentifier(node.Position{Line: 3}, "x")})
	if e, _ := tbl.Lookup("size"); !e.IsFunction() {
		t.Error("function binding did not replace value")
	}
}

func TestTable_CloneIsIndependent(t *testing.T) {
	tbl := New()
	tbl.Set("a", node.NewIdentifier(node.Position{}, "x"))

	c := tbl.Clone()
	c.Set("b", node.NewIdentifier(node.Position{}, "y"))
	c.Delete("a")

	if _, ok := tbl.Lookup("b"); ok {
		t.Error("clone leaked binding into original")
	}
	if _, ok := tbl.Lookup("a"); !ok {
		t.Error("deleting from clone removed original binding")
	}
}

func TestTable_Names(t *testing.T) {
	tbl := New()
	for _, n := range []string{"v10", "v2", "alpha", "v1"} {
		tbl.Set(n, node.NewInteger(node.Position{}, 1, ""))
	}
	want := []string{"alpha", "v1", "v2", "v10"}
	if got := tbl.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	tbl.Reset()
	if tbl.Len() != 0 {
		t.Errorf("Len() after Reset = %d", tbl.Len())
	}
}

func TestFunction_Required(t *testing.T) {
	fn := &Function{
		Params: []Param{
			{Name: "a"},
			{Name: "b", Default: node.NewInteger(node.Position{}, 2, "")},
		},
		Body: node.NewVariable(node.Position{}, "a"),
	}
	if fn.Required() != 1 {
		t.Errorf("Required() = %d, want 1", fn.Required())
	}
}
