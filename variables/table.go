// Package variables keeps named values and user defined value functions
// declared by the style sheet.
package variables

import (
	"maps"
	"slices"

	"github.com/maruel/natural"

	"csspc/node"
)

// Param is one parameter of a variable function, Default is nil when the
// parameter is mandatory.
type Param struct {
	Name    string
	Default *node.Node
}

// Function is a parametrized value macro.
type Function struct {
	Params []Param
	Body   *node.Node
}

// Required returns number of parameters without defaults preceding the first
// parameter with one.
func (f *Function) Required() int {
	for i, p := range f.Params {
		if p.Default != nil {
			return i
		}
	}
	return len(f.Params)
}

// Entry holds either a value or a function.
type Entry struct {
	Value    *node.Node
	Function *Function
	Pos      node.Position
}

func (e Entry) IsFunction() bool {
	return e.Function != nil
}

// Table maps variable names to their last binding. Not safe for concurrent
// use.
type Table struct {
	entries map[string]Entry
}

func New() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// Set binds name to value, previous binding of any sort is replaced.
func (t *Table) Set(name string, value *node.Node) {
	t.entries[name] = Entry{Value: value, Pos: value.Pos()}
}

// SetFunction binds name to a function, previous binding of any sort is
// replaced.
func (t *Table) SetFunction(name string, fn *Function) {
	t.entries[name] = Entry{Function: fn, Pos: fn.Body.Pos()}
}

func (t *Table) Lookup(name string) (Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

func (t *Table) Delete(name string) {
	delete(t.entries, name)
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Clone returns a shallow copy: bound subtrees are shared and must be treated
// as read only by users of either table.
func (t *Table) Clone() *Table {
	return &Table{entries: maps.Clone(t.entries)}
}

// Reset forgets all bindings.
func (t *Table) Reset() {
	clear(t.entries)
}

// Names returns bound names in natural order ("v2" before "v10").
func (t *Table) Names() []string {
	names := slices.Collect(maps.Keys(t.entries))
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
	return names
}
