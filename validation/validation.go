// Package validation answers whether names used in selectors (pseudo classes,
// pseudo elements, languages, ...) are legal. Legal names come from
// declarative tables kept outside of the program.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"
)

// Category names a validation table.
type Category string

const (
	PseudoClasses      Category = "pseudo-classes"
	PseudoElements     Category = "pseudo-elements"
	PseudoFunctions    Category = "pseudo-functions"
	PseudoNthFunctions Category = "pseudo-nth-functions"
	Languages          Category = "languages"
	Countries          Category = "countries"
)

// Categories lists all tables the compiler may ask for.
var Categories = []Category{
	PseudoClasses, PseudoElements, PseudoFunctions, PseudoNthFunctions, Languages, Countries,
}

// Validator checks names against a category. A non nil error means the
// category data could not be obtained at all and is not recoverable.
type Validator interface {
	Validate(category Category, name string) (bool, error)
}

// ErrNotFound is wrapped by LoadError when no search path has the table.
var ErrNotFound = errors.New("validation table not found")

// LoadError reports failure to obtain a table.
type LoadError struct {
	Category Category
	Paths    []string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to load %q validation table (search paths: %s): %v",
		e.Category, strings.Join(e.Paths, string(os.PathListSeparator)), e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Tables loads "<category>.yaml" files from an ordered list of directories,
// the first directory with the file wins. Parsed tables are kept for the
// lifetime of the instance.
type Tables struct {
	log    *zap.Logger
	paths  []string
	loaded map[Category]map[string]struct{}
}

func NewTables(log *zap.Logger, paths ...string) *Tables {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tables{
		log:    log.Named("validation"),
		paths:  paths,
		loaded: make(map[Category]map[string]struct{}),
	}
}

// Paths returns search paths in lookup order.
func (t *Tables) Paths() []string {
	return t.paths
}

// Validate implements Validator. Names are case insensitive.
func (t *Tables) Validate(category Category, name string) (bool, error) {
	table, err := t.table(category)
	if err != nil {
		return false, err
	}
	_, ok := table[strings.ToLower(name)]
	return ok, nil
}

// Preload loads all known categories, useful to fail early.
func (t *Tables) Preload() error {
	var err error
	for _, c := range Categories {
		if _, e := t.table(c); e != nil {
			err = multierr.Append(err, e)
		}
	}
	return err
}

func (t *Tables) table(category Category) (map[string]struct{}, error) {
	if table, ok := t.loaded[category]; ok {
		return table, nil
	}

	fname := string(category) + ".yaml"
	for _, dir := range t.paths {
		path := filepath.Join(dir, fname)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, &LoadError{Category: category, Paths: t.paths, Err: err}
		}
		table, err := parseTable(data)
		if err != nil {
			return nil, &LoadError{Category: category, Paths: t.paths, Err: fmt.Errorf("%s: %w", path, err)}
		}
		t.log.Debug("Loaded validation table", zap.String("category", string(category)), zap.String("path", path), zap.Int("names", len(table)))
		t.loaded[category] = table
		return table, nil
	}
	return nil, &LoadError{Category: category, Paths: t.paths, Err: ErrNotFound}
}

// parseTable accepts either a sequence of names or a mapping keyed by names
// (values are descriptions and ignored).
func parseTable(data []byte) (map[string]struct{}, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode table: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errors.New("table must contain a single document")
	}

	root := doc.Content[0]
	table := make(map[string]struct{})
	switch root.Kind {
	case yaml.SequenceNode:
		for _, n := range root.Content {
			if n.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: table entry must be a name", n.Line)
			}
			table[strings.ToLower(n.Value)] = struct{}{}
		}
	case yaml.MappingNode:
		for i := 0; i < len(root.Content); i += 2 {
			table[strings.ToLower(root.Content[i].Value)] = struct{}{}
		}
	default:
		return nil, fmt.Errorf("line %d: table must be a sequence or a mapping", root.Line)
	}
	return table, nil
}

// Static is an in-memory Validator. Asking for a category it does not have
// behaves like a missing table.
type Static map[Category][]string

func (s Static) Validate(category Category, name string) (bool, error) {
	names, ok := s[category]
	if !ok {
		return false, &LoadError{Category: category, Err: ErrNotFound}
	}
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true, nil
		}
	}
	return false, nil
}
