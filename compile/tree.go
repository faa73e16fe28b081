package compile

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/repr"
	cli "github.com/urfave/cli/v3"

	"csspc/diag"
	"csspc/node"
	"csspc/state"
	"csspc/validation"
)

// treeNode mirrors node.Node with exported fields for printing.
type treeNode struct {
	Node      string
	At        string
	Important bool
	Children  []treeNode
}

func mirror(n *node.Node) treeNode {
	t := treeNode{
		Node:      fmt.Sprintf("%#v", n),
		At:        n.Pos().String(),
		Important: n.Flag(node.FlagImportant),
	}
	for _, c := range n.Children() {
		t.Children = append(t.Children, mirror(c))
	}
	return t
}

// Dump returns printable representation of a tree.
func Dump(root *node.Node) string {
	return repr.String(mirror(root), repr.Indent("  "), repr.OmitEmpty(true))
}

// Tree is the tree subcommand, it prints compiled tree of SOURCE.
func Tree(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("tree")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read source: %w", err)
	}

	env.IncludePaths = cmd.StringSlice("include")
	rpt := diag.NewReporter(log, diag.WithDebug(env.DebugDiagnostics()))
	tables := validation.NewTables(log, env.ValidationPaths()...)
	root, err := NewPipeline(log, rpt, tables, env.OutputMode(), env.Cfg.Compiler.Precision).Tree(ctx, data, src)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, Dump(root))
	return err
}
