// Package compile runs style sheets through the whole chain: charset
// decoding, parsing, compilation and assembly.
package compile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"csspc/assembler"
	"csspc/compiler"
	"csspc/css"
	"csspc/diag"
	"csspc/node"
	"csspc/validation"
)

// Pipeline holds configured stages for one invocation. Variables defined by
// a style sheet stay visible to the following ones.
type Pipeline struct {
	log  *zap.Logger
	rpt  *diag.Reporter
	prs  *css.Parser
	cmp  *compiler.Compiler
	asm  *assembler.Assembler
	mode assembler.Mode
}

func NewPipeline(log *zap.Logger, rpt *diag.Reporter, validator validation.Validator, mode assembler.Mode, precision int) *Pipeline {
	return &Pipeline{
		log:  log,
		rpt:  rpt,
		prs:  css.NewParser(log),
		cmp:  compiler.New(log, rpt, validator, nil),
		asm:  assembler.New(log, assembler.WithPrecision(precision)),
		mode: mode,
	}
}

// Tree returns compiled tree of a style sheet. Input errors are left in the
// reporter, returned error means the run cannot continue.
func (p *Pipeline) Tree(ctx context.Context, data []byte, source string) (*node.Node, error) {
	utf, err := css.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s: %w", source, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := p.prs.Parse(utf, source)
	if err != nil {
		return nil, fmt.Errorf("unable to parse style sheet: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.cmp.Compile(root); err != nil {
		return nil, fmt.Errorf("unable to compile style sheet: %w", err)
	}
	return root, nil
}

// Run compiles style sheet and assembles the result. When any error was
// reported no output is produced.
func (p *Pipeline) Run(ctx context.Context, data []byte, source string) (string, error) {
	before := p.rpt.ErrorCount()
	root, err := p.Tree(ctx, data, source)
	if err != nil {
		return "", err
	}
	if n := p.rpt.ErrorCount() - before; n > 0 {
		return "", fmt.Errorf("%s has %d error(s)", source, n)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out := p.asm.Output(root, p.mode)
	p.log.Debug("Style sheet processed", zap.String("source", source), zap.Stringer("mode", p.mode), zap.Int("warnings", p.rpt.WarningCount()))
	return out, nil
}
