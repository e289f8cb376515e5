package blocks

import (
	"context"
	"fmt"

	"github.com/dthai91/edx-platform/internal/platform/logger"
)

// Transformer is one stage of the pipeline. Stages mutate the graph in
// place; an error aborts the whole pipeline and no partial structure is
// ever returned.
type Transformer interface {
	Name() string
	Transform(ctx context.Context, g *Graph, cfg Config) error
}

// Pipeline executes the closed, fixed-order transformer chain. Later
// stages fold over the pruned state left by earlier ones, so the order is
// part of the contract: access pruning, depth/nav shaping, count
// aggregation, graded/format roll-up, view-data injection.
type Pipeline struct {
	log    *logger.Logger
	stages []Transformer
}

func NewPipeline(baseLog *logger.Logger, checker AccessChecker, renderer ViewRenderer) *Pipeline {
	return &Pipeline{
		log: baseLog.With("component", "BlockPipeline"),
		stages: []Transformer{
			&accessTransformer{checker: checker},
			&depthNavTransformer{},
			&countTransformer{},
			&rollupTransformer{},
			&viewDataTransformer{renderer: renderer},
		},
	}
}

func (p *Pipeline) Run(ctx context.Context, g *Graph, cfg Config) error {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := stage.Transform(ctx, g, cfg); err != nil {
			return fmt.Errorf("%s transformer: %w", stage.Name(), err)
		}
		p.log.Debug("transformer applied", "stage", stage.Name(), "blocks", len(g.Blocks))
	}
	return nil
}
