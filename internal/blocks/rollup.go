package blocks

import "context"

// rollupTransformer fills the derived authored fields: graded rolls up
// bottom-up (a leaf reports its own flag, an interior block is graded when
// any basis descendant is), format is the block's own authored assignment
// type and is never inherited.
type rollupTransformer struct{}

func (t *rollupTransformer) Name() string { return "rollup" }

func (t *rollupTransformer) Transform(ctx context.Context, g *Graph, cfg Config) error {
	if len(g.Blocks) == 0 {
		return nil
	}

	if cfg.fieldRequested(FieldGraded) {
		graded := make(map[string]bool)
		g.foldBasis(func(b *Block, children []string) {
			if len(children) == 0 {
				graded[b.ID] = b.Authored.Graded
				return
			}
			for _, child := range children {
				if graded[child] {
					graded[b.ID] = true
					return
				}
			}
			graded[b.ID] = false
		})
		for id, b := range g.Blocks {
			b.Fields[FieldGraded] = graded[id]
		}
	}

	if cfg.fieldRequested(FieldFormat) {
		for _, b := range g.Blocks {
			if b.Authored.Format != "" {
				b.Fields[FieldFormat] = b.Authored.Format
			}
		}
	}
	return nil
}
