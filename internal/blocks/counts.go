package blocks

import "context"

// countTransformer computes per-type descendant counts over the sealed
// access-filtered basis, so a truncated block still reports the subtree it
// summarizes. A block's count for type T is 1 if its own type is T, plus
// the sum of its basis children's counts. Attached to every surviving
// block when any count type was requested.
type countTransformer struct{}

func (t *countTransformer) Name() string { return "block_counts" }

func (t *countTransformer) Transform(ctx context.Context, g *Graph, cfg Config) error {
	if len(cfg.BlockCounts) == 0 || len(g.Blocks) == 0 {
		return nil
	}

	counts := make(map[string]map[string]int)
	g.foldBasis(func(b *Block, children []string) {
		own := make(map[string]int, len(cfg.BlockCounts))
		for blockType := range cfg.BlockCounts {
			n := 0
			if b.Type == blockType {
				n = 1
			}
			for _, child := range children {
				n += counts[child][blockType]
			}
			own[blockType] = n
		}
		counts[b.ID] = own
	})

	for id, b := range g.Blocks {
		b.Fields[FieldBlockCounts] = counts[id]
	}
	return nil
}
