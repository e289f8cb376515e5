package blocks

import "context"

// depthNavTransformer applies the two truncations: structural depth prunes
// everything deeper than cfg.Depth, and navigational collapsing removes
// entries deeper than cfg.NavDepth while the block sitting at exactly that
// level keeps its children id list (ids only, no expansion). When the two
// conflict, structural depth wins. It also seals the aggregation basis so
// the later stages fold over the pre-truncation structure.
type depthNavTransformer struct{}

func (t *depthNavTransformer) Name() string { return "depth_nav" }

func (t *depthNavTransformer) Transform(ctx context.Context, g *Graph, cfg Config) error {
	g.SealBasis()
	if len(g.Blocks) == 0 {
		return nil
	}

	structural := -1
	if !cfg.DepthAll {
		structural = cfg.Depth
	}
	nav := cfg.NavDepth

	retain := structural
	if nav >= 0 && (retain < 0 || nav < retain) {
		retain = nav
	}
	if retain < 0 {
		return nil
	}

	// A boundary block keeps its children ids when the boundary is the nav
	// level (that level is navigable, only what is beneath collapses), or
	// when the client asked for children and needs the ids for linkage.
	navBoundary := nav >= 0 && (structural < 0 || nav <= structural)
	keepBoundaryChildren := navBoundary || cfg.fieldRequested(FieldChildren)

	levels := g.Levels()
	removed := make(map[string]struct{})
	saved := make(map[string][]string)
	for id, level := range levels {
		switch {
		case level > retain:
			removed[id] = struct{}{}
		case level == retain && keepBoundaryChildren:
			b := g.Blocks[id]
			children := make([]string, len(b.Children))
			copy(children, b.Children)
			saved[id] = children
		}
	}

	g.Prune(removed)
	for id, children := range saved {
		if b, ok := g.Blocks[id]; ok {
			b.Children = children
		}
	}
	return nil
}
