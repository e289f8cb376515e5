package blocks

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle is returned when the content graph is not acyclic. Authored
// content is trusted to be a DAG; a cycle means upstream data corruption
// and the build fails closed instead of looping.
var ErrCycle = errors.New("cycle detected in course content graph")

// Graph is the working block structure for one request. It is built fresh
// per request, mutated in place by the transformer pipeline, and discarded
// after serialization. It is never shared across requests.
type Graph struct {
	Root     string
	CourseID string
	Blocks   map[string]*Block

	// topo is a topological order (root first) over the blocks as built,
	// before any pruning. Any later subset of the graph shares its edges
	// with the built graph, so a restriction of this order stays valid.
	topo []string

	// basis freezes the access-filtered structure before depth truncation
	// and nav collapsing, so aggregations can fold over the full subtree a
	// truncated block still has to summarize.
	basisBlocks   map[string]*Block
	basisChildren map[string][]string
}

// Build assembles a Graph from raw content rows, restricted to the blocks
// reachable from root, and verifies acyclicity.
func Build(root, courseID string, srcBlocks []SourceBlock, srcEdges []SourceEdge) (*Graph, error) {
	all := make(map[string]*Block, len(srcBlocks))
	for _, sb := range srcBlocks {
		all[sb.ID] = &Block{
			ID:          sb.ID,
			Type:        sb.Type,
			DisplayName: sb.DisplayName,
			Authored:    sb.Authored,
			Parents:     make(map[string]struct{}),
			Fields:      make(map[string]any),
		}
	}
	if _, ok := all[root]; !ok {
		return nil, fmt.Errorf("root block %q missing from content rows", root)
	}

	byParent := make(map[string][]SourceEdge)
	for _, e := range srcEdges {
		if _, ok := all[e.Parent]; !ok {
			return nil, fmt.Errorf("edge references unknown parent block %q", e.Parent)
		}
		if _, ok := all[e.Child]; !ok {
			return nil, fmt.Errorf("edge references unknown child block %q", e.Child)
		}
		byParent[e.Parent] = append(byParent[e.Parent], e)
	}
	for parent, edges := range byParent {
		sort.SliceStable(edges, func(i, j int) bool { return edges[i].Ordinal < edges[j].Ordinal })
		b := all[parent]
		b.Children = make([]string, 0, len(edges))
		for _, e := range edges {
			b.Children = append(b.Children, e.Child)
		}
	}

	// Restrict to the subtree reachable from root; content rows for the
	// rest of the course are normal when root is an inner block.
	reachable := make(map[string]*Block)
	queue := []string{root}
	reachable[root] = all[root]
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range all[id].Children {
			if _, seen := reachable[child]; seen {
				continue
			}
			reachable[child] = all[child]
			queue = append(queue, child)
		}
	}
	for id, b := range reachable {
		kept := b.Children[:0]
		for _, child := range b.Children {
			if _, ok := reachable[child]; ok {
				kept = append(kept, child)
				reachable[child].Parents[id] = struct{}{}
			}
		}
		b.Children = kept
	}

	g := &Graph{Root: root, CourseID: courseID, Blocks: reachable}
	topo, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	g.topo = topo
	return g, nil
}

// topoSort runs Kahn's algorithm over the current membership. Fewer sorted
// ids than blocks means a cycle.
func (g *Graph) topoSort() ([]string, error) {
	indegree := make(map[string]int, len(g.Blocks))
	for id := range g.Blocks {
		indegree[id] = 0
	}
	for _, b := range g.Blocks {
		for _, child := range b.Children {
			indegree[child]++
		}
	}
	var frontier []string
	for id, d := range indegree {
		if d == 0 {
			frontier = append(frontier, id)
		}
	}
	sort.Strings(frontier)

	order := make([]string, 0, len(g.Blocks))
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		order = append(order, id)
		for _, child := range g.Blocks[id].Children {
			indegree[child]--
			if indegree[child] == 0 {
				frontier = append(frontier, child)
			}
		}
	}
	if len(order) != len(g.Blocks) {
		return nil, ErrCycle
	}
	return order, nil
}

// Levels returns each surviving block's depth below root, computed as BFS
// shortest distance. A block shared by multiple parents takes the
// shallowest path.
func (g *Graph) Levels() map[string]int {
	levels := make(map[string]int, len(g.Blocks))
	if _, ok := g.Blocks[g.Root]; !ok {
		return levels
	}
	levels[g.Root] = 0
	queue := []string{g.Root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range g.Blocks[id].Children {
			if _, ok := g.Blocks[child]; !ok {
				continue
			}
			if _, seen := levels[child]; seen {
				continue
			}
			levels[child] = levels[id] + 1
			queue = append(queue, child)
		}
	}
	return levels
}

// Prune removes the given blocks, then re-scans reachability from root so
// descendants that only existed under a removed block go too. Children and
// parent sets are rebuilt against the surviving membership, keeping the
// no-dangling invariant. Removing the root empties the graph.
func (g *Graph) Prune(removed map[string]struct{}) {
	if len(removed) == 0 {
		return
	}
	for id := range removed {
		delete(g.Blocks, id)
	}
	if _, ok := g.Blocks[g.Root]; !ok {
		g.Blocks = make(map[string]*Block)
		return
	}

	reachable := map[string]struct{}{g.Root: {}}
	queue := []string{g.Root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range g.Blocks[id].Children {
			if _, ok := g.Blocks[child]; !ok {
				continue
			}
			if _, seen := reachable[child]; seen {
				continue
			}
			reachable[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	for id := range g.Blocks {
		if _, ok := reachable[id]; !ok {
			delete(g.Blocks, id)
		}
	}
	for _, b := range g.Blocks {
		kept := b.Children[:0]
		for _, child := range b.Children {
			if _, ok := g.Blocks[child]; ok {
				kept = append(kept, child)
			}
		}
		b.Children = kept
		for parent := range b.Parents {
			if _, ok := g.Blocks[parent]; !ok {
				delete(b.Parents, parent)
			}
		}
	}
}

// SealBasis snapshots the current membership and adjacency as the
// aggregation basis. Called once, after access pruning and before depth
// truncation; later calls are no-ops.
func (g *Graph) SealBasis() {
	if g.basisBlocks != nil {
		return
	}
	g.basisBlocks = make(map[string]*Block, len(g.Blocks))
	g.basisChildren = make(map[string][]string, len(g.Blocks))
	for id, b := range g.Blocks {
		g.basisBlocks[id] = b
		children := make([]string, len(b.Children))
		copy(children, b.Children)
		g.basisChildren[id] = children
	}
}

// foldBasis visits every basis block in reverse topological order (children
// before parents), the iterative replacement for a recursive post-order
// walk. visit receives the block and its basis children ids.
func (g *Graph) foldBasis(visit func(b *Block, children []string)) {
	if g.basisBlocks == nil {
		g.SealBasis()
	}
	for i := len(g.topo) - 1; i >= 0; i-- {
		id := g.topo[i]
		b, ok := g.basisBlocks[id]
		if !ok {
			continue
		}
		visit(b, g.basisChildren[id])
	}
}
