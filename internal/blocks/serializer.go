package blocks

// Record is one serialized block. id, type and display_name are always
// present; everything else is gated by the request.
type Record map[string]any

// Serialize walks the final graph and emits the shape the return_type
// asks for: a keyed mapping of every surviving block, or a flat pre-order
// list.
func Serialize(g *Graph, cfg Config) any {
	if cfg.ReturnType == ReturnTypeList {
		return SerializeList(g, cfg)
	}
	return SerializeDict(g, cfg)
}

func SerializeDict(g *Graph, cfg Config) map[string]any {
	records := make(map[string]Record, len(g.Blocks))
	for id, b := range g.Blocks {
		records[id] = makeRecord(b, cfg)
	}
	return map[string]any{
		"root":   g.Root,
		"blocks": records,
	}
}

// SerializeList flattens the DAG into pre-order with children in authored
// order, using an explicit stack rather than recursion so stack depth
// stays bounded on large courses. A block reachable through several
// parents appears once, at its first-visited position.
func SerializeList(g *Graph, cfg Config) []Record {
	out := make([]Record, 0, len(g.Blocks))
	if _, ok := g.Blocks[g.Root]; !ok {
		return out
	}

	visited := make(map[string]struct{}, len(g.Blocks))
	stack := []string{g.Root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		b := g.Blocks[id]
		out = append(out, makeRecord(b, cfg))

		// Children ids retained at a collapse boundary may have no record;
		// they are listed, not traversed.
		for i := len(b.Children) - 1; i >= 0; i-- {
			child := b.Children[i]
			if _, ok := g.Blocks[child]; ok {
				stack = append(stack, child)
			}
		}
	}
	return out
}

func makeRecord(b *Block, cfg Config) Record {
	rec := Record{
		"id":           b.ID,
		"type":         b.Type,
		"display_name": b.DisplayName,
	}
	if cfg.fieldRequested(FieldChildren) && len(b.Children) > 0 {
		children := make([]string, len(b.Children))
		copy(children, b.Children)
		rec[FieldChildren] = children
	}
	for name, value := range b.Fields {
		if cfg.fieldRequested(name) {
			rec[name] = value
		}
	}
	return rec
}
