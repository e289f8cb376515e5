package blocks

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// AccessDecision is the outcome of one user-block access check. Reason is
// diagnostic only and never serialized to the client.
type AccessDecision struct {
	Allowed bool
	Reason  string
}

// AccessChecker evaluates whether the requesting user may see a block. A
// checker is built per request with the user already bound, so HasAccess
// needs no identity argument. An error means required access metadata was
// unavailable, which fails the pipeline as a backend problem.
type AccessChecker interface {
	HasAccess(ctx context.Context, b *Block) (AccessDecision, error)
}

const accessCheckConcurrency = 8

// accessTransformer prunes blocks the user may not see. Checks run
// concurrently per block; pruning happens once after the join and ends
// with a reachability re-scan, so the result never depends on sibling
// evaluation order and a second run over a pruned graph is a no-op.
type accessTransformer struct {
	checker AccessChecker
}

func (t *accessTransformer) Name() string { return "access" }

func (t *accessTransformer) Transform(ctx context.Context, g *Graph, cfg Config) error {
	if len(g.Blocks) == 0 {
		return nil
	}

	var mu sync.Mutex
	denied := make(map[string]struct{})

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(accessCheckConcurrency)
	for id, b := range g.Blocks {
		id, b := id, b
		eg.Go(func() error {
			decision, err := t.checker.HasAccess(egCtx, b)
			if err != nil {
				return fmt.Errorf("access check for block %q: %w", id, err)
			}
			if !decision.Allowed {
				mu.Lock()
				denied[id] = struct{}{}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	g.Prune(denied)
	return nil
}
