package repos

import (
	"context"

	redisclient "github.com/dthai91/edx-platform/internal/clients/redis"
	"github.com/dthai91/edx-platform/internal/platform/logger"
)

// cachedContentSource decorates a ContentSource with the redis graph
// cache. Cache failures degrade to the underlying store; not-found is
// never cached.
type cachedContentSource struct {
	inner ContentSource
	cache redisclient.GraphCache
	log   *logger.Logger
}

func NewCachedContentSource(inner ContentSource, cache redisclient.GraphCache, baseLog *logger.Logger) ContentSource {
	return &cachedContentSource{
		inner: inner,
		cache: cache,
		log:   baseLog.With("repo", "CachedContentSource"),
	}
}

func (cs *cachedContentSource) CourseTree(ctx context.Context, rootID string) (*CourseTree, error) {
	var cached CourseTree
	hit, err := cs.cache.Get(ctx, rootID, &cached)
	if err != nil {
		cs.log.Warn("graph cache read failed", "error", err, "root", rootID)
	} else if hit {
		return &cached, nil
	}

	tree, err := cs.inner.CourseTree(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if err := cs.cache.Set(ctx, rootID, tree); err != nil {
		cs.log.Warn("graph cache write failed", "error", err, "root", rootID)
	}
	return tree, nil
}
