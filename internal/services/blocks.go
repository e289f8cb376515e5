package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dthai91/edx-platform/internal/blocks"
	"github.com/dthai91/edx-platform/internal/platform/apierr"
	"github.com/dthai91/edx-platform/internal/platform/logger"
	"github.com/dthai91/edx-platform/internal/repos"
)

// BlocksService runs one blocks query end to end: load the raw course
// tree for the root, build the graph, run the transformer pipeline under
// the request deadline, and serialize per the resolved configuration.
type BlocksService interface {
	GetBlocks(ctx context.Context, usageKey string, cfg blocks.Config) (any, error)
}

type blocksService struct {
	log     *logger.Logger
	content repos.ContentSource
	access  AccessService
	render  RenderService
	users   repos.UserRepo
	staff   repos.StaffRepo
	timeout time.Duration
}

func NewBlocksService(
	baseLog *logger.Logger,
	content repos.ContentSource,
	access AccessService,
	render RenderService,
	users repos.UserRepo,
	staff repos.StaffRepo,
	timeout time.Duration,
) BlocksService {
	return &blocksService{
		log:     baseLog.With("service", "BlocksService"),
		content: content,
		access:  access,
		render:  render,
		users:   users,
		staff:   staff,
		timeout: timeout,
	}
}

func (bs *blocksService) GetBlocks(ctx context.Context, usageKey string, cfg blocks.Config) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, bs.timeout)
	defer cancel()

	tree, err := bs.content.CourseTree(ctx, usageKey)
	if err != nil {
		return nil, bs.classify(err, "load course tree")
	}

	graph, err := blocks.Build(usageKey, tree.CourseID, tree.Blocks, tree.Edges)
	if err != nil {
		bs.log.Error("graph build failed", "error", err, "root", usageKey)
		return nil, apierr.Backend("graph_build_failed", err)
	}

	viewer, err := bs.effectiveViewer(ctx, cfg, tree.CourseID)
	if err != nil {
		return nil, bs.classify(err, "resolve requested user")
	}
	cfg.Viewer = viewer

	checker, err := bs.access.CheckerFor(ctx, cfg.Viewer, tree.CourseID)
	if err != nil {
		return nil, bs.classify(err, "build access checker")
	}

	pipeline := blocks.NewPipeline(bs.log, checker, bs.render)
	if err := pipeline.Run(ctx, graph, cfg); err != nil {
		return nil, bs.classify(err, "run pipeline")
	}

	if _, ok := graph.Blocks[graph.Root]; !ok {
		return nil, apierr.Forbidden("block_forbidden",
			fmt.Errorf("block %q is not accessible to the requesting user", usageKey))
	}

	return blocks.Serialize(graph, cfg), nil
}

// effectiveViewer applies the user= override: course staff may run the
// query as another user, everyone else only as themselves.
func (bs *blocksService) effectiveViewer(ctx context.Context, cfg blocks.Config, courseID string) (blocks.Viewer, error) {
	requested := cfg.RequestedUser
	if requested == "" || requested == cfg.Viewer.Username {
		return cfg.Viewer, nil
	}
	if cfg.Viewer.Anonymous {
		return blocks.Viewer{}, apierr.Forbidden("user_forbidden",
			fmt.Errorf("anonymous users may not query as %q", requested))
	}
	staff, err := bs.staff.IsStaff(ctx, cfg.Viewer.ID, courseID)
	if err != nil {
		return blocks.Viewer{}, fmt.Errorf("load staff role: %w", err)
	}
	if !staff {
		return blocks.Viewer{}, apierr.Forbidden("user_forbidden",
			fmt.Errorf("only course staff may query as another user"))
	}
	target, err := bs.users.ByUsername(ctx, requested)
	if err != nil {
		return blocks.Viewer{}, err
	}
	return blocks.Viewer{ID: target.ID, Username: target.Username}, nil
}

// classify keeps not-found and forbidden outcomes intact, maps deadline
// expiry to a backend timeout, and wraps everything else as an opaque
// backend failure with the detail kept in the logs.
func (bs *blocksService) classify(err error, op string) error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) {
		bs.log.Error("blocks request timed out", "op", op, "error", err)
		return apierr.BackendTimeout(err)
	}
	bs.log.Error("blocks request failed", "op", op, "error", err)
	return apierr.Backend("blocks_request_failed", fmt.Errorf("%s: %w", op, err))
}
