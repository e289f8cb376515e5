package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dthai91/edx-platform/internal/blocks"
	"github.com/dthai91/edx-platform/internal/platform/apierr"
	"github.com/dthai91/edx-platform/internal/platform/logger"
	"github.com/dthai91/edx-platform/internal/repos"
	"github.com/dthai91/edx-platform/internal/types"
)

type stubContentSource struct {
	tree *repos.CourseTree
	err  error
}

func (s stubContentSource) CourseTree(ctx context.Context, rootID string) (*repos.CourseTree, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tree, nil
}

// slowContentSource blocks until the request deadline expires.
type slowContentSource struct{}

func (slowContentSource) CourseTree(ctx context.Context, rootID string) (*repos.CourseTree, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func demoTree() *repos.CourseTree {
	return &repos.CourseTree{
		CourseID: "course-1",
		Blocks: []blocks.SourceBlock{
			{ID: "course-block", Type: "course", DisplayName: "Demo Course"},
			{ID: "chapter1", Type: "chapter", DisplayName: "Chapter 1"},
			{ID: "seq1", Type: "video", DisplayName: "A Video"},
			{ID: "seq2", Type: "problem", DisplayName: "A Problem"},
		},
		Edges: []blocks.SourceEdge{
			{Parent: "course-block", Child: "chapter1", Ordinal: 0},
			{Parent: "chapter1", Child: "seq1", Ordinal: 0},
			{Parent: "chapter1", Child: "seq2", Ordinal: 1},
		},
	}
}

type fakeUserRepo struct{ users map[string]*types.User }

func (f fakeUserRepo) ByUsername(ctx context.Context, username string) (*types.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, apierr.NotFound("user_not_found", errors.New("user does not exist"))
}

func newTestBlocksService(content repos.ContentSource, access AccessService) BlocksService {
	render := NewRenderService(logger.NewNop(), "http://lms")
	return NewBlocksService(logger.NewNop(), content, access, render,
		fakeUserRepo{}, fakeStaffRepo{}, 2*time.Second)
}

func resolveConfig(t *testing.T, q blocks.RawQuery) blocks.Config {
	t.Helper()
	cfg, err := blocks.Resolve(q, blocks.Viewer{ID: uuid.New()})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return cfg
}

func TestGetBlocks_ListModeWithCounts(t *testing.T) {
	svc := newTestBlocksService(stubContentSource{tree: demoTree()}, newTestAccessService(true, false, nil))
	cfg := resolveConfig(t, blocks.RawQuery{
		UsageKey:    "course-block",
		Depth:       []string{"all"},
		BlockCounts: []string{"video,problem"},
		ReturnType:  []string{"list"},
	})

	out, err := svc.GetBlocks(context.Background(), "course-block", cfg)
	if err != nil {
		t.Fatalf("get blocks: %v", err)
	}
	records, ok := out.([]blocks.Record)
	if !ok {
		t.Fatalf("expected a list, got %T", out)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if records[0]["id"] != "course-block" {
		t.Fatalf("list must start at root, got %v", records[0]["id"])
	}
	counts := records[0][blocks.FieldBlockCounts].(map[string]int)
	if counts["video"] != 1 || counts["problem"] != 1 {
		t.Fatalf("unexpected root counts: %v", counts)
	}
}

func TestGetBlocks_DictModeDefault(t *testing.T) {
	svc := newTestBlocksService(stubContentSource{tree: demoTree()}, newTestAccessService(true, false, nil))
	cfg := resolveConfig(t, blocks.RawQuery{UsageKey: "course-block"})

	out, err := svc.GetBlocks(context.Background(), "course-block", cfg)
	if err != nil {
		t.Fatalf("get blocks: %v", err)
	}
	payload, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected a dict, got %T", out)
	}
	if payload["root"] != "course-block" {
		t.Fatalf("unexpected root: %v", payload["root"])
	}
	records := payload["blocks"].(map[string]blocks.Record)
	if len(records) != 1 {
		t.Fatalf("depth=0 must return only the root, got %d records", len(records))
	}
}

func TestGetBlocks_NotFoundPassesThrough(t *testing.T) {
	notFound := apierr.NotFound("block_not_found", errors.New("block does not exist"))
	svc := newTestBlocksService(stubContentSource{err: notFound}, newTestAccessService(true, false, nil))
	cfg := resolveConfig(t, blocks.RawQuery{UsageKey: "missing"})

	_, err := svc.GetBlocks(context.Background(), "missing", cfg)
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Kind != apierr.KindNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestGetBlocks_InaccessibleRootIsForbidden(t *testing.T) {
	// user exists but is not enrolled, so the access stage prunes the root
	svc := newTestBlocksService(stubContentSource{tree: demoTree()}, newTestAccessService(false, false, nil))
	cfg := resolveConfig(t, blocks.RawQuery{UsageKey: "course-block"})

	_, err := svc.GetBlocks(context.Background(), "course-block", cfg)
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Kind != apierr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetBlocks_CycleIsBackendError(t *testing.T) {
	tree := demoTree()
	tree.Edges = append(tree.Edges, blocks.SourceEdge{Parent: "seq1", Child: "course-block", Ordinal: 0})
	svc := newTestBlocksService(stubContentSource{tree: tree}, newTestAccessService(true, false, nil))
	cfg := resolveConfig(t, blocks.RawQuery{UsageKey: "course-block"})

	_, err := svc.GetBlocks(context.Background(), "course-block", cfg)
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Kind != apierr.KindBackend {
		t.Fatalf("expected backend error, got %v", err)
	}
	if !errors.Is(err, blocks.ErrCycle) {
		t.Fatalf("expected cycle cause, got %v", err)
	}
}

func TestGetBlocks_DeadlineSurfacesAsTimeout(t *testing.T) {
	render := NewRenderService(logger.NewNop(), "http://lms")
	svc := NewBlocksService(logger.NewNop(), slowContentSource{}, newTestAccessService(true, false, nil), render,
		fakeUserRepo{}, fakeStaffRepo{}, 20*time.Millisecond)
	cfg := resolveConfig(t, blocks.RawQuery{UsageKey: "course-block"})

	_, err := svc.GetBlocks(context.Background(), "course-block", cfg)
	var ae *apierr.Error
	if !errors.As(err, &ae) || !ae.Timeout {
		t.Fatalf("expected backend timeout, got %v", err)
	}
}

// viewerRecordingAccess captures the viewer the access stage is built for.
type viewerRecordingAccess struct {
	inner AccessService
	seen  *blocks.Viewer
}

func (a viewerRecordingAccess) CheckerFor(ctx context.Context, viewer blocks.Viewer, courseID string) (blocks.AccessChecker, error) {
	*a.seen = viewer
	return a.inner.CheckerFor(ctx, viewer, courseID)
}

func TestGetBlocks_StaffQueriesAsAnotherUser(t *testing.T) {
	learner := &types.User{ID: uuid.New(), Username: "learner"}
	var seen blocks.Viewer
	access := viewerRecordingAccess{inner: newTestAccessService(true, false, nil), seen: &seen}
	render := NewRenderService(logger.NewNop(), "http://lms")
	svc := NewBlocksService(logger.NewNop(), stubContentSource{tree: demoTree()}, access, render,
		fakeUserRepo{users: map[string]*types.User{"learner": learner}},
		fakeStaffRepo{staff: true}, 2*time.Second)

	cfg, err := blocks.Resolve(
		blocks.RawQuery{UsageKey: "course-block", User: []string{"learner"}},
		blocks.Viewer{ID: uuid.New(), Username: "staffer"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := svc.GetBlocks(context.Background(), "course-block", cfg); err != nil {
		t.Fatalf("get blocks: %v", err)
	}
	if seen.ID != learner.ID || seen.Username != "learner" {
		t.Fatalf("access checks must run as the requested user, got %+v", seen)
	}
}

func TestGetBlocks_UserOverrideRequiresStaff(t *testing.T) {
	svc := newTestBlocksService(stubContentSource{tree: demoTree()}, newTestAccessService(true, false, nil))
	cfg, err := blocks.Resolve(
		blocks.RawQuery{UsageKey: "course-block", User: []string{"someone-else"}},
		blocks.Viewer{ID: uuid.New(), Username: "learner"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	_, err = svc.GetBlocks(context.Background(), "course-block", cfg)
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Kind != apierr.KindForbidden || ae.Code != "user_forbidden" {
		t.Fatalf("expected user_forbidden, got %v", err)
	}
}

func TestGetBlocks_UserOverrideUnknownUserIsNotFound(t *testing.T) {
	render := NewRenderService(logger.NewNop(), "http://lms")
	svc := NewBlocksService(logger.NewNop(), stubContentSource{tree: demoTree()},
		newTestAccessService(true, true, nil), render,
		fakeUserRepo{}, fakeStaffRepo{staff: true}, 2*time.Second)
	cfg, err := blocks.Resolve(
		blocks.RawQuery{UsageKey: "course-block", User: []string{"ghost"}},
		blocks.Viewer{ID: uuid.New(), Username: "staffer"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	_, err = svc.GetBlocks(context.Background(), "course-block", cfg)
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Kind != apierr.KindNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestGetBlocks_UserOverrideSelfNeedsNoRole(t *testing.T) {
	svc := newTestBlocksService(stubContentSource{tree: demoTree()}, newTestAccessService(true, false, nil))
	cfg, err := blocks.Resolve(
		blocks.RawQuery{UsageKey: "course-block", User: []string{"learner"}},
		blocks.Viewer{ID: uuid.New(), Username: "learner"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if _, err := svc.GetBlocks(context.Background(), "course-block", cfg); err != nil {
		t.Fatalf("querying as yourself must not require staff: %v", err)
	}
}
