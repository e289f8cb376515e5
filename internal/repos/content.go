package repos

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/dthai91/edx-platform/internal/blocks"
	"github.com/dthai91/edx-platform/internal/platform/apierr"
	"github.com/dthai91/edx-platform/internal/platform/logger"
	"github.com/dthai91/edx-platform/internal/types"
)

// CourseTree is the raw content rows for the course a root block belongs
// to, as loaded from the backing store. Read-only for the request.
type CourseTree struct {
	CourseID string               `json:"course_id"`
	Blocks   []blocks.SourceBlock `json:"blocks"`
	Edges    []blocks.SourceEdge  `json:"edges"`
}

// ContentSource resolves a root block id to its course's raw graph. A
// missing root yields a not-found api error, distinct from backend
// failures.
type ContentSource interface {
	CourseTree(ctx context.Context, rootID string) (*CourseTree, error)
}

const blockLoadBatchSize = 500

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentSource {
	return &contentRepo{db: db, log: baseLog.With("repo", "ContentRepo")}
}

func (cr *contentRepo) CourseTree(ctx context.Context, rootID string) (*CourseTree, error) {
	var root types.CourseBlock
	if err := cr.db.WithContext(ctx).
		Select("usage_key", "course_id").
		Where("usage_key = ?", rootID).
		First(&root).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("block_not_found", fmt.Errorf("block %q does not exist", rootID))
		}
		return nil, fmt.Errorf("load root block: %w", err)
	}

	var edges []types.CourseBlockEdge
	if err := cr.db.WithContext(ctx).
		Where("course_id = ?", root.CourseID).
		Order("parent_key, ordinal").
		Find(&edges).Error; err != nil {
		return nil, fmt.Errorf("load course edges: %w", err)
	}

	var keys []string
	if err := cr.db.WithContext(ctx).
		Model(&types.CourseBlock{}).
		Where("course_id = ?", root.CourseID).
		Order("usage_key").
		Pluck("usage_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("load course block keys: %w", err)
	}

	// Block rows are read-only during a request, so batches load in
	// parallel and only the append is serialized.
	var mu sync.Mutex
	rows := make([]types.CourseBlock, 0, len(keys))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for start := 0; start < len(keys); start += blockLoadBatchSize {
		end := min(start+blockLoadBatchSize, len(keys))
		batch := keys[start:end]
		eg.Go(func() error {
			var part []types.CourseBlock
			if err := cr.db.WithContext(egCtx).
				Where("usage_key IN ?", batch).
				Find(&part).Error; err != nil {
				return fmt.Errorf("load block batch: %w", err)
			}
			mu.Lock()
			rows = append(rows, part...)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	tree := &CourseTree{CourseID: root.CourseID}
	tree.Blocks = make([]blocks.SourceBlock, 0, len(rows))
	for _, row := range rows {
		tree.Blocks = append(tree.Blocks, sourceBlockFromRow(row))
	}
	tree.Edges = make([]blocks.SourceEdge, 0, len(edges))
	for _, e := range edges {
		tree.Edges = append(tree.Edges, blocks.SourceEdge{
			Parent:  e.ParentKey,
			Child:   e.ChildKey,
			Ordinal: e.Ordinal,
		})
	}
	return tree, nil
}

func sourceBlockFromRow(row types.CourseBlock) blocks.SourceBlock {
	return blocks.SourceBlock{
		ID:          row.UsageKey,
		Type:        row.BlockType,
		DisplayName: row.DisplayName,
		Authored: blocks.AuthoredFields{
			Graded:          row.Graded,
			Format:          row.Format,
			ReleaseAt:       row.ReleaseAt,
			StaffOnly:       row.StaffOnly,
			GatingGroup:     row.GatingGroup,
			MultiDevice:     row.MultiDevice,
			StudentViewData: row.StudentViewData,
		},
	}
}
