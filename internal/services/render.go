package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dthai91/edx-platform/internal/blocks"
	"github.com/dthai91/edx-platform/internal/platform/logger"
)

// RenderService implements the pipeline's view-render collaborator. The
// student-view payload comes from the block's authored content; the two
// URLs are derived, never stored.
type RenderService interface {
	blocks.ViewRenderer
}

type renderService struct {
	log     *logger.Logger
	lmsBase string
}

func NewRenderService(baseLog *logger.Logger, lmsBase string) RenderService {
	return &renderService{
		log:     baseLog.With("service", "RenderService"),
		lmsBase: lmsBase,
	}
}

func (rs *renderService) StudentViewData(ctx context.Context, b *blocks.Block) (map[string]any, error) {
	if b.Authored.StudentViewData == nil {
		return nil, nil
	}
	return b.Authored.StudentViewData, nil
}

func (rs *renderService) StudentViewURL(b *blocks.Block) string {
	return fmt.Sprintf("%s/xblock/%s", rs.lmsBase, url.PathEscape(b.ID))
}

func (rs *renderService) LMSWebURL(courseID string, b *blocks.Block) string {
	return fmt.Sprintf("%s/courses/%s/jump_to/%s",
		rs.lmsBase, url.PathEscape(courseID), url.PathEscape(b.ID))
}
