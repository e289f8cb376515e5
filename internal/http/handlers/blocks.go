package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dthai91/edx-platform/internal/blocks"
	"github.com/dthai91/edx-platform/internal/http/response"
	"github.com/dthai91/edx-platform/internal/platform/ctxutil"
	"github.com/dthai91/edx-platform/internal/platform/logger"
	"github.com/dthai91/edx-platform/internal/services"
)

type BlocksHandler struct {
	log           *logger.Logger
	blocksService services.BlocksService
}

func NewBlocksHandler(log *logger.Logger, blocksService services.BlocksService) *BlocksHandler {
	return &BlocksHandler{
		log:           log.With("handler", "BlocksHandler"),
		blocksService: blocksService,
	}
}

// GetBlocks serves GET /api/courses/v1/blocks/:usage_key. It returns the
// course blocks under the given root, filtered by the requesting user's
// access and shaped by depth, nav_depth, requested_fields, block_counts,
// student_view_data and return_type. Course staff may pass user= to view
// the blocks as another user sees them.
func (h *BlocksHandler) GetBlocks(c *gin.Context) {
	viewer := blocks.Viewer{Anonymous: true}
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && !rd.Anonymous {
		viewer = blocks.Viewer{ID: rd.UserID, Username: rd.Username}
	}

	raw := blocks.RawQuery{
		UsageKey:        c.Param("usage_key"),
		User:            c.QueryArray("user"),
		Depth:           c.QueryArray("depth"),
		NavDepth:        c.QueryArray("nav_depth"),
		BlockCounts:     c.QueryArray("block_counts"),
		StudentViewData: c.QueryArray("student_view_data"),
		RequestedFields: c.QueryArray("requested_fields"),
		ReturnType:      c.QueryArray("return_type"),
	}
	cfg, err := blocks.Resolve(raw, viewer)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}

	payload, err := h.blocksService.GetBlocks(c.Request.Context(), raw.UsageKey, cfg)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, payload)
}
