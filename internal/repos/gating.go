package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dthai91/edx-platform/internal/platform/logger"
	"github.com/dthai91/edx-platform/internal/types"
)

type GatingRepo interface {
	// UnlockedGroups returns the gating groups the user has satisfied for
	// one course. Loaded once per request by the access checker.
	UnlockedGroups(ctx context.Context, userID uuid.UUID, courseID string) (map[string]struct{}, error)
}

type gatingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGatingRepo(db *gorm.DB, baseLog *logger.Logger) GatingRepo {
	return &gatingRepo{db: db, log: baseLog.With("repo", "GatingRepo")}
}

func (gr *gatingRepo) UnlockedGroups(ctx context.Context, userID uuid.UUID, courseID string) (map[string]struct{}, error) {
	var groups []string
	if err := gr.db.WithContext(ctx).
		Model(&types.GatingMembership{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Pluck("gating_group", &groups).Error; err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		out[g] = struct{}{}
	}
	return out, nil
}
