package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dthai91/edx-platform/internal/platform/logger"
	"github.com/dthai91/edx-platform/internal/types"
)

type StaffRepo interface {
	IsStaff(ctx context.Context, userID uuid.UUID, courseID string) (bool, error)
}

type staffRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStaffRepo(db *gorm.DB, baseLog *logger.Logger) StaffRepo {
	return &staffRepo{db: db, log: baseLog.With("repo", "StaffRepo")}
}

func (sr *staffRepo) IsStaff(ctx context.Context, userID uuid.UUID, courseID string) (bool, error) {
	var count int64
	if err := sr.db.WithContext(ctx).
		Model(&types.CourseStaff{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
