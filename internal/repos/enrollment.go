package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dthai91/edx-platform/internal/platform/logger"
	"github.com/dthai91/edx-platform/internal/types"
)

type EnrollmentRepo interface {
	IsEnrolled(ctx context.Context, userID uuid.UUID, courseID string) (bool, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (er *enrollmentRepo) IsEnrolled(ctx context.Context, userID uuid.UUID, courseID string) (bool, error) {
	var count int64
	if err := er.db.WithContext(ctx).
		Model(&types.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND active", userID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
