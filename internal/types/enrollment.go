package types

import (
	"time"

	"github.com/google/uuid"
)

type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_enrollment_user_course,unique" json:"user_id"`
	CourseID  string    `gorm:"not null;index:idx_enrollment_user_course,unique;column:course_id" json:"course_id"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Enrollment) TableName() string { return "enrollment" }

// CourseStaff marks a user as staff for one course. Staff bypass release
// dates, staff-only flags and gating.
type CourseStaff struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_staff_user_course,unique" json:"user_id"`
	CourseID string    `gorm:"not null;index:idx_staff_user_course,unique;column:course_id" json:"course_id"`
	Role     string    `gorm:"not null;default:'staff'" json:"role"`
}

func (CourseStaff) TableName() string { return "course_staff" }

// GatingMembership records that a user has satisfied the prerequisite for a
// gating group, unlocking blocks gated behind it.
type GatingMembership struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_gating_user_group,unique" json:"user_id"`
	CourseID    string    `gorm:"not null;column:course_id" json:"course_id"`
	GatingGroup string    `gorm:"not null;index:idx_gating_user_group,unique;column:gating_group" json:"gating_group"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (GatingMembership) TableName() string { return "gating_membership" }
