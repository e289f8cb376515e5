package types

import (
	"time"

	"gorm.io/datatypes"
)

// CourseBlock is one authored node of a course's content graph. Usage keys
// are authoring-time identifiers, unique within a course, so they are the
// primary key rather than a surrogate uuid.
type CourseBlock struct {
	UsageKey        string             `gorm:"primaryKey;column:usage_key" json:"usage_key"`
	CourseID        string             `gorm:"not null;index;column:course_id" json:"course_id"`
	BlockType       string             `gorm:"not null;column:block_type" json:"block_type"`
	DisplayName     string             `gorm:"column:display_name" json:"display_name"`
	Graded          bool               `gorm:"column:graded;default:false" json:"graded"`
	Format          string             `gorm:"column:format" json:"format"`
	ReleaseAt       *time.Time         `gorm:"column:release_at" json:"release_at,omitempty"`
	StaffOnly       bool               `gorm:"column:staff_only;default:false" json:"staff_only"`
	GatingGroup     string             `gorm:"column:gating_group" json:"gating_group"`
	MultiDevice     bool               `gorm:"column:multi_device;default:false" json:"multi_device"`
	StudentViewData datatypes.JSONMap  `gorm:"column:student_view_data" json:"student_view_data,omitempty"`
	CreatedAt       time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"not null" json:"updated_at"`
}

func (CourseBlock) TableName() string { return "course_block" }

// CourseBlockEdge is one parent→child arc. Ordinal preserves authored child
// order under a given parent.
type CourseBlockEdge struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CourseID  string `gorm:"not null;index;column:course_id" json:"course_id"`
	ParentKey string `gorm:"not null;index;column:parent_key" json:"parent_key"`
	ChildKey  string `gorm:"not null;index;column:child_key" json:"child_key"`
	Ordinal   int    `gorm:"not null;column:ordinal" json:"ordinal"`
}

func (CourseBlockEdge) TableName() string { return "course_block_edge" }
