package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/dthai91/edx-platform/internal/clients/redis"
	"github.com/dthai91/edx-platform/internal/db"
	"github.com/dthai91/edx-platform/internal/platform/envutil"
	"github.com/dthai91/edx-platform/internal/platform/logger"
	"github.com/dthai91/edx-platform/internal/types"
)

// seedcourse loads a YAML course outline into the content store, replacing
// any previous rows for that course, and drops the redis graph cache so
// the API serves the new tree immediately.
//
//	seedcourse -file fixtures/demo_course.yaml

type seedFile struct {
	CourseID string      `yaml:"course_id"`
	Blocks   []seedBlock `yaml:"blocks"`
}

type seedBlock struct {
	ID              string         `yaml:"id"`
	Type            string         `yaml:"type"`
	DisplayName     string         `yaml:"display_name"`
	Graded          bool           `yaml:"graded"`
	Format          string         `yaml:"format"`
	ReleaseAt       *time.Time     `yaml:"release_at"`
	StaffOnly       bool           `yaml:"staff_only"`
	GatingGroup     string         `yaml:"gating_group"`
	MultiDevice     bool           `yaml:"multi_device"`
	StudentViewData map[string]any `yaml:"student_view_data"`
	Children        []string       `yaml:"children"`
}

func main() {
	file := flag.String("file", "", "path to a YAML course outline")
	flag.Parse()

	log, err := logger.New(envutil.Str("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *file == "" {
		log.Fatal("missing -file argument")
	}
	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal("read outline failed", "error", err, "file", *file)
	}
	var outline seedFile
	if err := yaml.Unmarshal(raw, &outline); err != nil {
		log.Fatal("parse outline failed", "error", err, "file", *file)
	}
	if outline.CourseID == "" || len(outline.Blocks) == 0 {
		log.Fatal("outline needs a course_id and at least one block")
	}

	store, err := db.NewStore(log)
	if err != nil {
		log.Fatal("content store init failed", "error", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		log.Fatal("content store migration failed", "error", err)
	}

	now := time.Now()
	blockRows := make([]types.CourseBlock, 0, len(outline.Blocks))
	edgeRows := make([]types.CourseBlockEdge, 0)
	for _, sb := range outline.Blocks {
		blockRows = append(blockRows, types.CourseBlock{
			UsageKey:        sb.ID,
			CourseID:        outline.CourseID,
			BlockType:       sb.Type,
			DisplayName:     sb.DisplayName,
			Graded:          sb.Graded,
			Format:          sb.Format,
			ReleaseAt:       sb.ReleaseAt,
			StaffOnly:       sb.StaffOnly,
			GatingGroup:     sb.GatingGroup,
			MultiDevice:     sb.MultiDevice,
			StudentViewData: datatypes.JSONMap(sb.StudentViewData),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		for i, child := range sb.Children {
			edgeRows = append(edgeRows, types.CourseBlockEdge{
				CourseID:  outline.CourseID,
				ParentKey: sb.ID,
				ChildKey:  child,
				Ordinal:   i,
			})
		}
	}

	tx := store.DB().Begin()
	if err := tx.Where("course_id = ?", outline.CourseID).Delete(&types.CourseBlockEdge{}).Error; err != nil {
		tx.Rollback()
		log.Fatal("clear edges failed", "error", err)
	}
	if err := tx.Where("course_id = ?", outline.CourseID).Delete(&types.CourseBlock{}).Error; err != nil {
		tx.Rollback()
		log.Fatal("clear blocks failed", "error", err)
	}
	if err := tx.Create(&blockRows).Error; err != nil {
		tx.Rollback()
		log.Fatal("insert blocks failed", "error", err)
	}
	if len(edgeRows) > 0 {
		if err := tx.Create(&edgeRows).Error; err != nil {
			tx.Rollback()
			log.Fatal("insert edges failed", "error", err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		log.Fatal("commit failed", "error", err)
	}

	if cache, err := redis.NewGraphCache(log); err != nil {
		log.Warn("graph cache unavailable, skipping invalidation", "error", err)
	} else if cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := cache.InvalidateAll(ctx); err != nil {
			log.Warn("graph cache invalidation failed", "error", err)
		}
		_ = cache.Close()
	}

	log.Info("course seeded",
		"course_id", outline.CourseID,
		"blocks", len(blockRows),
		"edges", len(edgeRows),
	)
}
