package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dthai91/edx-platform/internal/platform/envutil"
	"github.com/dthai91/edx-platform/internal/platform/logger"
	"github.com/dthai91/edx-platform/internal/types"
)

type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewStore opens the content database. CONTENT_DB selects the driver:
// sqlite (default, file from SQLITE_PATH) or postgres (POSTGRES_* vars).
func NewStore(log *logger.Logger) (*Store, error) {
	storeLog := log.With("service", "Store")

	var (
		conn *gorm.DB
		err  error
	)
	switch envutil.Str("CONTENT_DB", "sqlite") {
	case "postgres":
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			envutil.Str("POSTGRES_USER", "postgres"),
			envutil.Str("POSTGRES_PASSWORD", ""),
			envutil.Str("POSTGRES_HOST", "localhost"),
			envutil.Str("POSTGRES_PORT", "5432"),
			envutil.Str("POSTGRES_NAME", "edx"),
		)
		conn, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		conn, err = gorm.Open(sqlite.Open(envutil.Str("SQLITE_PATH", "edx.db")), &gorm.Config{})
	}
	if err != nil {
		storeLog.Error("failed to connect to content database", "error", err)
		return nil, fmt.Errorf("connect content database: %w", err)
	}

	return &Store{db: conn, log: storeLog}, nil
}

func (s *Store) AutoMigrateAll() error {
	s.log.Info("auto migrating content tables")
	return s.db.AutoMigrate(
		&types.User{},
		&types.CourseBlock{},
		&types.CourseBlockEdge{},
		&types.Enrollment{},
		&types.CourseStaff{},
		&types.GatingMembership{},
	)
}

func (s *Store) DB() *gorm.DB {
	return s.db
}
