package blocks

import (
	"time"

	"github.com/google/uuid"
)

// Block is one node of the content graph for a single request. Authored
// holds the fields the content store supplied; Fields holds only what the
// transformers computed for this request.
type Block struct {
	ID          string
	Type        string
	DisplayName string
	Children    []string
	Parents     map[string]struct{}
	Authored    AuthoredFields
	Fields      map[string]any
}

// AuthoredFields are the raw per-block properties set at authoring time.
type AuthoredFields struct {
	Graded          bool
	Format          string
	ReleaseAt       *time.Time
	StaffOnly       bool
	GatingGroup     string
	MultiDevice     bool
	StudentViewData map[string]any
}

// Viewer identifies the requesting user for access checks.
type Viewer struct {
	ID        uuid.UUID
	Username  string
	Anonymous bool
}

// SourceBlock and SourceEdge are the raw rows a content source returns.
// Edges carry authored child order via Ordinal.
type SourceBlock struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	DisplayName string         `json:"display_name"`
	Authored    AuthoredFields `json:"authored"`
}

type SourceEdge struct {
	Parent  string `json:"parent"`
	Child   string `json:"child"`
	Ordinal int    `json:"ordinal"`
}
