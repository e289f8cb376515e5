package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dthai91/edx-platform/internal/blocks"
	"github.com/dthai91/edx-platform/internal/platform/apierr"
	"github.com/dthai91/edx-platform/internal/platform/logger"
	"github.com/dthai91/edx-platform/internal/platform/neo4jdb"
)

// neo4jContentRepo serves the same contract as the relational repo from a
// graph database: blocks are (:CourseBlock) nodes, child order lives on
// [:PARENT_OF {ordinal}] relationships.
type neo4jContentRepo struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jContentRepo(client *neo4jdb.Client, baseLog *logger.Logger) ContentSource {
	return &neo4jContentRepo{client: client, log: baseLog.With("repo", "Neo4jContentRepo")}
}

func (nr *neo4jContentRepo) CourseTree(ctx context.Context, rootID string) (*CourseTree, error) {
	rootRes, err := neo4j.ExecuteQuery(ctx, nr.client.Driver,
		`MATCH (b:CourseBlock {usage_key: $key}) RETURN b.course_id AS course_id`,
		map[string]any{"key": rootID},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(nr.client.Database))
	if err != nil {
		return nil, fmt.Errorf("load root block: %w", err)
	}
	if len(rootRes.Records) == 0 {
		return nil, apierr.NotFound("block_not_found", fmt.Errorf("block %q does not exist", rootID))
	}
	courseID, _ := rootRes.Records[0].Get("course_id")
	course, ok := courseID.(string)
	if !ok || course == "" {
		return nil, fmt.Errorf("block %q has no course_id", rootID)
	}

	blockRes, err := neo4j.ExecuteQuery(ctx, nr.client.Driver,
		`MATCH (b:CourseBlock {course_id: $course})
		 RETURN b.usage_key AS usage_key, b.block_type AS block_type,
		        b.display_name AS display_name, b.graded AS graded,
		        b.format AS format, b.release_at AS release_at,
		        b.staff_only AS staff_only, b.gating_group AS gating_group,
		        b.multi_device AS multi_device,
		        b.student_view_data AS student_view_data`,
		map[string]any{"course": course},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(nr.client.Database))
	if err != nil {
		return nil, fmt.Errorf("load course blocks: %w", err)
	}

	edgeRes, err := neo4j.ExecuteQuery(ctx, nr.client.Driver,
		`MATCH (p:CourseBlock {course_id: $course})-[r:PARENT_OF]->(c:CourseBlock)
		 RETURN p.usage_key AS parent, c.usage_key AS child, r.ordinal AS ordinal
		 ORDER BY parent, ordinal`,
		map[string]any{"course": course},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(nr.client.Database))
	if err != nil {
		return nil, fmt.Errorf("load course edges: %w", err)
	}

	tree := &CourseTree{CourseID: course}
	tree.Blocks = make([]blocks.SourceBlock, 0, len(blockRes.Records))
	for _, rec := range blockRes.Records {
		usageKey := recString(rec, "usage_key")
		viewData, err := recJSONMap(rec, "student_view_data")
		if err != nil {
			nr.log.Warn("discarding malformed student_view_data", "usage_key", usageKey, "error", err)
		}
		tree.Blocks = append(tree.Blocks, blocks.SourceBlock{
			ID:          usageKey,
			Type:        recString(rec, "block_type"),
			DisplayName: recString(rec, "display_name"),
			Authored: blocks.AuthoredFields{
				Graded:          recBool(rec, "graded"),
				Format:          recString(rec, "format"),
				ReleaseAt:       recTime(rec, "release_at"),
				StaffOnly:       recBool(rec, "staff_only"),
				GatingGroup:     recString(rec, "gating_group"),
				MultiDevice:     recBool(rec, "multi_device"),
				StudentViewData: viewData,
			},
		})
	}
	tree.Edges = make([]blocks.SourceEdge, 0, len(edgeRes.Records))
	for _, rec := range edgeRes.Records {
		tree.Edges = append(tree.Edges, blocks.SourceEdge{
			Parent:  recString(rec, "parent"),
			Child:   recString(rec, "child"),
			Ordinal: int(recInt(rec, "ordinal")),
		})
	}
	return tree, nil
}

func recString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func recBool(rec *neo4j.Record, key string) bool {
	v, _ := rec.Get(key)
	b, _ := v.(bool)
	return b
}

func recInt(rec *neo4j.Record, key string) int64 {
	v, _ := rec.Get(key)
	n, _ := v.(int64)
	return n
}

// recJSONMap decodes a JSON-object property. Neo4j properties cannot hold
// maps, so structured payloads are stored on the node as serialized JSON.
func recJSONMap(rec *neo4j.Record, key string) (map[string]any, error) {
	v, _ := rec.Get(key)
	s, ok := v.(string)
	if !ok || s == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return m, nil
}

func recTime(rec *neo4j.Record, key string) *time.Time {
	v, _ := rec.Get(key)
	if t, ok := v.(time.Time); ok {
		return &t
	}
	return nil
}
