package blocks

import (
	"context"
	"fmt"
)

// ViewRenderer supplies per-block rendering data and derived URLs. It is
// the boundary to the view-render collaborator; payloads are opaque here.
type ViewRenderer interface {
	StudentViewData(ctx context.Context, b *Block) (map[string]any, error)
	StudentViewURL(b *Block) string
	LMSWebURL(courseID string, b *Block) string
}

// viewDataTransformer attaches the renderable payload for block types the
// client selected, plus the multi-device flag and derived URLs when those
// fields were requested.
type viewDataTransformer struct {
	renderer ViewRenderer
}

func (t *viewDataTransformer) Name() string { return "student_view" }

func (t *viewDataTransformer) Transform(ctx context.Context, g *Graph, cfg Config) error {
	wantMultiDevice := cfg.fieldRequested(FieldMultiDevice)
	wantViewURL := cfg.fieldRequested(FieldStudentViewURL)
	wantWebURL := cfg.fieldRequested(FieldLMSWebURL)

	for _, b := range g.Blocks {
		if _, ok := cfg.StudentViewData[b.Type]; ok {
			payload, err := t.renderer.StudentViewData(ctx, b)
			if err != nil {
				return fmt.Errorf("student view data for block %q: %w", b.ID, err)
			}
			if payload != nil {
				b.Fields[FieldStudentViewData] = payload
			}
		}
		if wantMultiDevice {
			b.Fields[FieldMultiDevice] = b.Authored.MultiDevice
		}
		if wantViewURL {
			b.Fields[FieldStudentViewURL] = t.renderer.StudentViewURL(b)
		}
		if wantWebURL {
			b.Fields[FieldLMSWebURL] = t.renderer.LMSWebURL(g.CourseID, b)
		}
	}
	return nil
}
