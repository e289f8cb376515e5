package repos

import (
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func blockRecord(keys []string, values []any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func TestRecJSONMap_DecodesStoredPayload(t *testing.T) {
	rec := blockRecord(
		[]string{"usage_key", "student_view_data"},
		[]any{"block-v1:edX+DemoX+Demo_Course+type@video+block@intro", `{"encoded_videos":{"mobile_low":{"url":"https://cdn/v.mp4"}}}`},
	)

	payload, err := recJSONMap(rec, "student_view_data")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	encoded, ok := payload["encoded_videos"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested object, got %#v", payload["encoded_videos"])
	}
	if _, ok := encoded["mobile_low"]; !ok {
		t.Fatalf("expected mobile_low profile, got %#v", encoded)
	}
}

func TestRecJSONMap_MissingAndEmptyAreNil(t *testing.T) {
	rec := blockRecord([]string{"student_view_data"}, []any{nil})
	if payload, err := recJSONMap(rec, "student_view_data"); err != nil || payload != nil {
		t.Fatalf("nil property: got %v, %v", payload, err)
	}
	rec = blockRecord([]string{"student_view_data"}, []any{""})
	if payload, err := recJSONMap(rec, "student_view_data"); err != nil || payload != nil {
		t.Fatalf("empty property: got %v, %v", payload, err)
	}
}

func TestRecJSONMap_MalformedPayloadErrors(t *testing.T) {
	rec := blockRecord([]string{"student_view_data"}, []any{"{not json"})
	if _, err := recJSONMap(rec, "student_view_data"); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestRecTime_AbsentIsNil(t *testing.T) {
	when := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	rec := blockRecord([]string{"release_at", "graded"}, []any{when, true})

	got := recTime(rec, "release_at")
	if got == nil || !got.Equal(when) {
		t.Fatalf("expected %v, got %v", when, got)
	}
	if recTime(rec, "missing") != nil {
		t.Fatal("missing key must map to nil")
	}
}
