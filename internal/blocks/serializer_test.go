package blocks

import (
	"testing"
)

func TestSerializeDict_Shape(t *testing.T) {
	srcBlocks, srcEdges := sampleCourse()
	g, err := Build("course-block", "course-1", srcBlocks, srcEdges)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out := SerializeDict(g, testConfig(withFields(FieldChildren)))
	if out["root"] != "course-block" {
		t.Fatalf("unexpected root: %v", out["root"])
	}
	records := out["blocks"].(map[string]Record)
	if len(records) != len(g.Blocks) {
		t.Fatalf("dict mode must contain every surviving block, got %d of %d",
			len(records), len(g.Blocks))
	}
	rec := records["chapter1"]
	if rec["id"] != "chapter1" || rec["type"] != "chapter" || rec["display_name"] != "Chapter 1" {
		t.Fatalf("unexpected record: %v", rec)
	}
	children := rec[FieldChildren].([]string)
	if len(children) != 2 || children[0] != "seq1" {
		t.Fatalf("unexpected children: %v", children)
	}
}

func TestSerializeDict_OmitsUnrequestedFields(t *testing.T) {
	srcBlocks, srcEdges := sampleCourse()
	g, err := Build("course-block", "course-1", srcBlocks, srcEdges)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	g.Blocks["seq1"].Fields[FieldGraded] = true

	out := SerializeDict(g, testConfig())
	rec := out["blocks"].(map[string]Record)["seq1"]
	if _, ok := rec[FieldChildren]; ok {
		t.Fatalf("children serialized without being requested")
	}
	if _, ok := rec[FieldGraded]; ok {
		t.Fatalf("graded serialized without being requested")
	}
}

func TestSerializeList_PreOrderAuthoredOrder(t *testing.T) {
	srcBlocks, srcEdges := sampleCourse()
	g, err := Build("course-block", "course-1", srcBlocks, srcEdges)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out := SerializeList(g, testConfig())
	want := []string{"course-block", "chapter1", "seq1", "video1", "seq2", "problem1"}
	if len(out) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(out))
	}
	for i, id := range want {
		if out[i]["id"] != id {
			t.Fatalf("position %d: got %v, want %s", i, out[i]["id"], id)
		}
	}
}

func TestSerializeList_SharedBlockAppearsOnce(t *testing.T) {
	srcBlocks, srcEdges := sampleCourse()
	srcEdges = append(srcEdges, SourceEdge{Parent: "seq2", Child: "video1", Ordinal: 1})
	g, err := Build("course-block", "course-1", srcBlocks, srcEdges)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out := SerializeList(g, testConfig())
	seen := 0
	firstAt := -1
	for i, rec := range out {
		if rec["id"] == "video1" {
			seen++
			if firstAt < 0 {
				firstAt = i
			}
		}
	}
	if seen != 1 {
		t.Fatalf("shared block appeared %d times", seen)
	}
	// first-visited position: under seq1, right after it
	if out[firstAt-1]["id"] != "seq1" {
		t.Fatalf("shared block not at its first-visited position, preceded by %v", out[firstAt-1]["id"])
	}
}
