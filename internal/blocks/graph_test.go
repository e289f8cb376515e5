package blocks

import (
	"errors"
	"testing"
)

func sampleCourse() ([]SourceBlock, []SourceEdge) {
	srcBlocks := []SourceBlock{
		{ID: "course-block", Type: "course", DisplayName: "Demo Course"},
		{ID: "chapter1", Type: "chapter", DisplayName: "Chapter 1"},
		{ID: "seq1", Type: "sequential", DisplayName: "Sequence 1"},
		{ID: "seq2", Type: "sequential", DisplayName: "Sequence 2"},
		{ID: "video1", Type: "video", DisplayName: "Video 1"},
		{ID: "problem1", Type: "problem", DisplayName: "Problem 1"},
	}
	srcEdges := []SourceEdge{
		{Parent: "course-block", Child: "chapter1", Ordinal: 0},
		{Parent: "chapter1", Child: "seq1", Ordinal: 0},
		{Parent: "chapter1", Child: "seq2", Ordinal: 1},
		{Parent: "seq1", Child: "video1", Ordinal: 0},
		{Parent: "seq2", Child: "problem1", Ordinal: 0},
	}
	return srcBlocks, srcEdges
}

func TestBuild_RestrictsToReachableSubtree(t *testing.T) {
	srcBlocks, srcEdges := sampleCourse()
	srcBlocks = append(srcBlocks, SourceBlock{ID: "orphan", Type: "html"})

	g, err := Build("chapter1", "course-1", srcBlocks, srcEdges)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(g.Blocks) != 5 {
		t.Fatalf("expected 5 reachable blocks, got %d", len(g.Blocks))
	}
	if _, ok := g.Blocks["course-block"]; ok {
		t.Fatalf("course-block is not reachable from chapter1")
	}
	if _, ok := g.Blocks["orphan"]; ok {
		t.Fatalf("orphan should not be reachable")
	}
}

func TestBuild_PreservesAuthoredChildOrder(t *testing.T) {
	srcBlocks, srcEdges := sampleCourse()
	g, err := Build("course-block", "course-1", srcBlocks, srcEdges)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ch := g.Blocks["chapter1"].Children
	if len(ch) != 2 || ch[0] != "seq1" || ch[1] != "seq2" {
		t.Fatalf("unexpected child order: %v", ch)
	}
}

func TestBuild_DetectsCycle(t *testing.T) {
	srcBlocks, srcEdges := sampleCourse()
	srcEdges = append(srcEdges, SourceEdge{Parent: "video1", Child: "chapter1", Ordinal: 0})

	_, err := Build("course-block", "course-1", srcBlocks, srcEdges)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestBuild_MissingRootFails(t *testing.T) {
	srcBlocks, srcEdges := sampleCourse()
	if _, err := Build("nope", "course-1", srcBlocks, srcEdges); err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestLevels_ShortestPathInDAG(t *testing.T) {
	srcBlocks, srcEdges := sampleCourse()
	// video1 is cross-listed directly under chapter1 as well.
	srcEdges = append(srcEdges, SourceEdge{Parent: "chapter1", Child: "video1", Ordinal: 2})

	g, err := Build("course-block", "course-1", srcBlocks, srcEdges)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	levels := g.Levels()
	if levels["video1"] != 2 {
		t.Fatalf("expected shared block at its shallowest level 2, got %d", levels["video1"])
	}
	if levels["problem1"] != 3 {
		t.Fatalf("expected problem1 at level 3, got %d", levels["problem1"])
	}
}

func TestPrune_TransitiveAndNoDangling(t *testing.T) {
	srcBlocks, srcEdges := sampleCourse()
	g, err := Build("course-block", "course-1", srcBlocks, srcEdges)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	g.Prune(map[string]struct{}{"chapter1": {}})

	if len(g.Blocks) != 1 {
		t.Fatalf("expected only the root to survive, got %d blocks", len(g.Blocks))
	}
	root := g.Blocks["course-block"]
	if len(root.Children) != 0 {
		t.Fatalf("pruned child id left dangling: %v", root.Children)
	}
}

func TestPrune_RootRemovalEmptiesGraph(t *testing.T) {
	srcBlocks, srcEdges := sampleCourse()
	g, err := Build("course-block", "course-1", srcBlocks, srcEdges)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	g.Prune(map[string]struct{}{"course-block": {}})
	if len(g.Blocks) != 0 {
		t.Fatalf("expected empty graph, got %d blocks", len(g.Blocks))
	}
}

func TestPrune_SharedBlockSurvivesViaOtherParent(t *testing.T) {
	srcBlocks, srcEdges := sampleCourse()
	srcEdges = append(srcEdges, SourceEdge{Parent: "seq2", Child: "video1", Ordinal: 1})

	g, err := Build("course-block", "course-1", srcBlocks, srcEdges)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	g.Prune(map[string]struct{}{"seq1": {}})

	if _, ok := g.Blocks["video1"]; !ok {
		t.Fatalf("shared block should survive through its second parent")
	}
	if _, ok := g.Blocks["video1"].Parents["seq1"]; ok {
		t.Fatalf("pruned parent still referenced")
	}
}
