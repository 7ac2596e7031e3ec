package history

import (
	"context"
	"errors"
	"testing"

	"github.com/Dicklesworthstone/patchquorum/internal/agent"
	"github.com/Dicklesworthstone/patchquorum/internal/voting"
)

func memoryStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() *voting.Result {
	return &voting.Result{
		SelectedPatchIndex:   1,
		SelectedPatchContent: "--- a/p.go\n+++ b/p.go\n+guard\n",
		VoteDistribution:     map[int]int{0: 1, 1: 3},
		AgentEvaluations: []agent.Evaluation{
			{PatchIndex: 1, EffectivenessScore: 8, OverallConfidence: 0.8, Reasoning: "direct fix"},
		},
		ConsensusMetrics: voting.ConsensusMetrics{ConsensusStrength: 0.75, VoteDiversity: 2},
		TotalVoters:      4,
		EarlyStopped:     true,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := memoryStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, "nil deref in parser", sampleResult())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.IssueTitle != "nil deref in parser" {
		t.Errorf("IssueTitle = %q", rec.IssueTitle)
	}
	if rec.Result.SelectedPatchIndex != 1 {
		t.Errorf("SelectedPatchIndex = %d, want 1", rec.Result.SelectedPatchIndex)
	}
	if rec.Result.VoteDistribution[1] != 3 {
		t.Errorf("VoteDistribution = %v", rec.Result.VoteDistribution)
	}
	if len(rec.Result.AgentEvaluations) != 1 || rec.Result.AgentEvaluations[0].Reasoning != "direct fix" {
		t.Errorf("AgentEvaluations = %+v", rec.Result.AgentEvaluations)
	}
	if !rec.Result.EarlyStopped {
		t.Error("EarlyStopped not persisted")
	}
	if rec.Result.ConsensusMetrics.ConsensusStrength != 0.75 {
		t.Errorf("ConsensusStrength = %v, want 0.75", rec.Result.ConsensusMetrics.ConsensusStrength)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestGetMissing(t *testing.T) {
	s := memoryStore(t)

	if _, err := s.Get(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := memoryStore(t)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		if _, err := s.Save(ctx, title, sampleResult()); err != nil {
			t.Fatalf("Save(%s): %v", title, err)
		}
	}

	records, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].IssueTitle != "third" || records[1].IssueTitle != "second" {
		t.Errorf("order = [%s, %s], want [third, second]",
			records[0].IssueTitle, records[1].IssueTitle)
	}
}
