package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

// scripted returns queued evaluations and errors in order, then
// repeats the last entry.
type scripted struct {
	results []Evaluation
	errs    []error
	calls   int
}

func (s *scripted) Evaluate(ctx context.Context, req Request) (Evaluation, error) {
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i], s.errs[i]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validEvaluation(index int) Evaluation {
	return Evaluation{
		PatchIndex:            index,
		EffectivenessScore:    8,
		PreservationScore:     8,
		MinimalityScore:       8,
		StyleCoherenceScore:   8,
		RepositoryImpactScore: 8,
		OverallConfidence:     0.8,
	}
}

func retryRequest(numPatches int) Request {
	patches := make([]string, numPatches)
	for i := range patches {
		patches[i] = "--- a/f.go\n+++ b/f.go\n+patch"
	}
	return Request{Patches: patches, Config: Config{AgentID: 1}}
}

func TestRetryingSucceedsAfterFailure(t *testing.T) {
	inner := &scripted{
		results: []Evaluation{{}, validEvaluation(1)},
		errs:    []error{errors.New("transient"), nil},
	}
	r := NewRetrying(inner, discardLogger())

	eval, err := r.Evaluate(context.Background(), retryRequest(2))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if eval.PatchIndex != 1 {
		t.Errorf("PatchIndex = %d, want 1", eval.PatchIndex)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestRetryingRejectsOutOfRangeIndex(t *testing.T) {
	inner := &scripted{
		results: []Evaluation{validEvaluation(5), validEvaluation(0)},
		errs:    []error{nil, nil},
	}
	r := NewRetrying(inner, discardLogger())

	eval, err := r.Evaluate(context.Background(), retryRequest(2))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if eval.PatchIndex != 0 {
		t.Errorf("PatchIndex = %d, want 0 from the retried attempt", eval.PatchIndex)
	}
}

func TestRetryingSubstitutesDefaultAfterExhaustion(t *testing.T) {
	inner := &scripted{
		results: []Evaluation{{}},
		errs:    []error{errors.New("always failing")},
	}
	r := NewRetrying(inner, discardLogger())

	eval, err := r.Evaluate(context.Background(), retryRequest(3))
	if err != nil {
		t.Fatalf("Evaluate must not propagate ordinary failures: %v", err)
	}
	if eval != DefaultEvaluation() {
		t.Errorf("expected the default evaluation, got %+v", eval)
	}
	if inner.calls != DefaultMaxRetries {
		t.Errorf("inner calls = %d, want %d", inner.calls, DefaultMaxRetries)
	}
}

func TestRetryingPropagatesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &scripted{results: []Evaluation{{}}, errs: []error{ctx.Err()}}
	r := NewRetrying(inner, discardLogger())

	if _, err := r.Evaluate(ctx, retryRequest(2)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("inner should not be called on dead context, got %d calls", inner.calls)
	}
}
