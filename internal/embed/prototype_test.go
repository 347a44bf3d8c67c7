package embed

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/outline"
)

var _ outline.Semantic = (*Prototype)(nil)

// axisEmbedder maps text that looks like a heading onto one axis and
// everything else onto another.
type axisEmbedder struct {
	calls int
	err   error
}

func (e *axisEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if len(strings.Fields(text)) <= 3 && !strings.HasSuffix(text, ".") {
		return []float32{1, 0.1}, nil
	}
	return []float32{0.1, 1}, nil
}

func TestPrototypeAffinity(t *testing.T) {
	e := &axisEmbedder{}
	p := NewPrototype(e, []string{"Results", "Scope"}, []string{"A long sentence that reads like prose."}, 0)

	pos, err := p.Affinity(context.Background(), "Key Findings")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos <= 0 || pos > 1 {
		t.Errorf("expected positive affinity in (0, 1], got %v", pos)
	}

	neg, err := p.Affinity(context.Background(), "This is plainly a sentence of body text.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if neg >= 0 || neg < -1 {
		t.Errorf("expected negative affinity in [-1, 0), got %v", neg)
	}

	// three example embeddings plus two lookups
	if e.calls != 5 {
		t.Errorf("expected centroids to be computed once, got %d embed calls", e.calls)
	}
}

func TestPrototypeRemembersInitFailure(t *testing.T) {
	e := &axisEmbedder{err: errors.New("endpoint down")}
	p := NewPrototype(e, nil, nil, 1)

	for i := 0; i < 2; i++ {
		if _, err := p.Affinity(context.Background(), "Overview"); err == nil {
			t.Fatal("expected error")
		}
	}
	if e.calls != 1 {
		t.Errorf("expected failed init not to be retried, got %d calls", e.calls)
	}
}

func TestPrototypeCanceledInitIsRetried(t *testing.T) {
	e := &axisEmbedder{}
	p := NewPrototype(e, nil, nil, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e.err = context.Canceled
	if _, err := p.Affinity(ctx, "Overview"); err == nil {
		t.Fatal("expected error with canceled context")
	}

	e.err = nil
	if _, err := p.Affinity(context.Background(), "Overview"); err != nil {
		t.Fatalf("expected init to be retried after cancellation, got %v", err)
	}
}

func TestPrototypeNoExamples(t *testing.T) {
	p := NewPrototype(&axisEmbedder{}, []string{}, []string{"body"}, 1)
	if _, err := p.Affinity(context.Background(), "x"); !errors.Is(err, ErrNoExamples) {
		t.Errorf("expected ErrNoExamples, got %v", err)
	}
}

func TestCosine(t *testing.T) {
	if got := cosine([]float64{1, 0}, []float64{0, 1}); got != 0 {
		t.Errorf("orthogonal: expected 0, got %v", got)
	}
	if got := cosine([]float64{2, 2}, []float64{1, 1}); math.Abs(got-1) > 1e-9 {
		t.Errorf("parallel: expected 1, got %v", got)
	}
	if got := cosine([]float64{1}, []float64{1, 2}); got != 0 {
		t.Errorf("mismatched: expected 0, got %v", got)
	}
}
