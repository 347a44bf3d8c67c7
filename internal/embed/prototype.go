package embed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
)

// DefaultHeadingExamples and DefaultBodyExamples anchor the two centroids
// Prototype compares against.
var (
	DefaultHeadingExamples = []string{
		"Introduction",
		"Background",
		"Related Work",
		"Methodology",
		"Results",
		"Discussion",
		"Conclusion",
		"References",
		"Appendix A: Glossary",
		"Executive Summary",
		"Scope and Objectives",
		"Installation",
	}
	DefaultBodyExamples = []string{
		"The results were collected over a period of six weeks at both sites.",
		"Please contact the support team if the problem persists after restarting.",
		"In this section we describe how the samples were prepared and stored.",
		"Revenue increased by twelve percent compared with the previous quarter.",
		"and the remaining participants were assigned to the control group",
		"This agreement may be terminated by either party with written notice.",
	}
)

// ErrNoExamples means a Prototype was built without one of its example sets.
var ErrNoExamples = errors.New("prototype needs heading and body examples")

// Prototype scores text by comparing its embedding with the centroid of known
// headings and the centroid of known body text. Centroids are computed on
// first use; a failure there is remembered unless the caller's context ended.
type Prototype struct {
	embedder Embedder
	headings []string
	body     []string
	gain     float64

	mu       sync.Mutex
	ready    bool
	heading  []float64
	bodyText []float64
	err      error
}

// NewPrototype builds a scorer. Nil example sets fall back to the defaults.
// Gain scales the raw cosine difference before it is clamped to [-1, 1].
func NewPrototype(e Embedder, headings, body []string, gain float64) *Prototype {
	if headings == nil {
		headings = DefaultHeadingExamples
	}
	if body == nil {
		body = DefaultBodyExamples
	}
	if gain <= 0 {
		gain = 4
	}
	return &Prototype{embedder: e, headings: headings, body: body, gain: gain}
}

// Affinity is positive when text sits closer to the heading examples.
func (p *Prototype) Affinity(ctx context.Context, text string) (float64, error) {
	if err := p.ensure(ctx); err != nil {
		return 0, err
	}
	vec, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return 0, err
	}
	v := toFloat64(vec)
	diff := cosine(v, p.heading) - cosine(v, p.bodyText)
	return math.Max(-1, math.Min(1, diff*p.gain)), nil
}

func (p *Prototype) ensure(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready || p.err != nil {
		return p.err
	}
	err := p.init(ctx)
	switch {
	case err == nil:
		p.ready = true
	case ctx.Err() == nil:
		p.err = err
	}
	return err
}

func (p *Prototype) init(ctx context.Context) error {
	if len(p.headings) == 0 || len(p.body) == 0 {
		return ErrNoExamples
	}
	var err error
	if p.heading, err = p.centroid(ctx, p.headings); err != nil {
		return fmt.Errorf("heading centroid: %w", err)
	}
	if p.bodyText, err = p.centroid(ctx, p.body); err != nil {
		return fmt.Errorf("body centroid: %w", err)
	}
	if len(p.heading) != len(p.bodyText) {
		return fmt.Errorf("centroid dimensions differ: %d vs %d", len(p.heading), len(p.bodyText))
	}
	return nil
}

func (p *Prototype) centroid(ctx context.Context, texts []string) ([]float64, error) {
	var sum []float64
	for _, t := range texts {
		vec, err := p.embedder.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		v := normalize(toFloat64(vec))
		if sum == nil {
			sum = make([]float64, len(v))
		}
		if len(v) != len(sum) {
			return nil, fmt.Errorf("embedding dimension changed: %d vs %d", len(v), len(sum))
		}
		for i := range v {
			sum[i] += v[i]
		}
	}
	return normalize(sum), nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func normalize(v []float64) []float64 {
	var n float64
	for _, x := range v {
		n += x * x
	}
	if n == 0 {
		return v
	}
	n = math.Sqrt(n)
	for i := range v {
		v[i] /= n
	}
	return v
}

// cosine returns 0 for mismatched or zero vectors.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
