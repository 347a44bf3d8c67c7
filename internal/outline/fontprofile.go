package outline

import (
	"math"
	"sort"
	"strings"
)

// FontProfile ranks a document's font sizes. The body size is the size
// carrying the most characters; every distinct size above it is significant
// and ranked largest first.
type FontProfile struct {
	Body     float64
	BodyFont string
	Sizes    []float64 // significant sizes, descending

	tol       float64
	maxLevels int
}

type sizeCluster struct {
	rep    float64
	repW   int
	weight int
	lo     float64
}

// BuildProfile derives a FontProfile from lines, weighting each line's
// dominant size by its glyph count.
func BuildProfile(lines []Line, cfg Config) FontProfile {
	cfg = cfg.withDefaults()
	p := FontProfile{tol: cfg.SizeTolerance, maxLevels: cfg.MaxLevels}

	weights := make(map[float64]int)
	fonts := make(map[string]int)
	for _, l := range lines {
		weights[l.Size] += l.Chars
		fonts[l.Font] += l.Chars
	}
	if len(weights) == 0 {
		return p
	}

	sizes := make([]float64, 0, len(weights))
	for s := range weights {
		sizes = append(sizes, s)
	}
	sort.Float64s(sizes)

	var clusters []sizeCluster
	for _, s := range sizes {
		w := weights[s]
		if n := len(clusters); n > 0 && s-clusters[n-1].lo < p.tol {
			c := &clusters[n-1]
			if w >= c.repW {
				c.rep, c.repW = s, w
			}
			c.weight += w
			continue
		}
		clusters = append(clusters, sizeCluster{rep: s, repW: w, weight: w, lo: s})
	}

	body := 0
	for i, c := range clusters {
		if c.weight > clusters[body].weight {
			body = i
		}
	}
	p.Body = clusters[body].rep
	p.BodyFont = dominantFont(fonts)

	for i := len(clusters) - 1; i > body; i-- {
		p.Sizes = append(p.Sizes, clusters[i].rep)
	}
	return p
}

// Degraded reports whether no size exceeds the body size.
func (p FontProfile) Degraded() bool { return len(p.Sizes) == 0 }

// Levels is the number of font-derived heading levels.
func (p FontProfile) Levels() int {
	if p.maxLevels > 0 && len(p.Sizes) > p.maxLevels {
		return p.maxLevels
	}
	return len(p.Sizes)
}

// Compare places size relative to the body size: -1 below, 0 body, 1 above.
func (p FontProfile) Compare(size float64) int {
	switch {
	case size > p.Body+p.tol:
		return 1
	case size < p.Body-p.tol:
		return -1
	}
	return 0
}

// Level returns the 1-based heading level for size. Sizes smaller than the
// last tracked level share that level.
func (p FontProfile) Level(size float64) (int, bool) {
	if p.Degraded() || p.Compare(size) <= 0 {
		return 0, false
	}
	rank := len(p.Sizes)
	for i, s := range p.Sizes {
		if math.Abs(size-s) < p.tol || size > s {
			rank = i + 1
			break
		}
	}
	if n := p.Levels(); n > 0 && rank > n {
		rank = n
	}
	return rank, true
}

// IsBold reports whether the font name denotes a heavy weight that differs
// from the body font.
func (p FontProfile) IsBold(font string) bool {
	return isBoldFont(font) && !isBoldFont(p.BodyFont)
}

func isBoldFont(name string) bool {
	n := strings.ToLower(name)
	for _, w := range []string{"bold", "black", "heavy", "semibold", "demi"} {
		if strings.Contains(n, w) {
			return true
		}
	}
	return false
}
