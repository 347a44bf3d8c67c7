package outline

import (
	"context"
	"math"
	"sort"
)

// Semantic scores how much a line reads like a heading, in [-1, 1]. It is
// consulted only for lines whose score is close to the acceptance threshold.
type Semantic interface {
	Affinity(ctx context.Context, text string) (float64, error)
}

// Candidate is a line accepted as a heading.
type Candidate struct {
	Line    Line
	Level   int
	Score   float64
	Signals Signals
}

type classifier struct {
	cfg      Config
	profile  FontProfile
	semantic Semantic
	bodyLeft float64
}

// Classify scores every eligible line once and returns the accepted headings
// in input order. All lines contribute page geometry; only eligible ones can
// become headings.
func Classify(ctx context.Context, lines []Line, eligible func(Line) bool, profile FontProfile, cfg Config, semantic Semantic) []Candidate {
	cfg = cfg.withDefaults()

	var body []Line
	for _, l := range lines {
		if eligible(l) {
			body = append(body, l)
		}
	}
	c := classifier{
		cfg:      cfg,
		profile:  profile,
		semantic: semantic,
		bodyLeft: bodyLeftMargin(body, profile),
	}
	gaps := verticalGaps(lines)

	var out []Candidate
	for i, l := range lines {
		if !eligible(l) {
			continue
		}
		lc := lineContext{bodyLeft: c.bodyLeft, gapAbove: gaps[i][0], gapBelow: gaps[i][1]}
		if cand, ok := c.score(ctx, l, lc); ok {
			out = append(out, cand)
		}
	}
	return out
}

func (c classifier) score(ctx context.Context, l Line, lc lineContext) (Candidate, bool) {
	if rejected(l.Text) || isProse(l.Text, c.cfg) {
		return Candidate{}, false
	}

	fontLevel, font := fontScore(l, c.profile, c.cfg)
	depth := patternDepth(l.Text)
	if depth > c.cfg.MaxPatternDepth {
		depth = c.cfg.MaxPatternDepth
	}

	sig := Signals{
		Font:      font,
		Bold:      boldScore(l, c.profile, c.cfg),
		Pattern:   patternScore(depth, c.cfg),
		Caps:      capsScore(l.Text, c.cfg),
		Position:  positionScore(l, lc, c.cfg),
		Isolation: isolationScore(l, lc, c.cfg),
		Length:    lengthScore(l.Text, c.cfg),
	}

	if c.semantic != nil && math.Abs(sig.Total()-c.cfg.MinScore) <= c.cfg.SemanticBand {
		if aff, err := c.semantic.Affinity(ctx, l.Text); err == nil {
			sig.Semantic = c.cfg.SemanticWeight * math.Max(-1, math.Min(1, aff))
		}
	}

	total := sig.Total()
	if total < c.cfg.MinScore {
		return Candidate{}, false
	}

	level := fontLevel
	switch {
	case level > 0:
	case depth > 0:
		level = depth
	case c.profile.Degraded():
		level = 1
	default:
		level = c.profile.Levels() + 1
	}

	return Candidate{Line: l, Level: level, Score: total, Signals: sig}, true
}

// bodyLeftMargin is the most common left edge of body-sized lines, rounded to
// the point. Ties go to the leftmost edge.
func bodyLeftMargin(lines []Line, p FontProfile) float64 {
	counts := make(map[float64]int)
	for _, l := range lines {
		if p.Compare(l.Size) == 0 {
			counts[math.Round(l.Box.X0)]++
		}
	}
	if len(counts) == 0 {
		left := math.Inf(1)
		for _, l := range lines {
			left = math.Min(left, l.Box.X0)
		}
		if math.IsInf(left, 1) {
			return 0
		}
		return left
	}
	best, bestN := 0.0, 0
	for x, n := range counts {
		if n > bestN || (n == bestN && x < best) {
			best, bestN = x, n
		}
	}
	return best
}

// verticalGaps returns, per line, the whitespace to the nearest line fully
// above and fully below it on the same page. Missing neighbours give 0.
func verticalGaps(lines []Line) [][2]float64 {
	const eps = 0.5
	byPage := make(map[int][]int)
	for i, l := range lines {
		byPage[l.Page] = append(byPage[l.Page], i)
	}

	gaps := make([][2]float64, len(lines))
	for _, idx := range byPage {
		// Lines fully above a form a prefix when ordered by bottom edge; lines
		// fully below form a suffix when ordered by top edge.
		byBottom := append([]int(nil), idx...)
		sort.Slice(byBottom, func(a, b int) bool { return lines[byBottom[a]].Box.Y1 < lines[byBottom[b]].Box.Y1 })
		byTop := append([]int(nil), idx...)
		sort.Slice(byTop, func(a, b int) bool { return lines[byTop[a]].Box.Y0 < lines[byTop[b]].Box.Y0 })

		for _, i := range idx {
			a := lines[i]
			k := sort.Search(len(byBottom), func(n int) bool { return lines[byBottom[n]].Box.Y1 > a.Box.Y0+eps })
			for k--; k >= 0; k-- {
				if j := byBottom[k]; j != i {
					gaps[i][0] = math.Max(a.Box.Y0-lines[j].Box.Y1, 0)
					break
				}
			}
			k = sort.Search(len(byTop), func(n int) bool { return lines[byTop[n]].Box.Y0 >= a.Box.Y1-eps })
			for ; k < len(byTop); k++ {
				if j := byTop[k]; j != i {
					gaps[i][1] = math.Max(lines[j].Box.Y0-a.Box.Y1, 0)
					break
				}
			}
		}
	}
	return gaps
}
