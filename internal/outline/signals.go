package outline

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Signals is the per-line score breakdown. Total is their sum.
type Signals struct {
	Font      float64 `json:"font"`
	Bold      float64 `json:"bold"`
	Pattern   float64 `json:"pattern"`
	Caps      float64 `json:"caps"`
	Position  float64 `json:"position"`
	Isolation float64 `json:"isolation"`
	Length    float64 `json:"length"`
	Semantic  float64 `json:"semantic"`
}

func (s Signals) Total() float64 {
	return s.Font + s.Bold + s.Pattern + s.Caps + s.Position + s.Isolation + s.Length + s.Semantic
}

// fontScore rewards significant sizes by rank and penalizes body-sized and
// smaller text. A degraded profile contributes nothing.
func fontScore(l Line, p FontProfile, cfg Config) (int, float64) {
	if p.Degraded() {
		return 0, 0
	}
	if level, ok := p.Level(l.Size); ok {
		s := cfg.FontTopScore - cfg.FontLevelStep*float64(level-1)
		return level, math.Max(s, cfg.FontFloorScore)
	}
	if p.Compare(l.Size) < 0 {
		return 0, cfg.BelowBodyPenalty
	}
	return 0, cfg.BodyPenalty
}

func boldScore(l Line, p FontProfile, cfg Config) float64 {
	if p.IsBold(l.Font) {
		return cfg.BoldBonus
	}
	return 0
}

var (
	numberedRe = regexp.MustCompile(`^(\d{1,3}(?:\.\d{1,3})*)(\.|\))?\s+(\p{L}.*)$`)
	letteredRe = regexp.MustCompile(`^[A-Z](?:((?:\.\d{1,3})+)[.)]?|[.)])\s+\p{L}`)
	romanRe    = regexp.MustCompile(`^[IVXLC]+[.)]\s+\p{L}`)
	keywordRe  = regexp.MustCompile(`(?i)^(chapter|section|part|appendix|annex)\s+(\d{1,3}(?:\.\d{1,3})*|[IVXLC]+|[A-Z])\b`)
)

// patternDepth returns the nesting depth implied by a section number
// ("1.2.3 Options" is 3), or 0 when the text carries no numbering.
func patternDepth(text string) int {
	if m := numberedRe.FindStringSubmatch(text); m != nil {
		depth := strings.Count(m[1], ".") + 1
		if depth == 1 && m[2] == "" && !bareNumberHeading(m[3]) {
			return 0
		}
		return depth
	}
	if m := letteredRe.FindStringSubmatch(text); m != nil {
		return strings.Count(m[1], ".") + 1
	}
	if romanRe.MatchString(text) {
		return 1
	}
	if m := keywordRe.FindStringSubmatch(text); m != nil {
		if m[2] != "" && m[2][0] >= '0' && m[2][0] <= '9' {
			return strings.Count(m[2], ".") + 1
		}
		return 1
	}
	return 0
}

// bareNumberHeading accepts "3 Results" but not "10 people attended the meeting".
func bareNumberHeading(rest string) bool {
	r, _ := utf8.DecodeRuneInString(rest)
	if !unicode.IsUpper(r) {
		return false
	}
	if strings.ContainsAny(rest[len(rest)-1:], ".,;:") {
		return false
	}
	return len(strings.Fields(rest)) <= 8
}

func patternScore(depth int, cfg Config) float64 {
	if depth > 0 {
		return cfg.NumberedBonus
	}
	return 0
}

// isAllCaps accepts short text whose letters are overwhelmingly upper case.
func isAllCaps(text string) bool {
	n := utf8.RuneCountInString(text)
	if n < 5 || n > 70 {
		return false
	}
	letters, upper := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return letters >= 3 && float64(upper)/float64(letters) > 0.85
}

func capsScore(text string, cfg Config) float64 {
	if isAllCaps(text) {
		return cfg.AllCapsBonus
	}
	return 0
}

// lineContext is the page geometry around one line.
type lineContext struct {
	bodyLeft float64 // modal left edge of body text
	gapAbove float64 // 0 when no line above
	gapBelow float64 // 0 when no line below
}

func positionScore(l Line, lc lineContext, cfg Config) float64 {
	if l.PageWidth > 0 {
		center := (l.Box.X0 + l.Box.X1) / 2
		if math.Abs(center-l.PageWidth/2) < 0.05*l.PageWidth && l.Box.X0 > lc.bodyLeft+cfg.IndentTolerance {
			return cfg.LeftMarginBonus
		}
	}
	if l.Box.X0 > lc.bodyLeft+cfg.IndentTolerance {
		return cfg.IndentPenalty
	}
	return cfg.LeftMarginBonus
}

func isolationScore(l Line, lc lineContext, cfg Config) float64 {
	if l.PageWidth > 0 && l.Box.Width() >= cfg.ShortLineRatio*l.PageWidth {
		return 0
	}
	limit := cfg.IsolationFactor * l.Size
	if lc.gapAbove > limit || lc.gapBelow > limit {
		return cfg.IsolationBonus
	}
	return 0
}

func lengthScore(text string, cfg Config) float64 {
	n := utf8.RuneCountInString(text)
	if n >= 3 && n <= cfg.MaxHeadingChars && len(strings.Fields(text)) <= cfg.MaxHeadingWords {
		return cfg.LengthBonus
	}
	return cfg.LengthPenalty
}

// isProse reports sentence-like text that is never a heading whatever its font.
func isProse(text string, cfg Config) bool {
	if strings.HasSuffix(text, ",") || strings.HasSuffix(text, ";") {
		return true
	}
	return strings.HasSuffix(text, ".") && len(strings.Fields(text)) >= cfg.ProseWords
}

// leaderRe matches a table-of-contents entry: a run of leader dots, optionally
// followed by a page number, at the end of the line.
var leaderRe = regexp.MustCompile(`(?i)(\.\s?){4,}\s*(\d+|[ivxlcdm]+)?\s*$`)

// rejected reports text that can never be a heading or a title.
func rejected(text string) bool {
	return utf8.RuneCountInString(text) < 3 || !hasLetter(text) || isPageNumber(text) || leaderRe.MatchString(text)
}
