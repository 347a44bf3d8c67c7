package outline

import (
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Assemble orders accepted headings by page and vertical position and converts
// them to outline entries with 1-based page numbers.
func Assemble(cands []Candidate) []doctree.Entry {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Line, sorted[j].Line
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Box.Y0 != b.Box.Y0 {
			return a.Box.Y0 < b.Box.Y0
		}
		if a.Box.X0 != b.Box.X0 {
			return a.Box.X0 < b.Box.X0
		}
		return a.ID < b.ID
	})

	entries := make([]doctree.Entry, 0, len(sorted))
	for _, c := range sorted {
		entries = append(entries, doctree.Entry{
			Level: doctree.Level(c.Level),
			Text:  c.Line.Text,
			Page:  c.Line.Page + 1,
		})
	}
	return entries
}

// MergeWrapped joins a heading that wraps onto following lines. A line
// continues the previous heading when it is the next line in reading order on
// the same page, has the same level and size, starts at the same left edge,
// sits within the title gap below it and does not start a new numbered
// heading. The joined heading keeps the first line's position.
func MergeWrapped(cands []Candidate, cfg Config) []Candidate {
	cfg = cfg.withDefaults()
	if len(cands) < 2 {
		return cands
	}
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Line.ID < sorted[j].Line.ID })

	out := make([]Candidate, 0, len(sorted))
	var last Line // most recent physical line of the heading being built
	for _, c := range sorted {
		if n := len(out); n > 0 && continues(out[n-1], last, c, cfg) {
			head := &out[n-1]
			head.Line.Text = head.Line.Text + " " + c.Line.Text
			head.Line.Box = head.Line.Box.union(c.Line.Box)
			head.Line.Chars += c.Line.Chars
			head.Score = math.Max(head.Score, c.Score)
			last = c.Line
			continue
		}
		out = append(out, c)
		last = c.Line
	}
	return out
}

func continues(head Candidate, last Line, next Candidate, cfg Config) bool {
	l := next.Line
	switch {
	case l.ID != last.ID+1, l.Page != last.Page, next.Level != head.Level:
		return false
	case math.Abs(l.Size-last.Size) >= cfg.SizeTolerance:
		return false
	case math.Abs(l.Box.X0-last.Box.X0) > cfg.IndentTolerance:
		return false
	case l.Box.Y0 < last.Box.Y1 || l.Box.Y0-last.Box.Y1 >= cfg.TitleGapFactor*last.Size:
		return false
	case patternDepth(l.Text) > 0 || endsSentence(head.Line.Text):
		return false
	}
	return len(strings.Fields(head.Line.Text))+len(strings.Fields(l.Text)) <= cfg.MaxHeadingWords
}

func endsSentence(text string) bool {
	return strings.HasSuffix(text, ".") || strings.HasSuffix(text, ":") ||
		strings.HasSuffix(text, "?") || strings.HasSuffix(text, "!")
}
