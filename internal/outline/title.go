package outline

import (
	"math"
	"strings"
)

// Title is the selected document title and the lines it was built from.
type Title struct {
	Text    string
	Page    int // 0-based; -1 when there is no title
	LineIDs []int
}

// Has reports whether the line is part of the title.
func (t Title) Has(l Line) bool {
	for _, id := range t.LineIDs {
		if id == l.ID {
			return true
		}
	}
	return false
}

// SelectTitle picks the largest text on the first page, or on the second page
// when the first has nothing above body size. Vertically adjacent lines of the
// same size are joined. Without any large text the first usable line of the
// first page is the title.
func SelectTitle(lines []Line, profile FontProfile, bands BandSet, cfg Config) Title {
	cfg = cfg.withDefaults()

	first := firstPage(lines)
	if first < 0 {
		return Title{Page: -1}
	}

	scan := []int{first}
	if cfg.TitleSecondPage {
		if next := nextPage(lines, first); next >= 0 && next == first+1 {
			scan = append(scan, next)
		}
	}

	usable := func(l Line) bool {
		return !bands.Has(l) && !rejected(l.Text)
	}

	for _, page := range scan {
		var cands []Line
		for _, l := range lines {
			if l.Page == page && usable(l) && profile.Compare(l.Size) > 0 {
				cands = append(cands, l)
			}
		}
		if len(cands) == 0 {
			continue
		}
		return mergeTitle(lines, cands, page, usable, cfg)
	}

	for _, l := range lines {
		if l.Page == first && usable(l) {
			return Title{Text: cleanTitle(l.Text), Page: first, LineIDs: []int{l.ID}}
		}
	}
	return Title{Page: -1}
}

func mergeTitle(lines, cands []Line, page int, usable func(Line) bool, cfg Config) Title {
	maxSize := 0.0
	for _, l := range cands {
		maxSize = math.Max(maxSize, l.Size)
	}
	sameSize := func(l Line) bool { return math.Abs(l.Size-maxSize) < cfg.SizeTolerance }

	var block []Line
	for _, l := range lines {
		if l.Page != page {
			continue
		}
		if len(block) == 0 {
			if usable(l) && sameSize(l) {
				block = append(block, l)
			}
			continue
		}
		last := block[len(block)-1]
		sameRow := math.Abs(l.CenterY()-last.CenterY()) < cfg.LineTolerance*math.Min(l.Size, last.Size)
		match := usable(l) && sameSize(l)
		switch {
		case match && (sameRow || l.Box.Y0-last.Box.Y1 < cfg.TitleGapFactor*maxSize):
			block = append(block, l)
		case !match && l.Box.Y0 < last.Box.Y1:
			// side-by-side content overlapping the title block
		default:
			return titleFrom(block, page)
		}
	}
	return titleFrom(block, page)
}

func titleFrom(block []Line, page int) Title {
	parts := make([]string, 0, len(block))
	ids := make([]int, 0, len(block))
	for _, l := range block {
		parts = append(parts, l.Text)
		ids = append(ids, l.ID)
	}
	return Title{Text: cleanTitle(strings.Join(parts, " ")), Page: page, LineIDs: ids}
}

func cleanTitle(s string) string {
	return dedupePhrase(undouble(NormalizeText(s)))
}

func firstPage(lines []Line) int {
	if len(lines) == 0 {
		return -1
	}
	return lines[0].Page
}

func nextPage(lines []Line, after int) int {
	for _, l := range lines {
		if l.Page > after {
			return l.Page
		}
	}
	return -1
}
