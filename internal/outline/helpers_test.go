package outline

import (
	"io"
	"log/slog"
)

const (
	pageW = 612.0
	pageH = 792.0
)

// run places text on a page the way a simple PDF producer would: one glyph per
// rune, half an em wide, spaces as gaps.
type run struct {
	page int
	text string
	x, y float64
	size float64
	font string
}

func glyphs(r run) []Character {
	font := r.font
	if font == "" {
		font = "Helvetica"
	}
	adv := r.size * 0.5
	x := r.x
	var out []Character
	for _, ch := range r.text {
		if ch == ' ' {
			x += adv
			continue
		}
		out = append(out, Character{
			Text: string(ch),
			Page: r.page,
			X0:   x,
			Y0:   r.y,
			X1:   x + adv,
			Y1:   r.y + r.size,
			Font: font,
			Size: r.size,
		})
		x += adv
	}
	return out
}

func buildPages(n int, runs ...run) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{Index: i, Width: pageW, Height: pageH}
	}
	for _, r := range runs {
		pages[r.page].Chars = append(pages[r.page].Chars, glyphs(r)...)
	}
	return pages
}

func quietAnalyzer(opts ...Option) *Analyzer {
	return New(DefaultConfig(), append([]Option{WithLogger(newTestLogger(io.Discard))}, opts...)...)
}

func lineTexts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

// body returns a paragraph of sentences at 10pt starting at y, one per line.
func body(page int, y float64, sentences ...string) []run {
	var out []run
	for i, s := range sentences {
		out = append(out, run{page: page, text: s, x: 72, y: y + float64(i)*14, size: 10})
	}
	return out
}

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil))
}
