package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
)

// Plain text is laid out as a fixed-pitch page so the outline analyzer can
// use indentation and blank lines the same way it uses PDF geometry.
const (
	textFont     = "Courier"
	textSize     = 10.0
	textAdvance  = 6.0
	textLeading  = 14.0
	textMargin   = 72.0
	textPageW    = 612.0
	textPageH    = 792.0
	textTabWidth = 4
)

// textRowsPerPage is how many leading-spaced rows fit between the margins.
const textRowsPerPage = 46

// TextParser runs plain text through the outline analyzer. Form feeds start a
// new page, as do pages that fill up.
type TextParser struct {
	Analyzer *outline.Analyzer
}

func (p *TextParser) Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Document, error) {
	pages, err := layoutText(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	doc := p.Analyzer.Analyze(ctx, pages)
	if doc.Outline.Title == "" && !doc.Report.Empty {
		doc.Outline.Title = stem(filename)
	}
	return &doc, nil
}

func layoutText(r io.Reader) ([]outline.Page, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pages []outline.Page
	row := 0
	newPage := func() {
		pages = append(pages, outline.Page{Index: len(pages), Width: textPageW, Height: textPageH})
		row = 0
	}
	newPage()

	for scanner.Scan() {
		segments := strings.Split(scanner.Text(), "\f")
		for i, seg := range segments {
			if i > 0 {
				newPage()
			}
			if i > 0 && seg == "" {
				continue
			}
			if row >= textRowsPerPage {
				newPage()
			}
			page := &pages[len(pages)-1]
			page.Chars = append(page.Chars, textGlyphs(seg, page.Index, row)...)
			row++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pages, nil
}

func textGlyphs(line string, page, row int) []outline.Character {
	y0 := textMargin + float64(row)*textLeading
	var out []outline.Character
	col := 0
	for _, ch := range line {
		switch ch {
		case '\t':
			col += textTabWidth - col%textTabWidth
			continue
		case ' ', '\r':
			col++
			continue
		}
		x0 := textMargin + float64(col)*textAdvance
		out = append(out, outline.Character{
			Text: string(ch),
			Page: page,
			X0:   x0,
			Y0:   y0,
			X1:   x0 + textAdvance,
			Y1:   y0 + textSize,
			Font: textFont,
			Size: textSize,
		})
		col++
	}
	return out
}
