package outline

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestReconstruct_GroupsAndOrders(t *testing.T) {
	// Runs are supplied bottom-up to make sure output order does not depend on
	// decoder order.
	pages := buildPages(1,
		run{page: 0, text: "Third line", x: 72, y: 200, size: 10},
		run{page: 0, text: "Second line", x: 72, y: 186, size: 10},
		run{page: 0, text: "First line", x: 72, y: 172, size: 10},
	)
	lines := Reconstruct(pages, DefaultConfig())
	want := []string{"First line", "Second line", "Third line"}
	if got := lineTexts(lines); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	for i, l := range lines {
		if l.ID != i {
			t.Errorf("line %d: expected ID %d, got %d", i, i, l.ID)
		}
		if l.Size != 10 || l.Font != "Helvetica" {
			t.Errorf("line %d: unexpected size/font %v/%q", i, l.Size, l.Font)
		}
	}
}

func TestReconstruct_ShuffledGlyphsStayOnLine(t *testing.T) {
	chars := glyphs(run{page: 0, text: "Heading", x: 72, y: 100, size: 12})
	for i, j := 0, len(chars)-1; i < j; i, j = i+1, j-1 {
		chars[i], chars[j] = chars[j], chars[i]
	}
	// Slight baseline jitter must not break the line.
	chars[2].Y0 += 0.4
	chars[2].Y1 += 0.4
	pages := []Page{{Index: 0, Width: pageW, Height: pageH, Chars: chars}}

	lines := Reconstruct(pages, DefaultConfig())
	if len(lines) != 1 || lines[0].Text != "Heading" {
		t.Fatalf("expected one line %q, got %v", "Heading", lineTexts(lines))
	}
}

func TestReconstruct_SplitsColumns(t *testing.T) {
	pages := buildPages(1,
		run{page: 0, text: "Right column", x: 350, y: 100, size: 10},
		run{page: 0, text: "Left column", x: 72, y: 100, size: 10},
	)
	lines := Reconstruct(pages, DefaultConfig())
	want := []string{"Left column", "Right column"}
	if got := lineTexts(lines); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestReconstruct_DropsDegenerateGlyphs(t *testing.T) {
	chars := glyphs(run{page: 0, text: "Kept", x: 72, y: 100, size: 10})
	chars = append(chars,
		Character{Text: "x", X0: 200, Y0: 100, X1: 200, Y1: 110, Size: 10},
		Character{Text: "y", X0: 220, Y0: 100, X1: 225, Y1: 100, Size: 10},
		Character{Text: " ", X0: 72, Y0: 300, X1: 77, Y1: 310, Size: 10},
	)
	pages := []Page{{Index: 0, Width: pageW, Height: pageH, Chars: chars}}

	lines := Reconstruct(pages, DefaultConfig())
	if got := lineTexts(lines); !reflect.DeepEqual(got, []string{"Kept"}) {
		t.Errorf("expected only %q, got %v", "Kept", got)
	}
}

func TestReconstruct_SkipsFailedPages(t *testing.T) {
	pages := buildPages(2,
		run{page: 0, text: "Readable", x: 72, y: 100, size: 10},
		run{page: 1, text: "Broken", x: 72, y: 100, size: 10},
	)
	pages[1].Err = &DecodeError{Page: 1, Err: errors.New("bad stream")}

	lines := Reconstruct(pages, DefaultConfig())
	if len(lines) != 1 || lines[0].Page != 0 {
		t.Fatalf("expected one line from page 0, got %+v", lines)
	}
}

func TestReconstruct_LinesNeverSpanPages(t *testing.T) {
	pages := buildPages(2,
		run{page: 0, text: "Same spot", x: 72, y: 100, size: 10},
		run{page: 1, text: "Same spot", x: 72, y: 100, size: 10},
	)
	lines := Reconstruct(pages, DefaultConfig())
	if len(lines) != 2 || lines[0].Page != 0 || lines[1].Page != 1 {
		t.Fatalf("expected one line per page, got %+v", lines)
	}
}

func TestReconstruct_DoubledGlyphText(t *testing.T) {
	pages := buildPages(1, run{page: 0, text: "RReeqquueesstt", x: 72, y: 100, size: 10})
	lines := Reconstruct(pages, DefaultConfig())
	if len(lines) != 1 || lines[0].Text != "Request" {
		t.Errorf("expected %q, got %v", "Request", lineTexts(lines))
	}
}

func TestDropOverprint(t *testing.T) {
	chars := glyphs(run{page: 0, text: "Bold", x: 72, y: 100, size: 10})
	shadow := glyphs(run{page: 0, text: "Bold", x: 72.4, y: 100.3, size: 10})
	got := dropOverprint(append(chars, shadow...), 0.15)
	if len(got) != 4 {
		t.Fatalf("expected 4 glyphs after overprint removal, got %d", len(got))
	}

	pages := []Page{{Index: 0, Width: pageW, Height: pageH, Chars: append(chars, shadow...)}}
	lines := Reconstruct(pages, DefaultConfig())
	if len(lines) != 1 || lines[0].Text != "Bold" {
		t.Errorf("expected %q, got %v", "Bold", lineTexts(lines))
	}
}

func TestDropFragments(t *testing.T) {
	lines := []Line{
		{ID: 0, Text: "Executive Summary", Box: Box{X0: 72, Y0: 100, X1: 300, Y1: 114}},
		{ID: 1, Text: "Summary", Box: Box{X0: 180, Y0: 100.5, X1: 299, Y1: 113.5}},
		{ID: 2, Text: "Summary", Box: Box{X0: 72, Y0: 400, X1: 140, Y1: 414}},
	}
	got := dropFragments(lines)
	if len(got) != 2 || got[0].ID != 0 || got[1].ID != 2 {
		t.Errorf("expected lines 0 and 2 to survive, got %+v", got)
	}
}

func TestDropFragments_TallContainerAmongManyLines(t *testing.T) {
	var lines []Line
	for i := 0; i < 50; i++ {
		y := 80 + float64(i)*12
		lines = append(lines, Line{ID: i, Text: fmt.Sprintf("row %d", i), Box: Box{X0: 72, Y0: y, X1: 200, Y1: y + 10}})
	}
	banner := Line{ID: 50, Text: "Strategic Plan", Box: Box{X0: 300, Y0: 100, X1: 560, Y1: 160}}
	fragment := Line{ID: 51, Text: "Plan", Box: Box{X0: 480, Y0: 140, X1: 555, Y1: 158}}
	dup := Line{ID: 52, Text: "Strategic Plan", Box: Box{X0: 300, Y0: 100.5, X1: 560, Y1: 160}}
	lines = append(lines, fragment, banner, dup)

	got := dropFragments(lines)
	if len(got) != 51 {
		t.Fatalf("expected 51 lines, got %d", len(got))
	}
	for _, l := range got {
		if l.ID == 51 || l.ID == 52 {
			t.Errorf("expected line %d (%q) to be dropped", l.ID, l.Text)
		}
	}
}

func TestDominantSizeTieGoesLarger(t *testing.T) {
	if got := dominantSize(map[float64]int{10: 5, 12: 5}); got != 12 {
		t.Errorf("expected 12, got %v", got)
	}
}
