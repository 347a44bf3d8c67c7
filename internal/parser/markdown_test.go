package parser

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Field Guide

Intro text.

## Birds

Birds content.

### Raptors

Raptor content.

## Mammals

Mammal content.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(context.Background(), strings.NewReader(input), "guide.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Outline.Title != "Field Guide" {
		t.Errorf("expected title %q, got %q", "Field Guide", doc.Outline.Title)
	}
	want := []doctree.Entry{
		{Level: 2, Text: "Birds", Page: 1},
		{Level: 3, Text: "Raptors", Page: 1},
		{Level: 2, Text: "Mammals", Page: 1},
	}
	if !reflect.DeepEqual(doc.Outline.Entries, want) {
		t.Errorf("expected %+v, got %+v", want, doc.Outline.Entries)
	}
}

func TestMarkdownParser_SeveralTopHeadingsKeepStem(t *testing.T) {
	input := "# One\n\ntext\n\n# Two\n\ntext\n"
	doc, err := (&MarkdownParser{}).Parse(context.Background(), strings.NewReader(input), "docs/notes.markdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Outline.Title != "notes" {
		t.Errorf("expected stem title %q, got %q", "notes", doc.Outline.Title)
	}
	if len(doc.Outline.Entries) != 2 {
		t.Errorf("expected both H1 entries, got %+v", doc.Outline.Entries)
	}
}

func TestMarkdownParser_InlineMarkupAndSetext(t *testing.T) {
	input := "Overview\n========\n\n## The *quick* `fox`\n\nbody\n"
	doc, err := (&MarkdownParser{}).Parse(context.Background(), strings.NewReader(input), "x.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Outline.Title != "Overview" {
		t.Errorf("expected setext H1 as title, got %q", doc.Outline.Title)
	}
	if len(doc.Outline.Entries) != 1 || doc.Outline.Entries[0].Text != "The quick fox" {
		t.Errorf("expected markup stripped from heading, got %+v", doc.Outline.Entries)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	doc, err := (&MarkdownParser{}).Parse(context.Background(), strings.NewReader("just a paragraph\n"), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Outline.Entries == nil || len(doc.Outline.Entries) != 0 {
		t.Errorf("expected empty non-nil outline, got %#v", doc.Outline.Entries)
	}
	if !doc.Report.Empty {
		t.Error("expected report to flag no headings")
	}
}
