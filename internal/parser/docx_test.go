package parser

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDocxHeadingLevel(t *testing.T) {
	tests := []struct {
		style string
		want  int
	}{
		{"Heading1", 1},
		{"heading 2", 2},
		{"HEADING 9", 9},
		{"Heading10", 0},
		{"Title", 0},
		{"Normal", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := docxHeadingLevel(tt.style); got != tt.want {
			t.Errorf("docxHeadingLevel(%q): expected %d, got %d", tt.style, tt.want, got)
		}
	}
}

func TestDOCXParser_NotAZip(t *testing.T) {
	_, err := (&DOCXParser{}).Parse(context.Background(), strings.NewReader("plain bytes"), "broken.docx")
	if !errors.Is(err, ErrUnreadable) {
		t.Errorf("expected ErrUnreadable, got %v", err)
	}
}
