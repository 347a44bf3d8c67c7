package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
)

// ErrUnreadable means the document could not be opened at all.
var ErrUnreadable = errors.New("document unreadable")

// Parser converts raw document bytes into an outline.
type Parser interface {
	Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Document, error)
}

// Options are shared by all parsers.
type Options struct {
	Analyzer  *outline.Analyzer // required for PDF and plain text
	RepairPDF bool              // rewrite unreadable PDFs with pdfcpu and retry
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".epub":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	if opts.Analyzer == nil {
		opts.Analyzer = outline.New(outline.DefaultConfig())
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{Analyzer: opts.Analyzer, Repair: opts.RepairPDF}, nil
	case ".txt":
		return &TextParser{Analyzer: opts.Analyzer}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".epub":
		return &EPUBParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Extensions returns the supported extensions in sorted order.
func Extensions() []string {
	out := make([]string, 0, len(SupportedExtensions))
	for ext := range SupportedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// stem is the filename without directory or extension.
func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// headingCollector gathers explicit headings from formats that mark them up.
// A leading H1 that is the only H1 becomes the title.
type headingCollector struct {
	entries     []doctree.Entry
	keepLeading bool // the title comes from metadata; leave a leading H1 alone
}

func (c *headingCollector) add(level int, text string, page int) {
	text = outline.NormalizeText(text)
	if text == "" || level < 1 {
		return
	}
	c.entries = append(c.entries, doctree.Entry{Level: doctree.Level(level), Text: text, Page: page})
}

func (c *headingCollector) document(fallbackTitle string, pages int) *doctree.Document {
	title := fallbackTitle
	entries := c.entries
	if !c.keepLeading && len(entries) > 0 && entries[0].Level == 1 && !hasLevel(entries[1:], 1) {
		title = entries[0].Text
		entries = entries[1:]
	}
	if entries == nil {
		entries = []doctree.Entry{}
	}
	return &doctree.Document{
		Outline: doctree.Outline{Title: title, Entries: entries},
		Report:  doctree.Report{Pages: pages, Lines: len(c.entries), Empty: len(c.entries) == 0},
	}
}

func hasLevel(entries []doctree.Entry, level doctree.Level) bool {
	for _, e := range entries {
		if e.Level == level {
			return true
		}
	}
	return false
}
