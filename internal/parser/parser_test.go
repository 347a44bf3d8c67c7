package parser

import (
	"reflect"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     any
	}{
		{"a.pdf", &PDFParser{}},
		{"B.PDF", &PDFParser{}},
		{"notes.txt", &TextParser{}},
		{"readme.md", &MarkdownParser{}},
		{"readme.markdown", &MarkdownParser{}},
		{"page.html", &HTMLParser{}},
		{"page.htm", &HTMLParser{}},
		{"memo.docx", &DOCXParser{}},
		{"book.epub", &EPUBParser{}},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, Options{})
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.filename, err)
			continue
		}
		if reflect.TypeOf(p) != reflect.TypeOf(tt.want) {
			t.Errorf("%s: expected %T, got %T", tt.filename, tt.want, p)
		}
	}

	if _, err := ForFile("data.csv", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestForFile_SharesAnalyzer(t *testing.T) {
	a := testAnalyzer()
	p, err := ForFile("x.pdf", Options{Analyzer: a, RepairPDF: true})
	if err != nil {
		t.Fatal(err)
	}
	pp := p.(*PDFParser)
	if pp.Analyzer != a || !pp.Repair {
		t.Errorf("expected options to be passed through, got %+v", pp)
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("Report.PDF") {
		t.Error("expected .PDF to be supported")
	}
	if IsSupportedExtension("sheet.xlsx") || IsSupportedExtension("noext") {
		t.Error("expected unsupported extensions to be rejected")
	}
}

func TestExtensions_Sorted(t *testing.T) {
	got := Extensions()
	want := []string{".docx", ".epub", ".htm", ".html", ".markdown", ".md", ".pdf", ".txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestStem(t *testing.T) {
	if got := stem("/tmp/up/Annual Report.v2.pdf"); got != "Annual Report.v2" {
		t.Errorf("unexpected stem %q", got)
	}
}
