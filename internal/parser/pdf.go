package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Glyph box extents relative to the baseline, as fractions of font size.
const (
	ascent  = 0.8
	descent = 0.2
)

// PDFParser decodes positioned glyphs with ledongthuc/pdf and hands them to
// the outline analyzer. When the file cannot be opened and Repair is set, it
// is rewritten with pdfcpu in relaxed mode and read again.
type PDFParser struct {
	Analyzer *outline.Analyzer
	Repair   bool
}

func (p *PDFParser) Parse(ctx context.Context, r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	pages, err := DecodePDF(ctx, data, p.Repair)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	doc := p.Analyzer.Analyze(ctx, pages)
	return &doc, nil
}

// DecodePDF returns one Page per physical page. A page that fails to decode
// carries its error and no characters; only a document that cannot be opened
// at all returns an error.
func DecodePDF(ctx context.Context, data []byte, repair bool) ([]outline.Page, error) {
	reader, err := openPDF(data)
	if err != nil && repair {
		fixed, rerr := repairPDF(data)
		if rerr != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
		}
		reader, err = openPDF(fixed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	n, err := numPages(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	pages := make([]outline.Page, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, decodePage(reader, i))
	}
	return pages, nil
}

// openPDF guards against the panics ledongthuc/pdf raises on malformed input.
func openPDF(data []byte) (r *pdflib.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
}

func numPages(r *pdflib.Reader) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("page tree: %v", rec)
		}
	}()
	return r.NumPage(), nil
}

func decodePage(r *pdflib.Reader, index int) (page outline.Page) {
	page = outline.Page{Index: index}
	defer func() {
		if rec := recover(); rec != nil {
			page = outline.Page{Index: index, Err: &outline.DecodeError{Page: index, Err: fmt.Errorf("%v", rec)}}
		}
	}()

	p := r.Page(index + 1)
	if p.V.IsNull() {
		page.Err = &outline.DecodeError{Page: index, Err: fmt.Errorf("missing page object")}
		return page
	}

	llx, lly, urx, ury := mediaBox(p.V)
	page.Width, page.Height = urx-llx, ury-lly

	for _, t := range p.Content().Text {
		// Space glyphs are kept: they are often the only word break.
		if t.S == "" || t.FontSize <= 0 {
			continue
		}
		base := ury - t.Y
		x0 := t.X - llx
		page.Chars = append(page.Chars, outline.Character{
			Text: t.S,
			Page: index,
			X0:   x0,
			Y0:   base - ascent*t.FontSize,
			X1:   x0 + t.W,
			Y1:   base + descent*t.FontSize,
			Font: t.Font,
			Size: t.FontSize,
		})
	}
	return page
}

// mediaBox resolves the inherited MediaBox, defaulting to US Letter.
func mediaBox(v pdflib.Value) (llx, lly, urx, ury float64) {
	for ; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.IsNull() || box.Len() != 4 {
			continue
		}
		llx, lly = box.Index(0).Float64(), box.Index(1).Float64()
		urx, ury = box.Index(2).Float64(), box.Index(3).Float64()
		if urx > llx && ury > lly {
			return llx, lly, urx, ury
		}
	}
	return 0, 0, 612, 792
}

func repairPDF(data []byte) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	var buf bytes.Buffer
	if err := api.WriteContext(pctx, &buf); err != nil {
		return nil, fmt.Errorf("pdfcpu write: %w", err)
	}
	return buf.Bytes(), nil
}
