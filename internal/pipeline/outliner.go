package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

// Outliner turns one file into an outline. It is shared by the queue workers
// and the synchronous extract endpoint.
type Outliner struct {
	opts parser.Options
}

func NewOutliner(analyzer *outline.Analyzer, repairPDF bool) *Outliner {
	return &Outliner{opts: parser.Options{Analyzer: analyzer, RepairPDF: repairPDF}}
}

// Outline parses data according to the filename's extension. phase, when not
// nil, is told when decoding ends and analysis begins.
func (o *Outliner) Outline(ctx context.Context, data []byte, filename string, phase func(JobStatus)) (*doctree.Document, error) {
	if phase == nil {
		phase = func(JobStatus) {}
	}
	phase(StatusDecoding)

	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		pages, err := parser.DecodePDF(ctx, data, o.opts.RepairPDF)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", filename, err)
		}
		phase(StatusAnalyzing)
		doc := o.opts.Analyzer.Analyze(ctx, pages)
		return &doc, nil
	}

	p, err := parser.ForFile(filename, o.opts)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(ctx, bytes.NewReader(data), filename)
	if err != nil {
		return nil, err
	}
	phase(StatusAnalyzing)
	return doc, nil
}
