package outline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Analyzer turns decoded pages into an outline. It holds no per-document
// state and is safe for concurrent use when its Semantic scorer is.
type Analyzer struct {
	cfg      Config
	semantic Semantic
	logger   *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSemantic enables embedding-based re-ranking of borderline lines.
func WithSemantic(s Semantic) Option {
	return func(a *Analyzer) { a.semantic = s }
}

// WithLogger sets the logger used for per-document diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// New creates an Analyzer. Start cfg from DefaultConfig and override fields;
// a zero Config means the defaults.
func New(cfg Config, opts ...Option) *Analyzer {
	a := &Analyzer{cfg: cfg.withDefaults(), logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Analyze runs the full pipeline over one document. Pages that failed to
// decode are skipped and listed in the report; a document without text yields
// an empty outline.
func (a *Analyzer) Analyze(ctx context.Context, pages []Page) doctree.Document {
	report := doctree.Report{Pages: len(pages)}
	for _, p := range pages {
		if p.Err == nil {
			continue
		}
		report.FailedPages = append(report.FailedPages, p.Index+1)
		var de *DecodeError
		if !errors.As(p.Err, &de) {
			de = &DecodeError{Page: p.Index, Err: p.Err}
		}
		a.logger.Warn("page skipped", "page", p.Index+1, "error", de)
	}

	lines := Reconstruct(pages, a.cfg)
	report.Lines = len(lines)
	if len(lines) == 0 {
		report.Empty = true
		a.logger.Info("no text extracted", "pages", report.Pages, "error", ErrEmptyDocument)
		return doctree.Document{Outline: doctree.Empty(), Report: report}
	}

	bands := DetectBands(lines, a.cfg)
	notRepeated := func(l Line) bool { return !bands.Has(l) }

	base := BuildProfile(filterLines(lines, notRepeated), a.cfg)
	title := SelectTitle(lines, base, bands, a.cfg)

	eligible := func(l Line) bool { return !bands.Has(l) && !title.Has(l) }
	profile := BuildProfile(filterLines(lines, eligible), a.cfg)
	if profile.Body == 0 {
		profile = base
	}
	report.Degraded = profile.Degraded()

	cands := Classify(ctx, lines, eligible, profile, a.cfg, a.semantic)
	cands = MergeWrapped(cands, a.cfg)
	entries := Assemble(cands)

	a.logger.Info("outline built",
		"pages", report.Pages,
		"failed_pages", len(report.FailedPages),
		"lines", report.Lines,
		"bands", bands.Len(),
		"body_size", profile.Body,
		"levels", profile.Levels(),
		"headings", len(entries),
		"degraded", report.Degraded,
	)

	return doctree.Document{
		Outline: doctree.Outline{Title: title.Text, Entries: entries},
		Report:  report,
	}
}

func filterLines(lines []Line, keep func(Line) bool) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}
