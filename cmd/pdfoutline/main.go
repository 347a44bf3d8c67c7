// Command pdfoutline writes <name>.json outlines for every supported document
// in an input directory.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

type result struct {
	name     string
	pages    int
	failed   int
	headings int
	degraded bool
	elapsed  time.Duration
	err      error
}

func main() {
	var (
		inDir      = flag.String("in", "input", "directory of documents to outline")
		outDir     = flag.String("out", "output", "directory for <name>.json results")
		workers    = flag.Int("workers", runtime.NumCPU(), "documents processed in parallel")
		tree       = flag.Bool("tree", false, "write the nested heading tree instead of the flat outline")
		repair     = flag.Bool("repair", true, "retry unreadable PDFs after a pdfcpu rewrite")
		configFile = flag.String("config", "", "YAML tuning file")
		quiet      = flag.Bool("quiet", false, "suppress the summary table")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	tuning := config.File{Analyzer: outline.DefaultConfig()}
	if *configFile != "" {
		f, err := config.LoadFile(*configFile)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		tuning = f
	}

	files, err := listInputs(*inDir)
	if err != nil {
		log.Error("list inputs", "dir", *inDir, "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Error("create output dir", "dir", *outDir, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outliner := pipeline.NewOutliner(outline.New(tuning.Analyzer, outline.WithLogger(log)), *repair)

	var (
		mu      sync.Mutex
		results []result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*workers, 1))
	for _, path := range files {
		g.Go(func() error {
			r := outlineFile(gctx, outliner, path, *outDir, *tree)
			if r.err != nil {
				log.Warn("outline failed", "file", path, "error", r.err)
			}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			// A bad document never stops the batch; only cancellation does.
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("batch interrupted", "error", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].name < results[j].name })
	if !*quiet {
		fmt.Fprint(os.Stderr, summary(results))
	}
	for _, r := range results {
		if r.err != nil {
			os.Exit(1)
		}
	}
}

func listInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func outlineFile(ctx context.Context, o *pipeline.Outliner, path, outDir string, tree bool) result {
	start := time.Now()
	r := result{name: filepath.Base(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		r.err = err
		return r
	}
	doc, err := o.Outline(ctx, data, path, nil)
	if err != nil {
		if !errors.Is(err, parser.ErrUnreadable) {
			r.err = err
			return r
		}
		// Unreadable input still gets an empty outline file.
		doc = &doctree.Document{Outline: doctree.Empty()}
		r.err = err
	}
	r.pages = doc.Report.Pages
	r.failed = len(doc.Report.FailedPages)
	r.headings = len(doc.Outline.Entries)
	r.degraded = doc.Report.Degraded

	var v any = doc.Outline
	if tree {
		nodes := doctree.Nest(doc.Outline.Entries)
		if nodes == nil {
			nodes = []*doctree.Node{}
		}
		v = struct {
			Title string          `json:"title"`
			Tree  []*doctree.Node `json:"tree"`
		}{doc.Outline.Title, nodes}
	}

	stem := strings.TrimSuffix(r.name, filepath.Ext(r.name))
	if err := writeJSON(filepath.Join(outDir, stem+".json"), v); err != nil && r.err == nil {
		r.err = err
	}
	r.elapsed = time.Since(start)
	return r
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func summary(results []result) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-32s %6s %6s %8s %8s", "document", "pages", "failed", "headings", "time")))
	b.WriteByte('\n')
	var ok, failed int
	for _, r := range results {
		line := fmt.Sprintf("%-32s %6d %6d %8d %8s", clip(r.name, 32), r.pages, r.failed, r.headings, r.elapsed.Round(time.Millisecond))
		switch {
		case r.err != nil:
			failed++
			b.WriteString(failStyle.Render(line))
			b.WriteString(dimStyle.Render("  " + r.err.Error()))
		case r.failed > 0 || r.degraded:
			ok++
			b.WriteString(warnStyle.Render(line))
		default:
			ok++
			b.WriteString(okStyle.Render(line))
		}
		b.WriteByte('\n')
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d outlined, %d failed", ok, failed)))
	b.WriteByte('\n')
	return b.String()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
