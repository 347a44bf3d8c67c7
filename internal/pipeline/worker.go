package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/store"
)

// Worker processes a single document job.
type Worker struct {
	outliner *Outliner
	store    *store.Store
	log      *slog.Logger
}

func NewWorker(outliner *Outliner, st *store.Store, log *slog.Logger) *Worker {
	return &Worker{
		outliner: outliner,
		store:    st,
		log:      log,
	}
}

// Process runs the full outline pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)
	defer job.releaseFileData()

	// Phase 1: dedup by upload hash.
	if !job.Force {
		existing, err := w.store.FindByHash(ctx, job.ContentHash)
		switch {
		case err == nil:
			log.Info("duplicate document, reusing stored outline", "existing_doc_id", existing.DocID)
			job.MarkDuplicate(existing.DocID, existing.Outline.Title, existing.Pages, len(existing.Outline.Entries))
			return
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("dedup check failed, proceeding", "error", err)
		}
	}

	// Phase 2: decode and analyze.
	doc, err := w.outliner.Outline(ctx, job.FileData(), job.Filename, func(s JobStatus) {
		job.SetStatus(s, string(s))
	})
	if err != nil {
		log.Error("outline failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "decoding")
		return
	}
	job.SetResult(doc)
	for _, p := range doc.Report.FailedPages {
		job.AddError(fmt.Sprintf("page %d could not be decoded", p))
	}

	if err := doctree.Validate(doc.Outline); err != nil {
		log.Error("invalid outline", "error", err)
		job.AddError(fmt.Sprintf("validate: %s", err))
		job.SetStatus(StatusFailed, "analyzing")
		return
	}

	// Phase 3: persist.
	job.SetStatus(StatusStoring, "storing")
	status := StatusCompleted
	if doc.Report.Partial() {
		status = StatusPartial
	}
	err = w.store.Put(ctx, store.Record{
		DocID:       job.DocID,
		ContentHash: job.ContentHash,
		Filename:    job.Filename,
		Status:      string(status),
		Outline:     doc.Outline,
		Pages:       doc.Report.Pages,
		FailedPages: doc.Report.FailedPages,
		Degraded:    doc.Report.Degraded,
		CreatedAt:   job.CreatedAt,
	})
	if err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	log.Info("outline stored",
		"status", status,
		"pages", doc.Report.Pages,
		"failed_pages", len(doc.Report.FailedPages),
		"headings", len(doc.Outline.Entries),
		"empty", doc.Report.Empty,
	)
	phase := "done"
	if doc.Report.Empty {
		phase = "no text"
	}
	job.SetStatus(status, phase)
}
