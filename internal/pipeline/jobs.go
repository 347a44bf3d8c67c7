package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/google/uuid"
)

// JobStatus represents the state of an outline job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusDecoding  JobStatus = "decoding"
	StatusAnalyzing JobStatus = "analyzing"
	StatusStoring   JobStatus = "storing"
	StatusCompleted JobStatus = "completed"
	StatusPartial   JobStatus = "partial"
	StatusFailed    JobStatus = "failed"
	StatusDuplicate JobStatus = "duplicate"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	switch s {
	case StatusCompleted, StatusPartial, StatusFailed, StatusDuplicate:
		return true
	}
	return false
}

// NewID returns a time-ordered identifier for jobs and documents.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Job tracks the state of a single document.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	DocID string `json:"doc_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	DuplicateOf string    `json:"duplicate_of,omitempty"`
	Force       bool      `json:"force"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Pages       int      `json:"pages"`
	FailedPages []int    `json:"failed_pages"`
	Headings    int      `json:"headings"`
	Degraded    bool     `json:"degraded"`
	Errors      []string `json:"errors"`
}

// NewJob creates a queued job for an uploaded file.
func NewJob(docID, filename string, data []byte, force bool) *Job {
	now := time.Now()
	if docID == "" {
		docID = NewID()
	}
	return &Job{
		ID:          NewID(),
		DocID:       docID,
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		Force:       force,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs not touched within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Done() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetResult copies the outcome of an outline run into the job.
func (j *Job) SetResult(doc *doctree.Document) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = doc.Outline.Title
	j.Progress.Pages = doc.Report.Pages
	j.Progress.FailedPages = append([]int(nil), doc.Report.FailedPages...)
	j.Progress.Headings = len(doc.Outline.Entries)
	j.Progress.Degraded = doc.Report.Degraded
	j.UpdatedAt = time.Now()
}

// MarkDuplicate points the job at an already stored document.
func (j *Job) MarkDuplicate(existingDocID, title string, pages, headings int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.DuplicateOf = existingDocID
	j.Title = title
	j.Progress.Pages = pages
	j.Progress.Headings = headings
	j.Status = StatusDuplicate
	j.Phase = "dedup"
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFileData drops the upload once the job no longer needs it.
func (j *Job) releaseFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DocID       string    `json:"doc_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	DuplicateOf string    `json:"duplicate_of,omitempty"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	failed := append([]int{}, j.Progress.FailedPages...)
	return JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		DuplicateOf: j.DuplicateOf,
		Progress: Progress{
			Pages:       j.Progress.Pages,
			FailedPages: failed,
			Headings:    j.Progress.Headings,
			Degraded:    j.Progress.Degraded,
			Errors:      errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
