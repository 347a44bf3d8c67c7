package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "outlines.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(id, hash string, created time.Time) Record {
	return Record{
		DocID:       id,
		ContentHash: hash,
		Filename:    id + ".pdf",
		Status:      "completed",
		Outline: doctree.Outline{
			Title: "Quarterly Results",
			Entries: []doctree.Entry{
				{Level: 1, Text: "Overview", Page: 1},
				{Level: 2, Text: "Naïve Forecast", Page: 3},
			},
		},
		Pages:       3,
		FailedPages: []int{2},
		CreatedAt:   created,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created := time.UnixMilli(1_700_000_000_000)
	want := sampleRecord("doc-1", "abc", created)

	if err := s.Put(ctx, want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at: expected %v, got %v", created, got.CreatedAt)
	}
	got.CreatedAt = want.CreatedAt
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("expected %+v, got %+v", want, *got)
	}
}

func TestPutReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := sampleRecord("doc-1", "abc", time.Now())
	if err := s.Put(ctx, r); err != nil {
		t.Fatal(err)
	}
	r.Outline.Title = "Revised"
	r.FailedPages = nil
	if err := s.Put(ctx, r); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Outline.Title != "Revised" || got.FailedPages != nil {
		t.Errorf("expected replaced record, got %+v", got)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.FindByHash(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByHashNewest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)
	for i, id := range []string{"old", "new"} {
		if err := s.Put(ctx, sampleRecord(id, "same", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Put(ctx, sampleRecord("other", "different", base.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	got, err := s.FindByHash(ctx, "same")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.DocID != "new" {
		t.Errorf("expected newest match, got %s", got.DocID)
	}
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)
	for i, id := range []string{"a", "b", "c"} {
		if err := s.Put(ctx, sampleRecord(id, id, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].DocID != "c" || list[1].DocID != "b" {
		t.Fatalf("expected [c b], got %+v", list)
	}
	if list[0].Headings != 2 || list[0].Title != "Quarterly Results" {
		t.Errorf("unexpected summary %+v", list[0])
	}

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	list, err = s.List(ctx, 10, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].DocID != "a" {
		t.Errorf("expected [a] at offset 1, got %+v", list)
	}
}

func TestPutRequiresID(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put(context.Background(), Record{}); err == nil {
		t.Error("expected error for empty doc_id")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outlines.db")
	ctx := context.Background()
	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, sampleRecord("persist", "h", time.Now())); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.Get(ctx, "persist"); err != nil {
		t.Errorf("expected record after reopen, got %v", err)
	}
}
