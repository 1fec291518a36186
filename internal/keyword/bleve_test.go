package keyword

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/susume/internal/models"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndexAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	videos := []*models.Video{
		{VideoID: "v1", Title: "Intro to Rust", ChannelName: "RustConf"},
		{VideoID: "v2", Title: "Python data pipelines", Description: "pandas and airflow"},
		{VideoID: "v3", Title: "Watercolor painting basics"},
	}
	for _, v := range videos {
		if err := idx.Index(ctx, v); err != nil {
			t.Fatalf("Index(%s): %v", v.VideoID, err)
		}
	}

	results, err := idx.Search(ctx, "rust", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].VideoID != "v1" {
		t.Fatalf("search rust: got %+v", results)
	}
	if results[0].Title != "Intro to Rust" {
		t.Errorf("title field: got %q", results[0].Title)
	}

	// Description matches count too.
	results, _ = idx.Search(ctx, "pandas", 10)
	if len(results) != 1 || results[0].VideoID != "v2" {
		t.Errorf("search pandas: got %+v", results)
	}
}

func TestDelete(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	idx.Index(ctx, &models.Video{VideoID: "v1", Title: "Intro to Rust"})
	if err := idx.Delete(ctx, "v1"); err != nil {
		t.Fatal(err)
	}
	results, _ := idx.Search(ctx, "rust", 10)
	if len(results) != 0 {
		t.Errorf("expected no hits after delete, got %+v", results)
	}
}

func TestReopenExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bleve")
	idx, err := NewBleveIndex(dir)
	if err != nil {
		t.Fatal(err)
	}
	idx.Index(context.Background(), &models.Video{VideoID: "v1", Title: "persistent entry"})
	idx.Close()

	reopened, err := NewBleveIndex(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	count, err := reopened.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count after reopen: got %d", count)
	}
}
