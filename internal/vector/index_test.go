package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/hyperjump/susume/internal/models"
)

// memArchive keeps the last saved snapshot in memory.
type memArchive struct {
	snap  *Snapshot
	saves int
	fail  bool
}

func (a *memArchive) Save(snap *Snapshot) error {
	if a.fail {
		return errors.New("disk full")
	}
	// Deep-copy so later index mutations don't alias the stored snapshot.
	cp := &Snapshot{
		Dimensions: snap.Dimensions,
		IDs:        append([]string(nil), snap.IDs...),
		Metadata:   make(map[string]models.VideoMetadata, len(snap.Metadata)),
	}
	for _, v := range snap.Vectors {
		cp.Vectors = append(cp.Vectors, append([]float32(nil), v...))
	}
	for k, v := range snap.Metadata {
		cp.Metadata[k] = v
	}
	a.snap = cp
	a.saves++
	return nil
}

func (a *memArchive) Load() (*Snapshot, error) { return a.snap, nil }
func (a *memArchive) Close() error             { return nil }

func unit(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis] = 1
	return v
}

func TestAddIsIdempotent(t *testing.T) {
	idx, err := NewVideoIndex(4, nil)
	if err != nil {
		t.Fatal(err)
	}
	added, err := idx.Add("v1", unit(4, 0), models.VideoMetadata{Title: "Intro to Rust"})
	if err != nil || !added {
		t.Fatalf("first add: added=%v err=%v", added, err)
	}
	added, err = idx.Add("v1", unit(4, 1), models.VideoMetadata{Title: "Other"})
	if err != nil || added {
		t.Fatalf("second add: added=%v err=%v", added, err)
	}
	if idx.Count() != 1 {
		t.Errorf("count: got %d, want 1", idx.Count())
	}
	// Duplicate add is a no-op: the original metadata survives.
	meta, _ := idx.Metadata("v1")
	if meta.Title != "Intro to Rust" {
		t.Errorf("metadata overwritten: got %q", meta.Title)
	}
}

func TestSearchOrderingAndExclusion(t *testing.T) {
	idx, _ := NewVideoIndex(3, nil)
	idx.Add("a", []float32{1, 0, 0}, models.VideoMetadata{Title: "a"})
	idx.Add("b", []float32{0.8, 0.6, 0}, models.VideoMetadata{Title: "b"})
	idx.Add("c", []float32{0, 0, 1}, models.VideoMetadata{Title: "c"})

	results, err := idx.Search([]float32{1, 0, 0}, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results: got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at %d: %v > %v", i, results[i].Score, results[i-1].Score)
		}
	}
	if results[0].VideoID != "a" {
		t.Errorf("best match: got %s", results[0].VideoID)
	}

	excluded, _ := idx.Search([]float32{1, 0, 0}, 3, map[string]bool{"a": true})
	for _, r := range excluded {
		if r.VideoID == "a" {
			t.Error("excluded id present in results")
		}
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	idx, _ := NewVideoIndex(2, nil)
	results, err := idx.Search([]float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("empty index should return no results, got %d", len(results))
	}
}

func TestSearchCapsKAtSize(t *testing.T) {
	idx, _ := NewVideoIndex(2, nil)
	idx.Add("only", []float32{1, 0}, models.VideoMetadata{})
	results, _ := idx.Search([]float32{1, 0}, 10, nil)
	if len(results) != 1 {
		t.Errorf("k should be capped at index size, got %d", len(results))
	}
}

func TestSearchByID(t *testing.T) {
	idx, _ := NewVideoIndex(2, nil)
	idx.Add("a", []float32{1, 0}, models.VideoMetadata{})
	idx.Add("b", []float32{0, 1}, models.VideoMetadata{})

	results, err := idx.SearchByID("a", 2, map[string]bool{"a": true})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].VideoID != "b" {
		t.Errorf("got %+v", results)
	}

	if _, err := idx.SearchByID("missing", 2, nil); !errors.Is(err, ErrNotIndexed) {
		t.Errorf("expected ErrNotIndexed, got %v", err)
	}
}

func TestRemoveRebuildPreservesPositions(t *testing.T) {
	idx, _ := NewVideoIndex(4, nil)
	ids := []string{"a", "b", "c", "d"}
	for i, id := range ids {
		idx.Add(id, unit(4, i), models.VideoMetadata{Title: id})
	}

	removed, err := idx.Remove("b")
	if err != nil || !removed {
		t.Fatalf("remove: removed=%v err=%v", removed, err)
	}
	if idx.Count() != 3 {
		t.Fatalf("count after remove: got %d", idx.Count())
	}

	// Every remaining id must still resolve to its own row: searching by id
	// returns itself first with score ~1.
	for _, id := range []string{"a", "c", "d"} {
		results, err := idx.SearchByID(id, idx.Count(), nil)
		if err != nil {
			t.Fatalf("SearchByID(%s): %v", id, err)
		}
		if results[0].VideoID != id {
			t.Errorf("row mapping broken for %s: top hit %s", id, results[0].VideoID)
		}
		if math.Abs(results[0].Score-1.0) > 1e-4 {
			t.Errorf("self-similarity for %s: got %v", id, results[0].Score)
		}
	}

	removed, err = idx.Remove("b")
	if err != nil || removed {
		t.Errorf("second remove: removed=%v err=%v", removed, err)
	}
}

func TestPersistFailureRollsBack(t *testing.T) {
	arch := &memArchive{}
	idx, err := NewVideoIndex(2, arch)
	if err != nil {
		t.Fatal(err)
	}
	idx.Add("keep", []float32{1, 0}, models.VideoMetadata{})

	arch.fail = true
	added, err := idx.Add("new", []float32{0, 1}, models.VideoMetadata{})
	if added || !errors.Is(err, ErrPersistence) {
		t.Fatalf("add with failing archive: added=%v err=%v", added, err)
	}
	if idx.Count() != 1 || idx.Has("new") {
		t.Error("failed add should leave no trace in memory")
	}

	removed, err := idx.Remove("keep")
	if removed || !errors.Is(err, ErrPersistence) {
		t.Fatalf("remove with failing archive: removed=%v err=%v", removed, err)
	}
	if !idx.Has("keep") || idx.Count() != 1 {
		t.Error("failed remove should leave the entry in place")
	}

	// Once the archive recovers, the same operations apply cleanly.
	arch.fail = false
	if added, err := idx.Add("new", []float32{0, 1}, models.VideoMetadata{}); !added || err != nil {
		t.Errorf("add after recovery: added=%v err=%v", added, err)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	arch := &memArchive{}
	idx, _ := NewVideoIndex(3, arch)
	idx.Add("a", []float32{1, 0, 0}, models.VideoMetadata{Title: "A", ChannelName: "ch"})
	idx.Add("b", []float32{0, 1, 0}, models.VideoMetadata{Title: "B"})

	reloaded, err := NewVideoIndex(3, arch)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Count() != 2 {
		t.Fatalf("reloaded count: got %d", reloaded.Count())
	}
	meta, ok := reloaded.Metadata("a")
	if !ok || meta.Title != "A" || meta.ChannelName != "ch" {
		t.Errorf("reloaded metadata: got %+v", meta)
	}
	results, _ := reloaded.SearchByID("b", 1, nil)
	if results[0].VideoID != "b" || math.Abs(results[0].Score-1.0) > 1e-4 {
		t.Errorf("reloaded rows broken: %+v", results[0])
	}
}

func TestDimensionMismatch(t *testing.T) {
	idx, _ := NewVideoIndex(4, nil)
	if _, err := idx.Add("v", []float32{1, 0}, models.VideoMetadata{}); err == nil {
		t.Error("expected dimension error on add")
	}
	if _, err := idx.Search([]float32{1}, 3, nil); err == nil {
		t.Error("expected dimension error on search")
	}
	if _, err := NewVideoIndex(0, nil); err == nil {
		t.Error("expected error for non-positive dimensions")
	}
}
