package vector

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperjump/susume/internal/models"
)

// ErrNotIndexed marks a lookup for a video absent from the index.
var ErrNotIndexed = errors.New("video not indexed")

// ErrPersistence marks a durable-storage write that failed after an in-memory
// mutation was computed. The mutation is rolled back before this is returned,
// so in-memory and durable state never diverge.
var ErrPersistence = errors.New("index persistence failed")

// Snapshot is the persisted form of the index: vector rows plus the side-car
// (ordered ids and display metadata). Both travel together so that a reload
// restores the positional correspondence exactly.
type Snapshot struct {
	Dimensions int
	IDs        []string
	Vectors    [][]float32
	Metadata   map[string]models.VideoMetadata
}

// Archive persists index snapshots. Save must write the whole snapshot as a
// unit: after a crash, Load returns either the previous complete snapshot or
// the new one, never a mix.
type Archive interface {
	Save(snap *Snapshot) error
	Load() (*Snapshot, error)
	Close() error
}

// Result is a single similarity hit.
type Result struct {
	VideoID  string
	Score    float64
	Metadata models.VideoMetadata
}

// VideoIndex is a brute-force inner-product index over normalized video
// embeddings. The position of an id in ids is exactly its row index in
// vectors; every mutation preserves that correspondence. One instance is
// shared process-wide; a single RWMutex serializes writers against readers.
//
// The index never renormalizes vectors. Unit norm is the embedder's contract;
// violating it degrades ranking quality silently rather than failing.
type VideoIndex struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	metadata   map[string]models.VideoMetadata
	archive    Archive
	mu         sync.RWMutex
}

// NewVideoIndex creates an index with the given dimension, restoring any
// previously persisted state from archive. A nil archive keeps the index
// memory-only (used in tests).
func NewVideoIndex(dimensions int, archive Archive) (*VideoIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	idx := &VideoIndex{
		dimensions: dimensions,
		ids:        make([]string, 0),
		vectors:    make([][]float32, 0),
		metadata:   make(map[string]models.VideoMetadata),
		archive:    archive,
	}
	if archive != nil {
		snap, err := archive.Load()
		if err != nil {
			return nil, fmt.Errorf("load index: %w", err)
		}
		if snap != nil {
			if snap.Dimensions != dimensions {
				return nil, fmt.Errorf("dimension mismatch: archive has %d, index expects %d", snap.Dimensions, dimensions)
			}
			if len(snap.IDs) != len(snap.Vectors) {
				return nil, fmt.Errorf("corrupt snapshot: %d ids, %d vectors", len(snap.IDs), len(snap.Vectors))
			}
			idx.ids = snap.IDs
			idx.vectors = snap.Vectors
			if snap.Metadata != nil {
				idx.metadata = snap.Metadata
			}
		}
	}
	return idx, nil
}

// Add appends a video embedding with its display metadata and persists.
// Returns false (no mutation) when the id is already present, which makes
// indexing idempotent under retries: the first concurrent writer wins.
func (x *VideoIndex) Add(videoID string, vec []float32, meta models.VideoMetadata) (bool, error) {
	if len(vec) != x.dimensions {
		return false, fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vec), x.dimensions)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.metadata[videoID]; ok {
		return false, nil
	}

	row := make([]float32, x.dimensions)
	copy(row, vec)
	x.ids = append(x.ids, videoID)
	x.vectors = append(x.vectors, row)
	x.metadata[videoID] = meta

	if err := x.persistLocked(); err != nil {
		x.ids = x.ids[:len(x.ids)-1]
		x.vectors = x.vectors[:len(x.vectors)-1]
		delete(x.metadata, videoID)
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return true, nil
}

// Search returns the top-k rows by inner product against query, descending,
// skipping ids in exclude. An empty index yields an empty result. k is capped
// at the index size.
func (x *VideoIndex) Search(query []float32, k int, exclude map[string]bool) ([]*Result, error) {
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), x.dimensions)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.searchLocked(query, k, exclude), nil
}

// SearchByID resolves videoID to its stored embedding and searches with it.
// Returns ErrNotIndexed when the id is absent.
func (x *VideoIndex) SearchByID(videoID string, k int, exclude map[string]bool) ([]*Result, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	pos := -1
	for i, id := range x.ids {
		if id == videoID {
			pos = i
			break
		}
	}
	if pos == -1 {
		return nil, fmt.Errorf("%w: %s", ErrNotIndexed, videoID)
	}
	return x.searchLocked(x.vectors[pos], k, exclude), nil
}

func (x *VideoIndex) searchLocked(query []float32, k int, exclude map[string]bool) []*Result {
	if k <= 0 || len(x.ids) == 0 {
		return []*Result{}
	}

	scored := make([]*Result, 0, len(x.ids))
	for i, row := range x.vectors {
		id := x.ids[i]
		if exclude[id] {
			continue
		}
		scored = append(scored, &Result{
			VideoID:  id,
			Score:    InnerProduct(query, row),
			Metadata: x.metadata[id],
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// Remove deletes a video and rebuilds the remaining rows in their remaining
// order (there is no per-row delete in the flat layout). O(n), acceptable
// because deletions are rare relative to inserts and queries. Returns false
// when the id is absent.
func (x *VideoIndex) Remove(videoID string) (bool, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.metadata[videoID]; !ok {
		return false, nil
	}

	prevIDs, prevVectors := x.ids, x.vectors
	prevMeta := x.metadata[videoID]

	newIDs := make([]string, 0, len(x.ids)-1)
	newVectors := make([][]float32, 0, len(x.vectors)-1)
	for i, id := range x.ids {
		if id == videoID {
			continue
		}
		newIDs = append(newIDs, id)
		newVectors = append(newVectors, x.vectors[i])
	}
	x.ids = newIDs
	x.vectors = newVectors
	delete(x.metadata, videoID)

	if err := x.persistLocked(); err != nil {
		x.ids = prevIDs
		x.vectors = prevVectors
		x.metadata[videoID] = prevMeta
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return true, nil
}

// Has reports whether videoID is present.
func (x *VideoIndex) Has(videoID string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.metadata[videoID]
	return ok
}

// Count returns the number of indexed videos.
func (x *VideoIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Metadata returns the stored display snapshot for videoID.
func (x *VideoIndex) Metadata(videoID string) (models.VideoMetadata, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	meta, ok := x.metadata[videoID]
	return meta, ok
}

// Dimensions returns the embedding dimension.
func (x *VideoIndex) Dimensions() int {
	return x.dimensions
}

func (x *VideoIndex) persistLocked() error {
	if x.archive == nil {
		return nil
	}
	return x.archive.Save(&Snapshot{
		Dimensions: x.dimensions,
		IDs:        x.ids,
		Vectors:    x.vectors,
		Metadata:   x.metadata,
	})
}
