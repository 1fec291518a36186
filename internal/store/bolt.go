package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/vector"
)

var (
	bucketIndex = []byte("index")
	bucketRows  = []byte("rows")

	keyDimensions = []byte("dimensions")
	keyIDs        = []byte("ids")
	keyMetadata   = []byte("metadata")
)

// BoltArchive persists vector.Snapshot in a Bolt database. A snapshot is
// written in a single read-write transaction, so the vector rows and the
// id/metadata side-car are durable as a unit: after a crash the database
// holds either the previous complete snapshot or the new one.
type BoltArchive struct {
	db *bbolt.DB
}

// NewBoltArchive opens or creates the archive at path. Parent directories are
// created if they do not exist.
func NewBoltArchive(path string) (*BoltArchive, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return &BoltArchive{db: db}, nil
}

// Save replaces the stored snapshot with snap in one transaction.
func (a *BoltArchive) Save(snap *vector.Snapshot) error {
	idsJSON, err := json.Marshal(snap.IDs)
	if err != nil {
		return fmt.Errorf("marshal ids: %w", err)
	}
	metaJSON, err := json.Marshal(snap.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	return a.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketIndex, bucketRows} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
		}
		idx, err := tx.CreateBucket(bucketIndex)
		if err != nil {
			return err
		}
		rows, err := tx.CreateBucket(bucketRows)
		if err != nil {
			return err
		}

		dims := make([]byte, 4)
		binary.LittleEndian.PutUint32(dims, uint32(snap.Dimensions))
		if err := idx.Put(keyDimensions, dims); err != nil {
			return err
		}
		if err := idx.Put(keyIDs, idsJSON); err != nil {
			return err
		}
		if err := idx.Put(keyMetadata, metaJSON); err != nil {
			return err
		}

		key := make([]byte, 8)
		for i, row := range snap.Vectors {
			binary.BigEndian.PutUint64(key, uint64(i))
			if err := rows.Put(key, float32SliceToBytes(row)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load returns the stored snapshot, or nil when nothing has been saved yet.
func (a *BoltArchive) Load() (*vector.Snapshot, error) {
	var snap *vector.Snapshot
	err := a.db.View(func(tx *bbolt.Tx) error {
		idx := tx.Bucket(bucketIndex)
		rows := tx.Bucket(bucketRows)
		if idx == nil || rows == nil {
			return nil
		}

		dimsRaw := idx.Get(keyDimensions)
		if len(dimsRaw) != 4 {
			return fmt.Errorf("corrupt archive: missing dimensions")
		}
		dimensions := int(binary.LittleEndian.Uint32(dimsRaw))

		var ids []string
		if raw := idx.Get(keyIDs); raw != nil {
			if err := json.Unmarshal(raw, &ids); err != nil {
				return fmt.Errorf("unmarshal ids: %w", err)
			}
		}
		metadata := make(map[string]models.VideoMetadata)
		if raw := idx.Get(keyMetadata); raw != nil {
			if err := json.Unmarshal(raw, &metadata); err != nil {
				return fmt.Errorf("unmarshal metadata: %w", err)
			}
		}

		vectors := make([][]float32, 0, len(ids))
		key := make([]byte, 8)
		for i := 0; i < len(ids); i++ {
			binary.BigEndian.PutUint64(key, uint64(i))
			raw := rows.Get(key)
			if raw == nil {
				return fmt.Errorf("corrupt archive: missing row %d", i)
			}
			vectors = append(vectors, bytesToFloat32Slice(raw))
		}

		snap = &vector.Snapshot{
			Dimensions: dimensions,
			IDs:        ids,
			Vectors:    vectors,
			Metadata:   metadata,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Close closes the underlying database.
func (a *BoltArchive) Close() error {
	return a.db.Close()
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
