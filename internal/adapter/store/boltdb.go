package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"mvcscan/internal/domain"
	"mvcscan/internal/port"
)

var (
	bucketFiles      = []byte("files")
	bucketFileChunks = []byte("file_chunks")
	bucketRoutes     = []byte("routes")
	bucketStats      = []byte("stats")
	bucketMeta       = []byte("meta")
	keyRouteMap      = []byte("route_map")
	keyParseStats    = []byte("parse_stats")
)

var dataBuckets = [][]byte{bucketFiles, bucketFileChunks, bucketRoutes, bucketStats}

// BoltStore keeps extraction results in a single bbolt file. Chunks are
// stored per source path, so two files producing the same chunk id never
// overwrite each other.
type BoltStore struct {
	db *bbolt.DB
}

var _ port.ResultStore = (*BoltStore)(nil)

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketFiles, bucketFileChunks, bucketRoutes, bucketStats, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) PutFile(rec port.FileRecord, chunks []domain.Chunk) error {
	rec.ChunkIDs = make([]string, 0, len(chunks))
	for _, c := range chunks {
		rec.ChunkIDs = append(rec.ChunkIDs, c.ID)
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}

	recData, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	chunkData, err := json.Marshal(chunks)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketFiles).Put([]byte(rec.Path), recData); err != nil {
			return err
		}
		return tx.Bucket(bucketFileChunks).Put([]byte(rec.Path), chunkData)
	})
}

func (s *BoltStore) GetFile(path string) (port.FileRecord, error) {
	var rec port.FileRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketFiles).Get([]byte(path))
		if data == nil {
			return fmt.Errorf("file %s: %w", path, port.ErrNotFound)
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

func (s *BoltStore) DeleteFile(path string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketFiles).Delete([]byte(path)); err != nil {
			return err
		}
		return tx.Bucket(bucketFileChunks).Delete([]byte(path))
	})
}

func (s *BoltStore) ListFiles() ([]port.FileRecord, error) {
	var recs []port.FileRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).ForEach(func(k, v []byte) error {
			var rec port.FileRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode file record %s: %w", k, err)
			}
			recs = append(recs, rec)
			return nil
		})
	})
	return recs, err
}

// Chunks returns every stored chunk, grouped by source path in key order.
func (s *BoltStore) Chunks() ([]domain.Chunk, error) {
	all := []domain.Chunk{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFileChunks).ForEach(func(k, v []byte) error {
			var chunks []domain.Chunk
			if err := json.Unmarshal(v, &chunks); err != nil {
				return fmt.Errorf("decode chunks of %s: %w", k, err)
			}
			all = append(all, chunks...)
			return nil
		})
	})
	return all, err
}

func (s *BoltStore) PutRoutes(routes []domain.RouteEntry) error {
	if routes == nil {
		routes = []domain.RouteEntry{}
	}
	data, err := json.Marshal(routes)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRoutes).Put(keyRouteMap, data)
	})
}

func (s *BoltStore) Routes() ([]domain.RouteEntry, error) {
	routes := []domain.RouteEntry{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRoutes).Get(keyRouteMap)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &routes)
	})
	return routes, err
}

func (s *BoltStore) PutStats(stats domain.ParseStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketStats).Put(keyParseStats, data)
	})
}

func (s *BoltStore) Stats() (domain.ParseStats, error) {
	var stats domain.ParseStats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyParseStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
