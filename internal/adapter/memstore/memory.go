package memstore

import (
	"fmt"
	"sort"
	"sync"

	"mvcscan/internal/domain"
	"mvcscan/internal/port"
)

// MemoryStore is a ResultStore that lives only as long as the process.
type MemoryStore struct {
	mu         sync.RWMutex
	files      map[string]port.FileRecord
	fileChunks map[string][]domain.Chunk
	routes     []domain.RouteEntry
	stats      domain.ParseStats
}

var _ port.ResultStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files:      make(map[string]port.FileRecord),
		fileChunks: make(map[string][]domain.Chunk),
	}
}

func (s *MemoryStore) PutFile(rec port.FileRecord, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ChunkIDs = make([]string, 0, len(chunks))
	for _, c := range chunks {
		rec.ChunkIDs = append(rec.ChunkIDs, c.ID)
	}
	s.files[rec.Path] = rec
	s.fileChunks[rec.Path] = append([]domain.Chunk(nil), chunks...)
	return nil
}

func (s *MemoryStore) GetFile(path string) (port.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.files[path]
	if !ok {
		return port.FileRecord{}, fmt.Errorf("file %s: %w", path, port.ErrNotFound)
	}
	return rec, nil
}

func (s *MemoryStore) DeleteFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	delete(s.fileChunks, path)
	return nil
}

func (s *MemoryStore) ListFiles() ([]port.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]port.FileRecord, 0, len(s.files))
	for _, path := range s.sortedPaths() {
		recs = append(recs, s.files[path])
	}
	return recs, nil
}

// Chunks returns every chunk grouped by path in sorted order, matching the
// key order of the bolt store.
func (s *MemoryStore) Chunks() ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := []domain.Chunk{}
	for _, path := range s.sortedPaths() {
		all = append(all, s.fileChunks[path]...)
	}
	return all, nil
}

func (s *MemoryStore) PutRoutes(routes []domain.RouteEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append([]domain.RouteEntry(nil), routes...)
	return nil
}

func (s *MemoryStore) Routes() ([]domain.RouteEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.RouteEntry{}, s.routes...), nil
}

func (s *MemoryStore) PutStats(stats domain.ParseStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	return nil
}

func (s *MemoryStore) Stats() (domain.ParseStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) sortedPaths() []string {
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
