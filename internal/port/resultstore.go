package port

import (
	"errors"

	"mvcscan/internal/domain"
)

var ErrNotFound = errors.New("not found")

// FileRecord remembers what was extracted from one source file.
type FileRecord struct {
	Path        string              `json:"path"`
	Name        string              `json:"name"`
	Dialect     string              `json:"dialect"`
	Fingerprint uint64              `json:"fingerprint"`
	ModTime     int64               `json:"modTime"`
	ChunkIDs    []string            `json:"chunkIds,omitempty"`
	Routes      []domain.RouteEntry `json:"routes,omitempty"`
}

// ResultStore persists extraction results between runs. PutFile replaces
// every chunk previously stored for the same path.
type ResultStore interface {
	PutFile(rec FileRecord, chunks []domain.Chunk) error

	GetFile(path string) (FileRecord, error)

	DeleteFile(path string) error

	ListFiles() ([]FileRecord, error)

	Chunks() ([]domain.Chunk, error)

	PutRoutes(routes []domain.RouteEntry) error

	Routes() ([]domain.RouteEntry, error)

	PutStats(stats domain.ParseStats) error

	Stats() (domain.ParseStats, error)

	Close() error
}
