package usecase

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"mvcscan/internal/domain"
	"mvcscan/internal/port"
)

// SyncUseCase keeps a ResultStore in step with a repository, re-extracting
// only files whose content fingerprint changed.
type SyncUseCase struct {
	parse  *ParseUseCase
	store  port.ResultStore
	logger *slog.Logger
}

// NewSyncUseCase creates a sync use case on top of a parse use case.
func NewSyncUseCase(parse *ParseUseCase, store port.ResultStore) *SyncUseCase {
	return &SyncUseCase{
		parse:  parse,
		store:  store,
		logger: parse.logger,
	}
}

// SyncResult contains the results of a sync operation.
type SyncResult struct {
	FilesParsed  int      `json:"filesParsed"`
	FilesSkipped int      `json:"filesSkipped"`
	FilesDeleted int      `json:"filesDeleted"`
	Chunks       int      `json:"chunks"`
	Errors       []string `json:"errors,omitempty"`
}

// SyncRepository brings the store up to date with every supported file
// below root and drops records of files that are gone. A file that fails
// extraction loses its stored record and is reported in Errors; an invalid
// chunk fails the sync.
func (u *SyncUseCase) SyncRepository(ctx context.Context, root string) (*SyncResult, error) {
	if err := requireDir(root); err != nil {
		return nil, err
	}

	files, err := u.parse.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	existing, err := u.store.ListFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list stored files: %w", err)
	}
	existingMap := make(map[string]port.FileRecord, len(existing))
	for _, rec := range existing {
		existingMap[rec.Path] = rec
	}

	result := &SyncResult{}
	seenPaths := make(map[string]bool)

	var supported []port.FileInfo
	for _, f := range files {
		if u.parse.chunker.Classify(f.Path) != domain.DialectUnsupported {
			supported = append(supported, f)
		}
	}

	for i, file := range supported {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sync repository: %w", err)
		}

		content, err := u.parse.reader.ReadFile(file.Path)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				u.logger.Warn("file disappeared during sync", slog.String("path", file.Path))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to read %s: %v", file.Path, err))
			}
			u.parse.report(i+1, len(supported), file.Path)
			continue
		}
		seenPaths[file.Path] = true

		fingerprint := xxhash.Sum64String(content)
		if rec, ok := existingMap[file.Path]; ok && rec.Fingerprint == fingerprint {
			result.FilesSkipped++
			u.parse.report(i+1, len(supported), file.Path)
			continue
		}

		if _, err := u.storeFile(file.Path, file.ModTime, content, fingerprint); err != nil {
			if errors.Is(err, domain.ErrInvalidChunk) {
				return nil, fmt.Errorf("%s: %w", file.Path, err)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("failed to sync %s: %v", file.Path, err))
			if _, ok := existingMap[file.Path]; ok {
				if err := u.store.DeleteFile(file.Path); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", file.Path, err))
				}
			}
		} else {
			result.FilesParsed++
		}
		u.parse.report(i+1, len(supported), file.Path)
	}

	for path := range existingMap {
		if seenPaths[path] {
			continue
		}
		if err := u.store.DeleteFile(path); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", path, err))
			continue
		}
		result.FilesDeleted++
	}

	chunks, err := u.refresh()
	if err != nil {
		return nil, err
	}
	result.Chunks = chunks

	u.logger.Info("repository synced",
		slog.String("root", root),
		slog.Int("parsed", result.FilesParsed),
		slog.Int("skipped", result.FilesSkipped),
		slog.Int("deleted", result.FilesDeleted),
		slog.Int("chunks", result.Chunks))

	return result, nil
}

// SyncPaths re-extracts the given paths. Paths that no longer exist are
// removed from the store. The returned chunks are the new content of the
// changed files.
func (u *SyncUseCase) SyncPaths(ctx context.Context, paths []string) ([]domain.Chunk, error) {
	updated := []domain.Chunk{}
	changed := false

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sync paths: %w", err)
		}

		path, err := filepath.Abs(p)
		if err != nil {
			u.logger.Warn("skipping changed path", slog.String("path", p), slog.Any("error", err))
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				if _, getErr := u.store.GetFile(path); getErr == nil {
					if err := u.store.DeleteFile(path); err != nil {
						return nil, fmt.Errorf("failed to delete %s: %w", path, err)
					}
					changed = true
					u.logger.Debug("removed deleted file", slog.String("path", path))
				}
				continue
			}
			u.logger.Warn("skipping changed path", slog.String("path", path), slog.Any("error", err))
			continue
		}
		if !info.Mode().IsRegular() || u.parse.chunker.Classify(path) == domain.DialectUnsupported {
			continue
		}

		content, err := u.parse.reader.ReadFile(path)
		if err != nil {
			u.logger.Warn("skipping changed path", slog.String("path", path), slog.Any("error", err))
			continue
		}

		fingerprint := xxhash.Sum64String(content)
		if rec, err := u.store.GetFile(path); err == nil && rec.Fingerprint == fingerprint {
			continue
		}

		chunks, err := u.storeFile(path, info.ModTime().Unix(), content, fingerprint)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidChunk) {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			u.logger.Warn("skipping file", slog.String("path", path), slog.Any("error", err))
			// the old chunks no longer describe the file
			if _, getErr := u.store.GetFile(path); getErr == nil {
				if err := u.store.DeleteFile(path); err != nil {
					return nil, fmt.Errorf("failed to delete %s: %w", path, err)
				}
				changed = true
			}
			continue
		}
		changed = true
		updated = append(updated, chunks...)
	}

	if changed {
		if _, err := u.refresh(); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

func (u *SyncUseCase) storeFile(path string, modTime int64, content string, fingerprint uint64) ([]domain.Chunk, error) {
	chunks, routes, err := u.parse.extract(path, content)
	if err != nil {
		return nil, err
	}
	rec := port.FileRecord{
		Path:        path,
		Name:        filepath.Base(path),
		Dialect:     u.parse.chunker.Classify(path).String(),
		Fingerprint: fingerprint,
		ModTime:     modTime,
		Routes:      routes,
	}
	if err := u.store.PutFile(rec, chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// refresh rebuilds the stored route map and stats from the per-file records.
func (u *SyncUseCase) refresh() (int, error) {
	chunks, err := u.store.Chunks()
	if err != nil {
		return 0, fmt.Errorf("failed to load chunks: %w", err)
	}
	recs, err := u.store.ListFiles()
	if err != nil {
		return 0, fmt.Errorf("failed to list stored files: %w", err)
	}

	routes := []domain.RouteEntry{}
	for _, rec := range recs {
		routes = append(routes, rec.Routes...)
	}
	if err := u.store.PutRoutes(routes); err != nil {
		return 0, fmt.Errorf("failed to store routes: %w", err)
	}
	if err := u.store.PutStats(domain.NewParseStats(chunks, u.parse.now())); err != nil {
		return 0, fmt.Errorf("failed to store stats: %w", err)
	}
	return len(chunks), nil
}
