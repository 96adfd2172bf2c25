package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mvcscan/internal/domain"
	"mvcscan/internal/port"
)

// ProgressFunc is called after each file of a repository scan.
type ProgressFunc func(processed, total int, path string)

// ParseUseCase drives extraction over repositories, single files, raw
// source and changed-file lists. It holds no state between calls.
type ParseUseCase struct {
	walker   port.FileWalker
	reader   port.FileReader
	chunker  port.Chunker
	routes   port.RouteExtractor
	logger   *slog.Logger
	progress ProgressFunc
	now      func() time.Time
}

// NewParseUseCase creates a new parse use case.
func NewParseUseCase(
	walker port.FileWalker,
	reader port.FileReader,
	chunker port.Chunker,
	routes port.RouteExtractor,
	logger *slog.Logger,
) *ParseUseCase {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ParseUseCase{
		walker:  walker,
		reader:  reader,
		chunker: chunker,
		routes:  routes,
		logger:  logger,
		now:     time.Now,
	}
}

// WithProgress attaches a per-file progress callback.
func (u *ParseUseCase) WithProgress(fn ProgressFunc) *ParseUseCase {
	u.progress = fn
	return u
}

// RepositoryResult is the outcome of a full repository scan.
type RepositoryResult struct {
	Chunks   []domain.Chunk      `json:"chunks"`
	RouteMap []domain.RouteEntry `json:"routeMap"`
	Stats    domain.ParseStats   `json:"stats"`
}

// ParseRepository scans every supported file below root. A file that yields
// an invalid chunk fails the scan; other per-file failures are skipped. When modules is
// non-empty only files with a path segment equal to one of the names are
// scanned, and their chunks are tagged with that module.
func (u *ParseUseCase) ParseRepository(ctx context.Context, root string, modules []string) (*RepositoryResult, error) {
	if err := requireDir(root); err != nil {
		return nil, err
	}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	type target struct {
		file   port.FileInfo
		module string
	}
	var targets []target
	for _, f := range files {
		if u.chunker.Classify(f.Path) == domain.DialectUnsupported {
			continue
		}
		module, ok := matchModule(f.RelPath, modules)
		if !ok {
			continue
		}
		targets = append(targets, target{f, module})
	}

	result := &RepositoryResult{
		Chunks:   []domain.Chunk{},
		RouteMap: []domain.RouteEntry{},
	}
	for i, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("parse repository: %w", err)
		}

		content, err := u.reader.ReadFile(t.file.Path)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				u.logger.Warn("file disappeared during scan", slog.String("path", t.file.Path))
				u.report(i+1, len(targets), t.file.Path)
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", t.file.Path, err)
		}

		chunks, routes, err := u.extract(t.file.Path, content)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidChunk) {
				return nil, fmt.Errorf("%s: %w", t.file.Path, err)
			}
			u.logger.Warn("skipping file", slog.String("path", t.file.Path), slog.Any("error", err))
			u.report(i+1, len(targets), t.file.Path)
			continue
		}
		if t.module != "" {
			for j := range chunks {
				if chunks[j].Metadata.Module == "" {
					chunks[j].Metadata.Module = t.module
				}
			}
		}
		result.Chunks = append(result.Chunks, chunks...)
		result.RouteMap = append(result.RouteMap, routes...)
		u.report(i+1, len(targets), t.file.Path)
	}

	result.Stats = domain.NewParseStats(result.Chunks, u.now())
	u.logger.Info("repository parsed",
		slog.String("root", root),
		slog.Int("files", result.Stats.TotalFiles),
		slog.Int("chunks", result.Stats.TotalChunks),
		slog.Int("routes", len(result.RouteMap)))

	return result, nil
}

// ParseFile extracts the chunks of one file.
func (u *ParseUseCase) ParseFile(ctx context.Context, path string) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse file: %w", err)
	}
	if err := requireFile(path); err != nil {
		return nil, err
	}

	content, err := u.reader.ReadFile(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTargetNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	chunks, err := u.chunker.Chunk(path, content)
	if err != nil {
		return nil, err
	}
	return nonNil(chunks), nil
}

// ParseSource extracts chunks from in-memory source. The file name only
// selects the dialect and names the chunks.
func (u *ParseUseCase) ParseSource(fileName, source string) ([]domain.Chunk, error) {
	chunks, err := u.chunker.Chunk(fileName, source)
	if err != nil {
		return nil, err
	}
	return nonNil(chunks), nil
}

// ExtractRoutes builds the route map of every controller below root.
func (u *ParseUseCase) ExtractRoutes(ctx context.Context, root string) ([]domain.RouteEntry, error) {
	if err := requireDir(root); err != nil {
		return nil, err
	}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	routes := []domain.RouteEntry{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extract routes: %w", err)
		}
		if u.chunker.Classify(f.Path) != domain.DialectStructured {
			continue
		}

		content, err := u.reader.ReadFile(f.Path)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				u.logger.Warn("file disappeared during scan", slog.String("path", f.Path))
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", f.Path, err)
		}

		entries, err := u.routes.Routes(f.Path, content)
		if err != nil {
			u.logger.Warn("skipping file", slog.String("path", f.Path), slog.Any("error", err))
			continue
		}
		routes = append(routes, entries...)
	}
	return routes, nil
}

// ParseIncremental re-extracts the given files wholesale. Paths that are
// missing or not regular files are skipped with a warning. An invalid chunk
// fails the whole call.
func (u *ParseUseCase) ParseIncremental(ctx context.Context, paths []string) ([]domain.Chunk, error) {
	updated := []domain.Chunk{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("parse incremental: %w", err)
		}

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			u.logger.Warn("skipping changed path", slog.String("path", path))
			continue
		}

		content, err := u.reader.ReadFile(path)
		if err != nil {
			u.logger.Warn("skipping changed path", slog.String("path", path), slog.Any("error", err))
			continue
		}

		chunks, err := u.chunker.Chunk(path, content)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidChunk) {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			u.logger.Warn("skipping file", slog.String("path", path), slog.Any("error", err))
			continue
		}
		updated = append(updated, chunks...)
	}

	u.logger.Info("incremental parse finished",
		slog.Int("paths", len(paths)),
		slog.Int("chunks", len(updated)))
	return updated, nil
}

func (u *ParseUseCase) extract(path, content string) ([]domain.Chunk, []domain.RouteEntry, error) {
	chunks, err := u.chunker.Chunk(path, content)
	if err != nil {
		return nil, nil, err
	}
	var routes []domain.RouteEntry
	if u.chunker.Classify(path) == domain.DialectStructured {
		routes, err = u.routes.Routes(path, content)
		if err != nil {
			return nil, nil, err
		}
	}
	return chunks, routes, nil
}

func (u *ParseUseCase) report(processed, total int, path string) {
	if u.progress != nil {
		u.progress(processed, total, path)
	}
}

// matchModule returns the module whose name equals a directory segment of
// relPath. With no modules everything matches untagged.
func matchModule(relPath string, modules []string) (string, bool) {
	if len(modules) == 0 {
		return "", true
	}
	segments := strings.Split(filepath.ToSlash(filepath.Dir(relPath)), "/")
	for _, seg := range segments {
		for _, m := range modules {
			if m != "" && strings.EqualFold(seg, m) {
				return m, true
			}
		}
	}
	return "", false
}

func requireDir(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrTargetNotFound, root)
		}
		return fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrTargetNotFound, root)
	}
	return nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrTargetNotFound, path)
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", domain.ErrTargetNotFound, path)
	}
	return nil
}

func nonNil(chunks []domain.Chunk) []domain.Chunk {
	if chunks == nil {
		return []domain.Chunk{}
	}
	return chunks
}
