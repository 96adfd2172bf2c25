package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvcscan/internal/adapter/memstore"
	"mvcscan/internal/domain"
)

func TestSyncRepository_Incremental(t *testing.T) {
	root := sampleRepo(t)
	store := memstore.NewMemoryStore()
	u := NewSyncUseCase(newTestParseUseCase(), store)

	first, err := u.SyncRepository(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 4, first.FilesParsed)
	assert.Zero(t, first.FilesSkipped)
	assert.Equal(t, 5, first.Chunks)

	routes, err := store.Routes()
	require.NoError(t, err)
	assert.Len(t, routes, 3)

	second, err := u.SyncRepository(context.Background(), root)
	require.NoError(t, err)
	assert.Zero(t, second.FilesParsed)
	assert.Equal(t, 4, second.FilesSkipped)

	require.NoError(t, os.WriteFile(filepath.Join(root, "wwwroot", "js", "site.js"),
		[]byte("function boot() { }\nfunction stop() { }\n"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(root, "Areas", "Admin", "Controllers", "UsersController.cs")))

	third, err := u.SyncRepository(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, third.FilesParsed)
	assert.Equal(t, 2, third.FilesSkipped)
	assert.Equal(t, 1, third.FilesDeleted)
	assert.Equal(t, 5, third.Chunks)
	assert.Empty(t, third.Errors)

	routes, err = store.Routes()
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "HomeController", routes[0].Controller)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ControllerCount)
	assert.Equal(t, 2, stats.ScriptCount)
}

func TestSyncRepository_MissingRoot(t *testing.T) {
	u := NewSyncUseCase(newTestParseUseCase(), memstore.NewMemoryStore())
	_, err := u.SyncRepository(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, domain.ErrTargetNotFound)
}

func TestSyncPaths(t *testing.T) {
	root := sampleRepo(t)
	store := memstore.NewMemoryStore()
	u := NewSyncUseCase(newTestParseUseCase(), store)

	_, err := u.SyncRepository(context.Background(), root)
	require.NoError(t, err)

	script := filepath.Join(root, "wwwroot", "js", "site.js")
	require.NoError(t, os.WriteFile(script, []byte("function reboot() { }\n"), 0o644))
	view := filepath.Join(root, "Views", "Home", "Index.cshtml")
	require.NoError(t, os.Remove(view))

	updated, err := u.SyncPaths(context.Background(), []string{script, view, filepath.Join(root, "README.md")})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "JS.site.reboot", updated[0].ID)

	_, err = store.GetFile(view)
	assert.Error(t, err)

	chunks, err := store.Chunks()
	require.NoError(t, err)
	var ids []string
	for _, c := range chunks {
		ids = append(ids, c.ID)
	}
	assert.Contains(t, ids, "JS.site.reboot")
	assert.NotContains(t, ids, "JS.site.boot")
	assert.NotContains(t, ids, "View.Index")

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.ViewCount)
}

func TestSyncPaths_UnchangedFileIsSkipped(t *testing.T) {
	root := sampleRepo(t)
	u := NewSyncUseCase(newTestParseUseCase(), memstore.NewMemoryStore())
	_, err := u.SyncRepository(context.Background(), root)
	require.NoError(t, err)

	updated, err := u.SyncPaths(context.Background(), []string{filepath.Join(root, "wwwroot", "js", "site.js")})
	require.NoError(t, err)
	assert.Empty(t, updated)
}

func TestSyncRepository_InvalidChunkFails(t *testing.T) {
	root := sampleRepo(t)
	u := NewSyncUseCase(failOn(newTestParseUseCase(), "site.js", invalidChunkErr()), memstore.NewMemoryStore())

	result, err := u.SyncRepository(context.Background(), root)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidChunk)
}

func TestSyncRepository_FailedFileDropsStaleRecord(t *testing.T) {
	root := sampleRepo(t)
	store := memstore.NewMemoryStore()
	_, err := NewSyncUseCase(newTestParseUseCase(), store).SyncRepository(context.Background(), root)
	require.NoError(t, err)

	script := filepath.Join(root, "wwwroot", "js", "site.js")
	require.NoError(t, os.WriteFile(script, []byte("function boot() { }\nfunction halt() { }\n"), 0o644))

	u := NewSyncUseCase(failOn(newTestParseUseCase(), "site.js", errors.New("unreadable")), store)
	result, err := u.SyncRepository(context.Background(), root)
	require.NoError(t, err)
	assert.Zero(t, result.FilesParsed)
	assert.Equal(t, 3, result.FilesSkipped)
	assert.Equal(t, 4, result.Chunks)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "site.js")

	_, err = store.GetFile(script)
	assert.Error(t, err)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.ScriptCount)
}

func TestSyncPaths_InvalidChunkFails(t *testing.T) {
	root := sampleRepo(t)
	u := NewSyncUseCase(failOn(newTestParseUseCase(), "site.js", invalidChunkErr()), memstore.NewMemoryStore())

	updated, err := u.SyncPaths(context.Background(), []string{filepath.Join(root, "wwwroot", "js", "site.js")})
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrInvalidChunk)
}

func TestSyncPaths_FailedFileDropsStaleRecord(t *testing.T) {
	root := sampleRepo(t)
	store := memstore.NewMemoryStore()
	_, err := NewSyncUseCase(newTestParseUseCase(), store).SyncRepository(context.Background(), root)
	require.NoError(t, err)

	script := filepath.Join(root, "wwwroot", "js", "site.js")
	require.NoError(t, os.WriteFile(script, []byte("function halt() { }\n"), 0o644))

	u := NewSyncUseCase(failOn(newTestParseUseCase(), "site.js", errors.New("unreadable")), store)
	updated, err := u.SyncPaths(context.Background(), []string{script})
	require.NoError(t, err)
	assert.Empty(t, updated)

	_, err = store.GetFile(script)
	assert.Error(t, err)
	chunks, err := store.Chunks()
	require.NoError(t, err)
	assert.Len(t, chunks, 4)
}
