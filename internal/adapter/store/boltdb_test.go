package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvcscan/internal/domain"
	"mvcscan/internal/port"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "chunks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltStore_FileRoundTrip(t *testing.T) {
	s := openTestStore(t)

	rec := port.FileRecord{
		Path:        "/repo/Views/Home/Index.cshtml",
		Name:        "Index.cshtml",
		Dialect:     "razor",
		Fingerprint: 42,
		ModTime:     1700000000,
	}
	chunks := []domain.Chunk{{ID: "View.Index", File: "Index.cshtml", Kind: domain.KindViewTemplate, Content: "<h1/>"}}
	require.NoError(t, s.PutFile(rec, chunks))

	got, err := s.GetFile(rec.Path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got.Fingerprint)
	assert.Equal(t, []string{"View.Index"}, got.ChunkIDs)

	all, err := s.Chunks()
	require.NoError(t, err)
	assert.Equal(t, chunks, all)
}

func TestBoltStore_SameChunkIDInTwoFiles(t *testing.T) {
	s := openTestStore(t)

	a := domain.Chunk{ID: "View.Index", File: "Index.cshtml", Kind: domain.KindViewTemplate, Content: "home"}
	b := domain.Chunk{ID: "View.Index", File: "Index.cshtml", Kind: domain.KindViewTemplate, Content: "orders"}
	require.NoError(t, s.PutFile(port.FileRecord{Path: "/r/Views/Home/Index.cshtml"}, []domain.Chunk{a}))
	require.NoError(t, s.PutFile(port.FileRecord{Path: "/r/Views/Orders/Index.cshtml"}, []domain.Chunk{b}))

	all, err := s.Chunks()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "home", all[0].Content)
	assert.Equal(t, "orders", all[1].Content)
}

func TestBoltStore_DeleteFile(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutFile(port.FileRecord{Path: "/r/a.js"}, []domain.Chunk{{ID: "JS.a.f", Content: "x"}}))
	require.NoError(t, s.DeleteFile("/r/a.js"))

	_, err := s.GetFile("/r/a.js")
	assert.ErrorIs(t, err, port.ErrNotFound)

	all, err := s.Chunks()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBoltStore_RoutesAndStats(t *testing.T) {
	s := openTestStore(t)

	routes, err := s.Routes()
	require.NoError(t, err)
	assert.Empty(t, routes)

	want := []domain.RouteEntry{{Route: "/Home/Index", Controller: "HomeController", Action: "Index", HTTPMethod: "GET"}}
	require.NoError(t, s.PutRoutes(want))
	routes, err = s.Routes()
	require.NoError(t, err)
	assert.Equal(t, want, routes)

	stats := domain.ParseStats{TotalFiles: 3, TotalChunks: 9, ParsedAtUTC: 1700000000}
	require.NoError(t, s.PutStats(stats))
	got, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}

func TestBoltStore_Migrations(t *testing.T) {
	s := openTestStore(t)

	check, err := s.CheckMigration("abc")
	require.NoError(t, err)
	assert.True(t, check.NeedsMigration)
	assert.False(t, check.NeedsRebuild)

	require.NoError(t, s.Migrate("abc"))
	info, err := s.GetSchemaInfo()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, info.Version)
	assert.Equal(t, "abc", info.ConventionsHash)

	rebuild, reason, err := s.NeedsRebuild("def")
	require.NoError(t, err)
	assert.True(t, rebuild)
	assert.Contains(t, reason, "conventions")
}

func TestBoltStore_PrepareClearsOnConventionChange(t *testing.T) {
	s := openTestStore(t)

	rebuilt, err := s.Prepare("v1")
	require.NoError(t, err)
	assert.False(t, rebuilt)
	require.NoError(t, s.PutFile(port.FileRecord{Path: "/r/a.cs"}, []domain.Chunk{{ID: "A.ViewModel", Content: "class A {}"}}))

	rebuilt, err = s.Prepare("v1")
	require.NoError(t, err)
	assert.False(t, rebuilt)
	files, err := s.ListFiles()
	require.NoError(t, err)
	assert.Len(t, files, 1)

	rebuilt, err = s.Prepare("v2")
	require.NoError(t, err)
	assert.True(t, rebuilt)
	files, err = s.ListFiles()
	require.NoError(t, err)
	assert.Empty(t, files)

	info, err := s.GetSchemaInfo()
	require.NoError(t, err)
	assert.Equal(t, "v2", info.ConventionsHash)
}
