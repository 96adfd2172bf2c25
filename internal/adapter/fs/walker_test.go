package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestWalker_IncludesAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Controllers/HomeController.cs": "class A {}",
		"Views/Home/Index.cshtml":       "<h1/>",
		"bin/Debug/App.cs":              "class B {}",
		"node_modules/jquery/jquery.js": "",
		"wwwroot/js/site.js":            "",
	})

	w := NewWalker(nil, []string{"**/bin/**", "**/node_modules/**"})
	files, err := w.Walk(root)
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		rel = append(rel, f.RelPath)
		assert.True(t, filepath.IsAbs(f.Path))
	}
	assert.Equal(t, []string{
		"Controllers/HomeController.cs",
		"Views/Home/Index.cshtml",
		"wwwroot/js/site.js",
	}, rel)
}

func TestWalker_IncludePattern(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.cs":     "",
		"b.txt":    "",
		"sub/c.cs": "",
	})

	files, err := NewWalker([]string{"**/*.cs"}, nil).Walk(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.cs", files[0].RelPath)
	assert.Equal(t, "sub/c.cs", files[1].RelPath)
}

func TestWalker_MissingRoot(t *testing.T) {
	_, err := NewWalker(nil, nil).Walk(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestWalker_Excluded(t *testing.T) {
	w := NewWalker(nil, []string{"**/obj/**"})
	assert.True(t, w.Excluded("src/obj/x.cs"))
	assert.False(t, w.Excluded("src/x.cs"))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.js")
	require.NoError(t, os.WriteFile(path, []byte("function a() {}"), 0o644))

	content, err := Reader{}.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "function a() {}", content)
}
