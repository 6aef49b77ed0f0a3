package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_MkdirAllCreatesParents(t *testing.T) {
	fs := NewFS()
	fs.MkdirAll("/a/b/c")
	assert.True(t, fs.IsDir("/a"))
	assert.True(t, fs.IsDir("/a/b"))
	assert.True(t, fs.IsDir("/a/b/c"))
	assert.False(t, fs.IsFile("/a/b/c"))
}

func TestFS_WriteReadRoundtrip(t *testing.T) {
	fs := NewFS()
	fs.WriteFile("/x/y/file.txt", []byte("payload"))

	require.True(t, fs.IsFile("/x/y/file.txt"))
	assert.True(t, fs.IsDir("/x/y"))
	assert.Equal(t, 7, fs.Size("/x/y/file.txt"))

	got, ok := fs.ReadFile("/x/y/file.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got)

	// Returned slice is a copy.
	got[0] = 'X'
	again, _ := fs.ReadFile("/x/y/file.txt")
	assert.Equal(t, []byte("payload"), again)
}

func TestFS_ReadMissing(t *testing.T) {
	fs := NewFS()
	_, ok := fs.ReadFile("/nope")
	assert.False(t, ok)
	assert.False(t, fs.Exists("/nope"))
}

func TestFS_NormalizesPaths(t *testing.T) {
	fs := NewFS()
	fs.WriteFile("tmp/f", []byte("x"))
	assert.True(t, fs.IsFile("/tmp/f"))
	assert.True(t, fs.IsFile("/tmp/../tmp/f"))
}

func TestFS_ListImmediateChildren(t *testing.T) {
	fs := NewFS()
	fs.MkdirAll("/webServer/lib")
	fs.MkdirAll("/webServer/home")
	fs.WriteFile("/webServer/index.html", []byte("<html/>"))
	fs.WriteFile("/webServer/lib/keys", []byte("k"))

	entries := fs.List("/webServer")
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Name: "home", IsDir: true}, entries[0])
	assert.Equal(t, Entry{Name: "index.html", IsDir: false, Size: 7}, entries[1])
	assert.Equal(t, Entry{Name: "lib", IsDir: true}, entries[2])
}

func TestFS_ListRoot(t *testing.T) {
	fs := newPrinterFS()
	entries := fs.List("/")
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"PJL", "PostScript", "saveDevice", "webServer"}, names)
}

func TestPrinterFS_SeededLayout(t *testing.T) {
	fs := newPrinterFS()
	assert.True(t, fs.IsDir("/saveDevice/SavedJobs/InProgress"))
	assert.True(t, fs.IsFile("/webServer/lib/keys"))
	assert.True(t, fs.IsFile("/webServer/lib/security"))
	for p := range honeytokenPaths {
		assert.True(t, fs.IsFile(p), p)
	}
}
