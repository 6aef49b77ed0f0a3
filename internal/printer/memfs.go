package printer

import (
	"path"
	"sort"
	"strings"
	"sync"
)

// FS is the simulated printer filesystem the PJL FS* commands operate on.
// Purely in-memory; nothing an attacker does here touches the real disk.
type FS struct {
	mu    sync.RWMutex
	dirs  map[string]bool
	files map[string][]byte
}

// Entry is one directory-listing row.
type Entry struct {
	Name  string
	IsDir bool
	Size  int
}

func NewFS() *FS {
	return &FS{
		dirs:  map[string]bool{"/": true},
		files: make(map[string][]byte),
	}
}

func normalize(p string) string {
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func (f *FS) Exists(p string) bool {
	p = normalize(p)
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.dirs[p] {
		return true
	}
	_, ok := f.files[p]
	return ok
}

func (f *FS) IsDir(p string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dirs[normalize(p)]
}

func (f *FS) IsFile(p string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.files[normalize(p)]
	return ok
}

func (f *FS) Size(p string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.files[normalize(p)])
}

// MkdirAll creates a directory and any missing parents. Creating an existing
// directory is a no-op.
func (f *FS) MkdirAll(p string) {
	p = normalize(p)
	if p == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for cur := p; cur != "/"; cur = path.Dir(cur) {
		f.dirs[cur] = true
	}
}

// WriteFile stores contents at p, replacing any existing file and creating
// parent directories as needed.
func (f *FS) WriteFile(p string, contents []byte) {
	p = normalize(p)
	if p == "" || p == "/" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for cur := path.Dir(p); cur != "/"; cur = path.Dir(cur) {
		f.dirs[cur] = true
	}
	f.files[p] = append([]byte(nil), contents...)
}

func (f *FS) ReadFile(p string) ([]byte, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	b, ok := f.files[normalize(p)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

// List returns the immediate children of dir, sorted by name.
func (f *FS) List(dir string) []Entry {
	dir = normalize(dir)
	f.mu.RLock()
	defer f.mu.RUnlock()

	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}
	seen := make(map[string]Entry)
	add := func(p string, size int, isFile bool) {
		if p == dir || !strings.HasPrefix(p, prefix) {
			return
		}
		rest := strings.TrimPrefix(p, prefix)
		if idx := strings.Index(rest, "/"); idx >= 0 {
			// deeper path; the immediate child is a directory
			name := rest[:idx]
			seen[name] = Entry{Name: name, IsDir: true}
			return
		}
		seen[rest] = Entry{Name: rest, IsDir: !isFile, Size: size}
	}
	for p := range f.dirs {
		add(p, 0, false)
	}
	for p, b := range f.files {
		add(p, len(b), true)
	}

	entries := make([]Entry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
