package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"fortio.org/safecast"
)

// FileSet owns every file a compilation has loaded. It is safe for concurrent readers.
type FileSet struct {
	mu    sync.RWMutex
	files []File
	index map[string]FileID // path -> id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add stores content under path and returns its id. Re-adding a path creates a new id.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()

	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(n)
	clean := filepath.ToSlash(filepath.Clean(path))
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    clean,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[clean] = id
	return id
}

// Load reads a file from disk and strips a UTF-8 BOM.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	if bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}) {
		content = content[3:]
		flags |= FileHadBOM
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file for id.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return &fileSet.files[id]
}

// Has reports whether id names a file of the set.
func (fileSet *FileSet) Has(id FileID) bool {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return int(id) < len(fileSet.files)
}

// Lookup returns the newest file id registered for path.
func (fileSet *FileSet) Lookup(path string) (FileID, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	id, ok := fileSet.index[filepath.ToSlash(filepath.Clean(path))]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// SpanOf returns the span of the first occurrence of needle at or after from, or an empty span at from.
func (f *File) SpanOf(needle string, from uint32) Span {
	if int(from) > len(f.Content) {
		from = 0
	}
	i := bytes.Index(f.Content[from:], []byte(needle))
	if i < 0 {
		return Span{File: f.ID, Start: from, End: from}
	}
	start := from + uint32(i) // #nosec G115 -- bounded by len(Content)
	return Span{File: f.ID, Start: start, End: start + uint32(len(needle))} // #nosec G115
}

// Line returns the 1-based line without its newline.
func (f *File) Line(n uint32) string {
	if n == 0 {
		return ""
	}
	start := 0
	if n > 1 {
		if int(n-2) >= len(f.LineIdx) {
			return ""
		}
		start = int(f.LineIdx[n-2]) + 1
	}
	end := len(f.Content)
	if int(n-1) < len(f.LineIdx) {
		end = int(f.LineIdx[n-1])
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, 16)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)) // #nosec G115 -- file sizes are checked by the loader
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// первая позиция, где '\n' >= off
	line := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })
	if line == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	return LineCol{Line: uint32(line) + 1, Col: off - lineIdx[line-1]} // #nosec G115
}
