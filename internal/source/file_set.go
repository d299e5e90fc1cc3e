package source

import (
	"fmt"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet keeps the source files referenced by spans.
// The core never reads file contents; the parser already did.
type FileSet struct {
	files []File
	index map[string]FileID // path -> id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add registers path and returns its FileID. Adding the same path twice
// returns the first ID.
func (fileSet *FileSet) Add(path string) FileID {
	normalized := normalizePath(path)
	if id, ok := fileSet.index[normalized]; ok {
		return id
	}
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{ID: id, Path: normalized})
	fileSet.index[normalized] = id
	return id
}

// Get returns the file metadata for the given ID, or nil when unknown.
func (fileSet *FileSet) Get(id FileID) *File {
	if fileSet == nil || int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// Path returns the file path for id, "<unknown>" if not registered.
func (fileSet *FileSet) Path(id FileID) string {
	if f := fileSet.Get(id); f != nil {
		return f.Path
	}
	return "<unknown>"
}

// Len returns the number of registered files.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

func normalizePath(path string) string {
	if path == "" {
		return path
	}
	return filepath.ToSlash(filepath.Clean(path))
}
