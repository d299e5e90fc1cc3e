package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
)

// File captures metadata for a single source file named by the AST.
type File struct {
	ID   FileID
	Path string
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
