// Package astio decodes the AST produced by the external parser. The same
// document shape is accepted as YAML and as JSON; structural problems in
// the document surface as errors marked with ast.ErrInvalidAST.
package astio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"cstar/internal/ast"
	"cstar/internal/source"
)

// ErrDecode marks documents that are not valid YAML or JSON, or that carry
// fields the decoder does not know.
var ErrDecode = errors.New("cannot decode AST document")

type Format uint8

const (
	FormatAuto Format = iota
	FormatYAML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "auto"
	}
}

// DetectFormat picks the format from the file extension, falling back to
// the first significant byte of data.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads and decodes the document at path.
func Load(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return Decode(data, path, FormatAuto)
}

// Decode turns a document into a program. path names the document in
// spans when the document does not name its own source files.
func Decode(data []byte, path string, format Format) (*ast.Program, error) {
	if format == FormatAuto {
		format = DetectFormat(path, data)
	}
	var doc documentDTO
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, decodeError(err, path, format)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, decodeError(err, path, format)
		}
	}
	return convertDocument(&doc, path)
}

func decodeError(err error, path string, format Format) error {
	if errors.Is(err, io.EOF) {
		err = errors.Newf("%s is empty", path)
	} else {
		err = errors.Wrapf(err, "parse %s as %s", path, format)
	}
	return errors.WithHint(errors.Mark(err, ErrDecode), "the AST document must be a mapping with a `modules` list")
}

func convertDocument(doc *documentDTO, path string) (*ast.Program, error) {
	fs := source.NewFileSet()
	c := converter{fs: fs}
	defaultFile := doc.File
	if defaultFile == "" {
		defaultFile = path
	}
	prog := &ast.Program{Files: fs}
	for i := range doc.Modules {
		mod, err := c.module(&doc.Modules[i], defaultFile)
		if err != nil {
			return nil, err
		}
		prog.Modules = append(prog.Modules, mod)
	}
	return prog, nil
}
