package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"cstar/internal/diag"
	"cstar/internal/source"
)

// Short writes "path:line:col: CODE message" per diagnostic, without
// color or notes. It is meant for editors and grep.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) error {
	var sb strings.Builder
	for _, d := range bag.Items() {
		fmt.Fprintf(&sb, "%s: %s %s\n", location(fs, d.Primary, mode, ""), d.Code.ID(), d.Message)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
