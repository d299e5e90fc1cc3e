package astio

import (
	"strconv"
	"strings"

	"fortio.org/safecast"

	"cstar/internal/source"
)

// parsePos reads "line:col" or "line:col-line:col". An empty string is an
// unknown position.
func parsePos(file source.FileID, text string) (source.Span, bool) {
	sp := source.Span{File: file}
	text = strings.TrimSpace(text)
	if text == "" {
		return sp, true
	}
	startText, endText, ranged := strings.Cut(text, "-")
	start, ok := parseLineCol(startText)
	if !ok {
		return sp, false
	}
	end := start
	if ranged {
		if end, ok = parseLineCol(endText); !ok || end.Before(start) {
			return sp, false
		}
	}
	sp.Start, sp.End = start, end
	return sp, true
}

func parseLineCol(text string) (source.LineCol, bool) {
	lineText, colText, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok {
		return source.LineCol{}, false
	}
	line, ok := positive(lineText)
	if !ok {
		return source.LineCol{}, false
	}
	col, ok := positive(colText)
	if !ok {
		return source.LineCol{}, false
	}
	return source.LineCol{Line: line, Col: col}, true
}

func positive(text string) (uint32, bool) {
	n, err := strconv.Atoi(text)
	if err != nil || n <= 0 {
		return 0, false
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, false
	}
	return v, true
}
