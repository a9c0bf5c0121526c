package lsp

import (
	"strings"
	"unicode/utf16"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ferrum/internal/ast"
)

// lineIndex converts 1-based rune columns into the 0-based UTF-16 offsets
// the protocol uses.
type lineIndex struct {
	lines []string
}

func newLineIndex(source string) *lineIndex {
	return &lineIndex{lines: strings.Split(source, "\n")}
}

func (li *lineIndex) position(p ast.Position) protocol.Position {
	line := max(p.Line-1, 0)
	char := max(p.Column-1, 0)
	if line < len(li.lines) {
		char = utf16Offset(li.lines[line], char)
	}
	return protocol.Position{Line: toUInteger(line), Character: toUInteger(char)}
}

func (li *lineIndex) rangeOf(s ast.Span) protocol.Range {
	end := s.End
	if end.Line == 0 {
		end = s.Start
	}
	return protocol.Range{Start: li.position(s.Start), End: li.position(end)}
}

// utf16Offset returns the UTF-16 length of the first runes runes of line.
func utf16Offset(line string, runes int) int {
	n := 0
	for _, r := range line {
		if runes == 0 {
			return n
		}
		n += utf16.RuneLen(r)
		runes--
	}
	// Past the end of the line: keep counting one unit per column.
	return n + runes
}

func toUInteger(v int) protocol.UInteger {
	u, err := safecast.Conv[protocol.UInteger](v)
	if err != nil {
		return 0
	}
	return u
}
