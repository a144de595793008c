package parser

import (
	"sort"

	"plc/interpreter-go/pkg/ast"
)

// lineIndex maps byte offsets to 1-based line/column positions.
type lineIndex struct {
	starts []int
}

func newLineIndex(source string) lineIndex {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts}
}

func (li lineIndex) position(offset int) ast.Position {
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return ast.Position{Offset: offset, Line: line + 1, Column: offset - li.starts[line] + 1}
}

func (li lineIndex) span(start, end int) ast.Span {
	return ast.Span{Start: li.position(start), End: li.position(end)}
}

func (li lineIndex) syntaxError(offset int, message string) *SyntaxError {
	pos := li.position(offset)
	return &SyntaxError{Message: message, Offset: offset, Line: pos.Line, Column: pos.Column}
}
