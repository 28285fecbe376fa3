package report

import "fmt"

// TextSpan represents a range or "span" of source text.  Text spans are
// inclusive on both sides: the starting position is the position of the first
// character in the span and the ending position is the position of the last
// character in the span.  The line and column numbers are zero-indexed.
type TextSpan struct {
	// The line and column beginning the text span.
	StartLine, StartCol int

	// The line and column ending the text span.
	EndLine, EndCol int
}

// NewSpanOver returns a new text span which spans over and between the two
// given text spans.  Either span may be nil in which case the other is
// returned.
func NewSpanOver(start, end *TextSpan) *TextSpan {
	if start == nil {
		return end
	} else if end == nil {
		return start
	}

	return &TextSpan{
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func (ts *TextSpan) String() string {
	if ts == nil {
		return "<unknown>"
	}

	return fmt.Sprintf("%d:%d", ts.StartLine+1, ts.StartCol+1)
}
