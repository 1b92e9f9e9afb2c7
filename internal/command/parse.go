package command

import (
	"fmt"
	"strings"
)

// Span is a half-open byte range into the parsed input.
type Span struct {
	Start int
	End   int
}

// Diagnostic is a span-annotated parse problem. Diagnostics are
// recoverable by design: the parse always completes and the offending
// token is kept in the tree as an Unexpected node.
type Diagnostic struct {
	Span    Span
	Message string
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// Parse turns input into a Sequence plus zero or more diagnostics. It
// never fails: empty or whitespace-only input parses to an empty
// Sequence, and unrecognized tokens become Unexpected nodes with a
// diagnostic spanning them.
func Parse(input string) (Sequence, []Diagnostic) {
	var (
		seq   Sequence
		diags []Diagnostic
	)
	start := 0
	for {
		segEnd := len(input)
		if i := strings.IndexByte(input[start:], ';'); i >= 0 {
			segEnd = start + i
		}
		s, e := start, segEnd
		for s < e && isSpace(input[s]) {
			s++
		}
		for e > s && isSpace(input[e-1]) {
			e--
		}
		if s < e {
			word := input[s:e]
			switch word {
			case "continue":
				seq = append(seq, Continue{})
			case "exit":
				seq = append(seq, Exit{})
			case "info":
				seq = append(seq, Info{})
			default:
				seq = append(seq, Unexpected{Text: word})
				diags = append(diags, Diagnostic{
					Span:    Span{Start: s, End: e},
					Message: fmt.Sprintf("unexpected command %q, expected %q, %q or %q", word, "continue", "exit", "info"),
				})
			}
		}
		if segEnd == len(input) {
			break
		}
		start = segEnd + 1
	}
	return seq, diags
}

// RenderDiagnostics formats diagnostics as a plain, colorless,
// byte-indexed caret report against the parsed input.
func RenderDiagnostics(input string, diags []Diagnostic) string {
	var b strings.Builder
	for _, d := range diags {
		width := d.Span.End - d.Span.Start
		if width < 1 {
			width = 1
		}
		fmt.Fprintf(&b, "error: %s\n", d.Message)
		fmt.Fprintf(&b, "  | %s\n", input)
		fmt.Fprintf(&b, "  | %s%s [%d..%d]\n",
			strings.Repeat(" ", d.Span.Start),
			strings.Repeat("^", width),
			d.Span.Start, d.Span.End)
	}
	return b.String()
}
