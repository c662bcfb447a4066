// Package buzz implements a small pattern language for matching tags
// like "os:Linux" or "python:3.8.5".
//
// A pattern is a string of literal bytes with a few special characters:
//
//	*       matches zero or more bytes, up to the next literal
//	#       captures a span of the tag (at most one per pattern)
//	#c      the capture stops at the first c
//	#<N>c   the capture steps over N occurrences of c and stops at the next one
//	#<N>    a trailing capture, runs to the end of the tag
//
// Patterns are compiled once with Compile and then matched against
// any number of tags. A compiled Pattern is immutable and safe for
// concurrent use.
package buzz

import (
	"fmt"
	"strings"
)

const (
	WildcardChar      = '*'
	CaptureChar       = '#'
	BoundaryStartChar = '<'
	BoundaryEndChar   = '>'

	// MaxPatternLength is the longest raw pattern Compile accepts.
	MaxPatternLength = 512
)

// Diagnosis is the result of pattern validation.
type Diagnosis uint8

const (
	// Valid patterns can be used for matching.
	Valid Diagnosis = iota

	// Invalid covers malformed boundaries, a second capture,
	// whitespace and overlong patterns.
	Invalid

	// NoCaptureAfterWildcard is reported for a capture marker that
	// directly follows a wildcard run.
	NoCaptureAfterWildcard
)

func (d Diagnosis) String() string {
	switch d {
	case Valid:
		return "Valid"
	case Invalid:
		return "Invalid"
	case NoCaptureAfterWildcard:
		return "NoCaptureAfterWildcard"
	default:
		return fmt.Sprintf("Diagnosis(%d)", uint8(d))
	}
}

// Boundary describes where a bounded capture ends.
type Boundary struct {
	// Stop is the byte that terminates the capture.
	Stop byte

	// Skip is the number of Stop occurrences the capture steps over.
	Skip int

	// Resume is the pattern text index where literal matching resumes.
	// It always points at the Stop byte.
	Resume int
}

// Pattern is a compiled tag pattern.
type Pattern struct {
	text   string
	length int

	captureAt int // -1 if there is no capture
	boundary  *Boundary

	diag Diagnosis
	err  *SyntaxError
}

// Text returns the pattern source.
func (p *Pattern) Text() string { return p.text }

// Len reports how many bytes of Text take part in matching.
// For valid patterns it equals len(Text()); for rejected patterns it
// is the index where parsing stopped.
func (p *Pattern) Len() int { return p.length }

func (p *Pattern) Diagnosis() Diagnosis { return p.diag }

// Err returns a *SyntaxError for patterns that are not Valid.
func (p *Pattern) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

// Capture returns the index of the capture marker.
func (p *Pattern) Capture() (int, bool) {
	if p.captureAt < 0 {
		return 0, false
	}
	return p.captureAt, true
}

// Boundary returns the capture boundary.
// It reports false for patterns without a capture and for trailing
// captures, which run to the end of the tag.
func (p *Pattern) Boundary() (Boundary, bool) {
	if p.boundary == nil {
		return Boundary{}, false
	}
	return *p.boundary, true
}

// IsTrailingCapture reports whether the capture runs to the end of the tag.
func (p *Pattern) IsTrailingCapture() bool {
	return p.captureAt >= 0 && p.boundary == nil
}

// String returns a multi-line dump of the compiled pattern.
func (p *Pattern) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pattern: %s\n", p.text)
	fmt.Fprintf(&sb, "\tlength: %d\n", p.length)
	if pos, ok := p.Capture(); ok {
		fmt.Fprintf(&sb, "\tcapture: %d\n", pos)
		if b, ok := p.Boundary(); ok {
			fmt.Fprintf(&sb, "\tboundary:\n")
			fmt.Fprintf(&sb, "\t\tstop: %q\n", b.Stop)
			fmt.Fprintf(&sb, "\t\tskip: %d\n", b.Skip)
			fmt.Fprintf(&sb, "\t\tresume: %d\n", b.Resume)
		} else {
			fmt.Fprintf(&sb, "\tboundary: end of tag\n")
		}
	} else {
		fmt.Fprintf(&sb, "\tcapture: none\n")
	}
	fmt.Fprintf(&sb, "\tdiagnosis: %s", p.diag)
	if p.err != nil {
		fmt.Fprintf(&sb, " (%s)", p.err.Reason)
	}
	return sb.String()
}

// SyntaxError describes why a pattern was rejected.
type SyntaxError struct {
	Pattern   string
	Pos       int
	Diagnosis Diagnosis
	Reason    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pattern %q: offset %d: %s", e.Pattern, e.Pos, e.Reason)
}
