package buzz

import (
	"math"
	"strings"
)

type scanState uint8

const (
	stateLiteral scanState = iota
	stateWildcard
)

const (
	reasonTooLong          = "pattern is too long"
	reasonWhitespace       = "whitespace is not allowed"
	reasonSecondCapture    = "capture after capture is not allowed"
	reasonCaptureAfterWild = "capture after wildcard is not allowed"
	reasonMissingClose     = "missing boundary close"
	reasonNonNumericSkip   = "non-numeric character in skip count"
	reasonSkipOverflow     = "skip count is too large"
)

const maxSkip = math.MaxInt32

// Compile parses a raw pattern.
//
// Compile never fails: problems are reported through the Diagnosis
// of the returned pattern. Only Valid patterns should be matched.
func Compile(raw string) *Pattern {
	p := &Pattern{
		text:      strings.Clone(raw),
		captureAt: -1,
	}
	if len(raw) > MaxPatternLength {
		p.reject(Invalid, 0, reasonTooLong)
		return p
	}
	p.scan()
	return p
}

func (p *Pattern) scan() {
	text := p.text
	state := stateLiteral
	i := 0
	for i < len(text) {
		ch := text[i]
		switch {
		case isSpace(ch):
			p.reject(Invalid, i, reasonWhitespace)
			return

		case ch == CaptureChar:
			if p.captureAt >= 0 {
				p.reject(Invalid, i, reasonSecondCapture)
				return
			}
			if state == stateWildcard {
				p.reject(NoCaptureAfterWildcard, i, reasonCaptureAfterWild)
				return
			}
			p.captureAt = i
			b, end, reason := parseBoundary(text, i+1)
			if reason != "" {
				p.reject(Invalid, i, reason)
				return
			}
			if b == nil {
				// Trailing capture, nothing is left to scan.
				p.length = end
				return
			}
			p.boundary = b
			// The stop character is scanned again as a literal.
			i = b.Resume
			state = stateLiteral
			continue

		case ch == WildcardChar:
			state = stateWildcard

		default:
			state = stateLiteral
		}
		i++
	}
	p.length = len(text)
}

func (p *Pattern) reject(diag Diagnosis, pos int, reason string) {
	p.diag = diag
	p.length = pos
	p.err = &SyntaxError{
		Pattern:   p.text,
		Pos:       pos,
		Diagnosis: diag,
		Reason:    reason,
	}
}

// parseBoundary parses the capture boundary that starts right after
// the capture marker. A nil boundary means the capture runs to the end
// of the tag; end is then the index where parsing finished.
func parseBoundary(text string, start int) (b *Boundary, end int, reason string) {
	if start >= len(text) {
		return nil, start, ""
	}

	if text[start] != BoundaryStartChar {
		return &Boundary{Stop: text[start], Resume: start}, start, ""
	}

	i := start + 1
	skip := 0
	for i < len(text) && isDigit(text[i]) {
		digit := int(text[i] - '0')
		if skip > (maxSkip-digit)/10 {
			return nil, i, reasonSkipOverflow
		}
		skip = 10*skip + digit
		i++
	}
	if i == len(text) {
		return nil, i, reasonMissingClose
	}
	if text[i] != BoundaryEndChar {
		return nil, i, reasonNonNumericSkip
	}
	i++

	if i == len(text) {
		// "#<N>" at the end: a trailing capture, the skip count has no effect.
		return nil, i, ""
	}
	return &Boundary{Stop: text[i], Skip: skip, Resume: i}, i, ""
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}
