package buzz

// Result describes a single tag/pattern evaluation.
type Result struct {
	Tag     string
	Pattern *Pattern

	Matched bool

	// Captured is set when matching reached the capture marker.
	Captured bool

	// CaptureStart is the tag offset where the capture begins, or -1.
	CaptureStart int

	// CaptureEnd is the tag offset where a bounded capture stopped:
	// the index of the terminating stop byte, or the last tag index if
	// the tag ran out first. It is -1 when there is no capture or when
	// the capture runs to the end of the tag.
	CaptureEnd int

	// stopFound is set when a bounded capture was terminated by its
	// stop byte rather than by the end of the tag.
	stopFound bool
}

// Open reports whether the capture runs to the end of the tag.
func (r Result) Open() bool {
	return r.Captured && r.CaptureEnd < 0
}

// CaptureText returns the captured part of the tag.
// A bounded capture excludes its terminating stop byte; a capture that
// ran out of tag before the stop byte runs to the end of the tag.
func (r Result) CaptureText() string {
	switch {
	case !r.Captured:
		return ""
	case r.stopFound:
		return r.Tag[r.CaptureStart:r.CaptureEnd]
	default:
		return r.Tag[r.CaptureStart:]
	}
}

// Match applies the pattern to the tag.
//
// Patterns are anchored at the start of the tag. Matching succeeds once
// the pattern is exhausted, even if the tag has more bytes.
// Match does not allocate. A pattern that is not Valid never matches.
func (p *Pattern) Match(tag string) Result {
	res := Result{
		Tag:          tag,
		Pattern:      p,
		Matched:      true,
		CaptureStart: -1,
		CaptureEnd:   -1,
	}
	if p.diag != Valid {
		res.Matched = false
		return res
	}

	text := p.text[:p.length]
	tagIndex := 0
	patternIndex := 0
	state := stateLiteral

	for res.Matched && tagIndex < len(tag) && patternIndex < len(text) {
		switch text[patternIndex] {
		case WildcardChar:
			next := patternIndex + 1
			for next < len(text) && text[next] == WildcardChar {
				next++
			}
			if next == len(text) {
				tagIndex = len(tag)
				patternIndex = next
				state = stateLiteral
				break
			}
			if tag[tagIndex] == text[next] {
				// The anchor is matched as a literal on the next iteration.
				patternIndex = next
				state = stateLiteral
			} else {
				state = stateWildcard
				tagIndex++
			}

		case CaptureChar:
			res.Captured = true
			res.CaptureStart = tagIndex
			b := p.boundary
			if b == nil {
				tagIndex = len(tag)
				patternIndex = len(text)
				break
			}
			patternIndex = b.Resume
			seen := 0
			for tagIndex < len(tag) {
				if tag[tagIndex] == b.Stop {
					seen++
					if seen > b.Skip {
						break
					}
				}
				tagIndex++
			}
			if tagIndex < len(tag) {
				res.CaptureEnd = tagIndex
				res.stopFound = true
			} else {
				res.CaptureEnd = len(tag) - 1
			}

		default:
			res.Matched = tag[tagIndex] == text[patternIndex]
			tagIndex++
			patternIndex++
		}
	}

	if state == stateWildcard {
		// The tag ended before the wildcard found its anchor.
		res.Matched = false
	}
	if !res.Matched {
		return res
	}
	// Tag bytes left after the pattern is exhausted are accepted;
	// pattern bytes left after the tag is exhausted are not,
	// unless they are all wildcards.
	for patternIndex < len(text) && text[patternIndex] == WildcardChar {
		patternIndex++
	}
	res.Matched = patternIndex == len(text)
	return res
}
