package buzz

import (
	"github.com/valyala/fastjson"
)

// Record is a flat view of a Result, suitable for templates and
// line-delimited output.
type Record struct {
	Tag          string
	Pattern      string
	Matched      bool
	Captured     bool
	Capture      string
	CaptureStart int
	CaptureEnd   int
}

func NewRecord(r Result) Record {
	return Record{
		Tag:          r.Tag,
		Pattern:      r.Pattern.Text(),
		Matched:      r.Matched,
		Captured:     r.Captured,
		Capture:      r.CaptureText(),
		CaptureStart: r.CaptureStart,
		CaptureEnd:   r.CaptureEnd,
	}
}

// JSONEncoder renders results as JSON objects:
//
//	{"tag":"python:3.8.5","pattern":"python:#<1>.*","match":true,"capture_start":7,"capture_end":10,"capture":"3.8"}
//
// The "capture" key is present only if the capture was reached.
// A JSONEncoder reuses its memory between calls and must not be
// shared between goroutines.
type JSONEncoder struct {
	arena fastjson.Arena
}

// Append appends the JSON encoding of r to dst, without a trailing newline.
func (e *JSONEncoder) Append(dst []byte, r Result) []byte {
	a := &e.arena
	a.Reset()

	o := a.NewObject()
	o.Set("tag", a.NewString(r.Tag))
	o.Set("pattern", a.NewString(r.Pattern.Text()))
	if r.Matched {
		o.Set("match", a.NewTrue())
	} else {
		o.Set("match", a.NewFalse())
	}
	o.Set("capture_start", a.NewNumberInt(r.CaptureStart))
	o.Set("capture_end", a.NewNumberInt(r.CaptureEnd))
	if r.Captured {
		o.Set("capture", a.NewString(r.CaptureText()))
	}
	return o.MarshalTo(dst)
}
