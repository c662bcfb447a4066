package main

import (
	"github.com/quasilyte/buzz"
	"github.com/quasilyte/buzz/filters"
)

type worker struct {
	id int

	all bool

	set        *buzz.PatternSet
	filterExpr *filters.Expr

	buf []buzz.Result
}

// matchTag returns the results to report for tag along with the
// number of matches among them.
func (w *worker) matchTag(tag string) ([]buzz.Result, int) {
	w.buf = w.set.MatchTagTo(w.buf[:0], tag, !w.all)
	if len(w.buf) == 0 {
		return nil, 0
	}

	numMatches := 0
	results := make([]buzz.Result, 0, len(w.buf))
	for _, res := range w.buf {
		if !applyFilter(w.filterExpr, res) {
			continue
		}
		if res.Matched {
			numMatches++
		}
		results = append(results, res)
	}
	return results, numMatches
}
