package buzz

// MatchTag evaluates every pattern of the set against tag,
// most recently added pattern first.
// With onlyMatches set, non-matching results are dropped.
func (s *PatternSet) MatchTag(tag string, onlyMatches bool) []Result {
	return s.MatchTagTo(nil, tag, onlyMatches)
}

// MatchTagTo is like MatchTag, but appends to dst.
func (s *PatternSet) MatchTagTo(dst []Result, tag string, onlyMatches bool) []Result {
	for i := len(s.patterns) - 1; i >= 0; i-- {
		res := s.patterns[i].Match(tag)
		if onlyMatches && !res.Matched {
			continue
		}
		dst = append(dst, res)
	}
	return dst
}
