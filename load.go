package buzz

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// PatternSet is an ordered collection of valid patterns.
//
// A PatternSet is not safe for concurrent modification, but once
// loading is done it can be matched against from many goroutines.
type PatternSet struct {
	patterns []*Pattern
}

func NewPatternSet() *PatternSet {
	return &PatternSet{}
}

// Add compiles raw and keeps the result if it is valid.
// The compiled pattern is returned in both cases.
func (s *PatternSet) Add(raw string) (*Pattern, error) {
	p := Compile(raw)
	if err := p.Err(); err != nil {
		return p, err
	}
	s.patterns = append(s.patterns, p)
	return p, nil
}

func (s *PatternSet) Len() int { return len(s.patterns) }

// Patterns returns the loaded patterns, most recently added first.
func (s *PatternSet) Patterns() []*Pattern {
	result := make([]*Pattern, len(s.patterns))
	for i, p := range s.patterns {
		result[len(result)-1-i] = p
	}
	return result
}

// Rejection is a pattern line that was not loaded.
type Rejection struct {
	Line int
	Raw  string
	Err  error
}

// LoadReport summarizes a single Load call.
type LoadReport struct {
	Source   string
	Loaded   int
	Rejected []Rejection
}

// Load reads patterns from r, one per line.
//
// Surrounding whitespace is trimmed and empty lines are skipped.
// Lines that do not compile into a valid pattern are listed in the
// report and never loaded. The returned error is only about I/O.
func (s *PatternSet) Load(r io.Reader) (*LoadReport, error) {
	report := &LoadReport{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		if _, err := s.Add(raw); err != nil {
			report.Rejected = append(report.Rejected, Rejection{
				Line: line,
				Raw:  raw,
				Err:  err,
			})
			continue
		}
		report.Loaded++
	}
	if err := scanner.Err(); err != nil {
		return report, errors.Wrapf(err, "read patterns (line %d)", line+1)
	}
	return report, nil
}

// LoadFile loads patterns from the named file.
func (s *PatternSet) LoadFile(filename string) (*LoadReport, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open patterns file")
	}
	defer f.Close()

	report, err := s.Load(f)
	if report != nil {
		report.Source = filename
	}
	if err != nil {
		return report, errors.Wrap(err, filename)
	}
	return report, nil
}

// LoadFiles loads every file named by the arguments.
// An argument can be a doublestar glob like "patterns/**/*.txt";
// files matched by one glob are loaded in lexical order.
func (s *PatternSet) LoadFiles(paths ...string) ([]*LoadReport, error) {
	var reports []*LoadReport
	for _, path := range paths {
		filenames, err := expandPath(path)
		if err != nil {
			return reports, err
		}
		for _, filename := range filenames {
			report, err := s.LoadFile(filename)
			if err != nil {
				return reports, err
			}
			reports = append(reports, report)
		}
	}
	return reports, nil
}

func expandPath(path string) ([]string, error) {
	if !hasGlobMeta(path) {
		return []string{path}, nil
	}
	if !doublestar.ValidatePathPattern(path) {
		return nil, errors.Errorf("bad glob pattern %q", path)
	}
	filenames, err := doublestar.FilepathGlob(path, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "glob %q", path)
	}
	if len(filenames) == 0 {
		return nil, errors.Errorf("no pattern files match %q", path)
	}
	sort.Strings(filenames)
	return filenames, nil
}

func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
