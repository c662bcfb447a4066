package buzz

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type compileTest struct {
	input  string
	output []string
}

func formatPattern(p *Pattern) []string {
	lines := []string{fmt.Sprintf("len %d", p.Len())}
	if pos, ok := p.Capture(); ok {
		b, hasBoundary := p.Boundary()
		switch {
		case hasBoundary:
			lines = append(lines, fmt.Sprintf("capture %d until %q skip=%d resume=%d", pos, b.Stop, b.Skip, b.Resume))
		case p.Diagnosis() == Valid:
			lines = append(lines, fmt.Sprintf("capture %d to end", pos))
		default:
			lines = append(lines, fmt.Sprintf("capture %d", pos))
		}
	} else {
		lines = append(lines, "no capture")
	}
	if p.Diagnosis() == Valid {
		lines = append(lines, "Valid")
	} else {
		var syntaxErr *SyntaxError
		if err, ok := p.Err().(*SyntaxError); ok {
			syntaxErr = err
		}
		lines = append(lines, p.Diagnosis().String()+": "+syntaxErr.Reason)
	}
	return lines
}

func runCompileTest(t *testing.T, i int, test compileTest) {
	t.Helper()
	t.Run(fmt.Sprintf("test%d", i), func(t *testing.T) {
		p := Compile(test.input)
		have := formatPattern(p)
		if diff := cmp.Diff(have, test.output); diff != "" {
			t.Errorf("compile `%s` (+want -have):\n%s", test.input, diff)
			fmt.Printf("Output:\n")
			for _, line := range have {
				fmt.Printf("`%s`,\n", line)
			}
		}
	})
}

func compileTestsFromMap(m map[string][]string) []compileTest {
	result := make([]compileTest, 0, len(m))
	for input, output := range m {
		result = append(result, compileTest{input: input, output: output})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].input < result[j].input
	})
	return result
}

func TestCompileLiteral(t *testing.T) {
	tests := compileTestsFromMap(map[string][]string{
		``:         {`len 0`, `no capture`, `Valid`},
		`os:Linux`: {`len 8`, `no capture`, `Valid`},
		`<a>`:      {`len 3`, `no capture`, `Valid`},
		`a>b<c`:    {`len 5`, `no capture`, `Valid`},
		`os:*`:     {`len 4`, `no capture`, `Valid`},
		`os:*n*u*x`: {
			`len 9`,
			`no capture`,
			`Valid`,
		},
		`omg**`: {`len 5`, `no capture`, `Valid`},

		`omg wtf bbq`: {
			`len 3`,
			`no capture`,
			`Invalid: whitespace is not allowed`,
		},
		"os:\tLinux": {
			`len 3`,
			`no capture`,
			`Invalid: whitespace is not allowed`,
		},
	})

	for i, test := range tests {
		runCompileTest(t, i, test)
	}
}

func TestCompileCapture(t *testing.T) {
	tests := compileTestsFromMap(map[string][]string{
		`os:#`:        {`len 4`, `capture 3 to end`, `Valid`},
		`os:#<0>`:     {`len 7`, `capture 3 to end`, `Valid`},
		`python:#`:    {`len 8`, `capture 7 to end`, `Valid`},
		`python:#<5>`: {`len 11`, `capture 7 to end`, `Valid`},
		`#`:           {`len 1`, `capture 0 to end`, `Valid`},

		`python:#<1>.`: {
			`len 12`,
			`capture 7 until '.' skip=1 resume=11`,
			`Valid`,
		},
		`python:#.`: {
			`len 9`,
			`capture 7 until '.' skip=0 resume=8`,
			`Valid`,
		},
		`python:#.*`: {
			`len 10`,
			`capture 7 until '.' skip=0 resume=8`,
			`Valid`,
		},
		`python:#<1>.*`: {
			`len 13`,
			`capture 7 until '.' skip=1 resume=11`,
			`Valid`,
		},
		`python:#<>.`: {
			`len 11`,
			`capture 7 until '.' skip=0 resume=10`,
			`Valid`,
		},
		`python:#<12>-x`: {
			`len 14`,
			`capture 7 until '-' skip=12 resume=12`,
			`Valid`,
		},
		`*:#.*`: {
			`len 5`,
			`capture 2 until '.' skip=0 resume=3`,
			`Valid`,
		},
		`x#>`: {
			`len 3`,
			`capture 1 until '>' skip=0 resume=2`,
			`Valid`,
		},
		`python:#*`: {
			`len 9`,
			`capture 7 until '*' skip=0 resume=8`,
			`Valid`,
		},
		`python:#<1>*`: {
			`len 12`,
			`capture 7 until '*' skip=1 resume=11`,
			`Valid`,
		},
		`python:#*x`: {
			`len 10`,
			`capture 7 until '*' skip=0 resume=8`,
			`Valid`,
		},
		`python:#*#`: {
			`len 9`,
			`capture 7 until '*' skip=0 resume=8`,
			`Invalid: capture after capture is not allowed`,
		},
	})

	for i, test := range tests {
		runCompileTest(t, i, test)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := compileTestsFromMap(map[string][]string{
		`python:#<a>.`: {
			`len 7`,
			`capture 7`,
			`Invalid: non-numeric character in skip count`,
		},
		`python:#<1a>.`: {
			`len 7`,
			`capture 7`,
			`Invalid: non-numeric character in skip count`,
		},
		`python:#<1`: {
			`len 7`,
			`capture 7`,
			`Invalid: missing boundary close`,
		},
		`python:#<`: {
			`len 7`,
			`capture 7`,
			`Invalid: missing boundary close`,
		},
		`python:#<99999999999>.`: {
			`len 7`,
			`capture 7`,
			`Invalid: skip count is too large`,
		},
		`omg#<0>.wtf#<0>.bbq`: {
			`len 11`,
			`capture 3 until '.' skip=0 resume=7`,
			`Invalid: capture after capture is not allowed`,
		},
		`a##`: {
			`len 2`,
			`capture 1 until '#' skip=0 resume=2`,
			`Invalid: capture after capture is not allowed`,
		},
		`python:# `: {
			`len 8`,
			`capture 7 until ' ' skip=0 resume=8`,
			`Invalid: whitespace is not allowed`,
		},
		`omg*#`: {
			`len 4`,
			`no capture`,
			`NoCaptureAfterWildcard: capture after wildcard is not allowed`,
		},
		`omg**#`: {
			`len 5`,
			`no capture`,
			`NoCaptureAfterWildcard: capture after wildcard is not allowed`,
		},
		`*#.`: {
			`len 1`,
			`no capture`,
			`NoCaptureAfterWildcard: capture after wildcard is not allowed`,
		},
	})

	for i, test := range tests {
		runCompileTest(t, i, test)
	}
}

func TestCompileMaxLength(t *testing.T) {
	longest := strings.Repeat("a", MaxPatternLength)
	p := Compile(longest)
	if p.Diagnosis() != Valid || p.Len() != MaxPatternLength {
		t.Fatalf("%d-byte pattern: have %s/%d, want Valid/%d",
			MaxPatternLength, p.Diagnosis(), p.Len(), MaxPatternLength)
	}

	tooLong := longest + "#"
	p = Compile(tooLong)
	want := []string{`len 0`, `no capture`, `Invalid: pattern is too long`}
	if diff := cmp.Diff(formatPattern(p), want); diff != "" {
		t.Fatalf("%d-byte pattern (+want -have):\n%s", len(tooLong), diff)
	}
	if p.Text() != tooLong {
		t.Fatalf("text is not preserved for rejected patterns")
	}
}

func TestCompileNoSpecialChars(t *testing.T) {
	inputs := []string{
		`os:Linux`,
		`python:3.8.5`,
		`env:prod`,
		`a`,
		`<>`,
		`key=value;other=1`,
	}
	for _, input := range inputs {
		p := Compile(input)
		if p.Diagnosis() != Valid {
			t.Errorf("compile `%s`: have %s, want Valid", input, p.Diagnosis())
		}
		if _, ok := p.Capture(); ok {
			t.Errorf("compile `%s`: unexpected capture", input)
		}
		if p.Err() != nil {
			t.Errorf("compile `%s`: unexpected error: %v", input, p.Err())
		}
		if p.Text() != input || p.Len() != len(input) {
			t.Errorf("compile `%s`: have text=%q len=%d", input, p.Text(), p.Len())
		}
	}
}

func TestCompileTrailingCapture(t *testing.T) {
	p := Compile(`os:#`)
	pos, ok := p.Capture()
	if !ok || pos != 3 {
		t.Fatalf("capture: have %d/%v, want 3/true", pos, ok)
	}
	if _, ok := p.Boundary(); ok {
		t.Fatalf("trailing capture should have no boundary")
	}
	if !p.IsTrailingCapture() {
		t.Fatalf("IsTrailingCapture() is false")
	}
	if Compile(`os:Linux`).IsTrailingCapture() {
		t.Fatalf("pattern without capture reported as trailing capture")
	}
	if Compile(`python:#<1>.`).IsTrailingCapture() {
		t.Fatalf("bounded capture reported as trailing capture")
	}
}

func TestCompileBoundary(t *testing.T) {
	p := Compile(`python:#<1>.`)
	b, ok := p.Boundary()
	if !ok {
		t.Fatalf("no boundary")
	}
	want := Boundary{Stop: '.', Skip: 1, Resume: 11}
	if diff := cmp.Diff(b, want); diff != "" {
		t.Fatalf("boundary (+want -have):\n%s", diff)
	}
}

func TestSyntaxError(t *testing.T) {
	p := Compile(`omg wtf bbq`)
	err, ok := p.Err().(*SyntaxError)
	if !ok {
		t.Fatalf("Err() returned %T, want *SyntaxError", p.Err())
	}
	want := &SyntaxError{
		Pattern:   `omg wtf bbq`,
		Pos:       3,
		Diagnosis: Invalid,
		Reason:    reasonWhitespace,
	}
	if diff := cmp.Diff(err, want); diff != "" {
		t.Fatalf("error (+want -have):\n%s", diff)
	}
	const wantMessage = `pattern "omg wtf bbq": offset 3: whitespace is not allowed`
	if err.Error() != wantMessage {
		t.Fatalf("message:\nhave: %s\nwant: %s", err.Error(), wantMessage)
	}
}

func TestDiagnosisString(t *testing.T) {
	tests := []struct {
		d    Diagnosis
		want string
	}{
		{Valid, "Valid"},
		{Invalid, "Invalid"},
		{NoCaptureAfterWildcard, "NoCaptureAfterWildcard"},
		{Diagnosis(42), "Diagnosis(42)"},
	}
	for _, test := range tests {
		if have := test.d.String(); have != test.want {
			t.Errorf("have %s, want %s", have, test.want)
		}
	}
}

func TestPatternString(t *testing.T) {
	tests := []struct {
		pat  string
		want string
	}{
		{
			`python:#<1>.`,
			"Pattern: python:#<1>.\n" +
				"\tlength: 12\n" +
				"\tcapture: 7\n" +
				"\tboundary:\n" +
				"\t\tstop: '.'\n" +
				"\t\tskip: 1\n" +
				"\t\tresume: 11\n" +
				"\tdiagnosis: Valid",
		},
		{
			`os:#`,
			"Pattern: os:#\n" +
				"\tlength: 4\n" +
				"\tcapture: 3\n" +
				"\tboundary: end of tag\n" +
				"\tdiagnosis: Valid",
		},
		{
			`omg*#`,
			"Pattern: omg*#\n" +
				"\tlength: 4\n" +
				"\tcapture: none\n" +
				"\tdiagnosis: NoCaptureAfterWildcard (capture after wildcard is not allowed)",
		},
	}

	for i := range tests {
		test := tests[i]
		t.Run(fmt.Sprintf("test%d", i), func(t *testing.T) {
			have := Compile(test.pat).String()
			if diff := cmp.Diff(have, test.want); diff != "" {
				t.Errorf("dump `%s` (+want -have):\n%s", test.pat, diff)
			}
		})
	}
}
