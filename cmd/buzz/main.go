package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"sync"
	"sync/atomic"
	"text/template"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/quasilyte/buzz"
	"github.com/quasilyte/buzz/filters"
)

// Following the grep tool convention.
const (
	exitMatched    = 0
	exitNotMatched = 1
	exitError      = 2
)

const defaultFormat = `{{.Tag}}: {{.Pattern}}{{if .Captured}} => {{.Capture}}{{end}}`

var version = "devel"

func main() {
	exitCode, err := mainNoExit(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "buzz: error: %v\n", err)
		os.Exit(exitError)
	}
	os.Exit(exitCode)
}

func mainNoExit(argv []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	args, parser, err := parseArgs(argv)
	if err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(stdout, err)
			return exitMatched, nil
		}
		return exitError, err
	}
	if args.Version {
		fmt.Fprintf(stdout, "buzz version %s\n", version)
		return exitMatched, nil
	}

	p := &program{
		args:   args,
		parser: parser,
		stdin:  stdin,
		stdout: stdout,
		log:    newLogger(stderr, args.Verbose),
	}
	defer p.stopCPUProfile()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"load config", p.loadConfig},
		{"validate flags", p.validateFlags},
		{"load patterns", p.loadPatterns},
		{"dump patterns", p.dumpPatterns},
		{"start profiling", p.startProfiling},
		{"compile filter", p.compileFilter},
		{"compile output format", p.compileOutputFormat},
		{"read tags", p.readTags},
		{"execute patterns", p.executePatterns},
		{"print matches", p.printMatches},
		{"finish profiling", p.finishProfiling},
	}

	for _, step := range steps {
		if p.done {
			break
		}
		p.log.Debugf("starting %q step", step.name)
		if err := step.fn(); err != nil {
			return exitError, errors.Errorf("%s: %v", step.name, err)
		}
	}

	if p.numMatches == 0 {
		return exitNotMatched, nil
	}
	return exitMatched, nil
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := &logrus.Logger{
		Out: w,
		Formatter: &logrus.TextFormatter{
			DisableTimestamp: true,
		},
		Hooks: make(logrus.LevelHooks),
		Level: logrus.InfoLevel,
	}
	if verbose {
		logger.Level = logrus.DebugLevel
	}
	return logger
}

type program struct {
	args   *arguments
	parser *flags.Parser

	stdin  io.Reader
	stdout io.Writer
	log    *logrus.Logger

	// done stops the step sequence early without an error.
	done bool

	colors bool

	cpuProfiling bool

	numMatches uint64

	filterExpr *filters.Expr

	set  *buzz.PatternSet
	tags []string

	// results holds the reported results for every tag, indexed like tags.
	results [][]buzz.Result

	outputTemplate *template.Template

	cpuProfile bytes.Buffer
}

func (p *program) optionIsSet(longName string) bool {
	opt := p.parser.FindOptionByLongName(longName)
	return opt != nil && opt.IsSet()
}

func (p *program) loadConfig() error {
	if p.args.Config == "" {
		return nil
	}
	config, err := readConfig(p.args.Config)
	if err != nil {
		return err
	}
	p.log.Debugf("loaded config %s", p.args.Config)
	p.applyConfig(config)
	return nil
}

func (p *program) validateFlags() error {
	workersLimit := uint(runtime.NumCPU() * 4)
	if p.args.Workers == 0 {
		p.args.Workers = uint(runtime.NumCPU())
	}
	if p.args.Workers > workersLimit {
		p.args.Workers = workersLimit
	}

	if len(p.args.Patterns) == 0 {
		return errors.New("no pattern files given, use -p or the config file")
	}

	switch p.args.Output {
	case "":
		p.args.Output = outputText
	case outputText, outputJSON:
		// OK.
	default:
		return errors.Errorf("output: unexpected mode %q", p.args.Output)
	}
	if p.args.Format == "" {
		p.args.Format = defaultFormat
	}

	if p.args.TagColor == "" {
		p.args.TagColor = envVarOrDefault("BUZZ_COLOR_TAG", "dark-green")
	}
	if p.args.CaptureColor == "" {
		p.args.CaptureColor = envVarOrDefault("BUZZ_COLOR_CAPTURE", "dark-red")
	}
	if _, err := colorizeText("", p.args.TagColor); err != nil {
		return errors.Wrap(err, "color-tag")
	}
	if _, err := colorizeText("", p.args.CaptureColor); err != nil {
		return errors.Wrap(err, "color-capture")
	}
	p.colors = !p.args.NoColor && isTerminal(p.stdout)

	if p.args.Limit == 0 {
		p.args.Limit = math.MaxUint64
	}

	return nil
}

func (p *program) startProfiling() error {
	if p.args.CPUProfile == "" {
		return nil
	}

	if err := pprof.StartCPUProfile(&p.cpuProfile); err != nil {
		return errors.Wrap(err, "could not start CPU profile")
	}
	p.cpuProfiling = true

	return nil
}

// stopCPUProfile is also deferred by mainNoExit, so a failed step
// doesn't leave the profiler running.
func (p *program) stopCPUProfile() {
	if !p.cpuProfiling {
		return
	}
	pprof.StopCPUProfile()
	p.cpuProfiling = false
}

func (p *program) compileFilter() error {
	expr, info, err := filters.Parse(newFilterOpTab(), p.args.Filter)
	if err != nil {
		return err
	}
	if err := checkFilter(expr, true); err != nil {
		return err
	}
	if expr.Op != filters.OpNop {
		p.log.Debugf("filter: %s", filters.Sprint(&info, expr))
	}
	p.filterExpr = expr
	return nil
}

func (p *program) loadPatterns() error {
	p.set = buzz.NewPatternSet()
	reports, err := p.set.LoadFiles(p.args.Patterns...)
	if err != nil {
		return err
	}
	for _, report := range reports {
		for _, rejected := range report.Rejected {
			p.log.WithFields(logrus.Fields{
				"file": report.Source,
				"line": rejected.Line,
			}).Warnf("skip pattern: %v", rejected.Err)
		}
		p.log.Debugf("loaded %d patterns from %s", report.Loaded, report.Source)
	}
	if p.set.Len() == 0 {
		return errors.New("no valid patterns loaded")
	}
	return nil
}

func (p *program) dumpPatterns() error {
	if !p.args.Dump {
		return nil
	}
	w := bufio.NewWriter(p.stdout)
	for _, pat := range p.set.Patterns() {
		fmt.Fprintln(w, pat.String())
	}
	p.numMatches = uint64(p.set.Len())
	p.done = true
	return w.Flush()
}

func (p *program) compileOutputFormat() error {
	var err error
	p.outputTemplate, err = template.New("output-format").Parse(p.args.Format)
	return err
}

func (p *program) readTags() error {
	if len(p.args.Positional.Tags) != 0 {
		p.tags = p.args.Positional.Tags
		return nil
	}

	scanner := bufio.NewScanner(p.stdin)
	for scanner.Scan() {
		tag := strings.TrimSpace(scanner.Text())
		if tag == "" {
			continue
		}
		p.tags = append(p.tags, tag)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read stdin")
	}
	p.log.Debugf("read %d tags from stdin", len(p.tags))
	return nil
}

type tagJob struct {
	index int
	tag   string
}

func (p *program) executePatterns() error {
	p.results = make([][]buzz.Result, len(p.tags))

	workers := make([]*worker, p.args.Workers)
	for i := range workers {
		workers[i] = &worker{
			id:         i,
			set:        p.set,
			filterExpr: p.filterExpr,
			all:        p.args.All,
		}
	}

	tagQueue := make(chan tagJob)
	var wg sync.WaitGroup
	wg.Add(len(workers))

	for _, w := range workers {
		go func(w *worker) {
			defer wg.Done()

			for job := range tagQueue {
				results, numMatches := w.matchTag(job.tag)
				p.log.Debugf("worker#%d: %q: %d results", w.id, job.tag, len(results))
				p.results[job.index] = results
				if numMatches != 0 {
					atomic.AddUint64(&p.numMatches, uint64(numMatches))
				}
			}
		}(w)
	}

	for i, tag := range p.tags {
		if atomic.LoadUint64(&p.numMatches) >= p.args.Limit {
			break
		}
		tagQueue <- tagJob{index: i, tag: tag}
	}
	close(tagQueue)
	wg.Wait()

	return nil
}

func (p *program) printMatches() error {
	w := bufio.NewWriter(p.stdout)
	printer := newResultPrinter(w, p)

	printed := uint64(0)
	limited := false
printLoop:
	for _, results := range p.results {
		for _, res := range results {
			if printed >= p.args.Limit {
				limited = true
				break printLoop
			}
			if err := printer.Print(res); err != nil {
				return err
			}
			printed++
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if limited {
		p.log.Infof("results limited to %d entries", p.args.Limit)
	}
	p.log.Debugf("found %d matches", atomic.LoadUint64(&p.numMatches))
	return nil
}

func (p *program) finishProfiling() error {
	if p.args.CPUProfile != "" {
		p.stopCPUProfile()
		err := os.WriteFile(p.args.CPUProfile, p.cpuProfile.Bytes(), 0o600)
		if err != nil {
			return errors.Wrap(err, "write CPU profile")
		}
	}

	if p.args.MemProfile != "" {
		f, err := os.Create(p.args.MemProfile)
		if err != nil {
			return errors.Wrap(err, "create mem profile")
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			return errors.Wrap(err, "write mem profile")
		}
	}

	return nil
}
