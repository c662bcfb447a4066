package main

import (
	"github.com/jessevdk/go-flags"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type arguments struct {
	Patterns []string `short:"p" long:"patterns" value-name:"FILE" description:"patterns file or doublestar glob, can be repeated"`
	Config   string   `short:"c" long:"config" value-name:"FILE" description:"YAML config file, command-line flags take precedence"`
	Filter   string   `short:"f" long:"filter" description:"Go expr that rejects results, like '$capture.IsSemver()'"`

	All    bool   `short:"a" long:"all" description:"report non-matching tag/pattern pairs too"`
	Output string `short:"o" long:"output" choice:"text" choice:"json" description:"output mode (default: text)"`
	Format string `long:"format" description:"output format for text mode, using the Go templates syntax"`
	Dump   bool   `long:"dump" description:"print the compiled patterns and exit"`

	Workers uint   `short:"j" long:"workers" description:"number of concurrent workers (default: number of CPUs)"`
	Limit   uint64 `long:"limit" description:"stop after this many results, 0 for unlimited (default: 1000)"`

	NoColor      bool   `long:"no-color" description:"disable colored output"`
	TagColor     string `long:"color-tag" description:"{{.Tag}} text color, can also override via $BUZZ_COLOR_TAG"`
	CaptureColor string `long:"color-capture" description:"{{.Capture}} text color, can also override via $BUZZ_COLOR_CAPTURE"`

	Verbose    bool   `short:"v" long:"verbose" description:"turn on additional debug logging"`
	CPUProfile string `long:"cpuprofile" value-name:"FILE" description:"write CPU profile to the specified file"`
	MemProfile string `long:"memprofile" value-name:"FILE" description:"write memory profile to the specified file"`
	Version    bool   `short:"V" long:"version" description:"display the version and exit"`

	Positional struct {
		Tags []string `positional-arg-name:"tag"`
	} `positional-args:"yes"`
}

const defaultLimit = 1000

const usageText = `[OPTIONS] [tag...]

Every tag is matched against every loaded pattern.
Tags are read from stdin, one per line, if none are given as arguments.

Examples:
  # Match a single tag.
  buzz -p patterns.txt python:3.8.5
  # Match tags from a file, print JSON lines.
  buzz -p 'patterns/**/*.txt' -o json < tags.txt
  # Keep only results with a semver capture.
  buzz -p patterns.txt -f '$capture.IsSemver()' python:3.8.5

Exit status:
  0 if something is matched
  1 if nothing is matched
  2 if error occurred`

func parseArgs(argv []string) (*arguments, *flags.Parser, error) {
	args := &arguments{
		Limit: defaultLimit,
	}
	parser := flags.NewParser(args, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "buzz"
	parser.Usage = usageText

	if _, err := parser.ParseArgs(argv); err != nil {
		return nil, parser, err
	}
	return args, parser, nil
}
