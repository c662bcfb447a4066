package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// fileConfig is the YAML config file layout:
//
//	patterns:
//	  - patterns/*.txt
//	filter: $capture.IsSemver()
//	output: json
//	limit: 100
//	colors:
//	  tag: blue
//	  capture: red
type fileConfig struct {
	Patterns []string `yaml:"patterns"`
	Filter   string   `yaml:"filter"`
	Output   string   `yaml:"output"`
	Format   string   `yaml:"format"`
	Workers  uint     `yaml:"workers"`
	Limit    *uint64  `yaml:"limit"`
	Colors   struct {
		Tag     string `yaml:"tag"`
		Capture string `yaml:"capture"`
	} `yaml:"colors"`
}

func readConfig(filename string) (*fileConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var config fileConfig
	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", filename)
	}

	// Pattern paths are relative to the config file location.
	dir := filepath.Dir(filename)
	for i, path := range config.Patterns {
		if !filepath.IsAbs(path) {
			config.Patterns[i] = filepath.Join(dir, path)
		}
	}
	return &config, nil
}

func (p *program) applyConfig(config *fileConfig) {
	args := p.args
	if !p.optionIsSet("patterns") {
		args.Patterns = config.Patterns
	}
	if !p.optionIsSet("filter") {
		args.Filter = config.Filter
	}
	if !p.optionIsSet("output") {
		args.Output = config.Output
	}
	if !p.optionIsSet("format") {
		args.Format = config.Format
	}
	if !p.optionIsSet("workers") {
		args.Workers = config.Workers
	}
	if !p.optionIsSet("limit") && config.Limit != nil {
		args.Limit = *config.Limit
	}
	if !p.optionIsSet("color-tag") {
		args.TagColor = config.Colors.Tag
	}
	if !p.optionIsSet("color-capture") {
		args.CaptureColor = config.Colors.Capture
	}
}
