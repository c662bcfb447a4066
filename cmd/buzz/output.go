package main

import (
	"io"
	"strings"
	"text/template"

	"github.com/quasilyte/buzz"
)

type resultPrinter struct {
	w io.Writer

	json    bool
	encoder buzz.JSONEncoder
	buf     []byte

	render renderConfig
}

func newResultPrinter(w io.Writer, p *program) *resultPrinter {
	return &resultPrinter{
		w:    w,
		json: p.args.Output == outputJSON,
		render: renderConfig{
			tmpl:         p.outputTemplate,
			colors:       p.colors,
			tagColor:     p.args.TagColor,
			captureColor: p.args.CaptureColor,
		},
	}
}

func (printer *resultPrinter) Print(res buzz.Result) error {
	if printer.json {
		printer.buf = printer.encoder.Append(printer.buf[:0], res)
		printer.buf = append(printer.buf, '\n')
		_, err := printer.w.Write(printer.buf)
		return err
	}

	s, err := renderTemplate(res, printer.render)
	if err != nil {
		return err
	}
	_, err = io.WriteString(printer.w, s+"\n")
	return err
}

type renderConfig struct {
	tmpl         *template.Template
	colors       bool
	tagColor     string
	captureColor string
}

func renderTemplate(res buzz.Result, config renderConfig) (string, error) {
	rec := buzz.NewRecord(res)

	data := make(map[string]interface{}, 8)
	data["Tag"] = rec.Tag
	data["Pattern"] = rec.Pattern
	data["Matched"] = rec.Matched
	data["Captured"] = rec.Captured
	data["Capture"] = rec.Capture
	data["CaptureStart"] = rec.CaptureStart
	data["CaptureEnd"] = rec.CaptureEnd
	data["Highlight"] = highlightCapture(rec, "")

	if config.colors {
		data["Tag"] = mustColorizeText(rec.Tag, config.tagColor)
		data["Capture"] = mustColorizeText(rec.Capture, config.captureColor)
		data["Highlight"] = highlightCapture(rec, config.captureColor)
	}

	var buf strings.Builder
	buf.Grow(len(rec.Tag) * 2) // Approx
	if err := config.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// highlightCapture returns the tag with its captured part wrapped in [].
// A non-empty color replaces the brackets with ANSI coloring.
func highlightCapture(rec buzz.Record, color string) string {
	if !rec.Captured {
		return rec.Tag
	}
	start := rec.CaptureStart
	end := start + len(rec.Capture)
	capture := "[" + rec.Capture + "]"
	if color != "" {
		capture = mustColorizeText(rec.Capture, color)
	}
	return rec.Tag[:start] + capture + rec.Tag[end:]
}
