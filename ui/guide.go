package ui

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"aquacheck/domain/water"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const parametersMarker = "<!-- parameters -->"

// renderGuide expands the parameter table into the guide markdown and
// renders it to HTML.
func renderGuide(source []byte) template.HTML {
	md := strings.Replace(string(source), parametersMarker, parameterTable(water.Specs()), 1)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.Render(doc, renderer))
}

func parameterTable(specs []water.Spec) string {
	var b strings.Builder
	b.WriteString("| Parameter | Unit | Below normal | Normal | Above normal |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, s := range specs {
		unit := s.Unit
		if unit == "" {
			unit = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | < %s: %s | %s - %s: %s | > %s: %s |\n",
			s.Label, unit,
			num(s.Nominal.Min), s.BandLabels[0],
			num(s.Nominal.Min), num(s.Nominal.Max), s.BandLabels[1],
			num(s.Nominal.Max), s.BandLabels[2])
	}
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
