package ui

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"aquacheck/app"
	"aquacheck/domain/water"
	"aquacheck/internal/errors"

	"github.com/gin-gonic/gin"
)

type fieldView struct {
	Spec  water.Spec
	Value string
}

type bandView struct {
	Label       string
	Unit        string
	Value       float64
	Band        water.Band
	Description string
}

type resultView struct {
	Result      *app.AnalysisResult
	Color       string
	Bands       []bandView
	Adjustments []water.Adjustment
}

type pageData struct {
	Theme  Theme
	Themes []string
	Fields []fieldView
	Error  string
	Result *resultView
	Guide  template.HTML
}

func (s *Server) page(c *gin.Context) pageData {
	return pageData{
		Theme:  s.themes.Get(c.Query("theme")),
		Themes: s.themes.Names(),
	}
}

// fields builds the form inputs, prefilled from submitted values or the
// midpoint of each healthy band.
func fields(submitted map[water.Parameter]string) []fieldView {
	specs := water.Specs()
	out := make([]fieldView, len(specs))
	for i, spec := range specs {
		value, ok := submitted[spec.Parameter]
		if !ok {
			value = num((spec.Nominal.Min + spec.Nominal.Max) / 2)
		}
		out[i] = fieldView{Spec: spec, Value: value}
	}
	return out
}

func (s *Server) handleIndex(c *gin.Context) {
	data := s.page(c)
	data.Fields = fields(nil)
	s.renderTemplate(c, http.StatusOK, "index.html", data)
}

func (s *Server) handleGuide(c *gin.Context) {
	data := s.page(c)
	data.Guide = s.guide
	s.renderTemplate(c, http.StatusOK, "guide.html", data)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	data := s.page(c)
	if theme := c.PostForm("theme"); theme != "" {
		data.Theme = s.themes.Get(theme)
	}

	submitted := make(map[water.Parameter]string, water.Count)
	for _, p := range water.Parameters {
		if raw, ok := c.GetPostForm(p.String()); ok {
			submitted[p] = strings.TrimSpace(raw)
		}
	}
	data.Fields = fields(submitted)

	values, err := parseForm(submitted)
	if err == nil {
		var result *app.AnalysisResult
		result, err = s.analysis.HandleSubmission(c.Request.Context(), values)
		if err == nil {
			data.Result = newResultView(result, data.Theme)
			s.renderTemplate(c, http.StatusOK, "result.html", data)
			return
		}
	}

	appErr := errors.FromDomain(err)
	data.Error = appErr.Error()
	s.renderTemplate(c, errors.HTTPStatus(appErr.Code), "index.html", data)
}

// parseForm turns submitted strings into measurements. Absent fields are left
// out so the schema reports them as missing.
func parseForm(submitted map[water.Parameter]string) (map[string]float64, error) {
	values := make(map[string]float64, len(submitted))
	for _, p := range water.Parameters {
		raw, ok := submitted[p]
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("%s: %q is not a number", p, raw))
		}
		values[p.String()] = v
	}
	return values, nil
}

func newResultView(result *app.AnalysisResult, theme Theme) *resultView {
	view := &resultView{
		Result:      result,
		Color:       theme.ResultColor(result.Verdict.Potable),
		Adjustments: result.Adjustments,
	}
	for _, spec := range water.Specs() {
		band := result.Verdict.Bands[spec.Parameter]
		view.Bands = append(view.Bands, bandView{
			Label:       spec.Label,
			Unit:        spec.Unit,
			Value:       result.Params.Get(spec.Parameter),
			Band:        band,
			Description: spec.Describe(band),
		})
	}
	return view
}
