package ui

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/gin-gonic/gin"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"num": num,
		"pct": func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
		"mul": func(a, b float64) float64 { return a * b },
	}
}

// renderTemplate executes a template into a buffer first so a failing
// template never leaves a half written page.
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("template error for %s: %v", templateName, err)
		c.String(500, "Template rendering failed")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		s.logger.Warn("error writing template response: %v", err)
	}
}
