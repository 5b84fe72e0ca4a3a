package ui

import (
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/yaml.v3"
)

// Theme is one presentation variant of the form and result pages
type Theme struct {
	Name       string `yaml:"name"`
	Title      string `yaml:"title"`
	Background string `yaml:"background"`
	Text       string `yaml:"text"`
	TitleColor string `yaml:"title_color"`
	Accent     string `yaml:"accent"`
	RangeColor string `yaml:"range_color"`
	Button     string `yaml:"button"`
	Potable    string `yaml:"potable"`
	NotPotable string `yaml:"not_potable"`
	Animated   bool   `yaml:"animated"`
}

// Style renders the theme as CSS custom properties. Theme values come from
// the embedded catalogue only.
func (t Theme) Style() template.CSS {
	var b strings.Builder
	fmt.Fprintf(&b, "--bg: %s; ", t.Background)
	fmt.Fprintf(&b, "--text: %s; ", t.Text)
	fmt.Fprintf(&b, "--title: %s; ", t.TitleColor)
	fmt.Fprintf(&b, "--accent: %s; ", t.Accent)
	fmt.Fprintf(&b, "--range: %s; ", t.RangeColor)
	fmt.Fprintf(&b, "--button: %s; ", t.Button)
	fmt.Fprintf(&b, "--potable: %s; ", t.Potable)
	fmt.Fprintf(&b, "--not-potable: %s;", t.NotPotable)
	return template.CSS(b.String())
}

// ResultColor returns the color used for a verdict
func (t Theme) ResultColor(potable bool) string {
	if potable {
		return t.Potable
	}
	return t.NotPotable
}

type themeFile struct {
	Themes []Theme `yaml:"themes"`
}

// ThemeCatalog holds the available themes in declaration order
type ThemeCatalog struct {
	themes      map[string]Theme
	names       []string
	defaultName string
}

// LoadThemes parses a YAML theme catalogue. defaultName must name one of the
// themes; an empty defaultName selects the first.
func LoadThemes(data []byte, defaultName string) (*ThemeCatalog, error) {
	var file themeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse themes: %w", err)
	}
	if len(file.Themes) == 0 {
		return nil, fmt.Errorf("theme catalogue is empty")
	}

	catalog := &ThemeCatalog{themes: make(map[string]Theme, len(file.Themes))}
	for _, theme := range file.Themes {
		name := strings.ToLower(strings.TrimSpace(theme.Name))
		if name == "" {
			return nil, fmt.Errorf("theme without a name")
		}
		if _, dup := catalog.themes[name]; dup {
			return nil, fmt.Errorf("duplicate theme %q", name)
		}
		theme.Name = name
		catalog.themes[name] = theme
		catalog.names = append(catalog.names, name)
	}

	if defaultName == "" {
		defaultName = catalog.names[0]
	}
	defaultName = strings.ToLower(defaultName)
	if _, ok := catalog.themes[defaultName]; !ok {
		return nil, fmt.Errorf("unknown default theme %q (available: %s)", defaultName, strings.Join(catalog.names, ", "))
	}
	catalog.defaultName = defaultName
	return catalog, nil
}

// Get returns the named theme, or the default for an unknown name
func (c *ThemeCatalog) Get(name string) Theme {
	if theme, ok := c.themes[strings.ToLower(name)]; ok {
		return theme
	}
	return c.themes[c.defaultName]
}

// Names lists theme names in declaration order
func (c *ThemeCatalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Default returns the default theme name
func (c *ThemeCatalog) Default() string {
	return c.defaultName
}
