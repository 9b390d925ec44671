package gen

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"text/template"

	"github.com/syssam/tmplgen/schema"
)

// Render renders the template for a table and returns the content together
// with the target settings of this call. Settings start from the category
// defaults, are overridden by the template front matter and then by the
// settings functions the body calls while it executes.
func Render(d *Descriptor, t *schema.Table, opts ...Option) (string, TargetSettings, error) {
	c, err := NewConfig(opts...)
	if err != nil {
		return "", TargetSettings{}, err
	}
	n, err := NewNode(c, t)
	if err != nil {
		return "", TargetSettings{}, err
	}
	out, settings, err := c.render(d, n)
	return string(out), settings, err
}

// render renders a resolved template for a node.
func (c *Config) render(d *Descriptor, n *Node) ([]byte, TargetSettings, error) {
	cat, err := c.category(d)
	if err != nil {
		return nil, TargetSettings{}, NewTemplateRenderError(d.Name, "category", "", err)
	}
	settings := cat.Defaults()
	d.Header.apply(&settings)
	var out []byte
	if d.native != nil {
		if out, err = d.native.Render(n, &settings); err != nil {
			return nil, settings, renderError(d.Name, err)
		}
	} else {
		if out, err = execute(d, n, &settings); err != nil {
			return nil, settings, err
		}
	}
	if err := c.targetName(d, n, cat, &settings); err != nil {
		return nil, settings, err
	}
	if c.Format {
		if out, err = format(settings, out); err != nil {
			return nil, settings, NewTemplateRenderError(d.Name, "output", "invalid generated output", err)
		}
	}
	return out, settings, nil
}

// execute runs the text body with the settings functions bound to the
// settings of this call.
func execute(d *Descriptor, n *Node, settings *TargetSettings) ([]byte, error) {
	tmpl, err := template.New(d.Name).
		Option("missingkey=error").
		Funcs(Funcs).
		Funcs(settingsFuncs(settings)).
		Parse(d.Body)
	if err != nil {
		return nil, renderError(d.Name, err)
	}
	var b bytes.Buffer
	if err := tmpl.Execute(&b, n); err != nil {
		return nil, renderError(d.Name, err)
	}
	return b.Bytes(), nil
}

// targetName derives the file name when the template did not set it, and
// expands front matter file names containing template actions.
func (c *Config) targetName(d *Descriptor, n *Node, cat *Category, settings *TargetSettings) error {
	switch {
	case settings.FileName == "":
		base, err := Snake(n.Name)
		if err != nil {
			return err
		}
		settings.FileName = base + cat.Suffix
	case strings.Contains(settings.FileName, "{{"):
		tmpl, err := template.New(d.Name + ".filename").Option("missingkey=error").Funcs(Funcs).Parse(settings.FileName)
		if err != nil {
			return NewTemplateRenderError(d.Name, "filename", "", err)
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, n); err != nil {
			return NewTemplateRenderError(d.Name, "filename", "", err)
		}
		settings.FileName = b.String()
	}
	if err := settings.check(); err != nil {
		return NewTemplateRenderError(d.Name, "filename", "", err)
	}
	return nil
}

// settingsFuncs returns the functions a template body uses to declare its
// target settings. They write to the settings of one render call only.
func settingsFuncs(s *TargetSettings) template.FuncMap {
	return template.FuncMap{
		"target": func(dir string) string {
			s.Directory = dir
			return ""
		},
		"filename": func(name string) string {
			s.FileName = name
			return ""
		},
		"dirSuffix": func(suffix string) string {
			s.DirSuffix = suffix
			return ""
		},
		"policy": func(name string) (string, error) {
			p, err := ParsePolicy(name)
			if err != nil {
				return "", err
			}
			s.Policy = p
			return "", nil
		},
		"generateOnce": func() string {
			s.Policy = GenerateOnce
			return ""
		},
		"alwaysRegenerate": func() string {
			s.Policy = AlwaysRegenerate
			return ""
		},
		"pkg": func() string {
			return s.Package()
		},
	}
}

var (
	fieldErrRe = []*regexp.Regexp{
		regexp.MustCompile(`can't evaluate field (\w+)`),
		regexp.MustCompile(`map has no entry for key "([^"]*)"`),
		regexp.MustCompile(`function "(\w+)" not defined`),
		regexp.MustCompile(`nil pointer evaluating [^.]*\.(\w+)`),
		regexp.MustCompile(`at <([^>]+)>`),
	}
	lineErrRe = regexp.MustCompile(`^template: [^:]+:(\d+(?::\d+)?)`)
)

// renderError wraps a template fault, naming the offending field or
// expansion point when the error reveals it.
func renderError(name string, err error) error {
	var re *TemplateRenderError
	if errors.As(err, &re) {
		return err
	}
	var ie *InvalidIdentifierError
	if errors.As(err, &ie) {
		return err
	}
	msg := err.Error()
	field := ""
	for _, re := range fieldErrRe {
		if m := re.FindStringSubmatch(msg); m != nil {
			field = m[1]
			break
		}
	}
	if field == "" {
		if m := lineErrRe.FindStringSubmatch(msg); m != nil {
			field = "line " + m[1]
		}
	}
	return NewTemplateRenderError(name, field, "", err)
}
