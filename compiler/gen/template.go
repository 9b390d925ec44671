package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Descriptor is a resolved template: its name, the source it came from and
// either a text body or a native renderer.
type Descriptor struct {
	// Name of the template.
	Name string
	// Origin is the name of the source that provided the template.
	Origin string
	// Category declared by the template, if any.
	Category string
	// Body is the text/template body, without the front matter.
	Body string
	// Header holds the settings declared in the front matter.
	Header *FrontMatter

	native Native
}

// Native reports whether the template is rendered by Go code.
func (d *Descriptor) Native() bool { return d.native != nil }

// A Native renders a template with Go code instead of a text body.
type Native interface {
	// Name of the template the renderer provides.
	Name() string
	// Category of the rendered files.
	Category() string
	// Render returns the content for the given node. It may adjust the
	// target settings of the render call it is part of.
	Render(n *Node, s *TargetSettings) ([]byte, error)
}

// Resolve returns the template with the given name. Sources are searched in
// order and a later source overrides an earlier one, so project specific
// directories are appended after the built-in ones. A source that fails to
// load the template only fails the resolution if no later source provides it.
func Resolve(name string, sources []Source) (*Descriptor, error) {
	origin := make([]string, 0, len(sources))
	for _, s := range sources {
		origin = append(origin, s.Name())
	}
	if !ValidIdentifier(name) {
		return nil, NewTemplateNotFoundError(name, origin...)
	}
	var (
		found *Descriptor
		err   error
	)
	for _, s := range sources {
		d, ok, lerr := s.Lookup(name)
		switch {
		case lerr != nil:
			found, err = nil, fmt.Errorf("resolve template %q in %s: %w", name, s.Name(), lerr)
		case ok:
			found, err = d, nil
		}
	}
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, NewTemplateNotFoundError(name, origin...)
	}
	return found, nil
}

const frontMatterDelim = "---"

// parseTemplate splits a template file into its front matter and body.
func parseTemplate(name, origin string, data []byte) (*Descriptor, error) {
	d := &Descriptor{Name: name, Origin: origin, Body: string(data)}
	header, body, ok := splitFrontMatter(data)
	if !ok {
		return d, nil
	}
	fm := &FrontMatter{}
	dec := yaml.NewDecoder(bytes.NewReader(header))
	dec.KnownFields(true)
	if err := dec.Decode(fm); err != nil && !errors.Is(err, io.EOF) {
		return nil, NewTemplateRenderError(name, "front matter", "invalid settings block", err)
	}
	d.Header, d.Body, d.Category = fm, string(body), fm.Category
	return d, nil
}

// splitFrontMatter returns the YAML header enclosed by "---" lines at the
// top of a template file and the remaining body.
func splitFrontMatter(data []byte) (header, body []byte, ok bool) {
	first, rest, found := bytes.Cut(data, []byte("\n"))
	if !found || strings.TrimSpace(string(first)) != frontMatterDelim {
		return nil, data, false
	}
	for off := 0; off <= len(rest); {
		end, last := len(rest), true
		if i := bytes.IndexByte(rest[off:], '\n'); i >= 0 {
			end, last = off+i, false
		}
		if strings.TrimSpace(string(rest[off:end])) == frontMatterDelim {
			if last {
				return rest[:off], nil, true
			}
			return rest[:off], rest[end+1:], true
		}
		if last {
			break
		}
		off = end + 1
	}
	return nil, data, false
}
