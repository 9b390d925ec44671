package gen

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
)

// A Source provides named templates.
type Source interface {
	// Name identifies the source in errors and listings.
	Name() string
	// Lookup returns the template with the given name, and false if the
	// source does not provide it.
	Lookup(name string) (*Descriptor, bool, error)
	// Names returns the sorted names of all templates in the source.
	Names() ([]string, error)
}

// TemplateExt is the file extension of template files.
const TemplateExt = ".tmpl"

// fsSource provides the "<name>.tmpl" files of a file system.
type fsSource struct {
	name string
	fsys fs.FS
}

// Dir returns a source reading templates from a directory. A missing
// directory provides no templates.
func Dir(dir string) Source {
	return &fsSource{name: dir, fsys: os.DirFS(dir)}
}

// FS returns a source reading templates from the root of fsys.
func FS(name string, fsys fs.FS) Source {
	return &fsSource{name: name, fsys: fsys}
}

func (s *fsSource) Name() string { return s.name }

func (s *fsSource) Lookup(name string) (*Descriptor, bool, error) {
	if !ValidIdentifier(name) {
		return nil, false, fmt.Errorf("invalid template name %q", name)
	}
	data, err := fs.ReadFile(s.fsys, name+TemplateExt)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	d, err := parseTemplate(name, s.name, data)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

func (s *fsSource) Names() ([]string, error) {
	matches, err := fs.Glob(s.fsys, "*"+TemplateExt)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), TemplateExt))
	}
	slices.Sort(names)
	return names, nil
}

//go:embed template/*.tmpl
var templateDir embed.FS

// BuiltinName is the name of the built-in source.
const BuiltinName = "builtin"

// builtinSource holds the embedded templates and the native renderers.
type builtinSource struct {
	*fsSource
	natives map[string]Native
}

// Builtin returns the source of the built-in templates, extended with the
// given native renderers. A native renderer shadows an embedded template
// with the same name.
func Builtin(natives ...Native) Source {
	sub, err := fs.Sub(templateDir, "template")
	if err != nil {
		panic(fmt.Sprintf("tmplgen: embedded templates: %v", err))
	}
	s := &builtinSource{
		fsSource: &fsSource{name: BuiltinName, fsys: sub},
		natives:  make(map[string]Native, len(natives)),
	}
	for _, n := range natives {
		s.natives[n.Name()] = n
	}
	return s
}

func (s *builtinSource) Lookup(name string) (*Descriptor, bool, error) {
	if n, ok := s.natives[name]; ok {
		return &Descriptor{Name: name, Origin: s.name, Category: n.Category(), native: n}, true, nil
	}
	return s.fsSource.Lookup(name)
}

func (s *builtinSource) Names() ([]string, error) {
	names, err := s.fsSource.Names()
	if err != nil {
		return nil, err
	}
	for name := range s.natives {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Available returns all template names provided by the sources, each with
// the name of the source that wins resolution.
func Available(sources []Source) (map[string]string, error) {
	winners := make(map[string]string)
	for _, s := range sources {
		names, err := s.Names()
		if err != nil {
			return nil, fmt.Errorf("list templates in %s: %w", s.Name(), err)
		}
		for _, name := range names {
			winners[name] = s.Name()
		}
	}
	return winners, nil
}
