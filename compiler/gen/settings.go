package gen

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// An OverwritePolicy decides what happens when a target file already exists.
type OverwritePolicy uint8

const (
	// AlwaysRegenerate replaces the file on every pass.
	AlwaysRegenerate OverwritePolicy = iota
	// GenerateOnce creates the file if missing and never touches it again.
	GenerateOnce
)

var policyNames = [...]string{
	AlwaysRegenerate: "always-regenerate",
	GenerateOnce:     "generate-once",
}

// String returns the policy name.
func (p OverwritePolicy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("OverwritePolicy(%d)", p)
}

// ParsePolicy returns the policy for the given name.
func ParsePolicy(s string) (OverwritePolicy, error) {
	for p, name := range policyNames {
		if s == name {
			return OverwritePolicy(p), nil
		}
	}
	switch s {
	case "always", "regenerate":
		return AlwaysRegenerate, nil
	case "once":
		return GenerateOnce, nil
	}
	return 0, fmt.Errorf("tmplgen: unknown overwrite policy %q", s)
}

// MarshalYAML implements yaml.Marshaler.
func (p OverwritePolicy) MarshalYAML() (any, error) {
	return p.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *OverwritePolicy) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := ParsePolicy(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*p = v
	return nil
}

// TargetSettings describe where and how a rendered template is written.
// A value is produced by every render call and belongs to that call only.
type TargetSettings struct {
	// Directory relative to the project root.
	Directory string `yaml:"directory"`
	// FileName of the emitted file.
	FileName string `yaml:"filename"`
	// Policy applied when the file already exists.
	Policy OverwritePolicy `yaml:"policy"`
	// DirSuffix is an optional sub-directory of Directory that keeps
	// generated base files apart from editable ones.
	DirSuffix string `yaml:"dir_suffix"`
}

// Path returns the file path of the target under the given root.
func (s TargetSettings) Path(root string) string {
	return filepath.Join(root, s.Directory, s.DirSuffix, s.FileName)
}

// Rel returns the target path relative to the project root.
func (s TargetSettings) Rel() string {
	return filepath.Join(s.Directory, s.DirSuffix, s.FileName)
}

// Package returns the Go package name matching the target directory.
func (s TargetSettings) Package() string {
	dir := filepath.Join(s.Directory, s.DirSuffix)
	if dir == "" || dir == "." {
		return "main"
	}
	return filepath.Base(dir)
}

// check verifies the settings describe a file inside the project root.
func (s TargetSettings) check() error {
	if s.FileName == "" {
		return fmt.Errorf("empty target file name")
	}
	if filepath.Base(s.FileName) != s.FileName {
		return fmt.Errorf("target file name %q contains a path separator", s.FileName)
	}
	if rel := s.Rel(); !filepath.IsLocal(rel) {
		return fmt.Errorf("target path %q escapes the project root", rel)
	}
	return nil
}

// FrontMatter holds the settings declared in the YAML header of a template
// file. Unset fields keep the category defaults.
type FrontMatter struct {
	Category  string           `yaml:"category,omitempty"`
	Directory *string          `yaml:"directory,omitempty"`
	FileName  *string          `yaml:"filename,omitempty"`
	DirSuffix *string          `yaml:"dir_suffix,omitempty"`
	Policy    *OverwritePolicy `yaml:"policy,omitempty"`
}

// apply overrides the given settings with the declared ones.
func (f *FrontMatter) apply(s *TargetSettings) {
	if f == nil {
		return
	}
	if f.Directory != nil {
		s.Directory = *f.Directory
	}
	if f.FileName != nil {
		s.FileName = *f.FileName
	}
	if f.DirSuffix != nil {
		s.DirSuffix = *f.DirSuffix
	}
	if f.Policy != nil {
		s.Policy = *f.Policy
	}
}
