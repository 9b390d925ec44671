// Package load reads table descriptions from YAML schema files.
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/syssam/tmplgen/schema"
	"github.com/syssam/tmplgen/schema/field"
)

// Schema is the content of a schema description file:
//
//	tables:
//	  - name: project
//	    class: Project
//	    columns:
//	      - {name: id, type: int, pk: true}
//	      - {name: name, type: string}
//	      - {name: budget, type: float, nullable: true}
type Schema struct {
	Tables []*schema.Table `yaml:"tables"`
}

// Parse decodes and validates a schema description.
func Parse(data []byte) (*Schema, error) {
	s := &Schema{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile loads the schema description file at path.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// LoadDir loads all "*.yaml" and "*.yml" files of dir in name order and
// merges their tables. A table may be described only once.
func LoadDir(dir string) (*Schema, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("load %s: no schema files", dir)
	}
	slices.Sort(files)
	merged := &Schema{}
	for _, f := range files {
		s, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		merged.Tables = append(merged.Tables, s.Tables...)
	}
	if err := merged.validateUnique(); err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	return merged, nil
}

// Load loads a schema description file or directory.
func Load(path string) (*Schema, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// Table returns the table with the given name, or nil.
func (s *Schema) Table(name string) *schema.Table {
	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// MarshalSchema encodes tables in the schema description format.
func MarshalSchema(tables []*schema.Table) ([]byte, error) {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(&Schema{Tables: tables}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// validate checks the tables of a single file. Identifier grammar is not
// checked here; the generator rejects invalid names per table.
func (s *Schema) validate() error {
	for i, t := range s.Tables {
		if t == nil || t.Name == "" {
			return fmt.Errorf("table #%d: missing name", i+1)
		}
		if len(t.Columns) == 0 {
			return fmt.Errorf("table %q: no columns", t.Name)
		}
		seen := make(map[string]bool, len(t.Columns))
		for j, c := range t.Columns {
			switch {
			case c == nil || c.Name == "":
				return fmt.Errorf("table %q: column #%d: missing name", t.Name, j+1)
			case seen[c.Name]:
				return fmt.Errorf("table %q: duplicate column %q", t.Name, c.Name)
			case c.Type == field.TypeInvalid:
				return fmt.Errorf("table %q: column %q: missing type", t.Name, c.Name)
			}
			seen[c.Name] = true
		}
	}
	return s.validateUnique()
}

func (s *Schema) validateUnique() error {
	seen := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		if seen[t.Name] {
			return fmt.Errorf("duplicate table %q", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}
