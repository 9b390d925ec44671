package gen

import (
	"fmt"
	"slices"
)

// A Category fixes the default target settings of a template family.
type Category struct {
	Name      string          `yaml:"name"`
	Suffix    string          `yaml:"suffix"`
	Directory string          `yaml:"directory"`
	DirSuffix string          `yaml:"dir_suffix"`
	Policy    OverwritePolicy `yaml:"policy"`
}

// Defaults returns the target settings of the category. The file name is
// left empty and derived from the class name at render time.
func (c *Category) Defaults() TargetSettings {
	return TargetSettings{
		Directory: c.Directory,
		DirSuffix: c.DirSuffix,
		Policy:    c.Policy,
	}
}

// String implements the fmt.Stringer interface for template usage.
func (c *Category) String() string { return c.Name }

// Built-in category names.
const (
	CategoryModelGen = "model_gen"
	CategoryModel    = "model"
	CategoryEdit     = "edit"
	CategoryList     = "list"
	CategoryGraphQL  = "graphql"
	CategoryCustom   = "custom"
)

// categories holds the built-in template families.
var categories = []*Category{
	{
		Name:      CategoryModelGen,
		Suffix:    "_gen.go",
		Directory: "models",
		DirSuffix: "generated",
		Policy:    AlwaysRegenerate,
	},
	{
		Name:      CategoryModel,
		Suffix:    ".go",
		Directory: "models",
		Policy:    GenerateOnce,
	},
	{
		Name:      CategoryEdit,
		Suffix:    "_edit.go",
		Directory: "forms",
		Policy:    AlwaysRegenerate,
	},
	{
		Name:      CategoryList,
		Suffix:    "_list.go",
		Directory: "forms",
		Policy:    AlwaysRegenerate,
	},
	{
		Name:      CategoryGraphQL,
		Suffix:    ".graphql",
		Directory: "graphql",
		Policy:    AlwaysRegenerate,
	},
}

// NewCategory returns the built-in category with the given name.
func NewCategory(name string) (*Category, error) {
	for _, c := range categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("tmplgen: invalid category %q", name)
}

// Categories returns a copy of the built-in categories.
func Categories() []*Category {
	all := make([]*Category, len(categories))
	for i, c := range categories {
		cp := *c
		all[i] = &cp
	}
	return all
}

// customCategory is used for templates that match no category. Its files
// are named after the template to keep them apart.
func customCategory(template string) *Category {
	return &Category{
		Name:      CategoryCustom,
		Suffix:    "_" + template + ".txt",
		Directory: "custom",
		Policy:    AlwaysRegenerate,
	}
}

// category returns the category of a template: the declared one, the one
// matching the template name, or the custom category. Configured categories
// shadow the built-in ones.
func (c *Config) category(d *Descriptor) (*Category, error) {
	lookup := func(name string) *Category {
		if i := slices.IndexFunc(c.Categories, func(cat *Category) bool { return cat.Name == name }); i >= 0 {
			return c.Categories[i]
		}
		if cat, err := NewCategory(name); err == nil {
			return cat
		}
		return nil
	}
	if d.Category != "" {
		if d.Category == CategoryCustom {
			return customCategory(d.Name), nil
		}
		if cat := lookup(d.Category); cat != nil {
			return cat, nil
		}
		return nil, fmt.Errorf("tmplgen: template %q declares unknown category %q", d.Name, d.Category)
	}
	if cat := lookup(d.Name); cat != nil {
		return cat, nil
	}
	return customCategory(d.Name), nil
}
