package gen

import (
	"fmt"
	"path/filepath"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/tools/imports"
)

// graphqlBase is the root schema generated GraphQL files extend.
var graphqlBase = &ast.Source{
	Name: "base.graphql",
	Input: `scalar Time
type Query { _empty: Boolean }
type Mutation { _empty: Boolean }
`,
}

// format post-processes rendered output by target file type. Go files are
// passed through goimports and GraphQL files must form a valid schema
// together with the root schema.
func format(settings TargetSettings, content []byte) ([]byte, error) {
	switch filepath.Ext(settings.FileName) {
	case ".go":
		// Format using goimports (removes unused imports and adds missing ones)
		out, err := imports.Process(settings.Rel(), content, nil)
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", settings.FileName, err)
		}
		return out, nil
	case ".graphql", ".graphqls":
		if _, err := gqlparser.LoadSchema(graphqlBase, &ast.Source{Name: settings.Rel(), Input: string(content)}); err != nil {
			return nil, fmt.Errorf("validate %s: %w", settings.FileName, err)
		}
		return content, nil
	default:
		return content, nil
	}
}
