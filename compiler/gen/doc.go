// Package gen renders named templates for database tables and writes the
// results into a project tree.
//
// # Architecture
//
// A generation pass follows this flow:
//
//	schema.Table (loaded from YAML or introspected)
//	        ↓
//	   Node (class name, columns, primary-key helpers)
//	        ↓
//	   Resolve (built-in source, then search paths; later wins)
//	        ↓
//	   render (category defaults → front matter → settings functions)
//	        ↓
//	   Emit (generate-once or atomic replace)
//	        ↓
//	   Result / Report / Manifest
//
// # Key Types
//
//   - Generator: runs passes over tables and template names
//   - Source: provides templates (directories, embedded files, natives)
//   - Descriptor: a resolved template, text body or Native renderer
//   - Category: default target settings of a template family
//   - TargetSettings: directory, file name and OverwritePolicy of one render
//   - Node: the data a template body is executed with
//   - Manifest: the files emitted by previous passes
//
// # Templates
//
// A template is a "<name>.tmpl" file. It may start with a YAML block that
// overrides the category defaults:
//
//	---
//	category: edit
//	directory: admin
//	filename: "{{ snake .Name }}_admin.go"
//	policy: generate-once
//	---
//	package {{ pkg }}
//
// The body can also call target, filename, dirSuffix, policy, generateOnce
// and alwaysRegenerate. These write to the settings of the current render
// call only.
//
// # Error Handling
//
// The package uses structured error types:
//
//   - TemplateNotFoundError: no source provides the template
//   - TemplateRenderError: a template failed, naming the field or line
//   - InvalidIdentifierError: a table, class or column name is not valid
//   - FileWriteError: a target could not be written
//   - ConfigError: an option was given an invalid value
//
// Failures of a (table, template) pair are reported in its Result and the
// pass continues:
//
//	report, err := g.Run(ctx, tables, []string{"edit", "list"})
//	if err != nil {
//	    return err // locked root, unreadable manifest or cancelled
//	}
//	for _, res := range report.Failed() {
//	    if gen.IsRenderError(res.Err) {
//	        // Fix the template
//	    }
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	g, err := gen.NewGenerator(
//	    gen.WithRoot("."),
//	    gen.WithSearchPaths("./templates"),
//	    gen.WithNatives(sql.NewModel()),
//	    gen.WithDialect("postgres"),
//	)
//
// Package is inferred from the go.mod file of the root. Override only if
// needed with WithPackage.
package gen
