package sql

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/tmplgen/compiler/gen"
	"github.com/syssam/tmplgen/schema/field"
)

// Model renders the always-regenerated base model of a table.
type Model struct{}

// NewModel returns the native "model_gen" renderer.
func NewModel() *Model { return &Model{} }

// Name implements gen.Native.
func (*Model) Name() string { return gen.CategoryModelGen }

// Category implements gen.Native.
func (*Model) Category() string { return gen.CategoryModelGen }

// Render implements gen.Native.
func (m *Model) Render(n *gen.Node, s *gen.TargetSettings) ([]byte, error) {
	f := genModel(n, s.Package())
	var b bytes.Buffer
	if err := f.Render(&b); err != nil {
		return nil, fmt.Errorf("render model %s: %w", n.Name, err)
	}
	return b.Bytes(), nil
}

// Ensure Model implements gen.Native.
var _ gen.Native = (*Model)(nil)

// genModel generates the base model file of a node.
func genModel(n *gen.Node, pkg string) *jen.File {
	f := jen.NewFile(pkg)
	if n.Header != "" {
		f.HeaderComment(n.Header)
	}
	genTable(f, n)
	genQuerier(f, n)
	genBase(f, n)
	genIsNew(f, n)
	genLoad(f, n)
	genLoadOrNew(f, n)
	return f
}

// genTable generates the table and column constants.
func genTable(f *jen.File, n *gen.Node) {
	f.Commentf("%sTable is the name of the %s table.", n.Name, n.TableName())
	f.Const().Id(n.Name + "Table").Op("=").Lit(n.TableName())
	f.Commentf("%sColumns lists the columns of the %s table.", n.Name, n.TableName())
	f.Var().Id(n.Name + "Columns").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, c := range n.Columns {
			g.Lit(c.Name)
		}
	})
}

// genQuerier generates the query interface used by the load functions.
func genQuerier(f *jen.File, n *gen.Node) {
	f.Commentf("%sQuerier is implemented by *sql.DB, *sql.Tx and *sql.Conn.", n.Name)
	f.Type().Id(n.Name+"Querier").Interface(
		jen.Id("QueryRowContext").Params(
			jen.Id("ctx").Qual("context", "Context"),
			jen.Id("query").String(),
			jen.Id("args").Op("...").Any(),
		).Op("*").Qual("database/sql", "Row"),
	)
}

// genBase generates the struct holding the stored values.
func genBase(f *jen.File, n *gen.Node) {
	f.Commentf("%sBase holds the stored values of a %s.", n.Name, n.Name)
	f.Type().Id(n.Name + "Base").StructFunc(func(g *jen.Group) {
		for _, c := range n.Columns {
			code := g.Id(c.StructField).Add(goType(c, c.Nullable))
			code.Tag(map[string]string{"db": c.Name, "json": c.Name})
			if c.Comment != "" {
				code.Comment(c.Comment)
			}
		}
	})
}

// genIsNew generates the "is new" check: a record is new only when all
// primary-key values are nil.
func genIsNew(f *jen.File, n *gen.Node) {
	pks := n.PrimaryKeys()
	f.Commentf("Is%sNew reports if the primary-key values denote a %s that is not stored yet.", n.Name, n.Name)
	f.Func().Id("Is"+n.Name+"New").ParamsFunc(nullableParams(pks)).Bool().BlockFunc(func(g *jen.Group) {
		if len(pks) == 0 {
			g.Return(jen.True())
			return
		}
		var cond *jen.Statement
		for i, c := range pks {
			if i == 0 {
				cond = jen.Id(c.Var).Op("==").Nil()
				continue
			}
			cond = cond.Op("&&").Id(c.Var).Op("==").Nil()
		}
		g.Return(cond)
	})
}

// genLoad generates the load function taking the primary-key values.
func genLoad(f *jen.File, n *gen.Node) {
	pks := n.PrimaryKeys()
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", n.SelectColumns(), n.QuotedTable(), n.PKWhere())
	f.Commentf("Load%s loads the %s with the given primary key.", n.Name, n.Name)
	f.Func().Id("Load"+n.Name).ParamsFunc(func(g *jen.Group) {
		g.Id("ctx").Qual("context", "Context")
		g.Id("q").Id(n.Name + "Querier")
		for _, c := range pks {
			g.Id(c.Var).Add(goType(c, false))
		}
	}).Params(jen.Op("*").Id(n.Name+"Base"), jen.Error()).Block(
		jen.Id("_e").Op(":=").Op("&").Id(n.Name+"Base").Values(),
		jen.Id("err").Op(":=").Id("q").Dot("QueryRowContext").CallFunc(func(g *jen.Group) {
			g.Id("ctx")
			g.Lit(query)
			for _, c := range pks {
				g.Id(c.Var)
			}
		}).Dot("Scan").CallFunc(func(g *jen.Group) {
			for _, c := range n.Columns {
				g.Op("&").Id("_e").Dot(c.StructField)
			}
		}),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("load "+n.TableName()+": %w"), jen.Err())),
		),
		jen.Return(jen.Id("_e"), jen.Nil()),
	)
}

// genLoadOrNew generates the load variant taking nullable primary-key
// values. It returns an empty record when all of them are nil.
func genLoadOrNew(f *jen.File, n *gen.Node) {
	pks := n.PrimaryKeys()
	f.Commentf("Load%sOrNew returns an empty %s and true when all primary-key values", n.Name, n.Name)
	f.Comment("are nil, and the stored record otherwise.")
	f.Func().Id("Load"+n.Name+"OrNew").ParamsFunc(func(g *jen.Group) {
		g.Id("ctx").Qual("context", "Context")
		g.Id("q").Id(n.Name + "Querier")
		nullableParams(pks)(g)
	}).Params(jen.Op("*").Id(n.Name+"Base"), jen.Bool(), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.If(jen.Id("Is"+n.Name+"New").CallFunc(func(g *jen.Group) {
			for _, c := range pks {
				g.Id(c.Var)
			}
		})).Block(
			jen.Return(jen.Op("&").Id(n.Name+"Base").Values(), jen.True(), jen.Nil()),
		)
		if len(pks) > 1 {
			var cond *jen.Statement
			for i, c := range pks {
				if i == 0 {
					cond = jen.Id(c.Var).Op("==").Nil()
					continue
				}
				cond = cond.Op("||").Id(c.Var).Op("==").Nil()
			}
			g.If(cond).Block(
				jen.Return(jen.Nil(), jen.False(), jen.Qual("fmt", "Errorf").Call(jen.Lit("load "+n.TableName()+": incomplete primary key"))),
			)
		}
		g.List(jen.Id("_e"), jen.Err()).Op(":=").Id("Load"+n.Name).CallFunc(func(g *jen.Group) {
			g.Id("ctx")
			g.Id("q")
			for _, c := range pks {
				g.Op("*").Id(c.Var)
			}
		})
		g.Return(jen.Id("_e"), jen.False(), jen.Err())
	})
}

// nullableParams returns the pointer parameters of the primary key.
func nullableParams(pks []*gen.Column) func(*jen.Group) {
	return func(g *jen.Group) {
		for _, c := range pks {
			g.Id(c.Var).Op("*").Add(goType(c, false))
		}
	}
}

// goType returns the Go type of a column value.
func goType(c *gen.Column, nullable bool) jen.Code {
	var t *jen.Statement
	switch c.Type {
	case field.TypeInt:
		t = jen.Int64()
	case field.TypeFloat:
		t = jen.Float64()
	case field.TypeBool:
		t = jen.Bool()
	case field.TypeTime:
		t = jen.Qual("time", "Time")
	case field.TypeBytes:
		t = jen.Index().Byte()
	default:
		t = jen.String()
	}
	if nullable {
		return jen.Op("*").Add(t)
	}
	return t
}
