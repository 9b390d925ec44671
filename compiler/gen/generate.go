package gen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syssam/tmplgen/schema"
)

// LockFile is the name of the lock file under the project root.
const LockFile = ".tmplgen.lock"

// Status is the outcome of one (table, template) pair.
type Status uint8

const (
	// Written means the file was created or replaced.
	Written Status = iota
	// SkippedExists means a generate-once file already existed.
	SkippedExists
	// Failed means the pair could not be generated. See Result.Err.
	Failed
)

// String returns the status name used in reports.
func (s Status) String() string {
	switch s {
	case Written:
		return "written"
	case SkippedExists:
		return "skipped-exists"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// Result is the outcome of generating one template for one table.
type Result struct {
	Table    string
	Template string
	// Path of the target file. Empty if the pair failed before the target
	// was known.
	Path   string
	Status Status
	// Changed reports if the written content differs from the content
	// recorded by the previous pass.
	Changed bool
	Err     error
}

// Generator renders templates for tables and emits the files. A generator
// holds no state between passes and can run any number of them.
type Generator struct {
	config  *Config
	sources []Source
}

// NewGenerator creates a generator with the given options.
func NewGenerator(opts ...Option) (*Generator, error) {
	c, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{config: c, sources: c.SearchList()}, nil
}

// Config returns the generator configuration.
func (g *Generator) Config() *Config { return g.config }

// Sources returns the template sources in resolution order.
func (g *Generator) Sources() []Source { return g.sources }

// Resolve returns the template with the given name.
func (g *Generator) Resolve(name string) (*Descriptor, error) {
	return Resolve(name, g.sources)
}

// GenerateAll returns the lazy sequence of results of a generation pass,
// one per (table, template) pair in table-major order. Failures of a pair
// are reported in its result and do not stop the pass. A table with an
// invalid identifier yields a single failed result and its templates are
// skipped. The pass stops between pairs when ctx is done; files emitted so
// far stay valid. Each iteration of the sequence runs a new pass.
func (g *Generator) GenerateAll(ctx context.Context, tables []*schema.Table, names []string) iter.Seq[*Result] {
	return func(yield func(*Result) bool) {
		p := g.newPass(names)
		if err := p.begin(); err != nil {
			yield(&Result{Status: Failed, Err: err})
			return
		}
		defer p.end()
		for _, t := range tables {
			if ctx.Err() != nil {
				p.log.Warn("pass interrupted", zap.Error(ctx.Err()))
				return
			}
			n, err := NewNode(g.config, t)
			if err != nil {
				p.log.Warn("skipping table", zap.String("table", t.Name), zap.Error(err))
				p.failTable(t.Name)
				if !yield(&Result{Table: t.Name, Status: Failed, Err: err}) {
					return
				}
				continue
			}
			for _, name := range names {
				if ctx.Err() != nil {
					p.log.Warn("pass interrupted", zap.Error(ctx.Err()))
					return
				}
				if !yield(p.generate(n, name)) {
					return
				}
			}
		}
		p.complete = true
	}
}

// Run runs a generation pass and collects its report. The error is non-nil
// only when the pass could not run to completion: the root is locked, the
// manifest cannot be read or written, or ctx is done.
func (g *Generator) Run(ctx context.Context, tables []*schema.Table, names []string) (*Report, error) {
	r := &Report{}
	for res := range g.GenerateAll(ctx, tables, names) {
		if res.Table == "" && res.Template == "" {
			return r, res.Err
		}
		r.Results = append(r.Results, res)
	}
	if err := ctx.Err(); err != nil {
		return r, err
	}
	if g.config.Manifest {
		m, err := ReadManifest(g.config.Root)
		if err != nil {
			return r, err
		}
		r.Stale = m.StaleFiles()
	}
	return r, nil
}

// Prune removes the stale always-regenerate files recorded in the manifest.
func (g *Generator) Prune() ([]string, error) {
	release, err := g.lock()
	if err != nil {
		return nil, err
	}
	defer release()
	m, err := ReadManifest(g.config.Root)
	if err != nil {
		return nil, err
	}
	removed, err := m.Prune(g.config.Root)
	if werr := m.Write(g.config.Root); werr != nil {
		err = errors.Join(err, werr)
	}
	for _, p := range removed {
		g.config.Logger.Info("pruned stale file", zap.String("path", p))
	}
	return removed, err
}

// lock acquires the lock file of the root, if enabled.
func (g *Generator) lock() (func(), error) {
	if !g.config.Lock {
		return func() {}, nil
	}
	root := g.config.Root
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, NewFileWriteError(root, "mkdir", err)
	}
	path := filepath.Join(root, LockFile)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	switch {
	case errors.Is(err, fs.ErrExist):
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	case err != nil:
		return nil, NewFileWriteError(path, "create", err)
	}
	_, _ = fmt.Fprintf(f, "pid %d\n", os.Getpid())
	_ = f.Close()
	return func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			g.config.Logger.Warn("release lock", zap.String("path", path), zap.Error(err))
		}
	}, nil
}

// pass is the state of one generation pass.
type pass struct {
	*Generator
	id       string
	names    []string
	log      *zap.Logger
	release  func()
	prev     *Manifest
	next     *Manifest
	resolved map[string]resolution
	failed   map[pair]bool
	complete bool
}

type resolution struct {
	d   *Descriptor
	err error
}

func (g *Generator) newPass(names []string) *pass {
	id := uuid.NewString()
	return &pass{
		Generator: g,
		id:        id,
		names:     names,
		log:       g.config.Logger.With(zap.String("run", id)),
		resolved:  make(map[string]resolution, len(names)),
		failed:    make(map[pair]bool),
	}
}

// begin acquires the lock and loads the previous manifest.
func (p *pass) begin() error {
	release, err := p.lock()
	if err != nil {
		return err
	}
	p.release = release
	if p.config.Manifest {
		if p.prev, err = ReadManifest(p.config.Root); err != nil {
			release()
			return err
		}
		p.next = NewManifest()
		for path, e := range p.prev.Files {
			cp := *e
			p.next.Files[path] = &cp
		}
	}
	p.log.Debug("pass started", zap.String("root", p.config.Root), zap.Strings("templates", p.names))
	return nil
}

// end stores the manifest and releases the lock. Stale entries are only
// detected when the pass ran over all its pairs.
func (p *pass) end() {
	defer p.release()
	if p.next == nil {
		return
	}
	p.next.RunID, p.next.Time = p.id, time.Now().UTC()
	if p.complete {
		p.next.markStale(p.id, p.names, p.failed)
	}
	if err := p.next.Write(p.config.Root); err != nil {
		p.log.Error("write manifest", zap.Error(err))
	}
}

func (p *pass) failTable(table string) {
	for _, name := range p.names {
		p.failed[pair{table, name}] = true
	}
}

// resolve resolves a template once per pass.
func (p *pass) resolve(name string) (*Descriptor, error) {
	if r, ok := p.resolved[name]; ok {
		return r.d, r.err
	}
	d, err := Resolve(name, p.sources)
	if err == nil {
		p.log.Debug("template resolved", zap.String("template", name), zap.String("origin", d.Origin))
	}
	p.resolved[name] = resolution{d, err}
	return d, err
}

// generate renders and emits one template for one node.
func (p *pass) generate(n *Node, name string) *Result {
	res := &Result{Table: n.Table.Name, Template: name}
	fail := func(err error) *Result {
		res.Status, res.Err = Failed, err
		p.failed[pair{res.Table, name}] = true
		p.log.Warn("generation failed",
			zap.String("table", res.Table),
			zap.String("template", name),
			zap.String("path", res.Path),
			zap.Error(err),
		)
		return res
	}
	d, err := p.resolve(name)
	if err != nil {
		return fail(err)
	}
	content, settings, err := p.config.render(d, n)
	if err != nil {
		return fail(err)
	}
	res.Path = settings.Path(p.config.Root)
	out, err := Emit(p.config.Root, content, settings)
	if err != nil {
		return fail(err)
	}
	rel := filepath.ToSlash(settings.Rel())
	switch {
	case out.Written:
		res.Status = Written
		sum := hash(content)
		if p.prev == nil {
			res.Changed = true
		} else if e, ok := p.prev.Files[rel]; !ok || e.Hash != sum {
			res.Changed = true
		}
		p.record(rel, sum, name, n, settings)
	default:
		res.Status = SkippedExists
		sum := ""
		if e, ok := p.prevEntry(rel); ok {
			sum = e.Hash
		}
		p.record(rel, sum, name, n, settings)
	}
	p.log.Info("file "+res.Status.String(),
		zap.String("table", res.Table),
		zap.String("template", name),
		zap.String("path", rel),
		zap.Bool("changed", res.Changed),
	)
	return res
}

func (p *pass) prevEntry(rel string) (*ManifestEntry, bool) {
	if p.prev == nil {
		return nil, false
	}
	e, ok := p.prev.Files[rel]
	return e, ok
}

func (p *pass) record(rel, sum, name string, n *Node, settings TargetSettings) {
	if p.next == nil {
		return
	}
	p.next.Files[rel] = &ManifestEntry{
		Hash:     sum,
		Template: name,
		Table:    n.Table.Name,
		Policy:   settings.Policy,
		RunID:    p.id,
	}
}
