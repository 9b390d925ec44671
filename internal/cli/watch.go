package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/tmplgen/compiler/gen"
)

// debounce is the quiet period after the last file event before a
// regeneration starts. Editors often write a file in several steps.
const debounce = 200 * time.Millisecond

func (a *app) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever schema or template files change",
		Long: `Watch runs generate once, then again after every change to the schema files or
the template directories, until interrupted. Failed pairs are reported and do
not stop watching.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer w.Close()
			for _, dir := range a.watchDirs() {
				if err := w.Add(dir); err != nil {
					return fmt.Errorf("watch %s: %w", dir, err)
				}
				a.log.Debug("watching", zap.String("dir", dir))
			}
			return a.watch(cmd.Context(), out(cmd), w.Events, w.Errors, debounce)
		},
	}
	addGenerateFlags(cmd.Flags())
	return cmd
}

// watchDirs returns the directories holding schema and template files.
func (a *app) watchDirs() []string {
	schema := a.cfg.schemaPath()
	if info, err := os.Stat(schema); err != nil || !info.IsDir() {
		schema = filepath.Dir(schema)
	}
	return append([]string{schema}, a.cfg.TemplatePaths...)
}

// watch generates once and then after every burst of relevant events. It
// returns when ctx is done or the event channel is closed.
func (a *app) watch(ctx context.Context, w io.Writer, events <-chan fsnotify.Event, errs <-chan error, delay time.Duration) error {
	run := func() {
		n := a.passes.Add(1)
		a.log.Info("regenerating", zap.Int32("pass", n))
		if err := a.generate(ctx, w, false); err != nil {
			a.log.Error("generate", zap.Error(err))
		}
	}
	run()
	timer := time.NewTimer(delay)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			a.log.Debug("change detected", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(delay)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			a.log.Warn("watch error", zap.Error(err))
		case <-timer.C:
			run()
		}
	}
}

// relevant reports if an event may change the generated output.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	switch filepath.Ext(ev.Name) {
	case ".yaml", ".yml", gen.TemplateExt:
		return true
	default:
		return false
	}
}
