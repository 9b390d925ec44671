package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/syssam/tmplgen/compiler/gen"
)

var (
	written = color.New(color.FgGreen)
	skipped = color.New(color.FgYellow)
	failed  = color.New(color.FgRed, color.Bold)
	stale   = color.New(color.FgMagenta)
	pruned  = color.New(color.FgHiBlack)
	origin  = color.New(color.FgCyan)
)

func statusColor(s gen.Status) *color.Color {
	switch s {
	case gen.Written:
		return written
	case gen.SkippedExists:
		return skipped
	default:
		return failed
	}
}

// printReport writes one line per result, the stale files and the totals.
func printReport(w io.Writer, r *gen.Report) error {
	if r == nil {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, res := range r.Results {
		detail := res.Path
		if res.Status == gen.Failed {
			detail = res.Err.Error()
		} else if res.Status == gen.Written && !res.Changed {
			detail += " (unchanged)"
		}
		label := fmt.Sprintf("%-14s", res.Status)
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", statusColor(res.Status).Sprint(label), res.Table, res.Template, detail); err != nil {
			return err
		}
	}
	for _, p := range r.Stale {
		if _, err := fmt.Fprintf(tw, "%s\t\t\t%s\n", stale.Sprintf("%-14s", "stale"), p); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	totals := fmt.Sprintf("%d written, %d skipped, %d failed, %d stale",
		r.Count(gen.Written), r.Count(gen.SkippedExists), r.Count(gen.Failed), len(r.Stale))
	if r.Count(gen.Failed) > 0 {
		totals = failed.Sprint(totals)
	}
	_, err := fmt.Fprintln(w, totals)
	return err
}
