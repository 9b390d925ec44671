package gen

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"text/tabwriter"
)

// Report aggregates the results of a generation pass.
type Report struct {
	Results []*Result
	// Stale lists manifest paths no longer produced by their template.
	Stale []string
}

// Collect drains a result sequence into a report.
func Collect(seq iter.Seq[*Result]) *Report {
	r := &Report{}
	for res := range seq {
		r.Results = append(r.Results, res)
	}
	return r
}

// Count returns the number of results with the given status.
func (r *Report) Count(s Status) int {
	var n int
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Failed returns the failed results.
func (r *Report) Failed() []*Result {
	var failed []*Result
	for _, res := range r.Results {
		if res.Status == Failed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins the errors of all failed results.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}

// Summary writes one line per result and the totals:
//
//	written         project    edit   forms/project_edit.go
//	skipped-exists  project    model  models/project.go
//	failed          user_role  edit   tmplgen: render error in template edit ...
func (r *Report) Summary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, res := range r.Results {
		detail := res.Path
		if res.Status == Failed {
			detail = res.Err.Error()
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", res.Status, res.Table, res.Template, detail); err != nil {
			return err
		}
	}
	for _, p := range r.Stale {
		if _, err := fmt.Fprintf(tw, "stale\t\t\t%s\n", p); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d written, %d skipped, %d failed, %d stale\n",
		r.Count(Written), r.Count(SkippedExists), r.Count(Failed), len(r.Stale))
	return err
}
