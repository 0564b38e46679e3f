package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fluxbase-eu/bundlebudget/cli/output"
	"github.com/fluxbase-eu/bundlebudget/cli/util"
	"github.com/fluxbase-eu/bundlebudget/internal/budget"
)

// SizeRow is one measured size in a report
type SizeRow struct {
	Budget string `json:"budget" yaml:"budget"`
	Type   string `json:"type" yaml:"type"`
	Label  string `json:"label" yaml:"label"`
	Bytes  int64  `json:"bytes" yaml:"bytes"`
}

// Report is the outcome of one check pass
type Report struct {
	RunID    string    `json:"runId" yaml:"runId"`
	TraceID  string    `json:"traceId,omitempty" yaml:"traceId,omitempty"`
	Project  string    `json:"project,omitempty" yaml:"project,omitempty"`
	Source   string    `json:"source" yaml:"source"`
	Sizes    []SizeRow `json:"sizes" yaml:"sizes"`
	Warnings []string  `json:"warnings" yaml:"warnings"`
	Errors   []string  `json:"errors" yaml:"errors"`
	Duration string    `json:"duration" yaml:"duration"`
}

// Failed reports whether the pass should fail the process
func (r *Report) Failed(failOnWarning bool) bool {
	return len(r.Errors) > 0 || (failOnWarning && len(r.Warnings) > 0)
}

func newReport(runID, project, source string, sizes []SizeRow, msgs budget.Messages, d time.Duration) *Report {
	r := &Report{
		RunID:    runID,
		Project:  project,
		Source:   source,
		Sizes:    sizes,
		Warnings: msgs.Warnings,
		Errors:   msgs.Errors,
		Duration: d.Round(time.Millisecond).String(),
	}
	if r.Sizes == nil {
		r.Sizes = []SizeRow{}
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	if r.Errors == nil {
		r.Errors = []string{}
	}
	return r
}

const maxLabelWidth = 60

// printReport renders a report. Budget errors are always printed, even
// with --quiet.
func printReport(f *output.Formatter, r *Report) error {
	if f.Structured() {
		return f.Print(r)
	}

	if len(r.Sizes) > 0 {
		rows := make([][]string, 0, len(r.Sizes))
		for _, s := range r.Sizes {
			rows = append(rows, []string{
				s.Budget,
				util.TruncateString(s.Label, maxLabelWidth),
				humanize.IBytes(uint64(s.Bytes)),
				humanize.Comma(s.Bytes),
			})
		}
		f.PrintTable(output.TableData{
			Headers: []string{"Budget", "Label", "Size", "Bytes"},
			Rows:    rows,
		})
	}

	for _, w := range r.Warnings {
		f.PrintWarning(w)
	}
	for _, e := range r.Errors {
		f.PrintError(e)
	}

	switch {
	case len(r.Errors) > 0:
		f.PrintInfo(fmt.Sprintf("Budget check failed: %s, %s (%s)",
			plural(len(r.Errors), "error"), plural(len(r.Warnings), "warning"), r.Duration))
	case len(r.Warnings) > 0:
		f.PrintInfo(fmt.Sprintf("Budget check passed with %s (%s)",
			plural(len(r.Warnings), "warning"), r.Duration))
	default:
		f.PrintSuccess(fmt.Sprintf("Budget check passed (%s)", r.Duration))
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// sizeRecorder collects the sizes measured during one pass
type sizeRecorder struct {
	rows []SizeRow
}

func (r *sizeRecorder) reset() { r.rows = nil }

func (r *sizeRecorder) ObserveSize(b budget.Budget, s budget.Size) {
	r.rows = append(r.rows, SizeRow{Budget: b.Label(), Type: string(b.Type()), Label: s.Label, Bytes: s.Bytes})
}

func (r *sizeRecorder) ObserveViolation(budget.Budget, budget.Message) {}

// observers fans a single Observer out to several
type observers []budget.Observer

func (o observers) ObserveSize(b budget.Budget, s budget.Size) {
	for _, obs := range o {
		obs.ObserveSize(b, s)
	}
}

func (o observers) ObserveViolation(b budget.Budget, m budget.Message) {
	for _, obs := range o {
		obs.ObserveViolation(b, m)
	}
}
