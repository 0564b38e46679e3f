package cmd

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fluxbase-eu/bundlebudget/cli/output"
	"github.com/fluxbase-eu/bundlebudget/internal/budget"
)

var budgetsType string

var budgetsCmd = &cobra.Command{
	Use:     "budgets",
	Aliases: []string{"thresholds"},
	Short:   "List the normalized budgets and their byte thresholds",
	Long: `Validate the project file and print every threshold each budget resolves
to. Percentage specs and warning/error bands are shown against their
baseline.`,
	Example: `  bundlebudget budgets
  bundlebudget budgets --type bundle -o json`,
	Args: cobra.NoArgs,
	RunE: runBudgets,
}

func init() {
	budgetsCmd.Flags().StringVar(&budgetsType, "type", "", "Only show budgets of this type")
}

// thresholdRow is the structured form of one resolved threshold
type thresholdRow struct {
	Index     int     `json:"index" yaml:"index"`
	Budget    string  `json:"budget" yaml:"budget"`
	Threshold string  `json:"threshold" yaml:"threshold"`
	Severity  string  `json:"severity" yaml:"severity"`
	Spec      string  `json:"spec" yaml:"spec"`
	Baseline  string  `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	Limit     float64 `json:"limit" yaml:"limit"`
}

func runBudgets(cmd *cobra.Command, args []string) error {
	cfg, err := loadProject()
	if err != nil {
		return err
	}

	var filter budget.Type
	if budgetsType != "" {
		if filter, err = budget.ParseType(budgetsType); err != nil {
			return err
		}
	}

	rows := thresholdRows(cfg.NormalizedBudgets(), filter)

	f := GetFormatter()
	if f.Structured() {
		return f.Print(rows)
	}
	if len(rows) == 0 {
		f.PrintInfo("No budgets declared")
		return nil
	}

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			strconv.Itoa(r.Index),
			r.Budget,
			r.Threshold,
			r.Spec,
			r.Baseline,
			budget.FormatSize(r.Limit),
			humanize.CommafWithDigits(r.Limit, 0),
		})
	}
	f.PrintTable(output.TableData{
		Headers: []string{"#", "Budget", "Threshold", "Spec", "Baseline", "Limit", "Bytes"},
		Rows:    data,
	})
	return nil
}

func thresholdRows(budgets []budget.Budget, filter budget.Type) []thresholdRow {
	rows := []thresholdRow{}
	for _, b := range budgets {
		if filter != "" && b.Type() != filter {
			continue
		}
		for _, t := range b.Thresholds() {
			spec := b.Spec(t.Kind)
			row := thresholdRow{
				Index:     b.Index,
				Budget:    b.Label(),
				Threshold: t.Kind.String(),
				Severity:  t.Kind.Severity().String(),
				Limit:     t.Limit,
			}
			if spec != nil {
				row.Spec = spec.String()
			}
			if b.Baseline != nil && (t.Kind.Centered() || spec != nil && spec.IsPercent()) {
				row.Baseline = b.Baseline.String()
			}
			rows = append(rows, row)
		}
	}
	return rows
}

