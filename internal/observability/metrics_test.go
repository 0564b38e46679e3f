package observability

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxbase-eu/bundlebudget/internal/budget"
)

func TestCheckResult(t *testing.T) {
	testCases := []struct {
		name     string
		msgs     budget.Messages
		err      error
		expected string
	}{
		{"clean pass", budget.Messages{}, nil, "pass"},
		{"warnings only", budget.Messages{Warnings: []string{"w"}}, nil, "warn"},
		{"errors win over warnings", budget.Messages{Warnings: []string{"w"}, Errors: []string{"e"}}, nil, "fail"},
		{"configuration error", budget.Messages{}, errors.New("boom"), "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, checkResult(tc.msgs, tc.err))
		})
	}
}

func TestMetrics_ObservesChecker(t *testing.T) {
	budgets, err := budget.Normalize([]budget.Declaration{
		{Type: "any", MaximumWarning: "1kb", MaximumError: "4kb"},
	}, nil)
	require.NoError(t, err)

	m := NewMetrics()
	checker := budget.NewChecker(budgets, nil, budget.WithObserver(m))

	g := budget.OutputGraph{Artifacts: []budget.Artifact{
		{Name: "main", Initial: true, Files: []budget.OutputFile{{Path: "main.js", Size: 5000}}},
		{Name: "lazy", Files: []budget.OutputFile{{Path: "lazy.js", Size: 2000}}},
	}}
	msgs, err := checker.Check(g)
	require.NoError(t, err)
	m.RecordCheck(msgs, 10*time.Millisecond, nil)

	assert.Equal(t, 5000.0, testutil.ToFloat64(m.sizeBytes.WithLabelValues("any", "any", "main")))
	assert.Equal(t, 2000.0, testutil.ToFloat64(m.sizeBytes.WithLabelValues("any", "any", "lazy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.violationsTotal.WithLabelValues("any", "maximumWarning", "warning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.violationsTotal.WithLabelValues("any", "maximumError", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checksTotal.WithLabelValues("fail")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.messagesTotal.WithLabelValues("warning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messagesTotal.WithLabelValues("error")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RecordComponentStyles(3)
	m.RecordCheck(budget.Messages{}, time.Second, nil)

	path := filepath.Join(t.TempDir(), "bundlebudget.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `bundlebudget_checks_total{result="pass"} 1`)
	assert.Contains(t, string(data), "bundlebudget_component_styles 3")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}
