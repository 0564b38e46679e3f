package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	sizes      []Size
	violations []Message
	onSize     func()
}

func (r *recordingObserver) ObserveSize(_ Budget, s Size) {
	r.sizes = append(r.sizes, s)
	if r.onSize != nil {
		r.onSize()
	}
}

func (r *recordingObserver) ObserveViolation(_ Budget, m Message) {
	r.violations = append(r.violations, m)
}

func singleArtifact(name string, initial bool, files ...OutputFile) OutputGraph {
	return OutputGraph{Artifacts: []Artifact{{Name: name, Initial: initial, Files: files}}}
}

func TestChecker_InitialMaximumWarning(t *testing.T) {
	budgets := mustNormalize(t, Declaration{Type: "initial", MaximumWarning: "500kb"})
	g := singleArtifact("main", true,
		OutputFile{Path: "main.js", Size: 550000},
		OutputFile{Path: "styles.css", Size: 50000},
		OutputFile{Path: "main.js.map", Size: 300000},
	)

	msgs, err := NewChecker(budgets, nil).Check(g)
	require.NoError(t, err)

	require.Len(t, msgs.Warnings, 1)
	assert.Empty(t, msgs.Errors)
	assert.Contains(t, msgs.Warnings[0], "maximum exceeded")
	assert.Equal(t, "budgets, maximum exceeded for initial. Budget 500.00 kB was exceeded by 85.94 kB.", msgs.Warnings[0])
}

func TestChecker_BundleMinimumError(t *testing.T) {
	budgets := mustNormalize(t, Declaration{Type: "bundle", Name: "vendor", MinimumError: "10kb"})
	g := singleArtifact("vendor", false, OutputFile{Path: "vendor.js", Size: 2000})

	msgs, err := NewChecker(budgets, nil).Check(g)
	require.NoError(t, err)

	assert.Empty(t, msgs.Warnings)
	require.Len(t, msgs.Errors, 1)
	assert.Equal(t, "budgets, minimum exceeded for vendor. Budget 10.00 kB was not reached by 8.05 kB.", msgs.Errors[0])
}

func TestChecker_PercentageBandPerArtifact(t *testing.T) {
	budgets := mustNormalize(t, Declaration{Type: "any", Warning: "5%", Baseline: "1mb"})
	g := OutputGraph{Artifacts: []Artifact{
		{Name: "main", Initial: true, Files: []OutputFile{{Path: "main.js", Size: 1153434}}},
		{Name: "lazy", Files: []OutputFile{{Path: "lazy.js", Size: 1069548}}},
	}}

	msgs, err := NewChecker(budgets, nil).Check(g)
	require.NoError(t, err)

	assert.Empty(t, msgs.Errors)
	require.Len(t, msgs.Warnings, 1)
	assert.Contains(t, msgs.Warnings[0], "maximum exceeded for main.")
}

func TestChecker_LazyExtraEntryExcludedFromInitial(t *testing.T) {
	budgets := mustNormalize(t, Declaration{Type: "initial", MaximumError: "100kb"})
	g := OutputGraph{Artifacts: []Artifact{
		{Name: "main", Initial: true, Files: []OutputFile{{Path: "main.js", Size: 80000, Initial: true}}},
		{Name: "polyfills", Initial: true, Files: []OutputFile{{Path: "polyfills.js", Size: 60000, Initial: true}}},
	}}

	unclassified, err := NewChecker(budgets, nil).Check(g)
	require.NoError(t, err)
	require.Len(t, unclassified.Errors, 1)

	obs := &recordingObserver{}
	checker := NewChecker(budgets, []ExtraEntryPoint{{BundleName: "polyfills", Lazy: true}}, WithObserver(obs))
	msgs, err := checker.Check(g)
	require.NoError(t, err)
	assert.Zero(t, msgs.Len())
	assert.Equal(t, []Size{{Label: "initial", Bytes: 80000}}, obs.sizes)
}

func TestChecker_MissingBundle(t *testing.T) {
	budgets := mustNormalize(t,
		Declaration{Type: "all", MaximumWarning: "1b"},
		Declaration{Type: "bundle", Name: "missing"},
	)
	g := singleArtifact("main", true, OutputFile{Path: "main.js", Size: 5000})

	msgs, err := NewChecker(budgets, nil).Check(g)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Zero(t, msgs.Len())
}

func TestChecker_EmptyGraphIsNoop(t *testing.T) {
	budgets := mustNormalize(t, Declaration{Type: "bundle", Name: "missing", MaximumError: "1b"})

	msgs, err := NewChecker(budgets, nil).Check(OutputGraph{})
	require.NoError(t, err)
	assert.Zero(t, msgs.Len())
}

func TestChecker_EqualityIsNotAViolation(t *testing.T) {
	budgets := mustNormalize(t, Declaration{
		Type:           "all",
		MaximumWarning: "1kb",
		MaximumError:   "1kb",
		MinimumWarning: "1kb",
		MinimumError:   "1kb",
	})
	g := singleArtifact("main", true, OutputFile{Path: "main.js", Size: 1024})

	msgs, err := NewChecker(budgets, nil).Check(g)
	require.NoError(t, err)
	assert.Zero(t, msgs.Len())
}

func TestChecker_AllComparisonsRun(t *testing.T) {
	budgets := mustNormalize(t, Declaration{
		Type:           "all",
		Baseline:       "10kb",
		MaximumWarning: "1kb",
		MaximumError:   "2kb",
		Warning:        "10%",
		Error:          "20%",
	})
	g := singleArtifact("main", true, OutputFile{Path: "main.js", Size: 20480})

	obs := &recordingObserver{}
	msgs, err := NewChecker(budgets, nil, WithObserver(obs)).Check(g)
	require.NoError(t, err)

	assert.Len(t, msgs.Warnings, 2)
	assert.Len(t, msgs.Errors, 2)

	var kinds []ThresholdKind
	for _, v := range obs.violations {
		kinds = append(kinds, v.Threshold)
	}
	assert.Equal(t, []ThresholdKind{MaximumWarning, MaximumError, WarningHigh, ErrorHigh}, kinds)
}

func TestChecker_Idempotent(t *testing.T) {
	budgets := mustNormalize(t,
		Declaration{Type: "any", MaximumWarning: "100kb"},
		Declaration{Type: "allScript", MaximumError: "200kb"},
		Declaration{Type: "bundle", Name: "polyfills", MinimumWarning: "1mb"},
	)
	checker := NewChecker(budgets, []ExtraEntryPoint{{BundleName: "polyfills", Lazy: true}})
	g := sampleGraph()

	first, err := checker.Check(g)
	require.NoError(t, err)
	second, err := checker.Check(g)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotZero(t, first.Len())
}

func TestChecker_SkipsComponentStyleBudgets(t *testing.T) {
	budgets := mustNormalize(t, Declaration{Type: "anyComponentStyle", MaximumError: "1b"})

	msgs, err := NewChecker(budgets, nil).Check(sampleGraph())
	require.NoError(t, err)
	assert.Zero(t, msgs.Len())
}

func TestChecker_RejectsOverlappingPass(t *testing.T) {
	budgets := mustNormalize(t, Declaration{Type: "all", MaximumWarning: "1mb"})

	var nestedErr error
	obs := &recordingObserver{}
	checker := NewChecker(budgets, nil, WithObserver(obs))
	obs.onSize = func() {
		_, nestedErr = checker.Check(sampleGraph())
	}

	_, err := checker.Check(sampleGraph())
	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, ErrCheckInProgress)

	// back to idle
	obs.onSize = nil
	_, err = checker.Check(sampleGraph())
	assert.NoError(t, err)
}

func TestComponentStyleChecker(t *testing.T) {
	budgets := mustNormalize(t,
		Declaration{Type: "initial", MaximumError: "1b"},
		Declaration{Type: "anyComponentStyle", MaximumWarning: "2kb", MaximumError: "4kb"},
	)
	checker := NewComponentStyleChecker(budgets)
	require.True(t, checker.Enabled())

	msgs := checker.Check([]OutputFile{
		{Path: "src/app/a.component.css", Size: 1000},
		{Path: "src/app/b.component.css", Size: 3000},
		{Path: "src/app/b.component.css.map", Size: 9000},
	})

	assert.Empty(t, msgs.Errors)
	require.Len(t, msgs.Warnings, 1)
	assert.Equal(t, "budgets, maximum exceeded for src/app/b.component.css. Budget 2.00 kB was exceeded by 952 bytes.", msgs.Warnings[0])
}

func TestComponentStyleChecker_Disabled(t *testing.T) {
	checker := NewComponentStyleChecker(mustNormalize(t, Declaration{Type: "all", MaximumError: "1b"}))
	assert.False(t, checker.Enabled())
	assert.Zero(t, checker.Check([]OutputFile{{Path: "a.css", Size: 1 << 20}}).Len())
}
