package budget

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError via errors.Is
	ErrConfiguration = errors.New("budget configuration error")

	// ErrInvalidBudgetSpec matches every *InvalidSpecError via errors.Is
	ErrInvalidBudgetSpec = errors.New("invalid budget size spec")

	// ErrCheckInProgress is returned when a check pass is started while another one is running
	ErrCheckInProgress = errors.New("budget check already in progress")
)

// ConfigurationError reports a budget declaration that cannot be enforced.
// It is raised before any build output is inspected, except for bundle
// budgets naming an artifact that the build never produced.
type ConfigurationError struct {
	Budget int    // index into the declared budgets, -1 when unknown
	Field  string // offending declaration field, may be empty
	Reason string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Budget < 0 && e.Field == "":
		return e.Reason
	case e.Budget < 0:
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	case e.Field == "":
		return fmt.Sprintf("budgets[%d]: %s", e.Budget, e.Reason)
	default:
		return fmt.Sprintf("budgets[%d].%s: %s", e.Budget, e.Field, e.Reason)
	}
}

// Is lets callers test with errors.Is(err, ErrConfiguration)
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InvalidSpecError reports a size spec that is not a non-negative number
// followed by an optional b, kb, mb or % unit.
type InvalidSpecError struct {
	Budget int
	Field  string
	Spec   string
	Reason string
}

func (e *InvalidSpecError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid size spec %q: %s", e.Spec, e.Reason)
	}
	return fmt.Sprintf("budgets[%d].%s: invalid size spec %q: %s", e.Budget, e.Field, e.Spec, e.Reason)
}

// Is lets callers test with errors.Is(err, ErrInvalidBudgetSpec)
func (e *InvalidSpecError) Is(target error) bool {
	return target == ErrInvalidBudgetSpec
}

// locate stamps budget index and field onto configuration-time errors
// raised below the normalization boundary.
func locate(err error, index int, field string) error {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		located := *cfgErr
		located.Budget = index
		if located.Field == "" {
			located.Field = field
		}
		return &located
	}
	var specErr *InvalidSpecError
	if errors.As(err, &specErr) {
		located := *specErr
		located.Budget = index
		if located.Field == "" {
			located.Field = field
		}
		return &located
	}
	return err
}
