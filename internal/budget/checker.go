package budget

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Message is one threshold violation
type Message struct {
	Severity  Severity
	Threshold ThresholdKind
	Label     string
	Text      string
}

// Messages collects violations on the warning and error channels
type Messages struct {
	Warnings []string `json:"warnings" yaml:"warnings"`
	Errors   []string `json:"errors" yaml:"errors"`
}

// Add appends m to the channel selected by its severity
func (m *Messages) Add(msg Message) {
	if msg.Severity == SeverityError {
		m.Errors = append(m.Errors, msg.Text)
		return
	}
	m.Warnings = append(m.Warnings, msg.Text)
}

// Merge appends every message of other
func (m *Messages) Merge(other Messages) {
	m.Warnings = append(m.Warnings, other.Warnings...)
	m.Errors = append(m.Errors, other.Errors...)
}

// HasErrors reports whether any error-channel message was produced
func (m Messages) HasErrors() bool {
	return len(m.Errors) > 0
}

// Len is the total number of messages
func (m Messages) Len() int {
	return len(m.Warnings) + len(m.Errors)
}

// Observer is notified of each size measured and each violation found
type Observer interface {
	ObserveSize(b Budget, s Size)
	ObserveViolation(b Budget, m Message)
}

// Option configures a Checker
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	observer Observer
}

// WithLogger sets the logger used for per-pass debug output
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers an observer for sizes and violations
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

const (
	stateIdle int32 = iota
	stateChecking
)

// Checker enforces a fixed set of normalized budgets against successive
// builds. Component style budgets are skipped here and handled by
// ComponentStyleChecker once styles have been optimized.
type Checker struct {
	budgets []Budget
	entries []ExtraEntryPoint
	opts    options
	state   atomic.Int32
}

// NewChecker creates a checker for budgets. entries are the declared extra
// entry points used to classify every graph before measuring it.
func NewChecker(budgets []Budget, entries []ExtraEntryPoint, opts ...Option) *Checker {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Checker{
		budgets: budgets,
		entries: append([]ExtraEntryPoint(nil), entries...),
		opts:    o,
	}
}

// Budgets returns the budgets this checker enforces
func (c *Checker) Budgets() []Budget {
	return c.budgets
}

type measured struct {
	budget Budget
	sizes  []Size
}

// Check runs one pass over a completed build. A graph without artifacts is
// a failed build and yields no messages. A bundle budget naming a missing
// artifact fails the whole pass before any message is produced.
func (c *Checker) Check(g OutputGraph) (Messages, error) {
	if !c.state.CompareAndSwap(stateIdle, stateChecking) {
		return Messages{}, ErrCheckInProgress
	}
	defer c.state.Store(stateIdle)

	if g.Empty() {
		c.opts.logger.Debug().Msg("Build produced no artifacts, skipping budget check")
		return Messages{}, nil
	}

	classified := Classify(g, c.entries)

	var pass []measured
	for _, b := range c.budgets {
		if b.Type() == TypeAnyComponentStyle {
			continue
		}
		sizes, err := CalculateSizes(b, classified)
		if err != nil {
			return Messages{}, err
		}
		pass = append(pass, measured{budget: b, sizes: sizes})
	}

	var msgs Messages
	for _, m := range pass {
		evaluate(m.budget, m.sizes, &msgs, c.opts)
	}

	c.opts.logger.Debug().
		Int("budgets", len(pass)).
		Int("warnings", len(msgs.Warnings)).
		Int("errors", len(msgs.Errors)).
		Msg("Budget check complete")

	return msgs, nil
}

// evaluate applies every threshold of b to every size. All comparisons run.
func evaluate(b Budget, sizes []Size, msgs *Messages, o options) {
	for _, s := range sizes {
		if o.observer != nil {
			o.observer.ObserveSize(b, s)
		}
		for _, t := range b.Thresholds() {
			var text string
			var violated bool
			switch t.Kind.Comparison() {
			case AtMost:
				text, violated = checkMaximum(t.Limit, s)
			case AtLeast:
				text, violated = checkMinimum(t.Limit, s)
			}
			if !violated {
				continue
			}

			msg := Message{Severity: t.Kind.Severity(), Threshold: t.Kind, Label: s.Label, Text: text}
			msgs.Add(msg)
			if o.observer != nil {
				o.observer.ObserveViolation(b, msg)
			}
			o.logger.Debug().
				Int("budget", b.Index).
				Str("threshold", t.Kind.String()).
				Str("label", s.Label).
				Int64("size", s.Bytes).
				Float64("limit", t.Limit).
				Msg("Budget violated")
		}
	}
}

func checkMaximum(limit float64, s Size) (string, bool) {
	size := float64(s.Bytes)
	if limit < size {
		return fmt.Sprintf("budgets, maximum exceeded for %s. Budget %s was exceeded by %s.",
			s.Label, FormatSize(limit), FormatSize(size-limit)), true
	}
	return "", false
}

func checkMinimum(limit float64, s Size) (string, bool) {
	size := float64(s.Bytes)
	if limit > size {
		return fmt.Sprintf("budgets, minimum exceeded for %s. Budget %s was not reached by %s.",
			s.Label, FormatSize(limit), FormatSize(limit-size)), true
	}
	return "", false
}
