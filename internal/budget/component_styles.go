package budget

import "github.com/rs/zerolog"

// ComponentStyleChecker enforces anyComponentStyle budgets against the flat
// list of component stylesheets. Callers run it after style optimization so
// that final emitted sizes are measured.
type ComponentStyleChecker struct {
	budgets []Budget
	opts    options
}

// NewComponentStyleChecker keeps only the anyComponentStyle budgets
func NewComponentStyleChecker(budgets []Budget, opts ...Option) *ComponentStyleChecker {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	var styleBudgets []Budget
	for _, b := range budgets {
		if b.Type() == TypeAnyComponentStyle {
			styleBudgets = append(styleBudgets, b)
		}
	}
	return &ComponentStyleChecker{budgets: styleBudgets, opts: o}
}

// Enabled reports whether any component style budget was declared
func (c *ComponentStyleChecker) Enabled() bool {
	return len(c.budgets) > 0
}

// Check compares every stylesheet against every component style budget
func (c *ComponentStyleChecker) Check(files []OutputFile) Messages {
	var msgs Messages
	if !c.Enabled() {
		return msgs
	}

	sizes := componentStyleSizes(files)
	for _, b := range c.budgets {
		evaluate(b, sizes, &msgs, c.opts)
	}

	c.opts.logger.Debug().
		Int("stylesheets", len(sizes)).
		Int("warnings", len(msgs.Warnings)).
		Int("errors", len(msgs.Errors)).
		Msg("Component style budget check complete")
	return msgs
}
