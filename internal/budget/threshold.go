package budget

// Comparison is the direction a threshold is checked in
type Comparison int

const (
	// AtMost violates when the size is strictly greater than the limit
	AtMost Comparison = iota
	// AtLeast violates when the size is strictly lower than the limit
	AtLeast
)

// Severity routes a violation to the warning or the error channel
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ThresholdKind names one of the eight thresholds a budget can resolve to
type ThresholdKind int

const (
	MaximumWarning ThresholdKind = iota
	MaximumError
	MinimumWarning
	MinimumError
	WarningLow
	WarningHigh
	ErrorLow
	ErrorHigh
)

// thresholdKinds is the fixed evaluation order
var thresholdKinds = []ThresholdKind{
	MaximumWarning, MaximumError, MinimumWarning, MinimumError,
	WarningLow, WarningHigh, ErrorLow, ErrorHigh,
}

func (k ThresholdKind) String() string {
	switch k {
	case MaximumWarning:
		return "maximumWarning"
	case MaximumError:
		return "maximumError"
	case MinimumWarning:
		return "minimumWarning"
	case MinimumError:
		return "minimumError"
	case WarningLow:
		return "warningLow"
	case WarningHigh:
		return "warningHigh"
	case ErrorLow:
		return "errorLow"
	case ErrorHigh:
		return "errorHigh"
	default:
		return "unknown"
	}
}

// Comparison returns AtMost for the maximum/high family and AtLeast for
// the minimum/low family.
func (k ThresholdKind) Comparison() Comparison {
	switch k {
	case MaximumWarning, MaximumError, WarningHigh, ErrorHigh:
		return AtMost
	default:
		return AtLeast
	}
}

// Severity returns the channel a violation of this threshold is reported on
func (k ThresholdKind) Severity() Severity {
	switch k {
	case MaximumError, MinimumError, ErrorLow, ErrorHigh:
		return SeverityError
	default:
		return SeverityWarning
	}
}

// Centered reports whether the threshold is one side of a band around the
// baseline.
func (k ThresholdKind) Centered() bool {
	switch k {
	case WarningLow, WarningHigh, ErrorLow, ErrorHigh:
		return true
	}
	return false
}

func (k ThresholdKind) factor() Factor {
	if k.Comparison() == AtMost {
		return Above
	}
	return Below
}

// field is the declaration field the threshold is derived from
func (k ThresholdKind) field() string {
	switch k {
	case WarningLow, WarningHigh:
		return "warning"
	case ErrorLow, ErrorHigh:
		return "error"
	default:
		return k.String()
	}
}

// Threshold is one resolved byte limit
type Threshold struct {
	Kind  ThresholdKind
	Limit float64
}

// ThresholdSet holds at most one threshold per kind, in evaluation order
type ThresholdSet []Threshold

// Get returns the threshold of kind k if the budget defines it
func (s ThresholdSet) Get(k ThresholdKind) (Threshold, bool) {
	for _, t := range s {
		if t.Kind == k {
			return t, true
		}
	}
	return Threshold{}, false
}

// CalculateThresholds resolves every defined size field of b. The maximum
// and minimum fields only consult the baseline when they are percentages;
// the warning and error bands are always centered on it.
func CalculateThresholds(b Budget) (ThresholdSet, error) {
	var set ThresholdSet
	for _, kind := range thresholdKinds {
		spec := b.Spec(kind)
		if spec == nil {
			continue
		}

		baseline := b.Baseline
		if !kind.Centered() && !spec.IsPercent() {
			baseline = nil
		}

		limit, ok, err := CalculateBytes(spec, baseline, kind.factor())
		if err != nil {
			return nil, locate(err, b.Index, kind.field())
		}
		if ok {
			set = append(set, Threshold{Kind: kind, Limit: limit})
		}
	}
	return set, nil
}

// Spec returns the declared size spec a threshold kind is derived from
func (b Budget) Spec(k ThresholdKind) *ByteBudget {
	switch k {
	case MaximumWarning:
		return b.MaximumWarning
	case MaximumError:
		return b.MaximumError
	case MinimumWarning:
		return b.MinimumWarning
	case MinimumError:
		return b.MinimumError
	case WarningLow, WarningHigh:
		return b.Warning
	case ErrorLow, ErrorHigh:
		return b.Error
	default:
		return nil
	}
}
