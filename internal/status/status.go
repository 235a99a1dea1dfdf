package status

// Indicator receives the outcome of each supervisory cycle.
type Indicator interface {
	SignalSuccess()
	SignalFailure()
}

// Logger is the subset of logging.Logger indicators report problems to.
type Logger interface {
	Warn(msg string, args ...any)
}

// Nop ignores all signals.
type Nop struct{}

// SignalSuccess does nothing.
func (Nop) SignalSuccess() {}

// SignalFailure does nothing.
func (Nop) SignalFailure() {}

// Multi fans signals out to several indicators.
type Multi []Indicator

// SignalSuccess signals every indicator.
func (m Multi) SignalSuccess() {
	for _, i := range m {
		i.SignalSuccess()
	}
}

// SignalFailure signals every indicator.
func (m Multi) SignalFailure() {
	for _, i := range m {
		i.SignalFailure()
	}
}

// Combine returns a single Indicator for inds, dropping nils.
func Combine(inds ...Indicator) Indicator {
	var m Multi
	for _, i := range inds {
		if i != nil {
			m = append(m, i)
		}
	}
	switch len(m) {
	case 0:
		return Nop{}
	case 1:
		return m[0]
	default:
		return m
	}
}
