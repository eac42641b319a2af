package circuit

import (
	"errors"
	"fmt"
)

// Validation kinds. Match them with errors.Is on the error returned by Solve.
var (
	ErrInvalidResistor = errors.New("all resistors must have positive values")
	ErrInvalidSource   = errors.New("all source voltages must be positive")
	ErrInvalidCurrent  = errors.New("current must be positive")
	ErrOverCurrent     = errors.New("current exceeds the safety limit")
	ErrInvalidTopology = errors.New("unknown topology")
	ErrInvalidMode     = errors.New("unknown input mode")
	ErrOutOfRange      = errors.New("circuit values are outside the representable range")
)

var codes = map[error]string{
	ErrInvalidResistor: "invalid_resistor",
	ErrInvalidSource:   "invalid_source",
	ErrInvalidCurrent:  "invalid_current",
	ErrOverCurrent:     "over_current",
	ErrInvalidTopology: "invalid_topology",
	ErrInvalidMode:     "invalid_mode",
	ErrOutOfRange:      "out_of_range",
}

// ValidationError rejects a circuit before any result is built.
type ValidationError struct {
	Kind error
	Msg  string

	// Current is the offending total current for ErrOverCurrent.
	Current float64
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// Code is a stable snake_case tag for the kind.
func (e *ValidationError) Code() string {
	if c, ok := codes[e.Kind]; ok {
		return c
	}
	return "invalid_input"
}

func invalid(kind error) error {
	return &ValidationError{Kind: kind}
}

func overCurrent(current float64) error {
	return &ValidationError{
		Kind:    ErrOverCurrent,
		Msg:     fmt.Sprintf("current (%.2fA) exceeds the %gA limit", current, MaxCurrent),
		Current: current,
	}
}

// outOfRange rejects inputs that are individually valid but whose derived
// values overflow or underflow float64.
func outOfRange(what string, v float64) error {
	return &ValidationError{
		Kind: ErrOutOfRange,
		Msg:  fmt.Sprintf("%s is outside the representable range (%g)", what, v),
	}
}
