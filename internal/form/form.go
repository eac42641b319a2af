// Package form turns raw text fields into a circuit.Input. Unparsable text
// fails here with a ParseError and never reaches the solver.
package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"circuit-calculator/internal/circuit"
)

var (
	ErrBlank         = errors.New("value is required")
	ErrNotANumber    = errors.New("not a number")
	ErrUnknownOption = errors.New("unknown option")
)

// ParseError names the field that could not be read.
type ParseError struct {
	Field string
	Index int // position in a list field, -1 for scalar fields
	Text  string
	Err   error
}

func (e *ParseError) Error() string {
	name := e.Field
	if e.Index >= 0 {
		name = fmt.Sprintf("%s[%d]", e.Field, e.Index)
	}

	switch {
	case errors.Is(e.Err, ErrBlank):
		return fmt.Sprintf("%s: value is required", name)
	case errors.Is(e.Err, ErrNotANumber):
		return fmt.Sprintf("%s: %q is not a number", name, e.Text)
	default:
		return fmt.Sprintf("%s: %q: %v", name, e.Text, e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// Value is the raw text of one input field. In JSON it may be a string, a
// number or null.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("form value must be a string or a number: %w", err)
		}
		*v = Value(n)
	}
	return nil
}

// Fields mirrors the calculator form: selects for mode and topology, one row
// per resistor and per source, and the total current box.
type Fields struct {
	Mode      Value   `json:"mode"`
	Topology  Value   `json:"topology"`
	Resistors []Value `json:"resistors"`
	Sources   []Value `json:"sources,omitempty"`
	Current   Value   `json:"current,omitempty"`
}

// Parse converts f into a solver input. Blank mode and topology fall back to
// voltage and series. Sources are only read in voltage mode and the current
// only in current mode.
func Parse(f Fields) (circuit.Input, error) {
	in := circuit.Input{Mode: circuit.VoltageSpecified, Topology: circuit.Series}

	if text := strings.TrimSpace(string(f.Mode)); text != "" {
		mode, err := circuit.ParseInputMode(text)
		if err != nil {
			return circuit.Input{}, &ParseError{Field: "mode", Index: -1, Text: text, Err: ErrUnknownOption}
		}
		in.Mode = mode
	}

	if text := strings.TrimSpace(string(f.Topology)); text != "" {
		topology, err := circuit.ParseTopology(text)
		if err != nil {
			return circuit.Input{}, &ParseError{Field: "topology", Index: -1, Text: text, Err: ErrUnknownOption}
		}
		in.Topology = topology
	}

	var err error
	if in.Resistors, err = parseList("resistors", f.Resistors); err != nil {
		return circuit.Input{}, err
	}

	switch in.Mode {
	case circuit.VoltageSpecified:
		if in.Sources, err = parseList("sources", f.Sources); err != nil {
			return circuit.Input{}, err
		}
	case circuit.CurrentSpecified:
		if in.Current, err = parseNumber("current", -1, f.Current); err != nil {
			return circuit.Input{}, err
		}
	}

	return in, nil
}

// SplitList splits comma or whitespace separated text into values, e.g. the
// argument of a command-line flag.
func SplitList(s string) []Value {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = Value(p)
	}
	return out
}

func parseList(field string, values []Value) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		n, err := parseNumber(field, i, v)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func parseNumber(field string, index int, v Value) (float64, error) {
	text := strings.TrimSpace(string(v))
	if text == "" {
		return 0, &ParseError{Field: field, Index: index, Err: ErrBlank}
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &ParseError{Field: field, Index: index, Text: text, Err: ErrNotANumber}
	}
	return n, nil
}
