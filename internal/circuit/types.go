package circuit

import (
	"fmt"
	"strings"
)

// MaxCurrent is the safety ceiling in amperes. A circuit whose total current
// exceeds it is rejected instead of reported.
const MaxCurrent = 10.0

// Topology describes how every resistor in a computation is connected.
type Topology string

const (
	Series   Topology = "series"
	Parallel Topology = "parallel"
)

// ParseTopology accepts "series" or "parallel" in any case.
func ParseTopology(s string) (Topology, error) {
	switch t := Topology(strings.ToLower(strings.TrimSpace(s))); t {
	case Series, Parallel:
		return t, nil
	default:
		return "", fmt.Errorf("unknown topology %q", s)
	}
}

func (t Topology) String() string { return string(t) }

// InputMode selects which quantity the caller supplies directly.
type InputMode string

const (
	// VoltageSpecified: source voltages are given, current is derived.
	VoltageSpecified InputMode = "voltage"
	// CurrentSpecified: the total current is given, voltage is derived.
	CurrentSpecified InputMode = "current"
)

// ParseInputMode accepts "voltage" or "current" in any case.
func ParseInputMode(s string) (InputMode, error) {
	switch m := InputMode(strings.ToLower(strings.TrimSpace(s))); m {
	case VoltageSpecified, CurrentSpecified:
		return m, nil
	default:
		return "", fmt.Errorf("unknown input mode %q", s)
	}
}

func (m InputMode) String() string { return string(m) }

// Input is the fully parsed request handed to Solve.
type Input struct {
	Mode      InputMode
	Topology  Topology
	Resistors []float64 // ohms, reported 1-based in this order
	Sources   []float64 // volts, used only in voltage mode
	Current   float64   // amperes, used only in current mode
}

// ResistorResult is the share of one resistor in a solved circuit.
type ResistorResult struct {
	Index      int     `json:"index"`
	Resistance float64 `json:"resistance"`
	Voltage    float64 `json:"voltage"`
	Current    float64 `json:"current"`
	Power      float64 `json:"power"`
}

// Result is a solved circuit. It is built once by Solve and never modified;
// callers pass it explicitly to whichever formatter they need.
type Result struct {
	Topology             Topology         `json:"topology"`
	InputMode            InputMode        `json:"input_mode"`
	EquivalentResistance float64          `json:"equivalent_resistance"`
	TotalVoltage         float64          `json:"total_voltage"`
	TotalCurrent         float64          `json:"total_current"`
	TotalPower           float64          `json:"total_power"`
	Resistors            []ResistorResult `json:"resistors"`
}
