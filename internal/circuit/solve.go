package circuit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Solve validates in and computes the circuit. Validation failures are
// returned as *ValidationError; nothing is partially computed.
func Solve(in Input) (Result, error) {
	if !allPositive(in.Resistors) {
		return Result{}, invalid(ErrInvalidResistor)
	}

	switch in.Mode {
	case VoltageSpecified:
		if !allPositive(in.Sources) {
			return Result{}, invalid(ErrInvalidSource)
		}
	case CurrentSpecified:
		if !positive(in.Current) {
			return Result{}, invalid(ErrInvalidCurrent)
		}
	default:
		return Result{}, &ValidationError{Kind: ErrInvalidMode, Msg: fmt.Sprintf("unknown input mode %q", in.Mode)}
	}

	req, err := EquivalentResistance(in.Topology, in.Resistors)
	if err != nil {
		return Result{}, err
	}

	var voltage, current float64
	if in.Mode == VoltageSpecified {
		voltage = floats.Sum(in.Sources)
		if !positive(voltage) {
			return Result{}, outOfRange("total voltage", voltage)
		}
		current = voltage / req
	} else {
		current = in.Current
	}
	if math.IsInf(current, 1) {
		return Result{}, outOfRange("total current", current)
	}
	if current > MaxCurrent {
		return Result{}, overCurrent(current)
	}
	if !positive(current) {
		return Result{}, outOfRange("total current", current)
	}
	if in.Mode == CurrentSpecified {
		voltage = current * req
		if !positive(voltage) {
			return Result{}, outOfRange("total voltage", voltage)
		}
	}

	power := voltage * current
	if !positive(power) {
		return Result{}, outOfRange("total power", power)
	}

	resistors := distribute(in.Topology, in.Resistors, voltage, current)
	for _, rr := range resistors {
		if !positive(rr.Voltage) || !positive(rr.Current) || !positive(rr.Power) {
			return Result{}, outOfRange(fmt.Sprintf("R%d", rr.Index), rr.Power)
		}
	}

	return Result{
		Topology:             in.Topology,
		InputMode:            in.Mode,
		EquivalentResistance: req,
		TotalVoltage:         voltage,
		TotalCurrent:         current,
		TotalPower:           power,
		Resistors:            resistors,
	}, nil
}

// EquivalentResistance reduces the resistor set to a single value. Every
// resistor must be finite and strictly positive, and so must the result.
func EquivalentResistance(t Topology, resistors []float64) (float64, error) {
	if !allPositive(resistors) {
		return 0, invalid(ErrInvalidResistor)
	}

	var req float64
	switch t {
	case Series:
		req = floats.Sum(resistors)
	case Parallel:
		conductance := make([]float64, len(resistors))
		for i, r := range resistors {
			conductance[i] = 1 / r
		}
		req = 1 / floats.Sum(conductance)
	default:
		return 0, &ValidationError{Kind: ErrInvalidTopology, Msg: fmt.Sprintf("unknown topology %q", t)}
	}

	if !positive(req) {
		return 0, outOfRange("equivalent resistance", req)
	}
	return req, nil
}

func distribute(t Topology, resistors []float64, voltage, current float64) []ResistorResult {
	out := make([]ResistorResult, len(resistors))
	for i, r := range resistors {
		rr := ResistorResult{Index: i + 1, Resistance: r}
		if t == Series {
			rr.Current = current
			rr.Voltage = current * r
		} else {
			rr.Voltage = voltage
			rr.Current = voltage / r
		}
		rr.Power = rr.Voltage * rr.Current
		out[i] = rr
	}
	return out
}

// positive reports whether v is finite and strictly greater than zero.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func allPositive(vs []float64) bool {
	if len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		if !positive(v) {
			return false
		}
	}
	return true
}
