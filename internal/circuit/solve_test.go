package circuit

import (
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
)

const tolerance = 1e-9

func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tolerance*math.Max(math.Abs(a), math.Abs(b))
}

func TestSolveSeriesVoltageMode(t *testing.T) {
	res, err := Solve(Input{
		Mode:      VoltageSpecified,
		Topology:  Series,
		Resistors: []float64{1, 1},
		Sources:   []float64{12},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.EquivalentResistance != 2 {
		t.Fatalf("expected equivalent resistance 2, got %g", res.EquivalentResistance)
	}
	if res.TotalCurrent != 6 {
		t.Fatalf("expected total current 6, got %g", res.TotalCurrent)
	}
	if res.TotalVoltage != 12 {
		t.Fatalf("expected total voltage 12, got %g", res.TotalVoltage)
	}
	if res.TotalPower != 72 {
		t.Fatalf("expected total power 72, got %g", res.TotalPower)
	}
	if len(res.Resistors) != 2 {
		t.Fatalf("expected 2 resistor results, got %d", len(res.Resistors))
	}
	for i, rr := range res.Resistors {
		if rr.Index != i+1 {
			t.Fatalf("resistor %d: expected index %d, got %d", i, i+1, rr.Index)
		}
		if rr.Voltage != 6 || rr.Current != 6 || rr.Power != 36 {
			t.Fatalf("resistor %d: expected 6V/6A/36W, got %gV/%gA/%gW", i, rr.Voltage, rr.Current, rr.Power)
		}
	}
}

func TestSolveParallelOverCurrent(t *testing.T) {
	_, err := Solve(Input{
		Mode:      VoltageSpecified,
		Topology:  Parallel,
		Resistors: []float64{1, 1},
		Sources:   []float64{12},
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !errors.Is(err, ErrOverCurrent) {
		t.Fatalf("expected ErrOverCurrent, got %v", err)
	}
	if verr.Current != 24 {
		t.Fatalf("expected offending current 24, got %g", verr.Current)
	}
	if want := "current (24.00A) exceeds the 10A limit"; verr.Error() != want {
		t.Fatalf("expected message %q, got %q", want, verr.Error())
	}
	if verr.Code() != "over_current" {
		t.Fatalf("expected code over_current, got %q", verr.Code())
	}
}

func TestSolveParallelCurrentMode(t *testing.T) {
	res, err := Solve(Input{
		Mode:      CurrentSpecified,
		Topology:  Parallel,
		Resistors: []float64{2, 3},
		Current:   5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !approxEqual(res.EquivalentResistance, 1.2) {
		t.Fatalf("expected equivalent resistance 1.2, got %g", res.EquivalentResistance)
	}
	if !approxEqual(res.TotalVoltage, 6) {
		t.Fatalf("expected total voltage 6, got %g", res.TotalVoltage)
	}
	if res.TotalCurrent != 5 {
		t.Fatalf("expected total current 5, got %g", res.TotalCurrent)
	}
	if !approxEqual(res.Resistors[0].Current, 3) {
		t.Fatalf("expected R1 current 3, got %g", res.Resistors[0].Current)
	}
	if !approxEqual(res.Resistors[1].Current, 2) {
		t.Fatalf("expected R2 current 2, got %g", res.Resistors[1].Current)
	}
	for _, rr := range res.Resistors {
		if rr.Voltage != res.TotalVoltage {
			t.Fatalf("R%d: expected shared voltage %g, got %g", rr.Index, res.TotalVoltage, rr.Voltage)
		}
		if rr.Power != rr.Voltage*rr.Current {
			t.Fatalf("R%d: power %g != voltage*current %g", rr.Index, rr.Power, rr.Voltage*rr.Current)
		}
	}
}

func TestSolveValidationOrder(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want error
		msg  string
	}{
		{
			name: "zero resistor wins over everything",
			in:   Input{Mode: "bogus", Topology: "bogus", Resistors: []float64{0}},
			want: ErrInvalidResistor,
			msg:  "all resistors must have positive values",
		},
		{
			name: "empty resistors",
			in:   Input{Mode: VoltageSpecified, Topology: Series, Sources: []float64{5}},
			want: ErrInvalidResistor,
		},
		{
			name: "negative resistor",
			in:   Input{Mode: VoltageSpecified, Topology: Series, Resistors: []float64{10, -1}, Sources: []float64{5}},
			want: ErrInvalidResistor,
		},
		{
			name: "nan resistor",
			in:   Input{Mode: VoltageSpecified, Topology: Series, Resistors: []float64{math.NaN()}, Sources: []float64{5}},
			want: ErrInvalidResistor,
		},
		{
			name: "infinite resistor",
			in:   Input{Mode: VoltageSpecified, Topology: Series, Resistors: []float64{math.Inf(1)}, Sources: []float64{5}},
			want: ErrInvalidResistor,
		},
		{
			name: "empty sources",
			in:   Input{Mode: VoltageSpecified, Topology: Series, Resistors: []float64{10}},
			want: ErrInvalidSource,
			msg:  "all source voltages must be positive",
		},
		{
			name: "zero source",
			in:   Input{Mode: VoltageSpecified, Topology: Series, Resistors: []float64{10}, Sources: []float64{9, 0}},
			want: ErrInvalidSource,
		},
		{
			name: "source checked before overcurrent",
			in:   Input{Mode: VoltageSpecified, Topology: Parallel, Resistors: []float64{0.001}, Sources: []float64{-1}},
			want: ErrInvalidSource,
		},
		{
			name: "zero current",
			in:   Input{Mode: CurrentSpecified, Topology: Series, Resistors: []float64{10}},
			want: ErrInvalidCurrent,
			msg:  "current must be positive",
		},
		{
			name: "sources ignored in current mode",
			in:   Input{Mode: CurrentSpecified, Topology: Series, Resistors: []float64{10}, Sources: []float64{-3}, Current: -1},
			want: ErrInvalidCurrent,
		},
		{
			name: "supplied current over the ceiling",
			in:   Input{Mode: CurrentSpecified, Topology: Series, Resistors: []float64{10}, Current: 10.5},
			want: ErrOverCurrent,
			msg:  "current (10.50A) exceeds the 10A limit",
		},
		{
			name: "unknown mode",
			in:   Input{Mode: "watts", Topology: Series, Resistors: []float64{10}},
			want: ErrInvalidMode,
		},
		{
			name: "unknown topology",
			in:   Input{Mode: CurrentSpecified, Topology: "delta", Resistors: []float64{10}, Current: 1},
			want: ErrInvalidTopology,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Solve(tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if tc.msg != "" && verr.Error() != tc.msg {
				t.Fatalf("expected message %q, got %q", tc.msg, verr.Error())
			}
		})
	}
}

func TestSolveCurrentAtCeilingIsAccepted(t *testing.T) {
	res, err := Solve(Input{Mode: VoltageSpecified, Topology: Series, Resistors: []float64{2}, Sources: []float64{20}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalCurrent != MaxCurrent {
		t.Fatalf("expected current %g, got %g", MaxCurrent, res.TotalCurrent)
	}
}

func TestSolveSumsMultipleSources(t *testing.T) {
	res, err := Solve(Input{Mode: VoltageSpecified, Topology: Series, Resistors: []float64{100, 200}, Sources: []float64{9, 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalVoltage != 12 {
		t.Fatalf("expected total voltage 12, got %g", res.TotalVoltage)
	}
	if !approxEqual(res.TotalCurrent, 0.04) {
		t.Fatalf("expected total current 0.04, got %g", res.TotalCurrent)
	}
}

func TestSolveRejectsUnrepresentableValues(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{
			name: "series resistance overflows",
			in:   Input{Mode: VoltageSpecified, Topology: Series, Resistors: []float64{1e308, 1e308}, Sources: []float64{5}},
		},
		{
			name: "parallel resistance underflows",
			in:   Input{Mode: CurrentSpecified, Topology: Parallel, Resistors: []float64{1e-320}, Current: 1},
		},
		{
			name: "source sum overflows",
			in:   Input{Mode: VoltageSpecified, Topology: Series, Resistors: []float64{1}, Sources: []float64{1e308, 1e308}},
		},
		{
			name: "derived current overflows",
			in:   Input{Mode: VoltageSpecified, Topology: Series, Resistors: []float64{1e-300}, Sources: []float64{1e10}},
		},
		{
			name: "derived current underflows",
			in:   Input{Mode: VoltageSpecified, Topology: Series, Resistors: []float64{1e300}, Sources: []float64{1e-300}},
		},
		{
			name: "derived voltage underflows",
			in:   Input{Mode: CurrentSpecified, Topology: Series, Resistors: []float64{1e-200}, Current: 1e-200},
		},
		{
			name: "power underflows",
			in:   Input{Mode: VoltageSpecified, Topology: Series, Resistors: []float64{1}, Sources: []float64{1e-200}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Solve(tc.in)
			if !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("expected %v, got %v (result %+v)", ErrOutOfRange, err, res)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Code() != "out_of_range" {
				t.Fatalf("expected out_of_range validation error, got %#v", err)
			}
		})
	}
}

func TestEquivalentResistanceOutOfRange(t *testing.T) {
	if _, err := EquivalentResistance(Series, []float64{1e308, 1e308}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected %v for overflowing series sum, got %v", ErrOutOfRange, err)
	}
	if _, err := EquivalentResistance(Parallel, []float64{1e-320, 5}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected %v for vanishing parallel resistance, got %v", ErrOutOfRange, err)
	}
}

func TestEquivalentResistance(t *testing.T) {
	tests := []struct {
		name      string
		topology  Topology
		resistors []float64
		want      float64
	}{
		{"single series", Series, []float64{47}, 47},
		{"series sum", Series, []float64{10, 20, 30}, 60},
		{"single parallel", Parallel, []float64{47}, 47},
		{"parallel equal pair", Parallel, []float64{100, 100}, 50},
		{"parallel three", Parallel, []float64{2, 3, 6}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EquivalentResistance(tc.topology, tc.resistors)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !approxEqual(got, tc.want) {
				t.Fatalf("expected %g, got %g", tc.want, got)
			}
		})
	}
}

func randomResistors(rng *rand.Rand) []float64 {
	n := 1 + rng.IntN(8)
	rs := make([]float64, n)
	for i := range rs {
		rs[i] = 0.5 + rng.Float64()*1000
	}
	return rs
}

func TestSolveLaws(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for iter := range 500 {
		resistors := randomResistors(rng)
		topology := Series
		if iter%2 == 1 {
			topology = Parallel
		}
		in := Input{
			Mode:      VoltageSpecified,
			Topology:  topology,
			Resistors: resistors,
			Sources:   []float64{0.1 + rng.Float64()*5, 0.1 + rng.Float64()*5},
		}

		res, err := Solve(in)
		if errors.Is(err, ErrOverCurrent) {
			continue
		}
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", iter, err)
		}

		minR := math.Inf(1)
		sum, recip := 0.0, 0.0
		for _, r := range resistors {
			sum += r
			recip += 1 / r
			minR = math.Min(minR, r)
		}

		var voltages, currents float64
		for _, rr := range res.Resistors {
			if rr.Power != rr.Voltage*rr.Current {
				t.Fatalf("iteration %d: R%d power law broken", iter, rr.Index)
			}
			voltages += rr.Voltage
			currents += rr.Current
		}
		if res.TotalPower != res.TotalVoltage*res.TotalCurrent {
			t.Fatalf("iteration %d: total power law broken", iter)
		}

		switch topology {
		case Series:
			if !approxEqual(res.EquivalentResistance, sum) {
				t.Fatalf("iteration %d: series Req %g != sum %g", iter, res.EquivalentResistance, sum)
			}
			if !approxEqual(voltages, res.TotalVoltage) {
				t.Fatalf("iteration %d: series voltages %g != total %g", iter, voltages, res.TotalVoltage)
			}
			for _, rr := range res.Resistors {
				if rr.Current != res.TotalCurrent {
					t.Fatalf("iteration %d: series current not shared", iter)
				}
			}
		case Parallel:
			if !approxEqual(res.EquivalentResistance, 1/recip) {
				t.Fatalf("iteration %d: parallel Req %g != %g", iter, res.EquivalentResistance, 1/recip)
			}
			if res.EquivalentResistance > minR*(1+tolerance) {
				t.Fatalf("iteration %d: parallel Req %g above smallest resistor %g", iter, res.EquivalentResistance, minR)
			}
			if !approxEqual(currents, res.TotalCurrent) {
				t.Fatalf("iteration %d: parallel currents %g != total %g", iter, currents, res.TotalCurrent)
			}
			for _, rr := range res.Resistors {
				if rr.Voltage != res.TotalVoltage {
					t.Fatalf("iteration %d: parallel voltage not shared", iter)
				}
			}
		}

		back, err := Solve(Input{
			Mode:      CurrentSpecified,
			Topology:  topology,
			Resistors: resistors,
			Current:   res.TotalCurrent,
		})
		if err != nil {
			t.Fatalf("iteration %d: round trip failed: %v", iter, err)
		}
		if !approxEqual(back.TotalVoltage, res.TotalVoltage) {
			t.Fatalf("iteration %d: round trip voltage %g != %g", iter, back.TotalVoltage, res.TotalVoltage)
		}

		again, err := Solve(in)
		if err != nil {
			t.Fatalf("iteration %d: second solve failed: %v", iter, err)
		}
		if !reflect.DeepEqual(res, again) {
			t.Fatalf("iteration %d: solve is not idempotent", iter)
		}
	}
}

func TestSolveDoesNotRetainInput(t *testing.T) {
	resistors := []float64{4, 6}
	res, err := Solve(Input{Mode: CurrentSpecified, Topology: Series, Resistors: resistors, Current: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resistors[0] = 1000
	if res.Resistors[0].Resistance != 4 {
		t.Fatalf("result changed after caller mutated input: %g", res.Resistors[0].Resistance)
	}
}

func TestParseTopologyAndMode(t *testing.T) {
	if got, err := ParseTopology(" Parallel "); err != nil || got != Parallel {
		t.Fatalf("expected parallel, got %q, %v", got, err)
	}
	if _, err := ParseTopology("mesh"); err == nil || !strings.Contains(err.Error(), "mesh") {
		t.Fatalf("expected error naming the topology, got %v", err)
	}
	if got, err := ParseInputMode("CURRENT"); err != nil || got != CurrentSpecified {
		t.Fatalf("expected current, got %q, %v", got, err)
	}
	if _, err := ParseInputMode(""); err == nil {
		t.Fatal("expected error for empty input mode")
	}
}
