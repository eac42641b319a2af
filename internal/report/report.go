// Package report formats a solved circuit for people: the four text views of
// the calculator and a per-resistor bar chart.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"circuit-calculator/internal/circuit"
)

// View selects one of the text reports.
type View string

const (
	ViewCurrent View = "current"
	ViewVoltage View = "voltage"
	ViewPower   View = "power"
	ViewAll     View = "all"
)

// Views lists every text report in display order.
var Views = []View{ViewCurrent, ViewVoltage, ViewPower, ViewAll}

func ParseView(s string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Views {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown report view %q", s)
}

// Render writes view v of res to w.
func Render(w io.Writer, v View, res circuit.Result) error {
	bw := bufio.NewWriter(w)

	switch v {
	case ViewCurrent:
		renderCurrent(bw, res)
	case ViewVoltage:
		renderVoltage(bw, res)
	case ViewPower:
		renderPower(bw, res)
	case ViewAll:
		if err := renderAll(bw, res); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown report view %q", v)
	}

	return bw.Flush()
}

func modeLine(res circuit.Result) string {
	if res.InputMode == circuit.CurrentSpecified {
		return "Mode: current -> voltage derived by Ohm's law (V = I x R)"
	}
	return "Mode: voltage -> current derived by Ohm's law (I = V / R)"
}

func voltageNote(res circuit.Result) string {
	if res.InputMode == circuit.CurrentSpecified {
		return "derived by Ohm's law: V = I x Req"
	}
	return "sum of the source voltages"
}

func currentNote(res circuit.Result) string {
	if res.InputMode == circuit.CurrentSpecified {
		return "direct input"
	}
	return "Ohm's law: I = Vtotal / Req"
}

func renderCurrent(w io.Writer, res circuit.Result) {
	fmt.Fprintln(w, modeLine(res))
	fmt.Fprintln(w, "CURRENT RESULTS")
	fmt.Fprintf(w, "Total current: %.2fA (%s)\n", res.TotalCurrent, currentNote(res))

	if res.Topology == circuit.Parallel {
		fmt.Fprintln(w, "Parallel: In = Vtotal / Rn")
		for _, rr := range res.Resistors {
			fmt.Fprintf(w, "R%d current: %.2fA\n", rr.Index, rr.Current)
		}
		return
	}
	fmt.Fprintln(w, "In series the same current flows through every resistor.")
}

func renderVoltage(w io.Writer, res circuit.Result) {
	fmt.Fprintln(w, modeLine(res))
	fmt.Fprintln(w, "VOLTAGE RESULTS")
	fmt.Fprintf(w, "Total voltage: %.2fV (%s)\n", res.TotalVoltage, voltageNote(res))

	if res.Topology == circuit.Series {
		fmt.Fprintln(w, "Series: Vn = Itotal x Rn")
		fmt.Fprintln(w, "Voltage divider: Vn = Vtotal x (Rn / Req)")
		for _, rr := range res.Resistors {
			fmt.Fprintf(w, "R%d voltage: %.2fV\n", rr.Index, rr.Voltage)
		}
		return
	}
	fmt.Fprintln(w, "In parallel every resistor sees the same voltage.")
}

func renderPower(w io.Writer, res circuit.Result) {
	fmt.Fprintln(w, modeLine(res))
	fmt.Fprintln(w, "POWER RESULTS")
	fmt.Fprintf(w, "Total power: %.2fW (Ptotal = Vtotal x Itotal)\n", res.TotalPower)
	fmt.Fprintln(w, "P = V x I, P = R x I^2, P = V^2 / R")
	for _, rr := range res.Resistors {
		fmt.Fprintf(w, "R%d power: %.2fW\n", rr.Index, rr.Power)
	}
}

func renderAll(w io.Writer, res circuit.Result) error {
	fmt.Fprintln(w, modeLine(res))
	fmt.Fprintln(w, "FULL RESULTS")
	fmt.Fprintf(w, "Total voltage: %.2fV (%s)\n", res.TotalVoltage, voltageNote(res))
	if res.Topology == circuit.Series {
		fmt.Fprintf(w, "Equivalent resistance: %.2fΩ (Req = R1 + R2 + ... + Rn)\n", res.EquivalentResistance)
	} else {
		fmt.Fprintf(w, "Equivalent resistance: %.2fΩ (1/Req = 1/R1 + 1/R2 + ... + 1/Rn)\n", res.EquivalentResistance)
	}
	fmt.Fprintf(w, "Total current: %.2fA (%s)\n", res.TotalCurrent, currentNote(res))
	fmt.Fprintf(w, "Total power: %.2fW (P = V x I)\n", res.TotalPower)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "PER RESISTOR")
	if res.Topology == circuit.Series {
		fmt.Fprintln(w, "Series: same current everywhere, Vn = I x Rn, Pn = Vn x I")
	} else {
		fmt.Fprintln(w, "Parallel: same voltage everywhere, In = V / Rn, Pn = V x In")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tresistance\tvoltage\tcurrent\tpower\t")
	for _, rr := range res.Resistors {
		fmt.Fprintf(tw, "R%d\t%.2fΩ\t%.2fV\t%.2fA\t%.2fW\t\n", rr.Index, rr.Resistance, rr.Voltage, rr.Current, rr.Power)
	}
	return tw.Flush()
}
