package report

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"circuit-calculator/internal/circuit"
)

// Quantity is the per-resistor value plotted by Chart.
type Quantity string

const (
	QuantityVoltage Quantity = "voltage"
	QuantityCurrent Quantity = "current"
	QuantityPower   Quantity = "power"
)

func ParseQuantity(s string) (Quantity, error) {
	switch q := Quantity(strings.ToLower(strings.TrimSpace(s))); q {
	case QuantityVoltage, QuantityCurrent, QuantityPower:
		return q, nil
	case "":
		return QuantityPower, nil
	default:
		return "", fmt.Errorf("unknown chart quantity %q", s)
	}
}

// ChartFormat is an image encoding supported by Chart.
type ChartFormat string

const (
	FormatSVG ChartFormat = "svg"
	FormatPNG ChartFormat = "png"
)

func ParseChartFormat(s string) (ChartFormat, error) {
	switch f := ChartFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatPNG:
		return f, nil
	case "":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unknown chart format %q", s)
	}
}

// ContentType is the MIME type of the encoded chart.
func (f ChartFormat) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// ChartSpec describes the chart to draw.
type ChartSpec struct {
	Quantity Quantity
	Format   ChartFormat
	Width    vg.Length
	Height   vg.Length
}

var barColor = color.RGBA{R: 0x2a, G: 0x7a, B: 0xb9, A: 0xff}

// Chart draws one bar per resistor for the chosen quantity.
func Chart(w io.Writer, spec ChartSpec, res circuit.Result) error {
	if spec.Width == 0 {
		spec.Width = 6 * vg.Inch
	}
	if spec.Height == 0 {
		spec.Height = 4 * vg.Inch
	}
	if spec.Format == "" {
		spec.Format = FormatSVG
	}

	values := make(plotter.Values, len(res.Resistors))
	names := make([]string, len(res.Resistors))
	for i, rr := range res.Resistors {
		names[i] = fmt.Sprintf("R%d", rr.Index)
		switch spec.Quantity {
		case QuantityVoltage:
			values[i] = rr.Voltage
		case QuantityCurrent:
			values[i] = rr.Current
		case QuantityPower:
			values[i] = rr.Power
		default:
			return fmt.Errorf("unknown chart quantity %q", spec.Quantity)
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s per resistor (%s, %s mode)", spec.Quantity, res.Topology, res.InputMode)
	p.Y.Label.Text = unitLabel(spec.Quantity)
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("building bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)

	wt, err := p.WriterTo(spec.Width, spec.Height, string(spec.Format))
	if err != nil {
		return fmt.Errorf("encoding chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	return nil
}

func unitLabel(q Quantity) string {
	switch q {
	case QuantityVoltage:
		return "voltage (V)"
	case QuantityCurrent:
		return "current (A)"
	default:
		return "power (W)"
	}
}
