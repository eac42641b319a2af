// Command circuitcalc solves resistor circuits from flags or HCL files and
// prints one of the text reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"

	"circuit-calculator/internal/circuit"
	"circuit-calculator/internal/circuitfile"
	"circuit-calculator/internal/form"
	"circuit-calculator/internal/observability"
	"circuit-calculator/internal/report"
)

// ExitError carries the process exit code for a failed run.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	observability.SyncLogger()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	file      string
	vars      map[string]cty.Value
	mode      string
	topology  string
	resistors string
	sources   string
	current   string
	view      report.View
	chart     string
	quantity  report.Quantity
	logLevel  string
}

// namedFields is one circuit to solve; name is empty for flag input.
type namedFields struct {
	name   string
	fields form.Fields
}

func parseArgs(args []string, errOut io.Writer) (*options, error) {
	opts := &options{vars: make(map[string]cty.Value)}

	fs := flag.NewFlagSet("circuitcalc", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprint(errOut, `circuitcalc - series/parallel resistor circuit calculator

Usage:
  circuitcalc [options] -r 100,220 -v 9
  circuitcalc [options] -mode current -topology parallel -r 2,3 -i 5
  circuitcalc [options] -file circuits.hcl [-var name=value ...]

Options:
`)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.file, "file", "", "HCL file or directory of circuit definitions")
	fs.Func("var", "set an HCL variable as name=value (repeatable)", func(s string) error {
		name, val, err := circuitfile.ParseVar(s)
		if err != nil {
			return err
		}
		opts.vars[name] = val
		return nil
	})
	fs.StringVar(&opts.mode, "mode", "voltage", "input mode: voltage or current")
	fs.StringVar(&opts.topology, "topology", "series", "resistor topology: series or parallel")
	fs.StringVar(&opts.resistors, "r", "", "resistor values in ohms, comma separated")
	fs.StringVar(&opts.sources, "v", "", "source voltages in volts, comma separated (voltage mode)")
	fs.StringVar(&opts.current, "i", "", "total current in amperes (current mode)")
	view := fs.String("view", string(report.ViewAll), "report view: current, voltage, power or all")
	fs.StringVar(&opts.chart, "chart", "", "also write a bar chart to this .svg or .png path")
	quantity := fs.String("quantity", string(report.QuantityPower), "chart quantity: voltage, current or power")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil
		}
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() > 0 {
		return nil, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(fs.Args(), " "))}
	}

	var err error
	if opts.view, err = report.ParseView(*view); err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	if opts.quantity, err = report.ParseQuantity(*quantity); err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	if opts.file == "" && strings.TrimSpace(opts.resistors) == "" {
		fs.Usage()
		return nil, &ExitError{Code: 2, Message: "either -file or -r is required"}
	}
	if opts.file == "" {
		if err := checkModeFlags(opts); err != nil {
			return nil, err
		}
	}

	return opts, nil
}

// checkModeFlags rejects -i in voltage mode and -v in current mode, which
// would otherwise be ignored silently. An unknown -mode is left to the
// parse step.
func checkModeFlags(opts *options) error {
	mode, err := circuit.ParseInputMode(opts.mode)
	if err != nil {
		return nil
	}

	switch {
	case mode == circuit.VoltageSpecified && strings.TrimSpace(opts.current) != "":
		return &ExitError{Code: 2, Message: "-i is only used with -mode current"}
	case mode == circuit.CurrentSpecified && strings.TrimSpace(opts.sources) != "":
		return &ExitError{Code: 2, Message: "-v is only used with -mode voltage"}
	}
	return nil
}

func run(ctx context.Context, out, errOut io.Writer, args []string) error {
	opts, err := parseArgs(args, errOut)
	if err != nil || opts == nil {
		return err
	}

	if err := observability.InitLogger(opts.logLevel); err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	logger := observability.Logger

	circuits, err := collect(ctx, opts)
	if err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}

	failed := 0
	for i, c := range circuits {
		if c.name != "" {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "== %s ==\n", c.name)
		}

		if err := solveAndPrint(out, opts, c, len(circuits) > 1); err != nil {
			failed++
			logger.Debug("circuit failed", zap.String("name", c.name), zap.Error(err))
			if c.name != "" {
				fmt.Fprintf(errOut, "%s: error: %v\n", c.name, err)
			} else {
				fmt.Fprintf(errOut, "error: %v\n", err)
			}
		}
	}

	if failed > 0 {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d circuits failed", failed, len(circuits))}
	}
	return nil
}

func collect(ctx context.Context, opts *options) ([]namedFields, error) {
	if opts.file == "" {
		return []namedFields{{fields: form.Fields{
			Mode:      form.Value(opts.mode),
			Topology:  form.Value(opts.topology),
			Resistors: form.SplitList(opts.resistors),
			Sources:   form.SplitList(opts.sources),
			Current:   form.Value(opts.current),
		}}}, nil
	}

	defs, err := circuitfile.Load(ctx, opts.file, opts.vars)
	if err != nil {
		return nil, err
	}

	out := make([]namedFields, len(defs))
	for i, d := range defs {
		out[i] = namedFields{name: d.Name, fields: d.Fields()}
	}
	return out, nil
}

func solveAndPrint(out io.Writer, opts *options, c namedFields, many bool) error {
	in, err := form.Parse(c.fields)
	if err != nil {
		return err
	}

	res, err := circuit.Solve(in)
	if err != nil {
		return err
	}

	if err := report.Render(out, opts.view, res); err != nil {
		return err
	}

	if opts.chart == "" {
		return nil
	}

	path := opts.chart
	if many {
		path = chartPathFor(path, c.name)
	}
	return writeChart(path, opts.quantity, res)
}

func writeChart(path string, q report.Quantity, res circuit.Result) error {
	format := report.FormatSVG
	if strings.EqualFold(filepath.Ext(path), ".png") {
		format = report.FormatPNG
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart: %w", err)
	}
	defer f.Close()

	if err := report.Chart(f, report.ChartSpec{Quantity: q, Format: format}, res); err != nil {
		return err
	}
	return f.Close()
}

// chartPathFor turns out.svg into out-<name>.svg. The name is a circuit
// label from a file, so separators and ".." are replaced to keep the chart
// next to path.
func chartPathFor(path, name string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + safeFileName(name) + ext
}

func safeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator || r == 0 {
			return '_'
		}
		return r
	}, name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		return "_"
	}
	return name
}
