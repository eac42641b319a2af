// Package circuitfile loads named circuit definitions from HCL files.
//
//	circuit "divider" {
//	  topology  = "series"
//	  mode      = "voltage"
//	  resistors = [1000, 2200]
//	  sources   = [var.supply]
//	}
//
// Attribute expressions may reference var.<name> and call the numeric
// functions abs, ceil, floor, max, min and pow.
package circuitfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"go.uber.org/zap"

	"circuit-calculator/internal/form"
	"circuit-calculator/internal/observability"
)

const fileExtension = ".hcl"

// Definition is one circuit block.
type Definition struct {
	Name      string
	File      string
	Topology  string
	Mode      string
	Resistors []float64
	Sources   []float64
	Current   *float64
}

// Fields converts the definition into form fields so that files go through
// the same parse step as every other input. An absent current is blank.
func (d Definition) Fields() form.Fields {
	f := form.Fields{
		Mode:      form.Value(d.Mode),
		Topology:  form.Value(d.Topology),
		Resistors: numbers(d.Resistors),
		Sources:   numbers(d.Sources),
	}
	if d.Current != nil {
		f.Current = number(*d.Current)
	}
	return f
}

type hclFile struct {
	Circuits []*hclCircuit `hcl:"circuit,block"`
}

type hclCircuit struct {
	Name      string    `hcl:"name,label"`
	Topology  string    `hcl:"topology,optional"`
	Mode      string    `hcl:"mode,optional"`
	Resistors []float64 `hcl:"resistors"`
	Sources   []float64 `hcl:"sources,optional"`
	Current   *float64  `hcl:"current,optional"`
}

// Load reads a single .hcl file, or every .hcl file below a directory in
// lexical order. Circuit names must be unique across everything loaded.
func Load(ctx context.Context, path string, vars map[string]cty.Value) ([]Definition, error) {
	logger := observability.LoggerWithTrace(ctx)

	files, err := findFiles(path)
	if err != nil {
		return nil, fmt.Errorf("finding circuit files in %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", fileExtension, path)
	}

	evalCtx := newEvalContext(vars)
	parser := hclparse.NewParser()
	seen := make(map[string]string)

	var defs []Definition
	for _, file := range files {
		parsed, err := loadFile(parser, evalCtx, file)
		if err != nil {
			return nil, err
		}
		for _, d := range parsed {
			if prev, dup := seen[d.Name]; dup {
				return nil, fmt.Errorf("circuit %q in %s already defined in %s", d.Name, file, prev)
			}
			seen[d.Name] = file
			defs = append(defs, d)
		}
		logger.Debug("loaded circuit file",
			zap.String("path", file),
			zap.Int("circuits", len(parsed)),
		)
	}

	return defs, nil
}

func loadFile(parser *hclparse.Parser, evalCtx *hcl.EvalContext, file string) ([]Definition, error) {
	src, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", file, diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(src.Body, evalCtx, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", file, diags)
	}

	defs := make([]Definition, 0, len(parsed.Circuits))
	for _, c := range parsed.Circuits {
		defs = append(defs, Definition{
			Name:      c.Name,
			File:      file,
			Topology:  c.Topology,
			Mode:      c.Mode,
			Resistors: c.Resistors,
			Sources:   c.Sources,
			Current:   c.Current,
		})
	}
	return defs, nil
}

func newEvalContext(vars map[string]cty.Value) *hcl.EvalContext {
	varVal := cty.EmptyObjectVal
	if len(vars) > 0 {
		varVal = cty.ObjectVal(vars)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": varVal,
		},
		Functions: map[string]function.Function{
			"abs":   stdlib.AbsoluteFunc,
			"ceil":  stdlib.CeilFunc,
			"floor": stdlib.FloorFunc,
			"max":   stdlib.MaxFunc,
			"min":   stdlib.MinFunc,
			"pow":   stdlib.PowFunc,
		},
	}
}

// ParseVar parses a name=value assignment. Numeric values become cty
// numbers, anything else a string. NaN and infinities are rejected.
func ParseVar(s string) (string, cty.Value, error) {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", cty.NilVal, fmt.Errorf("variable %q must have the form name=value", s)
	}
	if !hclIdentifier(name) {
		return "", cty.NilVal, fmt.Errorf("variable name %q is not a valid identifier", name)
	}

	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseFloat(raw, 64); err == nil || errors.Is(err, strconv.ErrRange) {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", cty.NilVal, fmt.Errorf("variable %q must be a finite number, got %q", name, raw)
		}
		return name, cty.NumberFloatVal(n), nil
	}
	return name, cty.StringVal(raw), nil
}

func hclIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i > 0 && (r == '-' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return true
}

func findFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), fileExtension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func numbers(vs []float64) []form.Value {
	if vs == nil {
		return nil
	}
	out := make([]form.Value, len(vs))
	for i, v := range vs {
		out[i] = number(v)
	}
	return out
}

func number(v float64) form.Value {
	return form.Value(strconv.FormatFloat(v, 'g', -1, 64))
}
