package calculator

import (
	"circuit-calculator/internal/circuit"
	"circuit-calculator/internal/form"
)

// maxBatchSize bounds the number of circuits in one POST /circuit/batch.
const maxBatchSize = 100

// SolveRequest is the JSON body for solve, report and chart. Numeric fields
// accept JSON numbers or text, exactly as typed into the form.
type SolveRequest struct {
	Name string `json:"name,omitempty"`
	form.Fields
}

// SolveResponse is the JSON response for POST /circuit/solve.
type SolveResponse struct {
	Name   string         `json:"name,omitempty"`
	Result circuit.Result `json:"result"`
}

// BatchRequest is the JSON body for POST /circuit/batch.
type BatchRequest struct {
	Circuits []SolveRequest `json:"circuits"`
}

// BatchItem is the outcome of one circuit in a batch: either Result or
// Error/Kind is set.
type BatchItem struct {
	Index  int             `json:"index"`
	Name   string          `json:"name,omitempty"`
	Result *circuit.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Kind   string          `json:"kind,omitempty"`
}

// BatchResponse is the JSON response for POST /circuit/batch.
type BatchResponse struct {
	Items  []BatchItem `json:"items"`
	Solved int         `json:"solved"`
	Failed int         `json:"failed"`
}
