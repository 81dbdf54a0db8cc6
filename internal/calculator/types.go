package calculator

import "rpn-calculator/internal/rpn"

// EvalRequest is the JSON body for POST /calculator/rpn.
type EvalRequest struct {
	Formula string `json:"formula"`
	Verbose bool   `json:"verbose"` // include the per-token trace in the response
}

// EvalResponse is the JSON response for a successful evaluation.
type EvalResponse struct {
	Formula string      `json:"formula"`
	Result  int32       `json:"result"`
	Tokens  int         `json:"tokens"`
	Trace   []rpn.Trace `json:"trace,omitempty"`
}

// BatchRequest is the JSON body for POST /calculator/batch. Each line is
// evaluated independently.
type BatchRequest struct {
	Lines []string `json:"lines"`
}

// BatchResponse is the JSON response for POST /calculator/batch.
type BatchResponse struct {
	Results   []LineResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// LineResult records the outcome of one batch line. Exactly one of Result
// and Error is set.
type LineResult struct {
	Line     int    `json:"line"` // 1-based
	Result   *int32 `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Position int    `json:"position,omitempty"`
}
