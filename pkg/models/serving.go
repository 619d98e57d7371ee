package models

import "fmt"

// TabularPayload carries rows of named columns in split orientation: a list
// of column names plus row-major data. Column order is free; rows are
// interpreted positionally against Columns.
type TabularPayload struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// PredictRequest is the body of a prediction call. The payload may be given
// inline (columns/data at the top level) or wrapped in a dataframe_split
// envelope; both carry the same split-orientation payload.
type PredictRequest struct {
	Columns        []string        `json:"columns,omitempty"`
	Data           [][]any         `json:"data,omitempty"`
	DataframeSplit *TabularPayload `json:"dataframe_split,omitempty"`
}

// Payload returns the request's tabular payload regardless of envelope.
func (r *PredictRequest) Payload() (*TabularPayload, error) {
	if r.DataframeSplit != nil {
		if len(r.Columns) > 0 || len(r.Data) > 0 {
			return nil, fmt.Errorf("use either columns/data or dataframe_split, not both")
		}
		return r.DataframeSplit, nil
	}
	if len(r.Columns) == 0 {
		return nil, fmt.Errorf("request must include a columns field")
	}
	return &TabularPayload{Columns: r.Columns, Data: r.Data}, nil
}

// PredictResponse carries one prediction per input row, in input order.
type PredictResponse struct {
	Predictions []float64 `json:"predictions"`
}
