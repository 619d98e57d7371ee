package models

import (
	"fmt"
	"strings"
)

// Feature column names in training order. Every dataset row, model artifact
// and prediction request is expressed against this fixed tabular schema.
var FeatureColumns = []string{"area", "bedrooms", "bathrooms", "stories", "parking"}

// TargetColumn is the column the model predicts.
const TargetColumn = "price"

// Column types used in model signatures
const (
	ColumnTypeDouble = "double" // continuous numeric values
	ColumnTypeLong   = "long"   // integral numeric values
)

// SignatureField describes one named, typed column
type SignatureField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Signature records the input schema a model was trained against and the
// type of its output. It is stored with every model version and enforced
// by the prediction endpoint.
type Signature struct {
	Inputs []SignatureField `json:"inputs"`
	Output SignatureField   `json:"output"`
}

// HousePriceSignature returns the signature of the house price model:
// area is continuous, the remaining features are counts, the output is
// a continuous price.
func HousePriceSignature() Signature {
	return Signature{
		Inputs: []SignatureField{
			{Name: "area", Type: ColumnTypeDouble},
			{Name: "bedrooms", Type: ColumnTypeLong},
			{Name: "bathrooms", Type: ColumnTypeLong},
			{Name: "stories", Type: ColumnTypeLong},
			{Name: "parking", Type: ColumnTypeLong},
		},
		Output: SignatureField{Name: TargetColumn, Type: ColumnTypeDouble},
	}
}

// InputNames returns the signature's input column names in order.
func (s Signature) InputNames() []string {
	names := make([]string, len(s.Inputs))
	for i, f := range s.Inputs {
		names[i] = f.Name
	}
	return names
}

// Field looks up an input field by column name.
func (s Signature) Field(name string) (SignatureField, bool) {
	for _, f := range s.Inputs {
		if f.Name == name {
			return f, true
		}
	}
	return SignatureField{}, false
}

// ValidateColumns checks that the given column names cover the signature
// inputs exactly, in any order. Missing and unexpected columns are reported
// by name so callers can fix their payload.
func (s Signature) ValidateColumns(columns []string) error {
	seen := make(map[string]bool, len(s.Inputs))
	var unexpected []string
	for _, c := range columns {
		if _, ok := s.Field(c); !ok {
			unexpected = append(unexpected, c)
			continue
		}
		if seen[c] {
			return fmt.Errorf("duplicate column: %s", c)
		}
		seen[c] = true
	}

	var missing []string
	for _, f := range s.Inputs {
		if !seen[f.Name] {
			missing = append(missing, f.Name)
		}
	}

	switch {
	case len(missing) > 0 && len(unexpected) > 0:
		return fmt.Errorf("missing columns: %s; unexpected columns: %s",
			strings.Join(missing, ", "), strings.Join(unexpected, ", "))
	case len(missing) > 0:
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	case len(unexpected) > 0:
		return fmt.Errorf("unexpected columns: %s", strings.Join(unexpected, ", "))
	}
	return nil
}

// Validate checks that the signature itself is well formed.
func (s Signature) Validate() error {
	if len(s.Inputs) == 0 {
		return fmt.Errorf("signature has no inputs")
	}
	names := make(map[string]bool, len(s.Inputs))
	for _, f := range s.Inputs {
		if f.Name == "" {
			return fmt.Errorf("signature input with empty name")
		}
		if f.Type != ColumnTypeDouble && f.Type != ColumnTypeLong {
			return fmt.Errorf("signature input %s has unknown type: %s", f.Name, f.Type)
		}
		if names[f.Name] {
			return fmt.Errorf("signature input %s appears twice", f.Name)
		}
		names[f.Name] = true
	}
	if s.Output.Name == "" {
		return fmt.Errorf("signature has no output")
	}
	return nil
}
