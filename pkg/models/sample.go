package models

// Sample is one housing observation: the five features the model consumes
// plus the observed price.
type Sample struct {
	Area      float64 `json:"area"`
	Bedrooms  float64 `json:"bedrooms"`
	Bathrooms float64 `json:"bathrooms"`
	Stories   float64 `json:"stories"`
	Parking   float64 `json:"parking"`
	Price     float64 `json:"price"`
}

// Features returns the feature values ordered as FeatureColumns
func (s Sample) Features() []float64 {
	return []float64{s.Area, s.Bedrooms, s.Bathrooms, s.Stories, s.Parking}
}
