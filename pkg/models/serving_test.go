package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
)

func TestPredictRequestInlinePayload(t *testing.T) {
	var req models.PredictRequest
	body := `{"columns":["area","bedrooms","bathrooms","stories","parking"],"data":[[5000,4,2,3,2]]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	payload, err := req.Payload()
	require.NoError(t, err)
	assert.Len(t, payload.Columns, 5)
	assert.Len(t, payload.Data, 1)
}

func TestPredictRequestDataframeSplitPayload(t *testing.T) {
	var req models.PredictRequest
	body := `{"dataframe_split":{"columns":["area","bedrooms","bathrooms","stories","parking"],"data":[[5000,4,2,3,2]]}}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	payload, err := req.Payload()
	require.NoError(t, err)
	assert.Equal(t, "area", payload.Columns[0])
}

func TestPredictRequestRejectsBothEnvelopes(t *testing.T) {
	var req models.PredictRequest
	body := `{"columns":["area"],"data":[[1]],"dataframe_split":{"columns":["area"],"data":[[1]]}}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	_, err := req.Payload()
	assert.Error(t, err)
}

func TestPredictRequestRejectsEmptyBody(t *testing.T) {
	var req models.PredictRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))

	_, err := req.Payload()
	assert.Error(t, err)
}
