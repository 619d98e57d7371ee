package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
)

func TestHousePriceSignature(t *testing.T) {
	sig := models.HousePriceSignature()

	require.NoError(t, sig.Validate())
	assert.Equal(t, models.FeatureColumns, sig.InputNames())
	assert.Equal(t, models.TargetColumn, sig.Output.Name)

	area, ok := sig.Field("area")
	require.True(t, ok)
	assert.Equal(t, models.ColumnTypeDouble, area.Type)

	bedrooms, ok := sig.Field("bedrooms")
	require.True(t, ok)
	assert.Equal(t, models.ColumnTypeLong, bedrooms.Type)

	_, ok = sig.Field("zipcode")
	assert.False(t, ok)
}

func TestValidateColumnsOrderIndependent(t *testing.T) {
	sig := models.HousePriceSignature()

	assert.NoError(t, sig.ValidateColumns([]string{"area", "bedrooms", "bathrooms", "stories", "parking"}))
	assert.NoError(t, sig.ValidateColumns([]string{"parking", "stories", "bathrooms", "bedrooms", "area"}))
}

func TestValidateColumnsMissing(t *testing.T) {
	sig := models.HousePriceSignature()

	err := sig.ValidateColumns([]string{"area", "bedrooms", "bathrooms", "stories"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "parking")
}

func TestValidateColumnsUnexpected(t *testing.T) {
	sig := models.HousePriceSignature()

	err := sig.ValidateColumns([]string{"area", "bedrooms", "bathrooms", "stories", "parking", "zipcode"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected columns")
	assert.Contains(t, err.Error(), "zipcode")
}

func TestValidateColumnsMissingAndUnexpected(t *testing.T) {
	sig := models.HousePriceSignature()

	err := sig.ValidateColumns([]string{"area", "bedrooms", "bathrooms", "stories", "pool"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parking")
	assert.Contains(t, err.Error(), "pool")
}

func TestValidateColumnsDuplicate(t *testing.T) {
	sig := models.HousePriceSignature()

	err := sig.ValidateColumns([]string{"area", "area", "bathrooms", "stories", "parking"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column: area")
}

func TestSignatureValidateRejectsUnknownType(t *testing.T) {
	sig := models.Signature{
		Inputs: []models.SignatureField{{Name: "area", Type: "decimal"}},
		Output: models.SignatureField{Name: "price", Type: models.ColumnTypeDouble},
	}
	assert.Error(t, sig.Validate())
}
