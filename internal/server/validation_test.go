package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct_UsesRequestFieldNames(t *testing.T) {
	errs := ValidateStruct(jobQuery{AsOf: "01.02.2025", HorizonDays: 400})
	require.Len(t, errs, 2)

	byField := map[string]ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	assert.Equal(t, "datetime", byField["as_of"].Tag)
	assert.Equal(t, "as_of must be a date in 2006-01-02 format", byField["as_of"].Message)
	assert.Equal(t, "horizon_days must be less than or equal to 365", byField["horizon_days"].Message)
}

func TestValidateStruct_Valid(t *testing.T) {
	assert.Nil(t, ValidateStruct(jobQuery{AsOf: "2025-02-01", HorizonDays: 7}))
	assert.Nil(t, ValidateStruct(jobQuery{}))
}

func TestValidateStruct_NotAStruct(t *testing.T) {
	errs := ValidateStruct(42)
	require.Len(t, errs, 1)
	assert.NotEmpty(t, errs[0].Message)
}
