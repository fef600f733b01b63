package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateOneFootMethod(t *testing.T) {
	res, err := Calculate(Input{
		DiameterFt:      100,
		FillHeightFt:    40,
		SpecificGravity: 1.0,
		StressPsi:       23200,
		JointEfficiency: 0.85,
		PreviousIn:      0.625,
		CurrentIn:       0.600,
		IntervalYears:   5,
	})
	require.NoError(t, err)

	// tmin = 2.6*100*39*1 / (23200*0.85)
	assert.InDelta(t, 0.51420, res.TMinIn, 1e-4)
	assert.InDelta(t, 0.005, res.CorrosionRateInYr, 1e-9)
	assert.InDelta(t, 17.16, res.RemainingLifeYears, 0.01)
	assert.InDelta(t, 8.58, res.NextInternalYears, 0.01)
	assert.InDelta(t, 8.58, res.NextExternalYears, 0.01)
	assert.True(t, res.OKThickness)
	assert.Equal(t, "acceptable", res.Status)
}

func TestCalculateDefaults(t *testing.T) {
	res, err := Calculate(Input{DiameterFt: 60, FillHeightFt: 30, CurrentIn: 0.5})
	require.NoError(t, err)

	// Defaults G=1.0, S=23200, E=0.85; no history means negligible rate.
	assert.InDelta(t, 2.6*60*29/(23200*0.85), res.TMinIn, 1e-9)
	assert.True(t, res.RateNegligible)
	assert.Equal(t, 100.0, res.RemainingLifeYears)
	assert.Equal(t, 20.0, res.NextInternalYears)
	assert.Equal(t, 15.0, res.NextExternalYears)
}

func TestCalculateRateFromOriginal(t *testing.T) {
	res, err := Calculate(Input{
		DiameterFt:   80,
		FillHeightFt: 32,
		OriginalIn:   0.500,
		CurrentIn:    0.400,
		AgeYears:     25,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.004, res.CorrosionRateInYr, 1e-9)
}

func TestCalculateBelowMinimum(t *testing.T) {
	res, err := Calculate(Input{
		DiameterFt:    120,
		FillHeightFt:  48,
		PreviousIn:    0.30,
		CurrentIn:     0.25,
		IntervalYears: 5,
	})
	require.NoError(t, err)
	assert.False(t, res.OKThickness)
	assert.Equal(t, "action_required", res.Status)
	assert.Equal(t, 0.0, res.RemainingLifeYears)
}

func TestCalculateInvalidInput(t *testing.T) {
	_, err := Calculate(Input{DiameterFt: 0, FillHeightFt: 40, CurrentIn: 0.5})
	assert.Error(t, err)
	_, err = Calculate(Input{DiameterFt: 100, FillHeightFt: 40, CurrentIn: 0})
	assert.Error(t, err)
}
