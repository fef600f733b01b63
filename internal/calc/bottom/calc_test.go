package bottom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateProjection(t *testing.T) {
	res, err := Calculate(Input{
		MinRemainingIn:  0.200,
		TopsideRateInYr: 0.003,
		UndersideRateIn: 0.002,
		IntervalYears:   10,
	})
	require.NoError(t, err)

	// 0.200 - 10*0.005
	assert.InDelta(t, 0.150, res.MRTIn, 1e-9)
	assert.True(t, res.OK)
	// (0.200-0.100)/0.005
	assert.InDelta(t, 20.0, res.MaxIntervalYears, 1e-9)
}

func TestCalculateBelowLimit(t *testing.T) {
	res, err := Calculate(Input{
		MinRemainingIn:  0.130,
		UndersideRateIn: 0.005,
		IntervalYears:   10,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.080, res.MRTIn, 1e-9)
	assert.False(t, res.OK)
	assert.InDelta(t, 6.0, res.MaxIntervalYears, 1e-9)
}

func TestCalculateNoCorrosion(t *testing.T) {
	res, err := Calculate(Input{MinRemainingIn: 0.250, IntervalYears: 10})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 20.0, res.MaxIntervalYears)
}

func TestCalculateInvalid(t *testing.T) {
	_, err := Calculate(Input{MinRemainingIn: 0, IntervalYears: 10})
	assert.Error(t, err)
	_, err = Calculate(Input{MinRemainingIn: 0.2, IntervalYears: 0})
	assert.Error(t, err)
	_, err = Calculate(Input{MinRemainingIn: 0.2, IntervalYears: 5, TopsideRateInYr: -1})
	assert.Error(t, err)
}
