package settlement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePoints(n int, f func(thetaRad float64) float64) []Point {
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		theta := float64(i) * 2 * math.Pi / float64(n)
		pts[i] = Point{
			PointNumber: i + 1,
			AngleDeg:    float64(i) * 360.0 / float64(n),
			ElevationFt: f(theta),
		}
	}
	return pts
}

func TestCalculateRecoversExactCosine(t *testing.T) {
	// Pure tilt plane: elevations lie exactly on the cosine curve.
	in := Input{
		DiameterFt: 100,
		HeightFt:   40,
		Points: makePoints(16, func(theta float64) float64 {
			return 100.0 + 0.05*math.Cos(theta) + 0.02*math.Sin(theta)
		}),
	}
	res, err := Calculate(in)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, res.CoeffA, 1e-9)
	assert.InDelta(t, 0.05, res.CoeffB, 1e-9)
	assert.InDelta(t, 0.02, res.CoeffC, 1e-9)
	assert.InDelta(t, math.Hypot(0.05, 0.02), res.AmplitudeFt, 1e-9)
	assert.InDelta(t, 1.0, res.RSquared, 1e-9)
	assert.InDelta(t, 0.0, res.MaxOutOfPlaneFt, 1e-9)
	assert.True(t, res.FitAcceptable)
	assert.True(t, res.SettlementOK)
	assert.Len(t, res.Points, 16)
}

func TestCalculateOutOfPlaneResidual(t *testing.T) {
	// One point dips 0.03 ft below the tilt plane.
	pts := makePoints(8, func(theta float64) float64 {
		return 50.0 + 0.10*math.Cos(theta)
	})
	pts[3].ElevationFt -= 0.03

	in := Input{DiameterFt: 60, HeightFt: 48, Points: pts}
	res, err := Calculate(in)
	require.NoError(t, err)

	// The dip is shared between the residual and a slightly shifted plane,
	// so the max residual is under the full 0.03.
	assert.Greater(t, res.MaxOutOfPlaneFt, 0.015)
	assert.Less(t, res.MaxOutOfPlaneFt, 0.03)
	assert.Greater(t, res.RSquared, 0.90)
}

func TestCalculatePoorFitFlagged(t *testing.T) {
	// Alternating elevations have no planar component at even point counts.
	pts := makePoints(12, func(theta float64) float64 { return 0 })
	for i := range pts {
		if i%2 == 0 {
			pts[i].ElevationFt = 0.2
		} else {
			pts[i].ElevationFt = -0.2
		}
	}
	in := Input{DiameterFt: 80, HeightFt: 40, Points: pts}
	res, err := Calculate(in)
	require.NoError(t, err)

	assert.False(t, res.FitAcceptable)
	assert.Less(t, res.RSquared, 0.90)
	assert.InDelta(t, 0.2, res.MaxOutOfPlaneFt, 1e-9)
}

func TestCalculateLevelRim(t *testing.T) {
	in := Input{
		DiameterFt: 120,
		HeightFt:   48,
		Points:     makePoints(8, func(theta float64) float64 { return 25.0 }),
	}
	res, err := Calculate(in)
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.RSquared)
	assert.InDelta(t, 0.0, res.MaxOutOfPlaneFt, 1e-9)
	assert.True(t, res.SettlementOK)
}

func TestCalculateDerivesAnglesWhenAbsent(t *testing.T) {
	pts := make([]Point, 8)
	for i := range pts {
		pts[i] = Point{PointNumber: i + 1, ElevationFt: 10.0}
	}
	in := Input{DiameterFt: 40, HeightFt: 32, Points: pts}
	res, err := Calculate(in)
	require.NoError(t, err)

	assert.InDelta(t, 45.0, res.Points[1].AngleDeg, 1e-9)
	assert.InDelta(t, 315.0, res.Points[7].AngleDeg, 1e-9)
}

func TestCalculateAllowable(t *testing.T) {
	in := Input{
		DiameterFt: 100,
		HeightFt:   40,
		YieldPsi:   30000,
		ModulusPsi: 29e6,
		Points:     makePoints(10, func(theta float64) float64 { return 5 }),
	}
	res, err := Calculate(in)
	require.NoError(t, err)

	arc := math.Pi * 100 / 10
	want := 11.0 * arc * arc * 30000 / (2.0 * 29e6 * 40)
	assert.InDelta(t, want, res.AllowableFt, 1e-12)
	assert.InDelta(t, arc, res.ArcLengthFt, 1e-12)
}

func TestCalculateRejectsBadInput(t *testing.T) {
	level := func(theta float64) float64 { return 1 }

	_, err := Calculate(Input{DiameterFt: 50, HeightFt: 40, Points: makePoints(7, level)})
	assert.Error(t, err)

	_, err = Calculate(Input{DiameterFt: 0, HeightFt: 40, Points: makePoints(8, level)})
	assert.Error(t, err)

	pts := makePoints(8, level)
	pts[5].AngleDeg = pts[4].AngleDeg
	_, err = Calculate(Input{DiameterFt: 50, HeightFt: 40, Points: pts})
	assert.Error(t, err)

	pts = makePoints(8, level)
	pts[0].ElevationFt = math.NaN()
	_, err = Calculate(Input{DiameterFt: 50, HeightFt: 40, Points: pts})
	assert.Error(t, err)
}
