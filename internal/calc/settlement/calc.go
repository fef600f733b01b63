package settlement

import (
	"fmt"
	"math"
)

// Edge settlement survey analysis per API 653 Annex B. The measured rim
// elevations are fitted with U(θ) = a + b·cosθ + c·sinθ; the cosine curve is
// the rigid tilt plane, residuals are out-of-plane settlement.

type Point struct {
	PointNumber int     `json:"point_number"`
	AngleDeg    float64 `json:"angle_deg"`
	ElevationFt float64 `json:"elevation_ft"`
}

type Input struct {
	DiameterFt float64 `json:"diameter_ft"`
	HeightFt   float64 `json:"height_ft"`
	YieldPsi   float64 `json:"yield_psi"`
	ModulusPsi float64 `json:"modulus_psi"`
	Points     []Point `json:"points"`
}

type PointResult struct {
	PointNumber  int     `json:"point_number"`
	AngleDeg     float64 `json:"angle_deg"`
	MeasuredFt   float64 `json:"measured_ft"`
	PredictedFt  float64 `json:"predicted_ft"`
	OutOfPlaneFt float64 `json:"out_of_plane_ft"`
}

type Result struct {
	CoeffA          float64       `json:"coeff_a"`
	CoeffB          float64       `json:"coeff_b"`
	CoeffC          float64       `json:"coeff_c"`
	AmplitudeFt     float64       `json:"amplitude_ft"`
	PhaseDeg        float64       `json:"phase_deg"`
	RSquared        float64       `json:"r_squared"`
	MaxOutOfPlaneFt float64       `json:"max_out_of_plane_ft"`
	ArcLengthFt     float64       `json:"arc_length_ft"`
	AllowableFt     float64       `json:"allowable_ft"`
	FitAcceptable   bool          `json:"fit_acceptable"`
	SettlementOK    bool          `json:"settlement_ok"`
	Points          []PointResult `json:"points"`
	Notes           string        `json:"notes"`
}

const minPoints = 8

func Calculate(in Input) (Result, error) {
	n := len(in.Points)
	if n < minPoints {
		return Result{}, fmt.Errorf("at least %d survey points required, got %d", minPoints, n)
	}
	if in.DiameterFt <= 0 || in.HeightFt <= 0 {
		return Result{}, fmt.Errorf("invalid tank dimensions")
	}
	if in.YieldPsi <= 0 {
		in.YieldPsi = 30000 // unknown material default
	}
	if in.ModulusPsi <= 0 {
		in.ModulusPsi = 29e6
	}

	angles := make([]float64, n)
	allZero := true
	for i, p := range in.Points {
		if math.IsNaN(p.ElevationFt) || math.IsInf(p.ElevationFt, 0) {
			return Result{}, fmt.Errorf("elevation at point %d is not finite", p.PointNumber)
		}
		if p.AngleDeg != 0 {
			allZero = false
		}
		angles[i] = p.AngleDeg
	}
	// No angles supplied: assume equal spacing in point order.
	if allZero {
		for i := range angles {
			angles[i] = float64(i) * 360.0 / float64(n)
		}
	}
	seen := make(map[float64]bool, n)
	for i, a := range angles {
		if seen[a] {
			return Result{}, fmt.Errorf("duplicate survey angle %.2f at point %d", a, in.Points[i].PointNumber)
		}
		seen[a] = true
	}

	a, b, c, err := fitCosine(angles, in.Points)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		CoeffA:      a,
		CoeffB:      b,
		CoeffC:      c,
		AmplitudeFt: math.Hypot(b, c),
		PhaseDeg:    math.Atan2(c, b) * 180.0 / math.Pi,
		ArcLengthFt: math.Pi * in.DiameterFt / float64(n),
		Points:      make([]PointResult, 0, n),
	}

	var mean, ssRes, ssTot float64
	for _, p := range in.Points {
		mean += p.ElevationFt
	}
	mean /= float64(n)

	for i, p := range in.Points {
		theta := angles[i] * math.Pi / 180.0
		pred := a + b*math.Cos(theta) + c*math.Sin(theta)
		oop := p.ElevationFt - pred
		ssRes += oop * oop
		ssTot += (p.ElevationFt - mean) * (p.ElevationFt - mean)
		if math.Abs(oop) > res.MaxOutOfPlaneFt {
			res.MaxOutOfPlaneFt = math.Abs(oop)
		}
		res.Points = append(res.Points, PointResult{
			PointNumber:  p.PointNumber,
			AngleDeg:     angles[i],
			MeasuredFt:   p.ElevationFt,
			PredictedFt:  pred,
			OutOfPlaneFt: oop,
		})
	}

	if ssTot < 1e-12 {
		// Dead level rim: the fit is exact by definition.
		res.RSquared = 1
	} else {
		res.RSquared = 1 - ssRes/ssTot
		if res.RSquared < 0 {
			res.RSquared = 0
		}
	}

	// B.3.2.1: S = 11·L²·Y / (2·E·H), consistent units give S in ft.
	res.AllowableFt = 11.0 * res.ArcLengthFt * res.ArcLengthFt * in.YieldPsi /
		(2.0 * in.ModulusPsi * in.HeightFt)
	res.FitAcceptable = res.RSquared >= 0.90
	res.SettlementOK = res.MaxOutOfPlaneFt <= res.AllowableFt

	switch {
	case !res.FitAcceptable:
		res.Notes = "Cosine fit R2 below 0.90; out-of-plane values require engineering review."
	case !res.SettlementOK:
		res.Notes = "Out-of-plane settlement exceeds the Annex B allowable."
	default:
		res.Notes = "Out-of-plane settlement within the Annex B allowable."
	}
	return res, nil
}

// fitCosine solves the 3x3 normal equations of the least-squares problem.
func fitCosine(anglesDeg []float64, points []Point) (a, b, c float64, err error) {
	var n, sc, ss, scc, sss, scs, sy, syc, sys float64
	n = float64(len(points))
	for i, p := range points {
		theta := anglesDeg[i] * math.Pi / 180.0
		cos, sin := math.Cos(theta), math.Sin(theta)
		sc += cos
		ss += sin
		scc += cos * cos
		sss += sin * sin
		scs += cos * sin
		sy += p.ElevationFt
		syc += p.ElevationFt * cos
		sys += p.ElevationFt * sin
	}

	det := det3(n, sc, ss, sc, scc, scs, ss, scs, sss)
	if math.Abs(det) < 1e-9 {
		return 0, 0, 0, fmt.Errorf("degenerate point distribution")
	}
	a = det3(sy, sc, ss, syc, scc, scs, sys, scs, sss) / det
	b = det3(n, sy, ss, sc, syc, scs, ss, sys, sss) / det
	c = det3(n, sc, sy, sc, scc, syc, ss, scs, sys) / det
	return a, b, c, nil
}

func det3(a11, a12, a13, a21, a22, a23, a31, a32, a33 float64) float64 {
	return a11*(a22*a33-a23*a32) - a12*(a21*a33-a23*a31) + a13*(a21*a32-a22*a31)
}
