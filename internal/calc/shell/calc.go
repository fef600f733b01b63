package shell

import (
	"fmt"
	"math"
)

type Input struct {
	DiameterFt      float64 `json:"diameter_ft"`
	FillHeightFt    float64 `json:"fill_height_ft"` // from bottom of the course under consideration
	SpecificGravity float64 `json:"specific_gravity"`
	StressPsi       float64 `json:"stress_psi"`
	JointEfficiency float64 `json:"joint_efficiency"`
	OriginalIn      float64 `json:"original_in"`
	PreviousIn      float64 `json:"previous_in"`
	CurrentIn       float64 `json:"current_in"`
	IntervalYears   float64 `json:"interval_years"` // since previous measurement
	AgeYears        float64 `json:"age_years"`      // since construction, rate fallback
}

type Result struct {
	TMinIn             float64 `json:"tmin_in"`
	CorrosionRateInYr  float64 `json:"corrosion_rate_in_yr"`
	RemainingLifeYears float64 `json:"remaining_life_years"`
	RateNegligible     bool    `json:"rate_negligible"`
	NextInternalYears  float64 `json:"next_internal_years"`
	NextExternalYears  float64 `json:"next_external_years"`
	OKThickness        bool    `json:"ok_thickness"`
	Status             string  `json:"status"`
	Notes              string  `json:"notes"`
}

// Remaining life is capped so a negligible rate does not report infinity.
const maxRemainingLife = 100.0

func Calculate(in Input) (Result, error) {
	if in.DiameterFt <= 0 || in.FillHeightFt <= 0 || in.CurrentIn <= 0 {
		return Result{}, fmt.Errorf("invalid input")
	}
	if in.SpecificGravity <= 0 {
		in.SpecificGravity = 1.0
	}
	if in.StressPsi <= 0 {
		in.StressPsi = 23200
	}
	if in.JointEfficiency <= 0 || in.JointEfficiency > 1 {
		in.JointEfficiency = 0.85
	}

	// One-foot method, API 653 4.3.3.1: tmin = 2.6 D (H-1) G / (S E)
	head := in.FillHeightFt - 1.0
	if head < 0 {
		head = 0
	}
	tmin := 2.6 * in.DiameterFt * head * in.SpecificGravity / (in.StressPsi * in.JointEfficiency)

	rate := 0.0
	switch {
	case in.PreviousIn > 0 && in.IntervalYears > 0:
		rate = (in.PreviousIn - in.CurrentIn) / in.IntervalYears
	case in.OriginalIn > 0 && in.AgeYears > 0:
		rate = (in.OriginalIn - in.CurrentIn) / in.AgeYears
	}

	res := Result{
		TMinIn:            tmin,
		CorrosionRateInYr: rate,
		OKThickness:       in.CurrentIn >= tmin,
	}

	if rate <= 1e-6 {
		res.RateNegligible = true
		res.CorrosionRateInYr = math.Max(rate, 0)
		res.RemainingLifeYears = maxRemainingLife
	} else {
		res.RemainingLifeYears = (in.CurrentIn - tmin) / rate
		if res.RemainingLifeYears > maxRemainingLife {
			res.RemainingLifeYears = maxRemainingLife
		}
		if res.RemainingLifeYears < 0 {
			res.RemainingLifeYears = 0
		}
	}

	// 6.4.2 / 6.3.3: internal capped at 20 yr, external UT at 15 yr.
	res.NextInternalYears = math.Min(res.RemainingLifeYears/2, 20)
	res.NextExternalYears = math.Min(res.RemainingLifeYears/2, 15)

	switch {
	case !res.OKThickness:
		res.Status = "action_required"
		res.Notes = "Current thickness below one-foot-method minimum."
	case res.RemainingLifeYears < 10:
		res.Status = "monitor"
		res.Notes = "Remaining life under 10 years; shorten the inspection interval."
	default:
		res.Status = "acceptable"
		res.Notes = "Course thickness acceptable."
	}
	return res, nil
}
