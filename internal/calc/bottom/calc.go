package bottom

import "fmt"

type Input struct {
	MinRemainingIn  float64 `json:"min_remaining_in"`  // thinnest bottom plate reading
	TopsideRateInYr float64 `json:"topside_rate_in_yr"`
	UndersideRateIn float64 `json:"underside_rate_in_yr"`
	IntervalYears   float64 `json:"interval_years"` // to next internal inspection
	MinAllowedIn    float64 `json:"min_allowed_in"` // Table 4.4 limit, default 0.100
}

type Result struct {
	MRTIn            float64 `json:"mrt_in"` // projected at next inspection
	MaxIntervalYears float64 `json:"max_interval_years"`
	OK               bool    `json:"ok"`
	Notes            string  `json:"notes"`
}

// 4.4.5.1: MRT = (minimum remaining thickness) - Or*(StPr + UPr).
func Calculate(in Input) (Result, error) {
	if in.MinRemainingIn <= 0 || in.IntervalYears <= 0 {
		return Result{}, fmt.Errorf("invalid input")
	}
	if in.TopsideRateInYr < 0 || in.UndersideRateIn < 0 {
		return Result{}, fmt.Errorf("negative corrosion rate")
	}
	if in.MinAllowedIn <= 0 {
		in.MinAllowedIn = 0.100
	}

	rate := in.TopsideRateInYr + in.UndersideRateIn
	mrt := in.MinRemainingIn - in.IntervalYears*rate

	res := Result{MRTIn: mrt, OK: mrt >= in.MinAllowedIn}

	if rate > 0 {
		res.MaxIntervalYears = (in.MinRemainingIn - in.MinAllowedIn) / rate
		if res.MaxIntervalYears < 0 {
			res.MaxIntervalYears = 0
		}
	} else {
		res.MaxIntervalYears = 20
	}
	if res.MaxIntervalYears > 20 {
		res.MaxIntervalYears = 20
	}

	if res.OK {
		res.Notes = "Projected bottom thickness meets the minimum at the chosen interval."
	} else {
		res.Notes = "Projected bottom thickness falls below the minimum; repair or shorten the interval."
	}
	return res, nil
}
