package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"OilPro/internal/repo"
)

func WriteMeasurementsCSV(w io.Writer, ms []repo.Measurement) error {
	cw := csv.NewWriter(w)
	header := []string{"component", "course_number", "position", "original_in", "previous_in",
		"current_in", "rate_in_yr", "remaining_life_yr", "status"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, m := range ms {
		row := []string{
			m.Component,
			fmt.Sprintf("%d", m.CourseNumber),
			m.Position,
			fmt.Sprintf("%.3f", m.OriginalIn),
			fmt.Sprintf("%.3f", m.PreviousIn),
			fmt.Sprintf("%.3f", m.CurrentIn),
			fmt.Sprintf("%.4f", m.RateInYr),
			fmt.Sprintf("%.1f", m.RemainingLifeYr),
			m.Status,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
