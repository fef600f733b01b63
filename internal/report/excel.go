package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// BuildWorkbook renders the bundle as an xlsx with Tank, Measurements and
// Checklist sheets.
func BuildWorkbook(b Bundle) (*excelize.File, error) {
	f := excelize.NewFile()

	const tankSheet = "Tank"
	f.SetSheetName("Sheet1", tankSheet)
	tankRows := [][2]any{
		{"Report", b.Inspection.ReportNumber},
		{"Tank", b.Tank.TankNumber},
		{"Client", b.Tank.ClientName},
		{"Location", b.Tank.Location},
		{"Diameter (ft)", b.Tank.DiameterFt},
		{"Height (ft)", b.Tank.HeightFt},
		{"Capacity (gal)", b.Tank.CapacityGal},
		{"Product", b.Tank.Product},
		{"Specific gravity", b.Tank.SpecificGravity},
		{"Construction code", b.Tank.ConstructionCode},
		{"Year built", b.Tank.YearBuilt},
		{"Inspection date", b.Inspection.InspectionDate.Format("2006-01-02")},
		{"Inspector", b.Inspection.InspectorName},
	}
	for i, row := range tankRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(tankSheet, cell, &[]any{row[0], row[1]}); err != nil {
			return nil, err
		}
	}

	const measSheet = "Measurements"
	if _, err := f.NewSheet(measSheet); err != nil {
		return nil, err
	}
	header := []any{"Component", "Course", "Position", "Original (in)", "Previous (in)",
		"Current (in)", "Rate (in/yr)", "Remaining life (yr)", "Status"}
	if err := f.SetSheetRow(measSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, m := range b.Measurements {
		row := []any{m.Component, m.CourseNumber, m.Position, m.OriginalIn, m.PreviousIn,
			m.CurrentIn, m.RateInYr, m.RemainingLifeYr, m.Status}
		if err := f.SetSheetRow(measSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	const checkSheet = "Checklist"
	if _, err := f.NewSheet(checkSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(checkSheet, "A1", &[]any{"Category", "Item", "Status", "Notes"}); err != nil {
		return nil, err
	}
	for i, it := range b.Checklist {
		row := []any{it.Category, it.Item, it.Status, it.Notes}
		if err := f.SetSheetRow(checkSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}
