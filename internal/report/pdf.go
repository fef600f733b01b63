package report

import (
	"fmt"

	"OilPro/internal/repo"

	"github.com/phpdave11/gofpdf"
)

type Bundle struct {
	Tank         repo.Tank
	Inspection   repo.Inspection
	Measurements []repo.Measurement
	Checklist    []repo.ChecklistItem
	Surveys      []repo.Survey
}

func BuildPDF(b Bundle) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "API 653 Tank Inspection Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Report: %s", b.Inspection.ReportNumber))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Tank: %s   Client: %s", b.Tank.TankNumber, b.Tank.ClientName))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Location: %s", b.Tank.Location))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s   Type: %s", b.Inspection.InspectionDate.Format("2006-01-02"), b.Inspection.InspectionType))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Inspector: %s (%s)", b.Inspection.InspectorName, b.Inspection.InspectorCert))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Tank Data")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	tankRows := [][2]string{
		{"Diameter", fmt.Sprintf("%.1f ft", b.Tank.DiameterFt)},
		{"Height", fmt.Sprintf("%.1f ft", b.Tank.HeightFt)},
		{"Capacity", fmt.Sprintf("%.0f gal", b.Tank.CapacityGal)},
		{"Product", b.Tank.Product},
		{"Specific gravity", fmt.Sprintf("%.2f", b.Tank.SpecificGravity)},
		{"Construction code", b.Tank.ConstructionCode},
		{"Year built", fmt.Sprintf("%d", b.Tank.YearBuilt)},
		{"Shell material", b.Tank.ShellMaterial},
		{"Roof type", b.Tank.RoofType},
		{"Foundation", b.Tank.FoundationType},
	}
	for _, row := range tankRows {
		pdf.CellFormat(50, 6, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(90, 6, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(b.Measurements) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Thickness Measurements")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 9)
		headers := []string{"Component", "Course", "Position", "Current (in)", "Rate (in/yr)", "Rem. life (yr)", "Status"}
		widths := []float64{25, 15, 30, 25, 25, 25, 30}
		for i, hname := range headers {
			pdf.CellFormat(widths[i], 6, hname, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		for _, m := range b.Measurements {
			pdf.CellFormat(widths[0], 6, m.Component, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, fmt.Sprintf("%d", m.CourseNumber), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[2], 6, m.Position, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.3f", m.CurrentIn), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.4f", m.RateInYr), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[5], 6, fmt.Sprintf("%.1f", m.RemainingLifeYr), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[6], 6, m.Status, "1", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	if len(b.Checklist) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Checklist Summary")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 9)
		deficient := 0
		for _, it := range b.Checklist {
			if it.Status == "deficient" {
				deficient++
			}
		}
		pdf.Cell(0, 6, fmt.Sprintf("%d items checked, %d deficient", len(b.Checklist), deficient))
		pdf.Ln(6)
		for _, it := range b.Checklist {
			if it.Status != "deficient" {
				continue
			}
			pdf.MultiCell(0, 5, fmt.Sprintf("[%s] %s — %s", it.Category, it.Item, it.Notes), "", "L", false)
		}
		pdf.Ln(4)
	}

	for _, s := range b.Surveys {
		if !s.Analyzed {
			continue
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Settlement Survey (Annex B)")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Survey date: %s   Points: %d", s.SurveyDate.Format("2006-01-02"), len(s.Points)))
		pdf.Ln(6)
		pdf.Cell(0, 6, fmt.Sprintf("Cosine fit R2: %.3f (%s)", s.Result.RSquared, verdict(s.Result.FitAcceptable, "acceptable", "poor fit")))
		pdf.Ln(6)
		pdf.Cell(0, 6, fmt.Sprintf("Max out-of-plane: %.4f ft   Allowable: %.4f ft (%s)",
			s.Result.MaxOutOfPlaneFt, s.Result.AllowableFt, verdict(s.Result.SettlementOK, "OK", "EXCEEDED")))
		pdf.Ln(10)
	}

	if b.Inspection.Findings != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Findings")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, b.Inspection.Findings, "", "L", false)
		pdf.Ln(4)
	}
	if b.Inspection.Recommendations != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Recommendations")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, b.Inspection.Recommendations, "", "L", false)
	}

	return pdf
}

func BuildQuickPDF(input QuickInput) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, input.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", input.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", input.Author))
	pdf.Ln(10)
	pdf.MultiCell(0, 6, input.Notes, "", "L", false)
	return pdf
}

func verdict(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
