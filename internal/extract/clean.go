package extract

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

var serviceNames = map[string]string{
	"crude_oil":               "Crude Oil",
	"crude oil":               "Crude Oil",
	"diesel":                  "Diesel",
	"gasoline":                "Gasoline",
	"alcohol":                 "Alcohol",
	"fish oil and sludge oil": "Fish Oil and Sludge Oil",
	"other":                   "Other",
}

// Clean applies the import sanity rules before anything is persisted:
// spreadsheets routinely leak the filename into the tank id, omit report
// numbers and carry free-form service names.
func Clean(ex *Extraction, filename string) {
	id := strings.TrimSpace(ex.TankInfo.TankNumber)
	lower := strings.ToLower(id)
	if id == "" || strings.EqualFold(id, filename) ||
		strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls") ||
		strings.HasSuffix(lower, ".csv") {
		if eq := strings.TrimSpace(ex.TankInfo.EquipmentID); eq != "" {
			id = eq
		} else {
			id = "UNKNOWN"
		}
	}
	ex.TankInfo.TankNumber = id

	if norm, ok := serviceNames[strings.ToLower(strings.TrimSpace(ex.TankInfo.Product))]; ok {
		ex.TankInfo.Product = norm
	}
	if ex.TankInfo.SpecificGravity <= 0 {
		ex.TankInfo.SpecificGravity = 1.0
	}
	if ex.TankInfo.NumberOfCourses < 0 {
		ex.TankInfo.NumberOfCourses = 0
	}

	if strings.TrimSpace(ex.InspectionInfo.InspectorName) == "" {
		ex.InspectionInfo.InspectorName = "Unknown Inspector"
	}
	if ex.InspectionInfo.JointEfficiency <= 0 || ex.InspectionInfo.JointEfficiency > 1 {
		ex.InspectionInfo.JointEfficiency = 0.85
	}
	if _, err := time.Parse("2006-01-02", ex.InspectionInfo.InspectionDate); err != nil {
		ex.InspectionInfo.InspectionDate = time.Now().Format("2006-01-02")
	}
}

// NewImportReportNumber generates IMP-XXXXXXXX for imported inspections.
func NewImportReportNumber() string {
	return "IMP-" + strings.ToUpper(uuid.NewString()[:8])
}
