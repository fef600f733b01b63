package checklist

import "OilPro/internal/repo"

// Default checklist in the Annex C arrangement. Items start unanswered ("na")
// and get bulk-updated from the editor.
var template = []struct {
	category string
	items    []string
}{
	{"foundation", []string{
		"Concrete pad/ringwall cracking or spalling",
		"Tank-to-foundation seal condition",
		"Evidence of washout or erosion under the bottom edge",
		"Anchor bolts tight and free of heavy corrosion",
	}},
	{"shell", []string{
		"Visible distortion, bulges or flat spots",
		"External coating condition and rust staining",
		"Shell-to-bottom weld condition",
		"Insulation damage or moisture ingress",
	}},
	{"roof", []string{
		"Standing water or product on the roof",
		"Roof plate corrosion, holes or thin areas",
		"Gauge hatch and fittings condition",
		"Floating roof seal condition",
	}},
	{"appurtenances", []string{
		"Nozzles and manways free of leaks",
		"Vent screens clear",
		"Gauging systems functional",
		"Stairways, platforms and handrails secure",
	}},
	{"external", []string{
		"Grounding connections intact",
		"Dike/containment area drainage acceptable",
		"Identification and signage legible",
	}},
}

func DefaultItems(inspectionID int) []repo.ChecklistItem {
	var out []repo.ChecklistItem
	for _, group := range template {
		for _, item := range group.items {
			out = append(out, repo.ChecklistItem{
				InspectionID: inspectionID,
				Category:     group.category,
				Item:         item,
				Status:       "na",
			})
		}
	}
	return out
}
