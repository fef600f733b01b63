package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookTextGrid(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Tank Number"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "TK-101"))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "Diameter"))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", 120))

	text, err := WorkbookText(f, "report.xlsx")
	require.NoError(t, err)

	assert.Contains(t, text, "EXCEL FILE ANALYSIS: report.xlsx")
	assert.Contains(t, text, "=== SHEET: Sheet1 ===")
	assert.Contains(t, text, "[0,0]: Tank Number")
	assert.Contains(t, text, "[0,1]: TK-101")
	assert.Contains(t, text, "[2,1]: 120")
	// empty row 2 must not emit a grid line
	assert.NotContains(t, text, "\nRow 1:")
}

func TestWorkbookTextHeaderEcho(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Course", "Position", "Thickness"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, "N", 0.42}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{1, "E", 0.44}))

	text, err := WorkbookText(f, "readings.xlsx")
	require.NoError(t, err)

	assert.Contains(t, text, "COLUMN HEADERS: [Course, Position, Thickness]")
	assert.Contains(t, text, "Data Row 0: Course: 1 | Position: N | Thickness: 0.42")
	assert.Contains(t, text, "Data Row 1: Course: 1 | Position: E | Thickness: 0.44")
}

func TestWorkbookTextNoHeaderEchoForSingleRow(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "just a title"))

	text, err := WorkbookText(f, "title.xlsx")
	require.NoError(t, err)
	assert.NotContains(t, text, "COLUMN HEADERS")
}

func TestWorkbookTextRowCap(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	for i := 1; i <= 60; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cell, i))
	}

	text, err := WorkbookText(f, "big.xlsx")
	require.NoError(t, err)

	assert.Contains(t, text, "Row 49:")
	assert.NotContains(t, text, "Row 50:")
}

func TestParseReplyStripsProse(t *testing.T) {
	reply := "Here is the extracted data:\n" +
		`{"tank_info":{"tank_number":"TK-101","diameter_ft":120}}` +
		"\nLet me know if you need anything else."
	ex, err := parseReply(reply)
	require.NoError(t, err)
	assert.Equal(t, "TK-101", ex.TankInfo.TankNumber)
	assert.Equal(t, 120.0, ex.TankInfo.DiameterFt)
}

func TestParseReplyNoJSON(t *testing.T) {
	_, err := parseReply("sorry, I could not read the file")
	require.Error(t, err)
}

func TestCleanFilenameLeak(t *testing.T) {
	ex := Extraction{}
	ex.TankInfo.TankNumber = "inspection_2024.xlsx"
	ex.TankInfo.EquipmentID = "EQ-55"
	Clean(&ex, "inspection_2024.xlsx")
	assert.Equal(t, "EQ-55", ex.TankInfo.TankNumber)

	ex = Extraction{}
	ex.TankInfo.TankNumber = ""
	Clean(&ex, "whatever.xls")
	assert.Equal(t, "UNKNOWN", ex.TankInfo.TankNumber)
}

func TestCleanDefaults(t *testing.T) {
	ex := Extraction{}
	ex.TankInfo.TankNumber = "TK-9"
	ex.TankInfo.Product = "crude oil"
	ex.InspectionInfo.InspectionDate = "not a date"
	Clean(&ex, "f.xlsx")

	assert.Equal(t, "Crude Oil", ex.TankInfo.Product)
	assert.Equal(t, 1.0, ex.TankInfo.SpecificGravity)
	assert.Equal(t, 0.85, ex.InspectionInfo.JointEfficiency)
	assert.Equal(t, "Unknown Inspector", ex.InspectionInfo.InspectorName)
	_, err := time.Parse("2006-01-02", ex.InspectionInfo.InspectionDate)
	assert.NoError(t, err)
}

func TestNewImportReportNumber(t *testing.T) {
	n := NewImportReportNumber()
	assert.True(t, strings.HasPrefix(n, "IMP-"))
	assert.Len(t, n, 12)
	assert.NotEqual(t, n, NewImportReportNumber())
}

func TestClientExtract(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"role":    "assistant",
					"content": `{"tank_info":{"tank_number":"TK-101"},"thickness_data":[{"course_number":1,"readings":[{"position":"N","thickness":0.42}]}]}`,
				},
			}},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.BaseURL = srv.URL

	ex, err := c.Extract(context.Background(), "grid text")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "anthropic/claude-3.5-sonnet", gotReq.Model)
	assert.Equal(t, 4000, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "grid text")
	assert.Equal(t, "TK-101", ex.TankInfo.TankNumber)
	require.Len(t, ex.ThicknessData, 1)
	assert.Equal(t, 0.42, ex.ThicknessData[0].Readings[0].Thickness)
}

func TestClientExtractBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-key")
	c.BaseURL = srv.URL
	c.HTTP.RetryMax = 0

	_, err := c.Extract(context.Background(), "grid text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
