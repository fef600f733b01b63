package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Only the leading block of each sheet goes to the model.
const (
	maxRows       = 50
	maxCols       = 20
	maxHeaderRows = 5
)

// WorkbookText flattens a workbook into the cell-grid text representation the
// extraction prompt is built from.
func WorkbookText(f *excelize.File, name string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "EXCEL FILE ANALYSIS: %s\n\n", name)

	for _, sheet := range f.GetSheetList() {
		fmt.Fprintf(&b, "=== SHEET: %s ===\n", sheet)
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", err
		}
		for i, row := range rows {
			if i >= maxRows {
				break
			}
			var cells []string
			for j, val := range row {
				if j >= maxCols {
					break
				}
				val = strings.TrimSpace(val)
				if val != "" {
					cells = append(cells, fmt.Sprintf("[%d,%d]: %s", i, j, val))
				}
			}
			if len(cells) > 0 {
				fmt.Fprintf(&b, "Row %d: %s\n", i, strings.Join(cells, " | "))
			}
		}
		writeHeaderEcho(&b, rows)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// writeHeaderEcho repeats the first row as column headers with a few labeled
// data rows, so the model can match values to field names even when the raw
// grid is sparse.
func writeHeaderEcho(b *strings.Builder, rows [][]string) {
	if len(rows) < 2 {
		return
	}
	headers := rows[0]
	if len(headers) > maxCols {
		headers = headers[:maxCols]
	}
	var names []string
	for _, h := range headers {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "\nCOLUMN HEADERS: [%s]\n", strings.Join(names, ", "))

	for i := 1; i < len(rows) && i <= maxHeaderRows; i++ {
		var labeled []string
		for j, val := range rows[i] {
			if j >= len(headers) {
				break
			}
			header := strings.TrimSpace(headers[j])
			val = strings.TrimSpace(val)
			if header != "" && val != "" {
				labeled = append(labeled, header+": "+val)
			}
		}
		if len(labeled) > 0 {
			fmt.Fprintf(b, "Data Row %d: %s\n", i-1, strings.Join(labeled, " | "))
		}
	}
}
