package web

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
)

// reportTable is a report rendered down to rows for the CSV/XLSX exporters.
// JSON responses bypass this entirely.
type reportTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// writeReport dispatches a report to the encoder the format query param asks
// for. JSON gets the structured payload; csv and xlsx get the tabular form.
func writeReport(w http.ResponseWriter, r *http.Request, name string, payload any, tables []reportTable) {
	switch r.URL.Query().Get("format") {
	case "csv":
		writeCSV(w, name, tables)
	case "xlsx":
		writeXLSX(w, r, name, tables)
	default:
		writeJSON(w, payload)
	}
}

// writeCSV streams the tables as one CSV document, blank-line separated,
// each table preceded by its name.
func writeCSV(w http.ResponseWriter, name string, tables []reportTable) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(name, "csv"))

	cw := csv.NewWriter(w)
	defer cw.Flush()
	for i, t := range tables {
		if i > 0 {
			_ = cw.Write([]string{})
		}
		if len(tables) > 1 {
			_ = cw.Write([]string{t.Name})
		}
		_ = cw.Write(t.Header)
		for _, row := range t.Rows {
			_ = cw.Write(row)
		}
	}
}

// writeXLSX renders one sheet per table.
func writeXLSX(w http.ResponseWriter, r *http.Request, name string, tables []reportTable) {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		sheet := t.Name
		if i == 0 {
			// Rename the default sheet instead of leaving it empty.
			_ = f.SetSheetName("Sheet1", sheet)
		} else if _, err := f.NewSheet(sheet); err != nil {
			writeError(w, r, "export failed", "INTERNAL", http.StatusInternalServerError)
			return
		}
		for col, h := range t.Header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			_ = f.SetCellValue(sheet, cell, h)
		}
		for rowIdx, row := range t.Rows {
			for col, v := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
				_ = f.SetCellValue(sheet, cell, v)
			}
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(name, "xlsx"))
	if err := f.Write(w); err != nil {
		// Headers are already sent; all we can do is log.
		log.Printf("xlsx export: %v", err)
	}
}

func attachment(name, ext string) string {
	return fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s_%s.%s", name, time.Now().Format("20060102"), ext))
}
