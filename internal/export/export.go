// Package export renders transactions as downloadable spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"expensetracker/internal/models"
)

// Format is a supported export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Transactions"

var headers = []string{"Date", "Type", "Category", "Amount", "Description"}

// ParseFormat maps a query value to a Format. An empty value selects XLSX.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q, use xlsx or csv", value)
	}
}

// ContentType returns the MIME type of files in format f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write renders transactions to w in format f.
func Write(w io.Writer, f Format, transactions []models.Transaction) error {
	if f == FormatCSV {
		return WriteCSV(w, transactions)
	}
	return WriteXLSX(w, transactions)
}

func row(tx models.Transaction) []string {
	return []string{
		tx.Date.UTC().Format("2006-01-02"),
		string(tx.Type),
		string(tx.Category),
		tx.Amount.StringFixed(2),
		safeText(tx.Description),
	}
}

// safeText prefixes user text that a spreadsheet would evaluate as a formula
// with a single quote so it is shown as typed.
func safeText(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// WriteCSV writes a header row followed by one row per transaction.
func WriteCSV(w io.Writer, transactions []models.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return err
	}
	for _, tx := range transactions {
		if err := writer.Write(row(tx)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a single-sheet workbook with amounts as numeric cells.
func WriteXLSX(w io.Writer, transactions []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for idx, tx := range transactions {
		values := []interface{}{
			tx.Date.UTC().Format("2006-01-02"),
			string(tx.Type),
			string(tx.Category),
			tx.Amount.InexactFloat64(),
			safeText(tx.Description),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, idx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "C", 14)
	_ = f.SetColWidth(sheetName, "D", "D", 12)
	_ = f.SetColWidth(sheetName, "E", "E", 40)

	return f.Write(w)
}

// Filename returns the attachment name for an export taken on date (YYYYMMDD).
func Filename(f Format, date string) string {
	return "transactions_" + date + "." + string(f)
}
