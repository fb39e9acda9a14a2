// Package export writes transactions and budgets as CSV or XLSX and imports
// transactions from the same layout.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"finance-tracker-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

// Format is a tabular file format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// DateLayout is the date column format of exported files.
const DateLayout = "2006-01-02"

// ParseFormat accepts "csv" or "xlsx", case-insensitively. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return CSV, nil
	case "xlsx":
		return XLSX, nil
	}
	return "", models.Invalid("format", "must be csv or xlsx")
}

// ContentType is the MIME type of files in format f.
func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Filename appends the format extension to base.
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

var (
	transactionHeader = []string{"date", "amount", "type", "category", "description", "accountId"}
	budgetHeader      = []string{"category", "amount", "period"}
)

// table is a header plus rows of cell values.
type table struct {
	sheet  string
	header []string
	rows   [][]any
}

// WriteTransactions writes txns in the given format.
func WriteTransactions(w io.Writer, format Format, txns []*models.Transaction) error {
	t := table{sheet: "Transactions", header: transactionHeader, rows: make([][]any, 0, len(txns))}
	for _, txn := range txns {
		t.rows = append(t.rows, []any{
			txn.Date.UTC().Format(DateLayout),
			txn.Amount,
			string(txn.Type),
			txn.Category,
			txn.Description,
			txn.AccountID,
		})
	}
	return t.write(w, format)
}

// WriteBudgets writes budgets in the given format.
func WriteBudgets(w io.Writer, format Format, budgets []*models.Budget) error {
	t := table{sheet: "Budgets", header: budgetHeader, rows: make([][]any, 0, len(budgets))}
	for _, b := range budgets {
		t.rows = append(t.rows, []any{b.Category, b.Amount, string(b.Period)})
	}
	return t.write(w, format)
}

func (t table) write(w io.Writer, format Format) error {
	if format == XLSX {
		return t.writeXLSX(w)
	}
	return t.writeCSV(w)
}

func (t table) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(t.header))
	for _, row := range t.rows {
		for i, v := range row {
			record[i] = cellString(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t table) writeXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", t.sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(t.header))
	for i, h := range t.header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.sheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	for i, row := range t.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.sheet, cell, &row); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+2, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.UTC().Format(DateLayout)
	default:
		return fmt.Sprint(x)
	}
}
