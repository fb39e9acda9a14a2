package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"finance-tracker-backend/internal/ledger"
	"finance-tracker-backend/internal/models"
	"finance-tracker-backend/internal/store"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// TransactionCreator is the ledger surface the importer needs.
type TransactionCreator interface {
	ListAccounts(ctx context.Context, userID string) ([]*models.Account, error)
	CreateTransaction(ctx context.Context, userID string, in ledger.NewTransaction) (*models.Transaction, error)
}

// RowError describes a skipped row. Row is the 1-based record number,
// header included; blank lines are not counted.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult counts imported and skipped rows.
type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
}

var requiredColumns = []string{"date", "amount", "type", "category"}

var dateLayouts = []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05", "01/02/2006"}

type Importer struct {
	ledger TransactionCreator
	log    zerolog.Logger
}

func NewImporter(l TransactionCreator, log zerolog.Logger) *Importer {
	return &Importer{ledger: l, log: log}
}

// Import reads transactions from r and creates each row through the ledger,
// so every imported row moves its account balance. Rows with bad values or
// unknown accounts are skipped. The accountId column is optional; rows
// without one go to the user's oldest account.
func (im *Importer) Import(ctx context.Context, userID string, r io.Reader, format Format) (*ImportResult, error) {
	records, err := readRecords(r, format)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, models.Invalid("file", "is empty")
	}

	cols := make(map[string]int)
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, models.Invalid("file", "missing required columns: "+strings.Join(missing, ", "))
	}

	defaultAccount, err := im.defaultAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, rec := range records[1:] {
		rowNum := i + 2
		if blank(rec) {
			continue
		}
		in, err := parseRow(rec, cols, defaultAccount)
		if err == nil {
			_, err = im.ledger.CreateTransaction(ctx, userID, in)
		}
		if err != nil {
			var ve *models.ValidationError
			if !errors.As(err, &ve) && !errors.Is(err, store.ErrNotFound) {
				return result, fmt.Errorf("import row %d: %w", rowNum, err)
			}
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	im.log.Info().
		Str("user_id", userID).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("Transactions imported")
	return result, nil
}

func (im *Importer) defaultAccount(ctx context.Context, userID string) (string, error) {
	accounts, err := im.ledger.ListAccounts(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("import: %w", err)
	}
	if len(accounts) == 0 {
		return "", nil
	}
	return accounts[0].ID, nil
}

func readRecords(r io.Reader, format Format) ([][]string, error) {
	if format == XLSX {
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, models.Invalid("file", "is not a readable xlsx workbook")
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("read xlsx rows: %w", err)
		}
		return rows, nil
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, models.Invalid("file", "is not valid csv: "+err.Error())
	}
	return records, nil
}

func parseRow(rec []string, cols map[string]int, defaultAccount string) (ledger.NewTransaction, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return ledger.NewTransaction{}, err
	}
	amount, err := strconv.ParseFloat(field("amount"), 64)
	if err != nil {
		return ledger.NewTransaction{}, models.Invalid("amount", "must be a number")
	}
	accountID := field("accountid")
	if accountID == "" {
		accountID = defaultAccount
	}
	if accountID == "" {
		return ledger.NewTransaction{}, models.Invalid("accountId", "is required when the user has no accounts")
	}

	return ledger.NewTransaction{
		AccountID:   accountID,
		Amount:      amount,
		Type:        models.Direction(strings.ToLower(field("type"))),
		Category:    field("category"),
		Description: field("description"),
		Date:        &date,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, models.Invalid("date", fmt.Sprintf("%q is not a recognized date", s))
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
