package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"finance-tracker-backend/internal/ledger"
	"finance-tracker-backend/internal/models"
	"finance-tracker-backend/internal/store"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", CSV, false},
		{"CSV", CSV, false},
		{"xlsx", XLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = (%q, %v)", tt.in, got, err)
		}
	}
}

func sampleTransactions() []*models.Transaction {
	return []*models.Transaction{
		{AccountID: "a1", Amount: 12.5, Type: models.Expense, Category: "food", Description: "lunch, with \"friends\"",
			Date: time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)},
		{AccountID: "a2", Amount: 2000, Type: models.Income, Category: "salary",
			Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestWriteTransactions_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTransactions(&buf, CSV, sampleTransactions()); err != nil {
		t.Fatalf("WriteTransactions: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if strings.Join(records[0], ",") != "date,amount,type,category,description,accountId" {
		t.Errorf("header = %v", records[0])
	}
	want := []string{"2024-03-02", "12.5", "expense", "food", "lunch, with \"friends\"", "a1"}
	for i := range want {
		if records[1][i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, records[1][i], want[i])
		}
	}
}

func TestWriteTransactions_XLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTransactions(&buf, XLSX, sampleTransactions()); err != nil {
		t.Fatalf("WriteTransactions: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Transactions")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "date" || rows[2][3] != "salary" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestWriteBudgets(t *testing.T) {
	var buf bytes.Buffer
	budgets := []*models.Budget{{Category: "food", Amount: 300, Period: models.PeriodMonthly}}
	if err := WriteBudgets(&buf, CSV, budgets); err != nil {
		t.Fatalf("WriteBudgets: %v", err)
	}
	if got, want := buf.String(), "category,amount,period\nfood,300,monthly\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func newImportFixture(t *testing.T) (*Importer, *ledger.Service, *models.Account) {
	t.Helper()
	svc := ledger.New(store.NewMemoryStore(), zerolog.Nop())
	a, err := svc.CreateAccount(context.Background(), "u1", ledger.NewAccount{Name: "Checking", Type: models.KindBank, Balance: 100})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return NewImporter(svc, zerolog.Nop()), svc, a
}

func TestImport_CSV(t *testing.T) {
	im, svc, a := newImportFixture(t)
	ctx := context.Background()

	input := "date,amount,type,category,description\n" +
		"2024-03-01,50,income,gift,birthday\n" +
		"2024-03-02,20,expense,food,\"pizza, large\"\n" +
		"\n" +
		"not-a-date,5,expense,food,x\n" +
		"2024-03-03,-5,expense,food,negative\n" +
		"2024-03-04,5,transfer,food,bad type\n"

	res, err := im.Import(ctx, "u1", strings.NewReader(input), CSV)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 3 {
		t.Errorf("imported/skipped = %d/%d, want 2/3", res.Imported, res.Skipped)
	}
	if len(res.Errors) != 3 || res.Errors[0].Row != 4 {
		t.Errorf("unexpected row errors: %+v", res.Errors)
	}

	got, _ := svc.GetAccount(ctx, "u1", a.ID)
	if got.Balance != 130 {
		t.Errorf("balance = %v, want 130", got.Balance)
	}
	txns, _ := svc.ListTransactions(ctx, "u1", models.TransactionFilter{Category: "food"})
	if len(txns) != 1 || txns[0].Description != "pizza, large" {
		t.Errorf("unexpected food transactions: %+v", txns)
	}
}

func TestImport_UnknownAccountSkipped(t *testing.T) {
	im, _, a := newImportFixture(t)
	input := "date,amount,type,category,description,accountId\n" +
		"2024-03-01,10,income,misc,,missing\n" +
		"2024-03-01,10,income,misc,," + a.ID + "\n"

	res, err := im.Import(context.Background(), "u1", strings.NewReader(input), CSV)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 1 {
		t.Errorf("imported/skipped = %d/%d, want 1/1", res.Imported, res.Skipped)
	}
}

func TestImport_MissingColumns(t *testing.T) {
	im, _, _ := newImportFixture(t)
	_, err := im.Import(context.Background(), "u1", strings.NewReader("date,amount\n2024-01-01,1\n"), CSV)
	if err == nil || !strings.Contains(err.Error(), "type, category") {
		t.Errorf("error = %v, want missing columns", err)
	}
}

func TestImport_RoundTripXLSX(t *testing.T) {
	im, svc, a := newImportFixture(t)
	txns := []*models.Transaction{
		{AccountID: a.ID, Amount: 40, Type: models.Expense, Category: "fuel", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	var buf bytes.Buffer
	if err := WriteTransactions(&buf, XLSX, txns); err != nil {
		t.Fatalf("WriteTransactions: %v", err)
	}

	res, err := im.Import(context.Background(), "u1", &buf, XLSX)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("imported = %d, want 1 (errors: %+v)", res.Imported, res.Errors)
	}
	got, _ := svc.GetAccount(context.Background(), "u1", a.ID)
	if got.Balance != 60 {
		t.Errorf("balance = %v, want 60", got.Balance)
	}
}
