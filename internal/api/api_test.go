package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finance-tracker-backend/internal/ledger"
	"finance-tracker-backend/internal/models"
	"finance-tracker-backend/internal/store"
	"finance-tracker-backend/internal/summary"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const testSecret = "test-secret"

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	auth   *Authenticator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := ledger.New(store.NewMemoryStore(), zerolog.Nop())
	srv := NewServer(svc, Options{JWTSecret: testSecret, Logger: zerolog.Nop()})
	return &testEnv{t: t, router: srv.Router(), auth: srv.Authenticator()}
}

func (e *testEnv) token(user string) string {
	e.t.Helper()
	tok, err := e.auth.Issue(user, time.Hour)
	if err != nil {
		e.t.Fatalf("Issue: %v", err)
	}
	return tok
}

// do sends body as JSON on behalf of user ("" sends no token).
func (e *testEnv) do(user, method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(user))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

func (e *testEnv) createAccount(user string, body map[string]any) models.Account {
	e.t.Helper()
	w := e.do(user, http.MethodPost, "/api/accounts", body)
	expectStatus(e.t, w, http.StatusCreated)
	return decode[models.Account](e.t, w)
}

func (e *testEnv) balance(user, id string) float64 {
	e.t.Helper()
	w := e.do(user, http.MethodGet, "/api/accounts/"+id, nil)
	expectStatus(e.t, w, http.StatusOK)
	return decode[models.Account](e.t, w).Balance
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w := e.do("", http.MethodGet, "/health", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[map[string]any](t, w)["status"]; got != "healthy" {
		t.Errorf("status = %v, want healthy", got)
	}
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("", http.MethodGet, "/api/accounts", nil)
	expectStatus(t, w, http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusUnauthorized)

	other, _ := NewAuthenticator("other-secret").Issue("alice", time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestCreateAccountValidation(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("alice", http.MethodPost, "/api/accounts", map[string]any{"name": "Visa", "type": "credit"})
	expectStatus(t, w, http.StatusBadRequest)

	a := e.createAccount("alice", map[string]any{
		"name": "Visa", "type": "credit", "balance": 200, "creditLimit": 500, "paymentDueDate": "2024-04-01",
	})
	if a.CreditTerms == nil || a.CreditLimit != 500 {
		t.Errorf("credit terms missing: %+v", a)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	e := newTestEnv(t)
	w1 := e.createAccount("alice", map[string]any{"name": "Wallet", "type": "wallet"})
	w2 := e.createAccount("alice", map[string]any{"name": "Bank", "type": "bank", "balance": 100})

	w := e.do("alice", http.MethodPost, "/api/transactions", map[string]any{
		"accountId": w1.ID, "amount": 100, "type": "income", "category": "salary", "date": "2024-03-01",
	})
	expectStatus(t, w, http.StatusCreated)

	w = e.do("alice", http.MethodPost, "/api/transactions", map[string]any{
		"accountId": w1.ID, "amount": 40, "type": "expense", "category": "food",
	})
	expectStatus(t, w, http.StatusCreated)
	expense := decode[models.Transaction](t, w)
	if got := e.balance("alice", w1.ID); got != 60 {
		t.Errorf("wallet balance = %v, want 60", got)
	}

	w = e.do("alice", http.MethodPut, "/api/transactions/"+expense.ID, map[string]any{"accountId": w2.ID, "amount": 45})
	expectStatus(t, w, http.StatusOK)
	if got := e.balance("alice", w1.ID); got != 100 {
		t.Errorf("wallet balance after move = %v, want 100", got)
	}
	if got := e.balance("alice", w2.ID); got != 55 {
		t.Errorf("bank balance after move = %v, want 55", got)
	}

	w = e.do("alice", http.MethodGet, "/api/transactions?type=expense", nil)
	expectStatus(t, w, http.StatusOK)
	list := decode[[]models.Transaction](t, w)
	if len(list) != 1 || list[0].AccountName == nil || *list[0].AccountName != "Bank" {
		t.Errorf("unexpected expense list: %+v", list)
	}

	w = e.do("alice", http.MethodGet, "/api/transactions/categories", nil)
	expectStatus(t, w, http.StatusOK)
	cats := decode[[]ledger.Category](t, w)
	if len(cats) != 2 || cats[0].Name != "food" || cats[0].Expenses != 1 || cats[1].Name != "salary" {
		t.Errorf("unexpected categories: %+v", cats)
	}

	w = e.do("alice", http.MethodDelete, "/api/transactions/"+expense.ID, nil)
	expectStatus(t, w, http.StatusOK)
	if got := e.balance("alice", w2.ID); got != 100 {
		t.Errorf("bank balance after delete = %v, want 100", got)
	}

	w = e.do("alice", http.MethodDelete, "/api/transactions/"+expense.ID, nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestTransactionValidation(t *testing.T) {
	e := newTestEnv(t)
	a := e.createAccount("alice", map[string]any{"name": "Wallet", "type": "wallet"})

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"negative amount", map[string]any{"accountId": a.ID, "amount": -5, "type": "expense"}, http.StatusBadRequest},
		{"bad type", map[string]any{"accountId": a.ID, "amount": 5, "type": "gift"}, http.StatusBadRequest},
		{"bad date", map[string]any{"accountId": a.ID, "amount": 5, "type": "income", "date": "yesterday"}, http.StatusBadRequest},
		{"unknown account", map[string]any{"accountId": "nope", "amount": 5, "type": "income"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do("alice", http.MethodPost, "/api/transactions", tt.body)
			expectStatus(t, w, tt.want)
		})
	}
	if got := e.balance("alice", a.ID); got != 0 {
		t.Errorf("balance = %v, want 0", got)
	}
}

func TestRating(t *testing.T) {
	e := newTestEnv(t)
	a := e.createAccount("alice", map[string]any{"name": "Wallet", "type": "wallet", "balance": 10})
	w := e.do("alice", http.MethodPost, "/api/transactions", map[string]any{"accountId": a.ID, "amount": 5, "type": "expense"})
	expectStatus(t, w, http.StatusCreated)
	txn := decode[models.Transaction](t, w)

	for rating, want := range map[float64]int{-1: 400, 0: 200, 10: 200, 11: 400} {
		w := e.do("alice", http.MethodPatch, "/api/transactions/"+txn.ID+"/rating", map[string]any{"rating": rating})
		if w.Code != want {
			t.Errorf("rating %v: status = %d, want %d", rating, w.Code, want)
		}
	}
	if got := e.balance("alice", a.ID); got != 5 {
		t.Errorf("balance = %v, want 5", got)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	e := newTestEnv(t)
	a := e.createAccount("alice", map[string]any{"name": "Wallet", "type": "wallet"})

	w := e.do("bob", http.MethodGet, "/api/accounts/"+a.ID, nil)
	expectStatus(t, w, http.StatusNotFound)

	w = e.do("bob", http.MethodPost, "/api/transactions", map[string]any{"accountId": a.ID, "amount": 5, "type": "income"})
	expectStatus(t, w, http.StatusNotFound)

	w = e.do("bob", http.MethodGet, "/api/accounts", nil)
	expectStatus(t, w, http.StatusOK)
	if list := decode[[]models.Account](t, w); len(list) != 0 {
		t.Errorf("bob sees %d accounts", len(list))
	}
}

func TestSummaryEndpoint(t *testing.T) {
	e := newTestEnv(t)
	bank := e.createAccount("alice", map[string]any{"name": "Bank", "type": "bank", "balance": 1000})
	e.createAccount("alice", map[string]any{
		"name": "Visa", "type": "credit", "balance": 250, "creditLimit": 1000, "paymentDueDate": "2024-04-01",
	})

	for _, body := range []map[string]any{
		{"accountId": bank.ID, "amount": 500, "type": "income", "category": "salary", "date": "2024-03-01"},
		{"accountId": bank.ID, "amount": 120, "type": "expense", "category": "food", "date": "2024-03-02"},
		{"accountId": bank.ID, "amount": 80, "type": "expense", "category": "food", "date": "2024-04-02"},
	} {
		expectStatus(t, e.do("alice", http.MethodPost, "/api/transactions", body), http.StatusCreated)
	}

	w := e.do("alice", http.MethodGet, "/api/transactions/summary?startDate=2024-03-01&endDate=2024-03-31", nil)
	expectStatus(t, w, http.StatusOK)
	s := decode[summary.Summary](t, w)
	if s.TotalIncome != 500 || s.TotalExpenses != 120 || s.NetBalance != 380 {
		t.Errorf("totals = %v/%v/%v, want 500/120/380", s.TotalIncome, s.TotalExpenses, s.NetBalance)
	}
	if s.CategoryBreakdown["food"] != 120 {
		t.Errorf("food = %v, want 120", s.CategoryBreakdown["food"])
	}
	if s.TotalCashBalance != 1300 || s.TotalCreditUsed != 250 || s.CreditUsage != 25 || s.TotalBalance != 1050 {
		t.Errorf("account totals = %+v", s)
	}
}

func TestScheduledProcessing(t *testing.T) {
	e := newTestEnv(t)
	a := e.createAccount("alice", map[string]any{"name": "Bank", "type": "bank"})

	w := e.do("alice", http.MethodPost, "/api/scheduled-transactions", map[string]any{
		"accountId": a.ID, "amount": 20, "type": "income", "category": "refund", "scheduledDate": "2024-05-01",
	})
	expectStatus(t, w, http.StatusCreated)
	st := decode[models.ScheduledTransaction](t, w)
	if st.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", st.Status)
	}

	w = e.do("alice", http.MethodPost, "/api/scheduled-transactions/"+st.ID+"/process", nil)
	expectStatus(t, w, http.StatusOK)
	if got := e.balance("alice", a.ID); got != 20 {
		t.Errorf("balance = %v, want 20", got)
	}

	w = e.do("alice", http.MethodPost, "/api/scheduled-transactions/"+st.ID+"/process", nil)
	expectStatus(t, w, http.StatusNotFound)
	if got := e.balance("alice", a.ID); got != 20 {
		t.Errorf("balance after second process = %v, want 20", got)
	}

	w = e.do("alice", http.MethodGet, "/api/scheduled-transactions?status=processed", nil)
	expectStatus(t, w, http.StatusOK)
	if list := decode[[]models.ScheduledTransaction](t, w); len(list) != 1 {
		t.Errorf("got %d processed schedules, want 1", len(list))
	}
	expectStatus(t, e.do("alice", http.MethodGet, "/api/scheduled-transactions?status=done", nil), http.StatusBadRequest)
}

func TestBudgetsEndpoints(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("alice", http.MethodPost, "/api/budgets", map[string]any{"category": "food", "amount": 300})
	expectStatus(t, w, http.StatusCreated)
	b := decode[models.Budget](t, w)
	if b.Period != models.PeriodMonthly {
		t.Errorf("period = %q, want monthly", b.Period)
	}

	w = e.do("alice", http.MethodPost, "/api/budgets", map[string]any{"category": "food", "amount": 10})
	expectStatus(t, w, http.StatusConflict)

	w = e.do("alice", http.MethodGet, "/api/budgets/status", nil)
	expectStatus(t, w, http.StatusOK)
	if statuses := decode[[]models.BudgetStatus](t, w); len(statuses) != 1 || statuses[0].Remaining != 300 {
		t.Errorf("unexpected statuses: %+v", statuses)
	}

	w = e.do("alice", http.MethodGet, "/api/budgets/export", nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") || !strings.Contains(w.Body.String(), "food,300,monthly") {
		t.Errorf("unexpected export: %q %q", w.Header().Get("Content-Type"), w.Body.String())
	}

	w = e.do("alice", http.MethodPut, "/api/budgets/"+b.ID, map[string]any{"amount": 350})
	expectStatus(t, w, http.StatusOK)
	w = e.do("alice", http.MethodDelete, "/api/budgets/"+b.ID, nil)
	expectStatus(t, w, http.StatusOK)
	w = e.do("alice", http.MethodGet, "/api/budgets/"+b.ID, nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestImportExport(t *testing.T) {
	e := newTestEnv(t)
	a := e.createAccount("alice", map[string]any{"name": "Bank", "type": "bank"})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "transactions.csv")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("date,amount,type,category,description\n2024-03-01,75,income,gift,\n2024-03-02,oops,expense,food,\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token("alice"))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusOK)

	res := decode[map[string]any](t, w)
	if res["imported"] != float64(1) || res["skipped"] != float64(1) {
		t.Errorf("unexpected import result: %v", res)
	}
	if got := e.balance("alice", a.ID); got != 75 {
		t.Errorf("balance = %v, want 75", got)
	}

	w = e.do("alice", http.MethodGet, "/api/transactions/export?format=xlsx", nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Header().Get("Content-Disposition"), "transactions.xlsx") || w.Body.Len() == 0 {
		t.Errorf("unexpected xlsx export headers %v", w.Header())
	}

	expectStatus(t, e.do("alice", http.MethodGet, "/api/transactions/export?format=pdf", nil), http.StatusBadRequest)
}
