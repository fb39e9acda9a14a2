package models

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind is the tag of the Account variant.
type AccountKind string

const (
	KindWallet AccountKind = "wallet"
	KindBank   AccountKind = "bank"
	KindCredit AccountKind = "credit"
)

// Valid reports whether k is one of the known account kinds.
func (k AccountKind) Valid() bool {
	switch k {
	case KindWallet, KindBank, KindCredit:
		return true
	}
	return false
}

// CreditTerms holds the fields only a credit account carries.
type CreditTerms struct {
	CreditLimit    float64   `json:"creditLimit"`
	PaymentDueDate time.Time `json:"paymentDueDate"`
}

// Account is a wallet, bank or credit account. CreditTerms is set if and
// only if Kind is KindCredit. For credit accounts Balance is the amount owed.
type Account struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Name      string      `json:"name"`
	Kind      AccountKind `json:"type"`
	Balance   float64     `json:"balance"`
	Currency  string      `json:"currency"`
	CreatedAt time.Time   `json:"createdAt"`
	*CreditTerms
}

const DefaultCurrency = "USD"

// NewAccount builds an account of the given kind. credit must be non-nil
// for credit accounts and nil for every other kind.
func NewAccount(userID, name string, kind AccountKind, balance float64, currency string, credit *CreditTerms) (*Account, error) {
	if strings.TrimSpace(currency) == "" {
		currency = DefaultCurrency
	}
	a := &Account{
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Kind:        kind,
		Balance:     balance,
		Currency:    strings.ToUpper(strings.TrimSpace(currency)),
		CreditTerms: credit,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the account fields against its kind.
func (a *Account) Validate() error {
	if a.Name == "" {
		return Invalid("name", "is required")
	}
	if !a.Kind.Valid() {
		return Invalid("type", "must be one of wallet, bank, credit")
	}
	if !finite(a.Balance) {
		return Invalid("balance", "must be a finite number")
	}
	if a.Kind == KindCredit {
		if a.CreditTerms == nil {
			return Invalid("creditLimit", "is required for credit accounts")
		}
		if a.CreditLimit < 0 || !finite(a.CreditLimit) {
			return Invalid("creditLimit", "must be a non-negative number")
		}
		if a.PaymentDueDate.IsZero() {
			return Invalid("paymentDueDate", "is required for credit accounts")
		}
	} else if a.CreditTerms != nil {
		return Invalid("creditLimit", "is only allowed on credit accounts")
	}
	return nil
}

// IsCredit reports whether the account is the credit variant.
func (a *Account) IsCredit() bool {
	return a.Kind == KindCredit && a.CreditTerms != nil
}

// Utilization returns the balance as a percentage of the credit limit, or 0
// for non-credit accounts and credit accounts without a limit.
func (a *Account) Utilization() float64 {
	if !a.IsCredit() || a.CreditLimit <= 0 {
		return 0
	}
	return a.Balance / a.CreditLimit * 100
}

// AccountPatch carries the mutable account fields. Nil fields are left as is.
type AccountPatch struct {
	Name           *string    `json:"name"`
	Balance        *float64   `json:"balance"`
	CreditLimit    *float64   `json:"creditLimit"`
	PaymentDueDate *time.Time `json:"paymentDueDate"`
	Currency       *string    `json:"currency"`
}

// Apply writes the patch onto a. Balance is taken at face value; credit
// fields are ignored for non-credit accounts.
func (p AccountPatch) Apply(a *Account) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) != "" {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Balance != nil {
		a.Balance = *p.Balance
	}
	if a.IsCredit() {
		if p.CreditLimit != nil {
			a.CreditLimit = *p.CreditLimit
		}
		if p.PaymentDueDate != nil {
			a.PaymentDueDate = *p.PaymentDueDate
		}
	}
	if p.Currency != nil && strings.TrimSpace(*p.Currency) != "" {
		a.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	return a.Validate()
}

// Direction is income or expense.
type Direction string

const (
	Income  Direction = "income"
	Expense Direction = "expense"
)

// Valid reports whether d is income or expense.
func (d Direction) Valid() bool {
	return d == Income || d == Expense
}

// Delta is the signed balance change of amount moving in direction d.
// The same rule applies to every account kind.
func (d Direction) Delta(amount float64) decimal.Decimal {
	v := decimal.NewFromFloat(amount)
	if d == Income {
		return v
	}
	return v.Neg()
}

const (
	MinRating = 0
	MaxRating = 10
)

// ValidateRating rejects ratings outside [0, 10].
func ValidateRating(r float64) error {
	if math.IsNaN(r) || r < MinRating || r > MaxRating {
		return Invalid("rating", "must be between 0 and 10")
	}
	return nil
}

// ValidateAmount rejects negative or non-finite magnitudes. Zero is allowed.
func ValidateAmount(amount float64) error {
	if !finite(amount) || amount < 0 {
		return Invalid("amount", "must be a non-negative number")
	}
	return nil
}

// Transaction is a single dated monetary event on one account.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	AccountID   string    `json:"accountId"`
	Amount      float64   `json:"amount"`
	Type        Direction `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`

	// Populated on reads when the account still exists.
	AccountName *string      `json:"accountName,omitempty"`
	AccountKind *AccountKind `json:"accountType,omitempty"`
}

// Delta is the signed effect of t on its account balance.
func (t *Transaction) Delta() decimal.Decimal {
	return t.Type.Delta(t.Amount)
}

// Validate checks the fields a persisted transaction must carry.
func (t *Transaction) Validate() error {
	if t.AccountID == "" {
		return Invalid("accountId", "is required")
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return Invalid("type", "must be income or expense")
	}
	return ValidateRating(t.Rating)
}

// TransactionFilter narrows transaction listings. Zero values match all.
type TransactionFilter struct {
	Category  string
	Type      Direction
	AccountID string
	Start     *time.Time
	End       *time.Time
}

// Match reports whether t passes the filter.
func (f TransactionFilter) Match(t *Transaction) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.AccountID != "" && t.AccountID != f.AccountID {
		return false
	}
	if f.Start != nil && t.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && t.Date.After(*f.End) {
		return false
	}
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
