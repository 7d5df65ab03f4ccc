package core

import (
	"errors"
	"strings"
	"time"
)

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCreditCard AccountType = "credit_card"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"

	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"

	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"

	PeriodMonthly BudgetPeriod = "monthly"
	PeriodCustom  BudgetPeriod = "custom"
)

// DefaultCategoryColor is used when a transaction has no category or the
// category no longer exists.
const DefaultCategoryColor = "#6b7280"

type (
	AccountType     string
	CategoryType    string
	TransactionType string
	BudgetPeriod    string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Account struct {
		ID      string
		UserID  string
		Name    string
		Type    AccountType
		Balance Money
		Color   string
	}

	Category struct {
		ID        string
		UserID    string
		Name      string
		Type      CategoryType
		Color     string
		IsDefault bool
	}

	Transaction struct {
		ID          string
		UserID      string
		AccountID   string
		CategoryID  string // empty when uncategorized
		Amount      Money  // stored magnitude, always > 0
		Type        TransactionType
		Description string
		Date        Date

		// Joined display fields, populated by list queries.
		AccountName   string
		CategoryName  string
		CategoryColor string
	}

	Budget struct {
		ID         string
		UserID     string
		Name       string
		Type       TransactionType
		Amount     Money
		StartDate  Date
		EndDate    Date
		Period     BudgetPeriod
		Rollover   bool
		AccountID  string // optional
		CategoryID string // optional
		Items      []BudgetItem
	}

	BudgetItem struct {
		ID         string
		BudgetID   string
		CategoryID string // empty when the category was deleted
		Planned    Money
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidDateRange   = errors.New("end date before start date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyName          = errors.New("empty name")
	ErrMissingAccount     = errors.New("missing account selection")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidCategory    = errors.New("invalid category type")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidPeriod      = errors.New("invalid budget period")
	ErrDefaultCategory    = errors.New("default categories cannot be deleted")
)

// NewDate creates a day-granularity date (UTC midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to day granularity.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Before reports whether d falls on an earlier day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls on a later day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Within reports whether d falls inside [start, end], inclusive on both ends.
func (d Date) Within(start, end Date) bool {
	return !d.Time.Before(start.Time) && !d.Time.After(end.Time)
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountCreditCard, AccountCash, AccountInvestment, AccountOther:
		return true
	}
	return false
}

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

func (t TransactionType) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

func (p BudgetPeriod) Valid() bool {
	return p == PeriodMonthly || p == PeriodCustom
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !c.Type.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrMissingAccount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// BalanceDelta returns the signed cents this transaction applies to its
// account's balance. Transfers are balance-neutral at the single-account
// level in this model.
func (t Transaction) BalanceDelta() int64 {
	switch t.Type {
	case TypeIncome:
		return t.Amount.Cents
	case TypeExpense:
		return -t.Amount.Cents
	default:
		return 0
	}
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if len(b.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !b.Type.Valid() {
		return ErrInvalidType
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	if err := b.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if err := b.EndDate.Validate(); err != nil {
		return errors.New("invalid end date: " + err.Error())
	}
	if b.EndDate.Before(b.StartDate) {
		return ErrInvalidDateRange
	}
	// A zero target is a valid "track only" budget; negatives are not.
	if b.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	for _, item := range b.Items {
		if item.Planned.Cents < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

// Active reports whether today falls within the budget's date range.
func (b Budget) Active(today Date) bool {
	return today.Within(b.StartDate, b.EndDate)
}

// Past reports whether the budget's range ended before today.
func (b Budget) Past(today Date) bool {
	return b.EndDate.Before(today)
}
