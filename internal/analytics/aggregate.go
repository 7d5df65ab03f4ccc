// Package analytics turns flat transaction collections into the time-bucketed
// and category-bucketed summaries the views render. Every function here is a
// pure, idempotent computation over its inputs; callers may re-run them on
// every refresh or change notification.
package analytics

import (
	"sort"
	"time"

	"alphawealth/internal/core"
)

const (
	// UncategorizedLabel groups transactions whose category is missing or
	// no longer exists.
	UncategorizedLabel = "Uncategorized"

	maxCategorySlices = 8
	maxTopCategories  = 5
)

type (
	// Totals holds income and expense sums over a transaction set.
	// Transfer rows count toward neither.
	Totals struct {
		Income  core.Money `json:"income"`
		Expense core.Money `json:"expense"`
	}

	// CategorySlice is one wedge of the spending distribution chart.
	CategorySlice struct {
		Name   string     `json:"name"`
		Amount core.Money `json:"amount"`
		Color  string     `json:"color"`
	}

	// TopCategory is one row of the top-spending list; Percent is relative
	// to the largest category, for progress-bar rendering.
	TopCategory struct {
		Name    string     `json:"name"`
		Amount  core.Money `json:"amount"`
		Color   string     `json:"color"`
		Percent float64    `json:"percent"`
	}

	// MonthPoint is one calendar month of the income/expense trend series.
	MonthPoint struct {
		Label   string     `json:"label"` // short month name, e.g. "Jan"
		Year    int        `json:"year"`
		Month   int        `json:"month"` // 1-12
		Income  core.Money `json:"income"`
		Expense core.Money `json:"expense"`
		Net     core.Money `json:"net"`
	}

	// Comparison contrasts the current calendar month with the previous one.
	Comparison struct {
		CurrentMonth    string     `json:"current_month"`
		PreviousMonth   string     `json:"previous_month"`
		CurrentIncome   core.Money `json:"current_income"`
		CurrentExpense  core.Money `json:"current_expense"`
		PreviousIncome  core.Money `json:"previous_income"`
		PreviousExpense core.Money `json:"previous_expense"`
		IncomeChange    float64    `json:"income_change"`  // percent
		ExpenseChange   float64    `json:"expense_change"` // percent
		NetSavings      core.Money `json:"net_savings"`
	}
)

// TotalsByType sums transaction amounts by type. Stored amounts are
// non-negative magnitudes; transfer rows are excluded from both sums.
func TotalsByType(txns []core.Transaction) Totals {
	var t Totals
	for _, tx := range txns {
		switch tx.Type {
		case core.TypeIncome:
			t.Income.Cents += tx.Amount.Cents
		case core.TypeExpense:
			t.Expense.Cents += tx.Amount.Cents
		}
	}
	return t
}

// SpendingByCategory groups expense transactions by category name, sums each
// group, attaches the category's display color, and returns the largest
// groups sorted descending, truncated to eight. Ties keep first-seen order.
func SpendingByCategory(txns []core.Transaction, categories []core.Category) []CategorySlice {
	slices := groupExpenses(txns)
	for i := range slices {
		if c, ok := categoryByName(categories, slices[i].Name); ok {
			slices[i].Color = c.Color
		}
	}
	if len(slices) > maxCategorySlices {
		slices = slices[:maxCategorySlices]
	}
	return slices
}

// TopCategories returns the five largest expense groups with a
// percent-of-maximum for each. Zero expense transactions yields an empty
// list so callers can render an empty state.
func TopCategories(txns []core.Transaction) []TopCategory {
	slices := groupExpenses(txns)
	if len(slices) == 0 {
		return nil
	}
	if len(slices) > maxTopCategories {
		slices = slices[:maxTopCategories]
	}
	max := slices[0].Amount.Cents
	top := make([]TopCategory, len(slices))
	for i, s := range slices {
		pct := 0.0
		if max > 0 {
			pct = float64(s.Amount.Cents) / float64(max) * 100
		}
		top[i] = TopCategory{Name: s.Name, Amount: s.Amount, Color: s.Color, Percent: pct}
	}
	return top
}

// groupExpenses buckets expense rows by category name, preserving first-seen
// order for equal sums, sorted descending by amount.
func groupExpenses(txns []core.Transaction) []CategorySlice {
	byName := map[string]int{}
	var slices []CategorySlice
	for _, tx := range txns {
		if tx.Type != core.TypeExpense {
			continue
		}
		name := tx.CategoryName
		if name == "" {
			name = UncategorizedLabel
		}
		idx, seen := byName[name]
		if !seen {
			color := tx.CategoryColor
			if color == "" {
				color = core.DefaultCategoryColor
			}
			byName[name] = len(slices)
			slices = append(slices, CategorySlice{Name: name, Color: color})
			idx = len(slices) - 1
		}
		slices[idx].Amount.Cents += tx.Amount.Cents
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Amount.Cents > slices[j].Amount.Cents
	})
	return slices
}

// MonthlySeries produces months ordered points, oldest to newest, one per
// calendar month ending at the month containing now. Months with no
// transactions appear with zero sums. Buckets are calendar-aligned, not
// rolling 30-day windows.
func MonthlySeries(txns []core.Transaction, now time.Time, months int) []MonthPoint {
	if months < 1 {
		return nil
	}
	points := make([]MonthPoint, months)
	index := map[string]int{}
	// Step from the first of now's month: AddDate on a month-end day
	// normalizes into the wrong month (Mar 31 minus one month is Mar 2).
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		first := anchor.AddDate(0, i-(months-1), 0)
		points[i] = MonthPoint{
			Label: first.Format("Jan"),
			Year:  first.Year(),
			Month: int(first.Month()),
		}
		index[first.Format("2006-01")] = i
	}
	for _, tx := range txns {
		i, ok := index[tx.Date.Format("2006-01")]
		if !ok {
			continue
		}
		switch tx.Type {
		case core.TypeIncome:
			points[i].Income.Cents += tx.Amount.Cents
		case core.TypeExpense:
			points[i].Expense.Cents += tx.Amount.Cents
		}
	}
	for i := range points {
		points[i].Net.Cents = points[i].Income.Cents - points[i].Expense.Cents
	}
	return points
}

// MonthComparison sums the current and previous calendar months and computes
// the percentage change for each type. A zero previous-month sum yields a
// change of 0 rather than dividing by zero.
func MonthComparison(txns []core.Transaction, now time.Time) Comparison {
	// Same month-end hazard as the series: step back from the first of the
	// month, never from now itself.
	cur := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := cur.AddDate(0, -1, 0)
	curKey := cur.Format("2006-01")
	prevKey := prev.Format("2006-01")

	var cmp Comparison
	cmp.CurrentMonth = now.Format("January")
	cmp.PreviousMonth = prev.Format("January")

	for _, tx := range txns {
		key := tx.Date.Format("2006-01")
		switch {
		case key == curKey && tx.Type == core.TypeIncome:
			cmp.CurrentIncome.Cents += tx.Amount.Cents
		case key == curKey && tx.Type == core.TypeExpense:
			cmp.CurrentExpense.Cents += tx.Amount.Cents
		case key == prevKey && tx.Type == core.TypeIncome:
			cmp.PreviousIncome.Cents += tx.Amount.Cents
		case key == prevKey && tx.Type == core.TypeExpense:
			cmp.PreviousExpense.Cents += tx.Amount.Cents
		}
	}

	cmp.IncomeChange = percentChange(cmp.CurrentIncome.Cents, cmp.PreviousIncome.Cents)
	cmp.ExpenseChange = percentChange(cmp.CurrentExpense.Cents, cmp.PreviousExpense.Cents)
	cmp.NetSavings.Cents = cmp.CurrentIncome.Cents - cmp.CurrentExpense.Cents
	return cmp
}

func percentChange(current, previous int64) float64 {
	if previous <= 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

func categoryByName(categories []core.Category, name string) (core.Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return core.Category{}, false
}
