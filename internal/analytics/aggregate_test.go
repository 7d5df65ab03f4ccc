package analytics

import (
	"testing"
	"time"

	"alphawealth/internal/core"
)

func tx(date core.Date, typ core.TransactionType, cents int64, category string) core.Transaction {
	return core.Transaction{
		Date:         date,
		Type:         typ,
		Amount:       core.Money{Cents: cents},
		CategoryName: category,
	}
}

func TestTotalsByTypeEmpty(t *testing.T) {
	got := TotalsByType(nil)
	if got.Income.Cents != 0 || got.Expense.Cents != 0 {
		t.Fatalf("empty input should yield zero totals, got %+v", got)
	}
}

func TestTotalsByTypeExcludesTransfers(t *testing.T) {
	txns := []core.Transaction{
		tx(core.NewDate(2024, 1, 1), core.TypeIncome, 1000, ""),
		tx(core.NewDate(2024, 1, 2), core.TypeExpense, 300, ""),
		tx(core.NewDate(2024, 1, 3), core.TypeTransfer, 9999, ""),
	}
	got := TotalsByType(txns)
	if got.Income.Cents != 1000 || got.Expense.Cents != 300 {
		t.Fatalf("got %+v", got)
	}
	// income + expense never exceeds the sum of all amounts
	var all int64
	for _, tr := range txns {
		all += tr.Amount.Cents
	}
	if got.Income.Cents+got.Expense.Cents > all {
		t.Fatalf("totals exceed amount sum")
	}
}

func TestSpendingByCategory(t *testing.T) {
	categories := []core.Category{
		{Name: "Food", Type: core.CategoryExpense, Color: "#ef4444"},
		{Name: "Rent", Type: core.CategoryExpense, Color: "#3b82f6"},
	}
	txns := []core.Transaction{
		tx(core.NewDate(2024, 5, 1), core.TypeExpense, 500, "Food"),
		tx(core.NewDate(2024, 5, 2), core.TypeExpense, 2000, "Rent"),
		tx(core.NewDate(2024, 5, 3), core.TypeExpense, 250, "Food"),
		tx(core.NewDate(2024, 5, 4), core.TypeIncome, 9000, "Salary"), // ignored
	}
	got := SpendingByCategory(txns, categories)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if got[0].Name != "Rent" || got[0].Amount.Cents != 2000 || got[0].Color != "#3b82f6" {
		t.Fatalf("unexpected first group %+v", got[0])
	}
	if got[1].Name != "Food" || got[1].Amount.Cents != 750 {
		t.Fatalf("unexpected second group %+v", got[1])
	}
}

func TestSpendingByCategorySortedAndTruncated(t *testing.T) {
	var txns []core.Transaction
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	for i, name := range names {
		txns = append(txns, tx(core.NewDate(2024, 5, 1), core.TypeExpense, int64((i+1)*100), name))
	}
	got := SpendingByCategory(txns, nil)
	if len(got) != 8 {
		t.Fatalf("expected truncation to 8, got %d", len(got))
	}
	var grouped int64
	for i := range got {
		grouped += got[i].Amount.Cents
		if i > 0 && got[i].Amount.Cents > got[i-1].Amount.Cents {
			t.Fatalf("not sorted descending at %d", i)
		}
	}
	total := TotalsByType(txns).Expense.Cents
	if grouped > total {
		t.Fatalf("grouped sum %d exceeds total expense %d", grouped, total)
	}
}

func TestSpendingByCategoryUnknownCategoryFallsBack(t *testing.T) {
	// Category list empty and the transaction's category no longer resolves:
	// the row lands in "Uncategorized" with the default gray color.
	txns := []core.Transaction{
		tx(core.NewDate(2024, 5, 1), core.TypeExpense, 100, ""),
	}
	got := SpendingByCategory(txns, nil)
	if len(got) != 1 || got[0].Name != UncategorizedLabel || got[0].Color != core.DefaultCategoryColor {
		t.Fatalf("unexpected fallback group %+v", got)
	}
}

func TestTopCategories(t *testing.T) {
	var txns []core.Transaction
	for i, name := range []string{"a", "b", "c", "d", "e", "f"} {
		txns = append(txns, tx(core.NewDate(2024, 5, 1), core.TypeExpense, int64((i+1)*100), name))
	}
	got := TopCategories(txns)
	if len(got) != 5 {
		t.Fatalf("expected 5, got %d", len(got))
	}
	if got[0].Percent != 100 {
		t.Fatalf("top group should be 100%%, got %v", got[0].Percent)
	}
	for _, tc := range got[1:] {
		if tc.Percent <= 0 || tc.Percent > 100 {
			t.Fatalf("percent out of range: %+v", tc)
		}
	}
}

func TestTopCategoriesEmpty(t *testing.T) {
	txns := []core.Transaction{
		tx(core.NewDate(2024, 5, 1), core.TypeIncome, 100, "Salary"),
	}
	if got := TopCategories(txns); len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}

func TestMonthlySeriesScenario(t *testing.T) {
	// Two expenses across January and February, window 2, now = 2024-02-20.
	txns := []core.Transaction{
		tx(core.NewDate(2024, 1, 15), core.TypeExpense, 10000, "Food"),
		tx(core.NewDate(2024, 2, 15), core.TypeExpense, 5000, "Food"),
	}
	now := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	series := MonthlySeries(txns, now, 2)
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	jan, feb := series[0], series[1]
	if jan.Label != "Jan" || jan.Income.Cents != 0 || jan.Expense.Cents != 10000 || jan.Net.Cents != -10000 {
		t.Fatalf("unexpected Jan point %+v", jan)
	}
	if feb.Label != "Feb" || feb.Expense.Cents != 5000 || feb.Net.Cents != -5000 {
		t.Fatalf("unexpected Feb point %+v", feb)
	}
}

func TestMonthlySeriesAlwaysFullWindow(t *testing.T) {
	now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	series := MonthlySeries(nil, now, 12)
	if len(series) != 12 {
		t.Fatalf("expected 12 points, got %d", len(series))
	}
	last := series[len(series)-1]
	if last.Year != 2025 || last.Month != 3 {
		t.Fatalf("last point should be the reference month, got %+v", last)
	}
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		if cur.Year*12+cur.Month != prev.Year*12+prev.Month+1 {
			t.Fatalf("series not chronological at %d: %+v -> %+v", i, prev, cur)
		}
	}
	for _, p := range series {
		if p.Income.Cents != 0 || p.Expense.Cents != 0 || p.Net.Cents != 0 {
			t.Fatalf("empty months must be zero, got %+v", p)
		}
	}
}

func TestMonthlySeriesCalendarAligned(t *testing.T) {
	// A transaction on the first day of the window's oldest month is included
	// even when "now" is mid-month; the window is not a rolling 30 days.
	txns := []core.Transaction{
		tx(core.NewDate(2024, 1, 1), core.TypeIncome, 100, ""),
	}
	now := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	series := MonthlySeries(txns, now, 2)
	if series[0].Income.Cents != 100 {
		t.Fatalf("first-of-month transaction missing from oldest bucket: %+v", series[0])
	}
}

func TestMonthlySeriesMonthEndAnchor(t *testing.T) {
	// March 31 follows a shorter month; the window must still contain one
	// February point and one March point, not two March points.
	txns := []core.Transaction{
		tx(core.NewDate(2024, 2, 15), core.TypeExpense, 10000, "Food"),
		tx(core.NewDate(2024, 3, 15), core.TypeExpense, 5000, "Food"),
	}
	now := time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)
	series := MonthlySeries(txns, now, 2)
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	feb, mar := series[0], series[1]
	if feb.Month != 2 || feb.Expense.Cents != 10000 {
		t.Fatalf("unexpected Feb point %+v", feb)
	}
	if mar.Month != 3 || mar.Expense.Cents != 5000 {
		t.Fatalf("unexpected Mar point %+v", mar)
	}
}

func TestMonthComparison(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		tx(core.NewDate(2024, 3, 5), core.TypeExpense, 15000, ""),
		tx(core.NewDate(2024, 3, 6), core.TypeIncome, 40000, ""),
		tx(core.NewDate(2024, 2, 5), core.TypeExpense, 10000, ""),
		tx(core.NewDate(2024, 2, 6), core.TypeIncome, 50000, ""),
	}
	cmp := MonthComparison(txns, now)
	if cmp.CurrentMonth != "March" || cmp.PreviousMonth != "February" {
		t.Fatalf("unexpected month labels %+v", cmp)
	}
	if cmp.ExpenseChange != 50 {
		t.Fatalf("expense change = %v, want 50", cmp.ExpenseChange)
	}
	if cmp.IncomeChange != -20 {
		t.Fatalf("income change = %v, want -20", cmp.IncomeChange)
	}
	if cmp.NetSavings.Cents != 25000 {
		t.Fatalf("net savings = %d, want 25000", cmp.NetSavings.Cents)
	}
}

func TestMonthComparisonMonthEndAnchor(t *testing.T) {
	// On the last day of March the previous month is February, even though
	// subtracting a month from March 31 lands back in March.
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		tx(core.NewDate(2024, 3, 5), core.TypeExpense, 5000, ""),
		tx(core.NewDate(2024, 2, 15), core.TypeExpense, 10000, ""),
	}
	cmp := MonthComparison(txns, now)
	if cmp.PreviousMonth != "February" {
		t.Fatalf("previous month = %q, want February", cmp.PreviousMonth)
	}
	if cmp.PreviousExpense.Cents != 10000 {
		t.Fatalf("previous expense = %d, want 10000", cmp.PreviousExpense.Cents)
	}
	if cmp.ExpenseChange != -50 {
		t.Fatalf("expense change = %v, want -50", cmp.ExpenseChange)
	}
}

func TestMonthComparisonZeroPrevious(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		tx(core.NewDate(2024, 3, 5), core.TypeExpense, 15000, ""),
	}
	cmp := MonthComparison(txns, now)
	if cmp.ExpenseChange != 0 || cmp.IncomeChange != 0 {
		t.Fatalf("zero previous month must yield 0 change, got %+v", cmp)
	}
}
