package analytics

import (
	"testing"
	"time"

	"alphawealth/internal/core"
)

func TestExpenseIntensity(t *testing.T) {
	cases := []struct {
		cents int64
		want  int
	}{
		{0, 0},
		{-100, 0},
		{1, 1},
		{4999, 1},
		{5000, 2},
		{9999, 2},
		{10000, 3},
		{24999, 3},
		{25000, 4},
		{49999, 4},
		{50000, 5},
		{1000000, 5},
	}
	for _, tc := range cases {
		if got := ExpenseIntensity(tc.cents); got != tc.want {
			t.Fatalf("%d cents: intensity = %d, want %d", tc.cents, got, tc.want)
		}
	}
}

func TestCalendarMonthGridShape(t *testing.T) {
	// March 2024 starts on a Friday and ends on a Sunday: the Sunday-start
	// grid needs 5 leading and 6 trailing adjacent-month cells.
	grid := CalendarMonth(nil, 2024, time.March)
	if len(grid.Days)%7 != 0 {
		t.Fatalf("grid length %d is not a multiple of 7", len(grid.Days))
	}
	if len(grid.Days) != 42 {
		t.Fatalf("expected 42 cells for March 2024, got %d", len(grid.Days))
	}
	if wd := grid.Days[0].Date.Weekday(); wd != time.Sunday {
		t.Fatalf("grid must start on Sunday, got %v", wd)
	}
	if grid.Days[0].InMonth {
		t.Fatalf("leading cell should belong to the previous month")
	}
	if got := grid.Days[0].Date.String(); got != "2024-02-25" {
		t.Fatalf("first cell = %s, want 2024-02-25", got)
	}
	if got := grid.Days[len(grid.Days)-1].Date.String(); got != "2024-04-06" {
		t.Fatalf("last cell = %s, want 2024-04-06", got)
	}
	var inMonth int
	for _, cell := range grid.Days {
		if cell.InMonth {
			inMonth++
		}
		if cell.Selectable {
			t.Fatalf("no transactions, nothing should be selectable")
		}
	}
	if inMonth != 31 {
		t.Fatalf("expected 31 in-month cells, got %d", inMonth)
	}
}

func TestCalendarMonthBucketsAndTotals(t *testing.T) {
	txns := []core.Transaction{
		tx(core.NewDate(2024, 3, 5), core.TypeExpense, 7500, "Food"),
		tx(core.NewDate(2024, 3, 5), core.TypeIncome, 2000, "Salary"),
		tx(core.NewDate(2024, 3, 12), core.TypeExpense, 100, "Food"),
		// Adjacent-month day visible on the grid: counted in its cell but
		// excluded from the month totals.
		tx(core.NewDate(2024, 2, 26), core.TypeExpense, 9999, "Food"),
	}
	grid := CalendarMonth(txns, 2024, time.March)

	if grid.Expense.Cents != 7600 || grid.Income.Cents != 2000 {
		t.Fatalf("month totals = %+v", grid)
	}

	var day5, day12, feb26 *DayCell
	for i := range grid.Days {
		switch grid.Days[i].Date.String() {
		case "2024-03-05":
			day5 = &grid.Days[i]
		case "2024-03-12":
			day12 = &grid.Days[i]
		case "2024-02-26":
			feb26 = &grid.Days[i]
		}
	}
	if day5 == nil || day12 == nil || feb26 == nil {
		t.Fatalf("expected cells missing from grid")
	}
	if day5.Expense.Cents != 7500 || day5.Income.Cents != 2000 || day5.Count != 2 {
		t.Fatalf("unexpected day 5 cell %+v", day5)
	}
	if day5.Intensity != 2 || !day5.Selectable {
		t.Fatalf("day 5 intensity/selectable wrong: %+v", day5)
	}
	if day12.Intensity != 1 {
		t.Fatalf("day 12 intensity = %d, want 1", day12.Intensity)
	}
	if !feb26.Selectable || feb26.InMonth {
		t.Fatalf("adjacent-month cell wrong: %+v", feb26)
	}
}
