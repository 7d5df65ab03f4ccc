package analytics

import (
	"time"

	"alphawealth/internal/core"
)

// Expense intensity thresholds in cents; each boundary starts the next tier.
var intensityThresholds = [...]int64{5000, 10000, 25000, 50000}

type (
	// DayCell is one cell of the calendar grid, including leading and
	// trailing days of adjacent months needed to complete full weeks.
	DayCell struct {
		Date       core.Date  `json:"date"`
		InMonth    bool       `json:"in_month"`
		Income     core.Money `json:"income"`
		Expense    core.Money `json:"expense"`
		Count      int        `json:"count"`
		Intensity  int        `json:"intensity"`
		Selectable bool       `json:"selectable"`
	}

	// MonthGrid is the full Sunday-start calendar for one visible month.
	MonthGrid struct {
		Year    int        `json:"year"`
		Month   int        `json:"month"`
		Days    []DayCell  `json:"days"`
		Income  core.Money `json:"income"`  // visible-month totals
		Expense core.Money `json:"expense"`
	}
)

// ExpenseIntensity maps an expense magnitude to a discrete visual tier,
// 0 (no spend) through 5.
func ExpenseIntensity(cents int64) int {
	if cents <= 0 {
		return 0
	}
	for i, limit := range intensityThresholds {
		if cents < limit {
			return i + 1
		}
	}
	return len(intensityThresholds) + 1
}

// CalendarMonth groups transactions by exact day and lays out the calendar
// grid for the given month. Weeks start on Sunday; cells outside the visible
// month are included to complete the first and last weeks. A day is
// selectable only if at least one transaction falls on it.
func CalendarMonth(txns []core.Transaction, year int, month time.Month) MonthGrid {
	type dayTotal struct {
		income, expense int64
		count           int
	}
	byDay := map[string]*dayTotal{}
	for _, tx := range txns {
		key := tx.Date.String()
		dt, ok := byDay[key]
		if !ok {
			dt = &dayTotal{}
			byDay[key] = dt
		}
		dt.count++
		switch tx.Type {
		case core.TypeIncome:
			dt.income += tx.Amount.Cents
		case core.TypeExpense:
			dt.expense += tx.Amount.Cents
		}
	}

	grid := MonthGrid{Year: year, Month: int(month)}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	gridStart := monthStart.AddDate(0, 0, -int(monthStart.Weekday()))
	gridEnd := monthEnd.AddDate(0, 0, int(time.Saturday-monthEnd.Weekday()))

	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		cell := DayCell{
			Date:    core.DateOf(day),
			InMonth: day.Month() == month,
		}
		if dt, ok := byDay[cell.Date.String()]; ok {
			cell.Income.Cents = dt.income
			cell.Expense.Cents = dt.expense
			cell.Count = dt.count
			cell.Selectable = dt.count > 0
			if cell.InMonth {
				grid.Income.Cents += dt.income
				grid.Expense.Cents += dt.expense
			}
		}
		cell.Intensity = ExpenseIntensity(cell.Expense.Cents)
		grid.Days = append(grid.Days, cell)
	}
	return grid
}
