package analytics

import (
	"alphawealth/internal/core"
)

type (
	// BudgetStatus is the computed progress of one budget over its date range.
	BudgetStatus struct {
		BudgetID   string             `json:"budget_id"`
		Name       string             `json:"name"`
		Target     core.Money         `json:"target"` // rollover-adjusted when applicable
		Spent      core.Money         `json:"spent"`
		Percent    float64            `json:"percent"` // clamped to [0, 100] for display
		OverBudget bool               `json:"over_budget"`
		Items      []BudgetItemStatus `json:"items,omitempty"`
	}

	// BudgetItemStatus tracks one planned sub-category within a budget.
	BudgetItemStatus struct {
		ItemID     string     `json:"item_id"`
		CategoryID string     `json:"category_id,omitempty"`
		Planned    core.Money `json:"planned"`
		Spent      core.Money `json:"spent"`
		Percent    float64    `json:"percent"`
		OverBudget bool       `json:"over_budget"`
	}
)

// BudgetProgress computes spend against a budget's target from the full
// transaction set; range filtering happens here so callers can pass the same
// collection they use for the other aggregations.
//
// The display percentage is clamped to [0, 100]; OverBudget stays true
// whenever spent exceeds the target regardless of the clamp. A zero target
// reports 0% when nothing was spent and 100% + OverBudget otherwise.
//
// When Rollover is set, the previous period's unspent amount (never negative)
// is added to the target. For monthly budgets the previous period is the
// preceding calendar month; for custom ranges it is the window of equal
// length immediately before StartDate.
func BudgetProgress(b core.Budget, txns []core.Transaction) BudgetStatus {
	status := BudgetStatus{BudgetID: b.ID, Name: b.Name, Target: b.Amount}

	if b.Rollover {
		prevStart, prevEnd := previousPeriod(b)
		prevSpent := sumMatching(b, txns, prevStart, prevEnd)
		if unspent := b.Amount.Cents - prevSpent; unspent > 0 {
			status.Target.Cents += unspent
		}
	}

	status.Spent.Cents = sumMatching(b, txns, b.StartDate, b.EndDate)
	status.Percent, status.OverBudget = progress(status.Spent.Cents, status.Target.Cents)

	for _, item := range b.Items {
		is := BudgetItemStatus{ItemID: item.ID, CategoryID: item.CategoryID, Planned: item.Planned}
		for _, tx := range txns {
			if tx.Type != core.TypeExpense || tx.CategoryID == "" || tx.CategoryID != item.CategoryID {
				continue
			}
			if !tx.Date.Within(b.StartDate, b.EndDate) {
				continue
			}
			is.Spent.Cents += tx.Amount.Cents
		}
		is.Percent, is.OverBudget = progress(is.Spent.Cents, is.Planned.Cents)
		status.Items = append(status.Items, is)
	}
	return status
}

// sumMatching totals transactions of the budget's type within [start, end],
// honoring the optional category and account links.
func sumMatching(b core.Budget, txns []core.Transaction, start, end core.Date) int64 {
	typ := b.Type
	if typ == "" {
		typ = core.TypeExpense
	}
	var sum int64
	for _, tx := range txns {
		if tx.Type != typ {
			continue
		}
		if b.CategoryID != "" && tx.CategoryID != b.CategoryID {
			continue
		}
		if b.AccountID != "" && tx.AccountID != b.AccountID {
			continue
		}
		if !tx.Date.Within(start, end) {
			continue
		}
		sum += tx.Amount.Cents
	}
	return sum
}

func progress(spent, target int64) (percent float64, over bool) {
	if target <= 0 {
		if spent > 0 {
			return 100, true
		}
		return 0, false
	}
	percent = float64(spent) / float64(target) * 100
	if percent > 100 {
		percent = 100
	}
	return percent, spent > target
}

func previousPeriod(b core.Budget) (core.Date, core.Date) {
	if b.Period == core.PeriodMonthly {
		first := core.NewDate(b.StartDate.Year(), int(b.StartDate.Month()), 1)
		prevFirst := core.DateOf(first.AddDate(0, -1, 0))
		prevLast := core.DateOf(first.AddDate(0, 0, -1))
		return prevFirst, prevLast
	}
	days := int(b.EndDate.Sub(b.StartDate.Time).Hours()/24) + 1
	prevEnd := core.DateOf(b.StartDate.AddDate(0, 0, -1))
	prevStart := core.DateOf(prevEnd.AddDate(0, 0, -(days - 1)))
	return prevStart, prevEnd
}
