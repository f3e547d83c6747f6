package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int
	Month      int // 1-12
	Total      Money
	ByCategory []CategoryAmount
}

// BudgetStatus compares what was spent in a category against its monthly limit.
type BudgetStatus struct {
	Category  string
	Limit     Money
	Spent     Money
	Remaining Money
	Over      bool
}

// NewBudgetStatus derives the remaining amount and overspend flag.
func NewBudgetStatus(category string, limit, spent Money) BudgetStatus {
	return BudgetStatus{
		Category:  category,
		Limit:     limit,
		Spent:     spent,
		Remaining: Money{Cents: limit.Cents - spent.Cents},
		Over:      spent.Cents > limit.Cents,
	}
}
