package model

// BudgetItem is a single line item in the city budget.
type BudgetItem struct {
	Name      string
	Allocated float64
	Spent     float64
	Category  Category
}

// Remaining is the unspent portion of the allocation. Negative when
// the line item is overspent.
func (b BudgetItem) Remaining() float64 {
	return b.Allocated - b.Spent
}

// OverBudget reports whether spending exceeds the allocation.
func (b BudgetItem) OverBudget() bool {
	return b.Spent > b.Allocated
}
