package core

import "time"

// CategoryAmount is a total aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   Yen
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int
	Month      int // 1-12
	Total      Yen
	Income     Yen
	ByCategory []CategoryAmount
}

// Balance is income minus expense for the month.
func (m MonthOverview) Balance() Yen {
	return m.Income - m.Total
}

// DayGroup holds the transactions of one calendar day.
type DayGroup struct {
	Date         time.Time // midnight, local calendar
	Transactions []Transaction
}
