package http

import (
	"time"

	"moneylog/internal/core"
	"moneylog/internal/progression"
	"moneylog/internal/session"
)

type categoryView struct {
	ID string `json:"id"`
	core.CategoryInfo
}

type categoriesView struct {
	Expense []categoryView `json:"expense"`
	Income  []categoryView `json:"income"`
}

func newCategoryViews(cats []core.Category) []categoryView {
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		info, _ := c.Info()
		out = append(out, categoryView{ID: c.String(), CategoryInfo: info})
	}
	return out
}

type transactionView struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	Formatted string    `json:"formatted"`
	Category  string    `json:"category"`
	Label     string    `json:"label"`
	Emoji     string    `json:"emoji"`
	Memo      string    `json:"memo"`
	Date      time.Time `json:"date"`
	IsIncome  bool      `json:"is_income"`
}

func newTransactionView(tx core.Transaction) transactionView {
	info, _ := tx.Category.Info()
	return transactionView{
		ID:        tx.ID.String(),
		Amount:    int64(tx.Amount),
		Formatted: tx.Amount.String(),
		Category:  tx.Category.String(),
		Label:     info.Label,
		Emoji:     info.Emoji,
		Memo:      tx.Memo,
		Date:      tx.Date,
		IsIncome:  tx.IsIncome,
	}
}

func newTransactionViews(txs []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionView(tx))
	}
	return out
}

type dayView struct {
	Date         string            `json:"date"`
	Total        int64             `json:"total"`
	Transactions []transactionView `json:"transactions"`
}

type daySummaryView struct {
	Date          string `json:"date"`
	Total         int64  `json:"total"`
	Formatted     string `json:"formatted"`
	IncludeIncome bool   `json:"include_income"`
}

type categoryAmountView struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Emoji    string `json:"emoji"`
	Amount   int64  `json:"amount"`
}

type monthView struct {
	Year       int                  `json:"year"`
	Month      int                  `json:"month"`
	Total      int64                `json:"total"`
	Income     int64                `json:"income"`
	Balance    int64                `json:"balance"`
	ByCategory []categoryAmountView `json:"by_category"`
}

func newMonthView(ov core.MonthOverview) monthView {
	v := monthView{
		Year:       ov.Year,
		Month:      ov.Month,
		Total:      int64(ov.Total),
		Income:     int64(ov.Income),
		Balance:    int64(ov.Balance()),
		ByCategory: make([]categoryAmountView, 0, len(ov.ByCategory)),
	}
	for _, ca := range ov.ByCategory {
		info, _ := ca.Category.Info()
		v.ByCategory = append(v.ByCategory, categoryAmountView{
			Category: ca.Category.String(),
			Label:    info.Label,
			Emoji:    info.Emoji,
			Amount:   int64(ca.Amount),
		})
	}
	return v
}

type budgetView struct {
	Budget        int64   `json:"budget"`
	Spent         int64   `json:"spent"`
	Remaining     int64   `json:"remaining"`
	Progress      float64 `json:"progress"`
	DailyBudget   int64   `json:"daily_budget"`
	TodaySpent    int64   `json:"today_spent"`
	DailyProgress float64 `json:"daily_progress"`
	OverBudget    bool    `json:"over_budget"`
}

func newBudgetView(st session.BudgetStatus) budgetView {
	return budgetView{
		Budget:        int64(st.Budget),
		Spent:         int64(st.Spent),
		Remaining:     int64(st.Remaining),
		Progress:      st.Progress,
		DailyBudget:   int64(st.DailyBudget),
		TodaySpent:    int64(st.TodaySpent),
		DailyProgress: st.DailyProgress,
		OverBudget:    st.Remaining < 0,
	}
}

type progressionView struct {
	progression.Snapshot
	XPForCurrentLevel int     `json:"xp_for_current_level"`
	XPProgress        float64 `json:"xp_progress"`
	XPToNextLevel     int     `json:"xp_to_next_level"`
	UnlockedCount     int     `json:"unlocked_count"`
}

func newProgressionView(s progression.Snapshot) progressionView {
	return progressionView{
		Snapshot:          s,
		XPForCurrentLevel: s.XPForCurrentLevel(),
		XPProgress:        s.XPProgress(),
		XPToNextLevel:     s.XPToNextLevel(),
		UnlockedCount:     s.UnlockedCount(),
	}
}

type outcomeView struct {
	LevelsGained int             `json:"levels_gained"`
	Unlocked     []string        `json:"unlocked"`
	Progression  progressionView `json:"progression"`
}

type saveView struct {
	Transaction transactionView `json:"transaction"`
	Progress    *outcomeView    `json:"progress,omitempty"`
}

func newSaveView(res session.SaveResult) saveView {
	v := saveView{Transaction: newTransactionView(res.Transaction)}
	if p := res.Progress; p != nil {
		unlocked := p.Unlocked
		if unlocked == nil {
			unlocked = []string{}
		}
		v.Progress = &outcomeView{
			LevelsGained: p.LevelsGained,
			Unlocked:     unlocked,
			Progression:  newProgressionView(p.Snapshot),
		}
	}
	return v
}
