package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"moneylog/internal/core"
	"moneylog/internal/ledger"
	applog "moneylog/internal/log"
	"moneylog/internal/session"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(categoriesView{
		Expense: newCategoryViews(core.ExpenseCategories()),
		Income:  newCategoryViews(core.IncomeCategories()),
	}).Write(w)
}

// handleListTransactions returns one day when date is given, otherwise every
// day group newest first.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	l := s.session.Ledger()
	loc := l.Location()

	if v := r.URL.Query().Get("date"); v != "" {
		day, err := parseDate(v, loc)
		if err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
		defer cancel()

		txs, err := s.reports.ListByDay(ctx, day)
		if err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Day listing error",
				"date", day.Format(dateLayout),
				applog.FieldError, err.Error())
			InternalServerError("failed to load transactions").Write(w)
			return
		}
		NewJSONResponse().Body(dayView{
			Date:         day.Format(dateLayout),
			Total:        int64(expenseTotal(txs)),
			Transactions: newTransactionViews(txs),
		}).Write(w)
		return
	}

	groups := l.GroupedByDate()
	days := make([]dayView, 0, len(groups))
	for _, g := range groups {
		days = append(days, dayView{
			Date:         g.Date.Format(dateLayout),
			Total:        int64(expenseTotal(g.Transactions)),
			Transactions: newTransactionViews(g.Transactions),
		})
	}
	NewJSONResponse().Body(map[string]any{"days": days}).Write(w)
}

func expenseTotal(txs []core.Transaction) core.Yen {
	var total core.Yen
	for _, tx := range txs {
		if !tx.IsIncome {
			total += tx.Amount
		}
	}
	return total
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())
	l := s.session.Ledger()

	entry, err := ParseEntry(NewRequestBodyParser(w, r), l.Now(), l.Location())
	if err != nil {
		if isFieldError(err) {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		logger.WarnContext(r.Context(), "Malformed entry request", applog.NewFields().
			WithOperation(applog.OpParse).
			WithError(err).
			ToSlice()...)
		BadRequestError("malformed request body").Write(w)
		return
	}

	res, err := s.session.Save(entry)
	if err != nil {
		if isValidationError(err) {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		logger.ErrorContext(r.Context(), "Failed to save entry", applog.FieldError, err.Error())
		InternalServerError("failed to save entry").Write(w)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+res.Transaction.ID.String()).
		Body(newSaveView(res)).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if !s.session.CanDelete() {
		MethodNotAllowedError(session.ErrDeleteUnsupported.Error(), "GET, POST").Write(w)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequestError("invalid transaction id").Write(w)
		return
	}

	if err := s.session.Delete(id); err != nil {
		if errors.Is(err, session.ErrDeleteUnsupported) {
			MethodNotAllowedError(err.Error(), "GET, POST").Write(w)
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to delete entry",
			applog.FieldTransactionID, id.String(),
			applog.FieldError, err.Error())
		InternalServerError("failed to delete entry").Write(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDaySummary(w http.ResponseWriter, r *http.Request) {
	l := s.session.Ledger()
	q := r.URL.Query()

	day := l.Now()
	if v := q.Get("date"); v != "" {
		parsed, err := parseDate(v, l.Location())
		if err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		day = parsed
	}

	includeIncome := false
	if v := q.Get("include_income"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			BadRequestError("invalid include_income value").Write(w)
			return
		}
		includeIncome = b
	}

	var total core.Yen
	if includeIncome {
		total = l.TotalOnDate(day, ledger.IncludeIncome())
	} else {
		total = l.TotalOnDate(day)
	}

	NewJSONResponse().Body(daySummaryView{
		Date:          day.In(l.Location()).Format(dateLayout),
		Total:         int64(total),
		Formatted:     total.String(),
		IncludeIncome: includeIncome,
	}).Write(w)
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r.URL.Query(), s.session.Ledger().Now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	ov, err := s.reports.ReadMonthOverview(ctx, year, month)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Month overview error",
			applog.FieldYear, year,
			applog.FieldMonth, month,
			applog.FieldError, err.Error())
		InternalServerError("failed to load month overview").Write(w)
		return
	}
	NewJSONResponse().Body(newMonthView(ov)).Write(w)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(newBudgetView(s.session.BudgetStatus())).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := ParseBudget(NewRequestBodyParser(w, r))
	if err != nil {
		if isFieldError(err) {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		BadRequestError("malformed request body").Write(w)
		return
	}
	if err := s.session.SetBudget(budget); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	NewJSONResponse().Body(newBudgetView(s.session.BudgetStatus())).Write(w)
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	engine := s.session.Progression()
	if engine == nil {
		NotFoundError("progression is only available in the gamified variant").Write(w)
		return
	}
	NewJSONResponse().Body(newProgressionView(engine.Snapshot())).Write(w)
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrUnknownCategory) ||
		errors.Is(err, core.ErrMemoTooLong)
}
