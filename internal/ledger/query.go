package ledger

// QueryOption adjusts an aggregate query.
type QueryOption func(*query)

type query struct {
	includeIncome bool
}

// IncludeIncome adds income transactions to a total.
func IncludeIncome() QueryOption {
	return func(q *query) {
		q.includeIncome = true
	}
}

func buildQuery(opts []QueryOption) query {
	var q query
	for _, opt := range opts {
		opt(&q)
	}
	return q
}
