package emissions

import "context"

// Repository is the read capability the aggregation layer needs from a store.
// Every method filters by org and the inclusive unix-second window [from, to].
type Repository interface {
	// MonthlyTotals groups emissions by effective factor type and "YYYY-MM" bucket.
	MonthlyTotals(ctx context.Context, orgID string, from, to int64) ([]MonthlyTotal, error)

	// YearlyTotals groups emissions by effective factor type and "YYYY" bucket.
	YearlyTotals(ctx context.Context, orgID string, from, to int64) ([]YearlyTotal, error)

	// YearlyOffsets sums purchased offsets per "YYYY" bucket, ordered by year.
	YearlyOffsets(ctx context.Context, orgID string, from, to int64) ([]OffsetTotal, error)
}
