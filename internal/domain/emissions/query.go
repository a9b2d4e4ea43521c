package emissions

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// QueryEmissions runs the monthly, yearly and offset reads for one window concurrently.
// The first failing read cancels the others and fails the whole call.
func QueryEmissions(ctx context.Context, repo Repository, orgID string, rng Range) (*EmissionData, error) {
	from, to := rng.StartUnix(), rng.EndUnix()

	var data EmissionData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := repo.MonthlyTotals(gctx, orgID, from, to)
		if err != nil {
			return fmt.Errorf("monthly totals: %w", err)
		}
		data.Monthly = rows
		return nil
	})
	g.Go(func() error {
		rows, err := repo.YearlyTotals(gctx, orgID, from, to)
		if err != nil {
			return fmt.Errorf("yearly totals: %w", err)
		}
		data.Yearly = rows
		return nil
	})
	g.Go(func() error {
		rows, err := repo.YearlyOffsets(gctx, orgID, from, to)
		if err != nil {
			return fmt.Errorf("yearly offsets: %w", err)
		}
		data.Offsets = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}
