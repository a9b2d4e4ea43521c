package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"carbonyx/internal/domain/factors"
	"carbonyx/internal/infrastructure/storage"
	"carbonyx/pkg/logger"
)

// centralCatalogue is the starter set of shared factors, in kg CO2e per unit.
var centralCatalogue = []factors.Factor{
	{Name: "Grid electricity", Type: "electricity", Unit: "kWh", Factor: 0.207},
	{Name: "Diesel", Type: "mobile_combustion", Unit: "l", Factor: 2.512},
	{Name: "Petrol", Type: "mobile_combustion", Unit: "l", Factor: 2.163},
	{Name: "Natural gas", Type: "stationary_combustion", Unit: "kWh", Factor: 0.183},
	{Name: "Heating oil", Type: "stationary_combustion", Unit: "l", Factor: 2.54},
	{Name: "R-410A leakage", Type: "refrigerants", Unit: "kg", Factor: 2088},
	{Name: "R-134a leakage", Type: "refrigerants", Unit: "kg", Factor: 1430},
}

func NewSeedCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the central factor catalogue when it is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, err := opts.openStores(cmd.Context())
			if err != nil {
				return err
			}

			inserted, err := seedCentral(cmd.Context(), stores)
			if err != nil {
				return err
			}
			result := map[string]int{"inserted": inserted}
			return opts.print(cmd.OutOrStdout(), result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "seeded %d central factors\n", inserted)
				return err
			})
		},
	}
}

func seedCentral(ctx context.Context, stores *storage.Stores) (int, error) {
	inserted := 0
	err := stores.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := stores.Factors.ListVisible(ctx, "")
		if err != nil {
			return fmt.Errorf("list central factors: %w", err)
		}
		for _, f := range existing {
			if f.IsCentral() {
				logger.Info(ctx, "central catalogue already present, skipping seed", "rows", len(existing))
				return nil
			}
		}

		for _, f := range centralCatalogue {
			row := f
			if err := stores.Factors.Create(ctx, &row); err != nil {
				return fmt.Errorf("seed factor %q: %w", f.Name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info(ctx, "central catalogue seeded", "inserted", inserted)
	return inserted, nil
}
