package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

func NewRecordCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record activity data and offset purchases",
	}
	cmd.AddCommand(newRecordActivityCmd(opts), newRecordOffsetCmd(opts))
	return cmd
}

func optionalTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return parseTime(value)
}

func newRecordActivityCmd(opts *RootOptions) *cobra.Command {
	var (
		org      string
		factorID int64
		value    float64
		at       string
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Record a quantity against an effective factor",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrgFlag(org); err != nil {
				return err
			}
			when, err := optionalTime(at)
			if err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}

			ledger, err := opts.ledger(cmd.Context())
			if err != nil {
				return err
			}
			a, err := ledger.RecordActivity(cmd.Context(), org, factorID, value, when)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), a, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "recorded %g kg CO2e (%s)\n", a.Value*a.RecordedFactor, a.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "Organization id")
	cmd.Flags().Int64Var(&factorID, "factor", 0, "Effective factor id")
	cmd.Flags().Float64Var(&value, "value", 0, "Activity quantity in the factor unit")
	cmd.Flags().StringVar(&at, "at", "", "Recorded at (YYYY-MM-DD or RFC3339), default now")
	return cmd
}

func newRecordOffsetCmd(opts *RootOptions) *cobra.Command {
	var (
		org   string
		tco2e float64
		price float64
		at    string
	)

	cmd := &cobra.Command{
		Use:   "offset",
		Short: "Record an offset purchase",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrgFlag(org); err != nil {
				return err
			}
			when, err := optionalTime(at)
			if err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}

			ledger, err := opts.ledger(cmd.Context())
			if err != nil {
				return err
			}
			o, err := ledger.RecordOffset(cmd.Context(), org, tco2e, price, when)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), o, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "recorded %g tCO2e offset (%s)\n", o.TCO2e, o.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "Organization id")
	cmd.Flags().Float64Var(&tco2e, "tco2e", 0, "Tonnes of CO2e purchased")
	cmd.Flags().Float64Var(&price, "price", 0, "Price per tonne")
	cmd.Flags().StringVar(&at, "at", "", "Purchased at (YYYY-MM-DD or RFC3339), default now")
	return cmd
}
