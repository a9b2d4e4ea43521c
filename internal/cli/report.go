package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"carbonyx/internal/config"
	"carbonyx/internal/domain/emissions"
)

func NewReportCmd(opts *RootOptions) *cobra.Command {
	var (
		org   string
		asOf  string
		years int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the emissions report of one organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrgFlag(org); err != nil {
				return err
			}
			now := time.Now().UTC()
			if asOf != "" {
				parsed, err := parseTime(asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of: %w", err)
				}
				now = parsed
			}
			if !cmd.Flags().Changed("years") {
				years = opts.cfg.ReportYears
			}

			stores, err := opts.openStores(cmd.Context())
			if err != nil {
				return err
			}

			palette := emissions.DefaultPalette
			if opts.cfg.ChartConfig != "" {
				holder, err := config.NewPaletteHolder(opts.cfg.ChartConfig)
				if err != nil {
					return err
				}
				palette = holder.Get
			}

			svc := emissions.NewService(stores.Emissions,
				emissions.WithClock(func() time.Time { return now }),
				emissions.WithYears(years),
				emissions.WithTimeout(opts.cfg.ReportTimeout),
				emissions.WithPaletteSource(palette),
			)
			out, err := svc.BuildReport(cmd.Context(), org)
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), out, func(w io.Writer) error {
				return printReport(w, org, out)
			})
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "Organization id")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Report date (YYYY-MM-DD or RFC3339), default now")
	cmd.Flags().IntVar(&years, "years", emissions.DefaultYears, "Years in the yearly window")
	return cmd
}

func printReport(w io.Writer, org string, out *emissions.DataOutput) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "organization\t%s\n", org)
	fmt.Fprintf(tw, "monthly gross (t)\tlatest %.3f\tprevious %.3f\n",
		out.Monthly.LatestGrossEmissionsTonnes, out.Monthly.PreviousGrossEmissionsTonnes)
	fmt.Fprintf(tw, "yearly gross (t)\tlatest %.3f\tprevious %.3f\n",
		out.Yearly.LatestGrossEmissionsTonnes, out.Yearly.PreviousGrossEmissionsTonnes)
	fmt.Fprintf(tw, "yearly net (t)\tlatest %.3f\tprevious %.3f\n",
		out.Yearly.LatestNetEmissionsTonnes, out.Yearly.PreviousNetEmissionsTonnes)
	fmt.Fprintf(tw, "offsets (t)\tlatest %.3f\tprevious %.3f\n",
		out.Yearly.LatestOffsetTonnes, out.Yearly.PreviousOffsetTonnes)
	fmt.Fprintf(tw, "offset cost\tlatest %s\tprevious %s\n",
		out.Yearly.LatestOffsetCost.StringFixed(2), out.Yearly.PreviousOffsetCost.StringFixed(2))

	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "series\t")
	for _, label := range out.Yearly.Labels {
		fmt.Fprintf(tw, "%s\t", label)
	}
	fmt.Fprintln(tw)
	for _, d := range out.Yearly.Datasets {
		fmt.Fprintf(tw, "%s\t", d.Label)
		for _, p := range d.Points {
			fmt.Fprintf(tw, "%.1f\t", p.Emissions)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
