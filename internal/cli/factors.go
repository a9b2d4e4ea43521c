package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"carbonyx/internal/domain/factors"
)

func NewFactorsCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factors",
		Short: "List and maintain emission factors",
	}

	cmd.AddCommand(
		newFactorsListCmd(opts),
		newFactorsAddCmd(opts),
		newFactorsEditCmd(opts),
		newFactorsDeleteCmd(opts),
	)
	return cmd
}

func newFactorsListCmd(opts *RootOptions) *cobra.Command {
	var org string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the effective factors of an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrgFlag(org); err != nil {
				return err
			}
			svc, _, err := opts.factorService(cmd.Context())
			if err != nil {
				return err
			}

			list, err := svc.ListEffective(cmd.Context(), org)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), list, func(w io.Writer) error {
				return printFactors(w, list)
			})
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "Organization id")
	return cmd
}

func printFactors(w io.Writer, list []factors.EffectiveFactor) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tUNIT\tFACTOR\tSOURCE\tOVERRIDE")
	for _, f := range list {
		override := "-"
		if f.OverrideID != nil {
			override = strconv.FormatInt(*f.OverrideID, 10)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%g\t%s\t%s\n", f.ID, f.Type, f.Name, f.Unit, f.Factor, f.Source, override)
	}
	return tw.Flush()
}

type factorFlags struct {
	org      string
	override int64
	input    factors.Input
}

func (f *factorFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.org, "org", "", "Organization id")
	cmd.Flags().StringVar(&f.input.Name, "name", "", "Factor name")
	cmd.Flags().StringVar(&f.input.Type, "type", "", "Factor type")
	cmd.Flags().StringVar(&f.input.Unit, "unit", "", "Activity unit")
	cmd.Flags().Float64Var(&f.input.Factor, "factor", 0, "kg CO2e per unit")
}

func (f *factorFlags) subType(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetString("sub-type"); v != "" {
		f.input.SubType = &v
	}
}

func newFactorsAddCmd(opts *RootOptions) *cobra.Command {
	flags := &factorFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a custom factor, or override a central one with --override",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrgFlag(flags.org); err != nil {
				return err
			}
			flags.subType(cmd)
			if cmd.Flags().Changed("override") {
				flags.input.OriginalFactorID = &flags.override
			}

			svc, _, err := opts.factorService(cmd.Context())
			if err != nil {
				return err
			}
			created, err := svc.Add(cmd.Context(), flags.org, flags.input)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), created, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "created factor %d\n", created.ID)
				return err
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().String("sub-type", "", "Optional sub type")
	cmd.Flags().Int64Var(&flags.override, "override", 0, "Central factor id to override")
	return cmd
}

func newFactorsEditCmd(opts *RootOptions) *cobra.Command {
	flags := &factorFlags{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an organization factor; editing a central factor writes an override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrgFlag(flags.org); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid factor id %q", args[0])
			}
			flags.subType(cmd)

			svc, _, err := opts.factorService(cmd.Context())
			if err != nil {
				return err
			}
			updated, err := svc.Edit(cmd.Context(), flags.org, id, flags.input)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), updated, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "updated factor %d\n", updated.ID)
				return err
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().String("sub-type", "", "Optional sub type")
	return cmd
}

func newFactorsDeleteCmd(opts *RootOptions) *cobra.Command {
	var org string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an organization factor or override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOrgFlag(org); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid factor id %q", args[0])
			}

			svc, _, err := opts.factorService(cmd.Context())
			if err != nil {
				return err
			}
			deleted, err := svc.Delete(cmd.Context(), org, id)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), deleted, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "deleted factor %d\n", deleted.ID)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "Organization id")
	return cmd
}
