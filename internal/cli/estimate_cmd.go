package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/estimator/internal/cli/formatter"
	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/repository"
	"github.com/spf13/cobra"
)

func newEstimateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "estimate",
		Aliases: []string{"est"},
		Short:   "Manage estimates",
	}

	cmd.AddCommand(
		newEstimateNewCmd(app),
		newEstimateListCmd(app),
		newEstimateShowCmd(app),
		newEstimateStatusCmd(app),
		newEstimateConvertCmd(app),
		newEstimateRemoveCmd(app),
		newEstimateBrowseCmd(app),
		newEstimateImportCmd(app),
		newEstimateExportCmd(app),
	)

	return cmd
}

func newEstimateNewCmd(app *App) *cobra.Command {
	var title, customer, notes string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an empty draft estimate",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e := &domain.Estimate{Title: title, Notes: notes}
			if customer != "" {
				id, err := resolveCustomerID(ctx, app, customer)
				if err != nil {
					return err
				}
				e.CustomerID = &id
			}
			if err := app.Estimates.Create(ctx, e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created estimate %s [%s]\n", e.Title, e.DisplayID())
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Estimate title")
	cmd.Flags().StringVar(&customer, "customer", "", "Customer ID or prefix")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newEstimateListCmd(app *App) *cobra.Command {
	var status, customer string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List estimates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			filter := repository.EstimateFilter{Status: domain.EstimateStatus(status)}
			if status != "" && !domain.ValidEstimateStatuses[status] {
				return fmt.Errorf("unknown status %q", status)
			}
			if customer != "" {
				id, err := resolveCustomerID(ctx, app, customer)
				if err != nil {
					return err
				}
				filter.CustomerID = id
			}

			list, err := app.Estimates.List(ctx, filter)
			if err != nil {
				return err
			}
			customers, err := app.Customers.List(ctx)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(customers))
			for _, c := range customers {
				names[c.ID] = c.FullName()
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEstimateList(list, names, app.currency()))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only estimates with this status")
	cmd.Flags().StringVar(&customer, "customer", "", "Only estimates for this customer")

	return cmd
}

func newEstimateShowCmd(app *App) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show an estimate with its tree and totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveEstimateID(ctx, app, args[0])
			if err != nil {
				return err
			}
			e, err := app.Estimates.GetByID(ctx, id)
			if err != nil {
				return err
			}
			sess, err := app.Estimates.Open(ctx, id)
			if err != nil {
				return err
			}
			defer sess.Close()

			snap := sess.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatWarnings(sess.Warnings()))
			fmt.Fprintln(out, formatter.FormatEstimate(formatter.EstimateView{
				Estimate: e,
				Customer: sess.SelectedCustomer(),
				Tree:     snap.Tree,
				Totals:   snap.Totals,
				Currency: app.currency(),
				ShowIDs:  showIDs,
			}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "Show node ID prefixes")

	return cmd
}

func newEstimateStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Move an estimate to draft, sent, accepted or rejected",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveEstimateID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if !domain.ValidEstimateStatuses[args[1]] {
				return fmt.Errorf("unknown status %q", args[1])
			}
			e, err := app.Estimates.SetStatus(ctx, id, domain.EstimateStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", e.Title, formatter.StatusPill(e.Status))
			return nil
		},
	}
}

func newEstimateConvertCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "convert ID",
		Short: "Convert an accepted estimate into a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveEstimateID(ctx, app, args[0])
			if err != nil {
				return err
			}
			job, err := app.Jobs.ConvertFromEstimate(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Converted estimate %s to job %s [%s]\n",
				formatter.ShortID(id), job.Title, formatter.ShortID(job.ID))
			return nil
		},
	}
}

func newEstimateRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an estimate and its tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveEstimateID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Estimates.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted estimate %s\n", formatter.ShortID(id))
			return nil
		},
	}
}
