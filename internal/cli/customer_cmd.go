package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/estimator/internal/cli/formatter"
	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/spf13/cobra"
)

func newCustomerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Manage customers",
	}

	cmd.AddCommand(
		newCustomerAddCmd(app),
		newCustomerListCmd(app),
		newCustomerRemoveCmd(app),
	)

	return cmd
}

func newCustomerAddCmd(app *App) *cobra.Command {
	var c domain.Customer

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Customers.Create(context.Background(), &c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created customer %s [%s]\n", c.FullName(), formatter.ShortID(c.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&c.FirstName, "first", "", "First name")
	cmd.Flags().StringVar(&c.LastName, "last", "", "Last name")
	cmd.Flags().StringVar(&c.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&c.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&c.Address, "address", "", "Street address")
	cmd.Flags().StringVar(&c.City, "city", "", "City")
	cmd.Flags().StringVar(&c.PostalCode, "postal-code", "", "Postal code")
	_ = cmd.MarkFlagRequired("first")

	return cmd
}

func newCustomerListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Customers.List(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCustomerList(list))
			return nil
		},
	}
}

func newCustomerRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveCustomerID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Customers.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted customer %s\n", formatter.ShortID(id))
			return nil
		},
	}
}
