package cli

import (
	"context"

	"github.com/alexanderramin/estimator/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Customers service.CustomerService
	Estimates service.EstimateService
	Jobs      service.JobService
	Imports   service.ImportService

	// Currency is the symbol money is printed with.
	Currency string

	// IsInteractive reports whether prompts and the browser may take over
	// the terminal. Nil means never.
	IsInteractive func() bool

	// Serve runs the HTTP API until ctx is cancelled. Nil disables the
	// serve command.
	Serve func(ctx context.Context, addr string) error
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) currency() string {
	if a.Currency == "" {
		return "$"
	}
	return a.Currency
}

// NewRootCmd creates the top-level "estimator" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "estimator",
		Short:         "Construction estimates as editable group/item trees",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCustomerCmd(app),
		newEstimateCmd(app),
		newGroupCmd(app),
		newItemCmd(app),
		newServeCmd(app),
	)

	return root
}
