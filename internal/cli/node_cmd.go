package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/alexanderramin/estimator/internal/cli/formatter"
	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/alexanderramin/estimator/internal/session"
	"github.com/spf13/cobra"
)

// editFunc applies one change to an open session.
type editFunc func(ctx context.Context, sess *session.Session) (estimate.Result, error)

// editEstimate opens the estimate named by input, runs fn against it and
// reports the outcome. Converted estimates are refused before any change,
// and a change the store refused is an error.
func editEstimate(cmd *cobra.Command, app *App, input, verb string, fn editFunc) error {
	ctx := context.Background()
	id, err := resolveEstimateID(ctx, app, input)
	if err != nil {
		return err
	}
	e, err := app.Estimates.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.IsLocked() {
		return fmt.Errorf("estimate %s: %w", e.DisplayID(), domain.ErrLocked)
	}

	sess, err := app.Estimates.Open(ctx, id)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := fn(ctx, sess)
	if err != nil {
		return err
	}
	if res.PersistErr != nil {
		return fmt.Errorf("%s not saved: %w", verb, res.PersistErr)
	}
	return reportResult(cmd.OutOrStdout(), verb, res, sess.Totals(), app.currency())
}

func reportResult(out io.Writer, verb string, res estimate.Result, totals domain.Totals, currency string) error {
	switch res.Outcome {
	case estimate.Rejected:
		return fmt.Errorf("%s rejected: %s", verb, res.Reason)
	case estimate.NoOp:
		fmt.Fprintf(out, "Nothing to %s: %s\n", verb, res.Reason)
		return nil
	}

	if res.Node != nil {
		fmt.Fprintf(out, "%s %s %s [%s]\n", pastTense(verb), res.Node.Kind(), nodeLabel(res.Node), formatter.ShortID(res.Node.NodeID()))
	} else {
		fmt.Fprintf(out, "%s\n", pastTense(verb))
	}
	fmt.Fprintf(out, "Estimate total %s\n", formatter.Money(currency, totals.FinalTotal))
	return nil
}

func pastTense(verb string) string {
	switch verb {
	case "add":
		return "Added"
	case "update":
		return "Updated"
	case "move":
		return "Moved"
	case "delete":
		return "Deleted"
	}
	return verb
}

func nodeLabel(n domain.Node) string {
	switch v := n.(type) {
	case *domain.GroupNode:
		return v.Name
	case *domain.ItemNode:
		return v.Label()
	}
	return n.NodeID()
}

func newNodeMoveCmd(app *App, kind domain.NodeKind) *cobra.Command {
	var to string
	var index int

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("move ESTIMATE %s", upper(kind)),
		Short: fmt.Sprintf("Move a %s to another group or position", kind),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editEstimate(cmd, app, args[0], "move", func(ctx context.Context, sess *session.Session) (estimate.Result, error) {
				tree := sess.Tree()
				n, err := resolveNode(tree, kind, args[1])
				if err != nil {
					return estimate.Result{}, err
				}
				parent, err := resolveParent(tree, to)
				if err != nil {
					return estimate.Result{}, err
				}
				return sess.MoveNode(ctx, n.Ref(), parent, index), nil
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Destination group ID or prefix (root when empty)")
	cmd.Flags().IntVar(&index, "index", 0, "Position among the destination's children")

	return cmd
}

func newNodeShiftCmd(app *App, kind domain.NodeKind, use string, delta int) *cobra.Command {
	direction := "up"
	if delta > 0 {
		direction = "down"
	}
	return &cobra.Command{
		Use:   fmt.Sprintf("%s ESTIMATE %s", use, upper(kind)),
		Short: fmt.Sprintf("Move a %s one slot %s among its siblings", kind, direction),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editEstimate(cmd, app, args[0], "move", func(ctx context.Context, sess *session.Session) (estimate.Result, error) {
				n, err := resolveNode(sess.Tree(), kind, args[1])
				if err != nil {
					return estimate.Result{}, err
				}
				return sess.Shift(ctx, n.Ref(), delta), nil
			})
		},
	}
}

func newNodeRemoveCmd(app *App, kind domain.NodeKind) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("rm ESTIMATE %s", upper(kind)),
		Short: fmt.Sprintf("Delete a %s", kind),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editEstimate(cmd, app, args[0], "delete", func(ctx context.Context, sess *session.Session) (estimate.Result, error) {
				n, err := resolveNode(sess.Tree(), kind, args[1])
				if err != nil {
					return estimate.Result{}, err
				}
				return sess.DeleteNode(ctx, n.Ref()), nil
			})
		},
	}
}

func upper(kind domain.NodeKind) string {
	if kind == domain.NodeGroup {
		return "GROUP"
	}
	return "ITEM"
}
