package cli

import (
	"context"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/alexanderramin/estimator/internal/session"
	"github.com/spf13/cobra"
)

func newGroupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Edit the groups of an estimate",
	}

	cmd.AddCommand(
		newGroupAddCmd(app),
		newGroupRenameCmd(app),
		newNodeMoveCmd(app, domain.NodeGroup),
		newNodeShiftCmd(app, domain.NodeGroup, "up", -1),
		newNodeShiftCmd(app, domain.NodeGroup, "down", 1),
		newNodeRemoveCmd(app, domain.NodeGroup),
	)

	return cmd
}

func newGroupAddCmd(app *App) *cobra.Command {
	var name, parent string

	cmd := &cobra.Command{
		Use:   "add ESTIMATE",
		Short: "Add a group at root or inside another group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editEstimate(cmd, app, args[0], "add", func(ctx context.Context, sess *session.Session) (estimate.Result, error) {
				parentID, err := resolveParent(sess.Tree(), parent)
				if err != nil {
					return estimate.Result{}, err
				}
				g := &domain.GroupNode{Name: name, EstimateID: sess.CurrentEstimateID()}
				return sess.AddNode(ctx, g, parentID), nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Group name")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent group ID or prefix")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newGroupRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ESTIMATE GROUP NAME",
		Short: "Rename a group",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editEstimate(cmd, app, args[0], "update", func(ctx context.Context, sess *session.Session) (estimate.Result, error) {
				n, err := resolveNode(sess.Tree(), domain.NodeGroup, args[1])
				if err != nil {
					return estimate.Result{}, err
				}
				name := args[2]
				return sess.UpdateNode(ctx, domain.GroupPatch{ID: n.NodeID(), Name: &name}), nil
			})
		},
	}
}
