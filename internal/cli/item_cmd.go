package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/alexanderramin/estimator/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Edit the line items of an estimate",
	}

	cmd.AddCommand(
		newItemAddCmd(app),
		newItemEditCmd(app),
		newNodeMoveCmd(app, domain.NodeItem),
		newNodeShiftCmd(app, domain.NodeItem, "up", -1),
		newNodeShiftCmd(app, domain.NodeItem, "down", 1),
		newNodeRemoveCmd(app, domain.NodeItem),
	)

	return cmd
}

// itemFlags are the editable item fields shared by add and edit.
type itemFlags struct {
	title, description, unit      string
	quantity                      float64
	material, labor, equipment    float64
	other, subcontract            float64
	catalogItemID, costbookItemID string
}

func (f *itemFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "Item title")
	fs.StringVar(&f.description, "description", "", "Item description")
	fs.Float64Var(&f.quantity, "qty", 1, "Quantity")
	fs.StringVar(&f.unit, "unit", "ea", "Unit of measure")
	fs.Float64Var(&f.material, "material", 0, "Material cost per unit")
	fs.Float64Var(&f.labor, "labor", 0, "Labor cost per unit")
	fs.Float64Var(&f.equipment, "equipment", 0, "Equipment cost per unit")
	fs.Float64Var(&f.other, "other", 0, "Other cost per unit")
	fs.Float64Var(&f.subcontract, "subcontract", 0, "Subcontract cost per unit")
}

// changedCost returns a pointer to v when the flag was set, nil otherwise.
func changedCost(fs *pflag.FlagSet, name string, v float64) *float64 {
	if !fs.Changed(name) {
		return nil
	}
	return domain.FloatPtr(v)
}

func changedStr(fs *pflag.FlagSet, name, v string) *string {
	if !fs.Changed(name) {
		return nil
	}
	return domain.StrPtr(v)
}

func (f *itemFlags) node(fs *pflag.FlagSet) *domain.ItemNode {
	it := &domain.ItemNode{
		Title:           f.title,
		Description:     f.description,
		Quantity:        f.quantity,
		Unit:            f.unit,
		MaterialCost:    changedCost(fs, "material", f.material),
		LaborCost:       changedCost(fs, "labor", f.labor),
		EquipmentCost:   changedCost(fs, "equipment", f.equipment),
		OtherCost:       changedCost(fs, "other", f.other),
		SubcontractCost: changedCost(fs, "subcontract", f.subcontract),
	}
	if f.catalogItemID != "" {
		it.ItemID = domain.StrPtr(f.catalogItemID)
	}
	if f.costbookItemID != "" {
		it.CostbookItemID = domain.StrPtr(f.costbookItemID)
	}
	return it
}

func (f *itemFlags) patch(fs *pflag.FlagSet, id string) domain.ItemPatch {
	p := domain.ItemPatch{
		ID:              id,
		Title:           changedStr(fs, "title", f.title),
		Description:     changedStr(fs, "description", f.description),
		Unit:            changedStr(fs, "unit", f.unit),
		MaterialCost:    changedCost(fs, "material", f.material),
		LaborCost:       changedCost(fs, "labor", f.labor),
		EquipmentCost:   changedCost(fs, "equipment", f.equipment),
		OtherCost:       changedCost(fs, "other", f.other),
		SubcontractCost: changedCost(fs, "subcontract", f.subcontract),
	}
	if fs.Changed("qty") {
		p.Quantity = domain.FloatPtr(f.quantity)
	}
	return p
}

func newItemAddCmd(app *App) *cobra.Command {
	var flags itemFlags
	var group string

	cmd := &cobra.Command{
		Use:   "add ESTIMATE",
		Short: "Add a line item at root or inside a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var node *domain.ItemNode
			switch {
			case flags.title != "" || flags.description != "":
				node = flags.node(cmd.Flags())
			case app.interactive():
				var values itemFormValues
				if err := newItemForm(&values).Run(); err != nil {
					return err
				}
				var err error
				if node, err = values.node(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("--title or --description is required")
			}

			return editEstimate(cmd, app, args[0], "add", func(ctx context.Context, sess *session.Session) (estimate.Result, error) {
				parentID, err := resolveParent(sess.Tree(), group)
				if err != nil {
					return estimate.Result{}, err
				}
				node.EstimateID = sess.CurrentEstimateID()
				return sess.AddNode(ctx, node, parentID), nil
			})
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&group, "group", "", "Group ID or prefix (root when empty)")
	cmd.Flags().StringVar(&flags.catalogItemID, "catalog-item", "", "Catalog item this line was copied from")
	cmd.Flags().StringVar(&flags.costbookItemID, "costbook-item", "", "Costbook entry this line was copied from")

	return cmd
}

func newItemEditCmd(app *App) *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "edit ESTIMATE ITEM",
		Short: "Change an item's fields; unset flags are left alone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editEstimate(cmd, app, args[0], "update", func(ctx context.Context, sess *session.Session) (estimate.Result, error) {
				n, err := resolveNode(sess.Tree(), domain.NodeItem, args[1])
				if err != nil {
					return estimate.Result{}, err
				}
				patch := flags.patch(cmd.Flags(), n.NodeID())
				if n.(*domain.ItemNode).Mode() == domain.ModeCatalog && patch.TouchesCatalogFields() {
					return estimate.Result{}, fmt.Errorf("title, description and unit are read-only for catalog items")
				}
				return sess.UpdateNode(ctx, patch), nil
			})
		},
	}

	flags.register(cmd.Flags())

	return cmd
}
