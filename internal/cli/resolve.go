package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/alexanderramin/estimator/internal/repository"
	"github.com/alexanderramin/estimator/internal/session"
)

// resolveEstimateID accepts a full estimate id or a unique prefix of one.
func resolveEstimateID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("estimate ID is required")
	}
	list, err := app.Estimates.List(ctx, repository.EstimateFilter{})
	if err != nil {
		return "", err
	}
	ids := make([]string, len(list))
	for i, e := range list {
		ids[i] = e.ID
	}
	return matchPrefix("estimate", ids, input)
}

// resolveCustomerID accepts a full customer id or a unique prefix of one.
func resolveCustomerID(ctx context.Context, app *App, input string) (string, error) {
	list, err := app.Customers.List(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	return matchPrefix("customer", ids, input)
}

func matchPrefix(what string, ids []string, input string) (string, error) {
	var matches []string
	for _, id := range ids {
		if id == input {
			return id, nil
		}
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s not found: %q", what, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", what, input, len(matches))
	}
}

// openSession resolves input and opens an editing session on the estimate.
func openSession(ctx context.Context, app *App, input string) (*session.Session, error) {
	id, err := resolveEstimateID(ctx, app, input)
	if err != nil {
		return nil, err
	}
	return app.Estimates.Open(ctx, id)
}

// resolveNode finds a node of kind in tree by full id or unique prefix.
func resolveNode(tree domain.Tree, kind domain.NodeKind, input string) (domain.Node, error) {
	if n, ok := estimate.FindByPrefix(tree, kind, input); ok {
		return n, nil
	}
	return nil, fmt.Errorf("%s not found or ambiguous: %q", kind, input)
}

// resolveParent resolves an optional --group/--parent flag. An empty input
// means root level.
func resolveParent(tree domain.Tree, input string) (*string, error) {
	if input == "" {
		return nil, nil
	}
	n, err := resolveNode(tree, domain.NodeGroup, input)
	if err != nil {
		return nil, err
	}
	id := n.NodeID()
	return &id, nil
}
