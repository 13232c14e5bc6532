package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/alexanderramin/estimator/internal/repository"
	"github.com/alexanderramin/estimator/internal/session"
	"github.com/alexanderramin/estimator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateService_Create_Defaults(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewEstimateService(r.estimateRepos(), nil, nil)

	est := &domain.Estimate{Title: "Roof replacement"}
	require.NoError(t, svc.Create(ctx, est))
	assert.NotEmpty(t, est.ID, "UUID should be generated")
	assert.Equal(t, domain.EstimateDraft, est.Status, "status should default to draft")

	fetched, err := svc.GetByID(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roof replacement", fetched.Title)
}

func TestEstimateService_Create_RequiresTitle(t *testing.T) {
	r := setupRepos(t)
	svc := NewEstimateService(r.estimateRepos(), nil, nil)

	err := svc.Create(context.Background(), &domain.Estimate{})
	require.ErrorIs(t, err, domain.ErrInvalid)
}

func TestEstimateService_Create_UnknownCustomer(t *testing.T) {
	r := setupRepos(t)
	svc := NewEstimateService(r.estimateRepos(), nil, nil)

	missing := "no-such-customer"
	err := svc.Create(context.Background(), &domain.Estimate{Title: "Fence", CustomerID: &missing})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEstimateService_List_FiltersByCustomer(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewEstimateService(r.estimateRepos(), nil, nil)

	cust := testutil.NewTestCustomer("Dana")
	require.NoError(t, r.customers.Create(ctx, cust))

	require.NoError(t, svc.Create(ctx, &domain.Estimate{Title: "A", CustomerID: &cust.ID}))
	require.NoError(t, svc.Create(ctx, &domain.Estimate{Title: "B"}))

	all, err := svc.List(ctx, repository.EstimateFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.List(ctx, repository.EstimateFilter{CustomerID: cust.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].Title)
}

func TestEstimateService_Open_LoadsTreeAndCustomer(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	cust := testutil.NewTestCustomer("Lee", testutil.WithLastName("Park"))
	require.NoError(t, r.customers.Create(ctx, cust))
	est := testutil.NewTestEstimate("Kitchen", testutil.WithCustomerID(cust.ID))
	require.NoError(t, r.estimates.Create(ctx, est))

	g := testutil.NewTestGroup(est.ID, "Cabinets", testutil.WithGroupOrder(0))
	require.NoError(t, r.groups.Upsert(ctx, g))
	require.NoError(t, r.items.Upsert(ctx, testutil.NewTestItem(est.ID, "Uppers",
		testutil.InGroup(g.ID), testutil.WithQuantity(3), testutil.WithCosts(100, 20))))

	obs := &recordingObserver{}
	svc := NewEstimateService(r.estimateRepos(), nil, nil, obs)
	sess, err := svc.Open(ctx, est.ID)
	require.NoError(t, err)

	assert.Equal(t, est.ID, sess.CurrentEstimateID())
	require.NotNil(t, sess.SelectedCustomer())
	assert.Equal(t, "Lee Park", sess.SelectedCustomer().FullName())
	groups, items := estimate.Count(sess.Tree())
	assert.Equal(t, 1, groups)
	assert.Equal(t, 1, items)
	assert.InDelta(t, 360.0, sess.Totals().Subtotal, 1e-9)

	require.Len(t, obs.events, 1)
	assert.Equal(t, "open-estimate", obs.events[0].Name)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, 0, obs.events[0].Fields["warnings"])
}

func TestEstimateService_Open_AppliesCallerOptions(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	est := testutil.NewTestEstimate("Shed")
	require.NoError(t, r.estimates.Create(ctx, est))

	svc := NewEstimateService(r.estimateRepos(), NewStorePersister(r.uow), nil)
	sess, err := svc.Open(ctx, est.ID, session.WithHistoryLimit(0))
	require.NoError(t, err)

	sess.AddNode(ctx, &domain.GroupNode{Name: "Foundation"}, nil)
	assert.False(t, sess.CanUndo())
}

func TestEstimateService_Open_LockedEstimateStaysInMemory(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	est := testutil.NewTestEstimate("Done", testutil.WithEstimateStatus(domain.EstimateConverted))
	require.NoError(t, r.estimates.Create(ctx, est))

	svc := NewEstimateService(r.estimateRepos(), NewStorePersister(r.uow), nil)
	sess, err := svc.Open(ctx, est.ID)
	require.NoError(t, err)

	sess.AddNode(ctx, &domain.GroupNode{Name: "Extra"}, nil)
	groups, err := r.groups.ListByEstimate(ctx, est.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestEstimateService_Open_NotFound(t *testing.T) {
	r := setupRepos(t)
	svc := NewEstimateService(r.estimateRepos(), nil, nil)

	_, err := svc.Open(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEstimateService_SetStatus(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewEstimateService(r.estimateRepos(), nil, nil)

	est := testutil.NewTestEstimate("Windows")
	require.NoError(t, r.estimates.Create(ctx, est))

	tests := []struct {
		name    string
		next    domain.EstimateStatus
		wantErr error
	}{
		{"draft to sent", domain.EstimateSent, nil},
		{"sent to accepted", domain.EstimateAccepted, nil},
		{"accepted to rejected", domain.EstimateRejected, domain.ErrInvalidTransition},
		{"converted only through jobs", domain.EstimateConverted, domain.ErrInvalidTransition},
		{"unknown status", domain.EstimateStatus("lost"), domain.ErrInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SetStatus(ctx, est.ID, tc.next)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			stored, err := r.estimates.GetByID(ctx, est.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.next, stored.Status)
		})
	}
}

func TestEstimateService_Delete(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewEstimateService(r.estimateRepos(), nil, nil)

	open := testutil.NewTestEstimate("Open")
	locked := testutil.NewTestEstimate("Locked", testutil.WithEstimateStatus(domain.EstimateConverted))
	require.NoError(t, r.estimates.Create(ctx, open))
	require.NoError(t, r.estimates.Create(ctx, locked))

	require.NoError(t, svc.Delete(ctx, open.ID))
	_, err := r.estimates.GetByID(ctx, open.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, locked.ID), domain.ErrLocked)
}
