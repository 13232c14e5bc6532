package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/repository"
	"github.com/alexanderramin/estimator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobService_ConvertFromEstimate(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	est := testutil.NewTestEstimate("Patio", testutil.WithEstimateStatus(domain.EstimateAccepted))
	require.NoError(t, r.estimates.Create(ctx, est))

	obs := &recordingObserver{}
	svc := NewJobService(r.jobs, r.uow, obs)
	job, err := svc.ConvertFromEstimate(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, est.ID, job.EstimateID)
	assert.Equal(t, "Patio", job.Title)
	assert.Equal(t, domain.JobPending, job.Status)

	stored, err := r.estimates.GetByID(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EstimateConverted, stored.Status)
	assert.True(t, stored.IsLocked())

	byEstimate, err := svc.GetByEstimate(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, byEstimate.ID)

	require.Len(t, obs.events, 1)
	assert.True(t, obs.events[0].Success)
}

func TestJobService_ConvertFromEstimate_RequiresAccepted(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	est := testutil.NewTestEstimate("Fence")
	require.NoError(t, r.estimates.Create(ctx, est))

	svc := NewJobService(r.jobs, r.uow)
	_, err := svc.ConvertFromEstimate(ctx, est.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = r.jobs.GetByEstimate(ctx, est.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestJobService_ConvertTwice(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	est := testutil.NewTestEstimate("Driveway", testutil.WithEstimateStatus(domain.EstimateAccepted))
	require.NoError(t, r.estimates.Create(ctx, est))

	svc := NewJobService(r.jobs, r.uow)
	_, err := svc.ConvertFromEstimate(ctx, est.ID)
	require.NoError(t, err)
	_, err = svc.ConvertFromEstimate(ctx, est.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	jobs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestJobService_RollbackOnEstimateUpdateFailure(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	est := testutil.NewTestEstimate("Siding", testutil.WithEstimateStatus(domain.EstimateAccepted))
	require.NoError(t, r.estimates.Create(ctx, est))

	// ExecContext #1 = jobs.Create, #2 = estimates.Update.
	failUoW := &testutil.FailOnNthExecUoW{
		DB:     r.db,
		FailOn: 2,
		Err:    fmt.Errorf("injected estimate update failure"),
	}
	svc := NewJobService(r.jobs, failUoW)
	_, err := svc.ConvertFromEstimate(ctx, est.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected estimate update failure")

	_, err = r.jobs.GetByEstimate(ctx, est.ID)
	require.ErrorIs(t, err, repository.ErrNotFound, "job insert should roll back")

	stored, err := r.estimates.GetByID(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EstimateAccepted, stored.Status)
}
