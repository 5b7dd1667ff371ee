package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caassistant/autoledger/internal/jobs"
)

func TestStoreSaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := &jobs.ProcessStatementJob{
		JobID:     "job-1",
		Filename:  "statement.pdf",
		Status:    jobs.JobStatusPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveJob(ctx, job))

	got, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "statement.pdf", got.Filename)
	assert.Equal(t, jobs.JobStatusPending, got.Status)

	// The store hands out copies, not the live record.
	got.Status = jobs.JobStatusFailed
	again, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusPending, again.Status)
}

func TestStoreRequiresJobID(t *testing.T) {
	store := NewStore()

	err := store.SaveJob(context.Background(), &jobs.ProcessStatementJob{})
	assert.Error(t, err)
}

func TestStoreGetUnknownJob(t *testing.T) {
	store := NewStore()

	_, err := store.GetJob(context.Background(), "missing")
	assert.Error(t, err)
}

func TestStoreListJobsNewestFirst(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveJob(ctx, &jobs.ProcessStatementJob{
			JobID:     id,
			Status:    jobs.JobStatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	listed, err := store.ListJobs(ctx, jobs.JobFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "c", listed[0].JobID)
	assert.Equal(t, "b", listed[1].JobID)
	assert.Equal(t, "a", listed[2].JobID)
}

func TestStoreListJobsFilterAndPaging(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Now()

	statuses := []jobs.JobStatus{
		jobs.JobStatusCompleted,
		jobs.JobStatusFailed,
		jobs.JobStatusCompleted,
		jobs.JobStatusCompleted,
	}
	for i, status := range statuses {
		require.NoError(t, store.SaveJob(ctx, &jobs.ProcessStatementJob{
			JobID:     string(rune('a' + i)),
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	completed, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	require.NoError(t, err)
	assert.Len(t, completed, 3)

	page, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted, Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c", page[0].JobID)

	past, err := store.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}
