package worker

import (
	"context"
	"testing"
	"time"

	"github.com/motorline/boost/internal/model"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testJob() Job {
	return Job{
		Event: model.BumpEvent{
			AdID:     primitive.NewObjectID(),
			Source:   model.BumpSourceScheduler,
			BumpedAt: time.Now().UTC(),
		},
	}
}

func TestPoolDeliversJobs(t *testing.T) {
	delivered := make(chan Job, 4)

	pool := NewPool(2, 4, func(ctx context.Context, job Job) error {
		delivered <- job
		return nil
	})
	pool.Start()

	job := testJob()
	assert.True(t, pool.TrySubmit(job))

	select {
	case got := <-delivered:
		assert.Equal(t, job.Event.AdID, got.Event.AdID)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not delivered")
	}

	pool.Stop()
}

func TestTrySubmitDropsOnFullQueue(t *testing.T) {
	// No workers started: the queue fills up and stays full
	pool := NewPool(1, 1, func(ctx context.Context, job Job) error { return nil })

	assert.True(t, pool.TrySubmit(testJob()))
	assert.False(t, pool.TrySubmit(testJob()))
	assert.Equal(t, 1, pool.QueueLength())
}

func TestPoolStopDrainsQueue(t *testing.T) {
	delivered := make(chan Job, 8)

	pool := NewPool(1, 8, func(ctx context.Context, job Job) error {
		delivered <- job
		return nil
	})

	for i := 0; i < 3; i++ {
		assert.True(t, pool.TrySubmit(testJob()))
	}

	pool.Start()
	pool.Stop()

	assert.Len(t, delivered, 3)
}
