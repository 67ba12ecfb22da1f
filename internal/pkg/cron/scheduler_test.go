package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunOnceAppliesTimeout(t *testing.T) {
	s := NewScheduler()

	var hadDeadline bool
	s.AddJob(Job{
		Name:     "bounded",
		Interval: time.Hour,
		Timeout:  time.Minute,
		Run: func(ctx context.Context) error {
			_, hadDeadline = ctx.Deadline()
			return nil
		},
	})

	var hadNoDeadline bool
	s.AddJob(Job{
		Name:     "unbounded",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			hadNoDeadline = !ok
			return nil
		},
	})

	s.RunOnce(context.Background())
	assert.True(t, hadDeadline, "Timeout puts a deadline on the run context")
	assert.True(t, hadNoDeadline, "zero Timeout leaves the context unbounded")
}

func TestScheduler_StartRunsImmediately(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)
	s.AddJob(Job{
		Name:     "sweep",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil
		},
	})

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on scheduler start")
	}
}
