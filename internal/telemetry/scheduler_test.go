package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(zap.NewNop(), time.Second)
	err := s.Register("every now and then", "bad", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestSchedulerRunsJobs(t *testing.T) {
	s := NewScheduler(zap.NewNop(), time.Second)
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Register("* * * * * *", "tick", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
