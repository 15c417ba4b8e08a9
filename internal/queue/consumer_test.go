package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"qr_menu/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	handle := func(context.Context, model.OrderEvent) error {
		calls++
		if calls < 3 {
			return errors.New("board busy")
		}
		return nil
	}

	err := handleWithRetry(context.Background(), handle, sampleEvent(), 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestHandleWithRetry_GivesUpAfterAttempts(t *testing.T) {
	boom := errors.New("board down")
	calls := 0
	handle := func(context.Context, model.OrderEvent) error {
		calls++
		return boom
	}

	err := handleWithRetry(context.Background(), handle, sampleEvent(), 3, time.Millisecond)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestHandleWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	handle := func(context.Context, model.OrderEvent) error {
		calls++
		cancel()
		return errors.New("board down")
	}

	err := handleWithRetry(ctx, handle, sampleEvent(), 5, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
