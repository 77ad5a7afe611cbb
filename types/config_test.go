package types

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRequestConfigWithDefaults(t *testing.T) {
	require.Equal(t, DefaultConfig(), (*RequestConfig)(nil).WithDefaults())

	cfg := &RequestConfig{RequestQueueSize: -1, RequestTimeout: time.Second}
	got := cfg.WithDefaults()
	require.Equal(t, &RequestConfig{
		RequestQueueSize: 30,
		RequestTimeout:   time.Second,
		ClearInterval:    time.Minute,
	}, got)
	require.Equal(t, -1, cfg.RequestQueueSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NotPanics(t, func() {
		NewBaseEventStream(ctx, &RequestConfig{})
	})
}
