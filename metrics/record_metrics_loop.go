package metrics

import (
	"context"
	"time"
)

// StateSource reports the gauges sampled by the record loop.
type StateSource interface {
	WalletCount() int
	ProviderConnCount() int
}

func recordMetricsLoop(ctx context.Context, src StateSource) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			RecordState(ctx, src)
		case <-ctx.Done():
			log.Infof("context done, stop record metrics")
			return
		}
	}
}

func RecordState(ctx context.Context, src StateSource) {
	WalletNum.Set(ctx, int64(src.WalletCount()))
	ProviderConnNum.Set(ctx, int64(src.ProviderConnCount()))
}
