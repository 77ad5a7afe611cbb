package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

type fixedState struct {
	wallets, conns int
}

func (f fixedState) WalletCount() int       { return f.wallets }
func (f fixedState) ProviderConnCount() int { return f.conns }

func TestSinceInMilliseconds(t *testing.T) {
	ms := SinceInMilliseconds(time.Now().Add(-time.Second))
	require.GreaterOrEqual(t, ms, float64(1000))
	require.Less(t, ms, float64(60000))
}

func TestRecordWalletSelect(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(WalletNameKey, "metrics-test")}, WalletSelect.M(1)))
	}

	rows, err := view.RetrieveData(WalletSelect.Name())
	require.NoError(t, err)

	var count int64
	for _, row := range rows {
		for _, tg := range row.Tags {
			if tg.Key == WalletNameKey && tg.Value == "metrics-test" {
				count = row.Data.(*view.CountData).Value
			}
		}
	}
	require.Equal(t, int64(3), count)
}

func TestRecordState(t *testing.T) {
	require.NotPanics(t, func() {
		RecordState(context.Background(), fixedState{wallets: 2, conns: 1})
	})
}
