package metrics

import (
	"time"

	rpcMetrics "github.com/filecoin-project/go-jsonrpc/metrics"
	"github.com/ipfs-force-community/metrics"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// Global Tags
var (
	WalletNameKey, _ = tag.NewKey("wallet")
	ChainIDKey, _    = tag.NewKey("chain_id")
	StepKey, _       = tag.NewKey("step")
	ResultKey, _     = tag.NewKey("result")

	IPKey, _ = tag.NewKey("ip")
)

// Distribution
var defaultMillisecondsDistribution = view.Distribution(0.01, 0.05, 0.1, 0.3, 0.6, 0.8, 1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 3000, 4000, 5000, 7500, 10000, 20000, 50000, 100000)

var (
	// registry
	WalletNum        = metrics.NewInt64("wallet/num", "Registered wallet count", stats.UnitDimensionless)
	WalletRegister   = stats.Int64("wallet/register", "Wallet register", stats.UnitDimensionless)
	WalletSelect     = stats.Int64("wallet/select", "Wallet selected", stats.UnitDimensionless)
	AccountChanged   = stats.Int64("wallet/account_changed", "Account changed signal", stats.UnitDimensionless)
	ProviderConnNum  = metrics.NewInt64("provider/conn_num", "Provider connection count", stats.UnitDimensionless)
	ProviderRegister = stats.Int64("provider/register", "Provider connect", stats.UnitDimensionless)
	ProviderUnreg    = stats.Int64("provider/unregister", "Provider disconnect", stats.UnitDimensionless)

	// pipeline
	PipelineStep   = stats.Float64("pipeline/step", "Transaction pipeline step spent time", stats.UnitMilliseconds)
	PipelineResult = stats.Int64("pipeline/result", "Transaction pipeline outcome", stats.UnitDimensionless)

	// method call
	ProviderCall = stats.Float64("provider_call", "Call remote provider spent time", stats.UnitMilliseconds)
	EncodingCall = stats.Float64("encoding_call", "Call proto encoding service spent time", stats.UnitMilliseconds)

	ApiState = metrics.NewInt64("api/state", "api service state. 0: down, 1: up", "")
)

var (
	walletRegisterView = &view.View{
		Measure:     WalletRegister,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{WalletNameKey},
	}
	walletSelectView = &view.View{
		Measure:     WalletSelect,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{WalletNameKey},
	}
	accountChangedView = &view.View{
		Measure:     AccountChanged,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{WalletNameKey},
	}
	providerRegisterView = &view.View{
		Measure:     ProviderRegister,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{WalletNameKey, IPKey},
	}
	providerUnregView = &view.View{
		Measure:     ProviderUnreg,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{WalletNameKey, IPKey},
	}

	pipelineStepView = &view.View{
		Measure:     PipelineStep,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{StepKey, ChainIDKey},
	}
	pipelineResultView = &view.View{
		Measure:     PipelineResult,
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{ResultKey, ChainIDKey},
	}

	providerCallView = &view.View{
		Measure:     ProviderCall,
		Aggregation: defaultMillisecondsDistribution,
		TagKeys:     []tag.Key{WalletNameKey},
	}
	encodingCallView = &view.View{
		Measure:     EncodingCall,
		Aggregation: defaultMillisecondsDistribution,
	}
)

var views = append([]*view.View{
	walletRegisterView,
	walletSelectView,
	accountChangedView,
	providerRegisterView,
	providerUnregView,
	pipelineStepView,
	pipelineResultView,
	providerCallView,
	encodingCallView,
}, rpcMetrics.DefaultViews...)

// SinceInMilliseconds returns the duration of time since the provide time as a float64.
func SinceInMilliseconds(startTime time.Time) float64 {
	return float64(time.Since(startTime).Nanoseconds()) / 1e6
}

func init() {
	// register metrics
	_ = view.Register(views...)
}
