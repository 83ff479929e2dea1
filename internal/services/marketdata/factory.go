package marketdata

import (
	"fmt"

	"FinSignal/internal/domain/repository"
	"FinSignal/pkg/cache"
	"FinSignal/pkg/config"
	applogger "FinSignal/pkg/logger"
)

// New builds the configured provider wrapped in the cache. store may be nil
// unless the provider is "clickhouse".
func New(cfg *config.Config, store repository.BarStore, c cache.Service, m repository.Metrics, l *applogger.Logger) (repository.MarketDataProvider, error) {
	md := cfg.MarketData

	var inner repository.MarketDataProvider
	remote := true
	switch md.Provider {
	case ProviderYahoo:
		inner = NewYahoo(md.YahooBaseURL, md.Timeout, 2)
	case ProviderPolygon:
		p, err := NewPolygon(md.PolygonAPIKey, nil)
		if err != nil {
			return nil, err
		}
		inner = p
	case ProviderClickHouse:
		if store == nil {
			return nil, fmt.Errorf("market data provider %q needs clickhouse.enabled", md.Provider)
		}
		inner = store
		remote = false
	default:
		return nil, fmt.Errorf("unknown market data provider %q", md.Provider)
	}

	opts := []CachedOption{WithMetrics(m), WithLogger(l)}
	if remote && md.StoreFetched && store != nil {
		opts = append(opts, WithStore(store))
	}
	return NewCached(inner, c, md.CacheTTL, opts...), nil
}
