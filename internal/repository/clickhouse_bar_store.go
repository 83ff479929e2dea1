package repository

import (
	"context"
	"fmt"
	"time"

	"FinSignal/internal/domain/models"
	pkgch "FinSignal/pkg/clickhouse"
	apperr "FinSignal/pkg/errors"
	applogger "FinSignal/pkg/logger"

	"github.com/Masterminds/squirrel"
)

const (
	barsTable     = "daily_bars"
	barsChunkSize = 2000
)

// DailyBarsDDL creates the bar table. ReplacingMergeTree keeps the newest
// row per (symbol, day) so re-imports are idempotent.
func DailyBarsDDL(db string) string {
	return fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            symbol     LowCardinality(String),
            day        Date,
            open       Float64,
            high       Float64,
            low        Float64,
            close      Float64,
            volume     Int64,
            source     LowCardinality(String),
            updated_at DateTime DEFAULT now()
        )
        ENGINE = ReplacingMergeTree(updated_at)
        ORDER BY (symbol, day)
    `, pkgch.Qualify(db, barsTable))
}

// CHBarStore implements BarStore backed by ClickHouse.
type CHBarStore struct {
	ch     *pkgch.Client
	source string
	l      *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client, source string, l *applogger.Logger) *CHBarStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHBarStore{ch: ch, source: source, l: l.With(applogger.String("table", barsTable))}
}

func (s *CHBarStore) Name() string { return "clickhouse" }

func (s *CHBarStore) selectBars(symbol string, from, to time.Time) squirrel.SelectBuilder {
	return s.ch.Builder().
		Select("day", "open", "high", "low", "close", "volume").
		From(s.ch.Table(barsTable) + " FINAL").
		Where(squirrel.And{
			squirrel.Eq{"symbol": symbol},
			squirrel.GtOrEq{"day": from.Format("2006-01-02")},
			squirrel.LtOrEq{"day": to.Format("2006-01-02")},
		}).
		OrderBy("day ASC")
}

func (s *CHBarStore) Fetch(ctx context.Context, symbol string, from, to time.Time) (models.Series, error) {
	start := time.Now()
	rows, err := s.ch.Query(ctx, s.selectBars(symbol, from, to))
	if err != nil {
		s.l.Error("clickhouse fetch_bars query error", applogger.String("symbol", symbol), applogger.Error(err))
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer rows.Close()

	out := make(models.Series, 0, 256)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.l.Error("clickhouse fetch_bars scan error", applogger.String("symbol", symbol), applogger.Error(err))
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		y, m, d := b.Date.Date()
		b.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse fetch_bars ok",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHBarStore) insertBars(symbol string, bars models.Series) squirrel.InsertBuilder {
	q := s.ch.Builder().
		Insert(s.ch.Table(barsTable)).
		Columns("symbol", "day", "open", "high", "low", "close", "volume", "source")
	for _, b := range bars {
		q = q.Values(symbol, b.Date.Format("2006-01-02"), b.Open, b.High, b.Low, b.Close, b.Volume, s.source)
	}
	return q
}

// SaveBars upserts bars in chunks of multi-row VALUES inserts. A series that
// is unordered or carries non-positive prices is rejected before any write.
func (s *CHBarStore) SaveBars(ctx context.Context, symbol string, series models.Series) error {
	if err := series.Validate(); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, "save bars "+symbol, err)
	}
	for start := 0; start < len(series); start += barsChunkSize {
		end := start + barsChunkSize
		if end > len(series) {
			end = len(series)
		}
		if _, err := s.ch.Exec(ctx, s.insertBars(symbol, series[start:end])); err != nil {
			s.l.Error("clickhouse save_bars error",
				applogger.String("symbol", symbol),
				applogger.Int("rows", end-start),
				applogger.Error(err),
			)
			return fmt.Errorf("save bars: %w", err)
		}
	}
	return nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}
