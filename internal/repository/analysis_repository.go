package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FinSignal/internal/domain/models"
	pkgch "FinSignal/pkg/clickhouse"
	applogger "FinSignal/pkg/logger"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"
)

const snapshotsTable = "analysis_snapshots"

// AnalysisSnapshotsDDL creates the snapshot table, partitioned by month.
func AnalysisSnapshotsDDL(db string) string {
	return fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            symbol          LowCardinality(String),
            analyzed_at     DateTime64(3, 'UTC'),
            period_days     UInt32,
            current_price   Float64,
            overall_signal  LowCardinality(String),
            signal_strength Float64,
            buy_signals     UInt8,
            sell_signals    UInt8,
            neutral_signals UInt8,
            indicators      String
        )
        ENGINE = MergeTree
        PARTITION BY toYYYYMM(analyzed_at)
        ORDER BY (symbol, analyzed_at)
    `, pkgch.Qualify(db, snapshotsTable))
}

// CHAnalysisStore implements AnalysisStore backed by ClickHouse.
type CHAnalysisStore struct {
	ch *pkgch.Client
	l  *applogger.Logger
}

func NewCHAnalysisStore(ch *pkgch.Client, l *applogger.Logger) *CHAnalysisStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHAnalysisStore{ch: ch, l: l.With(applogger.String("table", snapshotsTable))}
}

// SnapshotOf flattens an analysis into its stored form.
func SnapshotOf(a *models.Analysis, fallback time.Time) (models.AnalysisSnapshot, error) {
	ind, err := json.Marshal(a.Indicators)
	if err != nil {
		return models.AnalysisSnapshot{}, fmt.Errorf("encode indicators: %w", err)
	}
	at, err := time.Parse(time.RFC3339, a.AnalysisDate)
	if err != nil {
		at = fallback
	}
	return models.AnalysisSnapshot{
		Symbol:       a.Symbol,
		AnalyzedAt:   at.UTC(),
		PeriodDays:   a.PeriodDays,
		CurrentPrice: a.CurrentPrice,
		Overall:      a.Signals.Overall,
		Strength:     a.Signals.Strength,
		Buy:          a.Signals.Buy,
		Sell:         a.Signals.Sell,
		Neutral:      a.Signals.Neutral,
		Indicators:   ind,
	}, nil
}

func (s *CHAnalysisStore) insertSnapshot(snap models.AnalysisSnapshot) squirrel.InsertBuilder {
	return s.ch.Builder().
		Insert(s.ch.Table(snapshotsTable)).
		Columns("symbol", "analyzed_at", "period_days", "current_price", "overall_signal",
			"signal_strength", "buy_signals", "sell_signals", "neutral_signals", "indicators").
		Values(snap.Symbol, snap.AnalyzedAt, snap.PeriodDays, snap.CurrentPrice, string(snap.Overall),
			snap.Strength, snap.Buy, snap.Sell, snap.Neutral, string(snap.Indicators))
}

func (s *CHAnalysisStore) Save(ctx context.Context, a *models.Analysis) error {
	snap, err := SnapshotOf(a, time.Now())
	if err != nil {
		return err
	}
	if _, err := s.ch.Exec(ctx, s.insertSnapshot(snap)); err != nil {
		s.l.Error("clickhouse save_snapshot error", applogger.String("symbol", a.Symbol), applogger.Error(err))
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *CHAnalysisStore) selectLatest(symbol string) squirrel.SelectBuilder {
	return s.ch.Builder().
		Select("symbol", "analyzed_at", "period_days", "current_price", "overall_signal",
			"signal_strength", "buy_signals", "sell_signals", "neutral_signals", "indicators").
		From(s.ch.Table(snapshotsTable)).
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("analyzed_at DESC").
		Limit(1)
}

// Latest returns the most recent snapshot for a display symbol, if any.
func (s *CHAnalysisStore) Latest(ctx context.Context, symbol string) (optional.Option[models.AnalysisSnapshot], error) {
	query, args, err := s.selectLatest(symbol).ToSql()
	if err != nil {
		return optional.None[models.AnalysisSnapshot](), fmt.Errorf("build query: %w", err)
	}

	var (
		snap    models.AnalysisSnapshot
		overall string
		ind     string
		period  uint32
		b, se   uint8
		n       uint8
	)
	err = s.ch.DB().QueryRowContext(ctx, query, args...).Scan(
		&snap.Symbol, &snap.AnalyzedAt, &period, &snap.CurrentPrice, &overall,
		&snap.Strength, &b, &se, &n, &ind,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return optional.None[models.AnalysisSnapshot](), nil
	}
	if err != nil {
		s.l.Error("clickhouse latest_snapshot error", applogger.String("symbol", symbol), applogger.Error(err))
		return optional.None[models.AnalysisSnapshot](), fmt.Errorf("latest snapshot: %w", err)
	}
	snap.PeriodDays = int(period)
	snap.Overall = models.Signal(overall)
	snap.Buy, snap.Sell, snap.Neutral = int(b), int(se), int(n)
	snap.Indicators = json.RawMessage(ind)
	return optional.Some(snap), nil
}

func (s *CHAnalysisStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}
