package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	pkgch "TradePulse/pkg/clickhouse"
	applogger "TradePulse/pkg/logger"
)

// archiveSchema creates the candle archive table. Idempotent.
var archiveSchema = []string{
	`CREATE DATABASE IF NOT EXISTS tradepulse`,
	`CREATE TABLE IF NOT EXISTS tradepulse.market_candles (
        ts        DateTime,
        symbol    LowCardinality(String),
        timeframe LowCardinality(String),
        open      Float64,
        high      Float64,
        low       Float64,
        close     Float64,
        volume    Float64
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, timeframe, ts)`,
}

// CHCandleArchive persists fetched market candles to ClickHouse for offline
// analysis. The position ledger itself stays in memory.
type CHCandleArchive struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHCandleArchive(ch *pkgch.Client) *CHCandleArchive {
	return &CHCandleArchive{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHCandleArchive) SetLogger(l *applogger.Logger) { s.l = l }

// Init ensures the archive schema exists.
func (s *CHCandleArchive) Init(ctx context.Context) error {
	for _, stmt := range archiveSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("archive schema: %w", err)
		}
	}
	return nil
}

// StoreBatch inserts a fetched candle series. ReplacingMergeTree deduplicates
// the overlap between consecutive refresh cycles.
func (s *CHCandleArchive) StoreBatch(ctx context.Context, symbol string, tf domrepo.Timeframe, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	start := time.Now()

	const chunkSize = 2000
	for lo := 0; lo < len(candles); lo += chunkSize {
		hi := lo + chunkSize
		if hi > len(candles) {
			hi = len(candles)
		}

		values := make([]string, 0, hi-lo)
		args := make([]interface{}, 0, (hi-lo)*8)
		for _, c := range candles[lo:hi] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, c.Time, symbol, string(tf), c.Open, c.High, c.Low, c.Close, c.Volume)
		}
		q := "INSERT INTO tradepulse.market_candles (ts, symbol, timeframe, open, high, low, close, volume) VALUES " +
			strings.Join(values, ",")
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse archive insert error",
					applogger.String("symbol", symbol),
					applogger.String("tf", string(tf)),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("archive insert: %w", err)
		}
	}

	if s.l != nil {
		s.l.Debug("clickhouse archive batch ok",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("rows", len(candles)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

// Latest reads back the most recent archived candles, oldest first. Serves
// as the offline fallback when every live provider is down.
func (s *CHCandleArchive) Latest(ctx context.Context, symbol string, tf domrepo.Timeframe, limit int) ([]models.Candle, error) {
	const q = `
        SELECT ts, open, high, low, close, volume
        FROM tradepulse.market_candles
        WHERE symbol = ? AND timeframe = ?
        ORDER BY ts DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, string(tf), limit)
	if err != nil {
		return nil, fmt.Errorf("archive query: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Candle, 0, limit)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	return tmp, nil
}

func (s *CHCandleArchive) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHCandleArchive) Close() error {
	return nil // pool managed by pkg client
}
