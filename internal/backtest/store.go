package backtest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"gridsim/internal/core"
	apperrors "gridsim/pkg/errors"
)

// ResultStore keeps simulation run results in a local SQLite database.
type ResultStore struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// NewResultStore opens (and creates if needed) the run database under root.
func NewResultStore(root string) (*ResultStore, error) {
	if root == "" {
		return nil, apperrors.ConfigError{Field: "store.path", Message: "must not be empty"}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(root, "runs.db")
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &ResultStore{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *ResultStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS sim_runs (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		ticks INTEGER NOT NULL,
		initial_orders INTEGER NOT NULL,
		total_trades INTEGER NOT NULL,
		winning_trades INTEGER NOT NULL,
		losing_trades INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		total_profit TEXT NOT NULL,
		stats_json TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	)`)
	return err
}

// InsertResult persists one run result.
func (s *ResultStore) InsertResult(ctx context.Context, res Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return apperrors.ErrStoreClosed
	}
	statsJSON, err := json.Marshal(res.Statistics)
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO sim_runs
		(id, symbol, ticks, initial_orders, total_trades, winning_trades, losing_trades,
		 win_rate, total_profit, stats_json, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Symbol, res.Ticks, res.InitialOrders,
		res.Statistics.TotalTrades, res.Statistics.WinningTrades, res.Statistics.LosingTrades,
		res.Statistics.WinRate, res.Statistics.TotalProfit.String(), string(statsJSON),
		res.StartedAt.UnixMilli(), res.FinishedAt.UnixMilli())
	return err
}

// GetResult loads one run by ID.
func (s *ResultStore) GetResult(ctx context.Context, id string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return Result{}, apperrors.ErrStoreClosed
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, symbol, ticks, initial_orders, stats_json,
		started_at, finished_at FROM sim_runs WHERE id = ?`, id)
	return scanResult(row)
}

// ListResults returns the most recent runs, newest first.
func (s *ResultStore) ListResults(ctx context.Context, limit int) ([]Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, apperrors.ErrStoreClosed
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, symbol, ticks, initial_orders, stats_json,
		started_at, finished_at FROM sim_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (Result, error) {
	var res Result
	var statsJSON string
	var startedMs, finishedMs int64
	err := row.Scan(&res.RunID, &res.Symbol, &res.Ticks, &res.InitialOrders,
		&statsJSON, &startedMs, &finishedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, apperrors.ErrRunNotFound
	}
	if err != nil {
		return Result{}, err
	}
	var stats core.Statistics
	if err := json.Unmarshal([]byte(statsJSON), &stats); err != nil {
		return Result{}, fmt.Errorf("unmarshal statistics: %w", err)
	}
	res.Statistics = stats
	res.StartedAt = time.UnixMilli(startedMs)
	res.FinishedAt = time.UnixMilli(finishedMs)
	return res, nil
}
