package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"candleChart/internal/domain"
	"candleChart/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.KlineRepository and ports.TradeRepository interfaces using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/charts.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("%w: failed to open database at '%s': %w", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("%w: failed to ping database at '%s': %w", ports.ErrDBConnection, dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// One connection: SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	return repo, nil
}

// initializeSchema creates tables if they don't exist. Times are stored as
// integers (ms for klines, ns for trades) so ordering is exact.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS klines (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		open_time INTEGER NOT NULL,
		close_time INTEGER NOT NULL DEFAULT 0,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		PRIMARY KEY (symbol, interval, open_time)
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		executed_at INTEGER NOT NULL,
		action TEXT NOT NULL,
		price REAL NOT NULL,
		amount REAL NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol_time ON trades (symbol, executed_at);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- KlineRepository Implementation ---

// SaveKlines upserts klines in a single transaction.
func (r *Repository) SaveKlines(ctx context.Context, klines []*domain.Kline) (int, error) {
	if len(klines) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin kline transaction: %w", ports.ErrUpdateFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO klines (symbol, interval, open_time, close_time, open, high, low, close, volume)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (symbol, interval, open_time) DO UPDATE SET
		close_time = excluded.close_time, open = excluded.open, high = excluded.high,
		low = excluded.low, close = excluded.close, volume = excluded.volume`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare kline upsert: %w", ports.ErrUpdateFailed, err)
	}
	defer stmt.Close()

	for _, k := range klines {
		var closeTime int64
		if !k.CloseTime.IsZero() {
			closeTime = k.CloseTime.UnixMilli()
		}
		if _, err := stmt.ExecContext(ctx, k.Symbol, k.Interval, k.OpenTime.UnixMilli(), closeTime,
			k.Open, k.High, k.Low, k.Close, k.Volume); err != nil {
			return 0, fmt.Errorf("%w: upsert kline %s %s %d: %w", ports.ErrUpdateFailed, k.Symbol, k.Interval, k.OpenTime.UnixMilli(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit klines: %w", ports.ErrUpdateFailed, err)
	}
	r.logger.Debug(ctx, "Klines saved", map[string]interface{}{"symbol": klines[0].Symbol, "interval": klines[0].Interval, "count": len(klines)})
	return len(klines), nil
}

// FindKlines returns the latest limit klines (all when limit <= 0) in ascending time order.
func (r *Repository) FindKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	const query = `
	SELECT symbol, interval, open_time, close_time, open, high, low, close, volume FROM (
		SELECT * FROM klines
		WHERE symbol = ? AND interval = ?
		ORDER BY open_time DESC
		LIMIT ?
	) ORDER BY open_time ASC`

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := r.db.QueryContext(ctx, query, symbol, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query klines for %s %s: %w", ports.ErrQueryFailed, symbol, interval, err)
	}
	defer rows.Close()

	klines := make([]*domain.Kline, 0)
	for rows.Next() {
		k, err := scanKline(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan kline: %w", ports.ErrQueryFailed, err)
		}
		klines = append(klines, k)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate kline rows: %w", ports.ErrQueryFailed, err)
	}
	return klines, nil
}

// --- TradeRepository Implementation ---

// CreateTrade saves a new trade record and returns its assigned ID.
func (r *Repository) CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error) {
	const query = `
	INSERT INTO trades (symbol, executed_at, action, price, amount)
	VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		trade.Symbol, trade.Timestamp.UnixNano(), string(trade.Action), trade.Price, trade.Amount)
	if err != nil {
		return 0, fmt.Errorf("%w: insert trade for symbol %s: %w", ports.ErrUpdateFailed, trade.Symbol, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert ID for trade %s: %w", ports.ErrUpdateFailed, trade.Symbol, err)
	}
	trade.ID = id
	r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": id, "symbol": trade.Symbol, "action": trade.Action})
	return id, nil
}

// FindBySymbol returns the latest limit trades (all when limit <= 0) in execution order.
func (r *Repository) FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	const query = `
	SELECT id, symbol, executed_at, action, price, amount FROM (
		SELECT * FROM trades
		WHERE symbol = ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?
	) ORDER BY executed_at ASC, id ASC`

	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query trades for symbol %s: %w", ports.ErrQueryFailed, symbol, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan trade: %w", ports.ErrQueryFailed, err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate trade rows: %w", ports.ErrQueryFailed, err)
	}
	return trades, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanKline(s scanner) (*domain.Kline, error) {
	k := &domain.Kline{IsFinal: true}
	var openMs, closeMs int64
	if err := s.Scan(&k.Symbol, &k.Interval, &openMs, &closeMs, &k.Open, &k.High, &k.Low, &k.Close, &k.Volume); err != nil {
		return nil, err
	}
	k.OpenTime = time.UnixMilli(openMs).UTC()
	if closeMs != 0 {
		k.CloseTime = time.UnixMilli(closeMs).UTC()
	}
	return k, nil
}

func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var executedAt int64
	var action string
	if err := s.Scan(&t.ID, &t.Symbol, &executedAt, &action, &t.Price, &t.Amount); err != nil {
		return nil, err
	}
	t.Timestamp = time.Unix(0, executedAt).UTC()
	t.Action = domain.TradeAction(action)
	return t, nil
}
