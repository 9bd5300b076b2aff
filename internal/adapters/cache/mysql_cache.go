package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/linkguard/internal/core"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the VerdictCache interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS verdict_cache (
			fingerprint VARCHAR(64) PRIMARY KEY,
			verdict TEXT,
			created_at TIMESTAMP,
			expires_at TIMESTAMP,
			INDEX idx_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	c := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go c.startCleanupTask()

	return c, nil
}

// Get retrieves a live entry for a fingerprint
func (c *MySQLCache) Get(ctx context.Context, fingerprint string) (*core.AggregatedVerdict, bool) {
	var raw string

	err := c.db.QueryRowContext(ctx, `
		SELECT verdict
		FROM verdict_cache
		WHERE fingerprint = ? AND expires_at > NOW()
	`, fingerprint).Scan(&raw)

	if err != nil {
		if err != sql.ErrNoRows {
			c.logger.Error("Failed to query cache", zap.Error(err), zap.String("fingerprint", fingerprint))
		}
		return nil, false
	}

	var verdict core.AggregatedVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		c.logger.Error("Failed to decode cached verdict", zap.Error(err))
		return nil, false
	}

	return &verdict, true
}

// Set stores a verdict under a fingerprint with the given TTL
func (c *MySQLCache) Set(ctx context.Context, fingerprint string, verdict *core.AggregatedVerdict, ttl time.Duration) {
	raw, err := json.Marshal(verdict)
	if err != nil {
		c.logger.Error("Failed to encode verdict for cache", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	_, err = c.db.ExecContext(ctx, `
		REPLACE INTO verdict_cache (fingerprint, verdict, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, fingerprint, string(raw), now, now.Add(ttl))

	if err != nil {
		c.logger.Error("Failed to insert cache entry", zap.Error(err), zap.String("fingerprint", fingerprint))
	}
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, fingerprint string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM verdict_cache
		WHERE fingerprint = ?
	`, fingerprint)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM verdict_cache
		WHERE expires_at <= NOW()
	`)

	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rows))
	}
	return nil
}

// startCleanupTask runs the background expiry sweep
func (c *MySQLCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
