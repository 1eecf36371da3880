package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// One statement per entry: the driver rejects multi-statement Exec by default.
// Binary collation keeps type matching case-sensitive and tie-breaks byte-wise.
var schemaMySQL = []string{`
	CREATE TABLE IF NOT EXISTS events (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		event_type VARCHAR(64) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
		timestamp DATETIME(6) NOT NULL,
		product_id VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NULL,
		order_amount DECIMAL(12, 2) NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_event_type (event_type),
		INDEX idx_product_id (product_id)
	)
`}

// MySQLStore reads the event log from MySQL.
type MySQLStore struct {
	*sqlStore
}

// NewMySQLStore connects using a go-sql-driver DSN (user:pass@tcp(host:3306)/db).
func NewMySQLStore(ctx context.Context, dsn string) (*MySQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	return &MySQLStore{sqlStore: &sqlStore{
		db:        db,
		dialect:   "mysql",
		schemaSQL: schemaMySQL,
	}}, nil
}
