// Package database opens the MySQL pool and creates the schema.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSN builds the driver connection string.
func DSN(user, pass, host, port, name string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = host + ":" + port
	cfg.DBName = name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// an UPDATE that changes nothing still reports its matched row
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS order_rows (
		id           BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name         VARCHAR(255) NOT NULL,
		price        DOUBLE       NOT NULL,
		table_number BIGINT       NOT NULL,
		note         TEXT         NULL,
		KEY idx_order_rows_table (table_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS dining_tables (
		id        BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		row_index INT          NOT NULL,
		col_index INT          NOT NULL,
		status    ENUM('free','occupied') NOT NULL DEFAULT 'free',
		owner     VARCHAR(64)  NULL,
		KEY idx_dining_tables_owner (owner)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS principals (
		username      VARCHAR(64)  NOT NULL PRIMARY KEY,
		password_hash VARCHAR(255) NOT NULL,
		role          ENUM('owner','client') NOT NULL,
		table_number  BIGINT       NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the schema.  Running it again is a no-op.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
