package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds database configuration
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	ConnectRetries  int
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// dsn builds the driver DSN. parseTime is required: sessions and ledger
// entries scan into time.Time, and the ledger's payment refs are compared
// under utf8mb4_unicode_ci.
func (cfg Config) dsn() string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Collation = "utf8mb4_unicode_ci"
	return mc.FormatDSN()
}

// Connection wraps sql.DB with additional features
type Connection struct {
	DB *sql.DB
}

// NewConnection opens the pool and waits for the database to become
// reachable, backing off between attempts. The retry budget covers the
// common case of the database container still starting.
func NewConnection(cfg Config) (*Connection, error) {
	db, err := sql.Open("mysql", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = 5
	}
	for attempt := 1; ; attempt++ {
		if err = db.Ping(); err == nil {
			break
		}
		if attempt >= retries {
			db.Close()
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", retries, err)
		}
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	db.SetMaxOpenConns(defaultInt(cfg.MaxOpenConns, 25))
	db.SetMaxIdleConns(defaultInt(cfg.MaxIdleConns, 5))
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return &Connection{DB: db}, nil
}

func defaultInt(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.DB.Close()
}

// Ping verifies connection is alive
func (c *Connection) Ping() error {
	return c.DB.Ping()
}
