package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Params describes a MySQL connection.  Zero pool values fall back to
// defaults sized for a single portal instance.
type Params struct {
	User string
	Pass string // empty means no password
	Host string
	Port string
	Name string

	MaxConns     int           // max open and idle connections (default 25)
	ConnLifetime time.Duration // recycle age for pooled connections (default 30m)
}

// Open connects to MySQL, applies the pool settings and verifies the
// connection with a short ping.
func Open(p Params) (*sql.DB, error) {
	auth := p.User
	if p.Pass != "" {
		auth = fmt.Sprintf("%s:%s", p.User, p.Pass)
	}
	// parseTime maps DATETIME columns to time.Time; loc=UTC matches how due
	// dates and timestamps are computed throughout the repositories.
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, p.Host, p.Port, p.Name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	if p.MaxConns <= 0 {
		p.MaxConns = 25
	}
	if p.ConnLifetime <= 0 {
		p.ConnLifetime = 30 * time.Minute
	}
	db.SetMaxOpenConns(p.MaxConns)
	db.SetMaxIdleConns(p.MaxConns)
	db.SetConnMaxLifetime(p.ConnLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
