package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	Host     string        `split_words:"true" default:"localhost"`
	Port     int           `split_words:"true" default:"5432"`
	User     string        `split_words:"true" default:"postgres"`
	Password string        `split_words:"true"`
	Database string        `split_words:"true" default:"inventory_db"`
	Timeout  time.Duration `split_words:"true" default:"5s"`
	Insecure bool          `split_words:"true" default:"true"`
}

// Open builds a bun.DB over the pgdriver connector. The pool is shared by
// the durable stock backend and the audit log; each of their operations
// checks a connection out for the duration of that single call.
func Open(cfg Config) (*bun.DB, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, errors.New("postgres host is required")
	}
	database := strings.TrimSpace(cfg.Database)
	if database == "" {
		return nil, errors.New("postgres database is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid postgres port: %d", cfg.Port)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	connector := pgdriver.NewConnector(
		pgdriver.WithAddr(fmt.Sprintf("%s:%d", host, cfg.Port)),
		pgdriver.WithUser(strings.TrimSpace(cfg.User)),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithDatabase(database),
		pgdriver.WithTimeout(timeout),
		pgdriver.WithInsecure(cfg.Insecure),
		pgdriver.WithApplicationName("inventory-restock"),
	)

	sqldb := sql.OpenDB(connector)
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func MustOpen(cfg Config) *bun.DB {
	db, err := Open(cfg)
	if err != nil {
		panic(err)
	}
	return db
}
