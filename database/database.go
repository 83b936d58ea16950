package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/survey-api/config"
	"github.com/mbolis/survey-api/log"
)

// Open connects to the SQLite database named by cfg.DBUrl and brings its
// schema up to date.
func Open(cfg config.Config) (db *sql.DB, err error) {
	db, err = sql.Open("sqlite3", dsn(cfg.DBUrl))
	if err != nil {
		return
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = db.Ping()
	if err != nil {
		return nil, closeOnError(db, err)
	}

	err = migrateDB(db)
	if err != nil {
		return nil, closeOnError(db, err)
	}

	log.WithField("db", cfg.DBUrl).Debug("database ready")
	return
}

// foreign keys are a per-connection setting in SQLite, so they go in the
// DSN rather than in a one-off PRAGMA.
// Transactions take the write lock on BEGIN: a deferred transaction that
// reads and then writes gets SQLITE_BUSY without waiting on the busy timeout.
func dsn(url string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_foreign_keys=on&_txlock=immediate"
}

func closeOnError(db *sql.DB, err error) error {
	return multierror.Append(err, db.Close()).ErrorOrNil()
}

// EnsureAdmin creates the admin account, or resets its password when it
// already exists.
func EnsureAdmin(ctx context.Context, db *sql.DB, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO account (username, password_hash) VALUES (?, ?)
		ON CONFLICT (username) DO UPDATE SET password_hash = excluded.password_hash`,
		username,
		hash,
	)
	return err
}
