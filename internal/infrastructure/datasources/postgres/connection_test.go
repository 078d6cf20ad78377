package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"vininfo.backend/internal/config"
)

func TestNewConnection_PingFailure(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "x",
		Password: "x",
		DBName:   "x",
		SSLMode:  "disable",
	}

	db, err := NewConnection(cfg)
	require.Error(t, err)
	require.Nil(t, db)
	require.Contains(t, err.Error(), "failed to ping database")
}

func TestNewConnection_OpenAndPingHooks(t *testing.T) {
	origOpen := sqlOpen
	origPing := dbPing
	t.Cleanup(func() {
		sqlOpen = origOpen
		dbPing = origPing
	})

	cfg := config.DatabaseConfig{DSN: "postgres://u:p@localhost:5432/d?sslmode=disable"}

	sqlOpen = func(_, _ string) (*sql.DB, error) {
		return nil, errors.New("open failed")
	}
	db, err := NewConnection(cfg)
	require.Error(t, err)
	require.Nil(t, db)
	require.Contains(t, err.Error(), "failed to open database")

	var gotDSN string
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDSN = dsn
		return origOpen(driver, dsn)
	}
	dbPing = func(*sql.DB) error { return nil }

	db, err = NewConnection(cfg)
	require.NoError(t, err)
	require.NotNil(t, db)
	t.Cleanup(func() { _ = db.Close() })
	require.Equal(t, cfg.DSN, gotDSN)

	gdb, err := NewGorm(db)
	require.NoError(t, err)
	require.NotNil(t, gdb)
}
