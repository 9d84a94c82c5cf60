package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5"
)

// withMockDB swaps openDB for a sqlmock pool and records the parsed config.
func withMockDB(t *testing.T) (sqlmock.Sqlmock, **pgx.ConnConfig) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	var seen *pgx.ConnConfig
	prev := openDB
	openDB = func(cfg *pgx.ConnConfig) (*sql.DB, error) {
		seen = cfg
		return sqlDB, nil
	}
	t.Cleanup(func() { openDB = prev })
	return mock, &seen
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")
	t.Setenv("DB_STATEMENT_TIMEOUT", "bogus")

	opts := OptionsFromEnv(DefaultServerOptions())
	want := Options{
		MaxOpenConns:     7,
		MaxIdleConns:     3,
		ConnMaxLifetime:  20 * time.Minute,
		ConnMaxIdleTime:  45 * time.Second,
		PingTimeout:      time.Second,
		StatementTimeout: 10 * time.Second,
	}
	if opts != want {
		t.Fatalf("unexpected options:\n got %+v\nwant %+v", opts, want)
	}
}

func TestConnectSetsSessionParams(t *testing.T) {
	mock, seen := withMockDB(t)
	mock.ExpectPing()

	opts := DefaultServerOptions()
	opts.MaxOpenConns = 4
	db, err := Connect(context.Background(), "postgres://tailor@localhost:5432/tailor", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 4 {
		t.Fatalf("expected MaxOpenConnections=4, got %d", got)
	}
	params := (*seen).RuntimeParams
	if params["application_name"] != applicationName {
		t.Fatalf("application_name = %q", params["application_name"])
	}
	if params["statement_timeout"] != "10000" {
		t.Fatalf("statement_timeout = %q", params["statement_timeout"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConnectKeepsExplicitApplicationName(t *testing.T) {
	mock, seen := withMockDB(t)
	mock.ExpectPing()

	db, err := Connect(context.Background(), "postgres://tailor@localhost/tailor?application_name=worker", DefaultMigrateOptions())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	params := (*seen).RuntimeParams
	if params["application_name"] != "worker" {
		t.Fatalf("application_name = %q", params["application_name"])
	}
	if _, ok := params["statement_timeout"]; ok {
		t.Fatalf("migrations should not set statement_timeout")
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultServerOptions()); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestConnectReportsPingFailure(t *testing.T) {
	mock, _ := withMockDB(t)
	mock.ExpectPing().WillReturnError(driver.ErrBadConn)

	_, err := Connect(context.Background(), "postgres://tailor@localhost/tailor", DefaultMigrateOptions())
	if err == nil || !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected wrapped ErrBadConn, got %v", err)
	}
}

func TestConnectWrapsOpenError(t *testing.T) {
	prev := openDB
	openDB = func(*pgx.ConnConfig) (*sql.DB, error) {
		return nil, driver.ErrBadConn
	}
	defer func() { openDB = prev }()

	_, err := Connect(context.Background(), "postgres://x", DefaultMigrateOptions())
	if err == nil || !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected wrapped ErrBadConn, got %v", err)
	}
}
