package main

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
)

//go:embed migrations
var migrations embed.FS

func init() {
	// SQLite's built-in LOWER only folds ASCII.
	sqlite.MustRegisterDeterministicScalarFunction("casefold", 1, casefold)
}

func casefold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

const (
	dialectSQLite   = "sqlite3"
	dialectPostgres = "postgres"
)

// DB is a database handle that knows which SQL dialect it speaks.
// Queries are written with ? placeholders and rebound for Postgres.
type DB struct {
	*sql.DB
	dialect string
}

// driverFor maps a DATABASE_URL onto a database/sql driver name, goose
// dialect and driver-specific DSN. Anything that is not a Postgres URL is
// treated as a SQLite file path.
func driverFor(dsn string) (driverName, dialect, source string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", dialectPostgres, dsn
	default:
		return "sqlite", dialectSQLite, strings.TrimPrefix(dsn, "sqlite://")
	}
}

func openDB(ctx context.Context, dsn string) (*DB, error) {
	driverName, dialect, source := driverFor(dsn)

	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}

	if dialect == dialectSQLite {
		// An in-memory database lives and dies with its connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(15 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, dialect: dialect}, nil
}

// migrateDB applies the embedded migrations for the handle's dialect.
func migrateDB(ctx context.Context, db *DB, logger *slog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger})

	if err := goose.SetDialect(db.dialect); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}

	dir := "migrations/sqlite"
	if db.dialect == dialectPostgres {
		dir = "migrations/postgres"
	}

	if err := goose.UpContext(ctx, db.DB, dir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// fold wraps expr in the dialect's Unicode-aware lowercase function.
func (db *DB) fold(expr string) string {
	if db.dialect == dialectPostgres {
		return "LOWER(" + expr + ")"
	}
	return "casefold(" + expr + ")"
}

// rebind rewrites ? placeholders into $N for Postgres.
func (db *DB) rebind(query string) string {
	if db.dialect != dialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type gooseLogger struct {
	l *slog.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.l.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrations"))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrations"))
	os.Exit(1)
}
