package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverFor(t *testing.T) {
	tests := []struct {
		dsn         string
		wantDriver  string
		wantDialect string
		wantSource  string
	}{
		{"flaskr.db", "sqlite", dialectSQLite, "flaskr.db"},
		{":memory:", "sqlite", dialectSQLite, ":memory:"},
		{"sqlite:///tmp/blog.db", "sqlite", dialectSQLite, "/tmp/blog.db"},
		{"postgres://u:p@localhost/db", "pgx", dialectPostgres, "postgres://u:p@localhost/db"},
		{"postgresql://u:p@localhost/db", "pgx", dialectPostgres, "postgresql://u:p@localhost/db"},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			driver, dialect, source := driverFor(tt.dsn)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantDialect, dialect)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestRebind(t *testing.T) {
	query := "SELECT id FROM posts WHERE title LIKE ? OR text LIKE ? AND id = ?"

	sqlite := &DB{dialect: dialectSQLite}
	assert.Equal(t, query, sqlite.rebind(query))

	pg := &DB{dialect: dialectPostgres}
	assert.Equal(t, "SELECT id FROM posts WHERE title LIKE $1 OR text LIKE $2 AND id = $3", pg.rebind(query))
}

func TestOpenDB(t *testing.T) {
	db, err := openDB(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, dialectSQLite, db.dialect)
	assert.NoError(t, db.Ping())
}

func TestMigrateDB(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := openDB(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, migrateDB(ctx, db, logger))
	// Running again must be a no-op.
	require.NoError(t, migrateDB(ctx, db, logger))

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('posts') WHERE name IN ('id', 'title', 'text')`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var notNull int
	err = db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('posts') WHERE name IN ('title', 'text') AND "notnull" = 1`).Scan(&notNull)
	require.NoError(t, err)
	assert.Equal(t, 2, notNull)
}
