package main

import (
	"context"
	"html/template"
	"log/slog"
	"os"

	"github.com/gorilla/sessions"
)

type Blog struct {
	cfg       Config
	db        *DB
	logger    *slog.Logger
	sessions  *sessions.CookieStore
	templates map[string]*template.Template
}

func NewBlog(cfg Config, db *DB, logger *slog.Logger) (*Blog, error) {
	store, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	return &Blog{
		cfg:       cfg,
		db:        db,
		logger:    logger,
		sessions:  store,
		templates: templates,
	}, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("loading configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, w := range cfg.warnings() {
		logger.Warn(w)
	}

	ctx := context.Background()

	db, err := openDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("opening database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := migrateDB(ctx, db, logger); err != nil {
		logger.Error("migrating database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	blog, err := NewBlog(cfg, db, logger)
	if err != nil {
		logger.Error("initializing blog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := blog.serve(); err != nil {
		logger.Error("serving", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
