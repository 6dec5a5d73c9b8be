// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/bhasha-cms/bhasha/internal/audit"
	"github.com/bhasha-cms/bhasha/internal/cache"
	"github.com/bhasha-cms/bhasha/internal/config"
	"github.com/bhasha-cms/bhasha/internal/feed"
	"github.com/bhasha-cms/bhasha/internal/geoip"
	"github.com/bhasha-cms/bhasha/internal/handler"
	"github.com/bhasha-cms/bhasha/internal/handler/api"
	"github.com/bhasha-cms/bhasha/internal/imaging"
	"github.com/bhasha-cms/bhasha/internal/logging"
	"github.com/bhasha-cms/bhasha/internal/mailer"
	"github.com/bhasha-cms/bhasha/internal/maintenance"
	"github.com/bhasha-cms/bhasha/internal/middleware"
	"github.com/bhasha-cms/bhasha/internal/render"
	"github.com/bhasha-cms/bhasha/internal/session"
	"github.com/bhasha-cms/bhasha/internal/store"
	"github.com/bhasha-cms/bhasha/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Bhasha - multi-language image post CMS\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHA_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHA_DB_PATH          SQLite database path (default: ./data/bhasha.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHA_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHA_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHA_BASE_URL         Absolute site address for share links (default: http://localhost:8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHA_UPLOADS_DIR      Image upload directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHA_REDIS_URL        Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BHASHA_GEOIP_DB_PATH    GeoLite2-Country.mmdb path for login geography (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("bhasha %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data and uploads directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	queries := store.New(db)

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	cacher, err := cache.NewCache(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := cacher.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("cache initialized", "backend", "memory")
	}
	languageCache := cache.NewLanguageCache(cacher, queries)

	geo := geoip.NewLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			slog.Warn("geoip disabled", "error", err, "path", cfg.GeoIPDBPath)
		} else {
			slog.Info("geoip database loaded", "path", cfg.GeoIPDBPath)
		}
	}
	defer func() {
		if err := geo.Close(); err != nil {
			slog.Error("error closing geoip database", "error", err)
		}
	}()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	recorder := audit.NewRecorder(queries, logger)
	feedService := feed.New(queries)
	processor := imaging.NewProcessor(cfg.UploadsDir)
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)

	sched := maintenance.New(queries, geo, logger, cfg.EventRetentionDays)
	sched.Start()
	defer sched.Stop()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))
	apiRateLimiter := middleware.NewGlobalRateLimiter(100, 200)

	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection, recorder, geo)
	adminHandler := handler.NewAdminHandler(db, renderer)
	postHandler := handler.NewPostHandler(db, renderer, processor, recorder, languageCache)
	userHandler := handler.NewUserHandler(db, renderer, sessionManager, mail, cfg.BaseURL+"/admin/login")
	passwordHandler := handler.NewPasswordHandler(db, renderer)
	activityHandler := handler.NewActivityHandler(queries, recorder, renderer, geo)
	frontendHandler := handler.NewFrontendHandler(queries, feedService, languageCache, renderer, cfg.BaseURL)
	apiFeedHandler := api.NewFeedHandler(feedService, languageCache, cfg.BaseURL)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)

	// Public frontend routes
	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Get("/", frontendHandler.Index)
		r.Get("/post/{id}", frontendHandler.Share)
	})

	// Public JSON API
	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())
		r.Get("/posts", apiFeedHandler.Posts)
		r.Get("/languages", apiFeedHandler.Languages)
	})

	// Auth routes
	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(csrfMiddleware)
		r.Get("/admin/login", authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post("/admin/login", authHandler.Login)
		r.Get("/admin/logout", authHandler.Logout)
		r.Post("/admin/logout", authHandler.Logout)
	})

	// Admin console routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))

		r.Get("/", adminHandler.Dashboard)

		r.Get("/posts/new", postHandler.NewForm)
		r.Post("/posts", postHandler.Create)
		r.Get("/posts/{id}", postHandler.EditForm)
		r.Post("/posts/{id}", postHandler.Update)
		r.Post("/posts/{id}/delete", postHandler.Delete)

		r.Get("/password", passwordHandler.Form)
		r.Post("/password", passwordHandler.Change)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())

			r.Get("/users", userHandler.List)
			r.Post("/users", userHandler.Create)
			r.Post("/users/{id}/block", userHandler.Block)
			r.Post("/users/{id}/unblock", userHandler.Unblock)
			r.Post("/users/{id}/delete", userHandler.Delete)

			r.Get("/activity", activityHandler.Index)
		})
	})

	// Serve uploaded images; cache for 1 week
	uploadsHandler := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
	r.Handle("/uploads/*", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=604800")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		uploadsHandler.ServeHTTP(w, req)
	}))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
