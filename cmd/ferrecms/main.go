// Package main is the entry point for the FerreCMS server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support. The adduser subcommand
// provisions admin accounts out-of-band; no credentials are ever seeded.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"ferrecms/internal/cache"
	"ferrecms/internal/config"
	"ferrecms/internal/database"
	"ferrecms/internal/handlers"
	"ferrecms/internal/mailer"
	"ferrecms/internal/render"
	"ferrecms/internal/router"
	"ferrecms/internal/session"
	"ferrecms/internal/storage"
	"ferrecms/internal/store"
)

func main() {
	// Structured logger — text output, debug level.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "adduser" {
		runAddUser(cfg, os.Args[2:])
		return
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	brandStore := store.NewBrandStore(db)
	productStore := store.NewProductStore(db)
	imageStore := store.NewProductImageStore(db)
	slideStore := store.NewSlideStore(db)
	siteStore := store.NewSiteInfoStore(db)
	inquiryStore := store.NewInquiryStore(db)

	// Connect to S3-compatible object storage (optional — app works without it).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured — media uploads disabled")
	}

	// SMTP for inquiry notifications (optional).
	var mailClient mailer.Client
	if smtp := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPUser); smtp != nil {
		mailClient = smtp
		slog.Info("smtp configured", "host", cfg.SMTPHost)
	} else {
		slog.Warn("smtp not configured — inquiry mail disabled")
	}

	// Full-page HTML cache in Valkey for public pages.
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// Create handler groups with their dependencies.
	adminHandlers := handlers.NewAdmin(renderer, categoryStore, brandStore, productStore, imageStore, slideStore, siteStore, inquiryStore, pageCache, storageClient)
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore)
	publicHandlers := handlers.NewPublic(renderer, categoryStore, brandStore, productStore, imageStore, slideStore, siteStore, inquiryStore, pageCache, storageClient, mailClient)

	r := router.New(sessionStore, adminHandlers, authHandlers, publicHandlers)

	// Create the HTTP server with sensible timeouts. ReadTimeout covers
	// multipart image uploads on slow connections.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// runAddUser provisions an admin account: ferrecms adduser <username>.
// The password is read from the terminal, never from arguments or the
// environment, so it stays out of shell history and process listings.
func runAddUser(cfg *config.Config, args []string) {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintln(os.Stderr, "usage: ferrecms adduser <username>")
		os.Exit(2)
	}
	username := args[0]

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		slog.Error("failed to read password", "error", err)
		os.Exit(1)
	}
	if len(password) < 8 {
		fmt.Fprintln(os.Stderr, "password must be at least 8 characters")
		os.Exit(2)
	}

	fmt.Fprint(os.Stderr, "Repeat password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil || string(password) != string(confirm) {
		fmt.Fprintln(os.Stderr, "passwords do not match")
		os.Exit(2)
	}

	userStore := store.NewUserStore(db)
	user, err := userStore.Create(username, string(password), true)
	if err != nil {
		slog.Error("failed to create user", "username", username, "error", err)
		os.Exit(1)
	}

	fmt.Printf("admin user %s created (%s)\n", user.Username, user.ID)
}
