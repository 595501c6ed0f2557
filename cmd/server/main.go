// Package main initializes and starts the showcase API server, setting up
// configuration, logging, the project store, the object store, services,
// handlers and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/devshowcase/internal/config"
	"github.com/atinyakov/devshowcase/internal/db"
	"github.com/atinyakov/devshowcase/internal/gate"
	"github.com/atinyakov/devshowcase/internal/logger"
	"github.com/atinyakov/devshowcase/internal/objectstore"
	"github.com/atinyakov/devshowcase/internal/repository"
	"github.com/atinyakov/devshowcase/internal/server/handler/http"
	"github.com/atinyakov/devshowcase/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(cmp.Or(options.LogLevel, "info")); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The admin key is captured once; later environment changes have no effect.
	if options.AdminKey == "" {
		zapLogger.Warn("ADMIN_KEY is not set; every privileged request will be rejected")
	}
	verifier := gate.New(options.AdminKey, zapLogger)

	projectRepo := newProjectRepository(ctx, options, zapLogger)

	store, files := newObjectStore(options, zapLogger)

	// Initialize business-logic services.
	projectService := service.NewProjectService(projectRepo, verifier, zapLogger)
	uploadService := service.NewUploadService(store, verifier, options.MaxUploadBytes, zapLogger)
	adminService := service.NewAdminService(verifier)

	// Base64 inflates uploads by 4/3; leave headroom for the JSON envelope.
	maxBody := int64(cmp.Or(options.MaxUploadBytes, service.DefaultMaxUploadBytes))*4/3 + 64<<10

	router := http.NewRouter(
		&http.ProjectHandler{ProjectService: projectService, Log: zapLogger},
		&http.AdminHandler{AdminService: adminService, Log: zapLogger},
		&http.UploadHandler{UploadService: uploadService, MaxBody: maxBody, Log: zapLogger},
		files,
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	var err error
	if options.TLSCert != "" && options.TLSKey != "" {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// newProjectRepository connects to PostgreSQL and starts the soft-delete
// cleaner, or falls back to an in-memory store when no DSN is configured.
func newProjectRepository(ctx context.Context, options *config.Options, zapLogger *zap.Logger) service.ProjectRepository {
	if options.DatabaseDSN == "" {
		zapLogger.Warn("DATABASE_DSN is not set; projects are kept in memory")
		return repository.NewMemoryProjectRepository()
	}

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	db.StartSoftDeleteCleaner(ctx, postgresDB,
		cmp.Or(options.PurgeInterval, time.Hour),
		cmp.Or(options.DeletedRetention, 30*24*time.Hour),
		zapLogger,
	)
	return repository.NewPostgresProjectRepository(postgresDB)
}

// newObjectStore prefers COS and otherwise stores uploads on disk, in which
// case the returned handler serves them.
func newObjectStore(options *config.Options, zapLogger *zap.Logger) (service.ObjectStore, nethttp.Handler) {
	cosCfg := objectstore.COSConfig{
		SecretID:  options.COSSecretID,
		SecretKey: options.COSSecretKey,
		Bucket:    options.COSBucket,
		Region:    options.COSRegion,
	}
	if cosCfg.Enabled() {
		store, err := objectstore.NewCOSStore(cosCfg)
		if err != nil {
			zapLogger.Fatal("cannot init COS store", zap.Error(err))
		}
		zapLogger.Info("uploads go to COS", zap.String("bucket", cosCfg.Bucket), zap.String("region", cosCfg.Region))
		return store, nil
	}

	store, err := objectstore.NewDiskStore(options.UploadDir, options.PublicBaseURL)
	if err != nil {
		zapLogger.Fatal("cannot init upload directory", zap.Error(err))
	}
	zapLogger.Info("uploads go to local disk", zap.String("dir", options.UploadDir))
	return store, store.Handler()
}
