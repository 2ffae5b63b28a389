package main

import (
	"PartsKeeper/internal/bootstrap"
	"PartsKeeper/internal/config"
	"PartsKeeper/internal/handlers"
	"PartsKeeper/internal/middleware"
	"PartsKeeper/internal/repo"
	"PartsKeeper/internal/service"
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	//context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	creds, err := repo.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		sugar.Fatalw("failed to load credentials", "file", cfg.CredentialsFile, "error", err)
	}

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		sugar.Fatalw("failed to open store", "driver", cfg.StoreDriver, "error", err)
	}
	tables := bootstrap.NewTables(store, cfg, sugar)

	// резервный журнал для записей, не попавших в logs.csv
	dsn := cfg.DatabaseDSN
	if dsn == "" {
		dsn = repo.DefaultDSN
	}
	gormDB, err := repo.InitDB(dsn)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}
	local := repo.NewAuditRepository(gormDB)

	var remote service.AuditLog
	if tables.Logs != nil {
		remote = tables.Logs
	}
	auditService := service.NewAuditService(remote, local, sugar)
	userService := service.NewUserService(creds, auditService, sugar)
	partService := service.NewPartService(tables.Parts, auditService, sugar)

	h := handlers.NewHandler(userService, partService, auditService, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"StoreDriver", cfg.StoreDriver,
		"TablePath", cfg.TablePath,
		"LogsPath", cfg.LogsPath,
		"Encrypted", cfg.MasterPassword != "",
		"CacheTTL", cfg.CacheTTL,
		"Users", len(creds.Logins()),
	)

	srv := &http.Server{Addr: addr, Handler: h.Router}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		sugar.Fatalw("Server failed", "error", err)
	}
}
