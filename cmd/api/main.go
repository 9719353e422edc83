package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"propvest/account"
	"propvest/assets"
	"propvest/config"
	"propvest/db"
	"propvest/httpapi"
	"propvest/mailer"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("bootstrap database pool: %v", err)
	}
	defer pool.Close()

	store, err := assets.NewS3Store(ctx, cfg.S3)
	if err != nil {
		log.Fatalf("bootstrap asset store: %v", err)
	}

	repo := account.NewRepository(pool)
	svc := account.NewService(repo, mailer.NewSMTP(cfg.SMTP), cfg.JWTSecret, cfg.CodeLength, logger)

	app := httpapi.New(svc, store, logger).Router()

	logger.Info("starting api server", "addr", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
