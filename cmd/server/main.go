package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"blogicum/internal/app"
	"blogicum/internal/db"
	httpx "blogicum/internal/http"
	"blogicum/internal/mail"
)

func main() {
	logger, err := zap.NewProduction()
	app.Must(err)
	defer logger.Sync()
	log := logger.Sugar()

	cfg := app.LoadConfig()
	ctx := context.Background()

	qb, err := db.Open(ctx, cfg.DatabaseURL)
	app.Must(err)
	app.Must(db.Migrate(ctx, qb))

	var notify mail.Notifier = mail.Discard{}
	if cfg.SMTPAddr != "" {
		notify = &mail.SMTPNotifier{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom}
	}

	srv := httpx.NewServer(qb, cfg, log, notify)
	log.Infow("listening", "addr", cfg.Addr)
	app.Must(http.ListenAndServe(cfg.Addr, srv))
}
