package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"concierium/internal/adapters/auth/hmactoken"
	"concierium/internal/adapters/notify/relay"
	"concierium/internal/adapters/notify/smtp"
	pg "concierium/internal/adapters/storage/postgres"
	"concierium/internal/platform/config"
	"concierium/internal/platform/logger"
	"concierium/internal/ports/notify"
	"concierium/internal/router"
)

func main() {
	cfg := config.Load()
	log := logger.NewFromEnv()

	opts := router.Options{Log: log}

	if cfg.DatabaseDSN != "" {
		db, err := pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Error("postgres unavailable", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer db.Close()
		opts.DB = db
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage", nil)
	}

	if cfg.JWTSecret != "" {
		tokens, err := hmactoken.New(cfg.JWTSecret)
		if err != nil {
			log.Error("token signer init failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		opts.AuthVerifier = tokens
		opts.Tokens = tokens
	} else {
		log.Warn("JWT_SECRET not set, running in dev mode (X-Debug headers)", nil)
	}

	opts.Notifier = buildNotifier(cfg, log)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", map[string]any{"error": err.Error()})
	}
	log.Info("server stopped", nil)
}

// buildNotifier elige el transporte de correo: SMTP directo si hay host,
// relay HTTP si hay URL, nada si no hay ninguno (las transiciones siguen
// funcionando sin correo).
func buildNotifier(cfg config.Config, log logger.Logger) notify.Notifier {
	if cfg.SMTPHost != "" {
		mailer, err := smtp.New(smtp.Options{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.MailFrom,
		})
		if err != nil {
			log.Warn("smtp notifier disabled", map[string]any{"error": err.Error()})
			return nil
		}
		return mailer
	}
	if cfg.NotifyURL != "" {
		client, err := relay.New(cfg.NotifyURL, 5*time.Second)
		if err != nil {
			log.Warn("relay notifier disabled", map[string]any{"error": err.Error()})
			return nil
		}
		return client
	}
	log.Warn("no notifier configured, status emails disabled", nil)
	return nil
}
