package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"authdemo/handlers"
	"authdemo/ui"
	"authdemo/utils"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// app is the wired HTTP handler plus whatever connections it holds open.
type app struct {
	handler http.Handler
	auth    *handlers.Auth
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp builds the auth handlers from cfg. Redis, Postgres and SendGrid are
// only dialed when their settings are present.
func newApp(ctx context.Context, cfg *utils.Config, log *zap.Logger) (*app, error) {
	a := &app{}

	codec, err := utils.NewSessionCodec(cfg.SessionSecret)
	if err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		log.Warn("SESSION_SECRET not set, session cookies are unsigned")
	}

	directory, err := utils.NewDemoDirectory()
	if err != nil {
		return nil, fmt.Errorf("building demo directory: %w", err)
	}

	tmpl, err := ui.Templates()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	auth := &handlers.Auth{
		Log:       log,
		Pages:     handlers.NewPages(tmpl, log),
		Directory: directory,
		Codec:     codec,
		Secure:    cfg.IsProduction(),

		TrustProxy: cfg.TrustProxy,
	}

	if cfg.RedisURL != "" && cfg.LoginMaxFailures > 0 {
		redisPool, err := utils.OpenRedisPool(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { redisPool.Close() })
		auth.Limiter = utils.NewLoginLimiter(redisPool, cfg.LoginMaxFailures, cfg.LoginLockout)
		log.Info("login limiter enabled",
			zap.Int("max_failures", cfg.LoginMaxFailures),
			zap.Duration("lockout", cfg.LoginLockout))
	}

	if cfg.DatabaseURL != "" {
		dbPool, err := utils.OpenDB(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, dbPool.Close)
		audit := utils.NewLoginAudit(dbPool)
		if err := audit.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		auth.Audit = audit
		log.Info("login audit enabled")
	}

	if cfg.SendgridAPIKey != "" {
		auth.Notifier = utils.NewSignInMailer(cfg.SendgridAPIKey, cfg.NotifyFrom)
		log.Info("sign-in notices enabled", zap.String("from", cfg.NotifyFrom))
	}

	a.auth = auth
	a.handler = auth.Routes(cfg.LoginIPLimit)
	return a, nil
}

func runServer(ctx context.Context, cfg *utils.Config, log *zap.Logger, addr string) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          zap.NewStdLog(log),
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", addr), zap.String("environment", cfg.Environment))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		a.auth.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)

	// Sign-in notices carry their own timeout, so this wait is bounded.
	a.auth.Wait()
	return err
}
