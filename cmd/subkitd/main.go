package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	subgin "github.com/PaulFidika/subkit/adapters/gin"
	"github.com/PaulFidika/subkit/adapters/ginutil"
	"github.com/PaulFidika/subkit/billing"
	"github.com/PaulFidika/subkit/config"
	"github.com/PaulFidika/subkit/core"
	"github.com/PaulFidika/subkit/identity"
	"github.com/PaulFidika/subkit/push"
	memorylimiter "github.com/PaulFidika/subkit/ratelimit/memory"
	redislimiter "github.com/PaulFidika/subkit/ratelimit/redis"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	verifier, err := identity.NewVerifier(ctx, identity.VerifierConfig{
		Issuer:      cfg.Identity.Issuer,
		Audience:    cfg.Identity.Audience,
		JWKSURL:     cfg.Identity.JWKSURL,
		HTTPTimeout: cfg.Identity.Timeout,
	})
	if err != nil {
		log.Fatalf("verifier: %v", err)
	}
	store, err := identity.NewStore(ctx, identity.StoreConfig{
		BaseURL:         cfg.Identity.BaseURL,
		CredentialsJSON: cfg.Identity.CredentialsJSON,
		Timeout:         cfg.Identity.Timeout,
	})
	if err != nil {
		log.Fatalf("claim store: %v", err)
	}

	svc := core.NewService(core.Dependencies{
		Verifier: verifier,
		Store:    store,
		Billing: billing.NewClient(billing.Config{
			BaseURL: cfg.Billing.BaseURL,
			APIKey:  cfg.Billing.APIKey,
			Timeout: cfg.Billing.Timeout,
		}),
		Dispatch: push.NewClient(push.Config{
			BaseURL:   cfg.Push.BaseURL,
			APIKey:    cfg.Push.APIKey,
			AppID:     cfg.Push.AppID,
			ChannelID: cfg.Push.ChannelID,
			BundleID:  cfg.Push.BundleID,
			Timeout:   cfg.Push.Timeout,
		}),
		Audit: core.NewLogAudit(log),
		Log:   log,
	}, core.Config{
		OverrideEmails: cfg.OverrideEmails,
	})

	var rl ginutil.RateLimiter
	if cfg.Redis.Addr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		rl = redislimiter.New(rdb, nil)
		log.WithField("addr", cfg.Redis.Addr).Info("using redis rate limiter")
	} else {
		rl = memorylimiter.New(nil)
		log.Info("using in-memory rate limiter")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), subgin.RequestID(), subgin.AccessLog(log))
	subgin.Register(r, svc, rl)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown incomplete")
	}
}
