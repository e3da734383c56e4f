package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estatedesk.app/internal/config"
	"estatedesk.app/internal/gateway"
	"estatedesk.app/internal/httpapi"
	"estatedesk.app/internal/identity"
	"estatedesk.app/internal/obs"
	"estatedesk.app/internal/pages"
	"estatedesk.app/internal/session"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.Logger().Fatal().Err(err).Msg("config_load_failed")
	}
	obs.ConfigureLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	obs.Init()
	obs.InitBuildInfo(version, commit)
	log := obs.Logger()

	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	gw, err := gateway.New(gateway.Options{
		BaseURL:         cfg.APIBaseURL,
		MaintenancePath: cfg.MaintenancePath,
		Timeout:         cfg.APITimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("gateway_init_failed")
	}

	codec, err := session.NewCodec(cfg.SessionSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("session_codec_failed")
	}

	// Sessions live in redis when configured so replicas can share them.
	var (
		store   session.Store
		closeFn func() error
	)
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := session.DialRedis(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("redis_connect_failed")
		}
		store, closeFn = session.NewRedisStore(rdb), rdb.Close
	} else {
		mem := session.NewMemoryStore(time.Minute)
		store, closeFn = mem, mem.Close
	}

	var idp identity.Provider = identity.Disabled{}
	if cfg.OIDCEnabled() {
		p, err := identity.NewOIDC(identity.Config{
			IssuerURL:          cfg.OIDC.BaseURL,
			ClientID:           cfg.OIDC.ClientID,
			ClientSecret:       cfg.OIDC.ClientSecret,
			RedirectURL:        cfg.OIDC.SignInRedirectURL,
			PostLogoutRedirect: cfg.OIDC.SignOutRedirectURL,
			Scopes:             cfg.OIDC.Scope,
		})
		if err != nil {
			log.Warn().Err(err).Msg("oidc_disabled")
		} else {
			idp = p
		}
	}

	app := httpapi.New(httpapi.Options{
		Config: cfg,
		Sessions: session.NewManager(session.Options{
			Store:  store,
			Codec:  codec,
			TTL:    cfg.SessionTTL,
			Secure: cfg.CookieSecure,
		}),
		Identity: idp,
		Backend:  pages.FromGateway(gw),
		Ready:    httpapi.ReadyProbe{Backend: gw},
		Version:  version,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           app.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Str("version", version).Str("api", gw.BaseURL()).Bool("oidc", idp.Enabled()).Msg("server_starting")

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen_failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info().Msg("server_stopping")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("shutdown_incomplete")
	}
	if err := closeFn(); err != nil {
		log.Warn().Err(err).Msg("session_store_close_failed")
	}
	log.Info().Msg("server_stopped")
}
