package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/expertchat/expertchat/internal/config"
	"github.com/expertchat/expertchat/internal/domain/conversation"
	"github.com/expertchat/expertchat/internal/domain/dispatch"
	"github.com/expertchat/expertchat/internal/domain/session"
	"github.com/expertchat/expertchat/internal/infrastructure/apiclient"
	"github.com/expertchat/expertchat/internal/infrastructure/authclient"
	"github.com/expertchat/expertchat/internal/infrastructure/chatclient"
	"github.com/expertchat/expertchat/internal/infrastructure/docclient"
	"github.com/expertchat/expertchat/internal/infrastructure/logger"
	"github.com/expertchat/expertchat/internal/infrastructure/observability"
	"github.com/expertchat/expertchat/internal/infrastructure/tokenstore"
)

// app wires the full client: config, logging, tracing, HTTP clients, and the
// domain services. Every command builds one and closes it on the way out.
type app struct {
	cfg        *config.Config
	log        zerolog.Logger
	obs        *observability.Provider
	sessions   *session.Manager
	convs      *conversation.Store
	dispatcher *dispatch.Dispatcher
	docs       *docclient.Client
}

// newApp assembles the client and restores any persisted session.
func newApp(cmd *cobra.Command) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	obs, err := observability.Init(cmd.Context(), observability.Config{
		TracingEnabled: cfg.TracingEnabled,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
	})
	if err != nil {
		return nil, err
	}

	api := apiclient.New("expertchat", cfg.APIBaseURL, cfg.HTTPTimeout)
	sessions := session.NewManager(tokenstore.New(cfg.TokenFile), authclient.New(api), log)
	api.OnUnauthorized(sessions.Expire)

	chat := chatclient.New(api)
	convs := conversation.NewStore(chat, sessions, log)

	a := &app{
		cfg:        cfg,
		log:        log,
		obs:        obs,
		sessions:   sessions,
		convs:      convs,
		dispatcher: dispatch.NewDispatcher(convs, chat, sessions, log),
		docs:       docclient.New(api),
	}

	a.sessions.Restore(cmd.Context())
	return a, nil
}

func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.obs.Shutdown(ctx); err != nil {
		a.log.Warn().Err(err).Msg("tracing shutdown failed")
	}
}
