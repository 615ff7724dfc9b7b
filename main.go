package main

import (
	"EduPortal/bot"
	"EduPortal/entity"
	"EduPortal/impl/core"
	"EduPortal/internal/config"
	"EduPortal/internal/database"
	"EduPortal/internal/http-server/api"
	"EduPortal/internal/lib/logger"
	"EduPortal/internal/lib/sl"
	"EduPortal/internal/memstore"
	"EduPortal/internal/service/access"
	"EduPortal/internal/service/audit"
	"EduPortal/internal/service/auth"
	"EduPortal/internal/service/identity"
	"EduPortal/internal/service/lifecycle"
	"EduPortal/internal/service/membership"
	"EduPortal/internal/service/scope"
	"EduPortal/internal/service/settings"
	"EduPortal/internal/ws"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// backend is what the services need from storage. Implemented by the
// in-memory store and by MongoDB.
type backend interface {
	membership.Repository
	scope.Directory
	access.Directory
	lifecycle.Repository
	settings.Repository
	audit.Repository
	auth.Repository
	core.AuditLog
	memstore.Writer
}

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Telegram bot if enabled
	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelError)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")

			go func() {
				if err := tgBot.Start(); err != nil {
					lg.Error("telegram bot error", sl.Err(err))
				}
			}()
		}
	}

	lg.Info("starting eduportal",
		slog.String("config", *configPath),
		slog.String("env", conf.Env),
		slog.String("backend", string(conf.BackendMode)),
	)
	lg.Debug("debug messages enabled")

	var store backend
	var accounts identity.AccountStore

	switch conf.BackendMode {
	case config.BackendLocal:
		mem := memstore.New()
		if err := loadLocalAccounts(mem, conf.LocalUsers); err != nil {
			lg.Error("local accounts", sl.Err(err))
			return
		}
		store = mem
		accounts = mem
		lg.With(slog.Int("accounts", len(conf.LocalUsers))).Info("in-memory store initialized")

	case config.BackendHosted:
		db, err := repository.NewMongoClient(conf, lg)
		if err != nil {
			lg.Error("mongo client", sl.Err(err))
			return
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Close(closeCtx)
		}()
		if err = db.EnsureIndexes(ctx); err != nil {
			lg.Error("mongo indexes", sl.Err(err))
			return
		}
		store = db
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	if conf.SeedFile != "" {
		seed, err := memstore.LoadSeed(conf.SeedFile)
		if err != nil {
			lg.Error("load seed", sl.Err(err))
			return
		}
		if err = seed.ApplyTo(ctx, store); err != nil {
			lg.Error("apply seed", sl.Err(err))
			return
		}
		lg.With(
			slog.String("file", conf.SeedFile),
			slog.Int("franchisors", len(seed.Franchisors)),
			slog.Int("schools", len(seed.Schools)),
			slog.Int("memberships", len(seed.Memberships)),
		).Info("seed applied")
	}

	gateway, err := identity.New(conf.BackendMode, conf, accounts, lg)
	if err != nil {
		lg.Error("identity gateway", sl.Err(err))
		return
	}

	hub := ws.NewHub(lg)
	go hub.Run(ctx)

	emitter := audit.NewEmitter(lg, conf.Audit.Attempts, audit.NewStoreSink(store), audit.NewFeedSink(hub))
	emitter.SetSinkTimeout(time.Duration(conf.Audit.SinkTimeoutMs) * time.Millisecond)
	if tgBot != nil {
		emitter.AddSink(audit.NewAlertSink(tgBot))
	}

	resolver := membership.NewResolver(conf.BackendMode, store, lg)
	evaluator := scope.NewEvaluator(store)
	selector := access.NewSelector(resolver, evaluator, store, lg)
	guard := settings.NewGuard(store, emitter, lg)

	authService := auth.NewAuthService(lg, gateway, resolver, selector)
	authService.SetRepository(store)
	authService.SetSettings(guard)
	authService.SetAuditEmitter(emitter)

	handler := core.New(lg)
	handler.SetAuthService(authService)
	handler.SetLifecycle(lifecycle.NewManager(store, emitter, lg))
	handler.SetSettings(guard)
	handler.SetScope(evaluator, store)
	handler.SetAuditLog(store)

	// *** blocking start with http server ***
	err = api.New(ctx, conf, lg, handler, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Info("service stopped")
}

func loadLocalAccounts(store *memstore.Store, users []config.LocalUser) error {
	hasher := identity.NewHasher()
	for _, u := range users {
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("hash password of %s: %w", u.ID, err)
		}
		store.SaveAccount(entity.Account{
			ID:           u.ID,
			DisplayName:  u.DisplayName,
			Email:        entity.NormalizeEmail(u.Email),
			PasswordHash: hash,
			Disabled:     u.Disabled,
			CreatedAt:    time.Now().UTC(),
		})
	}
	return nil
}
