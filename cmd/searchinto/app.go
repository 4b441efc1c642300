package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchinto/internal/config"
	dbRedis "github.com/kailas-cloud/searchinto/internal/db/redis"
	logpkg "github.com/kailas-cloud/searchinto/internal/logger"
	"github.com/kailas-cloud/searchinto/internal/metrics"
	documentrepo "github.com/kailas-cloud/searchinto/internal/repository/document"
	"github.com/kailas-cloud/searchinto/internal/script"
	"github.com/kailas-cloud/searchinto/internal/script/js"
	"github.com/kailas-cloud/searchinto/internal/script/lua"
	exportuc "github.com/kailas-cloud/searchinto/internal/usecase/export"
)

// mvelAlias keeps mappings written for the mvel default language working on the JS engine.
const mvelAlias = "mvel"

// app is the composition root shared by the subcommands.
type app struct {
	env     string
	cfg     config.Config
	logger  *zap.Logger
	scripts *script.Registry
	store   *dbRedis.Store
	exports *exportuc.Service
}

// newApp loads config and builds the logger and script engines. It does not connect to the database.
func newApp(flags *globalFlags) (*app, error) {
	env := flags.env
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterExportMetrics()
	metrics.RegisterHTTPMetrics()

	a := &app{
		env:     env,
		cfg:     cfg,
		logger:  logger,
		scripts: script.NewRegistry(js.New(), lua.New()).Alias(mvelAlias, js.Language),
	}
	a.exports = a.newExportService(nil)
	return a, nil
}

// connect opens the store and wires the export service to it.
func (a *app) connect(ctx context.Context) error {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:       a.cfg.Database.Addrs,
		Password:    a.cfg.Database.Password,
		ScanListing: a.cfg.Database.Driver == config.DriverValkey,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}

	timeout := time.Duration(a.cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return fmt.Errorf("database not ready: %w", err)
	}
	a.logger.Info("Connected to database",
		zap.String("db_driver", a.cfg.Database.Driver),
		zap.Strings("db_addrs", a.cfg.Database.Addrs),
	)

	a.store = store
	a.exports = a.newExportService(documentrepo.New(store, a.cfg.Storage.KeyPrefix))
	return nil
}

func (a *app) newExportService(docs *documentrepo.Repo) *exportuc.Service {
	var (
		hits   exportuc.HitReader
		writer exportuc.DocumentWriter
	)
	// Pass nil interfaces, not typed nil pointers, until connected.
	if docs != nil {
		hits, writer = docs, docs
	}
	ec := a.cfg.Export
	return exportuc.New(hits, writer, a.scripts).
		WithPageSize(ec.PageSize).
		WithWorkers(ec.Workers).
		WithMaxFailures(ec.MaxFailuresReported).
		WithScriptTimeout(time.Duration(ec.ScriptTimeoutMs) * time.Millisecond).
		WithDefaultType(ec.DefaultType).
		WithDefaultLanguage(ec.DefaultLanguage).
		WithLogger(a.logger)
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}
