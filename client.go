package searchinto

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/searchinto/internal/db/redis"
	dombatch "github.com/kailas-cloud/searchinto/internal/domain/batch"
	domexport "github.com/kailas-cloud/searchinto/internal/domain/export"
	"github.com/kailas-cloud/searchinto/internal/domain/projection"
	documentrepo "github.com/kailas-cloud/searchinto/internal/repository/document"
	"github.com/kailas-cloud/searchinto/internal/script"
	"github.com/kailas-cloud/searchinto/internal/script/js"
	"github.com/kailas-cloud/searchinto/internal/script/lua"
	exportuc "github.com/kailas-cloud/searchinto/internal/usecase/export"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "searchinto:"
)

// Job describes one export: a source index and query, a field mapping, and the target.
type Job = domexport.Job

// Summary counts the documents an export read, wrote and failed.
type Summary = dombatch.Summary

// Plan is a compiled field mapping.
type Plan = projection.Plan

// Client runs export jobs in-process against a Valkey or Redis store.
type Client struct {
	store   *dbRedis.Store
	exports *exportuc.Service
}

// New creates a Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("searchinto: database address required (use WithValkey or WithRedis)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("searchinto: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func createStore(cfg *clientConfig) (*dbRedis.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
	default:
		return nil, fmt.Errorf("searchinto: unknown driver %q", cfg.driver)
	}
	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:       cfg.addrs,
		Password:    cfg.password,
		ScanListing: cfg.driver == "valkey",
	})
	if err != nil {
		return nil, fmt.Errorf("searchinto: create %s store: %w", cfg.driver, err)
	}
	return s, nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig) *Client {
	var (
		hits   exportuc.HitReader
		writer exportuc.DocumentWriter
	)
	if store != nil {
		repo := documentrepo.New(store, cfg.keyPrefix)
		hits, writer = repo, repo
	}
	return &Client{store: store, exports: newExportService(hits, writer, cfg)}
}

func newExportService(hits exportuc.HitReader, writer exportuc.DocumentWriter, cfg *clientConfig) *exportuc.Service {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	scripts := script.NewRegistry(js.New(), lua.New()).Alias("mvel", js.Language)
	svc := exportuc.New(hits, writer, scripts).
		WithScriptTimeout(cfg.scriptTimeout).
		WithLogger(logger)
	if cfg.pageSize > 0 {
		svc = svc.WithPageSize(cfg.pageSize)
	}
	if cfg.workers > 0 {
		svc = svc.WithWorkers(cfg.workers)
	}
	if cfg.defaultLanguage != "" {
		svc = svc.WithDefaultLanguage(cfg.defaultLanguage)
	}
	return svc
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Export runs job and returns its summary. On abort the partial summary is
// returned along with the error.
func (c *Client) Export(ctx context.Context, job Job) (*Summary, error) {
	s, err := c.exports.Run(ctx, job)
	if err != nil {
		return s, fmt.Errorf("export: %w", err)
	}
	return s, nil
}

// Plan compiles job's field mapping without touching the database.
func (c *Client) Plan(job Job) (*Plan, error) {
	p, err := c.exports.Plan(job)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return p, nil
}
