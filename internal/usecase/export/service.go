package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/searchinto/internal/domain"
	"github.com/kailas-cloud/searchinto/internal/domain/assembler"
	dombatch "github.com/kailas-cloud/searchinto/internal/domain/batch"
	domdoc "github.com/kailas-cloud/searchinto/internal/domain/document"
	domexport "github.com/kailas-cloud/searchinto/internal/domain/export"
	"github.com/kailas-cloud/searchinto/internal/domain/projection"
	"github.com/kailas-cloud/searchinto/internal/logger"
	"github.com/kailas-cloud/searchinto/internal/metrics"
	"github.com/kailas-cloud/searchinto/internal/script"
)

// Defaults for an export service.
const (
	DefaultPageSize    = 500
	DefaultWorkers     = 8
	DefaultMaxFailures = 100
	DefaultType        = "default"
)

// Service drives exports: it reads source hits page by page, computes one row
// per hit, assembles the row into a write request and stores the page.
type Service struct {
	hits    HitReader
	writer  DocumentWriter
	scripts ScriptCompiler
	logger  *zap.Logger

	pageSize      int
	workers       int
	maxFailures   int
	scriptTimeout time.Duration
	defaultType   string
	defaultLang   string
}

// New creates an export service.
func New(hits HitReader, writer DocumentWriter, scripts ScriptCompiler) *Service {
	return &Service{
		hits:        hits,
		writer:      writer,
		scripts:     scripts,
		logger:      zap.NewNop(),
		pageSize:    DefaultPageSize,
		workers:     DefaultWorkers,
		maxFailures: DefaultMaxFailures,
		defaultType: DefaultType,
		defaultLang: projection.DefaultLanguage,
	}
}

// WithPageSize sets how many source hits are read and written per round trip.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// WithWorkers bounds the number of documents assembled concurrently.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithMaxFailures caps the failures listed in a run summary.
func (s *Service) WithMaxFailures(n int) *Service {
	if n >= 0 {
		s.maxFailures = n
	}
	return s
}

// WithScriptTimeout bounds each script evaluation.
func (s *Service) WithScriptTimeout(d time.Duration) *Service {
	s.scriptTimeout = d
	return s
}

// WithDefaultType sets the type of target documents that do not map _type.
func (s *Service) WithDefaultType(t string) *Service {
	if t != "" {
		s.defaultType = t
	}
	return s
}

// WithDefaultLanguage sets the language of scripts that do not name one.
func (s *Service) WithDefaultLanguage(lang string) *Service {
	if lang != "" {
		s.defaultLang = lang
	}
	return s
}

// WithLogger sets the service logger. A logger in the run context takes precedence.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// compiledScript is a script binding resolved to a runnable program.
type compiledScript struct {
	output  string
	params  map[string]any
	program script.Program
}

// Plan compiles the job's field mapping and resolves every script language.
func (s *Service) Plan(job domexport.Job) (*projection.Plan, error) {
	plan, _, err := s.prepare(job)
	return plan, err
}

func (s *Service) prepare(job domexport.Job) (*projection.Plan, []compiledScript, error) {
	if err := job.Validate(); err != nil {
		return nil, nil, err
	}
	plan, err := projection.Compile(job.Fields, projection.WithDefaultLanguage(s.defaultLang))
	if err != nil {
		return nil, nil, fmt.Errorf("compile fields: %w", err)
	}

	bindings := plan.Scripts()
	programs := make([]compiledScript, 0, len(bindings))
	for _, b := range bindings {
		p, err := s.scripts.Compile(b.Script)
		if err != nil {
			return nil, nil, err
		}
		programs = append(programs, compiledScript{
			output:  b.OutputName,
			params:  b.Script.Params,
			program: script.NewInstrumentedProgram(p, b.Script.Name, b.Script.Language, s.scriptTimeout, s.logger),
		})
	}
	return plan, programs, nil
}

// run holds the state of one export execution.
type run struct {
	job      domexport.Job
	plan     *projection.Plan
	scripts  []compiledScript
	summary  *dombatch.Summary
	ensured  map[string]bool
	logger   *zap.Logger
	jobLabel string
}

// Run exports every hit of the job's source query. Per-document failures are
// counted in the summary; the returned error reports a run that could not
// complete, in which case the summary covers the documents handled so far.
func (s *Service) Run(ctx context.Context, job domexport.Job) (*dombatch.Summary, error) {
	plan, scripts, err := s.prepare(job)
	if err != nil {
		return nil, err
	}

	log := logger.FromContextOr(ctx, s.logger)
	r := &run{
		job:      job,
		plan:     plan,
		scripts:  scripts,
		summary:  dombatch.NewSummary(s.maxFailures),
		ensured:  make(map[string]bool),
		logger:   log.With(zap.String("job", job.DisplayName())),
		jobLabel: job.DisplayName(),
	}

	start := time.Now()
	r.logger.Info("Export started",
		zap.String("source_index", job.SourceIndex),
		zap.String("query", job.EffectiveQuery()),
		zap.String("target_index", job.TargetIndex),
		zap.Bool("dry_run", job.DryRun),
	)

	err = s.pages(ctx, r)

	duration := time.Since(start)
	metrics.ExportRunDuration.WithLabelValues(r.jobLabel).Observe(duration.Seconds())

	if err != nil {
		metrics.ExportRunsTotal.WithLabelValues(r.jobLabel, "error").Inc()
		r.logger.Error("Export failed",
			zap.Int("read", r.summary.Read),
			zap.Int("written", r.summary.Written),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return r.summary, err
	}

	metrics.ExportRunsTotal.WithLabelValues(r.jobLabel, "ok").Inc()
	r.logger.Info("Export finished",
		zap.Int("read", r.summary.Read),
		zap.Int("written", r.summary.Written),
		zap.Int("failed", r.summary.Failed),
		zap.Duration("duration", duration),
	)
	return r.summary, nil
}

func (s *Service) pages(ctx context.Context, r *run) error {
	q := domdoc.PageQuery{
		Index:  r.job.SourceIndex,
		Query:  r.job.EffectiveQuery(),
		Limit:  s.pageSize,
		Full:   r.plan.FetchAllFields() || len(r.scripts) > 0,
		Fields: r.plan.FetchFields(),
	}

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("export %s: %w", r.jobLabel, err)
		}

		page, err := s.hits.Page(ctx, q)
		if err != nil {
			return fmt.Errorf("read page at %d: %w", q.Offset, err)
		}

		if len(page.Hits) > 0 {
			if err := s.page(ctx, r, page.Hits); err != nil {
				return err
			}
		}

		q.Offset += s.pageSize
		if q.Offset >= page.Total {
			return nil
		}
	}
}

// page assembles and writes one page of hits.
func (s *Service) page(ctx context.Context, r *run, hits []domdoc.Hit) error {
	results := make([]dombatch.Result, len(hits))
	reqs := make([]*domdoc.WriteRequest, len(hits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range hits {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			req, err := s.assemble(gctx, r, hits[i])
			if err != nil {
				results[i] = dombatch.NewError(hits[i].ID(), err)
				if r.job.AbortOnError {
					return fmt.Errorf("document %q: %w", hits[i].ID(), err)
				}
				return nil
			}
			reqs[i] = req
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.record(r, results)
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("export %s: %w", r.jobLabel, err)
	}

	if err := s.write(ctx, r, reqs, results, hits); err != nil {
		s.record(r, results)
		return err
	}
	s.record(r, results)

	if r.job.AbortOnError {
		for _, res := range results {
			if res.Status() == dombatch.StatusError {
				return fmt.Errorf("document %q: %w", res.ID(), res.Err())
			}
		}
	}
	return nil
}

// assemble computes the row of one hit and turns it into a write request.
func (s *Service) assemble(ctx context.Context, r *run, hit domdoc.Hit) (*domdoc.WriteRequest, error) {
	row, err := s.row(ctx, r, hit)
	if err != nil {
		return nil, err
	}
	req, err := assembler.Assemble(r.plan, row)
	if err != nil {
		return nil, err
	}
	if err := s.applyDefaults(r.job, req); err != nil {
		return nil, err
	}
	return req, nil
}

// row resolves plain fields from the hit and evaluates every script. A failed
// script is placed in the row as an error value for the assembler to judge.
func (s *Service) row(ctx context.Context, r *run, hit domdoc.Hit) (assembler.Row, error) {
	row := make(assembler.Row, len(r.plan.FetchFields())+len(r.scripts))
	for _, name := range r.plan.FetchFields() {
		if v, ok := hit.Field(name); ok {
			row[name] = v
		}
	}

	for _, sc := range r.scripts {
		b, err := script.NewBindings(hit, sc.params)
		if err != nil {
			return nil, err
		}
		v, err := sc.program.Run(ctx, b)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			row[sc.output] = &domain.ScriptEvaluationError{Script: sc.output, Err: err}
			continue
		}
		row[sc.output] = v
	}
	return row, nil
}

func (s *Service) applyDefaults(job domexport.Job, req *domdoc.WriteRequest) error {
	if req.Index() == "" {
		if job.TargetIndex == "" {
			return fmt.Errorf("no target index mapped and none configured: %w", domain.ErrInvalidJob)
		}
		req.SetIndex(job.TargetIndex)
	}
	if req.Type() == "" {
		req.SetType(s.defaultType)
	}
	if req.ID() == "" {
		req.SetID(uuid.NewString())
	}
	return nil
}

// write stores the assembled requests of a page and fills in their results.
// The returned error reports a failure that has to stop the run.
func (s *Service) write(
	ctx context.Context, r *run,
	reqs []*domdoc.WriteRequest, results []dombatch.Result, hits []domdoc.Hit,
) error {
	batch := make([]*domdoc.WriteRequest, 0, len(reqs))
	idx := make([]int, 0, len(reqs))
	for i, req := range reqs {
		if req == nil {
			continue
		}
		batch = append(batch, req)
		idx = append(idx, i)
	}
	if len(batch) == 0 {
		return nil
	}

	if r.job.DryRun {
		for _, i := range idx {
			results[i] = dombatch.NewOK(hits[i].ID())
		}
		return nil
	}

	for _, req := range batch {
		if r.ensured[req.Index()] {
			continue
		}
		if err := s.writer.EnsureIndex(ctx, req.Index()); err != nil {
			return fmt.Errorf("ensure target index %q: %w", req.Index(), err)
		}
		r.ensured[req.Index()] = true
	}

	errs := s.writer.Write(ctx, batch)
	for n, i := range idx {
		var err error
		if n < len(errs) {
			err = errs[n]
		}
		if err != nil {
			results[i] = dombatch.NewError(hits[i].ID(), fmt.Errorf("write: %w", err))
			continue
		}
		results[i] = dombatch.NewOK(hits[i].ID())
	}
	return nil
}

// record folds the handled results of a page into the run summary.
func (s *Service) record(r *run, results []dombatch.Result) {
	for _, res := range results {
		if res.Status() == "" {
			continue
		}
		r.summary.Add(res)
		metrics.ExportDocumentsTotal.WithLabelValues(r.jobLabel, string(res.Status())).Inc()
		if res.Status() == dombatch.StatusError {
			r.logger.Warn("Document export failed",
				zap.String("id", res.ID()),
				zap.Error(res.Err()),
			)
		}
	}
}
