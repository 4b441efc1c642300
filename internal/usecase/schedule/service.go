// Package schedule runs export jobs on cron schedules.
package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchinto/internal/domain"
	domexport "github.com/kailas-cloud/searchinto/internal/domain/export"
	"github.com/kailas-cloud/searchinto/internal/logger"
)

// Entry is a job with the cron expression it runs on.
type Entry struct {
	Schedule string
	Job      domexport.Job
}

// Service triggers export jobs on their schedules. A job still running when
// its next tick fires is skipped for that tick.
type Service struct {
	runner Runner
	cron   *cron.Cron
	logger *zap.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	names  map[string]struct{}
}

// New creates a scheduler for runner.
func New(runner Runner, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		runner: runner,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{log.Sugar()}))),
		logger: log,
		ctx:    ctx,
		cancel: cancel,
		names:  make(map[string]struct{}),
	}
}

// Add registers a job. Jobs need a unique name and a valid cron expression.
func (s *Service) Add(e Entry) error {
	if e.Job.Name == "" {
		return fmt.Errorf("scheduled job needs a name: %w", domain.ErrInvalidJob)
	}
	if err := e.Job.Validate(); err != nil {
		return fmt.Errorf("job %q: %w", e.Job.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.names[e.Job.Name]; dup {
		return fmt.Errorf("job %q is scheduled twice: %w", e.Job.Name, domain.ErrInvalidJob)
	}
	if _, err := s.cron.AddJob(e.Schedule, s.job(e.Job)); err != nil {
		return fmt.Errorf("job %q schedule %q: %w: %v", e.Job.Name, e.Schedule, domain.ErrInvalidJob, err)
	}
	s.names[e.Job.Name] = struct{}{}
	return nil
}

// Len returns the number of scheduled jobs.
func (s *Service) Len() int {
	return len(s.cron.Entries())
}

// Start begins firing jobs in the background.
func (s *Service) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", s.Len()))
}

// Stop cancels running jobs and waits for them to return or ctx to expire.
func (s *Service) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}

func (s *Service) job(job domexport.Job) cron.Job {
	return cron.FuncJob(func() {
		log := s.logger.With(zap.String("job", job.Name))
		ctx := logger.ContextWithLogger(s.ctx, log)

		summary, err := s.runner.Run(ctx, job)
		if err != nil {
			log.Error("Scheduled export failed", zap.Error(err))
			return
		}
		log.Info("Scheduled export completed",
			zap.Int("read", summary.Read),
			zap.Int("written", summary.Written),
			zap.Int("failed", summary.Failed),
		)
	})
}

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
