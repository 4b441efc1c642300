package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchinto/internal/domain"
	dombatch "github.com/kailas-cloud/searchinto/internal/domain/batch"
	domexport "github.com/kailas-cloud/searchinto/internal/domain/export"
	"github.com/kailas-cloud/searchinto/internal/logger"
)

// --- Mocks ---

type mockRunner struct {
	runFn func(ctx context.Context, job domexport.Job) (*dombatch.Summary, error)
}

func (m *mockRunner) Run(ctx context.Context, job domexport.Job) (*dombatch.Summary, error) {
	return m.runFn(ctx, job)
}

func nightly() domexport.Job {
	return domexport.Job{Name: "nightly", SourceIndex: "people", TargetIndex: "archive", Fields: "_id"}
}

// --- Tests ---

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{"ok", Entry{Schedule: "0 3 * * *", Job: nightly()}, false},
		{"descriptor", Entry{Schedule: "@hourly", Job: nightly()}, false},
		{"bad expression", Entry{Schedule: "every night", Job: nightly()}, true},
		{"no name", Entry{Schedule: "@daily", Job: domexport.Job{SourceIndex: "a", Fields: "_id"}}, true},
		{"invalid job", Entry{Schedule: "@daily", Job: domexport.Job{Name: "x"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&mockRunner{}, zap.NewNop())
			err := s.Add(tt.entry)
			if tt.wantErr != (err != nil) {
				t.Fatalf("Add() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidJob) {
				t.Errorf("expected ErrInvalidJob, got %v", err)
			}
			want := 1
			if tt.wantErr {
				want = 0
			}
			if s.Len() != want {
				t.Errorf("Len() = %d, want %d", s.Len(), want)
			}
		})
	}
}

func TestAdd_DuplicateName(t *testing.T) {
	s := New(&mockRunner{}, nil)
	if err := s.Add(Entry{Schedule: "@daily", Job: nightly()}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := s.Add(Entry{Schedule: "@hourly", Job: nightly()}); !errors.Is(err, domain.ErrInvalidJob) {
		t.Fatalf("expected ErrInvalidJob, got %v", err)
	}
}

func TestJob_RunsWithLogger(t *testing.T) {
	var got domexport.Job
	var hadLogger bool
	r := &mockRunner{runFn: func(ctx context.Context, job domexport.Job) (*dombatch.Summary, error) {
		got = job
		hadLogger = logger.FromContextOr(ctx, nil) != nil
		return dombatch.NewSummary(0), nil
	}}
	s := New(r, zap.NewNop())

	s.job(nightly()).Run()

	if got.Name != "nightly" {
		t.Errorf("job = %+v", got)
	}
	if !hadLogger {
		t.Error("expected a logger in the run context")
	}
}

func TestJob_FailureIsLogged(t *testing.T) {
	calls := 0
	r := &mockRunner{runFn: func(context.Context, domexport.Job) (*dombatch.Summary, error) {
		calls++
		return nil, errors.New("boom")
	}}
	s := New(r, zap.NewNop())

	s.job(nightly()).Run()

	if calls != 1 {
		t.Errorf("calls = %d", calls)
	}
}

func TestStop_CancelsRunningJobs(t *testing.T) {
	started := make(chan struct{})
	r := &mockRunner{runFn: func(ctx context.Context, _ domexport.Job) (*dombatch.Summary, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	s := New(r, zap.NewNop())
	s.Start()

	done := make(chan struct{})
	go func() {
		s.job(nightly()).Run()
		close(done)
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("running job was not cancelled")
	}
}
