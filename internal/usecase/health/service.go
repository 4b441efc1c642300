package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates exports can run with reduced capabilities.
	Degraded Status = "degraded"
	// Unhealthy indicates exports cannot run.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status    Status                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks"`
	Languages []string               `json:"languages,omitempty"`
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	scripts ScriptLanguages
}

// New creates a Service. scripts can be nil.
func New(db DBPinger, scripts ScriptLanguages) *Service {
	return &Service{db: db, scripts: scripts}
}

// Check runs health checks against all components.
// The database is required, script engines only narrow what a job may map.
func (s *Service) Check(ctx context.Context) Report {
	report := Report{Status: Healthy, Checks: make(map[string]CheckResult)}

	if s.scripts != nil {
		report.Languages = s.scripts.Languages()
		if len(report.Languages) == 0 {
			report.Checks["scripts"] = CheckError
			report.Status = Degraded
		} else {
			report.Checks["scripts"] = CheckOK
		}
	}

	if err := s.db.Ping(ctx); err != nil {
		report.Checks["database"] = CheckError
		report.Status = Unhealthy
	} else {
		report.Checks["database"] = CheckOK
	}

	return report
}
