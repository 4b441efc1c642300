// Package export describes one "search into" export: which source documents to
// read and how to map each of them into a target document.
package export

import (
	"fmt"

	"github.com/kailas-cloud/searchinto/internal/domain"
)

// DefaultQuery matches every document of the source index.
const DefaultQuery = "*"

// Job is one export request.
type Job struct {
	Name        string `yaml:"name" json:"name,omitempty"`
	SourceIndex string `yaml:"source_index" json:"source_index"`
	Query       string `yaml:"query" json:"query,omitempty"`
	TargetIndex string `yaml:"target_index" json:"target_index,omitempty"`

	// Fields is the decoded field mapping: a field name or a list of names and
	// [target, source] pairs.
	Fields any `yaml:"fields" json:"fields"`

	DryRun       bool `yaml:"dry_run" json:"dry_run,omitempty"`
	AbortOnError bool `yaml:"abort_on_error" json:"abort_on_error,omitempty"`
}

// Validate checks that the job names a source and a mapping.
func (j Job) Validate() error {
	if j.SourceIndex == "" {
		return fmt.Errorf("source_index is required: %w", domain.ErrInvalidJob)
	}
	if j.Fields == nil {
		return fmt.Errorf("fields is required: %w", domain.ErrInvalidJob)
	}
	return nil
}

// EffectiveQuery returns the source query, matching everything when unset.
func (j Job) EffectiveQuery() string {
	if j.Query == "" {
		return DefaultQuery
	}
	return j.Query
}

// DisplayName names the job in logs and metrics.
func (j Job) DisplayName() string {
	if j.Name != "" {
		return j.Name
	}
	return "adhoc"
}
