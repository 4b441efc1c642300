package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	domexport "github.com/kailas-cloud/searchinto/internal/domain/export"
)

// LoadJob reads one export job from a YAML (or JSON) file.
// ${VAR} references are expanded like in the service config.
func LoadJob(path string) (domexport.Job, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return domexport.Job{}, fmt.Errorf("failed to read job %s: %w", path, err)
	}

	var job domexport.Job
	if err := yaml.Unmarshal(expandEnvVars(data), &job); err != nil {
		return domexport.Job{}, fmt.Errorf("failed to parse job %s: %w", path, err)
	}
	if err := job.Validate(); err != nil {
		return domexport.Job{}, fmt.Errorf("job %s: %w", path, err)
	}
	return job, nil
}
