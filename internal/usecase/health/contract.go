package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ScriptLanguages lists the script languages an export can run.
type ScriptLanguages interface {
	Languages() []string
}
