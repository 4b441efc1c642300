package export

import (
	"context"

	domdoc "github.com/kailas-cloud/searchinto/internal/domain/document"
	"github.com/kailas-cloud/searchinto/internal/domain/projection"
	"github.com/kailas-cloud/searchinto/internal/script"
)

// HitReader pages through the documents of a source index.
type HitReader interface {
	Page(ctx context.Context, q domdoc.PageQuery) (domdoc.Page, error)
}

// DocumentWriter stores assembled target documents. Write returns one error slot per request.
type DocumentWriter interface {
	EnsureIndex(ctx context.Context, index string) error
	Write(ctx context.Context, reqs []*domdoc.WriteRequest) []error
}

// ScriptCompiler resolves a script field to a runnable program.
type ScriptCompiler interface {
	Compile(sf projection.ScriptField) (script.Program, error)
}
