package searchinto

import "github.com/kailas-cloud/searchinto/internal/domain"

// Errors returned by Export and Plan. Match them with errors.Is.
var (
	ErrParse            = domain.ErrParse
	ErrInvalidJob       = domain.ErrInvalidJob
	ErrUnknownLanguage  = domain.ErrUnknownLanguage
	ErrPathConflict     = domain.ErrPathConflict
	ErrTypeCoercion     = domain.ErrTypeCoercion
	ErrScriptEvaluation = domain.ErrScriptEvaluation
	ErrVersionConflict  = domain.ErrVersionConflict
)
