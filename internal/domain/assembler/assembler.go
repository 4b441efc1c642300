// Package assembler turns one row of computed values into a target write request.
//
// Assembly is a pure function of a compiled plan and a row: it keeps no state
// between documents, so any number of workers may assemble concurrently while
// sharing one plan.
package assembler

import (
	"fmt"

	"github.com/kailas-cloud/searchinto/internal/domain/document"
	"github.com/kailas-cloud/searchinto/internal/domain/projection"
)

// Row maps output names to the values computed for one source document.
// A script failure is supplied as an error value under the script's output name.
type Row map[string]any

// Assemble builds the write request for one row, processing the plan's outputs in order.
// Reserved targets go to their system writer, every other target is a dotted path
// into the content tree. Absent and null values are skipped.
func Assemble(plan *projection.Plan, row Row) (*document.WriteRequest, error) {
	req := document.NewWriteRequest()

	for _, out := range plan.Outputs() {
		value, ok := valueOf(out, row)
		if !ok || value == nil {
			continue
		}

		if err, failed := value.(error); failed {
			if out.IgnoreFailure {
				continue
			}
			return nil, fmt.Errorf("assemble %q: %w", out.Target, err)
		}

		if write, reserved := systemWriters[out.Target]; reserved {
			if err := write(req, value); err != nil {
				return nil, fmt.Errorf("assemble %q: %w", out.Target, err)
			}
			continue
		}

		if err := setPath(req.Source(), out.Target, value); err != nil {
			return nil, fmt.Errorf("assemble %q: %w", out.Target, err)
		}
	}

	return req, nil
}

func valueOf(out projection.Output, row Row) (any, bool) {
	if out.IsLiteral {
		return out.Literal, true
	}
	v, ok := row[out.Name]
	return v, ok
}
