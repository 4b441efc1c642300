package assembler

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/kailas-cloud/searchinto/internal/domain"
	"github.com/kailas-cloud/searchinto/internal/domain/projection"
)

func mustCompile(t *testing.T, mapping string) *projection.Plan {
	t.Helper()
	plan, err := projection.CompileJSON([]byte(mapping))
	if err != nil {
		t.Fatalf("compile %s: %v", mapping, err)
	}
	return plan
}

func TestAssemble_ArchiveExample(t *testing.T) {
	plan := mustCompile(t, `["_id", ["_index", "'archive'"], ["name", "_source.firstname"]]`)
	row := Row{
		"_id":                    "42",
		"__script_field_copy_ts": 1000.0,
		"_source.firstname":      "Ann",
	}

	req, err := Assemble(plan, row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ID() != "42" {
		t.Errorf("ID() = %q, want 42", req.ID())
	}
	if req.Index() != "archive" {
		t.Errorf("Index() = %q, want archive", req.Index())
	}
	want := map[string]any{"name": "Ann"}
	if !reflect.DeepEqual(req.Source(), want) {
		t.Errorf("Source() = %v, want %v", req.Source(), want)
	}
}

func TestAssemble_ScriptOutputMapped(t *testing.T) {
	plan := mustCompile(t, `["_id", ["_index", "'archive'"], ["name", "_source.firstname"],
		["copy_ts", {"script": "_source.ts"}]]`)
	row := Row{
		"_id":                    "42",
		"__script_field_copy_ts": 1000.0,
		"_source.firstname":      "Ann",
	}

	req, err := Assemble(plan, row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"name": "Ann", "copy_ts": 1000.0}
	if !reflect.DeepEqual(req.Source(), want) {
		t.Errorf("Source() = %v, want %v", req.Source(), want)
	}
}

func TestAssemble_DottedTargets(t *testing.T) {
	plan := mustCompile(t, `[["user.name.first", "first"], ["user.name.last", "last"], ["user.age", "age"]]`)
	req, err := Assemble(plan, Row{"first": "Ann", "last": "Lee", "age": 31.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"user": map[string]any{
			"name": map[string]any{"first": "Ann", "last": "Lee"},
			"age":  31.0,
		},
	}
	if !reflect.DeepEqual(req.Source(), want) {
		t.Errorf("Source() = %v, want %v", req.Source(), want)
	}
}

func TestAssemble_PathConflictBothOrders(t *testing.T) {
	mappings := []string{
		`[["a", "x"], ["a.b", "y"]]`,
		`[["a.b", "y"], ["a", "x"]]`,
	}
	for _, m := range mappings {
		t.Run(m, func(t *testing.T) {
			_, err := Assemble(mustCompile(t, m), Row{"x": "1", "y": "2"})
			if !errors.Is(err, domain.ErrPathConflict) {
				t.Fatalf("error = %v, want ErrPathConflict", err)
			}
		})
	}
}

func TestAssemble_ReservedTargetsAreNotNested(t *testing.T) {
	plan := mustCompile(t, `[["_type", "kind"], ["_timestamp", "ts"], ["_ttl", "ttl"], ["_version", "v"]]`)
	req, err := Assemble(plan, Row{"kind": "log", "ts": "2024-01-01", "ttl": 60000.0, "v": 3.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Source()) != 0 {
		t.Errorf("Source() = %v, want empty", req.Source())
	}
	if req.Type() != "log" || req.Timestamp() != "2024-01-01" {
		t.Errorf("Type/Timestamp = %q/%q", req.Type(), req.Timestamp())
	}
	if ttl, ok := req.TTL(); !ok || ttl != 60000 {
		t.Errorf("TTL() = (%d, %v)", ttl, ok)
	}
	if v, ok := req.Version(); !ok || v != 3 {
		t.Errorf("Version() = (%d, %v)", v, ok)
	}
}

func TestAssemble_ReservedPrefixIsAPath(t *testing.T) {
	plan := mustCompile(t, `[["_id.raw", "id"]]`)
	req, err := Assemble(plan, Row{"id": "7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ID() != "" {
		t.Errorf("ID() = %q, want empty", req.ID())
	}
	want := map[string]any{"_id": map[string]any{"raw": "7"}}
	if !reflect.DeepEqual(req.Source(), want) {
		t.Errorf("Source() = %v, want %v", req.Source(), want)
	}
}

func TestAssemble_LiteralIgnoresRow(t *testing.T) {
	plan := mustCompile(t, `[["origin", "\"legacy\""]]`)
	req, err := Assemble(plan, Row{`"legacy"`: "from row"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Source()["origin"]; got != "legacy" {
		t.Errorf("origin = %v, want legacy", got)
	}
}

func TestAssemble_AbsentAndNullSkipped(t *testing.T) {
	plan := mustCompile(t, `["a", "b", ["_id", "c"]]`)
	req, err := Assemble(plan, Row{"b": nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Source()) != 0 || req.ID() != "" {
		t.Errorf("request = %+v, want empty", req)
	}
}

func TestAssemble_TypeCoercion(t *testing.T) {
	tests := []struct {
		name    string
		mapping string
		row     Row
	}{
		{"ttl string", `[["_ttl", "t"]]`, Row{"t": "60s"}},
		{"version fraction", `[["_version", "v"]]`, Row{"v": 1.5}},
		{"source scalar", `[["_source", "s"]]`, Row{"s": "text"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Assemble(mustCompile(t, tc.mapping), tc.row)
			if !errors.Is(err, domain.ErrTypeCoercion) {
				t.Fatalf("error = %v, want ErrTypeCoercion", err)
			}
		})
	}
}

func TestAssemble_SourceReplacedThenExtended(t *testing.T) {
	plan := mustCompile(t, `["_source", ["meta.copied", "'yes'"]]`)
	req, err := Assemble(plan, Row{"_source": map[string]any{"title": "t"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"title": "t", "meta": map[string]any{"copied": "yes"}}
	if !reflect.DeepEqual(req.Source(), want) {
		t.Errorf("Source() = %v, want %v", req.Source(), want)
	}
}

func TestAssemble_ScriptFailure(t *testing.T) {
	failure := &domain.ScriptEvaluationError{Script: "boom()", Err: errors.New("ReferenceError")}

	t.Run("ignored", func(t *testing.T) {
		plan := mustCompile(t, `[["x", {"script": "boom()", "ignore_failure": true}], ["y", "y"]]`)
		req, err := Assemble(plan, Row{"__script_field_x": failure, "y": "kept"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := map[string]any{"y": "kept"}
		if !reflect.DeepEqual(req.Source(), want) {
			t.Errorf("Source() = %v, want %v", req.Source(), want)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		plan := mustCompile(t, `[["x", {"script": "boom()"}]]`)
		_, err := Assemble(plan, Row{"__script_field_x": failure})
		if !errors.Is(err, domain.ErrScriptEvaluation) {
			t.Fatalf("error = %v, want ErrScriptEvaluation", err)
		}
	})

	t.Run("source accessor ignores by default", func(t *testing.T) {
		plan := mustCompile(t, `[["name", "_source.firstname"]]`)
		req, err := Assemble(plan, Row{"_source.firstname": failure})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(req.Source()) != 0 {
			t.Errorf("Source() = %v, want empty", req.Source())
		}
	})
}

func TestAssemble_RowNotMutated(t *testing.T) {
	plan := mustCompile(t, `[["a.b", "obj"]]`)
	obj := map[string]any{"k": "v"}
	req, err := Assemble(plan, Row{"obj": obj})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Source()["a"].(map[string]any)["b"].(map[string]any)["k"] = "changed"
	if obj["k"] != "v" {
		t.Errorf("row value mutated: %v", obj)
	}
}

func TestAssemble_ConcurrentSharedPlan(t *testing.T) {
	plan := mustCompile(t, `["_id", ["doc.n", "n"], ["_index", "'archive'"]]`)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := range 64 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("%d", i)
			req, err := Assemble(plan, Row{"_id": id, "n": float64(i)})
			if err != nil {
				errs <- err
				return
			}
			if req.ID() != id || req.Source()["doc"].(map[string]any)["n"] != float64(i) {
				errs <- fmt.Errorf("row %d assembled as %s", i, req.ID())
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
