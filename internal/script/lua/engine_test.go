package lua

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/kailas-cloud/searchinto/internal/domain/document"
	"github.com/kailas-cloud/searchinto/internal/script"
)

func bindings(t *testing.T, source string, params map[string]any) script.Bindings {
	t.Helper()
	hit := document.NewHit("people", "42", "person", 3, "", json.RawMessage(source))
	b, err := script.NewBindings(hit, params)
	if err != nil {
		t.Fatalf("NewBindings: %v", err)
	}
	return b
}

func TestRun_Expressions(t *testing.T) {
	b := bindings(t, `{"firstname":"Ann","age":31,"score":2.5,"user":{"tags":["a","b"]}}`,
		map[string]any{"factor": 2})

	tests := []struct {
		expr string
		want any
	}{
		{"_source.firstname", "Ann"},
		{"_source.age * params.factor", int64(62)},
		{"_source.score", 2.5},
		{"doc['user.tags'].value", "a"},
		{"#doc['user.tags'].values", int64(2)},
		{"_source.firstname .. ':' .. _id", "Ann:42"},
		{"_index .. '/' .. _type", "people/person"},
		{"_source.missing", nil},
		{"local x = 1\nreturn x + 1", int64(2)},
		{"{1, 2}", []any{int64(1), int64(2)}},
		{"{a = true}", map[string]any{"a": true}},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			prog, err := New().Compile("test", tc.expr)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			got, err := prog.Run(context.Background(), b)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestRun_GoNumericParams(t *testing.T) {
	b := bindings(t, `{}`, map[string]any{
		"i32":  int32(3),
		"u8":   uint8(4),
		"u64":  uint64(5),
		"f32":  float32(0.5),
		"num":  json.Number("6"),
		"frac": json.Number("1.25"),
	})

	prog, err := New().Compile("sum", "params.i32 + params.u8 + params.u64 + params.f32 + params.num + params.frac")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := prog.Run(context.Background(), b)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 19.75 {
		t.Errorf("got %#v, want 19.75", got)
	}
}

func TestRun_Time(t *testing.T) {
	orig := script.Now
	script.Now = func() int64 { return 1000 }
	defer func() { script.Now = orig }()

	prog, err := New().Compile("ts", "time()")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := prog.Run(context.Background(), bindings(t, `{}`, nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != int64(1000) {
		t.Errorf("time() = %#v, want 1000", got)
	}
}

func TestCompile_SyntaxError(t *testing.T) {
	if _, err := New().Compile("bad", "_source.("); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestRun_RuntimeError(t *testing.T) {
	prog, err := New().Compile("boom", "_source.nope.deeper")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := prog.Run(context.Background(), bindings(t, `{}`, nil)); err == nil {
		t.Fatal("expected index error")
	}
}

func TestRun_NoIOLibraries(t *testing.T) {
	prog, err := New().Compile("io", "io.open('/etc/passwd')")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := prog.Run(context.Background(), bindings(t, `{}`, nil)); err == nil {
		t.Fatal("expected io to be unavailable")
	}
}

func TestRun_Timeout(t *testing.T) {
	prog, err := New().Compile("loop", "while true do end return 1")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = prog.Run(ctx, bindings(t, `{}`, nil))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}
