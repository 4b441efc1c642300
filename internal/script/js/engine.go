// Package js runs script fields as JavaScript on goja.
package js

import (
	"context"
	"errors"

	"github.com/dop251/goja"

	"github.com/kailas-cloud/searchinto/internal/script"
)

// Language is the name scripts use to select this engine.
const Language = "js"

// Engine compiles JavaScript expressions.
type Engine struct{}

// New creates a JavaScript engine.
func New() *Engine { return &Engine{} }

// Language returns the engine's language name.
func (e *Engine) Language() string { return Language }

// Compile parses an expression once; each run gets its own runtime.
func (e *Engine) Compile(name, expression string) (script.Program, error) {
	prog, err := goja.Compile(name, expression, false)
	if err != nil {
		return nil, err
	}
	return &program{prog: prog}, nil
}

type program struct {
	prog *goja.Program
}

// Run evaluates the program. Cancellation of ctx interrupts a running script.
func (p *program) Run(ctx context.Context, b script.Bindings) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	for name, v := range b.Globals() {
		if err := vm.Set(name, v); err != nil {
			return nil, err
		}
	}
	if err := vm.Set(script.GlobalTime, script.Now); err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
	defer stop()

	v, err := vm.RunProgram(p.prog)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause, ok := interrupted.Value().(error); ok {
				return nil, cause
			}
		}
		return nil, err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	return v.Export(), nil
}
