// Package lua runs script fields as Lua on gopher-lua.
package lua

import (
	"context"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/kailas-cloud/searchinto/internal/script"
)

// Language is the name scripts use to select this engine.
const Language = "lua"

// Engine compiles Lua chunks. Expressions without a return statement are
// evaluated as `return (<expression>)`.
type Engine struct{}

// New creates a Lua engine.
func New() *Engine { return &Engine{} }

// Language returns the engine's language name.
func (e *Engine) Language() string { return Language }

// Compile parses the chunk into a function prototype shared by all runs.
func (e *Engine) Compile(name, expression string) (script.Program, error) {
	code := expression
	if !strings.Contains(code, "return") {
		code = "return (" + code + ")"
	}
	chunk, err := parse.Parse(strings.NewReader(code), name)
	if err != nil {
		return nil, err
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, err
	}
	return &program{proto: proto}, nil
}

type program struct {
	proto *lua.FunctionProto
}

// Run evaluates the chunk in a fresh state bound to ctx.
func (p *program) Run(ctx context.Context, b script.Bindings) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	L := newState()
	defer L.Close()
	L.SetContext(ctx)

	for name, v := range b.Globals() {
		L.SetGlobal(name, toLValue(L, v))
	}
	L.SetGlobal(script.GlobalTime, L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(script.Now()))
		return 1
	}))

	L.Push(L.NewFunctionFromProto(p.proto))
	if err := L.PCall(0, 1, nil); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return fromLValue(ret), nil
}

// newState opens only the side-effect free standard libraries.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	return L
}
