package scripting

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single script evaluation.
const DefaultTimeout = 5 * time.Second

// Engine wraps a single gopher-lua VM that evaluates schema scripts.
// Only the base, table, string and math libraries are opened and the
// functions that load code from disk are removed.
// Single-goroutine access only.
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	timeout time.Duration
}

// NewEngine creates a sandboxed Lua engine.
func NewEngine(log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	libs := []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		if err := vm.CallByParam(lua.P{
			Fn:      vm.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("open lua %s library: %w", lib.name, err)
		}
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		vm.SetGlobal(name, lua.LNil)
	}

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	return &Engine{vm: vm, log: log, timeout: DefaultTimeout}, nil
}

// SetTimeout changes the per evaluation time limit. Zero disables it.
func (e *Engine) SetTimeout(d time.Duration) {
	e.timeout = d
}

// EvalFile runs the script at path and returns its converted result.
func (e *Engine) EvalFile(path string) (any, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return e.Eval(path, string(src))
}

// Eval runs src as a chunk named name. The chunk's first return value is
// converted with ToGo.
func (e *Engine) Eval(name, src string) (any, error) {
	fn, err := e.vm.Load(strings.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	if e.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		e.vm.SetContext(ctx)
		defer e.vm.RemoveContext()
	}

	top := e.vm.GetTop()
	e.vm.Push(fn)
	if err := e.vm.PCall(0, 1, nil); err != nil {
		e.vm.SetTop(top)
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	ret := e.vm.Get(-1)
	e.vm.SetTop(top)

	v, err := ToGo(ret)
	if err != nil {
		return nil, fmt.Errorf("result of %s: %w", name, err)
	}
	e.log.Debug("evaluated lua script", zap.String("name", name))
	return v, nil
}

// ToGo converts a Lua value to plain Go values: nil, bool, int64 for
// integral numbers, float64, string, []any for sequences (and the empty
// table) and map[string]any for tables with string keys. Functions,
// userdata and tables mixing key kinds are errors.
func ToGo(v lua.LValue) (any, error) {
	switch v := v.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		return bool(v), nil
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f), nil
		}
		return f, nil
	case lua.LString:
		return string(v), nil
	case *lua.LTable:
		return tableToGo(v)
	default:
		return nil, fmt.Errorf("unsupported lua value of type %s", v.Type())
	}
}

func tableToGo(t *lua.LTable) (any, error) {
	n := t.Len()
	count := 0
	strKeys := 0
	var err error
	t.ForEach(func(k, _ lua.LValue) {
		count++
		switch k.(type) {
		case lua.LString:
			strKeys++
		case lua.LNumber:
		default:
			if err == nil {
				err = fmt.Errorf("unsupported table key of type %s", k.Type())
			}
		}
	})
	if err != nil {
		return nil, err
	}

	switch {
	case count == 0 || (strKeys == 0 && count == n):
		out := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			el, err := ToGo(t.RawGetInt(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, el)
		}
		return out, nil
	case strKeys == count:
		out := make(map[string]any, count)
		t.ForEach(func(k, val lua.LValue) {
			if err != nil {
				return
			}
			key := string(k.(lua.LString))
			var el any
			el, err = ToGo(val)
			if err != nil {
				err = fmt.Errorf("%s: %w", key, err)
				return
			}
			out[key] = el
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("table mixes list and map entries")
	}
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
