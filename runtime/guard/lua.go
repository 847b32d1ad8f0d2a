package guard

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Shopify/go-lua"
)

// LuaEnv evaluates Lua conditions. State keys are exposed as globals and the
// truthiness of the first returned value is the result. A script that parses
// as an expression is evaluated as one.
type LuaEnv struct {
	*compiler[*compiledLua]
	statePool chan *lua.State
}

type compiledLua struct {
	source   string
	bytecode []byte
}

const (
	luaCacheSize       = 4096
	luaStatePoolSize   = 10
	luaGlobalTableName = "_G"
	luaChunkName       = "guard"
)

var luaExclude = [...]string{"io", "os", "debug", "package", "require", "dofile", "loadfile", "load"}

func NewLuaEnv() *LuaEnv {
	ret := &LuaEnv{statePool: make(chan *lua.State, luaStatePoolSize)}
	ret.compiler = newCompiler(luaCacheSize, ret.build)
	return ret
}

func (e *LuaEnv) Compile(script string) (Compiled, error) {
	return e.compile(script)
}

func (e *LuaEnv) Evaluate(_ context.Context, c Compiled, state map[string]interface{}) (result bool, err error) {
	compiled, ok := c.(*compiledLua)
	if !ok {
		return false, fmt.Errorf("%w: expected lua chunk, got %T", ErrEvaluation, c)
	}
	L := e.getState()
	defer e.returnState(L)

	setupSandbox(L)
	if err = L.Load(bytes.NewReader(compiled.bytecode), luaChunkName, "b"); err != nil {
		return false, fmt.Errorf("%w: %w", ErrEvaluation, err)
	}
	if err = pushEnv(L, state); err != nil {
		return false, err
	}
	if err = L.ProtectedCall(0, 1, 0); err != nil {
		return false, fmt.Errorf("%w: %v: %w", ErrEvaluation, compiled.source, err)
	}
	result = L.ToBoolean(-1)
	L.Pop(1)
	return result, nil
}

// pushEnv installs a fresh _ENV for the chunk on top of the stack. State keys
// live in that table and reads fall through to _G, so globals a script
// assigns never outlive the evaluation.
func pushEnv(L *lua.State, state map[string]interface{}) error {
	L.NewTable()
	for _, name := range sortedKeys(state) {
		goToLua(L, state[name])
		L.SetField(-2, name)
	}
	L.PushValue(-1)
	L.SetField(-2, luaGlobalTableName)
	L.NewTable()
	L.Global(luaGlobalTableName)
	L.SetField(-2, "__index")
	L.SetMetaTable(-2)
	if _, ok := lua.SetUpValue(L, -2, 1); !ok {
		L.Pop(1)
		return fmt.Errorf("%w: chunk has no environment", ErrEvaluation)
	}
	return nil
}

// build compiles script as an expression first and falls back to a chunk.
func (e *LuaEnv) build(script string) (*compiledLua, error) {
	source := strings.TrimSpace(script)
	if source == "" {
		return nil, fmt.Errorf("%w: empty lua script", ErrCompile)
	}
	bytecode, err := dump("return (" + source + ")")
	if err != nil {
		if bytecode, err = dump(source); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompile, err)
		}
	}
	return &compiledLua{source: script, bytecode: bytecode}, nil
}

func dump(source string) ([]byte, error) {
	L := lua.NewState()
	setupSandbox(L)
	if err := lua.LoadString(L, source); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := L.Dump(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setupSandbox(L *lua.State) {
	lua.OpenLibraries(L)
	L.Global(luaGlobalTableName)
	for _, name := range luaExclude {
		L.PushNil()
		L.SetField(-2, name)
	}
	L.Pop(1)
}

func (e *LuaEnv) getState() *lua.State {
	select {
	case L := <-e.statePool:
		return L
	default:
		return lua.NewState()
	}
}

func (e *LuaEnv) returnState(L *lua.State) {
	L.SetTop(0)
	select {
	case e.statePool <- L:
	default:
	}
}

func sortedKeys(state map[string]interface{}) []string {
	ret := make([]string, 0, len(state))
	for k := range state {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

func goToLua(L *lua.State, value interface{}) {
	switch v := value.(type) {
	case nil:
		L.PushNil()
	case string:
		L.PushString(v)
	case bool:
		L.PushBoolean(v)
	case int:
		L.PushInteger(v)
	case int32:
		L.PushInteger(int(v))
	case int64:
		L.PushInteger(int(v))
	case uint:
		L.PushInteger(int(v))
	case float32:
		L.PushNumber(float64(v))
	case float64:
		L.PushNumber(v)
	case []interface{}:
		L.CreateTable(len(v), 0)
		for i, item := range v {
			L.PushInteger(i + 1)
			goToLua(L, item)
			L.SetTable(-3)
		}
	case map[string]interface{}:
		L.CreateTable(0, len(v))
		for key, item := range v {
			L.PushString(key)
			goToLua(L, item)
			L.SetTable(-3)
		}
	default:
		L.PushString(fmt.Sprintf("%v", v))
	}
}
