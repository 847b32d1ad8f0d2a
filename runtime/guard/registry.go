package guard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kode4food/lru"
	"github.com/viant/organizer"
)

// Languages shipped with NewRegistry.
const (
	LangPath = "path"
	LangLua  = "lua"

	DefaultLanguage = LangPath
)

type (
	// Environment compiles and evaluates conditions of one language.
	Environment interface {
		Compile(script string) (Compiled, error)
		Evaluate(ctx context.Context, c Compiled, state map[string]interface{}) (bool, error)
	}

	// Compiled is an environment specific compiled condition.
	Compiled any

	// Registry maps language names to environments.
	Registry struct {
		envs map[string]Environment
		mux  sync.RWMutex
	}

	compiler[T any] struct {
		cache *lru.Cache[T]
		build func(script string) (T, error)
	}
)

// NewRegistry creates a registry with the path and lua languages.
func NewRegistry() *Registry {
	return &Registry{
		envs: map[string]Environment{
			LangPath: NewPathEnv(),
			LangLua:  NewLuaEnv(),
		},
	}
}

// Register adds or replaces a language.
func (r *Registry) Register(language string, env Environment) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.envs[strings.ToLower(language)] = env
}

// Get returns the environment for language; empty selects DefaultLanguage.
func (r *Registry) Get(language string) (Environment, error) {
	if language == "" {
		language = DefaultLanguage
	}
	r.mux.RLock()
	defer r.mux.RUnlock()
	env, ok := r.envs[strings.ToLower(language)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}
	return env, nil
}

// Languages returns the registered language names in lexical order.
func (r *Registry) Languages() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret := make([]string, 0, len(r.envs))
	for name := range r.envs {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Guard compiles script and returns it as an organizer guard. Compile errors
// are returned immediately; evaluation errors surface from the guard.
func (r *Registry) Guard(language, script string) (organizer.Guard[map[string]interface{}], error) {
	env, err := r.Get(language)
	if err != nil {
		return nil, err
	}
	compiled, err := env.Compile(script)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, state map[string]interface{}) (bool, error) {
		return env.Evaluate(ctx, compiled, state)
	}, nil
}

func newCompiler[T any](size int, build func(script string) (T, error)) *compiler[T] {
	return &compiler[T]{
		cache: lru.NewCache[T](size),
		build: build,
	}
}

func (c *compiler[T]) compile(script string) (T, error) {
	return c.cache.Get(hashScript(script), func() (T, error) {
		return c.build(script)
	})
}

func hashScript(script string) string {
	sum := sha256.Sum256([]byte(script))
	return hex.EncodeToString(sum[:])
}
