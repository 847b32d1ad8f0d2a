package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// PathEnv evaluates gjson paths against the JSON form of the state. A path
// prefixed with "!" is negated.
type PathEnv struct {
	*compiler[*compiledPath]
}

type compiledPath struct {
	path   string
	negate bool
}

const pathCacheSize = 4096

func NewPathEnv() *PathEnv {
	return &PathEnv{compiler: newCompiler(pathCacheSize, compilePath)}
}

func (e *PathEnv) Compile(script string) (Compiled, error) {
	return e.compile(script)
}

func (e *PathEnv) Evaluate(_ context.Context, c Compiled, state map[string]interface{}) (bool, error) {
	compiled, ok := c.(*compiledPath)
	if !ok {
		return false, fmt.Errorf("%w: expected path, got %T", ErrEvaluation, c)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return false, fmt.Errorf("%w: %v: %w", ErrEvaluation, compiled.path, err)
	}
	result := Truthy(gjson.GetBytes(data, compiled.path))
	return result != compiled.negate, nil
}

func compilePath(script string) (*compiledPath, error) {
	path := strings.TrimSpace(script)
	negate := false
	if strings.HasPrefix(path, "!") {
		negate = true
		path = strings.TrimSpace(path[1:])
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path %q", ErrCompile, script)
	}
	return &compiledPath{path: path, negate: negate}, nil
}

// Truthy reports whether a gjson result counts as true: it must exist and
// not be false, null, zero, an empty string or an empty collection.
func Truthy(result gjson.Result) bool {
	if !result.Exists() {
		return false
	}
	switch result.Type {
	case gjson.False, gjson.Null:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return result.Num != 0
	case gjson.String:
		return result.Str != ""
	default:
		if result.IsArray() {
			return len(result.Array()) > 0
		}
		return len(result.Map()) > 0
	}
}
