// Package state provides steps that modify the shared state map.
package state

import (
	"context"
	"strings"

	"github.com/viant/organizer/extension"
	"github.com/viant/organizer/model"
)

const (
	SetName   = "state.set"
	UnsetName = "state.unset"
)

type SetInput struct {
	// Values are merged into the state; nested maps merge recursively.
	Values map[string]interface{} `json:"values,omitempty"`
}

type UnsetInput struct {
	// Keys are dotted paths removed from the state.
	Keys []string `json:"keys,omitempty"`
}

// Register adds the state steps to steps.
func Register(steps *extension.Steps[model.State]) {
	steps.RegisterFactory(SetName, extension.Typed[model.State, SetInput](set))
	steps.RegisterFactory(UnsetName, extension.Typed[model.State, UnsetInput](unset))
}

func set(_ context.Context, state model.State, input *SetInput) error {
	Merge(state, input.Values)
	return nil
}

func unset(_ context.Context, state model.State, input *UnsetInput) error {
	for _, key := range input.Keys {
		remove(state, strings.Split(key, "."))
	}
	return nil
}

// Merge deep-copies src into dst, merging nested maps instead of replacing
// them. dst never shares slices or maps with src.
func Merge(dst, src map[string]interface{}) {
	for key, value := range src {
		nested, ok := value.(map[string]interface{})
		if !ok {
			dst[key] = clone(value)
			continue
		}
		existing, ok := dst[key].(map[string]interface{})
		if !ok {
			existing = make(map[string]interface{}, len(nested))
			dst[key] = existing
		}
		Merge(existing, nested)
	}
}

func clone(value interface{}) interface{} {
	switch actual := value.(type) {
	case []interface{}:
		ret := make([]interface{}, len(actual))
		for i, item := range actual {
			ret[i] = clone(item)
		}
		return ret
	case map[string]interface{}:
		ret := make(map[string]interface{}, len(actual))
		Merge(ret, actual)
		return ret
	}
	return value
}

func remove(state map[string]interface{}, path []string) {
	if len(path) == 1 {
		delete(state, path[0])
		return
	}
	if nested, ok := state[path[0]].(map[string]interface{}); ok {
		remove(nested, path[1:])
	}
}
