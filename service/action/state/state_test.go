package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/organizer/extension"
	"github.com/viant/organizer/model"
)

func TestSetAndUnset(t *testing.T) {
	steps := extension.NewSteps[model.State]()
	Register(steps)

	state := model.State{
		"customer": map[string]interface{}{"name": "Ada", "tier": "basic"},
		"stale":    true,
	}

	setStep, err := steps.Build(SetName, map[string]interface{}{
		"values": map[string]interface{}{
			"customer": map[string]interface{}{"tier": "gold"},
			"total":    10,
		},
	})
	require.NoError(t, err)
	require.NoError(t, setStep.Call(context.Background(), state))

	unsetStep, err := steps.Build(UnsetName, map[string]interface{}{"keys": []interface{}{"stale", "customer.name", "missing.key"}})
	require.NoError(t, err)
	require.NoError(t, unsetStep.Call(context.Background(), state))

	assert.Equal(t, model.State{
		"customer": map[string]interface{}{"tier": "gold"},
		"total":    10,
	}, state)
}

func TestMerge_ReplacesNonMap(t *testing.T) {
	dst := map[string]interface{}{"a": "scalar"}
	Merge(dst, map[string]interface{}{"a": map[string]interface{}{"b": 1}})
	assert.Equal(t, map[string]interface{}{"a": map[string]interface{}{"b": 1}}, dst)
}

func TestSet_DoesNotShareInput(t *testing.T) {
	steps := extension.NewSteps[model.State]()
	Register(steps)
	setStep, err := steps.Build(SetName, map[string]interface{}{
		"values": map[string]interface{}{
			"tags": []interface{}{"new", map[string]interface{}{"kind": "promo"}},
		},
	})
	require.NoError(t, err)

	first := model.State{}
	require.NoError(t, setStep.Call(context.Background(), first))
	tags := first["tags"].([]interface{})
	tags[0] = "mutated"
	tags[1].(map[string]interface{})["kind"] = "mutated"

	second := model.State{}
	require.NoError(t, setStep.Call(context.Background(), second))
	assert.Equal(t, []interface{}{"new", map[string]interface{}{"kind": "promo"}}, second["tags"])
}
