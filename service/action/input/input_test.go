package input

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/organizer"
	"github.com/viant/organizer/extension"
	"github.com/viant/organizer/model"
	"github.com/viant/organizer/policy"
)

func TestService_AskAndForm(t *testing.T) {
	testCases := []struct {
		name   string
		step   string
		input  map[string]interface{}
		userIO string
		expect model.State
	}{
		{
			name:   "ask free-form",
			step:   AskName,
			input:  map[string]interface{}{"message": "Your name?", "default": "anon", "key": "name"},
			userIO: "Bob\n",
			expect: model.State{"name": "Bob"},
		},
		{
			name:   "ask default when empty",
			step:   AskName,
			input:  map[string]interface{}{"message": "Your city?", "default": "NYC"},
			userIO: "\n",
			expect: model.State{"answer": "NYC"},
		},
		{
			name: "form free and radio",
			step: FormName,
			input: map[string]interface{}{
				"message": "Account setup",
				"fields": []interface{}{
					map[string]interface{}{"label": "username", "name": "user"},
					map[string]interface{}{"label": "role", "name": "role", "options": []interface{}{"admin", "viewer"}},
				},
				"key": "account",
			},
			userIO: "alice\n2\n",
			expect: model.State{"account": map[string]interface{}{"user": "alice", "role": "viewer"}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			steps := extension.NewSteps[model.State]()
			NewWithIO(strings.NewReader(tc.userIO), &out).Register(steps)
			step, err := steps.Build(tc.step, tc.input)
			require.NoError(t, err)
			state := model.State{}
			require.NoError(t, step.Call(context.Background(), state))
			assert.Equal(t, tc.expect, state)
			assert.NotEmpty(t, out.String())
		})
	}
}

func TestService_Approver(t *testing.T) {
	var out bytes.Buffer
	srv := NewWithIO(strings.NewReader("y\nn\na\n"), &out)
	p := &policy.Policy{Mode: policy.ModeAsk, Ask: srv.Approver()}

	var calls []string
	record := func(name string) organizer.Entry[model.State] {
		return organizer.Named[model.State](name, organizer.StepFunc[model.State](func(context.Context, model.State) error {
			calls = append(calls, name)
			return nil
		}))
	}
	o := organizer.New[model.State]("wizard").Organize(record("one"), record("two"), record("three"), record("four"))
	ctx := policy.WithPolicy(context.Background(), p)
	require.NoError(t, o.Call(ctx, model.State{}))

	assert.Equal(t, []string{"one", "three", "four"}, calls)
	assert.Equal(t, policy.ModeAuto, p.Mode)
	assert.Contains(t, out.String(), "run wizard.one?")
	assert.NotContains(t, out.String(), "run wizard.four?")
}

func TestParseIndex(t *testing.T) {
	idx, ok := parseIndex("2", 3)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = parseIndex("4", 3)
	assert.False(t, ok)
	_, ok = parseIndex("x", 3)
	assert.False(t, ok)
	_, ok = parseIndex("1", 0)
	assert.False(t, ok)
}
