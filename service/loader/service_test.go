package loader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/organizer"
	"github.com/viant/organizer/extension"
	"github.com/viant/organizer/model"
	"github.com/viant/organizer/runtime/guard"
)

const checkoutYAML = `
name: checkout
steps:
  - record
  - step: state.set
    input:
      values:
        charged: true
    when: customer.vip
  - [audit, [notify]]
  - name: shipping
    steps:
      - record
      - step: printer
        input:
          message: "ship to ${customer.name}"
  - step: record
    name: lua-check
    lang: lua
    when: total > 100
`

func newRecordingLoader(t *testing.T, out *bytes.Buffer) (*Service, *[]string) {
	t.Helper()
	var calls []string
	steps := extension.NewSteps[model.State]()
	for _, name := range []string{"record", "audit", "notify"} {
		name := name
		steps.Register(name, organizer.StepFunc[model.State](func(context.Context, model.State) error {
			calls = append(calls, name)
			return nil
		}))
	}
	return New(WithSteps(steps), WithOutput(out)), &calls
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/organizer/checkout.yaml"
	require.NoError(t, fs.Upload(ctx, URL, 0644, strings.NewReader(checkoutYAML)))

	var out bytes.Buffer
	srv, calls := newRecordingLoader(t, &out)
	o, err := srv.Load(ctx, "mem://localhost/organizer/checkout")
	require.NoError(t, err)
	assert.Equal(t, "checkout", o.Name())
	assert.Equal(t, 6, o.Len())

	labels := []string{}
	for i, entry := range o.Organized() {
		labels = append(labels, entry.Label(i))
	}
	assert.Equal(t, []string{"record", "state.set", "audit", "notify", "shipping", "lua-check"}, labels)

	state := model.State{"customer": map[string]interface{}{"vip": true, "name": "Ada"}, "total": 50}
	require.NoError(t, o.Call(ctx, state))
	assert.Equal(t, []string{"record", "audit", "notify", "record"}, *calls)
	assert.Equal(t, true, state["charged"])
	assert.Equal(t, "ship to Ada\n", out.String())

	*calls = nil
	state = model.State{"customer": map[string]interface{}{"vip": false}, "total": 150}
	require.NoError(t, o.Call(ctx, state))
	assert.Equal(t, []string{"record", "audit", "notify", "record", "record"}, *calls)
	assert.NotContains(t, state, "charged")
}

func TestService_LoadDefinitionNameFromURL(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/organizer/anonymous.yaml"
	require.NoError(t, fs.Upload(ctx, URL, 0644, strings.NewReader("steps: [nop]\n")))

	def, err := New().LoadDefinition(ctx, URL)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", def.Name)
	assert.Equal(t, URL, def.Source)

	_, err = New().LoadDefinition(ctx, "mem://localhost/organizer/missing.yaml")
	assert.Error(t, err)
}

func TestService_UnknownStepIsLazy(t *testing.T) {
	srv := New()
	def, err := srv.DecodeYAML([]byte("name: lazy\nsteps:\n  - step: ghost\n    when: enabled\n"))
	require.NoError(t, err)
	o, err := srv.Build(def)
	require.NoError(t, err)

	assert.NoError(t, o.Call(context.Background(), model.State{}))
	err = o.Call(context.Background(), model.State{"enabled": true})
	assert.ErrorIs(t, err, extension.ErrStepNotFound)
}

func TestService_MissingStepNameIsLazy(t *testing.T) {
	srv := New()
	def, err := srv.DecodeYAML([]byte("name: lazy\nsteps:\n  - name: unnamed\n"))
	require.NoError(t, err)
	assert.NotEmpty(t, srv.Validate(def))

	o, err := srv.Build(def)
	require.NoError(t, err)
	assert.ErrorIs(t, o.Call(context.Background(), model.State{}), organizer.ErrNotInvocable)
}

func TestService_BuildErrors(t *testing.T) {
	srv := New()
	testCases := []struct {
		name     string
		document string
		expect   error
	}{
		{name: "unknown language", document: "name: x\nsteps:\n  - step: nop\n    when: a\n    lang: cel\n", expect: guard.ErrUnsupportedLanguage},
		{name: "bad lua", document: "name: x\nsteps:\n  - step: nop\n    when: 'return ('\n    lang: lua\n", expect: guard.ErrCompile},
		{name: "nested bad lua", document: "name: x\nsteps:\n  - name: inner\n    steps:\n      - step: nop\n        when: 'return ('\n        lang: lua\n", expect: guard.ErrCompile},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			def, err := srv.DecodeYAML([]byte(tc.document))
			require.NoError(t, err)
			_, err = srv.Build(def)
			assert.ErrorIs(t, err, tc.expect)
			assert.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}

	_, err := srv.DecodeYAML([]byte("steps: [\n"))
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestService_EnvExpansion(t *testing.T) {
	require.NoError(t, os.Setenv("ORGANIZER_LOADER_STEP", "nop"))
	defer os.Unsetenv("ORGANIZER_LOADER_STEP")
	def, err := New().DecodeYAML([]byte("name: env\nsteps: [${env.ORGANIZER_LOADER_STEP}]\n"))
	require.NoError(t, err)
	assert.Equal(t, "nop", def.Steps[0].Step)
}

func TestService_StepFailureRelayed(t *testing.T) {
	failure := errors.New("charge failed")
	steps := extension.NewSteps[model.State]()
	steps.Register("charge", organizer.StepFunc[model.State](func(context.Context, model.State) error { return failure }))
	srv := New(WithSteps(steps))
	def, err := srv.DecodeYAML([]byte("name: pay\nsteps:\n  - name: inner\n    steps: [charge]\n  - state.set\n"))
	require.NoError(t, err)
	o, err := srv.Build(def)
	require.NoError(t, err)
	err = o.Call(context.Background(), model.State{})
	assert.True(t, err == failure)
}

func TestService_BuiltInSteps(t *testing.T) {
	names := New().Steps().Names()
	for _, name := range []string{"nop", "printer", "state.set", "state.unset", "input.ask", "input.form", "storage.read", "storage.write", "exec.run"} {
		assert.Contains(t, names, name)
	}
}
