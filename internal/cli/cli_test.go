package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

const definition = `
name: greet
steps:
  - step: state.set
    input:
      values:
        greeted: true
  - step: printer
    when: name
    input:
      message: "hello ${name}"
  - step: state.set
    name: vip
    lang: lua
    when: tier == "gold"
    input:
      values:
        discount: 10
`

func upload(t *testing.T, URL, content string) {
	t.Helper()
	require.NoError(t, afs.New().Upload(context.Background(), URL, 0644, strings.NewReader(content)))
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test", strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRunCmd(t *testing.T) {
	upload(t, "mem://localhost/cli/greet.yaml", definition)
	upload(t, "mem://localhost/cli/state.json", `{"name":"Ada","tier":"gold"}`)

	stdout, stderr, err := execute(t, "", "run", "-d", "mem://localhost/cli/greet.yaml", "-s", "mem://localhost/cli/state.json")
	require.NoError(t, err)

	state := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &state))
	assert.Equal(t, true, state["greeted"])
	assert.EqualValues(t, 10, state["discount"])
	assert.Contains(t, stderr, "hello Ada")
	assert.Contains(t, stderr, "greet: 3 completed, 0 skipped, 0 failed")
}

func TestRunCmd_PolicyAndEvents(t *testing.T) {
	upload(t, "mem://localhost/cli/greet.yaml", definition)

	stdout, stderr, err := execute(t, "", "run", "-d", "mem://localhost/cli/greet.yaml", "--block", "greet.vip", "--events")
	require.NoError(t, err)
	state := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &state))
	assert.NotContains(t, state, "discount")
	assert.Contains(t, stderr, "greet: 1 completed, 2 skipped, 0 failed")
	assert.Contains(t, stderr, "greet.state.set started")
	assert.Contains(t, stderr, "greet.state.set completed")
	assert.Contains(t, stderr, "greet.printer skipped (guard)")
	assert.Contains(t, stderr, "greet.vip skipped (policy)")
}

func TestRunCmd_ConfigPolicy(t *testing.T) {
	upload(t, "mem://localhost/cli/greet.yaml", definition)
	upload(t, "mem://localhost/cli/state.json", `{"name":"Ada","tier":"gold"}`)
	upload(t, "mem://localhost/cli/config.yaml", "logging:\n  level: error\npolicy:\n  block: [greet.printer]\n")

	stdout, stderr, err := execute(t, "", "run", "-d", "mem://localhost/cli/greet.yaml", "-s", "mem://localhost/cli/state.json",
		"-c", "mem://localhost/cli/config.yaml", "--block", "greet.vip")
	require.NoError(t, err)
	state := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &state))
	assert.NotContains(t, state, "discount")
	assert.NotContains(t, stderr, "hello Ada")
	assert.Contains(t, stderr, "greet: 1 completed, 2 skipped, 0 failed")
}

func TestRunCmd_Ask(t *testing.T) {
	upload(t, "mem://localhost/cli/greet.yaml", definition)
	upload(t, "mem://localhost/cli/state.json", `{"name":"Ada","tier":"gold"}`)

	stdout, stderr, err := execute(t, "y\nn\ny\n", "run", "--ask", "-d", "mem://localhost/cli/greet.yaml", "-s", "mem://localhost/cli/state.json")
	require.NoError(t, err)
	state := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &state))
	assert.EqualValues(t, 10, state["discount"])
	assert.NotContains(t, stderr, "hello Ada")
	assert.Contains(t, stderr, "run greet.printer?")
}

func TestRunCmd_StepFailure(t *testing.T) {
	upload(t, "mem://localhost/cli/broken.yaml", "name: broken\nsteps: [ghost, nop]\n")
	stdout, _, err := execute(t, "", "run", "-d", "mem://localhost/cli/broken.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
	assert.Empty(t, stdout)
}

func TestValidateCmd(t *testing.T) {
	upload(t, "mem://localhost/cli/greet.yaml", definition)
	_, stderr, err := execute(t, "", "validate", "-d", "mem://localhost/cli/greet.yaml")
	require.NoError(t, err)
	assert.Contains(t, stderr, "greet: ok")

	upload(t, "mem://localhost/cli/invalid.yaml", "name: invalid\nsteps:\n  - when: x\n  - step: nop\n    when: a\n    lang: cel\n")
	stdout, _, err := execute(t, "", "validate", "-d", "mem://localhost/cli/invalid.yaml")
	require.Error(t, err)
	assert.Contains(t, stdout, "missing step name")
	assert.Contains(t, stdout, "unknown guard language")
}

func TestStepsCmd(t *testing.T) {
	stdout, _, err := execute(t, "", "--json", "steps")
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal([]byte(stdout), &names))
	assert.Contains(t, names, "printer")
	assert.Contains(t, names, "state.set")
}
