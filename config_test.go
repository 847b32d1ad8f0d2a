package organizer

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/organizer/policy"
	"github.com/viant/organizer/service/event"
)

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		config    *Config
		expectErr string
	}{
		{name: "nil", config: nil},
		{name: "default", config: DefaultConfig()},
		{name: "bad level", config: &Config{Logging: LoggingConfig{Level: "loud"}}, expectErr: "logging.level"},
		{name: "bad format", config: &Config{Logging: LoggingConfig{Format: "xml"}}, expectErr: "logging.format"},
		{name: "tracing without name", config: &Config{Tracing: TracingConfig{Enabled: true}}, expectErr: "tracing.serviceName"},
		{name: "negative buffer", config: &Config{Events: EventsConfig{QueueBuffer: -1}}, expectErr: "events.queueBuffer"},
		{name: "bad policy mode", config: &Config{Policy: &policy.Config{Mode: "maybe"}}, expectErr: "policy.mode"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	require.NoError(t, os.Setenv("ORGANIZER_TEST_LEVEL", "debug"))
	defer os.Unsetenv("ORGANIZER_TEST_LEVEL")

	URL := "mem://localhost/organizer/config.yaml"
	document := `logging:
  level: ${env.ORGANIZER_TEST_LEVEL}
  format: json
events:
  enabled: true
  queueBuffer: 8
policy:
  block: [checkout.charge]
`
	require.NoError(t, fs.Upload(ctx, URL, 0644, strings.NewReader(document)))

	cfg, err := LoadConfig(ctx, URL)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, 8, cfg.Events.QueueBuffer)
	assert.Equal(t, "organizer", cfg.Tracing.ServiceName)
	require.NotNil(t, cfg.Policy)
	assert.Equal(t, []string{"checkout.charge"}, cfg.Policy.Block)

	invalid := "mem://localhost/organizer/invalid.yaml"
	require.NoError(t, fs.Upload(ctx, invalid, 0644, strings.NewReader("logging:\n  level: loud\n")))
	_, err = LoadConfig(ctx, invalid)
	assert.Error(t, err)

	_, err = LoadConfig(ctx, "mem://localhost/organizer/missing.yaml")
	assert.Error(t, err)
}

func TestConfig_OptionsWithEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "error"
	cfg.Events.Enabled = true
	options, events, err := cfg.Options()
	require.NoError(t, err)
	require.NotNil(t, events)
	defer events.Close()

	received := make(chan *StepEvent, 8)
	event.SetListenerOf[*StepEvent](events, func(e *event.Event[*StepEvent]) {
		received <- e.Data
	})

	o := New[*order]("checkout", options...).Organize(step("validate"), When[*order](step("charge"), Never[*order]()))
	require.NoError(t, o.Call(context.Background(), &order{}))

	var statuses []string
	for i := 0; i < 3; i++ {
		select {
		case e := <-received:
			statuses = append(statuses, e.Step+":"+e.Status)
		case <-time.After(time.Second):
			t.Fatalf("expected 3 events, got %v", statuses)
		}
	}
	assert.Equal(t, []string{"validate:started", "validate:completed", "charge:skipped"}, statuses)
}

func TestConfig_OptionsRejectsInvalid(t *testing.T) {
	_, _, err := (&Config{Logging: LoggingConfig{Level: "loud"}}).Options()
	assert.Error(t, err)
}
