package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/organizer"
	"github.com/viant/organizer/model"
	"github.com/viant/organizer/policy"
	"github.com/viant/organizer/progress"
	"github.com/viant/organizer/service/action/input"
	"github.com/viant/organizer/service/loader"
	"github.com/viant/organizer/tracing"
)

type runOptions struct {
	definition string
	state      string
	config     string
	ask        bool
	allow      []string
	block      []string
	events     bool
}

// NewRunCmd creates the run command.
func NewRunCmd(outputFn func() *Output, in io.Reader) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an organizer definition against a JSON state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefinition(cmd.Context(), opts, outputFn(), in)
		},
	}
	cmd.Flags().StringVarP(&opts.definition, "definition", "d", "", "definition URL or path")
	cmd.Flags().StringVarP(&opts.state, "state", "s", "", "initial JSON state URL or path")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config YAML URL or path")
	cmd.Flags().BoolVar(&opts.ask, "ask", false, "confirm every step interactively")
	cmd.Flags().StringSliceVar(&opts.allow, "allow", nil, "only run these organizer.step names")
	cmd.Flags().StringSliceVar(&opts.block, "block", nil, "never run these organizer.step names")
	cmd.Flags().BoolVar(&opts.events, "events", false, "print step events to stderr")
	_ = cmd.MarkFlagRequired("definition")
	return cmd
}

func runDefinition(ctx context.Context, opts *runOptions, out *Output, in io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := organizer.DefaultConfig()
	cfg.Logging.Level = "warn"
	if opts.config != "" {
		loaded, err := organizer.LoadConfig(ctx, normalize(opts.config))
		if err != nil {
			return err
		}
		cfg = loaded
	}
	options, events, err := cfg.Options()
	if err != nil {
		return err
	}
	if cfg.Tracing.Enabled {
		defer tracing.Shutdown(context.WithoutCancel(ctx))
	}
	if events != nil {
		defer events.Close()
	}
	if opts.events {
		options = append(options, organizer.WithListener(func(_ context.Context, e *organizer.StepEvent) {
			out.Message(formatEvent(e))
		}))
	}

	prompts := input.NewWithIO(in, out.errW)
	srv := loader.New(loader.WithOrganizerOptions(options...), loader.WithOutput(out.errW), loader.WithInput(prompts))
	defer srv.Close()
	o, err := srv.Load(ctx, normalize(opts.definition))
	if err != nil {
		return err
	}

	state := model.State{}
	if opts.state != "" {
		data, err := afs.New().DownloadWithURL(ctx, normalize(opts.state))
		if err != nil {
			return fmt.Errorf("failed to load state %v: %w", opts.state, err)
		}
		if err = json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("failed to decode state %v: %w", opts.state, err)
		}
	}

	if p := buildPolicy(cfg.Policy, opts, prompts); p != nil {
		ctx = policy.WithPolicy(ctx, p)
	}
	ctx, tracker := progress.WithNewTracker(ctx, "", o.Name(), nil)
	runErr := o.Call(ctx, state)
	snapshot := tracker.Snapshot()
	out.Message(fmt.Sprintf("%v: %d completed, %d skipped, %d failed", o.Name(), snapshot.CompletedSteps, snapshot.SkippedSteps, snapshot.FailedSteps))
	if runErr != nil {
		return runErr
	}
	out.JSON(state)
	return nil
}

// buildPolicy starts from the configured policy; flags add to its lists and
// --ask forces interactive approval.
func buildPolicy(cfg *policy.Config, opts *runOptions, prompts *input.Service) *policy.Policy {
	p := cfg.Policy()
	if p == nil {
		if !opts.ask && len(opts.allow) == 0 && len(opts.block) == 0 {
			return nil
		}
		p = &policy.Policy{Mode: policy.ModeAuto}
	}
	p.AllowList = append(p.AllowList, opts.allow...)
	p.BlockList = append(p.BlockList, opts.block...)
	if opts.ask {
		p.Mode = policy.ModeAsk
	}
	if p.Mode == policy.ModeAsk {
		p.Ask = prompts.Approver()
	}
	return p
}

func formatEvent(e *organizer.StepEvent) string {
	ret := e.Organizer + "." + e.Step + " " + e.Status
	if e.Reason != "" {
		ret += " (" + e.Reason + ")"
	}
	if e.Elapsed > 0 {
		ret += " " + strconv.FormatInt(e.Elapsed.Round(time.Millisecond).Milliseconds(), 10) + "ms"
	}
	if e.Error != "" {
		ret += ": " + e.Error
	}
	return ret
}

func normalize(location string) string {
	return url.Normalize(location, file.Scheme)
}
