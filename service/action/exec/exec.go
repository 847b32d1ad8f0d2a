// Package exec provides a step running shell commands on the local host.
package exec

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	"github.com/viant/organizer/extension"
	"github.com/viant/organizer/model"
)

const (
	RunName = "exec.run"

	defaultTimeoutMs = 60000
)

type Input struct {
	Workdir  string            `json:"workdir,omitempty"`
	Env      map[string]string `json:"env,omitempty"`
	Commands []string          `json:"commands,omitempty"`
	// Key names the state entry receiving the Result; defaults to "exec".
	Key          string `json:"key,omitempty"`
	TimeoutMs    int    `json:"timeoutMs,omitempty"`
	AbortOnError *bool  `json:"abortOnError,omitempty"`
}

type Command struct {
	Command string `json:"command"`
	Stdout  string `json:"stdout,omitempty"`
	Status  int    `json:"status"`
}

// Result is stored in the state after a run.
type Result struct {
	Commands []*Command `json:"commands,omitempty"`
	Stdout   string     `json:"stdout,omitempty"`
	Status   int        `json:"status"`
}

// Service runs commands through a gosh session per environment.
type Service struct {
	mux      sync.Mutex
	sessions map[string]*session
}

func New() *Service {
	return &Service{sessions: map[string]*session{}}
}

// Register adds the exec step to steps.
func (s *Service) Register(steps *extension.Steps[model.State]) {
	steps.RegisterFactory(RunName, extension.Typed[model.State, Input](s.run))
}

func (s *Service) run(ctx context.Context, state model.State, input *Input) error {
	if len(input.Commands) == 0 {
		return fmt.Errorf("%s: at least one command is required", RunName)
	}
	sess, err := s.session(ctx, input.Env)
	if err != nil {
		return err
	}
	sess.mux.Lock()
	defer sess.mux.Unlock()
	defer sess.reset(ctx)

	if input.Workdir != "" {
		if _, status, err := sess.shell.Run(ctx, "cd "+quote(input.Workdir)); err != nil || status != 0 {
			return fmt.Errorf("failed to change directory to %s: status %d: %v", input.Workdir, status, err)
		}
	}
	timeout := input.TimeoutMs
	if timeout == 0 {
		timeout = defaultTimeoutMs
	}
	abort := input.AbortOnError == nil || *input.AbortOnError
	result := &Result{}
	key := input.Key
	if key == "" {
		key = "exec"
	}
	var stdout []string
	for _, command := range input.Commands {
		out, status, err := sess.shell.Run(ctx, command, runner.WithTimeout(timeout))
		result.Commands = append(result.Commands, &Command{Command: command, Stdout: out, Status: status})
		if out != "" {
			stdout = append(stdout, out)
		}
		result.Status = status
		if err != nil {
			result.Stdout = strings.TrimSpace(strings.Join(stdout, "\n"))
			state[key] = result
			return fmt.Errorf("%s: command %q failed: %w", RunName, command, err)
		}
		if status != 0 && abort {
			break
		}
	}
	result.Stdout = strings.TrimSpace(strings.Join(stdout, "\n"))
	state[key] = result
	if result.Status != 0 && abort {
		return fmt.Errorf("%s: command %q exited with %d", RunName, result.Commands[len(result.Commands)-1].Command, result.Status)
	}
	return nil
}

// session is a shell shared by exec.run steps with the same environment.
// Every step starts in the directory the shell was opened in.
type session struct {
	mux   sync.Mutex
	shell *gosh.Service
	home  string
}

func (s *session) reset(ctx context.Context) {
	if s.home != "" {
		_, _, _ = s.shell.Run(context.WithoutCancel(ctx), "cd "+quote(s.home))
	}
}

func (s *Service) session(ctx context.Context, env map[string]string) (*session, error) {
	key := sessionKey(env)
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok := s.sessions[key]; ok {
		return ret, nil
	}
	var options []runner.Option
	if len(env) > 0 {
		options = append(options, runner.WithEnvironment(env))
	}
	shell, err := gosh.New(ctx, local.New(options...))
	if err != nil {
		return nil, fmt.Errorf("failed to start shell: %w", err)
	}
	home, status, err := shell.Run(ctx, "pwd")
	if err != nil || status != 0 {
		_ = shell.Close()
		return nil, fmt.Errorf("failed to resolve shell directory: status %d: %v", status, err)
	}
	ret := &session{shell: shell, home: strings.TrimSpace(home)}
	s.sessions[key] = ret
	return ret, nil
}

// Close releases all shell sessions.
func (s *Service) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	var errs []string
	for key, sess := range s.sessions {
		if err := sess.shell.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	s.sessions = map[string]*session{}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close sessions: %s", strings.Join(errs, "; "))
	}
	return nil
}

func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

func sessionKey(env map[string]string) string {
	if len(env) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(env))
	for k, v := range env {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\x00")
}
