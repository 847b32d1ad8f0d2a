// Package input collects answers from a user over a reader and writer pair.
// It provides the ask and form steps and a policy.AskFunc that confirms
// steps interactively.
package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/viant/organizer/extension"
	"github.com/viant/organizer/model"
	"github.com/viant/organizer/policy"
)

const (
	AskName  = "input.ask"
	FormName = "input.form"
)

// Service reads answers from in and writes prompts to out. Prompts are
// serialised.
type Service struct {
	in  *bufio.Reader
	out io.Writer
	mux sync.Mutex
}

// New returns a Service over stdin and stdout.
func New() *Service {
	return NewWithIO(nil, nil)
}

// NewWithIO lets callers override the streams; nil selects stdin or stdout.
func NewWithIO(in io.Reader, out io.Writer) *Service {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Service{in: bufio.NewReader(in), out: out}
}

// Register adds the ask and form steps to steps.
func (s *Service) Register(steps *extension.Steps[model.State]) {
	steps.RegisterFactory(AskName, extension.Typed[model.State, AskInput](s.ask))
	steps.RegisterFactory(FormName, extension.Typed[model.State, FormInput](s.form))
}

type AskInput struct {
	Message string `json:"message,omitempty"`
	Default string `json:"default,omitempty"`
	// Key receives the answer; defaults to "answer".
	Key string `json:"key,omitempty"`
}

func (s *Service) ask(_ context.Context, state model.State, input *AskInput) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	prompt := strings.TrimSpace(input.Message)
	if prompt == "" {
		prompt = "?"
	}
	response, err := s.prompt(prompt + " ")
	if err != nil {
		return err
	}
	if response == "" {
		response = input.Default
	}
	key := input.Key
	if key == "" {
		key = "answer"
	}
	state[key] = response
	return nil
}

// Field is one form question.
type Field struct {
	Label string `json:"label,omitempty"`
	// Name is the state key; defaults to Label.
	Name string `json:"name,omitempty"`
	// Options make the field single choice; answers may be 1-based indexes.
	Options []string `json:"options,omitempty"`
	Default string   `json:"default,omitempty"`
}

type FormInput struct {
	Message string  `json:"message,omitempty"`
	Fields  []Field `json:"fields,omitempty"`
	// Key, when set, nests the answers under one state key.
	Key string `json:"key,omitempty"`
}

func (s *Service) form(_ context.Context, state model.State, input *FormInput) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if message := strings.TrimSpace(input.Message); message != "" {
		fmt.Fprintln(s.out, message)
	}
	values := make(map[string]interface{}, len(input.Fields))
	for _, field := range input.Fields {
		label := strings.TrimSpace(field.Label)
		if label == "" {
			label = "?"
		}
		name := field.Name
		if name == "" {
			name = label
		}
		var prompt strings.Builder
		prompt.WriteString(label)
		for i, option := range field.Options {
			if i == 0 {
				prompt.WriteString(" (")
			} else {
				prompt.WriteString(", ")
			}
			fmt.Fprintf(&prompt, "%d:%s", i+1, option)
		}
		if len(field.Options) > 0 {
			prompt.WriteString(")")
		}
		prompt.WriteString(": ")

		response, err := s.prompt(prompt.String())
		if err != nil {
			return err
		}
		if response == "" {
			response = field.Default
		}
		if idx, ok := parseIndex(response, len(field.Options)); ok {
			response = field.Options[idx]
		}
		values[name] = response
	}
	if input.Key == "" {
		for k, v := range values {
			state[k] = v
		}
		return nil
	}
	state[input.Key] = values
	return nil
}

// Approver returns a policy.AskFunc that asks before each step. Answering
// "a" approves the step and switches the policy to auto mode.
func (s *Service) Approver() policy.AskFunc {
	return func(_ context.Context, step string, p *policy.Policy) bool {
		s.mux.Lock()
		defer s.mux.Unlock()
		response, err := s.prompt(fmt.Sprintf("run %v? [y/N/a] ", step))
		if err != nil {
			return false
		}
		switch strings.ToLower(response) {
		case "y", "yes":
			return true
		case "a", "all":
			p.Mode = policy.ModeAuto
			return true
		default:
			return false
		}
	}
}

func (s *Service) prompt(text string) (string, error) {
	fmt.Fprint(s.out, text)
	response, err := s.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

func parseIndex(s string, n int) (int, bool) {
	if n == 0 || s == "" {
		return 0, false
	}
	idx := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		idx = idx*10 + int(r-'0')
	}
	idx--
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}
