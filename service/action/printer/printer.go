// Package printer provides a step that prints a message with ${path}
// references resolved against the state.
package printer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/viant/organizer/extension"
	"github.com/viant/organizer/model"
)

const Name = "printer"

type Input struct {
	Message string `json:"message,omitempty"`
}

// Service prints to its writer.
type Service struct {
	out io.Writer
}

// New returns a Service writing to out, or stdout when out is nil.
func New(out io.Writer) *Service {
	if out == nil {
		out = os.Stdout
	}
	return &Service{out: out}
}

// Register adds the printer step to steps.
func (s *Service) Register(steps *extension.Steps[model.State]) {
	steps.RegisterFactory(Name, extension.Typed[model.State, Input](s.print))
}

func (s *Service) print(_ context.Context, state model.State, input *Input) error {
	message, err := Expand(input.Message, state)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.out, message)
	return err
}

// Expand replaces ${path} with the gjson path value from state. Missing
// paths expand to an empty string; an unterminated reference is kept.
func Expand(text string, state model.State) (string, error) {
	if !strings.Contains(text, "${") {
		return text, nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}
	var sb strings.Builder
	for {
		start := strings.Index(text, "${")
		if start == -1 {
			break
		}
		end := strings.Index(text[start:], "}")
		if end == -1 {
			break
		}
		sb.WriteString(text[:start])
		path := strings.TrimSpace(text[start+2 : start+end])
		sb.WriteString(gjson.GetBytes(data, path).String())
		text = text[start+end+1:]
	}
	sb.WriteString(text)
	return sb.String(), nil
}
