package loader

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/organizer"
	"github.com/viant/organizer/extension"
	"github.com/viant/organizer/internal/env"
	"github.com/viant/organizer/internal/idgen"
	"github.com/viant/organizer/model"
	"github.com/viant/organizer/runtime/guard"
	"github.com/viant/organizer/service/action/exec"
	"github.com/viant/organizer/service/action/input"
	"github.com/viant/organizer/service/action/nop"
	"github.com/viant/organizer/service/action/printer"
	"github.com/viant/organizer/service/action/state"
	"github.com/viant/organizer/service/action/storage"
	"gopkg.in/yaml.v3"
)

// Service loads definitions and builds organizers from them.
type Service struct {
	fs      afs.Service
	steps   *extension.Steps[model.State]
	guards  *guard.Registry
	options []organizer.Option
	output  io.Writer
	input   *input.Service
	exec    *exec.Service
}

// New creates a loader with the built-in actions registered.
func New(opts ...Option) *Service {
	ret := &Service{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.steps == nil {
		ret.steps = extension.NewSteps[model.State]()
	}
	if ret.guards == nil {
		ret.guards = guard.NewRegistry()
	}
	if ret.input == nil {
		ret.input = input.New()
	}
	nop.Register(ret.steps)
	printer.New(ret.output).Register(ret.steps)
	state.Register(ret.steps)
	ret.input.Register(ret.steps)
	storage.New(ret.fs).Register(ret.steps)
	ret.exec = exec.New()
	ret.exec.Register(ret.steps)
	return ret
}

// Close releases shell sessions opened by exec steps.
func (s *Service) Close() error {
	return s.exec.Close()
}

func (s *Service) Steps() *extension.Steps[model.State] { return s.steps }

func (s *Service) Guards() *guard.Registry { return s.guards }

// Load reads the definition at URL and builds its organizer.
func (s *Service) Load(ctx context.Context, URL string) (*organizer.Organizer[model.State], error) {
	def, err := s.LoadDefinition(ctx, URL)
	if err != nil {
		return nil, err
	}
	return s.Build(def)
}

// LoadDefinition reads and decodes the definition at URL. A URL without an
// extension gets ".yaml"; a definition without a name takes the file name.
func (s *Service) LoadDefinition(ctx context.Context, URL string) (*model.Definition, error) {
	if path.Ext(URL) == "" {
		URL += ".yaml"
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load definition from %v: %w", URL, err)
	}
	def, err := s.DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode definition from %v: %w", URL, err)
	}
	def.Source = URL
	if def.Name == "" {
		def.Name = nameFromURL(URL)
	}
	return def, nil
}

// DecodeYAML decodes a definition after expanding ${env.KEY} references.
func (s *Service) DecodeYAML(data []byte) (*model.Definition, error) {
	def := &model.Definition{}
	if err := yaml.Unmarshal([]byte(env.Expand(string(data))), def); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	return def, nil
}

// Validate reports structural issues, checking guard languages against the
// loader's registry.
func (s *Service) Validate(def *model.Definition) []error {
	return def.Validate(s.guards.Languages()...)
}

// Build turns def into an organizer. Guard scripts are compiled here and
// fail the build; unknown or missing steps fail only when a run reaches
// them.
func (s *Service) Build(def *model.Definition) (*organizer.Organizer[model.State], error) {
	name := def.Name
	if name == "" {
		name = "organizer-" + idgen.New()
	}
	ret := organizer.New[model.State](name, s.options...)
	items, err := s.buildItems(name, def.Steps)
	if err != nil {
		return nil, err
	}
	return ret.Organize(items...), nil
}

func (s *Service) buildItems(parent string, defs model.StepDefs) ([]interface{}, error) {
	items := make([]interface{}, 0, len(defs))
	for i, def := range defs {
		if def == nil {
			items = append(items, nil)
			continue
		}
		if def.IsGroup() {
			nested, err := s.buildItems(parent, def.Items)
			if err != nil {
				return nil, err
			}
			items = append(items, nested)
			continue
		}
		entry, err := s.buildEntry(parent, i, def)
		if err != nil {
			return nil, err
		}
		items = append(items, entry)
	}
	return items, nil
}

func (s *Service) buildEntry(parent string, index int, def *model.StepDef) (organizer.Entry[model.State], error) {
	entry := organizer.Entry[model.State]{Name: def.Name}
	if def.When != "" {
		guardFn, err := s.guards.Guard(def.Lang, def.When)
		if err != nil {
			return entry, fmt.Errorf("%w: %v[%d]: %w", ErrInvalidDefinition, parent, index, err)
		}
		entry.Guard = guardFn
	}
	switch {
	case def.IsOrganizer():
		name := def.Name
		if name == "" {
			name = fmt.Sprintf("%v.%d", parent, index+1)
		}
		items, err := s.buildItems(name, def.Steps)
		if err != nil {
			return entry, err
		}
		entry.Step = organizer.New[model.State](name, s.options...).Organize(items...)
	case def.Step != "":
		step, err := s.steps.Build(def.Step, def.Input)
		if err != nil {
			return entry, fmt.Errorf("%w: %v[%d]: %w", ErrInvalidDefinition, parent, index, err)
		}
		entry.Step = step
	}
	return entry, nil
}

func nameFromURL(URL string) string {
	base := path.Base(URL)
	return strings.TrimSuffix(base, path.Ext(base))
}
