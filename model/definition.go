package model

import (
	"fmt"
	"strings"

	"github.com/viant/organizer/internal/yml"
	"gopkg.in/yaml.v3"
)

// State is the shared state of declaratively built organizers.
type State = map[string]interface{}

// Definition describes one organizer.
type Definition struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       StepDefs `json:"steps" yaml:"steps"`
	// Source is the URL the definition was loaded from, if any.
	Source string `json:"-" yaml:"-"`
}

// StepDef is one declaration. Exactly one of Step, Steps or Items is set.
type StepDef struct {
	// Name labels the entry; for inline organizers it is the organizer name.
	Name  string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Step  string                 `json:"step,omitempty" yaml:"step,omitempty"`
	When  string                 `json:"when,omitempty" yaml:"when,omitempty"`
	Lang  string                 `json:"lang,omitempty" yaml:"lang,omitempty"`
	Input map[string]interface{} `json:"input,omitempty" yaml:"input,omitempty"`
	// Steps makes this entry an inline organizer.
	Steps StepDefs `json:"steps,omitempty" yaml:"steps,omitempty"`
	// Items holds a nested list, flattened into the parent.
	Items StepDefs `json:"-" yaml:"-"`
}

// StepDefs is an ordered list of declarations. In YAML it may be written as
// a sequence or as a mapping keyed by step name; mapping order is kept.
type StepDefs []*StepDef

// stepDefFields are the keys of a structured declaration; any other single
// key mapping is the compact "name: {fields}" form.
var stepDefFields = map[string]bool{
	"name": true, "step": true, "when": true, "lang": true, "input": true, "steps": true,
}

// IsOrganizer reports whether d declares an inline organizer.
func (d *StepDef) IsOrganizer() bool { return d.Steps != nil }

// IsGroup reports whether d is a nested list.
func (d *StepDef) IsGroup() bool { return d.Items != nil }

func (d *StepDef) UnmarshalYAML(node *yaml.Node) error {
	n := (*yml.Node)(node)
	switch node.Kind {
	case yaml.ScalarNode:
		if n.IsNull() {
			return fmt.Errorf("line %d: empty step declaration", node.Line)
		}
		d.Step = node.Value
		return nil
	case yaml.SequenceNode:
		items := StepDefs{}
		if err := items.UnmarshalYAML(node); err != nil {
			return err
		}
		d.Items = items
		return nil
	case yaml.MappingNode:
		if len(node.Content) == 2 && !stepDefFields[node.Content[0].Value] {
			compact := StepDefs{}
			if err := compact.UnmarshalYAML(node); err != nil {
				return err
			}
			*d = *compact[0]
			return nil
		}
		type stepDef StepDef
		aux := (*stepDef)(d)
		return node.Decode(aux)
	default:
		return fmt.Errorf("line %d: unsupported step declaration", node.Line)
	}
}

func (s *StepDefs) UnmarshalYAML(node *yaml.Node) error {
	n := (*yml.Node)(node).Unwrap()
	ret := StepDefs{}
	var err error
	switch n.Kind {
	case yaml.SequenceNode:
		err = n.Items(func(_ int, item *yml.Node) error {
			def := &StepDef{}
			if err := item.Decode(def); err != nil {
				return err
			}
			ret = append(ret, def)
			return nil
		})
	case yaml.MappingNode:
		err = n.Pairs(func(key string, value *yml.Node) error {
			def := &StepDef{}
			if !value.IsNull() {
				if value.Kind != yaml.MappingNode {
					return fmt.Errorf("line %d: step %v: expected mapping", value.Line, key)
				}
				if err := value.Decode(def); err != nil {
					return err
				}
			}
			switch {
			case def.IsOrganizer():
				if def.Name == "" {
					def.Name = key
				}
			case def.Step == "":
				def.Step = key
			}
			ret = append(ret, def)
			return nil
		})
	case yaml.ScalarNode:
		if !n.IsNull() {
			ret = append(ret, &StepDef{Step: n.Value})
		}
	default:
		err = fmt.Errorf("line %d: unsupported steps declaration", n.Line)
	}
	if err != nil {
		return err
	}
	*s = ret
	return nil
}

// Validate performs a structural validation of the definition. languages,
// when given, lists the accepted guard languages (case-insensitive, empty
// always accepted). The returned slice is empty when the definition is
// sound.
func (d *Definition) Validate(languages ...string) []error {
	var issues []error
	if strings.TrimSpace(d.Name) == "" {
		issues = append(issues, fmt.Errorf("definition name is empty"))
	}
	accepted := map[string]bool{"": true}
	for _, language := range languages {
		accepted[strings.ToLower(language)] = true
	}

	var walk func(path string, defs StepDefs)
	walk = func(path string, defs StepDefs) {
		for i, def := range defs {
			at := fmt.Sprintf("%v[%d]", path, i)
			if def == nil {
				issues = append(issues, fmt.Errorf("%v: empty declaration", at))
				continue
			}
			switch {
			case def.IsGroup():
				walk(at, def.Items)
				continue
			case def.IsOrganizer():
				if def.Step != "" {
					issues = append(issues, fmt.Errorf("%v: declares both step %q and steps", at, def.Step))
				}
				if def.Name == "" {
					issues = append(issues, fmt.Errorf("%v: inline organizer has no name", at))
				}
				if len(def.Input) > 0 {
					issues = append(issues, fmt.Errorf("%v: inline organizer %v does not take input", at, def.Name))
				}
				walk(at+".steps", def.Steps)
			case def.Step == "":
				issues = append(issues, fmt.Errorf("%v: missing step name", at))
			}
			if def.Lang != "" && def.When == "" {
				issues = append(issues, fmt.Errorf("%v: lang %q set without when", at, def.Lang))
			}
			if len(languages) > 0 && !accepted[strings.ToLower(def.Lang)] {
				issues = append(issues, fmt.Errorf("%v: unknown guard language %q", at, def.Lang))
			}
		}
	}
	walk("steps", d.Steps)
	return issues
}
