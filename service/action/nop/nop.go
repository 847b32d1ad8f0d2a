// Package nop provides a step that does nothing.
package nop

import (
	"context"

	"github.com/viant/organizer"
	"github.com/viant/organizer/extension"
	"github.com/viant/organizer/model"
)

const Name = "nop"

// Step performs no operation and returns immediately.
var Step = organizer.StepFunc[model.State](func(context.Context, model.State) error {
	return nil
})

// Register adds the nop step to steps.
func Register(steps *extension.Steps[model.State]) {
	steps.Register(Name, Step)
}
