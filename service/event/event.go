package event

import (
	"time"

	"github.com/viant/organizer/internal/clock"
)

// Context identifies where an event originated.
type Context struct {
	RunID       string `json:"runID"`
	Organizer   string `json:"organizer"`
	Step        string `json:"step,omitempty"`
	Index       int    `json:"index"`
	EventType   string `json:"eventType"`
	TimeTakenMs int    `json:"timeTakenMs,omitempty"`
}

// Event wraps typed data with its origin.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
