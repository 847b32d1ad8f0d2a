package organizer

import (
	"context"
	"reflect"
	"strconv"
)

// Entry is one row of the registration table.
type Entry[T any] struct {
	// Name labels the entry in logs, spans, events and policy checks. When
	// empty the step's own Name() is used, then its position.
	Name  string
	Step  Step[T]
	Guard Guard[T]
}

// When declares step guarded by guard.
func When[T any](step Step[T], guard Guard[T]) Entry[T] {
	return Entry[T]{Step: step, Guard: guard}
}

// Named declares an unconditional step under name.
func Named[T any](name string, step Step[T]) Entry[T] {
	return Entry[T]{Name: name, Step: step, Guard: Always[T]()}
}

// WithGuard returns a copy of e guarded by guard.
func (e Entry[T]) WithGuard(guard Guard[T]) Entry[T] {
	e.Guard = guard
	return e
}

// Label returns the name the entry is reported under at position index.
func (e Entry[T]) Label(index int) string {
	if e.Name != "" {
		return e.Name
	}
	if named, ok := e.Step.(interface{ Name() string }); ok {
		if name := named.Name(); name != "" {
			return name
		}
	}
	return "step-" + strconv.Itoa(index+1)
}

func (e Entry[T]) normalized() Entry[T] {
	if e.Guard == nil {
		e.Guard = Always[T]()
	}
	return e
}

// appendEntries flattens items into dst. Values that are not steps are kept
// and fail only when the runner reaches them.
func appendEntries[T any](dst []Entry[T], items []interface{}) []Entry[T] {
	for _, item := range items {
		switch actual := item.(type) {
		case Entry[T]:
			dst = append(dst, actual.normalized())
		case *Entry[T]:
			if actual == nil {
				dst = appendInvalid(dst, item)
				continue
			}
			dst = append(dst, actual.normalized())
		case []Entry[T]:
			for _, entry := range actual {
				dst = append(dst, entry.normalized())
			}
		case []Step[T]:
			for _, step := range actual {
				dst = append(dst, Entry[T]{Step: step, Guard: Always[T]()})
			}
		case []interface{}:
			dst = appendEntries(dst, actual)
		case Step[T]:
			dst = append(dst, Entry[T]{Step: actual, Guard: Always[T]()})
		case func(context.Context, T) error:
			dst = append(dst, Entry[T]{Step: StepFunc[T](actual), Guard: Always[T]()})
		default:
			if nested, ok := sliceItems(item); ok {
				dst = appendEntries(dst, nested)
				continue
			}
			dst = appendInvalid(dst, item)
		}
	}
	return dst
}

// sliceItems unpacks any other slice or array, e.g. []*Organizer[T] or
// []StepFunc[T], so that its elements are declared one by one.
func sliceItems(item interface{}) ([]interface{}, bool) {
	value := reflect.ValueOf(item)
	switch value.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, false
	}
	ret := make([]interface{}, value.Len())
	for i := range ret {
		ret[i] = value.Index(i).Interface()
	}
	return ret, true
}

func appendInvalid[T any](dst []Entry[T], value interface{}) []Entry[T] {
	name := "step-" + strconv.Itoa(len(dst)+1)
	return append(dst, Entry[T]{Step: &invalidStep[T]{name: name, value: value}, Guard: Always[T]()})
}
