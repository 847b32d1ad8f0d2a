package event

import (
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/viant/organizer/service/messaging"
	"github.com/viant/organizer/service/messaging/memory"
)

// Service owns one queue per event payload type plus an untyped stream that
// receives a copy of every event.
type Service struct {
	publisher       *Publisher[any]
	listener        *Listener[any]
	typedPublishers map[reflect.Type]any
	typedListeners  map[reflect.Type]any
	mux             sync.RWMutex
	newQueueConfig  func(name string) memory.Config
	logger          *slog.Logger
	mirroring       atomic.Bool
}

func New(opts ...Option) *Service {
	ret := &Service{
		typedPublishers: make(map[reflect.Type]any),
		typedListeners:  make(map[reflect.Type]any),
		newQueueConfig:  func(string) memory.Config { return memory.DefaultConfig() },
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.publisher = NewPublisher[any](QueueOf[Event[any]](ret, "any"))
	return ret
}

// QueueOf creates a queue for the named stream.
func QueueOf[T any](s *Service, name string) messaging.Queue[T] {
	return memory.NewQueue[T](s.newQueueConfig(name))
}

// SetListener replaces the untyped listener.
func (s *Service) SetListener(handler func(*Event[any])) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener != nil {
		s.listener.Stop()
	}
	s.listener = NewListener[any](s.publisher, handler, s.logger)
	s.listener.Start()
	s.mirroring.Store(true)
}

// Listening reports whether any listener would receive events carrying T.
// Publishing without one fills the queue buffer and eventually blocks.
func Listening[T any](s *Service) bool {
	if s.mirroring.Load() {
		return true
	}
	s.mux.RLock()
	defer s.mux.RUnlock()
	_, ok := s.typedListeners[keyOf[T]()]
	return ok
}

// Close stops every running listener.
func (s *Service) Close() {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.mirroring.Store(false)
	if s.listener != nil {
		s.listener.Stop()
		s.listener = nil
	}
	for key, l := range s.typedListeners {
		l.(interface{ Stop() }).Stop()
		delete(s.typedListeners, key)
	}
	for _, p := range s.typedPublishers {
		p.(interface{ unobserve() }).unobserve()
	}
}

func keyOf[T any]() reflect.Type {
	rType := reflect.TypeOf((*T)(nil)).Elem()
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// SetListenerOf replaces the listener for events carrying T.
func SetListenerOf[T any](s *Service, handler func(*Event[T])) {
	publisher := PublisherOf[T](s)
	key := keyOf[T]()
	s.mux.Lock()
	defer s.mux.Unlock()
	if prev, ok := s.typedListeners[key]; ok {
		prev.(*Listener[T]).Stop()
	}
	listener := NewListener[T](publisher, handler, s.logger)
	s.typedListeners[key] = listener
	listener.Start()
	publisher.observed.Store(true)
}

// PublisherOf returns the publisher for events carrying T.
func PublisherOf[T any](s *Service) *Publisher[T] {
	key := keyOf[T]()
	s.mux.RLock()
	ret, ok := s.typedPublishers[key]
	s.mux.RUnlock()
	if ok {
		return ret.(*Publisher[T])
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok = s.typedPublishers[key]; ok {
		return ret.(*Publisher[T])
	}
	publisher := NewPublisher[T](QueueOf[Event[T]](s, key.String()))
	publisher.anyQueue = s.publisher.queue
	publisher.mirror = &s.mirroring
	publisher.observed = &atomic.Bool{}
	s.typedPublishers[key] = publisher
	return publisher
}
