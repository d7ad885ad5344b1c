package avsource

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Constructor builds a host-visible object from a host init dictionary.
type Constructor func(init map[string]any) (any, error)

// Bindings is the table of constructors a host can call by name. A program
// creates one at startup and registers everything it exposes; there is no
// package-level registry.
type Bindings struct {
	factory *TrackFactory
	opts    []Option

	mu    sync.RWMutex
	ctors map[string]Constructor
}

// Names of the constructors NewBindings registers.
const (
	BindingAudioVideoSource = "RTCAudioVideoSource"
	BindingMediaStream      = "MediaStream"
)

// NewBindings creates a table holding the RTCAudioVideoSource and MediaStream
// constructors. opts apply to every source it constructs.
func NewBindings(factory *TrackFactory, opts ...Option) *Bindings {
	b := &Bindings{
		factory: factory,
		opts:    opts,
		ctors:   make(map[string]Constructor),
	}
	b.ctors[BindingAudioVideoSource] = b.newAudioVideoSource
	b.ctors[BindingMediaStream] = b.newMediaStream
	return b
}

func (b *Bindings) newAudioVideoSource(dict map[string]any) (any, error) {
	init, err := ParseSourceInit(dict)
	if err != nil {
		return nil, err
	}
	return NewAudioVideoSource(init, b.factory, b.opts...)
}

func (b *Bindings) newMediaStream(dict map[string]any) (any, error) {
	if v, ok := dict["id"]; ok && v != nil {
		id, ok := v.(string)
		if !ok || id == "" {
			return nil, &ArgumentShapeError{Field: "id", Expected: "non-empty string", Got: v}
		}
		s := NewMediaStream(id)
		s.factory = b.factory
		return s, nil
	}
	return b.factory.CreateMediaStream()
}

// Register adds a constructor. Names are registered once.
func (b *Bindings) Register(name string, ctor Constructor) error {
	if name == "" || ctor == nil {
		return errors.New("binding needs a name and a constructor")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.ctors[name]; ok {
		return fmt.Errorf("binding %q already registered", name)
	}
	b.ctors[name] = ctor
	return nil
}

// Construct calls the constructor registered under name. Every failure is
// returned as *ConstructionError.
func (b *Bindings) Construct(name string, init map[string]any) (any, error) {
	b.mu.RLock()
	ctor, ok := b.ctors[name]
	b.mu.RUnlock()
	if !ok {
		return nil, &ConstructionError{Name: name, Err: errors.New("no such constructor")}
	}
	v, err := ctor(init)
	if err != nil {
		var ce *ConstructionError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &ConstructionError{Name: name, Err: err}
	}
	return v, nil
}

// Names returns the registered names in sorted order.
func (b *Bindings) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.ctors))
	for n := range b.ctors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
