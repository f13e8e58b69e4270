package calc

import (
	"fmt"
	"sort"
	"sync"
)

// BackendFactory creates and caches backends by name.
type BackendFactory interface {
	// Register adds a backend constructor under name.
	Register(name string, create func() Backend) error
	// Get returns the backend registered under name.
	Get(name string) (Backend, error)
	// List returns the registered names in sorted order.
	List() []string
	// GetAll returns every backend in the order of List.
	GetAll() []Backend
}

var (
	globalMu       sync.Mutex
	globalBackends = map[string]func() Backend{}
)

// RegisterBackend makes an optional backend available to every factory
// created afterwards. It is meant to be called from init functions of files
// guarded by build tags.
func RegisterBackend(name string, create func() Backend) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalBackends[name] = create
}

// DefaultFactory is the standard BackendFactory. Backends are created lazily
// and cached.
type DefaultFactory struct {
	mu       sync.RWMutex
	creators map[string]func() Backend
	cache    map[string]Backend
}

// NewFactory returns an empty factory.
func NewFactory() *DefaultFactory {
	return &DefaultFactory{
		creators: make(map[string]func() Backend),
		cache:    make(map[string]Backend),
	}
}

// NewDefaultFactory returns a factory holding the mpi and big backends plus
// any backend registered through RegisterBackend.
func NewDefaultFactory() *DefaultFactory {
	f := NewFactory()
	_ = f.Register("mpi", NewMPIBackend)
	_ = f.Register("big", NewBigBackend)
	globalMu.Lock()
	defer globalMu.Unlock()
	for name, create := range globalBackends {
		_ = f.Register(name, create)
	}
	return f
}

func (f *DefaultFactory) Register(name string, create func() Backend) error {
	if name == "" || name == "all" {
		return fmt.Errorf("invalid backend name %q", name)
	}
	if create == nil {
		return fmt.Errorf("nil constructor for backend %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creators[name] = create
	delete(f.cache, name)
	return nil
}

func (f *DefaultFactory) Get(name string) (Backend, error) {
	f.mu.RLock()
	if b, ok := f.cache[name]; ok {
		f.mu.RUnlock()
		return b, nil
	}
	create, ok := f.creators[name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %v)", name, f.List())
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.cache[name]; ok {
		return b, nil
	}
	b := create()
	f.cache[name] = b
	return b, nil
}

func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *DefaultFactory) GetAll() []Backend {
	names := f.List()
	out := make([]Backend, 0, len(names))
	for _, name := range names {
		if b, err := f.Get(name); err == nil {
			out = append(out, b)
		}
	}
	return out
}

// Select returns the backends named by sel: a single name or "all".
func Select(f BackendFactory, sel string) ([]Backend, error) {
	if sel == "all" {
		return f.GetAll(), nil
	}
	b, err := f.Get(sel)
	if err != nil {
		return nil, err
	}
	return []Backend{b}, nil
}
