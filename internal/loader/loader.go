// Package loader defines the boundary between the namespace layer and the
// runtimes that can execute modules. A runtime is plugged in as a Backend
// and hands out CallableRegistry handles; the namespace builder and the
// dispatcher only ever talk to those handles.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/specialistvlad/pybridge/internal/ctxlog"
	"github.com/specialistvlad/pybridge/internal/errs"
)

// Kind classifies a top-level module member.
type Kind int

const (
	// KindOther is any non-callable value, or a callable that is neither a
	// plain function nor a class.
	KindOther Kind = iota
	// KindFunction is a function-like callable.
	KindFunction
	// KindClass is a class (type) object.
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	default:
		return "other"
	}
}

// Member describes one top-level name bound in a loaded module.
type Member struct {
	Name string
	Kind Kind
	// Module is the name of the module that defined the member. It differs
	// from the loaded module's name for members that were imported.
	Module string
	Doc    string
}

// CallableRegistry is a live, loaded module.
type CallableRegistry interface {
	// Name is the module identifier the handle was loaded under.
	Name() string
	// Path is the absolute file the module was loaded from, if any.
	Path() string
	// Members lists the module's top-level names sorted by name.
	Members() []Member
	// Invoke calls the named member with positional arguments. A nil args
	// slice is a call without arguments. Errors raised by the callable are
	// returned unmodified.
	Invoke(ctx context.Context, name string, args []any) (any, error)
}

// Backend loads modules for one runtime. Load returns an *errs.NotFoundError
// when the backend does not know the module, letting the next backend try.
type Backend interface {
	Load(ctx context.Context, module, path string) (CallableRegistry, error)
	Close() error
}

// Context owns the modules loaded for one set of namespaces. It replaces
// process-wide module registration: independent Contexts never share
// handles.
type Context struct {
	mu       sync.Mutex
	backends []Backend
	handles  map[string]CallableRegistry
}

// NewContext creates a Context trying backends in order.
func NewContext(backends ...Backend) *Context {
	return &Context{
		backends: backends,
		handles:  make(map[string]CallableRegistry),
	}
}

// Load returns the handle for module, loading it on first use. path, when
// non-empty, pins the file to load from; the handle's resolved path must
// then match it. A second Load of the same identifier returns the cached
// handle without executing the module again.
func (c *Context) Load(ctx context.Context, module, path string) (CallableRegistry, error) {
	logger := ctxlog.FromContext(ctx).With("module", module)

	wantPath := ""
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, &errs.LoadError{Module: module, Path: path, Err: err}
		}
		wantPath = abs
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.handles[module]; ok {
		logger.Debug("Module already loaded, reusing handle.")
		if err := checkPath(module, wantPath, h); err != nil {
			return nil, err
		}
		return h, nil
	}

	var notFound error = &errs.NotFoundError{What: "module", Name: module}
	for _, b := range c.backends {
		h, err := b.Load(ctx, module, wantPath)
		if err != nil {
			var nf *errs.NotFoundError
			if errors.As(err, &nf) {
				notFound = err
				continue
			}
			return nil, err
		}
		if err := checkPath(module, wantPath, h); err != nil {
			return nil, err
		}
		logger.Debug("Module loaded.", "path", h.Path(), "backend", fmt.Sprintf("%T", b))
		c.handles[module] = h
		return h, nil
	}
	return nil, notFound
}

// Loaded returns the handle for an already loaded module.
func (c *Context) Loaded(module string) (CallableRegistry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handles[module]
	return h, ok
}

// Close releases every backend.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errList []error
	for _, b := range c.backends {
		if err := b.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	c.handles = make(map[string]CallableRegistry)
	return errors.Join(errList...)
}

func checkPath(module, want string, h CallableRegistry) error {
	if want == "" || h.Path() == want {
		return nil
	}
	return &errs.LoadError{
		Module: module,
		Path:   want,
		Err:    fmt.Errorf("loader resolved %q, expected %q", h.Path(), want),
	}
}
