package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/pybridge/internal/errs"
	"github.com/specialistvlad/pybridge/internal/loader"
)

// Module is the interface that all native modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// RegisteredFunc holds one compiled Go function exposed by a native module.
type RegisteredFunc struct {
	// Fn is the Go function. An optional leading context.Context parameter
	// receives the caller's context; a trailing error result is returned as
	// the call's error.
	Fn  any
	Doc string
	// Origin names the module that defines the function when it is only
	// re-exported by the registering module. Empty means the registering
	// module defines it.
	Origin string
}

// Registry holds all native modules for a single application instance.
type Registry struct {
	modules map[string]*NativeModule
}

// New creates an empty Registry and registers the given modules into it.
func New(mods ...Module) *Registry {
	r := &Registry{modules: make(map[string]*NativeModule)}
	for _, m := range mods {
		m.Register(r)
	}
	return r
}

// RegisterFunc adds fn to module under name, creating the module on first
// use. Registering the same name twice is a programming error and panics.
func (r *Registry) RegisterFunc(module, name string, fn *RegisteredFunc) {
	mod, ok := r.modules[module]
	if !ok {
		mod = &NativeModule{name: module, funcs: make(map[string]*RegisteredFunc)}
		r.modules[module] = mod
	}
	if _, exists := mod.funcs[name]; exists {
		panic(fmt.Sprintf("function '%s' already registered in module '%s'", name, module))
	}
	slog.Debug("Registering native function.", "module", module, "name", name)
	mod.funcs[name] = fn
}

// Modules returns the registered module identifiers, sorted.
func (r *Registry) Modules() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load implements loader.Backend. Native modules have no source file, so a
// request pinned to a path is never served here.
func (r *Registry) Load(_ context.Context, module, path string) (loader.CallableRegistry, error) {
	mod, ok := r.modules[module]
	if !ok || path != "" {
		return nil, &errs.NotFoundError{What: "module", Name: module}
	}
	return mod, nil
}

// Close implements loader.Backend.
func (r *Registry) Close() error { return nil }

// NativeModule is a loaded native module.
type NativeModule struct {
	name  string
	funcs map[string]*RegisteredFunc
}

func (m *NativeModule) Name() string { return m.name }

func (m *NativeModule) Path() string { return "" }

func (m *NativeModule) Members() []loader.Member {
	members := make([]loader.Member, 0, len(m.funcs))
	for name, fn := range m.funcs {
		origin := fn.Origin
		if origin == "" {
			origin = m.name
		}
		members = append(members, loader.Member{
			Name:   name,
			Kind:   loader.KindFunction,
			Module: origin,
			Doc:    fn.Doc,
		})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members
}

func (m *NativeModule) Invoke(ctx context.Context, name string, args []any) (any, error) {
	fn, ok := m.funcs[name]
	if !ok {
		return nil, &errs.ResolutionError{Ref: m.name + "/" + name, Reason: "no such function"}
	}
	return call(ctx, name, fn.Fn, args)
}
