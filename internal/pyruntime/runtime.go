// Package pyruntime is the loader backend that executes Python modules in an
// embedded gpython interpreter.
//
// Modules are located over a list of search paths the way Python's import
// system does it for plain source files: the identifier "a.b" resolves to
// a/b.py, then a/b/__init__.py. A module's top-level code runs once, under
// its identifier; afterwards the module globals are exposed as members and
// callables among them can be invoked with plain Go values.
package pyruntime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-python/gpython/py"
	_ "github.com/go-python/gpython/stdlib" // registers the interpreter and its builtin modules

	"github.com/specialistvlad/pybridge/internal/ctxlog"
	"github.com/specialistvlad/pybridge/internal/errs"
	"github.com/specialistvlad/pybridge/internal/loader"
)

// Runtime owns one interpreter context. The interpreter is not safe for
// concurrent use, so every load and call is serialized.
type Runtime struct {
	mu          sync.Mutex
	searchPaths []string
	pctx        py.Context
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithSearchPaths sets the directories module identifiers are resolved in,
// in priority order.
func WithSearchPaths(paths ...string) Option {
	return func(r *Runtime) {
		r.searchPaths = append(r.searchPaths, paths...)
	}
}

// New creates a Runtime with a fresh interpreter context.
func New(opts ...Option) *Runtime {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	for i, p := range r.searchPaths {
		if abs, err := filepath.Abs(p); err == nil {
			r.searchPaths[i] = abs
		}
	}

	ctxOpts := py.DefaultContextOpts()
	ctxOpts.SysPaths = append(append([]string{}, r.searchPaths...), ctxOpts.SysPaths...)
	r.pctx = py.NewContext(ctxOpts)
	return r
}

// Resolve returns the source file for module. path, when non-empty, is used
// as is and must name an existing file.
func (r *Runtime) Resolve(module, path string) (string, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return "", &errs.NotFoundError{What: "file", Name: path, Err: err}
		}
		if info.IsDir() {
			return "", &errs.NotFoundError{What: "file", Name: path, Err: fmt.Errorf("%s is a directory", path)}
		}
		return filepath.Abs(path)
	}

	rel := filepath.FromSlash(strings.ReplaceAll(module, ".", "/"))
	for _, dir := range r.searchPaths {
		for _, candidate := range []string{
			filepath.Join(dir, rel+".py"),
			filepath.Join(dir, rel, "__init__.py"),
		} {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", &errs.NotFoundError{What: "module", Name: module}
}

// Load implements loader.Backend.
func (r *Runtime) Load(ctx context.Context, module, path string) (loader.CallableRegistry, error) {
	file, err := r.Resolve(module, path)
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx).With("module", module, "path", file)

	r.mu.Lock()
	defer r.mu.Unlock()

	src, err := os.ReadFile(file)
	if err != nil {
		return nil, &errs.LoadError{Module: module, Path: file, Err: err}
	}
	logger.Debug("Executing Python module.")
	code, err := py.Compile(string(src), file, py.ExecMode, 0, true)
	if err != nil {
		return nil, &errs.LoadError{Module: module, Path: file, Err: err}
	}
	mod, err := py.RunCode(r.pctx, code, file, module)
	if err != nil {
		return nil, &errs.LoadError{Module: module, Path: file, Err: err}
	}
	return &Module{rt: r, name: module, path: file, mod: mod}, nil
}

// Close releases the interpreter context.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pctx != nil {
		r.pctx.Close()
		r.pctx = nil
	}
	return nil
}

// Module is a Python module executed by a Runtime.
type Module struct {
	rt   *Runtime
	name string
	path string
	mod  *py.Module
}

func (m *Module) Name() string { return m.name }

func (m *Module) Path() string { return m.path }

// Members lists the module globals sorted by name.
func (m *Module) Members() []loader.Member {
	m.rt.mu.Lock()
	defer m.rt.mu.Unlock()

	members := make([]loader.Member, 0, len(m.mod.Globals))
	for name, obj := range m.mod.Globals {
		members = append(members, describe(name, obj))
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members
}

// Invoke calls the named global with positional arguments. Python
// exceptions are returned as the call's error.
func (m *Module) Invoke(ctx context.Context, name string, args []any) (any, error) {
	m.rt.mu.Lock()
	defer m.rt.mu.Unlock()

	obj, ok := m.mod.Globals[name]
	if !ok {
		return nil, &errs.ResolutionError{Ref: m.name + "/" + name, Reason: "no such global"}
	}

	pyArgs := make(py.Tuple, 0, len(args))
	for i, arg := range args {
		v, err := toPython(arg)
		if err != nil {
			return nil, fmt.Errorf("%s(): argument %d: %w", name, i+1, err)
		}
		pyArgs = append(pyArgs, v)
	}

	ctxlog.FromContext(ctx).Debug("Calling Python function.", "module", m.name, "function", name, "args", len(pyArgs))
	res, err := py.Call(obj, pyArgs, nil)
	if err != nil {
		return nil, err
	}
	return fromPython(res)
}

func describe(name string, obj py.Object) loader.Member {
	member := loader.Member{Name: name}
	switch v := obj.(type) {
	case *py.Function:
		member.Kind = loader.KindFunction
		// Functions share the globals of the module that defined them.
		member.Module = stringOf(v.Globals["__name__"])
		member.Doc = stringOf(v.Doc)
		return member
	case *py.Method:
		member.Kind = loader.KindFunction
	case *py.Type:
		member.Kind = loader.KindClass
	default:
		return member
	}
	if mod, err := py.GetAttrString(obj, "__module__"); err == nil {
		member.Module = stringOf(mod)
	}
	if doc, err := py.GetAttrString(obj, "__doc__"); err == nil {
		member.Doc = stringOf(doc)
	}
	return member
}

func stringOf(obj py.Object) string {
	if s, ok := obj.(py.String); ok {
		return string(s)
	}
	return ""
}
