// Package dispatch resolves "namespace/function" references against a
// namespace registry and invokes the live callable behind them.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/specialistvlad/pybridge/internal/cache"
	"github.com/specialistvlad/pybridge/internal/ctxlog"
	"github.com/specialistvlad/pybridge/internal/errs"
	"github.com/specialistvlad/pybridge/internal/namecase"
	"github.com/specialistvlad/pybridge/internal/namespace"
	"github.com/specialistvlad/pybridge/internal/serialize"
)

// DefaultRefCacheSize bounds the memo of parsed references.
const DefaultRefCacheSize = 4096

// Ref is a parsed reference.
type Ref struct {
	Namespace string
	// Function is the declared (snake_case) name of the target.
	Function string
}

func (r Ref) String() string {
	return r.Namespace + "/" + namecase.ToExportCase(r.Function)
}

// ParseRef splits raw on its first "/" and converts the function part to
// its declared form.
func ParseRef(raw string) (Ref, error) {
	ns, fn, ok := strings.Cut(raw, "/")
	if !ok {
		return Ref{}, &errs.ResolutionError{Ref: raw, Reason: `reference must have the form "namespace/function"`}
	}
	if ns == "" || fn == "" {
		return Ref{}, &errs.ResolutionError{Ref: raw, Reason: "namespace and function must be non-empty"}
	}
	return Ref{Namespace: ns, Function: namecase.ToDeclaredCase(fn)}, nil
}

// Dispatcher routes references to live namespaces. It is safe for
// concurrent use.
type Dispatcher struct {
	registry *namespace.Registry
	refs     *lru.Cache[string, Ref]
	results  cache.Cache
}

// Option configures a Dispatcher.
type Option func(*config)

type config struct {
	refCacheSize int
	results      cache.Cache
}

// WithRefCacheSize sets how many parsed references are memoized.
func WithRefCacheSize(n int) Option {
	return func(c *config) { c.refCacheSize = n }
}

// WithResultCache memoizes call results in c, keyed by cache.Key.
func WithResultCache(c cache.Cache) Option {
	return func(cfg *config) { cfg.results = c }
}

// New creates a Dispatcher over reg.
func New(reg *namespace.Registry, opts ...Option) (*Dispatcher, error) {
	cfg := config{refCacheSize: DefaultRefCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	refs, err := lru.New[string, Ref](cfg.refCacheSize)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{registry: reg, refs: refs, results: cfg.results}, nil
}

// Resolve parses raw, memoizing the result.
func (d *Dispatcher) Resolve(raw string) (Ref, error) {
	if ref, ok := d.refs.Get(raw); ok {
		return ref, nil
	}
	ref, err := ParseRef(raw)
	if err != nil {
		return Ref{}, err
	}
	d.refs.Add(raw, ref)
	return ref, nil
}

// Dispatch invokes the function named by raw with args. A nil args slice is
// a call without arguments. Errors raised by the target are returned as is.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string, args []any) (any, error) {
	ref, err := d.Resolve(raw)
	if err != nil {
		return nil, err
	}
	ns, ok := d.registry.Get(ref.Namespace)
	if !ok {
		return nil, &errs.ResolutionError{Ref: raw, Reason: "unknown namespace " + ref.Namespace}
	}
	h, live := ns.Live()
	if !live {
		return nil, &errs.DispatchUnavailableError{Namespace: ns.Name()}
	}
	if _, exported := ns.Get(namecase.ToExportCase(ref.Function)); !exported {
		return nil, &errs.ResolutionError{Ref: raw, Reason: "no exported function " + ref.Function + " in namespace " + ns.Name()}
	}
	if len(args) == 0 {
		args = nil
	}

	logger := ctxlog.FromContext(ctx).With("ref", raw)
	key := d.resultKey(ctx, ref, args)
	if key != "" {
		if v, ok := d.cached(ctx, key); ok {
			logger.Debug("Dispatch result served from cache.")
			return v, nil
		}
	}

	logger.Debug("Dispatching call.", "args", len(args))
	result, err := h.Invoke(ctx, ref.Function, args)
	if err != nil {
		return nil, err
	}
	if key != "" {
		d.store(ctx, key, result)
	}
	return result, nil
}

func (d *Dispatcher) resultKey(ctx context.Context, ref Ref, args []any) string {
	if d.results == nil {
		return ""
	}
	key, err := cache.Key(ref.String(), args)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Cannot derive cache key, result cache bypassed.", "error", err)
		return ""
	}
	return key
}

func (d *Dispatcher) cached(ctx context.Context, key string) (any, bool) {
	raw, ok, err := d.results.Get(ctx, key)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Result cache lookup failed.", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	v, err := serialize.DecodeJSON([]byte(raw))
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Discarding undecodable cache entry.", "error", err)
		return nil, false
	}
	return v, true
}

func (d *Dispatcher) store(ctx context.Context, key string, result any) {
	data, err := json.Marshal(result)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Result is not JSON-encodable, not cached.", "error", err)
		return
	}
	if back, err := serialize.DecodeJSON(data); err != nil || !reflect.DeepEqual(back, result) {
		ctxlog.FromContext(ctx).Debug("Result does not survive a JSON round trip, not cached.", "type", fmt.Sprintf("%T", result))
		return
	}
	if err := d.results.Set(ctx, key, string(data)); err != nil {
		ctxlog.FromContext(ctx).Warn("Result cache store failed.", "error", err)
	}
}
