package namespace

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/pybridge/internal/ctxlog"
	"github.com/specialistvlad/pybridge/internal/errs"
	"github.com/specialistvlad/pybridge/internal/loader"
	"github.com/specialistvlad/pybridge/internal/namecase"
	"github.com/specialistvlad/pybridge/internal/signature"
)

// Builder turns export specs into namespaces.
type Builder struct {
	loader    *loader.Context
	filter    signature.NameFilter
	extractor *signature.Extractor
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithNameFilter replaces the default filter, signature.IsPublic.
func WithNameFilter(f signature.NameFilter) BuilderOption {
	return func(b *Builder) { b.filter = f }
}

// WithExtractor sets the extractor used for static namespaces.
func WithExtractor(e *signature.Extractor) BuilderOption {
	return func(b *Builder) { b.extractor = e }
}

// NewBuilder creates a Builder loading live modules through lc. lc may be
// nil when only static namespaces are built.
func NewBuilder(lc *loader.Context, opts ...BuilderOption) *Builder {
	b := &Builder{
		loader:    lc,
		filter:    signature.IsPublic,
		extractor: signature.NewExtractor(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build constructs the namespace described by spec. A live namespace whose
// module fails to load yields (nil, nil) when spec.FailOnError is false.
// Errors of a static build are always returned.
func (b *Builder) Build(ctx context.Context, spec ExportSpec) (*Namespace, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx).With("namespace", spec.NamespaceName(), "module", spec.Module)
	ctx = ctxlog.WithLogger(ctx, logger)

	if spec.Static() {
		return b.buildStatic(ctx, spec)
	}

	ns, err := b.buildLive(ctx, spec)
	if err != nil {
		if spec.FailOnError {
			return nil, err
		}
		logger.Error("Failed to load module, namespace skipped.", "error", err)
		return nil, nil
	}
	return ns, nil
}

func (b *Builder) buildStatic(ctx context.Context, spec ExportSpec) (*Namespace, error) {
	sigs, err := b.extractor.ExtractFile(ctx, spec.SourceFile, b.filter)
	if err != nil {
		return nil, err
	}

	ns := &Namespace{
		name:   spec.NamespaceName(),
		module: spec.Module,
		static: sigs.Functions,
	}
	for _, fn := range sigs.Functions {
		e := Entry{Name: namecase.ToExportCase(fn.Name)}
		if spec.ExportDocs && fn.Docstring != "" {
			e.Meta = DocMeta(fn.Docstring)
		}
		ns.entries = append(ns.entries, e)
	}
	ctxlog.FromContext(ctx).Debug("Built static namespace.", "path", spec.SourceFile, "entries", len(ns.entries))
	return ns, nil
}

func (b *Builder) buildLive(ctx context.Context, spec ExportSpec) (*Namespace, error) {
	logger := ctxlog.FromContext(ctx)
	if b.loader == nil {
		return nil, &errs.LoadError{Module: spec.Module, Path: spec.SourceFile, Err: errors.New("no module loader configured")}
	}

	h, err := b.loader.Load(ctx, spec.Module, spec.SourceFile)
	if err != nil {
		var le *errs.LoadError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, &errs.LoadError{Module: spec.Module, Path: spec.SourceFile, Err: err}
	}

	ns := &Namespace{
		name:   spec.NamespaceName(),
		module: spec.Module,
		live:   h,
	}
	for _, m := range h.Members() {
		own := m.Module == h.Name()
		if m.Kind != loader.KindFunction || !b.filter(m.Name) || !(spec.IncludeImported || own) {
			if own && m.Kind != loader.KindOther {
				logger.Debug("Module member not exported.", "member", m.Name, "kind", m.Kind.String())
			}
			continue
		}
		e := Entry{Name: namecase.ToExportCase(m.Name)}
		if spec.ExportDocs && m.Doc != "" {
			e.Meta = DocMeta(m.Doc)
		}
		ns.entries = append(ns.entries, e)
	}
	logger.Debug("Built live namespace.", "path", h.Path(), "entries", len(ns.entries))
	return ns, nil
}

// BuildRegistry builds every spec in order. Namespaces skipped under
// FailOnError=false are left out; two specs resolving to the same namespace
// name are an error.
func (b *Builder) BuildRegistry(ctx context.Context, specs []ExportSpec) (*Registry, error) {
	reg := newRegistry()
	for _, spec := range specs {
		ns, err := b.Build(ctx, spec)
		if err != nil {
			return nil, err
		}
		if ns == nil {
			continue
		}
		if err := reg.add(ns); err != nil {
			return nil, fmt.Errorf("module %s: %w", spec.Module, err)
		}
	}
	return reg, nil
}
