package app

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/pybridge/internal/bridge"
	"github.com/specialistvlad/pybridge/internal/config"
	"github.com/specialistvlad/pybridge/internal/ctxlog"
	"github.com/specialistvlad/pybridge/internal/dispatch"
	"github.com/specialistvlad/pybridge/internal/fsutil"
	"github.com/specialistvlad/pybridge/internal/namecase"
	"github.com/specialistvlad/pybridge/internal/namespace"
	"github.com/specialistvlad/pybridge/internal/serialize"
	"github.com/specialistvlad/pybridge/internal/signature"
)

// CallResult is the outcome of one call block.
type CallResult struct {
	Ref   string `json:"ref" yaml:"ref"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	var err error
	switch a.config.Command {
	case CmdSignatures:
		err = a.runSignatures(ctx)
	case CmdNamespace:
		err = a.runNamespace(ctx)
	case CmdCall:
		err = a.runCall(ctx)
	case CmdRun:
		err = a.runCalls(ctx)
	case CmdBridge:
		err = a.runBridge(ctx)
	case CmdVersion:
		_, err = fmt.Fprintln(a.outW, "pybridge", Version)
	default:
		err = fmt.Errorf("unknown command %q", a.config.Command)
	}

	a.logger.Debug("App.Run method finished.")
	return err
}

func (a *App) filter() signature.NameFilter {
	if a.config.All {
		return signature.AcceptAll
	}
	return signature.IsPublic
}

// runSignatures prints the signatures of one file, or of every Python file
// under a directory.
func (a *App) runSignatures(ctx context.Context) error {
	info, err := os.Stat(a.config.Target)
	if err != nil {
		return fmt.Errorf("error accessing path %s: %w", a.config.Target, err)
	}
	if !info.IsDir() {
		sigs, err := a.extractor.ExtractFile(ctx, a.config.Target, a.filter())
		if err != nil {
			return err
		}
		return a.write(sigs)
	}

	files, err := fsutil.FindPythonFiles(a.config.Target)
	if err != nil {
		return err
	}
	a.logger.Debug("Found Python files.", "count", len(files), "root", a.config.Target)
	all := make([]*signature.FileSignatures, 0, len(files))
	for _, f := range files {
		sigs, err := a.extractor.ExtractFile(ctx, f, a.filter())
		if err != nil {
			return err
		}
		all = append(all, sigs)
	}
	return a.write(all)
}

// runNamespace prints the export record of one module.
func (a *App) runNamespace(ctx context.Context) error {
	mode, err := namespace.ParseMode(a.config.Mode)
	if err != nil {
		return err
	}
	spec := namespace.NewExportSpec(a.config.Target,
		namespace.WithSourceFile(a.config.SourceFile),
		namespace.WithName(a.config.NamespaceName),
		namespace.WithMode(mode),
	)
	ns, err := a.builder.Build(ctx, spec)
	if err != nil {
		return err
	}
	return a.write(ns.Export())
}

// runCall dispatches one reference. When no bridge file exports its
// namespace, the module named by the namespace is loaded live.
func (a *App) runCall(ctx context.Context) error {
	ref, err := dispatch.ParseRef(a.config.Target)
	if err != nil {
		return err
	}
	args, err := serialize.DecodeJSONArgs(a.config.Args)
	if err != nil {
		return err
	}

	specs, err := a.exportSpecs()
	if err != nil {
		return err
	}
	if !exports(specs, ref.Namespace) {
		specs = append(specs, namespace.NewExportSpec(namecase.ToDeclaredCase(ref.Namespace),
			namespace.WithName(ref.Namespace), namespace.WithMode(namespace.ModeLive)))
	}

	d, err := a.dispatcher(ctx, specs)
	if err != nil {
		return err
	}
	result, err := d.Dispatch(ctx, a.config.Target, args)
	if err != nil {
		return err
	}
	return a.write(result)
}

// runCalls executes the call blocks of the bridge files in order. Failed
// calls are reported in the output and make the command fail once every
// call has run.
func (a *App) runCalls(ctx context.Context) error {
	specs, err := a.exportSpecs()
	if err != nil {
		return err
	}
	d, err := a.dispatcher(ctx, specs)
	if err != nil {
		return err
	}

	results := make([]CallResult, 0, len(a.model.Calls))
	failed := 0
	for _, call := range a.model.Calls {
		value, err := d.Dispatch(ctx, call.Ref, call.Args)
		if err != nil {
			a.logger.Error("Call failed.", "ref", call.Ref, "error", err)
			results = append(results, CallResult{Ref: call.Ref, Error: err.Error()})
			failed++
			continue
		}
		results = append(results, CallResult{Ref: call.Ref, Value: value})
	}
	if err := a.write(results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d calls failed", failed, len(results))
	}
	return nil
}

// runBridge serves the configured namespaces to a host until ctx is done.
func (a *App) runBridge(ctx context.Context) error {
	specs, err := a.exportSpecs()
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("bridge: no export blocks configured")
	}
	reg, err := a.builder.BuildRegistry(ctx, specs)
	if err != nil {
		return err
	}
	d, err := a.newDispatcher(ctx, reg)
	if err != nil {
		return err
	}

	if a.config.HealthcheckPort > 0 {
		a.healthCheckServer(ctx, reg)
		defer a.closeHealthCheckServer(ctx)
	}

	a.logger.Info("Starting bridge.", "url", a.config.URL, "namespaces", reg.Names())
	return bridge.Serve(ctx, bridge.Config{
		URL:                a.config.URL,
		Namespace:          a.config.SocketNamespace,
		InsecureSkipVerify: a.config.Insecure,
	}, bridge.NewHandler(reg, d))
}

// dispatcher builds the registry for specs and a dispatcher over it.
func (a *App) dispatcher(ctx context.Context, specs []namespace.ExportSpec) (*dispatch.Dispatcher, error) {
	reg, err := a.builder.BuildRegistry(ctx, specs)
	if err != nil {
		return nil, err
	}
	return a.newDispatcher(ctx, reg)
}

func (a *App) newDispatcher(ctx context.Context, reg *namespace.Registry) (*dispatch.Dispatcher, error) {
	var opts []dispatch.Option
	c, err := openCache(ctx, a.cacheConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open result cache: %w", err)
	}
	if c != nil {
		a.closers = append(a.closers, c)
		opts = append(opts, dispatch.WithResultCache(c))
		a.logger.Debug("Result cache enabled.", "backend", a.cacheConfig().Backend)
	}
	return dispatch.New(reg, opts...)
}

// exportSpecs converts the bridge files' export blocks.
func (a *App) exportSpecs() ([]namespace.ExportSpec, error) {
	specs := make([]namespace.ExportSpec, 0, len(a.model.Exports))
	for _, e := range a.model.Exports {
		spec, err := exportSpec(e)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func exportSpec(e *config.Export) (namespace.ExportSpec, error) {
	mode, err := namespace.ParseMode(e.Mode)
	if err != nil {
		return namespace.ExportSpec{}, fmt.Errorf("export %q: %w", e.Module, err)
	}
	opts := []namespace.SpecOption{
		namespace.WithSourceFile(e.SourceFile),
		namespace.WithName(e.Namespace),
		namespace.WithMode(mode),
	}
	if e.ExportDocs != nil {
		opts = append(opts, namespace.WithExportDocs(*e.ExportDocs))
	}
	if e.IncludeImported != nil {
		opts = append(opts, namespace.WithIncludeImported(*e.IncludeImported))
	}
	if e.FailOnError != nil {
		opts = append(opts, namespace.WithFailOnError(*e.FailOnError))
	}
	return namespace.NewExportSpec(e.Module, opts...), nil
}

func exports(specs []namespace.ExportSpec, name string) bool {
	for _, s := range specs {
		if s.NamespaceName() == name {
			return true
		}
	}
	return false
}
