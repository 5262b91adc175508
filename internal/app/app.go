package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/pybridge/internal/config"
	"github.com/specialistvlad/pybridge/internal/ctxlog"
	"github.com/specialistvlad/pybridge/internal/loader"
	"github.com/specialistvlad/pybridge/internal/namespace"
	"github.com/specialistvlad/pybridge/internal/pyruntime"
	"github.com/specialistvlad/pybridge/internal/registry"
	"github.com/specialistvlad/pybridge/internal/serialize"
	"github.com/specialistvlad/pybridge/internal/signature"
)

// Version is the release the binary was built from.
var Version = "dev"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	format     serialize.Format
	model      *config.Model
	natives    *registry.Registry
	loader     *loader.Context
	extractor  *signature.Extractor
	builder    *namespace.Builder
	httpServer *http.Server
	closers    []io.Closer
}

// NewApp is the constructor for the main application. Results are written
// to outW and logs to logW. cfgLoader reads the bridge files named by
// appConfig.SpecPaths. modules replace the built-in native modules when
// given.
func NewApp(outW, logW io.Writer, appConfig *Config, cfgLoader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	format, err := serialize.ParseFormat(appConfig.Output)
	if err != nil {
		return nil, err
	}

	model := &config.Model{}
	if len(appConfig.SpecPaths) > 0 {
		if cfgLoader == nil {
			return nil, errors.New("bridge files given but no configuration loader")
		}
		model, err = cfgLoader.Load(ctx, appConfig.SpecPaths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		logger.Debug("Configuration loaded and translated into unified model.",
			"exports", len(model.Exports), "calls", len(model.Calls))
	}

	if len(modules) == 0 {
		modules = coreModules
	}
	natives := registry.New(modules...)
	logger.Debug("All native modules registered.", "count", len(modules))

	// A native function the binder cannot drive is a programmer error.
	if err := natives.ValidateRegistry(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	searchPaths := append(append([]string(nil), appConfig.SearchPaths...), model.SearchPaths...)
	runtime := pyruntime.New(pyruntime.WithSearchPaths(searchPaths...))
	logger.Debug("Python runtime initialized.", "search_paths", searchPaths)

	filter := signature.IsPublic
	if appConfig.All {
		filter = signature.AcceptAll
	}
	extractor := signature.NewExtractor()
	lc := loader.NewContext(natives, runtime)

	return &App{
		outW:      outW,
		logger:    logger,
		config:    appConfig,
		format:    format,
		model:     model,
		natives:   natives,
		loader:    lc,
		extractor: extractor,
		builder:   namespace.NewBuilder(lc, namespace.WithNameFilter(filter), namespace.WithExtractor(extractor)),
	}, nil
}

// Registry returns the application's native module registry. This is
// primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.natives
}

// Close releases the loaded modules and any opened cache.
func (a *App) Close() error {
	var errList []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errList = append(errList, err)
		}
	}
	a.closers = nil
	if err := a.loader.Close(); err != nil {
		errList = append(errList, err)
	}
	return errors.Join(errList...)
}

func (a *App) write(v any) error {
	return serialize.Write(a.outW, a.format, v)
}
