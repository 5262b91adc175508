package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/pybridge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, a ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, a...)}
}

const usageText = `
pybridge - expose Python modules as callable namespaces.

Usage:
  pybridge <command> [options] [arguments]

Commands:
  signatures PATH            Print the signatures declared in a Python file or directory.
  namespace MODULE           Load MODULE and print its export record.
  call NS/FN [JSON_ARG...]   Call one exported function with JSON-literal arguments.
  run BRIDGE_FILE...         Execute the call blocks of bridge files in order.
  bridge BRIDGE_FILE...      Serve the exported namespaces to a host over socket.io.
  version                    Print the version.

Options must precede arguments. Run "pybridge <command> -h" for the options
of a command.
`

// Parse processes command-line arguments. env supplies the defaults that
// flags override. It returns a populated Config, a boolean indicating if the
// program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer, env app.Env) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	if len(args) == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		fmt.Fprint(output, usageText)
		return nil, true, nil
	}
	switch args[0] {
	case "-h", "-help", "--help", "help":
		fmt.Fprint(output, usageText)
		return nil, true, nil
	}

	cmd := app.Command(args[0])
	if !known(cmd) {
		return nil, false, usageError("unknown command %q; run \"pybridge help\" for the list of commands", args[0])
	}

	flagSet := flag.NewFlagSet("pybridge "+string(cmd), flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprintf(output, "\nUsage:\n  pybridge %s [options] [arguments]\n\nOptions:\n", cmd)
		flagSet.PrintDefaults()
	}

	searchPaths := stringList(append([]string(nil), env.SearchPaths...))
	var specPaths stringList
	var format string

	logFormatFlag := flagSet.String("log-format", env.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", env.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.StringVar(&format, "output", "json", "Result format. Options: 'json' or 'yaml'.")
	flagSet.StringVar(&format, "o", "json", "Result format (shorthand).")
	flagSet.Var(&searchPaths, "path", "Directory searched for Python modules. Repeatable; accepts a path list.")
	flagSet.Var(&specPaths, "spec", "Bridge file or directory of bridge files. Repeatable.")
	allFlag := flagSet.Bool("all", false, "Include private names (leading underscore).")
	fileFlag := flagSet.String("file", "", "Source file of the module (namespace command).")
	nameFlag := flagSet.String("name", "", "Namespace name; defaults to the module name in exported case.")
	modeFlag := flagSet.String("mode", "auto", "Namespace mode. Options: 'auto', 'live' or 'static'.")
	cacheFlag := flagSet.String("cache", env.Cache.Backend, "Result cache backend. Options: 'none', 'memory', 'sqlite', 'postgres' or 's3'.")
	urlFlag := flagSet.String("url", env.URL, "Host URL for the bridge command.")
	socketNSFlag := flagSet.String("socket-namespace", "/", "socket.io namespace for the bridge command.")
	insecureFlag := flagSet.Bool("insecure", false, "Skip TLS certificate verification of the host.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server of the bridge command. 0 is disabled.")

	if err := flagSet.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}
	slog.Debug("Arguments parsed successfully.", "command", cmd)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	cfg := app.Config{
		Command:         cmd,
		SearchPaths:     searchPaths,
		SpecPaths:       specPaths,
		SourceFile:      *fileFlag,
		NamespaceName:   *nameFlag,
		Mode:            *modeFlag,
		All:             *allFlag,
		Output:          strings.ToLower(format),
		Cache:           env.Cache,
		URL:             *urlFlag,
		SocketNamespace: *socketNSFlag,
		Insecure:        *insecureFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	}
	cfg.Cache.Backend = *cacheFlag

	positional := flagSet.Args()
	switch cmd {
	case app.CmdSignatures, app.CmdNamespace:
		if len(positional) > 1 {
			return nil, false, usageError("%s: expected one argument, got %d", cmd, len(positional))
		}
		if len(positional) == 1 {
			cfg.Target = positional[0]
		}
	case app.CmdCall:
		if len(positional) > 0 {
			cfg.Target = positional[0]
			cfg.Args = positional[1:]
		}
	case app.CmdRun, app.CmdBridge:
		cfg.SpecPaths = append(cfg.SpecPaths, positional...)
	case app.CmdVersion:
		if len(positional) > 0 {
			return nil, false, usageError("version: unexpected arguments %v", positional)
		}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "command", config.Command)
	return config, false, nil
}

func known(cmd app.Command) bool {
	for _, c := range app.Commands {
		if c == cmd {
			return true
		}
	}
	return false
}
