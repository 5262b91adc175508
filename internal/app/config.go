package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/pybridge/internal/config"
	"github.com/specialistvlad/pybridge/internal/dispatch"
	"github.com/specialistvlad/pybridge/internal/namespace"
	"github.com/specialistvlad/pybridge/internal/serialize"
)

// Command names one operation of the application.
type Command string

const (
	CmdSignatures Command = "signatures"
	CmdNamespace  Command = "namespace"
	CmdCall       Command = "call"
	CmdRun        Command = "run"
	CmdBridge     Command = "bridge"
	CmdVersion    Command = "version"
)

// Commands lists every command in help order.
var Commands = []Command{CmdSignatures, CmdNamespace, CmdCall, CmdRun, CmdBridge, CmdVersion}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command Command
	// Target is the file or directory for signatures, the module for
	// namespace and the reference for call.
	Target  string
	// Args are JSON literals passed positionally by call.
	Args    []string

	SpecPaths   []string // bridge files or directories
	SearchPaths []string

	SourceFile    string
	NamespaceName string
	Mode          string
	All           bool
	Output        string

	// Cache overrides the bridge file's cache block when Backend is set.
	Cache config.Cache

	URL             string
	SocketNamespace string
	Insecure        bool
	HealthcheckPort int

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if _, err := serialize.ParseFormat(cfg.Output); err != nil {
		return nil, err
	}
	if _, err := namespace.ParseMode(cfg.Mode); err != nil {
		return nil, err
	}

	switch cfg.Command {
	case CmdSignatures:
		if cfg.Target == "" {
			return nil, errors.New("signatures: a file or directory is required")
		}
	case CmdNamespace:
		if cfg.Target == "" {
			return nil, errors.New("namespace: a module name is required")
		}
	case CmdCall:
		if cfg.Target == "" {
			return nil, errors.New("call: a reference is required")
		}
		if _, err := dispatch.ParseRef(cfg.Target); err != nil {
			return nil, err
		}
	case CmdRun:
		if len(cfg.SpecPaths) == 0 {
			return nil, errors.New("run: at least one bridge file is required")
		}
	case CmdBridge:
		if len(cfg.SpecPaths) == 0 {
			return nil, errors.New("bridge: at least one bridge file is required")
		}
		if cfg.URL == "" {
			return nil, errors.New("bridge: a host URL is required")
		}
	case CmdVersion:
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}
	return &cfg, nil
}
