// Package logging exposes the bridge's structured logger as the
// pybridge.log native module, so calls can leave records in the same log
// stream as the bridge itself.
package logging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/pybridge/internal/ctxlog"
	"github.com/specialistvlad/pybridge/internal/registry"
)

// ModuleName is the identifier the module is registered under.
const ModuleName = "pybridge.log"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Log writes message at level with fields given as alternating keys and
// values. A trailing key without a value is logged under "!BADKEY", the way
// slog does.
func Log(ctx context.Context, level slog.Level, message string, fields ...any) {
	ctxlog.FromContext(ctx).Log(ctx, level, message, attrs(fields)...)
}

// attrs stringifies keys so a number or null in key position cannot make
// the record unreadable.
func attrs(fields []any) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		if i%2 == 0 {
			if _, ok := f.(string); !ok {
				f = fmt.Sprint(f)
			}
		}
		out[i] = f
	}
	return out
}

// Register registers the module's functions.
func (m *Module) Register(r *registry.Registry) {
	for name, level := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		level := level
		r.RegisterFunc(ModuleName, name, &registry.RegisteredFunc{
			Fn: func(ctx context.Context, message string, fields ...any) {
				Log(ctx, level, message, fields...)
			},
			Doc: fmt.Sprintf("Log a message at %s level, followed by alternating keys and values.", name),
		})
	}
}
