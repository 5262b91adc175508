// Package env exposes the process environment as the pybridge.env native
// module.
package env

import (
	"os"
	"strings"

	"github.com/specialistvlad/pybridge/internal/registry"
)

// ModuleName is the identifier the module is registered under.
const ModuleName = "pybridge.env"

// Module implements the registry.Module interface for this package.
type Module struct{}

// GetEnv returns the value of key, or fallback when key is unset.
func GetEnv(key string, fallback ...string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return ""
}

// Environ returns the whole environment as a map.
func Environ() map[string]any {
	envMap := make(map[string]any)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}

// Register registers the module's functions.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunc(ModuleName, "get_env", &registry.RegisteredFunc{
		Fn:  GetEnv,
		Doc: "Return the value of an environment variable, or the optional fallback when it is unset.",
	})
	r.RegisterFunc(ModuleName, "environ", &registry.RegisteredFunc{
		Fn:  Environ,
		Doc: "Return the process environment as a map.",
	})
}
