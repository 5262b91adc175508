// Package strcase exposes the identifier casing rules used for namespace
// entries as the pybridge.strcase native module.
package strcase

import (
	"github.com/specialistvlad/pybridge/internal/namecase"
	"github.com/specialistvlad/pybridge/internal/registry"
	"github.com/specialistvlad/pybridge/internal/signature"
)

// ModuleName is the identifier the module is registered under.
const ModuleName = "pybridge.strcase"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the module's functions.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunc(ModuleName, "to_kebab", &registry.RegisteredFunc{
		Fn:  namecase.ToExportCase,
		Doc: "Convert a declared name to its exported form by replacing underscores with hyphens.",
	})
	r.RegisterFunc(ModuleName, "to_snake", &registry.RegisteredFunc{
		Fn:  namecase.ToDeclaredCase,
		Doc: "Convert an exported name back to its declared form by replacing hyphens with underscores.",
	})
	r.RegisterFunc(ModuleName, "is_public", &registry.RegisteredFunc{
		Fn:     signature.IsPublic,
		Doc:    "Report whether a name is public, that is, does not start with an underscore.",
		Origin: "pybridge.meta",
	})
}
