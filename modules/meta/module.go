// Package meta exposes the static signature extractor as the pybridge.meta
// native module, so a host can describe Python files through the same
// dispatch path it uses for everything else.
package meta

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/pybridge/internal/registry"
	"github.com/specialistvlad/pybridge/internal/signature"
)

// ModuleName is the identifier the module is registered under.
const ModuleName = "pybridge.meta"

// Module implements the registry.Module interface for this package.
type Module struct {
	Extractor *signature.Extractor
}

// Register registers the module's functions.
func (m *Module) Register(r *registry.Registry) {
	ex := m.Extractor
	if ex == nil {
		ex = signature.NewExtractor()
	}

	r.RegisterFunc(ModuleName, "function_signatures", &registry.RegisteredFunc{
		Fn: func(ctx context.Context, path string) (any, error) {
			sigs, err := ex.ExtractFile(ctx, path, signature.IsPublic)
			if err != nil {
				return nil, err
			}
			return plain(sigs.Functions)
		},
		Doc: "Return the signatures of the public top-level functions declared in a Python file.",
	})
	r.RegisterFunc(ModuleName, "class_signatures", &registry.RegisteredFunc{
		Fn: func(ctx context.Context, path string) (any, error) {
			sigs, err := ex.ExtractFile(ctx, path, signature.IsPublic)
			if err != nil {
				return nil, err
			}
			return plain(sigs.Classes)
		},
		Doc: "Return the signatures of the top-level classes declared in a Python file, with their public methods.",
	})
	r.RegisterFunc(ModuleName, "file_signatures", &registry.RegisteredFunc{
		Fn: func(ctx context.Context, path string) (any, error) {
			sigs, err := ex.ExtractFile(ctx, path, signature.IsPublic)
			if err != nil {
				return nil, err
			}
			return plain(sigs)
		},
		Doc: "Return the functions and classes declared in a Python file.",
	})
}

// plain turns signature records into the maps and lists every backend and
// transport understands. A nil list becomes an empty one.
func plain(v any) (any, error) {
	data, err := signature.Encode(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("re-decoding signature records: %w", err)
	}
	if out == nil {
		return []any{}, nil
	}
	return out, nil
}
