package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/specialistvlad/pybridge/internal/ctxlog"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ValidateRegistry checks that every registered function can be invoked by
// the reflective binder: it must be a function, each non-context parameter
// must map to a cty type, and at most one result may precede a trailing
// error.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errList []string
	logger := ctxlog.FromContext(ctx)

	for _, modName := range r.Modules() {
		mod := r.modules[modName]
		names := make([]string, 0, len(mod.funcs))
		for name := range mod.funcs {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			ft := reflect.TypeOf(mod.funcs[name].Fn)
			if ft == nil || ft.Kind() != reflect.Func {
				errList = append(errList, fmt.Sprintf("function '%s/%s': registered value is not a function", modName, name))
				continue
			}

			params := paramTypes(ft)
			for i, pt := range params {
				if ft.IsVariadic() && i == len(params)-1 {
					pt = pt.Elem()
				}
				if passthrough(pt) {
					logger.Debug("Native function parameter accepts plain values unchecked.", "module", modName, "function", name, "position", i+1)
					continue
				}
				if _, err := gocty.ImpliedType(reflect.Zero(pt).Interface()); err != nil {
					errList = append(errList, fmt.Sprintf("function '%s/%s', parameter %d: could not imply cty type from Go type %s: %v", modName, name, i+1, pt, err))
				}
			}

			switch ft.NumOut() {
			case 0, 1:
			case 2:
				if ft.Out(1) != errorType {
					errList = append(errList, fmt.Sprintf("function '%s/%s': second result must be error, got %s", modName, name, ft.Out(1)))
				}
			default:
				errList = append(errList, fmt.Sprintf("function '%s/%s': returns %d values, at most 2 allowed", modName, name, ft.NumOut()))
			}
		}
	}

	if len(errList) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errList, "\n- "))
	}
	return nil
}

// passthrough reports whether plain arguments reach a parameter of type t
// without conversion.
func passthrough(t reflect.Type) bool {
	return t.Kind() == reflect.Interface || t == plainListType || t == plainMapType
}
