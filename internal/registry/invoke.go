package registry

import (
	"context"
	"fmt"
	"reflect"

	"github.com/specialistvlad/pybridge/internal/ctyconv"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()

	plainListType = reflect.TypeOf([]any(nil))
	plainMapType  = reflect.TypeOf(map[string]any(nil))
)

// call binds positional args to fn's parameters and invokes it.
func call(ctx context.Context, name string, fn any, args []any) (any, error) {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s: registered value is %s, not a function", name, ft.Kind())
	}

	params := paramTypes(ft)
	in := make([]reflect.Value, 0, ft.NumIn())
	if takesContext(ft) {
		in = append(in, reflect.ValueOf(ctx))
	}

	fixed := len(params)
	if ft.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("%s() takes at least %d arguments (%d given)", name, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("%s() takes %d arguments (%d given)", name, fixed, len(args))
	}

	for i, arg := range args {
		target := variadicElem(ft, params, i)
		v, err := bind(arg, target)
		if err != nil {
			return nil, fmt.Errorf("%s(): argument %d: %w", name, i+1, err)
		}
		in = append(in, v)
	}

	result, err := results(fv.Call(in))
	if err != nil {
		return nil, err
	}
	plain, err := ctyconv.Plain(result)
	if err != nil {
		return nil, fmt.Errorf("%s(): result: %w", name, err)
	}
	return plain, nil
}

// paramTypes returns fn's parameter types without a leading context.
func paramTypes(ft reflect.Type) []reflect.Type {
	start := 0
	if takesContext(ft) {
		start = 1
	}
	types := make([]reflect.Type, 0, ft.NumIn()-start)
	for i := start; i < ft.NumIn(); i++ {
		types = append(types, ft.In(i))
	}
	return types
}

func takesContext(ft reflect.Type) bool {
	return ft.NumIn() > 0 && ft.In(0) == contextType
}

func variadicElem(ft reflect.Type, params []reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= len(params)-1 {
		return params[len(params)-1].Elem()
	}
	return params[i]
}

// bind converts a plain value to target, going through cty for anything
// not directly assignable.
func bind(arg any, target reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(target), nil
	}
	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(target) {
		return av, nil
	}
	if target.Kind() == reflect.Interface {
		if av.Type().Implements(target) {
			return av, nil
		}
		return reflect.Value{}, fmt.Errorf("%T does not implement %s", arg, target)
	}

	val, err := ctyconv.ToValue(arg)
	if err != nil {
		return reflect.Value{}, err
	}
	ty, err := gocty.ImpliedType(reflect.Zero(target).Interface())
	if err != nil {
		return reflect.Value{}, fmt.Errorf("cannot bind to %s: %w", target, err)
	}
	val, err = convert.Convert(val, ty)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("expected %s: %w", ty.FriendlyName(), err)
	}
	out := reflect.New(target)
	if err := gocty.FromCtyValue(val, out.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return out.Elem(), nil
}

// results folds a function's return values into one value and an error.
// A trailing error result is returned as is.
func results(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		vals := make([]any, len(out))
		for i, v := range out {
			vals[i] = v.Interface()
		}
		return vals, nil
	}
}
