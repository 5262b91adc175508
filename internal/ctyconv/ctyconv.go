// Package ctyconv converts between plain Go values and cty values.
//
// Plain values are what crosses the bridge: nil, bool, string, int64,
// float64, []any and map[string]any, plus whatever a native function
// returns. cty is the common currency of the HCL layer and of the
// reflective argument binder.
package ctyconv

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// FromValue converts a cty.Value to a plain Go value. Whole numbers that fit
// in an int64 come back as int64, every other number as float64.
func FromValue(val cty.Value) (any, error) {
	if !val.IsKnown() {
		return nil, fmt.Errorf("cannot convert unknown value of type %s", val.Type().FriendlyName())
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			return number(val.AsBigFloat()), nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			elem, err := FromValue(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = elem
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			elem, err := FromValue(v)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}

// FromValues converts each element of a tuple or list value, as used for
// positional call arguments. A null or empty value yields a nil slice.
func FromValues(val cty.Value) ([]any, error) {
	if val.IsNull() {
		return nil, nil
	}
	v, err := FromValue(val)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of arguments, got %s", val.Type().FriendlyName())
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list, nil
}

// ToValue converts a plain Go value to a cty.Value. Types outside the plain
// set fall back to gocty's implied type, which covers structs with cty tags
// and typed slices and maps.
func ToValue(data any) (cty.Value, error) {
	if data == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	switch v := data.(type) {
	case cty.Value:
		return v, nil
	case string:
		return cty.StringVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case float32:
		return cty.NumberFloatVal(float64(v)), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case int32:
		return cty.NumberIntVal(int64(v)), nil
	case uint64:
		return cty.NumberUIntVal(v), nil
	case *big.Int:
		return cty.NumberVal(new(big.Float).SetInt(v)), nil
	case map[string]any:
		if len(v) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(v))
		for key, val := range v {
			ctyVal, err := ToValue(val)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[key] = ctyVal
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		if len(v) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(v))
		for _, val := range v {
			ctyVal, err := ToValue(val)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, ctyVal)
		}
		return cty.TupleVal(elems), nil
	}

	ty, err := gocty.ImpliedType(data)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unsupported type for conversion to cty.Value: %T", data)
	}
	return gocty.ToCtyValue(data, ty)
}

// Plain normalises an arbitrary Go value to the plain set by routing it
// through cty. Values already plain are returned unchanged.
func Plain(data any) (any, error) {
	switch data.(type) {
	case nil, string, bool, int64, float64:
		return data, nil
	}
	if rv := reflect.ValueOf(data); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	val, err := ToValue(data)
	if err != nil {
		return nil, err
	}
	return FromValue(val)
}

func number(f *big.Float) any {
	if f.IsInt() {
		if i, acc := f.Int64(); acc == big.Exact {
			return i
		}
	}
	v, _ := f.Float64()
	return v
}
