package pyruntime

import (
	"fmt"
	"math/big"

	"github.com/go-python/gpython/py"
)

// toPython converts a plain Go value to a Python object.
func toPython(v any) (py.Object, error) {
	switch v := v.(type) {
	case nil:
		return py.None, nil
	case bool:
		return py.NewBool(v), nil
	case int:
		return py.Int(v), nil
	case int32:
		return py.Int(v), nil
	case int64:
		return py.Int(v), nil
	case *big.Int:
		return (*py.BigInt)(new(big.Int).Set(v)), nil
	case float32:
		return py.Float(v), nil
	case float64:
		return py.Float(v), nil
	case string:
		return py.String(v), nil
	case []byte:
		return py.Bytes(v), nil
	case []any:
		items := make([]py.Object, 0, len(v))
		for _, item := range v {
			obj, err := toPython(item)
			if err != nil {
				return nil, err
			}
			items = append(items, obj)
		}
		return py.NewListFromItems(items), nil
	case map[string]any:
		d := py.NewStringDict()
		for key, item := range v {
			obj, err := toPython(item)
			if err != nil {
				return nil, err
			}
			d[key] = obj
		}
		return d, nil
	default:
		return nil, fmt.Errorf("cannot pass %T to Python", v)
	}
}

// fromPython converts a Python object to a plain Go value. Integers that do
// not fit in an int64 come back as *big.Int.
func fromPython(obj py.Object) (any, error) {
	switch v := obj.(type) {
	case py.NoneType:
		return nil, nil
	case py.Bool:
		return bool(v), nil
	case py.Int:
		return int64(v), nil
	case *py.BigInt:
		b := (*big.Int)(v)
		if b.IsInt64() {
			return b.Int64(), nil
		}
		return new(big.Int).Set(b), nil
	case py.Float:
		return float64(v), nil
	case py.String:
		return string(v), nil
	case py.Bytes:
		return []byte(v), nil
	case py.Tuple:
		return fromItems(v)
	case *py.List:
		return fromItems(v.Items)
	case py.StringDict:
		out := make(map[string]any, len(v))
		for key, item := range v {
			conv, err := fromPython(item)
			if err != nil {
				return nil, err
			}
			out[key] = conv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot convert Python value of type %s", obj.Type().Name)
	}
}

func fromItems(items []py.Object) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		conv, err := fromPython(item)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, nil
}
