package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// DecodeJSON decodes a single JSON value. Numbers written without a
// fraction, exponent forms such as 1e3 included, decode as int64 when their
// value is whole and fits. Every other number decodes as float64.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return numbers(v), nil
}

// DecodeJSONArgs decodes each element as a JSON value, for positional
// arguments given on a command line. No elements yields a nil slice.
func DecodeJSONArgs(elems []string) ([]any, error) {
	var args []any
	for i, e := range elems {
		v, err := DecodeJSON([]byte(e))
		if err != nil {
			return nil, fmt.Errorf("argument %d: invalid JSON %q: %w", i+1, e, err)
		}
		args = append(args, v)
	}
	return args, nil
}

func numbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, ok := integer(string(v)); ok {
			return i
		}
		f, _ := v.Float64()
		return f
	case []any:
		for i := range v {
			v[i] = numbers(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = numbers(v[k])
		}
		return v
	default:
		return v
	}
}

func integer(s string) (int64, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	if strings.Contains(s, ".") {
		return 0, false
	}
	f, _, err := big.ParseFloat(s, 10, 256, big.ToNearestEven)
	if err != nil || !f.IsInt() {
		return 0, false
	}
	i, acc := f.Int64()
	return i, acc == big.Exact
}
