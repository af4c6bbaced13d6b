package joli

import (
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// nilToken encodes a nil value. It cannot be produced by url.QueryEscape.
const nilToken = "!"

// canonical returns an order independent encoding of m: keys sorted,
// nested maps and slices encoded recursively, scalars query-escaped.
// Two snapshots are equal for dirty tracking when their encodings are.
func canonical(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = url.QueryEscape(k) + "=" + canonicalValue(m[k])
	}
	return "[" + strings.Join(parts, "&") + "]"
}

func canonicalValue(v any) string {
	switch v := v.(type) {
	case nil:
		return nilToken
	case map[string]any:
		return canonical(v)
	case Row:
		return canonical(v)
	case []byte:
		return url.QueryEscape(string(v))
	case time.Time:
		return url.QueryEscape(v.Format(time.RFC3339Nano))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nilToken
		}
		return canonicalValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nilToken
		}
		parts := make([]string, rv.Len())
		for i := range rv.Len() {
			parts[i] = strconv.Itoa(i) + "=" + canonicalValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, "&") + "]"
	case reflect.Map:
		if rv.IsNil() {
			return nilToken
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		return canonical(m)
	}
	return url.QueryEscape(fmt.Sprint(v))
}
