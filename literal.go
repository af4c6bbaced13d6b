package joli

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Raw is a pre-formed SQL fragment. Literal emits it unchanged.
type Raw string

// Literal returns the SQL literal text of v.
//
// Strings have single quotes doubled and dollar signs doubled, then are
// wrapped in single quotes. Booleans become 1 or 0, nil and NaN become
// NULL, and numbers pass through as decimal text. Literal is the only
// escaping applied to values before they are embedded in SQL; it is not a
// defense against injection.
func Literal(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case Raw:
		return string(v)
	case string:
		return quote(v)
	case []byte:
		if v == nil {
			return "NULL"
		}
		return quote(string(v))
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return formatFloat(float64(v), 32)
	case float64:
		return formatFloat(v, 64)
	case time.Time:
		return quote(v.Format(time.RFC3339Nano))
	case fmt.Stringer:
		if isNilPointer(v) {
			return "NULL"
		}
		return quote(v.String())
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "NULL"
		}
		return Literal(rv.Elem().Interface())
	}
	switch rv.Kind() {
	case reflect.String:
		return quote(rv.String())
	case reflect.Bool:
		return Literal(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float(), 64)
	}
	return fmt.Sprint(v)
}

var quoteReplacer = strings.NewReplacer("'", "''", "$", "$$")

func quote(s string) string {
	return "'" + quoteReplacer.Replace(s) + "'"
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NULL"
	case math.IsInf(f, 1):
		return "1e999"
	case math.IsInf(f, -1):
		return "-1e999"
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
