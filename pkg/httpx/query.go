package httpx

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/iancoleman/strcase"
)

// Query is a set of query parameters keyed by their Go-style camelCase
// names. Keys are kebab-cased on the wire (pageSize -> page-size), nil
// values (including typed nil pointers and slices) are omitted and
// time.Time values serialize as epoch milliseconds.
type Query map[string]any

func encodeQuery(params Query) url.Values {
	if len(params) == 0 {
		return nil
	}

	values := url.Values{}
	for key, value := range params {
		if isNil(value) {
			continue
		}

		wireKey := strcase.ToKebab(key)
		switch v := value.(type) {
		case time.Time:
			values.Set(wireKey, formatEpochMillis(v))
		case *time.Time:
			values.Set(wireKey, formatEpochMillis(*v))
		case []string:
			for _, item := range v {
				values.Add(wireKey, item)
			}
		case fmt.Stringer:
			values.Set(wireKey, v.String())
		default:
			values.Set(wireKey, fmt.Sprint(v))
		}
	}
	return values
}

func formatEpochMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// isNil catches both the untyped nil and a typed nil stored in the any,
// e.g. a nil *time.Time, which would otherwise print as "<nil>".
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
