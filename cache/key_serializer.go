package cache

import (
	"encoding"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// KeyTag is the struct tag used to name a field inside a serialized key.
const KeyTag = "key"

// canonicalKeySerializer implements KeySerializer using reflection-based serialization.
// Two values that only differ in unset (zero) fields, or in the order map entries were
// inserted, serialize to the same key.
type canonicalKeySerializer struct{}

// NewCanonicalKeySerializer creates a new instance of the canonical key serializer.
func NewCanonicalKeySerializer() KeySerializer {
	return &canonicalKeySerializer{}
}

// SerializeKey builds a cache key from a namespace and args.
func (s *canonicalKeySerializer) SerializeKey(namespace string, args ...any) string {
	if len(args) == 0 {
		return namespace
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, namespace)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}

	return strings.Join(parts, KeySeparator)
}

func (s *canonicalKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	rt := rv.Type()

	switch rt.Kind() {
	case reflect.Func:
		return fmt.Sprintf("func:%p", v)
	case reflect.Chan:
		return fmt.Sprintf("chan:%p", v)
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	}

	// Types that know how to render themselves (decimals, timestamps) win over reflection.
	if tm, ok := v.(encoding.TextMarshaler); ok {
		if text, err := tm.MarshalText(); err == nil {
			return escape(string(text))
		}
	}

	switch rt.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return "[]"
		}
		return s.serializeList(rv)
	case reflect.Array:
		return s.serializeList(rv)
	case reflect.Map:
		return s.serializeMap(rv)
	case reflect.Struct:
		return s.serializeStruct(rv, rt)
	case reflect.String:
		return escape(rv.String())
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%v", v)
	}

	return s.jsonFallback(v)
}

// serializeList keeps element order: order is significant for slices.
func (s *canonicalKeySerializer) serializeList(rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = s.serializeValue(rv.Index(i).Interface())
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// serializeMap renders entries sorted by their serialized key, so insertion order never leaks.
func (s *canonicalKeySerializer) serializeMap(rv reflect.Value) string {
	if rv.Len() == 0 {
		return "{}"
	}

	pairs := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		if iter.Value().IsZero() {
			continue
		}
		pairs = append(pairs, s.serializeValue(iter.Key().Interface())+"="+s.serializeValue(iter.Value().Interface()))
	}
	slices.Sort(pairs)

	return "{" + strings.Join(pairs, "&") + "}"
}

// serializeStruct renders exported, non-zero fields as name=value pairs sorted by name.
// Names come from the `key` struct tag, falling back to the field name; `key:"-"` skips a field.
func (s *canonicalKeySerializer) serializeStruct(rv reflect.Value, rt reflect.Type) string {
	pairs := make([]string, 0, rt.NumField())

	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		if tag, ok := field.Tag.Lookup(KeyTag); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}

		fieldValue := rv.Field(i)
		if fieldValue.IsZero() || !fieldValue.CanInterface() {
			continue
		}

		pairs = append(pairs, name+"="+s.serializeValue(fieldValue.Interface()))
	}
	slices.Sort(pairs)

	return "{" + strings.Join(pairs, "&") + "}"
}

func (s *canonicalKeySerializer) jsonFallback(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%s", reflect.TypeOf(v).String())
	}
	return "json:" + escape(string(data))
}

// escape keeps user supplied text from forging separators inside a key.
func escape(s string) string {
	return url.QueryEscape(s)
}
