package cache

import (
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
)

// maxKeyDepth bounds the UTF-8 scan of nested keys.
const maxKeyDepth = 32

// Normalize maps a key to its canonical lookup token.
//
// Strings pass through unchanged. Anything else (typically a sequence such
// as []any{"user", 42}) is encoded as canonical JSON, which preserves
// sequence order and sorts nested map keys, so ["x","1"] and ["1","x"] are
// different tokens and "a" differs from ["a"]. Keys JSON cannot encode
// faithfully (channels, funcs, cycles, strings holding invalid UTF-8)
// fall back to a Go-syntax rendering that keeps every byte; Normalize never
// fails or panics.
func Normalize(key any) string {
	if s, ok := key.(string); ok {
		return s
	}
	if hasInvalidUTF8(reflect.ValueOf(key), 0) {
		return fallbackToken(key)
	}
	b, err := marshal(key)
	if err != nil {
		return fallbackToken(key)
	}
	return string(b)
}

func fallbackToken(key any) string {
	return fmt.Sprintf("%T:%#v", key, key)
}

func marshal(key any) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, errors.Newf("cache: key encoding panicked: %v", r)
		}
	}()
	return json.Marshal(key)
}

// hasInvalidUTF8 reports whether any string reachable from v is not valid
// UTF-8. The JSON encoder would replace such bytes with U+FFFD and make
// distinct keys collide.
func hasInvalidUTF8(v reflect.Value, depth int) bool {
	if !v.IsValid() || depth > maxKeyDepth {
		return false
	}
	switch v.Kind() {
	case reflect.String:
		return !utf8.ValidString(v.String())
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return false // []byte is base64-encoded
		}
		fallthrough
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if hasInvalidUTF8(v.Index(i), depth+1) {
				return true
			}
		}
	case reflect.Map:
		it := v.MapRange()
		for it.Next() {
			if hasInvalidUTF8(it.Key(), depth+1) || hasInvalidUTF8(it.Value(), depth+1) {
				return true
			}
		}
	case reflect.Pointer, reflect.Interface:
		return hasInvalidUTF8(v.Elem(), depth+1)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if hasInvalidUTF8(v.Field(i), depth+1) {
				return true
			}
		}
	}
	return false
}
