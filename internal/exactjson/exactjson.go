// Package exactjson decodes JSON objects into structs matching member keys
// exactly. encoding/json binds a key to a field case-insensitively; the
// processor's wire names are case-sensitive, so a member named "termurl" must
// not fill a field tagged "TermUrl".
package exactjson

import (
	"encoding"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

var (
	unmarshalerType     = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Unmarshal is json.Unmarshal with exact key matching. Members whose key is not
// exactly a field name of the target struct are dropped before decoding, at
// every level of nested structs, slices and arrays. Types implementing
// json.Unmarshaler decode their own members and are left untouched.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(filter(data, reflect.TypeOf(v)), v)
}

func filter(data []byte, t reflect.Type) []byte {
	if t == nil {
		return data
	}
	for t.Kind() == reflect.Pointer {
		if t.Implements(unmarshalerType) {
			return data
		}
		t = t.Elem()
	}
	if reflect.PointerTo(t).Implements(unmarshalerType) || reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return data
	}

	switch t.Kind() {
	case reflect.Struct:
		var members map[string]json.RawMessage
		if err := json.Unmarshal(data, &members); err != nil || members == nil {
			// not an object: let encoding/json report the mismatch
			return data
		}
		fields := fieldsOf(t)
		kept := make(map[string]json.RawMessage, len(members))
		for key, raw := range members {
			ft, ok := fields[key]
			if !ok {
				continue
			}
			kept[key] = filter(raw, ft)
		}
		out, err := json.Marshal(kept)
		if err != nil {
			return data
		}
		return out
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return data
		}
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil || elems == nil {
			return data
		}
		for i, raw := range elems {
			elems[i] = filter(raw, t.Elem())
		}
		out, err := json.Marshal(elems)
		if err != nil {
			return data
		}
		return out
	}
	return data
}

var fieldCache sync.Map // reflect.Type -> map[string]reflect.Type

// fieldsOf maps every JSON member name of struct type t to its field type,
// including fields promoted from untagged embedded structs.
func fieldsOf(t reflect.Type) map[string]reflect.Type {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(map[string]reflect.Type)
	}

	fields := make(map[string]reflect.Type)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")

		if f.Anonymous && name == "" {
			et := f.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				for k, v := range fieldsOf(et) {
					if _, shadowed := fields[k]; !shadowed {
						fields[k] = v
					}
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields[name] = f.Type
	}

	fieldCache.Store(t, fields)
	return fields
}
