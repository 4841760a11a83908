package client

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
)

// Option keys recognised by the executor and the default transport.
// Any other key is passed through to the transport verbatim.
const (
	KeyQuery     = "query"
	KeyForm      = "form"
	KeyJSON      = "json"
	KeyMultipart = "multipart"
	KeyHeaders   = "headers"
	KeyHandler   = "handler"
	KeyTransport = "transport"
)

// Transport sub-option keys (nested under KeyTransport)
const (
	KeyIPResolve = "ip_resolve"
	KeyTimeout   = "timeout"
	KeyUserAgent = "user_agent"
	KeyVerify    = "verify"
	KeyProxy     = "proxy"
)

// IP resolution modes accepted under KeyIPResolve
const (
	IPResolveAny = "any"
	IPResolveV4  = "v4"
	IPResolveV6  = "v6"
)

// Options carries request options keyed by purpose.
type Options map[string]interface{}

// Clone returns a copy of o. Nested maps are copied one level deep so that
// writes to a clone's sub-options never reach the original.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = cloneNested(v)
	}
	return out
}

// Merge returns a fresh map holding base overlaid with override.
//
// Scalar keys from override win. When both sides hold a nested map under the
// same key, the nested maps are merged key-wise, one level deep, whatever their
// map type (Options, map[string]interface{}, map[string]string, url.Values,
// http.Header); the result is an Options. A nested map present on one side only
// keeps its type. Neither input is modified.
func Merge(base, override Options) Options {
	out := base.Clone()
	for k, v := range override {
		over, overIsMap := asMap(v)
		under, underIsMap := asMap(out[k])
		if overIsMap && underIsMap {
			merged := copyMap(under)
			for nk, nv := range over {
				merged[nk] = nv
			}
			out[k] = merged
			continue
		}
		out[k] = cloneNested(v)
	}
	return out
}

// Without returns a copy of o with the given keys removed.
func (o Options) Without(keys ...string) Options {
	out := o.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Sub returns the nested options stored under key, or nil.
func (o Options) Sub(key string) Options {
	m, ok := asMap(o[key])
	if !ok {
		return nil
	}
	return m
}

// asMap reports whether v is a nested option map and returns it as Options.
// String maps keep their values as string; url.Values and http.Header keep
// theirs as []string.
func asMap(v interface{}) (Options, bool) {
	switch m := v.(type) {
	case Options:
		return m, true
	case map[string]interface{}:
		return Options(m), true
	case map[string]string:
		out := make(Options, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	case url.Values:
		return multiMap(m), true
	case http.Header:
		return multiMap(m), true
	default:
		return nil, false
	}
}

func multiMap(m map[string][]string) Options {
	out := make(Options, len(m))
	for k, vals := range m {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// cloneNested copies a nested map one level deep, keeping its type. Nil maps
// and non-map values are returned as is.
func cloneNested(v interface{}) interface{} {
	switch m := v.(type) {
	case Options:
		if m == nil {
			return m
		}
		return copyMap(m)
	case map[string]interface{}:
		if m == nil {
			return m
		}
		return copyMap(Options(m))
	case map[string]string:
		if m == nil {
			return m
		}
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	case url.Values:
		if m == nil {
			return m
		}
		return url.Values(cloneMulti(m))
	case http.Header:
		if m == nil {
			return m
		}
		return http.Header(cloneMulti(m))
	default:
		return v
	}
}

func cloneMulti(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, vals := range m {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func copyMap(m Options) Options {
	out := make(Options, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// GetString extracts string parameter
func GetString(params Options, key string, required bool) (string, error) {
	val, ok := params[key]
	if !ok || val == nil {
		if required {
			return "", fmt.Errorf("%s parameter required", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be string", key)
	}

	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}

	return str, nil
}

// GetBool extracts bool parameter
func GetBool(params Options, key string, defaultVal bool) bool {
	val, ok := params[key]
	if !ok {
		return defaultVal
	}

	b, ok := val.(bool)
	if !ok {
		return defaultVal
	}

	return b
}

// Values converts a query, form or header value into url.Values.
//
// Accepted shapes are map[string]string, url.Values, http.Header, Options and
// map[string]interface{}. Inside the latter two, []string values stay
// multi-valued and anything else is formatted with fmt.Sprint. A nil value
// yields empty values.
func Values(v interface{}) (url.Values, error) {
	if v == nil {
		return url.Values{}, nil
	}
	m, ok := asMap(v)
	if !ok {
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
	out := make(url.Values, len(m))
	for k, val := range m {
		switch typed := val.(type) {
		case []string:
			out[k] = append([]string(nil), typed...)
		case string:
			out[k] = []string{typed}
		default:
			out[k] = []string{fmt.Sprint(val)}
		}
	}
	return out, nil
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
