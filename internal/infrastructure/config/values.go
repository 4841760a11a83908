package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Values is a tree of settings addressed by dotted keys ("log.level").
type Values map[string]interface{}

// ReadFile decodes a settings file; the format follows the extension.
func ReadFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(filepath.Ext(path), data)
}

// Parse decodes data in the format named by ext (".yaml", ".yml", ".toml").
func Parse(ext string, data []byte) (Values, error) {
	v := Values{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	return v, nil
}

// Get walks the dotted key and returns def when any segment is missing.
func (v Values) Get(key string, def interface{}) interface{} {
	var cur interface{} = map[string]interface{}(v)
	for _, seg := range strings.Split(key, ".") {
		m, ok := node(cur)
		if !ok {
			return def
		}
		if cur, ok = m[seg]; !ok {
			return def
		}
	}
	return cur
}

// Set stores val under the dotted key, creating intermediate tables.
func (v Values) Set(key string, val interface{}) {
	segs := strings.Split(key, ".")
	m := map[string]interface{}(v)
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node(m[seg])
		if !ok {
			next = map[string]interface{}{}
			m[seg] = next
		}
		m = next
	}
	m[segs[len(segs)-1]] = val
}

// String returns the key as a string, formatting scalars.
func (v Values) String(key, def string) string {
	switch s := v.Get(key, nil).(type) {
	case nil:
		return def
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// Bool returns the key as a bool. Strings are parsed with strconv.
func (v Values) Bool(key string, def bool) bool {
	switch b := v.Get(key, nil).(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	}
	return def
}

// Int returns the key as an int.
func (v Values) Int(key string, def int) int {
	switch n := v.Get(key, nil).(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return def
}

// Duration returns the key as a duration. Numbers are read as seconds.
func (v Values) Duration(key string, def time.Duration) (time.Duration, error) {
	switch d := v.Get(key, nil).(type) {
	case nil:
		return def, nil
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return def, fmt.Errorf("%s: %w", key, err)
		}
		return parsed, nil
	case int:
		return time.Duration(d) * time.Second, nil
	case int64:
		return time.Duration(d) * time.Second, nil
	case uint64:
		return time.Duration(d) * time.Second, nil
	case float64:
		return time.Duration(d * float64(time.Second)), nil
	default:
		return def, fmt.Errorf("%s: unsupported duration type %T", key, d)
	}
}

func node(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Values:
		return m, true
	}
	return nil, false
}
