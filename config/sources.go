package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/evergreen-ci/kvconfig"
)

// KeyDelimiter separates the sections of a hierarchical settings key.
const KeyDelimiter = ":"

// envKeyDelimiter stands in for KeyDelimiter in environment variable names,
// which cannot contain it.
const envKeyDelimiter = "__"

// MapSource is a source of fixed in-memory settings.
type MapSource struct {
	keys   []string
	values map[string]string
}

// NewMapSource returns a source for the given settings. Keys are loaded in
// sorted order.
func NewMapSource(m map[string]string) *MapSource {
	src := &MapSource{values: map[string]string{}}
	for k, v := range m {
		src.keys = append(src.keys, k)
		src.values[k] = v
	}
	sort.Strings(src.keys)
	return src
}

// Load returns the settings.
func (s *MapSource) Load(context.Context) (*kvconfig.Settings, error) {
	settings := kvconfig.NewSettings()
	for _, k := range s.keys {
		settings.Set(k, s.values[k])
	}
	return settings, nil
}

// String returns the name of the source.
func (s *MapSource) String() string {
	return "map"
}

// EnvSource is a source of settings from environment variables. Only
// variables starting with the prefix are loaded and the prefix is removed from
// their keys. A double underscore in a variable name is treated as the key
// delimiter, so APP_DB__HOST with the prefix APP_ becomes DB:HOST.
type EnvSource struct {
	Prefix string
}

// NewEnvSource returns a source for the environment variables with the given
// prefix.
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{Prefix: prefix}
}

// Load reads the matching environment variables.
func (s *EnvSource) Load(context.Context) (*kvconfig.Settings, error) {
	env := os.Environ()
	sort.Strings(env)

	settings := kvconfig.NewSettings()
	for _, kv := range env {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, s.Prefix) {
			continue
		}
		key := strings.TrimPrefix(name, s.Prefix)
		if key == "" {
			continue
		}
		settings.Set(strings.ReplaceAll(key, envKeyDelimiter, KeyDelimiter), val)
	}

	return settings, nil
}

// String returns the name of the source.
func (s *EnvSource) String() string {
	return fmt.Sprintf("env(%s)", s.Prefix)
}
