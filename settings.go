package kvconfig

import "strings"

// Settings is a set of configuration key/value pairs. Keys are compared
// case-insensitively and keep the spelling and position of the first time they
// were set. The zero value is ready to use.
type Settings struct {
	keys   []string
	values map[string]string
	index  map[string]int
}

// NewSettings returns new empty settings.
func NewSettings() *Settings {
	return &Settings{}
}

// NewSettingsFromMap returns settings populated from the given map. Since map
// iteration order is random, keys that differ only by case collapse into one
// arbitrarily-chosen entry.
func NewSettingsFromMap(m map[string]string) *Settings {
	s := NewSettings()
	for k, v := range m {
		s.Set(k, v)
	}
	return s
}

func normalizeKey(key string) string {
	return strings.ToUpper(key)
}

// Set sets the value for the key. If the key already exists, its value is
// overwritten.
func (s *Settings) Set(key, value string) {
	if s.values == nil {
		s.values = map[string]string{}
		s.index = map[string]int{}
	}

	norm := normalizeKey(key)
	if _, ok := s.index[norm]; !ok {
		s.index[norm] = len(s.keys)
		s.keys = append(s.keys, key)
	}
	s.values[norm] = value
}

// Get returns the value for the key and whether or not it exists.
func (s *Settings) Get(key string) (string, bool) {
	if s == nil || s.values == nil {
		return "", false
	}
	val, ok := s.values[normalizeKey(key)]
	return val, ok
}

// Len returns the number of keys.
func (s *Settings) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the keys in the order they were first set.
func (s *Settings) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s.keys...)
}

// Merge sets every key from the other settings, in order, overwriting any
// existing values.
func (s *Settings) Merge(other *Settings) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		s.Set(k, other.values[normalizeKey(k)])
	}
}

// Map returns a copy of the settings as a map.
func (s *Settings) Map() map[string]string {
	m := map[string]string{}
	if s == nil {
		return m
	}
	for _, k := range s.keys {
		m[k] = s.values[normalizeKey(k)]
	}
	return m
}
