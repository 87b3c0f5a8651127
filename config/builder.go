package config

import (
	"context"
	"fmt"

	"github.com/evergreen-ci/kvconfig"
	"github.com/pkg/errors"
)

// Builder composes settings from an ordered list of sources.
type Builder struct {
	sources []kvconfig.Source
}

// NewBuilder returns a new builder with no sources.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add adds a source. Sources added later take precedence over sources added
// earlier.
func (b *Builder) Add(src kvconfig.Source) *Builder {
	if src != nil {
		b.sources = append(b.sources, src)
	}
	return b
}

// Sources returns the sources in the order they are loaded.
func (b *Builder) Sources() []kvconfig.Source {
	return append([]kvconfig.Source{}, b.sources...)
}

// Build loads every source in order and merges their settings. It stops at
// the first source that fails to load.
func (b *Builder) Build(ctx context.Context) (*kvconfig.Settings, error) {
	merged := kvconfig.NewSettings()
	for i, src := range b.sources {
		settings, err := src.Load(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "loading source %d (%s)", i, sourceName(src))
		}
		merged.Merge(settings)
	}
	return merged, nil
}

func sourceName(src kvconfig.Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", src)
}
