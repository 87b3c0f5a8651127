package kvconfig

import "context"

// Source represents a source of configuration settings that a host application
// composes with others.
type Source interface {
	// Load loads the source's current settings. Each call returns newly-built
	// settings; implementations must not return partial settings on error.
	Load(ctx context.Context) (*Settings, error)
}
