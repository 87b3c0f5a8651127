package mock

import (
	"context"

	"github.com/evergreen-ci/kvconfig"
)

// Source provides a mock implementation of a kvconfig.Source.
type Source struct {
	LoadCount  int
	LoadOutput *kvconfig.Settings
	LoadError  error
}

// Load returns the mock settings. The mock output can be customized. By
// default, it returns empty settings.
func (s *Source) Load(ctx context.Context) (*kvconfig.Settings, error) {
	s.LoadCount++

	if s.LoadError != nil {
		return nil, s.LoadError
	}
	if s.LoadOutput != nil {
		return s.LoadOutput, nil
	}

	return kvconfig.NewSettings(), nil
}
