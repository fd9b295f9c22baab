package state

import (
	"context"

	"github.com/leapstack-labs/sonoprop/internal/profile"
	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// StoreSink persists profile summaries of one run.
type StoreSink struct {
	Store core.Store
	RunID string
}

// Write implements profile.Sink.
func (s *StoreSink) Write(_ context.Context, name string, p *profile.Profile) error {
	return s.Store.SaveProfile(s.RunID, p.Record(name))
}
