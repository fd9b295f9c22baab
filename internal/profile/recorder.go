package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// Sink receives every recorded profile.
type Sink interface {
	Write(ctx context.Context, name string, p *Profile) error
}

// RecorderConfig holds recorder configuration.
type RecorderConfig struct {
	// Name is the simulation name used for profile file names.
	Name string
	// Policy selects which steps are recorded.
	Policy core.HistoryPolicy
	// Sinks persist each recorded profile, in order.
	Sinks []Sink
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Recorder is the export stage of a run: it turns step events into
// profiles according to the history policy and forwards them to sinks.
type Recorder struct {
	name    string
	policy  core.HistoryPolicy
	sinks   []Sink
	history *History
	logger  *slog.Logger
}

// NewRecorder creates a recorder.
func NewRecorder(cfg RecorderConfig) *Recorder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	policy := cfg.Policy
	if policy == "" {
		policy = core.HistoryStore
	}
	return &Recorder{
		name:    cfg.Name,
		policy:  policy,
		sinks:   cfg.Sinks,
		history: NewHistory(),
		logger:  logger,
	}
}

// History returns the recorded profiles.
func (r *Recorder) History() *History { return r.history }

// Export records the event when the policy asks for it.
func (r *Recorder) Export(ctx context.Context, ev core.StepEvent) error {
	switch r.policy {
	case core.HistoryNone:
		return nil
	case core.HistoryStore:
		if !ev.Stored {
			return nil
		}
	case core.HistoryEvery:
	default:
		return fmt.Errorf("%w: unknown history policy %q", core.ErrInvalidConfig, string(r.policy))
	}

	p := Extract(ev)
	r.history.Append(p)
	r.logger.Debug("recorded profile", "step", p.Step, "position", p.Position, "peak_max", p.PeakMax())

	for _, sink := range r.sinks {
		if err := sink.Write(ctx, r.name, p); err != nil {
			return fmt.Errorf("failed to write profile %s: %w", FileName(r.name, p.Position), err)
		}
	}
	return nil
}
