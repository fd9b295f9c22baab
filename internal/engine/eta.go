package engine

import (
	"log/slog"
	"time"
)

// etaInterval is the longest silence between two progress reports.
const etaInterval = 30 * time.Second

// eta reports progress at every 10% boundary, or when etaInterval has
// passed since the last report, whichever comes first.
type eta struct {
	clock      func() time.Time
	logger     *slog.Logger
	start      time.Time
	last       time.Time
	lastDecile int
}

func newETA(clock func() time.Time, logger *slog.Logger) *eta {
	now := clock()
	return &eta{clock: clock, logger: logger, start: now, last: now}
}

// observe records that done of total steps have finished and reports when
// due. It returns whether a report was made.
func (e *eta) observe(done, total int) bool {
	if total <= 0 || done <= 0 {
		return false
	}
	now := e.clock()
	decile := done * 10 / total
	if decile <= e.lastDecile && now.Sub(e.last) < etaInterval {
		return false
	}

	elapsed := now.Sub(e.start)
	remaining := time.Duration(float64(elapsed) / float64(done) * float64(total-done))
	e.logger.Info("progress",
		"step", done,
		"total", total,
		"percent", done*100/total,
		"eta", remaining.Round(time.Second).String())

	e.last = now
	e.lastDecile = decile
	return true
}
