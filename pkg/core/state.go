package core

import "time"

// Store defines the interface for run bookkeeping.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// Run operations
	CreateRun(name string, config string) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	ListRuns(limit int) ([]*Run, error)

	// Profile operations
	SaveProfile(runID string, record *ProfileRecord) error
	ListProfiles(runID string) ([]*ProfileRecord, error)
}

// RunStatus represents the status of a simulation run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run represents one propagation from the transducer to the end point.
type Run struct {
	ID          string
	Name        string
	Config      string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// ProfileRecord is the persisted summary of one exported beam profile.
type ProfileRecord struct {
	Step     int
	Position float64
	Kind     StepKind
	PeakMax  float64
	PeakRMS  float64
	FileName string
}
