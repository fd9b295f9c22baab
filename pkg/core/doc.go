// Package core defines the shared language of the sonoprop system.
//
// This package contains:
//   - Domain entities (SimulationConfig, Grid, Material, WaveField, State)
//   - Closed enumerations (DiffractionModel, HistoryPolicy, StepKind, Direction)
//   - Sentinel errors shared by every stage of the propagation core
//   - Run bookkeeping types and the Store interface used for persistence
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
