package state

import (
	"fmt"

	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// SaveProfile stores the summary of one recorded profile. Saving the same
// step twice replaces the earlier record.
func (s *SQLiteStore) SaveProfile(runID string, record *core.ProfileRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO profiles (run_id, step, position, kind, peak_max, peak_rms, file_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, record.Step, record.Position, int(record.Kind), record.PeakMax, record.PeakRMS, record.FileName,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// ListProfiles returns the profiles of a run in step order.
func (s *SQLiteStore) ListProfiles(runID string) ([]*core.ProfileRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT step, position, kind, peak_max, peak_rms, file_name
		 FROM profiles WHERE run_id = ? ORDER BY step`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*core.ProfileRecord
	for rows.Next() {
		rec := &core.ProfileRecord{}
		var kind int
		if err := rows.Scan(&rec.Step, &rec.Position, &kind, &rec.PeakMax, &rec.PeakRMS, &rec.FileName); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		rec.Kind = core.StepKind(kind)
		records = append(records, rec)
	}
	return records, rows.Err()
}
