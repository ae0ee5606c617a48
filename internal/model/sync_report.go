package model

import "time"

// SyncReport summarizes one completed Resync run.
type SyncReport struct {
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	RowsFetched    int       `json:"rows_fetched"`
	RowsInserted   int       `json:"rows_inserted"`
	RowsFiltered   int       `json:"rows_filtered"`
	ObservedCount  int       `json:"observed_count"`
	EffectiveCount int       `json:"effective_count"`
	// CountsMatch is informational only — a mismatch between the two
	// stores after rebuild is reported, not fatal.
	CountsMatch bool `json:"counts_match"`
}
