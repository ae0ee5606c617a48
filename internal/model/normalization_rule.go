package model

import "time"

// SlotNormalizationRule maps an externally observed (grade, slot name) pair
// to the canonical slot name used by assignment slots. Rules are append-only;
// when several rules cover the same pair the most recently created one wins.
type SlotNormalizationRule struct {
	ID            int       `json:"id"`
	Grade         string    `json:"grade"`
	ObservedName  string    `json:"observed_name"`
	CanonicalName string    `json:"canonical_name"`
	Notes         string    `json:"notes,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// UnmatchedSlot is an observed (grade, slot name) pair that no assignment
// slot covers, directly or through a normalization rule.
type UnmatchedSlot struct {
	Grade        string `json:"grade"`
	SlotName     string `json:"slot_name"`
	SessionCount int    `json:"session_count"`
}
