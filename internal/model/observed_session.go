package model

import "time"

// ObservedSession is one scheduled/taught class occurrence as reported by
// the external Metabase dataset. The whole set is replaced on every sync;
// nothing else writes to it.
//
// Date and time fields stay as reported (text) — the source mixes formats
// and the reconciliation logic only ever compares them as strings.
type ObservedSession struct {
	ID          int       `json:"id"`
	ExternalID  string    `json:"external_id"`
	Subject     string    `json:"subject"`
	Topic       string    `json:"topic"`
	SlotName    string    `json:"slot_name"`
	TeacherName string    `json:"teacher_name"`
	Grade       string    `json:"grade"`
	ClassDate   string    `json:"class_date"`
	TimeRange   string    `json:"time_range"`
	FirstDate   string    `json:"first_date"`
	Weekday     string    `json:"weekday"`
	SyncedAt    time.Time `json:"synced_at"`
}
