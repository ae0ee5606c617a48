package model

import "time"

// Classification controls whether a slot's status and teacher changes are
// gated by cross-validation against observed sessions.
type Classification string

const (
	ClassificationMandatory    Classification = "MANDATORY"
	ClassificationNonMandatory Classification = "NON_MANDATORY"
)

// SlotStatus is the lifecycle status of an assignment slot.
type SlotStatus string

const (
	SlotStatusOpen     SlotStatus = "OPEN"
	SlotStatusPending  SlotStatus = "PENDING"
	SlotStatusUpcoming SlotStatus = "UPCOMING"
	SlotStatusClosed   SlotStatus = "CLOSED"
)

// IsActive reports whether the status counts as active, i.e. a transition
// into it is gated by validation for mandatory slots.
func (s SlotStatus) IsActive() bool {
	return s == SlotStatusOpen || s == SlotStatusUpcoming
}

// AssignmentSlot is an administrator-declared staffing need for a recurring
// class. Its correctness against observed sessions is only ever checked on
// demand by the validation engine, never enforced on write.
type AssignmentSlot struct {
	ID              int            `json:"id"`
	Grade           string         `json:"grade"`
	Subject         string         `json:"subject"`
	SlotName        string         `json:"slot_name"`
	Weekdays        []string       `json:"weekdays"`
	TimeStart       string         `json:"time_start"`
	TimeEnd         string         `json:"time_end"`
	DurationMinutes int            `json:"duration_minutes"`
	Capacity        int            `json:"capacity"`
	Curriculum      string         `json:"curriculum"`
	BatchStart      *time.Time     `json:"batch_start,omitempty"`
	BatchEnd        *time.Time     `json:"batch_end,omitempty"`
	Classification  Classification `json:"classification"`
	Status          SlotStatus     `json:"status"`
	TeacherID       *int           `json:"teacher_id,omitempty"`
	MentorID        *int           `json:"mentor_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
