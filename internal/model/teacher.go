package model

import "time"

// LevelingTier is a teacher's seniority/role category. L1–L4 are the ranked
// lead-teacher tiers (L1 highest); M1 and M2 are the mentor tiers.
type LevelingTier string

const (
	TierL1 LevelingTier = "L1"
	TierL2 LevelingTier = "L2"
	TierL3 LevelingTier = "L3"
	TierL4 LevelingTier = "L4"
	TierM1 LevelingTier = "M1"
	TierM2 LevelingTier = "M2"
)

// Teacher is a member of the teaching roster.
type Teacher struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeacherCapability is one (subject, grade, tier) record a teacher holds.
// A teacher may hold several.
type TeacherCapability struct {
	ID        int          `json:"id"`
	TeacherID int          `json:"teacher_id"`
	Subject   string       `json:"subject"`
	Grade     string       `json:"grade"`
	Tier      LevelingTier `json:"tier"`
}

// TeacherUtilization is a precomputed snapshot of how much of a teacher's
// teaching and mentoring capacity is in use for an administrative period.
// Computed by a separate aggregation; read-only here.
type TeacherUtilization struct {
	TeacherID    int     `json:"teacher_id"`
	Period       string  `json:"period"`
	TeachingPct  float64 `json:"teaching_pct"`
	MentoringPct float64 `json:"mentoring_pct"`
}

// RosterEntry is one capability row joined with its teacher and the
// utilization snapshot for the active period. The recommendation ranker
// works over a loaded slice of these — one teacher appears once per
// capability.
type RosterEntry struct {
	TeacherID    int          `json:"teacher_id"`
	Name         string       `json:"name"`
	Subject      string       `json:"subject"`
	Grade        string       `json:"grade"`
	Tier         LevelingTier `json:"tier"`
	TeachingPct  float64      `json:"teaching_pct"`
	MentoringPct float64      `json:"mentoring_pct"`
}

// Candidate is one ranked recommendation produced for an assignment slot.
type Candidate struct {
	TeacherID      int          `json:"teacher_id"`
	Name           string       `json:"name"`
	Tier           LevelingTier `json:"tier"`
	UtilizationPct float64      `json:"utilization_pct"`
}
