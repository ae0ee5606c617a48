package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/kelasops-backend/internal/model"
)

// RecommendKind selects which role the ranker staffs.
type RecommendKind string

const (
	RecommendTeacher RecommendKind = "teacher"
	RecommendMentor  RecommendKind = "mentor"
)

const (
	mandatoryTeacherLimit = 3
	nonMandatoryLimit     = 5
	mentorLimit           = 5
)

// leadTierRank orders the four lead-teacher tiers for mandatory slots.
// Lower is better.
var leadTierRank = map[model.LevelingTier]int{
	model.TierL1: 0,
	model.TierL2: 1,
	model.TierL3: 2,
	model.TierL4: 3,
}

// mentorTiers are the two tiers eligible to mentor. Mentors are
// subject- and grade-agnostic.
var mentorTiers = map[model.LevelingTier]bool{
	model.TierM1: true,
	model.TierM2: true,
}

// rosterLoader provides the joined roster + utilization rows the ranker
// works over. Satisfied by *repository.TeacherRepository.
type rosterLoader interface {
	LoadRoster(ctx context.Context, period string) ([]model.RosterEntry, error)
}

// RecommendationService ranks candidate teachers and mentors for an
// assignment slot. Loading aside, the ranking itself is a pure computation
// over in-memory rows — no external calls, safe to run concurrently.
type RecommendationService struct {
	roster rosterLoader
	log    zerolog.Logger
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(roster rosterLoader, log zerolog.Logger) *RecommendationService {
	return &RecommendationService{
		roster: roster,
		log:    log.With().Str("component", "recommendation_service").Logger(),
	}
}

// Recommend produces a ranked, deduplicated candidate list for the given
// role, subject, grade and classification within an administrative period.
func (s *RecommendationService) Recommend(ctx context.Context, kind RecommendKind, subject, grade string, classification model.Classification, period string) ([]model.Candidate, error) {
	roster, err := s.roster.LoadRoster(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	switch kind {
	case RecommendTeacher:
		if classification == model.ClassificationMandatory {
			return rankMandatoryTeachers(roster, subject, grade), nil
		}
		return rankNonMandatoryTeachers(roster, subject, grade), nil
	case RecommendMentor:
		return rankMentors(roster), nil
	default:
		return nil, fmt.Errorf("unknown recommendation kind %q", kind)
	}
}

// rankMandatoryTeachers: exact (subject, grade) capability match, lead tier
// required, sorted by tier rank then teaching utilization ascending.
func rankMandatoryTeachers(roster []model.RosterEntry, subject, grade string) []model.Candidate {
	var eligible []model.RosterEntry
	for _, e := range roster {
		_, lead := leadTierRank[e.Tier]
		if lead && strings.EqualFold(e.Subject, subject) && e.Grade == grade {
			eligible = append(eligible, e)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		ri, rj := leadTierRank[eligible[i].Tier], leadTierRank[eligible[j].Tier]
		if ri != rj {
			return ri < rj
		}
		return eligible[i].TeachingPct < eligible[j].TeachingPct
	})

	return dedupCandidates(eligible, teachingUtilization, mandatoryTeacherLimit)
}

// rankNonMandatoryTeachers casts a wider net: subject match or grade match
// suffices and any tier qualifies. No ordering beyond stable input order.
func rankNonMandatoryTeachers(roster []model.RosterEntry, subject, grade string) []model.Candidate {
	var eligible []model.RosterEntry
	for _, e := range roster {
		if strings.EqualFold(e.Subject, subject) || e.Grade == grade {
			eligible = append(eligible, e)
		}
	}
	return dedupCandidates(eligible, teachingUtilization, nonMandatoryLimit)
}

// rankMentors: mentor tier required, subject and grade ignored, sorted by
// mentoring utilization ascending.
func rankMentors(roster []model.RosterEntry) []model.Candidate {
	var eligible []model.RosterEntry
	for _, e := range roster {
		if mentorTiers[e.Tier] {
			eligible = append(eligible, e)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].MentoringPct < eligible[j].MentoringPct
	})

	return dedupCandidates(eligible, mentoringUtilization, mentorLimit)
}

func teachingUtilization(e model.RosterEntry) float64  { return e.TeachingPct }
func mentoringUtilization(e model.RosterEntry) float64 { return e.MentoringPct }

// dedupCandidates collapses multiple capability rows per teacher down to
// the first (best-ranked) one and truncates to limit.
func dedupCandidates(entries []model.RosterEntry, utilization func(model.RosterEntry) float64, limit int) []model.Candidate {
	seen := make(map[int]bool, len(entries))
	candidates := make([]model.Candidate, 0, limit)

	for _, e := range entries {
		if seen[e.TeacherID] {
			continue
		}
		seen[e.TeacherID] = true
		candidates = append(candidates, model.Candidate{
			TeacherID:      e.TeacherID,
			Name:           e.Name,
			Tier:           e.Tier,
			UtilizationPct: utilization(e),
		})
		if len(candidates) == limit {
			break
		}
	}
	return candidates
}
