package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/kelasops-backend/internal/model"
)

// ValidateInput carries everything the validation engine needs to check one
// proposed or existing assignment against observed sessions. SlotID is
// informational; the check works the same for a slot that is not saved yet.
type ValidateInput struct {
	SlotID         *int
	Grade          string
	SlotName       string
	Weekdays       []string
	TimeStart      string
	TimeEnd        string
	TeacherID      *int
	Status         model.SlotStatus
	Classification model.Classification
}

// sessionMatcher is the observed-session lookup the engine needs.
// Satisfied by *repository.ObservedSessionRepository.
type sessionMatcher interface {
	FindMatching(ctx context.Context, grade string, slotNames []string) ([]model.ObservedSession, error)
}

// aliasResolver expands a canonical slot name into its observed aliases.
// Satisfied by *repository.NormalizationRuleRepository.
type aliasResolver interface {
	ObservedAliases(ctx context.Context, grade, canonicalName string) ([]string, error)
}

// teacherLookup resolves an assigned teacher to a roster row.
// Satisfied by *repository.TeacherRepository.
type teacherLookup interface {
	GetByID(ctx context.Context, id int) (*model.Teacher, error)
}

// ValidationService checks whether an assignment is corroborated by
// observed sessions. Read-only; results are informational and never fatal
// to the caller.
type ValidationService struct {
	sessions sessionMatcher
	aliases  aliasResolver
	teachers teacherLookup
	log      zerolog.Logger
}

// NewValidationService creates a new ValidationService.
func NewValidationService(sessions sessionMatcher, aliases aliasResolver, teachers teacherLookup, log zerolog.Logger) *ValidationService {
	return &ValidationService{
		sessions: sessions,
		aliases:  aliases,
		teachers: teachers,
		log:      log.With().Str("component", "validation_service").Logger(),
	}
}

// Validate checks the input against observed sessions. Non-mandatory
// assignments short-circuit to success — validation gates mandatory slots
// only. For mandatory ones: at least one session must match grade, slot
// name (directly or via normalization), weekday set and time range; when a
// teacher is proposed, their name must match a matched session's teacher.
func (s *ValidationService) Validate(ctx context.Context, in ValidateInput) (*model.ValidationResult, error) {
	result := &model.ValidationResult{
		Mandatory: in.Classification == model.ClassificationMandatory,
	}

	if !result.Mandatory {
		result.Success = true
		return result, nil
	}

	names := []string{in.SlotName}
	aliases, err := s.aliases.ObservedAliases(ctx, in.Grade, in.SlotName)
	if err != nil {
		return nil, fmt.Errorf("resolve slot aliases: %w", err)
	}
	for _, alias := range aliases {
		if alias != in.SlotName {
			names = append(names, alias)
		}
	}

	sessions, err := s.sessions.FindMatching(ctx, in.Grade, names)
	if err != nil {
		return nil, fmt.Errorf("find matching sessions: %w", err)
	}

	matched, partial := splitMatches(sessions, in)
	result.MatchedCount = len(matched)

	for _, p := range partial {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("sesi %s (%s %s) hanya beririsan sebagian dengan jadwal slot", p.ExternalID, p.Weekday, p.TimeRange))
	}

	if len(matched) == 0 {
		result.Errors = append(result.Errors, model.ValidationIssue{
			Kind:    model.IssueNoMatchingSession,
			Message: "tidak ada sesi terpantau yang cocok dengan slot ini",
		})
		return result, nil
	}

	result.ExpectedTeacher = mostFrequentTeacher(matched)

	if in.TeacherID == nil {
		result.Success = true
		return result, nil
	}

	teacher, err := s.teachers.GetByID(ctx, *in.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("load teacher %d: %w", *in.TeacherID, err)
	}

	for _, m := range matched {
		if foldName(m.TeacherName) == foldName(teacher.Name) {
			result.Success = true
			return result, nil
		}
	}

	result.Errors = append(result.Errors, model.ValidationIssue{
		Kind: model.IssueTeacherMismatch,
		Message: fmt.Sprintf("guru yang diusulkan (%s) tidak tercatat pada sesi terpantau; sesi mencatat %s",
			teacher.Name, result.ExpectedTeacher),
	})
	return result, nil
}

// splitMatches partitions sessions into exact matches against the slot's
// weekday set and time range, and partial day/time overlaps. Unsupplied
// filters match everything; unparsable session times only ever count as
// exact (the data is too loose to prove a conflict).
func splitMatches(sessions []model.ObservedSession, in ValidateInput) (matched, partial []model.ObservedSession) {
	for _, session := range sessions {
		dayOK := len(in.Weekdays) == 0 || containsFold(in.Weekdays, session.Weekday)

		timeOK := true
		overlaps := true
		if in.TimeStart != "" && in.TimeEnd != "" {
			start, end, ok := parseTimeRange(session.TimeRange)
			if ok {
				timeOK = start == in.TimeStart && end == in.TimeEnd
				overlaps = start < in.TimeEnd && in.TimeStart < end
			}
		}

		switch {
		case dayOK && timeOK:
			matched = append(matched, session)
		case dayOK && overlaps:
			partial = append(partial, session)
		}
	}
	return matched, partial
}

// parseTimeRange splits "16:00-17:00" into its bounds. Zero-padded HH:MM
// compares correctly as strings.
func parseTimeRange(raw string) (start, end string, ok bool) {
	parts := strings.SplitN(strings.ReplaceAll(raw, "–", "-"), "-", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	start = strings.TrimSpace(parts[0])
	end = strings.TrimSpace(parts[1])
	if start == "" || end == "" {
		return "", "", false
	}
	return start, end, true
}

// mostFrequentTeacher returns the teacher name recorded on the most matched
// sessions — the "expected teacher" shown when a proposal mismatches.
// First-seen wins a tie.
func mostFrequentTeacher(sessions []model.ObservedSession) string {
	counts := make(map[string]int)
	spellings := make(map[string]string)
	bestKey := ""
	for _, s := range sessions {
		if s.TeacherName == "" {
			continue
		}
		key := foldName(s.TeacherName)
		if _, seen := spellings[key]; !seen {
			spellings[key] = s.TeacherName
		}
		counts[key]++
		if bestKey == "" || counts[key] > counts[bestKey] {
			bestKey = key
		}
	}
	return spellings[bestKey]
}

func foldName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(needle)) {
			return true
		}
	}
	return false
}
