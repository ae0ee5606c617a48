package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/kelasops-backend/internal/model"
)

type fakeMatcher struct {
	sessions  []model.ObservedSession
	lastNames []string
}

func (f *fakeMatcher) FindMatching(ctx context.Context, grade string, slotNames []string) ([]model.ObservedSession, error) {
	f.lastNames = slotNames
	var out []model.ObservedSession
	for _, s := range f.sessions {
		if s.Grade != grade {
			continue
		}
		for _, name := range slotNames {
			if s.SlotName == name {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

type fakeAliases map[string][]string

func (f fakeAliases) ObservedAliases(ctx context.Context, grade, canonicalName string) ([]string, error) {
	return f[grade+"\x00"+canonicalName], nil
}

type fakeTeachers map[int]*model.Teacher

func (f fakeTeachers) GetByID(ctx context.Context, id int) (*model.Teacher, error) {
	return f[id], nil
}

func newTestValidation(matcher *fakeMatcher, aliases fakeAliases, teachers fakeTeachers) *ValidationService {
	return NewValidationService(matcher, aliases, teachers, zerolog.Nop())
}

func intPtr(v int) *int { return &v }

func mandatoryInput() ValidateInput {
	return ValidateInput{
		Grade:          "5",
		SlotName:       "Matematika Lanjut",
		Weekdays:       []string{"Monday", "Wednesday"},
		TimeStart:      "16:00",
		TimeEnd:        "17:00",
		Classification: model.ClassificationMandatory,
	}
}

func TestValidateCorroborated(t *testing.T) {
	matcher := &fakeMatcher{sessions: []model.ObservedSession{
		{ExternalID: "S1", Grade: "5", SlotName: "Matematika Lanjut", TeacherName: "Sri Wahyuni", Weekday: "Monday", TimeRange: "16:00-17:00"},
		{ExternalID: "S2", Grade: "5", SlotName: "Matematika Lanjut", TeacherName: "Sri Wahyuni", Weekday: "Wednesday", TimeRange: "16:00-17:00"},
	}}
	teachers := fakeTeachers{7: {ID: 7, Name: "sri  wahyuni"}}
	svc := newTestValidation(matcher, fakeAliases{}, teachers)

	in := mandatoryInput()
	in.TeacherID = intPtr(7)

	result, err := svc.Validate(context.Background(), in)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	// Name comparison ignores case and whitespace runs.
	if !result.Success {
		t.Errorf("result = %+v, want success", result)
	}
	if result.MatchedCount != 2 {
		t.Errorf("matched = %d, want 2", result.MatchedCount)
	}
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("unexpected issues: %+v / %+v", result.Errors, result.Warnings)
	}
}

func TestValidateNoMatchingSession(t *testing.T) {
	matcher := &fakeMatcher{sessions: []model.ObservedSession{
		{ExternalID: "S1", Grade: "6", SlotName: "Matematika Lanjut", Weekday: "Monday", TimeRange: "16:00-17:00"},
	}}
	svc := newTestValidation(matcher, fakeAliases{}, fakeTeachers{})

	result, err := svc.Validate(context.Background(), mandatoryInput())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.Success {
		t.Fatal("validation passed with no matching session")
	}
	if len(result.Errors) != 1 || result.Errors[0].Kind != model.IssueNoMatchingSession {
		t.Errorf("errors = %+v, want one NO_MATCHING_SESSION", result.Errors)
	}
}

func TestValidateTeacherMismatch(t *testing.T) {
	matcher := &fakeMatcher{sessions: []model.ObservedSession{
		{ExternalID: "S1", Grade: "5", SlotName: "Matematika Lanjut", TeacherName: "Hendra Gunawan", Weekday: "Monday", TimeRange: "16:00-17:00"},
		{ExternalID: "S2", Grade: "5", SlotName: "Matematika Lanjut", TeacherName: "Hendra Gunawan", Weekday: "Wednesday", TimeRange: "16:00-17:00"},
	}}
	teachers := fakeTeachers{3: {ID: 3, Name: "Budi Santoso"}}
	svc := newTestValidation(matcher, fakeAliases{}, teachers)

	in := mandatoryInput()
	in.TeacherID = intPtr(3)

	result, err := svc.Validate(context.Background(), in)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.Success {
		t.Fatal("validation passed with a mismatched teacher")
	}
	if len(result.Errors) != 1 || result.Errors[0].Kind != model.IssueTeacherMismatch {
		t.Fatalf("errors = %+v, want one TEACHER_MISMATCH", result.Errors)
	}
	if result.ExpectedTeacher != "Hendra Gunawan" {
		t.Errorf("expected teacher = %q, want Hendra Gunawan", result.ExpectedTeacher)
	}
}

func TestValidateViaNormalizationAlias(t *testing.T) {
	matcher := &fakeMatcher{sessions: []model.ObservedSession{
		{ExternalID: "S1", Grade: "5", SlotName: "MTK Lanjut 5", Weekday: "Monday", TimeRange: "16:00-17:00"},
	}}
	aliases := fakeAliases{"5\x00Matematika Lanjut": {"MTK Lanjut 5"}}
	svc := newTestValidation(matcher, aliases, fakeTeachers{})

	result, err := svc.Validate(context.Background(), mandatoryInput())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.Success || result.MatchedCount != 1 {
		t.Errorf("result = %+v, want success via alias", result)
	}
	if len(matcher.lastNames) != 2 {
		t.Errorf("lookup names = %v, want canonical plus alias", matcher.lastNames)
	}
}

func TestValidatePartialOverlapWarns(t *testing.T) {
	matcher := &fakeMatcher{sessions: []model.ObservedSession{
		{ExternalID: "S1", Grade: "5", SlotName: "Matematika Lanjut", TeacherName: "Sri Wahyuni", Weekday: "Monday", TimeRange: "16:00-17:00"},
		// Same day, shifted half an hour: overlaps but does not match.
		{ExternalID: "S2", Grade: "5", SlotName: "Matematika Lanjut", TeacherName: "Sri Wahyuni", Weekday: "Monday", TimeRange: "16:30-17:30"},
		// Disjoint time on a matching day: neither matched nor partial.
		{ExternalID: "S3", Grade: "5", SlotName: "Matematika Lanjut", TeacherName: "Sri Wahyuni", Weekday: "Monday", TimeRange: "18:00-19:00"},
	}}
	svc := newTestValidation(matcher, fakeAliases{}, fakeTeachers{})

	result, err := svc.Validate(context.Background(), mandatoryInput())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.Success || result.MatchedCount != 1 {
		t.Errorf("result = %+v, want success on the one exact match", result)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("warnings = %v, want exactly one for the partial overlap", result.Warnings)
	}
}

func TestValidateUnparsableTimeCountsAsMatch(t *testing.T) {
	matcher := &fakeMatcher{sessions: []model.ObservedSession{
		{ExternalID: "S1", Grade: "5", SlotName: "Matematika Lanjut", Weekday: "Monday", TimeRange: "sore"},
	}}
	svc := newTestValidation(matcher, fakeAliases{}, fakeTeachers{})

	result, err := svc.Validate(context.Background(), mandatoryInput())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.Success || result.MatchedCount != 1 {
		t.Errorf("result = %+v, want unparsable time treated as a match", result)
	}
}

func TestValidateNonMandatorySkipsChecks(t *testing.T) {
	// An empty matcher would fail a mandatory slot; non-mandatory never looks.
	matcher := &fakeMatcher{}
	svc := newTestValidation(matcher, fakeAliases{}, fakeTeachers{})

	in := mandatoryInput()
	in.Classification = model.ClassificationNonMandatory
	in.TeacherID = intPtr(99)

	result, err := svc.Validate(context.Background(), in)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.Success || result.Mandatory {
		t.Errorf("result = %+v, want immediate success for non-mandatory", result)
	}
	if matcher.lastNames != nil {
		t.Error("session lookup ran for a non-mandatory slot")
	}
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		raw        string
		start, end string
		ok         bool
	}{
		{"16:00-17:00", "16:00", "17:00", true},
		{"16:00 - 17:00", "16:00", "17:00", true},
		{"16:00–17:00", "16:00", "17:00", true},
		{"sore", "", "", false},
		{"", "", "", false},
		{"16:00-", "", "", false},
	}

	for _, tt := range tests {
		start, end, ok := parseTimeRange(tt.raw)
		if start != tt.start || end != tt.end || ok != tt.ok {
			t.Errorf("parseTimeRange(%q) = %q, %q, %t; want %q, %q, %t",
				tt.raw, start, end, ok, tt.start, tt.end, tt.ok)
		}
	}
}
