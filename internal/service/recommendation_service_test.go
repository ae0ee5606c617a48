package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/kelasops-backend/internal/model"
)

type fakeRoster []model.RosterEntry

func (f fakeRoster) LoadRoster(ctx context.Context, period string) ([]model.RosterEntry, error) {
	return f, nil
}

func newTestRecommendation(roster fakeRoster) *RecommendationService {
	return NewRecommendationService(roster, zerolog.Nop())
}

func entry(id int, name, subject, grade string, tier model.LevelingTier, teaching, mentoring float64) model.RosterEntry {
	return model.RosterEntry{
		TeacherID:    id,
		Name:         name,
		Subject:      subject,
		Grade:        grade,
		Tier:         tier,
		TeachingPct:  teaching,
		MentoringPct: mentoring,
	}
}

func TestRecommendMandatoryTeachers(t *testing.T) {
	roster := fakeRoster{
		entry(1, "Ani", "Matematika", "5", model.TierL2, 40, 0),
		entry(2, "Budi", "Matematika", "5", model.TierL1, 90, 0),
		entry(3, "Citra", "matematika", "5", model.TierL1, 20, 0), // subject match is case-insensitive
		entry(4, "Dewi", "Matematika", "6", model.TierL1, 10, 0),  // wrong grade
		entry(5, "Eko", "Fisika", "5", model.TierL1, 10, 0),       // wrong subject
		entry(6, "Fajar", "Matematika", "5", model.TierM1, 5, 80), // mentor tier, not a lead
		entry(7, "Gita", "Matematika", "5", model.TierL3, 0, 0),
	}
	svc := newTestRecommendation(roster)

	got, err := svc.Recommend(context.Background(), RecommendTeacher, "Matematika", "5", model.ClassificationMandatory, "2026-09")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	// Tier first, then the less-loaded teacher within a tier.
	wantIDs := []int{3, 2, 1}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d candidates, want %d: %+v", len(got), len(wantIDs), got)
	}
	for i, want := range wantIDs {
		if got[i].TeacherID != want {
			t.Errorf("candidate[%d] = teacher %d, want %d", i, got[i].TeacherID, want)
		}
	}
	if got[0].UtilizationPct != 20 {
		t.Errorf("top candidate utilization = %v, want teaching pct 20", got[0].UtilizationPct)
	}
}

func TestRecommendMandatoryLimit(t *testing.T) {
	var roster fakeRoster
	for i := 1; i <= 6; i++ {
		roster = append(roster, entry(i, "Guru", "IPA", "7", model.TierL1, float64(i), 0))
	}
	svc := newTestRecommendation(roster)

	got, err := svc.Recommend(context.Background(), RecommendTeacher, "IPA", "7", model.ClassificationMandatory, "2026-09")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d candidates, want the mandatory cap of 3", len(got))
	}
}

func TestRecommendNonMandatoryWiderNet(t *testing.T) {
	roster := fakeRoster{
		entry(1, "Ani", "Matematika", "5", model.TierL4, 40, 0), // subject match
		entry(2, "Budi", "Fisika", "5", model.TierM2, 90, 10),   // grade match, any tier
		entry(3, "Citra", "Fisika", "6", model.TierL1, 20, 0),   // neither
	}
	svc := newTestRecommendation(roster)

	got, err := svc.Recommend(context.Background(), RecommendTeacher, "Matematika", "5", model.ClassificationNonMandatory, "2026-09")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 2 || got[0].TeacherID != 1 || got[1].TeacherID != 2 {
		t.Errorf("candidates = %+v, want teachers 1 and 2 in roster order", got)
	}
}

func TestRecommendMentors(t *testing.T) {
	roster := fakeRoster{
		entry(1, "Ani", "Matematika", "5", model.TierM2, 0, 70),
		entry(2, "Budi", "Fisika", "9", model.TierM1, 0, 10), // subject/grade ignored for mentors
		entry(3, "Citra", "Kimia", "8", model.TierL1, 5, 0),  // lead tier never mentors
		entry(4, "Dewi", "Biologi", "7", model.TierM1, 0, 40),
	}
	svc := newTestRecommendation(roster)

	got, err := svc.Recommend(context.Background(), RecommendMentor, "Matematika", "5", model.ClassificationMandatory, "2026-09")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3: %+v", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].UtilizationPct < got[i-1].UtilizationPct {
			t.Errorf("mentoring utilization not ascending: %+v", got)
		}
	}
	if got[0].TeacherID != 2 {
		t.Errorf("least-loaded mentor = teacher %d, want 2", got[0].TeacherID)
	}
}

func TestRecommendDeduplicatesCapabilityRows(t *testing.T) {
	// One teacher with two capability rows for the same (subject, grade)
	// must appear once, keeping the better-ranked row.
	roster := fakeRoster{
		entry(1, "Ani", "Matematika", "5", model.TierL2, 40, 0),
		entry(1, "Ani", "Matematika", "5", model.TierL3, 40, 0),
		entry(2, "Budi", "Matematika", "5", model.TierL1, 10, 0),
	}
	svc := newTestRecommendation(roster)

	got, err := svc.Recommend(context.Background(), RecommendTeacher, "Matematika", "5", model.ClassificationMandatory, "2026-09")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(got), got)
	}
	seen := make(map[int]bool)
	for _, c := range got {
		if seen[c.TeacherID] {
			t.Errorf("teacher %d recommended twice", c.TeacherID)
		}
		seen[c.TeacherID] = true
	}
	if got[1].TeacherID != 1 || got[1].Tier != model.TierL2 {
		t.Errorf("deduped row = %+v, want Ani kept at the better tier L2", got[1])
	}
}

func TestRecommendUnknownKind(t *testing.T) {
	svc := newTestRecommendation(fakeRoster{})
	if _, err := svc.Recommend(context.Background(), RecommendKind("advisor"), "x", "1", model.ClassificationMandatory, ""); err == nil {
		t.Fatal("expected an error for an unknown recommendation kind")
	}
}
