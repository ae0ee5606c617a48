package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/kelasops-backend/internal/model"
)

type fakeRuleStore struct {
	rules  []model.SlotNormalizationRule
	nextID int
}

func (f *fakeRuleStore) Create(ctx context.Context, rule *model.SlotNormalizationRule) error {
	f.nextID++
	rule.ID = f.nextID
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeRuleStore) List(ctx context.Context) ([]model.SlotNormalizationRule, error) {
	out := append([]model.SlotNormalizationRule(nil), f.rules...)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (f *fakeRuleStore) Delete(ctx context.Context, id int) error {
	for i, r := range f.rules {
		if r.ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return nil
}

// FindLatest mirrors the repository: newest created_at wins, id breaks ties.
func (f *fakeRuleStore) FindLatest(ctx context.Context, grade, observedName string) (*model.SlotNormalizationRule, error) {
	var latest *model.SlotNormalizationRule
	for i := range f.rules {
		r := &f.rules[i]
		if r.Grade != grade || r.ObservedName != observedName {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) ||
			(r.CreatedAt.Equal(latest.CreatedAt) && r.ID > latest.ID) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (f *fakeRuleStore) EffectiveMap(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	for _, r := range f.rules {
		out[r.Grade+"\x00"+r.ObservedName] = r.CanonicalName
	}
	return out, nil
}

type fakePairSource []model.UnmatchedSlot

func (f fakePairSource) ListSlotPairs(ctx context.Context) ([]model.UnmatchedSlot, error) {
	return f, nil
}

type fakeSlotKeys map[string]struct{}

func (f fakeSlotKeys) ListSlotKeys(ctx context.Context) (map[string]struct{}, error) {
	return f, nil
}

func newTestNormalization(rules *fakeRuleStore, pairs fakePairSource, keys fakeSlotKeys) *NormalizationService {
	return NewNormalizationService(rules, pairs, keys, zerolog.Nop())
}

func TestResolvePassThrough(t *testing.T) {
	svc := newTestNormalization(&fakeRuleStore{}, nil, nil)

	got, err := svc.Resolve(context.Background(), "5", "Matematika Lanjut")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "Matematika Lanjut" {
		t.Errorf("Resolve = %q, want the observed name unchanged", got)
	}
}

func TestResolveMostRecentWins(t *testing.T) {
	rules := &fakeRuleStore{}
	svc := newTestNormalization(rules, nil, nil)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	old := &model.SlotNormalizationRule{Grade: "5", ObservedName: "MTK Lanjut 5", CanonicalName: "Matematika Dasar", CreatedAt: base}
	if err := svc.AddRule(context.Background(), old); err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	newer := &model.SlotNormalizationRule{Grade: "5", ObservedName: "MTK Lanjut 5", CanonicalName: "Matematika Lanjut", CreatedAt: base.Add(time.Hour)}
	if err := svc.AddRule(context.Background(), newer); err != nil {
		t.Fatalf("AddRule: %v", err)
	}

	got, err := svc.Resolve(context.Background(), "5", "MTK Lanjut 5")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "Matematika Lanjut" {
		t.Errorf("Resolve = %q, want the newer rule's canonical name", got)
	}

	// The same pair on another grade is untouched.
	got, err = svc.Resolve(context.Background(), "6", "MTK Lanjut 5")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "MTK Lanjut 5" {
		t.Errorf("Resolve grade 6 = %q, want pass-through", got)
	}
}

func TestListRulesNewestFirst(t *testing.T) {
	rules := &fakeRuleStore{}
	svc := newTestNormalization(rules, nil, nil)

	for _, observed := range []string{"A", "B", "C"} {
		rule := &model.SlotNormalizationRule{Grade: "5", ObservedName: observed, CanonicalName: "X"}
		if err := svc.AddRule(context.Background(), rule); err != nil {
			t.Fatalf("AddRule: %v", err)
		}
	}

	got, err := svc.ListRules(context.Background())
	if err != nil {
		t.Fatalf("ListRules: %v", err)
	}
	var observed []string
	for _, r := range got {
		observed = append(observed, r.ObservedName)
	}
	if !reflect.DeepEqual(observed, []string{"C", "B", "A"}) {
		t.Errorf("order = %v, want newest first", observed)
	}
}

func TestListUnmatched(t *testing.T) {
	rules := &fakeRuleStore{}
	rules.rules = []model.SlotNormalizationRule{
		{ID: 1, Grade: "5", ObservedName: "MTK Lanjut 5", CanonicalName: "Matematika Lanjut", CreatedAt: time.Now()},
		{ID: 2, Grade: "5", ObservedName: "IPA Eks", CanonicalName: "IPA Eksperimen", CreatedAt: time.Now()},
	}
	pairs := fakePairSource{
		{Grade: "5", SlotName: "Matematika Lanjut", SessionCount: 4}, // covered directly
		{Grade: "5", SlotName: "MTK Lanjut 5", SessionCount: 2},     // covered via rule
		{Grade: "5", SlotName: "IPA Eks", SessionCount: 3},          // rule points at an uncovered canonical
		{Grade: "6", SlotName: "Bahasa Inggris", SessionCount: 5},   // no slot, no rule
		{Grade: "6", SlotName: "Kosong", SessionCount: 0},           // zero sessions, skipped
	}
	keys := fakeSlotKeys{
		"5\x00Matematika Lanjut": {},
	}
	svc := newTestNormalization(rules, pairs, keys)

	got, err := svc.ListUnmatched(context.Background())
	if err != nil {
		t.Fatalf("ListUnmatched: %v", err)
	}

	want := []model.UnmatchedSlot{
		{Grade: "5", SlotName: "IPA Eks", SessionCount: 3},
		{Grade: "6", SlotName: "Bahasa Inggris", SessionCount: 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unmatched = %+v, want %+v", got, want)
	}
}
