package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/kelasops-backend/internal/model"
)

// ruleStore is the persistence side of the normalization registry.
// Satisfied by *repository.NormalizationRuleRepository.
type ruleStore interface {
	Create(ctx context.Context, rule *model.SlotNormalizationRule) error
	List(ctx context.Context) ([]model.SlotNormalizationRule, error)
	Delete(ctx context.Context, id int) error
	FindLatest(ctx context.Context, grade, observedName string) (*model.SlotNormalizationRule, error)
	EffectiveMap(ctx context.Context) (map[string]string, error)
}

// slotPairSource aggregates observed sessions into (grade, slot) pairs.
// Satisfied by *repository.ObservedSessionRepository.
type slotPairSource interface {
	ListSlotPairs(ctx context.Context) ([]model.UnmatchedSlot, error)
}

// slotKeySource lists the (grade, slot) pairs assignment slots cover.
// Satisfied by *repository.AssignmentSlotRepository.
type slotKeySource interface {
	ListSlotKeys(ctx context.Context) (map[string]struct{}, error)
}

// NormalizationService bridges naming drift between observed slot names and
// the canonical names the roster uses.
type NormalizationService struct {
	rules ruleStore
	pairs slotPairSource
	slots slotKeySource
	log   zerolog.Logger
}

// NewNormalizationService creates a new NormalizationService.
func NewNormalizationService(rules ruleStore, pairs slotPairSource, slots slotKeySource, log zerolog.Logger) *NormalizationService {
	return &NormalizationService{
		rules: rules,
		pairs: pairs,
		slots: slots,
		log:   log.With().Str("component", "normalization_service").Logger(),
	}
}

// AddRule appends a normalization rule. Duplicate (grade, observed name)
// pairs are allowed; Resolve picks the most recent.
func (s *NormalizationService) AddRule(ctx context.Context, rule *model.SlotNormalizationRule) error {
	return s.rules.Create(ctx, rule)
}

// ListRules returns all rules, newest first.
func (s *NormalizationService) ListRules(ctx context.Context) ([]model.SlotNormalizationRule, error) {
	return s.rules.List(ctx)
}

// DeleteRule removes a rule.
func (s *NormalizationService) DeleteRule(ctx context.Context, id int) error {
	return s.rules.Delete(ctx, id)
}

// Resolve maps an observed slot name to its canonical name. A missing rule
// is not an error — the observed name is treated as already canonical.
func (s *NormalizationService) Resolve(ctx context.Context, grade, observedName string) (string, error) {
	rule, err := s.rules.FindLatest(ctx, grade, observedName)
	if err != nil {
		return "", fmt.Errorf("find rule: %w", err)
	}
	if rule == nil {
		return observedName, nil
	}
	return rule.CanonicalName, nil
}

// ListUnmatched returns observed (grade, slot name) pairs with at least one
// session that no assignment slot covers, neither directly nor through a
// normalization rule. Aggregated with the affected-session count per pair.
func (s *NormalizationService) ListUnmatched(ctx context.Context) ([]model.UnmatchedSlot, error) {
	pairs, err := s.pairs.ListSlotPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list observed pairs: %w", err)
	}

	slotKeys, err := s.slots.ListSlotKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignment slot keys: %w", err)
	}

	mapping, err := s.rules.EffectiveMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rule map: %w", err)
	}

	var unmatched []model.UnmatchedSlot
	for _, p := range pairs {
		if p.SessionCount == 0 {
			continue
		}
		key := p.Grade + "\x00" + p.SlotName
		if _, direct := slotKeys[key]; direct {
			continue
		}
		if canonical, ok := mapping[key]; ok {
			if _, viaRule := slotKeys[p.Grade+"\x00"+canonical]; viaRule {
				continue
			}
		}
		unmatched = append(unmatched, p)
	}
	return unmatched, nil
}
