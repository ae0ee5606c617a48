package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/kelasops-backend/internal/model"
)

// NormalizationRuleRepository handles slot normalization rule persistence.
type NormalizationRuleRepository struct {
	pool *pgxpool.Pool
}

// NewNormalizationRuleRepository creates a new NormalizationRuleRepository.
func NewNormalizationRuleRepository(pool *pgxpool.Pool) *NormalizationRuleRepository {
	return &NormalizationRuleRepository{pool: pool}
}

// Create appends a rule. No uniqueness is enforced at write time; overlap
// is resolved at read time by most-recent-wins.
func (r *NormalizationRuleRepository) Create(ctx context.Context, rule *model.SlotNormalizationRule) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO slot_normalization_rules (grade, observed_name, canonical_name, notes, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		rule.Grade, rule.ObservedName, rule.CanonicalName, rule.Notes, rule.CreatedBy,
	).Scan(&rule.ID, &rule.CreatedAt)
}

// List retrieves all rules, newest first.
func (r *NormalizationRuleRepository) List(ctx context.Context) ([]model.SlotNormalizationRule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, grade, observed_name, canonical_name, notes, created_by, created_at
		 FROM slot_normalization_rules
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []model.SlotNormalizationRule
	for rows.Next() {
		var rule model.SlotNormalizationRule
		if err := rows.Scan(&rule.ID, &rule.Grade, &rule.ObservedName, &rule.CanonicalName,
			&rule.Notes, &rule.CreatedBy, &rule.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// Delete removes a rule by ID.
func (r *NormalizationRuleRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM slot_normalization_rules WHERE id = $1`, id)
	return err
}

// FindLatest returns the most recently created rule for a (grade, observed
// name) pair, or nil when no rule exists.
func (r *NormalizationRuleRepository) FindLatest(ctx context.Context, grade, observedName string) (*model.SlotNormalizationRule, error) {
	rule := &model.SlotNormalizationRule{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, grade, observed_name, canonical_name, notes, created_by, created_at
		 FROM slot_normalization_rules
		 WHERE grade = $1 AND observed_name = $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`, grade, observedName,
	).Scan(&rule.ID, &rule.Grade, &rule.ObservedName, &rule.CanonicalName,
		&rule.Notes, &rule.CreatedBy, &rule.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// ObservedAliases returns the observed names whose effective rule (latest
// per pair) maps to the given canonical name for a grade. Pairs whose
// latest rule points elsewhere are excluded.
func (r *NormalizationRuleRepository) ObservedAliases(ctx context.Context, grade, canonicalName string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT observed_name FROM (
			SELECT DISTINCT ON (observed_name) observed_name, canonical_name
			FROM slot_normalization_rules
			WHERE grade = $1
			ORDER BY observed_name, created_at DESC, id DESC
		) latest
		WHERE canonical_name = $2`, grade, canonicalName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// EffectiveMap returns the latest canonical mapping for every observed
// (grade, observed name) pair, keyed as grade + "\x00" + observed name.
// Used by the unmatched report to resolve pairs in one pass.
func (r *NormalizationRuleRepository) EffectiveMap(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (grade, observed_name) grade, observed_name, canonical_name
		FROM slot_normalization_rules
		ORDER BY grade, observed_name, created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mapping := make(map[string]string)
	for rows.Next() {
		var grade, observed, canonical string
		if err := rows.Scan(&grade, &observed, &canonical); err != nil {
			return nil, err
		}
		mapping[grade+"\x00"+observed] = canonical
	}
	return mapping, rows.Err()
}
