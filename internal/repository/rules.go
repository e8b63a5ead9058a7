package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hotelops-dev/sector-scheduler/backend/internal/domain"
)

func (r *Repository) CreateRule(rule *domain.Rule) error {
	params, err := json.Marshal(rule.Parameters)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO rules (sector_id, kind, rigidity, priority, code, question, answer, parameters, valid_from, valid_until, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{rule.SectorID, rule.Kind, rule.Rigidity, rule.Priority, rule.Code, rule.Question, rule.Answer, params, rule.ValidFrom, rule.ValidUntil, rule.Active}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&rule.ID, &rule.CreatedAt, &rule.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRuleByID(id int64) (*domain.Rule, error) {
	query := `
		SELECT sector_id, kind, rigidity, priority, code, question, answer, parameters, valid_from, valid_until, active, deleted_at, created_at, version
		FROM rules WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rule := &domain.Rule{
		ID: id,
	}

	var params []byte
	dst := []any{&rule.SectorID, &rule.Kind, &rule.Rigidity, &rule.Priority, &rule.Code, &rule.Question, &rule.Answer, &params, &rule.ValidFrom, &rule.ValidUntil, &rule.Active, &rule.DeletedAt, &rule.CreatedAt, &rule.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, &rule.Parameters); err != nil {
		return nil, err
	}

	return rule, nil
}

// GetRulesForSector returns every non-deleted rule scoped to the sector
// or global. The rule engine does the grouping and ordering.
func (r *Repository) GetRulesForSector(sectorID int64) ([]*domain.Rule, error) {
	query := `
		SELECT id, sector_id, kind, rigidity, priority, code, question, answer, parameters, valid_from, valid_until, active, deleted_at, created_at, version
		FROM rules
		WHERE deleted_at IS NULL AND (sector_id IS NULL OR sector_id = $1)
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, sectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ruleSet := make([]*domain.Rule, 0)
	for rows.Next() {
		rule := &domain.Rule{}
		var params []byte
		dst := []any{&rule.ID, &rule.SectorID, &rule.Kind, &rule.Rigidity, &rule.Priority, &rule.Code, &rule.Question, &rule.Answer, &params, &rule.ValidFrom, &rule.ValidUntil, &rule.Active, &rule.DeletedAt, &rule.CreatedAt, &rule.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(params, &rule.Parameters); err != nil {
			return nil, err
		}
		ruleSet = append(ruleSet, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ruleSet, nil
}

func (r *Repository) UpdateRule(rule *domain.Rule) error {
	params, err := json.Marshal(rule.Parameters)
	if err != nil {
		return err
	}

	query := `
		UPDATE rules
		SET
			rigidity = $1,
			priority = $2,
			question = $3,
			answer = $4,
			parameters = $5,
			valid_from = $6,
			valid_until = $7,
			active = $8,
			version = version + 1
		WHERE id = $9 AND version = $10 AND deleted_at IS NULL
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{rule.Rigidity, rule.Priority, rule.Question, rule.Answer, params, rule.ValidFrom, rule.ValidUntil, rule.Active, rule.ID, rule.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&rule.Version); err != nil {
		return err
	}

	return nil
}

// SoftDeleteRule excludes the rule from retrieval but keeps the row for
// audit.
func (r *Repository) SoftDeleteRule(id int64) error {
	query := `
		UPDATE rules SET deleted_at = NOW(), version = version + 1
		WHERE id = $1 AND deleted_at IS NULL
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
