package repository

import (
	"context"
	"database/sql"
	"fmt"

	"focusflow/internal/model"
)

type BlockedSiteRepository struct {
	db *sql.DB
}

func NewBlockedSiteRepository(db *sql.DB) *BlockedSiteRepository {
	return &BlockedSiteRepository{db: db}
}

func (r *BlockedSiteRepository) List(ctx context.Context, userID string) ([]model.BlockedSite, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, domain, is_enabled
		 FROM blocked_sites
		 WHERE user_id = ?
		 ORDER BY domain`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list blocked sites: %w", err)
	}
	defer rows.Close()

	sites := make([]model.BlockedSite, 0)
	for rows.Next() {
		var site model.BlockedSite
		if err := rows.Scan(&site.ID, &site.UserID, &site.Domain, &site.IsEnabled); err != nil {
			return nil, fmt.Errorf("scan blocked site: %w", err)
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked sites: %w", err)
	}
	return sites, nil
}

func (r *BlockedSiteRepository) Create(ctx context.Context, site *model.BlockedSite) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO blocked_sites (id, user_id, domain, is_enabled)
		 VALUES (?, ?, ?, ?)`,
		site.ID,
		site.UserID,
		site.Domain,
		site.IsEnabled,
	)
	if err != nil {
		return fmt.Errorf("create blocked site: %w", err)
	}
	return nil
}

// SetEnabled toggles one site, scoped to its owner. ErrNotFound when the id
// does not exist or belongs to another user.
func (r *BlockedSiteRepository) SetEnabled(ctx context.Context, id, userID string, enabled bool) (*model.BlockedSite, error) {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE blocked_sites SET is_enabled = ? WHERE id = ? AND user_id = ?`,
		enabled,
		id,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update blocked site: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update blocked site rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, domain, is_enabled FROM blocked_sites WHERE id = ?`,
		id,
	)
	var site model.BlockedSite
	if err := row.Scan(&site.ID, &site.UserID, &site.Domain, &site.IsEnabled); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan blocked site: %w", err)
	}
	return &site, nil
}

func (r *BlockedSiteRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM blocked_sites WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete blocked site: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete blocked site rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
