package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// OverrideRecord is one persisted override-domain set.
type OverrideRecord struct {
	AssessmentID string
	UserID       string
	Domains      []string
	Version      int64
}

// OverrideRepo persists the per-assessment override-domain set. The
// version column increments on every save so watchers can detect writes
// made by other processes.
type OverrideRepo interface {
	// Get loads the override set. A missing row or corrupt domains column
	// yields an empty set, never an error the caller must surface.
	Get(ctx context.Context, assessmentID, userID string) (OverrideRecord, error)

	// Save stores the override set and bumps the version.
	Save(ctx context.Context, assessmentID, userID string, domains []string) error

	// Version returns the current row version, 0 when no row exists.
	Version(ctx context.Context, assessmentID, userID string) (int64, error)
}

type overrideRepo struct {
	db *sql.DB
}

func (r *overrideRepo) Get(ctx context.Context, assessmentID, userID string) (OverrideRecord, error) {
	rec := OverrideRecord{AssessmentID: assessmentID, UserID: userID}

	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT domains, version FROM override_domains WHERE assessment_id = ? AND user_id = ?`,
		assessmentID, userID,
	).Scan(&raw, &rec.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("query override domains: %w", err)
	}

	// Corrupt JSON is treated as an empty set.
	var domains []string
	if err := json.Unmarshal([]byte(raw), &domains); err == nil {
		rec.Domains = domains
	}
	return rec, nil
}

func (r *overrideRepo) Save(ctx context.Context, assessmentID, userID string, domains []string) error {
	if domains == nil {
		domains = []string{}
	}
	sorted := make([]string, len(domains))
	copy(sorted, domains)
	sort.Strings(sorted)

	raw, err := json.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("marshal override domains: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO override_domains (assessment_id, user_id, domains, version, updated_at)
		 VALUES (?, ?, ?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT (assessment_id, user_id) DO UPDATE SET
		   domains = excluded.domains,
		   version = override_domains.version + 1,
		   updated_at = CURRENT_TIMESTAMP`,
		assessmentID, userID, string(raw),
	)
	if err != nil {
		return fmt.Errorf("save override domains: %w", err)
	}
	return nil
}

func (r *overrideRepo) Version(ctx context.Context, assessmentID, userID string) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx,
		`SELECT version FROM override_domains WHERE assessment_id = ? AND user_id = ?`,
		assessmentID, userID,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query override version: %w", err)
	}
	return version, nil
}
