package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ProgressRecord is the cached answered/total counter pair, kept only as
// a best-effort display when the network is unreachable.
type ProgressRecord struct {
	AssessmentID string
	UserID       string
	SessionID    string
	Answered     int
	Total        int
	UpdatedAt    time.Time
}

// ProgressRepo caches progress counters per assessment and user.
type ProgressRepo interface {
	Save(ctx context.Context, rec ProgressRecord) error
	Get(ctx context.Context, assessmentID, userID string) (*ProgressRecord, error)
}

type progressRepo struct {
	db *sql.DB
}

func (r *progressRepo) Save(ctx context.Context, rec ProgressRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO progress_cache (assessment_id, user_id, session_id, answered, total, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (assessment_id, user_id) DO UPDATE SET
		   session_id = excluded.session_id,
		   answered = excluded.answered,
		   total = excluded.total,
		   updated_at = CURRENT_TIMESTAMP`,
		rec.AssessmentID, rec.UserID, rec.SessionID, rec.Answered, rec.Total,
	)
	if err != nil {
		return fmt.Errorf("save progress cache: %w", err)
	}
	return nil
}

func (r *progressRepo) Get(ctx context.Context, assessmentID, userID string) (*ProgressRecord, error) {
	rec := &ProgressRecord{AssessmentID: assessmentID, UserID: userID}
	err := r.db.QueryRowContext(ctx,
		`SELECT session_id, answered, total, updated_at FROM progress_cache
		 WHERE assessment_id = ? AND user_id = ?`,
		assessmentID, userID,
	).Scan(&rec.SessionID, &rec.Answered, &rec.Total, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query progress cache: %w", err)
	}
	return rec, nil
}
