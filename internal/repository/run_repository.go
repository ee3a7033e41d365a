package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
)

// RunRepository appends and reads the immutable notifier audit log.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository instantiates a run repository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Insert appends one run record. Records are never updated afterwards.
func (r *RunRepository) Insert(ctx context.Context, run *models.NotifierRun) error {
	const query = `INSERT INTO notifier_runs (notifier_id, checked_at, is_enrollable, sms_sent, twilio_sid, error_text, duration_ms) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		run.NotifierID,
		run.CheckedAt,
		run.IsEnrollable,
		run.SMSSent,
		run.TwilioSID,
		run.ErrorText,
		run.DurationMS,
	).Scan(&run.ID); err != nil {
		return fmt.Errorf("insert notifier run: %w (verify db/migrations/001_init.sql has been applied)", err)
	}
	return nil
}

// LatestByNotifier returns the most recent run per notifier for a batch of
// identifiers.
func (r *RunRepository) LatestByNotifier(ctx context.Context, notifierIDs []string) (map[string]models.NotifierRun, error) {
	if len(notifierIDs) == 0 {
		return map[string]models.NotifierRun{}, nil
	}

	const query = `SELECT DISTINCT ON (notifier_id) id, notifier_id, checked_at, is_enrollable, sms_sent, twilio_sid, error_text, duration_ms FROM notifier_runs WHERE notifier_id = ANY($1) ORDER BY notifier_id, checked_at DESC, id DESC`

	var runs []models.NotifierRun
	if err := r.db.SelectContext(ctx, &runs, query, pq.Array(notifierIDs)); err != nil {
		return nil, fmt.Errorf("query notifier runs: %w", err)
	}

	latest := make(map[string]models.NotifierRun, len(runs))
	for _, run := range runs {
		latest[run.NotifierID] = run
	}
	return latest, nil
}

// ListByNotifier returns a notifier's run history, newest first.
func (r *RunRepository) ListByNotifier(ctx context.Context, notifierID string, limit int) ([]models.NotifierRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, notifier_id, checked_at, is_enrollable, sms_sent, twilio_sid, error_text, duration_ms FROM notifier_runs WHERE notifier_id = $1 ORDER BY checked_at DESC, id DESC LIMIT %d`, limit)

	var runs []models.NotifierRun
	if err := r.db.SelectContext(ctx, &runs, query, notifierID); err != nil {
		return nil, fmt.Errorf("list notifier runs: %w", err)
	}
	return runs, nil
}
