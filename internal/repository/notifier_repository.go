package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
)

const notifierColumns = "id, course_number, term, phone_to, interval_seconds, active, last_known_enrollable, last_checked_at, last_alerted_at, created_at, updated_at"

// NotifierRepository handles persistence for notifier subscriptions.
type NotifierRepository struct {
	db *sqlx.DB
}

// NewNotifierRepository instantiates a notifier repository.
func NewNotifierRepository(db *sqlx.DB) *NotifierRepository {
	return &NotifierRepository{db: db}
}

// List returns notifiers matching the filter, newest first.
func (r *NotifierRepository) List(ctx context.Context, filter models.NotifierFilter) ([]models.Notifier, error) {
	query := "SELECT " + notifierColumns + " FROM notifiers"
	var args []interface{}

	if filter.ActiveOnly != nil {
		query += fmt.Sprintf(" WHERE active = $%d", len(args)+1)
		args = append(args, *filter.ActiveOnly)
	}
	query += " ORDER BY created_at DESC"

	var notifiers []models.Notifier
	if err := r.db.SelectContext(ctx, &notifiers, query, args...); err != nil {
		return nil, fmt.Errorf("list notifiers: %w", err)
	}
	return notifiers, nil
}

// FindByID loads a notifier by identifier.
func (r *NotifierRepository) FindByID(ctx context.Context, id string) (*models.Notifier, error) {
	query := "SELECT " + notifierColumns + " FROM notifiers WHERE id = $1"
	var notifier models.Notifier
	if err := r.db.GetContext(ctx, &notifier, query, id); err != nil {
		return nil, err
	}
	return &notifier, nil
}

// Create inserts a new notifier record.
func (r *NotifierRepository) Create(ctx context.Context, notifier *models.Notifier) error {
	if notifier.ID == "" {
		notifier.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if notifier.CreatedAt.IsZero() {
		notifier.CreatedAt = now
	}
	notifier.UpdatedAt = now

	const query = `INSERT INTO notifiers (id, course_number, term, phone_to, interval_seconds, active, last_known_enrollable, last_checked_at, last_alerted_at, created_at, updated_at) VALUES (:id, :course_number, :term, :phone_to, :interval_seconds, :active, :last_known_enrollable, :last_checked_at, :last_alerted_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notifier); err != nil {
		return fmt.Errorf("create notifier: %w (verify db/migrations/001_init.sql has been applied)", err)
	}
	return nil
}

// Patch applies the non-nil fields of the patch and returns the updated row.
// A nil result with a nil error means the notifier does not exist.
func (r *NotifierRepository) Patch(ctx context.Context, id string, patch models.NotifierPatch) (*models.Notifier, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Active != nil {
		add("active", *patch.Active)
	}
	if patch.LastKnownEnrollable != nil {
		add("last_known_enrollable", *patch.LastKnownEnrollable)
	}
	if patch.LastCheckedAt != nil {
		add("last_checked_at", *patch.LastCheckedAt)
	}
	if patch.LastAlertedAt != nil {
		add("last_alerted_at", *patch.LastAlertedAt)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE notifiers SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), notifierColumns)

	var notifier models.Notifier
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("patch notifier %s: %w", id, err)
	}
	defer rows.Close() //nolint:errcheck

	if !rows.Next() {
		return nil, rows.Err()
	}
	if err := rows.StructScan(&notifier); err != nil {
		return nil, fmt.Errorf("patch notifier %s: %w", id, err)
	}
	return &notifier, nil
}

// Delete removes a notifier permanently, reporting whether a row existed.
func (r *NotifierRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifiers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete notifier %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete notifier %s: %w", id, err)
	}
	return affected > 0, nil
}
