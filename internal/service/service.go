// Package service holds the application's business logic: notifier CRUD, the
// one-off availability check, and the scheduler tick engine.
package service

import (
	"context"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
)

// NotifierStore is the persistence boundary for notifier subscriptions.
type NotifierStore interface {
	List(ctx context.Context, filter models.NotifierFilter) ([]models.Notifier, error)
	FindByID(ctx context.Context, id string) (*models.Notifier, error)
	Create(ctx context.Context, notifier *models.Notifier) error
	Patch(ctx context.Context, id string, patch models.NotifierPatch) (*models.Notifier, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// RunStore is the append-only audit log of notifier checks.
type RunStore interface {
	Insert(ctx context.Context, run *models.NotifierRun) error
	LatestByNotifier(ctx context.Context, notifierIDs []string) (map[string]models.NotifierRun, error)
	ListByNotifier(ctx context.Context, notifierID string, limit int) ([]models.NotifierRun, error)
}

// CourseResolver answers live availability for a batch of courses in a term.
type CourseResolver interface {
	Resolve(ctx context.Context, term string, courses []string) ([]models.CourseStatus, error)
	ResultsURL(term string) string
}

// AlertDispatcher delivers one alert message to a target and returns a
// provider reference for the audit log.
type AlertDispatcher interface {
	Deliver(ctx context.Context, target, message string) (string, error)
}
