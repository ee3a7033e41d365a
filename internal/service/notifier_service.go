package service

import (
	"context"
	"database/sql"
	goerrors "errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
	"github.com/bruinwatch/bruinwatch-api/pkg/errors"
)

// CreateNotifierRequest is the payload for registering a notifier.
type CreateNotifierRequest struct {
	CourseNumber    string `json:"course_number" validate:"required,min=1,max=10"`
	Term            string `json:"term"`
	PhoneTo         string `json:"phone_to"`
	IntervalSeconds int    `json:"interval_seconds"`
}

// UpdateNotifierRequest toggles a notifier's active flag.
type UpdateNotifierRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// NotifierService implements notifier CRUD on top of the stores.
type NotifierService struct {
	notifiers NotifierStore
	runs      RunStore
	validate  *validator.Validate
	logger    *zap.Logger

	defaultTerm        string
	minIntervalSeconds int
	fallbackEmail      string
	fallbackNumber     string
}

// NewNotifierService creates the CRUD service. defaultTerm fills requests
// that omit a term; the fallbacks stand in for a missing phone_to.
func NewNotifierService(
	notifiers NotifierStore,
	runs RunStore,
	logger *zap.Logger,
	defaultTerm string,
	minIntervalSeconds int,
	fallbackEmail, fallbackNumber string,
) *NotifierService {
	return &NotifierService{
		notifiers:          notifiers,
		runs:               runs,
		validate:           validator.New(),
		logger:             logger,
		defaultTerm:        defaultTerm,
		minIntervalSeconds: minIntervalSeconds,
		fallbackEmail:      fallbackEmail,
		fallbackNumber:     fallbackNumber,
	}
}

// List returns all notifiers joined with their most recent run record.
func (s *NotifierService) List(ctx context.Context) ([]models.NotifierWithRun, error) {
	notifiers, err := s.notifiers.List(ctx, models.NotifierFilter{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence.Code, errors.ErrPersistence.Status, "list notifiers")
	}

	ids := make([]string, 0, len(notifiers))
	for _, n := range notifiers {
		ids = append(ids, n.ID)
	}
	latest, err := s.runs.LatestByNotifier(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence.Code, errors.ErrPersistence.Status, "load latest runs")
	}

	out := make([]models.NotifierWithRun, 0, len(notifiers))
	for _, n := range notifiers {
		row := models.NotifierWithRun{Notifier: n}
		if run, ok := latest[n.ID]; ok {
			r := run
			row.LatestRun = &r
		}
		out = append(out, row)
	}
	return out, nil
}

// Create validates and registers a new active notifier. A missing phone_to
// resolves to the service fallback target, which is stored on the notifier;
// without either the request is rejected.
func (s *NotifierService) Create(ctx context.Context, req CreateNotifierRequest) (*models.Notifier, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation.Code, errors.ErrValidation.Status, "invalid notifier payload")
	}

	course, err := models.NormalizeCourseNumber(req.CourseNumber)
	if err != nil {
		return nil, errors.Clone(errors.ErrValidation, err.Error())
	}
	termInput := req.Term
	if termInput == "" {
		termInput = s.defaultTerm
	}
	term, err := models.NormalizeTerm(termInput)
	if err != nil {
		return nil, errors.Clone(errors.ErrValidation, err.Error())
	}
	target, err := models.NormalizeTarget(req.PhoneTo)
	if err != nil {
		return nil, errors.Clone(errors.ErrValidation, err.Error())
	}
	if target == "" {
		target = s.fallbackEmail
	}
	if target == "" {
		target = s.fallbackNumber
	}
	if target == "" {
		return nil, errors.Clone(errors.ErrValidation,
			"phone_to is required unless ALERT_TO_EMAIL or ALERT_TO_NUMBER is set in backend env")
	}

	interval := req.IntervalSeconds
	if interval == 0 {
		interval = defaultIntervalSeconds
	}
	if interval < s.minIntervalSeconds || interval > 3600 {
		return nil, errors.Clone(errors.ErrValidation, "interval_seconds must be between the configured minimum and 3600")
	}

	notifier := &models.Notifier{
		CourseNumber:    course,
		Term:            term,
		PhoneTo:         target,
		IntervalSeconds: interval,
		Active:          true,
	}
	if err := s.notifiers.Create(ctx, notifier); err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence.Code, errors.ErrPersistence.Status, "create notifier")
	}

	s.logger.Info("notifier created",
		zap.String("id", notifier.ID),
		zap.String("term", term),
		zap.String("course", course),
		zap.Int("interval_seconds", interval))
	return notifier, nil
}

// Update toggles the active flag and returns the notifier with its latest
// run attached.
func (s *NotifierService) Update(ctx context.Context, id string, req UpdateNotifierRequest) (*models.NotifierWithRun, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation.Code, errors.ErrValidation.Status, "invalid notifier payload")
	}

	updated, err := s.notifiers.Patch(ctx, id, models.NotifierPatch{Active: req.Active})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence.Code, errors.ErrPersistence.Status, "update notifier")
	}
	if updated == nil {
		return nil, errors.Clone(errors.ErrNotFound, "notifier not found")
	}

	row := models.NotifierWithRun{Notifier: *updated}
	latest, err := s.runs.LatestByNotifier(ctx, []string{id})
	if err != nil {
		s.logger.Warn("latest run lookup failed", zap.String("notifier_id", id), zap.Error(err))
		return &row, nil
	}
	if run, ok := latest[id]; ok {
		r := run
		row.LatestRun = &r
	}
	return &row, nil
}

// Get loads one notifier with its latest run.
func (s *NotifierService) Get(ctx context.Context, id string) (*models.NotifierWithRun, error) {
	notifier, err := s.notifiers.FindByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, errors.Clone(errors.ErrNotFound, "notifier not found")
		}
		return nil, errors.Wrap(err, errors.ErrPersistence.Code, errors.ErrPersistence.Status, "load notifier")
	}

	row := models.NotifierWithRun{Notifier: *notifier}
	latest, err := s.runs.LatestByNotifier(ctx, []string{id})
	if err == nil {
		if run, ok := latest[id]; ok {
			r := run
			row.LatestRun = &r
		}
	}
	return &row, nil
}

// Runs returns a notifier's check history, newest first.
func (s *NotifierService) Runs(ctx context.Context, id string, limit int) ([]models.NotifierRun, error) {
	if _, err := s.notifiers.FindByID(ctx, id); err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, errors.Clone(errors.ErrNotFound, "notifier not found")
		}
		return nil, errors.Wrap(err, errors.ErrPersistence.Code, errors.ErrPersistence.Status, "load notifier")
	}
	runs, err := s.runs.ListByNotifier(ctx, id, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence.Code, errors.ErrPersistence.Status, "list runs")
	}
	return runs, nil
}

// Delete removes a notifier permanently.
func (s *NotifierService) Delete(ctx context.Context, id string) error {
	deleted, err := s.notifiers.Delete(ctx, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrPersistence.Code, errors.ErrPersistence.Status, "delete notifier")
	}
	if !deleted {
		return errors.Clone(errors.ErrNotFound, "notifier not found")
	}
	s.logger.Info("notifier deleted", zap.String("id", id))
	return nil
}
