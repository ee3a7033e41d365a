package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
	"github.com/bruinwatch/bruinwatch-api/internal/notify"
	"github.com/bruinwatch/bruinwatch-api/pkg/errors"
)

const defaultIntervalSeconds = 60

// TickService runs one scheduler pass: select due notifiers, batch-resolve
// availability per term, alert on closed-to-open transitions, and append one
// run record per due notifier.
type TickService struct {
	notifiers  NotifierStore
	runs       RunStore
	resolver   CourseResolver
	dispatcher AlertDispatcher
	metrics    *MetricsService
	logger     *zap.Logger

	fallbackEmail  string
	fallbackNumber string

	now func() time.Time
}

// NewTickService wires the tick engine. fallbackEmail and fallbackNumber are
// the service-level alert targets used when a notifier has none of its own.
func NewTickService(
	notifiers NotifierStore,
	runs RunStore,
	resolver CourseResolver,
	dispatcher AlertDispatcher,
	metrics *MetricsService,
	logger *zap.Logger,
	fallbackEmail, fallbackNumber string,
) *TickService {
	return &TickService{
		notifiers:      notifiers,
		runs:           runs,
		resolver:       resolver,
		dispatcher:     dispatcher,
		metrics:        metrics,
		logger:         logger,
		fallbackEmail:  fallbackEmail,
		fallbackNumber: fallbackNumber,
		now:            time.Now,
	}
}

// isDue reports whether a notifier's interval has elapsed. A notifier that
// has never been checked is always due. Non-positive intervals fall back to
// the default; the effective interval is never below one second.
func isDue(n models.Notifier, now time.Time) bool {
	if n.LastCheckedAt == nil {
		return true
	}
	interval := n.IntervalSeconds
	if interval <= 0 {
		interval = defaultIntervalSeconds
	}
	return now.Sub(*n.LastCheckedAt) >= time.Duration(interval)*time.Second
}

// selectDue filters the active set down to notifiers whose interval has
// elapsed, preserving order.
func selectDue(notifiers []models.Notifier, now time.Time) []models.Notifier {
	due := make([]models.Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if isDue(n, now) {
			due = append(due, n)
		}
	}
	return due
}

// groupCoursesByTerm collects the distinct course numbers of the due set per
// term, sorted for deterministic resolver requests.
func groupCoursesByTerm(due []models.Notifier) map[string][]string {
	seen := make(map[string]map[string]bool)
	for _, n := range due {
		if seen[n.Term] == nil {
			seen[n.Term] = make(map[string]bool)
		}
		seen[n.Term][n.CourseNumber] = true
	}
	grouped := make(map[string][]string, len(seen))
	for term, courses := range seen {
		list := make([]string, 0, len(courses))
		for c := range courses {
			list = append(list, c)
		}
		sort.Strings(list)
		grouped[term] = list
	}
	return grouped
}

type statusKey struct {
	term   string
	course string
}

// Run executes one tick. It returns an error only when the active set cannot
// be loaded; every per-notifier failure is absorbed into the summary's error
// count and that notifier's run record.
func (s *TickService) Run(ctx context.Context) (*models.TickSummary, error) {
	started := time.Now()
	now := s.now().UTC()

	activeOnly := true
	active, err := s.notifiers.List(ctx, models.NotifierFilter{ActiveOnly: &activeOnly})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence.Code, errors.ErrPersistence.Status, "load active notifiers")
	}

	due := selectDue(active, now)
	grouped := groupCoursesByTerm(due)

	lookup := make(map[statusKey]models.CourseStatus)
	resolveErrs := make(map[string]error)

	terms := make([]string, 0, len(grouped))
	for term := range grouped {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	for _, term := range terms {
		statuses, err := s.resolver.Resolve(ctx, term, grouped[term])
		if err != nil {
			s.logger.Error("availability lookup failed for term",
				zap.String("term", term), zap.Error(err))
			resolveErrs[term] = err
			continue
		}
		for _, status := range statuses {
			lookup[statusKey{term: term, course: status.CourseNumber}] = status
		}
	}

	summary := &models.TickSummary{
		CheckedAt:      now,
		TotalActive:    len(active),
		DueCount:       len(due),
		ProcessedCount: len(due),
	}

	for _, notifier := range due {
		sent, procErr := s.processOne(ctx, notifier, lookup, resolveErrs, now)
		if sent {
			summary.SMSSentCount++
		}
		if procErr != nil {
			summary.ErrorCount++
		}
	}

	s.metrics.ObserveTick(*summary, time.Since(started))
	s.logger.Info("tick completed",
		zap.Int("total_active", summary.TotalActive),
		zap.Int("due", summary.DueCount),
		zap.Int("alerts_sent", summary.SMSSentCount),
		zap.Int("errors", summary.ErrorCount),
		zap.Duration("duration", time.Since(started)))
	return summary, nil
}

// processOne checks a single due notifier, dispatches at most one alert, and
// always appends a run record. The returned error is the notifier's failure,
// already captured in the record; the tick itself keeps going.
func (s *TickService) processOne(
	ctx context.Context,
	notifier models.Notifier,
	lookup map[statusKey]models.CourseStatus,
	resolveErrs map[string]error,
	now time.Time,
) (alertSent bool, procErr error) {
	started := time.Now()

	run := models.NotifierRun{
		NotifierID: notifier.ID,
		CheckedAt:  now,
	}

	target := notifier.PhoneTo
	if target == "" {
		target = s.fallbackEmail
	}
	if target == "" {
		target = s.fallbackNumber
	}

	status, found := lookup[statusKey{term: notifier.Term, course: notifier.CourseNumber}]
	switch {
	case !found && resolveErrs[notifier.Term] != nil:
		procErr = resolveErrs[notifier.Term]
	case !found:
		procErr = fmt.Errorf("no course status returned for COM SCI %s", notifier.CourseNumber)
	default:
		run.IsEnrollable = models.FromBool(status.IsEnrollable())

		// Alert exactly when availability is observed open and the last
		// persisted state was closed or unknown.
		if status.IsEnrollable() && notifier.LastKnownEnrollable != models.EnrollabilityOpen {
			if target == "" {
				procErr = errors.Clone(errors.ErrMissingTarget, "no alert target resolvable for notifier")
			} else {
				message := notify.BuildAlertMessage(notifier.Term, notifier.CourseNumber, s.resolver.ResultsURL(notifier.Term))
				ref, err := s.dispatcher.Deliver(ctx, target, message)
				if err != nil {
					procErr = err
				} else {
					run.SMSSent = true
					run.TwilioSID = &ref
					alertSent = true
				}
			}
		}
	}

	if procErr == nil {
		enrollable := run.IsEnrollable
		patch := models.NotifierPatch{
			LastKnownEnrollable: &enrollable,
			LastCheckedAt:       &now,
		}
		if run.SMSSent {
			patch.LastAlertedAt = &now
		}
		if _, err := s.notifiers.Patch(ctx, notifier.ID, patch); err != nil {
			procErr = err
		}
	}

	if procErr != nil {
		// Failure leaves the known enrollability untouched so the
		// pending transition still fires on a later tick.
		errText := procErr.Error()
		run.ErrorText = &errText
		s.logger.Warn("notifier check failed",
			zap.String("notifier_id", notifier.ID),
			zap.String("term", notifier.Term),
			zap.String("course", notifier.CourseNumber),
			zap.Error(procErr))
		if _, err := s.notifiers.Patch(ctx, notifier.ID, models.NotifierPatch{LastCheckedAt: &now}); err != nil {
			s.logger.Error("failure patch not applied",
				zap.String("notifier_id", notifier.ID), zap.Error(err))
		}
	}

	run.DurationMS = time.Since(started).Milliseconds()
	if err := s.runs.Insert(ctx, &run); err != nil {
		s.metrics.RecordRunRecordFailure()
		s.logger.Error("run record not persisted",
			zap.String("notifier_id", notifier.ID), zap.Error(err))
	}

	return alertSent, procErr
}
