// Package notify delivers course-open alerts over SMS or email.
package notify

import (
	"context"
	"fmt"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
	"github.com/bruinwatch/bruinwatch-api/pkg/errors"
)

// EmailSubject is the fixed subject line for email alerts.
const EmailSubject = "BruinWatch: Course Open"

// Sender delivers one alert to a single target and returns a provider
// reference (Twilio message SID or a synthetic email reference) for the
// audit log.
type Sender interface {
	Send(ctx context.Context, target, message string) (ref string, err error)
}

// BuildAlertMessage renders the alert text for an open course. resultsURL
// points the recipient at the live listing.
func BuildAlertMessage(term, courseNumber, resultsURL string) string {
	return fmt.Sprintf("UCLA %s alert: COM SCI %s is enrollable now. %s", term, courseNumber, resultsURL)
}

// Dispatcher routes an alert to SMS or email based on the target's shape.
type Dispatcher struct {
	sms   Sender
	email Sender
}

// NewDispatcher creates a dispatcher over the two channel senders.
func NewDispatcher(sms, email Sender) *Dispatcher {
	return &Dispatcher{sms: sms, email: email}
}

// Deliver sends message to target over the channel its shape selects and
// returns the provider reference.
func (d *Dispatcher) Deliver(ctx context.Context, target, message string) (string, error) {
	if target == "" {
		return "", errors.Clone(errors.ErrMissingTarget, "no alert target resolvable")
	}
	if models.IsEmailTarget(target) {
		return d.email.Send(ctx, target, message)
	}
	return d.sms.Send(ctx, target, message)
}
