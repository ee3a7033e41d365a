package models

import "time"

// Notifier is a subscription to one course/term pair: check it every
// IntervalSeconds and alert PhoneTo the moment the course opens up.
type Notifier struct {
	ID                  string        `db:"id" json:"id"`
	CourseNumber        string        `db:"course_number" json:"course_number"`
	Term                string        `db:"term" json:"term"`
	PhoneTo             string        `db:"phone_to" json:"phone_to"`
	IntervalSeconds     int           `db:"interval_seconds" json:"interval_seconds"`
	Active              bool          `db:"active" json:"active"`
	LastKnownEnrollable Enrollability `db:"last_known_enrollable" json:"last_known_enrollable"`
	LastCheckedAt       *time.Time    `db:"last_checked_at" json:"last_checked_at"`
	LastAlertedAt       *time.Time    `db:"last_alerted_at" json:"last_alerted_at"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updated_at"`
}

// NotifierPatch carries the fields the engine (or the PATCH endpoint) may
// update on an existing notifier. Nil fields are left untouched.
type NotifierPatch struct {
	Active              *bool
	LastKnownEnrollable *Enrollability
	LastCheckedAt       *time.Time
	LastAlertedAt       *time.Time
}

// NotifierFilter narrows list queries.
type NotifierFilter struct {
	ActiveOnly *bool
}

// NotifierWithRun decorates a notifier with its most recent run, if any.
type NotifierWithRun struct {
	Notifier
	LatestRun *NotifierRun `json:"latest_run"`
}
