package models

import "time"

// NotifierRun is the immutable audit record of one notifier check within one
// scheduler tick. Exactly one row is written per due notifier per tick,
// whether the check succeeded or failed.
type NotifierRun struct {
	ID           int64         `db:"id" json:"id"`
	NotifierID   string        `db:"notifier_id" json:"notifier_id"`
	CheckedAt    time.Time     `db:"checked_at" json:"checked_at"`
	IsEnrollable Enrollability `db:"is_enrollable" json:"is_enrollable"`
	SMSSent      bool          `db:"sms_sent" json:"sms_sent"`
	TwilioSID    *string       `db:"twilio_sid" json:"twilio_sid"`
	ErrorText    *string       `db:"error_text" json:"error_text"`
	DurationMS   int64         `db:"duration_ms" json:"duration_ms"`
}

// TickSummary is what a scheduler tick reports back to its caller. Only
// aggregate counts cross this boundary; per-notifier error detail stays in
// run records.
type TickSummary struct {
	CheckedAt      time.Time `json:"checked_at"`
	TotalActive    int       `json:"total_active"`
	DueCount       int       `json:"due_count"`
	ProcessedCount int       `json:"processed_count"`
	SMSSentCount   int       `json:"sms_sent_count"`
	ErrorCount     int       `json:"error_count"`
}
