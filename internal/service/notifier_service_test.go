package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
	"github.com/bruinwatch/bruinwatch-api/pkg/errors"
)

func newNotifierService(store *stubNotifierStore, runs *stubRunStore) *NotifierService {
	return NewNotifierService(store, runs, zap.NewNop(), "26S", 15, "", "")
}

func TestNotifierServiceCreateNormalizesInput(t *testing.T) {
	store := newStubNotifierStore()
	svc := newNotifierService(store, &stubRunStore{})

	created, err := svc.Create(context.Background(), CreateNotifierRequest{
		CourseNumber:    "com sci 31",
		Term:            "26s",
		PhoneTo:         "+15551234567",
		IntervalSeconds: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "31", created.CourseNumber)
	assert.Equal(t, "26S", created.Term)
	assert.Equal(t, "+15551234567", created.PhoneTo)
	assert.Equal(t, 30, created.IntervalSeconds)
	assert.True(t, created.Active)
	assert.NotEmpty(t, created.ID)
}

func TestNotifierServiceCreateDefaults(t *testing.T) {
	store := newStubNotifierStore()
	svc := NewNotifierService(store, &stubRunStore{}, zap.NewNop(), "26S", 15, "fallback@example.com", "")

	created, err := svc.Create(context.Background(), CreateNotifierRequest{CourseNumber: "31"})
	require.NoError(t, err)
	assert.Equal(t, "26S", created.Term, "default term applies")
	assert.Equal(t, 60, created.IntervalSeconds, "default interval applies")
	assert.Equal(t, "fallback@example.com", created.PhoneTo, "fallback target is stored on the notifier")
}

func TestNotifierServiceCreateRejectsInvalidInput(t *testing.T) {
	svc := newNotifierService(newStubNotifierStore(), &stubRunStore{})

	tests := []struct {
		name string
		req  CreateNotifierRequest
	}{
		{"bad course", CreateNotifierRequest{CourseNumber: "31X", PhoneTo: "+15551234567"}},
		{"bad term", CreateNotifierRequest{CourseNumber: "31", Term: "SPRING26", PhoneTo: "+15551234567"}},
		{"bad target", CreateNotifierRequest{CourseNumber: "31", PhoneTo: "not-a-target"}},
		{"interval too low", CreateNotifierRequest{CourseNumber: "31", PhoneTo: "+15551234567", IntervalSeconds: 5}},
		{"interval too high", CreateNotifierRequest{CourseNumber: "31", PhoneTo: "+15551234567", IntervalSeconds: 7200}},
		{"no target and no fallback", CreateNotifierRequest{CourseNumber: "31"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.ErrValidation), "got %v", err)
		})
	}
}

func TestNotifierServiceListJoinsLatestRun(t *testing.T) {
	id := uuid.NewString()
	store := newStubNotifierStore(models.Notifier{
		ID: id, Term: "26S", CourseNumber: "31", PhoneTo: "+15551234567",
		IntervalSeconds: 60, Active: true,
	})
	runs := &stubRunStore{}
	require.NoError(t, runs.Insert(context.Background(), &models.NotifierRun{
		NotifierID: id, CheckedAt: time.Now().UTC(), IsEnrollable: models.EnrollabilityClosed, DurationMS: 120,
	}))

	svc := newNotifierService(store, runs)
	rows, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].LatestRun)
	assert.Equal(t, models.EnrollabilityClosed, rows[0].LatestRun.IsEnrollable)
}

func TestNotifierServiceUpdateTogglesActive(t *testing.T) {
	store := newStubNotifierStore(models.Notifier{
		ID: "ntf-1", Term: "26S", CourseNumber: "31", PhoneTo: "+15551234567",
		IntervalSeconds: 60, Active: true,
	})
	svc := newNotifierService(store, &stubRunStore{})

	inactive := false
	updated, err := svc.Update(context.Background(), "ntf-1", UpdateNotifierRequest{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.False(t, store.get("ntf-1").Active)
}

func TestNotifierServiceUpdateUnknownID(t *testing.T) {
	svc := newNotifierService(newStubNotifierStore(), &stubRunStore{})

	active := true
	_, err := svc.Update(context.Background(), "missing", UpdateNotifierRequest{Active: &active})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.ErrNotFound))
}

func TestNotifierServiceUpdateRequiresActive(t *testing.T) {
	svc := newNotifierService(newStubNotifierStore(), &stubRunStore{})

	_, err := svc.Update(context.Background(), "ntf-1", UpdateNotifierRequest{})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.ErrValidation))
}

func TestNotifierServiceDelete(t *testing.T) {
	store := newStubNotifierStore(models.Notifier{ID: "ntf-1", Active: true})
	svc := newNotifierService(store, &stubRunStore{})

	require.NoError(t, svc.Delete(context.Background(), "ntf-1"))

	err := svc.Delete(context.Background(), "ntf-1")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.ErrNotFound))
}
