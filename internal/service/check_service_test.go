package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
	"github.com/bruinwatch/bruinwatch-api/pkg/errors"
)

func newCheckService(resolver *stubResolver) *CheckService {
	return NewCheckService(resolver, nil, NewMetricsService(), zap.NewNop(), "26S", 0)
}

func TestCheckServiceResolvesCourse(t *testing.T) {
	status := models.CourseStatus{
		CourseNumber: "31",
		CourseTitle:  "Introduction to Computer Science I",
		Groups: []models.SectionGroup{{
			Primary: models.Section{Name: "Lec 1", Kind: "Lec", Status: "Open (5 of 100 Left)", IsOpen: true},
			Discussions: []models.Section{
				{Name: "Dis 1A", Kind: "Dis", Status: "Closed", IsOpen: false},
			},
		}},
	}
	resolver := &stubResolver{statuses: map[string][]models.CourseStatus{"26S": {status}}}
	svc := newCheckService(resolver)

	result, err := svc.Check(context.Background(), CheckRequest{CourseNumber: "COM SCI 31"})
	require.NoError(t, err)
	assert.Equal(t, "31", result.CourseNumber)
	assert.Equal(t, "26S", result.Term, "default term applies")
	assert.False(t, result.Enrollable, "open lecture with all discussions closed")
	require.Len(t, result.Sections, 2)
	require.NotNil(t, result.Sections[0].EnrollablePath)
	assert.False(t, *result.Sections[0].EnrollablePath)
	assert.Nil(t, result.Sections[1].EnrollablePath, "only primary rows carry the path flag")
}

func TestCheckServiceValidation(t *testing.T) {
	svc := newCheckService(&stubResolver{})

	_, err := svc.Check(context.Background(), CheckRequest{CourseNumber: "abc"})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.ErrValidation))

	_, err = svc.Check(context.Background(), CheckRequest{CourseNumber: "31", Term: "spring"})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.ErrValidation))
}

func TestCheckServiceCourseNotFound(t *testing.T) {
	resolver := &stubResolver{statuses: map[string][]models.CourseStatus{"26S": {}}}
	svc := newCheckService(resolver)

	_, err := svc.Check(context.Background(), CheckRequest{CourseNumber: "99"})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.ErrNotFound))
}

func TestCheckServiceResolverError(t *testing.T) {
	resolver := &stubResolver{errs: map[string]error{"26S": assert.AnError}}
	svc := newCheckService(resolver)

	_, err := svc.Check(context.Background(), CheckRequest{CourseNumber: "31"})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.ErrResolver))
}
