package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCourseNumberValid(t *testing.T) {
	cases := map[string]string{
		"31":           "31",
		" COM SCI 32 ": "32",
		"003":          "003",
		"com sci 111":  "111",
	}
	for raw, expected := range cases {
		got, err := NormalizeCourseNumber(raw)
		require.NoError(t, err, "input %q", raw)
		assert.Equal(t, expected, got)
	}
}

func TestNormalizeCourseNumberInvalid(t *testing.T) {
	for _, raw := range []string{"", "abc", "M51A", "31A", "31.5", "1234"} {
		_, err := NormalizeCourseNumber(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestNormalizeTerm(t *testing.T) {
	for _, raw := range []string{"26S", "26W"} {
		got, err := NormalizeTerm(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	}
	got, err := NormalizeTerm(" 26f ")
	require.NoError(t, err)
	assert.Equal(t, "26F", got)

	for _, raw := range []string{"2026S", "26", "S26", ""} {
		_, err := NormalizeTerm(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestNormalizeTarget(t *testing.T) {
	got, err := NormalizeTarget("student@example.com")
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", got)

	got, err = NormalizeTarget("+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", got)

	got, err = NormalizeTarget("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = NormalizeTarget("not-a-phone-or-email")
	assert.Error(t, err)
}

func TestIsEmailTarget(t *testing.T) {
	assert.True(t, IsEmailTarget("student@example.com"))
	assert.True(t, IsEmailTarget("  student@example.com "))
	assert.False(t, IsEmailTarget("+15551234567"))
	assert.False(t, IsEmailTarget("no-at-sign"))
}

func TestSectionGroupEnrollable(t *testing.T) {
	openLec := Section{Name: "Lec 1", Kind: "lecture", Status: "Open", IsOpen: true}
	closedLec := Section{Name: "Lec 2", Kind: "lecture", Status: "Closed", IsOpen: false}
	openDis := Section{Name: "Dis 1A", Kind: "discussion", Status: "Open", IsOpen: true}
	closedDis := Section{Name: "Dis 1B", Kind: "discussion", Status: "Closed", IsOpen: false}

	assert.True(t, SectionGroup{Primary: openLec}.Enrollable(), "open lecture, no discussions")
	assert.True(t, SectionGroup{Primary: openLec, Discussions: []Section{closedDis, openDis}}.Enrollable())
	assert.False(t, SectionGroup{Primary: openLec, Discussions: []Section{closedDis}}.Enrollable(), "all discussions full")
	assert.False(t, SectionGroup{Primary: closedLec, Discussions: []Section{openDis}}.Enrollable(), "closed lecture blocks the path")
}

func TestCourseStatusIsEnrollable(t *testing.T) {
	openGroup := SectionGroup{Primary: Section{IsOpen: true}}
	closedGroup := SectionGroup{Primary: Section{IsOpen: false}}

	assert.False(t, CourseStatus{Groups: []SectionGroup{closedGroup}}.IsEnrollable())
	assert.True(t, CourseStatus{Groups: []SectionGroup{closedGroup, openGroup}}.IsEnrollable())
	assert.False(t, CourseStatus{}.IsEnrollable(), "no groups means not enrollable")
}
