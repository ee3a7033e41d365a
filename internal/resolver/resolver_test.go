package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const resultsFixture = `<html><body>
<div class="class-record">
  <h3 class="course-head">COM SCI 31 - Introduction to Computer Science I</h3>
  <div class="section-row">
    <span class="section-type">Lec</span>
    <span class="section-name">Lec 1</span>
    <span class="section-status">Open (45 of 120 Left)</span>
  </div>
  <div class="section-row">
    <span class="section-type">Dis</span>
    <span class="section-name">Dis 1A</span>
    <span class="section-status">Closed</span>
  </div>
  <div class="section-row">
    <span class="section-type">Dis</span>
    <span class="section-name">Dis 1B</span>
    <span class="section-status">Open (3 of 25 Left)</span>
  </div>
</div>
<div class="class-record">
  <h3 class="course-head">COM SCI 32 - Introduction to Computer Science II</h3>
  <div class="section-row">
    <span class="section-type">Lec</span>
    <span class="section-name">Lec 1</span>
    <span class="section-status">Waitlist Full (0 of 10 Left)</span>
  </div>
</div>
<div class="class-record">
  <h3 class="course-head">COM SCI 35L - Software Construction</h3>
  <div class="section-row">
    <span class="section-type">Lec</span>
    <span class="section-name">Lec 1</span>
    <span class="section-status">Open (12 of 80 Left)</span>
  </div>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	statuses, err := parseResults(strings.NewReader(resultsFixture))
	require.NoError(t, err)
	// 35L fails course-number normalization and is skipped.
	require.Len(t, statuses, 2)

	cs31 := statuses[0]
	assert.Equal(t, "31", cs31.CourseNumber)
	assert.Equal(t, "Introduction to Computer Science I", cs31.CourseTitle)
	require.Len(t, cs31.Groups, 1)
	assert.True(t, cs31.Groups[0].Primary.IsOpen)
	require.Len(t, cs31.Groups[0].Discussions, 2)
	assert.True(t, cs31.IsEnrollable(), "open lecture with one open discussion")

	cs32 := statuses[1]
	assert.Equal(t, "32", cs32.CourseNumber)
	assert.False(t, cs32.IsEnrollable(), "waitlisted lecture is not enrollable")
}

func TestParseResultsEmptyPage(t *testing.T) {
	_, err := parseResults(strings.NewReader("<html><body></body></html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no course records")
}

func TestIsOpenStatus(t *testing.T) {
	cases := map[string]bool{
		"Open (45 of 120 Left)":   true,
		"open":                    true,
		"Waitlist (5 of 10 Left)": false,
		"Waitlist Full":           false,
		"Closed":                  false,
		"Cancelled":               false,
		"Tentative":               false,
		"":                        false,
	}
	for status, want := range cases {
		assert.Equal(t, want, isOpenStatus(status), "status %q", status)
	}
}

func TestRegistrarResolveFiltersRequestedCourses(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "26S", r.URL.Query().Get("t"))
		assert.Equal(t, "COM SCI", r.URL.Query().Get("subj"))
		_, _ = w.Write([]byte(resultsFixture))
	}))
	defer srv.Close()

	reg := NewRegistrar(5*time.Second, zap.NewNop(), WithBaseURL(srv.URL))

	statuses, err := reg.Resolve(context.Background(), "26S", []string{"31", "99"})
	require.NoError(t, err)
	require.Len(t, statuses, 1, "course 99 is absent from the page")
	assert.Equal(t, "31", statuses[0].CourseNumber)
	assert.Equal(t, int32(1), requests.Load(), "one page fetch per term")
}

func TestRegistrarResolveRetriesTransientFailure(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(resultsFixture))
	}))
	defer srv.Close()

	reg := NewRegistrar(5*time.Second, zap.NewNop(), WithBaseURL(srv.URL))

	statuses, err := reg.Resolve(context.Background(), "26S", []string{"32"})
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.GreaterOrEqual(t, requests.Load(), int32(2))
}

func TestRegistrarResultsURL(t *testing.T) {
	reg := NewRegistrar(time.Second, zap.NewNop())
	url := reg.ResultsURL("26S")
	assert.Contains(t, url, "https://sa.ucla.edu/ro/Public/SOC/Results?")
	assert.Contains(t, url, "t=26S")
	assert.Contains(t, url, "subj=COM+SCI")
}
