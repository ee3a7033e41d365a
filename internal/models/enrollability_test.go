package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollabilityScanTriState(t *testing.T) {
	var e Enrollability

	require.NoError(t, e.Scan(nil))
	assert.Equal(t, EnrollabilityUnknown, e)

	require.NoError(t, e.Scan(true))
	assert.Equal(t, EnrollabilityOpen, e)

	require.NoError(t, e.Scan([]byte("f")))
	assert.Equal(t, EnrollabilityClosed, e)

	require.Error(t, e.Scan("yes"))
}

func TestEnrollabilityValueRoundTrip(t *testing.T) {
	v, err := EnrollabilityOpen.Value()
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = EnrollabilityUnknown.Value()
	require.NoError(t, err)
	assert.Nil(t, v, "unknown persists as NULL, never as false")
}

func TestEnrollabilityJSONKeepsNullShape(t *testing.T) {
	raw, err := EnrollabilityUnknown.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))

	var e Enrollability
	require.NoError(t, e.UnmarshalJSON([]byte("false")))
	assert.Equal(t, EnrollabilityClosed, e)
}
