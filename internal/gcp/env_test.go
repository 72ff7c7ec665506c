package gcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("PORTAL_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("PORTAL_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("PORTAL_TEST_UNSET", "fallback"))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("PORTAL_TEST_BOOL", "true")
	b, err := GetEnvBool("PORTAL_TEST_BOOL", false)
	require.NoError(t, err)
	assert.True(t, b)

	t.Setenv("PORTAL_TEST_BOOL", "maybe")
	_, err = GetEnvBool("PORTAL_TEST_BOOL", false)
	assert.Error(t, err)

	b, err = GetEnvBool("PORTAL_TEST_BOOL_UNSET", true)
	require.NoError(t, err)
	assert.True(t, b)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("PORTAL_TEST_WAIT", "1500ms")
	d, err := GetEnvDuration("PORTAL_TEST_WAIT", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	t.Setenv("PORTAL_TEST_WAIT", "-1s")
	_, err = GetEnvDuration("PORTAL_TEST_WAIT", time.Second)
	assert.Error(t, err)

	t.Setenv("PORTAL_TEST_WAIT", "soon")
	_, err = GetEnvDuration("PORTAL_TEST_WAIT", time.Second)
	assert.Error(t, err)
}
