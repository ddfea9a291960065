package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyDB struct {
	failures int
	calls    int
}

func (f *flakyDB) PingContext(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitReadyRetriesUntilPingSucceeds(t *testing.T) {
	db := &flakyDB{failures: 2}
	require.NoError(t, waitReady(context.Background(), db, time.Second, time.Millisecond))
	assert.Equal(t, 3, db.calls)
}

func TestWaitReadyGivesUp(t *testing.T) {
	db := &flakyDB{failures: 1 << 30}
	err := waitReady(context.Background(), db, 5*time.Millisecond, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRequiresDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TEST_POSTGRES_DSN", "")
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestFirstEnvPrefersEarlierKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://a")
	t.Setenv("TEST_POSTGRES_DSN", "postgres://b")
	assert.Equal(t, "postgres://a", firstEnv("DATABASE_URL", "TEST_POSTGRES_DSN"))
}
