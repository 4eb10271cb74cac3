package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

type flakyDB struct {
	failures int
	calls    int
}

func (d *flakyDB) PingContext(context.Context) error {
	d.calls++
	if d.calls <= d.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitForDB_RetriesUntilReady(t *testing.T) {
	db := &flakyDB{failures: 2}

	err := waitForDB(context.Background(), db, logging.Discard(), time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, db.calls)
}

func TestWaitForDB_GivesUp(t *testing.T) {
	db := &flakyDB{failures: 1000}

	err := waitForDB(context.Background(), db, logging.Discard(), time.Microsecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, dbConnectAttempts, db.calls)
}

func TestWaitForDB_StopsOnCancel(t *testing.T) {
	db := &flakyDB{failures: 1000}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitForDB(ctx, db, logging.Discard(), time.Second)
	require.Error(t, err)
	assert.LessOrEqual(t, db.calls, 1)
}
