package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_InvalidDSN(t *testing.T) {
	_, err := NewPool(context.Background(), PoolConfig{DSN: "postgres://%zz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse dsn")
}

func TestPool_ClosedIsSafe(t *testing.T) {
	var p *Pool

	assert.NotPanics(t, p.Close)
	assert.EqualError(t, p.Ping(context.Background()), "pool is closed")
	assert.EqualError(t, (&Pool{}).Ping(context.Background()), "pool is closed")
}
