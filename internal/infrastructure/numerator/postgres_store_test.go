package numerator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickinvoice/internal/core/apperror"
	corenumerator "quickinvoice/internal/core/numerator"
	"quickinvoice/internal/infrastructure/storage/postgres"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sequence_counters table for the statements PostgresStore issues.
type mockQuerier struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: make(map[string]int64)}
}

func (m *mockQuerier) GetQuerier(context.Context) postgres.Querier { return m }

func (m *mockQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return pgconn.CommandTag{}, m.err
	}

	seller := args[0].(string)
	switch {
	case strings.HasPrefix(sql, "INSERT"):
		if _, ok := m.counters[seller]; ok {
			return pgconn.NewCommandTag("INSERT 0 0"), nil
		}
		m.counters[seller] = args[1].(int64)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.HasPrefix(sql, "UPDATE"):
		current, ok := m.counters[seller]
		if !ok || current != args[1].(int64) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		m.counters[seller] = args[2].(int64)
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected statement")
}

func (m *mockQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return &mockRow{err: m.err}
	}

	seller := args[0].(string)
	switch {
	case strings.HasPrefix(sql, "SELECT"):
		v, ok := m.counters[seller]
		if !ok {
			return &mockRow{err: pgx.ErrNoRows}
		}
		return &mockRow{val: v}
	case strings.HasPrefix(sql, "INSERT"):
		m.counters[seller]++
		return &mockRow{val: m.counters[seller]}
	}
	return &mockRow{err: errors.New("unexpected statement")}
}

func TestPostgresStore_LoadMissing(t *testing.T) {
	store := NewPostgresStore(newMockQuerier())

	v, exists, err := store.Load(context.Background(), "seller-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Zero(t, v)
}

func TestPostgresStore_CompareAndSwap(t *testing.T) {
	q := newMockQuerier()
	store := NewPostgresStore(q)
	ctx := context.Background()

	ok, err := store.CompareAndSwap(ctx, "seller-1", 0, 1, false)
	require.NoError(t, err)
	assert.True(t, ok)

	// Row now exists, a second create loses.
	ok, err = store.CompareAndSwap(ctx, "seller-1", 0, 1, false)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.CompareAndSwap(ctx, "seller-1", 1, 2, true)
	require.NoError(t, err)
	assert.True(t, ok)

	// Stale expectation loses.
	ok, err = store.CompareAndSwap(ctx, "seller-1", 1, 2, true)
	require.NoError(t, err)
	assert.False(t, ok)

	v, exists, err := store.Load(ctx, "seller-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(2), v)
}

func TestPostgresStore_Increment(t *testing.T) {
	store := NewPostgresStore(newMockQuerier())
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.Increment(ctx, "seller-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestPostgresStore_Errors(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection reset")
	store := NewPostgresStore(q)
	ctx := context.Background()

	_, _, err := store.Load(ctx, "seller-1")
	assert.ErrorContains(t, err, "connection reset")

	_, err = store.CompareAndSwap(ctx, "seller-1", 0, 1, false)
	assert.ErrorContains(t, err, "connection reset")

	_, err = store.Increment(ctx, "seller-1")
	assert.ErrorContains(t, err, "connection reset")
}

func TestService_OverPostgresStore(t *testing.T) {
	for _, strategy := range []corenumerator.Strategy{corenumerator.StrategyAtomic, corenumerator.StrategyCompareAndSwap} {
		t.Run(strategy.String(), func(t *testing.T) {
			cfg := corenumerator.DefaultConfig()
			cfg.Strategy = strategy
			cfg.MaxRetries = 200
			svc := New(NewPostgresStore(newMockQuerier()), cfg)

			var (
				mu   sync.Mutex
				seen = make(map[string]struct{})
			)
			var wg conc.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Go(func() {
					n, err := svc.Next(context.Background(), "seller-1")
					if err != nil {
						return
					}
					mu.Lock()
					seen[n] = struct{}{}
					mu.Unlock()
				})
			}
			wg.Wait()

			assert.Len(t, seen, 10)
			assert.Contains(t, seen, "INV-0001")
			assert.Contains(t, seen, "INV-0010")
		})
	}
}

func TestService_PostgresStoreFailureIsSequenceUnavailable(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection reset")
	svc := New(NewPostgresStore(q), corenumerator.DefaultConfig())

	_, err := svc.Next(context.Background(), "seller-1")
	require.Error(t, err)
	assert.True(t, apperror.IsSequenceUnavailable(err))
}
