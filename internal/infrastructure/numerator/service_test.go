package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickinvoice/internal/core/apperror"
	corenumerator "quickinvoice/internal/core/numerator"
	"quickinvoice/internal/infrastructure/storage/memory"
)

func testConfig(strategy corenumerator.Strategy) corenumerator.Config {
	cfg := corenumerator.DefaultConfig()
	cfg.Strategy = strategy
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	return cfg
}

// --- store doubles ---

// conflictingStore always loses the compare-and-swap race.
type conflictingStore struct {
	*memory.CounterStore
	swaps int
}

func (s *conflictingStore) CompareAndSwap(ctx context.Context, sellerID string, old, next int64, exists bool) (bool, error) {
	s.swaps++
	return false, nil
}

// failingStore returns err from every call.
type failingStore struct {
	err   error
	loads int
}

func (s *failingStore) Load(ctx context.Context, sellerID string) (int64, bool, error) {
	s.loads++
	return 0, false, s.err
}

func (s *failingStore) CompareAndSwap(ctx context.Context, sellerID string, old, next int64, exists bool) (bool, error) {
	return false, s.err
}

func (s *failingStore) Increment(ctx context.Context, sellerID string) (int64, error) {
	return 0, s.err
}

// --- tests ---

func TestService_Config(t *testing.T) {
	cfg := testConfig(corenumerator.StrategyCompareAndSwap)
	cfg.Prefix = "ORD"

	svc := New(memory.NewCounterStore(), cfg)

	assert.Equal(t, cfg, svc.Config())
}

func TestService_Next_FirstNumber(t *testing.T) {
	for _, strategy := range []corenumerator.Strategy{corenumerator.StrategyAtomic, corenumerator.StrategyCompareAndSwap} {
		t.Run(strategy.String(), func(t *testing.T) {
			svc := New(memory.NewCounterStore(), testConfig(strategy))

			num, err := svc.Next(context.Background(), "seller-1")
			require.NoError(t, err)
			assert.Equal(t, "INV-0001", num)

			num, err = svc.Next(context.Background(), "seller-1")
			require.NoError(t, err)
			assert.Equal(t, "INV-0002", num)
		})
	}
}

func TestService_Next_PerSellerSequences(t *testing.T) {
	svc := New(memory.NewCounterStore(), testConfig(corenumerator.StrategyAtomic))
	ctx := context.Background()

	a1, _ := svc.Next(ctx, "seller-a")
	a2, _ := svc.Next(ctx, "seller-a")
	b1, _ := svc.Next(ctx, "seller-b")

	assert.Equal(t, "INV-0001", a1)
	assert.Equal(t, "INV-0002", a2)
	assert.Equal(t, "INV-0001", b1)
}

func TestService_Next_WidensPastPadWidth(t *testing.T) {
	store := memory.NewCounterStore()
	store.Set("seller-1", 9999)
	svc := New(store, testConfig(corenumerator.StrategyAtomic))

	num, err := svc.Next(context.Background(), "seller-1")
	require.NoError(t, err)
	assert.Equal(t, "INV-10000", num)
}

func TestService_Next_RequiresSeller(t *testing.T) {
	svc := New(memory.NewCounterStore(), testConfig(corenumerator.StrategyAtomic))

	_, err := svc.Next(context.Background(), "")
	assert.True(t, apperror.IsValidation(err))
}

func TestService_Next_ConcurrentDistinct(t *testing.T) {
	const workers = 20

	for _, strategy := range []corenumerator.Strategy{corenumerator.StrategyAtomic, corenumerator.StrategyCompareAndSwap} {
		t.Run(strategy.String(), func(t *testing.T) {
			store := memory.NewCounterStore()
			store.Set("seller-1", 1)

			cfg := testConfig(strategy)
			cfg.MaxRetries = 200
			svc := New(store, cfg)

			var (
				mu      sync.Mutex
				numbers = make(map[string]struct{})
				errs    []error
			)

			var wg conc.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Go(func() {
					num, err := svc.Next(context.Background(), "seller-1")
					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						errs = append(errs, err)
						return
					}
					numbers[num] = struct{}{}
				})
			}
			wg.Wait()

			require.Empty(t, errs)
			assert.Len(t, numbers, workers)
			assert.Contains(t, numbers, "INV-0002")
			assert.Contains(t, numbers, "INV-0021")

			last, err := svc.Peek(context.Background(), "seller-1")
			require.NoError(t, err)
			assert.Equal(t, int64(workers+1), last)
		})
	}
}

func TestService_Next_TwoConcurrentAfterFirst(t *testing.T) {
	store := memory.NewCounterStore()
	svc := New(store, testConfig(corenumerator.StrategyCompareAndSwap))
	ctx := context.Background()

	first, err := svc.Next(ctx, "seller-1")
	require.NoError(t, err)
	require.Equal(t, "INV-0001", first)

	results := make([]string, 2)
	var wg conc.WaitGroup
	for i := range results {
		i := i
		wg.Go(func() {
			num, err := svc.Next(ctx, "seller-1")
			if err == nil {
				results[i] = num
			}
		})
	}
	wg.Wait()

	assert.ElementsMatch(t, []string{"INV-0002", "INV-0003"}, results)
}

func TestService_Next_CompareAndSwapExhausted(t *testing.T) {
	store := &conflictingStore{CounterStore: memory.NewCounterStore()}
	cfg := testConfig(corenumerator.StrategyCompareAndSwap)
	cfg.MaxRetries = 3
	svc := New(store, cfg)

	_, err := svc.Next(context.Background(), "seller-1")
	require.Error(t, err)
	assert.True(t, apperror.IsSequenceUnavailable(err))
	assert.True(t, apperror.IsRetryable(err))
	assert.Equal(t, 4, store.swaps, "initial attempt plus MaxRetries")

	// Counter is untouched after exhaustion.
	last, err := svc.Peek(context.Background(), "seller-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}

func TestService_Next_StoreErrorIsNotRetried(t *testing.T) {
	store := &failingStore{err: errors.New("connection refused")}
	svc := New(store, testConfig(corenumerator.StrategyCompareAndSwap))

	_, err := svc.Next(context.Background(), "seller-1")
	require.Error(t, err)
	assert.True(t, apperror.IsSequenceUnavailable(err))
	assert.Equal(t, 1, store.loads)
	assert.ErrorIs(t, err, store.err)
}

func TestService_Next_AtomicStoreError(t *testing.T) {
	store := &failingStore{err: errors.New("deadlock detected")}
	svc := New(store, testConfig(corenumerator.StrategyAtomic))

	_, err := svc.Next(context.Background(), "seller-1")
	assert.True(t, apperror.IsSequenceUnavailable(err))
}

func TestService_Next_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New(memory.NewCounterStore(), testConfig(corenumerator.StrategyCompareAndSwap))
	_, err := svc.Next(ctx, "seller-1")
	assert.True(t, apperror.IsSequenceUnavailable(err))
}
