package utils

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Circuit Breaker Tests

func TestCircuitBreaker_NewCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker("test")

	assert.Equal(t, "test", cb.Name())
	assert.Equal(t, uint32(10), cb.minRequests)
	assert.Equal(t, 60*time.Second, cb.interval)
	assert.Equal(t, 30*time.Second, cb.timeout)
	assert.Equal(t, 0.6, cb.failureRatio)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_ExecuteSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test")
	ctx := context.Background()

	result, err := cb.Execute(ctx, func() (any, error) {
		return "success", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, StateClosed, cb.state)
	assert.Equal(t, uint32(1), cb.counts.Requests)
	assert.Equal(t, uint32(1), cb.counts.TotalSuccesses)
}

func TestCircuitBreaker_ExecuteFailure(t *testing.T) {
	cb := NewCircuitBreaker("test")
	ctx := context.Background()

	expectedError := errors.New("test error")
	result, err := cb.Execute(ctx, func() (any, error) {
		return nil, expectedError
	})

	assert.Equal(t, expectedError, err)
	assert.Nil(t, result)
	assert.Equal(t, uint32(1), cb.counts.TotalFailures)
}

func TestCircuitBreaker_ClosedToOpen(t *testing.T) {
	cb := NewCircuitBreaker("test")
	cb.minRequests = 5
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(ctx, func() (any, error) { return "success", nil })
		assert.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := cb.Execute(ctx, func() (any, error) { return nil, errors.New("failure") })
		assert.Error(t, err)
	}

	assert.Equal(t, StateOpen, cb.State())

	_, err := cb.Execute(ctx, func() (any, error) {
		t.Fatal("must not run while the circuit is open")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test")
	cb.minRequests = 2
	cb.timeout = 50 * time.Millisecond
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		cb.Execute(ctx, func() (any, error) { return nil, errors.New("failure") })
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	_, err := cb.Execute(ctx, func() (any, error) { return "ok", nil })
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test")
	cb.minRequests = 2
	cb.timeout = 50 * time.Millisecond
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		cb.Execute(ctx, func() (any, error) { return nil, errors.New("failure") })
	}
	time.Sleep(80 * time.Millisecond)

	_, err := cb.Execute(ctx, func() (any, error) { return nil, errors.New("still down") })
	assert.EqualError(t, err, "still down")
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_CancelledContextIsNotAFailure(t *testing.T) {
	cb := NewCircuitBreaker("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cb.Execute(ctx, func() (any, error) { return nil, ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint32(0), cb.counts.TotalFailures)
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	cb := NewCircuitBreaker("concurrent-test")
	ctx := context.Background()

	var wg sync.WaitGroup
	numGoroutines := 100
	successCount := 0
	mu := sync.Mutex{}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			_, err := cb.Execute(ctx, func() (any, error) {
				time.Sleep(time.Millisecond)
				if id%10 == 0 {
					return nil, errors.New("simulated failure")
				}
				return "success", nil
			})

			if err == nil {
				mu.Lock()
				successCount++
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()

	assert.Equal(t, 90, successCount)
	assert.Equal(t, uint32(numGoroutines), cb.counts.Requests)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_PanicRecovery(t *testing.T) {
	cb := NewCircuitBreaker("panic-test")
	ctx := context.Background()

	assert.Panics(t, func() {
		cb.Execute(ctx, func() (any, error) {
			panic("test panic")
		})
	})

	result, err := cb.Execute(ctx, func() (any, error) {
		return "recovery", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "recovery", result)
}

func TestCircuitBreaker_ReadyToTrip(t *testing.T) {
	cb := NewCircuitBreaker("trip-test")

	tests := []struct {
		name           string
		requests       uint32
		failures       uint32
		expectedResult bool
	}{
		{"Not enough requests", 5, 5, false},
		{"High failure ratio", 10, 8, true},
		{"Low failure ratio", 10, 3, false},
		{"Exact failure ratio threshold", 10, 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb.counts.Requests = tt.requests
			cb.counts.TotalFailures = tt.failures

			assert.Equal(t, tt.expectedResult, cb.readyToTrip())
		})
	}
}

func TestCall_KeepsResultType(t *testing.T) {
	cb := NewCircuitBreaker("typed")

	n, err := Call(context.Background(), cb, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	s, err := Call(context.Background(), cb, func() (string, error) { return "", errors.New("boom") })
	assert.EqualError(t, err, "boom")
	assert.Empty(t, s)
}

// Redis Client Tests

func TestRedisHealthCheck_Success(t *testing.T) {
	db, mock := redismock.NewClientMock()

	mock.ExpectPing().SetVal("PONG")

	err := RedisHealthCheck(context.Background(), db)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisHealthCheck_Failure(t *testing.T) {
	db, mock := redismock.NewClientMock()

	mock.ExpectPing().SetErr(errors.New("connection failed"))

	err := RedisHealthCheck(context.Background(), db)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis health check failed")
	assert.Contains(t, err.Error(), "connection failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewBatchID(t *testing.T) {
	at := time.Date(2025, 6, 1, 23, 30, 0, 0, time.FixedZone("PDT", -7*3600))

	id, err := NewBatchID(at)
	require.NoError(t, err)
	assert.Regexp(t, `^20250602-[0-9A-F]{12}$`, id)

	other, err := NewBatchID(at)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

// Benchmark Tests

func BenchmarkCircuitBreaker_Execute_Success(b *testing.B) {
	cb := NewCircuitBreaker("benchmark")
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cb.Execute(ctx, func() (any, error) {
			return "success", nil
		})
	}
}

func BenchmarkCircuitBreaker_Execute_Concurrent(b *testing.B) {
	cb := NewCircuitBreaker("benchmark-concurrent")
	ctx := context.Background()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			cb.Execute(ctx, func() (any, error) {
				return "success", nil
			})
		}
	})
}
