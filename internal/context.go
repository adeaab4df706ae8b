package internal

import (
	"context"
	"os"
	"sync"
)

type ctxKeyCorrelationId struct{}

func CtxWithCorrelationId(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationId{}, correlationId)
}

func CorrelationIdFromCtx(ctx context.Context) string {
	item := ctx.Value(ctxKeyCorrelationId{})
	correlationId, ok := item.(string)
	if ok {
		return correlationId
	}
	return ""
}

// EnsureCorrelationId returns a context that carries a correlation id,
// generating one if none is present.
func EnsureCorrelationId(ctx context.Context) context.Context {
	if CorrelationIdFromCtx(ctx) != "" {
		return ctx
	}
	return CtxWithCorrelationId(ctx, GenerateId())
}

// LaunchContext returns a context that's cancelled once a signal is received
// on osSignal or cancel is called; wg tracks the goroutine waiting on it.
func LaunchContext(wg *sync.WaitGroup, osSignal chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()

		select {
		case <-ctx.Done():
		case <-osSignal:
			cancel()
		}
	}()
	return ctx, cancel
}
