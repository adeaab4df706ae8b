package utilities_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/antonio-alexander/go-employee-dashboard/internal"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
	"github.com/antonio-alexander/go-employee-dashboard/internal/utilities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := utilities.NewLogger(buf)

	t.Run("Level", func(t *testing.T) {
		buf.Reset()
		err := logger.Configure(map[string]string{"LOG_LEVEL": "info"})
		require.Nil(t, err)
		logger.Debug(context.TODO(), "hidden %d", 1)
		logger.Info(context.TODO(), "shown %d", 2)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)
		entry := make(map[string]any)
		require.Nil(t, json.Unmarshal([]byte(lines[0]), &entry))
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "shown 2", entry["message"])
	})

	t.Run("CorrelationId", func(t *testing.T) {
		buf.Reset()
		err := logger.Configure(map[string]string{"LOG_LEVEL": "trace"})
		require.Nil(t, err)
		ctx := internal.CtxWithCorrelationId(context.TODO(), "abc123")
		logger.Trace(ctx, "traced")
		entry := make(map[string]any)
		require.Nil(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		assert.Equal(t, "abc123", entry["correlation_id"])
	})

	t.Run("Default", func(t *testing.T) {
		buf.Reset()
		err := logger.Configure(map[string]string{})
		require.Nil(t, err)
		logger.Info(context.TODO(), "hidden")
		logger.Error(context.TODO(), "shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("File", func(t *testing.T) {
		buf.Reset()
		filePath := filepath.Join(t.TempDir(), "dashboard.log")
		err := logger.Configure(map[string]string{
			"LOG_LEVEL":     "error",
			"LOG_FILE_PATH": filePath,
		})
		require.Nil(t, err)
		logger.Error(context.TODO(), "to both")
		assert.Contains(t, buf.String(), "to both")
		assert.FileExists(t, filePath)
	})
}

func TestCounter(t *testing.T) {
	var wg sync.WaitGroup

	counter := utilities.NewCounter()
	assert.Equal(t, data.CacheCount{}, counter.Read("all"))
	ratio, total := counter.HitRatio("all")
	assert.Zero(t, ratio)
	assert.Zero(t, total)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			counter.Count("all", utilities.OutcomeHit)
			counter.Count("department=Sales", utilities.OutcomeMiss)
		}()
	}
	wg.Wait()
	assert.Equal(t, 11, counter.Count("all", utilities.OutcomeHit))
	assert.Equal(t, 1, counter.Count("all", utilities.OutcomeDiscarded))
	assert.Equal(t, data.CacheCount{Hits: 11, Discarded: 1}, counter.Read("all"))

	counter.Count("all", utilities.OutcomeMiss)
	ratio, total = counter.HitRatio("all")
	assert.Equal(t, 12, total)
	assert.InDelta(t, 11.0/12.0, ratio, 0.0001)

	counters := counter.ReadAll()
	assert.Equal(t, 10, counters.CounterMisses["department=Sales"])
	assert.Equal(t, 1, counters.CounterDiscarded["all"])
	assert.NotContains(t, counters.CounterDiscarded, "department=Sales")
	counter.Reset()
	assert.Empty(t, counter.ReadAll().CounterHits)
}

func TestTimers(t *testing.T) {
	timers := utilities.NewTimers()

	stop := timers.Time("load")
	time.Sleep(10 * time.Millisecond)
	elapsed := stop()
	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
	assert.Equal(t, elapsed, stop())
	stop = timers.Time("load")
	elapsed += stop()

	all := timers.ReadAll()
	assert.Equal(t, elapsed.Nanoseconds(), all.Totals["load"])
	assert.Equal(t, elapsed.Nanoseconds()/2, all.Averages["load"])
	timers.Clear()
	assert.Empty(t, timers.ReadAll().Totals)
}
