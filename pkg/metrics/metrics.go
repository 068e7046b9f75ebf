package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
)

var (
	mu       sync.Mutex
	storage  tstorage.Storage
	counters = make(map[string]int64)
)

// InitMetrics opens the embedded time-series store under workdir.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(24*time.Hour),
	)
	if err != nil {
		return errors.Wrap(err, "open metrics storage")
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

// SetGauge records the current value of a gauge metric.
func SetGauge(name string, value int64) {
	insert(name, float64(value))
}

// IncrCounter increments a cumulative counter and records the new value.
func IncrCounter(name string, delta int64) {
	mu.Lock()
	counters[name] += delta
	v := counters[name]
	mu.Unlock()
	insert(name, float64(v))
}

// GetCounter returns the in-process value of a counter.
func GetCounter(name string) int64 {
	mu.Lock()
	defer mu.Unlock()
	return counters[name]
}

func insert(name string, value float64) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
		},
	})
}

// Select returns raw data points for a metric in [start, end].
func Select(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return nil, nil
	}
	points, err := s.Select(name, nil, start, end)
	if err != nil {
		return nil, errors.Wrapf(err, "select metric %s", name)
	}
	return points, nil
}

// Close flushes and closes the underlying store.
func Close() error {
	mu.Lock()
	s := storage
	storage = nil
	mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Close()
}
