// Package metrics instruments store.Storage and store.DB with Prometheus
// counters and histograms.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AmitPr/libkv/store"
)

const (
	MetricOperations   = "operations_total"
	MetricErrors       = "errors_total"
	MetricDuration     = "operation_duration_seconds"
	MetricScanned      = "range_entries_total"
	MetricTransactions = "transactions_total"
)

// Operation labels.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpDelete = "delete"
	OpRange  = "range"
	OpView   = "view"
	OpUpdate = "update"
)

// Collector owns the metric vectors. One Collector may wrap any number of
// stores; their operations are aggregated.
type Collector struct {
	ops      *prometheus.CounterVec
	errs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	scanned  prometheus.Counter
	txns     *prometheus.CounterVec
}

// NewCollector creates unregistered metrics under namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      MetricOperations,
				Help:      "Raw storage operations by type.",
			},
			[]string{"op"},
		),
		errs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      MetricErrors,
				Help:      "Raw storage operations that failed, excluding missing keys.",
			},
			[]string{"op"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      MetricDuration,
				Help:      "Latency of raw storage operations.",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"op"},
		),
		scanned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      MetricScanned,
				Help:      "Entries yielded by range scans.",
			},
		),
		txns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      MetricTransactions,
				Help:      "Transactions by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
	}
}

// Register adds every metric to r.
func (c *Collector) Register(r prometheus.Registerer) error {
	for _, m := range []prometheus.Collector{c.ops, c.errs, c.duration, c.scanned, c.txns} {
		if err := r.Register(m); err != nil {
			return errors.Wrap(err, "register store metrics")
		}
	}
	return nil
}

func (c *Collector) observe(op string, start time.Time, err error) {
	c.ops.WithLabelValues(op).Inc()
	c.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		c.errs.WithLabelValues(op).Inc()
	}
}

// Storage returns s with every operation recorded.
func (c *Collector) Storage(s store.Storage) store.Storage {
	return &storage{s: s, c: c}
}

type storage struct {
	s store.Storage
	c *Collector
}

func (s *storage) GetRaw(key []byte) ([]byte, error) {
	start := time.Now()
	v, err := s.s.GetRaw(key)
	s.c.observe(OpGet, start, err)
	return v, err
}

func (s *storage) SetRaw(key, value []byte) error {
	start := time.Now()
	err := s.s.SetRaw(key, value)
	s.c.observe(OpSet, start, err)
	return err
}

func (s *storage) DeleteRaw(key []byte) error {
	start := time.Now()
	err := s.s.DeleteRaw(key)
	s.c.observe(OpDelete, start, err)
	return err
}

func (s *storage) RangeRaw(low, high store.Bound, order store.Order) (store.RawIterator, error) {
	start := time.Now()
	it, err := s.s.RangeRaw(low, high, order)
	s.c.observe(OpRange, start, err)
	if err != nil {
		return nil, err
	}
	return &countingIterator{RawIterator: it, scanned: s.c.scanned}, nil
}

type countingIterator struct {
	store.RawIterator
	scanned prometheus.Counter
}

func (it *countingIterator) Next() bool {
	if it.RawIterator.Next() {
		it.scanned.Inc()
		return true
	}
	return false
}

// DB returns db with its transactions and their operations recorded.
func (c *Collector) DB(db store.DB) store.DB {
	return &instrumentedDB{db: db, c: c}
}

type instrumentedDB struct {
	db store.DB
	c  *Collector
}

type txn struct {
	store.Storage
	inner store.Txn
}

func (t *txn) Writable() bool { return t.inner.Writable() }

func (db *instrumentedDB) wrap(fn func(store.Txn) error) func(store.Txn) error {
	return func(inner store.Txn) error {
		return fn(&txn{Storage: db.c.Storage(inner), inner: inner})
	}
}

func (db *instrumentedDB) run(kind string, call func(func(store.Txn) error) error, fn func(store.Txn) error) error {
	start := time.Now()
	err := call(db.wrap(fn))
	db.c.duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	outcome := "commit"
	switch {
	case errors.Is(err, store.ErrConflict):
		outcome = "conflict"
	case err != nil:
		outcome = "rollback"
	}
	db.c.txns.WithLabelValues(kind, outcome).Inc()
	return err
}

func (db *instrumentedDB) View(fn func(store.Txn) error) error {
	return db.run(OpView, db.db.View, fn)
}

func (db *instrumentedDB) Update(fn func(store.Txn) error) error {
	return db.run(OpUpdate, db.db.Update, fn)
}

func (db *instrumentedDB) Close() error { return db.db.Close() }
