// Copyright © 2018 One Concern

// Package instrumented decorates a data store with logs, traces and prometheus metrics.
package instrumented

import (
	"strings"
	"time"

	"github.com/oneconcern/datastore/pkg/datastore"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	namespace = "datastore"

	outcomeOK    = "ok"
	outcomeError = "error"

	// committed label for operations which do not depend on a committed state
	noState = "none"
)

// Option for the instrumented data store
type Option func(*instrumentedStore)

// WithTracer traces every operation as a span. Operations are not traced by default.
func WithTracer(tr opentracing.Tracer) Option {
	return func(i *instrumentedStore) {
		if tr != nil {
			i.tr = tr
		}
	}
}

// New wraps a data store, logging and counting every operation.
//
// Metrics are registered on reg: a nil reg leaves them unregistered.
func New(ds datastore.DataStore, l *zap.Logger, reg prometheus.Registerer, opts ...Option) (datastore.DataStore, error) {
	if l == nil {
		l = zap.NewNop()
	}
	i := &instrumentedStore{
		ds: ds,
		l:  l.With(zap.String("store", name(ds))),
		tr: opentracing.NoopTracer{},
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Number of data store operations",
		}, []string{"op", "committed", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of data store operations",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),
	}
	for _, apply := range opts {
		apply(i)
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{i.operations, i.durations} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return i, nil
}

func name(ds datastore.DataStore) string {
	if s, ok := ds.(interface{ String() string }); ok {
		return s.String()
	}
	return "datastore"
}

type instrumentedStore struct {
	ds         datastore.DataStore
	l          *zap.Logger
	tr         opentracing.Tracer
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

func (i *instrumentedStore) String() string { return name(i.ds) }

func (i *instrumentedStore) opName(op string) string {
	return strings.Join([]string{namespace, i.String(), op}, ".")
}

// observed runs action in a span, then logs and counts it
func (i *instrumentedStore) observed(op, committed string, fields []zap.Field, action func() error) {
	span := i.tr.StartSpan(i.opName(op), opentracing.Tag{Key: "committed", Value: committed})
	defer span.Finish()

	start := time.Now()
	err := action()
	elapsed := time.Since(start)

	if err != nil {
		ext.Error.Set(span, true)
		span.LogKV("error", err.Error())
	}

	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	i.operations.WithLabelValues(op, committed, outcome).Inc()
	i.durations.WithLabelValues(op).Observe(elapsed.Seconds())

	fields = append(fields, zap.String("committed", committed), zap.Duration("duration", elapsed))
	if err != nil {
		i.l.Debug(op, append(fields, zap.Error(err))...)
		return
	}
	i.l.Debug(op, fields...)
}

func (i *instrumentedStore) KeyPopulated(key datastore.Key, committed datastore.Committed) (ok bool, err error) {
	i.observed("key_populated", committed.String(), []zap.Field{zap.String("key", key.Name())}, func() error {
		ok, err = i.ds.KeyPopulated(key, committed)
		return err
	})
	return
}

func (i *instrumentedStore) ListPopulatedKeys(prefix string, committed datastore.Committed) (keys datastore.KeySet, err error) {
	i.observed("list_populated_keys", committed.String(), []zap.Field{zap.String("prefix", prefix)}, func() error {
		keys, err = i.ds.ListPopulatedKeys(prefix, committed)
		return err
	})
	return
}

func (i *instrumentedStore) ListPopulatedMetadata(prefix, metadataName string) (result map[datastore.Key]datastore.KeySet, err error) {
	fields := []zap.Field{zap.String("prefix", prefix), zap.String("metadata", metadataName)}
	i.observed("list_populated_metadata", datastore.Live.String(), fields, func() error {
		result, err = i.ds.ListPopulatedMetadata(prefix, metadataName)
		return err
	})
	return
}

func (i *instrumentedStore) GetKey(key datastore.Key, committed datastore.Committed) (value string, ok bool, err error) {
	i.observed("get_key", committed.String(), []zap.Field{zap.String("key", key.Name())}, func() error {
		value, ok, err = i.ds.GetKey(key, committed)
		return err
	})
	return
}

func (i *instrumentedStore) SetKey(key datastore.Key, value string, committed datastore.Committed) (err error) {
	i.observed("set_key", committed.String(), []zap.Field{zap.String("key", key.Name())}, func() error {
		err = i.ds.SetKey(key, value, committed)
		return err
	})
	return
}

func (i *instrumentedStore) SetKeys(pairs map[datastore.Key]string, committed datastore.Committed) (err error) {
	i.observed("set_keys", committed.String(), []zap.Field{zap.Int("keys", len(pairs))}, func() error {
		err = i.ds.SetKeys(pairs, committed)
		return err
	})
	return
}

func (i *instrumentedStore) GetMetadataRaw(metadataKey, dataKey datastore.Key) (value string, ok bool, err error) {
	fields := []zap.Field{zap.String("metadata", metadataKey.Name()), zap.String("key", dataKey.Name())}
	i.observed("get_metadata_raw", datastore.Live.String(), fields, func() error {
		value, ok, err = i.ds.GetMetadataRaw(metadataKey, dataKey)
		return err
	})
	return
}

// GetMetadata resolves inheritance through the decorated GetMetadataRaw, so that each lookup is observed
func (i *instrumentedStore) GetMetadata(metadataKey, dataKey datastore.Key) (value string, ok bool, err error) {
	fields := []zap.Field{zap.String("metadata", metadataKey.Name()), zap.String("key", dataKey.Name())}
	i.observed("get_metadata", datastore.Live.String(), fields, func() error {
		value, ok, err = datastore.InheritedMetadata(i, metadataKey, dataKey)
		return err
	})
	return
}

func (i *instrumentedStore) SetMetadata(metadataKey, dataKey datastore.Key, value string) (err error) {
	fields := []zap.Field{zap.String("metadata", metadataKey.Name()), zap.String("key", dataKey.Name())}
	i.observed("set_metadata", datastore.Live.String(), fields, func() error {
		err = i.ds.SetMetadata(metadataKey, dataKey, value)
		return err
	})
	return
}

func (i *instrumentedStore) Commit() (keys datastore.KeySet, err error) {
	i.observed("commit", noState, nil, func() error {
		keys, err = i.ds.Commit()
		if err == nil {
			i.l.Info("committed keys", zap.Int("keys", keys.Len()))
		}
		return err
	})
	return
}
