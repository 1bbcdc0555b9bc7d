// Copyright © 2018 One Concern

package cmd

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/oneconcern/datastore/pkg/datastore/filesystem"
	"github.com/oneconcern/datastore/pkg/datastore/instrumented"
	"github.com/oneconcern/datastore/pkg/datastore/version"
	"github.com/oneconcern/datastore/pkg/dlogger"
	"github.com/oneconcern/datastore/pkg/errors"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const versionFile = "version"

var errNewerVersion = errors.New("data store version is newer than supported")

// used to patch over the OS filesystem during test
var storeFs = afero.NewOsFs()

// storeHandle is a data store opened by a command
type storeHandle struct {
	datastore.DataStore
	l        *zap.Logger
	registry *prometheus.Registry
}

func committedParam() (datastore.Committed, error) {
	return datastore.ParseCommitted(params.key.committed)
}

func cliLogger() (*zap.Logger, error) {
	return dlogger.GetLogger(params.root.logLevel, dlogger.WithConsole())
}

// openStore opens the data store at the configured path, refusing data stores written by a newer version
func openStore() (*storeHandle, error) {
	l, err := cliLogger()
	if err != nil {
		return nil, err
	}

	base := params.root.path
	v, err := version.FromFile(storeFs, filepath.Join(base, versionFile))
	switch {
	case err == nil:
		if version.Current.Less(v) {
			return nil, errNewerVersion.WithContext("(%s > %s)", v, version.Current)
		}
		l.Debug("opening data store", zap.String("path", base), zap.Stringer("version", v))
	case errors.Is(err, os.ErrNotExist):
		l.Debug("opening unversioned data store", zap.String("path", base))
	default:
		return nil, err
	}

	registry := prometheus.NewRegistry()
	ds, err := instrumented.New(
		filesystem.New(storeFs, base, filesystem.WithLogger(l)), l, registry,
		instrumented.WithTracer(opentracing.GlobalTracer()),
	)
	if err != nil {
		return nil, err
	}
	return &storeHandle{DataStore: ds, l: l, registry: registry}, nil
}

// close flushes logs, and reports metrics when requested
func (h *storeHandle) close() {
	defer func() { _ = h.l.Sync() }()
	if !params.root.metrics {
		return
	}

	families, err := h.registry.Gather()
	if err != nil {
		h.l.Warn("could not gather metrics", zap.Error(err))
		return
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, pair := range m.GetLabel() {
				labels = append(labels, pair.GetName()+"="+pair.GetValue())
			}
			sort.Strings(labels)

			fields := []zap.Field{zap.Strings("labels", labels)}
			if c := m.GetCounter(); c != nil {
				fields = append(fields, zap.Float64("value", c.GetValue()))
			}
			if hist := m.GetHistogram(); hist != nil {
				fields = append(fields, zap.Uint64("count", hist.GetSampleCount()), zap.Float64("sum", hist.GetSampleSum()))
			}
			h.l.Info(family.GetName(), fields...)
		}
	}
}
