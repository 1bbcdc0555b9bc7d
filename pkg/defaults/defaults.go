// Copyright © 2018 One Concern

// Package defaults populates a data store with default settings and metadata, described in TOML.
//
// Tables under "settings" hold data keys: their leaves are stored as scalars.
// Tables under "metadata" hold metadata: the last segment of a leaf names the metadata key,
// the other segments name the data key it is set on.
//
//	[settings.ntp]
//	time-servers = ["pool.ntp.org"]
//
//	[metadata.settings.ntp]
//	affected-services = ["ntp"]
package defaults

import (
	"io"
	"strings"

	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/oneconcern/datastore/pkg/datastore/serialization"
	"github.com/oneconcern/datastore/pkg/errors"
	toml "github.com/pelletier/go-toml"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	settingsTable = "settings"
	metadataTable = "metadata"
)

var (
	// ErrParse indicates a defaults file which is not valid TOML
	ErrParse = errors.New("unable to parse defaults")

	// ErrFormat indicates defaults which do not map to keys
	ErrFormat = errors.New("invalid defaults")

	// ErrRead indicates a defaults file which cannot be read
	ErrRead = errors.New("unable to read defaults file")
)

// Defaults hold the default values of data keys, and metadata
type Defaults struct {
	Settings map[datastore.Key]string
	Metadata map[datastore.Key]map[datastore.Key]string // data key => metadata key => value
}

// Load defaults from some TOML document
func Load(r io.Reader) (*Defaults, error) {
	tree, err := toml.LoadReader(r)
	if err != nil {
		return nil, ErrParse.Wrap(err)
	}
	doc := tree.ToMap()

	d := &Defaults{
		Settings: make(map[datastore.Key]string),
		Metadata: make(map[datastore.Key]map[datastore.Key]string),
	}

	for table := range doc {
		if table != settingsTable && table != metadataTable {
			return nil, ErrFormat.WithContext("unexpected top-level table %q", table)
		}
	}

	if settings, ok := doc[settingsTable]; ok {
		pairs, err := tablePairs(settingsTable, settings)
		if err != nil {
			return nil, err
		}
		if d.Settings, err = datastore.PairsFromMap(pairs); err != nil {
			return nil, ErrFormat.Wrap(err)
		}
	}

	if metadata, ok := doc[metadataTable]; ok {
		pairs, err := tablePairs(metadataTable, metadata)
		if err != nil {
			return nil, err
		}
		for name, value := range pairs {
			if err := d.addMetadata(strings.TrimPrefix(name, metadataTable+datastore.KeySeparator), value); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func tablePairs(table string, content interface{}) (map[string]string, error) {
	m, ok := content.(map[string]interface{})
	if !ok {
		return nil, ErrFormat.WithContext("%q must be a table", table)
	}
	pairs, err := serialization.ToPairsWithPrefix(table, m)
	if err != nil {
		return nil, ErrFormat.Wrap(err)
	}
	return pairs, nil
}

func (d *Defaults) addMetadata(name, value string) error {
	idx := strings.LastIndex(name, datastore.KeySeparator)
	if idx < 0 {
		return ErrFormat.WithContext("metadata %q is not set on any data key", name)
	}

	dataKey, err := datastore.NewKey(datastore.Data, name[:idx])
	if err != nil {
		return ErrFormat.Wrap(err)
	}
	metadataKey, err := datastore.NewKey(datastore.Meta, name[idx+1:])
	if err != nil {
		return ErrFormat.Wrap(err)
	}

	entries, ok := d.Metadata[dataKey]
	if !ok {
		entries = make(map[datastore.Key]string)
		d.Metadata[dataKey] = entries
	}
	entries[metadataKey] = value
	return nil
}

// LoadFile loads defaults from a TOML file
func LoadFile(fs afero.Fs, path string) (*Defaults, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, ErrRead.WithContext("%s", path).Wrap(err)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

type options struct {
	l *zap.Logger
}

// Option for Populate
type Option func(*options)

// WithLogger logs the keys being populated
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.l = l
		}
	}
}

// Populate writes defaults to the live data store.
//
// Data keys which already hold a live value are left untouched, so that populating is
// idempotent and never overwrites user settings. Metadata is always written.
// The data keys written are returned.
func Populate(ds datastore.DataStore, d *Defaults, opts ...Option) (datastore.KeySet, error) {
	o := options{l: zap.NewNop()}
	for _, apply := range opts {
		apply(&o)
	}

	missing := make(map[datastore.Key]string)
	for key, value := range d.Settings {
		populated, err := ds.KeyPopulated(key, datastore.Live)
		if err != nil {
			return nil, err
		}
		if populated {
			o.l.Debug("keeping existing value", zap.String("key", key.Name()))
			continue
		}
		missing[key] = value
	}

	if err := ds.SetKeys(missing, datastore.Live); err != nil {
		return nil, err
	}

	for dataKey, entries := range d.Metadata {
		for metadataKey, value := range entries {
			if err := ds.SetMetadata(metadataKey, dataKey, value); err != nil {
				return nil, err
			}
		}
	}

	written := make(datastore.KeySet, len(missing))
	for key := range missing {
		written.Add(key)
	}
	o.l.Info("populated defaults", zap.Int("keys", written.Len()), zap.Int("metadata", len(d.Metadata)))
	return written, nil
}
