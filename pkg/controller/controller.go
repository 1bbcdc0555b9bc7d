// Copyright © 2018 One Concern

// Package controller reads and writes settings in a data store.
//
// It is the data store facing part of a configuration server: requests are expressed with
// settings and key names, and turned into data store operations.
package controller

import (
	"github.com/oneconcern/datastore/pkg/controller/status"
	"github.com/oneconcern/datastore/pkg/datastore"
	"github.com/oneconcern/datastore/pkg/datastore/deserialization"
	"github.com/oneconcern/datastore/pkg/datastore/serialization"
	"github.com/oneconcern/datastore/pkg/model"
	"go.uber.org/zap"
)

const settingsRoot = "settings"

// Option for controller operations
type Option func(*options)

type options struct {
	l *zap.Logger
}

// WithLogger sets a logger for the operation
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.l = l
		}
	}
}

func defaultOptions(opts []Option) options {
	o := options{l: zap.NewNop()}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// GetSettings returns all settings. Some settings are always expected.
func GetSettings(ds datastore.DataStore, committed datastore.Committed, opts ...Option) (model.Settings, error) {
	result, found, err := getSettingsPrefix(ds, datastore.SettingsPrefix, committed, opts)
	if err != nil {
		return model.Settings{}, err
	}
	if !found {
		return model.Settings{}, status.ErrMissingData.WithContext("under %q (%s)", datastore.SettingsPrefix, committed)
	}
	return result, nil
}

// GetSettingsPrefix returns the settings with a key starting with "settings." followed by prefix.
//
// Settings are empty when no key matches.
func GetSettingsPrefix(ds datastore.DataStore, prefix string, committed datastore.Committed, opts ...Option) (model.Settings, error) {
	result, _, err := getSettingsPrefix(ds, datastore.SettingsPrefix+prefix, committed, opts)
	return result, err
}

func getSettingsPrefix(ds datastore.DataStore, prefix string, committed datastore.Committed, opts []Option) (model.Settings, bool, error) {
	s := defaultOptions(opts)

	pairs, err := datastore.GetPrefix(ds, prefix, committed)
	if err != nil {
		return model.Settings{}, false, status.ErrDataStore.Wrap(err)
	}
	s.l.Debug("found settings", zap.String("prefix", prefix), zap.Stringer("committed", committed), zap.Int("keys", len(pairs)))
	if len(pairs) == 0 {
		return model.Settings{}, false, nil
	}

	var result model.Settings
	if err := deserialization.FromMapWithPrefix(settingsRoot, pairs, &result, deserialization.WithLogger(s.l)); err != nil {
		return model.Settings{}, false, status.ErrDeserialization.Wrap(err)
	}
	return result, true, nil
}

// GetSettingsKeys returns the settings for some specific data keys.
//
// Keys which are not populated are skipped.
func GetSettingsKeys(ds datastore.DataStore, names []string, committed datastore.Committed, opts ...Option) (model.Settings, error) {
	s := defaultOptions(opts)

	keys, err := datastore.NewKeys(datastore.Data, names...)
	if err != nil {
		return model.Settings{}, status.ErrInvalidKey.Wrap(err)
	}

	pairs := make(map[string]string, len(keys))
	for _, key := range keys {
		value, ok, err := ds.GetKey(key, committed)
		if err != nil {
			return model.Settings{}, status.ErrDataStore.Wrap(err)
		}
		if !ok {
			s.l.Debug("requested key is not populated", zap.String("key", key.Name()))
			continue
		}
		pairs[key.Name()] = value
	}

	var result model.Settings
	if err := deserialization.FromMapWithPrefix(settingsRoot, pairs, &result, deserialization.WithLogger(s.l)); err != nil {
		return model.Settings{}, status.ErrDeserialization.Wrap(err)
	}
	return result, nil
}

// SetSettings stages settings in pending, until committed
func SetSettings(ds datastore.DataStore, settings *model.Settings, opts ...Option) error {
	s := defaultOptions(opts)

	flat, err := serialization.ToPairsWithPrefix(settingsRoot, settings)
	if err != nil {
		return status.ErrSerialization.Wrap(err)
	}
	pairs, err := datastore.PairsFromMap(flat)
	if err != nil {
		return status.ErrSerialization.Wrap(err)
	}

	s.l.Debug("staging settings", zap.Int("keys", len(pairs)))
	if err := ds.SetKeys(pairs, datastore.Pending); err != nil {
		return status.ErrDataStore.Wrap(err)
	}
	return nil
}

// GetMetadataForDataKeys returns some metadata for data keys, as set on each key or inherited
// from its ancestors. Data keys without such metadata are omitted.
func GetMetadataForDataKeys(ds datastore.DataStore, metadataName string, names []string, opts ...Option) (map[string]interface{}, error) {
	s := defaultOptions(opts)

	metadataKey, err := datastore.NewKey(datastore.Meta, metadataName)
	if err != nil {
		return nil, status.ErrInvalidKey.Wrap(err)
	}
	keys, err := datastore.NewKeys(datastore.Data, names...)
	if err != nil {
		return nil, status.ErrInvalidKey.Wrap(err)
	}

	result := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		raw, ok, err := ds.GetMetadata(metadataKey, key)
		if err != nil {
			return nil, status.ErrDataStore.Wrap(err)
		}
		if !ok {
			s.l.Debug("no metadata for key", zap.String("metadata", metadataName), zap.String("key", key.Name()))
			continue
		}
		var value interface{}
		if err := datastore.DeserializeScalar(raw, &value); err != nil {
			return nil, status.ErrDeserialization.WithContext("metadata %q for key %q", metadataName, key.Name()).Wrap(err)
		}
		result[key.Name()] = value
	}
	return result, nil
}

// GetMetadataForAllDataKeys returns some metadata for all data keys it is directly set on
func GetMetadataForAllDataKeys(ds datastore.DataStore, metadataName string, opts ...Option) (map[string]interface{}, error) {
	s := defaultOptions(opts)

	if _, err := datastore.NewKey(datastore.Meta, metadataName); err != nil {
		return nil, status.ErrInvalidKey.Wrap(err)
	}

	found, err := datastore.GetMetadataPrefix(ds, "", metadataName)
	if err != nil {
		return nil, status.ErrDataStore.Wrap(err)
	}
	s.l.Debug("found metadata", zap.String("metadata", metadataName), zap.Int("keys", len(found)))

	result := make(map[string]interface{}, len(found))
	for dataKey, entries := range found {
		for _, raw := range entries {
			var value interface{}
			if err := datastore.DeserializeScalar(raw, &value); err != nil {
				return nil, status.ErrDeserialization.WithContext("metadata %q for key %q", metadataName, dataKey.Name()).Wrap(err)
			}
			result[dataKey.Name()] = value
		}
	}
	return result, nil
}

// Commit promotes pending settings to live, returning the keys committed
func Commit(ds datastore.DataStore, opts ...Option) (datastore.KeySet, error) {
	s := defaultOptions(opts)

	keys, err := ds.Commit()
	if err != nil {
		return nil, status.ErrDataStore.Wrap(err)
	}
	s.l.Info("committed settings", zap.Int("keys", keys.Len()))
	return keys, nil
}
