// Copyright © 2018 One Concern

// Package datastore provides a hierarchical key/value store for settings.
//
// Keys are dotted identifiers such as "settings.host-containers.admin.enabled".
// Values are stored as scalars serialized in JSON, so that types survive the round trip
// through plain text.
//
// Data keys live in one of two states:
//   - Pending: staged changes, not yet visible to consumers
//   - Live: current values
//
// Commit promotes every pending key under "settings." to live.
//
// Metadata keys are attached to data keys and are always live. Metadata is inherited:
// looking up metadata on "a.b.c" falls back to "a.b", then "a".
//
// This package supports the following backends:
//   - local file system (see package filesystem)
//   - memory (see package memory)
//
// None of the implementations serialize concurrent writers: callers must make sure that
// only one writer commits at a time.
package datastore
