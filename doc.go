/*
Package datastore provides tooling to manage hierarchical settings.

Settings are values addressed by dotted keys, such as "settings.ntp.time-servers", stored as
files. Changes are staged as pending, then committed to live. Metadata may be attached to any
key, and is inherited by the keys below it.

The datastore CLI is found in cmd/datastore, the libraries in pkg.
*/
package datastore
