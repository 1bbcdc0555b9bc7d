// Package model describes the settings held by the data store.
//
// Settings are stored flat, one data key per leaf, under the "settings" prefix:
//
//  settings.hostname = "node1"
//  settings.ntp.time-servers = ["pool.ntp.org"]
//  settings.host-containers.admin.enabled = true
//
// Modeled strings validate their content as they are deserialized, and records implementing
// Validate() check constraints across their fields.
package model
