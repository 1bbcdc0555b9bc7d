// Copyright © 2018 One Concern

// Package version identifies data store versions, as found in version files
// and in the names of data store directories.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/oneconcern/datastore/pkg/errors"
	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
)

const versionPattern = `v?(?P<major>[0-9]+)\.(?P<minor>[0-9]+)`

var (
	// ErrInvalidVersion indicates a string which does not hold a version such as "1.2" or "v1.2"
	ErrInvalidVersion = errors.New("invalid data store version")

	// ErrVersionRead indicates that a version file could not be read
	ErrVersionRead = errors.New("unable to read version file")

	// ErrVersionWrite indicates that a version file could not be written
	ErrVersionWrite = errors.New("unable to write version file")
)

var (
	versionRe   *regexp.Regexp
	directoryRe *regexp.Regexp
)

func init() {
	versionRe = regexp.MustCompile(`^` + versionPattern + `$`)
	directoryRe = regexp.MustCompile(`^` + versionPattern + `_(?P<id>.+)$`)
}

// Current version of the data store layout
var Current = Version{Major: 1, Minor: 0}

// Version of a data store
type Version struct {
	Major uint32
	Minor uint32
}

// New version
func New(major, minor uint32) Version {
	return Version{Major: major, Minor: minor}
}

func (v Version) String() string {
	return fmt.Sprintf("v%d.%d", v.Major, v.Minor)
}

// Less orders versions by major, then minor
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	return v.Minor < other.Minor
}

// Parse a version, such as "1.2" or "v1.2"
func Parse(input string) (Version, error) {
	return parseWith(versionRe, input)
}

func parseWith(re *regexp.Regexp, input string) (Version, error) {
	match := re.FindStringSubmatch(input)
	if match == nil {
		return Version{}, ErrInvalidVersion.WithContext("%q: must match %s", input, re.String())
	}

	var v Version
	for i, name := range re.SubexpNames() {
		var target *uint32
		switch name {
		case "major":
			target = &v.Major
		case "minor":
			target = &v.Minor
		default:
			continue
		}
		component, err := strconv.ParseUint(match[i], 10, 32)
		if err != nil {
			return Version{}, ErrInvalidVersion.WithContext("%q: component %s", input, name).Wrap(err)
		}
		*target = uint32(component)
	}
	return v, nil
}

// FromDirectoryName parses a data store directory name such as "v1.5_<id>" into its version and id
func FromDirectoryName(name string) (Version, string, error) {
	v, err := parseWith(directoryRe, name)
	if err != nil {
		return Version{}, "", err
	}
	match := directoryRe.FindStringSubmatch(name)
	for i, group := range directoryRe.SubexpNames() {
		if group == "id" {
			return v, match[i], nil
		}
	}
	return Version{}, "", ErrInvalidVersion.WithContext("%q: no id", name)
}

// NewDirectoryName builds a fresh data store directory name for some version
func NewDirectoryName(v Version) string {
	return v.String() + "_" + ksuid.New().String()
}

// FromFile reads a version from a file
func FromFile(fs afero.Fs, path string) (Version, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return Version{}, ErrVersionRead.WithContext("%s", path).Wrap(err)
	}
	return Parse(strings.TrimSpace(string(b)))
}

// WriteFile writes a version to a file
func WriteFile(fs afero.Fs, path string, v Version) error {
	if err := afero.WriteFile(fs, path, []byte(v.String()+"\n"), 0644); err != nil {
		return ErrVersionWrite.WithContext("%s", path).Wrap(err)
	}
	return nil
}
