// Copyright © 2018 One Concern

package model

import (
	"encoding/base64"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

const maxIdentifierLength = 253

var identifierRe *regexp.Regexp

func init() {
	identifierRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)
}

// SingleLineString is a string with no line break
type SingleLineString string

// UnmarshalJSON implements json.Unmarshaller
func (s *SingleLineString) UnmarshalJSON(data []byte) error {
	var str string
	if err := jsoniter.Unmarshal(data, &str); err != nil {
		return err
	}
	if idx := strings.IndexAny(str, "\n\r\u0085\u2028\u2029"); idx >= 0 {
		return ErrInvalidValue.WithContext("single line string has a line break at position %d", idx)
	}
	*s = SingleLineString(str)
	return nil
}

func (s SingleLineString) String() string { return string(s) }

// Identifier is a name for some resource, such as a host container: it starts with an
// alphanumeric character, followed by alphanumerics, "_", "-" or ".".
type Identifier string

// UnmarshalJSON implements json.Unmarshaller
func (i *Identifier) UnmarshalJSON(data []byte) error {
	var str string
	if err := jsoniter.Unmarshal(data, &str); err != nil {
		return err
	}
	if err := Identifier(str).Validate(); err != nil {
		return err
	}
	*i = Identifier(str)
	return nil
}

// Validate the identifier
func (i Identifier) Validate() error {
	if len(i) > maxIdentifierLength {
		return ErrInvalidValue.WithContext("identifier is longer than %d characters", maxIdentifierLength)
	}
	if !identifierRe.MatchString(string(i)) {
		return ErrInvalidValue.WithContext("identifier %q must match %s", string(i), identifierRe.String())
	}
	return nil
}

func (i Identifier) String() string { return string(i) }

// ValidBase64 is a string holding some valid standard base64 encoding
type ValidBase64 string

// UnmarshalJSON implements json.Unmarshaller
func (b *ValidBase64) UnmarshalJSON(data []byte) error {
	var str string
	if err := jsoniter.Unmarshal(data, &str); err != nil {
		return err
	}
	if _, err := base64.StdEncoding.DecodeString(str); err != nil {
		return ErrInvalidValue.WithContext("invalid base64").Wrap(err)
	}
	*b = ValidBase64(str)
	return nil
}

// Decode the base64 content
func (b ValidBase64) Decode() ([]byte, error) {
	return base64.StdEncoding.DecodeString(string(b))
}
