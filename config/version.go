package config

import (
	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
)

// Version is a semantic version decoded from the environment.
type Version struct {
	*semver.Version
}

// Decode implements envconfig.Decoder.
func (v *Version) Decode(value string) error {
	parsed, err := semver.NewVersion(value)
	if err != nil {
		return errors.Wrapf(err, "invalid semantic version %q", value)
	}
	v.Version = parsed
	return nil
}

// String returns the canonical form, or "" when unset.
func (v Version) String() string {
	if v.Version == nil {
		return ""
	}
	return v.Version.String()
}
