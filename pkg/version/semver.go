package version

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ErrIncompatible is returned when a peer speaks a different API major version.
var ErrIncompatible = errors.New("incompatible version")

// Parsed returns the parsed build version, or nil for dev builds.
func Parsed() *semver.Version {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil
	}
	return v
}

// IsDevBuild reports whether this build has no release version.
func IsDevBuild() bool {
	return Parsed() == nil
}

// CheckCompatible reports whether a peer running version other can serve
// this build. Index servers and clients must share a major version. Dev
// builds on either side are always accepted.
func CheckCompatible(other string) error {
	current := Parsed()
	if current == nil {
		return nil
	}
	peer, err := semver.NewVersion(other)
	if err != nil {
		return nil
	}

	constraint, err := semver.NewConstraint(fmt.Sprintf("^%d", current.Major()))
	if err != nil {
		return err
	}
	if current.Major() == 0 {
		// Before 1.0 every minor release may break the API.
		constraint, err = semver.NewConstraint(fmt.Sprintf("~0.%d", current.Minor()))
		if err != nil {
			return err
		}
	}
	if !constraint.Check(peer) {
		return fmt.Errorf("%w: peer %s, local %s", ErrIncompatible, peer, current)
	}
	return nil
}
