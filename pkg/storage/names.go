package storage

import (
	"fmt"
	"strings"

	"github.com/pixperk/lockbox/pkg/types"
)

const maxNameLen = 255

// checks that name addresses a single entry of the flat store
// path separators and dot segments are rejected rather than normalized,
// so a name always maps to exactly one file directly under the storage root
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", types.ErrInvalidName, name)
	case len(name) > maxNameLen:
		return fmt.Errorf("%w: longer than %d bytes", types.ErrInvalidName, maxNameLen)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator", types.ErrInvalidName, name)
	}
	return nil
}
