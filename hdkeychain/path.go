package hdkeychain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPathSegment is returned when a derivation path segment is not a
// decimal child index with an optional hardened marker.
var ErrInvalidPathSegment = errors.New("invalid derivation path segment")

// PathStep is one resolved segment of a derivation path.
type PathStep struct {
	// Index is the 31-bit child index without the hardened bit.
	Index uint32

	// Hardened marks segments written with a trailing apostrophe.
	Hardened bool
}

// ParsePath resolves a textual derivation path into its steps. The grammar
// is an optional "m" root marker, then "/"-separated decimal indices each
// with an optional trailing "'" hardened marker. "", "m" and "/" all denote
// the root and resolve to zero steps. Surrounding whitespace is ignored.
func ParsePath(path string) ([]PathStep, error) {
	s := strings.TrimSpace(path)
	s = strings.TrimPrefix(s, "m")
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return nil, nil
	}

	segments := strings.Split(s, "/")
	steps := make([]PathStep, 0, len(segments))
	for _, segment := range segments {
		hardened := strings.HasSuffix(segment, "'")
		numeric := strings.TrimSuffix(segment, "'")

		index, err := strconv.ParseUint(numeric, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w",
				ErrInvalidPathSegment, segment, err)
		}
		if index >= uint64(HardenedKeyStart) {
			return nil, fmt.Errorf("%w %q: %w",
				ErrInvalidPathSegment, segment,
				ErrInvalidChildNumber)
		}

		steps = append(steps, PathStep{
			Index:    uint32(index),
			Hardened: hardened,
		})
	}

	return steps, nil
}

// DerivePath walks a textual derivation path down from the node, deriving
// each step in turn. The empty path returns the node itself.
func (k *HDKey) DerivePath(path string) (*HDKey, error) {
	steps, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	current := k
	for _, step := range steps {
		current, err = current.DeriveChild(step.Index, step.Hardened)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}
