package unit

import (
	"fmt"
	"strings"
)

// FindUnit consumes path left-to-right against the tree rooted at root,
// descending through Groups on '/' and into a Script's Steps on a single
// ' '. It fails with "unknown unit: <path>" on any mismatch, including a
// ' ' appearing before a '/' while still resolving Group segments
// (SPEC_FULL.md §4.4), exactly matching
// original_source/src/script-travelers.cc's FindUnit traveler.
func FindUnit(root *Group, path string) (Unit, error) {
	return findIn(root, path, path)
}

func findIn(u Unit, remaining, fullPath string) (Unit, error) {
	switch t := u.(type) {
	case *Group:
		if remaining == "" {
			return t, nil
		}

		name, rest, err := splitGroupSegment(remaining, fullPath)
		if err != nil {
			return nil, err
		}

		child, ok := t.FindChild(name)
		if !ok {
			return nil, fmt.Errorf("unknown unit: %s", fullPath)
		}

		return findIn(child, rest, fullPath)

	case *Script:
		if remaining == "" {
			return t, nil
		}

		if strings.ContainsAny(remaining, "/ ") {
			return nil, fmt.Errorf("unknown unit: %s", fullPath)
		}

		step, ok := t.FindStep(remaining)
		if !ok {
			return nil, fmt.Errorf("unknown unit: %s", fullPath)
		}

		return step, nil

	case *Step:
		if remaining != "" {
			return nil, fmt.Errorf("unknown unit: %s", fullPath)
		}
		return t, nil

	default:
		return nil, fmt.Errorf("unknown unit: %s", fullPath)
	}
}

// splitGroupSegment finds the first '/' or ' ' delimiter in remaining and
// splits on it. It is invalid for both delimiters to be present with the
// space occurring before the slash — a space is only meaningful once
// descent has already reached a Script.
func splitGroupSegment(remaining, fullPath string) (name, rest string, err error) {
	slashIdx := strings.IndexByte(remaining, '/')
	spaceIdx := strings.IndexByte(remaining, ' ')

	hasSlash := slashIdx != -1
	hasSpace := spaceIdx != -1

	if hasSlash && hasSpace && spaceIdx < slashIdx {
		return "", "", fmt.Errorf("unknown unit: %s", fullPath)
	}

	switch {
	case !hasSlash && !hasSpace:
		return remaining, "", nil
	case hasSlash && (!hasSpace || slashIdx < spaceIdx):
		return remaining[:slashIdx], remaining[slashIdx+1:], nil
	default:
		return remaining[:spaceIdx], remaining[spaceIdx+1:], nil
	}
}
