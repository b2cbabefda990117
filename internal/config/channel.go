package config

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Validates a channel name and returns its IRC form.
//
// Names consist of ASCII letters, digits and underscores. A leading "#" is
// accepted. The result is lowercase and prefixed with "#".
func NormalizeChannel(name string) (string, error) {
	bare := strings.TrimPrefix(strings.TrimSpace(name), "#")
	if bare == "" {
		return "", errors.Wrapf(ErrInvalidChannel, "%q", name)
	}

	for _, r := range bare {
		if !isChannelRune(r) {
			return "", errors.Wrapf(ErrInvalidChannel, "%q", name)
		}
	}

	return "#" + strings.ToLower(bare), nil
}

func isChannelRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	}
	return false
}

// Normalizes every name and drops duplicates, keeping first occurrences in
// order.
func NormalizeChannels(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		c, err := NormalizeChannel(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Compares two channel lists.
//
// added holds channels in next but not in prev, in next's order. removed
// holds channels in prev but not in next, in prev's order.
func Diff(prev, next []string) (added, removed []string) {
	for _, c := range next {
		if !slices.Contains(prev, c) {
			added = append(added, c)
		}
	}
	for _, c := range prev {
		if !slices.Contains(next, c) {
			removed = append(removed, c)
		}
	}
	return added, removed
}
