package textutil

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnsafeName is returned for an id or region that cannot name a file.
var ErrUnsafeName = errors.New("unsafe file name")

// IDFileName returns the file name used for an app id: the id itself plus ext.
// An id is rejected rather than rewritten, so two ids never share a file. It
// must be non-empty, must not be "." or "..", must not start with a dot, and
// must not contain path separators, characters Windows refuses, control
// characters or surrounding space.
func IDFileName(id, ext string) (string, error) {
	switch {
	case id == "" || strings.TrimSpace(id) != id:
		return "", fmt.Errorf("%w: id %q is empty or padded", ErrUnsafeName, id)
	case strings.HasPrefix(id, "."):
		return "", fmt.Errorf("%w: id %q is hidden or relative", ErrUnsafeName, id)
	case strings.ContainsAny(id, `/\:*?"<>|`) || strings.ContainsFunc(id, unicode.IsControl):
		return "", fmt.Errorf("%w: id %q contains a reserved character", ErrUnsafeName, id)
	}
	return id + ext, nil
}

// RegionToken returns region lower-cased for per-region file names such as
// search_index_<token>.json. Only ASCII letters, digits, '-' and '_' are
// accepted.
func RegionToken(region string) (string, error) {
	token := strings.ToLower(strings.TrimSpace(region))
	if token == "" {
		return "", fmt.Errorf("%w: empty region", ErrUnsafeName)
	}
	for _, r := range token {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return "", fmt.Errorf("%w: region %q", ErrUnsafeName, region)
		}
	}
	return token, nil
}
