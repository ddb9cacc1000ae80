// Package routepath normalizes navigation paths before they reach the route
// table.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Location is a canonical navigation target.
type Location struct {
	// Path is the canonical path, always starting with "/".
	Path string

	// Query is the raw query string without the leading "?".
	Query string

	// Changed reports whether canonicalization rewrote the path.
	Changed bool
}

// String rebuilds the location as path plus optional query.
func (l Location) String() string {
	if l.Query == "" {
		return l.Path
	}
	return l.Path + "?" + l.Query
}

// Canonicalization and decoding errors.
var (
	ErrInvalidPath           = errors.New("invalid path")
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in non-catch-all segment")
)

// IsInvalid reports whether err rejects the path itself. Segment decoding
// errors are not included: such segments only fail to match.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidPath) || errors.Is(err, ErrBackslashInPath)
}

// Canonicalize normalizes a navigation path.
//
// Rewrites: missing leading slash is added, repeated slashes collapse,
// "." segments are dropped, ".." pops one segment and stays at the root
// once there, the trailing slash is removed (except for "/"), and any
// "#fragment" is discarded.
//
// Only backslashes are rejected. Segments are not decoded here, so a
// malformed escape or an encoded NUL survives and simply matches no static
// or parameter segment. The query string is kept verbatim.
func Canonicalize(input string) (Location, error) {
	input, _, _ = strings.Cut(input, "#")
	if input == "" {
		return Location{Path: "/", Changed: true}, nil
	}

	raw, query, _ := strings.Cut(input, "?")
	if strings.Contains(raw, `\`) {
		return Location{}, ErrBackslashInPath
	}

	kept := make([]string, 0, strings.Count(raw, "/")+1)
	for _, seg := range strings.Split(raw, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(kept) > 0 {
				kept = kept[:len(kept)-1]
			}
		default:
			kept = append(kept, seg)
		}
	}

	path := "/" + strings.Join(kept, "/")
	return Location{Path: path, Query: query, Changed: path != raw}, nil
}

// NavPath canonicalizes a navigation target supplied by a caller.
// Absolute and protocol-relative URLs are refused so a redirect can never
// leave the console.
func NavPath(target string) (Location, error) {
	if strings.HasPrefix(target, "//") || strings.Contains(target, "://") {
		return Location{}, ErrInvalidPath
	}
	if !strings.HasPrefix(target, "/") {
		return Location{}, ErrInvalidPath
	}
	return Canonicalize(target)
}

// DecodeSegment percent-decodes a single path segment. A decoded NUL is
// never allowed; a decoded "/" is only allowed for catch-all captures.
func DecodeSegment(segment string, isCatchAll bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if strings.ContainsRune(decoded, 0) {
		return "", ErrNullByteInPath
	}
	if !isCatchAll && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// Segments splits a canonical path into its segments. "/" has none.
func Segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
