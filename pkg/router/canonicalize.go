package router

import (
	"errors"
	"net/url"
	"strings"
)

// CanonicalizeResult contains the result of path canonicalization.
type CanonicalizeResult struct {
	// Path is the canonicalized path (without query string or fragment).
	Path string

	// Query is the query string (without leading "?").
	Query string

	// Changed indicates if the path was modified during canonicalization.
	Changed bool
}

// Path canonicalization errors.
var (
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in segment")
)

// CanonicalizePath normalizes a URL path before matching:
//   - Ensure a leading slash
//   - Collapse multiple slashes (/posts//7 → /posts/7)
//   - Remove "." segments and resolve ".." segments
//   - Remove the trailing slash (except for root "/")
//   - Split off the query string and drop any fragment
//
// Paths containing a backslash, a NUL byte, an invalid percent-escape, or a
// ".." that would escape root are rejected.
func CanonicalizePath(input string) (CanonicalizeResult, error) {
	input, _, _ = strings.Cut(input, "#")
	if input == "" {
		return CanonicalizeResult{Path: "/", Changed: true}, nil
	}

	path, query, _ := strings.Cut(input, "?")

	if strings.Contains(path, "\\") {
		return CanonicalizeResult{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return CanonicalizeResult{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return CanonicalizeResult{}, err
		}
	}

	original := path

	var result []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(result) == 0 {
				return CanonicalizeResult{}, ErrPathEscapesRoot
			}
			result = result[:len(result)-1]
		default:
			result = append(result, seg)
		}
	}

	path = "/" + strings.Join(result, "/")

	return CanonicalizeResult{
		Path:    path,
		Query:   query,
		Changed: path != original,
	}, nil
}

// validatePercentEscapes checks that every '%' starts a %XX hex escape.
func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// DecodeSegment decodes a single path segment. Decoding to a value that
// contains "/" is rejected, since it would let a single segment smuggle a
// path separator past the matcher.
func DecodeSegment(segment string) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// ErrAbsoluteNavPath rejects navigation targets that would leave the app.
var ErrAbsoluteNavPath = errors.New("navigation path must be app-relative")

// CanonicalizeAndValidateNavPath validates a navigation target received
// from the client and returns its canonical form, query included.
// Absolute and protocol-relative URLs are rejected.
func CanonicalizeAndValidateNavPath(input string) (string, error) {
	if strings.HasPrefix(input, "//") || strings.Contains(input, "://") {
		return "", ErrAbsoluteNavPath
	}
	result, err := CanonicalizePath(input)
	if err != nil {
		return "", err
	}
	if result.Query != "" {
		return result.Path + "?" + result.Query, nil
	}
	return result.Path, nil
}
