package security

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
)

var (
	// ErrPathTraversal is returned for paths containing a ".." segment.
	ErrPathTraversal = errors.New("path traversal detected")
	// ErrNullByte is returned for paths containing a NUL byte.
	ErrNullByte = errors.New("null byte in path")
)

// maxDecodeRounds bounds repeated percent-decoding of double-encoded input.
const maxDecodeRounds = 3

// SanitizePath turns a user supplied slug or version into a clean relative
// path with "/" separators. Percent-encoding is undone repeatedly so encoded
// traversal ("%2e%2e", "%252e%252e") is caught. Any ".." segment or NUL
// byte is rejected; empty and "." segments and leading slashes are dropped.
func SanitizePath(p string) (string, error) {
	decoded := p
	for range maxDecodeRounds {
		next, err := url.PathUnescape(decoded)
		if err != nil || next == decoded {
			break
		}
		decoded = next
	}
	if strings.ContainsRune(decoded, 0) {
		return "", ErrNullByte
	}

	decoded = strings.ReplaceAll(decoded, `\`, "/")
	parts := strings.Split(decoded, "/")
	kept := parts[:0]
	for _, part := range parts {
		switch strings.TrimSpace(part) {
		case "", ".":
			continue
		case "..":
			return "", ErrPathTraversal
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "/"), nil
}

// WithinDirectory reports whether path resolves to dir or a location below
// it.
func WithinDirectory(path, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ValidateRequestPath checks a raw URL path for traversal and NUL injection
// before routing.
func ValidateRequestPath(rawPath string) error {
	lower := strings.ToLower(rawPath)
	if strings.Contains(lower, "%00") {
		return ErrNullByte
	}
	if strings.Contains(lower, "%2e%2e") || strings.Contains(lower, "%252e%252e") {
		return ErrPathTraversal
	}
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		decoded = rawPath
	}
	if strings.ContainsRune(decoded, 0) {
		return ErrNullByte
	}
	for _, part := range strings.FieldsFunc(decoded, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return ErrPathTraversal
		}
	}
	return nil
}
