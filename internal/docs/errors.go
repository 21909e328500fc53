package docs

import (
	"errors"

	foundation "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
)

// errNoFile marks a candidate path that does not exist.
var errNoFile = errors.New("no such document file")

func notFound(slug, version, locale string) error {
	return foundation.NotFoundError("document not found").
		WithContext("slug", slug).
		WithContext("version", version).
		WithContext("locale", locale).
		Build()
}

func versionNotFound(version string) error {
	return foundation.NotFoundError("version not found").
		WithContext("version", version).
		Build()
}

// IsNotFound reports whether err means the requested document or version
// does not exist. Rejected and unreadable documents count as not found.
func IsNotFound(err error) bool {
	return foundation.HasCategory(err, foundation.CategoryNotFound)
}
