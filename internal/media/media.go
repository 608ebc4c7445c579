// Package media talks to the hosting service that stores profile and memory
// images. Objects are addressed by public id: the object path without its
// file extension.
package media

import (
	"context"
	"net/url"
	"strings"
)

// DestroyResult is the outcome reported by the hosting service for a delete
type DestroyResult string

const (
	ResultOK       DestroyResult = "ok"
	ResultNotFound DestroyResult = "not found"
)

// Store deletes hosted image objects
type Store interface {
	Destroy(ctx context.Context, publicID string) (DestroyResult, error)
}

// PublicIDFromURL extracts the public id from a hosted image URL such as
// https://res.cloudinary.com/demo/image/upload/v1712/profiles/u1.jpg -> profiles/u1.
// It reports false when the URL is not served from host or does not have the
// expected shape.
func PublicIDFromURL(rawURL, host string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || host == "" || !strings.EqualFold(u.Hostname(), host) {
		return "", false
	}

	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}
	// the segment right after "upload" is the version (or a transformation)
	if uploadIndex == -1 || len(parts) <= uploadIndex+2 {
		return "", false
	}

	withExt := strings.Join(parts[uploadIndex+2:], "/")
	dot := strings.LastIndex(withExt, ".")
	if dot <= 0 {
		return "", false
	}
	return withExt[:dot], true
}
