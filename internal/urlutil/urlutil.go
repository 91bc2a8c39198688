// Package urlutil holds the small URL helpers shared by the fetcher
// and the node assembler.
package urlutil

import (
	"errors"
	"mime"
	"net/url"
	"path"
	"strings"
)

// DefaultImageName is used when an image URL has no usable path segment.
const DefaultImageName = "image.jpg"

// Normalize parses raw, defaults the scheme to https, and rejects URLs
// without a host.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		// Scheme-less input parses with everything in Path.
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return "", err
		}
	}
	if u.Host == "" {
		return "", errors.New("url has no host")
	}
	return u.String(), nil
}

// HostPathTitle builds a fallback page title from the URL's host and
// path. Unparseable input is returned as-is.
func HostPathTitle(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host + u.Path
}

// FileNameFromURL returns the last path segment of an image URL, or
// DefaultImageName when the path has none.
func FileNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return DefaultImageName
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return DefaultImageName
	}
	return name
}

// MimeByName guesses a MIME type from a filename extension, defaulting
// to JPEG for the cover-image case.
func MimeByName(name string) string {
	t := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if t == "" {
		return "image/jpeg"
	}
	if i := strings.Index(t, ";"); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}
