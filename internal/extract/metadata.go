package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tanaclip/internal/urlutil"
)

// PageMeta holds the page title plus the Open Graph and plain meta
// tags, with a detected cover image split out of the og set.
type PageMeta struct {
	Title      string
	CoverImage string
	OGTags     map[string]string
	MetaTags   map[string]string
}

// Metadata reads the document title and all meta tags. The title falls
// back to the URL's host+path when the page has none. When og:image is
// present it is removed from OGTags and surfaced as CoverImage.
func Metadata(doc *goquery.Document, pageURL string) PageMeta {
	meta := PageMeta{
		OGTags:   map[string]string{},
		MetaTags: map[string]string{},
	}

	meta.Title = Normalize(doc.Find("title").First().Text())
	if meta.Title == "" {
		meta.Title = urlutil.HostPathTitle(pageURL)
	}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, _ := s.Attr("content")
		if prop, _ := s.Attr("property"); strings.HasPrefix(prop, "og:") {
			meta.OGTags[prop] = content
			return
		}
		if name, ok := s.Attr("name"); ok && name != "" {
			meta.MetaTags[name] = content
		}
	})

	if img, ok := meta.OGTags["og:image"]; ok {
		delete(meta.OGTags, "og:image")
		meta.CoverImage = strings.TrimSpace(img)
	}

	return meta
}
