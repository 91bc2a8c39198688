package core

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sort"
	"time"

	"tanaclip/internal/extract"
	"tanaclip/internal/observability"
	"tanaclip/internal/tana"
	"tanaclip/internal/urlutil"
)

const (
	maxSections = 100

	clipMarkerName        = "⚠️ Content clipped"
	clipMarkerDescription = "Only the first 100 sections were included."

	imageFetchTimeout = 10 * time.Second
)

// assemble builds the root node: title, optional cover image, capped
// sections, then merged metadata tags, in that order.
func (c *Clipper) assemble(ctx context.Context, rawURL string, meta extract.PageMeta, sections []extract.Section) tana.Node {
	name := meta.Title
	if name == "" {
		name = rawURL
	}
	root := tana.Node{Name: name}

	if meta.CoverImage != "" {
		if file := c.fetchCover(ctx, meta.CoverImage); file != nil {
			root.Children = append(root.Children, tana.Node{Name: "Image", File: file})
		}
	}

	for i, sec := range sections {
		if i == maxSections {
			root.Children = append(root.Children, tana.Node{
				Name:        clipMarkerName,
				Description: clipMarkerDescription,
			})
			break
		}
		if node, ok := sectionNode(sec); ok {
			root.Children = append(root.Children, node)
		}
	}

	for _, tag := range mergedTags(meta) {
		root.Children = append(root.Children, tana.Node{Name: tag.key, Description: tag.value})
	}

	return root
}

// sectionNode materializes a section. A section with neither a name
// nor any paragraph children is not emitted.
func sectionNode(sec extract.Section) (tana.Node, bool) {
	node := tana.Node{Name: extract.Normalize(sec.Heading)}
	for _, p := range sec.Paragraphs {
		if p == "" {
			continue
		}
		node.Children = append(node.Children, tana.Node{Name: p})
	}
	if node.Name == "" && len(node.Children) == 0 {
		return tana.Node{}, false
	}
	return node, true
}

type tagPair struct {
	key   string
	value string
}

// mergedTags merges meta tags under og tags (og wins on collision) and
// returns the pairs in sorted key order so output is deterministic.
// Pairs whose key or value normalizes away are dropped.
func mergedTags(meta extract.PageMeta) []tagPair {
	merged := make(map[string]string, len(meta.MetaTags)+len(meta.OGTags))
	for k, v := range meta.MetaTags {
		merged[k] = v
	}
	for k, v := range meta.OGTags {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []tagPair
	for _, k := range keys {
		key := extract.Normalize(k)
		value := extract.Normalize(merged[k])
		if key == "" || value == "" {
			continue
		}
		out = append(out, tagPair{key: key, value: value})
	}
	return out
}

// fetchCover downloads the cover image and wraps it as a file
// attachment. Failure is non-fatal: log, count, and clip without it.
func (c *Clipper) fetchCover(ctx context.Context, imageURL string) *tana.FileAttachment {
	ctx, cancel := context.WithTimeout(ctx, imageFetchTimeout)
	defer cancel()

	data, err := c.images.FetchImage(ctx, imageURL)
	if err != nil {
		observability.IncError(observability.ClassifyFetchError(err), "image_fetch")
		slog.Warn("cover image fetch failed", "url", imageURL, "error", err)
		return nil
	}
	observability.IncImagesFetched()

	name := urlutil.FileNameFromURL(imageURL)
	return &tana.FileAttachment{
		Name:     name,
		MimeType: urlutil.MimeByName(name),
		Content:  base64.StdEncoding.EncodeToString(data),
	}
}
