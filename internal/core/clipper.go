// Package core orchestrates a clip: fetch the page, extract sections
// and metadata, assemble the Tana node tree, and publish it.
package core

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tanaclip/internal/extract"
	"tanaclip/internal/observability"
	"tanaclip/internal/tana"
	"tanaclip/internal/urlutil"
)

// PageFetcher retrieves decoded HTML for a URL.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// ImageFetcher retrieves raw image bytes.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// Publisher sends assembled node trees to the Tana Input API.
type Publisher interface {
	Publish(ctx context.Context, token string, req tana.Request) error
	DiagnosePublish(ctx context.Context, token, targetNodeID string, root tana.Node)
}

// ClipRequest is one inbound clip: what to fetch and where to file it.
type ClipRequest struct {
	URL          string
	APIToken     string
	TargetNodeID string
}

// Clipper runs the fetch → extract → assemble → publish pipeline.
// It holds no per-request state, so one Clipper serves all requests.
type Clipper struct {
	pages     PageFetcher
	images    ImageFetcher
	publisher Publisher
	diagnose  bool
}

func NewClipper(pages PageFetcher, images ImageFetcher, publisher Publisher) *Clipper {
	return &Clipper{
		pages:     pages,
		images:    images,
		publisher: publisher,
	}
}

// WithDiagnostics enables per-node resubmission after a failed publish.
func (c *Clipper) WithDiagnostics(on bool) *Clipper {
	c.diagnose = on
	return c
}

// Clip processes one request end to end and returns the published root
// node. Page fetch and publish failures are fatal; a failed cover-image
// fetch only drops the image node.
func (c *Clipper) Clip(ctx context.Context, req ClipRequest) (*tana.Node, error) {
	observability.IncClipRequests()

	pageURL, err := urlutil.Normalize(req.URL)
	if err != nil {
		return nil, clipErr(KindMalformed, "invalid url", err)
	}

	body, err := c.pages.FetchPage(ctx, pageURL)
	if err != nil {
		observability.IncError(observability.ClassifyFetchError(err), "page_fetch")
		slog.Error("page fetch failed", "url", pageURL, "error", err)
		return nil, clipErr(KindFetch, "failed to fetch "+pageURL, err)
	}
	observability.IncPagesFetched()
	slog.Info("fetched page", "url", pageURL, "bytes", len(body))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		observability.IncError(observability.ErrorParsing, "page_parse")
		return nil, clipErr(KindFetch, "failed to parse "+pageURL, err)
	}

	meta := extract.Metadata(doc, pageURL)
	var sections []extract.Section
	if nodes := doc.Find("body").Nodes; len(nodes) > 0 {
		sections = extract.Sections(nodes[0])
	}
	slog.Info("extracted content", "url", pageURL, "title", meta.Title, "sections", len(sections))

	root := c.assemble(ctx, req.URL, meta, sections)

	tanaReq := tana.Request{
		TargetNodeID: req.TargetNodeID,
		Nodes:        []tana.Node{root},
	}
	if err := c.publisher.Publish(ctx, req.APIToken, tanaReq); err != nil {
		observability.IncError(observability.ErrorPublish, "publisher")
		slog.Error("publish failed", "url", pageURL, "target", req.TargetNodeID, "error", err)
		if c.diagnose {
			c.publisher.DiagnosePublish(ctx, req.APIToken, req.TargetNodeID, root)
		}
		return nil, clipErr(KindPublish, "failed to post to tana", err)
	}
	observability.IncPublishes()
	slog.Info("published to tana", "url", pageURL, "target", req.TargetNodeID, "children", len(root.Children))

	return &root, nil
}
