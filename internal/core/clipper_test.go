package core_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tanaclip/internal/core"
	"tanaclip/internal/httpx"
	"tanaclip/internal/tana"
)

type stubPages struct {
	html string
	err  error
}

func (s *stubPages) FetchPage(ctx context.Context, url string) (string, error) {
	return s.html, s.err
}

type stubImages struct {
	data  []byte
	err   error
	calls int
}

func (s *stubImages) FetchImage(ctx context.Context, url string) ([]byte, error) {
	s.calls++
	return s.data, s.err
}

type stubPublisher struct {
	mu        sync.Mutex
	requests  []tana.Request
	tokens    []string
	err       error
	diagnosed int
}

func (p *stubPublisher) Publish(ctx context.Context, token string, req tana.Request) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = append(p.tokens, token)
	p.requests = append(p.requests, req)
	return p.err
}

func (p *stubPublisher) DiagnosePublish(ctx context.Context, token, targetNodeID string, root tana.Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.diagnosed++
}

func clipRequest() core.ClipRequest {
	return core.ClipRequest{
		URL:          "https://example.com/post",
		APIToken:     "tok-123",
		TargetNodeID: "INBOX",
	}
}

func TestClip(t *testing.T) {
	t.Parallel()

	t.Run("assembles and publishes the full node tree", func(t *testing.T) {
		t.Parallel()

		pages := &stubPages{html: `<html><head>
			<title> My  Page </title>
			<meta property="og:image" content="https://cdn.example.com/cover.png">
			<meta property="og:type" content="article">
			<meta name="author" content="Jane">
			<meta name="broken" content="undefined">
		</head><body>
			<h1>A</h1><p>x</p>
			<h2>B</h2><p>y</p>
		</body></html>`}
		images := &stubImages{data: []byte{0x89, 'P', 'N', 'G'}}
		publisher := &stubPublisher{}

		clipper := core.NewClipper(pages, images, publisher)
		root, err := clipper.Clip(context.Background(), clipRequest())
		require.NoError(t, err)

		assert.Equal(t, "My Page", root.Name)
		assert.Empty(t, root.Description)
		require.Len(t, root.Children, 5)

		image := root.Children[0]
		assert.Equal(t, "Image", image.Name)
		require.NotNil(t, image.File)
		assert.Equal(t, "cover.png", image.File.Name)
		assert.Equal(t, "image/png", image.File.MimeType)
		assert.Equal(t, base64.StdEncoding.EncodeToString(images.data), image.File.Content)

		secA := root.Children[1]
		assert.Equal(t, "A", secA.Name)
		require.Len(t, secA.Children, 1)
		assert.Equal(t, "x", secA.Children[0].Name)

		secB := root.Children[2]
		assert.Equal(t, "B", secB.Name)
		require.Len(t, secB.Children, 1)
		assert.Equal(t, "y", secB.Children[0].Name)

		// Tags come sorted; the "undefined" value is dropped.
		assert.Equal(t, tana.Node{Name: "author", Description: "Jane"}, root.Children[3])
		assert.Equal(t, tana.Node{Name: "og:type", Description: "article"}, root.Children[4])

		require.Len(t, publisher.requests, 1)
		assert.Equal(t, "INBOX", publisher.requests[0].TargetNodeID)
		assert.Equal(t, []string{"tok-123"}, publisher.tokens)
	})

	t.Run("og tags win over meta tags on key collision", func(t *testing.T) {
		t.Parallel()

		pages := &stubPages{html: `<html><head><title>T</title>
			<meta name="og:type" content="website">
			<meta property="og:type" content="article">
		</head><body></body></html>`}
		publisher := &stubPublisher{}

		clipper := core.NewClipper(pages, &stubImages{}, publisher)
		root, err := clipper.Clip(context.Background(), clipRequest())
		require.NoError(t, err)

		require.Len(t, root.Children, 1)
		assert.Equal(t, tana.Node{Name: "og:type", Description: "article"}, root.Children[0])
	})

	t.Run("caps sections at 100 plus a clip marker", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		sb.WriteString("<html><head><title>Long</title></head><body>")
		for i := 0; i < 150; i++ {
			fmt.Fprintf(&sb, "<h2>S%d</h2><p>p%d</p>", i, i)
		}
		sb.WriteString("</body></html>")

		pages := &stubPages{html: sb.String()}
		publisher := &stubPublisher{}

		clipper := core.NewClipper(pages, &stubImages{}, publisher)
		root, err := clipper.Clip(context.Background(), clipRequest())
		require.NoError(t, err)

		require.Len(t, root.Children, 101)
		assert.Equal(t, "S0", root.Children[0].Name)
		assert.Equal(t, "S99", root.Children[99].Name)

		marker := root.Children[100]
		assert.Equal(t, "⚠️ Content clipped", marker.Name)
		assert.Equal(t, "Only the first 100 sections were included.", marker.Description)
	})

	t.Run("image fetch failure drops the image node only", func(t *testing.T) {
		t.Parallel()

		pages := &stubPages{html: `<html><head><title>T</title>
			<meta property="og:image" content="https://cdn.example.com/cover.png">
		</head><body><h1>A</h1><p>x</p></body></html>`}
		images := &stubImages{err: errors.New("connection refused")}
		publisher := &stubPublisher{}

		clipper := core.NewClipper(pages, images, publisher)
		root, err := clipper.Clip(context.Background(), clipRequest())
		require.NoError(t, err)

		assert.Equal(t, 1, images.calls)
		require.Len(t, root.Children, 1)
		assert.Equal(t, "A", root.Children[0].Name)
		assert.Len(t, publisher.requests, 1)
	})

	t.Run("pages without a cover image skip the image fetch", func(t *testing.T) {
		t.Parallel()

		pages := &stubPages{html: "<html><head><title>T</title></head><body><p>x</p></body></html>"}
		images := &stubImages{}
		publisher := &stubPublisher{}

		clipper := core.NewClipper(pages, images, publisher)
		_, err := clipper.Clip(context.Background(), clipRequest())
		require.NoError(t, err)
		assert.Zero(t, images.calls)
	})

	t.Run("page fetch failure aborts without publishing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		fetcher := httpx.NewFetcher()
		publisher := &stubPublisher{}
		clipper := core.NewClipper(fetcher, fetcher, publisher)

		req := clipRequest()
		req.URL = server.URL
		_, err := clipper.Clip(context.Background(), req)

		require.Error(t, err)
		assert.Equal(t, core.KindFetch, core.KindOf(err))
		assert.Empty(t, publisher.requests, "no publish call after a failed fetch")
	})

	t.Run("invalid url is malformed", func(t *testing.T) {
		t.Parallel()

		clipper := core.NewClipper(&stubPages{}, &stubImages{}, &stubPublisher{})
		req := clipRequest()
		req.URL = " "
		_, err := clipper.Clip(context.Background(), req)

		require.Error(t, err)
		assert.Equal(t, core.KindMalformed, core.KindOf(err))
	})

	t.Run("publish failure is tagged and optionally diagnosed", func(t *testing.T) {
		t.Parallel()

		pages := &stubPages{html: "<html><head><title>T</title></head><body><h1>A</h1><p>x</p></body></html>"}
		publisher := &stubPublisher{err: &tana.PublishError{Status: 500, Body: "nope"}}

		clipper := core.NewClipper(pages, &stubImages{}, publisher).WithDiagnostics(true)
		_, err := clipper.Clip(context.Background(), clipRequest())

		require.Error(t, err)
		assert.Equal(t, core.KindPublish, core.KindOf(err))
		assert.Equal(t, 1, publisher.diagnosed)
	})
}
