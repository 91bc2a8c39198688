package observability

import (
	"context"
	"errors"
	"net/http"

	"tanaclip/internal/httpx"
)

const (
	ErrorNetwork   = "network"
	ErrorParsing   = "parsing"
	ErrorPublish   = "publish"
	ErrorRateLimit = "rate_limit"
	ErrorUnknown   = "unknown"
)

// ClassifyFetchError buckets outbound fetch failures by cause.
func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		if fe.Status == http.StatusTooManyRequests {
			return ErrorRateLimit
		}
		return ErrorNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorNetwork
	}
	return ErrorUnknown
}
