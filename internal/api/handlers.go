package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"tanaclip/internal/core"
)

// maxRequestBody bounds inbound request bodies.
const maxRequestBody = 1 << 20

type parseAndPostRequest struct {
	URL          string `json:"url"`
	APIToken     string `json:"api_token"`
	TargetNodeID string `json:"target_node_id"`
}

func (s *Server) handleParseAndPost(w http.ResponseWriter, r *http.Request) {
	req, err := decodeParseAndPost(r)
	if err != nil {
		slog.Error("failed to parse incoming request", "error", err)
		respondError(w, http.StatusUnprocessableEntity, "Invalid request format")
		return
	}

	_, err = s.clipper.Clip(r.Context(), core.ClipRequest{
		URL:          req.URL,
		APIToken:     req.APIToken,
		TargetNodeID: req.TargetNodeID,
	})
	if err != nil {
		switch core.KindOf(err) {
		case core.KindMalformed:
			respondError(w, http.StatusUnprocessableEntity, "Invalid request format")
		case core.KindFetch:
			respondError(w, http.StatusBadRequest, "Failed to fetch the given URL.")
		case core.KindPublish:
			respondError(w, http.StatusBadGateway, "Failed to post data to Tana.")
		default:
			respondError(w, http.StatusInternalServerError, "Internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Content extracted and sent to Tana successfully.",
	})
}

// decodeParseAndPost reads the request body, unwrapping it once if it
// arrives double-encoded as a JSON string (Tana command nodes do this),
// and validates the required fields.
func decodeParseAndPost(r *http.Request) (parseAndPostRequest, error) {
	var req parseAndPostRequest

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return req, err
	}

	raw := bytes.TrimSpace(body)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return req, err
		}
		raw = []byte(inner)
	}

	if err := json.Unmarshal(raw, &req); err != nil {
		return req, err
	}
	if req.URL == "" || req.APIToken == "" || req.TargetNodeID == "" {
		return req, errors.New("url, api_token and target_node_id are required")
	}
	return req, nil
}
