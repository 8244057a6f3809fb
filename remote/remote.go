/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/suparena/draftstore/storagemodels"
)

// Client talks to the remote Draft API. The engine treats the API as
// fallible and never depends on it for local resume: local storage stays
// the source of truth on reload, remote sync is best-effort.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// sectionPatch is the PATCH body for a partial section merge.
type sectionPatch struct {
	Section   string          `json:"section"`
	Data      any             `json:"data"`
	UpdatedAt strfmt.DateTime `json:"updatedAt"`
}

// New creates a client for the Draft API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// WithHTTPClient overrides the underlying HTTP client
func (c *Client) WithHTTPClient(httpc *http.Client) *Client {
	c.httpc = httpc
	return c
}

// CreateDraft registers a new draft and returns its server-assigned id.
func (c *Client) CreateDraft(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/drafts", nil)
	if err != nil {
		return "", fmt.Errorf("draft api: build request: %w", err)
	}

	var out struct {
		DraftID string `json:"draftId"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.DraftID == "" {
		return "", fmt.Errorf("draft api: create returned no draftId")
	}
	return out.DraftID, nil
}

// GetDraft fetches the server-side copy of a draft.
func (c *Client) GetDraft(ctx context.Context, id string) (*storagemodels.DraftRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/drafts/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("draft api: build request: %w", err)
	}

	var rec storagemodels.DraftRecord
	if err := c.do(req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// PatchSection merges one section payload into the server-side draft.
func (c *Client) PatchSection(ctx context.Context, id, section string, data any) error {
	body, err := json.Marshal(sectionPatch{
		Section:   section,
		Data:      data,
		UpdatedAt: strfmt.DateTime(time.Now().UTC()),
	})
	if err != nil {
		return fmt.Errorf("draft api: marshal patch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/drafts/"+id,
		bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("draft api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

// do executes the request and decodes a JSON response into out when given.
// Status codes map onto messages the recovery controller classifies
// correctly.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("draft api: network failure: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("draft api: unauthorized (status 401)")
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("draft api: forbidden (status 403)")
	case resp.StatusCode >= 500:
		return fmt.Errorf("draft api: server error (status %d)", resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("draft api: request rejected (status %d)", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("draft api: decode response: %w", err)
	}
	return nil
}
