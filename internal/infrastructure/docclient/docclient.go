// Package docclient talks to the backend's knowledge-base document endpoints.
package docclient

import (
	"context"
	"os"
	"path/filepath"

	"github.com/expertchat/expertchat/internal/infrastructure/apiclient"
	"github.com/expertchat/expertchat/internal/utils/apperrors"
)

// Client uploads documents into the assistant's knowledge base.
type Client struct {
	api *apiclient.Client
}

func New(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// DefaultSource labels snippets ingested without an explicit origin.
const DefaultSource = "manual_input"

// Result describes an ingested document.
type Result struct {
	ChunksAdded int    `json:"chunks_added"`
	Filename    string `json:"filename,omitempty"`
}

type addTextBody struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// AddText ingests a raw text snippet. An empty source defaults to
// DefaultSource.
func (c *Client) AddText(ctx context.Context, accessToken, text, source string) (*Result, error) {
	if source == "" {
		source = DefaultSource
	}
	var body Result
	resp, err := c.api.R(ctx, accessToken).
		SetBody(addTextBody{Text: text, Source: source}).
		SetResult(&body).
		Post(c.api.Endpoint("/documents/text"))
	if err != nil {
		return nil, c.api.WrapTransport(err, "document ingest request failed")
	}
	if resp.IsError() {
		return nil, c.api.ErrorFrom(resp, "document ingest failed")
	}
	return &body, nil
}

// UploadFile ingests a local file as a multipart upload.
func (c *Client) UploadFile(ctx context.Context, accessToken, path string) (*Result, error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, apperrors.New(apperrors.LayerStorage, apperrors.KindStorage, "file not readable", statErr)
	}

	var body Result
	resp, err := c.api.R(ctx, accessToken).
		SetFile("file", filepath.Clean(path)).
		SetResult(&body).
		Post(c.api.Endpoint("/documents/upload"))
	if err != nil {
		return nil, c.api.WrapTransport(err, "document upload request failed")
	}
	if resp.IsError() {
		return nil, c.api.ErrorFrom(resp, "document upload failed")
	}
	return &body, nil
}
