package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// RemoteClient implements [RemoteStore] over the collection HTTP contract.
type RemoteClient struct {
	api      *APIService
	endpoint string
}

// NewRemoteClient creates a client for the store at baseURL, serving the collection at endpoint.
func NewRemoteClient(baseURL, endpoint string, client *http.Client) *RemoteClient {
	if endpoint == "" {
		endpoint = "/collection"
	}
	return &RemoteClient{
		api:      NewAPIService(strings.TrimSuffix(baseURL, "/"), client),
		endpoint: "/" + strings.Trim(endpoint, "/"),
	}
}

// NewRemoteClientFromConfig builds a client with the configured request timeout.
func NewRemoteClientFromConfig(cfg shared.RemoteConfig) *RemoteClient {
	return NewRemoteClient(cfg.URL, cfg.Endpoint, &http.Client{Timeout: cfg.Timeout()})
}

// Fetch retrieves the whole collection.
func (c *RemoteClient) Fetch(ctx context.Context) (models.Snapshot, error) {
	resp, err := c.api.Get(ctx, c.endpoint)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return models.Snapshot{}, statusError(resp)
	}
	return models.DecodeCollection(resp.Body)
}

// Write sends a PUT with the encoded request.
func (c *RemoteClient) Write(ctx context.Context, req models.WriteRequest) (models.WriteResult, error) {
	body, err := models.EncodeWriteRequest(req)
	if err != nil {
		return models.WriteResult{}, err
	}

	resp, err := c.api.Put(ctx, c.endpoint, body)
	if err != nil {
		return models.WriteResult{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return models.WriteResult{}, statusError(resp)
	}

	var result models.WriteResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return models.WriteResult{}, fmt.Errorf("%w: %v", shared.ErrMalformedPayload, err)
	}
	return result, nil
}

// DeletePlaylist removes a playlist. A playlist the store does not know is not an error.
func (c *RemoteClient) DeletePlaylist(ctx context.Context, id string) error {
	resp, err := c.api.Delete(ctx, c.endpoint+"/playlists/"+url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return statusError(resp)
	}
	return nil
}

func statusError(resp *APIResponse) error {
	return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(resp.ErrorMessage()))
}
