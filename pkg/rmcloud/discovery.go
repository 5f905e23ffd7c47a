package rmcloud

import (
	"context"
	"net/http"
)

// Fixed parameters that select the production document-storage cluster.
const (
	discoveryEnvironment = "production"
	discoveryGroup       = "auth0|5a68dc51cb30df3877a1d7c4"
	discoveryAPIVersion  = 2
)

const storageStatusOK = "OK"

type storageHostResponse struct {
	Status string `json:"Status"`
	Host   string `json:"Host"`
}

// GetStorageHost resolves the base URL of the document-storage host.
//
// The result does not change between calls in practice; callers may cache it.
func (c *Client) GetStorageHost(ctx context.Context) (string, error) {
	query := QueryString(map[string]any{
		"environment": discoveryEnvironment,
		"group":       discoveryGroup,
		"apiVer":      discoveryAPIVersion,
	})

	resp, err := c.do(ctx, request{
		operation: OpGetStorageHost,
		method:    http.MethodGet,
		url:       c.discoveryURL + "?" + query,
	})
	if err != nil {
		return "", err
	}

	var v storageHostResponse
	if err := decodeJSON(resp, &v); err != nil {
		return "", err
	}

	if v.Status != storageStatusOK {
		return "", ErrUnexpectedStorageStatus.WithDetails(v.Status)
	}

	return "https://" + v.Host, nil
}
