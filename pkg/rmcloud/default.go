package rmcloud

import (
	"context"
	"io"
	"net/http"
)

// DefaultClient is used by the package-level functions.
var DefaultClient = NewClient()

// AuthenticateDevice calls DefaultClient.AuthenticateDevice.
func AuthenticateDevice(ctx context.Context, code string) (DeviceCredential, error) {
	return DefaultClient.AuthenticateDevice(ctx, code)
}

// AuthenticateUser calls DefaultClient.AuthenticateUser.
func AuthenticateUser(ctx context.Context, deviceToken string) (string, error) {
	return DefaultClient.AuthenticateUser(ctx, deviceToken)
}

// GetStorageHost calls DefaultClient.GetStorageHost.
func GetStorageHost(ctx context.Context) (string, error) {
	return DefaultClient.GetStorageHost(ctx)
}

// Docs calls DefaultClient.Docs.
func Docs(ctx context.Context, host, token string, opts *DocsOptions) ([]Document, error) {
	return DefaultClient.Docs(ctx, host, token, opts)
}

// UploadRequest calls DefaultClient.UploadRequest.
func UploadRequest(ctx context.Context, host, token string) (UploadSlot, error) {
	return DefaultClient.UploadRequest(ctx, host, token)
}

// UploadBlob calls DefaultClient.UploadBlob.
func UploadBlob(ctx context.Context, uploadURL string, body io.Reader, size int64) error {
	return DefaultClient.UploadBlob(ctx, uploadURL, body, size)
}

// UpdateStatus calls DefaultClient.UpdateStatus.
func UpdateStatus(ctx context.Context, host, token string, metadata DocumentMetadata) (*http.Response, error) {
	return DefaultClient.UpdateStatus(ctx, host, token, metadata)
}

// DeleteItem calls DefaultClient.DeleteItem.
func DeleteItem(ctx context.Context, host, token, id string, version int) (*http.Response, error) {
	return DefaultClient.DeleteItem(ctx, host, token, id, version)
}
